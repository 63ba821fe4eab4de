package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/grocerylab/grocery-api/internal/cache"
	"github.com/grocerylab/grocery-api/internal/handlers"
	"github.com/grocerylab/grocery-api/internal/repository"
)

// registerEntityRoutes mounts the CRUD surface for every entity. Catalogue
// reads are public; everything a shopper owns sits behind authentication.
// ttl is the configured cache entry lifetime shared by all repositories.
func registerEntityRoutes(r *gin.Engine, db *gorm.DB, store cache.Store, ttl time.Duration, requireAuth gin.HandlerFunc) error {
	api := r.Group("/api")

	// Catalogue: public reads, authenticated writes.
	productRepo, err := repository.NewProductRepository(db, store, ttl)
	if err != nil {
		return err
	}
	products := handlers.NewProductHandler(productRepo)
	api.GET("/products", products.List)
	api.GET("/products/:id", products.Get)
	api.POST("/products", requireAuth, products.Create)
	api.PATCH("/products/:id", requireAuth, products.Update)
	api.DELETE("/products/:id", requireAuth, products.Delete)

	categoryRepo, err := repository.NewCategoryRepository(db, store, ttl)
	if err != nil {
		return err
	}
	categories := handlers.NewCategoryHandler(categoryRepo)
	api.GET("/categories", categories.List)
	api.GET("/categories/:id", categories.Get)
	api.POST("/categories", requireAuth, categories.Create)
	api.PATCH("/categories/:id", requireAuth, categories.Update)
	api.DELETE("/categories/:id", requireAuth, categories.Delete)

	// Contact form: public submissions, authenticated browsing.
	contactRepo, err := repository.NewContactRepository(db, store, ttl)
	if err != nil {
		return err
	}
	contacts := handlers.NewContactHandler(contactRepo)
	api.POST("/contacts", contacts.Create)
	api.GET("/contacts", requireAuth, contacts.List)
	api.GET("/contacts/:id", requireAuth, contacts.Get)

	// Shopper-owned entities, scoped to the authenticated user.
	protected := api.Group("")
	protected.Use(requireAuth)

	// Account directory. Creation answers 400: registration is the only
	// entry point for new accounts.
	userRepo, err := repository.NewUserRepository(db, store, ttl)
	if err != nil {
		return err
	}
	mountCRUD(protected, "/users", handlers.NewUserHandler(userRepo))

	cartRepo, err := repository.NewCartRepository(db, store, ttl)
	if err != nil {
		return err
	}
	mountCRUD(protected, "/carts", handlers.NewCartHandler(cartRepo))

	orderRepo, err := repository.NewOrderRepository(db, store, ttl)
	if err != nil {
		return err
	}
	mountCRUD(protected, "/orders", handlers.NewOrderHandler(orderRepo))

	paymentRepo, err := repository.NewPaymentRepository(db, store, ttl)
	if err != nil {
		return err
	}
	mountCRUD(protected, "/payments", handlers.NewPaymentHandler(paymentRepo))

	wishlistRepo, err := repository.NewWishlistRepository(db, store, ttl)
	if err != nil {
		return err
	}
	mountCRUD(protected, "/wishlists", handlers.NewWishlistHandler(wishlistRepo))

	addressRepo, err := repository.NewAddressRepository(db, store, ttl)
	if err != nil {
		return err
	}
	mountCRUD(protected, "/addresses", handlers.NewAddressHandler(addressRepo))

	return nil
}

type crudHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

func mountCRUD(group *gin.RouterGroup, path string, h crudHandler) {
	group.GET(path, h.List)
	group.GET(path+"/:id", h.Get)
	group.POST(path, h.Create)
	group.PATCH(path+"/:id", h.Update)
	group.DELETE(path+"/:id", h.Delete)
}
