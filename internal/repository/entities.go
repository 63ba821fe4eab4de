package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/grocerylab/grocery-api/internal/cache"
	"github.com/grocerylab/grocery-api/internal/models"
)

// Every constructor takes the configured cache entry lifetime; zero falls
// back to the store default.

// NewUserRepository serves shopper accounts.
func NewUserRepository(db *gorm.DB, store cache.Store, ttl time.Duration) (*Repository[models.User], error) {
	return New[models.User](db, store, Config{
		Entity:        "users",
		IDColumn:      "user_id",
		SearchColumns: []string{"name", "email", "mobile"},
		TTL:           ttl,
	})
}

// NewProductRepository serves the catalogue.
func NewProductRepository(db *gorm.DB, store cache.Store, ttl time.Duration) (*Repository[models.Product], error) {
	return New[models.Product](db, store, Config{
		Entity:        "products",
		IDColumn:      "product_id",
		SearchColumns: []string{"name", "description"},
		TTL:           ttl,
	})
}

// NewCategoryRepository serves catalogue categories.
func NewCategoryRepository(db *gorm.DB, store cache.Store, ttl time.Duration) (*Repository[models.Category], error) {
	return New[models.Category](db, store, Config{
		Entity:        "categories",
		IDColumn:      "category_id",
		SearchColumns: []string{"name", "description"},
		TTL:           ttl,
	})
}

// NewCartRepository serves a shopper's cart. All operations are scoped to
// the owning user so one shopper's writes never sweep another's cached cart.
func NewCartRepository(db *gorm.DB, store cache.Store, ttl time.Duration) (*Repository[models.Cart], error) {
	return New[models.Cart](db, store, Config{
		Entity:      "carts",
		IDColumn:    "cart_id",
		ScopeColumn: "user_id",
		TTL:         ttl,
	})
}

// NewOrderRepository serves a shopper's order history.
func NewOrderRepository(db *gorm.DB, store cache.Store, ttl time.Duration) (*Repository[models.Order], error) {
	return New[models.Order](db, store, Config{
		Entity:        "orders",
		IDColumn:      "order_id",
		ScopeColumn:   "user_id",
		SearchColumns: []string{"status"},
		TTL:           ttl,
	})
}

// NewPaymentRepository serves a shopper's payment records.
func NewPaymentRepository(db *gorm.DB, store cache.Store, ttl time.Duration) (*Repository[models.Payment], error) {
	return New[models.Payment](db, store, Config{
		Entity:        "payments",
		IDColumn:      "payment_id",
		ScopeColumn:   "user_id",
		SearchColumns: []string{"status", "provider"},
		TTL:           ttl,
	})
}

// NewWishlistRepository serves a shopper's wishlist.
func NewWishlistRepository(db *gorm.DB, store cache.Store, ttl time.Duration) (*Repository[models.Wishlist], error) {
	return New[models.Wishlist](db, store, Config{
		Entity:      "wishlists",
		IDColumn:    "wishlist_id",
		ScopeColumn: "user_id",
		TTL:         ttl,
	})
}

// NewAddressRepository serves a shopper's delivery addresses.
func NewAddressRepository(db *gorm.DB, store cache.Store, ttl time.Duration) (*Repository[models.Address], error) {
	return New[models.Address](db, store, Config{
		Entity:        "addresses",
		IDColumn:      "address_id",
		ScopeColumn:   "user_id",
		SearchColumns: []string{"city", "state", "pincode"},
		TTL:           ttl,
	})
}

// NewContactRepository serves inbound customer messages.
func NewContactRepository(db *gorm.DB, store cache.Store, ttl time.Duration) (*Repository[models.Contact], error) {
	return New[models.Contact](db, store, Config{
		Entity:        "contacts",
		IDColumn:      "contact_id",
		SearchColumns: []string{"name", "email", "subject"},
		TTL:           ttl,
	})
}
