package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/grocerylab/grocery-api/internal/models"
	apperrors "github.com/grocerylab/grocery-api/pkg/errors"
)

// The update requests use pointer fields so a sparse patch can tell "field
// omitted" apart from "field set to its zero value": a stock of 0 or an
// unfeatured flag are legitimate updates.

// --- products ---

type productCreateRequest struct {
	Name           string         `json:"name" validate:"required"`
	Price          float64        `json:"price" validate:"gte=0"`
	Description    string         `json:"description"`
	Specifications datatypes.JSON `json:"specifications"`
	Image          string         `json:"image"`
	Stock          int            `json:"stock" validate:"gte=0"`
	IsFeatured     bool           `json:"is_featured"`
}

func decodeProductCreate(c *gin.Context, _ uint) (*models.Product, error) {
	var req productCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}
	return &models.Product{
		Name:           req.Name,
		Price:          req.Price,
		Description:    req.Description,
		Specifications: req.Specifications,
		Image:          req.Image,
		Stock:          req.Stock,
		IsFeatured:     req.IsFeatured,
	}, nil
}

type productUpdateRequest struct {
	Name           *string         `json:"name"`
	Price          *float64        `json:"price"`
	Description    *string         `json:"description"`
	Specifications *datatypes.JSON `json:"specifications"`
	Image          *string         `json:"image"`
	Stock          *int            `json:"stock"`
	IsFeatured     *bool           `json:"is_featured"`
}

func decodeProductPatch(c *gin.Context) (map[string]any, error) {
	var req productUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}

	patch := map[string]any{}
	setIf(patch, "name", req.Name)
	setIf(patch, "price", req.Price)
	setIf(patch, "description", req.Description)
	setIf(patch, "specifications", req.Specifications)
	setIf(patch, "image", req.Image)
	setIf(patch, "stock", req.Stock)
	setIf(patch, "is_featured", req.IsFeatured)
	return patch, nil
}

// --- categories ---

type categoryCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func decodeCategoryCreate(c *gin.Context, _ uint) (*models.Category, error) {
	var req categoryCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}
	return &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	}, nil
}

type categoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

func decodeCategoryPatch(c *gin.Context) (map[string]any, error) {
	var req categoryUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}

	patch := map[string]any{}
	setIf(patch, "name", req.Name)
	setIf(patch, "description", req.Description)
	setIf(patch, "image", req.Image)
	return patch, nil
}

// --- carts ---

type cartCreateRequest struct {
	ProductID uint    `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	Price     float64 `json:"price" validate:"gte=0"`
}

func decodeCartCreate(c *gin.Context, userID uint) (*models.Cart, error) {
	var req cartCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return &models.Cart{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  quantity,
		Price:     req.Price,
	}, nil
}

type cartUpdateRequest struct {
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
}

func decodeCartPatch(c *gin.Context) (map[string]any, error) {
	var req cartUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}

	patch := map[string]any{}
	setIf(patch, "quantity", req.Quantity)
	setIf(patch, "price", req.Price)
	return patch, nil
}

// --- orders ---

type orderCreateRequest struct {
	AddressID uint           `json:"address_id" validate:"required"`
	Amount    float64        `json:"amount" validate:"gte=0"`
	Items     datatypes.JSON `json:"items"`
}

func decodeOrderCreate(c *gin.Context, userID uint) (*models.Order, error) {
	var req orderCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}
	return &models.Order{
		UserID:    userID,
		AddressID: req.AddressID,
		Amount:    req.Amount,
		Items:     req.Items,
	}, nil
}

type orderUpdateRequest struct {
	AddressID *uint    `json:"address_id"`
	Status    *string  `json:"status"`
	Amount    *float64 `json:"amount"`
}

func decodeOrderPatch(c *gin.Context) (map[string]any, error) {
	var req orderUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}

	patch := map[string]any{}
	setIf(patch, "address_id", req.AddressID)
	setIf(patch, "status", req.Status)
	setIf(patch, "amount", req.Amount)
	return patch, nil
}

// --- payments ---

type paymentCreateRequest struct {
	OrderID  uint           `json:"order_id" validate:"required"`
	Provider string         `json:"provider"`
	Amount   float64        `json:"amount" validate:"gte=0"`
	Metadata datatypes.JSON `json:"metadata"`
}

func decodePaymentCreate(c *gin.Context, userID uint) (*models.Payment, error) {
	var req paymentCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}
	return &models.Payment{
		UserID:   userID,
		OrderID:  req.OrderID,
		Provider: req.Provider,
		Amount:   req.Amount,
		Metadata: req.Metadata,
	}, nil
}

type paymentUpdateRequest struct {
	Status   *string         `json:"status"`
	Metadata *datatypes.JSON `json:"metadata"`
}

func decodePaymentPatch(c *gin.Context) (map[string]any, error) {
	var req paymentUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}

	patch := map[string]any{}
	setIf(patch, "status", req.Status)
	setIf(patch, "metadata", req.Metadata)
	return patch, nil
}

// --- wishlists ---

type wishlistCreateRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
}

func decodeWishlistCreate(c *gin.Context, userID uint) (*models.Wishlist, error) {
	var req wishlistCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}
	return &models.Wishlist{UserID: userID, ProductID: req.ProductID}, nil
}

func decodeWishlistPatch(c *gin.Context) (map[string]any, error) {
	var req wishlistCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}
	return map[string]any{"product_id": req.ProductID}, nil
}

// --- addresses ---

type addressCreateRequest struct {
	AddressType  string `json:"address_type"`
	AddressLine1 string `json:"address_line_1" validate:"required"`
	AddressLine2 string `json:"address_line_2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Pincode      string `json:"pincode"`
	Mobile       string `json:"mobile"`
}

func decodeAddressCreate(c *gin.Context, userID uint) (*models.Address, error) {
	var req addressCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}
	return &models.Address{
		UserID:       userID,
		AddressType:  req.AddressType,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		Pincode:      req.Pincode,
		Mobile:       req.Mobile,
	}, nil
}

type addressUpdateRequest struct {
	AddressType  *string `json:"address_type"`
	AddressLine1 *string `json:"address_line_1"`
	AddressLine2 *string `json:"address_line_2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Country      *string `json:"country"`
	Pincode      *string `json:"pincode"`
	Mobile       *string `json:"mobile"`
}

func decodeAddressPatch(c *gin.Context) (map[string]any, error) {
	var req addressUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}

	patch := map[string]any{}
	setIf(patch, "address_type", req.AddressType)
	setIf(patch, "address_line_1", req.AddressLine1)
	setIf(patch, "address_line_2", req.AddressLine2)
	setIf(patch, "city", req.City)
	setIf(patch, "state", req.State)
	setIf(patch, "country", req.Country)
	setIf(patch, "pincode", req.Pincode)
	setIf(patch, "mobile", req.Mobile)
	return patch, nil
}

// --- contacts ---

type contactCreateRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

func decodeContactCreate(c *gin.Context, _ uint) (*models.Contact, error) {
	var req contactCreateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}
	return &models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}, nil
}

type contactUpdateRequest struct {
	Subject *string `json:"subject"`
	Message *string `json:"message"`
}

func decodeContactPatch(c *gin.Context) (map[string]any, error) {
	var req contactUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}

	patch := map[string]any{}
	setIf(patch, "subject", req.Subject)
	setIf(patch, "message", req.Message)
	return patch, nil
}

// --- users ---

// Accounts are only created through registration so the OTP proof and
// password hashing stay in one place.
func decodeUserCreate(_ *gin.Context, _ uint) (*models.User, error) {
	return nil, apperrors.NewBadRequest("accounts are created through registration")
}

type userUpdateRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Mobile *string `json:"mobile"`
}

// decodeUserPatch covers profile fields only; password changes go through
// the OTP-protected reset flow.
func decodeUserPatch(c *gin.Context) (map[string]any, error) {
	var req userUpdateRequest
	if !bindAndValidate(c, &req) {
		return nil, nil
	}

	if req.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &normalized
	}

	patch := map[string]any{}
	setIf(patch, "name", req.Name)
	setIf(patch, "email", req.Email)
	setIf(patch, "mobile", req.Mobile)
	return patch, nil
}

func setIf[T any](patch map[string]any, column string, value *T) {
	if value != nil {
		patch[column] = *value
	}
}
