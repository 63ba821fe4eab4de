package handlers

import (
	"github.com/grocerylab/grocery-api/internal/models"
	"github.com/grocerylab/grocery-api/internal/repository"
)

// NewUserHandler serves the account directory. Creation is rejected at the
// decode step; registration is the only way accounts come into existence.
func NewUserHandler(repo *repository.Repository[models.User]) *EntityHandler[models.User] {
	return NewEntityHandler(repo, false, decodeUserCreate, decodeUserPatch)
}

// NewProductHandler serves the shared catalogue.
func NewProductHandler(repo *repository.Repository[models.Product]) *EntityHandler[models.Product] {
	return NewEntityHandler(repo, false, decodeProductCreate, decodeProductPatch)
}

// NewCategoryHandler serves catalogue categories.
func NewCategoryHandler(repo *repository.Repository[models.Category]) *EntityHandler[models.Category] {
	return NewEntityHandler(repo, false, decodeCategoryCreate, decodeCategoryPatch)
}

// NewCartHandler serves the authenticated shopper's cart.
func NewCartHandler(repo *repository.Repository[models.Cart]) *EntityHandler[models.Cart] {
	return NewEntityHandler(repo, true, decodeCartCreate, decodeCartPatch)
}

// NewOrderHandler serves the authenticated shopper's orders.
func NewOrderHandler(repo *repository.Repository[models.Order]) *EntityHandler[models.Order] {
	return NewEntityHandler(repo, true, decodeOrderCreate, decodeOrderPatch)
}

// NewPaymentHandler serves the authenticated shopper's payments.
func NewPaymentHandler(repo *repository.Repository[models.Payment]) *EntityHandler[models.Payment] {
	return NewEntityHandler(repo, true, decodePaymentCreate, decodePaymentPatch)
}

// NewWishlistHandler serves the authenticated shopper's wishlist.
func NewWishlistHandler(repo *repository.Repository[models.Wishlist]) *EntityHandler[models.Wishlist] {
	return NewEntityHandler(repo, true, decodeWishlistCreate, decodeWishlistPatch)
}

// NewAddressHandler serves the authenticated shopper's addresses.
func NewAddressHandler(repo *repository.Repository[models.Address]) *EntityHandler[models.Address] {
	return NewEntityHandler(repo, true, decodeAddressCreate, decodeAddressPatch)
}

// NewContactHandler serves the public contact form.
func NewContactHandler(repo *repository.Repository[models.Contact]) *EntityHandler[models.Contact] {
	return NewEntityHandler(repo, false, decodeContactCreate, decodeContactPatch)
}
