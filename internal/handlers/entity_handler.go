package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grocerylab/grocery-api/internal/middleware"
	"github.com/grocerylab/grocery-api/internal/repository"
	appErrors "github.com/grocerylab/grocery-api/pkg/errors"
	"github.com/grocerylab/grocery-api/pkg/response"
)

// EntityHandler exposes the read-through repository of one entity over HTTP.
// Scoped handlers derive the scope from the authenticated shopper; unscoped
// ones serve the shared catalogue.
type EntityHandler[T any] struct {
	repo   *repository.Repository[T]
	scoped bool

	// decodeCreate builds a new record from the request body. The owning
	// user id is zero for unscoped entities.
	decodeCreate func(c *gin.Context, userID uint) (*T, error)
	// decodePatch builds the sparse update map from the request body.
	// Only fields present in the payload appear in the map, so zero
	// values update like any other value.
	decodePatch func(c *gin.Context) (map[string]any, error)
}

// NewEntityHandler wires an EntityHandler from its repository and codecs.
func NewEntityHandler[T any](
	repo *repository.Repository[T],
	scoped bool,
	decodeCreate func(c *gin.Context, userID uint) (*T, error),
	decodePatch func(c *gin.Context) (map[string]any, error),
) *EntityHandler[T] {
	return &EntityHandler[T]{
		repo:         repo,
		scoped:       scoped,
		decodeCreate: decodeCreate,
		decodePatch:  decodePatch,
	}
}

func (h *EntityHandler[T]) scopeID(c *gin.Context) (uint, bool) {
	if !h.scoped {
		return 0, true
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return 0, false
	}
	return userID, true
}

// List handles GET /<entity>.
func (h *EntityHandler[T]) List(c *gin.Context) {
	scopeID, ok := h.scopeID(c)
	if !ok {
		return
	}

	opts := parseListQuery(c)

	records, err := h.repo.List(c.Request.Context(), scopeID, opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	count, err := h.repo.Count(c.Request.Context(), scopeID, opts.SearchKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, records, &response.Meta{
		Skip:  opts.Skip,
		Limit: opts.Limit,
		Count: int(count),
	})
}

// Get handles GET /<entity>/:id.
func (h *EntityHandler[T]) Get(c *gin.Context) {
	scopeID, ok := h.scopeID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), scopeID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, record)
}

// Create handles POST /<entity>.
func (h *EntityHandler[T]) Create(c *gin.Context) {
	scopeID, ok := h.scopeID(c)
	if !ok {
		return
	}

	record, err := h.decodeCreate(c, scopeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if record == nil {
		// decodeCreate already wrote the validation response.
		return
	}

	if err := h.repo.Create(c.Request.Context(), scopeID, record); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, record)
}

// Update handles PATCH /<entity>/:id.
func (h *EntityHandler[T]) Update(c *gin.Context) {
	scopeID, ok := h.scopeID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	patch, err := h.decodePatch(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if patch == nil {
		return
	}

	if err := h.repo.Update(c.Request.Context(), scopeID, id, patch); err != nil {
		response.Error(c, err)
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), scopeID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// Delete handles DELETE /<entity>/:id.
func (h *EntityHandler[T]) Delete(c *gin.Context) {
	scopeID, ok := h.scopeID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), scopeID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
