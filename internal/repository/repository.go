package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/grocerylab/grocery-api/internal/cache"
	apperrors "github.com/grocerylab/grocery-api/pkg/errors"
	"github.com/grocerylab/grocery-api/pkg/logger"
	"github.com/grocerylab/grocery-api/pkg/metrics"
	"go.uber.org/zap"
)

// DefaultLimit is applied when a list request does not specify a page size.
const DefaultLimit = 10

// Config describes how an entity maps onto the database and the cache key
// space.
type Config struct {
	// Entity is the cache key segment, e.g. "products".
	Entity string
	// IDColumn is the primary key column name, e.g. "product_id".
	IDColumn string
	// SearchColumns are ORed together with LIKE when a search key is given.
	SearchColumns []string
	// ScopeColumn, when set, restricts every operation to the owning scope
	// (e.g. "user_id" for carts). Zero scope means unscoped.
	ScopeColumn string
	// TTL overrides the cache expiry for this entity.
	TTL time.Duration
}

// ListOptions shapes a collection read.
type ListOptions struct {
	SearchKey string
	Skip      int
	Limit     int
	Select    []string
}

// Repository provides read-through cached CRUD for a single entity. Reads
// consult the cache first and fall back to the database, populating the cache
// on the way out. Writes go straight to the database and then sweep every
// cached key for the entity.
type Repository[T any] struct {
	db    *gorm.DB
	cache cache.Store
	cfg   Config
}

// New constructs a repository for the entity described by cfg.
func New[T any](db *gorm.DB, store cache.Store, cfg Config) (*Repository[T], error) {
	if db == nil {
		return nil, errors.New("repository: db is required")
	}
	if store == nil {
		return nil, errors.New("repository: cache store is required")
	}
	if cfg.Entity == "" {
		return nil, errors.New("repository: entity name is required")
	}
	if cfg.IDColumn == "" {
		return nil, errors.New("repository: id column is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = cache.DefaultTTL
	}
	return &Repository[T]{db: db, cache: store, cfg: cfg}, nil
}

// Entity returns the entity's cache key segment.
func (r *Repository[T]) Entity() string { return r.cfg.Entity }

// List returns a page of records matching opts, serving from cache when a
// previous identical query populated it.
func (r *Repository[T]) List(ctx context.Context, scopeID uint, opts ListOptions) ([]T, error) {
	if r == nil {
		return nil, errors.New("repository: not initialised")
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}

	filters := cache.ListFilters{
		SearchKey: opts.SearchKey,
		Skip:      opts.Skip,
		Limit:     opts.Limit,
		Select:    opts.Select,
	}
	key := cache.ListKey(r.cfg.Entity, scopeID, filters)

	if records, ok := r.readCached(ctx, key); ok {
		return records, nil
	}

	query := r.liveQuery(ctx, scopeID)
	if opts.SearchKey != "" && len(r.cfg.SearchColumns) > 0 {
		query = query.Where(r.searchClause(), r.searchArgs(opts.SearchKey)...)
	}
	if len(opts.Select) > 0 {
		query = query.Select(opts.Select)
	}

	// A stable order keeps pagination deterministic; identical queries must
	// produce identical pages so cached and live reads agree.
	var records []T
	if err := query.Order(r.cfg.IDColumn).Offset(opts.Skip).Limit(opts.Limit).Find(&records).Error; err != nil {
		return nil, err
	}

	r.populate(ctx, key, records)
	return records, nil
}

// Count reports how many live records match the search key within the scope.
func (r *Repository[T]) Count(ctx context.Context, scopeID uint, searchKey string) (int64, error) {
	if r == nil {
		return 0, errors.New("repository: not initialised")
	}

	query := r.liveQuery(ctx, scopeID)
	if searchKey != "" && len(r.cfg.SearchColumns) > 0 {
		query = query.Where(r.searchClause(), r.searchArgs(searchKey)...)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetByID returns a single record, read-through cached.
func (r *Repository[T]) GetByID(ctx context.Context, scopeID uint, id uint) (*T, error) {
	if r == nil {
		return nil, errors.New("repository: not initialised")
	}

	key := cache.IDKey(r.cfg.Entity, scopeID, id)

	if cached, found, err := r.cache.Get(ctx, key); err != nil {
		logger.Warn("cache read failed, falling back to database",
			zap.String("entity", r.cfg.Entity), zap.Error(err))
	} else if found {
		var record T
		if err := json.Unmarshal(cached, &record); err == nil {
			metrics.CacheReads.WithLabelValues(r.cfg.Entity, "hit").Inc()
			return &record, nil
		}
		_ = r.cache.Delete(ctx, key)
	}
	metrics.CacheReads.WithLabelValues(r.cfg.Entity, "miss").Inc()

	var record T
	err := r.liveQuery(ctx, scopeID).
		Where(fmt.Sprintf("%s = ?", r.cfg.IDColumn), id).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(record); err == nil {
		r.setCached(ctx, key, payload)
	}
	return &record, nil
}

// Create inserts the record and invalidates every cached key for the entity
// within the owning scope.
func (r *Repository[T]) Create(ctx context.Context, scopeID uint, record *T) error {
	if r == nil {
		return errors.New("repository: not initialised")
	}
	if record == nil {
		return apperrors.NewBadRequest("nothing to create")
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return err
	}

	r.invalidate(ctx, scopeID)
	return nil
}

// Update applies a sparse patch to the record in a single conditional UPDATE.
// The patch carries only fields the caller explicitly supplied, so zero
// values (empty strings, 0, false) are legitimate updates. A zero-row result
// means the record is missing or already deleted.
func (r *Repository[T]) Update(ctx context.Context, scopeID uint, id uint, patch map[string]any) error {
	if r == nil {
		return errors.New("repository: not initialised")
	}
	if len(patch) == 0 {
		return apperrors.NewBadRequest("no fields to update")
	}

	query := r.db.WithContext(ctx).Model(new(T)).
		Where(fmt.Sprintf("%s = ?", r.cfg.IDColumn), id).
		Where("is_deleted = ?", false)
	if r.cfg.ScopeColumn != "" && scopeID > 0 {
		query = query.Where(fmt.Sprintf("%s = ?", r.cfg.ScopeColumn), scopeID)
	}

	result := query.Updates(patch)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	r.invalidate(ctx, scopeID)
	return nil
}

// Delete soft-deletes the record. The row survives for audit but disappears
// from every read path.
func (r *Repository[T]) Delete(ctx context.Context, scopeID uint, id uint) error {
	return r.Update(ctx, scopeID, id, map[string]any{"is_deleted": true})
}

func (r *Repository[T]) liveQuery(ctx context.Context, scopeID uint) *gorm.DB {
	query := r.db.WithContext(ctx).Model(new(T)).Where("is_deleted = ?", false)
	if r.cfg.ScopeColumn != "" && scopeID > 0 {
		query = query.Where(fmt.Sprintf("%s = ?", r.cfg.ScopeColumn), scopeID)
	}
	return query
}

func (r *Repository[T]) searchClause() string {
	clauses := make([]string, 0, len(r.cfg.SearchColumns))
	for _, column := range r.cfg.SearchColumns {
		clauses = append(clauses, fmt.Sprintf("%s LIKE ?", column))
	}
	return strings.Join(clauses, " OR ")
}

func (r *Repository[T]) searchArgs(searchKey string) []any {
	needle := "%" + searchKey + "%"
	args := make([]any, len(r.cfg.SearchColumns))
	for i := range args {
		args[i] = needle
	}
	return args
}

func (r *Repository[T]) readCached(ctx context.Context, key string) ([]T, bool) {
	cached, found, err := r.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed, falling back to database",
			zap.String("entity", r.cfg.Entity), zap.Error(err))
		metrics.CacheReads.WithLabelValues(r.cfg.Entity, "miss").Inc()
		return nil, false
	}
	if !found {
		metrics.CacheReads.WithLabelValues(r.cfg.Entity, "miss").Inc()
		return nil, false
	}

	var records []T
	if err := json.Unmarshal(cached, &records); err != nil {
		_ = r.cache.Delete(ctx, key)
		metrics.CacheReads.WithLabelValues(r.cfg.Entity, "miss").Inc()
		return nil, false
	}

	metrics.CacheReads.WithLabelValues(r.cfg.Entity, "hit").Inc()
	return records, true
}

// populate writes a list result into the cache. Empty results are never
// cached so a later insert becomes visible immediately.
func (r *Repository[T]) populate(ctx context.Context, key string, records []T) {
	if len(records) == 0 {
		return
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return
	}
	r.setCached(ctx, key, payload)
}

// setCached is best effort: a failed Set must never fail the read that
// produced the value.
func (r *Repository[T]) setCached(ctx context.Context, key string, payload []byte) {
	if err := r.cache.Set(ctx, key, payload, r.cfg.TTL); err != nil {
		logger.Warn("cache populate failed",
			zap.String("entity", r.cfg.Entity), zap.Error(err))
	}
}

// invalidate sweeps every cached key for the entity within the scope. A
// failed sweep is logged but does not undo the committed write.
func (r *Repository[T]) invalidate(ctx context.Context, scopeID uint) {
	pattern := cache.InvalidationPattern(r.cfg.Entity, scopeID)
	if err := cache.DeleteMatching(ctx, r.cache, pattern); err != nil {
		logger.Warn("cache invalidation failed",
			zap.String("entity", r.cfg.Entity),
			zap.String("pattern", pattern), zap.Error(err))
		return
	}
	metrics.CacheInvalidations.WithLabelValues(r.cfg.Entity).Inc()
}
