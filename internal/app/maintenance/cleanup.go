package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/grocerylab/grocery-api/internal/cache"
	"github.com/grocerylab/grocery-api/pkg/logger"
)

const defaultPurgeSpec = "@hourly"

// Cleaner runs background maintenance. Its only job today is purging expired
// rows from the database cache backend; Redis expires its keys on its own, so
// the purge job is skipped when the store is nil.
type Cleaner struct {
	store *cache.DatabaseStore
	cron  *cron.Cron
	now   func() time.Time
	log   *zap.Logger

	purgeSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithPurgeSchedule overrides the cron specification for cache purging.
func WithPurgeSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.purgeSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil store disables the purge job.
func NewCleaner(store *cache.DatabaseStore, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		store:         store,
		now:           time.Now,
		purgeSchedule: defaultPurgeSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the purge job and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.store == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.purgeSchedule, func() {
		ctx := context.Background()
		purged, err := c.store.PurgeExpired(ctx)
		if err != nil {
			c.log.Warn("cache purge failed", zap.Error(err))
			return
		}
		if purged > 0 {
			c.log.Debug("purged expired cache entries", zap.Int64("rows", purged))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all maintenance routines sequentially. Used in tests and
// during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.store != nil {
		if _, err := c.store.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
