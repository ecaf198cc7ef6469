package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/models"
	"github.com/soundbay/soundbay/pkg/logger"
)

const (
	defaultOrderRetention = 24 * time.Hour
	defaultCacheSpec      = "@hourly"
	defaultOrderSpec      = "@hourly"
)

// Cleaner runs background maintenance: purging expired database-backed cache
// entries and failing payment orders abandoned at the gateway.
type Cleaner struct {
	db   *gorm.DB
	cron *cron.Cron
	now  func() time.Time
	log  *zap.Logger

	orderRetention time.Duration
	cacheSchedule  string
	orderSchedule  string
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

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithOrderRetention adjusts how long a pending payment order may linger
// before being marked failed.
func WithOrderRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.orderRetention = retention
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache entry cleanup.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// WithOrderSchedule overrides the cron specification for stale order cleanup.
func WithOrderSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.orderSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(db *gorm.DB, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:             db,
		now:            time.Now,
		orderRetention: defaultOrderRetention,
		cacheSchedule:  defaultCacheSpec,
		orderSchedule:  defaultOrderSpec,
		log:            logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
		if _, err := PurgeExpiredCacheEntries(context.Background(), c.db, c.now()); err != nil {
			c.log.Warn("cache entry cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	if _, err := c.cron.AddFunc(c.orderSchedule, func() {
		if _, err := FailStaleOrders(context.Background(), c.db, c.now().Add(-c.orderRetention)); err != nil {
			c.log.Warn("stale order cleanup failed", zap.Error(err))
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

// RunOnce executes all cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.db == nil {
		return nil
	}

	var errs error
	if _, err := PurgeExpiredCacheEntries(ctx, c.db, c.now()); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := FailStaleOrders(ctx, c.db, c.now().Add(-c.orderRetention)); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// PurgeExpiredCacheEntries removes database-backed cache rows whose TTL has
// elapsed. Redis evicts on its own; the fallback store needs this sweep.
func PurgeExpiredCacheEntries(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup cache: db is required")
	}

	result := db.WithContext(ctx).
		Where("expires_at <> ? AND expires_at < ?", time.Time{}, now).
		Delete(&models.CacheEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup cache: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// FailStaleOrders marks payment orders still pending past the cutoff as
// failed so abandoned checkouts do not linger forever.
func FailStaleOrders(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup orders: db is required")
	}

	result := db.WithContext(ctx).
		Model(&models.PaymentOrder{}).
		Where("status = ? AND created_at < ?", models.OrderStatusPending, cutoff).
		Update("status", models.OrderStatusFailed)
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup orders: %w", result.Error)
	}
	return result.RowsAffected, nil
}
