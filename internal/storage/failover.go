package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"cabanas/internal/domain"
	"cabanas/internal/models"

	"github.com/rs/zerolog"
)

// retryInterval bounds how often a downed primary is probed again.
const retryInterval = time.Minute

// Failover wraps a primary and a fallback Persister. After a primary error
// it routes traffic to the fallback and retries the primary at most once a
// minute.
type Failover struct {
	primary  domain.Persister
	fallback domain.Persister
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailover(primary, fallback domain.Persister, logger *zerolog.Logger) *Failover {
	return &Failover{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *Failover) Load(ctx context.Context) ([]models.Booking, string, error) {
	if f.tryPrimary() {
		bookings, notes, err := f.primary.Load(ctx)
		if err == nil {
			f.markUp()
			return bookings, notes, nil
		}
		f.markDown(err)
	}
	return f.fallback.Load(ctx)
}

func (f *Failover) Save(ctx context.Context, bookings []models.Booking, notes string) error {
	if f.tryPrimary() {
		err := f.primary.Save(ctx, bookings, notes)
		if err == nil {
			f.markUp()
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.Save(ctx, bookings, notes)
}

func (f *Failover) tryPrimary() bool {
	if !f.isDown.Load() {
		return true
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastCheck) > retryInterval {
		f.lastCheck = time.Now()
		return true
	}
	return false
}

func (f *Failover) markUp() {
	f.isDown.Store(false)
}

func (f *Failover) markDown(err error) {
	f.logger.Error().Err(err).Msg("primary persister failed, falling back")
	f.isDown.Store(true)
	f.mu.Lock()
	f.lastCheck = time.Now()
	f.mu.Unlock()
}
