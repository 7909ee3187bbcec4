package service

import (
	"context"
	"time"

	"github.com/vinnymaker/stockapp/internal/indexer"
	"github.com/vinnymaker/stockapp/internal/models"
	"github.com/vinnymaker/stockapp/pkg/utils/zaplogger"
)

// DefaultRefreshInterval is the pause between two update ticks
const DefaultRefreshInterval = 60 * time.Second

// SyncEngine reconciles one fetched batch into the store
type SyncEngine interface {
	SyncBatch(exchangeCode string, batch []models.Quote) bool
}

// UpdaterService runs the periodic market data update loop. A single
// goroutine iterates all indexers and their indexes, fetches each index's
// latest batch and hands it to the sync engine. Batches for the same
// (exchange, index) are therefore serialized, adding parallelism here would
// require a per-index lock.
type UpdaterService struct {
	engine   SyncEngine
	indexers []indexer.ExchangeDataIndexer
	interval time.Duration
	stopChan chan struct{}
}

// NewUpdaterService creates a new UpdaterService. A non-positive interval
// selects the default.
func NewUpdaterService(engine SyncEngine, indexers []indexer.ExchangeDataIndexer, interval time.Duration) *UpdaterService {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &UpdaterService{
		engine:   engine,
		indexers: indexers,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the update loop until the context is cancelled or Stop is
// called. Cancellation is observed at the top of every tick, between
// indexers and while sleeping, never in the middle of a sync.
func (u *UpdaterService) Start(ctx context.Context) {
	zaplogger.Info("updater started", zaplogger.Fields{
		"indexers": len(u.indexers),
		"interval": u.interval.String(),
	})

	for {
		if u.cancelled(ctx) {
			zaplogger.Info("updater stopped")
			return
		}

		for _, ix := range u.indexers {
			if u.cancelled(ctx) {
				zaplogger.Info("updater stopped")
				return
			}
			u.syncIndexer(ctx, ix)
		}

		timer := time.NewTimer(u.interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			zaplogger.Info("updater stopped")
			return
		case <-u.stopChan:
			timer.Stop()
			zaplogger.Info("updater stopped")
			return
		}
	}
}

// Stop requests a clean shutdown of the update loop
func (u *UpdaterService) Stop() {
	close(u.stopChan)
}

func (u *UpdaterService) cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-u.stopChan:
		return true
	default:
		return false
	}
}

// syncIndexer fetches and syncs every index of one indexer. A failed fetch
// yields an empty batch and the tick moves on to the next index.
func (u *UpdaterService) syncIndexer(ctx context.Context, ix indexer.ExchangeDataIndexer) {
	exchangeCode := ix.ExchangeCode()
	for _, index := range ix.Indexes() {
		batch := ix.Fetch(ctx, index)
		if len(batch) == 0 {
			zaplogger.Warn("empty batch, sync skipped", zaplogger.Fields{
				"exchange": exchangeCode,
				"index":    index,
			})
			continue
		}

		if ok := u.engine.SyncBatch(exchangeCode, batch); ok {
			zaplogger.Info("index synced", zaplogger.Fields{
				"exchange": exchangeCode,
				"index":    index,
				"items":    len(batch),
			})
		} else {
			zaplogger.Error("index sync failed", zaplogger.Fields{
				"exchange": exchangeCode,
				"index":    index,
			})
		}
	}
}
