package jobs

import (
	"context"
	"log"
	"time"

	"nimbusdrive/services"
)

type TrashCleaner struct {
	trashService *services.TrashService
	interval     time.Duration
	logger       *log.Logger
}

func NewTrashCleaner(trashService *services.TrashService, interval time.Duration) *TrashCleaner {
	return &TrashCleaner{
		trashService: trashService,
		interval:     interval,
		logger:       log.New(log.Writer(), "[TRASH_CLEANER] ", log.LstdFlags),
	}
}

// Start runs the purge loop until ctx is cancelled. The first sweep happens
// immediately, then one per interval.
func (tc *TrashCleaner) Start(ctx context.Context) {
	tc.logger.Println("Starting trash cleaner job...")

	tc.runCleanup(ctx)

	ticker := time.NewTicker(tc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			tc.logger.Println("Trash cleaner stopped")
			return
		case <-ticker.C:
			tc.runCleanup(ctx)
		}
	}
}

func (tc *TrashCleaner) runCleanup(parent context.Context) {
	tc.logger.Println("Running trash cleanup...")

	ctx, cancel := context.WithTimeout(parent, 30*time.Minute)
	defer cancel()

	purged, err := tc.trashService.PurgeExpired(ctx)
	if err != nil {
		tc.logger.Printf("Trash cleanup failed: %v", err)
		return
	}
	tc.logger.Printf("Trash cleanup completed, purged %d items", purged)
}
