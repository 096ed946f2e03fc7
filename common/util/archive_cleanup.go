package util

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sunthewhat/easy-cert-batch/internal/storage"
)

// StartArchiveCleanupJob starts a background job that deletes generated archives
// older than the retention window. Run records stay in the ledger.
func StartArchiveCleanupJob(store storage.Store, retention time.Duration) {
	if retention <= 0 {
		slog.Info("Archive cleanup job disabled")
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic occurred in archive cleanup job", "panic", r)
			}
		}()

		// Run immediately on startup to clean up any expired archives
		slog.Info("Archive cleanup job: Initial run starting")
		CleanupExpiredArchives(context.Background(), store, retention, time.Now())

		// Then run every 24 hours
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for now := range ticker.C {
			slog.Info("Archive cleanup job: Scheduled run starting")
			CleanupExpiredArchives(context.Background(), store, retention, now)
		}
	}()

	slog.Info("Archive cleanup job started successfully", "retention", retention.String())
}

// CleanupExpiredArchives removes .zip objects last modified before now-maxAge and
// returns how many were deleted.
func CleanupExpiredArchives(ctx context.Context, store storage.Store, maxAge time.Duration, now time.Time) int {
	startTime := time.Now()
	cutoff := now.Add(-maxAge)

	objects, err := store.List(ctx, "")
	if err != nil {
		slog.Error("CleanupExpiredArchives: Failed to list archives", "error", err)
		return 0
	}

	deletedCount := 0
	failedCount := 0
	for _, object := range objects {
		if !strings.HasSuffix(object.Key, ".zip") || !object.LastModified.Before(cutoff) {
			continue
		}

		if err := store.Delete(ctx, object.Key); err != nil {
			slog.Warn("CleanupExpiredArchives: Failed to delete archive", "error", err, "key", object.Key)
			failedCount++
			continue
		}
		deletedCount++
	}

	slog.Info("CleanupExpiredArchives: Completed",
		"deleted_count", deletedCount,
		"failed_count", failedCount,
		"cutoff", cutoff,
		"duration", time.Since(startTime))

	return deletedCount
}
