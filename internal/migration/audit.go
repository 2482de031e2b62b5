package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/princekumarofficial/media-migration/internal/types"
)

// GetMigrationReport counts media and slide references without mutating anything.
// Each slide reference is probed against the media table; nothing is cached.
func (e *Engine) GetMigrationReport(ctx context.Context) (types.AuditSummary, error) {
	var summary types.AuditSummary
	startTime := time.Now()

	records, err := e.store.ListMedia(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch media records: %w", err)
	}

	summary.TotalMedia = len(records)
	for _, rec := range records {
		if e.indexed(rec.ID) {
			summary.IndexedMedia++
		}
	}

	slides, err := e.store.ListSlidesWithMedia(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch slides: %w", err)
	}

	for _, sl := range slides {
		exists, err := e.store.MediaExists(ctx, *sl.MediaID)
		if err != nil {
			return summary, fmt.Errorf("failed to probe media for slide %s: %w", sl.ID, err)
		}
		if exists {
			summary.ValidSlideReferences++
		} else {
			summary.BrokenSlideReferences++
		}
	}

	if e.objects != nil {
		missing := 0
		for _, rec := range records {
			ok, err := e.objects.ObjectExists(ctx, rec.StoragePath)
			if err != nil {
				return summary, fmt.Errorf("failed to check object for media %s: %w", rec.ID, err)
			}
			if !ok {
				missing++
			}
		}
		summary.MissingObjects = &missing
	}

	observeAudit(summary)

	e.logger.Info("Computed media migration report",
		slog.Int("total_media", summary.TotalMedia),
		slog.Int("indexed_media", summary.IndexedMedia),
		slog.Int("valid_references", summary.ValidSlideReferences),
		slog.Int("broken_references", summary.BrokenSlideReferences),
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()))

	return summary, nil
}
