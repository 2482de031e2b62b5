package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/princekumarofficial/media-migration/internal/types"
	"github.com/princekumarofficial/media-migration/internal/types/media"
)

// rekey clones each record under a new id, then deletes the original.
// records must be in created_at ascending order.
func (e *Engine) rekey(ctx context.Context, records []media.MediaRecord, rep *report) types.IdentifierMap {
	mapping := make(types.IdentifierMap, len(records))

	for i, old := range records {
		newID := e.newID()
		rec := old.Clone(newID)
		if e.renumber {
			assignDisplayOrder(&rec, i+1)
		}

		if err := e.store.InsertMedia(ctx, rec); err != nil {
			rep.fail(fmt.Sprintf("Failed to migrate %q: %v", old.Title, err))
			e.logger.Error("Failed to insert re-keyed media",
				slog.String("old_id", old.ID),
				slog.String("title", old.Title),
				slog.String("error", err.Error()))
			continue
		}

		mapping[old.ID] = newID
		rep.mapped(old.ID, newID)

		// The new row stays authoritative even if the old one lingers.
		if err := e.store.DeleteMedia(ctx, old.ID); err != nil {
			rep.warn(fmt.Sprintf("Could not clean up old record %s (%q): %v", old.ID, old.Title, err))
			e.logger.Warn("Could not clean up old media record",
				slog.String("old_id", old.ID),
				slog.String("new_id", newID),
				slog.String("error", err.Error()))
		}
	}

	e.logger.Info("Re-keyed media records",
		slog.Int("total", len(records)),
		slog.Int("migrated", len(mapping)))

	return mapping
}

// assignDisplayOrder sets display_order to the record's 1-based position in the run.
func assignDisplayOrder(rec *media.MediaRecord, position int) {
	rec.DisplayOrder = position
}
