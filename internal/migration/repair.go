package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/princekumarofficial/media-migration/internal/ids"
	"github.com/princekumarofficial/media-migration/internal/types"
)

// repair runs sentinel cleanup, format validation and remapping in that order.
// A non-nil error means a slide fetch failed and the run cannot continue.
func (e *Engine) repair(ctx context.Context, mapping types.IdentifierMap, rep *report) error {
	e.clearSentinels(ctx, rep)

	if err := e.clearMalformed(ctx, rep); err != nil {
		return err
	}

	return e.remap(ctx, mapping, rep)
}

func (e *Engine) clearSentinels(ctx context.Context, rep *report) {
	for _, value := range ids.Sentinels {
		n, err := e.store.ClearSlideMediaID(ctx, value)
		if err != nil {
			rep.fail(fmt.Sprintf("Failed to clear slides with media_id %q: %v", value, err))
			e.logger.Error("Failed to clear sentinel media references",
				slog.String("value", value),
				slog.String("error", err.Error()))
			continue
		}
		if n > 0 {
			rep.cleared(int(n))
			e.logger.Info("Cleared sentinel media references",
				slog.String("value", value),
				slog.Int64("slides", n))
		}
	}
}

// clearMalformed nulls every reference that is not a canonical id. It never consults the mapping.
func (e *Engine) clearMalformed(ctx context.Context, rep *report) error {
	slides, err := e.store.ListSlidesWithMedia(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch slides for validation: %w", err)
	}

	for _, sl := range slides {
		shape := ids.Classify(sl.MediaID)
		if shape == ids.ShapeNull || shape == ids.ShapeCanonical {
			continue
		}

		if err := e.store.SetSlideMediaID(ctx, sl.ID, nil); err != nil {
			rep.fail(fmt.Sprintf("Failed to clear invalid media_id on slide %s: %v", sl.ID, err))
			e.logger.Error("Failed to clear invalid media reference",
				slog.String("slide_id", sl.ID),
				slog.String("error", err.Error()))
			continue
		}

		rep.cleared(1)
		e.logger.Info("Cleared invalid media reference",
			slog.String("slide_id", sl.ID),
			slog.String("media_id", *sl.MediaID),
			slog.String("shape", shape.String()))
	}

	return nil
}

// remap rewrites mapped references and nulls the rest. References already
// holding an id produced by this mapping are left alone.
func (e *Engine) remap(ctx context.Context, mapping types.IdentifierMap, rep *report) error {
	slides, err := e.store.ListSlidesWithMedia(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch slides for remapping: %w", err)
	}

	targets := make(map[string]struct{}, len(mapping))
	for _, newID := range mapping {
		targets[newID] = struct{}{}
	}

	for _, sl := range slides {
		oldID := *sl.MediaID

		if newID, ok := mapping[oldID]; ok {
			if err := e.store.SetSlideMediaID(ctx, sl.ID, &newID); err != nil {
				rep.fail(fmt.Sprintf("Failed to update slide %s: %v", sl.ID, err))
				e.logger.Error("Failed to remap slide media reference",
					slog.String("slide_id", sl.ID),
					slog.String("old_id", oldID),
					slog.String("new_id", newID),
					slog.String("error", err.Error()))
				continue
			}
			rep.updated()
			continue
		}

		if _, ok := targets[oldID]; ok {
			continue
		}

		if err := e.store.SetSlideMediaID(ctx, sl.ID, nil); err != nil {
			rep.fail(fmt.Sprintf("Failed to clear broken reference on slide %s: %v", sl.ID, err))
			e.logger.Error("Failed to clear broken media reference",
				slog.String("slide_id", sl.ID),
				slog.String("media_id", oldID),
				slog.String("error", err.Error()))
			continue
		}

		rep.cleared(1)
		rep.warn(fmt.Sprintf("Slide %s had broken media reference %s; cleared", sl.ID, oldID))
		e.logger.Warn("Cleared broken media reference",
			slog.String("slide_id", sl.ID),
			slog.String("media_id", oldID))
	}

	return nil
}
