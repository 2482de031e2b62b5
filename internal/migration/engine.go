// Package migration re-keys media rows to fresh canonical identifiers and
// repairs the slide references that point at them.
//
// A run is strictly sequential: every media row is re-keyed first, then slide
// references are cleaned (sentinels), validated (format) and remapped. Failures
// on single rows are recorded in the result and never stop the run. Only the
// table fetches can fail a run. Nothing is rolled back.
//
// Re-keying is not idempotent: running it twice re-keys the new ids again.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/princekumarofficial/media-migration/internal/config"
	"github.com/princekumarofficial/media-migration/internal/ids"
	"github.com/princekumarofficial/media-migration/internal/storage"
	"github.com/princekumarofficial/media-migration/internal/types"
)

// ObjectChecker reports whether a media row's blob still exists in object storage.
type ObjectChecker interface {
	ObjectExists(ctx context.Context, storagePath string) (bool, error)
}

type Engine struct {
	store    storage.Storage
	logger   *slog.Logger
	newID    func() string
	indexed  func(id string) bool
	objects  ObjectChecker
	renumber bool
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithIDGenerator replaces ids.New, mostly for deterministic tests.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// WithIndexedPredicate sets the policy the report uses to count media already in canonical shape.
func WithIndexedPredicate(pred func(id string) bool) Option {
	return func(e *Engine) {
		e.indexed = pred
	}
}

func WithObjectChecker(checker ObjectChecker) Option {
	return func(e *Engine) {
		e.objects = checker
	}
}

// WithDisplayOrderRenumbering toggles rewriting display_order from fetch position. On by default.
func WithDisplayOrderRenumbering(enabled bool) Option {
	return func(e *Engine) {
		e.renumber = enabled
	}
}

// ConfigOptions maps the migration config section onto engine options.
func ConfigOptions(cfg config.Migration) []Option {
	opts := []Option{WithDisplayOrderRenumbering(cfg.RenumberDisplayOrder)}
	if cfg.IndexedPrefix != "" {
		opts = append(opts, WithIndexedPredicate(ids.HasPrefix(cfg.IndexedPrefix)))
	}
	return opts
}

func New(store storage.Storage, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		logger:   slog.Default(),
		newID:    ids.New,
		indexed:  ids.IsCanonical,
		renumber: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("component", "media-migration"))
	return e
}

// RunMigration re-keys every media row and repairs slide references.
func (e *Engine) RunMigration(ctx context.Context) types.MigrationResult {
	startTime := time.Now()
	rep := newReport()

	e.logger.Info("Starting media id migration")

	records, err := e.store.ListMedia(ctx)
	if err != nil {
		rep.abort(fmt.Errorf("failed to fetch media records: %w", err))
		return e.finish(rep, startTime)
	}

	if len(records) == 0 {
		e.logger.Info("No media records to migrate")
		rep.complete()
		return e.finish(rep, startTime)
	}

	mapping := e.rekey(ctx, records, rep)

	if err := e.repair(ctx, mapping, rep); err != nil {
		rep.abort(err)
		return e.finish(rep, startTime)
	}

	rep.complete()
	return e.finish(rep, startTime)
}

// RepairReferences runs only the slide repair phases against mapping.
// On an already consistent table it changes nothing.
func (e *Engine) RepairReferences(ctx context.Context, mapping types.IdentifierMap) types.MigrationResult {
	rep := newReport()
	for oldID, newID := range mapping {
		rep.result.IDMapping[oldID] = newID
	}

	if err := e.repair(ctx, mapping, rep); err != nil {
		rep.abort(err)
		return rep.result
	}

	rep.complete()
	return rep.result
}

func (e *Engine) finish(rep *report, startTime time.Time) types.MigrationResult {
	duration := time.Since(startTime)
	observeRun(rep.result, duration)

	attrs := []any{
		slog.Bool("success", rep.result.Success),
		slog.Int("migrated", rep.result.MigratedCount),
		slog.Int("updated_slides", rep.result.UpdatedSlides),
		slog.Int("cleared_slides", rep.result.ClearedSlides),
		slog.Int("issues", len(rep.result.Issues)),
		slog.Int64("duration_ms", duration.Milliseconds()),
	}
	if rep.result.Success {
		e.logger.Info("Completed media id migration", attrs...)
	} else {
		e.logger.Error("Media id migration failed", attrs...)
	}

	return rep.result
}
