package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/princekumarofficial/media-migration/internal/http/middleware"
	engine "github.com/princekumarofficial/media-migration/internal/migration"
	"github.com/princekumarofficial/media-migration/internal/storage/memory"
	"github.com/princekumarofficial/media-migration/internal/types"
	"github.com/princekumarofficial/media-migration/internal/types/media"
)

const legacyID = "11111111-1111-4111-8111-111111111111"

type memoryHistory struct {
	run     types.RunRecord
	ok      bool
	saveErr error
}

func (h *memoryHistory) SaveLastRun(ctx context.Context, run types.RunRecord) error {
	if h.saveErr != nil {
		return h.saveErr
	}
	h.run, h.ok = run, true
	return nil
}

func (h *memoryHistory) GetLastRun(ctx context.Context) (types.RunRecord, bool, error) {
	return h.run, h.ok, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newEngine(store *memory.Store) *engine.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return engine.New(store, engine.WithLogger(logger))
}

func seededStore() *memory.Store {
	store := memory.New()
	mediaID := legacyID
	store.Seed(
		[]media.MediaRecord{{
			ID:          legacyID,
			Title:       "concert",
			StoragePath: "gallery/concert.jpg",
			MediaKind:   media.KindImage,
			CreatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		}},
		[]types.Slide{{ID: "s1", Title: "Welcome", MediaID: &mediaID}},
	)
	return store
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return env
}

func postMigrate(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/media/migrate", bytes.NewBufferString(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, "admin-1"))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestMigrate_RequiresConfirmation(t *testing.T) {
	store := seededStore()
	history := &memoryHistory{}
	handler := Migrate(newEngine(store), history)

	for _, body := range []string{"", `{}`, `{"confirm":false}`, `not json`} {
		rec := postMigrate(handler, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Body %q: expected 400, got %d", body, rec.Code)
		}
	}

	if _, ok := store.Media()[legacyID]; !ok {
		t.Fatal("Rejected request must not migrate anything")
	}
	if history.ok {
		t.Fatal("Rejected request must not record a run")
	}
}

func TestMigrate_Success(t *testing.T) {
	store := seededStore()
	history := &memoryHistory{}
	rec := postMigrate(Migrate(newEngine(store), history), `{"confirm":true}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	env := decode(t, rec)
	var result types.MigrationResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if !result.Success || result.MigratedCount != 1 || result.UpdatedSlides != 1 {
		t.Fatalf("Unexpected result: %+v", result)
	}

	newID := result.IDMapping[legacyID]
	got, ok := store.Slide("s1")
	if !ok || got.MediaID == nil || *got.MediaID != newID {
		t.Fatalf("Expected slide to reference %s, got %v", newID, got.MediaID)
	}

	if !history.ok || history.run.StartedBy != "admin-1" || history.run.Result.IDMapping[legacyID] != newID {
		t.Fatalf("Expected run to be recorded, got %+v", history.run)
	}
}

func TestMigrate_FailureReturns500WithPayload(t *testing.T) {
	store := memory.New()
	store.FailListMedia = errors.New("connection refused")

	history := &memoryHistory{saveErr: errors.New("redis down")}
	rec := postMigrate(Migrate(newEngine(store), history), `{"confirm":true}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}

	env := decode(t, rec)
	if env.Status != "error" || env.Error == "" {
		t.Fatalf("Expected error envelope, got %+v", env)
	}

	var result types.MigrationResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Success || len(result.Errors) != 1 {
		t.Fatalf("Expected a single run-level error, got %+v", result)
	}
}

// cancellableStore fails every call on a cancelled context the way database/sql does
type cancellableStore struct {
	*memory.Store
	afterDelete func()
}

func (s *cancellableStore) ListMedia(ctx context.Context) ([]media.MediaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Store.ListMedia(ctx)
}

func (s *cancellableStore) InsertMedia(ctx context.Context, rec media.MediaRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.InsertMedia(ctx, rec)
}

func (s *cancellableStore) DeleteMedia(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.Store.DeleteMedia(ctx, id)
	if s.afterDelete != nil {
		s.afterDelete()
	}
	return err
}

func (s *cancellableStore) MediaExists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.Store.MediaExists(ctx, id)
}

func (s *cancellableStore) ListSlidesWithMedia(ctx context.Context) ([]types.Slide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Store.ListSlidesWithMedia(ctx)
}

func (s *cancellableStore) ClearSlideMediaID(ctx context.Context, value string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.Store.ClearSlideMediaID(ctx, value)
}

func (s *cancellableStore) SetSlideMediaID(ctx context.Context, slideID string, mediaID *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.SetSlideMediaID(ctx, slideID, mediaID)
}

type contextCheckingHistory struct {
	memoryHistory
}

func (h *contextCheckingHistory) SaveLastRun(ctx context.Context, run types.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.memoryHistory.SaveLastRun(ctx, run)
}

func TestMigrate_CompletesAfterClientDisconnect(t *testing.T) {
	inner := seededStore()
	second := "22222222-2222-4222-8222-222222222222"
	inner.Seed([]media.MediaRecord{{
		ID:        second,
		Title:     "retreat",
		MediaKind: media.KindImage,
		CreatedAt: time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC),
	}}, nil)

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), middleware.UserIDKey, "admin-1"))
	defer cancel()
	store := &cancellableStore{Store: inner, afterDelete: cancel}
	history := &contextCheckingHistory{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Migrate(engine.New(store, engine.WithLogger(logger)), history)

	req := httptest.NewRequest(http.MethodPost, "/admin/media/migrate", bytes.NewBufferString(`{"confirm":true}`))
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	live := inner.Media()
	if len(live) != 2 {
		t.Fatalf("Expected 2 live media records, got %d", len(live))
	}
	for _, oldID := range []string{legacyID, second} {
		if _, ok := live[oldID]; ok {
			t.Fatalf("Old record %s still present", oldID)
		}
	}

	got, ok := inner.Slide("s1")
	if !ok || got.MediaID == nil {
		t.Fatal("Expected slide s1 to keep a media reference")
	}
	if _, ok := live[*got.MediaID]; !ok {
		t.Fatalf("Slide s1 references missing media %s", *got.MediaID)
	}

	if !history.ok || !history.run.Result.Success {
		t.Fatalf("Expected the run to be recorded, got %+v", history.run)
	}
}

func TestReport(t *testing.T) {
	store := seededStore()
	req := httptest.NewRequest(http.MethodGet, "/admin/media/migration-report", nil)
	rec := httptest.NewRecorder()
	Report(newEngine(store))(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var summary types.AuditSummary
	if err := json.Unmarshal(decode(t, rec).Data, &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.TotalMedia != 1 || summary.IndexedMedia != 1 || summary.ValidSlideReferences != 1 {
		t.Fatalf("Unexpected summary: %+v", summary)
	}
}

type failingRunner struct{}

func (failingRunner) RunMigration(ctx context.Context) types.MigrationResult {
	return types.MigrationResult{}
}

func (failingRunner) GetMigrationReport(ctx context.Context) (types.AuditSummary, error) {
	return types.AuditSummary{}, errors.New("database unavailable")
}

func TestReport_Failure(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/media/migration-report", nil)
	rec := httptest.NewRecorder()
	Report(failingRunner{})(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if env := decode(t, rec); env.Error != "database unavailable" {
		t.Fatalf("Unexpected error message %q", env.Error)
	}
}

func TestLastRun(t *testing.T) {
	history := &memoryHistory{}

	req := httptest.NewRequest(http.MethodGet, "/admin/media/migration/last-run", nil)
	rec := httptest.NewRecorder()
	LastRun(history)(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 before any run, got %d", rec.Code)
	}

	postMigrate(Migrate(newEngine(seededStore()), history), `{"confirm":true}`)

	rec = httptest.NewRecorder()
	LastRun(history)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var run types.RunRecord
	if err := json.Unmarshal(decode(t, rec).Data, &run); err != nil {
		t.Fatalf("Failed to decode run: %v", err)
	}
	if !run.Result.Success || run.Result.MigratedCount != 1 {
		t.Fatalf("Unexpected run: %+v", run)
	}
}
