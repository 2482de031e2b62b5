package migration

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/princekumarofficial/media-migration/internal/http/middleware"
	"github.com/princekumarofficial/media-migration/internal/types"
	"github.com/princekumarofficial/media-migration/internal/utils/response"
)

// Runner is the part of the migration engine the admin handlers drive
type Runner interface {
	RunMigration(ctx context.Context) types.MigrationResult
	GetMigrationReport(ctx context.Context) (types.AuditSummary, error)
}

// RunHistory stores the last completed run
type RunHistory interface {
	SaveLastRun(ctx context.Context, run types.RunRecord) error
	GetLastRun(ctx context.Context) (types.RunRecord, bool, error)
}

// Migrate re-keys every media record and repairs slide references
// @Summary Run the media identifier migration
// @Description Re-keys all media records and repairs slide references. Not idempotent.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body types.MigrateRequest true "Must carry confirm=true"
// @Success 200 {object} response.Response "Migration completed"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 403 {object} response.Response "Forbidden"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Failure 500 {object} response.Response "Migration failed"
// @Security BearerAuth
// @Router /admin/media/migrate [post]
func Migrate(runner Runner, history RunHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.GetUserIDFromContext(r.Context())

		var req types.MigrateRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("request body cannot be empty")))
			return
		} else if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		validate := validator.New()
		err = validate.Struct(req)
		if err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		slog.Info("media migration requested", slog.String("user_id", userID))

		// A run must finish once started, even if the client goes away.
		ctx := context.WithoutCancel(r.Context())

		result := runner.RunMigration(ctx)

		run := types.RunRecord{StartedBy: userID, FinishedAt: time.Now().UTC(), Result: result}
		if err := history.SaveLastRun(ctx, run); err != nil {
			slog.Warn("failed to store migration run", slog.String("error", err.Error()))
		}
		if !result.Success {
			msg := "migration failed"
			if len(result.Errors) > 0 {
				msg = result.Errors[len(result.Errors)-1]
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.Failed(msg, result))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Migration completed", result))
	}
}

// Report returns the read-only migration audit
// @Summary Get media migration report
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response "Audit summary"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /admin/media/migration-report [get]
func Report(runner Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := runner.GetMigrationReport(r.Context())
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Migration report generated", summary))
	}
}

// LastRun returns the most recent migration result
// @Summary Get the last media migration run
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response "Last run"
// @Failure 404 {object} response.Response "No run recorded"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /admin/media/migration/last-run [get]
func LastRun(history RunHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok, err := history.GetLastRun(r.Context())
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("no migration run recorded")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Last migration run", run))
	}
}
