package migration

import (
	"github.com/princekumarofficial/media-migration/internal/types"
)

// report accumulates counters and messages for one run.
type report struct {
	result types.MigrationResult
}

func newReport() *report {
	return &report{
		result: types.MigrationResult{
			Errors:    []string{},
			Issues:    []types.Issue{},
			IDMapping: types.IdentifierMap{},
		},
	}
}

func (r *report) add(severity types.Severity, msg string) {
	r.result.Errors = append(r.result.Errors, msg)
	r.result.Issues = append(r.result.Issues, types.Issue{Severity: severity, Message: msg})
}

func (r *report) fail(msg string) {
	r.add(types.SeverityError, msg)
}

func (r *report) warn(msg string) {
	r.add(types.SeverityWarning, msg)
}

// mapped records a successful re-key. MigratedCount always equals len(IDMapping).
func (r *report) mapped(oldID, newID string) {
	r.result.IDMapping[oldID] = newID
	r.result.MigratedCount = len(r.result.IDMapping)
}

func (r *report) updated() {
	r.result.UpdatedSlides++
}

func (r *report) cleared(n int) {
	r.result.ClearedSlides += n
}

func (r *report) complete() {
	r.result.Success = true
}

func (r *report) abort(err error) {
	r.result.Success = false
	r.fail(err.Error())
}
