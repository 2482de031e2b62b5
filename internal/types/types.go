package types

import "time"

// Slide is a carousel entry that may decorate itself with a media asset.
// A nil MediaID is SQL NULL.
type Slide struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	MediaID  *string `json:"media_id"`
	Position int     `json:"position"`
}

// IdentifierMap maps old media ids to the ids they were re-keyed to during one run.
type IdentifierMap map[string]string

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// MigrationResult is the aggregate outcome of one migration run.
// Success reports that the run reached completion; Errors may still be non-empty.
type MigrationResult struct {
	Success       bool          `json:"success"`
	MigratedCount int           `json:"migratedCount"`
	UpdatedSlides int           `json:"updatedSlides"`
	ClearedSlides int           `json:"clearedSlides"`
	Errors        []string      `json:"errors"`
	Issues        []Issue       `json:"issues"`
	IDMapping     IdentifierMap `json:"idMapping"`
}

// AuditSummary is the read-only snapshot produced by the migration report.
type AuditSummary struct {
	TotalMedia            int  `json:"totalMedia"`
	IndexedMedia          int  `json:"indexedMedia"`
	BrokenSlideReferences int  `json:"brokenSlideReferences"`
	ValidSlideReferences  int  `json:"validSlideReferences"`
	MissingObjects        *int `json:"missingObjects,omitempty"`
}

type MigrateRequest struct {
	Confirm bool `json:"confirm" validate:"required"`
}

// RunRecord is a completed migration run as kept for later inspection.
type RunRecord struct {
	StartedBy  string          `json:"startedBy"`
	FinishedAt time.Time       `json:"finishedAt"`
	Result     MigrationResult `json:"result"`
}
