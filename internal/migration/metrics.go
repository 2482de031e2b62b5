package migration

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/princekumarofficial/media-migration/internal/types"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_migration_runs_total",
		Help: "Number of media id migration runs by outcome",
	}, []string{"outcome"})

	recordsMigratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_migration_records_migrated_total",
		Help: "Number of media records re-keyed",
	})

	referencesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_migration_references_total",
		Help: "Slide media references touched by migration, by action",
	}, []string{"action"})

	issuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_migration_issues_total",
		Help: "Issues recorded during migration, by severity",
	}, []string{"severity"})

	runDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "media_migration_duration_seconds",
		Help:    "Duration of media id migration runs",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	})

	auditReferences = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "media_audit_slide_references",
		Help: "Slide media references seen by the last audit, by state",
	}, []string{"state"})

	auditMedia = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "media_audit_records",
		Help: "Media records seen by the last audit, by kind",
	}, []string{"kind"})
)

func observeRun(result types.MigrationResult, duration time.Duration) {
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}

	runsTotal.WithLabelValues(outcome).Inc()
	runDurationSeconds.Observe(duration.Seconds())
	recordsMigratedTotal.Add(float64(result.MigratedCount))
	referencesTotal.WithLabelValues("updated").Add(float64(result.UpdatedSlides))
	referencesTotal.WithLabelValues("cleared").Add(float64(result.ClearedSlides))
	for _, issue := range result.Issues {
		issuesTotal.WithLabelValues(string(issue.Severity)).Inc()
	}
}

func observeAudit(summary types.AuditSummary) {
	auditReferences.WithLabelValues("valid").Set(float64(summary.ValidSlideReferences))
	auditReferences.WithLabelValues("broken").Set(float64(summary.BrokenSlideReferences))
	auditMedia.WithLabelValues("total").Set(float64(summary.TotalMedia))
	auditMedia.WithLabelValues("indexed").Set(float64(summary.IndexedMedia))
	if summary.MissingObjects != nil {
		auditMedia.WithLabelValues("missing_object").Set(float64(*summary.MissingObjects))
	}
}
