package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/princekumarofficial/media-migration/internal/types"
	"github.com/spf13/cobra"
)

type runner interface {
	RunMigration(ctx context.Context) types.MigrationResult
	GetMigrationReport(ctx context.Context) (types.AuditSummary, error)
}

type openFunc func(ctx context.Context, configPath string) (runner, func(), error)

var errMigrationFailed = errors.New("migration did not complete")

// RootCommand creates the media-migrate CLI
func RootCommand(open openFunc) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "media-migrate",
		Short:        "Re-key media records and repair slide references",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (falls back to CONFIG_PATH)")

	rootCmd.AddCommand(
		runCommand(open, &configPath),
		reportCommand(open, &configPath),
	)

	return rootCmd
}

func runCommand(open openFunc, configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Re-key every media record and repair slide references (not idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			result := engine.RunMigration(cmd.Context())

			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, result); err != nil {
					return err
				}
			} else {
				printResult(out, result)
			}

			if !result.Success {
				return errMigrationFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func reportCommand(open openFunc, configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a read-only audit of media ids and slide references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			summary, err := engine.GetMigrationReport(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, summary)
			}
			printSummary(out, summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, result types.MigrationResult) {
	fmt.Fprintf(w, "success:         %t\n", result.Success)
	fmt.Fprintf(w, "migrated media:  %d\n", result.MigratedCount)
	fmt.Fprintf(w, "updated slides:  %d\n", result.UpdatedSlides)
	fmt.Fprintf(w, "cleared slides:  %d\n", result.ClearedSlides)
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "[%s] %s\n", issue.Severity, issue.Message)
	}
}

func printSummary(w io.Writer, summary types.AuditSummary) {
	fmt.Fprintf(w, "total media:             %d\n", summary.TotalMedia)
	fmt.Fprintf(w, "indexed media:           %d\n", summary.IndexedMedia)
	fmt.Fprintf(w, "valid slide references:  %d\n", summary.ValidSlideReferences)
	fmt.Fprintf(w, "broken slide references: %d\n", summary.BrokenSlideReferences)
	if summary.MissingObjects != nil {
		fmt.Fprintf(w, "missing objects:         %d\n", *summary.MissingObjects)
	}
}
