package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/report"
)

func newQueryCmd(rf *rootFlags) *cobra.Command {
	var keyword, source string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List stored jobs matching a keyword",
		Long:  "Lists jobs whose title or company contains the keyword, ignoring case and accents, newest first. Without --keyword every job is listed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(rf)
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			jobs, err := st.Query(cmd.Context(), keyword, source)
			if err != nil {
				return err
			}
			report.JobsTable(cmd.OutOrStdout(), jobs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Substring of title or company")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Only jobs from this source")
	return cmd
}

func newLatestCmd(rf *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recently stored jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(rf)
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			jobs, err := st.Latest(cmd.Context(), limit)
			if err != nil {
				return err
			}
			report.JobsTable(cmd.OutOrStdout(), jobs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "How many jobs to show")
	return cmd
}

func newStatsCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count stored jobs per source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(rf)
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			counts, err := st.CountBySource(cmd.Context())
			if err != nil {
				return err
			}
			report.StatsTable(cmd.OutOrStdout(), counts)
			return nil
		},
	}
}

func newExportCmd(rf *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored job as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(rf)
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			jobs, err := st.ExportAll(cmd.Context())
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return report.WriteCSV(cmd.OutOrStdout(), jobs)
			}
			if err := writeCSVFile(out, jobs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d jobs to %s\n", len(jobs), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file, - for stdout")
	return cmd
}

// writeCSVFile reports a failed close too; a short write may only show up there.
func writeCSVFile(path string, jobs []domain.JobRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := report.WriteCSV(f, jobs); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var errNeedsConfirmation = errors.New("refusing to delete every job without --yes")

func newClearCmd(rf *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errNeedsConfirmation
			}
			a, err := loadApp(rf)
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting every job")
	return cmd
}
