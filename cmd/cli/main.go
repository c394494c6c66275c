// Package main is the operator CLI for the job-postings analytics core.
// It works directly against the DuckDB file with caching disabled, so every
// invocation reflects the live schema.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sgjobs-insights/internal/domain"
	"sgjobs-insights/internal/engine"
	"sgjobs-insights/internal/history"
	"sgjobs-insights/internal/schema"
	"sgjobs-insights/internal/service"
)

var (
	flagDB         string
	flagHistoryDB  string
	flagCandidates string

	flagLevels     []string
	flagCategories []string
	flagEmployment []string
	flagStatus     []string

	flagPercentile float64
	flagBins       int
	flagMaxRows    int
	flagTopN       int
	flagLimit      int
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sgjobs",
		Short:        "Schema-adaptive analytics over the SG job-postings database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagDB, "db", "", "path to the DuckDB job-postings database (required)")
	root.PersistentFlags().StringVar(&flagCandidates, "candidates", "", "optional YAML candidate-name overrides")
	_ = root.MarkPersistentFlagRequired("db")

	root.AddCommand(probeCmd(), planCmd(), heatmapCmd(), summaryCmd(), sampleCmd(), companiesCmd(), historyCmd())
	return root
}

// newInsights builds an uncached service for one-shot CLI use.
func newInsights(withHistory bool) (*service.Insights, func(), error) {
	cands, err := schema.LoadCandidates(flagCandidates)
	if err != nil {
		return nil, nil, err
	}

	db, err := engine.OpenReadOnly(flagDB)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = db.Close() }

	var hist domain.HistoryRepository
	if withHistory && flagHistoryDB != "" {
		histDB, err := history.Open(flagHistoryDB)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		prev := cleanup
		cleanup = func() { _ = histDB.Close(); prev() }
		hist = history.NewRepository(histDB)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := service.NewInsights(engine.NewExecutor(db), service.NewCaches(0, 0), schema.DefaultTables(), cands, hist, log)
	return svc, cleanup, nil
}

func filterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&flagLevels, "level", nil, "position level filter (repeatable)")
	cmd.Flags().StringSliceVar(&flagCategories, "category", nil, "primary category filter (repeatable)")
	cmd.Flags().StringSliceVar(&flagEmployment, "employment", nil, "employment type filter (repeatable)")
	cmd.Flags().StringSliceVar(&flagStatus, "status", nil, `status group filter ("Open"/"Closed")`)
}

func filters() domain.FilterSet {
	return domain.FilterSet{
		PositionLevels:  flagLevels,
		Categories:      flagCategories,
		EmploymentTypes: flagEmployment,
		StatusGroups:    flagStatus,
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [table...]",
		Short: "Show the present columns of the candidate tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newInsights(false)
			if err != nil {
				return err
			}
			defer cleanup()

			tables := args
			if len(tables) == 0 {
				t := schema.DefaultTables()
				tables = []string{t.Base, t.Categories, t.Enriched, t.Raw}
			}

			out := make(map[string][]string, len(tables))
			for _, table := range tables {
				s, err := svc.ProbeTable(cmd.Context(), table)
				if err != nil {
					return err
				}
				cols := make([]string, 0, len(s.Columns))
				for c := range s.Columns {
					cols = append(cols, c)
				}
				out[table] = cols
			}
			return printJSON(out)
		},
	}
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Resolve and print the query plan for the live schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newInsights(false)
			if err != nil {
				return err
			}
			defer cleanup()

			plan, err := svc.Plan(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(plan)
		},
	}
}

func heatmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Run the two-phase salary heatmap aggregation",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newInsights(true)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.SalaryHeatmap(cmd.Context(), filters(), domain.HeatmapParams{
				CapPercentile: flagPercentile,
				BinCount:      flagBins,
			})
			if err != nil {
				return err
			}
			if result.Empty() {
				fmt.Fprintln(os.Stderr, "no data for this combination of filters")
			}
			return printJSON(result)
		},
	}
	filterFlags(cmd)
	cmd.Flags().Float64Var(&flagPercentile, "percentile", 0.95, "salary cap percentile in [0, 1)")
	cmd.Flags().IntVar(&flagBins, "bins", 50, "number of salary bins")
	cmd.Flags().StringVar(&flagHistoryDB, "history-db", "", "optional SQLite file recording executed queries")
	return cmd
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Compute salary distribution KPIs for the filtered population",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newInsights(false)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.SalarySummary(cmd.Context(), filters())
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	filterFlags(cmd)
	return cmd
}

func sampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print a random sample of filtered job rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newInsights(false)
			if err != nil {
				return err
			}
			defer cleanup()

			rows, err := svc.DetailSample(cmd.Context(), filters(), domain.SampleParams{MaxRows: flagMaxRows})
			if err != nil {
				return err
			}
			return printJSON(rows)
		},
	}
	filterFlags(cmd)
	cmd.Flags().IntVar(&flagMaxRows, "max-rows", 1000, "sample size cap")
	return cmd
}

func companiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Rank companies by filtered posting volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newInsights(false)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := svc.TopCompanies(cmd.Context(), filters(), flagTopN)
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
	filterFlags(cmd)
	cmd.Flags().IntVar(&flagTopN, "top", 10, "number of companies to rank")
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently executed queries from the history metastore",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagHistoryDB == "" {
				return domain.ErrValidation("--history-db is required")
			}
			histDB, err := history.Open(flagHistoryDB)
			if err != nil {
				return err
			}
			defer histDB.Close()

			records, err := history.NewRepository(histDB).List(cmd.Context(), flagLimit)
			if err != nil {
				return err
			}
			for _, rec := range records {
				line := fmt.Sprintf("%s  %-14s %-5s %4dms", rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Kind, rec.Status, rec.DurationMS)
				if rec.Error != "" {
					line += "  " + strings.ReplaceAll(rec.Error, "\n", " ")
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagHistoryDB, "history-db", "", "SQLite file recording executed queries")
	cmd.Flags().IntVar(&flagLimit, "limit", 20, "number of records to show")
	return cmd
}
