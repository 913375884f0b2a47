package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadcheck/internal/config"
	"github.com/sells-group/leadcheck/internal/engine"
	"github.com/sells-group/leadcheck/internal/model"
)

var (
	validateFile        string
	validateRules       string
	validateOutput      string
	validateConcurrency int
	validateNoStore     bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate and score a lead list file",
	Long: `Runs the validation pipeline over one or more CSV or XLSX lead
lists and prints the report as JSON.

Examples:
  # Validate a CSV with the rules from config.yaml
  leadcheck validate --file leads.csv

  # Use a standalone rule file and write the report to disk
  leadcheck validate --file leads.csv --rules icp-rules.yaml --output report.json

  # XLSX input, first sheet
  leadcheck validate --file leads.xlsx

  # Batch: several files in one invocation
  leadcheck validate q1-leads.csv q2-leads.csv`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		files := args
		if validateFile != "" {
			files = append([]string{validateFile}, files...)
		}
		if len(files) == 0 {
			return eris.New("validate: no input files, pass --file or positional paths")
		}

		engineCfg := cfg.Engine
		if validateRules != "" {
			rules, err := config.LoadRules(validateRules)
			if err != nil {
				return err
			}
			rules.Apply(&engineCfg)
		}
		if validateConcurrency > 0 {
			engineCfg.Workers = validateConcurrency
		}

		eng, err := engine.New(engineCfg)
		if err != nil {
			return eris.Wrap(err, "validate: build engine")
		}

		if len(files) == 1 {
			report, err := runFile(ctx, eng, files[0])
			if err != nil {
				return err
			}
			if !validateNoStore {
				persistRun(ctx, filepath.Base(files[0]), report)
			}
			logReport(files[0], report)
			return writeReport(report)
		}

		reports, err := runBatch(ctx, eng, files)
		if err != nil {
			return err
		}
		return writeReport(reports)
	},
}

// runBatch validates several files concurrently. One file's fatal error
// fails the whole invocation.
func runBatch(ctx context.Context, eng *engine.Engine, files []string) (map[string]*model.ValidationReport, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var mu sync.Mutex
	reports := make(map[string]*model.ValidationReport, len(files))

	for _, file := range files {
		file := file
		g.Go(func() error {
			report, err := runFile(ctx, eng, file)
			if err != nil {
				return eris.Wrapf(err, "validate: %s", file)
			}
			if !validateNoStore {
				persistRun(ctx, filepath.Base(file), report)
			}
			logReport(file, report)

			mu.Lock()
			reports[file] = report
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func logReport(file string, report *model.ValidationReport) {
	zap.L().Info("validate: complete",
		zap.String("file", file),
		zap.Int("total", report.Total),
		zap.Int("valid", report.ValidCount),
		zap.Int("duplicates", report.DuplicateCount),
	)
}

func init() {
	validateCmd.Flags().StringVar(&validateFile, "file", "", "path to a CSV or XLSX lead list")
	validateCmd.Flags().StringVar(&validateRules, "rules", "", "path to a YAML rule file overriding configured rules")
	validateCmd.Flags().StringVar(&validateOutput, "output", "", "write report JSON to file (default: stdout)")
	validateCmd.Flags().IntVar(&validateConcurrency, "concurrency", 0, "worker pool size (0 = number of CPUs)")
	validateCmd.Flags().BoolVar(&validateNoStore, "no-store", false, "skip persisting the run to the store")
	rootCmd.AddCommand(validateCmd)
}

// runFile dispatches on the input extension.
func runFile(ctx context.Context, eng *engine.Engine, path string) (*model.ValidationReport, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		report, err := eng.ValidateXLSX(ctx, path)
		return report, eris.Wrap(err, "validate: xlsx")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "validate: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	report, err := eng.ValidateCSV(ctx, f)
	return report, eris.Wrap(err, "validate: csv")
}

// persistRun records the run in the configured store. Store failures
// are logged, not fatal: the report already exists.
func persistRun(ctx context.Context, source string, report *model.ValidationReport) {
	st, err := initStore(ctx)
	if err != nil {
		zap.L().Warn("validate: store unavailable, skipping persistence", zap.Error(err))
		return
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("validate: store migrate failed", zap.Error(err))
		return
	}

	run, err := st.CreateRun(ctx, source)
	if err != nil {
		zap.L().Warn("validate: create run failed", zap.Error(err))
		return
	}
	if err := st.CompleteRun(ctx, run.ID, report); err != nil {
		zap.L().Warn("validate: complete run failed", zap.Error(err))
		return
	}
	zap.L().Info("validate: run persisted", zap.String("run_id", run.ID))
}

// writeReport writes the report (or batch report map) to the output
// file or stdout.
func writeReport(report any) error {
	var w *os.File
	if validateOutput != "" {
		f, err := os.Create(validateOutput)
		if err != nil {
			return eris.Wrap(err, "validate: create output file")
		}
		defer f.Close() //nolint:errcheck
		w = f
	} else {
		w = os.Stdout
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
