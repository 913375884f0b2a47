// Package engine wires the validation pipeline: parse, map, normalize,
// classify, score, dedupe, aggregate. The engine is pure: no I/O beyond
// reading the input, no persistence, deterministic output for a given
// input and rule set.
package engine

import (
	"context"
	"io"
	"runtime"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadcheck/internal/classify"
	"github.com/sells-group/leadcheck/internal/config"
	"github.com/sells-group/leadcheck/internal/dedupe"
	"github.com/sells-group/leadcheck/internal/mapper"
	"github.com/sells-group/leadcheck/internal/model"
	"github.com/sells-group/leadcheck/internal/normalize"
	"github.com/sells-group/leadcheck/internal/parser"
	"github.com/sells-group/leadcheck/internal/scorer"
)

// Engine validates lead lists against a fixed rule set. Safe for
// concurrent use; each Validate call owns its own pipeline state.
type Engine struct {
	cfg         config.EngineConfig
	sev         model.SeverityMap
	emails      *classify.EmailClassifier
	competitors *classify.CompetitorMatcher
	icp         *scorer.ICPScorer
	workers     int
}

// New builds an Engine from the rule set, validating the ICP profile
// and severity overrides up front.
func New(cfg config.EngineConfig) (*Engine, error) {
	sev, err := severities(cfg.SeverityOverrides)
	if err != nil {
		return nil, err
	}

	icp, err := scorer.New(cfg.ICP, sev)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Engine{
		cfg:         cfg,
		sev:         sev,
		emails:      classify.NewEmailClassifier(cfg, sev),
		competitors: classify.NewCompetitorMatcher(cfg, sev),
		icp:         icp,
		workers:     workers,
	}, nil
}

// ValidateCSV runs the pipeline over raw CSV text. The cancel tied to
// the parser context guarantees its goroutine exits on early returns
// (mapping failure, worker error) instead of blocking on the row channel.
func (e *Engine) ValidateCSV(ctx context.Context, r io.Reader) (*model.ValidationReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	header, rows, errCh, err := parser.StreamCSV(ctx, r, parser.CSVOptions{LazyQuotes: true})
	if err != nil {
		return nil, err
	}
	return e.run(ctx, header, rows, errCh)
}

// ValidateXLSX runs the pipeline over the first sheet of a workbook.
func (e *Engine) ValidateXLSX(ctx context.Context, path string) (*model.ValidationReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	header, rows, errCh, err := parser.StreamXLSX(ctx, path, parser.XLSXOptions{})
	if err != nil {
		return nil, err
	}
	return e.run(ctx, header, rows, errCh)
}

// run executes the pipeline for one input. Per-lead work fans out over
// a bounded worker pool; the dedup pass is the single synchronization
// point and needs the complete list in memory, so there is no streaming
// report mode.
func (e *Engine) run(ctx context.Context, header []string, rows <-chan model.RawRow, errCh <-chan error) (*model.ValidationReport, error) {
	mapping, err := mapper.Map(header)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	var mu sync.Mutex
	var leads []model.Lead

	for row := range rows {
		row := row
		g.Go(func() error {
			lead := normalize.Record(row, mapping, e.sev)
			e.emails.Classify(&lead)
			e.competitors.Match(&lead)
			e.icp.Score(&lead)

			mu.Lock()
			leads = append(leads, lead)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "engine: worker pool")
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	if len(leads) == 0 {
		return nil, parser.ErrEmptyInput
	}

	// Report order mirrors the source file, not processing order.
	sort.Slice(leads, func(i, j int) bool { return leads[i].RowIndex < leads[j].RowIndex })

	duplicates := dedupe.Apply(leads, e.sev)
	report := aggregate(leads, duplicates)

	zap.L().Info("engine: validation complete",
		zap.Int("total", report.Total),
		zap.Int("valid", report.ValidCount),
		zap.Int("invalid", report.InvalidCount),
		zap.Int("duplicates", report.DuplicateCount),
		zap.Float64("avg_icp_score", report.AverageICPScore),
	)

	return report, nil
}

// severities applies configured overrides on top of the defaults. The
// defaults enumerate every known issue kind, so a key absent from them
// is a typo and must not no-op silently.
func severities(overrides map[string]string) (model.SeverityMap, error) {
	sev := model.DefaultSeverities()
	for kind, value := range overrides {
		k := model.IssueKind(kind)
		if _, known := sev[k]; !known {
			return nil, eris.Errorf("engine: unknown issue kind %q in severity overrides", kind)
		}
		switch s := model.Severity(value); s {
		case model.SeverityError, model.SeverityWarning, model.SeverityInfo:
			sev[k] = s
		default:
			return nil, eris.Errorf("engine: invalid severity %q for issue kind %q", value, kind)
		}
	}
	return sev, nil
}
