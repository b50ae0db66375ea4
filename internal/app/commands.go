package app

import (
	"bytes"
	"context"
	"fmt"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/discovery"
	"github.com/newthinker/splitgate/internal/export"
	"github.com/newthinker/splitgate/internal/gate"
	"github.com/newthinker/splitgate/internal/period"
	"github.com/newthinker/splitgate/internal/tradelog"
	"go.uber.org/zap"
)

// Command names, used for verdicts and metrics.
const (
	CommandAggregate = "aggregate"
	CommandWFO       = "wfo"
	CommandTradeLog  = "tradelog"
	CommandMonthly   = "monthly"
)

// AggregateOptions configures a split-run evaluation.
type AggregateOptions struct {
	RunsDir      string
	OutputPrefix string
	XLSX         bool
	Thresholds   gate.SplitThresholds
}

// Aggregate discovers the runs under RunsDir, evaluates the split-run policy
// and writes the CSV and JSON summaries.
func (a *App) Aggregate(ctx context.Context, opts AggregateOptions) (gate.SplitAcceptance, error) {
	paths, err := discovery.FindMetadata(ctx, a.artifacts, opts.RunsDir)
	if err != nil {
		return gate.SplitAcceptance{}, err
	}
	a.logger.Info("discovered runs", zap.String("runs_dir", opts.RunsDir), zap.Int("count", len(paths)))

	records, err := a.builder().BuildRuns(ctx, paths)
	if err != nil {
		return gate.SplitAcceptance{}, err
	}

	acc := gate.EvaluateSplits(records, opts.Thresholds)
	a.metrics.SetTiers(CommandAggregate, acc.PassMap())

	w := a.writer()
	if err := w.WriteWith(ctx, export.WithSuffix(opts.OutputPrefix, ".csv"), func() ([]byte, error) {
		return export.RunsCSV(records)
	}); err != nil {
		return acc, err
	}
	if err := w.WriteWith(ctx, export.WithSuffix(opts.OutputPrefix, ".json"), func() ([]byte, error) {
		return export.JSON(export.SplitPayload{Acceptance: acc, Thresholds: opts.Thresholds, Runs: records})
	}); err != nil {
		return acc, err
	}
	if opts.XLSX {
		if err := w.WriteWith(ctx, export.WithSuffix(opts.OutputPrefix, ".xlsx"), func() ([]byte, error) {
			return export.Workbook(export.RunsSheet(records), export.TiersSheet(acc.Tiers))
		}); err != nil {
			return acc, err
		}
	}

	export.RenderRuns(a.stdout, "SPLIT RUNS", records)
	export.RenderTiers(a.stdout, "SPLIT ACCEPTANCE", acc.Tiers, acc.OverallPass)

	a.Notify(ctx, core.Verdict{
		Command: CommandAggregate,
		Pass:    acc.OverallPass,
		Summary: fmt.Sprintf("%d runs, wfo pass ratio %.4f", acc.Counts["total"], acc.WFOPassRatio),
		Tiers:   acc.PassMap(),
	})
	return acc, nil
}

// WalkForwardOptions configures a walk-forward report evaluation.
type WalkForwardOptions struct {
	ReportsDir   string
	Glob         string
	OutputPrefix string
	XLSX         bool
	Thresholds   gate.WalkForwardThresholds
}

// WalkForward evaluates the reports in ReportsDir against the
// is/oos/holdout/stress policy and writes the CSV and JSON summaries.
func (a *App) WalkForward(ctx context.Context, opts WalkForwardOptions) (gate.WalkForwardAcceptance, error) {
	glob := opts.Glob
	if glob == "" {
		glob = "*.xml"
	}
	paths, err := discovery.ListReports(ctx, a.artifacts, opts.ReportsDir, glob)
	if err != nil {
		return gate.WalkForwardAcceptance{}, err
	}

	records, err := a.builder().BuildReports(ctx, paths)
	if err != nil {
		return gate.WalkForwardAcceptance{}, err
	}
	records = gate.ApplyStressDegradation(records)

	acc := gate.EvaluateWalkForward(records, opts.Thresholds)
	a.metrics.SetTiers(CommandWFO, acc.PassMap())

	w := a.writer()
	if err := w.WriteWith(ctx, export.WithSuffix(opts.OutputPrefix, ".csv"), func() ([]byte, error) {
		return export.ReportsCSV(records)
	}); err != nil {
		return acc, err
	}
	if err := w.WriteWith(ctx, export.WithSuffix(opts.OutputPrefix, ".json"), func() ([]byte, error) {
		return export.JSON(export.WalkForwardPayload{
			Acceptance: acc,
			Thresholds: opts.Thresholds,
			Reports:    export.Reports(records),
		})
	}); err != nil {
		return acc, err
	}
	if opts.XLSX {
		if err := w.WriteWith(ctx, export.WithSuffix(opts.OutputPrefix, ".xlsx"), func() ([]byte, error) {
			return export.Workbook(export.ReportsSheet(records), export.TiersSheet(acc.Tiers))
		}); err != nil {
			return acc, err
		}
	}

	export.RenderRuns(a.stdout, "WALK-FORWARD REPORTS", records)
	export.RenderTiers(a.stdout, "WALK-FORWARD ACCEPTANCE", acc.Tiers, acc.OverallPass)

	a.Notify(ctx, core.Verdict{
		Command: CommandWFO,
		Pass:    acc.OverallPass,
		Summary: fmt.Sprintf("%d reports, oos median pf %s", acc.Counts["total"], orNA(export.Float(acc.OOSMedianPF))),
		Tiers:   acc.PassMap(),
	})
	return acc, nil
}

// TradeLogOptions configures a trade-log analysis.
type TradeLogOptions struct {
	LogPath      string
	OutputPrefix string
}

// TradeLog analyses one trade log and writes the JSON summary, the monthly
// table and the GATE_STATS table.
func (a *App) TradeLog(ctx context.Context, opts TradeLogOptions) (tradelog.Analysis, error) {
	data, err := a.artifacts.Read(ctx, opts.LogPath)
	if err != nil {
		return tradelog.Analysis{}, core.WrapError(core.ErrArtifactMissing, fmt.Errorf("%s: %w", opts.LogPath, err))
	}

	analysis, err := tradelog.Analyze(bytes.NewReader(data), opts.LogPath, a.windows)
	if err != nil {
		return tradelog.Analysis{}, core.WrapError(core.ErrInputInvalid, fmt.Errorf("%s: %w", opts.LogPath, err))
	}

	w := a.writer()
	if err := w.WriteWith(ctx, export.WithSuffix(opts.OutputPrefix, ".json"), func() ([]byte, error) {
		return export.JSON(analysis)
	}); err != nil {
		return analysis, err
	}
	if err := w.WriteWith(ctx, export.WithName(opts.OutputPrefix, "_monthly.csv"), func() ([]byte, error) {
		return export.MonthsCSV(analysis.MonthlyMetrics)
	}); err != nil {
		return analysis, err
	}
	if err := w.WriteWith(ctx, export.WithName(opts.OutputPrefix, "_gate_stats.csv"), func() ([]byte, error) {
		return export.GateStatsCSV(analysis.GateRows)
	}); err != nil {
		return analysis, err
	}

	export.RenderAnalysis(a.stdout, analysis)
	return analysis, nil
}

// MonthlyOptions configures monthly scoring.
type MonthlyOptions struct {
	InputCSV   string
	OutputJSON string
	OutputCSV  string
	Thresholds period.Thresholds
	// nil when no determinism replay was run
	Drift *float64
}

// Monthly scores every month in InputCSV and classifies the run.
func (a *App) Monthly(ctx context.Context, opts MonthlyOptions) (period.Summary, error) {
	data, err := a.artifacts.Read(ctx, opts.InputCSV)
	if err != nil {
		return period.Summary{}, core.WrapError(core.ErrArtifactMissing, fmt.Errorf("%s: %w", opts.InputCSV, err))
	}

	raws, err := period.ReadRows(bytes.NewReader(data))
	if err != nil {
		return period.Summary{}, core.WrapError(core.ErrInputInvalid, fmt.Errorf("%s: %w", opts.InputCSV, err))
	}

	rows := period.ScoreAll(raws, opts.Thresholds)
	for _, r := range rows {
		a.metrics.RecordPeriod(r.Passed)
	}
	summary := period.Aggregate(rows, opts.Thresholds, opts.Drift)

	w := a.writer()
	if err := w.WriteWith(ctx, opts.OutputJSON, func() ([]byte, error) {
		return export.JSON(summary)
	}); err != nil {
		return summary, err
	}
	if err := w.WriteWith(ctx, opts.OutputCSV, func() ([]byte, error) {
		return export.PeriodsCSV(rows)
	}); err != nil {
		return summary, err
	}

	export.RenderPeriods(a.stdout, summary)

	a.Notify(ctx, core.Verdict{
		Command:        CommandMonthly,
		Pass:           summary.ProductionCandidate(),
		Classification: summary.Classification,
		Summary:        fmt.Sprintf("%d/%d months passed", summary.MonthsPassed, summary.MonthsTotal),
	})
	return summary, nil
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
