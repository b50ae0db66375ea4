package main

import (
	"time"

	"github.com/newthinker/splitgate/internal/app"
	"github.com/newthinker/splitgate/internal/config"
	"github.com/newthinker/splitgate/internal/gate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	aggregateRunsDir string
	aggregatePrefix  string
	aggregateXLSX    bool
	aggregateTh      = gate.DefaultSplitThresholds()
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate split runs and evaluate the combined/regime/walk-forward gates",
	Long: `Discover every run_metadata.json under --runs-dir, extract each run's metrics
from its report or trade log, and evaluate the split acceptance policy.`,
	RunE: runAggregate,
}

func init() {
	f := aggregateCmd.Flags()
	f.StringVar(&aggregateRunsDir, "runs-dir", "", "root directory containing run subfolders (required)")
	f.StringVar(&aggregatePrefix, "output-prefix", "outputs/split_summary", "output path prefix, without extension")
	f.BoolVar(&aggregateXLSX, "xlsx", false, "also write an XLSX workbook")

	f.Float64Var(&aggregateTh.CombinedPFMin, "combined-pf-min", aggregateTh.CombinedPFMin, "combined run profit factor must exceed this")
	f.Float64Var(&aggregateTh.CombinedDDMax, "combined-dd-max", aggregateTh.CombinedDDMax, "combined run max drawdown %")
	f.IntVar(&aggregateTh.CombinedTradesMin, "combined-trades-min", aggregateTh.CombinedTradesMin, "combined run minimum trades")
	f.Float64Var(&aggregateTh.RegimePFMin, "regime-pf-min", aggregateTh.RegimePFMin, "regime run minimum profit factor")
	f.Float64Var(&aggregateTh.RegimeDDMax, "regime-dd-max", aggregateTh.RegimeDDMax, "regime run max drawdown %")
	f.Float64Var(&aggregateTh.WFOPFMin, "wfo-pf-min", aggregateTh.WFOPFMin, "walk-forward fold minimum profit factor")
	f.Float64Var(&aggregateTh.WFOPassRatioMin, "wfo-pass-ratio-min", aggregateTh.WFOPassRatioMin, "minimum share of passing folds")
	f.Float64Var(&aggregateTh.WFOCatastrophicPF, "wfo-catastrophic-pf", aggregateTh.WFOCatastrophicPF, "fold profit factor below this is catastrophic")
	f.Float64Var(&aggregateTh.WFOCatastrophicDD, "wfo-catastrophic-dd", aggregateTh.WFOCatastrophicDD, "together with a drawdown above this")

	aggregateCmd.MarkFlagRequired("runs-dir")

	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) error {
	started := time.Now()
	s, err := setup()
	if err != nil {
		return err
	}
	defer s.log.Sync()

	th := s.cfg.Splits
	override(cmd, "combined-pf-min", &th.CombinedPFMin, aggregateTh.CombinedPFMin)
	override(cmd, "combined-dd-max", &th.CombinedDDMax, aggregateTh.CombinedDDMax)
	override(cmd, "combined-trades-min", &th.CombinedTradesMin, aggregateTh.CombinedTradesMin)
	override(cmd, "regime-pf-min", &th.RegimePFMin, aggregateTh.RegimePFMin)
	override(cmd, "regime-dd-max", &th.RegimeDDMax, aggregateTh.RegimeDDMax)
	override(cmd, "wfo-pf-min", &th.WFOPFMin, aggregateTh.WFOPFMin)
	override(cmd, "wfo-pass-ratio-min", &th.WFOPassRatioMin, aggregateTh.WFOPassRatioMin)
	override(cmd, "wfo-catastrophic-pf", &th.WFOCatastrophicPF, aggregateTh.WFOCatastrophicPF)
	override(cmd, "wfo-catastrophic-dd", &th.WFOCatastrophicDD, aggregateTh.WFOCatastrophicDD)
	if err := config.ValidateThresholds(th); err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	acc, err := s.app.Aggregate(ctx, app.AggregateOptions{
		RunsDir:      aggregateRunsDir,
		OutputPrefix: aggregatePrefix,
		XLSX:         aggregateXLSX,
		Thresholds:   th,
	})
	if err != nil {
		return err
	}
	s.log.Info("split acceptance evaluated", zap.Bool("overall_pass", acc.OverallPass))

	return s.app.Finish(app.CommandAggregate, started)
}
