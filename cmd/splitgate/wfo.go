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
	wfoReportsDir string
	wfoGlob       string
	wfoPrefix     string
	wfoXLSX       bool
	wfoTh         = gate.DefaultWalkForwardThresholds()
)

var wfoCmd = &cobra.Command{
	Use:   "wfo",
	Short: "Summarize walk-forward reports and evaluate the is/oos/holdout/stress gates",
	RunE:  runWFO,
}

func init() {
	f := wfoCmd.Flags()
	f.StringVar(&wfoReportsDir, "reports-dir", "", "directory containing report files (required)")
	f.StringVar(&wfoGlob, "glob", "*.xml", "file name pattern of the reports")
	f.StringVar(&wfoPrefix, "output-prefix", "outputs/wfo_summary", "output path prefix, without extension")
	f.BoolVar(&wfoXLSX, "xlsx", false, "also write an XLSX workbook")

	f.Float64Var(&wfoTh.ISPFMin, "is-pf-min", wfoTh.ISPFMin, "in-sample profit factor must exceed this")
	f.Float64Var(&wfoTh.OOSPFMedianMin, "oos-pf-median-min", wfoTh.OOSPFMedianMin, "minimum median out-of-sample profit factor")
	f.Float64Var(&wfoTh.OOSPFFoldMin, "oos-pf-fold-min", wfoTh.OOSPFFoldMin, "minimum profit factor of every out-of-sample fold")
	f.Float64Var(&wfoTh.HoldoutPFMin, "holdout-pf-min", wfoTh.HoldoutPFMin, "minimum holdout profit factor")
	f.Float64Var(&wfoTh.MaxDDPct, "max-dd-pct", wfoTh.MaxDDPct, "max drawdown %")
	f.IntVar(&wfoTh.MinTrades, "min-trades", wfoTh.MinTrades, "minimum in-sample trades")
	f.Float64Var(&wfoTh.StressPFDegradeMaxPct, "stress-pf-degrade-max-pct", wfoTh.StressPFDegradeMaxPct, "max stress profit factor degradation %")

	wfoCmd.MarkFlagRequired("reports-dir")

	rootCmd.AddCommand(wfoCmd)
}

func runWFO(cmd *cobra.Command, args []string) error {
	started := time.Now()
	s, err := setup()
	if err != nil {
		return err
	}
	defer s.log.Sync()

	th := s.cfg.WalkForward
	override(cmd, "is-pf-min", &th.ISPFMin, wfoTh.ISPFMin)
	override(cmd, "oos-pf-median-min", &th.OOSPFMedianMin, wfoTh.OOSPFMedianMin)
	override(cmd, "oos-pf-fold-min", &th.OOSPFFoldMin, wfoTh.OOSPFFoldMin)
	override(cmd, "holdout-pf-min", &th.HoldoutPFMin, wfoTh.HoldoutPFMin)
	override(cmd, "max-dd-pct", &th.MaxDDPct, wfoTh.MaxDDPct)
	override(cmd, "min-trades", &th.MinTrades, wfoTh.MinTrades)
	override(cmd, "stress-pf-degrade-max-pct", &th.StressPFDegradeMaxPct, wfoTh.StressPFDegradeMaxPct)
	if err := config.ValidateThresholds(th); err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	acc, err := s.app.WalkForward(ctx, app.WalkForwardOptions{
		ReportsDir:   wfoReportsDir,
		Glob:         wfoGlob,
		OutputPrefix: wfoPrefix,
		XLSX:         wfoXLSX,
		Thresholds:   th,
	})
	if err != nil {
		return err
	}
	s.log.Info("walk-forward acceptance evaluated", zap.Bool("overall_pass", acc.OverallPass))

	return s.app.Finish(app.CommandWFO, started)
}
