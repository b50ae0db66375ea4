package main

import (
	"time"

	"github.com/newthinker/splitgate/internal/app"
	"github.com/newthinker/splitgate/internal/config"
	"github.com/newthinker/splitgate/internal/period"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	monthlyInput      string
	monthlyOutputJSON string
	monthlyOutputCSV  string
	monthlyDrift      float64
	monthlyTh         = period.DefaultThresholds()
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Score monthly validation results and classify the run",
	RunE:  runMonthly,
}

func init() {
	f := monthlyCmd.Flags()
	f.StringVar(&monthlyInput, "input-csv", "", "monthly results CSV (required)")
	f.StringVar(&monthlyOutputJSON, "output-json", "", "summary JSON path (required)")
	f.StringVar(&monthlyOutputCSV, "output-csv", "", "scored months CSV path (required)")

	f.Float64Var(&monthlyTh.ObjectiveRatio, "objective-ratio", monthlyTh.ObjectiveRatio, "minimum end/start balance ratio per month")
	f.Float64Var(&monthlyTh.PFMin, "pf-min", monthlyTh.PFMin, "minimum monthly profit factor")
	f.Float64Var(&monthlyTh.DDMax, "dd-max", monthlyTh.DDMax, "max monthly drawdown %")
	f.IntVar(&monthlyTh.TradesMin, "trades-min", monthlyTh.TradesMin, "minimum monthly trades")
	f.IntVar(&monthlyTh.MonthsPassMin, "months-pass-min", monthlyTh.MonthsPassMin, "months that must pass")
	f.IntVar(&monthlyTh.MonthsTotal, "months-total", monthlyTh.MonthsTotal, "expected number of months")
	f.IntVar(&monthlyTh.MonthsTradesMin, "months-trades-min", monthlyTh.MonthsTradesMin, "months that must reach the trade minimum")
	f.Float64Var(&monthlyTh.CatastrophicDDMax, "catastrophic-dd-max", monthlyTh.CatastrophicDDMax, "worst month drawdown limit %")
	f.Float64Var(&monthlyTh.DeterminismMaxDrift, "determinism-max-drift", monthlyTh.DeterminismMaxDrift, "max average profit factor drift between replays")
	f.Float64Var(&monthlyDrift, "determinism-avg-drift", 0, "measured average profit factor drift; omit when no replay was run")

	monthlyCmd.MarkFlagRequired("input-csv")
	monthlyCmd.MarkFlagRequired("output-json")
	monthlyCmd.MarkFlagRequired("output-csv")

	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(cmd *cobra.Command, args []string) error {
	started := time.Now()
	s, err := setup()
	if err != nil {
		return err
	}
	defer s.log.Sync()

	th := s.cfg.Monthly
	override(cmd, "objective-ratio", &th.ObjectiveRatio, monthlyTh.ObjectiveRatio)
	override(cmd, "pf-min", &th.PFMin, monthlyTh.PFMin)
	override(cmd, "dd-max", &th.DDMax, monthlyTh.DDMax)
	override(cmd, "trades-min", &th.TradesMin, monthlyTh.TradesMin)
	override(cmd, "months-pass-min", &th.MonthsPassMin, monthlyTh.MonthsPassMin)
	override(cmd, "months-total", &th.MonthsTotal, monthlyTh.MonthsTotal)
	override(cmd, "months-trades-min", &th.MonthsTradesMin, monthlyTh.MonthsTradesMin)
	override(cmd, "catastrophic-dd-max", &th.CatastrophicDDMax, monthlyTh.CatastrophicDDMax)
	override(cmd, "determinism-max-drift", &th.DeterminismMaxDrift, monthlyTh.DeterminismMaxDrift)
	if err := config.ValidateThresholds(th); err != nil {
		return err
	}

	var drift *float64
	if cmd.Flags().Changed("determinism-avg-drift") {
		drift = &monthlyDrift
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	summary, err := s.app.Monthly(ctx, app.MonthlyOptions{
		InputCSV:   monthlyInput,
		OutputJSON: monthlyOutputJSON,
		OutputCSV:  monthlyOutputCSV,
		Thresholds: th,
		Drift:      drift,
	})
	if err != nil {
		return err
	}
	s.log.Info("monthly run classified",
		zap.String("classification", summary.Classification),
		zap.Int("months_passed", summary.MonthsPassed),
	)

	return s.app.Finish(app.CommandMonthly, started)
}
