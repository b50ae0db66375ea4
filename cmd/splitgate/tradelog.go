package main

import (
	"time"

	"github.com/newthinker/splitgate/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	tradeLogPath   string
	tradeLogPrefix string
)

var tradeLogCmd = &cobra.Command{
	Use:   "tradelog",
	Short: "Analyze a semicolon-delimited trade event log",
	RunE:  runTradeLog,
}

func init() {
	tradeLogCmd.Flags().StringVar(&tradeLogPath, "log", "", "path to the trade log CSV (required)")
	tradeLogCmd.Flags().StringVar(&tradeLogPrefix, "output-prefix", "outputs/trade_log_analysis", "output path prefix, without extension")

	tradeLogCmd.MarkFlagRequired("log")

	rootCmd.AddCommand(tradeLogCmd)
}

func runTradeLog(cmd *cobra.Command, args []string) error {
	started := time.Now()
	s, err := setup()
	if err != nil {
		return err
	}
	defer s.log.Sync()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	analysis, err := s.app.TradeLog(ctx, app.TradeLogOptions{
		LogPath:      tradeLogPath,
		OutputPrefix: tradeLogPrefix,
	})
	if err != nil {
		return err
	}
	s.log.Info("trade log analyzed",
		zap.Int("trades", analysis.TradeMetrics.Trades),
		zap.Int("gate_stats_rows", analysis.GateStatsRows),
	)

	return s.app.Finish(app.CommandTradeLog, started)
}
