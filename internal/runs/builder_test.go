package runs

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/discovery"
	"github.com/newthinker/splitgate/internal/metrics"
	"github.com/newthinker/splitgate/internal/storage/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structuredReport = `<report>
  <profit_factor>2,4</profit_factor>
  <balance_drawdown_relative_pct>11.5</balance_drawdown_relative_pct>
  <total_trades>420</total_trades>
  <net_profit>1 250.75</net_profit>
</report>`

const tradeLog = "\ufefftimestamp;event;reason;balance;comment\n" +
	"2025.01.02 10:00:00;DEAL_IN;open;1000;\n" +
	"2025.01.02 12:00:00;DEAL_OUT;tp profit=100;1100;\n" +
	"2025.01.03 12:00:00;DEAL_OUT;sl profit=-200;900;\n" +
	"2025.01.04 12:00:00;DEAL_OUT;tp profit=50;950;\n"

func fixture(t *testing.T) archive.Storage {
	t.Helper()
	store, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)

	combinedMeta := `{"split_tag":"combined","from_date":"2024.01.01","to_date":"2025.06.30",` +
		`"config_sha256":"c0ffee","duration_seconds":41.2,"terminal_exit_code":0}`
	foldMeta := `{"run_label":"regime_wfo_fold3","split_tag":"wfo","trade_log_csv":"runs/regime_wfo_fold3/trades.csv"}`

	files := map[string]string{
		"runs/combined_full/run_metadata.json":    combinedMeta,
		"runs/combined_full/mt5_report_a.xml":     structuredReport,
		"runs/regime_wfo_fold3/run_metadata.json": foldMeta,
		"runs/regime_wfo_fold3/trades.csv":        tradeLog,
		"runs/empty/run_metadata.json":            `{"split_tag":"wfo","trade_log_csv":""}`,
		"runs/broken/run_metadata.json":           `{"split_tag":`,
		"reports/wfo_is_2024.xml":                 "<r>Profit Factor: 3.0 Max Drawdown: 9.1% Total Trades: 350 Net Profit: 900</r>",
		"reports/wfo_oos_fold1.xml":               "<r>Profit Factor: 1.7 Drawdown: 12% Trades: 80 Net Profit: 120</r>",
		"reports/wfo_stress_spread.xml":           "<r>broken",
	}
	for p, content := range files {
		require.NoError(t, store.Write(context.Background(), p, []byte(content)))
	}
	return store
}

func TestBuilder_BuildRuns(t *testing.T) {
	ctx := context.Background()
	store := fixture(t)
	reg := metrics.NewRegistry()

	paths, err := discovery.FindMetadata(ctx, store, "runs")
	require.NoError(t, err)
	require.Len(t, paths, 4)

	records, err := NewBuilder(store, nil, nil).WithWorkers(3).WithMetrics(reg).BuildRuns(ctx, paths)
	require.NoError(t, err)
	require.Len(t, records, 2)

	combined := records[0]
	assert.Equal(t, "combined_full", combined.Label)
	assert.Equal(t, core.SplitCombined, combined.SplitClass)
	assert.Equal(t, core.SourceStructured, combined.Source)
	assert.Equal(t, "runs/combined_full/mt5_report_a.xml", combined.ReportPath)
	assert.Equal(t, "c0ffee", combined.ConfigSHA256)
	require.NotNil(t, combined.ProfitFactor)
	assert.Equal(t, 2.4, *combined.ProfitFactor)
	require.NotNil(t, combined.Trades)
	assert.Equal(t, 420, *combined.Trades)
	require.NotNil(t, combined.NetProfit)
	assert.Equal(t, 1250.75, *combined.NetProfit)
	require.NotNil(t, combined.ExitCode)
	assert.Equal(t, 0, *combined.ExitCode)
	assert.Equal(t, core.RunID("combined_full", "combined", "runs/combined_full/run_metadata.json"), combined.ID)

	fold := records[1]
	assert.Equal(t, core.SplitRegimeOOS, fold.SplitClass)
	assert.Equal(t, core.SourceEventLog, fold.Source)
	assert.Equal(t, "runs/regime_wfo_fold3/trades.csv", fold.TradeLogPath)
	require.NotNil(t, fold.Trades)
	assert.Equal(t, 3, *fold.Trades)
	require.NotNil(t, fold.ProfitFactor)
	assert.InDelta(t, 0.75, *fold.ProfitFactor, 1e-9)
	require.NotNil(t, fold.DrawdownPct)
	assert.InDelta(t, 18.1818, *fold.DrawdownPct, 1e-4)
	assert.Nil(t, fold.DurationSeconds)
}

func TestBuilder_SequentialMatchesParallel(t *testing.T) {
	ctx := context.Background()
	store := fixture(t)
	paths, err := discovery.FindMetadata(ctx, store, "runs")
	require.NoError(t, err)

	seq, err := NewBuilder(store, nil, nil).BuildRuns(ctx, paths)
	require.NoError(t, err)
	par, err := NewBuilder(store, nil, nil).WithWorkers(8).BuildRuns(ctx, paths)
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestBuilder_BuildRunErrors(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder(fixture(t), nil, nil)

	_, err := b.BuildRun(ctx, "runs/empty/run_metadata.json")
	assert.True(t, errors.Is(err, core.ErrArtifactMissing))

	_, err = b.BuildRun(ctx, "runs/broken/run_metadata.json")
	assert.True(t, errors.Is(err, core.ErrMetadataInvalid))
}

func TestBuilder_NoRuns(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder(fixture(t), nil, nil)

	_, err := b.BuildRuns(ctx, []string{"runs/empty/run_metadata.json", "runs/broken/run_metadata.json"})
	assert.True(t, errors.Is(err, core.ErrNoRuns))
}

func TestBuilder_BuildReports(t *testing.T) {
	ctx := context.Background()
	store := fixture(t)

	paths, err := discovery.ListReports(ctx, store, "reports", "*.xml")
	require.NoError(t, err)

	records, err := NewBuilder(store, nil, nil).WithWorkers(2).BuildReports(ctx, paths)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "wfo_is_2024", records[0].Label)
	assert.Equal(t, core.SplitIS, records[0].SplitClass)
	require.NotNil(t, records[0].DrawdownPct)
	assert.Equal(t, 9.1, *records[0].DrawdownPct)

	assert.Equal(t, core.SplitOOS, records[1].SplitClass)
	require.NotNil(t, records[1].ProfitFactor)
	assert.Equal(t, 1.7, *records[1].ProfitFactor)

	stress := records[2]
	assert.Equal(t, core.SplitStress, stress.SplitClass)
	assert.Equal(t, core.SourceStructured, stress.Source)
	assert.Equal(t, core.Metrics{}, stress.Metrics())
}

func TestBuilder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(fixture(t), nil, nil).BuildRuns(ctx, []string{"runs/combined_full/run_metadata.json"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "wfo_oos_fold1", Stem("reports/wfo_oos_fold1.xml"))
	assert.Equal(t, "report.final", Stem("/abs/report.final.xml"))
	assert.Equal(t, "noext", Stem("noext"))
}
