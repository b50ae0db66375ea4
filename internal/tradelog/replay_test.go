package tradelog

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "timestamp;event;reason;balance;comment\n"

func TestReplayLog_ProfitAndLoss(t *testing.T) {
	log := header +
		"2025.11.03 10:00:00;DEAL_OUT;tp profit=100;;\n" +
		"2025.11.04 10:00:00;DEAL_OUT;sl profit=-50;;\n" +
		"2025.11.04 10:00:01;SIGNAL;breakout;;\n"

	rp, err := ReplayLog(strings.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, 2, rp.Trades)
	assert.Equal(t, 50.0, rp.NetProfit)
	assert.Equal(t, 100.0, rp.GrossProfit)
	assert.Equal(t, 50.0, rp.GrossLossAbs)
	require.NotNil(t, rp.ProfitFactor)
	assert.Equal(t, 2.0, *rp.ProfitFactor)
	assert.Nil(t, rp.MaxDrawdownPct)
}

func TestReplayLog_AllWinnersIsInfinite(t *testing.T) {
	log := header +
		"2025.11.03 10:00:00;DEAL_OUT;profit=+12.5;;\n" +
		"2025.11.04 10:00:00;DEAL_OUT;PROFIT=7.5;;\n"

	rp, err := ReplayLog(strings.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, 2, rp.Trades)
	require.NotNil(t, rp.ProfitFactor)
	assert.True(t, math.IsInf(*rp.ProfitFactor, 1))
}

func TestReplayLog_NoTradesHasNoProfitFactor(t *testing.T) {
	rp, err := ReplayLog(strings.NewReader(header + "2025.11.03 10:00:00;SIGNAL;x;;\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, rp.Trades)
	assert.Nil(t, rp.ProfitFactor)
}

func TestReplayLog_Drawdown(t *testing.T) {
	log := header +
		"t1;BALANCE;;1000;\n" +
		"t2;BALANCE;;1,100;\n" +
		"t3;BALANCE;;900;\n" +
		"t4;BALANCE;;950;\n" +
		"t5;BALANCE;;n/a;\n"

	rp, err := ReplayLog(strings.NewReader(log))
	require.NoError(t, err)

	require.NotNil(t, rp.MaxDrawdownPct)
	assert.InDelta(t, 18.1818, *rp.MaxDrawdownPct, 0.0001)
}

func TestReplayLog_ByteOrderMark(t *testing.T) {
	log := byteOrderMark + header + "2025.11.03 10:00:00;DEAL_OUT;profit=10;;\n"

	rp, err := ReplayLog(strings.NewReader(log))
	require.NoError(t, err)
	assert.Equal(t, 1, rp.Trades)
}

func TestReplayLog_Empty(t *testing.T) {
	rp, err := ReplayLog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, rp.Trades)
	assert.Nil(t, rp.MaxDrawdownPct)
}

func TestReplay_Metrics(t *testing.T) {
	pf := 1.5
	m := Replay{Trades: 3, NetProfit: 20, ProfitFactor: &pf}.Metrics()

	require.NotNil(t, m.Trades)
	assert.Equal(t, 3, *m.Trades)
	require.NotNil(t, m.NetProfit)
	assert.Equal(t, 20.0, *m.NetProfit)
	assert.Equal(t, &pf, m.ProfitFactor)
	assert.Nil(t, m.DrawdownPct)
}

func TestParseProfit(t *testing.T) {
	tests := []struct {
		reason string
		want   string
		ok     bool
	}{
		{"tp profit=100", "100", true},
		{"sl profit=-50.25 extra", "-50.25", true},
		{"profit=+3", "3", true},
		{"no profit here", "0", false},
		{"", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			got, ok := ParseProfit(tt.reason)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
