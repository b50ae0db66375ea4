package report

import (
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structuredReport = `<?xml version="1.0"?>
<report>
  <summary>
    <profit_factor>2,35</profit_factor>
    <balance_drawdown_relative_pct>11.2</balance_drawdown_relative_pct>
    <total_trades>412</total_trades>
  </summary>
  <notes>Total Net Profit: 10 520.75 USD</notes>
</report>`

func TestExtract_StructuredAndTextPerField(t *testing.T) {
	ex := NewExtractor(SplitRunProfile(), nil)
	res := ex.Extract([]byte(structuredReport))

	assert.False(t, res.Malformed)
	require.NotNil(t, res.Metrics.ProfitFactor)
	assert.Equal(t, 2.35, *res.Metrics.ProfitFactor)
	require.NotNil(t, res.Metrics.DrawdownPct)
	assert.Equal(t, 11.2, *res.Metrics.DrawdownPct)
	require.NotNil(t, res.Metrics.Trades)
	assert.Equal(t, 412, *res.Metrics.Trades)

	// No net_profit element: falls back to the flattened text. The space
	// inside "10 520.75" stops the capture at "10".
	require.NotNil(t, res.Metrics.NetProfit)
	assert.Equal(t, 10.0, *res.Metrics.NetProfit)

	assert.Equal(t, "structured", res.Sources[FieldProfitFactor])
	assert.Equal(t, "text", res.Sources[FieldNetProfit])
}

func TestExtract_TagWithUnparseableTextFallsThrough(t *testing.T) {
	doc := `<r><profit_factor>n/a</profit_factor><profitfactor>1.8</profitfactor></r>`
	res := NewExtractor(SplitRunProfile(), nil).Extract([]byte(doc))

	require.NotNil(t, res.Metrics.ProfitFactor)
	assert.Equal(t, 1.8, *res.Metrics.ProfitFactor)
}

func TestExtract_TextFallbackPatterns(t *testing.T) {
	doc := `<r><row>Profit Factor: 1.62</row><row>Equity Drawdown Relative: 8,5 %</row>` +
		`<row>Total Trades 318</row><row>Total Net Profit 1250.40</row></r>`
	res := NewExtractor(SplitRunProfile(), nil).Extract([]byte(doc))

	require.NotNil(t, res.Metrics.ProfitFactor)
	assert.Equal(t, 1.62, *res.Metrics.ProfitFactor)
	require.NotNil(t, res.Metrics.DrawdownPct)
	assert.Equal(t, 8.5, *res.Metrics.DrawdownPct)
	require.NotNil(t, res.Metrics.Trades)
	assert.Equal(t, 318, *res.Metrics.Trades)
	require.NotNil(t, res.Metrics.NetProfit)
	assert.Equal(t, 1250.4, *res.Metrics.NetProfit)
}

func TestExtract_DrawdownRequiresPercent(t *testing.T) {
	doc := `<r><row>Drawdown 250.00 USD</row></r>`
	res := NewExtractor(SplitRunProfile(), nil).Extract([]byte(doc))
	assert.Nil(t, res.Metrics.DrawdownPct)
}

func TestExtract_MalformedDegradesToAbsent(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unclosed", "<report><profit_factor>2.1</report"},
		{"element after root", "<report><profit_factor>2.5</profit_factor></report><junk/>"},
		{"text after root", "<report><profit_factor>2.5</profit_factor></report> Profit Factor 2.5"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewExtractor(SplitRunProfile(), nil).Extract([]byte(tt.doc))

			assert.True(t, res.Malformed)
			assert.Nil(t, res.Metrics.ProfitFactor)
			assert.Nil(t, res.Metrics.DrawdownPct)
			assert.Nil(t, res.Metrics.Trades)
			assert.Nil(t, res.Metrics.NetProfit)
			assert.Empty(t, res.Sources)
		})
	}
}

func utf16LE(s string) []byte {
	out := []byte{0xFF, 0xFE}
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func utf16BE(s string) []byte {
	out := []byte{0xFE, 0xFF}
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

func TestExtract_Encodings(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"utf-16le with bom", utf16LE(`<?xml version="1.0" encoding="UTF-16"?><report><profit_factor>2.5</profit_factor></report>`)},
		{"utf-16be with bom", utf16BE(`<?xml version="1.0" encoding="UTF-16"?><report><profit_factor>2.5</profit_factor></report>`)},
		{"utf-8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, `<report><profit_factor>2.5</profit_factor></report>`...)},
		{"iso-8859-1", append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><report><name>Ren`), append([]byte{0xE9}, `</name><profit_factor>2.5</profit_factor></report>`...)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewExtractor(SplitRunProfile(), nil).Extract(tt.data)

			assert.False(t, res.Malformed)
			require.NotNil(t, res.Metrics.ProfitFactor)
			assert.Equal(t, 2.5, *res.Metrics.ProfitFactor)
			assert.Equal(t, "structured", res.Sources[FieldProfitFactor])
		})
	}
}

func TestExtract_FirstTagInDocumentOrder(t *testing.T) {
	doc := `<r><a><b><trades>111</trades></b></a><trades>222</trades></r>`
	res := NewExtractor(SplitRunProfile(), nil).Extract([]byte(doc))

	require.NotNil(t, res.Metrics.Trades)
	assert.Equal(t, 111, *res.Metrics.Trades)
}

func TestExtract_WalkForwardProfileLooseLabels(t *testing.T) {
	doc := `<r><c>PF 1.45</c><c>Maximal drawdown: 9.1%</c><c>Trades: 120</c><c>Net profit 900</c></r>`
	res := NewExtractor(WalkForwardProfile(), nil).Extract([]byte(doc))

	require.NotNil(t, res.Metrics.ProfitFactor)
	assert.Equal(t, 1.45, *res.Metrics.ProfitFactor)
	require.NotNil(t, res.Metrics.DrawdownPct)
	assert.Equal(t, 9.1, *res.Metrics.DrawdownPct)
	require.NotNil(t, res.Metrics.Trades)
	assert.Equal(t, 120, *res.Metrics.Trades)
	require.NotNil(t, res.Metrics.NetProfit)
	assert.Equal(t, 900.0, *res.Metrics.NetProfit)
}

func TestParse_FlattensTextInDocumentOrder(t *testing.T) {
	doc, ok := Parse([]byte("<a> one <b>two</b> three <c/>  </a>"))
	require.True(t, ok)
	assert.Equal(t, "one two three", doc.Text())
	assert.True(t, doc.Structured())

	_, ok = Parse([]byte("<a/><b/>"))
	assert.False(t, ok)
}
