package report

// Field is a canonical metric name.
type Field string

const (
	FieldProfitFactor Field = "profit_factor"
	FieldDrawdownPct  Field = "drawdown_pct"
	FieldTrades       Field = "trades"
	FieldNetProfit    Field = "net_profit"
)

// FieldRule lists the strategies tried, in order, for one field.
type FieldRule struct {
	Field      Field
	Strategies []Strategy
}

// Profile is the full set of field rules for one report flavour.
type Profile struct {
	Name  string
	Rules []FieldRule
}

var (
	profitFactorTags = TagLookup{Tags: []string{"profit_factor", "profitfactor"}}
	drawdownTags     = TagLookup{Tags: []string{"drawdown_pct", "max_drawdown_pct", "balance_drawdown_relative_pct"}}
	tradesTags       = TagLookup{Tags: []string{"trades", "total_trades"}}
	netProfitTags    = TagLookup{Tags: []string{"net_profit", "total_net_profit"}}
)

// SplitRunProfile extracts metrics from per-run split reports.
func SplitRunProfile() Profile {
	return Profile{
		Name: "split_run",
		Rules: []FieldRule{
			{FieldProfitFactor, []Strategy{
				profitFactorTags,
				Labels(false, `profit\s*factor`, `\bpf`),
			}},
			{FieldDrawdownPct, []Strategy{
				drawdownTags,
				Labels(true, `balance\s*drawdown\s*relative`, `equity\s*drawdown\s*relative`, `drawdown`),
			}},
			{FieldTrades, []Strategy{
				tradesTags,
				Labels(false, `total\s*trades`, `\btrades`),
			}},
			{FieldNetProfit, []Strategy{
				netProfitTags,
				Labels(false, `total\s*net\s*profit`, `net\s*profit`),
			}},
		},
	}
}

// WalkForwardProfile extracts metrics from walk-forward summary reports,
// whose text labels are looser than the split-run reports.
func WalkForwardProfile() Profile {
	return Profile{
		Name: "walk_forward",
		Rules: []FieldRule{
			{FieldProfitFactor, []Strategy{
				profitFactorTags,
				Labels(false, `profit\s*factor`, `pf`),
			}},
			{FieldDrawdownPct, []Strategy{
				drawdownTags,
				Labels(true, `balance\s*drawdown\s*relative`, `max(?:imal)?\s*drawdown`, `drawdown`),
			}},
			{FieldTrades, []Strategy{
				tradesTags,
				Labels(false, `total\s*trades`, `trades`),
			}},
			{FieldNetProfit, []Strategy{
				netProfitTags,
				Labels(false, `net\s*profit`, `total\s*net\s*profit`),
			}},
		},
	}
}
