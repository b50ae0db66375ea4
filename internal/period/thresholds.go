// Package period scores per-period backtest results and classifies a whole
// validation run as production-ready or not.
package period

// Thresholds are the monthly objective and production-readiness limits.
type Thresholds struct {
	ObjectiveRatio      float64 `mapstructure:"objective_ratio" json:"monthly_balance_ratio_min" validate:"gte=0"`
	PFMin               float64 `mapstructure:"pf_min" json:"monthly_pf_min" validate:"gte=0"`
	DDMax               float64 `mapstructure:"dd_max" json:"monthly_dd_max_pct" validate:"gte=0"`
	TradesMin           int     `mapstructure:"trades_min" json:"monthly_trades_min" validate:"gte=0"`
	MonthsPassMin       int     `mapstructure:"months_pass_min" json:"months_pass_min" validate:"gte=0"`
	MonthsTotal         int     `mapstructure:"months_total" json:"months_total" validate:"gte=0"`
	MonthsTradesMin     int     `mapstructure:"months_trades_min" json:"months_trades_min" validate:"gte=0"`
	CatastrophicDDMax   float64 `mapstructure:"catastrophic_dd_max" json:"catastrophic_dd_max" validate:"gte=0"`
	DeterminismMaxDrift float64 `mapstructure:"determinism_max_drift" json:"determinism_max_drift" validate:"gte=0"`
}

// DefaultThresholds returns the production limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ObjectiveRatio:      1.8,
		PFMin:               1.75,
		DDMax:               20.0,
		TradesMin:           20,
		MonthsPassMin:       8,
		MonthsTotal:         12,
		MonthsTradesMin:     10,
		CatastrophicDDMax:   30.0,
		DeterminismMaxDrift: 0.02,
	}
}
