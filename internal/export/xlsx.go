package export

import (
	"math"
	"strings"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/gate"
	"github.com/newthinker/splitgate/internal/period"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a workbook.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// RunsSheet lists split-run records.
func RunsSheet(records []core.RunRecord) Sheet {
	s := Sheet{Name: "Runs", Header: RunColumns}
	for _, r := range records {
		s.Rows = append(s.Rows, []any{
			r.Label, r.SplitTag, string(r.SplitClass), r.FromDate, r.ToDate,
			cell(r.ProfitFactor), cell(r.DrawdownPct), intCell(r.Trades), cell(r.NetProfit),
			r.ReportPath, r.ReportHTML, r.TradeLogPath, string(r.Source),
			r.ConfigSHA256, cell(r.DurationSeconds), intCell(r.ExitCode),
		})
	}
	return s
}

// ReportsSheet lists walk-forward report records.
func ReportsSheet(records []core.RunRecord) Sheet {
	s := Sheet{Name: "Reports", Header: ReportColumns}
	for _, r := range records {
		s.Rows = append(s.Rows, []any{
			r.ReportPath, string(r.SplitClass),
			cell(r.ProfitFactor), cell(r.DrawdownPct), intCell(r.Trades), cell(r.NetProfit),
			cell(r.PFDegradationPct),
		})
	}
	return s
}

// PeriodsSheet lists scored periods.
func PeriodsSheet(rows []period.Row) Sheet {
	s := Sheet{Name: "Months", Header: PeriodColumns}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{
			r.MonthKey, r.FromDate, r.ToDate, r.Status,
			cell(r.PF), cell(r.DDPct), r.Trades,
			r.NetProfit, r.GrossProfit, r.GrossLossAbs,
			cell(r.BalanceRatio), r.Passed, strings.Join(r.Reasons, ","), r.RunDir,
		})
	}
	return s
}

// TiersSheet lists acceptance tier outcomes.
func TiersSheet(tiers []gate.TierResult) Sheet {
	s := Sheet{
		Name:   "Acceptance",
		Header: []string{"tier", "split", "quantifier", "members", "passing", "ratio", "guard_ok", "applicable", "pass"},
	}
	for _, t := range tiers {
		s.Rows = append(s.Rows, []any{
			t.Name, string(t.Split), string(t.Quantifier), t.Members, t.Passing,
			t.Ratio, t.GuardOK, t.Applicable, t.Pass,
		})
	}
	return s
}

// Workbook renders the sheets into an XLSX file. The header row is bold.
func Workbook(sheets ...Sheet) ([]byte, error) {
	fx := excelize.NewFile()
	defer fx.Close()

	headStyle, err := fx.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, s := range sheets {
		if i == 0 {
			if err := fx.SetSheetName(fx.GetSheetName(0), s.Name); err != nil {
				return nil, err
			}
		} else if _, err := fx.NewSheet(s.Name); err != nil {
			return nil, err
		}

		for col, h := range s.Header {
			name, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := fx.SetCellValue(s.Name, name, h); err != nil {
				return nil, err
			}
		}
		if len(s.Header) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(s.Header), 1)
			if err := fx.SetCellStyle(s.Name, "A1", last, headStyle); err != nil {
				return nil, err
			}
		}

		for r, row := range s.Rows {
			for col, v := range row {
				name, _ := excelize.CoordinatesToCellName(col+1, r+2)
				if err := fx.SetCellValue(s.Name, name, v); err != nil {
					return nil, err
				}
			}
		}
	}

	buf, err := fx.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cell keeps finite figures numeric so spreadsheets can sort them.
func cell(v *float64) any {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	if math.IsInf(*v, 0) {
		return Float(v)
	}
	return *v
}

func intCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
