// Package report exports a finished run to an Excel workbook.
package report

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"housing_go/internal/domain"
	"housing_go/internal/market"
	"housing_go/internal/storage"
	"housing_go/pkg/quant"
)

const (
	SheetSummary      = "Summary"
	SheetTicks        = "Ticks"
	SheetPriceCurve   = "PriceCurve"
	SheetTransactions = "Transactions"
)

// Input is everything a report is built from.
type Input struct {
	Run          domain.RunInfo
	Ticks        []storage.TickRow
	Curve        []market.PricePoint
	Transactions []domain.Transaction
}

// Export writes the workbook to path.
func Export(path string, in Input) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetSummary, summaryRows(in)},
		{SheetTicks, tickRows(in.Ticks)},
		{SheetPriceCurve, curveRows(in.Curve)},
		{SheetTransactions, transactionRows(in.Transactions)},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeRows(f, s.name, s.rows); err != nil {
			return err
		}
		if err := f.SetRowStyle(s.name, 1, 1, header); err != nil {
			return fmt.Errorf("failed to style %s: %w", s.name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	slog.Info("Report written", slog.String("path", path), slog.Int("ticks", len(in.Ticks)))
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func summaryRows(in Input) [][]any {
	var sales int
	for _, t := range in.Ticks {
		sales += t.Sales
	}
	rows := [][]any{
		{"Key", "Value"},
		{"Run ID", in.Run.RunID},
		{"Seed", in.Run.Seed},
		{"Households", in.Run.Households},
		{"Houses", in.Run.Houses},
		{"Quality bands", in.Run.QualityBands},
		{"Ticks", len(in.Ticks)},
		{"Sales", sales},
	}
	if n := len(in.Ticks); n > 0 {
		last := in.Ticks[n-1]
		rows = append(rows,
			[]any{"Final price index", ratio(last.PriceIndex)},
			[]any{"Final annual appreciation", ratio(last.AnnualAppreciation)},
		)
	}
	return rows
}

func tickRows(ticks []storage.TickRow) [][]any {
	rows := [][]any{{
		"Tick", "Sales", "Bids", "Offers", "Avg bid", "Avg offer",
		"Days on market", "Sold/list", "Price index", "Annual appreciation",
	}}
	for _, t := range ticks {
		rows = append(rows, []any{
			t.Tick, t.Sales, t.Bids, t.Offers, money(t.AverageBidPrice), money(t.AverageOfferPrice),
			days(t.AverageDaysOnMarket), ratio(t.SoldToListRatio), ratio(t.PriceIndex), ratio(t.AnnualAppreciation),
		})
	}
	return rows
}

func curveRows(curve []market.PricePoint) [][]any {
	rows := [][]any{{"Quality", "Reference", "Average sale price", "Ratio"}}
	for _, p := range curve {
		rows = append(rows, []any{p.Quality, money(p.Reference), money(p.Current), ratio(p.Current / p.Reference)})
	}
	return rows
}

func transactionRows(txs []domain.Transaction) [][]any {
	rows := [][]any{{
		"Tick", "House", "Quality", "Buyer", "Seller", "Price", "Bid", "Initial list", "Days on market",
	}}
	for _, t := range txs {
		rows = append(rows, []any{
			int64(t.Tick), uint64(t.House), t.Quality, uint64(t.Buyer), uint64(t.Seller),
			money(float64(t.Price)), money(float64(t.BidPrice)), money(float64(t.InitialPrice)), days(t.DaysOnMarket),
		})
	}
	return rows
}

func money(v float64) float64 {
	return float64(quant.RoundPrice(quant.Price(v)))
}

// days rounds a day count to one decimal place.
func days(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func ratio(v float64) float64 {
	return decimal.NewFromFloat(v).Round(6).InexactFloat64()
}
