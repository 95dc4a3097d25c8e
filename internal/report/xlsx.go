// Package report renders the derived portfolio views as an xlsx workbook.
package report

import (
	"context"
	"fmt"

	"portfolio-analytics-api/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	SheetHoldings   = "Holdings"
	SheetAllocation = "Allocation"
	SheetSummary    = "Summary"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type XLSXGenerator struct {
	log zerolog.Logger
}

func NewXLSXGenerator(log zerolog.Logger) *XLSXGenerator {
	return &XLSXGenerator{log: log.With().Str("component", "xlsx").Logger()}
}

// Generate writes holdings, allocation and summary to separate sheets and
// returns the encoded workbook.
func (g *XLSXGenerator) Generate(ctx context.Context, holdings []models.EnrichedHolding, alloc models.Allocation, summary models.PortfolioSummary) ([]byte, error) {
	log := g.logger(ctx)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Error().Err(err).Msg("close workbook")
		}
	}()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", SheetHoldings); err != nil {
		return nil, err
	}
	if err := fillHoldings(f, holdings, header); err != nil {
		return nil, fmt.Errorf("holdings sheet: %w", err)
	}

	if _, err := f.NewSheet(SheetAllocation); err != nil {
		return nil, err
	}
	if err := fillAllocation(f, alloc, header); err != nil {
		return nil, fmt.Errorf("allocation sheet: %w", err)
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}
	if err := fillSummary(f, summary, header); err != nil {
		return nil, fmt.Errorf("summary sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	log.Debug().Int("holdings", len(holdings)).Int("bytes", buf.Len()).Msg("workbook generated")
	return buf.Bytes(), nil
}

func fillHoldings(f *excelize.File, holdings []models.EnrichedHolding, header int) error {
	titles := []any{"Symbol", "Name", "Quantity", "Avg Price", "Current Price", "Sector", "Market Cap", "Value", "Gain/Loss", "Gain/Loss %"}
	if err := writeHeader(f, SheetHoldings, titles, header); err != nil {
		return err
	}

	for i, h := range holdings {
		row := []any{h.Symbol, h.Name, h.Quantity, h.AvgPrice, h.CurrentPrice, h.Sector, string(h.MarketCap), h.Value, h.GainLoss, h.GainLossPercent}
		if err := f.SetSheetRow(SheetHoldings, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func fillAllocation(f *excelize.File, alloc models.Allocation, header int) error {
	if err := writeHeader(f, SheetAllocation, []any{"Grouping", "Label", "Value", "Percentage"}, header); err != nil {
		return err
	}

	rowNum := 2
	for _, group := range []struct {
		name    string
		buckets models.Buckets
	}{
		{"Sector", alloc.BySector},
		{"Market Cap", alloc.ByMarketCap},
	} {
		for _, label := range group.buckets.Keys() {
			bucket, _ := group.buckets.Get(label)
			row := []any{group.name, label, bucket.Value, bucket.Percentage}
			if err := f.SetSheetRow(SheetAllocation, fmt.Sprintf("A%d", rowNum), &row); err != nil {
				return err
			}
			rowNum++
		}
	}

	rowNum++
	total := []any{"Total", "", alloc.TotalValue}
	return f.SetSheetRow(SheetAllocation, fmt.Sprintf("A%d", rowNum), &total)
}

func fillSummary(f *excelize.File, s models.PortfolioSummary, header int) error {
	if err := writeHeader(f, SheetSummary, []any{"Metric", "Value"}, header); err != nil {
		return err
	}

	rows := [][]any{
		{"Total Value", s.TotalValue},
		{"Total Invested", s.TotalInvested},
		{"Total Gain/Loss", s.TotalGainLoss},
		{"Total Gain/Loss %", s.TotalGainLossPercent},
		{"Number of Holdings", s.NumberOfHoldings},
		{"Top Performer", performerLabel(s.TopPerformer)},
		{"Worst Performer", performerLabel(s.WorstPerformer)},
		{"Diversification Score", s.DiversificationScore},
		{"Risk Level", s.RiskLevel},
		{"Risk Model", s.RiskModel},
	}
	for i := range rows {
		if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", i+2), &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, titles []any, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &titles); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func performerLabel(p *models.Performer) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%s (%.2f%%)", p.Symbol, p.GainLossPercent)
}

// logger prefers the request-scoped logger carried by ctx
func (g *XLSXGenerator) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &g.log
}
