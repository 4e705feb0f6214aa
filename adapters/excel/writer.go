// Package excel renders the four artifact tables into a single workbook so
// analysts can pivot without re-importing the CSVs.
package excel

import (
	"context"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"leadfunnel/domain/funnel"
	"leadfunnel/internal/errors"
	"leadfunnel/ports"
)

// Sheet names inside the workbook.
const (
	SheetSummary  = "Weekly Summary"
	SheetChannel  = "Channel Breakdown"
	SheetRegion   = "Region Breakdown"
	SheetForecast = "Forecast"
)

// Writer exports the artifact set as one .xlsx workbook.
type Writer struct {
	path string
}

// NewWriter creates a workbook writer targeting path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Name implements ports.TableExporter.
func (w *Writer) Name() string { return "excel" }

// Export writes all four tables, one sheet each. Week cells are written as
// plain date strings so the workbook matches the CSV artifacts cell for
// cell.
func (w *Writer) Export(ctx context.Context, artifacts ports.ArtifactSet) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.ExportFailed(w.Name(), err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet instead of leaving an empty Sheet1 behind.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return errors.ExportFailed(w.Name(), err)
	}

	if err := writeSheet(f, SheetSummary, funnel.SummaryColumns(), summaryRows(artifacts.Summary)); err != nil {
		return errors.ExportFailed(w.Name(), err)
	}
	if err := writeSheet(f, SheetChannel, funnel.BreakdownColumns(artifacts.Channel.Dimension), breakdownRows(artifacts.Channel)); err != nil {
		return errors.ExportFailed(w.Name(), err)
	}
	if err := writeSheet(f, SheetRegion, funnel.BreakdownColumns(artifacts.Region.Dimension), breakdownRows(artifacts.Region)); err != nil {
		return errors.ExportFailed(w.Name(), err)
	}
	if err := writeSheet(f, SheetForecast, funnel.ForecastColumns(), forecastRows(artifacts.Forecast)); err != nil {
		return errors.ExportFailed(w.Name(), err)
	}

	if err := f.SaveAs(w.path); err != nil {
		return errors.ExportFailed(w.Name(), err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	if sheet != SheetSummary {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}

	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func summaryRows(summary funnel.WeeklySummary) [][]interface{} {
	rows := make([][]interface{}, 0, len(summary.Rows))
	for _, r := range summary.Rows {
		rows = append(rows, []interface{}{
			r.Week.Format("2006-01-02"),
			r.NewLeads, r.MQL, r.SQL, r.Won,
			r.MQLRate, r.SQLRate, r.WinRate, r.AvgLeadAge,
		})
	}
	return rows
}

func breakdownRows(breakdown funnel.Breakdown) [][]interface{} {
	rows := make([][]interface{}, 0, len(breakdown.Rows))
	for _, r := range breakdown.Rows {
		rows = append(rows, []interface{}{
			r.Value,
			r.Week.Format("2006-01-02"),
			r.NewLeads, r.MQL, r.SQL, r.Won,
			r.MQLRate, r.SQLRate, r.WinRate,
		})
	}
	return rows
}

func forecastRows(forecast funnel.Forecast) [][]interface{} {
	rows := make([][]interface{}, 0, len(forecast.Rows))
	for _, r := range forecast.Rows {
		rows = append(rows, []interface{}{
			r.WeekStart.Format("2006-01-02"),
			r.ForecastLeads,
			r.ForecastWins,
		})
	}
	return rows
}
