package csvio

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"leadfunnel/domain/funnel"
	"leadfunnel/internal/errors"
	"leadfunnel/ports"
)

// Artifact filenames inside the output directory.
const (
	SummaryFile  = "weekly_summary.csv"
	ChannelFile  = "channel_breakdown.csv"
	RegionFile   = "region_breakdown.csv"
	ForecastFile = "forecast.csv"
)

// Writer exports the four artifact tables as CSV files in an output
// directory. Column order follows the data contract exactly; week cells are
// plain dates, rates are shortest round-trip floats.
type Writer struct {
	dir string
}

// NewWriter creates a writer targeting the given output directory. The
// directory is created on export.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Name implements ports.TableExporter.
func (w *Writer) Name() string { return "csv" }

// Export writes the four artifact files. The writes are independent and run
// under an errgroup.
func (w *Writer) Export(ctx context.Context, artifacts ports.ArtifactSet) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.ExportFailed(w.Name(), err)
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.writeFile(SummaryFile, funnel.SummaryColumns(), summaryCells(artifacts.Summary))
	})
	g.Go(func() error {
		return w.writeFile(ChannelFile, funnel.BreakdownColumns(artifacts.Channel.Dimension), breakdownCells(artifacts.Channel))
	})
	g.Go(func() error {
		return w.writeFile(RegionFile, funnel.BreakdownColumns(artifacts.Region.Dimension), breakdownCells(artifacts.Region))
	})
	g.Go(func() error {
		return w.writeFile(ForecastFile, funnel.ForecastColumns(), forecastCells(artifacts.Forecast))
	})
	return g.Wait()
}

func (w *Writer) writeFile(name string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return errors.ExportFailed(w.Name(), err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return errors.ExportFailed(w.Name(), err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return errors.ExportFailed(w.Name(), err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.ExportFailed(w.Name(), err)
	}
	return nil
}

func summaryCells(summary funnel.WeeklySummary) [][]string {
	rows := make([][]string, 0, len(summary.Rows))
	for _, r := range summary.Rows {
		rows = append(rows, []string{
			formatWeek(r.Week),
			strconv.Itoa(r.NewLeads),
			strconv.Itoa(r.MQL),
			strconv.Itoa(r.SQL),
			strconv.Itoa(r.Won),
			formatFloat(r.MQLRate),
			formatFloat(r.SQLRate),
			formatFloat(r.WinRate),
			formatFloat(r.AvgLeadAge),
		})
	}
	return rows
}

func breakdownCells(breakdown funnel.Breakdown) [][]string {
	rows := make([][]string, 0, len(breakdown.Rows))
	for _, r := range breakdown.Rows {
		rows = append(rows, []string{
			r.Value,
			formatWeek(r.Week),
			strconv.Itoa(r.NewLeads),
			strconv.Itoa(r.MQL),
			strconv.Itoa(r.SQL),
			strconv.Itoa(r.Won),
			formatFloat(r.MQLRate),
			formatFloat(r.SQLRate),
			formatFloat(r.WinRate),
		})
	}
	return rows
}

func forecastCells(forecast funnel.Forecast) [][]string {
	rows := make([][]string, 0, len(forecast.Rows))
	for _, r := range forecast.Rows {
		rows = append(rows, []string{
			formatWeek(r.WeekStart),
			formatFloat(r.ForecastLeads),
			formatFloat(r.ForecastWins),
		})
	}
	return rows
}

func formatWeek(t time.Time) string {
	return t.Format("2006-01-02")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
