package csvio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadfunnel/domain/funnel"
	"leadfunnel/internal/errors"
	"leadfunnel/internal/testkit"
	"leadfunnel/ports"
)

func TestReadFrom_HeaderAndRows(t *testing.T) {
	input := strings.Join([]string{
		"lead_id, created_at ,channel,extra",
		"1,2024-03-13,Organic,x",
		"2,,",
	}, "\n")

	table, err := ReadFrom(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"lead_id", "created_at", "channel", "extra"}, table.Columns, "header names are trimmed")
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Organic", table.Rows[0]["channel"])
	assert.Equal(t, "x", table.Rows[0]["extra"], "extra columns are carried along")
	assert.Equal(t, "", table.Rows[1]["channel"], "short rows leave trailing cells empty")
}

func TestReader_MissingFileIsACodedError(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "nope.csv")).Read()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInputRead, errors.GetCode(err))
}

func TestReader_RoundTripsGeneratedExport(t *testing.T) {
	gen := testkit.NewLeadGenerator(testkit.DefaultLeadConfig())
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, gen.WriteCSV(path))

	table, err := NewReader(path).Read()
	require.NoError(t, err)

	assert.True(t, table.HasColumn(funnel.ColumnLeadID))
	assert.True(t, table.HasColumn(funnel.ColumnWonAt))
	assert.Len(t, table.Rows, testkit.DefaultLeadConfig().LeadCount)
}

func artifactFixture() ports.ArtifactSet {
	w1 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	w2 := w1.AddDate(0, 0, 7)
	return ports.ArtifactSet{
		Summary: funnel.WeeklySummary{Rows: []funnel.SummaryRow{
			{Week: w1, NewLeads: 4, MQL: 2, SQL: 1, Won: 0, MQLRate: 0.5, SQLRate: 0.5, WinRate: 0, AvgLeadAge: 3.5},
			{Week: w2, NewLeads: 0, MQL: 0, SQL: 0, Won: 1},
		}},
		Channel: funnel.Breakdown{Dimension: funnel.DimensionChannel, Rows: []funnel.BreakdownRow{
			{Value: "Organic", Week: w1, NewLeads: 4, MQL: 2, MQLRate: 0.5},
		}},
		Region: funnel.Breakdown{Dimension: funnel.DimensionRegion, Rows: []funnel.BreakdownRow{
			{Value: "EMEA", Week: w1, NewLeads: 4},
		}},
		Forecast: funnel.Forecast{Rows: []funnel.ForecastRow{
			{WeekStart: w2.AddDate(0, 0, 7), ForecastLeads: 2.5, ForecastWins: 0.5},
		}},
	}
}

func TestWriter_WritesAllFourArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "out"))

	require.NoError(t, w.Export(context.Background(), artifactFixture()))

	summary := readFile(t, filepath.Join(dir, "out", SummaryFile))
	lines := strings.Split(strings.TrimSpace(summary), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "week_created,new_leads,mql,sql,won,mql_rate,sql_rate,win_rate,avg_lead_age", lines[0])
	assert.Equal(t, "2024-03-04,4,2,1,0,0.5,0.5,0,3.5", lines[1])
	assert.Equal(t, "2024-03-11,0,0,0,1,0,0,0,0", lines[2])

	channel := readFile(t, filepath.Join(dir, "out", ChannelFile))
	assert.True(t, strings.HasPrefix(channel, "channel,week_created,"))

	region := readFile(t, filepath.Join(dir, "out", RegionFile))
	assert.True(t, strings.HasPrefix(region, "region,week_created,"))

	forecast := readFile(t, filepath.Join(dir, "out", ForecastFile))
	forecastLines := strings.Split(strings.TrimSpace(forecast), "\n")
	assert.Equal(t, "week_start,forecast_leads,forecast_wins", forecastLines[0])
	assert.Equal(t, "2024-03-18,2.5,0.5", forecastLines[1])
}

func TestWriter_EmptyTablesStillGetHeaders(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	empty := ports.ArtifactSet{
		Channel: funnel.Breakdown{Dimension: funnel.DimensionChannel},
		Region:  funnel.Breakdown{Dimension: funnel.DimensionRegion},
	}
	require.NoError(t, w.Export(context.Background(), empty))

	forecast := readFile(t, filepath.Join(dir, ForecastFile))
	assert.Equal(t, "week_start,forecast_leads,forecast_wins", strings.TrimSpace(forecast))
}

func TestWriter_ExportIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	artifacts := artifactFixture()

	require.NoError(t, w.Export(context.Background(), artifacts))
	first := readFile(t, filepath.Join(dir, SummaryFile))

	require.NoError(t, w.Export(context.Background(), artifacts))
	second := readFile(t, filepath.Join(dir, SummaryFile))

	assert.Equal(t, first, second, "re-export is byte-identical")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
