package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadfunnel/adapters/csvio"
	"leadfunnel/domain/core"
	"leadfunnel/domain/funnel"
	"leadfunnel/ports"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// scenarioTable is the canonical three-lead scenario: one lead created in
// W1 with no progression, one created in W1 and won in W2, and one with an
// unparseable created_at that stays out of every week-bucketed aggregate.
func scenarioTable() funnel.RawTable {
	return funnel.RawTable{
		Columns: []string{
			funnel.ColumnLeadID, funnel.ColumnCreatedAt, funnel.ColumnMQLAt,
			funnel.ColumnSQLAt, funnel.ColumnWonAt, funnel.ColumnChannel,
			funnel.ColumnRegion,
		},
		Rows: []map[string]string{
			{
				funnel.ColumnLeadID:    "a",
				funnel.ColumnCreatedAt: "2024-03-05T00:00:00Z",
				funnel.ColumnChannel:   "Organic",
				funnel.ColumnRegion:    "EMEA",
			},
			{
				funnel.ColumnLeadID:    "b",
				funnel.ColumnCreatedAt: "2024-03-05T00:00:00Z",
				funnel.ColumnWonAt:     "2024-03-12T00:00:00Z",
				funnel.ColumnChannel:   "Paid",
				funnel.ColumnRegion:    "EMEA",
			},
			{
				funnel.ColumnLeadID:    "c",
				funnel.ColumnCreatedAt: "never",
				funnel.ColumnChannel:   "Organic",
				funnel.ColumnRegion:    "NA",
			},
		},
	}
}

func scenarioConfig() funnel.PipelineConfig {
	cfg := funnel.DefaultPipelineConfig()
	cfg.ForecastHorizon = 2
	return cfg
}

var scenarioRunAt = core.NewRunAt(time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC))

func TestPipelineService_EndToEndScenario(t *testing.T) {
	svc := NewPipelineService(scenarioConfig(), nil, quietLogger())

	result, err := svc.Run(context.Background(), scenarioTable(), scenarioRunAt)
	require.NoError(t, err)

	assert.Equal(t, 3, result.RecordCount, "the unparseable lead still counts as a record")
	assert.Equal(t, 1, result.MissingCreated)
	assert.NotEmpty(t, result.RunID.String())

	summary := result.Artifacts.Summary
	require.Len(t, summary.Rows, 2)

	w1 := summary.Rows[0]
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), w1.Week)
	assert.Equal(t, 2, w1.NewLeads, "lead c is excluded from week buckets")
	assert.Equal(t, 0, w1.Won)
	// Lead a is open (aged against the run date: 15 days); lead b resolved
	// after 7 days.
	assert.InDelta(t, 11.0, w1.AvgLeadAge, 1e-9)

	w2 := summary.Rows[1]
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), w2.Week)
	assert.Equal(t, 0, w2.NewLeads)
	assert.Equal(t, 1, w2.Won)
	assert.Equal(t, 0.0, w2.AvgLeadAge)

	// Forecast anchors at the last known week and projects trailing means.
	forecast := result.Artifacts.Forecast
	require.Len(t, forecast.Rows, 2)
	assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), forecast.Rows[0].WeekStart)
	assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), forecast.Rows[1].WeekStart)
	assert.InDelta(t, 1.0, forecast.Rows[0].ForecastLeads, 1e-9)
	assert.InDelta(t, 0.5, forecast.Rows[0].ForecastWins, 1e-9)

	// Breakdowns attribute the win to lead b's channel and region.
	channel := result.Artifacts.Channel
	var paidWon int
	for _, row := range channel.Rows {
		if row.Value == "Paid" {
			paidWon += row.Won
		}
	}
	assert.Equal(t, 1, paidWon)
}

func TestPipelineService_IdempotentArtifacts(t *testing.T) {
	runDir := func(dir string) {
		exporters := []ports.TableExporter{csvio.NewWriter(dir)}
		svc := NewPipelineService(scenarioConfig(), exporters, quietLogger())
		_, err := svc.Run(context.Background(), scenarioTable(), scenarioRunAt)
		require.NoError(t, err)
	}

	dirA := t.TempDir()
	dirB := t.TempDir()
	runDir(dirA)
	runDir(dirB)

	for _, name := range []string{
		csvio.SummaryFile, csvio.ChannelFile, csvio.RegionFile, csvio.ForecastFile,
	} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, "artifact %s must be byte-identical across runs", name)
	}
}

func TestPipelineService_EmptyInput(t *testing.T) {
	svc := NewPipelineService(scenarioConfig(), nil, quietLogger())

	result, err := svc.Run(context.Background(), funnel.RawTable{}, scenarioRunAt)
	require.NoError(t, err)

	assert.Equal(t, 0, result.RecordCount)
	assert.True(t, result.Artifacts.Summary.IsEmpty())
	assert.Empty(t, result.Artifacts.Forecast.Rows)
}
