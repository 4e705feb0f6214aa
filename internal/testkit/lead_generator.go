// Package testkit provides a deterministic synthetic lead export generator
// for adapter and pipeline tests.
package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"time"

	"leadfunnel/domain/funnel"
)

// LeadGeneratorConfig configures the synthetic lead export generator
type LeadGeneratorConfig struct {
	LeadCount int
	Channels  []string
	Regions   []string
	StartDate time.Time
	EndDate   time.Time

	// Funnel progression probabilities, applied stage by stage.
	MQLRate float64
	SQLRate float64
	WinRate float64

	// MissingRate is the chance a categorical cell is left blank, to
	// exercise the "Unknown" fill path.
	MissingRate float64

	Seed int64
}

// DefaultLeadConfig returns sensible defaults for lead data generation
func DefaultLeadConfig() LeadGeneratorConfig {
	return LeadGeneratorConfig{
		LeadCount: 200,
		Channels:  []string{"Paid Search", "Organic", "Outbound", "Events"},
		Regions:   []string{"EMEA", "NA", "APAC"},
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		MQLRate:   0.6,
		SQLRate:   0.5,
		WinRate:   0.4,

		MissingRate: 0.05,
		Seed:        42,
	}
}

// LeadGenerator generates a realistic CRM lead export
type LeadGenerator struct {
	config LeadGeneratorConfig
	rng    *rand.Rand
}

// NewLeadGenerator creates a new lead generator
func NewLeadGenerator(config LeadGeneratorConfig) *LeadGenerator {
	return &LeadGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateTable produces a deterministic RawTable shaped like the CRM
// export. The same seed always yields the same table.
func (g *LeadGenerator) GenerateTable() funnel.RawTable {
	columns := []string{
		funnel.ColumnLeadID,
		funnel.ColumnCreatedAt,
		funnel.ColumnMQLAt,
		funnel.ColumnSQLAt,
		funnel.ColumnWonAt,
		funnel.ColumnChannel,
		funnel.ColumnRegion,
	}

	rows := make([]map[string]string, 0, g.config.LeadCount)
	for i := 0; i < g.config.LeadCount; i++ {
		rows = append(rows, g.generateLead(i))
	}
	return funnel.RawTable{Columns: columns, Rows: rows}
}

// generateLead produces one lead journey: created always, later stages by
// configured probability, each stage 1-14 days after the previous one.
func (g *LeadGenerator) generateLead(i int) map[string]string {
	created := g.randomTimeInRange(g.config.StartDate, g.config.EndDate)
	row := map[string]string{
		funnel.ColumnLeadID:    fmt.Sprintf("lead_%04d", i+1),
		funnel.ColumnCreatedAt: created.Format(time.RFC3339),
		funnel.ColumnMQLAt:     "",
		funnel.ColumnSQLAt:     "",
		funnel.ColumnWonAt:     "",
		funnel.ColumnChannel:   g.pick(g.config.Channels),
		funnel.ColumnRegion:    g.pick(g.config.Regions),
	}

	at := created
	if g.rng.Float64() < g.config.MQLRate {
		at = g.advance(at)
		row[funnel.ColumnMQLAt] = at.Format(time.RFC3339)
		if g.rng.Float64() < g.config.SQLRate {
			at = g.advance(at)
			row[funnel.ColumnSQLAt] = at.Format(time.RFC3339)
			if g.rng.Float64() < g.config.WinRate {
				at = g.advance(at)
				row[funnel.ColumnWonAt] = at.Format(time.RFC3339)
			}
		}
	}
	return row
}

// WriteCSV stores the generated table as a CSV file for adapter tests.
func (g *LeadGenerator) WriteCSV(path string) error {
	table := g.GenerateTable()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (g *LeadGenerator) pick(values []string) string {
	if g.rng.Float64() < g.config.MissingRate {
		return ""
	}
	return values[g.rng.Intn(len(values))]
}

func (g *LeadGenerator) advance(t time.Time) time.Time {
	return t.Add(time.Duration(1+g.rng.Intn(14*24)) * time.Hour)
}

func (g *LeadGenerator) randomTimeInRange(start, end time.Time) time.Time {
	delta := end.Unix() - start.Unix()
	if delta <= 0 {
		return start
	}
	return time.Unix(start.Unix()+g.rng.Int63n(delta), 0).UTC()
}
