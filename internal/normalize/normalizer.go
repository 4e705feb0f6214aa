// Package normalize converts raw export rows into typed lead records.
//
// The normalizer never rejects a row: malformed or missing dates degrade to
// nil, missing categories become "Unknown", and absent columns default every
// row. All data-quality problems are absorbed here so the stages downstream
// can assume well-typed input.
package normalize

import (
	"strings"
	"time"

	"leadfunnel/domain/funnel"
)

// dateFormats are tried in order. Formats without an offset are taken as
// UTC; offsets are converted, so every parsed instant is UTC-aware.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// Normalizer maps raw rows onto lead records using the configured column
// names.
type Normalizer struct {
	cfg funnel.PipelineConfig
}

// New creates a normalizer for the given column mapping.
func New(cfg funnel.PipelineConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize converts every raw row into a record. No side effects, no
// errors: a row that carries nothing usable still yields a record with nil
// dates and "Unknown" categories.
func (n *Normalizer) Normalize(raw funnel.RawTable) []funnel.Record {
	hasCreated := raw.HasColumn(n.cfg.DateColumns.Created)
	hasMQL := raw.HasColumn(n.cfg.DateColumns.MQL)
	hasSQL := raw.HasColumn(n.cfg.DateColumns.SQL)
	hasWon := raw.HasColumn(n.cfg.DateColumns.Won)
	hasChannel := raw.HasColumn(n.cfg.CategoricalColumns.Channel)
	hasRegion := raw.HasColumn(n.cfg.CategoricalColumns.Region)

	records := make([]funnel.Record, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		rec := funnel.Record{
			LeadID:  row[n.cfg.IDColumn],
			Channel: category(row[n.cfg.CategoricalColumns.Channel], hasChannel),
			Region:  category(row[n.cfg.CategoricalColumns.Region], hasRegion),
		}
		if hasCreated {
			rec.CreatedAt = parseDate(row[n.cfg.DateColumns.Created])
		}
		if hasMQL {
			rec.MQLAt = parseDate(row[n.cfg.DateColumns.MQL])
		}
		if hasSQL {
			rec.SQLAt = parseDate(row[n.cfg.DateColumns.SQL])
		}
		if hasWon {
			rec.WonAt = parseDate(row[n.cfg.DateColumns.Won])
		}
		records = append(records, rec)
	}
	return records
}

// parseDate parses a raw cell into a UTC instant. Empty or unparseable
// content yields nil; malformed dates are silently treated as missing.
func parseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

// category trims a categorical cell and fills blanks with "Unknown". An
// absent column defaults every row.
func category(raw string, present bool) string {
	if !present {
		return funnel.UnknownCategory
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return funnel.UnknownCategory
	}
	return s
}
