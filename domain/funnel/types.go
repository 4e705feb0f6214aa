package funnel

import (
	"time"
)

// Input column names of the CRM lead export.
const (
	ColumnLeadID    = "lead_id"
	ColumnCreatedAt = "created_at"
	ColumnMQLAt     = "mql_at"
	ColumnSQLAt     = "sql_at"
	ColumnWonAt     = "won_at"
	ColumnChannel   = "channel"
	ColumnRegion    = "region"
)

// UnknownCategory is the fill value for missing categorical fields.
const UnknownCategory = "Unknown"

// RawTable is the unparsed input: the column order as read plus one
// column-name to raw-value map per row. Columns absent from the export are
// simply missing from Columns; downstream stages default them.
type RawTable struct {
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether the export carried the named column.
func (t RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Record is one normalized lead. Nil pointers mean the value is missing,
// never zero. Derived fields are filled in by the deriver; the week bucket
// for a stage is defined iff the stage timestamp is defined.
type Record struct {
	LeadID  string
	Channel string
	Region  string

	CreatedAt *time.Time
	MQLAt     *time.Time
	SQLAt     *time.Time
	WonAt     *time.Time

	WeekCreated *time.Time
	WeekMQL     *time.Time
	WeekSQL     *time.Time
	WeekWon     *time.Time

	// LeadAge is the whole-day age of the lead, nil when created_at is
	// missing (age is meaningless without a start point).
	LeadAge *int
}

// Dimension is a categorical axis a breakdown table is sliced by.
type Dimension string

const (
	DimensionChannel Dimension = ColumnChannel
	DimensionRegion  Dimension = ColumnRegion
)

// DimensionValue returns the record's value for a breakdown dimension. A
// lead is attributed to exactly one value per dimension for every stage it
// reaches; mid-funnel reassignment is not modeled.
func (r Record) DimensionValue(dim Dimension) string {
	switch dim {
	case DimensionChannel:
		return r.Channel
	case DimensionRegion:
		return r.Region
	}
	return UnknownCategory
}

// SummaryRow is one week of funnel-wide metrics.
type SummaryRow struct {
	Week       time.Time
	NewLeads   int
	MQL        int
	SQL        int
	Won        int
	MQLRate    float64
	SQLRate    float64
	WinRate    float64
	AvgLeadAge float64
}

// WeeklySummary is the outer-joined per-week table, ascending by week. A
// week that appears in any stage's bucket set has exactly one row.
type WeeklySummary struct {
	Rows []SummaryRow
}

// IsEmpty reports whether the summary has no weeks.
func (s WeeklySummary) IsEmpty() bool {
	return len(s.Rows) == 0
}

// LastWeek returns the most recent week bucket in the summary.
func (s WeeklySummary) LastWeek() (time.Time, bool) {
	if s.IsEmpty() {
		return time.Time{}, false
	}
	return s.Rows[len(s.Rows)-1].Week, true
}

// BreakdownRow is one (dimension value, week) slice of funnel metrics.
type BreakdownRow struct {
	Value    string
	Week     time.Time
	NewLeads int
	MQL      int
	SQL      int
	Won      int
	MQLRate  float64
	SQLRate  float64
	WinRate  float64
}

// Breakdown is the flat per-dimension table, sorted by (value, week).
type Breakdown struct {
	Dimension Dimension
	Rows      []BreakdownRow
}

// ForecastRow is one projected future week.
type ForecastRow struct {
	WeekStart     time.Time
	ForecastLeads float64
	ForecastWins  float64
}

// Forecast is the flat moving-average projection table.
type Forecast struct {
	Rows []ForecastRow
}

// Artifact schemas. Column order is part of the data contract consumed by
// downstream analysts; exporters must emit columns in exactly this order.

// SummaryColumns returns the weekly summary header.
func SummaryColumns() []string {
	return []string{
		"week_created", "new_leads", "mql", "sql", "won",
		"mql_rate", "sql_rate", "win_rate", "avg_lead_age",
	}
}

// BreakdownColumns returns the breakdown header for a dimension.
func BreakdownColumns(dim Dimension) []string {
	return []string{
		string(dim), "week_created", "new_leads", "mql", "sql", "won",
		"mql_rate", "sql_rate", "win_rate",
	}
}

// ForecastColumns returns the forecast header.
func ForecastColumns() []string {
	return []string{"week_start", "forecast_leads", "forecast_wins"}
}
