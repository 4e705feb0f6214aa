// Package aggregate turns derived lead records into the weekly summary and
// dimensional breakdown tables.
//
// Both tables use the same grouping policy: counts are distinct lead IDs
// per (group, stage), the row set is the outer join of the four per-stage
// groupings, and missing combinations are zero-filled rather than dropped.
package aggregate

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"leadfunnel/domain/core"
	"leadfunnel/domain/funnel"
)

// stageWeek selects one lifecycle bucket from a record; nil means the lead
// never reached that stage.
type stageWeek func(funnel.Record) *time.Time

func weekCreated(r funnel.Record) *time.Time { return r.WeekCreated }
func weekMQL(r funnel.Record) *time.Time     { return r.WeekMQL }
func weekSQL(r funnel.Record) *time.Time     { return r.WeekSQL }
func weekWon(r funnel.Record) *time.Time     { return r.WeekWon }

// ComputeWeeklySummary produces exactly one row per week appearing in the
// union of the four stage bucket sets, sorted ascending. Records with a nil
// bucket for a stage simply do not contribute to that stage.
func ComputeWeeklySummary(records []funnel.Record) funnel.WeeklySummary {
	created := distinctByWeek(records, weekCreated)
	mql := distinctByWeek(records, weekMQL)
	sql := distinctByWeek(records, weekSQL)
	won := distinctByWeek(records, weekWon)

	ages := agesByWeek(records)

	weeks := weekUnion(created, mql, sql, won)
	rows := make([]funnel.SummaryRow, 0, len(weeks))
	for _, week := range weeks {
		row := funnel.SummaryRow{
			Week:     week,
			NewLeads: len(created[week]),
			MQL:      len(mql[week]),
			SQL:      len(sql[week]),
			Won:      len(won[week]),
		}
		row.MQLRate = core.SafeRate(float64(row.MQL), float64(row.NewLeads))
		row.SQLRate = core.SafeRate(float64(row.SQL), float64(row.MQL))
		row.WinRate = core.SafeRate(float64(row.Won), float64(row.SQL))
		if vals := ages[week]; len(vals) > 0 {
			row.AvgLeadAge = stat.Mean(vals, nil)
		}
		rows = append(rows, row)
	}
	return funnel.WeeklySummary{Rows: rows}
}

// distinctByWeek groups distinct lead IDs by the selected stage bucket.
// Duplicate IDs in the same (week, stage) count once.
func distinctByWeek(records []funnel.Record, bucket stageWeek) map[time.Time]map[string]struct{} {
	out := make(map[time.Time]map[string]struct{})
	for _, rec := range records {
		wk := bucket(rec)
		if wk == nil {
			continue
		}
		ids, ok := out[*wk]
		if !ok {
			ids = make(map[string]struct{})
			out[*wk] = ids
		}
		ids[rec.LeadID] = struct{}{}
	}
	return out
}

// agesByWeek collects lead ages keyed by creation week. Only records
// created in a week feed that week's average; other stages never mix in.
func agesByWeek(records []funnel.Record) map[time.Time][]float64 {
	out := make(map[time.Time][]float64)
	for _, rec := range records {
		if rec.WeekCreated == nil || rec.LeadAge == nil {
			continue
		}
		out[*rec.WeekCreated] = append(out[*rec.WeekCreated], float64(*rec.LeadAge))
	}
	return out
}

func weekUnion(groups ...map[time.Time]map[string]struct{}) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, g := range groups {
		for wk := range g {
			seen[wk] = struct{}{}
		}
	}
	weeks := lo.Keys(seen)
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}
