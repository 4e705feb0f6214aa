package aggregate

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"leadfunnel/domain/core"
	"leadfunnel/domain/funnel"
)

// sliceKey identifies one (dimension value, week) group.
type sliceKey struct {
	Value string
	Week  time.Time
}

// ComputeBreakdown repeats the weekly aggregation per dimension value. Each
// distinct value yields its own independent time series; all series are
// collected into one flat table sorted by (value, week). Every stage a lead
// reaches is attributed to the single dimension value on its record.
func ComputeBreakdown(records []funnel.Record, dim funnel.Dimension) funnel.Breakdown {
	created := distinctBySlice(records, dim, weekCreated)
	mql := distinctBySlice(records, dim, weekMQL)
	sql := distinctBySlice(records, dim, weekSQL)
	won := distinctBySlice(records, dim, weekWon)

	keys := sliceUnion(created, mql, sql, won)
	rows := make([]funnel.BreakdownRow, 0, len(keys))
	for _, key := range keys {
		row := funnel.BreakdownRow{
			Value:    key.Value,
			Week:     key.Week,
			NewLeads: len(created[key]),
			MQL:      len(mql[key]),
			SQL:      len(sql[key]),
			Won:      len(won[key]),
		}
		row.MQLRate = core.SafeRate(float64(row.MQL), float64(row.NewLeads))
		row.SQLRate = core.SafeRate(float64(row.SQL), float64(row.MQL))
		row.WinRate = core.SafeRate(float64(row.Won), float64(row.SQL))
		rows = append(rows, row)
	}
	return funnel.Breakdown{Dimension: dim, Rows: rows}
}

func distinctBySlice(records []funnel.Record, dim funnel.Dimension, bucket stageWeek) map[sliceKey]map[string]struct{} {
	out := make(map[sliceKey]map[string]struct{})
	for _, rec := range records {
		wk := bucket(rec)
		if wk == nil {
			continue
		}
		key := sliceKey{Value: rec.DimensionValue(dim), Week: *wk}
		ids, ok := out[key]
		if !ok {
			ids = make(map[string]struct{})
			out[key] = ids
		}
		ids[rec.LeadID] = struct{}{}
	}
	return out
}

func sliceUnion(groups ...map[sliceKey]map[string]struct{}) []sliceKey {
	seen := make(map[sliceKey]struct{})
	for _, g := range groups {
		for key := range g {
			seen[key] = struct{}{}
		}
	}
	keys := lo.Keys(seen)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Value != keys[j].Value {
			return keys[i].Value < keys[j].Value
		}
		return keys[i].Week.Before(keys[j].Week)
	})
	return keys
}
