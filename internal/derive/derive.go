// Package derive fills the per-stage week buckets and lead age on
// normalized records.
package derive

import (
	"time"

	"leadfunnel/domain/core"
	"leadfunnel/domain/funnel"
)

// Derive computes the four week buckets and the lead age for every record.
// Buckets are computed independently per lifecycle stage, so a lead created
// on a Tuesday and won the following Monday lands in different buckets per
// milestone. The input slice is not mutated.
func Derive(records []funnel.Record, runAt core.RunAt) []funnel.Record {
	today := runAt.Date()
	out := make([]funnel.Record, len(records))
	for i, rec := range records {
		rec.WeekCreated = weekOf(rec.CreatedAt)
		rec.WeekMQL = weekOf(rec.MQLAt)
		rec.WeekSQL = weekOf(rec.SQLAt)
		rec.WeekWon = weekOf(rec.WonAt)
		rec.LeadAge = leadAge(rec.CreatedAt, rec.WonAt, today)
		out[i] = rec
	}
	return out
}

func weekOf(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	w := core.WeekStart(*t)
	return &w
}

// leadAge returns whole days between creation and resolution, using the run
// date for still-open leads. Clock skew or out-of-order data can produce a
// negative difference; that clamps to 0. No creation instant means no age.
func leadAge(createdAt, wonAt *time.Time, today time.Time) *int {
	if createdAt == nil {
		return nil
	}
	end := today
	if wonAt != nil {
		end = *wonAt
	}
	days := int(end.Sub(*createdAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}
