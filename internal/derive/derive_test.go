package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadfunnel/domain/core"
	"leadfunnel/domain/funnel"
)

func ts(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestDerive_BucketsEachStageIndependently(t *testing.T) {
	// Created on a Tuesday, won the following Monday: different buckets.
	records := []funnel.Record{{
		LeadID:    "1",
		CreatedAt: ts(2024, 3, 12, 10), // Tue
		WonAt:     ts(2024, 3, 18, 9),  // next Mon
	}}

	derived := Derive(records, core.NewRunAt(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	require.Len(t, derived, 1)
	rec := derived[0]

	require.NotNil(t, rec.WeekCreated)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), *rec.WeekCreated)
	require.NotNil(t, rec.WeekWon)
	assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), *rec.WeekWon)
	assert.Nil(t, rec.WeekMQL)
	assert.Nil(t, rec.WeekSQL)
}

func TestDerive_LeadAgeUsesWonAtWhenPresent(t *testing.T) {
	records := []funnel.Record{{
		LeadID:    "1",
		CreatedAt: ts(2024, 3, 1, 0),
		WonAt:     ts(2024, 3, 11, 0),
	}}

	// runAt far in the future must not matter once the lead is won.
	derived := Derive(records, core.NewRunAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, derived[0].LeadAge)
	assert.Equal(t, 10, *derived[0].LeadAge)
}

func TestDerive_OpenLeadAgesAgainstRunDate(t *testing.T) {
	records := []funnel.Record{{
		LeadID:    "1",
		CreatedAt: ts(2024, 3, 1, 0),
	}}

	derived := Derive(records, core.NewRunAt(time.Date(2024, 3, 8, 17, 30, 0, 0, time.UTC)))
	require.NotNil(t, derived[0].LeadAge)
	assert.Equal(t, 7, *derived[0].LeadAge, "age measured against the run date, not instant")
}

func TestDerive_NegativeAgeClampsToZero(t *testing.T) {
	// Out-of-order data: won before created.
	records := []funnel.Record{{
		LeadID:    "1",
		CreatedAt: ts(2024, 3, 10, 0),
		WonAt:     ts(2024, 3, 1, 0),
	}}

	derived := Derive(records, core.NewRunAt(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, derived[0].LeadAge)
	assert.Equal(t, 0, *derived[0].LeadAge)
}

func TestDerive_MissingCreatedAtMeansNoAgeAndNoBucket(t *testing.T) {
	records := []funnel.Record{{
		LeadID: "1",
		MQLAt:  ts(2024, 3, 12, 10),
		WonAt:  ts(2024, 3, 20, 10),
	}}

	derived := Derive(records, core.NewRunAt(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	rec := derived[0]

	assert.Nil(t, rec.LeadAge, "age is meaningless without a start point")
	assert.Nil(t, rec.WeekCreated)
	assert.NotNil(t, rec.WeekMQL, "other stages still bucket normally")
	assert.NotNil(t, rec.WeekWon)
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	records := []funnel.Record{{LeadID: "1", CreatedAt: ts(2024, 3, 12, 10)}}

	_ = Derive(records, core.NewRunAt(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, records[0].WeekCreated)
}
