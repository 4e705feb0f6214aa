// Package forecast projects future weekly lead and win volume as a flat
// trailing moving average. It is intentionally not trend-aware.
package forecast

import (
	"github.com/montanaflynn/stats"

	"leadfunnel/domain/funnel"
)

// Generate projects the trailing mean of weekly new leads and wins forward
// for `periods` future weeks. Labels start at the last known week plus
// seven days and step by seven days per row. An empty summary yields an
// empty forecast with the defined columns, not an error.
func Generate(summary funnel.WeeklySummary, periods, window int) funnel.Forecast {
	if summary.IsEmpty() || periods <= 0 {
		return funnel.Forecast{}
	}

	leads := make([]float64, 0, len(summary.Rows))
	wins := make([]float64, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		leads = append(leads, float64(row.NewLeads))
		wins = append(wins, float64(row.Won))
	}

	leadsMean := trailingMean(leads, window)
	winsMean := trailingMean(wins, window)

	lastWeek, _ := summary.LastWeek()
	rows := make([]funnel.ForecastRow, 0, periods)
	for i := 1; i <= periods; i++ {
		rows = append(rows, funnel.ForecastRow{
			WeekStart:     lastWeek.AddDate(0, 0, 7*i),
			ForecastLeads: leadsMean,
			ForecastWins:  winsMean,
		})
	}
	return funnel.Forecast{Rows: rows}
}

// trailingMean averages the last `window` observations, or all observations
// when the history is shorter than the window. An empty series forecasts 0.
func trailingMean(series []float64, window int) float64 {
	if len(series) == 0 {
		return 0
	}
	if window > 0 && len(series) > window {
		series = series[len(series)-window:]
	}
	mean, err := stats.Mean(stats.Float64Data(series))
	if err != nil {
		return 0
	}
	return mean
}
