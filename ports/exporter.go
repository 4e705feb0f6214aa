package ports

import (
	"context"

	"leadfunnel/domain/funnel"
)

// ArtifactSet is everything a completed run hands to exporters: the four
// output tables of the data contract.
type ArtifactSet struct {
	Summary  funnel.WeeklySummary
	Channel  funnel.Breakdown
	Region   funnel.Breakdown
	Forecast funnel.Forecast
}

// TableExporter writes the four output tables to one destination (a CSV
// directory, a workbook, ...). Exporters receive immutable artifacts and
// must be safe to run concurrently with each other.
type TableExporter interface {
	// Name identifies the exporter in logs and error messages.
	Name() string
	Export(ctx context.Context, artifacts ArtifactSet) error
}
