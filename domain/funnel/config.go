package funnel

// DateColumns names the four lifecycle timestamp columns in the export.
type DateColumns struct {
	Created string
	MQL     string
	SQL     string
	Won     string
}

// CategoricalColumns names the breakdown dimension columns in the export.
type CategoricalColumns struct {
	Channel string
	Region  string
}

// PipelineConfig parameterizes a pipeline run. It replaces implicit
// module-level column lists so the pipeline can be pointed at differently
// labeled exports and tested without global mutation.
type PipelineConfig struct {
	IDColumn           string
	DateColumns        DateColumns
	CategoricalColumns CategoricalColumns

	// ForecastHorizon is the number of future weeks to project;
	// ForecastWindow is the trailing window the projection averages over.
	ForecastHorizon int
	ForecastWindow  int
}

// DefaultPipelineConfig returns the standard CRM export mapping with a
// four-week forecast over a four-week trailing window.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		IDColumn: ColumnLeadID,
		DateColumns: DateColumns{
			Created: ColumnCreatedAt,
			MQL:     ColumnMQLAt,
			SQL:     ColumnSQLAt,
			Won:     ColumnWonAt,
		},
		CategoricalColumns: CategoricalColumns{
			Channel: ColumnChannel,
			Region:  ColumnRegion,
		},
		ForecastHorizon: 4,
		ForecastWindow:  4,
	}
}
