package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"leadfunnel/domain/core"
	"leadfunnel/domain/funnel"
	"leadfunnel/internal/aggregate"
	"leadfunnel/internal/derive"
	"leadfunnel/internal/errors"
	"leadfunnel/internal/forecast"
	"leadfunnel/internal/normalize"
	"leadfunnel/ports"
)

// PipelineService wires the pipeline stages together and hands the
// resulting tables to every configured exporter. The stages themselves are
// pure; the service owns identity, timing and logging.
type PipelineService struct {
	cfg       funnel.PipelineConfig
	exporters []ports.TableExporter
	log       *logrus.Logger
}

// RunResult is the manifest of one completed run.
type RunResult struct {
	RunID       core.RunID
	RunAt       core.RunAt
	RecordCount int
	// MissingCreated counts records whose creation timestamp could not be
	// parsed. They stay in RecordCount but appear in no weekly aggregate.
	MissingCreated int
	WeekCount      int
	Artifacts      ports.ArtifactSet
	RuntimeMs      int64
}

// NewPipelineService creates a pipeline service.
func NewPipelineService(cfg funnel.PipelineConfig, exporters []ports.TableExporter, log *logrus.Logger) *PipelineService {
	if log == nil {
		log = logrus.New()
	}
	return &PipelineService{
		cfg:       cfg,
		exporters: exporters,
		log:       log,
	}
}

// Run executes the full batch transform over an in-memory table and exports
// the artifacts. Running twice on the same input with the same runAt yields
// identical output tables.
func (s *PipelineService) Run(ctx context.Context, raw funnel.RawTable, runAt core.RunAt) (*RunResult, error) {
	start := time.Now()
	runID := core.NewRunID()

	records := normalize.New(s.cfg).Normalize(raw)
	records = derive.Derive(records, runAt)

	summary := aggregate.ComputeWeeklySummary(records)
	channel := aggregate.ComputeBreakdown(records, funnel.DimensionChannel)
	region := aggregate.ComputeBreakdown(records, funnel.DimensionRegion)
	projection := forecast.Generate(summary, s.cfg.ForecastHorizon, s.cfg.ForecastWindow)

	missingCreated := 0
	for _, rec := range records {
		if rec.CreatedAt == nil {
			missingCreated++
		}
	}

	result := &RunResult{
		RunID:          runID,
		RunAt:          runAt,
		RecordCount:    len(records),
		MissingCreated: missingCreated,
		WeekCount:      len(summary.Rows),
		Artifacts: ports.ArtifactSet{
			Summary:  summary,
			Channel:  channel,
			Region:   region,
			Forecast: projection,
		},
	}

	s.log.WithFields(logrus.Fields{
		"run_id":          runID.String(),
		"records":         result.RecordCount,
		"missing_created": result.MissingCreated,
		"weeks":           result.WeekCount,
	}).Info("pipeline computed")

	if err := s.export(ctx, result.Artifacts); err != nil {
		return nil, err
	}

	result.RuntimeMs = time.Since(start).Milliseconds()
	return result, nil
}

// export fans the artifact set out to every exporter concurrently. The
// artifacts are immutable at this point.
func (s *PipelineService) export(ctx context.Context, artifacts ports.ArtifactSet) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, exp := range s.exporters {
		exp := exp
		g.Go(func() error {
			if err := exp.Export(ctx, artifacts); err != nil {
				return errors.Wrapf(err, "exporter %s", exp.Name())
			}
			s.log.WithField("exporter", exp.Name()).Debug("artifacts exported")
			return nil
		})
	}
	return g.Wait()
}
