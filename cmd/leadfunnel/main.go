package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"leadfunnel/adapters/csvio"
	"leadfunnel/adapters/excel"
	"leadfunnel/app"
	"leadfunnel/domain/core"
	"leadfunnel/domain/funnel"
	"leadfunnel/internal/config"
	"leadfunnel/internal/report"
	"leadfunnel/ports"
)

// WorkbookFile is the Excel artifact written next to the CSVs.
const WorkbookFile = "funnel_report.xlsx"

func main() {
	rootCmd := &cobra.Command{
		Use:   "leadfunnel",
		Short: "Weekly lead-funnel analytics over a CRM CSV export",
	}

	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var input string
	var output string
	var asOf string
	var periods int
	var window int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the weekly aggregation and forecast over a lead export",
		Long: `Run the full pipeline: normalize the export, bucket lifecycle events
into ISO weeks, compute the weekly summary plus channel/region breakdowns,
and project a moving-average forecast. Artifacts land in the output
directory as CSV files, an Excel workbook and a run report.

Example: leadfunnel run --input crm_leads.csv --output output --as-of "2024-03-11T00:00:00Z"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; environment wins over defaults, flags win
			// over environment.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("input") {
				cfg.Input.CSVPath = input
			}
			if cmd.Flags().Changed("output") {
				cfg.Output.Dir = output
			}
			if cmd.Flags().Changed("periods") {
				cfg.Forecast.Horizon = periods
			}
			if cmd.Flags().Changed("window") {
				cfg.Forecast.Window = window
			}

			runAt := core.NewRunAt(time.Now())
			if asOf != "" {
				t, err := time.Parse(time.RFC3339, asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of format (use RFC3339): %w", err)
				}
				runAt = core.NewRunAt(t)
			}

			return run(cmd.Context(), cfg, runAt)
		},
	}

	cmd.Flags().StringVar(&input, "input", "crm_leads.csv", "Path to the lead export CSV")
	cmd.Flags().StringVar(&output, "output", "output", "Directory for output artifacts")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Run instant (RFC3339); defaults to the current time")
	cmd.Flags().IntVar(&periods, "periods", 4, "Forecast horizon in weeks")
	cmd.Flags().IntVar(&window, "window", 4, "Trailing moving-average window in weeks")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, runAt core.RunAt) error {
	log := newLogger(cfg.Logging.Level)

	raw, err := csvio.NewReader(cfg.Input.CSVPath).Read()
	if err != nil {
		return err
	}

	exporters := []ports.TableExporter{csvio.NewWriter(cfg.Output.Dir)}
	if cfg.Output.ExcelEnabled {
		exporters = append(exporters, excel.NewWriter(filepath.Join(cfg.Output.Dir, WorkbookFile)))
	}

	pipelineCfg := funnel.DefaultPipelineConfig()
	pipelineCfg.ForecastHorizon = cfg.Forecast.Horizon
	pipelineCfg.ForecastWindow = cfg.Forecast.Window

	svc := app.NewPipelineService(pipelineCfg, exporters, log)
	result, err := svc.Run(ctx, raw, runAt)
	if err != nil {
		return err
	}

	runReport := report.RunReport{
		RunID:          result.RunID.String(),
		RunAt:          runAt.Time(),
		InputPath:      cfg.Input.CSVPath,
		OutputDir:      cfg.Output.Dir,
		RecordCount:    result.RecordCount,
		MissingCreated: result.MissingCreated,
		WeekCount:      result.WeekCount,
		ForecastWeeks:  len(result.Artifacts.Forecast.Rows),
		RuntimeMs:      result.RuntimeMs,
	}
	if err := runReport.Write(cfg.Output.Dir); err != nil {
		return err
	}

	log.Infof("Pipeline completed. %d records processed.", result.RecordCount)
	log.Infof("Generated %d weeks of data.", result.WeekCount)
	log.Infof("Results saved to %s/", cfg.Output.Dir)
	return nil
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	if parsed, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(parsed)
	}
	return log
}
