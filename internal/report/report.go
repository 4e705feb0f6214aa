// Package report builds the textual run summary. The report is
// informational only and not part of the data contract.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"leadfunnel/internal/errors"
)

// Filenames written into the output directory.
const (
	MarkdownFile = "run_report.md"
	HTMLFile     = "run_report.html"
)

// RunReport summarizes one pipeline run for humans.
type RunReport struct {
	RunID          string
	RunAt          time.Time
	InputPath      string
	OutputDir      string
	RecordCount    int
	MissingCreated int
	WeekCount      int
	ForecastWeeks  int
	RuntimeMs      int64
}

// Markdown renders the report as a small markdown document.
func (r RunReport) Markdown() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Lead Funnel Pipeline Run\n\n")
	fmt.Fprintf(&buf, "- Run ID: `%s`\n", r.RunID)
	fmt.Fprintf(&buf, "- Run at: %s\n", r.RunAt.Format(time.RFC3339))
	fmt.Fprintf(&buf, "- Input: `%s`\n\n", r.InputPath)
	fmt.Fprintf(&buf, "## Results\n\n")
	fmt.Fprintf(&buf, "- Records processed: %d\n", r.RecordCount)
	fmt.Fprintf(&buf, "- Records without a creation date: %d\n", r.MissingCreated)
	fmt.Fprintf(&buf, "- Weeks of data generated: %d\n", r.WeekCount)
	fmt.Fprintf(&buf, "- Forecast weeks: %d\n", r.ForecastWeeks)
	fmt.Fprintf(&buf, "- Runtime: %dms\n", r.RuntimeMs)
	fmt.Fprintf(&buf, "- Results saved to `%s/`\n", r.OutputDir)
	return buf.String()
}

// HTML renders the markdown report through the gomarkdown pipeline.
func (r RunReport) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

// Write stores both report renditions in dir.
func (r RunReport) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.ExportFailed("report", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MarkdownFile), []byte(r.Markdown()), 0o644); err != nil {
		return errors.ExportFailed("report", err)
	}
	if err := os.WriteFile(filepath.Join(dir, HTMLFile), r.HTML(), 0o644); err != nil {
		return errors.ExportFailed("report", err)
	}
	return nil
}
