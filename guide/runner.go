package guide

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/use-agent/buyersguide/dom"
	"github.com/use-agent/buyersguide/engine"
	"github.com/use-agent/buyersguide/extract"
	"github.com/use-agent/buyersguide/models"
	"github.com/use-agent/buyersguide/output"
)

// Runner drives one scrape: open the guide page, resolve its table,
// and emit one CSV row per table row.
type Runner struct {
	Engine engine.Engine
	Parts  *PartExtractor

	// StartURL is the buyers-guide page.
	StartURL string

	// Output is the CSV destination path.
	Output string

	// CheckpointDir, when non-empty, enables progress checkpoints.
	CheckpointDir string

	// Resume appends to the existing output and skips rows completed
	// per the latest checkpoint.
	Resume bool
}

// Run executes the scrape and returns the number of data rows written.
// Row extraction failures are logged and skipped; only surface-level
// failures (navigation, table resolution, output) abort the run.
func (r *Runner) Run(ctx context.Context) (int, error) {
	surface, release, err := r.Engine.Open(ctx, r.StartURL)
	if err != nil {
		return 0, models.NewGuideError(models.ErrCodeNavigation,
			fmt.Sprintf("open guide page %s", r.StartURL), err)
	}
	defer release()

	table := extract.ResolveTable(surface)
	slog.Info("table resolved",
		"strategy", table.Strategy,
		"rows", len(table.Rows),
		"vehicle_col", table.VehicleCol,
		"engine_col", table.EngineCol)

	startRow := 0
	if r.Resume {
		startRow = r.resumePoint()
	}

	var w *output.Writer
	if r.Resume && startRow > 0 {
		w, err = output.Append(r.Output)
	} else {
		w, err = output.Create(r.Output)
	}
	if err != nil {
		return 0, models.NewGuideError(models.ErrCodeOutput, "open output", err)
	}
	defer w.Close()

	written := 0
	for i, row := range table.Rows {
		if i < startRow {
			continue
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}

		out := r.extractRow(ctx, row, table, surface.URL())
		if err := w.Write(out); err != nil {
			return written, models.NewGuideError(models.ErrCodeOutput,
				fmt.Sprintf("write row %d", i), err)
		}
		written++

		if r.CheckpointDir != "" {
			cp := Checkpoint{StartURL: r.StartURL, OutputCSV: r.Output, LastRowIndex: i}
			if err := SaveCheckpoint(r.CheckpointDir, cp); err != nil {
				slog.Warn("checkpoint save failed", "row", i, "error", err)
			}
		}
		slog.Info("row written", "row", i, "vehicle", out.Vehicle)
	}

	return written, nil
}

// extractRow builds one output row. The two part lookups run
// concurrently; each fills its own slot, so one part's failure never
// affects the other.
func (r *Runner) extractRow(ctx context.Context, row dom.Node, table extract.Table, baseURL string) models.OutputRow {
	var out models.OutputRow
	out.Vehicle, out.Engine = extract.RowFields(row, table)

	extract.ExpandHidden(row)

	skpLink := extract.FindPartLink(row, extract.SKPPattern)
	interLink := extract.FindPartLink(row, extract.InterchangePattern)

	// Plain errgroup, not WithContext: a part failure is already
	// absorbed into its record and must not cancel the sibling.
	var g errgroup.Group
	g.Go(func() error {
		out.SKP = r.Parts.PartInfo(ctx, skpLink, baseURL, "skp")
		return nil
	})
	g.Go(func() error {
		out.Interchange = r.Parts.PartInfo(ctx, interLink, baseURL, "interchange")
		return nil
	})
	g.Wait()

	return out
}

// resumePoint returns the index of the first row still to process,
// derived from the latest checkpoint. Checkpoints for a different
// start URL or output file are ignored.
func (r *Runner) resumePoint() int {
	if r.CheckpointDir == "" {
		return 0
	}
	cp, ok, err := LoadCheckpoint(r.CheckpointDir)
	if err != nil {
		slog.Warn("checkpoint load failed", "error", err)
		return 0
	}
	if !ok {
		return 0
	}
	if cp.StartURL != r.StartURL || cp.OutputCSV != r.Output {
		slog.Info("checkpoint is for a different run, starting fresh",
			"checkpoint_url", cp.StartURL)
		return 0
	}
	slog.Info("resuming", "after_row", cp.LastRowIndex)
	return cp.LastRowIndex + 1
}
