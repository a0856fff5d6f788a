package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/johnconna/pyforce-evaluation-v2/internal/adapter"
	"github.com/johnconna/pyforce-evaluation-v2/internal/controller"
	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

// Artifact names written into the reports directory besides the
// per-package reports.
const (
	SummaryFileName  = "summary.yaml"
	ManifestFileName = "harvest_manifest.jsonl"
)

// RunArgs configures one batch run.
type RunArgs struct {
	Source       m.Path
	Harvest      m.Path
	Reports      m.Path
	SuffixFilter string
	Threads      int
}

// ListArgs configures the source directory listing.
type ListArgs struct {
	Source m.Path
}

// Workflow is the batch runner: it enumerates the source directory, runs
// one package scan job per eligible file and aggregates the summary.
// Individual job failures are recorded, never fatal; Run returns an error
// only when the source, harvest or reports directories themselves are
// unusable.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) (m.Summary, error)
	List(ctx context.Context, args ListArgs) error
}

type workflow struct {
	fs           adapter.HarvestFSAdapter
	reports      adapter.ReportStore
	ui           controller.UI
	orchestrator Orchestrator
	detector     Detector
}

// NewWorkflow creates a Workflow instance with the provided dependencies.
func NewWorkflow(
	fs adapter.HarvestFSAdapter,
	reports adapter.ReportStore,
	ui controller.UI,
	orchestrator Orchestrator,
	detector Detector,
) Workflow {
	return &workflow{
		fs:           fs,
		reports:      reports,
		ui:           ui,
		orchestrator: orchestrator,
		detector:     detector,
	}
}

// Run executes the whole batch: one job per regular file directly inside
// the source directory, in stable name order, sequentially unless
// args.Threads asks for workers.
func (w *workflow) Run(ctx context.Context, args RunArgs) (m.Summary, error) {
	summary := m.Summary{StartedAt: time.Now()}

	names, err := w.fs.ListDir(args.Source)
	if err != nil {
		return summary, fmt.Errorf("read source dir %s: %w", args.Source, err)
	}

	if err := w.fs.MkdirAll(args.Harvest, 0o750); err != nil {
		return summary, fmt.Errorf("prepare harvest dir %s: %w", args.Harvest, err)
	}

	if err := w.fs.MkdirAll(args.Reports, 0o750); err != nil {
		return summary, fmt.Errorf("prepare reports dir %s: %w", args.Reports, err)
	}

	manifest, err := adapter.NewManifestStore(string(w.fs.JoinPath(string(args.Reports), ManifestFileName)))
	if err != nil {
		return summary, err
	}

	defer func() { _ = manifest.Close() }()

	threads := args.Threads
	if threads < 1 {
		threads = 1
	}

	w.ui.DisplayBatchInfo(len(names), threads)
	slog.Info("starting batch", "source", args.Source, "files", len(names), "threads", threads)

	jobArgs := JobArgs{
		Harvest:      args.Harvest,
		Reports:      args.Reports,
		SuffixFilter: args.SuffixFilter,
	}

	results := make([]m.JobResult, len(names))

	if threads == 1 {
		for i, name := range names {
			results[i] = w.runJob(ctx, args.Source, name, jobArgs, manifest)
		}
	} else {
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(threads)

		for i, name := range names {
			i, name := i, name
			group.Go(func() error {
				results[i] = w.runJob(groupCtx, args.Source, name, jobArgs, manifest)
				return nil
			})
		}

		// Jobs never return errors through the group; only context
		// cancellation can surface here.
		if err := group.Wait(); err != nil {
			return summary, err
		}
	}

	for _, result := range results {
		summary.Record(result)
	}

	summary.FinishedAt = time.Now()

	summaryPath := w.fs.JoinPath(string(args.Reports), SummaryFileName)
	if err := w.reports.SaveSummary(summaryPath, summary); err != nil {
		slog.Error("failed to write batch summary", "path", summaryPath, "error", err)
	}

	w.ui.DisplaySummary(summary)
	slog.Info("batch finished", "done", summary.Done, "skipped", summary.Skipped, "failed", summary.Failed)

	return summary, nil
}

func (w *workflow) runJob(ctx context.Context, source m.Path, name string, args JobArgs, manifest adapter.ManifestStore) m.JobResult {
	entry := m.SourceEntry{
		Path: w.fs.JoinPath(string(source), name),
		Name: name,
	}

	result := w.orchestrator.ScanPackage(ctx, entry, args)

	if len(result.Merged) > 0 {
		if err := manifest.Append(result.Merged); err != nil {
			slog.Error("failed to append harvest manifest", "archive", name, "error", err)
		}
	}

	w.ui.DisplayJobResult(result)

	return result
}

// List enumerates the source directory and displays each file's detected
// archive kind without touching any archive.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	names, err := w.fs.ListDir(args.Source)
	if err != nil {
		return fmt.Errorf("read source dir %s: %w", args.Source, err)
	}

	var (
		entries []m.SourceEntry
		ignored int
	)

	for _, name := range names {
		if w.detector.Ignored(name) {
			ignored++
			continue
		}

		entries = append(entries, m.SourceEntry{
			Path: w.fs.JoinPath(string(args.Source), name),
			Name: name,
			Kind: w.detector.Detect(name),
		})
	}

	w.ui.DisplayEntries(entries, ignored)

	return nil
}
