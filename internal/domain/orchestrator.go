package domain

import (
	"context"
	"log/slog"

	"github.com/johnconna/pyforce-evaluation-v2/internal/adapter"
	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

// JobArgs carries the batch-level settings every package scan job shares.
type JobArgs struct {
	Harvest      m.Path
	Reports      m.Path
	SuffixFilter string
}

// Orchestrator runs one package scan job end to end: classify the input,
// extract it into a private scratch area, merge matched sources into the
// harvest tree, invoke the scanner and persist the report. Any failure is
// contained in the returned JobResult so one bad archive can never abort
// or corrupt the processing of another.
type Orchestrator interface {
	ScanPackage(ctx context.Context, entry m.SourceEntry, args JobArgs) m.JobResult
}

type orchestrator struct {
	fs       adapter.HarvestFSAdapter
	scanner  adapter.ScanRunnerAdapter
	reports  adapter.ReportStore
	merger   *Merger
	detector Detector
}

// NewOrchestrator constructs an Orchestrator backed by the provided
// adapters and the batch-shared merger.
func NewOrchestrator(
	fs adapter.HarvestFSAdapter,
	scanner adapter.ScanRunnerAdapter,
	reports adapter.ReportStore,
	merger *Merger,
	detector Detector,
) Orchestrator {
	return &orchestrator{
		fs:       fs,
		scanner:  scanner,
		reports:  reports,
		merger:   merger,
		detector: detector,
	}
}

func (o *orchestrator) ScanPackage(ctx context.Context, entry m.SourceEntry, args JobArgs) m.JobResult {
	if o.detector.Ignored(entry.Name) {
		slog.Debug("skipping ignored file", "archive", entry.Name)
		return m.JobResult{Entry: entry, Status: m.StatusSkipped}
	}

	entry.Kind = o.detector.Detect(entry.Name)
	if entry.Kind == m.KindUnsupported {
		slog.Info("skipping unsupported archive", "archive", entry.Name)
		return m.JobResult{Entry: entry, Status: m.StatusSkipped, Stage: m.StageDetecting}
	}

	scratch, err := o.fs.CreateTempDir("pyforce-scratch-*")
	if err != nil {
		slog.Error("failed to create scratch area", "archive", entry.Name, "error", err)
		return o.failed(entry, m.StageExtracting, err)
	}

	defer o.cleanupScratch(scratch)

	extractor, err := adapter.ForKind(entry.Kind)
	if err != nil {
		return o.failed(entry, m.StageExtracting, err)
	}

	if err := extractor.Extract(ctx, entry.Path, scratch); err != nil {
		slog.Error("extraction failed", "archive", entry.Name, "error", err)
		return o.failed(entry, m.StageExtracting, err)
	}

	merged, err := o.merger.Merge(scratch, args.Harvest, args.SuffixFilter)
	if err != nil {
		slog.Error("merge failed", "archive", entry.Name, "error", err)
		return o.failed(entry, m.StageMerging, err)
	}

	report, err := o.scanner.Scan(ctx, string(args.Harvest))
	if err != nil {
		slog.Error("scan failed", "archive", entry.Name, "error", err)
		result := o.failed(entry, m.StageScanning, err)
		result.Merged = merged

		return result
	}

	reportPath := o.reportPath(args.Reports, entry.Name)
	if err := o.reports.SaveReport(reportPath, report); err != nil {
		slog.Error("failed to write report", "archive", entry.Name, "path", reportPath, "error", err)
		result := o.failed(entry, m.StageScanning, err)
		result.Merged = merged

		return result
	}

	slog.Info("package scanned", "archive", entry.Name, "harvested", len(merged), "report", reportPath)

	return m.JobResult{
		Entry:  entry,
		Status: m.StatusDone,
		Merged: merged,
		Report: reportPath,
	}
}

// reportPath derives the deterministic report artifact path:
// <reports>/<archive-base>_<tool>.json.
func (o *orchestrator) reportPath(reports m.Path, name string) m.Path {
	base := o.detector.ReportBase(name)

	return o.fs.JoinPath(string(reports), base+"_"+o.scanner.Tool()+".json")
}

func (o *orchestrator) failed(entry m.SourceEntry, stage m.Stage, err error) m.JobResult {
	return m.JobResult{Entry: entry, Status: m.StatusFailed, Stage: stage, Err: err}
}

// cleanupScratch removes the scratch area, logging when cleanup fails.
func (o *orchestrator) cleanupScratch(scratch m.Path) {
	if err := o.fs.RemoveAll(scratch); err != nil {
		slog.Error("failed to cleanup scratch area", "scratch", scratch, "error", err)
	}
}
