// Package controller provides output adapters for displaying batch progress
// and results.
package controller

import (
	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

// UI defines the interface for reporting batch progress. Implementations
// must tolerate concurrent DisplayJobResult calls when the batch runs with
// multiple workers.
type UI interface {
	// DisplayBatchInfo announces the batch before the first job starts.
	DisplayBatchInfo(total, threads int)

	// DisplayJobResult prints one progress line per processed archive.
	DisplayJobResult(result m.JobResult)

	// DisplaySummary renders the final batch summary.
	DisplaySummary(summary m.Summary)

	// DisplayEntries renders the source directory listing with detected
	// archive kinds.
	DisplayEntries(entries []m.SourceEntry, ignored int)
}
