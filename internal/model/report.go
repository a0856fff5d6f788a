package model

import "time"

// Stage identifies the phase a package scan job was in when it ended.
type Stage string

const (
	// StageDetecting is the name-based archive kind classification.
	StageDetecting Stage = "detecting"
	// StageExtracting is the unpack into the scratch area.
	StageExtracting Stage = "extracting"
	// StageMerging is the harvest of matched files into the shared tree.
	StageMerging Stage = "merging"
	// StageScanning is the external scanner invocation and report write.
	StageScanning Stage = "scanning"
)

// JobStatus is the terminal state of a package scan job.
type JobStatus int

const (
	// StatusDone indicates the package was scanned and a report written.
	StatusDone JobStatus = iota
	// StatusSkipped indicates an ignored or unsupported input file.
	StatusSkipped
	// StatusFailed indicates the job aborted at Stage with an error.
	StatusFailed
)

// String returns the lower-case name used in logs and progress lines.
func (s JobStatus) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}

	return "unknown"
}

// JobResult is the outcome of processing one archive.
type JobResult struct {
	Entry  SourceEntry
	Status JobStatus
	Stage  Stage // stage reached when Status is StatusFailed
	Merged []MergedFile
	Report Path // report artifact path, set when Status is StatusDone
	Err    error
}

// Summary aggregates the outcomes of a whole batch run. It is rendered at
// the end of the run and persisted alongside the reports.
type Summary struct {
	Total      int           `yaml:"total"`
	Done       int           `yaml:"done"`
	Skipped    int           `yaml:"skipped"`
	Failed     int           `yaml:"failed"`
	FailedBy   map[Stage]int `yaml:"failed_by_stage,omitempty"`
	Harvested  int           `yaml:"harvested_files"`
	StartedAt  time.Time     `yaml:"started_at"`
	FinishedAt time.Time     `yaml:"finished_at"`
}

// Record accumulates one job result into the summary.
func (s *Summary) Record(result JobResult) {
	s.Total++
	s.Harvested += len(result.Merged)

	switch result.Status {
	case StatusDone:
		s.Done++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++

		if s.FailedBy == nil {
			s.FailedBy = make(map[Stage]int)
		}

		s.FailedBy[result.Stage]++
	}
}
