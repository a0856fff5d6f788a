package adapter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"
)

// Defaults for the external scanner invocation.
const (
	DefaultScanTool    = "bandit"
	DefaultScanTimeout = 5 * time.Minute
)

// DefaultScanArgs ask the scanner for a quiet recursive run with a
// machine-readable report on stdout.
var DefaultScanArgs = []string{"-r", "-q", "-f", "json"}

// ScanRunnerAdapter abstracts the external static-analysis scanner. The
// pipeline's only contract with it is "hand over a directory, get report
// bytes back, treat a non-zero exit as a scanning failure".
type ScanRunnerAdapter interface {
	// Tool returns the scanner name used in report file names.
	Tool() string

	// Scan analyzes targetDir recursively and returns the report bytes.
	Scan(ctx context.Context, targetDir string) ([]byte, error)
}

// LocalScanRunnerAdapter invokes the scanner binary via os/exec.
type LocalScanRunnerAdapter struct {
	tool    string
	args    []string
	timeout time.Duration
}

// NewLocalScanRunnerAdapter constructs a scanner runner. Empty arguments
// select the bandit defaults.
func NewLocalScanRunnerAdapter(tool string, args []string, timeout time.Duration) *LocalScanRunnerAdapter {
	if tool == "" {
		tool = DefaultScanTool
	}

	if args == nil {
		args = DefaultScanArgs
	}

	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}

	return &LocalScanRunnerAdapter{tool: tool, args: args, timeout: timeout}
}

// Tool returns the scanner name used in report file names.
func (a *LocalScanRunnerAdapter) Tool() string {
	return a.tool
}

// Scan runs the scanner against targetDir and captures stdout as the
// report. A timeout, missing binary or non-zero exit is returned as an
// error with the stderr tail attached for the log line.
func (a *LocalScanRunnerAdapter) Scan(ctx context.Context, targetDir string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	args := append(slices.Clone(a.args), targetDir)
	cmd := exec.CommandContext(ctx, a.tool, args...) // #nosec G204 - tool comes from operator config

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return nil, fmt.Errorf("run %s: %w", a.tool, err)
		}

		return nil, fmt.Errorf("run %s: %w: %s", a.tool, err, detail)
	}

	return stdout.Bytes(), nil
}
