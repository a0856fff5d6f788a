package adapter

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNewLocalScanRunnerAdapter_Defaults(t *testing.T) {
	runner := NewLocalScanRunnerAdapter("", nil, 0)

	if runner.Tool() != DefaultScanTool {
		t.Fatalf("Tool: got %s, want %s", runner.Tool(), DefaultScanTool)
	}

	if runner.timeout != DefaultScanTimeout {
		t.Fatalf("timeout: got %s, want %s", runner.timeout, DefaultScanTimeout)
	}
}

func TestNewLocalScanRunnerAdapter_Overrides(t *testing.T) {
	runner := NewLocalScanRunnerAdapter("semgrep", []string{"--json"}, time.Minute)

	if runner.Tool() != "semgrep" {
		t.Fatalf("Tool: got %s", runner.Tool())
	}
}

func TestLocalScanRunnerAdapter_Scan(t *testing.T) {
	// `ls` stands in for the scanner: it takes the directory as its final
	// argument and prints to stdout.
	runner := NewLocalScanRunnerAdapter("ls", []string{"-a"}, time.Minute)

	out, err := runner.Scan(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if !strings.Contains(string(out), ".") {
		t.Fatalf("Scan output: got %q", out)
	}
}

func TestLocalScanRunnerAdapter_ScanNonZeroExit(t *testing.T) {
	runner := NewLocalScanRunnerAdapter("ls", nil, time.Minute)

	if _, err := runner.Scan(context.Background(), "/definitely/not/a/dir"); err == nil {
		t.Fatal("Scan: expected error for non-zero exit")
	}
}

func TestLocalScanRunnerAdapter_ScanMissingBinary(t *testing.T) {
	runner := NewLocalScanRunnerAdapter("pyforce-no-such-scanner", nil, time.Minute)

	if _, err := runner.Scan(context.Background(), t.TempDir()); err == nil {
		t.Fatal("Scan: expected error for missing binary")
	}
}

func TestLocalScanRunnerAdapter_ScanTimeout(t *testing.T) {
	runner := NewLocalScanRunnerAdapter("sleep", []string{"5"}, 50*time.Millisecond)

	// sleep ignores the trailing directory argument and outlives the
	// timeout, so the run must be killed.
	if _, err := runner.Scan(context.Background(), "1"); err == nil {
		t.Fatal("Scan: expected timeout error")
	}
}
