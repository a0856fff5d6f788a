package domain

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/johnconna/pyforce-evaluation-v2/internal/adapter"
	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

// stubScanner stands in for the external scanner binary.
type stubScanner struct {
	report []byte
	err    error
	calls  int
}

func (s *stubScanner) Tool() string { return "stubscan" }

func (s *stubScanner) Scan(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.report, s.err
}

// recordingFS captures the scratch dirs handed out so tests can verify the
// guaranteed cleanup.
type recordingFS struct {
	*adapter.LocalHarvestFSAdapter
	scratchDirs []m.Path
}

func (r *recordingFS) CreateTempDir(pattern string) (m.Path, error) {
	dir, err := r.LocalHarvestFSAdapter.CreateTempDir(pattern)
	if err == nil {
		r.scratchDirs = append(r.scratchDirs, dir)
	}

	return dir, err
}

func newTestOrchestrator(fs adapter.HarvestFSAdapter, scanner adapter.ScanRunnerAdapter) Orchestrator {
	merger := NewMerger(fs)
	detector := NewDetector(nil, nil)

	return NewOrchestrator(fs, scanner, adapter.NewReportStore(), merger, detector)
}

func TestOrchestrator_ScanPackage_Done(t *testing.T) {
	fs := &recordingFS{LocalHarvestFSAdapter: adapter.NewLocalHarvestFSAdapter()}
	scanner := &stubScanner{report: []byte(`{"results": []}`)}
	orchestrator := newTestOrchestrator(fs, scanner)

	source := t.TempDir()
	archive := filepath.Join(source, "demo-1.0.tar.gz")
	writeTestTarGz(t, archive, map[string]string{
		"demo-1.0/setup.py":         "from setuptools import setup\n",
		"demo-1.0/demo/__init__.py": "",
		"demo-1.0/README.md":        "# demo\n",
	})

	args := JobArgs{
		Harvest:      m.Path(t.TempDir()),
		Reports:      m.Path(t.TempDir()),
		SuffixFilter: ".py",
	}

	result := orchestrator.ScanPackage(context.Background(), m.SourceEntry{
		Path: m.Path(archive),
		Name: "demo-1.0.tar.gz",
	}, args)

	if result.Status != m.StatusDone {
		t.Fatalf("ScanPackage() status = %v (stage %s, err %v), want done", result.Status, result.Stage, result.Err)
	}

	if len(result.Merged) != 2 {
		t.Fatalf("ScanPackage() harvested %d files, want 2", len(result.Merged))
	}

	wantReport := filepath.Join(string(args.Reports), "demo-1.0_stubscan.json")
	if string(result.Report) != wantReport {
		t.Fatalf("ScanPackage() report = %s, want %s", result.Report, wantReport)
	}

	data, err := os.ReadFile(wantReport)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	if string(data) != `{"results": []}` {
		t.Fatalf("report content = %q", string(data))
	}

	assertScratchGone(t, fs)
}

func TestOrchestrator_ScanPackage_SkipsIgnoredAndUnsupported(t *testing.T) {
	fs := &recordingFS{LocalHarvestFSAdapter: adapter.NewLocalHarvestFSAdapter()}
	scanner := &stubScanner{}
	orchestrator := newTestOrchestrator(fs, scanner)

	args := JobArgs{Harvest: m.Path(t.TempDir()), Reports: m.Path(t.TempDir()), SuffixFilter: ".py"}

	for _, name := range []string{"old_report.txt", "binary.exe"} {
		result := orchestrator.ScanPackage(context.Background(), m.SourceEntry{
			Path: m.Path(filepath.Join(t.TempDir(), name)),
			Name: name,
		}, args)

		if result.Status != m.StatusSkipped {
			t.Fatalf("ScanPackage(%q) status = %v, want skipped", name, result.Status)
		}
	}

	if scanner.calls != 0 {
		t.Fatalf("scanner invoked %d times for skipped inputs", scanner.calls)
	}

	if len(fs.scratchDirs) != 0 {
		t.Fatalf("scratch area created for skipped inputs")
	}
}

func TestOrchestrator_ScanPackage_CorruptArchive(t *testing.T) {
	fs := &recordingFS{LocalHarvestFSAdapter: adapter.NewLocalHarvestFSAdapter()}
	scanner := &stubScanner{}
	orchestrator := newTestOrchestrator(fs, scanner)

	source := t.TempDir()
	archive := filepath.Join(source, "broken.tar.gz")

	if err := os.WriteFile(archive, []byte("this is not a gzip stream"), 0o600); err != nil {
		t.Fatalf("write corrupt archive: %v", err)
	}

	args := JobArgs{Harvest: m.Path(t.TempDir()), Reports: m.Path(t.TempDir()), SuffixFilter: ".py"}

	result := orchestrator.ScanPackage(context.Background(), m.SourceEntry{
		Path: m.Path(archive),
		Name: "broken.tar.gz",
	}, args)

	if result.Status != m.StatusFailed || result.Stage != m.StageExtracting {
		t.Fatalf("ScanPackage() = %v/%s, want failed/extracting", result.Status, result.Stage)
	}

	if result.Err == nil {
		t.Fatalf("ScanPackage() failed without an error")
	}

	if scanner.calls != 0 {
		t.Fatalf("scanner invoked after extraction failure")
	}

	// No report artifact for a failed package.
	entries, err := os.ReadDir(string(args.Reports))
	if err != nil {
		t.Fatalf("read reports dir: %v", err)
	}

	if len(entries) != 0 {
		t.Fatalf("reports dir holds %d entries after failure", len(entries))
	}

	assertScratchGone(t, fs)
}

func TestOrchestrator_ScanPackage_ScannerFailure(t *testing.T) {
	fs := &recordingFS{LocalHarvestFSAdapter: adapter.NewLocalHarvestFSAdapter()}
	scanner := &stubScanner{err: errors.New("exit status 2")}
	orchestrator := newTestOrchestrator(fs, scanner)

	source := t.TempDir()
	archive := filepath.Join(source, "demo.tar.gz")
	writeTestTarGz(t, archive, map[string]string{"demo/main.py": "print('hi')\n"})

	args := JobArgs{Harvest: m.Path(t.TempDir()), Reports: m.Path(t.TempDir()), SuffixFilter: ".py"}

	result := orchestrator.ScanPackage(context.Background(), m.SourceEntry{
		Path: m.Path(archive),
		Name: "demo.tar.gz",
	}, args)

	if result.Status != m.StatusFailed || result.Stage != m.StageScanning {
		t.Fatalf("ScanPackage() = %v/%s, want failed/scanning", result.Status, result.Stage)
	}

	// Harvested files stay in place even when the scan fails.
	if len(result.Merged) != 1 {
		t.Fatalf("ScanPackage() harvested %d files, want 1", len(result.Merged))
	}

	assertScratchGone(t, fs)
}

func assertScratchGone(t *testing.T, fs *recordingFS) {
	t.Helper()

	for _, dir := range fs.scratchDirs {
		if _, err := os.Stat(string(dir)); !os.IsNotExist(err) {
			t.Fatalf("scratch dir %s still exists after job end", dir)
		}
	}
}

func writeTestTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for name, content := range files {
		hdr := &tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}

		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header %s: %v", name, err)
		}

		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write tar entry %s: %v", name, err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}

	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}

	if err := out.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}
