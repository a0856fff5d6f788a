package adapter

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

func seedTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	for _, dir := range []string{"sub", "sub/deep"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o750); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	for _, name := range []string{"b.py", "a.py", "sub/c.py", "sub/deep/d.py"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(name), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	return root
}

func walkNames(t *testing.T, fs *LocalHarvestFSAdapter, root string, recursive bool) []string {
	t.Helper()

	var names []string

	err := fs.Walk(m.Path(root), recursive, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			names = append(names, info.Name())
		}

		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	return names
}

func TestLocalHarvestFSAdapter_WalkRecursive(t *testing.T) {
	fs := NewLocalHarvestFSAdapter()
	root := seedTree(t)

	names := walkNames(t, fs, root, true)

	want := []string{"a.py", "b.py", "c.py", "d.py"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("recursive walk: got %v, want %v", names, want)
	}
}

func TestLocalHarvestFSAdapter_WalkFlat(t *testing.T) {
	fs := NewLocalHarvestFSAdapter()
	root := seedTree(t)

	names := walkNames(t, fs, root, false)

	want := []string{"a.py", "b.py"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("flat walk: got %v, want %v", names, want)
	}
}

func TestLocalHarvestFSAdapter_ListDir(t *testing.T) {
	fs := NewLocalHarvestFSAdapter()
	root := seedTree(t)

	names, err := fs.ListDir(m.Path(root))
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}

	// Directories are excluded and names come back sorted.
	want := []string{"a.py", "b.py"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("ListDir: got %v, want %v", names, want)
	}
}

func TestLocalHarvestFSAdapter_ListDirMissing(t *testing.T) {
	fs := NewLocalHarvestFSAdapter()

	if _, err := fs.ListDir(m.Path(filepath.Join(t.TempDir(), "missing"))); err == nil {
		t.Fatal("ListDir: expected error for missing directory")
	}
}

func TestLocalHarvestFSAdapter_CreateTempDir(t *testing.T) {
	fs := NewLocalHarvestFSAdapter()

	dir, err := fs.CreateTempDir("pyforce-test-*")
	if err != nil {
		t.Fatalf("CreateTempDir: %v", err)
	}

	t.Cleanup(func() { _ = os.RemoveAll(string(dir)) })

	info, err := os.Stat(string(dir))
	if err != nil || !info.IsDir() {
		t.Fatalf("CreateTempDir: %s is not a directory (%v)", dir, err)
	}
}

func TestLocalHarvestFSAdapter_Exists(t *testing.T) {
	fs := NewLocalHarvestFSAdapter()
	root := seedTree(t)

	exists, err := fs.Exists(m.Path(filepath.Join(root, "a.py")))
	if err != nil || !exists {
		t.Fatalf("Exists(a.py): got %v, %v", exists, err)
	}

	exists, err = fs.Exists(m.Path(filepath.Join(root, "nope.py")))
	if err != nil || exists {
		t.Fatalf("Exists(nope.py): got %v, %v", exists, err)
	}
}

func TestLocalHarvestFSAdapter_Rename(t *testing.T) {
	fs := NewLocalHarvestFSAdapter()
	root := t.TempDir()

	src := filepath.Join(root, "src.py")
	dst := filepath.Join(root, "moved", "dst.py")

	if err := os.WriteFile(src, []byte("content"), 0o600); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := os.Mkdir(filepath.Dir(dst), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := fs.Rename(m.Path(src), m.Path(dst)); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "content" {
		t.Fatalf("dst after rename: %q, %v", got, err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("src still present after rename")
	}
}

func TestLocalHarvestFSAdapter_RelAndJoin(t *testing.T) {
	fs := NewLocalHarvestFSAdapter()

	joined := fs.JoinPath("/harvest", "pkg", "setup.py")
	if joined != m.Path(filepath.Join("/harvest", "pkg", "setup.py")) {
		t.Fatalf("JoinPath: got %s", joined)
	}

	rel, err := fs.RelPath(m.Path("/harvest"), joined)
	if err != nil {
		t.Fatalf("RelPath: %v", err)
	}

	if rel != m.Path(filepath.Join("pkg", "setup.py")) {
		t.Fatalf("RelPath: got %s", rel)
	}
}
