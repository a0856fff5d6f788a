package adapter

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

// Ceilings guarding a single archive extraction. Source distributions are
// small; anything beyond these limits is treated as a corrupt or hostile
// archive and fails the job.
const (
	maxArchiveEntries = 65536
	maxEntryBytes     = 512 << 20
	maxArchiveBytes   = 2 << 30
)

// ErrUnsupportedArchive is returned by ForKind for kinds without an extractor.
var ErrUnsupportedArchive = errors.New("unsupported archive kind")

// Extractor unpacks one archive into a caller-owned scratch directory. The
// destination must be empty; extraction failures are reported to the caller
// and never abort the surrounding batch.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir m.Path) error
}

// ForKind returns the extractor able to unpack the given archive kind.
func ForKind(kind m.ArchiveKind) (Extractor, error) {
	switch kind {
	case m.KindTar:
		return &tarExtractor{}, nil
	case m.KindCompressedTar:
		return &tarExtractor{gzipped: true}, nil
	case m.KindZipFamily:
		return &zipExtractor{}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedArchive, kind)
}

type tarExtractor struct {
	gzipped bool
}

// Extract unpacks a tar or gzip-compressed tar archive into destDir.
func (e *tarExtractor) Extract(ctx context.Context, archivePath, destDir m.Path) error {
	if err := e.extract(ctx, archivePath, destDir); err != nil {
		return fmt.Errorf("extract %s: %w", archivePath, err)
	}

	return nil
}

func (e *tarExtractor) extract(ctx context.Context, archivePath, destDir m.Path) error {
	// #nosec G304 - archive path comes from the operator's source directory
	file, err := os.Open(string(archivePath))
	if err != nil {
		return err
	}

	defer func() { _ = file.Close() }()

	var reader io.Reader = file

	if e.gzipped {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return err
		}

		defer func() { _ = gz.Close() }()

		reader = gz
	}

	tr := tar.NewReader(reader)

	var (
		entries   int
		totalSize int64
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		target, err := safeJoin(string(destDir), hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return err
			}
		case tar.TypeReg:
			entries++
			if entries > maxArchiveEntries {
				return fmt.Errorf("archive exceeds max entries (%d)", maxArchiveEntries)
			}

			if hdr.Size < 0 || hdr.Size > maxEntryBytes {
				return fmt.Errorf("archive entry too large: %s", hdr.Name)
			}

			totalSize += hdr.Size
			if totalSize > maxArchiveBytes {
				return fmt.Errorf("archive exceeds max size (%d bytes)", int64(maxArchiveBytes))
			}

			if err := writeEntry(target, tr, hdr.Size); err != nil {
				return err
			}
		}
		// Symlinks, devices and other entry types are dropped on purpose:
		// only regular files are harvested.
	}
}

type zipExtractor struct{}

// Extract unpacks a zip-family archive (including .whl) into destDir.
func (e *zipExtractor) Extract(ctx context.Context, archivePath, destDir m.Path) error {
	if err := e.extract(ctx, archivePath, destDir); err != nil {
		return fmt.Errorf("extract %s: %w", archivePath, err)
	}

	return nil
}

func (e *zipExtractor) extract(ctx context.Context, archivePath, destDir m.Path) error {
	reader, err := zip.OpenReader(string(archivePath))
	if err != nil {
		return err
	}

	defer func() { _ = reader.Close() }()

	var (
		entries   int
		totalSize int64
	)

	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := safeJoin(string(destDir), file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o750); err != nil {
				return err
			}

			continue
		}

		entries++
		if entries > maxArchiveEntries {
			return fmt.Errorf("archive exceeds max entries (%d)", maxArchiveEntries)
		}

		size := int64(file.UncompressedSize64) // #nosec G115 - bounded below
		if size < 0 || size > maxEntryBytes {
			return fmt.Errorf("archive entry too large: %s", file.Name)
		}

		totalSize += size
		if totalSize > maxArchiveBytes {
			return fmt.Errorf("archive exceeds max size (%d bytes)", int64(maxArchiveBytes))
		}

		entryReader, err := file.Open()
		if err != nil {
			return err
		}

		writeErr := writeEntry(target, entryReader, size)

		if closeErr := entryReader.Close(); writeErr == nil {
			writeErr = closeErr
		}

		if writeErr != nil {
			return writeErr
		}
	}

	return nil
}

// writeEntry copies exactly size bytes of one archive entry to target,
// creating parent directories as needed.
func writeEntry(target string, reader io.Reader, size int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}

	// #nosec G304 - target path is validated by safeJoin
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	if _, err := io.CopyN(out, reader, size); err != nil && !errors.Is(err, io.EOF) {
		_ = out.Close()
		return err
	}

	return out.Close()
}

// safeJoin roots an archive entry name under base, rejecting absolute paths
// and any name that would escape the destination directory.
func safeJoin(base, name string) (string, error) {
	clean := filepath.Clean(strings.TrimSpace(name))
	if clean == "." || clean == "" {
		return "", fmt.Errorf("invalid archive path: %s", name)
	}

	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("absolute archive path: %s", name)
	}

	target := filepath.Join(base, clean)

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", fmt.Errorf("invalid archive path: %s", name)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid archive path: %s", name)
	}

	return target, nil
}
