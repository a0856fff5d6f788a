// Package model defines the data structures for the package scan batch.
package model

// Path represents a file system path.
type Path string

// ArchiveKind classifies an input file by its archive container format.
// Detection is purely name based; no content sniffing.
type ArchiveKind string

const (
	// KindTar is an uncompressed tar archive (.tar).
	KindTar ArchiveKind = "tar"

	// KindCompressedTar is a gzip-compressed tar archive (.tar.gz, .tgz).
	KindCompressedTar ArchiveKind = "tar.gz"

	// KindZipFamily is a zip container, which also covers wheels (.whl)
	// since a wheel is a zip file by construction.
	KindZipFamily ArchiveKind = "zip"

	// KindUnsupported marks files no extractor can handle.
	KindUnsupported ArchiveKind = "unsupported"
)

// SourceEntry is a candidate input file discovered in the source directory.
// It is immutable once the kind has been detected.
type SourceEntry struct {
	Path Path
	Name string
	Kind ArchiveKind
}

// MergedFile records a single harvested file move: where the file sat
// inside the extracted package and where it ended up in the harvest tree.
type MergedFile struct {
	Package string `json:"package"`
	Source  Path   `json:"source"` // relative to the scratch root
	Dest    Path   `json:"dest"`   // relative to the harvest root
}
