// Package domain implements the extraction-and-harvest pipeline: archive
// detection, namespace merging, per-package scan jobs and the batch workflow.
package domain

import (
	"path/filepath"
	"strings"

	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

// ArchiveSuffix binds a file name suffix to the archive kind it denotes.
type ArchiveSuffix struct {
	Suffix string
	Kind   m.ArchiveKind
}

// DefaultArchiveSuffixes is the ordered suffix table used when no custom
// table is configured. The first match wins, so the compressed-tar suffixes
// must stay ahead of the plain ".tar" entry. ".tar.zip" is covered by the
// ".zip" entry.
var DefaultArchiveSuffixes = []ArchiveSuffix{
	{Suffix: ".tar.gz", Kind: m.KindCompressedTar},
	{Suffix: ".tgz", Kind: m.KindCompressedTar},
	{Suffix: ".tar", Kind: m.KindTar},
	{Suffix: ".zip", Kind: m.KindZipFamily},
	{Suffix: ".whl", Kind: m.KindZipFamily},
}

// DefaultIgnoreSuffixes filters files that must never reach detection,
// such as plain-text reports sitting next to the archives.
var DefaultIgnoreSuffixes = []string{".txt"}

// Detector classifies source directory entries by name. It holds two
// independent suffix tables (archive kinds and ignores) so new archive or
// source-file families can be added without touching control flow.
type Detector struct {
	suffixes []ArchiveSuffix
	ignore   []string
}

// NewDetector builds a Detector. Nil arguments select the defaults.
func NewDetector(suffixes []ArchiveSuffix, ignore []string) Detector {
	if suffixes == nil {
		suffixes = DefaultArchiveSuffixes
	}

	if ignore == nil {
		ignore = DefaultIgnoreSuffixes
	}

	return Detector{suffixes: suffixes, ignore: ignore}
}

// Detect returns the archive kind for a file name. It is a pure function
// of the string: case-sensitive suffix matching, first match wins.
func (d Detector) Detect(name string) m.ArchiveKind {
	for _, entry := range d.suffixes {
		if strings.HasSuffix(name, entry.Suffix) {
			return entry.Kind
		}
	}

	return m.KindUnsupported
}

// Ignored reports whether the file name carries an ignore suffix. Ignored
// files are filtered before detection and count as a skip, not as
// unsupported input.
func (d Detector) Ignored(name string) bool {
	for _, suffix := range d.ignore {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}

// ReportBase derives the deterministic report key from an archive name:
// the name with its recognized archive suffix stripped. Unrecognized names
// fall back to stripping the final extension.
func (d Detector) ReportBase(name string) string {
	for _, entry := range d.suffixes {
		if strings.HasSuffix(name, entry.Suffix) {
			return strings.TrimSuffix(name, entry.Suffix)
		}
	}

	return strings.TrimSuffix(name, filepath.Ext(name))
}
