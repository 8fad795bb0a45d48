// Package ioservice implements the scanner's I/O manager collaborator
// interface plus one concrete implementation backed by afero.Fs, so the
// scanner is runnable end-to-end without requiring a caller to supply a
// production I/O manager.
package ioservice

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// Range identifies a byte range of a file the scanner wants to read,
// returned by AllocateRange and consumed by Read.
type Range struct {
	Path     string
	Offset   int64
	Length   int64
	Locality string // opaque affinity hint; "" means no preference
}

// Manager is the I/O manager surface the scanner drives: allocate a range,
// optionally schedule it ahead of time, then read it. Size is needed by
// any caller (the footer reader) that must find a file's length before it
// can allocate a trailing range.
type Manager interface {
	AllocateRange(path string, offset, length int64, locality string) Range
	AddRanges(ranges []Range, immediate bool) error
	Read(ctx context.Context, r Range) ([]byte, error)
	Size(path string) (int64, error)
}

// FileManager is a Manager backed by an afero.Fs, letting tests swap in
// afero.NewMemMapFs() instead of touching a real filesystem.
type FileManager struct {
	fs afero.Fs
}

// NewFileManager constructs a FileManager over fs. Pass afero.NewOsFs()
// for production use.
func NewFileManager(fs afero.Fs) *FileManager {
	return &FileManager{fs: fs}
}

// AllocateRange constructs a Range descriptor; it performs no I/O itself,
// keeping allocation separate from the actual read.
func (m *FileManager) AllocateRange(path string, offset, length int64, locality string) Range {
	return Range{Path: path, Offset: offset, Length: length, Locality: locality}
}

// AddRanges is a scheduling hint only in this single-threaded
// implementation: every range is read synchronously on demand by Read, so
// there is nothing to prefetch ahead of time. immediate is accepted for
// interface parity and otherwise unused here.
func (m *FileManager) AddRanges(ranges []Range, immediate bool) error {
	return nil
}

// Read opens path, seeks to r.Offset, and reads exactly r.Length bytes.
func (m *FileManager) Read(ctx context.Context, r Range) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := m.fs.Open(r.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "ioservice: opening %q", r.Path)
	}
	defer f.Close()

	buf := make([]byte, r.Length)
	sr := io.NewSectionReader(f, r.Offset, r.Length)
	if _, err := io.ReadFull(sr, buf); err != nil {
		return nil, errors.Wrapf(err, "ioservice: reading %q [%d,%d)", r.Path, r.Offset, r.Offset+r.Length)
	}
	return buf, nil
}

// Size returns the size in bytes of the file at path.
func (m *FileManager) Size(path string) (int64, error) {
	info, err := m.fs.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "ioservice: stat %q", path)
	}
	return info.Size(), nil
}
