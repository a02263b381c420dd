// Package datasource detects whether a dataset path is a directory or a
// SQLite bundle and loads it through the matching reader.
package datasource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vanderheijden86/msmview/pkg/loader"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeDir is a dataset directory with JSON, YAML and image files
	SourceTypeDir SourceType = "dir"
	// SourceTypeBundle is a single SQLite file written by `msmview bundle`
	SourceTypeBundle SourceType = "bundle"
)

// ErrUnknownSource is returned for paths that are neither a dataset
// directory nor a bundle.
var ErrUnknownSource = errors.New("not a dataset directory or bundle")

var sqliteMagic = []byte("SQLite format 3\x00")

// DataSource describes where a dataset lives.
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the directory or bundle
	Path string `json:"path"`
	// ModTime is the newest modification time among the source's files
	ModTime time.Time `json:"mod_time"`
	// Size is the total size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	return fmt.Sprintf("%s (%s, %d bytes, mod=%s)",
		s.Path, s.Type, s.Size, s.ModTime.Format(time.RFC3339))
}

// Discover classifies path. A directory must contain timescales.json; a file
// must start with the SQLite header.
func Discover(path string) (DataSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return DataSource{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return DataSource{}, fmt.Errorf("dataset %s: %w", path, err)
	}

	if info.IsDir() {
		if _, err := os.Stat(filepath.Join(abs, loader.TimescalesFile)); err != nil {
			return DataSource{}, fmt.Errorf("%w: %s has no %s", ErrUnknownSource, path, loader.TimescalesFile)
		}
		src := DataSource{Type: SourceTypeDir, Path: abs}
		err := filepath.WalkDir(abs, func(_ string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			src.Size += fi.Size()
			if fi.ModTime().After(src.ModTime) {
				src.ModTime = fi.ModTime()
			}
			return nil
		})
		if err != nil {
			return DataSource{}, fmt.Errorf("scanning %s: %w", path, err)
		}
		return src, nil
	}

	ok, err := hasSQLiteHeader(abs)
	if err != nil {
		return DataSource{}, err
	}
	if !ok {
		return DataSource{}, fmt.Errorf("%w: %s", ErrUnknownSource, path)
	}
	return DataSource{
		Type:    SourceTypeBundle,
		Path:    abs,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}, nil
}

func hasSQLiteHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(header, sqliteMagic), nil
}
