package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/msmview/pkg/figure"
)

// Snapshot formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// SnapshotOptions controls SaveSnapshot.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format is empty
	Format string // "png" or "svg" (case-insensitive)
}

// ResolveFormat returns the snapshot format and the final output path. A path
// without extension gets ".png".
func ResolveFormat(opts SnapshotOptions) (format, path string, err error) {
	path = opts.Path
	format = strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = FormatSVG
		case ".png":
			format = FormatPNG
		default:
			format = FormatPNG
			if path != "" && filepath.Ext(path) == "" {
				path += ".png"
			}
		}
	}
	if format != FormatPNG && format != FormatSVG {
		return "", "", fmt.Errorf("unsupported format %q (want png or svg)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

// SaveSnapshot writes fig to disk and returns the path written.
func SaveSnapshot(fig *figure.Figure, opts SnapshotOptions) (string, error) {
	format, path, err := ResolveFormat(opts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	switch format {
	case FormatSVG:
		err = WriteSVG(f, fig)
	default:
		err = WritePNG(f, fig)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write %s snapshot: %w", format, err)
	}
	return path, nil
}
