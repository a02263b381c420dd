package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/vanderheijden86/msmview/pkg/metrics"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// imageExtensions are tried in order when looking up an image by key.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// ImageBaseName returns the file name (without extension) of an image key.
func ImageBaseName(key model.ImageKey) string {
	if key == model.DefaultImage {
		return "default"
	}
	return fmt.Sprintf("cluster_%d", int(key))
}

// DecodeImage decodes any registered image format.
func DecodeImage(data []byte) (image.Image, error) {
	defer metrics.Timer(metrics.ImageDecode)()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG, the format images are stored in bundles.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readImage(dir string, key model.ImageKey) (image.Image, error) {
	base := filepath.Join(dir, ImageBaseName(key))
	for _, ext := range imageExtensions {
		data, err := os.ReadFile(base + ext)
		if err != nil {
			continue
		}
		img, err := DecodeImage(data)
		if err != nil {
			return nil, fmt.Errorf("%s%s: %w", base, ext, err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: %s (looked for %s.*)", model.ErrMissingImage, key, base)
}
