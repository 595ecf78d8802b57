package host

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/sumotube/internal/util"
	_ "golang.org/x/image/webp" // WebP decoder
)

// ImageExtensions are the accepted picture and thumbnail file types
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ImageInfo describes a validated image
type ImageInfo struct {
	Path   string
	Format string
	Width  int
	Height int
}

// ValidateImage checks the extension and decodes the image header
func ValidateImage(path string) (*ImageInfo, error) {
	ext := strings.ToLower(filepath.Ext(path))
	allowed := false
	for _, e := range ImageExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: image type %q", util.ErrUnsupported, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", util.ErrNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", util.ErrPermission, path)
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", util.ErrCorrupt, path, err)
	}

	return &ImageInfo{Path: path, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
