package detect

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageSize matches the backend's upload limit.
const MaxImageSize = 10 << 20

// InvalidImageMessage is what the user is told when a selection is rejected.
const InvalidImageMessage = "Please upload a valid image file (JPG, PNG, WEBP)"

// ErrInvalidImage is wrapped by every validation failure of a selected file.
var ErrInvalidImage = errors.New("not a valid image file")

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// IsImagePath reports whether path has one of the accepted image extensions.
func IsImagePath(path string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Preview is the locally displayable summary of a selected image.
type Preview struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
	Width       int // 0 when the format has no registered decoder
	Height      int
}

// Image is a validated selection: its preview and its bytes.
type Image struct {
	Preview Preview
	Data    []byte
}

// LoadImage reads and validates the file at path. It checks the extension,
// the size, and the sniffed content type.
func LoadImage(path string) (*Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	declared, ok := allowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrInvalidImage, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidImage, path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidImage)
	}
	if info.Size() > MaxImageSize {
		return nil, fmt.Errorf("%w: file too large, maximum size is %d MB", ErrInvalidImage, MaxImageSize>>20)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: file too large, maximum size is %d MB", ErrInvalidImage, MaxImageSize>>20)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content is %s, not %s", ErrInvalidImage, contentType, declared)
	}

	p := Preview{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		p.Width, p.Height = cfg.Width, cfg.Height
	}
	return &Image{Preview: p, Data: data}, nil
}
