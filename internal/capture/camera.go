// Package capture produces locally stored garment photos for upload.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// sniffLen is how many bytes http.DetectContentType looks at
const sniffLen = 512

// Camera produces one photo per call
type Camera interface {
	Capture(ctx context.Context) (Photo, error)
}

// Photo is a captured image stored on local disk
type Photo struct {
	ID          string
	Path        string
	ContentType string

	// owned is set when the file lives in a directory the camera created
	owned bool
}

// Discard removes the photo file when the camera owns it. Calling it on a
// zero Photo or twice is harmless.
func (p *Photo) Discard() error {
	if p == nil || p.Path == "" {
		return nil
	}
	path := p.Path
	p.Path = ""
	if !p.owned {
		return nil
	}
	if err := os.RemoveAll(filepath.Dir(path)); err != nil {
		return fmt.Errorf("discard photo %s: %w", p.ID, err)
	}
	return nil
}

// FileCamera captures by copying an existing image file into a private
// temp directory. Source is consulted on every capture so a front end can
// change the chosen file between retakes.
type FileCamera struct {
	Source func() (string, error)
	// TempDir is the parent directory for captured files. Empty uses os.TempDir.
	TempDir string
}

// NewFileCamera returns a camera that always captures path
func NewFileCamera(path string) *FileCamera {
	return &FileCamera{Source: func() (string, error) { return path, nil }}
}

// Capture copies the source image and returns a photo owning the copy
func (c *FileCamera) Capture(ctx context.Context) (Photo, error) {
	if err := ctx.Err(); err != nil {
		return Photo{}, err
	}
	if c.Source == nil {
		return Photo{}, fmt.Errorf("capture: no image source configured")
	}
	src, err := c.Source()
	if err != nil {
		return Photo{}, fmt.Errorf("capture: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return Photo{}, fmt.Errorf("capture: open %s: %w", src, err)
	}
	defer in.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Photo{}, fmt.Errorf("capture: read %s: %w", src, err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return Photo{}, fmt.Errorf("capture: %s is not an image (%s)", src, contentType)
	}

	id := uuid.NewString()
	dir, err := os.MkdirTemp(c.TempDir, "wardrobe-capture-")
	if err != nil {
		return Photo{}, fmt.Errorf("capture: %w", err)
	}
	dst := filepath.Join(dir, id+extensionFor(contentType))

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		os.RemoveAll(dir)
		return Photo{}, fmt.Errorf("capture: %w", err)
	}
	if _, err := io.Copy(out, io.MultiReader(bytes.NewReader(head), in)); err != nil {
		out.Close()
		os.RemoveAll(dir)
		return Photo{}, fmt.Errorf("capture: copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.RemoveAll(dir)
		return Photo{}, fmt.Errorf("capture: %w", err)
	}

	return Photo{ID: id, Path: dst, ContentType: contentType, owned: true}, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
