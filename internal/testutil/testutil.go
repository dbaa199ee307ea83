package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pratik-mahalle/wardroberec/internal/capture"
)

// jpegMagic is enough of a JFIF header for content sniffing
var jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

// WriteJPEG creates a small JPEG-looking file in a temp dir and returns its path
func WriteJPEG(t testing.TB, name string) string {
	t.Helper()
	data := append(append([]byte{}, jpegMagic...), make([]byte, 256)...)
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}
	return path
}

// StubCamera is a capture.Camera returning canned photos
type StubCamera struct {
	mu       sync.Mutex
	Path     string
	Err      error
	captures int
}

// NewStubCamera returns a camera that captures the image at path
func NewStubCamera(path string) *StubCamera {
	return &StubCamera{Path: path}
}

// Capture implements capture.Camera
func (c *StubCamera) Capture(ctx context.Context) (capture.Photo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captures++
	if c.Err != nil {
		return capture.Photo{}, c.Err
	}
	return capture.Photo{ID: filepath.Base(c.Path), Path: c.Path, ContentType: "image/jpeg"}, nil
}

// Captures returns how many times Capture was called
func (c *StubCamera) Captures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captures
}
