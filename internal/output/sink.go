package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// FilePrefix begins every output file name.
const FilePrefix = "extracted_image_"

// Sink receives re-encoded images. Prepare is called once before the first
// Emit; Emit may be called concurrently for distinct indices.
type Sink interface {
	Prepare() error
	Emit(ctx context.Context, index int, data []byte, ext string) error
}

// Filename returns the output name of the image at index, such as
// extracted_image_0.jpeg.
func Filename(index int, ext string) (string, error) {
	if index < 0 || ext == "" {
		return "", fmt.Errorf("%w: %d.%q", ErrInvalidIndex, index, ext)
	}
	return fmt.Sprintf("%s%d.%s", FilePrefix, index, ext), nil
}

// DirSink writes each image to its own file under a root directory.
// Files are written to a temporary name and renamed into place, so a
// failed emission never leaves a partial image behind.
type DirSink struct {
	root   string
	logger *slog.Logger

	mu       sync.Mutex
	prepared bool
}

// NewDirSink returns a sink that writes under root. The directory is created
// by Prepare, not here.
func NewDirSink(root string, logger *slog.Logger) (*DirSink, error) {
	if root == "" {
		return nil, fmt.Errorf("output root required")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve output root: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &DirSink{
		root:   abs,
		logger: logger.With("system", "output"),
	}, nil
}

// Root returns the absolute output directory.
func (s *DirSink) Root() string {
	return s.root
}

// Prepare creates the output directory if it does not exist. It is safe to
// call more than once.
func (s *DirSink) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prepared {
		return nil
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrWrite, s.root, err)
	}

	s.prepared = true
	s.logger.Debug("output directory ready", "root", s.root)
	return nil
}

func (s *DirSink) Emit(ctx context.Context, index int, data []byte, ext string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, err := Filename(index, ext)
	if err != nil {
		return err
	}

	s.mu.Lock()
	prepared := s.prepared
	s.mu.Unlock()
	if !prepared {
		return ErrNotPrepared
	}

	path := filepath.Join(s.root, name)

	w, err := createFile(path)
	if err != nil {
		return err
	}

	if err := commit(w, data); err != nil {
		w.abort()
		return fmt.Errorf("%s: %w", name, err)
	}

	s.logger.Debug("image written", "file", name, "bytes", len(data))
	return nil
}

// MemoryImage is one image captured by a MemorySink.
type MemoryImage struct {
	Index int
	Name  string
	Data  []byte
}

// MemorySink keeps emitted images in memory.
type MemorySink struct {
	mu     sync.Mutex
	images map[int]MemoryImage
}

func NewMemorySink() *MemorySink {
	return &MemorySink{images: make(map[int]MemoryImage)}
}

func (s *MemorySink) Prepare() error {
	return nil
}

func (s *MemorySink) Emit(ctx context.Context, index int, data []byte, ext string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, err := Filename(index, ext)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.images[index] = MemoryImage{Index: index, Name: name, Data: data}
	return nil
}

// Images returns the captured images ordered by index.
func (s *MemorySink) Images() []MemoryImage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MemoryImage, 0, len(s.images))
	for _, img := range s.images {
		out = append(out, img)
	}
	slices.SortFunc(out, func(a, b MemoryImage) int { return a.Index - b.Index })
	return out
}

// Get returns the image captured at index.
func (s *MemorySink) Get(index int) (MemoryImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[index]
	return img, ok
}

// StreamSink writes a single image to a sequential stream, such as an HTTP
// response body. A second Emit fails with ErrStreamUsed.
type StreamSink struct {
	w *streamWriter

	mu   sync.Mutex
	used bool
}

func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: newStreamWriter(w)}
}

func (s *StreamSink) Prepare() error {
	return nil
}

func (s *StreamSink) Emit(ctx context.Context, index int, data []byte, ext string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := Filename(index, ext); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.used {
		return ErrStreamUsed
	}
	s.used = true

	return commit(s.w, data)
}
