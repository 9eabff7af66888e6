package output

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Writer receives the bytes of one output image. Finalize completes the image
// and releases the writer; no writes may follow it.
type Writer interface {
	io.Writer
	Finalize() error
}

// Seeker returns w as an io.WriteSeeker when the writer supports random access.
// Stream writers never do and report ErrUnsupportedOperation.
func Seeker(w Writer) (io.WriteSeeker, error) {
	ws, ok := w.(io.WriteSeeker)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not support seeking", ErrUnsupportedOperation, w)
	}
	return ws, nil
}

// commit writes data to w and finalizes it. For writers that support seeking
// the resulting position must equal len(data).
func commit(w Writer, data []byte) error {
	n, err := w.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if ws, err := Seeker(w); err == nil {
		pos, err := ws.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
		if pos != int64(len(data)) {
			return fmt.Errorf("%w: wrote %d of %d bytes", ErrWrite, pos, len(data))
		}
	}

	return w.Finalize()
}

// fileWriter writes to a temporary file that is renamed into place on Finalize.
type fileWriter struct {
	file *os.File
	path string
}

func createFile(path string) (*fileWriter, error) {
	f, err := os.Create(path + ".tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrWrite, path, err)
	}
	return &fileWriter{file: f, path: path}, nil
}

func (w *fileWriter) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

func (w *fileWriter) Seek(offset int64, whence int) (int64, error) {
	return w.file.Seek(offset, whence)
}

func (w *fileWriter) Finalize() error {
	tmp := w.file.Name()

	err := errors.Join(w.file.Sync(), w.file.Close())
	if err == nil {
		err = os.Rename(tmp, w.path)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %s: %v", ErrWrite, w.path, err)
	}
	return nil
}

// abort discards a partially written file.
func (w *fileWriter) abort() {
	tmp := w.file.Name()
	w.file.Close()
	os.Remove(tmp)
}

// streamWriter writes sequentially to an underlying stream.
type streamWriter struct {
	w io.Writer
}

func newStreamWriter(w io.Writer) *streamWriter {
	return &streamWriter{w: w}
}

func (w *streamWriter) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

func (w *streamWriter) Finalize() error {
	if f, ok := w.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
