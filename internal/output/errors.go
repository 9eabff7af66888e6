// Package output writes extracted images to their destination: a directory of
// files, an in-memory buffer, or a sequential byte stream such as a network
// response. Files are named extracted_image_<index>.<ext>.
package output

import "errors"

// Output errors returned by Sink and Writer implementations.
var (
	// ErrUnsupportedOperation indicates the writer lacks a requested capability,
	// such as seeking on a network stream.
	ErrUnsupportedOperation = errors.New("output: unsupported operation")

	// ErrWrite indicates the image bytes could not be written.
	ErrWrite = errors.New("output: write failed")

	// ErrInvalidIndex indicates a negative image index or an empty extension.
	ErrInvalidIndex = errors.New("output: invalid index")

	// ErrNotPrepared indicates Emit was called before a successful Prepare.
	ErrNotPrepared = errors.New("output: sink not prepared")

	// ErrStreamUsed indicates a stream sink already carried an image.
	ErrStreamUsed = errors.New("output: stream already written")
)
