package images

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/unpdf/internal/document"
	"github.com/JaimeStill/unpdf/internal/output"
)

// System defines the interface for image extraction runs.
type System interface {
	Handler() *Handler

	// Run extracts every image of doc, re-encodes it into opts.Format and emits
	// it to sink. Per-image failures are recorded in the summary and never stop
	// the run. Errors are returned only for setup failures and cancellation.
	Run(ctx context.Context, doc document.Document, sink output.Sink, opts Options) (*Summary, error)

	// First returns the first image of doc that extracts and converts successfully.
	First(ctx context.Context, doc document.Document, opts Options) (*Result, error)
}

// Options configures a single run.
type Options struct {
	Format Format

	// Workers bounds concurrent re-encoding. Zero uses one worker per CPU.
	Workers int

	// Pages is a page range expression. Empty selects every page.
	Pages string

	Policy Policy

	// MaxImageBytes skips payloads larger than this. Zero disables the limit.
	MaxImageBytes int64
}

// Config holds the defaults a System applies to requests that do not override them.
type Config struct {
	Defaults      Options
	MaxUploadSize int64
}

// Result is one re-encoded image.
type Result struct {
	Index       int
	Ref         XObjectRef
	Data        []byte
	Ext         string
	Passthrough bool
}

// ContentType returns the media type of the result.
func (r *Result) ContentType() string {
	return ContentType(r.Ext)
}

// Failure records an image that was discovered but not written.
type Failure struct {
	Index int
	Ref   XObjectRef
	Err   error
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID        uuid.UUID
	Pages        int
	PagesSkipped int
	Discovered   int
	Written      int
	Failures     []Failure
	Bytes        int64
}

// Skipped returns the number of discovered images that were not written.
func (s *Summary) Skipped() int {
	return s.Discovered - s.Written
}
