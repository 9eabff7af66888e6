package images

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/unpdf/internal/document"
	"github.com/JaimeStill/unpdf/internal/output"
)

type repo struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an image extraction system.
func New(cfg Config, logger *slog.Logger) System {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &repo{
		cfg:    cfg,
		logger: logger.With("system", "images"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.cfg, r.logger)
}

func (r *repo) Run(ctx context.Context, doc document.Document, sink output.Sink, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	summary := &Summary{RunID: uuid.New()}
	logger := r.logger.With("run", summary.RunID)

	pages, err := selectPages(doc, opts.Pages)
	if err != nil {
		return nil, err
	}
	summary.Pages = len(pages)

	if err := sink.Prepare(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputRoot, err)
	}

	logger.Info("extraction started",
		"pages", summary.Pages,
		"format", opts.Format,
		"workers", workerCount(opts.Workers),
	)

	var mu sync.Mutex
	fail := func(index int, ref XObjectRef, err error) {
		mu.Lock()
		defer mu.Unlock()
		summary.Failures = append(summary.Failures, Failure{Index: index, Ref: ref, Err: err})
		logger.Warn("image skipped", "index", index, "page", ref.Page, "resource", ref.Resource, "error", err)
	}

	var g errgroup.Group
	g.SetLimit(workerCount(opts.Workers))

	onPageError := func(int, error) {
		mu.Lock()
		summary.PagesSkipped++
		mu.Unlock()
	}

	for item := range r.extract(doc, pages, opts, logger, onPageError) {
		if ctx.Err() != nil {
			break
		}

		summary.Discovered++

		if item.err != nil {
			fail(item.index, item.ref, item.err)
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				fail(item.index, item.ref, err)
				return nil
			}

			enc, err := Reencode(item.raw, opts.Format)
			if err != nil {
				fail(item.index, item.ref, err)
				return nil
			}

			if err := sink.Emit(ctx, item.index, enc.Data, enc.Ext); err != nil {
				fail(item.index, item.ref, err)
				return nil
			}

			mu.Lock()
			summary.Written++
			summary.Bytes += int64(len(enc.Data))
			mu.Unlock()
			return nil
		})
	}

	g.Wait()

	slices.SortFunc(summary.Failures, func(a, b Failure) int { return a.Index - b.Index })

	logger.Info("extraction complete",
		"discovered", summary.Discovered,
		"written", summary.Written,
		"skipped", summary.Skipped(),
		"pages_skipped", summary.PagesSkipped,
		"size", units.HumanSize(float64(summary.Bytes)),
	)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *repo) First(ctx context.Context, doc document.Document, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	pages, err := selectPages(doc, opts.Pages)
	if err != nil {
		return nil, err
	}

	var first error
	for item := range r.extract(doc, pages, opts, r.logger, nil) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := item.err
		if err == nil {
			var enc *Encoded
			if enc, err = Reencode(item.raw, opts.Format); err == nil {
				return &Result{
					Index:       item.index,
					Ref:         item.ref,
					Data:        enc.Data,
					Ext:         enc.Ext,
					Passthrough: enc.Passthrough,
				}, nil
			}
		}

		r.logger.Warn("image skipped", "index", item.index, "page", item.ref.Page, "resource", item.ref.Resource, "error", err)
		if first == nil {
			first = err
		}
	}

	if first != nil {
		return nil, first
	}
	return nil, ErrNoImages
}

type extraction struct {
	index int
	ref   XObjectRef
	raw   *RawImage
	err   error
}

// extract walks doc and extracts each image on the calling goroutine. Every
// discovered image consumes an index, including those that fail to extract.
func (r *repo) extract(doc document.Document, pages []int, opts Options, logger *slog.Logger, onPageError func(int, error)) iter.Seq[extraction] {
	walk := WalkOptions{Pages: pages, Logger: logger, OnPageError: onPageError}
	extractOpts := ExtractOptions{Policy: opts.Policy, MaxBytes: opts.MaxImageBytes}

	return func(yield func(extraction) bool) {
		index := 0
		for ref := range Walk(doc, walk) {
			raw, err := Extract(doc, ref, extractOpts)
			if !yield(extraction{index: index, ref: ref, raw: raw, err: err}) {
				return
			}
			index++
		}
	}
}

// selectPages resolves a page range expression against doc. An empty
// expression selects every page.
func selectPages(doc document.Document, expr string) ([]int, error) {
	if expr == "" {
		return ParsePageRange("all", doc.PageCount())
	}
	return ParsePageRange(expr, doc.PageCount())
}

func (o Options) withDefaults() Options {
	if o.Format.Kind == "" {
		o.Format = JPEG(DefaultJPEGQuality)
	}
	return o
}

func workerCount(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(n, 1)
}
