package images

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/JaimeStill/unpdf/internal/document"
)

// WalkOptions controls a resource walk.
type WalkOptions struct {
	// Pages restricts the walk to the listed 1-based pages, in the given order.
	// Nil walks every page.
	Pages []int

	Logger *slog.Logger

	// OnPageError is called for every page that is skipped because its
	// resources could not be resolved.
	OnPageError func(page int, err error)
}

// Walk returns the Image XObjects of doc in discovery order: page order, then the
// document's resource order within a page. The sequence is lazy and restartable;
// ranging over it twice yields the same references.
func Walk(doc document.Document, opts WalkOptions) iter.Seq[XObjectRef] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return func(yield func(XObjectRef) bool) {
		for page := range pageSeq(doc, opts.Pages) {
			entries, err := doc.XObjects(page)
			if err != nil {
				err = fmt.Errorf("%w: page %d: %v", ErrPageResolution, page, err)
				logger.Warn("skipping page", "page", page, "error", err)
				if opts.OnPageError != nil {
					opts.OnPageError(page, err)
				}
				continue
			}

			for i, entry := range entries {
				ref := XObjectRef{
					Page:     page,
					Resource: i,
					Name:     entry.Name,
					Ref:      entry.Ref,
					Kind:     objectKind(entry.Subtype),
				}
				if ref.Kind != ObjectImage {
					continue
				}
				if !yield(ref) {
					return
				}
			}
		}
	}
}

func pageSeq(doc document.Document, pages []int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if pages != nil {
			for _, page := range pages {
				if !yield(page) {
					return
				}
			}
			return
		}

		for page := 1; page <= doc.PageCount(); page++ {
			if !yield(page) {
				return
			}
		}
	}
}

func objectKind(subtype string) ObjectKind {
	if subtype == document.SubtypeImage {
		return ObjectImage
	}
	return ObjectOther
}
