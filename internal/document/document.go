// Package document provides read-only access to the object graph of PDF documents.
// It exposes pages, the XObject entries of each page's resource dictionary, and
// resolution of indirect objects into their dictionary values and stream payloads.
package document

import (
	"errors"
	"fmt"
)

// Dictionary keys populated by Document implementations when resolving objects.
const (
	KeySubtype          = "Subtype"
	KeyWidth            = "Width"
	KeyHeight           = "Height"
	KeyBitsPerComponent = "BitsPerComponent"
	KeyColorSpace       = "ColorSpace"
	KeyImageMask        = "ImageMask"
)

// SubtypeImage is the XObject subtype of raster images.
const SubtypeImage = "Image"

// Document errors.
var (
	ErrOpen         = errors.New("document: open failed")
	ErrNotFound     = errors.New("document: object not found")
	ErrPageNotFound = errors.New("document: page not found")
	ErrDecode       = errors.New("document: stream decode failed")
)

// Document is an opened, read-only document. Pages are numbered from 1.
type Document interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// XObjects returns the XObject entries of a page's resource dictionary in the
	// document's iteration order. The order is stable across calls.
	XObjects(page int) ([]XObject, error)

	// Resolve returns the object an indirect reference points to.
	// Returns ErrNotFound if the reference cannot be resolved.
	Resolve(ref Ref) (*Object, error)

	Close() error
}

// Ref identifies an indirect object.
type Ref struct {
	Number     int
	Generation int
}

func (r Ref) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

// XObject is a named entry of a page's XObject resource dictionary.
type XObject struct {
	Name    string
	Ref     Ref
	Subtype string
}

// Object is a resolved stream object.
type Object struct {
	Ref  Ref
	Dict Dict

	// Components is the number of colour components implied by the colour space,
	// or 0 when it cannot be determined.
	Components int

	// Filter is the image-level filter left on Data once general-purpose
	// transport filters (Flate, LZW, ASCII85, ...) have been removed.
	// Empty when Data holds bare samples.
	Filter string

	Data []byte
}

// Dict holds the scalar dictionary entries of a resolved object.
// Values are int, string (names) or bool.
type Dict map[string]any

// Int returns the integer value stored under key.
func (d Dict) Int(key string) (int, bool) {
	v, ok := d[key].(int)
	return v, ok
}

// Name returns the name value stored under key.
func (d Dict) Name(key string) (string, bool) {
	v, ok := d[key].(string)
	return v, ok
}

// Bool returns the boolean value stored under key.
func (d Dict) Bool(key string) (bool, bool) {
	v, ok := d[key].(bool)
	return v, ok
}
