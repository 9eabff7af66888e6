package images

import (
	"fmt"
	"math"

	"github.com/JaimeStill/unpdf/internal/document"
)

// ObjectKind tags an XObject resource entry.
type ObjectKind string

// XObject kinds.
const (
	ObjectImage ObjectKind = "image"
	ObjectOther ObjectKind = "other"
)

// XObjectRef is an XObject discovered while walking a page's resources.
type XObjectRef struct {
	// Page is the 1-based page number.
	Page int
	// Resource is the position of the entry within the page's XObject resources.
	Resource int
	Name     string
	Ref      document.Ref
	Kind     ObjectKind
}

func (r XObjectRef) String() string {
	return fmt.Sprintf("page %d resource %d (%s, %s)", r.Page, r.Resource, r.Name, r.Ref)
}

// ImageDict describes an image XObject.
type ImageDict struct {
	Width            int
	Height           int
	BitsPerComponent int
	Components       int
	ColorSpace       string
	ImageMask        bool
	Filter           Encoding
}

// Image dictionary limits. Dictionaries beyond them are rejected as malformed
// before any sample arithmetic.
const (
	MaxImageDimension = 1 << 16
	MaxImagePixels    = 1 << 28
	MaxComponents     = 32
)

// checkBounds reports dimensions, component counts and depths that no sample
// buffer can hold. Width x Height x Components x BitsPerComponent fits in an int
// once it passes.
func (d ImageDict) checkBounds() error {
	if d.Width <= 0 || d.Height <= 0 || d.Width > MaxImageDimension || d.Height > MaxImageDimension {
		return fmt.Errorf("%w: dimensions %dx%d outside 1-%d", ErrMalformedDict, d.Width, d.Height, MaxImageDimension)
	}
	if int64(d.Width)*int64(d.Height) > MaxImagePixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrMalformedDict, d.Width, d.Height, MaxImagePixels)
	}
	if d.Components > MaxComponents {
		return fmt.Errorf("%w: %d colour components", ErrMalformedDict, d.Components)
	}
	if d.BitsPerComponent < 0 || d.BitsPerComponent > 16 {
		return fmt.Errorf("%w: unsupported bit depth %d", ErrMalformedDict, d.BitsPerComponent)
	}
	if bits := int64(d.Width) * int64(d.Height) * int64(d.Components) * int64(d.BitsPerComponent); bits > math.MaxInt-7 {
		return fmt.Errorf("%w: %dx%d image is too large", ErrMalformedDict, d.Width, d.Height)
	}
	return nil
}

// RowBytes returns the packed length of one row of samples.
func (d ImageDict) RowBytes() int {
	return (d.Width*d.Components*d.BitsPerComponent + 7) / 8
}

// SampleBytes returns the minimum payload length for raw samples. It is only
// meaningful for dictionaries within the image limits.
// Each row starts on a byte boundary, so for byte-aligned depths this is
// Width x Height x Components x BitsPerComponent/8.
func (d ImageDict) SampleBytes() int {
	return d.Height * d.RowBytes()
}

// RawImage is the payload of one extracted image: either a standard encoded
// image or tightly packed samples described by Dict.
type RawImage struct {
	Ref  XObjectRef
	Dict ImageDict
	Data []byte
}

// Kind returns the encoding kind of the payload.
func (r *RawImage) Kind() Kind {
	return r.Dict.Filter.Kind
}
