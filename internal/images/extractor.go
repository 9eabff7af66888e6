package images

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/unpdf/internal/document"
)

// Policy selects which payload shapes Extract accepts.
type Policy int

const (
	// PolicyAuto keeps encoded payloads verbatim and validates raw samples.
	PolicyAuto Policy = iota

	// PolicyEncoded only accepts payloads holding a standard image encoding.
	PolicyEncoded

	// PolicySamples only accepts payloads holding bare samples.
	PolicySamples
)

func (p Policy) String() string {
	switch p {
	case PolicyEncoded:
		return "encoded"
	case PolicySamples:
		return "samples"
	default:
		return "auto"
	}
}

// ParsePolicy converts a policy name to a Policy. The empty string selects PolicyAuto.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return PolicyAuto, nil
	case "encoded":
		return PolicyEncoded, nil
	case "samples":
		return PolicySamples, nil
	default:
		return PolicyAuto, fmt.Errorf("%w: %q (must be auto, encoded or samples)", ErrInvalidPolicy, name)
	}
}

// ExtractOptions controls a single extraction.
type ExtractOptions struct {
	Policy Policy

	// MaxBytes rejects payloads larger than this many bytes. Zero disables the limit.
	MaxBytes int64
}

// Extract resolves an image reference and returns its payload.
//
// Encoded payloads (JPEG, JBIG2, JPEG 2000) are returned undecoded. Raw sample
// payloads are checked against the dimensions in the image dictionary.
// Unsupported filters fail with ErrUnsupportedEncoding so the caller can skip
// the image.
func Extract(doc document.Document, ref XObjectRef, opts ExtractOptions) (*RawImage, error) {
	obj, err := doc.Resolve(ref.Ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnresolvedReference, ref, err)
	}

	if subtype, _ := obj.Dict.Name(document.KeySubtype); subtype != document.SubtypeImage {
		return nil, fmt.Errorf("%w: %s: subtype %q is not an image", ErrUnresolvedReference, ref, subtype)
	}

	dict, err := readDict(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}

	if opts.MaxBytes > 0 && int64(len(obj.Data)) > opts.MaxBytes {
		return nil, fmt.Errorf("%w: %s: %d bytes exceeds %d", ErrPayloadTooLarge, ref, len(obj.Data), opts.MaxBytes)
	}

	raw := &RawImage{Ref: ref, Dict: dict, Data: obj.Data}

	switch {
	case dict.Filter.Kind == KindUnsupported:
		return nil, fmt.Errorf("%w: %s: filter %s", ErrUnsupportedEncoding, ref, dict.Filter.Filter)

	case dict.Filter.Encoded():
		if opts.Policy == PolicySamples {
			return nil, fmt.Errorf("%w: %s: %s payload where samples are required", ErrUnsupportedEncoding, ref, dict.Filter.Kind)
		}
		if len(raw.Data) == 0 {
			return nil, fmt.Errorf("%w: %s: empty %s payload", ErrTruncatedSampleData, ref, dict.Filter.Kind)
		}
		return raw, nil

	default:
		if opts.Policy == PolicyEncoded {
			return nil, fmt.Errorf("%w: %s: raw samples where an encoded image is required", ErrUnsupportedEncoding, ref)
		}
		if err := validateSamples(dict, len(raw.Data)); err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		return raw, nil
	}
}

func readDict(obj *document.Object) (ImageDict, error) {
	width, _ := obj.Dict.Int(document.KeyWidth)
	height, _ := obj.Dict.Int(document.KeyHeight)
	if width <= 0 || height <= 0 {
		return ImageDict{}, fmt.Errorf("%w: width and height are required (got %dx%d)", ErrMalformedDict, width, height)
	}

	mask, _ := obj.Dict.Bool(document.KeyImageMask)
	colorSpace, _ := obj.Dict.Name(document.KeyColorSpace)

	dict := ImageDict{
		Width:      width,
		Height:     height,
		Components: obj.Components,
		ColorSpace: colorSpace,
		ImageMask:  mask,
		Filter:     Classify(obj.Filter),
	}

	if bpc, ok := obj.Dict.Int(document.KeyBitsPerComponent); ok && bpc > 0 {
		dict.BitsPerComponent = bpc
	} else {
		dict.BitsPerComponent = 8
	}

	if mask {
		dict.BitsPerComponent = 1
		dict.Components = 1
	}

	if err := dict.checkBounds(); err != nil {
		return ImageDict{}, err
	}
	return dict, nil
}

func validateSamples(dict ImageDict, n int) error {
	switch dict.BitsPerComponent {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("%w: unsupported bit depth %d", ErrMalformedDict, dict.BitsPerComponent)
	}

	if dict.Components < 1 {
		return fmt.Errorf("%w: unknown colour space %q", ErrMalformedDict, dict.ColorSpace)
	}

	if err := dict.checkBounds(); err != nil {
		return err
	}

	if want := dict.SampleBytes(); n < want {
		return fmt.Errorf("%w: have %d bytes, need %d for %dx%d, %d components at %d bits",
			ErrTruncatedSampleData, n, want, dict.Width, dict.Height, dict.Components, dict.BitsPerComponent)
	}

	return nil
}
