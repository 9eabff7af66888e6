package images

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/unpdf/internal/codec"
)

// DefaultJPEGQuality is the JPEG quality used when none is configured.
const DefaultJPEGQuality = 10

// FormatKind names a target output format.
type FormatKind string

// Target format kinds.
const (
	FormatJPEG        FormatKind = "jpeg"
	FormatPNG         FormatKind = "png"
	FormatJP2K        FormatKind = "jp2k"
	FormatTIFF        FormatKind = "tiff"
	FormatBMP         FormatKind = "bmp"
	FormatPassthrough FormatKind = "passthrough"
)

// Format is the requested output encoding. Quality only applies to JPEG.
type Format struct {
	Kind    FormatKind
	Quality int
}

// JPEG returns a JPEG target with the given quality.
func JPEG(quality int) Format {
	return Format{Kind: FormatJPEG, Quality: quality}
}

// PNG returns a PNG target.
func PNG() Format {
	return Format{Kind: FormatPNG}
}

// JP2K returns a JPEG 2000 target.
func JP2K() Format {
	return Format{Kind: FormatJP2K}
}

// Passthrough returns a target that keeps encoded payloads unchanged.
func Passthrough() Format {
	return Format{Kind: FormatPassthrough}
}

// ParseFormat parses a format name. Names are case-insensitive, "jpg" is accepted
// for JPEG, and the empty string selects JPEG at DefaultJPEGQuality.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "jpeg", "jpg":
		return JPEG(DefaultJPEGQuality), nil
	case "png":
		return PNG(), nil
	case "jp2k", "jp2", "jpx":
		return JP2K(), nil
	case "tiff", "tif":
		return Format{Kind: FormatTIFF}, nil
	case "bmp":
		return Format{Kind: FormatBMP}, nil
	case "passthrough", "raw":
		return Passthrough(), nil
	default:
		return Format{}, fmt.Errorf("%w: %q (must be jpeg, png, jp2k, tiff, bmp or passthrough)", ErrInvalidFormat, name)
	}
}

// WithQuality returns a copy of f with the JPEG quality set.
// Quality must be within 1-100 and is rejected for other formats.
func (f Format) WithQuality(quality int) (Format, error) {
	if f.Kind != FormatJPEG {
		return f, fmt.Errorf("%w: quality only applies to jpeg", ErrInvalidFormat)
	}
	if quality < 1 || quality > 100 {
		return f, fmt.Errorf("%w: quality must be between 1 and 100", ErrInvalidFormat)
	}
	f.Quality = quality
	return f, nil
}

// Extension returns the file extension for output produced from a source of
// the given kind.
func (f Format) Extension(source Kind) string {
	if f.Kind != FormatPassthrough {
		return string(f.Kind)
	}
	if source == KindRawSamples {
		return string(FormatPNG)
	}
	return string(source)
}

func (f Format) String() string {
	if f.Kind == FormatJPEG {
		return fmt.Sprintf("%s(q=%d)", f.Kind, f.Quality)
	}
	return string(f.Kind)
}

// ContentType returns the media type for an output file extension.
func ContentType(ext string) string {
	switch ext {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "jp2k":
		return "image/jp2"
	case "jbig2":
		return "image/x-jbig2"
	case "tiff":
		return "image/tiff"
	case "bmp":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}

func (f Format) codecFormat() codec.Format {
	switch f.Kind {
	case FormatJPEG:
		return codec.JPEG
	case FormatPNG:
		return codec.PNG
	case FormatJP2K:
		return codec.JP2K
	case FormatTIFF:
		return codec.TIFF
	case FormatBMP:
		return codec.BMP
	default:
		return codec.Unknown
	}
}

// matches reports whether output in format f is byte-compatible with a source of kind k.
func (f Format) matches(k Kind) bool {
	switch f.Kind {
	case FormatJPEG:
		return k == KindJPEG
	case FormatPNG:
		return k == KindPNG
	case FormatJP2K:
		return k == KindJP2K
	default:
		return false
	}
}

func kindCodec(k Kind) codec.Format {
	switch k {
	case KindJPEG:
		return codec.JPEG
	case KindPNG:
		return codec.PNG
	case KindJP2K:
		return codec.JP2K
	case KindJBIG2:
		return codec.JBIG2
	default:
		return codec.Unknown
	}
}
