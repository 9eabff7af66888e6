// Package codec decodes and encodes standard image file formats.
// JPEG and PNG use the standard library codecs, TIFF and BMP use golang.org/x/image.
// JPEG 2000 and JBIG2 are recognised but cannot be decoded or encoded.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Format identifies an image file format.
type Format string

// Supported formats.
const (
	JPEG  Format = "jpeg"
	PNG   Format = "png"
	TIFF  Format = "tiff"
	BMP   Format = "bmp"
	JP2K  Format = "jp2k"
	JBIG2 Format = "jbig2"

	// Unknown asks Decode to detect the format from the data.
	Unknown Format = ""
)

// Codec errors.
var (
	ErrUnsupported = errors.New("codec: unsupported format")
	ErrDecode      = errors.New("codec: decode failed")
	ErrEncode      = errors.New("codec: encode failed")
)

// DefaultJPEGQuality is used when Options carry no quality.
const DefaultJPEGQuality = jpeg.DefaultQuality

// Options holds encoder parameters.
type Options struct {
	// Quality is the JPEG quality on a 1-100 scale.
	Quality int
}

// CanDecode reports whether Decode accepts data of format f.
func CanDecode(f Format) bool {
	switch f {
	case JPEG, PNG, TIFF, BMP:
		return true
	default:
		return false
	}
}

// CanEncode reports whether Encode can produce format f.
func CanEncode(f Format) bool {
	return CanDecode(f)
}

// Decode decodes data declared as hint into a sample buffer.
func Decode(data []byte, hint Format) (image.Image, error) {
	r := bytes.NewReader(data)

	var (
		img image.Image
		err error
	)

	switch hint {
	case JPEG:
		img, err = jpeg.Decode(r)
	case PNG:
		img, err = png.Decode(r)
	case TIFF:
		img, err = tiff.Decode(r)
	case BMP:
		img, err = bmp.Decode(r)
	case Unknown:
		img, _, err = image.Decode(r)
	default:
		return nil, fmt.Errorf("%w: decode %s", ErrUnsupported, hint)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, hint, err)
	}
	return img, nil
}

// Encode encodes img as format f. The image bounds are preserved.
func Encode(img image.Image, f Format, opts Options) ([]byte, error) {
	var buf bytes.Buffer

	var err error
	switch f {
	case JPEG:
		quality := opts.Quality
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(&buf, Flatten(img), &jpeg.Options{Quality: quality})
	case PNG:
		err = png.Encode(&buf, img)
	case TIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case BMP:
		err = bmp.Encode(&buf, Flatten(img))
	default:
		return nil, fmt.Errorf("%w: encode %s", ErrUnsupported, f)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, f, err)
	}
	return buf.Bytes(), nil
}

// Flatten composites a translucent image onto a white background for formats
// without an alpha channel. Opaque images are returned unchanged.
func Flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}
