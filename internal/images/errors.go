// Package images locates raster images embedded in PDF documents and re-encodes
// them into a requested output format. It walks the page resource graph, classifies
// each image stream by its filter, extracts encoded payloads or raw samples, and
// converts them with the codec service before handing them to an output sink.
package images

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/unpdf/internal/document"
)

// Domain errors for image extraction.
var (
	ErrPageResolution        = errors.New("page resources could not be resolved")
	ErrUnresolvedReference   = errors.New("unresolved image reference")
	ErrMalformedDict         = errors.New("malformed image dictionary")
	ErrTruncatedSampleData   = errors.New("truncated sample data")
	ErrUnsupportedEncoding   = errors.New("unsupported image encoding")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrConversionFailed      = errors.New("conversion failed")
	ErrPayloadTooLarge       = errors.New("image payload too large")
	ErrInvalidFormat         = errors.New("invalid target format")
	ErrInvalidPolicy         = errors.New("invalid extraction policy")
	ErrNoImages              = errors.New("document contains no images")
	ErrOutputRoot            = errors.New("output root unavailable")
	ErrInvalidPageRange      = errors.New("invalid page range")
	ErrPageOutOfRange        = errors.New("page number out of range")
	ErrUnsupportedDocument   = errors.New("document format is not supported")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, document.ErrOpen):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnsupportedDocument):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidFormat),
		errors.Is(err, ErrInvalidPolicy):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidPageRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrPageOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoImages):
		return http.StatusNotFound
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnresolvedReference),
		errors.Is(err, ErrMalformedDict),
		errors.Is(err, ErrTruncatedSampleData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnsupportedEncoding),
		errors.Is(err, ErrUnsupportedConversion),
		errors.Is(err, ErrConversionFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
