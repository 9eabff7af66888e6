package images

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/JaimeStill/unpdf/internal/document"
)

// SupportedFormats lists content types that images can be extracted from.
var SupportedFormats = map[string]bool{
	"application/pdf": true,
}

// IsSupported returns whether a content type can be searched for images.
func IsSupported(contentType string) bool {
	return SupportedFormats[contentType]
}

// DetectContentType returns the declared content type unless it is empty or
// generic, in which case the type is sniffed from data.
func DetectContentType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

// OpenDocument opens an in-memory document based on its content type.
func OpenDocument(data []byte, contentType string) (document.Document, error) {
	if !IsSupported(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, contentType)
	}
	return document.Read(bytes.NewReader(data))
}
