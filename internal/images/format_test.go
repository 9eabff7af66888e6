package images_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/unpdf/internal/images"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    images.Format
		wantErr bool
	}{
		{"", images.JPEG(images.DefaultJPEGQuality), false},
		{"jpeg", images.JPEG(images.DefaultJPEGQuality), false},
		{"JPG", images.JPEG(images.DefaultJPEGQuality), false},
		{"png", images.PNG(), false},
		{"jp2k", images.JP2K(), false},
		{"jpx", images.JP2K(), false},
		{"tif", images.Format{Kind: images.FormatTIFF}, false},
		{"bmp", images.Format{Kind: images.FormatBMP}, false},
		{"passthrough", images.Passthrough(), false},
		{"gif", images.Format{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := images.ParseFormat(tt.name)
			if tt.wantErr {
				if !errors.Is(err, images.ErrInvalidFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrInvalidFormat", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFormat_WithQuality(t *testing.T) {
	tests := []struct {
		name    string
		format  images.Format
		quality int
		wantErr bool
	}{
		{"jpeg override", images.JPEG(images.DefaultJPEGQuality), 85, false},
		{"lower bound", images.JPEG(images.DefaultJPEGQuality), 1, false},
		{"upper bound", images.JPEG(images.DefaultJPEGQuality), 100, false},
		{"zero", images.JPEG(images.DefaultJPEGQuality), 0, true},
		{"too high", images.JPEG(images.DefaultJPEGQuality), 101, true},
		{"png", images.PNG(), 85, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.format.WithQuality(tt.quality)
			if tt.wantErr {
				if !errors.Is(err, images.ErrInvalidFormat) {
					t.Errorf("WithQuality(%d) error = %v, want ErrInvalidFormat", tt.quality, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("WithQuality(%d) error = %v", tt.quality, err)
			}
			if got.Quality != tt.quality {
				t.Errorf("Quality = %d, want %d", got.Quality, tt.quality)
			}
		})
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		name   string
		format images.Format
		source images.Kind
		want   string
	}{
		{"jpeg target", images.JPEG(50), images.KindRawSamples, "jpeg"},
		{"png target", images.PNG(), images.KindJPEG, "png"},
		{"passthrough jpeg", images.Passthrough(), images.KindJPEG, "jpeg"},
		{"passthrough jbig2", images.Passthrough(), images.KindJBIG2, "jbig2"},
		{"passthrough raw", images.Passthrough(), images.KindRawSamples, "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Extension(tt.source); got != tt.want {
				t.Errorf("Extension(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"jpeg":  "image/jpeg",
		"png":   "image/png",
		"jp2k":  "image/jp2",
		"tiff":  "image/tiff",
		"other": "application/octet-stream",
	}

	for ext, want := range tests {
		if got := images.ContentType(ext); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", ext, got, want)
		}
	}
}
