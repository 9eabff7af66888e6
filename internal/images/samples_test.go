package images_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/JaimeStill/unpdf/internal/images"
)

func TestSamples(t *testing.T) {
	tests := []struct {
		name string
		dict images.ImageDict
		data []byte
		at   image.Point
		want color.Color
	}{
		{
			"8-bit gray",
			images.ImageDict{Width: 2, Height: 1, BitsPerComponent: 8, Components: 1},
			[]byte{0x10, 0x80},
			image.Pt(1, 0),
			color.Gray{Y: 0x80},
		},
		{
			"1-bit gray with padded rows",
			images.ImageDict{Width: 3, Height: 2, BitsPerComponent: 1, Components: 1},
			[]byte{0b10100000, 0b01000000},
			image.Pt(1, 1),
			color.Gray{Y: 0xff},
		},
		{
			"4-bit gray",
			images.ImageDict{Width: 2, Height: 1, BitsPerComponent: 4, Components: 1},
			[]byte{0x0f},
			image.Pt(0, 0),
			color.Gray{Y: 0x00},
		},
		{
			"8-bit rgb",
			images.ImageDict{Width: 1, Height: 1, BitsPerComponent: 8, Components: 3},
			[]byte{0x11, 0x22, 0x33},
			image.Pt(0, 0),
			color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff},
		},
		{
			"16-bit gray",
			images.ImageDict{Width: 1, Height: 1, BitsPerComponent: 16, Components: 1},
			[]byte{0x12, 0x34},
			image.Pt(0, 0),
			color.Gray16{Y: 0x1234},
		},
		{
			"8-bit cmyk",
			images.ImageDict{Width: 1, Height: 1, BitsPerComponent: 8, Components: 4},
			[]byte{0, 0, 0, 0xff},
			image.Pt(0, 0),
			color.CMYK{K: 0xff},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := images.Samples(tt.dict, tt.data)
			if err != nil {
				t.Fatalf("Samples() error = %v", err)
			}
			if got := img.Bounds(); got != image.Rect(0, 0, tt.dict.Width, tt.dict.Height) {
				t.Errorf("Bounds() = %v", got)
			}

			gr, gg, gb, ga := img.At(tt.at.X, tt.at.Y).RGBA()
			wr, wg, wb, wa := tt.want.RGBA()
			if gr != wr || gg != wg || gb != wb || ga != wa {
				t.Errorf("At(%v) = (%d,%d,%d,%d), want (%d,%d,%d,%d)", tt.at, gr, gg, gb, ga, wr, wg, wb, wa)
			}
		})
	}
}

func TestSamples_UnsupportedLayout(t *testing.T) {
	dict := images.ImageDict{Width: 1, Height: 1, BitsPerComponent: 8, Components: 2}

	if _, err := images.Samples(dict, []byte{1, 2}); !errors.Is(err, images.ErrUnsupportedConversion) {
		t.Errorf("Samples() error = %v, want ErrUnsupportedConversion", err)
	}
}

func TestSamples_OversizedDictionary(t *testing.T) {
	tests := []struct {
		name string
		dict images.ImageDict
	}{
		{"wrapping size", images.ImageDict{Width: 1 << 32, Height: 1 << 32, BitsPerComponent: 8, Components: 3}},
		{"too many pixels", images.ImageDict{Width: images.MaxImageDimension, Height: images.MaxImageDimension, BitsPerComponent: 8, Components: 1}},
		{"zero width", images.ImageDict{Width: 0, Height: 4, BitsPerComponent: 8, Components: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := images.Samples(tt.dict, nil); !errors.Is(err, images.ErrMalformedDict) {
				t.Errorf("Samples() error = %v, want ErrMalformedDict", err)
			}
		})
	}
}
