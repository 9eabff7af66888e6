package images_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"testing"

	"github.com/JaimeStill/unpdf/internal/document"
)

func jpegData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), B: 0x80, A: 0xff})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func rgbSamples(w, h int) []byte {
	data := make([]byte, w*h*3)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func encodedObject(filter string, w, h, components int, data []byte) document.Object {
	return document.Object{
		Dict: document.Dict{
			document.KeyWidth:            w,
			document.KeyHeight:           h,
			document.KeyBitsPerComponent: 8,
		},
		Components: components,
		Filter:     filter,
		Data:       data,
	}
}

func rawObject(w, h, components, bpc int, data []byte) document.Object {
	colorSpace := map[int]string{1: "DeviceGray", 3: "DeviceRGB", 4: "DeviceCMYK"}[components]
	return document.Object{
		Dict: document.Dict{
			document.KeyWidth:            w,
			document.KeyHeight:           h,
			document.KeyBitsPerComponent: bpc,
			document.KeyColorSpace:       colorSpace,
		},
		Components: components,
		Data:       data,
	}
}

// scenarioDocument has a JPEG on page 1, raw RGB samples and a JBIG2 image on page 2.
func scenarioDocument(t *testing.T) *document.Arena {
	t.Helper()
	a := document.NewArena()

	a.AddPage(a.AddImage("Im0", encodedObject("DCTDecode", 8, 6, 3, jpegData(t, 8, 6))))
	a.AddPage(
		a.AddImage("Im1", rawObject(10, 10, 3, 8, rgbSamples(10, 10))),
		a.AddImage("Im2", encodedObject("JBIG2Decode", 16, 16, 1, []byte{0x97, 0x4a, 0x42, 0x32})),
	)
	return a
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
