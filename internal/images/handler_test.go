package images_test

import (
	"bytes"
	"encoding/json"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/unpdf/internal/document/pdftest"
	"github.com/JaimeStill/unpdf/internal/images"
	"github.com/JaimeStill/unpdf/pkg/routes"
)

func newServer(t *testing.T, cfg images.Config) *httptest.Server {
	t.Helper()
	sys := images.New(cfg, nil)

	r := routes.New(discardLogger())
	r.RegisterGroup(sys.Handler().Routes())

	srv := httptest.NewServer(r.Build())
	t.Cleanup(srv.Close)
	return srv
}

func TestHandler_Extract(t *testing.T) {
	jpg := jpegData(t, 6, 4)
	doc := pdftest.Build(
		pdftest.Page{Forms: []pdftest.Form{{Name: "Fx0"}}},
		pdftest.Page{Images: []pdftest.Image{
			{Name: "Im0", Width: 6, Height: 4, ColorSpace: "DeviceRGB", Filter: "DCTDecode", Data: jpg},
			{Name: "Im1", Width: 2, Height: 2, Filter: "FlateDecode", Data: pdftest.Flate([]byte{1, 2, 3, 4})},
		}},
	)

	srv := newServer(t, images.Config{})

	t.Run("default jpeg passthrough", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/extract", "application/pdf", bytes.NewReader(doc))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("Content-Type = %q", ct)
		}
		if idx := resp.Header.Get(images.HeaderImageIndex); idx != "0" {
			t.Errorf("%s = %q, want 0", images.HeaderImageIndex, idx)
		}

		var body bytes.Buffer
		body.ReadFrom(resp.Body)
		if !bytes.Equal(body.Bytes(), jpg) {
			t.Error("body is not the embedded JPEG")
		}
	})

	t.Run("png conversion", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/extract?format=png", "", bytes.NewReader(doc))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		cfg, err := png.DecodeConfig(resp.Body)
		if err != nil {
			t.Fatalf("png.DecodeConfig() error = %v", err)
		}
		if cfg.Width != 6 || cfg.Height != 4 {
			t.Errorf("size = %dx%d, want 6x4", cfg.Width, cfg.Height)
		}
	})

	t.Run("samples policy", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/extract?policy=samples&format=png", "application/pdf", bytes.NewReader(doc))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if idx := resp.Header.Get(images.HeaderImageIndex); idx != "1" {
			t.Errorf("%s = %q, want 1", images.HeaderImageIndex, idx)
		}
	})

	t.Run("page selection", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/extract?pages=2&quality=90", "application/pdf", bytes.NewReader(doc))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if _, err := jpeg.DecodeConfig(resp.Body); err != nil {
			t.Errorf("body is not a JPEG: %v", err)
		}
	})
}

func TestHandler_SkipsFailingImages(t *testing.T) {
	doc := pdftest.Build(pdftest.Page{Images: []pdftest.Image{
		{Name: "Im0", Width: 16, Height: 16, Filter: "JBIG2Decode", Data: []byte{0x97, 0x4a}},
		{Name: "Im1", Width: 2, Height: 2, Filter: "FlateDecode", Data: pdftest.Flate([]byte{1, 2, 3, 4})},
	}})

	srv := newServer(t, images.Config{})

	resp, err := http.Post(srv.URL+"/extract?format=png", "application/pdf", bytes.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if idx := resp.Header.Get(images.HeaderImageIndex); idx != "1" {
		t.Errorf("%s = %q, want 1", images.HeaderImageIndex, idx)
	}
	cfg, err := png.DecodeConfig(resp.Body)
	if err != nil {
		t.Fatalf("png.DecodeConfig() error = %v", err)
	}
	if cfg.Width != 2 || cfg.Height != 2 {
		t.Errorf("size = %dx%d, want 2x2", cfg.Width, cfg.Height)
	}
}

func TestHandler_Errors(t *testing.T) {
	empty := pdftest.Build(pdftest.Page{})

	tests := []struct {
		name        string
		cfg         images.Config
		query       string
		contentType string
		body        []byte
		want        int
	}{
		{"invalid format", images.Config{}, "?format=gif", "application/pdf", empty, http.StatusBadRequest},
		{"invalid quality", images.Config{}, "?quality=abc", "application/pdf", empty, http.StatusBadRequest},
		{"quality for png", images.Config{}, "?format=png&quality=50", "application/pdf", empty, http.StatusBadRequest},
		{"page out of range", images.Config{}, "?pages=4", "application/pdf", empty, http.StatusBadRequest},
		{"invalid policy", images.Config{}, "?policy=strict", "application/pdf", empty, http.StatusBadRequest},
		{"not a document", images.Config{}, "", "text/plain", []byte("hello"), http.StatusUnsupportedMediaType},
		{"corrupt pdf", images.Config{}, "", "application/pdf", []byte("%PDF-1.7 broken"), http.StatusUnprocessableEntity},
		{"no images", images.Config{}, "", "application/pdf", empty, http.StatusNotFound},
		{"upload too large", images.Config{MaxUploadSize: 16}, "", "application/pdf", empty, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.cfg)

			resp, err := http.Post(srv.URL+"/extract"+tt.query, tt.contentType, bytes.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body["error"] == "" {
				t.Error("error body is empty")
			}
		})
	}
}
