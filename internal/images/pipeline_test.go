package images_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/unpdf/internal/document"
	"github.com/JaimeStill/unpdf/internal/images"
	"github.com/JaimeStill/unpdf/internal/output"
)

func newSystem() images.System {
	return images.New(images.Config{}, nil)
}

func TestRun_MixedDocument(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			root := filepath.Join(t.TempDir(), "output")
			sink, err := output.NewDirSink(root, nil)
			if err != nil {
				t.Fatal(err)
			}

			summary, err := newSystem().Run(context.Background(), scenarioDocument(t), sink, images.Options{
				Format:  images.PNG(),
				Workers: workers,
			})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			entries, err := os.ReadDir(root)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			var files []string
			for _, e := range entries {
				files = append(files, e.Name())
			}
			if diff := cmp.Diff([]string{"extracted_image_0.png", "extracted_image_1.png"}, files); diff != "" {
				t.Errorf("output files mismatch (-want +got):\n%s", diff)
			}

			for _, name := range files {
				data, err := os.ReadFile(filepath.Join(root, name))
				if err != nil {
					t.Fatal(err)
				}
				if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
					t.Errorf("%s is not a PNG: %v", name, err)
				}
			}

			if summary.Pages != 2 || summary.Discovered != 3 || summary.Written != 2 || summary.Skipped() != 1 {
				t.Errorf("summary = %+v", summary)
			}
			if len(summary.Failures) != 1 {
				t.Fatalf("failures = %v, want 1", summary.Failures)
			}

			f := summary.Failures[0]
			if f.Index != 2 || f.Ref.Page != 2 || f.Ref.Resource != 1 {
				t.Errorf("failure at index %d page %d resource %d, want 2/2/1", f.Index, f.Ref.Page, f.Ref.Resource)
			}
			if !errors.Is(f.Err, images.ErrUnsupportedConversion) {
				t.Errorf("failure error = %v, want ErrUnsupportedConversion", f.Err)
			}
		})
	}
}

func TestRun_EmptyDocument(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")
	sink, err := output.NewDirSink(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	summary, err := newSystem().Run(context.Background(), document.NewArena(), sink, images.Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Discovered != 0 || summary.Written != 0 {
		t.Errorf("summary = %+v, want nothing discovered", summary)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("output root not created: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("output has %d files, want 0", len(entries))
	}
}

func TestRun_JPXConversion(t *testing.T) {
	jpx := []byte{0x00, 0x00, 0x00, 0x0c, 0x6a, 0x50, 0x20, 0x20, 0x0d, 0x0a}

	a := document.NewArena()
	a.AddPage(a.AddImage("Im0", encodedObject("JPXDecode", 4, 4, 3, jpx)))

	quality85, err := images.JPEG(images.DefaultJPEGQuality).WithQuality(85)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("jpeg target fails", func(t *testing.T) {
		sink := output.NewMemorySink()
		summary, err := newSystem().Run(context.Background(), a, sink, images.Options{Format: quality85})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if summary.Written != 0 || len(summary.Failures) != 1 {
			t.Fatalf("summary = %+v, want one failure", summary)
		}
		if !errors.Is(summary.Failures[0].Err, images.ErrUnsupportedConversion) {
			t.Errorf("failure = %v, want ErrUnsupportedConversion", summary.Failures[0].Err)
		}
	})

	t.Run("jp2k target passes through", func(t *testing.T) {
		sink := output.NewMemorySink()
		summary, err := newSystem().Run(context.Background(), a, sink, images.Options{Format: images.JP2K()})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if summary.Written != 1 {
			t.Fatalf("summary = %+v, want one image written", summary)
		}

		img, ok := sink.Get(0)
		if !ok {
			t.Fatal("image 0 not emitted")
		}
		if img.Name != "extracted_image_0.jp2k" {
			t.Errorf("name = %q", img.Name)
		}
		if !bytes.Equal(img.Data, jpx) {
			t.Error("output is not byte-identical to the embedded stream")
		}
	})
}

func TestRun_IndicesFollowDiscoveryOrder(t *testing.T) {
	a := document.NewArena()
	var want []string
	for p := range 3 {
		var entries []document.XObject
		for i := range 4 {
			size := 8 + p*4 + i
			entries = append(entries, a.AddImage("Im", rawObject(size, size, 1, 8, make([]byte, size*size))))
		}
		a.AddPage(entries...)
	}
	for i := range 12 {
		want = append(want, fmt.Sprintf("extracted_image_%d.jpeg", i))
	}

	sink := output.NewMemorySink()
	summary, err := newSystem().Run(context.Background(), a, sink, images.Options{Workers: 8})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Written != 12 {
		t.Fatalf("written = %d, want 12", summary.Written)
	}

	var got []string
	for i, img := range sink.Images() {
		got = append(got, img.Name)

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(img.Data))
		if err != nil {
			t.Fatalf("image %d: %v", i, err)
		}
		if wantSize := 8 + i; cfg.Width != wantSize || cfg.Height != wantSize {
			t.Errorf("image %d is %dx%d, want %dx%d", i, cfg.Width, cfg.Height, wantSize, wantSize)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FailedExtractionConsumesIndex(t *testing.T) {
	a := document.NewArena()
	a.AddPage(
		a.AddImage("Im0", rawObject(4, 4, 1, 8, make([]byte, 15))),
		a.AddImage("Im1", rawObject(4, 4, 1, 8, make([]byte, 16))),
	)
	a.AddBrokenPage(errors.New("missing resources"))

	sink := output.NewMemorySink()
	summary, err := newSystem().Run(context.Background(), a, sink, images.Options{Format: images.PNG()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, ok := sink.Get(1); !ok {
		t.Error("second image not written at index 1")
	}
	if summary.PagesSkipped != 1 {
		t.Errorf("PagesSkipped = %d, want 1", summary.PagesSkipped)
	}
	if len(summary.Failures) != 1 || !errors.Is(summary.Failures[0].Err, images.ErrTruncatedSampleData) {
		t.Errorf("failures = %v, want one truncated image", summary.Failures)
	}
}

func TestRun_OversizedDictionarySkipped(t *testing.T) {
	a := document.NewArena()
	a.AddPage(
		a.AddImage("Im0", rawObject(1<<32, 1<<32, 3, 8, []byte{})),
		a.AddImage("Im1", rawObject(2, 2, 1, 8, []byte{0x00, 0x40, 0x80, 0xff})),
	)

	sink := output.NewMemorySink()
	summary, err := newSystem().Run(context.Background(), a, sink, images.Options{Format: images.PNG(), Workers: 1})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Written != 1 {
		t.Errorf("Written = %d, want 1", summary.Written)
	}
	if _, ok := sink.Get(1); !ok {
		t.Error("valid image not written at index 1")
	}
	if len(summary.Failures) != 1 || !errors.Is(summary.Failures[0].Err, images.ErrMalformedDict) {
		t.Errorf("failures = %v, want one malformed dictionary", summary.Failures)
	}
}

func TestRun_SetupErrors(t *testing.T) {
	a := scenarioDocument(t)

	t.Run("output root", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0644); err != nil {
			t.Fatal(err)
		}
		sink, err := output.NewDirSink(filepath.Join(file, "out"), nil)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := newSystem().Run(context.Background(), a, sink, images.Options{}); !errors.Is(err, images.ErrOutputRoot) {
			t.Errorf("Run() error = %v, want ErrOutputRoot", err)
		}
	})

	t.Run("page range", func(t *testing.T) {
		_, err := newSystem().Run(context.Background(), a, output.NewMemorySink(), images.Options{Pages: "3"})
		if !errors.Is(err, images.ErrPageOutOfRange) {
			t.Errorf("Run() error = %v, want ErrPageOutOfRange", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		summary, err := newSystem().Run(ctx, a, output.NewMemorySink(), images.Options{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
		if summary == nil || summary.Written != 0 {
			t.Errorf("summary = %+v, want nothing written", summary)
		}
	})
}

func TestFirst(t *testing.T) {
	t.Run("returns the first convertible image", func(t *testing.T) {
		a := document.NewArena()
		a.AddPage(
			a.AddImage("Im0", encodedObject("JBIG2Decode", 4, 4, 1, []byte{1})),
			a.AddImage("Im1", rawObject(3, 2, 3, 8, rgbSamples(3, 2))),
		)

		result, err := newSystem().First(context.Background(), a, images.Options{Format: images.PNG()})
		if err != nil {
			t.Fatalf("First() error = %v", err)
		}
		if result.Index != 1 || result.Ext != "png" || result.ContentType() != "image/png" {
			t.Errorf("result = index %d ext %q", result.Index, result.Ext)
		}
	})

	t.Run("no images", func(t *testing.T) {
		a := document.NewArena()
		a.AddPage()

		if _, err := newSystem().First(context.Background(), a, images.Options{}); !errors.Is(err, images.ErrNoImages) {
			t.Errorf("First() error = %v, want ErrNoImages", err)
		}
	})

	t.Run("only failures", func(t *testing.T) {
		a := document.NewArena()
		a.AddPage(a.AddImage("Im0", encodedObject("JPXDecode", 4, 4, 3, []byte{1})))

		if _, err := newSystem().First(context.Background(), a, images.Options{}); !errors.Is(err, images.ErrUnsupportedConversion) {
			t.Errorf("First() error = %v, want ErrUnsupportedConversion", err)
		}
	})
}
