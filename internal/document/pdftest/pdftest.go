// Package pdftest builds small PDF documents for tests.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"slices"
	"strings"
)

// Image is an image XObject placed in a page's resources.
type Image struct {
	Name             string
	Width            int
	Height           int
	ColorSpace       string
	BitsPerComponent int
	// Filter is written verbatim, for example "DCTDecode" or "[/FlateDecode /DCTDecode]".
	// Empty writes no filter.
	Filter    string
	ImageMask bool
	Data      []byte
}

// Form adds a form XObject with the given resource name to a page.
type Form struct {
	Name string
}

// Page lists the XObjects of one page.
type Page struct {
	Images []Image
	Forms  []Form
}

// Flate compresses data with zlib for use with a FlateDecode filter.
func Flate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// Build returns a complete PDF file holding the given pages.
func Build(pages ...Page) []byte {
	b := &builder{}

	catalog := b.reserve()
	root := b.reserve()

	var kids []string
	for _, page := range pages {
		pageNum := b.reserve()
		kids = append(kids, ref(pageNum))

		var entries []string
		for _, img := range page.Images {
			entries = append(entries, fmt.Sprintf("/%s %s", img.Name, ref(b.image(img))))
		}
		for _, form := range page.Forms {
			entries = append(entries, fmt.Sprintf("/%s %s", form.Name, ref(b.form())))
		}

		contents := b.stream("", nil)
		b.set(pageNum, fmt.Sprintf(
			"<< /Type /Page /Parent %s /MediaBox [0 0 100 100] /Resources << /XObject << %s >> >> /Contents %s >>",
			ref(root), strings.Join(entries, " "), ref(contents),
		))
	}

	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %s >>", ref(root)))
	b.set(root, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))

	return b.bytes(catalog)
}

type builder struct {
	objects [][]byte
}

func ref(n int) string {
	return fmt.Sprintf("%d 0 R", n)
}

func (b *builder) reserve() int {
	b.objects = append(b.objects, nil)
	return len(b.objects)
}

func (b *builder) set(n int, body string) {
	b.objects[n-1] = []byte(body)
}

func (b *builder) stream(dict string, data []byte) int {
	n := b.reserve()
	var body bytes.Buffer
	fmt.Fprintf(&body, "<< %s /Length %d >>\nstream\n", dict, len(data))
	body.Write(data)
	body.WriteString("\nendstream")
	b.objects[n-1] = body.Bytes()
	return n
}

func (b *builder) image(img Image) int {
	parts := []string{
		"/Type /XObject /Subtype /Image",
		fmt.Sprintf("/Width %d /Height %d", img.Width, img.Height),
	}
	if img.ImageMask {
		parts = append(parts, "/ImageMask true")
	} else {
		cs := img.ColorSpace
		if cs == "" {
			cs = "DeviceGray"
		}
		bpc := img.BitsPerComponent
		if bpc == 0 {
			bpc = 8
		}
		parts = append(parts, fmt.Sprintf("/ColorSpace /%s /BitsPerComponent %d", cs, bpc))
	}
	if img.Filter != "" {
		filter := img.Filter
		if !strings.HasPrefix(filter, "[") {
			filter = "/" + filter
		}
		parts = append(parts, "/Filter "+filter)
	}
	return b.stream(strings.Join(parts, " "), img.Data)
}

func (b *builder) form() int {
	return b.stream("/Type /XObject /Subtype /Form /BBox [0 0 10 10]", nil)
}

func (b *builder) bytes(root int) []byte {
	var out bytes.Buffer
	out.WriteString("%PDF-1.7\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n", i+1)
		out.Write(body)
		out.WriteString("\nendobj\n")
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(b.objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root %s >>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, ref(root), xref)

	return slices.Clip(out.Bytes())
}
