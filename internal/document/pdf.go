package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// transportFilters are general-purpose stream encodings that are removed before
// an image payload is handed out.
var transportFilters = map[string]bool{
	filter.Flate:     true,
	filter.LZW:       true,
	filter.ASCII85:   true,
	filter.ASCIIHex:  true,
	filter.RunLength: true,
}

var disableConfigDir sync.Once

type pdf struct {
	ctx    *model.Context
	closer io.Closer
}

// Open reads the PDF file at path. The file stays open until Close.
func Open(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	doc, err := read(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	doc.closer = f

	return doc, nil
}

// Read reads a PDF document from rs. The caller keeps ownership of rs.
func Read(rs io.ReadSeeker) (Document, error) {
	return read(rs)
}

func read(rs io.ReadSeeker) (*pdf, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	ctx, err := api.ReadContext(rs, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: page count: %v", ErrOpen, err)
	}

	return &pdf{ctx: ctx}, nil
}

func (p *pdf) PageCount() int {
	return p.ctx.PageCount
}

// XObjects lists the page's XObject entries ordered by resource name.
// The underlying dictionary is unordered, so lexical order is the stable
// iteration order for this implementation.
func (p *pdf) XObjects(page int) ([]XObject, error) {
	if page < 1 || page > p.ctx.PageCount {
		return nil, fmt.Errorf("%w: %d", ErrPageNotFound, page)
	}

	pageDict, _, inherited, err := p.ctx.PageDict(page, true)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	if pageDict == nil {
		return nil, fmt.Errorf("%w: %d", ErrPageNotFound, page)
	}

	resources, err := p.resources(pageDict, inherited)
	if err != nil {
		return nil, fmt.Errorf("page %d resources: %w", page, err)
	}
	if resources == nil {
		return nil, nil
	}

	obj, found := resources.Find("XObject")
	if !found {
		return nil, nil
	}

	xobjects, err := p.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, fmt.Errorf("page %d xobjects: %w", page, err)
	}

	names := make([]string, 0, len(xobjects))
	for name := range xobjects {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]XObject, 0, len(names))
	for _, name := range names {
		ir, ok := xobjects[name].(types.IndirectRef)
		if !ok {
			continue
		}

		entry := XObject{Name: name, Ref: refOf(ir)}
		if sd, err := p.ctx.DereferenceXObjectDict(ir); err == nil && sd != nil {
			if subtype := sd.Subtype(); subtype != nil {
				entry.Subtype = *subtype
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (p *pdf) Resolve(ref Ref) (*Object, error) {
	ir := *types.NewIndirectRef(ref.Number, ref.Generation)

	sd, err := p.ctx.DereferenceXObjectDict(ir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, ref, err)
	}
	if sd == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	dict := Dict{}
	if subtype := sd.Subtype(); subtype != nil {
		dict[KeySubtype] = *subtype
	}
	for _, key := range []string{KeyWidth, KeyHeight, KeyBitsPerComponent} {
		if v, ok := p.intEntry(sd.Dict, key); ok {
			dict[key] = v
		}
	}
	if v, ok := p.boolEntry(sd.Dict, KeyImageMask); ok {
		dict[KeyImageMask] = v
	}

	var components int
	if cs, found := sd.Find(KeyColorSpace); found {
		family, n := p.colorSpace(cs)
		if family != "" {
			dict[KeyColorSpace] = family
		}
		components = n
	}

	data, imageFilter, err := decodeTransport(sd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}

	return &Object{
		Ref:        ref,
		Dict:       dict,
		Components: components,
		Filter:     imageFilter,
		Data:       data,
	}, nil
}

func (p *pdf) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

func (p *pdf) resources(pageDict types.Dict, inherited *model.InheritedPageAttrs) (types.Dict, error) {
	if obj, found := pageDict.Find("Resources"); found {
		return p.ctx.DereferenceDict(obj)
	}
	if inherited != nil {
		return inherited.Resources, nil
	}
	return nil, nil
}

func (p *pdf) intEntry(d types.Dict, key string) (int, bool) {
	obj, found := d.Find(key)
	if !found {
		return 0, false
	}

	obj, err := p.ctx.Dereference(obj)
	if err != nil {
		return 0, false
	}

	switch v := obj.(type) {
	case types.Integer:
		return v.Value(), true
	case types.Float:
		return int(v.Value()), true
	}
	return 0, false
}

func (p *pdf) boolEntry(d types.Dict, key string) (bool, bool) {
	obj, found := d.Find(key)
	if !found {
		return false, false
	}

	obj, err := p.ctx.Dereference(obj)
	if err != nil {
		return false, false
	}

	v, ok := obj.(types.Boolean)
	return bool(v), ok
}

// colorSpace returns the colour space family and its component count.
func (p *pdf) colorSpace(obj types.Object) (string, int) {
	obj, err := p.ctx.Dereference(obj)
	if err != nil || obj == nil {
		return "", 0
	}

	switch cs := obj.(type) {
	case types.Name:
		return string(cs), familyComponents(string(cs))
	case types.Array:
		if len(cs) == 0 {
			return "", 0
		}
		name, ok := cs[0].(types.Name)
		if !ok {
			return "", 0
		}
		family := string(name)

		switch family {
		case "ICCBased":
			if len(cs) > 1 {
				sd, _, err := p.ctx.DereferenceStreamDict(cs[1])
				if err == nil && sd != nil {
					if n := sd.IntEntry("N"); n != nil {
						return family, *n
					}
				}
			}
			return family, 0
		case "Indexed", "Separation":
			return family, 1
		case "DeviceN":
			if len(cs) > 1 {
				if names, err := p.ctx.DereferenceArray(cs[1]); err == nil {
					return family, len(names)
				}
			}
			return family, 0
		default:
			return family, familyComponents(family)
		}
	}

	return "", 0
}

func familyComponents(family string) int {
	switch family {
	case "DeviceGray", "G", "CalGray":
		return 1
	case "DeviceRGB", "RGB", "CalRGB", "Lab":
		return 3
	case "DeviceCMYK", "CMYK":
		return 4
	default:
		return 0
	}
}

// decodeTransport applies the leading transport filters of the pipeline and
// returns the remaining payload with the image-level filter, if any.
func decodeTransport(sd *types.StreamDict) ([]byte, string, error) {
	data := sd.Raw
	pipeline := sd.FilterPipeline

	i := 0
	for ; i < len(pipeline) && transportFilters[pipeline[i].Name]; i++ {
		f, err := filter.NewFilter(pipeline[i].Name, decodeParms(pipeline[i].DecodeParms))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: %v", ErrDecode, pipeline[i].Name, err)
		}

		r, err := f.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: %v", ErrDecode, pipeline[i].Name, err)
		}

		if data, err = io.ReadAll(r); err != nil {
			return nil, "", fmt.Errorf("%w: %s: %v", ErrDecode, pipeline[i].Name, err)
		}
	}

	switch remaining := len(pipeline) - i; {
	case remaining == 0:
		return data, "", nil
	case remaining == 1:
		return data, pipeline[i].Name, nil
	default:
		return nil, "", fmt.Errorf("%w: filter %s followed by %s", ErrDecode, pipeline[i].Name, pipeline[i+1].Name)
	}
}

func decodeParms(d types.Dict) map[string]int {
	if d == nil {
		return nil
	}

	parms := make(map[string]int, len(d))
	for key, obj := range d {
		switch v := obj.(type) {
		case types.Integer:
			parms[key] = v.Value()
		case types.Boolean:
			if v {
				parms[key] = 1
			} else {
				parms[key] = 0
			}
		}
	}
	return parms
}

func refOf(ir types.IndirectRef) Ref {
	return Ref{
		Number:     ir.ObjectNumber.Value(),
		Generation: ir.GenerationNumber.Value(),
	}
}
