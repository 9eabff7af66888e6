package document

import "fmt"

// Arena is an in-memory Document. Objects live in a single slice owned by the
// arena and a Ref is an index into it (object numbers start at 1).
type Arena struct {
	objects []Object
	pages   []arenaPage
}

type arenaPage struct {
	entries []XObject
	err     error
}

// NewArena creates an empty in-memory document.
func NewArena() *Arena {
	return &Arena{}
}

// Add stores obj and returns the reference assigned to it.
func (a *Arena) Add(obj Object) Ref {
	ref := Ref{Number: len(a.objects) + 1}
	obj.Ref = ref
	a.objects = append(a.objects, obj)
	return ref
}

// AddImage stores an image object and returns the resource entry pointing to it.
func (a *Arena) AddImage(name string, obj Object) XObject {
	if obj.Dict == nil {
		obj.Dict = Dict{}
	}
	obj.Dict[KeySubtype] = SubtypeImage
	return XObject{Name: name, Ref: a.Add(obj), Subtype: SubtypeImage}
}

// AddPage appends a page holding the given XObject entries and returns its number.
func (a *Arena) AddPage(entries ...XObject) int {
	a.pages = append(a.pages, arenaPage{entries: entries})
	return len(a.pages)
}

// AddBrokenPage appends a page whose resources fail to resolve with err.
func (a *Arena) AddBrokenPage(err error) int {
	a.pages = append(a.pages, arenaPage{err: err})
	return len(a.pages)
}

func (a *Arena) PageCount() int {
	return len(a.pages)
}

func (a *Arena) XObjects(page int) ([]XObject, error) {
	if page < 1 || page > len(a.pages) {
		return nil, fmt.Errorf("%w: %d", ErrPageNotFound, page)
	}

	p := a.pages[page-1]
	if p.err != nil {
		return nil, p.err
	}

	entries := make([]XObject, len(p.entries))
	copy(entries, p.entries)
	return entries, nil
}

func (a *Arena) Resolve(ref Ref) (*Object, error) {
	if ref.Number < 1 || ref.Number > len(a.objects) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	obj := a.objects[ref.Number-1]
	if obj.Ref.Generation != ref.Generation {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return &obj, nil
}

func (a *Arena) Close() error {
	return nil
}
