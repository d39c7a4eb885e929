package armodel

import (
	"fmt"

	"github.com/openarkit/armodel/arxml"
	"github.com/openarkit/armodel/debug"
)

// Resolve looks up the element at an absolute path and converts it with the
// given view constructor. A missing element fails with ErrNotFound, an
// element of the wrong kind fails with the constructor's ErrTypeMismatch.
// Resolution always walks the live tree; nothing is remembered between
// calls.
func Resolve[T Wrapper](m *Model, path string, from func(*arxml.Element) (T, error)) (T, error) {
	var zero T
	e, err := m.ElementByPath(path)
	if err != nil {
		if debug.Resolve() {
			debug.Logf("resolve", "%s: %v", path, err)
		}
		return zero, err
	}
	return from(e)
}

// RefPaths collects, in document order, the character data of all elements
// named refName in the subtree below list. Each entry is the stored path of
// one reference.
func RefPaths(list *arxml.Element, refName string) []string {
	if list == nil {
		return nil
	}
	var paths []string
	var walk func(e *arxml.Element)
	walk = func(e *arxml.Element) {
		for _, c := range e.SubElements() {
			if c.ElementName() == refName {
				paths = append(paths, c.CharacterData())
				continue
			}
			walk(c)
		}
	}
	walk(list)
	return paths
}

// ContainsRef reports whether the reference list already holds an entry
// with the exact given path.
func ContainsRef(list *arxml.Element, refName, path string) bool {
	for _, p := range RefPaths(list, refName) {
		if p == path {
			return true
		}
	}
	return false
}

// AddReference appends a reference to target at the end of the list,
// preserving insertion order. An entry with the exact same target path is
// rejected; the list is unchanged in that case.
func AddReference(list *arxml.Element, refName string, target *arxml.Element) error {
	path := target.Path()
	if path == "" {
		return fmt.Errorf("%w: reference target has no path", ErrInvalidReference)
	}
	if ContainsRef(list, refName, path) {
		return fmt.Errorf("%w: reference to %s already present", ErrDuplicateName, path)
	}
	ref := list.CreateSubElement(refName)
	if err := ref.SetReferenceTarget(target); err != nil {
		list.RemoveSubElement(ref)
		return WrapEngineErr(err)
	}
	if debug.Resolve() {
		debug.Logf("resolve", "connected %s -> %s", list.Path(), path)
	}
	return nil
}

// ResolveRefs resolves every reference in the list that still points at a
// live element and converts the targets with the given view constructor.
// Entries that no longer resolve, or that resolve to an element of the
// wrong kind, are skipped: the layer does not track or repair stale
// references.
func ResolveRefs[T Wrapper](m *Model, list *arxml.Element, refName string, from func(*arxml.Element) (T, error)) []T {
	var res []T
	for _, path := range RefPaths(list, refName) {
		e, err := m.ElementByPath(path)
		if err != nil {
			continue
		}
		w, err := from(e)
		if err != nil {
			continue
		}
		res = append(res, w)
	}
	return res
}
