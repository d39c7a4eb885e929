package arxml

import (
	"fmt"
	"strings"
)

// Model owns one document tree and its schema version. The root element is
// the AUTOSAR element; packages and all further content hang below it.
type Model struct {
	root    *Element
	version Version
}

func NewModel(version Version) *Model {
	m := &Model{version: version}
	m.root = &Element{name: "AUTOSAR"}
	m.root.model = m
	return m
}

// RootElement returns the document root.
func (m *Model) RootElement() *Element {
	return m.root
}

func (m *Model) Version() Version {
	return m.version
}

// ElementByPath resolves an absolute slash-separated SHORT-NAME path by
// walking the live tree. There is no cache: the result always reflects the
// current document content.
func (m *Model) ElementByPath(path string) (*Element, error) {
	if path == "" || path[0] != '/' {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	cur := m.root
	for _, seg := range strings.Split(path[1:], "/") {
		if seg == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
		next := findNamed(cur, seg)
		if next == nil {
			return nil, fmt.Errorf("%w: %q", ErrElementNotFound, path)
		}
		cur = next
	}
	return cur, nil
}

// findNamed locates the identifiable element with the given SHORT-NAME in
// the naming scope of e: named children, and named elements reachable
// through unnamed grouping children.
func findNamed(e *Element, itemName string) *Element {
	for _, c := range e.children {
		if n := c.ItemName(); n != "" {
			if n == itemName {
				return c
			}
			continue
		}
		if found := findNamed(c, itemName); found != nil {
			return found
		}
	}
	return nil
}
