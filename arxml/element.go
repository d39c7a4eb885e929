package arxml

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Attribute is a named attribute value on an element.
type Attribute struct {
	Name  string
	Value string
}

// Element is one node of the document tree. Elements are always attached:
// they are created under a parent and hold a link back to their model.
type Element struct {
	name     string
	parent   *Element
	model    *Model
	children []*Element
	attrs    []Attribute
	cdata    string
}

// ElementName returns the schema name of the element, e.g. "AR-PACKAGE".
func (e *Element) ElementName() string {
	return e.name
}

func (e *Element) Parent() *Element {
	return e.parent
}

func (e *Element) Model() *Model {
	return e.model
}

// CreateSubElement appends a new unnamed child element.
func (e *Element) CreateSubElement(name string) *Element {
	sub := &Element{name: name, parent: e, model: e.model}
	e.children = append(e.children, sub)
	return sub
}

// CreateNamedSubElement appends a new child element with the given
// SHORT-NAME. It fails if the name is already taken in the enclosing naming
// scope; no element is created in that case. Named elements are
// identifiable and receive a UUID attribute.
func (e *Element) CreateNamedSubElement(name, itemName string) (*Element, error) {
	if itemName == "" {
		return nil, fmt.Errorf("%w: empty item name", ErrInvalidPath)
	}
	scope := e.scopePath()
	if _, err := e.model.ElementByPath(scope + "/" + itemName); err == nil {
		return nil, fmt.Errorf("%w: %q in %q", ErrItemNameConflict, itemName, scope)
	}
	sub := e.CreateSubElement(name)
	sn := sub.CreateSubElement("SHORT-NAME")
	sn.cdata = itemName
	sub.SetAttribute("UUID", uuid.NewString())
	return sub, nil
}

// GetSubElement returns the first child with the given element name, or nil.
func (e *Element) GetSubElement(name string) *Element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// GetOrCreateSubElement returns the first child with the given element name,
// creating it if it does not exist.
func (e *Element) GetOrCreateSubElement(name string) *Element {
	if c := e.GetSubElement(name); c != nil {
		return c
	}
	return e.CreateSubElement(name)
}

// GetOrCreateNamedSubElement returns the named child with the given element
// name and SHORT-NAME, creating it if it does not exist.
func (e *Element) GetOrCreateNamedSubElement(name, itemName string) (*Element, error) {
	for _, c := range e.children {
		if c.name == name && c.ItemName() == itemName {
			return c, nil
		}
	}
	return e.CreateNamedSubElement(name, itemName)
}

// NamedSubElement returns the child with the given SHORT-NAME regardless of
// its element name, or nil.
func (e *Element) NamedSubElement(itemName string) *Element {
	for _, c := range e.children {
		if c.ItemName() == itemName {
			return c
		}
	}
	return nil
}

// SubElements returns the children in document order. The returned slice is
// a copy; mutating it does not affect the tree.
func (e *Element) SubElements() []*Element {
	return slices.Clone(e.children)
}

// RemoveSubElement detaches the given child from the element.
func (e *Element) RemoveSubElement(sub *Element) {
	for i, c := range e.children {
		if c == sub {
			e.children = slices.Delete(e.children, i, i+1)
			sub.parent = nil
			return
		}
	}
}

// RemoveSubElementKind detaches the first child with the given element name,
// if present.
func (e *Element) RemoveSubElementKind(name string) {
	if c := e.GetSubElement(name); c != nil {
		e.RemoveSubElement(c)
	}
}

// ItemName returns the SHORT-NAME of the element, or "" if the element is
// not identifiable.
func (e *Element) ItemName() string {
	if sn := e.GetSubElement("SHORT-NAME"); sn != nil {
		return sn.cdata
	}
	return ""
}

// SetItemName renames the element. It fails on a SHORT-NAME conflict within
// the naming scope.
func (e *Element) SetItemName(itemName string) error {
	sn := e.GetSubElement("SHORT-NAME")
	if sn == nil || e.parent == nil {
		return fmt.Errorf("%w: element is not identifiable", ErrInvalidPath)
	}
	if sn.cdata == itemName {
		return nil
	}
	scope := e.parent.scopePath()
	if _, err := e.model.ElementByPath(scope + "/" + itemName); err == nil {
		return fmt.Errorf("%w: %q in %q", ErrItemNameConflict, itemName, scope)
	}
	sn.cdata = itemName
	return nil
}

// CharacterData returns the text content of the element.
func (e *Element) CharacterData() string {
	return e.cdata
}

func (e *Element) SetCharacterData(v string) {
	e.cdata = v
}

// CharacterDataUint parses the text content as an unsigned integer.
func (e *Element) CharacterDataUint() (uint64, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(e.cdata), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CharacterDataInt parses the text content as a signed integer.
func (e *Element) CharacterDataInt() (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(e.cdata), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CharacterDataFloat parses the text content as a float.
func (e *Element) CharacterDataFloat() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(e.cdata), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (e *Element) Attribute(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *Element) SetAttribute(name, value string) {
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attribute{Name: name, Value: value})
}

func (e *Element) Attributes() []Attribute {
	return slices.Clone(e.attrs)
}

// NamedParent returns the nearest identifiable ancestor, skipping unnamed
// grouping elements, or nil at the document root.
func (e *Element) NamedParent() *Element {
	p := e.parent
	for p != nil && p.parent != nil {
		if p.ItemName() != "" {
			return p
		}
		p = p.parent
	}
	return nil
}

// Path returns the absolute slash-separated path of the element, built from
// the SHORT-NAMEs of the element and its identifiable ancestors. Unnamed
// elements report the path of their nearest identifiable ancestor.
func (e *Element) Path() string {
	return e.scopePath()
}

func (e *Element) scopePath() string {
	var parts []string
	for x := e; x != nil && x.parent != nil; x = x.parent {
		if n := x.ItemName(); n != "" {
			parts = append(parts, n)
		}
	}
	slices.Reverse(parts)
	if len(parts) == 0 {
		return ""
	}
	return "/" + strings.Join(parts, "/")
}

// SetReferenceTarget stores a reference to the target element: the target's
// path becomes the character data and the DEST attribute records the
// target's element name. The target must be identifiable.
func (e *Element) SetReferenceTarget(target *Element) error {
	path := target.Path()
	if path == "" {
		return fmt.Errorf("%w: reference target has no path", ErrInvalidReference)
	}
	e.cdata = path
	e.SetAttribute("DEST", target.name)
	return nil
}

// ReferenceTarget resolves the stored reference against the live tree. The
// reference may have been written before the target existed, or the target
// may have been removed since; resolution happens only here.
func (e *Element) ReferenceTarget() (*Element, error) {
	path := strings.TrimSpace(e.cdata)
	if path == "" || path[0] != '/' {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReference, e.cdata)
	}
	return e.model.ElementByPath(path)
}
