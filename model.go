package armodel

import (
	"fmt"
	"strings"

	"github.com/openarkit/armodel/arxml"
)

// Model is the entry point of the view layer for one document.
type Model struct {
	m *arxml.Model
}

// NewModel creates an empty document targeting the given schema version and
// returns its view-layer entry point.
func NewModel(version arxml.Version) *Model {
	return &Model{m: arxml.NewModel(version)}
}

// FromEngine wraps an existing document. The view layer and direct engine
// access may be mixed freely on the same document.
func FromEngine(m *arxml.Model) *Model {
	return &Model{m: m}
}

// Engine returns the underlying document model.
func (m *Model) Engine() *arxml.Model {
	return m.m
}

// ModelOf returns the view-layer entry point of the document containing e.
func ModelOf(e *arxml.Element) *Model {
	return FromEngine(e.Model())
}

// RootElement returns the document root element.
func (m *Model) RootElement() *arxml.Element {
	return m.m.RootElement()
}

func (m *Model) Version() arxml.Version {
	return m.m.Version()
}

// ElementByPath resolves an absolute path against the live tree.
func (m *Model) ElementByPath(path string) (*arxml.Element, error) {
	e, err := m.m.ElementByPath(path)
	if err != nil {
		return nil, WrapEngineErr(err)
	}
	return e, nil
}

// GetOrCreatePackage returns the package at the given absolute path,
// creating every missing segment on the way. Repeated calls with the same
// path return views of the same element. It fails with ErrInvalidValue if a
// segment exists but is not a package; nothing is created in that case.
func (m *Model) GetOrCreatePackage(path string) (ArPackage, error) {
	if path == "" || path[0] != '/' || strings.HasSuffix(path, "/") {
		return ArPackage{}, fmt.Errorf("%w: not a package path: %q", ErrInvalidValue, path)
	}
	segs := strings.Split(path[1:], "/")
	cur := m.m.RootElement()
	prefix := ""
	for _, seg := range segs {
		if seg == "" {
			return ArPackage{}, fmt.Errorf("%w: not a package path: %q", ErrInvalidValue, path)
		}
		prefix += "/" + seg
		if existing, err := m.m.ElementByPath(prefix); err == nil {
			if existing.ElementName() != "AR-PACKAGE" {
				return ArPackage{}, fmt.Errorf("%w: %s exists and is not a package", ErrInvalidValue, prefix)
			}
			cur = existing
			continue
		}
		pkgs := cur.GetOrCreateSubElement("AR-PACKAGES")
		pkg, err := pkgs.CreateNamedSubElement("AR-PACKAGE", seg)
		if err != nil {
			return ArPackage{}, WrapEngineErr(err)
		}
		cur = pkg
	}
	return ArPackageFromElement(cur)
}
