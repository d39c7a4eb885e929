// Package armodel is a typed, version-aware view layer over a generic
// AUTOSAR document tree. Every view type wraps exactly one element of the
// underlying tree and re-reads it on each access; nothing is cached. The
// layer can therefore be mixed freely with direct edits through the arxml
// package: content the view types do not model stays present and untouched.
package armodel

import (
	"fmt"

	"github.com/openarkit/armodel/arxml"
)

// Wrapper is the contract shared by every typed view: it exposes exactly
// one underlying element and nothing else. Two wrappers of the same type
// are equal iff their elements are identical.
type Wrapper interface {
	Element() *arxml.Element
}

// Name returns the item name of a wrapped element.
func Name(w Wrapper) string {
	return w.Element().ItemName()
}

// CheckElement verifies that an element has the expected kind before it is
// wrapped. It is the shared implementation of every FromElement
// constructor.
func CheckElement(e *arxml.Element, elementName, dest string) error {
	if e == nil {
		return fmt.Errorf("%w: no element to convert to %s", ErrNotFound, dest)
	}
	if e.ElementName() != elementName {
		return fmt.Errorf("%w: cannot convert %s to %s", ErrTypeMismatch, e.ElementName(), dest)
	}
	return nil
}
