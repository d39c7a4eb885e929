package swcomponent

import (
	"fmt"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// PortPrototype is implemented by provide and require ports.
type PortPrototype interface {
	armodel.Wrapper
	Name() string
	// Interface resolves the port interface the port is bound to.
	Interface() (PortInterface, error)
}

// PortPrototypeFromElement converts an element into the matching port view.
func PortPrototypeFromElement(e *arxml.Element) (PortPrototype, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: no element to convert to PortPrototype", armodel.ErrNotFound)
	}
	switch e.ElementName() {
	case "P-PORT-PROTOTYPE":
		return PPortPrototypeFromElement(e)
	case "R-PORT-PROTOTYPE":
		return RPortPrototypeFromElement(e)
	default:
		return nil, fmt.Errorf("%w: cannot convert %s to PortPrototype",
			armodel.ErrTypeMismatch, e.ElementName())
	}
}

func portInterfaceOf(e *arxml.Element, refName string) (PortInterface, error) {
	ref := e.GetSubElement(refName)
	if ref == nil {
		return nil, fmt.Errorf("%w: port %s has no interface reference",
			armodel.ErrInvalidReference, e.ItemName())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return nil, armodel.WrapEngineErr(err)
	}
	return PortInterfaceFromElement(target)
}

// PPortPrototype is a provide port of a component type.
type PPortPrototype struct {
	e *arxml.Element
}

func PPortPrototypeFromElement(e *arxml.Element) (PPortPrototype, error) {
	if err := armodel.CheckElement(e, "P-PORT-PROTOTYPE", "PPortPrototype"); err != nil {
		return PPortPrototype{}, err
	}
	return PPortPrototype{e: e}, nil
}

func (p PPortPrototype) Element() *arxml.Element {
	return p.e
}

func (p PPortPrototype) Name() string {
	return p.e.ItemName()
}

// Interface resolves the provided interface of the port.
func (p PPortPrototype) Interface() (PortInterface, error) {
	return portInterfaceOf(p.e, "PROVIDED-INTERFACE-TREF")
}

// ComponentType returns the component type owning the port.
func (p PPortPrototype) ComponentType() (SwComponentType, error) {
	return SwComponentTypeFromElement(p.e.NamedParent())
}

// RPortPrototype is a require port of a component type.
type RPortPrototype struct {
	e *arxml.Element
}

func RPortPrototypeFromElement(e *arxml.Element) (RPortPrototype, error) {
	if err := armodel.CheckElement(e, "R-PORT-PROTOTYPE", "RPortPrototype"); err != nil {
		return RPortPrototype{}, err
	}
	return RPortPrototype{e: e}, nil
}

func (p RPortPrototype) Element() *arxml.Element {
	return p.e
}

func (p RPortPrototype) Name() string {
	return p.e.ItemName()
}

// Interface resolves the required interface of the port.
func (p RPortPrototype) Interface() (PortInterface, error) {
	return portInterfaceOf(p.e, "REQUIRED-INTERFACE-TREF")
}

// ComponentType returns the component type owning the port.
func (p RPortPrototype) ComponentType() (SwComponentType, error) {
	return SwComponentTypeFromElement(p.e.NamedParent())
}
