package armodel

import (
	"github.com/openarkit/armodel/arxml"
	"github.com/openarkit/armodel/debug"
)

// ArPackage is a view of an AR-PACKAGE element. Packages form the namespace
// tree in which all named model elements live.
type ArPackage struct {
	e *arxml.Element
}

func ArPackageFromElement(e *arxml.Element) (ArPackage, error) {
	if err := CheckElement(e, "AR-PACKAGE", "ArPackage"); err != nil {
		return ArPackage{}, err
	}
	return ArPackage{e: e}, nil
}

func (p ArPackage) Element() *arxml.Element {
	return p.e
}

func (p ArPackage) Name() string {
	return p.e.ItemName()
}

func (p ArPackage) Path() string {
	return p.e.Path()
}

// ElementsContainer returns the ELEMENTS grouping element of the package,
// creating it if needed. Domain packages create their named elements here.
func (p ArPackage) ElementsContainer() *arxml.Element {
	return p.e.GetOrCreateSubElement("ELEMENTS")
}

// CreateNamedElement creates a named element of the given kind in the
// package. Name uniqueness is checked before anything is created; a
// rejected name must not leave a fresh empty ELEMENTS grouping behind.
func (p ArPackage) CreateNamedElement(elementName, itemName string) (*arxml.Element, error) {
	container := p.e.GetSubElement("ELEMENTS")
	created := container == nil
	if created {
		container = p.e.CreateSubElement("ELEMENTS")
	}
	e, err := container.CreateNamedSubElement(elementName, itemName)
	if err != nil {
		if created {
			p.e.RemoveSubElement(container)
		}
		return nil, WrapEngineErr(err)
	}
	if debug.Create() {
		debug.Logf("create", "%s %s", elementName, e.Path())
	}
	return e, nil
}
