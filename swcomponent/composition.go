package swcomponent

import (
	"fmt"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// CompositionSwComponentType groups component prototypes and the connectors
// wiring their ports together.
type CompositionSwComponentType struct {
	swComponentType
}

func NewCompositionSwComponentType(pkg armodel.ArPackage, name string) (CompositionSwComponentType, error) {
	e, err := pkg.CreateNamedElement("COMPOSITION-SW-COMPONENT-TYPE", name)
	if err != nil {
		return CompositionSwComponentType{}, err
	}
	return CompositionSwComponentType{swComponentType{e: e}}, nil
}

func CompositionSwComponentTypeFromElement(e *arxml.Element) (CompositionSwComponentType, error) {
	if err := armodel.CheckElement(e, "COMPOSITION-SW-COMPONENT-TYPE", "CompositionSwComponentType"); err != nil {
		return CompositionSwComponentType{}, err
	}
	return CompositionSwComponentType{swComponentType{e: e}}, nil
}

// CreateComponent instantiates a component type inside the composition.
func (c CompositionSwComponentType) CreateComponent(name string, ctype SwComponentType) (SwComponentPrototype, error) {
	if ctype == nil || ctype.Element() == nil {
		return SwComponentPrototype{}, fmt.Errorf("%w: prototype %s needs a component type",
			armodel.ErrInvalidValue, name)
	}
	if ctype.Element() == c.e {
		return SwComponentPrototype{}, fmt.Errorf("%w: composition %s cannot contain itself",
			armodel.ErrInvalidValue, c.Name())
	}
	comps := c.e.GetOrCreateSubElement("COMPONENTS")
	e, err := comps.CreateNamedSubElement("SW-COMPONENT-PROTOTYPE", name)
	if err != nil {
		return SwComponentPrototype{}, armodel.WrapEngineErr(err)
	}
	if err := e.CreateSubElement("TYPE-TREF").SetReferenceTarget(ctype.Element()); err != nil {
		comps.RemoveSubElement(e)
		return SwComponentPrototype{}, armodel.WrapEngineErr(err)
	}
	return SwComponentPrototype{e: e}, nil
}

// Components lists the component prototypes of the composition.
func (c CompositionSwComponentType) Components() []SwComponentPrototype {
	comps := c.e.GetSubElement("COMPONENTS")
	if comps == nil {
		return nil
	}
	var res []SwComponentPrototype
	for _, p := range comps.SubElements() {
		if v, err := SwComponentPrototypeFromElement(p); err == nil {
			res = append(res, v)
		}
	}
	return res
}

func (c CompositionSwComponentType) checkPrototype(proto SwComponentPrototype) error {
	if proto.e == nil {
		return fmt.Errorf("%w: no component prototype", armodel.ErrInvalidValue)
	}
	if proto.e.NamedParent() != c.e {
		return fmt.Errorf("%w: prototype %s does not belong to composition %s",
			armodel.ErrInvalidValue, proto.Name(), c.Name())
	}
	return nil
}

func portOfPrototype(proto SwComponentPrototype, port PortPrototype) error {
	ctype, err := proto.ComponentType()
	if err != nil {
		return err
	}
	if port.Element().NamedParent() != ctype.Element() {
		return fmt.Errorf("%w: port %s is not a port of %s",
			armodel.ErrInvalidValue, port.Name(), ctype.Name())
	}
	return nil
}

func interfacePath(port PortPrototype, refName string) (string, error) {
	ref := port.Element().GetSubElement(refName)
	if ref == nil {
		return "", fmt.Errorf("%w: port %s has no interface reference",
			armodel.ErrInvalidReference, port.Name())
	}
	return ref.CharacterData(), nil
}

// CreateAssemblyConnector wires a provide port of one prototype to a require
// port of another. Both prototypes must belong to this composition, each
// port must belong to its prototype's component type, and both ports must
// reference the same interface. All rules are checked before anything is
// created.
func (c CompositionSwComponentType) CreateAssemblyConnector(name string, provider SwComponentPrototype, pport PPortPrototype, requester SwComponentPrototype, rport RPortPrototype) (AssemblySwConnector, error) {
	if err := c.checkPrototype(provider); err != nil {
		return AssemblySwConnector{}, err
	}
	if err := c.checkPrototype(requester); err != nil {
		return AssemblySwConnector{}, err
	}
	if err := portOfPrototype(provider, pport); err != nil {
		return AssemblySwConnector{}, err
	}
	if err := portOfPrototype(requester, rport); err != nil {
		return AssemblySwConnector{}, err
	}
	provided, err := interfacePath(pport, "PROVIDED-INTERFACE-TREF")
	if err != nil {
		return AssemblySwConnector{}, err
	}
	required, err := interfacePath(rport, "REQUIRED-INTERFACE-TREF")
	if err != nil {
		return AssemblySwConnector{}, err
	}
	if provided != required {
		return AssemblySwConnector{}, fmt.Errorf("%w: port %s provides %s but port %s requires %s",
			armodel.ErrInvalidValue, pport.Name(), provided, rport.Name(), required)
	}
	created := c.e.GetSubElement("CONNECTORS") == nil
	conns := c.e.GetOrCreateSubElement("CONNECTORS")
	e, err := conns.CreateNamedSubElement("ASSEMBLY-SW-CONNECTOR", name)
	if err != nil {
		if created {
			c.e.RemoveSubElement(conns)
		}
		return AssemblySwConnector{}, armodel.WrapEngineErr(err)
	}
	piref := e.CreateSubElement("PROVIDER-IREF")
	riref := e.CreateSubElement("REQUESTER-IREF")
	for _, ref := range []struct {
		parent *arxml.Element
		name   string
		target *arxml.Element
	}{
		{piref, "CONTEXT-COMPONENT-REF", provider.Element()},
		{piref, "TARGET-P-PORT-REF", pport.Element()},
		{riref, "CONTEXT-COMPONENT-REF", requester.Element()},
		{riref, "TARGET-R-PORT-REF", rport.Element()},
	} {
		if err := ref.parent.CreateSubElement(ref.name).SetReferenceTarget(ref.target); err != nil {
			conns.RemoveSubElement(e)
			if created {
				c.e.RemoveSubElement(conns)
			}
			return AssemblySwConnector{}, armodel.WrapEngineErr(err)
		}
	}
	return AssemblySwConnector{e: e}, nil
}

// CreateDelegationConnector exposes a port of an inner prototype through a
// port of the composition itself. The inner prototype must belong to this
// composition, the outer port must be a port of the composition, both ports
// must have the same direction, and both must reference the same interface.
func (c CompositionSwComponentType) CreateDelegationConnector(name string, inner SwComponentPrototype, innerPort PortPrototype, outerPort PortPrototype) (DelegationSwConnector, error) {
	if err := c.checkPrototype(inner); err != nil {
		return DelegationSwConnector{}, err
	}
	if err := portOfPrototype(inner, innerPort); err != nil {
		return DelegationSwConnector{}, err
	}
	if outerPort.Element().NamedParent() != c.e {
		return DelegationSwConnector{}, fmt.Errorf("%w: port %s is not a port of composition %s",
			armodel.ErrInvalidValue, outerPort.Name(), c.Name())
	}
	if innerPort.Element().ElementName() != outerPort.Element().ElementName() {
		return DelegationSwConnector{}, fmt.Errorf("%w: ports %s and %s have different directions",
			armodel.ErrInvalidValue, innerPort.Name(), outerPort.Name())
	}
	refName := "PROVIDED-INTERFACE-TREF"
	if innerPort.Element().ElementName() == "R-PORT-PROTOTYPE" {
		refName = "REQUIRED-INTERFACE-TREF"
	}
	innerIface, err := interfacePath(innerPort, refName)
	if err != nil {
		return DelegationSwConnector{}, err
	}
	outerIface, err := interfacePath(outerPort, refName)
	if err != nil {
		return DelegationSwConnector{}, err
	}
	if innerIface != outerIface {
		return DelegationSwConnector{}, fmt.Errorf("%w: port %s uses %s but port %s uses %s",
			armodel.ErrInvalidValue, innerPort.Name(), innerIface, outerPort.Name(), outerIface)
	}
	created := c.e.GetSubElement("CONNECTORS") == nil
	conns := c.e.GetOrCreateSubElement("CONNECTORS")
	e, err := conns.CreateNamedSubElement("DELEGATION-SW-CONNECTOR", name)
	if err != nil {
		if created {
			c.e.RemoveSubElement(conns)
		}
		return DelegationSwConnector{}, armodel.WrapEngineErr(err)
	}
	iref := e.CreateSubElement("INNER-PORT-IREF")
	for _, ref := range []struct {
		parent *arxml.Element
		name   string
		target *arxml.Element
	}{
		{iref, "CONTEXT-COMPONENT-REF", inner.Element()},
		{iref, "TARGET-PORT-REF", innerPort.Element()},
		{e, "OUTER-PORT-REF", outerPort.Element()},
	} {
		if err := ref.parent.CreateSubElement(ref.name).SetReferenceTarget(ref.target); err != nil {
			conns.RemoveSubElement(e)
			if created {
				c.e.RemoveSubElement(conns)
			}
			return DelegationSwConnector{}, armodel.WrapEngineErr(err)
		}
	}
	return DelegationSwConnector{e: e}, nil
}

//##################################################################

// SwComponentPrototype is one instance of a component type inside a
// composition.
type SwComponentPrototype struct {
	e *arxml.Element
}

func SwComponentPrototypeFromElement(e *arxml.Element) (SwComponentPrototype, error) {
	if err := armodel.CheckElement(e, "SW-COMPONENT-PROTOTYPE", "SwComponentPrototype"); err != nil {
		return SwComponentPrototype{}, err
	}
	return SwComponentPrototype{e: e}, nil
}

func (p SwComponentPrototype) Element() *arxml.Element {
	return p.e
}

func (p SwComponentPrototype) Name() string {
	return p.e.ItemName()
}

// ComponentType resolves the type of the prototype.
func (p SwComponentPrototype) ComponentType() (SwComponentType, error) {
	ref := p.e.GetSubElement("TYPE-TREF")
	if ref == nil {
		return nil, fmt.Errorf("%w: prototype %s has no type reference",
			armodel.ErrInvalidReference, p.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return nil, armodel.WrapEngineErr(err)
	}
	return SwComponentTypeFromElement(target)
}

// AssemblySwConnector wires two ports of sibling prototypes.
type AssemblySwConnector struct {
	e *arxml.Element
}

func AssemblySwConnectorFromElement(e *arxml.Element) (AssemblySwConnector, error) {
	if err := armodel.CheckElement(e, "ASSEMBLY-SW-CONNECTOR", "AssemblySwConnector"); err != nil {
		return AssemblySwConnector{}, err
	}
	return AssemblySwConnector{e: e}, nil
}

func (c AssemblySwConnector) Element() *arxml.Element {
	return c.e
}

func (c AssemblySwConnector) Name() string {
	return c.e.ItemName()
}

// PPort resolves the provide port end of the connector.
func (c AssemblySwConnector) PPort() (PPortPrototype, error) {
	return connectorPort(c.e, "PROVIDER-IREF", "TARGET-P-PORT-REF", PPortPrototypeFromElement)
}

// RPort resolves the require port end of the connector.
func (c AssemblySwConnector) RPort() (RPortPrototype, error) {
	return connectorPort(c.e, "REQUESTER-IREF", "TARGET-R-PORT-REF", RPortPrototypeFromElement)
}

func connectorPort[T armodel.Wrapper](e *arxml.Element, irefName, refName string, from func(*arxml.Element) (T, error)) (T, error) {
	var zero T
	iref := e.GetSubElement(irefName)
	if iref == nil {
		return zero, fmt.Errorf("%w: connector %s has no %s", armodel.ErrNotFound, e.ItemName(), irefName)
	}
	ref := iref.GetSubElement(refName)
	if ref == nil {
		return zero, fmt.Errorf("%w: connector %s has no port reference",
			armodel.ErrInvalidReference, e.ItemName())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return zero, armodel.WrapEngineErr(err)
	}
	return from(target)
}

// DelegationSwConnector exposes an inner port on the composition boundary.
type DelegationSwConnector struct {
	e *arxml.Element
}

func DelegationSwConnectorFromElement(e *arxml.Element) (DelegationSwConnector, error) {
	if err := armodel.CheckElement(e, "DELEGATION-SW-CONNECTOR", "DelegationSwConnector"); err != nil {
		return DelegationSwConnector{}, err
	}
	return DelegationSwConnector{e: e}, nil
}

func (c DelegationSwConnector) Element() *arxml.Element {
	return c.e
}

func (c DelegationSwConnector) Name() string {
	return c.e.ItemName()
}

// InnerPort resolves the inner port end of the connector.
func (c DelegationSwConnector) InnerPort() (PortPrototype, error) {
	return connectorPort(c.e, "INNER-PORT-IREF", "TARGET-PORT-REF", PortPrototypeFromElement)
}

// OuterPort resolves the composition boundary port of the connector.
func (c DelegationSwConnector) OuterPort() (PortPrototype, error) {
	ref := c.e.GetSubElement("OUTER-PORT-REF")
	if ref == nil {
		return nil, fmt.Errorf("%w: connector %s has no outer port reference",
			armodel.ErrInvalidReference, c.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return nil, armodel.WrapEngineErr(err)
	}
	return PortPrototypeFromElement(target)
}
