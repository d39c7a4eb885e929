// Package swcomponent provides views of the software component elements of
// a model: component types, ports, port interfaces, connectors and the
// internal behavior with its runnables and RTE events.
package swcomponent

import (
	"fmt"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// SwComponentType is implemented by all component type views.
type SwComponentType interface {
	armodel.Wrapper
	Name() string
	// Ports lists the ports of the component type.
	Ports() []PortPrototype
}

// SwComponentTypeFromElement converts an element into the matching component
// type view.
func SwComponentTypeFromElement(e *arxml.Element) (SwComponentType, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: no element to convert to SwComponentType", armodel.ErrNotFound)
	}
	switch e.ElementName() {
	case "APPLICATION-SW-COMPONENT-TYPE":
		return ApplicationSwComponentTypeFromElement(e)
	case "SERVICE-SW-COMPONENT-TYPE":
		return ServiceSwComponentTypeFromElement(e)
	case "SENSOR-ACTUATOR-SW-COMPONENT-TYPE":
		return SensorActuatorSwComponentTypeFromElement(e)
	case "ECU-ABSTRACTION-SW-COMPONENT-TYPE":
		return EcuAbstractionSwComponentTypeFromElement(e)
	case "COMPLEX-DEVICE-DRIVER-SW-COMPONENT-TYPE":
		return ComplexDeviceDriverSwComponentTypeFromElement(e)
	case "COMPOSITION-SW-COMPONENT-TYPE":
		return CompositionSwComponentTypeFromElement(e)
	default:
		return nil, fmt.Errorf("%w: cannot convert %s to SwComponentType",
			armodel.ErrTypeMismatch, e.ElementName())
	}
}

// swComponentType carries the behavior shared by every component type view.
type swComponentType struct {
	e *arxml.Element
}

func (c swComponentType) Element() *arxml.Element {
	return c.e
}

func (c swComponentType) Name() string {
	return c.e.ItemName()
}

// CreatePPortPrototype creates a provide port bound to the given interface.
func (c swComponentType) CreatePPortPrototype(name string, iface PortInterface) (PPortPrototype, error) {
	if iface == nil || iface.Element() == nil {
		return PPortPrototype{}, fmt.Errorf("%w: port %s needs an interface",
			armodel.ErrInvalidValue, name)
	}
	ports := c.e.GetOrCreateSubElement("PORTS")
	e, err := ports.CreateNamedSubElement("P-PORT-PROTOTYPE", name)
	if err != nil {
		return PPortPrototype{}, armodel.WrapEngineErr(err)
	}
	if err := e.CreateSubElement("PROVIDED-INTERFACE-TREF").
		SetReferenceTarget(iface.Element()); err != nil {
		ports.RemoveSubElement(e)
		return PPortPrototype{}, armodel.WrapEngineErr(err)
	}
	return PPortPrototype{e: e}, nil
}

// CreateRPortPrototype creates a require port bound to the given interface.
func (c swComponentType) CreateRPortPrototype(name string, iface PortInterface) (RPortPrototype, error) {
	if iface == nil || iface.Element() == nil {
		return RPortPrototype{}, fmt.Errorf("%w: port %s needs an interface",
			armodel.ErrInvalidValue, name)
	}
	ports := c.e.GetOrCreateSubElement("PORTS")
	e, err := ports.CreateNamedSubElement("R-PORT-PROTOTYPE", name)
	if err != nil {
		return RPortPrototype{}, armodel.WrapEngineErr(err)
	}
	if err := e.CreateSubElement("REQUIRED-INTERFACE-TREF").
		SetReferenceTarget(iface.Element()); err != nil {
		ports.RemoveSubElement(e)
		return RPortPrototype{}, armodel.WrapEngineErr(err)
	}
	return RPortPrototype{e: e}, nil
}

// Ports lists the ports of the component type in document order.
func (c swComponentType) Ports() []PortPrototype {
	ports := c.e.GetSubElement("PORTS")
	if ports == nil {
		return nil
	}
	var res []PortPrototype
	for _, p := range ports.SubElements() {
		if v, err := PortPrototypeFromElement(p); err == nil {
			res = append(res, v)
		}
	}
	return res
}

// atomicSwComponentType adds the internal behavior of non-composition
// component types.
type atomicSwComponentType struct {
	swComponentType
}

// CreateSwcInternalBehavior creates the internal behavior of the component.
// A component has at most one internal behavior.
func (c atomicSwComponentType) CreateSwcInternalBehavior(name string) (SwcInternalBehavior, error) {
	behaviors := c.e.GetSubElement("INTERNAL-BEHAVIORS")
	if behaviors != nil && behaviors.GetSubElement("SWC-INTERNAL-BEHAVIOR") != nil {
		return SwcInternalBehavior{}, fmt.Errorf("%w: component %s already has an internal behavior",
			armodel.ErrDuplicateName, c.Name())
	}
	e, err := c.e.GetOrCreateSubElement("INTERNAL-BEHAVIORS").
		CreateNamedSubElement("SWC-INTERNAL-BEHAVIOR", name)
	if err != nil {
		return SwcInternalBehavior{}, armodel.WrapEngineErr(err)
	}
	return SwcInternalBehavior{e: e}, nil
}

// SwcInternalBehavior returns the internal behavior of the component, if
// one exists.
func (c atomicSwComponentType) SwcInternalBehavior() (SwcInternalBehavior, bool) {
	behaviors := c.e.GetSubElement("INTERNAL-BEHAVIORS")
	if behaviors == nil {
		return SwcInternalBehavior{}, false
	}
	b := behaviors.GetSubElement("SWC-INTERNAL-BEHAVIOR")
	if b == nil {
		return SwcInternalBehavior{}, false
	}
	return SwcInternalBehavior{e: b}, true
}

func newAtomicComponent(pkg armodel.ArPackage, elementName, name string) (atomicSwComponentType, error) {
	e, err := pkg.CreateNamedElement(elementName, name)
	if err != nil {
		return atomicSwComponentType{}, err
	}
	return atomicSwComponentType{swComponentType{e: e}}, nil
}

func atomicFromElement(e *arxml.Element, elementName, dest string) (atomicSwComponentType, error) {
	if err := armodel.CheckElement(e, elementName, dest); err != nil {
		return atomicSwComponentType{}, err
	}
	return atomicSwComponentType{swComponentType{e: e}}, nil
}

//##################################################################

// ApplicationSwComponentType is an ordinary application level component.
type ApplicationSwComponentType struct {
	atomicSwComponentType
}

func NewApplicationSwComponentType(pkg armodel.ArPackage, name string) (ApplicationSwComponentType, error) {
	a, err := newAtomicComponent(pkg, "APPLICATION-SW-COMPONENT-TYPE", name)
	return ApplicationSwComponentType{a}, err
}

func ApplicationSwComponentTypeFromElement(e *arxml.Element) (ApplicationSwComponentType, error) {
	a, err := atomicFromElement(e, "APPLICATION-SW-COMPONENT-TYPE", "ApplicationSwComponentType")
	return ApplicationSwComponentType{a}, err
}

// ServiceSwComponentType is a component providing basic software services.
type ServiceSwComponentType struct {
	atomicSwComponentType
}

func NewServiceSwComponentType(pkg armodel.ArPackage, name string) (ServiceSwComponentType, error) {
	a, err := newAtomicComponent(pkg, "SERVICE-SW-COMPONENT-TYPE", name)
	return ServiceSwComponentType{a}, err
}

func ServiceSwComponentTypeFromElement(e *arxml.Element) (ServiceSwComponentType, error) {
	a, err := atomicFromElement(e, "SERVICE-SW-COMPONENT-TYPE", "ServiceSwComponentType")
	return ServiceSwComponentType{a}, err
}

// SensorActuatorSwComponentType is a component tied to a sensor or actuator.
type SensorActuatorSwComponentType struct {
	atomicSwComponentType
}

func NewSensorActuatorSwComponentType(pkg armodel.ArPackage, name string) (SensorActuatorSwComponentType, error) {
	a, err := newAtomicComponent(pkg, "SENSOR-ACTUATOR-SW-COMPONENT-TYPE", name)
	return SensorActuatorSwComponentType{a}, err
}

func SensorActuatorSwComponentTypeFromElement(e *arxml.Element) (SensorActuatorSwComponentType, error) {
	a, err := atomicFromElement(e, "SENSOR-ACTUATOR-SW-COMPONENT-TYPE", "SensorActuatorSwComponentType")
	return SensorActuatorSwComponentType{a}, err
}

// EcuAbstractionSwComponentType sits between the application and the
// hardware dependent layers.
type EcuAbstractionSwComponentType struct {
	atomicSwComponentType
}

func NewEcuAbstractionSwComponentType(pkg armodel.ArPackage, name string) (EcuAbstractionSwComponentType, error) {
	a, err := newAtomicComponent(pkg, "ECU-ABSTRACTION-SW-COMPONENT-TYPE", name)
	return EcuAbstractionSwComponentType{a}, err
}

func EcuAbstractionSwComponentTypeFromElement(e *arxml.Element) (EcuAbstractionSwComponentType, error) {
	a, err := atomicFromElement(e, "ECU-ABSTRACTION-SW-COMPONENT-TYPE", "EcuAbstractionSwComponentType")
	return EcuAbstractionSwComponentType{a}, err
}

// ComplexDeviceDriverSwComponentType accesses hardware directly.
type ComplexDeviceDriverSwComponentType struct {
	atomicSwComponentType
}

func NewComplexDeviceDriverSwComponentType(pkg armodel.ArPackage, name string) (ComplexDeviceDriverSwComponentType, error) {
	a, err := newAtomicComponent(pkg, "COMPLEX-DEVICE-DRIVER-SW-COMPONENT-TYPE", name)
	return ComplexDeviceDriverSwComponentType{a}, err
}

func ComplexDeviceDriverSwComponentTypeFromElement(e *arxml.Element) (ComplexDeviceDriverSwComponentType, error) {
	a, err := atomicFromElement(e, "COMPLEX-DEVICE-DRIVER-SW-COMPONENT-TYPE", "ComplexDeviceDriverSwComponentType")
	return ComplexDeviceDriverSwComponentType{a}, err
}
