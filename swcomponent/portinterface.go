package swcomponent

import (
	"fmt"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
	"github.com/openarkit/armodel/datatype"
)

// PortInterface is implemented by all port interface views.
type PortInterface interface {
	armodel.Wrapper
	Name() string
}

// PortInterfaceFromElement converts an element into the matching interface
// view.
func PortInterfaceFromElement(e *arxml.Element) (PortInterface, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: no element to convert to PortInterface", armodel.ErrNotFound)
	}
	switch e.ElementName() {
	case "SENDER-RECEIVER-INTERFACE":
		return SenderReceiverInterfaceFromElement(e)
	case "CLIENT-SERVER-INTERFACE":
		return ClientServerInterfaceFromElement(e)
	default:
		return nil, fmt.Errorf("%w: cannot convert %s to PortInterface",
			armodel.ErrTypeMismatch, e.ElementName())
	}
}

//##################################################################

// SenderReceiverInterface carries typed data elements between ports.
type SenderReceiverInterface struct {
	e *arxml.Element
}

func NewSenderReceiverInterface(pkg armodel.ArPackage, name string) (SenderReceiverInterface, error) {
	e, err := pkg.CreateNamedElement("SENDER-RECEIVER-INTERFACE", name)
	if err != nil {
		return SenderReceiverInterface{}, err
	}
	return SenderReceiverInterface{e: e}, nil
}

func SenderReceiverInterfaceFromElement(e *arxml.Element) (SenderReceiverInterface, error) {
	if err := armodel.CheckElement(e, "SENDER-RECEIVER-INTERFACE", "SenderReceiverInterface"); err != nil {
		return SenderReceiverInterface{}, err
	}
	return SenderReceiverInterface{e: e}, nil
}

func (i SenderReceiverInterface) Element() *arxml.Element {
	return i.e
}

func (i SenderReceiverInterface) Name() string {
	return i.e.ItemName()
}

// CreateDataElement adds a typed data element to the interface.
func (i SenderReceiverInterface) CreateDataElement(name string, dtype datatype.ApplicationDataType) (VariableDataPrototype, error) {
	if dtype == nil || dtype.Element() == nil {
		return VariableDataPrototype{}, fmt.Errorf("%w: data element %s needs a type",
			armodel.ErrInvalidValue, name)
	}
	elems := i.e.GetOrCreateSubElement("DATA-ELEMENTS")
	e, err := elems.CreateNamedSubElement("VARIABLE-DATA-PROTOTYPE", name)
	if err != nil {
		return VariableDataPrototype{}, armodel.WrapEngineErr(err)
	}
	if err := e.CreateSubElement("TYPE-TREF").SetReferenceTarget(dtype.Element()); err != nil {
		elems.RemoveSubElement(e)
		return VariableDataPrototype{}, armodel.WrapEngineErr(err)
	}
	return VariableDataPrototype{e: e}, nil
}

// DataElements lists the data elements of the interface.
func (i SenderReceiverInterface) DataElements() []VariableDataPrototype {
	elems := i.e.GetSubElement("DATA-ELEMENTS")
	if elems == nil {
		return nil
	}
	var res []VariableDataPrototype
	for _, c := range elems.SubElements() {
		if v, err := VariableDataPrototypeFromElement(c); err == nil {
			res = append(res, v)
		}
	}
	return res
}

// VariableDataPrototype is one data element of a SenderReceiverInterface.
type VariableDataPrototype struct {
	e *arxml.Element
}

func VariableDataPrototypeFromElement(e *arxml.Element) (VariableDataPrototype, error) {
	if err := armodel.CheckElement(e, "VARIABLE-DATA-PROTOTYPE", "VariableDataPrototype"); err != nil {
		return VariableDataPrototype{}, err
	}
	return VariableDataPrototype{e: e}, nil
}

func (v VariableDataPrototype) Element() *arxml.Element {
	return v.e
}

func (v VariableDataPrototype) Name() string {
	return v.e.ItemName()
}

// Type resolves the data type of the element.
func (v VariableDataPrototype) Type() (datatype.ApplicationDataType, error) {
	ref := v.e.GetSubElement("TYPE-TREF")
	if ref == nil {
		return nil, fmt.Errorf("%w: data element %s has no type reference",
			armodel.ErrInvalidReference, v.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return nil, armodel.WrapEngineErr(err)
	}
	return datatype.ApplicationDataTypeFromElement(target)
}

//##################################################################

// ArgumentDirection is the direction of a client server operation argument.
type ArgumentDirection int

const (
	DirectionIn ArgumentDirection = iota
	DirectionOut
	DirectionInout
)

var argumentDirectionNames = map[ArgumentDirection]string{
	DirectionIn:    "IN",
	DirectionOut:   "OUT",
	DirectionInout: "INOUT",
}

func (d ArgumentDirection) String() string {
	s, ok := argumentDirectionNames[d]
	if ok {
		return s
	}
	return "<unknown direction>"
}

// ClientServerInterface describes operations callable across ports.
type ClientServerInterface struct {
	e *arxml.Element
}

func NewClientServerInterface(pkg armodel.ArPackage, name string) (ClientServerInterface, error) {
	e, err := pkg.CreateNamedElement("CLIENT-SERVER-INTERFACE", name)
	if err != nil {
		return ClientServerInterface{}, err
	}
	return ClientServerInterface{e: e}, nil
}

func ClientServerInterfaceFromElement(e *arxml.Element) (ClientServerInterface, error) {
	if err := armodel.CheckElement(e, "CLIENT-SERVER-INTERFACE", "ClientServerInterface"); err != nil {
		return ClientServerInterface{}, err
	}
	return ClientServerInterface{e: e}, nil
}

func (i ClientServerInterface) Element() *arxml.Element {
	return i.e
}

func (i ClientServerInterface) Name() string {
	return i.e.ItemName()
}

// CreateOperation adds an operation to the interface.
func (i ClientServerInterface) CreateOperation(name string) (ClientServerOperation, error) {
	e, err := i.e.GetOrCreateSubElement("OPERATIONS").
		CreateNamedSubElement("CLIENT-SERVER-OPERATION", name)
	if err != nil {
		return ClientServerOperation{}, armodel.WrapEngineErr(err)
	}
	return ClientServerOperation{e: e}, nil
}

// Operations lists the operations of the interface.
func (i ClientServerInterface) Operations() []ClientServerOperation {
	ops := i.e.GetSubElement("OPERATIONS")
	if ops == nil {
		return nil
	}
	var res []ClientServerOperation
	for _, c := range ops.SubElements() {
		if op, err := ClientServerOperationFromElement(c); err == nil {
			res = append(res, op)
		}
	}
	return res
}

// ClientServerOperation is one operation of a ClientServerInterface.
type ClientServerOperation struct {
	e *arxml.Element
}

func ClientServerOperationFromElement(e *arxml.Element) (ClientServerOperation, error) {
	if err := armodel.CheckElement(e, "CLIENT-SERVER-OPERATION", "ClientServerOperation"); err != nil {
		return ClientServerOperation{}, err
	}
	return ClientServerOperation{e: e}, nil
}

func (o ClientServerOperation) Element() *arxml.Element {
	return o.e
}

func (o ClientServerOperation) Name() string {
	return o.e.ItemName()
}

// CreateArgument adds a typed argument with the given direction to the
// operation. Argument order is the call signature order.
func (o ClientServerOperation) CreateArgument(name string, dtype datatype.ApplicationDataType, direction ArgumentDirection) (ArgumentDataPrototype, error) {
	if dtype == nil || dtype.Element() == nil {
		return ArgumentDataPrototype{}, fmt.Errorf("%w: argument %s needs a type",
			armodel.ErrInvalidValue, name)
	}
	if _, ok := argumentDirectionNames[direction]; !ok {
		return ArgumentDataPrototype{}, fmt.Errorf("%w: unrecognized argument direction",
			armodel.ErrInvalidValue)
	}
	args := o.e.GetOrCreateSubElement("ARGUMENTS")
	e, err := args.CreateNamedSubElement("ARGUMENT-DATA-PROTOTYPE", name)
	if err != nil {
		return ArgumentDataPrototype{}, armodel.WrapEngineErr(err)
	}
	if err := e.CreateSubElement("TYPE-TREF").SetReferenceTarget(dtype.Element()); err != nil {
		args.RemoveSubElement(e)
		return ArgumentDataPrototype{}, armodel.WrapEngineErr(err)
	}
	e.CreateSubElement("DIRECTION").SetCharacterData(direction.String())
	return ArgumentDataPrototype{e: e}, nil
}

// Arguments lists the arguments of the operation in signature order.
func (o ClientServerOperation) Arguments() []ArgumentDataPrototype {
	args := o.e.GetSubElement("ARGUMENTS")
	if args == nil {
		return nil
	}
	var res []ArgumentDataPrototype
	for _, c := range args.SubElements() {
		if a, err := ArgumentDataPrototypeFromElement(c); err == nil {
			res = append(res, a)
		}
	}
	return res
}

// ArgumentDataPrototype is one argument of a ClientServerOperation.
type ArgumentDataPrototype struct {
	e *arxml.Element
}

func ArgumentDataPrototypeFromElement(e *arxml.Element) (ArgumentDataPrototype, error) {
	if err := armodel.CheckElement(e, "ARGUMENT-DATA-PROTOTYPE", "ArgumentDataPrototype"); err != nil {
		return ArgumentDataPrototype{}, err
	}
	return ArgumentDataPrototype{e: e}, nil
}

func (a ArgumentDataPrototype) Element() *arxml.Element {
	return a.e
}

func (a ArgumentDataPrototype) Name() string {
	return a.e.ItemName()
}

// Direction returns the direction of the argument.
func (a ArgumentDataPrototype) Direction() (ArgumentDirection, bool) {
	d := a.e.GetSubElement("DIRECTION")
	if d == nil {
		return 0, false
	}
	for dir, name := range argumentDirectionNames {
		if name == d.CharacterData() {
			return dir, true
		}
	}
	return 0, false
}
