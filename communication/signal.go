package communication

import (
	"fmt"
	"strconv"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
	"github.com/openarkit/armodel/datatype"
)

// SystemSignal is the bus-independent description of a signal.
type SystemSignal struct {
	e *arxml.Element
}

func newSystemSignal(pkg armodel.ArPackage, name string) (SystemSignal, error) {
	e, err := pkg.CreateNamedElement("SYSTEM-SIGNAL", name)
	if err != nil {
		return SystemSignal{}, err
	}
	return SystemSignal{e: e}, nil
}

func SystemSignalFromElement(e *arxml.Element) (SystemSignal, error) {
	if err := armodel.CheckElement(e, "SYSTEM-SIGNAL", "SystemSignal"); err != nil {
		return SystemSignal{}, err
	}
	return SystemSignal{e: e}, nil
}

func (s SystemSignal) Element() *arxml.Element {
	return s.e
}

func (s SystemSignal) Name() string {
	return s.e.ItemName()
}

//##################################################################

// ISignal is the network representation of a SystemSignal: a named
// sub-field mapped into a PDU's payload.
type ISignal struct {
	e *arxml.Element
}

func newISignal(pkg armodel.ArPackage, name string, bitLength uint64, sysSignal SystemSignal) (ISignal, error) {
	e, err := pkg.CreateNamedElement("I-SIGNAL", name)
	if err != nil {
		return ISignal{}, err
	}
	sig := ISignal{e: e}
	sig.SetLength(bitLength)
	if err := e.CreateSubElement("SYSTEM-SIGNAL-REF").SetReferenceTarget(sysSignal.Element()); err != nil {
		return ISignal{}, armodel.WrapEngineErr(err)
	}
	return sig, nil
}

func ISignalFromElement(e *arxml.Element) (ISignal, error) {
	if err := armodel.CheckElement(e, "I-SIGNAL", "ISignal"); err != nil {
		return ISignal{}, err
	}
	return ISignal{e: e}, nil
}

func (s ISignal) Element() *arxml.Element {
	return s.e
}

func (s ISignal) Name() string {
	return s.e.ItemName()
}

// SetLength sets the bit length of the signal.
func (s ISignal) SetLength(bitLength uint64) {
	s.e.GetOrCreateSubElement("LENGTH").
		SetCharacterData(strconv.FormatUint(bitLength, 10))
}

// Length returns the bit length of the signal.
func (s ISignal) Length() (uint64, bool) {
	l := s.e.GetSubElement("LENGTH")
	if l == nil {
		return 0, false
	}
	return l.CharacterDataUint()
}

// SystemSignal resolves the system signal reference of the I-signal.
func (s ISignal) SystemSignal() (SystemSignal, error) {
	ref := s.e.GetSubElement("SYSTEM-SIGNAL-REF")
	if ref == nil {
		return SystemSignal{}, fmt.Errorf("%w: signal %s has no system signal reference",
			armodel.ErrInvalidReference, s.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return SystemSignal{}, armodel.WrapEngineErr(err)
	}
	return SystemSignalFromElement(target)
}

// SetDataType sets the base type used for the network representation of
// the signal.
func (s ISignal) SetDataType(baseType datatype.SwBaseType) error {
	ref := s.e.GetOrCreateSubElement("NETWORK-REPRESENTATION-PROPS").
		GetOrCreateSubElement("SW-DATA-DEF-PROPS-VARIANTS").
		GetOrCreateSubElement("SW-DATA-DEF-PROPS-CONDITIONAL").
		GetOrCreateSubElement("BASE-TYPE-REF")
	return armodel.WrapEngineErr(ref.SetReferenceTarget(baseType.Element()))
}

// DataType resolves the base type of the network representation.
func (s ISignal) DataType() (datatype.SwBaseType, error) {
	props := s.e.GetSubElement("NETWORK-REPRESENTATION-PROPS")
	if props == nil {
		return datatype.SwBaseType{}, fmt.Errorf("%w: signal %s has no network representation",
			armodel.ErrNotFound, s.Name())
	}
	variants := props.GetSubElement("SW-DATA-DEF-PROPS-VARIANTS")
	if variants == nil {
		return datatype.SwBaseType{}, fmt.Errorf("%w: signal %s has no network representation",
			armodel.ErrNotFound, s.Name())
	}
	cond := variants.GetSubElement("SW-DATA-DEF-PROPS-CONDITIONAL")
	if cond == nil {
		return datatype.SwBaseType{}, fmt.Errorf("%w: signal %s has no network representation",
			armodel.ErrNotFound, s.Name())
	}
	ref := cond.GetSubElement("BASE-TYPE-REF")
	if ref == nil {
		return datatype.SwBaseType{}, fmt.Errorf("%w: signal %s has no base type reference",
			armodel.ErrInvalidReference, s.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return datatype.SwBaseType{}, armodel.WrapEngineErr(err)
	}
	return datatype.SwBaseTypeFromElement(target)
}

// AddDataTransformation appends a transformation chain to the ordered list
// of transformations applied to the signal. The same chain cannot be added
// twice; order is preserved.
func (s ISignal) AddDataTransformation(dt DataTransformation) error {
	list := s.e.GetOrCreateSubElement("DATA-TRANSFORMATIONS")
	path := dt.Element().Path()
	if armodel.ContainsRef(list, "DATA-TRANSFORMATION-REF", path) {
		return fmt.Errorf("%w: transformation %s already applied to %s",
			armodel.ErrDuplicateName, dt.Name(), s.Name())
	}
	cond := list.CreateSubElement("DATA-TRANSFORMATION-REF-CONDITIONAL")
	ref := cond.CreateSubElement("DATA-TRANSFORMATION-REF")
	if err := ref.SetReferenceTarget(dt.Element()); err != nil {
		list.RemoveSubElement(cond)
		return armodel.WrapEngineErr(err)
	}
	return nil
}

// DataTransformations resolves the transformation chains applied to the
// signal, in the order they were added.
func (s ISignal) DataTransformations() []DataTransformation {
	m := armodel.ModelOf(s.e)
	return armodel.ResolveRefs(m, s.e.GetSubElement("DATA-TRANSFORMATIONS"),
		"DATA-TRANSFORMATION-REF", DataTransformationFromElement)
}
