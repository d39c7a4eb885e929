package datatype

import (
	"fmt"
	"strconv"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// ImplementationDataTypeSettings describes the shape of an implementation
// data type before it is created. The four variants mirror the categories
// VALUE, ARRAY, STRUCTURE and TYPE_REFERENCE. Settings are validated as a
// whole before any element is written.
type ImplementationDataTypeSettings interface {
	itemName() string
	category() string
	validate() error
	apply(e *arxml.Element)
}

// ValueSettings describes a plain value type backed by a base type.
type ValueSettings struct {
	Name     string
	BaseType SwBaseType
}

func (s ValueSettings) itemName() string { return s.Name }
func (s ValueSettings) category() string { return "VALUE" }

func (s ValueSettings) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: value type needs a name", armodel.ErrInvalidValue)
	}
	if s.BaseType.e == nil {
		return fmt.Errorf("%w: value type %s needs a base type", armodel.ErrInvalidValue, s.Name)
	}
	return nil
}

func (s ValueSettings) apply(e *arxml.Element) {
	ref := e.CreateSubElement("SW-DATA-DEF-PROPS").
		CreateSubElement("SW-DATA-DEF-PROPS-VARIANTS").
		CreateSubElement("SW-DATA-DEF-PROPS-CONDITIONAL").
		CreateSubElement("BASE-TYPE-REF")
	_ = ref.SetReferenceTarget(s.BaseType.Element())
}

// ArraySettings describes a fixed size array of one element type.
type ArraySettings struct {
	Name    string
	Length  uint64
	Element ImplementationDataTypeSettings
}

func (s ArraySettings) itemName() string { return s.Name }
func (s ArraySettings) category() string { return "ARRAY" }

func (s ArraySettings) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: array type needs a name", armodel.ErrInvalidValue)
	}
	if s.Length == 0 {
		return fmt.Errorf("%w: array type %s needs a non-zero length", armodel.ErrInvalidValue, s.Name)
	}
	if s.Element == nil {
		return fmt.Errorf("%w: array type %s needs an element type", armodel.ErrInvalidValue, s.Name)
	}
	return s.Element.validate()
}

func (s ArraySettings) apply(e *arxml.Element) {
	sub, err := e.CreateSubElement("SUB-ELEMENTS").
		CreateNamedSubElement("IMPLEMENTATION-DATA-TYPE-ELEMENT", s.Element.itemName())
	if err != nil {
		return
	}
	sub.CreateSubElement("ARRAY-SIZE").
		SetCharacterData(strconv.FormatUint(s.Length, 10))
	sub.CreateSubElement("ARRAY-SIZE-SEMANTICS").SetCharacterData("FIXED-SIZE")
	sub.CreateSubElement("CATEGORY").SetCharacterData(s.Element.category())
	s.Element.apply(sub)
}

// StructureSettings describes a record of named members.
type StructureSettings struct {
	Name    string
	Members []ImplementationDataTypeSettings
}

func (s StructureSettings) itemName() string { return s.Name }
func (s StructureSettings) category() string { return "STRUCTURE" }

func (s StructureSettings) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: structure type needs a name", armodel.ErrInvalidValue)
	}
	if len(s.Members) == 0 {
		return fmt.Errorf("%w: structure type %s needs at least one member", armodel.ErrInvalidValue, s.Name)
	}
	seen := map[string]bool{}
	for _, m := range s.Members {
		if err := m.validate(); err != nil {
			return err
		}
		if seen[m.itemName()] {
			return fmt.Errorf("%w: member %s of structure type %s",
				armodel.ErrDuplicateName, m.itemName(), s.Name)
		}
		seen[m.itemName()] = true
	}
	return nil
}

func (s StructureSettings) apply(e *arxml.Element) {
	subs := e.CreateSubElement("SUB-ELEMENTS")
	for _, m := range s.Members {
		sub, err := subs.CreateNamedSubElement("IMPLEMENTATION-DATA-TYPE-ELEMENT", m.itemName())
		if err != nil {
			continue
		}
		sub.CreateSubElement("CATEGORY").SetCharacterData(m.category())
		m.apply(sub)
	}
}

// TypeReferenceSettings describes an alias of another implementation data
// type.
type TypeReferenceSettings struct {
	Name       string
	Referenced ImplementationDataType
}

func (s TypeReferenceSettings) itemName() string { return s.Name }
func (s TypeReferenceSettings) category() string { return "TYPE_REFERENCE" }

func (s TypeReferenceSettings) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: type reference needs a name", armodel.ErrInvalidValue)
	}
	if s.Referenced.e == nil {
		return fmt.Errorf("%w: type reference %s needs a referenced type", armodel.ErrInvalidValue, s.Name)
	}
	return nil
}

func (s TypeReferenceSettings) apply(e *arxml.Element) {
	ref := e.CreateSubElement("SW-DATA-DEF-PROPS").
		CreateSubElement("SW-DATA-DEF-PROPS-VARIANTS").
		CreateSubElement("SW-DATA-DEF-PROPS-CONDITIONAL").
		CreateSubElement("IMPLEMENTATION-DATA-TYPE-REF")
	_ = ref.SetReferenceTarget(s.Referenced.Element())
}

//##################################################################

// ImplementationDataType is a concrete type of the implementation level.
type ImplementationDataType struct {
	e *arxml.Element
}

// NewImplementationDataType creates an implementation data type in the
// package from the given settings. The settings tree is validated first;
// nothing is created when any part of it is invalid.
func NewImplementationDataType(pkg armodel.ArPackage, settings ImplementationDataTypeSettings) (ImplementationDataType, error) {
	if settings == nil {
		return ImplementationDataType{}, fmt.Errorf("%w: no settings", armodel.ErrInvalidValue)
	}
	if err := settings.validate(); err != nil {
		return ImplementationDataType{}, err
	}
	e, err := pkg.CreateNamedElement("IMPLEMENTATION-DATA-TYPE", settings.itemName())
	if err != nil {
		return ImplementationDataType{}, err
	}
	e.CreateSubElement("CATEGORY").SetCharacterData(settings.category())
	settings.apply(e)
	return ImplementationDataType{e: e}, nil
}

func ImplementationDataTypeFromElement(e *arxml.Element) (ImplementationDataType, error) {
	if err := armodel.CheckElement(e, "IMPLEMENTATION-DATA-TYPE", "ImplementationDataType"); err != nil {
		return ImplementationDataType{}, err
	}
	return ImplementationDataType{e: e}, nil
}

func (t ImplementationDataType) Element() *arxml.Element {
	return t.e
}

func (t ImplementationDataType) Name() string {
	return t.e.ItemName()
}

// Category returns the category of the type: VALUE, ARRAY, STRUCTURE or
// TYPE_REFERENCE.
func (t ImplementationDataType) Category() string {
	c := t.e.GetSubElement("CATEGORY")
	if c == nil {
		return ""
	}
	return c.CharacterData()
}

// BaseType resolves the base type of a VALUE category type.
func (t ImplementationDataType) BaseType() (SwBaseType, error) {
	ref := dataDefPropsRef(t.e, "BASE-TYPE-REF")
	if ref == nil {
		return SwBaseType{}, fmt.Errorf("%w: type %s has no base type reference",
			armodel.ErrNotFound, t.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return SwBaseType{}, armodel.WrapEngineErr(err)
	}
	return SwBaseTypeFromElement(target)
}

// ReferencedType resolves the target of a TYPE_REFERENCE category type.
func (t ImplementationDataType) ReferencedType() (ImplementationDataType, error) {
	ref := dataDefPropsRef(t.e, "IMPLEMENTATION-DATA-TYPE-REF")
	if ref == nil {
		return ImplementationDataType{}, fmt.Errorf("%w: type %s has no type reference",
			armodel.ErrNotFound, t.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return ImplementationDataType{}, armodel.WrapEngineErr(err)
	}
	return ImplementationDataTypeFromElement(target)
}

// ArraySize returns the length of an ARRAY category type.
func (t ImplementationDataType) ArraySize() (uint64, bool) {
	subs := t.e.GetSubElement("SUB-ELEMENTS")
	if subs == nil {
		return 0, false
	}
	for _, sub := range subs.SubElements() {
		if as := sub.GetSubElement("ARRAY-SIZE"); as != nil {
			return as.CharacterDataUint()
		}
	}
	return 0, false
}

func dataDefPropsRef(e *arxml.Element, refName string) *arxml.Element {
	props := e.GetSubElement("SW-DATA-DEF-PROPS")
	if props == nil {
		return nil
	}
	variants := props.GetSubElement("SW-DATA-DEF-PROPS-VARIANTS")
	if variants == nil {
		return nil
	}
	cond := variants.GetSubElement("SW-DATA-DEF-PROPS-CONDITIONAL")
	if cond == nil {
		return nil
	}
	return cond.GetSubElement(refName)
}
