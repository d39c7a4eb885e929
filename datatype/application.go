package datatype

import (
	"fmt"
	"strconv"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// ApplicationDataType is implemented by the application level type views.
type ApplicationDataType interface {
	armodel.Wrapper
	Name() string
}

// ApplicationDataTypeFromElement converts an element into the matching
// application type view.
func ApplicationDataTypeFromElement(e *arxml.Element) (ApplicationDataType, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: no element to convert to ApplicationDataType", armodel.ErrNotFound)
	}
	switch e.ElementName() {
	case "APPLICATION-PRIMITIVE-DATA-TYPE":
		return ApplicationPrimitiveDataTypeFromElement(e)
	case "APPLICATION-ARRAY-DATA-TYPE":
		return ApplicationArrayDataTypeFromElement(e)
	case "APPLICATION-RECORD-DATA-TYPE":
		return ApplicationRecordDataTypeFromElement(e)
	default:
		return nil, fmt.Errorf("%w: cannot convert %s to ApplicationDataType",
			armodel.ErrTypeMismatch, e.ElementName())
	}
}

// ApplicationPrimitiveCategory classifies an application primitive type.
type ApplicationPrimitiveCategory int

const (
	CategoryValue ApplicationPrimitiveCategory = iota
	CategoryValBlk
	CategoryBoolean
	CategoryComAxis
	CategoryCurve
	CategoryMap
	CategoryResAxis
	CategoryString
)

var applicationPrimitiveCategoryNames = map[ApplicationPrimitiveCategory]string{
	CategoryValue:   "VALUE",
	CategoryValBlk:  "VAL_BLK",
	CategoryBoolean: "BOOLEAN",
	CategoryComAxis: "COM_AXIS",
	CategoryCurve:   "CURVE",
	CategoryMap:     "MAP",
	CategoryResAxis: "RES_AXIS",
	CategoryString:  "STRING",
}

func (c ApplicationPrimitiveCategory) String() string {
	s, ok := applicationPrimitiveCategoryNames[c]
	if ok {
		return s
	}
	return "<unknown category>"
}

// ApplicationPrimitiveDataType is a scalar type of the application level.
type ApplicationPrimitiveDataType struct {
	e *arxml.Element
}

func NewApplicationPrimitiveDataType(pkg armodel.ArPackage, name string, category ApplicationPrimitiveCategory) (ApplicationPrimitiveDataType, error) {
	if _, ok := applicationPrimitiveCategoryNames[category]; !ok {
		return ApplicationPrimitiveDataType{}, fmt.Errorf("%w: unrecognized primitive category", armodel.ErrInvalidValue)
	}
	e, err := pkg.CreateNamedElement("APPLICATION-PRIMITIVE-DATA-TYPE", name)
	if err != nil {
		return ApplicationPrimitiveDataType{}, err
	}
	e.CreateSubElement("CATEGORY").SetCharacterData(category.String())
	return ApplicationPrimitiveDataType{e: e}, nil
}

func ApplicationPrimitiveDataTypeFromElement(e *arxml.Element) (ApplicationPrimitiveDataType, error) {
	if err := armodel.CheckElement(e, "APPLICATION-PRIMITIVE-DATA-TYPE", "ApplicationPrimitiveDataType"); err != nil {
		return ApplicationPrimitiveDataType{}, err
	}
	return ApplicationPrimitiveDataType{e: e}, nil
}

func (t ApplicationPrimitiveDataType) Element() *arxml.Element {
	return t.e
}

func (t ApplicationPrimitiveDataType) Name() string {
	return t.e.ItemName()
}

// Category returns the primitive category of the type.
func (t ApplicationPrimitiveDataType) Category() (ApplicationPrimitiveCategory, bool) {
	c := t.e.GetSubElement("CATEGORY")
	if c == nil {
		return 0, false
	}
	for cat, name := range applicationPrimitiveCategoryNames {
		if name == c.CharacterData() {
			return cat, true
		}
	}
	return 0, false
}

//##################################################################

// ApplicationArrayDataType is a fixed size array of one application type.
type ApplicationArrayDataType struct {
	e *arxml.Element
}

// NewApplicationArrayDataType creates an array type whose elements have the
// given application type.
func NewApplicationArrayDataType(pkg armodel.ArPackage, name string, elementType ApplicationDataType, size uint64) (ApplicationArrayDataType, error) {
	if elementType == nil || elementType.Element() == nil {
		return ApplicationArrayDataType{}, fmt.Errorf("%w: array type %s needs an element type",
			armodel.ErrInvalidValue, name)
	}
	if size == 0 {
		return ApplicationArrayDataType{}, fmt.Errorf("%w: array type %s needs a non-zero size",
			armodel.ErrInvalidValue, name)
	}
	e, err := pkg.CreateNamedElement("APPLICATION-ARRAY-DATA-TYPE", name)
	if err != nil {
		return ApplicationArrayDataType{}, err
	}
	e.CreateSubElement("CATEGORY").SetCharacterData("ARRAY")
	elem, err := e.CreateNamedSubElement("ELEMENT", name+"Element")
	if err != nil {
		pkg.ElementsContainer().RemoveSubElement(e)
		return ApplicationArrayDataType{}, armodel.WrapEngineErr(err)
	}
	_ = elem.CreateSubElement("TYPE-TREF").SetReferenceTarget(elementType.Element())
	elem.CreateSubElement("MAX-NUMBER-OF-ELEMENTS").
		SetCharacterData(strconv.FormatUint(size, 10))
	return ApplicationArrayDataType{e: e}, nil
}

func ApplicationArrayDataTypeFromElement(e *arxml.Element) (ApplicationArrayDataType, error) {
	if err := armodel.CheckElement(e, "APPLICATION-ARRAY-DATA-TYPE", "ApplicationArrayDataType"); err != nil {
		return ApplicationArrayDataType{}, err
	}
	return ApplicationArrayDataType{e: e}, nil
}

func (t ApplicationArrayDataType) Element() *arxml.Element {
	return t.e
}

func (t ApplicationArrayDataType) Name() string {
	return t.e.ItemName()
}

// Size returns the number of elements of the array.
func (t ApplicationArrayDataType) Size() (uint64, bool) {
	elem := t.e.GetSubElement("ELEMENT")
	if elem == nil {
		return 0, false
	}
	n := elem.GetSubElement("MAX-NUMBER-OF-ELEMENTS")
	if n == nil {
		return 0, false
	}
	return n.CharacterDataUint()
}

// ElementType resolves the type of the array elements.
func (t ApplicationArrayDataType) ElementType() (ApplicationDataType, error) {
	elem := t.e.GetSubElement("ELEMENT")
	if elem == nil {
		return nil, fmt.Errorf("%w: array type %s has no element", armodel.ErrNotFound, t.Name())
	}
	ref := elem.GetSubElement("TYPE-TREF")
	if ref == nil {
		return nil, fmt.Errorf("%w: array type %s has no element type reference",
			armodel.ErrInvalidReference, t.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return nil, armodel.WrapEngineErr(err)
	}
	return ApplicationDataTypeFromElement(target)
}

//##################################################################

// ApplicationRecordDataType is a record of named application typed fields.
type ApplicationRecordDataType struct {
	e *arxml.Element
}

func NewApplicationRecordDataType(pkg armodel.ArPackage, name string) (ApplicationRecordDataType, error) {
	e, err := pkg.CreateNamedElement("APPLICATION-RECORD-DATA-TYPE", name)
	if err != nil {
		return ApplicationRecordDataType{}, err
	}
	e.CreateSubElement("CATEGORY").SetCharacterData("STRUCTURE")
	return ApplicationRecordDataType{e: e}, nil
}

func ApplicationRecordDataTypeFromElement(e *arxml.Element) (ApplicationRecordDataType, error) {
	if err := armodel.CheckElement(e, "APPLICATION-RECORD-DATA-TYPE", "ApplicationRecordDataType"); err != nil {
		return ApplicationRecordDataType{}, err
	}
	return ApplicationRecordDataType{e: e}, nil
}

func (t ApplicationRecordDataType) Element() *arxml.Element {
	return t.e
}

func (t ApplicationRecordDataType) Name() string {
	return t.e.ItemName()
}

// CreateRecordElement appends a named field of the given type to the record.
func (t ApplicationRecordDataType) CreateRecordElement(name string, fieldType ApplicationDataType) (ApplicationRecordElement, error) {
	if fieldType == nil || fieldType.Element() == nil {
		return ApplicationRecordElement{}, fmt.Errorf("%w: record element %s needs a type",
			armodel.ErrInvalidValue, name)
	}
	elems := t.e.GetOrCreateSubElement("ELEMENTS")
	e, err := elems.CreateNamedSubElement("APPLICATION-RECORD-ELEMENT", name)
	if err != nil {
		return ApplicationRecordElement{}, armodel.WrapEngineErr(err)
	}
	if err := e.CreateSubElement("TYPE-TREF").SetReferenceTarget(fieldType.Element()); err != nil {
		elems.RemoveSubElement(e)
		return ApplicationRecordElement{}, armodel.WrapEngineErr(err)
	}
	return ApplicationRecordElement{e: e}, nil
}

// RecordElements lists the fields of the record in document order.
func (t ApplicationRecordDataType) RecordElements() []ApplicationRecordElement {
	elems := t.e.GetSubElement("ELEMENTS")
	if elems == nil {
		return nil
	}
	var res []ApplicationRecordElement
	for _, c := range elems.SubElements() {
		if r, err := ApplicationRecordElementFromElement(c); err == nil {
			res = append(res, r)
		}
	}
	return res
}

// ApplicationRecordElement is one field of an ApplicationRecordDataType.
type ApplicationRecordElement struct {
	e *arxml.Element
}

func ApplicationRecordElementFromElement(e *arxml.Element) (ApplicationRecordElement, error) {
	if err := armodel.CheckElement(e, "APPLICATION-RECORD-ELEMENT", "ApplicationRecordElement"); err != nil {
		return ApplicationRecordElement{}, err
	}
	return ApplicationRecordElement{e: e}, nil
}

func (r ApplicationRecordElement) Element() *arxml.Element {
	return r.e
}

func (r ApplicationRecordElement) Name() string {
	return r.e.ItemName()
}

// Type resolves the type of the field.
func (r ApplicationRecordElement) Type() (ApplicationDataType, error) {
	ref := r.e.GetSubElement("TYPE-TREF")
	if ref == nil {
		return nil, fmt.Errorf("%w: record element %s has no type reference",
			armodel.ErrInvalidReference, r.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return nil, armodel.WrapEngineErr(err)
	}
	return ApplicationDataTypeFromElement(target)
}
