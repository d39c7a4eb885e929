package datatype

import (
	"fmt"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// DataTypeMappingSet connects application data types to the implementation
// data types realizing them.
type DataTypeMappingSet struct {
	e *arxml.Element
}

func NewDataTypeMappingSet(pkg armodel.ArPackage, name string) (DataTypeMappingSet, error) {
	e, err := pkg.CreateNamedElement("DATA-TYPE-MAPPING-SET", name)
	if err != nil {
		return DataTypeMappingSet{}, err
	}
	return DataTypeMappingSet{e: e}, nil
}

func DataTypeMappingSetFromElement(e *arxml.Element) (DataTypeMappingSet, error) {
	if err := armodel.CheckElement(e, "DATA-TYPE-MAPPING-SET", "DataTypeMappingSet"); err != nil {
		return DataTypeMappingSet{}, err
	}
	return DataTypeMappingSet{e: e}, nil
}

func (s DataTypeMappingSet) Element() *arxml.Element {
	return s.e
}

func (s DataTypeMappingSet) Name() string {
	return s.e.ItemName()
}

// MapDataTypes creates a map entry connecting the application type to the
// implementation type. Each application type can be mapped at most once per
// set; a second mapping fails before anything is written.
func (s DataTypeMappingSet) MapDataTypes(appType ApplicationDataType, implType ImplementationDataType) error {
	if appType == nil || appType.Element() == nil {
		return fmt.Errorf("%w: no application type to map", armodel.ErrInvalidValue)
	}
	if implType.e == nil {
		return fmt.Errorf("%w: no implementation type to map", armodel.ErrInvalidValue)
	}
	maps := s.e.GetOrCreateSubElement("DATA-TYPE-MAPS")
	appPath := appType.Element().Path()
	if armodel.ContainsRef(maps, "APPLICATION-DATA-TYPE-REF", appPath) {
		return fmt.Errorf("%w: application type %s is already mapped in %s",
			armodel.ErrDuplicateName, appType.Name(), s.Name())
	}
	entry := maps.CreateSubElement("DATA-TYPE-MAP")
	if err := entry.CreateSubElement("APPLICATION-DATA-TYPE-REF").
		SetReferenceTarget(appType.Element()); err != nil {
		maps.RemoveSubElement(entry)
		return armodel.WrapEngineErr(err)
	}
	if err := entry.CreateSubElement("IMPLEMENTATION-DATA-TYPE-REF").
		SetReferenceTarget(implType.Element()); err != nil {
		maps.RemoveSubElement(entry)
		return armodel.WrapEngineErr(err)
	}
	return nil
}

// MappedImplementationType resolves the implementation type an application
// type is mapped to in this set.
func (s DataTypeMappingSet) MappedImplementationType(appType ApplicationDataType) (ImplementationDataType, error) {
	maps := s.e.GetSubElement("DATA-TYPE-MAPS")
	if maps == nil {
		return ImplementationDataType{}, fmt.Errorf("%w: set %s has no mappings",
			armodel.ErrNotFound, s.Name())
	}
	appPath := appType.Element().Path()
	for _, entry := range maps.SubElements() {
		ref := entry.GetSubElement("APPLICATION-DATA-TYPE-REF")
		if ref == nil || ref.CharacterData() != appPath {
			continue
		}
		implRef := entry.GetSubElement("IMPLEMENTATION-DATA-TYPE-REF")
		if implRef == nil {
			continue
		}
		target, err := implRef.ReferenceTarget()
		if err != nil {
			return ImplementationDataType{}, armodel.WrapEngineErr(err)
		}
		return ImplementationDataTypeFromElement(target)
	}
	return ImplementationDataType{}, fmt.Errorf("%w: application type %s is not mapped in %s",
		armodel.ErrNotFound, appType.Name(), s.Name())
}
