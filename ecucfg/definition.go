// Package ecucfg provides views of the ECU configuration elements of a
// model. The definition side declares modules, containers and parameters;
// the values side holds concrete configurations validated against their
// definitions.
package ecucfg

import (
	"fmt"
	"strconv"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// EcucModuleDef declares the configuration structure of one basic software
// module.
type EcucModuleDef struct {
	e *arxml.Element
}

func NewEcucModuleDef(pkg armodel.ArPackage, name string) (EcucModuleDef, error) {
	e, err := pkg.CreateNamedElement("ECUC-MODULE-DEF", name)
	if err != nil {
		return EcucModuleDef{}, err
	}
	return EcucModuleDef{e: e}, nil
}

func EcucModuleDefFromElement(e *arxml.Element) (EcucModuleDef, error) {
	if err := armodel.CheckElement(e, "ECUC-MODULE-DEF", "EcucModuleDef"); err != nil {
		return EcucModuleDef{}, err
	}
	return EcucModuleDef{e: e}, nil
}

func (d EcucModuleDef) Element() *arxml.Element {
	return d.e
}

func (d EcucModuleDef) Name() string {
	return d.e.ItemName()
}

// CreateParamConfContainerDef declares a container of the module. lower and
// upper bound how many value containers may instantiate this definition;
// upper == 0 means unbounded.
func (d EcucModuleDef) CreateParamConfContainerDef(name string, lower, upper uint32) (EcucParamConfContainerDef, error) {
	if upper != 0 && lower > upper {
		return EcucParamConfContainerDef{}, fmt.Errorf("%w: lower multiplicity %d exceeds upper %d",
			armodel.ErrInvalidValue, lower, upper)
	}
	e, err := d.e.GetOrCreateSubElement("CONTAINERS").
		CreateNamedSubElement("ECUC-PARAM-CONF-CONTAINER-DEF", name)
	if err != nil {
		return EcucParamConfContainerDef{}, armodel.WrapEngineErr(err)
	}
	e.CreateSubElement("LOWER-MULTIPLICITY").
		SetCharacterData(strconv.FormatUint(uint64(lower), 10))
	if upper == 0 {
		e.CreateSubElement("UPPER-MULTIPLICITY-INFINITE").SetCharacterData("true")
	} else {
		e.CreateSubElement("UPPER-MULTIPLICITY").
			SetCharacterData(strconv.FormatUint(uint64(upper), 10))
	}
	return EcucParamConfContainerDef{e: e}, nil
}

// Containers lists the container definitions of the module.
func (d EcucModuleDef) Containers() []EcucParamConfContainerDef {
	containers := d.e.GetSubElement("CONTAINERS")
	if containers == nil {
		return nil
	}
	var res []EcucParamConfContainerDef
	for _, c := range containers.SubElements() {
		if v, err := EcucParamConfContainerDefFromElement(c); err == nil {
			res = append(res, v)
		}
	}
	return res
}

//##################################################################

// EcucParamConfContainerDef declares one container of a module definition.
type EcucParamConfContainerDef struct {
	e *arxml.Element
}

func EcucParamConfContainerDefFromElement(e *arxml.Element) (EcucParamConfContainerDef, error) {
	if err := armodel.CheckElement(e, "ECUC-PARAM-CONF-CONTAINER-DEF", "EcucParamConfContainerDef"); err != nil {
		return EcucParamConfContainerDef{}, err
	}
	return EcucParamConfContainerDef{e: e}, nil
}

func (d EcucParamConfContainerDef) Element() *arxml.Element {
	return d.e
}

func (d EcucParamConfContainerDef) Name() string {
	return d.e.ItemName()
}

// Multiplicity returns the lower and upper bounds of the container. An
// unbounded container reports upper == 0.
func (d EcucParamConfContainerDef) Multiplicity() (lower, upper uint64) {
	if l := d.e.GetSubElement("LOWER-MULTIPLICITY"); l != nil {
		lower, _ = l.CharacterDataUint()
	}
	if u := d.e.GetSubElement("UPPER-MULTIPLICITY"); u != nil {
		upper, _ = u.CharacterDataUint()
	}
	return lower, upper
}

// CreateBooleanParamDef declares a boolean parameter of the container.
func (d EcucParamConfContainerDef) CreateBooleanParamDef(name string) (EcucBooleanParamDef, error) {
	e, err := d.e.GetOrCreateSubElement("PARAMETERS").
		CreateNamedSubElement("ECUC-BOOLEAN-PARAM-DEF", name)
	if err != nil {
		return EcucBooleanParamDef{}, armodel.WrapEngineErr(err)
	}
	return EcucBooleanParamDef{paramDef{e: e}}, nil
}

// CreateIntegerParamDef declares an integer parameter with an inclusive
// value range.
func (d EcucParamConfContainerDef) CreateIntegerParamDef(name string, min, max int64) (EcucIntegerParamDef, error) {
	if min > max {
		return EcucIntegerParamDef{}, fmt.Errorf("%w: min %d exceeds max %d",
			armodel.ErrInvalidValue, min, max)
	}
	e, err := d.e.GetOrCreateSubElement("PARAMETERS").
		CreateNamedSubElement("ECUC-INTEGER-PARAM-DEF", name)
	if err != nil {
		return EcucIntegerParamDef{}, armodel.WrapEngineErr(err)
	}
	e.CreateSubElement("MIN").SetCharacterData(strconv.FormatInt(min, 10))
	e.CreateSubElement("MAX").SetCharacterData(strconv.FormatInt(max, 10))
	return EcucIntegerParamDef{paramDef{e: e}}, nil
}

// CreateFloatParamDef declares a float parameter with an inclusive value
// range.
func (d EcucParamConfContainerDef) CreateFloatParamDef(name string, min, max float64) (EcucFloatParamDef, error) {
	if min > max {
		return EcucFloatParamDef{}, fmt.Errorf("%w: min %g exceeds max %g",
			armodel.ErrInvalidValue, min, max)
	}
	e, err := d.e.GetOrCreateSubElement("PARAMETERS").
		CreateNamedSubElement("ECUC-FLOAT-PARAM-DEF", name)
	if err != nil {
		return EcucFloatParamDef{}, armodel.WrapEngineErr(err)
	}
	e.CreateSubElement("MIN").SetCharacterData(strconv.FormatFloat(min, 'g', -1, 64))
	e.CreateSubElement("MAX").SetCharacterData(strconv.FormatFloat(max, 'g', -1, 64))
	return EcucFloatParamDef{paramDef{e: e}}, nil
}

// CreateTextualParamDef declares a string parameter of the container.
func (d EcucParamConfContainerDef) CreateTextualParamDef(name string) (EcucTextualParamDef, error) {
	e, err := d.e.GetOrCreateSubElement("PARAMETERS").
		CreateNamedSubElement("ECUC-STRING-PARAM-DEF", name)
	if err != nil {
		return EcucTextualParamDef{}, armodel.WrapEngineErr(err)
	}
	return EcucTextualParamDef{paramDef{e: e}}, nil
}

// CreateReferenceDef declares a reference parameter whose values must point
// at containers instantiating the given destination definition.
func (d EcucParamConfContainerDef) CreateReferenceDef(name string, destination EcucParamConfContainerDef) (EcucReferenceDef, error) {
	if destination.e == nil {
		return EcucReferenceDef{}, fmt.Errorf("%w: reference definition %s needs a destination",
			armodel.ErrInvalidValue, name)
	}
	refs := d.e.GetOrCreateSubElement("REFERENCES")
	e, err := refs.CreateNamedSubElement("ECUC-REFERENCE-DEF", name)
	if err != nil {
		return EcucReferenceDef{}, armodel.WrapEngineErr(err)
	}
	if err := e.CreateSubElement("DESTINATION-REF").
		SetReferenceTarget(destination.Element()); err != nil {
		refs.RemoveSubElement(e)
		return EcucReferenceDef{}, armodel.WrapEngineErr(err)
	}
	return EcucReferenceDef{e: e}, nil
}

//##################################################################

// paramDef carries the behavior shared by every parameter definition view.
type paramDef struct {
	e *arxml.Element
}

func (d paramDef) Element() *arxml.Element {
	return d.e
}

func (d paramDef) Name() string {
	return d.e.ItemName()
}

// NumericalParamDef is implemented by the parameter definitions whose values
// are numerical: boolean, integer and float.
type NumericalParamDef interface {
	armodel.Wrapper
	Name() string
	// checkValue validates a candidate value against the definition.
	checkValue(value string) error
}

// EcucBooleanParamDef declares a boolean parameter.
type EcucBooleanParamDef struct {
	paramDef
}

func EcucBooleanParamDefFromElement(e *arxml.Element) (EcucBooleanParamDef, error) {
	if err := armodel.CheckElement(e, "ECUC-BOOLEAN-PARAM-DEF", "EcucBooleanParamDef"); err != nil {
		return EcucBooleanParamDef{}, err
	}
	return EcucBooleanParamDef{paramDef{e: e}}, nil
}

func (d EcucBooleanParamDef) checkValue(value string) error {
	if value != "true" && value != "false" && value != "0" && value != "1" {
		return fmt.Errorf("%w: %q is not a boolean value for parameter %s",
			armodel.ErrInvalidValue, value, d.Name())
	}
	return nil
}

// EcucIntegerParamDef declares an integer parameter with a value range.
type EcucIntegerParamDef struct {
	paramDef
}

func EcucIntegerParamDefFromElement(e *arxml.Element) (EcucIntegerParamDef, error) {
	if err := armodel.CheckElement(e, "ECUC-INTEGER-PARAM-DEF", "EcucIntegerParamDef"); err != nil {
		return EcucIntegerParamDef{}, err
	}
	return EcucIntegerParamDef{paramDef{e: e}}, nil
}

// Range returns the inclusive value range of the parameter.
func (d EcucIntegerParamDef) Range() (min, max int64) {
	if m := d.e.GetSubElement("MIN"); m != nil {
		min, _ = m.CharacterDataInt()
	}
	if m := d.e.GetSubElement("MAX"); m != nil {
		max, _ = m.CharacterDataInt()
	}
	return min, max
}

func (d EcucIntegerParamDef) checkValue(value string) error {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not an integer value for parameter %s",
			armodel.ErrInvalidValue, value, d.Name())
	}
	min, max := d.Range()
	if v < min || v > max {
		return fmt.Errorf("%w: %d is outside [%d, %d] for parameter %s",
			armodel.ErrInvalidValue, v, min, max, d.Name())
	}
	return nil
}

// EcucFloatParamDef declares a float parameter with a value range.
type EcucFloatParamDef struct {
	paramDef
}

func EcucFloatParamDefFromElement(e *arxml.Element) (EcucFloatParamDef, error) {
	if err := armodel.CheckElement(e, "ECUC-FLOAT-PARAM-DEF", "EcucFloatParamDef"); err != nil {
		return EcucFloatParamDef{}, err
	}
	return EcucFloatParamDef{paramDef{e: e}}, nil
}

// Range returns the inclusive value range of the parameter.
func (d EcucFloatParamDef) Range() (min, max float64) {
	if m := d.e.GetSubElement("MIN"); m != nil {
		min, _ = m.CharacterDataFloat()
	}
	if m := d.e.GetSubElement("MAX"); m != nil {
		max, _ = m.CharacterDataFloat()
	}
	return min, max
}

func (d EcucFloatParamDef) checkValue(value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a float value for parameter %s",
			armodel.ErrInvalidValue, value, d.Name())
	}
	min, max := d.Range()
	if v < min || v > max {
		return fmt.Errorf("%w: %g is outside [%g, %g] for parameter %s",
			armodel.ErrInvalidValue, v, min, max, d.Name())
	}
	return nil
}

// EcucTextualParamDef declares a string parameter.
type EcucTextualParamDef struct {
	paramDef
}

func EcucTextualParamDefFromElement(e *arxml.Element) (EcucTextualParamDef, error) {
	if err := armodel.CheckElement(e, "ECUC-STRING-PARAM-DEF", "EcucTextualParamDef"); err != nil {
		return EcucTextualParamDef{}, err
	}
	return EcucTextualParamDef{paramDef{e: e}}, nil
}

// EcucReferenceDef declares a reference parameter.
type EcucReferenceDef struct {
	e *arxml.Element
}

func EcucReferenceDefFromElement(e *arxml.Element) (EcucReferenceDef, error) {
	if err := armodel.CheckElement(e, "ECUC-REFERENCE-DEF", "EcucReferenceDef"); err != nil {
		return EcucReferenceDef{}, err
	}
	return EcucReferenceDef{e: e}, nil
}

func (d EcucReferenceDef) Element() *arxml.Element {
	return d.e
}

func (d EcucReferenceDef) Name() string {
	return d.e.ItemName()
}

// Destination resolves the container definition reference values must point
// at.
func (d EcucReferenceDef) Destination() (EcucParamConfContainerDef, error) {
	ref := d.e.GetSubElement("DESTINATION-REF")
	if ref == nil {
		return EcucParamConfContainerDef{}, fmt.Errorf("%w: reference definition %s has no destination",
			armodel.ErrInvalidReference, d.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return EcucParamConfContainerDef{}, armodel.WrapEngineErr(err)
	}
	return EcucParamConfContainerDefFromElement(target)
}
