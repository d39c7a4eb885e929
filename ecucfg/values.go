package ecucfg

import (
	"fmt"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// EcucValueCollection gathers the module configurations of one ECU.
type EcucValueCollection struct {
	e *arxml.Element
}

func NewEcucValueCollection(pkg armodel.ArPackage, name string) (EcucValueCollection, error) {
	e, err := pkg.CreateNamedElement("ECUC-VALUE-COLLECTION", name)
	if err != nil {
		return EcucValueCollection{}, err
	}
	return EcucValueCollection{e: e}, nil
}

func EcucValueCollectionFromElement(e *arxml.Element) (EcucValueCollection, error) {
	if err := armodel.CheckElement(e, "ECUC-VALUE-COLLECTION", "EcucValueCollection"); err != nil {
		return EcucValueCollection{}, err
	}
	return EcucValueCollection{e: e}, nil
}

func (c EcucValueCollection) Element() *arxml.Element {
	return c.e
}

func (c EcucValueCollection) Name() string {
	return c.e.ItemName()
}

// CreateModuleConfiguration creates a module configuration in the package
// and adds it to the collection. The configuration is bound to the given
// module definition.
func (c EcucValueCollection) CreateModuleConfiguration(pkg armodel.ArPackage, name string, moduleDef EcucModuleDef) (EcucModuleConfigurationValues, error) {
	if moduleDef.e == nil {
		return EcucModuleConfigurationValues{}, fmt.Errorf("%w: module configuration %s needs a definition",
			armodel.ErrInvalidValue, name)
	}
	e, err := pkg.CreateNamedElement("ECUC-MODULE-CONFIGURATION-VALUES", name)
	if err != nil {
		return EcucModuleConfigurationValues{}, err
	}
	_ = e.CreateSubElement("DEFINITION-REF").SetReferenceTarget(moduleDef.Element())
	values := c.e.GetOrCreateSubElement("ECUC-VALUES")
	cond := values.CreateSubElement("ECUC-MODULE-CONFIGURATION-VALUES-REF-CONDITIONAL")
	_ = cond.CreateSubElement("ECUC-MODULE-CONFIGURATION-VALUES-REF").SetReferenceTarget(e)
	return EcucModuleConfigurationValues{e: e}, nil
}

// ModuleConfigurations resolves the module configurations of the collection
// in the order they were added.
func (c EcucValueCollection) ModuleConfigurations() []EcucModuleConfigurationValues {
	m := armodel.ModelOf(c.e)
	return armodel.ResolveRefs(m, c.e.GetSubElement("ECUC-VALUES"),
		"ECUC-MODULE-CONFIGURATION-VALUES-REF", EcucModuleConfigurationValuesFromElement)
}

//##################################################################

// EcucModuleConfigurationValues is the configuration of one module,
// structured by the module's definition.
type EcucModuleConfigurationValues struct {
	e *arxml.Element
}

func EcucModuleConfigurationValuesFromElement(e *arxml.Element) (EcucModuleConfigurationValues, error) {
	if err := armodel.CheckElement(e, "ECUC-MODULE-CONFIGURATION-VALUES", "EcucModuleConfigurationValues"); err != nil {
		return EcucModuleConfigurationValues{}, err
	}
	return EcucModuleConfigurationValues{e: e}, nil
}

func (v EcucModuleConfigurationValues) Element() *arxml.Element {
	return v.e
}

func (v EcucModuleConfigurationValues) Name() string {
	return v.e.ItemName()
}

// Definition resolves the module definition of the configuration.
func (v EcucModuleConfigurationValues) Definition() (EcucModuleDef, error) {
	ref := v.e.GetSubElement("DEFINITION-REF")
	if ref == nil {
		return EcucModuleDef{}, fmt.Errorf("%w: configuration %s has no definition",
			armodel.ErrInvalidReference, v.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return EcucModuleDef{}, armodel.WrapEngineErr(err)
	}
	return EcucModuleDefFromElement(target)
}

// CreateContainerValue instantiates a container definition. The definition
// must belong to the configuration's module definition, and the definition's
// upper multiplicity bounds how many instances may exist; violations fail
// before anything is created.
func (v EcucModuleConfigurationValues) CreateContainerValue(name string, def EcucParamConfContainerDef) (EcucContainerValue, error) {
	if def.e == nil {
		return EcucContainerValue{}, fmt.Errorf("%w: container value %s needs a definition",
			armodel.ErrInvalidValue, name)
	}
	moduleDef, err := v.Definition()
	if err != nil {
		return EcucContainerValue{}, err
	}
	if def.e.NamedParent() != moduleDef.e {
		return EcucContainerValue{}, fmt.Errorf("%w: container definition %s does not belong to module %s",
			armodel.ErrInvalidValue, def.Name(), moduleDef.Name())
	}
	_, upper := def.Multiplicity()
	if upper != 0 {
		defPath := def.e.Path()
		count := uint64(0)
		for _, cv := range v.ContainerValues() {
			if ref := cv.e.GetSubElement("DEFINITION-REF"); ref != nil && ref.CharacterData() == defPath {
				count++
			}
		}
		if count >= upper {
			return EcucContainerValue{}, fmt.Errorf("%w: container definition %s allows at most %d instances",
				armodel.ErrInvalidValue, def.Name(), upper)
		}
	}
	containers := v.e.GetOrCreateSubElement("CONTAINERS")
	e, err := containers.CreateNamedSubElement("ECUC-CONTAINER-VALUE", name)
	if err != nil {
		return EcucContainerValue{}, armodel.WrapEngineErr(err)
	}
	if err := e.CreateSubElement("DEFINITION-REF").SetReferenceTarget(def.Element()); err != nil {
		containers.RemoveSubElement(e)
		return EcucContainerValue{}, armodel.WrapEngineErr(err)
	}
	return EcucContainerValue{e: e}, nil
}

// ContainerValues lists the container values of the configuration.
func (v EcucModuleConfigurationValues) ContainerValues() []EcucContainerValue {
	containers := v.e.GetSubElement("CONTAINERS")
	if containers == nil {
		return nil
	}
	var res []EcucContainerValue
	for _, c := range containers.SubElements() {
		if cv, err := EcucContainerValueFromElement(c); err == nil {
			res = append(res, cv)
		}
	}
	return res
}

//##################################################################

// EcucContainerValue is one instantiated container of a module
// configuration.
type EcucContainerValue struct {
	e *arxml.Element
}

func EcucContainerValueFromElement(e *arxml.Element) (EcucContainerValue, error) {
	if err := armodel.CheckElement(e, "ECUC-CONTAINER-VALUE", "EcucContainerValue"); err != nil {
		return EcucContainerValue{}, err
	}
	return EcucContainerValue{e: e}, nil
}

func (c EcucContainerValue) Element() *arxml.Element {
	return c.e
}

func (c EcucContainerValue) Name() string {
	return c.e.ItemName()
}

// Definition resolves the container definition of the value.
func (c EcucContainerValue) Definition() (EcucParamConfContainerDef, error) {
	ref := c.e.GetSubElement("DEFINITION-REF")
	if ref == nil {
		return EcucParamConfContainerDef{}, fmt.Errorf("%w: container value %s has no definition",
			armodel.ErrInvalidReference, c.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return EcucParamConfContainerDef{}, armodel.WrapEngineErr(err)
	}
	return EcucParamConfContainerDefFromElement(target)
}

func (c EcucContainerValue) checkParamDef(def armodel.Wrapper, name string) error {
	containerDef, err := c.Definition()
	if err != nil {
		return err
	}
	if def.Element().NamedParent() != containerDef.e {
		return fmt.Errorf("%w: parameter definition %s does not belong to container %s",
			armodel.ErrInvalidValue, name, containerDef.Name())
	}
	return nil
}

// CreateNumericalParamValue sets a boolean, integer or float parameter. The
// value is validated against the definition's kind and range before the
// parameter value is created.
func (c EcucContainerValue) CreateNumericalParamValue(def NumericalParamDef, value string) (EcucParameterValue, error) {
	if def == nil || def.Element() == nil {
		return EcucParameterValue{}, fmt.Errorf("%w: no parameter definition", armodel.ErrInvalidValue)
	}
	if err := c.checkParamDef(def, def.Name()); err != nil {
		return EcucParameterValue{}, err
	}
	if err := def.checkValue(value); err != nil {
		return EcucParameterValue{}, err
	}
	return c.writeParamValue("ECUC-NUMERICAL-PARAM-VALUE", def.Element(), value)
}

// CreateTextualParamValue sets a string parameter.
func (c EcucContainerValue) CreateTextualParamValue(def EcucTextualParamDef, value string) (EcucParameterValue, error) {
	if def.e == nil {
		return EcucParameterValue{}, fmt.Errorf("%w: no parameter definition", armodel.ErrInvalidValue)
	}
	if err := c.checkParamDef(def, def.Name()); err != nil {
		return EcucParameterValue{}, err
	}
	return c.writeParamValue("ECUC-TEXTUAL-PARAM-VALUE", def.Element(), value)
}

func (c EcucContainerValue) writeParamValue(elementName string, def *arxml.Element, value string) (EcucParameterValue, error) {
	values := c.e.GetOrCreateSubElement("PARAMETER-VALUES")
	e := values.CreateSubElement(elementName)
	if err := e.CreateSubElement("DEFINITION-REF").SetReferenceTarget(def); err != nil {
		values.RemoveSubElement(e)
		return EcucParameterValue{}, armodel.WrapEngineErr(err)
	}
	e.CreateSubElement("VALUE").SetCharacterData(value)
	return EcucParameterValue{e: e}, nil
}

// CreateReferenceValue sets a reference parameter. The target container must
// instantiate the destination definition declared by the reference
// definition; a mismatch fails before anything is created.
func (c EcucContainerValue) CreateReferenceValue(def EcucReferenceDef, target EcucContainerValue) (EcucReferenceValue, error) {
	if def.e == nil {
		return EcucReferenceValue{}, fmt.Errorf("%w: no reference definition", armodel.ErrInvalidValue)
	}
	if target.e == nil {
		return EcucReferenceValue{}, fmt.Errorf("%w: no reference target", armodel.ErrInvalidValue)
	}
	if err := c.checkParamDef(def, def.Name()); err != nil {
		return EcucReferenceValue{}, err
	}
	destination, err := def.Destination()
	if err != nil {
		return EcucReferenceValue{}, err
	}
	targetDef, err := target.Definition()
	if err != nil {
		return EcucReferenceValue{}, err
	}
	if targetDef != destination {
		return EcucReferenceValue{}, fmt.Errorf("%w: container %s instantiates %s, but reference %s requires %s",
			armodel.ErrInvalidValue, target.Name(), targetDef.Name(), def.Name(), destination.Name())
	}
	values := c.e.GetOrCreateSubElement("REFERENCE-VALUES")
	e := values.CreateSubElement("ECUC-REFERENCE-VALUE")
	if err := e.CreateSubElement("DEFINITION-REF").SetReferenceTarget(def.Element()); err != nil {
		values.RemoveSubElement(e)
		return EcucReferenceValue{}, armodel.WrapEngineErr(err)
	}
	if err := e.CreateSubElement("VALUE-REF").SetReferenceTarget(target.Element()); err != nil {
		values.RemoveSubElement(e)
		return EcucReferenceValue{}, armodel.WrapEngineErr(err)
	}
	return EcucReferenceValue{e: e}, nil
}

// ParameterValues lists the parameter values of the container.
func (c EcucContainerValue) ParameterValues() []EcucParameterValue {
	values := c.e.GetSubElement("PARAMETER-VALUES")
	if values == nil {
		return nil
	}
	var res []EcucParameterValue
	for _, pv := range values.SubElements() {
		switch pv.ElementName() {
		case "ECUC-NUMERICAL-PARAM-VALUE", "ECUC-TEXTUAL-PARAM-VALUE":
			res = append(res, EcucParameterValue{e: pv})
		}
	}
	return res
}

// ReferenceValues lists the reference values of the container.
func (c EcucContainerValue) ReferenceValues() []EcucReferenceValue {
	values := c.e.GetSubElement("REFERENCE-VALUES")
	if values == nil {
		return nil
	}
	var res []EcucReferenceValue
	for _, rv := range values.SubElements() {
		if rv.ElementName() == "ECUC-REFERENCE-VALUE" {
			res = append(res, EcucReferenceValue{e: rv})
		}
	}
	return res
}

//##################################################################

// EcucParameterValue is one numerical or textual parameter value.
type EcucParameterValue struct {
	e *arxml.Element
}

func (p EcucParameterValue) Element() *arxml.Element {
	return p.e
}

// Value returns the stored value text.
func (p EcucParameterValue) Value() string {
	v := p.e.GetSubElement("VALUE")
	if v == nil {
		return ""
	}
	return v.CharacterData()
}

// DefinitionPath returns the path of the parameter definition.
func (p EcucParameterValue) DefinitionPath() string {
	ref := p.e.GetSubElement("DEFINITION-REF")
	if ref == nil {
		return ""
	}
	return ref.CharacterData()
}

// EcucReferenceValue is one reference parameter value.
type EcucReferenceValue struct {
	e *arxml.Element
}

func (r EcucReferenceValue) Element() *arxml.Element {
	return r.e
}

// Target resolves the referenced container value.
func (r EcucReferenceValue) Target() (EcucContainerValue, error) {
	ref := r.e.GetSubElement("VALUE-REF")
	if ref == nil {
		return EcucContainerValue{}, fmt.Errorf("%w: reference value has no target", armodel.ErrInvalidReference)
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return EcucContainerValue{}, armodel.WrapEngineErr(err)
	}
	return EcucContainerValueFromElement(target)
}
