package ecucfg

import (
	"errors"
	"testing"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// buildCanIfDef declares a small CanIf style module definition: a channel
// container with parameters and a controller container channels reference.
func buildCanIfDef(t *testing.T, pkg armodel.ArPackage) (EcucModuleDef, EcucParamConfContainerDef, EcucParamConfContainerDef) {
	t.Helper()
	moduleDef, err := NewEcucModuleDef(pkg, "CanIf")
	if err != nil {
		t.Fatalf("NewEcucModuleDef: %v", err)
	}
	channelDef, err := moduleDef.CreateParamConfContainerDef("CanIfChannel", 0, 0)
	if err != nil {
		t.Fatalf("CreateParamConfContainerDef: %v", err)
	}
	ctrlDef, err := moduleDef.CreateParamConfContainerDef("CanIfCtrl", 1, 1)
	if err != nil {
		t.Fatalf("CreateParamConfContainerDef: %v", err)
	}
	return moduleDef, channelDef, ctrlDef
}

func TestModuleDef(t *testing.T) {
	m := armodel.NewModel(arxml.Autosar_00048)
	pkg, _ := m.GetOrCreatePackage("/Ecuc")
	moduleDef, channelDef, ctrlDef := buildCanIfDef(t, pkg)

	if lower, upper := channelDef.Multiplicity(); lower != 0 || upper != 0 {
		t.Errorf("Multiplicity() = %d, %d, want unbounded", lower, upper)
	}
	if lower, upper := ctrlDef.Multiplicity(); lower != 1 || upper != 1 {
		t.Errorf("Multiplicity() = %d, %d, want 1, 1", lower, upper)
	}
	if containers := moduleDef.Containers(); len(containers) != 2 {
		t.Errorf("Containers() = %d, want 2", len(containers))
	}
	if _, err := moduleDef.CreateParamConfContainerDef("Bad", 2, 1); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("lower > upper: got %v, want ErrInvalidValue", err)
	}
}

func TestParamDefs(t *testing.T) {
	m := armodel.NewModel(arxml.Autosar_00048)
	pkg, _ := m.GetOrCreatePackage("/Ecuc")
	_, channelDef, ctrlDef := buildCanIfDef(t, pkg)

	enabled, err := channelDef.CreateBooleanParamDef("Enabled")
	if err != nil {
		t.Fatalf("CreateBooleanParamDef: %v", err)
	}
	baudrate, err := channelDef.CreateIntegerParamDef("Baudrate", 125000, 1000000)
	if err != nil {
		t.Fatalf("CreateIntegerParamDef: %v", err)
	}
	if min, max := baudrate.Range(); min != 125000 || max != 1000000 {
		t.Errorf("Range() = %d, %d", min, max)
	}
	factor, err := channelDef.CreateFloatParamDef("SampleFactor", 0.0, 1.0)
	if err != nil {
		t.Fatalf("CreateFloatParamDef: %v", err)
	}
	if min, max := factor.Range(); min != 0.0 || max != 1.0 {
		t.Errorf("Range() = %g, %g", min, max)
	}
	if _, err := channelDef.CreateTextualParamDef("Label"); err != nil {
		t.Fatalf("CreateTextualParamDef: %v", err)
	}
	chRef, err := ctrlDef.CreateReferenceDef("ChannelRef", channelDef)
	if err != nil {
		t.Fatalf("CreateReferenceDef: %v", err)
	}
	dest, err := chRef.Destination()
	if err != nil {
		t.Fatalf("Destination: %v", err)
	}
	if dest != channelDef {
		t.Errorf("Destination() does not resolve to CanIfChannel")
	}

	if err := enabled.checkValue("true"); err != nil {
		t.Errorf("checkValue(true): %v", err)
	}
	if err := enabled.checkValue("yes"); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("checkValue(yes): got %v, want ErrInvalidValue", err)
	}
	if err := baudrate.checkValue("500000"); err != nil {
		t.Errorf("checkValue(500000): %v", err)
	}
	if err := baudrate.checkValue("2000000"); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("checkValue out of range: got %v, want ErrInvalidValue", err)
	}
	if err := baudrate.checkValue("fast"); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("checkValue(fast): got %v, want ErrInvalidValue", err)
	}
	if err := factor.checkValue("0.5"); err != nil {
		t.Errorf("checkValue(0.5): %v", err)
	}
	if err := factor.checkValue("1.5"); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("checkValue(1.5): got %v, want ErrInvalidValue", err)
	}

	if _, err := channelDef.CreateIntegerParamDef("Bad", 10, 5); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("min > max: got %v, want ErrInvalidValue", err)
	}
	if _, err := ctrlDef.CreateReferenceDef("Bad", EcucParamConfContainerDef{}); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("reference without destination: got %v, want ErrInvalidValue", err)
	}
}

func TestValueCollection(t *testing.T) {
	m := armodel.NewModel(arxml.Autosar_00048)
	defPkg, _ := m.GetOrCreatePackage("/EcucDefs")
	valPkg, _ := m.GetOrCreatePackage("/EcucValues")
	moduleDef, _, _ := buildCanIfDef(t, defPkg)

	collection, err := NewEcucValueCollection(valPkg, "EcuConfig")
	if err != nil {
		t.Fatalf("NewEcucValueCollection: %v", err)
	}
	config, err := collection.CreateModuleConfiguration(valPkg, "CanIfConfig", moduleDef)
	if err != nil {
		t.Fatalf("CreateModuleConfiguration: %v", err)
	}
	gotDef, err := config.Definition()
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}
	if gotDef != moduleDef {
		t.Errorf("Definition() does not resolve to CanIf")
	}
	configs := collection.ModuleConfigurations()
	if len(configs) != 1 || configs[0] != config {
		t.Errorf("ModuleConfigurations() wrong: %v", configs)
	}
	if _, err := collection.CreateModuleConfiguration(valPkg, "Bad", EcucModuleDef{}); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("configuration without definition: got %v, want ErrInvalidValue", err)
	}
}

func TestContainerMultiplicity(t *testing.T) {
	m := armodel.NewModel(arxml.Autosar_00048)
	defPkg, _ := m.GetOrCreatePackage("/EcucDefs")
	valPkg, _ := m.GetOrCreatePackage("/EcucValues")
	moduleDef, channelDef, ctrlDef := buildCanIfDef(t, defPkg)

	collection, _ := NewEcucValueCollection(valPkg, "EcuConfig")
	config, _ := collection.CreateModuleConfiguration(valPkg, "CanIfConfig", moduleDef)

	// CanIfChannel is unbounded, CanIfCtrl allows a single instance.
	if _, err := config.CreateContainerValue("Channel0", channelDef); err != nil {
		t.Fatalf("CreateContainerValue: %v", err)
	}
	if _, err := config.CreateContainerValue("Channel1", channelDef); err != nil {
		t.Fatalf("CreateContainerValue: %v", err)
	}
	if _, err := config.CreateContainerValue("Ctrl0", ctrlDef); err != nil {
		t.Fatalf("CreateContainerValue: %v", err)
	}
	before, _ := arxml.DumpYAML(m.RootElement())
	if _, err := config.CreateContainerValue("Ctrl1", ctrlDef); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("second CanIfCtrl instance: got %v, want ErrInvalidValue", err)
	}
	after, _ := arxml.DumpYAML(m.RootElement())
	if d := arxml.Diff(before, after); d != "" {
		t.Errorf("rejected container value mutated the tree:\n%s", d)
	}
	if values := config.ContainerValues(); len(values) != 3 {
		t.Errorf("ContainerValues() = %d, want 3", len(values))
	}

	foreignDef, _ := NewEcucModuleDef(defPkg, "CanSm")
	foreignContainer, _ := foreignDef.CreateParamConfContainerDef("CanSmManager", 0, 0)
	if _, err := config.CreateContainerValue("Bad", foreignContainer); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("container of foreign module: got %v, want ErrInvalidValue", err)
	}
}

func TestParamValues(t *testing.T) {
	m := armodel.NewModel(arxml.Autosar_00048)
	defPkg, _ := m.GetOrCreatePackage("/EcucDefs")
	valPkg, _ := m.GetOrCreatePackage("/EcucValues")
	moduleDef, channelDef, ctrlDef := buildCanIfDef(t, defPkg)
	baudrate, _ := channelDef.CreateIntegerParamDef("Baudrate", 125000, 1000000)
	label, _ := channelDef.CreateTextualParamDef("Label")
	ctrlEnabled, _ := ctrlDef.CreateBooleanParamDef("Enabled")

	collection, _ := NewEcucValueCollection(valPkg, "EcuConfig")
	config, _ := collection.CreateModuleConfiguration(valPkg, "CanIfConfig", moduleDef)
	channel, _ := config.CreateContainerValue("Channel0", channelDef)

	pv, err := channel.CreateNumericalParamValue(baudrate, "500000")
	if err != nil {
		t.Fatalf("CreateNumericalParamValue: %v", err)
	}
	if got := pv.Value(); got != "500000" {
		t.Errorf("Value() = %q", got)
	}
	if got := pv.DefinitionPath(); got != baudrate.Element().Path() {
		t.Errorf("DefinitionPath() = %q", got)
	}
	tv, err := channel.CreateTextualParamValue(label, "Body CAN")
	if err != nil {
		t.Fatalf("CreateTextualParamValue: %v", err)
	}
	if got := tv.Value(); got != "Body CAN" {
		t.Errorf("Value() = %q", got)
	}
	if values := channel.ParameterValues(); len(values) != 2 {
		t.Errorf("ParameterValues() = %d, want 2", len(values))
	}

	before, _ := arxml.DumpYAML(m.RootElement())
	if _, err := channel.CreateNumericalParamValue(baudrate, "2000000"); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("out of range value: got %v, want ErrInvalidValue", err)
	}
	if _, err := channel.CreateNumericalParamValue(ctrlEnabled, "true"); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("parameter of foreign container: got %v, want ErrInvalidValue", err)
	}
	after, _ := arxml.DumpYAML(m.RootElement())
	if d := arxml.Diff(before, after); d != "" {
		t.Errorf("rejected parameter values mutated the tree:\n%s", d)
	}
}

func TestReferenceValues(t *testing.T) {
	m := armodel.NewModel(arxml.Autosar_00048)
	defPkg, _ := m.GetOrCreatePackage("/EcucDefs")
	valPkg, _ := m.GetOrCreatePackage("/EcucValues")
	moduleDef, channelDef, ctrlDef := buildCanIfDef(t, defPkg)
	chRef, _ := ctrlDef.CreateReferenceDef("ChannelRef", channelDef)

	collection, _ := NewEcucValueCollection(valPkg, "EcuConfig")
	config, _ := collection.CreateModuleConfiguration(valPkg, "CanIfConfig", moduleDef)
	channel, _ := config.CreateContainerValue("Channel0", channelDef)
	ctrl, _ := config.CreateContainerValue("Ctrl0", ctrlDef)

	rv, err := ctrl.CreateReferenceValue(chRef, channel)
	if err != nil {
		t.Fatalf("CreateReferenceValue: %v", err)
	}
	target, err := rv.Target()
	if err != nil {
		t.Fatalf("Target: %v", err)
	}
	if target != channel {
		t.Errorf("Target() does not resolve to Channel0")
	}
	if values := ctrl.ReferenceValues(); len(values) != 1 || values[0] != rv {
		t.Errorf("ReferenceValues() wrong: %v", values)
	}

	// The target must instantiate the destination declared by the
	// reference definition.
	before, _ := arxml.DumpYAML(m.RootElement())
	if _, err := ctrl.CreateReferenceValue(chRef, ctrl); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("wrong target definition: got %v, want ErrInvalidValue", err)
	}
	after, _ := arxml.DumpYAML(m.RootElement())
	if d := arxml.Diff(before, after); d != "" {
		t.Errorf("rejected reference value mutated the tree:\n%s", d)
	}
}
