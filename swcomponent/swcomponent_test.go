package swcomponent

import (
	"errors"
	"testing"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
	"github.com/openarkit/armodel/datatype"
)

func newTestPackage(t *testing.T) (*armodel.Model, armodel.ArPackage) {
	t.Helper()
	m := armodel.NewModel(arxml.Autosar_00048)
	pkg, err := m.GetOrCreatePackage("/Swc")
	if err != nil {
		t.Fatalf("GetOrCreatePackage: %v", err)
	}
	return m, pkg
}

func TestComponentPorts(t *testing.T) {
	_, pkg := newTestPackage(t)
	iface, err := NewSenderReceiverInterface(pkg, "SpeedIf")
	if err != nil {
		t.Fatalf("NewSenderReceiverInterface: %v", err)
	}
	comp, err := NewApplicationSwComponentType(pkg, "SpeedSensor")
	if err != nil {
		t.Fatalf("NewApplicationSwComponentType: %v", err)
	}

	pport, err := comp.CreatePPortPrototype("SpeedOut", iface)
	if err != nil {
		t.Fatalf("CreatePPortPrototype: %v", err)
	}
	rport, err := comp.CreateRPortPrototype("SpeedIn", iface)
	if err != nil {
		t.Fatalf("CreateRPortPrototype: %v", err)
	}

	got, err := pport.Interface()
	if err != nil {
		t.Fatalf("Interface: %v", err)
	}
	if got != iface {
		t.Errorf("Interface() does not resolve to SpeedIf")
	}
	owner, err := rport.ComponentType()
	if err != nil {
		t.Fatalf("ComponentType: %v", err)
	}
	if owner.Element() != comp.Element() {
		t.Errorf("ComponentType() does not resolve to SpeedSensor")
	}

	ports := comp.Ports()
	if len(ports) != 2 || ports[0].Name() != "SpeedOut" || ports[1].Name() != "SpeedIn" {
		t.Errorf("Ports() wrong: %v", ports)
	}

	if _, err := comp.CreatePPortPrototype("SpeedOut", iface); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("duplicate port name: got %v, want ErrDuplicateName", err)
	}
	if _, err := comp.CreatePPortPrototype("NoIf", nil); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("port without interface: got %v, want ErrInvalidValue", err)
	}
}

func TestSenderReceiverInterface(t *testing.T) {
	_, pkg := newTestPackage(t)
	speed, _ := datatype.NewApplicationPrimitiveDataType(pkg, "Speed", datatype.CategoryValue)
	iface, _ := NewSenderReceiverInterface(pkg, "SpeedIf")

	de, err := iface.CreateDataElement("speed", speed)
	if err != nil {
		t.Fatalf("CreateDataElement: %v", err)
	}
	dtype, err := de.Type()
	if err != nil {
		t.Fatalf("Type: %v", err)
	}
	if dtype.Element() != speed.Element() {
		t.Errorf("Type() does not resolve to Speed")
	}
	if elems := iface.DataElements(); len(elems) != 1 || elems[0] != de {
		t.Errorf("DataElements() wrong: %v", elems)
	}
	if _, err := iface.CreateDataElement("speed", speed); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("duplicate data element: got %v, want ErrDuplicateName", err)
	}
}

func TestClientServerInterface(t *testing.T) {
	_, pkg := newTestPackage(t)
	val, _ := datatype.NewApplicationPrimitiveDataType(pkg, "Value", datatype.CategoryValue)
	iface, _ := NewClientServerInterface(pkg, "CalibrationIf")

	op, err := iface.CreateOperation("ReadValue")
	if err != nil {
		t.Fatalf("CreateOperation: %v", err)
	}
	if _, err := op.CreateArgument("channel", val, DirectionIn); err != nil {
		t.Fatalf("CreateArgument: %v", err)
	}
	out, err := op.CreateArgument("result", val, DirectionOut)
	if err != nil {
		t.Fatalf("CreateArgument: %v", err)
	}
	if dir, ok := out.Direction(); !ok || dir != DirectionOut {
		t.Errorf("Direction() = %v, %v", dir, ok)
	}
	args := op.Arguments()
	if len(args) != 2 || args[0].Name() != "channel" || args[1].Name() != "result" {
		t.Errorf("Arguments() wrong order: %v", args)
	}
	if ops := iface.Operations(); len(ops) != 1 || ops[0] != op {
		t.Errorf("Operations() wrong: %v", ops)
	}
	if _, err := op.CreateArgument("bad", nil, DirectionIn); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("argument without type: got %v, want ErrInvalidValue", err)
	}
}

func TestInternalBehavior(t *testing.T) {
	_, pkg := newTestPackage(t)
	speed, _ := datatype.NewApplicationPrimitiveDataType(pkg, "Speed", datatype.CategoryValue)
	srIface, _ := NewSenderReceiverInterface(pkg, "SpeedIf")
	dataElem, _ := srIface.CreateDataElement("speed", speed)
	csIface, _ := NewClientServerInterface(pkg, "CalibrationIf")
	op, _ := csIface.CreateOperation("ReadValue")

	comp, _ := NewApplicationSwComponentType(pkg, "Controller")
	pport, _ := comp.CreatePPortPrototype("Calibration", csIface)
	rport, _ := comp.CreateRPortPrototype("SpeedIn", srIface)

	behavior, err := comp.CreateSwcInternalBehavior("ControllerBehavior")
	if err != nil {
		t.Fatalf("CreateSwcInternalBehavior: %v", err)
	}
	if _, err := comp.CreateSwcInternalBehavior("Another"); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("second behavior: got %v, want ErrDuplicateName", err)
	}
	if got, ok := comp.SwcInternalBehavior(); !ok || got != behavior {
		t.Errorf("SwcInternalBehavior() = %v, %v", got, ok)
	}

	runnable, err := behavior.CreateRunnableEntity("MainCyclic")
	if err != nil {
		t.Fatalf("CreateRunnableEntity: %v", err)
	}
	runnable.SetSymbol("Controller_MainCyclic")
	if got := runnable.Symbol(); got != "Controller_MainCyclic" {
		t.Errorf("Symbol() = %q", got)
	}

	timing, err := behavior.CreateTimingEvent("Cyclic10ms", runnable, 0.01)
	if err != nil {
		t.Fatalf("CreateTimingEvent: %v", err)
	}
	if p, ok := timing.Period(); !ok || p != 0.01 {
		t.Errorf("Period() = %v, %v", p, ok)
	}
	if _, err := behavior.CreateTimingEvent("Bad", runnable, 0); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("zero period: got %v, want ErrInvalidValue", err)
	}

	if _, err := behavior.CreateInitEvent("Startup", runnable); err != nil {
		t.Fatalf("CreateInitEvent: %v", err)
	}
	oiEvent, err := behavior.CreateOperationInvokedEvent("OnReadValue", runnable, pport, op)
	if err != nil {
		t.Fatalf("CreateOperationInvokedEvent: %v", err)
	}
	gotOp, err := oiEvent.Operation()
	if err != nil {
		t.Fatalf("Operation: %v", err)
	}
	if gotOp != op {
		t.Errorf("Operation() does not resolve to ReadValue")
	}
	drEvent, err := behavior.CreateDataReceivedEvent("OnSpeed", runnable, rport, dataElem)
	if err != nil {
		t.Fatalf("CreateDataReceivedEvent: %v", err)
	}
	gotElem, err := drEvent.DataElement()
	if err != nil {
		t.Fatalf("DataElement: %v", err)
	}
	if gotElem != dataElem {
		t.Errorf("DataElement() does not resolve to speed")
	}

	events := behavior.Events()
	if len(events) != 4 {
		t.Fatalf("Events() = %d events, want 4", len(events))
	}
	gotRunnable, err := events[0].Runnable()
	if err != nil {
		t.Fatalf("Runnable: %v", err)
	}
	if gotRunnable != runnable {
		t.Errorf("Runnable() does not resolve to MainCyclic")
	}

	other, _ := NewApplicationSwComponentType(pkg, "Other")
	otherBehavior, _ := other.CreateSwcInternalBehavior("OtherBehavior")
	foreign, _ := otherBehavior.CreateRunnableEntity("Foreign")
	if _, err := behavior.CreateTimingEvent("BadRunnable", foreign, 0.1); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("foreign runnable: got %v, want ErrInvalidValue", err)
	}
}

func TestOperationInvokedEventUnresolvableTarget(t *testing.T) {
	m, pkg := newTestPackage(t)
	csIface, _ := NewClientServerInterface(pkg, "CalibrationIf")
	op, _ := csIface.CreateOperation("ReadValue")
	comp, _ := NewApplicationSwComponentType(pkg, "Controller")
	behavior, _ := comp.CreateSwcInternalBehavior("ControllerBehavior")
	runnable, _ := behavior.CreateRunnableEntity("MainCyclic")

	// A port element outside any naming scope cannot be referenced; the
	// rejected event must not stay in the behavior.
	stray, err := PPortPrototypeFromElement(m.RootElement().CreateSubElement("P-PORT-PROTOTYPE"))
	if err != nil {
		t.Fatalf("PPortPrototypeFromElement: %v", err)
	}
	before, _ := arxml.DumpYAML(comp.Element())
	if _, err := behavior.CreateOperationInvokedEvent("OnReadValue", runnable, stray, op); !errors.Is(err, armodel.ErrInvalidReference) {
		t.Errorf("stray port: got %v, want ErrInvalidReference", err)
	}
	after, _ := arxml.DumpYAML(comp.Element())
	if d := arxml.Diff(before, after); d != "" {
		t.Errorf("rejected event mutated the component:\n%s", d)
	}
	if got := len(behavior.Events()); got != 0 {
		t.Errorf("Events() = %d, want 0", got)
	}
}

func TestComposition(t *testing.T) {
	m, pkg := newTestPackage(t)
	iface, _ := NewSenderReceiverInterface(pkg, "SpeedIf")
	sensor, _ := NewApplicationSwComponentType(pkg, "SpeedSensor")
	sensorOut, _ := sensor.CreatePPortPrototype("SpeedOut", iface)
	display, _ := NewApplicationSwComponentType(pkg, "Display")
	displayIn, _ := display.CreateRPortPrototype("SpeedIn", iface)

	comp, err := NewCompositionSwComponentType(pkg, "Vehicle")
	if err != nil {
		t.Fatalf("NewCompositionSwComponentType: %v", err)
	}
	sensorProto, err := comp.CreateComponent("Sensor", sensor)
	if err != nil {
		t.Fatalf("CreateComponent: %v", err)
	}
	displayProto, err := comp.CreateComponent("Display", display)
	if err != nil {
		t.Fatalf("CreateComponent: %v", err)
	}
	if _, err := comp.CreateComponent("Self", comp); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("self containment: got %v, want ErrInvalidValue", err)
	}
	ctype, err := sensorProto.ComponentType()
	if err != nil {
		t.Fatalf("ComponentType: %v", err)
	}
	if ctype.Element() != sensor.Element() {
		t.Errorf("ComponentType() does not resolve to SpeedSensor")
	}
	if comps := comp.Components(); len(comps) != 2 {
		t.Errorf("Components() = %d prototypes, want 2", len(comps))
	}

	conn, err := comp.CreateAssemblyConnector("SpeedLink", sensorProto, sensorOut, displayProto, displayIn)
	if err != nil {
		t.Fatalf("CreateAssemblyConnector: %v", err)
	}
	gotP, err := conn.PPort()
	if err != nil {
		t.Fatalf("PPort: %v", err)
	}
	if gotP != sensorOut {
		t.Errorf("PPort() does not resolve to SpeedOut")
	}
	gotR, err := conn.RPort()
	if err != nil {
		t.Fatalf("RPort: %v", err)
	}
	if gotR != displayIn {
		t.Errorf("RPort() does not resolve to SpeedIn")
	}

	// Invalid connectors fail before anything is written.
	otherComp, _ := NewCompositionSwComponentType(pkg, "OtherVehicle")
	foreignProto, _ := otherComp.CreateComponent("Foreign", sensor)
	otherIface, _ := NewSenderReceiverInterface(pkg, "OtherIf")
	displayOther, _ := display.CreateRPortPrototype("OtherIn", otherIface)

	before, _ := arxml.DumpYAML(m.RootElement())
	if _, err := comp.CreateAssemblyConnector("BadProto", foreignProto, sensorOut, displayProto, displayIn); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("foreign prototype: got %v, want ErrInvalidValue", err)
	}
	if _, err := comp.CreateAssemblyConnector("BadPort", displayProto, sensorOut, sensorProto, displayIn); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("port of wrong prototype: got %v, want ErrInvalidValue", err)
	}
	if _, err := comp.CreateAssemblyConnector("BadIf", sensorProto, sensorOut, displayProto, displayOther); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("interface mismatch: got %v, want ErrInvalidValue", err)
	}
	after, _ := arxml.DumpYAML(m.RootElement())
	if d := arxml.Diff(before, after); d != "" {
		t.Errorf("rejected connectors mutated the tree:\n%s", d)
	}
}

func TestDelegationConnector(t *testing.T) {
	_, pkg := newTestPackage(t)
	iface, _ := NewSenderReceiverInterface(pkg, "SpeedIf")
	sensor, _ := NewApplicationSwComponentType(pkg, "SpeedSensor")
	sensorOut, _ := sensor.CreatePPortPrototype("SpeedOut", iface)
	sensorIn, _ := sensor.CreateRPortPrototype("RawIn", iface)

	comp, _ := NewCompositionSwComponentType(pkg, "Vehicle")
	proto, _ := comp.CreateComponent("Sensor", sensor)
	outer, _ := comp.CreatePPortPrototype("VehicleSpeed", iface)

	conn, err := comp.CreateDelegationConnector("SpeedDelegation", proto, sensorOut, outer)
	if err != nil {
		t.Fatalf("CreateDelegationConnector: %v", err)
	}
	inner, err := conn.InnerPort()
	if err != nil {
		t.Fatalf("InnerPort: %v", err)
	}
	if inner.Element() != sensorOut.Element() {
		t.Errorf("InnerPort() does not resolve to SpeedOut")
	}
	gotOuter, err := conn.OuterPort()
	if err != nil {
		t.Fatalf("OuterPort: %v", err)
	}
	if gotOuter.Element() != outer.Element() {
		t.Errorf("OuterPort() does not resolve to VehicleSpeed")
	}

	if _, err := comp.CreateDelegationConnector("BadDirection", proto, sensorIn, outer); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("direction mismatch: got %v, want ErrInvalidValue", err)
	}
	if _, err := comp.CreateDelegationConnector("BadOuter", proto, sensorOut, sensorOut); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("outer port not on composition: got %v, want ErrInvalidValue", err)
	}
}
