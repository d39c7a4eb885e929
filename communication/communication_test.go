package communication

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
	"github.com/openarkit/armodel/datatype"
)

func newTestSystem(t *testing.T, version arxml.Version) (*armodel.Model, armodel.ArPackage, System) {
	t.Helper()
	m := armodel.NewModel(version)
	pkg, err := m.GetOrCreatePackage("/Clusters")
	if err != nil {
		t.Fatalf("GetOrCreatePackage: %v", err)
	}
	sys, err := NewSystem(pkg, "Sys", SystemDescription)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	return m, pkg, sys
}

func TestEthernetSystemScenario(t *testing.T) {
	_, pkg, sys := newTestSystem(t, arxml.Autosar_00048)

	cluster, err := sys.CreateEthernetCluster("EthCluster", pkg)
	if err != nil {
		t.Fatalf("CreateEthernetCluster: %v", err)
	}
	vlan := &EthernetVlanInfo{VlanName: "VLAN_33", VlanID: 33}
	channel, err := cluster.CreatePhysicalChannel("Channel33", vlan)
	if err != nil {
		t.Fatalf("CreatePhysicalChannel: %v", err)
	}

	ecu, err := sys.CreateEcuInstance("Ecu_A", pkg)
	if err != nil {
		t.Fatalf("CreateEcuInstance: %v", err)
	}
	ctrl, err := ecu.CreateEthernetCommunicationController("EthCtrl", "ab:cd:ef:01:02:03")
	if err != nil {
		t.Fatalf("CreateEthernetCommunicationController: %v", err)
	}
	if mac, ok := ctrl.MacUnicastAddress(); !ok || mac != "ab:cd:ef:01:02:03" {
		t.Errorf("MacUnicastAddress() = %q, %v", mac, ok)
	}

	if _, err := ctrl.ConnectPhysicalChannel("EthConn", channel); err != nil {
		t.Fatalf("ConnectPhysicalChannel: %v", err)
	}

	connected := ctrl.ConnectedChannels()
	if len(connected) != 1 {
		t.Fatalf("ConnectedChannels() returned %d channels, want 1", len(connected))
	}
	if connected[0] != channel {
		t.Errorf("connected channel is not the created channel")
	}
	got, ok := connected[0].VlanInfo()
	if !ok {
		t.Fatalf("connected channel has no VLAN info")
	}
	if diff := cmp.Diff(*vlan, got); diff != "" {
		t.Errorf("VlanInfo (-want +got):\n%s", diff)
	}

	clusters := sys.Clusters()
	if len(clusters) != 1 || clusters[0].Name() != "EthCluster" {
		t.Errorf("Clusters() = %v, want [EthCluster]", clusters)
	}
	ecus := sys.EcuInstances()
	if len(ecus) != 1 || ecus[0].Name() != "Ecu_A" {
		t.Errorf("EcuInstances() = %v, want [Ecu_A]", ecus)
	}
}

func TestEthernetVlanUniqueness(t *testing.T) {
	m, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	cluster, _ := sys.CreateEthernetCluster("EthCluster", pkg)
	if _, err := cluster.CreatePhysicalChannel("Untagged", nil); err != nil {
		t.Fatalf("untagged channel: %v", err)
	}
	if _, err := cluster.CreatePhysicalChannel("Vlan33", &EthernetVlanInfo{VlanName: "V33", VlanID: 33}); err != nil {
		t.Fatalf("VLAN channel: %v", err)
	}

	before, _ := arxml.DumpYAML(m.RootElement())
	if _, err := cluster.CreatePhysicalChannel("Untagged2", nil); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("second untagged channel: got %v, want ErrDuplicateName", err)
	}
	if _, err := cluster.CreatePhysicalChannel("Vlan33b", &EthernetVlanInfo{VlanName: "V33b", VlanID: 33}); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("duplicate VLAN id: got %v, want ErrDuplicateName", err)
	}
	after, _ := arxml.DumpYAML(m.RootElement())
	if d := arxml.Diff(before, after); d != "" {
		t.Errorf("failed channel creation mutated the tree:\n%s", d)
	}

	if got := len(cluster.PhysicalChannels()); got != 2 {
		t.Errorf("PhysicalChannels() = %d channels, want 2", got)
	}
}

func TestSetVlanInfoNameConflictKeepsOldVlan(t *testing.T) {
	m, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	cluster, _ := sys.CreateEthernetCluster("EthCluster", pkg)
	channel, err := cluster.CreatePhysicalChannel("Chan", &EthernetVlanInfo{VlanName: "V1", VlanID: 1})
	if err != nil {
		t.Fatalf("CreatePhysicalChannel: %v", err)
	}
	ss, _ := sys.CreateSystemSignal("SS", pkg)
	sig, _ := sys.CreateISignal("Sig", pkg, 8, ss)
	pdu, _ := sys.CreateISignalIPdu("Pdu", pkg, 8)
	if _, err := pdu.MapSignal(sig, 0, armodel.MostSignificantByteLast, nil); err != nil {
		t.Fatalf("MapSignal: %v", err)
	}
	if _, err := channel.TriggerPdu(pdu); err != nil {
		t.Fatalf("TriggerPdu: %v", err)
	}

	// "PT_Pdu" is taken by the PDU triggering in the channel scope; the
	// rejected update must keep the existing VLAN element.
	before, _ := arxml.DumpYAML(m.RootElement())
	err = channel.SetVlanInfo(&EthernetVlanInfo{VlanName: "PT_Pdu", VlanID: 2})
	if !errors.Is(err, armodel.ErrDuplicateName) {
		t.Fatalf("SetVlanInfo(PT_Pdu): got %v, want ErrDuplicateName", err)
	}
	after, _ := arxml.DumpYAML(m.RootElement())
	if d := arxml.Diff(before, after); d != "" {
		t.Errorf("rejected SetVlanInfo mutated the tree:\n%s", d)
	}
	got, ok := channel.VlanInfo()
	if !ok || got.VlanName != "V1" || got.VlanID != 1 {
		t.Errorf("VlanInfo() = %v, %v, want V1/1", got, ok)
	}

	// Keeping the name while changing the id is not a conflict.
	if err := channel.SetVlanInfo(&EthernetVlanInfo{VlanName: "V1", VlanID: 5}); err != nil {
		t.Fatalf("SetVlanInfo(V1, 5): %v", err)
	}
	if got, ok := channel.VlanInfo(); !ok || got.VlanID != 5 {
		t.Errorf("VlanInfo() after update = %v, %v, want V1/5", got, ok)
	}
}

func TestVlanInfoOutOfRangeIdentifier(t *testing.T) {
	_, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	cluster, _ := sys.CreateEthernetCluster("EthCluster", pkg)
	channel, _ := cluster.CreatePhysicalChannel("Chan", &EthernetVlanInfo{VlanName: "V1", VlanID: 1})

	// A VLAN identifier written through the engine may exceed 16 bits.
	channel.Element().GetSubElement("VLAN").
		GetSubElement("VLAN-IDENTIFIER").
		SetCharacterData("70000")
	if got, ok := channel.VlanInfo(); ok {
		t.Errorf("VlanInfo() = %v, true, want ok == false for out of range identifier", got)
	}
}

func TestCanClusterSingleChannel(t *testing.T) {
	_, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	cluster, err := sys.CreateCanCluster("Can", pkg, 500000)
	if err != nil {
		t.Fatalf("CreateCanCluster: %v", err)
	}
	if br, ok := cluster.Baudrate(); !ok || br != 500000 {
		t.Errorf("Baudrate() = %d, %v", br, ok)
	}
	if _, err := cluster.CreatePhysicalChannel("CanChannel"); err != nil {
		t.Fatalf("CreatePhysicalChannel: %v", err)
	}
	if _, err := cluster.CreatePhysicalChannel("CanChannel2"); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("second CAN channel: got %v, want ErrDuplicateName", err)
	}
	ch, ok := cluster.PhysicalChannel()
	if !ok || ch.Name() != "CanChannel" {
		t.Errorf("PhysicalChannel() = %v, %v", ch, ok)
	}
	back, err := ch.Cluster()
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if back != cluster {
		t.Errorf("channel does not navigate back to its cluster")
	}
}

func TestCanBaudrateGating(t *testing.T) {
	_, pkg, sys := newTestSystem(t, arxml.Autosar_4_1_3)
	cluster, _ := sys.CreateCanCluster("Can", pkg, 500000)
	if err := cluster.SetCanFdBaudrate(2000000); !errors.Is(err, armodel.ErrVersionNotSupported) {
		t.Errorf("CAN FD on 4.1.3: got %v, want ErrVersionNotSupported", err)
	}
	if _, ok := cluster.CanFdBaudrate(); ok {
		t.Errorf("rejected CAN FD baudrate was written")
	}

	_, pkg2, sys2 := newTestSystem(t, arxml.Autosar_00050)
	cluster2, _ := sys2.CreateCanCluster("Can", pkg2, 500000)
	if err := cluster2.SetCanFdBaudrate(2000000); err != nil {
		t.Fatalf("CAN FD on 00050: %v", err)
	}
	if err := cluster2.SetCanXlBaudrate(10000000); err != nil {
		t.Fatalf("CAN XL on 00050: %v", err)
	}
	if br, ok := cluster2.CanXlBaudrate(); !ok || br != 10000000 {
		t.Errorf("CanXlBaudrate() = %d, %v", br, ok)
	}
}

func TestCanBaudrateOutOfRange(t *testing.T) {
	_, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	cluster, _ := sys.CreateCanCluster("Can", pkg, 500000)

	// A baudrate written through the engine may exceed 32 bits.
	cluster.Element().GetSubElement("CAN-CLUSTER-VARIANTS").
		GetSubElement("CAN-CLUSTER-CONDITIONAL").
		GetSubElement("BAUDRATE").
		SetCharacterData("4294967296")
	if br, ok := cluster.Baudrate(); ok {
		t.Errorf("Baudrate() = %d, true, want ok == false for out of range value", br)
	}
}

func TestEcuControllerValidation(t *testing.T) {
	m, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	ecu, _ := sys.CreateEcuInstance("Ecu_A", pkg)

	before, _ := arxml.DumpYAML(m.RootElement())
	if _, err := ecu.CreateEthernetCommunicationController("Bad", "not-a-mac"); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("malformed MAC: got %v, want ErrInvalidValue", err)
	}
	after, _ := arxml.DumpYAML(m.RootElement())
	if d := arxml.Diff(before, after); d != "" {
		t.Errorf("rejected controller mutated the tree:\n%s", d)
	}

	canCluster, _ := sys.CreateCanCluster("Can", pkg, 500000)
	channel, _ := canCluster.CreatePhysicalChannel("CanChannel")
	ctrl, err := ecu.CreateCanCommunicationController("CanCtrl")
	if err != nil {
		t.Fatalf("CreateCanCommunicationController: %v", err)
	}
	if _, err := ctrl.ConnectPhysicalChannel("CanConn", channel); err != nil {
		t.Fatalf("ConnectPhysicalChannel: %v", err)
	}
	if _, err := ctrl.ConnectPhysicalChannel("CanConn2", channel); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("second CAN connection: got %v, want ErrDuplicateName", err)
	}
	if got := len(ecu.CommunicationControllers()); got != 2 {
		t.Errorf("CommunicationControllers() = %d, want 2", got)
	}
}

func TestEthernetCrossClusterConnect(t *testing.T) {
	_, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	clusterA, _ := sys.CreateEthernetCluster("ClusterA", pkg)
	chA, _ := clusterA.CreatePhysicalChannel("ChanA", &EthernetVlanInfo{VlanName: "VA", VlanID: 1})
	clusterB, _ := sys.CreateEthernetCluster("ClusterB", pkg)
	chB, _ := clusterB.CreatePhysicalChannel("ChanB", &EthernetVlanInfo{VlanName: "VB", VlanID: 2})

	ecu, _ := sys.CreateEcuInstance("Ecu_A", pkg)
	ctrl, _ := ecu.CreateEthernetCommunicationController("EthCtrl", "")
	if _, err := ctrl.ConnectPhysicalChannel("ConnA", chA); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	if _, err := ctrl.ConnectPhysicalChannel("ConnA2", chA); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("double connect: got %v, want ErrDuplicateName", err)
	}
	if _, err := ctrl.ConnectPhysicalChannel("ConnB", chB); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("cross-cluster connect: got %v, want ErrInvalidValue", err)
	}
	if got := len(ctrl.ConnectedChannels()); got != 1 {
		t.Errorf("ConnectedChannels() = %d, want 1", got)
	}
}

func TestMapSignal(t *testing.T) {
	m, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	ss1, _ := sys.CreateSystemSignal("SS1", pkg)
	sig1, _ := sys.CreateISignal("Sig1", pkg, 8, ss1)
	ss2, _ := sys.CreateSystemSignal("SS2", pkg)
	sig2, _ := sys.CreateISignal("Sig2", pkg, 16, ss2)
	pdu, err := sys.CreateISignalIPdu("Pdu", pkg, 4)
	if err != nil {
		t.Fatalf("CreateISignalIPdu: %v", err)
	}

	mapping, err := pdu.MapSignal(sig1, 0, armodel.MostSignificantByteLast, nil)
	if err != nil {
		t.Fatalf("MapSignal: %v", err)
	}
	if sp, ok := mapping.StartPosition(); !ok || sp != 0 {
		t.Errorf("StartPosition() = %d, %v", sp, ok)
	}
	if bo, ok := mapping.ByteOrder(); !ok || bo != armodel.MostSignificantByteLast {
		t.Errorf("ByteOrder() = %v, %v", bo, ok)
	}

	before, _ := arxml.DumpYAML(m.RootElement())
	// bits 4..20 overlap the first signal's bits 0..8
	if _, err := pdu.MapSignal(sig2, 4, armodel.MostSignificantByteLast, nil); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("overlapping mapping: got %v, want ErrInvalidValue", err)
	}
	// bits 24..40 exceed the 32 bit PDU
	if _, err := pdu.MapSignal(sig2, 24, armodel.MostSignificantByteLast, nil); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("out of range mapping: got %v, want ErrInvalidValue", err)
	}
	if _, err := pdu.MapSignal(sig1, 16, armodel.MostSignificantByteLast, nil); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("remapped signal: got %v, want ErrDuplicateName", err)
	}
	after, _ := arxml.DumpYAML(m.RootElement())
	if d := arxml.Diff(before, after); d != "" {
		t.Errorf("rejected mappings mutated the tree:\n%s", d)
	}

	if _, err := pdu.MapSignal(sig2, 8, armodel.MostSignificantByteLast, nil); err != nil {
		t.Fatalf("adjacent mapping: %v", err)
	}
	mapped := pdu.MappedSignals()
	if len(mapped) != 2 {
		t.Fatalf("MappedSignals() = %d, want 2", len(mapped))
	}
	got, err := mapped[1].Signal()
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if got != sig2 {
		t.Errorf("second mapping does not resolve to Sig2")
	}
}

func TestTriggerPdu(t *testing.T) {
	_, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	ss, _ := sys.CreateSystemSignal("SS", pkg)
	sig, _ := sys.CreateISignal("Sig", pkg, 8, ss)
	pdu, _ := sys.CreateISignalIPdu("Pdu", pkg, 8)
	if _, err := pdu.MapSignal(sig, 0, armodel.MostSignificantByteLast, nil); err != nil {
		t.Fatalf("MapSignal: %v", err)
	}

	cluster, _ := sys.CreateCanCluster("Can", pkg, 500000)
	channel, _ := cluster.CreatePhysicalChannel("CanChannel")

	pt, err := channel.TriggerPdu(pdu)
	if err != nil {
		t.Fatalf("TriggerPdu: %v", err)
	}
	back, err := pt.Pdu()
	if err != nil {
		t.Fatalf("Pdu: %v", err)
	}
	if back != pdu {
		t.Errorf("triggering does not resolve back to the PDU")
	}
	if _, err := channel.TriggerPdu(pdu); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("second triggering of same PDU: got %v, want ErrDuplicateName", err)
	}
	if got := len(channel.PduTriggerings()); got != 1 {
		t.Errorf("PduTriggerings() = %d, want 1", got)
	}

	sts := channel.ISignalTriggerings()
	if len(sts) != 1 {
		t.Fatalf("ISignalTriggerings() = %d, want 1", len(sts))
	}
	gotSig, err := sts[0].Signal()
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if gotSig != sig {
		t.Errorf("signal triggering does not resolve back to the signal")
	}
}

func TestSocketConnectionGating(t *testing.T) {
	_, pkg, sys := newTestSystem(t, arxml.Autosar_00043)
	cluster, _ := sys.CreateEthernetCluster("Eth", pkg)
	ch, _ := cluster.CreatePhysicalChannel("Chan", nil)
	if _, err := ch.CreateSocketConnectionBundle("Bundle"); err != nil {
		t.Errorf("bundle on 00043: %v", err)
	}
	if _, err := ch.CreateStaticSocketConnection("Static"); !errors.Is(err, armodel.ErrVersionNotSupported) {
		t.Errorf("static connection on 00043: got %v, want ErrVersionNotSupported", err)
	}

	_, pkg2, sys2 := newTestSystem(t, arxml.Autosar_00048)
	cluster2, _ := sys2.CreateEthernetCluster("Eth", pkg2)
	ch2, _ := cluster2.CreatePhysicalChannel("Chan", nil)
	if _, err := ch2.CreateStaticSocketConnection("Static"); err != nil {
		t.Errorf("static connection on 00048: %v", err)
	}
	if _, err := ch2.CreateSocketConnectionBundle("Bundle"); !errors.Is(err, armodel.ErrVersionNotSupported) {
		t.Errorf("bundle on 00048: got %v, want ErrVersionNotSupported", err)
	}
}

func TestDataTransformationRules(t *testing.T) {
	m := armodel.NewModel(arxml.Autosar_4_3_0)
	pkg, _ := m.GetOrCreatePackage("/Transforms")
	set, err := NewDataTransformationSet(pkg, "Set")
	if err != nil {
		t.Fatalf("NewDataTransformationSet: %v", err)
	}

	someip, err := set.CreateTransformationTechnology("SomeIp", SomeIpTransformationTechnologyConfig{
		Alignment:        8,
		ByteOrder:        SomeIpByteOrderMostSignificantFirst,
		InterfaceVersion: 1,
	})
	if err != nil {
		t.Fatalf("SOME/IP technology: %v", err)
	}
	if someip.TransformerClass() != TransformerClassSerializer {
		t.Errorf("SOME/IP technology is not a serializer")
	}
	e2e, err := set.CreateTransformationTechnology("E2e", E2eTransformationTechnologyConfig{
		Profile:    E2eProfile05,
		DataIDs:    []uint32{0x1234},
		WindowSize: 10,
	})
	if err != nil {
		t.Fatalf("E2E technology: %v", err)
	}

	if _, err := set.CreateDataTransformation("Empty", nil, false); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("empty chain: got %v, want ErrInvalidValue", err)
	}
	if _, err := set.CreateDataTransformation("SerializerLast", []TransformationTechnology{e2e, someip}, true); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("serializer not first: got %v, want ErrInvalidValue", err)
	}
	if _, err := set.CreateDataTransformation("NoExec", []TransformationTechnology{someip, e2e}, false); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("E2E chain without execute flag: got %v, want ErrInvalidValue", err)
	}

	other, _ := NewDataTransformationSet(pkg, "Other")
	foreign, _ := other.CreateTransformationTechnology("Foreign", GenericTransformationTechnologyConfig{ProtocolName: "Custom"})
	if _, err := set.CreateDataTransformation("CrossSet", []TransformationTechnology{foreign}, false); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("cross-set chain: got %v, want ErrInvalidValue", err)
	}

	chain, err := set.CreateDataTransformation("Chain", []TransformationTechnology{someip, e2e}, true)
	if err != nil {
		t.Fatalf("CreateDataTransformation: %v", err)
	}
	if !chain.ExecuteDespiteDataUnavailability() {
		t.Errorf("ExecuteDespiteDataUnavailability() = false")
	}
	resolved := chain.TransformerChain()
	if len(resolved) != 2 || resolved[0] != someip || resolved[1] != e2e {
		t.Errorf("TransformerChain() order wrong")
	}
}

func TestDataTransformationGate(t *testing.T) {
	m := armodel.NewModel(arxml.Autosar_4_1_3)
	pkg, _ := m.GetOrCreatePackage("/Transforms")
	if _, err := NewDataTransformationSet(pkg, "Set"); !errors.Is(err, armodel.ErrVersionNotSupported) {
		t.Errorf("transformation set on 4.1.3: got %v, want ErrVersionNotSupported", err)
	}

	m2 := armodel.NewModel(arxml.Autosar_4_2_2)
	pkg2, _ := m2.GetOrCreatePackage("/Transforms")
	set, err := NewDataTransformationSet(pkg2, "Set")
	if err != nil {
		t.Fatalf("transformation set on 4.2.2: %v", err)
	}
	if _, err := set.CreateTransformationTechnology("SomeIp", SomeIpTransformationTechnologyConfig{}); !errors.Is(err, armodel.ErrVersionNotSupported) {
		t.Errorf("SOME/IP technology on 4.2.2: got %v, want ErrVersionNotSupported", err)
	}
}

func TestISignalDataTypeAndTransformations(t *testing.T) {
	_, pkg, sys := newTestSystem(t, arxml.Autosar_4_3_0)
	ss, _ := sys.CreateSystemSignal("SS", pkg)
	sig, _ := sys.CreateISignal("Sig", pkg, 16, ss)

	base, err := datatype.NewSwBaseType(pkg, "uint16", 16, datatype.EncodingNone, "uint16")
	if err != nil {
		t.Fatalf("NewSwBaseType: %v", err)
	}
	if err := sig.SetDataType(base); err != nil {
		t.Fatalf("SetDataType: %v", err)
	}
	got, err := sig.DataType()
	if err != nil {
		t.Fatalf("DataType: %v", err)
	}
	if got != base {
		t.Errorf("DataType() does not resolve to the base type")
	}

	back, err := sig.SystemSignal()
	if err != nil {
		t.Fatalf("SystemSignal: %v", err)
	}
	if back != ss {
		t.Errorf("SystemSignal() does not resolve to SS")
	}

	set, _ := NewDataTransformationSet(pkg, "Set")
	com, _ := set.CreateTransformationTechnology("Com", ComTransformationTechnologyConfig{ISignalIPduLength: 8})
	chain, _ := set.CreateDataTransformation("Chain", []TransformationTechnology{com}, false)
	if err := sig.AddDataTransformation(chain); err != nil {
		t.Fatalf("AddDataTransformation: %v", err)
	}
	if err := sig.AddDataTransformation(chain); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("duplicate chain: got %v, want ErrDuplicateName", err)
	}
	if got := sig.DataTransformations(); len(got) != 1 || got[0] != chain {
		t.Errorf("DataTransformations() wrong")
	}
}

func TestFlexrayChannels(t *testing.T) {
	_, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	cluster, _ := sys.CreateFlexrayCluster("Flex", pkg)
	chA, err := cluster.CreatePhysicalChannel("ChanA", FlexrayChannelA)
	if err != nil {
		t.Fatalf("channel A: %v", err)
	}
	chB, err := cluster.CreatePhysicalChannel("ChanB", FlexrayChannelB)
	if err != nil {
		t.Fatalf("channel B: %v", err)
	}
	if _, err := cluster.CreatePhysicalChannel("ChanA2", FlexrayChannelA); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("second channel A: got %v, want ErrDuplicateName", err)
	}

	ecu, _ := sys.CreateEcuInstance("Ecu_A", pkg)
	ctrl, _ := ecu.CreateFlexrayCommunicationController("FlexCtrl")
	if _, err := ctrl.ConnectPhysicalChannel("ConnA", chA); err != nil {
		t.Fatalf("connect A: %v", err)
	}
	if _, err := ctrl.ConnectPhysicalChannel("ConnB", chB); err != nil {
		t.Fatalf("connect B: %v", err)
	}
	if got := len(ctrl.ConnectedChannels()); got != 2 {
		t.Errorf("ConnectedChannels() = %d, want 2", got)
	}
}

func TestWrapperIdentity(t *testing.T) {
	m, pkg, sys := newTestSystem(t, arxml.Autosar_00048)
	cluster, _ := sys.CreateCanCluster("Can", pkg, 500000)

	e, err := m.ElementByPath("/Clusters/Can")
	if err != nil {
		t.Fatalf("ElementByPath: %v", err)
	}
	again, err := CanClusterFromElement(e)
	if err != nil {
		t.Fatalf("CanClusterFromElement: %v", err)
	}
	if again != cluster {
		t.Errorf("re-resolved view is not equal to the original view")
	}
	if _, err := EthernetClusterFromElement(e); !errors.Is(err, armodel.ErrTypeMismatch) {
		t.Errorf("wrong-kind conversion: got %v, want ErrTypeMismatch", err)
	}
}
