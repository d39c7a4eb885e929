package communication

import (
	"fmt"
	"math"
	"strconv"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// PhysicalChannel is implemented by all physical channel views.
type PhysicalChannel interface {
	armodel.Wrapper
	Name() string
}

// PhysicalChannelFromElement converts an element into the matching channel
// view.
func PhysicalChannelFromElement(e *arxml.Element) (PhysicalChannel, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: no element to convert to PhysicalChannel", armodel.ErrNotFound)
	}
	switch e.ElementName() {
	case "CAN-PHYSICAL-CHANNEL":
		return CanPhysicalChannelFromElement(e)
	case "ETHERNET-PHYSICAL-CHANNEL":
		return EthernetPhysicalChannelFromElement(e)
	case "FLEXRAY-PHYSICAL-CHANNEL":
		return FlexrayPhysicalChannelFromElement(e)
	case "LIN-PHYSICAL-CHANNEL":
		return LinPhysicalChannelFromElement(e)
	default:
		return nil, fmt.Errorf("%w: cannot convert %s to PhysicalChannel", armodel.ErrTypeMismatch, e.ElementName())
	}
}

// triggerPdu maps a PDU onto a channel: it creates the PDU-TRIGGERING plus
// one I-SIGNAL-TRIGGERING per signal currently mapped into the PDU. The
// triggering name is derived from the PDU name, so mapping the same PDU
// twice onto one channel fails before mutation.
func triggerPdu(ch *arxml.Element, pdu ISignalIPdu) (PduTriggering, error) {
	triggerings := ch.GetOrCreateSubElement("PDU-TRIGGERINGS")
	pt, err := triggerings.CreateNamedSubElement("PDU-TRIGGERING", "PT_"+pdu.Name())
	if err != nil {
		return PduTriggering{}, armodel.WrapEngineErr(err)
	}
	if err := pt.CreateSubElement("I-PDU-REF").SetReferenceTarget(pdu.Element()); err != nil {
		triggerings.RemoveSubElement(pt)
		return PduTriggering{}, armodel.WrapEngineErr(err)
	}
	for _, mapping := range pdu.MappedSignals() {
		sig, err := mapping.Signal()
		if err != nil {
			continue
		}
		st, err := ch.GetOrCreateSubElement("I-SIGNAL-TRIGGERINGS").
			GetOrCreateNamedSubElement("I-SIGNAL-TRIGGERING", "ST_"+sig.Name())
		if err != nil {
			continue
		}
		ref := st.GetOrCreateSubElement("I-SIGNAL-REF")
		_ = ref.SetReferenceTarget(sig.Element())
	}
	return PduTriggering{e: pt}, nil
}

func pduTriggerings(ch *arxml.Element) []PduTriggering {
	list := ch.GetSubElement("PDU-TRIGGERINGS")
	if list == nil {
		return nil
	}
	var res []PduTriggering
	for _, pt := range list.SubElements() {
		if v, err := PduTriggeringFromElement(pt); err == nil {
			res = append(res, v)
		}
	}
	return res
}

func iSignalTriggerings(ch *arxml.Element) []ISignalTriggering {
	list := ch.GetSubElement("I-SIGNAL-TRIGGERINGS")
	if list == nil {
		return nil
	}
	var res []ISignalTriggering
	for _, st := range list.SubElements() {
		if v, err := ISignalTriggeringFromElement(st); err == nil {
			res = append(res, v)
		}
	}
	return res
}

//##################################################################

// CanPhysicalChannel is the single channel of a CAN cluster.
type CanPhysicalChannel struct {
	e *arxml.Element
}

func CanPhysicalChannelFromElement(e *arxml.Element) (CanPhysicalChannel, error) {
	if err := armodel.CheckElement(e, "CAN-PHYSICAL-CHANNEL", "CanPhysicalChannel"); err != nil {
		return CanPhysicalChannel{}, err
	}
	return CanPhysicalChannel{e: e}, nil
}

func (c CanPhysicalChannel) Element() *arxml.Element {
	return c.e
}

func (c CanPhysicalChannel) Name() string {
	return c.e.ItemName()
}

// Cluster returns the CAN cluster owning this channel.
func (c CanPhysicalChannel) Cluster() (CanCluster, error) {
	return CanClusterFromElement(c.e.NamedParent())
}

// TriggerPdu maps a PDU onto the channel.
func (c CanPhysicalChannel) TriggerPdu(pdu ISignalIPdu) (PduTriggering, error) {
	return triggerPdu(c.e, pdu)
}

// PduTriggerings lists the PDUs mapped onto the channel.
func (c CanPhysicalChannel) PduTriggerings() []PduTriggering {
	return pduTriggerings(c.e)
}

// ISignalTriggerings lists the signals mapped onto the channel.
func (c CanPhysicalChannel) ISignalTriggerings() []ISignalTriggering {
	return iSignalTriggerings(c.e)
}

//##################################################################

// EthernetVlanInfo describes the VLAN of an Ethernet physical channel. A
// channel without VLAN info carries untagged traffic.
type EthernetVlanInfo struct {
	VlanName string
	VlanID   uint16
}

// EthernetPhysicalChannel is one channel (VLAN or untagged) of an Ethernet
// cluster.
type EthernetPhysicalChannel struct {
	e *arxml.Element
}

func EthernetPhysicalChannelFromElement(e *arxml.Element) (EthernetPhysicalChannel, error) {
	if err := armodel.CheckElement(e, "ETHERNET-PHYSICAL-CHANNEL", "EthernetPhysicalChannel"); err != nil {
		return EthernetPhysicalChannel{}, err
	}
	return EthernetPhysicalChannel{e: e}, nil
}

func (c EthernetPhysicalChannel) Element() *arxml.Element {
	return c.e
}

func (c EthernetPhysicalChannel) Name() string {
	return c.e.ItemName()
}

// Cluster returns the Ethernet cluster owning this channel.
func (c EthernetPhysicalChannel) Cluster() (EthernetCluster, error) {
	return EthernetClusterFromElement(c.e.NamedParent())
}

func (c EthernetPhysicalChannel) writeVlanInfo(vlan *EthernetVlanInfo) error {
	v, err := c.e.CreateNamedSubElement("VLAN", vlan.VlanName)
	if err != nil {
		return armodel.WrapEngineErr(err)
	}
	v.CreateSubElement("VLAN-IDENTIFIER").
		SetCharacterData(strconv.FormatUint(uint64(vlan.VlanID), 10))
	return nil
}

// SetVlanInfo replaces the VLAN information of the channel. vlan == nil
// turns the channel into the untagged channel of the cluster. The VLAN
// identifier must stay unique within the cluster and the VLAN name must be
// free within the channel; a violation fails before any change is made.
func (c EthernetPhysicalChannel) SetVlanInfo(vlan *EthernetVlanInfo) error {
	cluster, err := c.Cluster()
	if err != nil {
		return err
	}
	for _, other := range cluster.PhysicalChannels() {
		if other == c {
			continue
		}
		otherVlan, hasVlan := other.VlanInfo()
		if vlan == nil && !hasVlan {
			return fmt.Errorf("%w: cluster %s already has a channel for untagged traffic",
				armodel.ErrDuplicateName, cluster.Name())
		}
		if vlan != nil && hasVlan && otherVlan.VlanID == vlan.VlanID {
			return fmt.Errorf("%w: cluster %s already has a channel for VLAN %d",
				armodel.ErrDuplicateName, cluster.Name(), vlan.VlanID)
		}
	}
	old := c.e.GetSubElement("VLAN")
	if vlan != nil {
		if vlan.VlanName == "" {
			return fmt.Errorf("%w: empty VLAN name", armodel.ErrInvalidValue)
		}
		// The new name must be checked while the old VLAN element is
		// still in place; a rejected name must not drop it.
		m := armodel.ModelOf(c.e)
		if existing, err := m.ElementByPath(c.e.Path() + "/" + vlan.VlanName); err == nil && existing != old {
			return fmt.Errorf("%w: channel %s already contains an element named %q",
				armodel.ErrDuplicateName, c.Name(), vlan.VlanName)
		}
	}
	c.e.RemoveSubElementKind("VLAN")
	if vlan != nil {
		return c.writeVlanInfo(vlan)
	}
	return nil
}

// VlanInfo reads the VLAN information of the channel from the live tree.
// The untagged channel reports no VLAN info.
func (c EthernetPhysicalChannel) VlanInfo() (EthernetVlanInfo, bool) {
	v := c.e.GetSubElement("VLAN")
	if v == nil {
		return EthernetVlanInfo{}, false
	}
	id := v.GetSubElement("VLAN-IDENTIFIER")
	if id == nil {
		return EthernetVlanInfo{}, false
	}
	n, ok := id.CharacterDataUint()
	if !ok || n > math.MaxUint16 {
		return EthernetVlanInfo{}, false
	}
	return EthernetVlanInfo{VlanName: v.ItemName(), VlanID: uint16(n)}, true
}

// TriggerPdu maps a PDU onto the channel.
func (c EthernetPhysicalChannel) TriggerPdu(pdu ISignalIPdu) (PduTriggering, error) {
	return triggerPdu(c.e, pdu)
}

// PduTriggerings lists the PDUs mapped onto the channel.
func (c EthernetPhysicalChannel) PduTriggerings() []PduTriggering {
	return pduTriggerings(c.e)
}

// ISignalTriggerings lists the signals mapped onto the channel.
func (c EthernetPhysicalChannel) ISignalTriggerings() []ISignalTriggering {
	return iSignalTriggerings(c.e)
}

// CreateSocketConnectionBundle creates a socket connection bundle in the
// channel's SoAd configuration. This is the service model of older schema
// revisions; newer revisions use static socket connections instead.
func (c EthernetPhysicalChannel) CreateSocketConnectionBundle(name string) (SocketConnectionBundle, error) {
	m := armodel.ModelOf(c.e)
	if err := armodel.CheckVersion(m.Engine(), armodel.CapSocketConnectionBundle); err != nil {
		return SocketConnectionBundle{}, err
	}
	bundles := c.e.GetOrCreateSubElement("SO-AD-CONFIG").
		GetOrCreateSubElement("CONNECTION-BUNDLES")
	e, err := bundles.CreateNamedSubElement("SOCKET-CONNECTION-BUNDLE", name)
	if err != nil {
		return SocketConnectionBundle{}, armodel.WrapEngineErr(err)
	}
	return SocketConnectionBundle{e: e}, nil
}

// CreateStaticSocketConnection creates a static socket connection in the
// channel's SoAd configuration. Static socket connections replace the
// connection bundles of older schema revisions.
func (c EthernetPhysicalChannel) CreateStaticSocketConnection(name string) (StaticSocketConnection, error) {
	m := armodel.ModelOf(c.e)
	if err := armodel.CheckVersion(m.Engine(), armodel.CapStaticSocketConnection); err != nil {
		return StaticSocketConnection{}, err
	}
	conns := c.e.GetOrCreateSubElement("SO-AD-CONFIG").
		GetOrCreateSubElement("STATIC-SOCKET-CONNECTIONS")
	e, err := conns.CreateNamedSubElement("STATIC-SOCKET-CONNECTION", name)
	if err != nil {
		return StaticSocketConnection{}, armodel.WrapEngineErr(err)
	}
	return StaticSocketConnection{e: e}, nil
}

//##################################################################

// SocketConnectionBundle is the legacy SoAd connection description.
type SocketConnectionBundle struct {
	e *arxml.Element
}

func SocketConnectionBundleFromElement(e *arxml.Element) (SocketConnectionBundle, error) {
	if err := armodel.CheckElement(e, "SOCKET-CONNECTION-BUNDLE", "SocketConnectionBundle"); err != nil {
		return SocketConnectionBundle{}, err
	}
	return SocketConnectionBundle{e: e}, nil
}

func (b SocketConnectionBundle) Element() *arxml.Element {
	return b.e
}

func (b SocketConnectionBundle) Name() string {
	return b.e.ItemName()
}

// StaticSocketConnection is the current SoAd connection description.
type StaticSocketConnection struct {
	e *arxml.Element
}

func StaticSocketConnectionFromElement(e *arxml.Element) (StaticSocketConnection, error) {
	if err := armodel.CheckElement(e, "STATIC-SOCKET-CONNECTION", "StaticSocketConnection"); err != nil {
		return StaticSocketConnection{}, err
	}
	return StaticSocketConnection{e: e}, nil
}

func (s StaticSocketConnection) Element() *arxml.Element {
	return s.e
}

func (s StaticSocketConnection) Name() string {
	return s.e.ItemName()
}

//##################################################################

// FlexrayPhysicalChannel is one of the two channels of a FlexRay cluster.
type FlexrayPhysicalChannel struct {
	e *arxml.Element
}

func FlexrayPhysicalChannelFromElement(e *arxml.Element) (FlexrayPhysicalChannel, error) {
	if err := armodel.CheckElement(e, "FLEXRAY-PHYSICAL-CHANNEL", "FlexrayPhysicalChannel"); err != nil {
		return FlexrayPhysicalChannel{}, err
	}
	return FlexrayPhysicalChannel{e: e}, nil
}

func (c FlexrayPhysicalChannel) Element() *arxml.Element {
	return c.e
}

func (c FlexrayPhysicalChannel) Name() string {
	return c.e.ItemName()
}

// Cluster returns the FlexRay cluster owning this channel.
func (c FlexrayPhysicalChannel) Cluster() (FlexrayCluster, error) {
	return FlexrayClusterFromElement(c.e.NamedParent())
}

// ChannelName reports whether the channel is FlexRay channel A or B.
func (c FlexrayPhysicalChannel) ChannelName() FlexrayChannelName {
	cn := c.e.GetSubElement("CHANNEL-NAME")
	if cn != nil && cn.CharacterData() == "CHANNEL-B" {
		return FlexrayChannelB
	}
	return FlexrayChannelA
}

// TriggerPdu maps a PDU onto the channel.
func (c FlexrayPhysicalChannel) TriggerPdu(pdu ISignalIPdu) (PduTriggering, error) {
	return triggerPdu(c.e, pdu)
}

// PduTriggerings lists the PDUs mapped onto the channel.
func (c FlexrayPhysicalChannel) PduTriggerings() []PduTriggering {
	return pduTriggerings(c.e)
}

// ISignalTriggerings lists the signals mapped onto the channel.
func (c FlexrayPhysicalChannel) ISignalTriggerings() []ISignalTriggering {
	return iSignalTriggerings(c.e)
}

//##################################################################

// LinPhysicalChannel is the single channel of a LIN cluster.
type LinPhysicalChannel struct {
	e *arxml.Element
}

func LinPhysicalChannelFromElement(e *arxml.Element) (LinPhysicalChannel, error) {
	if err := armodel.CheckElement(e, "LIN-PHYSICAL-CHANNEL", "LinPhysicalChannel"); err != nil {
		return LinPhysicalChannel{}, err
	}
	return LinPhysicalChannel{e: e}, nil
}

func (c LinPhysicalChannel) Element() *arxml.Element {
	return c.e
}

func (c LinPhysicalChannel) Name() string {
	return c.e.ItemName()
}

// Cluster returns the LIN cluster owning this channel.
func (c LinPhysicalChannel) Cluster() (LinCluster, error) {
	return LinClusterFromElement(c.e.NamedParent())
}
