package communication

import (
	"fmt"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// connectController creates a connector in the ECU owning ctrl and
// back-references it from the channel's connector list. All validation has
// happened by the time this runs.
func connectController(ctrl *arxml.Element, connectorName, connectorKind string, channel *arxml.Element) (*arxml.Element, error) {
	ecu := ctrl.NamedParent()
	if ecu == nil {
		return nil, fmt.Errorf("%w: controller %s has no enclosing ECU", armodel.ErrInvalidValue, ctrl.Path())
	}
	connectors := ecu.GetOrCreateSubElement("CONNECTORS")
	connector, err := connectors.CreateNamedSubElement(connectorKind, connectorName)
	if err != nil {
		return nil, armodel.WrapEngineErr(err)
	}
	if err := connector.CreateSubElement("CONTROLLER-REF").SetReferenceTarget(ctrl); err != nil {
		connectors.RemoveSubElement(connector)
		return nil, armodel.WrapEngineErr(err)
	}

	commConnectors := channel.GetOrCreateSubElement("COMM-CONNECTORS")
	cond := commConnectors.CreateSubElement("COMMUNICATION-CONNECTOR-REF-CONDITIONAL")
	ref := cond.CreateSubElement("COMMUNICATION-CONNECTOR-REF")
	if err := ref.SetReferenceTarget(connector); err != nil {
		commConnectors.RemoveSubElement(cond)
		connectors.RemoveSubElement(connector)
		return nil, armodel.WrapEngineErr(err)
	}
	return connector, nil
}

// connectedChannelElements finds, in document order, the channel elements
// of the given kind that reference a connector of this controller. The
// relation is stored channel-side, so the whole tree is walked on every
// call; nothing is cached.
func connectedChannelElements(ctrl *arxml.Element, connectorKind, channelKind string) []*arxml.Element {
	ecu := ctrl.NamedParent()
	if ecu == nil {
		return nil
	}
	connectors := ecu.GetSubElement("CONNECTORS")
	if connectors == nil {
		return nil
	}
	ctrlPath := ctrl.Path()
	var connectorPaths []string
	for _, conn := range connectors.SubElements() {
		if conn.ElementName() != connectorKind {
			continue
		}
		ref := conn.GetSubElement("CONTROLLER-REF")
		if ref == nil || ref.CharacterData() != ctrlPath {
			continue
		}
		connectorPaths = append(connectorPaths, conn.Path())
	}
	if len(connectorPaths) == 0 {
		return nil
	}

	var channels []*arxml.Element
	forEachElement(ctrl.Model().RootElement(), channelKind, func(ch *arxml.Element) {
		cc := ch.GetSubElement("COMM-CONNECTORS")
		if cc == nil {
			return
		}
		for _, p := range connectorPaths {
			if armodel.ContainsRef(cc, "COMMUNICATION-CONNECTOR-REF", p) {
				channels = append(channels, ch)
				return
			}
		}
	})
	return channels
}

// forEachElement walks the subtree below e and calls fn for every element
// with the given name.
func forEachElement(e *arxml.Element, name string, fn func(*arxml.Element)) {
	for _, c := range e.SubElements() {
		if c.ElementName() == name {
			fn(c)
		}
		forEachElement(c, name, fn)
	}
}

//##################################################################

// CanCommunicationController attaches an ECU to a CAN cluster.
type CanCommunicationController struct {
	e *arxml.Element
}

func CanCommunicationControllerFromElement(e *arxml.Element) (CanCommunicationController, error) {
	if err := armodel.CheckElement(e, "CAN-COMMUNICATION-CONTROLLER", "CanCommunicationController"); err != nil {
		return CanCommunicationController{}, err
	}
	return CanCommunicationController{e: e}, nil
}

func (c CanCommunicationController) Element() *arxml.Element {
	return c.e
}

func (c CanCommunicationController) Name() string {
	return c.e.ItemName()
}

func (c CanCommunicationController) EcuInstance() (EcuInstance, error) {
	return EcuInstanceFromElement(c.e.NamedParent())
}

// ConnectPhysicalChannel attaches the controller to a CAN channel. A CAN
// controller can be attached to at most one channel.
func (c CanCommunicationController) ConnectPhysicalChannel(connectorName string, channel CanPhysicalChannel) (CanCommunicationConnector, error) {
	if len(c.ConnectedChannels()) > 0 {
		return CanCommunicationConnector{}, fmt.Errorf("%w: controller %s is already connected to a channel",
			armodel.ErrDuplicateName, c.Name())
	}
	conn, err := connectController(c.e, connectorName, "CAN-COMMUNICATION-CONNECTOR", channel.Element())
	if err != nil {
		return CanCommunicationConnector{}, err
	}
	return CanCommunicationConnector{e: conn}, nil
}

// ConnectedChannels lists the CAN channels the controller is attached to.
func (c CanCommunicationController) ConnectedChannels() []CanPhysicalChannel {
	var res []CanPhysicalChannel
	for _, ch := range connectedChannelElements(c.e, "CAN-COMMUNICATION-CONNECTOR", "CAN-PHYSICAL-CHANNEL") {
		if v, err := CanPhysicalChannelFromElement(ch); err == nil {
			res = append(res, v)
		}
	}
	return res
}

// CanCommunicationConnector joins a CAN controller and a CAN channel.
type CanCommunicationConnector struct {
	e *arxml.Element
}

func CanCommunicationConnectorFromElement(e *arxml.Element) (CanCommunicationConnector, error) {
	if err := armodel.CheckElement(e, "CAN-COMMUNICATION-CONNECTOR", "CanCommunicationConnector"); err != nil {
		return CanCommunicationConnector{}, err
	}
	return CanCommunicationConnector{e: e}, nil
}

func (c CanCommunicationConnector) Element() *arxml.Element {
	return c.e
}

func (c CanCommunicationConnector) Name() string {
	return c.e.ItemName()
}

//##################################################################

// EthernetCommunicationController attaches an ECU to an Ethernet cluster.
type EthernetCommunicationController struct {
	e *arxml.Element
}

func EthernetCommunicationControllerFromElement(e *arxml.Element) (EthernetCommunicationController, error) {
	if err := armodel.CheckElement(e, "ETHERNET-COMMUNICATION-CONTROLLER", "EthernetCommunicationController"); err != nil {
		return EthernetCommunicationController{}, err
	}
	return EthernetCommunicationController{e: e}, nil
}

func (c EthernetCommunicationController) Element() *arxml.Element {
	return c.e
}

func (c EthernetCommunicationController) Name() string {
	return c.e.ItemName()
}

func (c EthernetCommunicationController) EcuInstance() (EcuInstance, error) {
	return EcuInstanceFromElement(c.e.NamedParent())
}

func (c EthernetCommunicationController) conditional() *arxml.Element {
	variants := c.e.GetSubElement("ETHERNET-COMMUNICATION-CONTROLLER-VARIANTS")
	if variants == nil {
		return nil
	}
	return variants.GetSubElement("ETHERNET-COMMUNICATION-CONTROLLER-CONDITIONAL")
}

// MacUnicastAddress returns the configured MAC address, if any.
func (c EthernetCommunicationController) MacUnicastAddress() (string, bool) {
	cond := c.conditional()
	if cond == nil {
		return "", false
	}
	mac := cond.GetSubElement("MAC-UNICAST-ADDRESS")
	if mac == nil {
		return "", false
	}
	return mac.CharacterData(), true
}

// couplingPort returns the first coupling port of the controller, or nil.
func (c EthernetCommunicationController) couplingPort() *arxml.Element {
	cond := c.conditional()
	if cond == nil {
		return nil
	}
	ports := cond.GetSubElement("COUPLING-PORTS")
	if ports == nil {
		return nil
	}
	return ports.GetSubElement("COUPLING-PORT")
}

// ConnectPhysicalChannel attaches the controller to an Ethernet channel.
// Several connectors per controller are allowed, but they must refer to
// different channels (VLANs) of the same cluster. If the channel carries a
// VLAN and the schema version models coupling-port VLAN membership, the
// membership reference is recorded as well.
func (c EthernetCommunicationController) ConnectPhysicalChannel(connectorName string, channel EthernetPhysicalChannel) (EthernetCommunicationConnector, error) {
	targetCluster, err := channel.Cluster()
	if err != nil {
		return EthernetCommunicationConnector{}, err
	}
	for _, existing := range c.ConnectedChannels() {
		if existing == channel {
			return EthernetCommunicationConnector{}, fmt.Errorf("%w: controller %s is already connected to %s",
				armodel.ErrDuplicateName, c.Name(), channel.Name())
		}
		cluster, err := existing.Cluster()
		if err != nil {
			continue
		}
		if cluster != targetCluster {
			return EthernetCommunicationConnector{}, fmt.Errorf(
				"%w: controller %s may only connect to channels of one cluster", armodel.ErrInvalidValue, c.Name())
		}
	}

	// The gate is consulted before any mutation; on old schema versions
	// the VLAN membership is simply not recorded.
	m := armodel.ModelOf(c.e)
	_, hasVlan := channel.VlanInfo()
	recordMembership := hasVlan &&
		armodel.CheckVersion(m.Engine(), armodel.CapCouplingPortVlanMembership) == nil

	conn, err := connectController(c.e, connectorName, "ETHERNET-COMMUNICATION-CONNECTOR", channel.Element())
	if err != nil {
		return EthernetCommunicationConnector{}, err
	}

	if recordMembership {
		if port := c.couplingPort(); port != nil {
			vm := port.GetOrCreateSubElement("VLAN-MEMBERSHIPS").
				CreateSubElement("VLAN-MEMBERSHIP")
			_ = vm.CreateSubElement("VLAN-REF").SetReferenceTarget(channel.Element())
		}
	}
	return EthernetCommunicationConnector{e: conn}, nil
}

// ConnectedChannels lists the Ethernet channels the controller is attached
// to, in document order.
func (c EthernetCommunicationController) ConnectedChannels() []EthernetPhysicalChannel {
	var res []EthernetPhysicalChannel
	for _, ch := range connectedChannelElements(c.e, "ETHERNET-COMMUNICATION-CONNECTOR", "ETHERNET-PHYSICAL-CHANNEL") {
		if v, err := EthernetPhysicalChannelFromElement(ch); err == nil {
			res = append(res, v)
		}
	}
	return res
}

// EthernetCommunicationConnector joins an Ethernet controller and an
// Ethernet channel.
type EthernetCommunicationConnector struct {
	e *arxml.Element
}

func EthernetCommunicationConnectorFromElement(e *arxml.Element) (EthernetCommunicationConnector, error) {
	if err := armodel.CheckElement(e, "ETHERNET-COMMUNICATION-CONNECTOR", "EthernetCommunicationConnector"); err != nil {
		return EthernetCommunicationConnector{}, err
	}
	return EthernetCommunicationConnector{e: e}, nil
}

func (c EthernetCommunicationConnector) Element() *arxml.Element {
	return c.e
}

func (c EthernetCommunicationConnector) Name() string {
	return c.e.ItemName()
}

// Controller resolves the connector's controller reference.
func (c EthernetCommunicationConnector) Controller() (EthernetCommunicationController, error) {
	ref := c.e.GetSubElement("CONTROLLER-REF")
	if ref == nil {
		return EthernetCommunicationController{}, fmt.Errorf("%w: connector %s has no controller reference",
			armodel.ErrInvalidReference, c.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return EthernetCommunicationController{}, armodel.WrapEngineErr(err)
	}
	return EthernetCommunicationControllerFromElement(target)
}

//##################################################################

// FlexrayCommunicationController attaches an ECU to a FlexRay cluster.
type FlexrayCommunicationController struct {
	e *arxml.Element
}

func FlexrayCommunicationControllerFromElement(e *arxml.Element) (FlexrayCommunicationController, error) {
	if err := armodel.CheckElement(e, "FLEXRAY-COMMUNICATION-CONTROLLER", "FlexrayCommunicationController"); err != nil {
		return FlexrayCommunicationController{}, err
	}
	return FlexrayCommunicationController{e: e}, nil
}

func (c FlexrayCommunicationController) Element() *arxml.Element {
	return c.e
}

func (c FlexrayCommunicationController) Name() string {
	return c.e.ItemName()
}

func (c FlexrayCommunicationController) EcuInstance() (EcuInstance, error) {
	return EcuInstanceFromElement(c.e.NamedParent())
}

// ConnectPhysicalChannel attaches the controller to a FlexRay channel. A
// controller may attach to both channels of one cluster, but not twice to
// the same channel and not across clusters.
func (c FlexrayCommunicationController) ConnectPhysicalChannel(connectorName string, channel FlexrayPhysicalChannel) (FlexrayCommunicationConnector, error) {
	targetCluster, err := channel.Cluster()
	if err != nil {
		return FlexrayCommunicationConnector{}, err
	}
	for _, existing := range c.ConnectedChannels() {
		if existing == channel {
			return FlexrayCommunicationConnector{}, fmt.Errorf("%w: controller %s is already connected to %s",
				armodel.ErrDuplicateName, c.Name(), channel.Name())
		}
		cluster, err := existing.Cluster()
		if err != nil {
			continue
		}
		if cluster != targetCluster {
			return FlexrayCommunicationConnector{}, fmt.Errorf(
				"%w: controller %s may only connect to channels of one cluster", armodel.ErrInvalidValue, c.Name())
		}
	}
	conn, err := connectController(c.e, connectorName, "FLEXRAY-COMMUNICATION-CONNECTOR", channel.Element())
	if err != nil {
		return FlexrayCommunicationConnector{}, err
	}
	return FlexrayCommunicationConnector{e: conn}, nil
}

// ConnectedChannels lists the FlexRay channels the controller is attached
// to.
func (c FlexrayCommunicationController) ConnectedChannels() []FlexrayPhysicalChannel {
	var res []FlexrayPhysicalChannel
	for _, ch := range connectedChannelElements(c.e, "FLEXRAY-COMMUNICATION-CONNECTOR", "FLEXRAY-PHYSICAL-CHANNEL") {
		if v, err := FlexrayPhysicalChannelFromElement(ch); err == nil {
			res = append(res, v)
		}
	}
	return res
}

// FlexrayCommunicationConnector joins a FlexRay controller and a FlexRay
// channel.
type FlexrayCommunicationConnector struct {
	e *arxml.Element
}

func FlexrayCommunicationConnectorFromElement(e *arxml.Element) (FlexrayCommunicationConnector, error) {
	if err := armodel.CheckElement(e, "FLEXRAY-COMMUNICATION-CONNECTOR", "FlexrayCommunicationConnector"); err != nil {
		return FlexrayCommunicationConnector{}, err
	}
	return FlexrayCommunicationConnector{e: e}, nil
}

func (c FlexrayCommunicationConnector) Element() *arxml.Element {
	return c.e
}

func (c FlexrayCommunicationConnector) Name() string {
	return c.e.ItemName()
}
