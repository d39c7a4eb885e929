package communication

import (
	"fmt"
	"math"
	"strconv"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// Cluster is implemented by all bus cluster views. The concrete kinds form
// a closed set; ClusterFromElement dispatches on the element kind.
type Cluster interface {
	armodel.Wrapper
	// Name returns the cluster's item name.
	Name() string
}

// ClusterFromElement converts an element into the matching cluster view.
func ClusterFromElement(e *arxml.Element) (Cluster, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: no element to convert to Cluster", armodel.ErrNotFound)
	}
	switch e.ElementName() {
	case "CAN-CLUSTER":
		return CanClusterFromElement(e)
	case "ETHERNET-CLUSTER":
		return EthernetClusterFromElement(e)
	case "FLEXRAY-CLUSTER":
		return FlexrayClusterFromElement(e)
	case "LIN-CLUSTER":
		return LinClusterFromElement(e)
	default:
		return nil, fmt.Errorf("%w: cannot convert %s to Cluster", armodel.ErrTypeMismatch, e.ElementName())
	}
}

// clusterConditional returns the *-CLUSTER-CONDITIONAL grouping element of
// a cluster, below which the cluster attributes and channels live.
func clusterConditional(e *arxml.Element, bus string) *arxml.Element {
	return e.GetOrCreateSubElement(bus + "-CLUSTER-VARIANTS").
		GetOrCreateSubElement(bus + "-CLUSTER-CONDITIONAL")
}

func clusterConditionalRead(e *arxml.Element, bus string) *arxml.Element {
	variants := e.GetSubElement(bus + "-CLUSTER-VARIANTS")
	if variants == nil {
		return nil
	}
	return variants.GetSubElement(bus + "-CLUSTER-CONDITIONAL")
}

//##################################################################

// CanCluster is a CAN bus cluster. It owns at most one physical channel.
type CanCluster struct {
	e *arxml.Element
}

func newCanCluster(pkg armodel.ArPackage, name string, baudrate uint32) (CanCluster, error) {
	e, err := pkg.CreateNamedElement("CAN-CLUSTER", name)
	if err != nil {
		return CanCluster{}, err
	}
	cluster := CanCluster{e: e}
	cluster.SetBaudrate(baudrate)
	return cluster, nil
}

func CanClusterFromElement(e *arxml.Element) (CanCluster, error) {
	if err := armodel.CheckElement(e, "CAN-CLUSTER", "CanCluster"); err != nil {
		return CanCluster{}, err
	}
	return CanCluster{e: e}, nil
}

func (c CanCluster) Element() *arxml.Element {
	return c.e
}

func (c CanCluster) Name() string {
	return c.e.ItemName()
}

func (c CanCluster) SetBaudrate(baudrate uint32) {
	clusterConditional(c.e, "CAN").
		GetOrCreateSubElement("BAUDRATE").
		SetCharacterData(strconv.FormatUint(uint64(baudrate), 10))
}

func (c CanCluster) Baudrate() (uint32, bool) {
	cond := clusterConditionalRead(c.e, "CAN")
	if cond == nil {
		return 0, false
	}
	br := cond.GetSubElement("BAUDRATE")
	if br == nil {
		return 0, false
	}
	v, ok := br.CharacterDataUint()
	if !ok || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

// SetCanFdBaudrate sets the baudrate used for the data phase of CAN FD
// frames. CAN FD is not part of every schema revision.
func (c CanCluster) SetCanFdBaudrate(baudrate uint32) error {
	m := armodel.ModelOf(c.e)
	if err := armodel.CheckVersion(m.Engine(), armodel.CapCanFdBaudrate); err != nil {
		return err
	}
	clusterConditional(c.e, "CAN").
		GetOrCreateSubElement("CAN-FD-BAUDRATE").
		SetCharacterData(strconv.FormatUint(uint64(baudrate), 10))
	return nil
}

func (c CanCluster) CanFdBaudrate() (uint32, bool) {
	cond := clusterConditionalRead(c.e, "CAN")
	if cond == nil {
		return 0, false
	}
	br := cond.GetSubElement("CAN-FD-BAUDRATE")
	if br == nil {
		return 0, false
	}
	v, ok := br.CharacterDataUint()
	if !ok || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

// SetCanXlBaudrate sets the baudrate used for the data phase of CAN XL
// frames. CAN XL only exists in the newest schema revisions.
func (c CanCluster) SetCanXlBaudrate(baudrate uint32) error {
	m := armodel.ModelOf(c.e)
	if err := armodel.CheckVersion(m.Engine(), armodel.CapCanXlBaudrate); err != nil {
		return err
	}
	clusterConditional(c.e, "CAN").
		GetOrCreateSubElement("CAN-XL-BAUDRATE").
		SetCharacterData(strconv.FormatUint(uint64(baudrate), 10))
	return nil
}

func (c CanCluster) CanXlBaudrate() (uint32, bool) {
	cond := clusterConditionalRead(c.e, "CAN")
	if cond == nil {
		return 0, false
	}
	br := cond.GetSubElement("CAN-XL-BAUDRATE")
	if br == nil {
		return 0, false
	}
	v, ok := br.CharacterDataUint()
	if !ok || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

// CreatePhysicalChannel creates the CAN physical channel of the cluster. A
// CAN cluster has exactly one channel; a second call fails.
func (c CanCluster) CreatePhysicalChannel(name string) (CanPhysicalChannel, error) {
	if _, exists := c.PhysicalChannel(); exists {
		return CanPhysicalChannel{}, fmt.Errorf("%w: CAN cluster %s already has a physical channel",
			armodel.ErrDuplicateName, c.Name())
	}
	channels := clusterConditional(c.e, "CAN").GetOrCreateSubElement("PHYSICAL-CHANNELS")
	e, err := channels.CreateNamedSubElement("CAN-PHYSICAL-CHANNEL", name)
	if err != nil {
		return CanPhysicalChannel{}, armodel.WrapEngineErr(err)
	}
	return CanPhysicalChannel{e: e}, nil
}

// PhysicalChannel returns the channel of the cluster, if it was created.
func (c CanCluster) PhysicalChannel() (CanPhysicalChannel, bool) {
	cond := clusterConditionalRead(c.e, "CAN")
	if cond == nil {
		return CanPhysicalChannel{}, false
	}
	channels := cond.GetSubElement("PHYSICAL-CHANNELS")
	if channels == nil {
		return CanPhysicalChannel{}, false
	}
	for _, ch := range channels.SubElements() {
		if chv, err := CanPhysicalChannelFromElement(ch); err == nil {
			return chv, true
		}
	}
	return CanPhysicalChannel{}, false
}

//##################################################################

// EthernetCluster is an Ethernet bus cluster. Unlike the other cluster
// kinds it may own several physical channels: one per VLAN, plus at most
// one untagged channel.
type EthernetCluster struct {
	e *arxml.Element
}

func newEthernetCluster(pkg armodel.ArPackage, name string) (EthernetCluster, error) {
	e, err := pkg.CreateNamedElement("ETHERNET-CLUSTER", name)
	if err != nil {
		return EthernetCluster{}, err
	}
	return EthernetCluster{e: e}, nil
}

func EthernetClusterFromElement(e *arxml.Element) (EthernetCluster, error) {
	if err := armodel.CheckElement(e, "ETHERNET-CLUSTER", "EthernetCluster"); err != nil {
		return EthernetCluster{}, err
	}
	return EthernetCluster{e: e}, nil
}

func (c EthernetCluster) Element() *arxml.Element {
	return c.e
}

func (c EthernetCluster) Name() string {
	return c.e.ItemName()
}

// CreatePhysicalChannel creates a physical channel of the cluster. With
// vlan == nil the channel carries untagged traffic; only one such channel
// may exist. VLAN identifiers must be unique within the cluster. All checks
// run before anything is created.
func (c EthernetCluster) CreatePhysicalChannel(name string, vlan *EthernetVlanInfo) (EthernetPhysicalChannel, error) {
	for _, other := range c.PhysicalChannels() {
		otherVlan, hasVlan := other.VlanInfo()
		if vlan == nil && !hasVlan {
			return EthernetPhysicalChannel{}, fmt.Errorf(
				"%w: cluster %s already has a channel for untagged traffic", armodel.ErrDuplicateName, c.Name())
		}
		if vlan != nil && hasVlan && otherVlan.VlanID == vlan.VlanID {
			return EthernetPhysicalChannel{}, fmt.Errorf(
				"%w: cluster %s already has a channel for VLAN %d", armodel.ErrDuplicateName, c.Name(), vlan.VlanID)
		}
	}
	channels := clusterConditional(c.e, "ETHERNET").GetOrCreateSubElement("PHYSICAL-CHANNELS")
	e, err := channels.CreateNamedSubElement("ETHERNET-PHYSICAL-CHANNEL", name)
	if err != nil {
		return EthernetPhysicalChannel{}, armodel.WrapEngineErr(err)
	}
	ch := EthernetPhysicalChannel{e: e}
	if vlan != nil {
		if err := ch.writeVlanInfo(vlan); err != nil {
			channels.RemoveSubElement(e)
			return EthernetPhysicalChannel{}, err
		}
	}
	return ch, nil
}

// PhysicalChannels lists the channels of the cluster in document order.
func (c EthernetCluster) PhysicalChannels() []EthernetPhysicalChannel {
	cond := clusterConditionalRead(c.e, "ETHERNET")
	if cond == nil {
		return nil
	}
	channels := cond.GetSubElement("PHYSICAL-CHANNELS")
	if channels == nil {
		return nil
	}
	var res []EthernetPhysicalChannel
	for _, ch := range channels.SubElements() {
		if chv, err := EthernetPhysicalChannelFromElement(ch); err == nil {
			res = append(res, chv)
		}
	}
	return res
}

//##################################################################

// FlexrayCluster is a FlexRay bus cluster.
type FlexrayCluster struct {
	e *arxml.Element
}

func newFlexrayCluster(pkg armodel.ArPackage, name string) (FlexrayCluster, error) {
	e, err := pkg.CreateNamedElement("FLEXRAY-CLUSTER", name)
	if err != nil {
		return FlexrayCluster{}, err
	}
	cluster := FlexrayCluster{e: e}
	cond := clusterConditional(e, "FLEXRAY")
	cond.GetOrCreateSubElement("PROTOCOL-NAME").SetCharacterData("FlexRay")
	cond.GetOrCreateSubElement("PROTOCOL-VERSION").SetCharacterData("2.1")
	return cluster, nil
}

func FlexrayClusterFromElement(e *arxml.Element) (FlexrayCluster, error) {
	if err := armodel.CheckElement(e, "FLEXRAY-CLUSTER", "FlexrayCluster"); err != nil {
		return FlexrayCluster{}, err
	}
	return FlexrayCluster{e: e}, nil
}

func (c FlexrayCluster) Element() *arxml.Element {
	return c.e
}

func (c FlexrayCluster) Name() string {
	return c.e.ItemName()
}

// FlexrayChannelName selects one of the two FlexRay channels.
type FlexrayChannelName int

const (
	FlexrayChannelA FlexrayChannelName = iota
	FlexrayChannelB
)

func (n FlexrayChannelName) String() string {
	if n == FlexrayChannelB {
		return "CHANNEL-B"
	}
	return "CHANNEL-A"
}

// CreatePhysicalChannel creates a FlexRay physical channel. Each of the two
// channel names may be used only once per cluster.
func (c FlexrayCluster) CreatePhysicalChannel(name string, channelName FlexrayChannelName) (FlexrayPhysicalChannel, error) {
	for _, other := range c.PhysicalChannels() {
		if other.ChannelName() == channelName {
			return FlexrayPhysicalChannel{}, fmt.Errorf("%w: cluster %s already uses %s",
				armodel.ErrDuplicateName, c.Name(), channelName)
		}
	}
	channels := clusterConditional(c.e, "FLEXRAY").GetOrCreateSubElement("PHYSICAL-CHANNELS")
	e, err := channels.CreateNamedSubElement("FLEXRAY-PHYSICAL-CHANNEL", name)
	if err != nil {
		return FlexrayPhysicalChannel{}, armodel.WrapEngineErr(err)
	}
	e.GetOrCreateSubElement("CHANNEL-NAME").SetCharacterData(channelName.String())
	return FlexrayPhysicalChannel{e: e}, nil
}

// PhysicalChannels lists the channels of the cluster.
func (c FlexrayCluster) PhysicalChannels() []FlexrayPhysicalChannel {
	cond := clusterConditionalRead(c.e, "FLEXRAY")
	if cond == nil {
		return nil
	}
	channels := cond.GetSubElement("PHYSICAL-CHANNELS")
	if channels == nil {
		return nil
	}
	var res []FlexrayPhysicalChannel
	for _, ch := range channels.SubElements() {
		if chv, err := FlexrayPhysicalChannelFromElement(ch); err == nil {
			res = append(res, chv)
		}
	}
	return res
}

//##################################################################

// LinCluster is a LIN bus cluster.
type LinCluster struct {
	e *arxml.Element
}

func newLinCluster(pkg armodel.ArPackage, name string) (LinCluster, error) {
	e, err := pkg.CreateNamedElement("LIN-CLUSTER", name)
	if err != nil {
		return LinCluster{}, err
	}
	return LinCluster{e: e}, nil
}

func LinClusterFromElement(e *arxml.Element) (LinCluster, error) {
	if err := armodel.CheckElement(e, "LIN-CLUSTER", "LinCluster"); err != nil {
		return LinCluster{}, err
	}
	return LinCluster{e: e}, nil
}

func (c LinCluster) Element() *arxml.Element {
	return c.e
}

func (c LinCluster) Name() string {
	return c.e.ItemName()
}

// CreatePhysicalChannel creates the LIN physical channel of the cluster. A
// LIN cluster has exactly one channel; a second call fails.
func (c LinCluster) CreatePhysicalChannel(name string) (LinPhysicalChannel, error) {
	if _, exists := c.PhysicalChannel(); exists {
		return LinPhysicalChannel{}, fmt.Errorf("%w: LIN cluster %s already has a physical channel",
			armodel.ErrDuplicateName, c.Name())
	}
	channels := clusterConditional(c.e, "LIN").GetOrCreateSubElement("PHYSICAL-CHANNELS")
	e, err := channels.CreateNamedSubElement("LIN-PHYSICAL-CHANNEL", name)
	if err != nil {
		return LinPhysicalChannel{}, armodel.WrapEngineErr(err)
	}
	return LinPhysicalChannel{e: e}, nil
}

// PhysicalChannel returns the channel of the cluster, if it was created.
func (c LinCluster) PhysicalChannel() (LinPhysicalChannel, bool) {
	cond := clusterConditionalRead(c.e, "LIN")
	if cond == nil {
		return LinPhysicalChannel{}, false
	}
	channels := cond.GetSubElement("PHYSICAL-CHANNELS")
	if channels == nil {
		return LinPhysicalChannel{}, false
	}
	for _, ch := range channels.SubElements() {
		if chv, err := LinPhysicalChannelFromElement(ch); err == nil {
			return chv, true
		}
	}
	return LinPhysicalChannel{}, false
}
