// Package communication models bus clusters, physical channels, ECU
// instances, communication controllers, signals, PDUs and data
// transformations of a system description. All types are stateless views
// over elements of the underlying document tree.
package communication

import (
	"fmt"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// SystemCategory classifies a SYSTEM element.
type SystemCategory int

const (
	SystemDescription SystemCategory = iota
	SystemExtract
	EcuExtract
	AbstractSystemDescription
)

var systemCategoryNames = map[SystemCategory]string{
	SystemDescription:         "SYSTEM_DESCRIPTION",
	SystemExtract:             "SYSTEM_EXTRACT",
	EcuExtract:                "ECU_EXTRACT",
	AbstractSystemDescription: "ABSTRACT_SYSTEM_DESCRIPTION",
}

func (c SystemCategory) String() string {
	s, ok := systemCategoryNames[c]
	if ok {
		return s
	}
	return "<unknown system category>"
}

func ParseSystemCategory(s string) (SystemCategory, error) {
	for c, name := range systemCategoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unrecognized system category %q", armodel.ErrInvalidValue, s)
}

// System is the top level of a system description. It defines how ECUs
// communicate over the networks of the vehicle and holds references to all
// communication elements of the system.
type System struct {
	e *arxml.Element
}

// NewSystem creates a SYSTEM element in the package.
func NewSystem(pkg armodel.ArPackage, name string, category SystemCategory) (System, error) {
	e, err := pkg.CreateNamedElement("SYSTEM", name)
	if err != nil {
		return System{}, err
	}
	sys := System{e: e}
	sys.SetCategory(category)
	return sys, nil
}

func SystemFromElement(e *arxml.Element) (System, error) {
	if err := armodel.CheckElement(e, "SYSTEM", "System"); err != nil {
		return System{}, err
	}
	return System{e: e}, nil
}

func (s System) Element() *arxml.Element {
	return s.e
}

func (s System) Name() string {
	return s.e.ItemName()
}

func (s System) SetCategory(category SystemCategory) {
	s.e.GetOrCreateSubElement("CATEGORY").SetCharacterData(category.String())
}

func (s System) Category() (SystemCategory, error) {
	cat := s.e.GetSubElement("CATEGORY")
	if cat == nil {
		return 0, fmt.Errorf("%w: system has no category", armodel.ErrNotFound)
	}
	return ParseSystemCategory(cat.CharacterData())
}

// addFibexElementRef records target in the system's ordered list of
// communication elements. An exact duplicate is rejected and leaves the
// list unchanged.
func (s System) addFibexElementRef(target *arxml.Element) error {
	fibex := s.e.GetOrCreateSubElement("FIBEX-ELEMENTS")
	path := target.Path()
	if armodel.ContainsRef(fibex, "FIBEX-ELEMENT-REF", path) {
		return fmt.Errorf("%w: fibex element %s already referenced", armodel.ErrDuplicateName, path)
	}
	cond := fibex.CreateSubElement("FIBEX-ELEMENT-REF-CONDITIONAL")
	ref := cond.CreateSubElement("FIBEX-ELEMENT-REF")
	if err := ref.SetReferenceTarget(target); err != nil {
		fibex.RemoveSubElement(cond)
		return armodel.WrapEngineErr(err)
	}
	return nil
}

// fibexElements resolves the system's element references, keeping only the
// targets that still exist and match the given view constructor. Order is
// the insertion order of the references.
func fibexElements[T armodel.Wrapper](s System, from func(*arxml.Element) (T, error)) []T {
	m := armodel.ModelOf(s.e)
	return armodel.ResolveRefs(m, s.e.GetSubElement("FIBEX-ELEMENTS"), "FIBEX-ELEMENT-REF", from)
}

// CreateEcuInstance creates an ECU-INSTANCE in the package and attaches it
// to the system.
func (s System) CreateEcuInstance(name string, pkg armodel.ArPackage) (EcuInstance, error) {
	ecu, err := newEcuInstance(pkg, name)
	if err != nil {
		return EcuInstance{}, err
	}
	if err := s.addFibexElementRef(ecu.Element()); err != nil {
		return EcuInstance{}, err
	}
	return ecu, nil
}

// EcuInstances lists the ECU instances attached to the system.
func (s System) EcuInstances() []EcuInstance {
	return fibexElements(s, EcuInstanceFromElement)
}

// CreateCanCluster creates a CAN-CLUSTER in the package and attaches it to
// the system. The cluster needs a physical channel to be usable; create it
// with CanCluster.CreatePhysicalChannel.
func (s System) CreateCanCluster(name string, pkg armodel.ArPackage, baudrate uint32) (CanCluster, error) {
	cluster, err := newCanCluster(pkg, name, baudrate)
	if err != nil {
		return CanCluster{}, err
	}
	if err := s.addFibexElementRef(cluster.Element()); err != nil {
		return CanCluster{}, err
	}
	return cluster, nil
}

// CreateEthernetCluster creates an ETHERNET-CLUSTER in the package and
// attaches it to the system.
func (s System) CreateEthernetCluster(name string, pkg armodel.ArPackage) (EthernetCluster, error) {
	cluster, err := newEthernetCluster(pkg, name)
	if err != nil {
		return EthernetCluster{}, err
	}
	if err := s.addFibexElementRef(cluster.Element()); err != nil {
		return EthernetCluster{}, err
	}
	return cluster, nil
}

// CreateFlexrayCluster creates a FLEXRAY-CLUSTER in the package and
// attaches it to the system.
func (s System) CreateFlexrayCluster(name string, pkg armodel.ArPackage) (FlexrayCluster, error) {
	cluster, err := newFlexrayCluster(pkg, name)
	if err != nil {
		return FlexrayCluster{}, err
	}
	if err := s.addFibexElementRef(cluster.Element()); err != nil {
		return FlexrayCluster{}, err
	}
	return cluster, nil
}

// CreateLinCluster creates a LIN-CLUSTER in the package and attaches it to
// the system.
func (s System) CreateLinCluster(name string, pkg armodel.ArPackage) (LinCluster, error) {
	cluster, err := newLinCluster(pkg, name)
	if err != nil {
		return LinCluster{}, err
	}
	if err := s.addFibexElementRef(cluster.Element()); err != nil {
		return LinCluster{}, err
	}
	return cluster, nil
}

// Clusters lists the bus clusters of any kind attached to the system.
func (s System) Clusters() []Cluster {
	return fibexElements(s, ClusterFromElement)
}

// CreateSystemSignal creates a SYSTEM-SIGNAL in the package.
func (s System) CreateSystemSignal(name string, pkg armodel.ArPackage) (SystemSignal, error) {
	return newSystemSignal(pkg, name)
}

// CreateISignal creates an I-SIGNAL in the package, links it to the system
// signal, and attaches it to the system.
func (s System) CreateISignal(name string, pkg armodel.ArPackage, bitLength uint64, sysSignal SystemSignal) (ISignal, error) {
	sig, err := newISignal(pkg, name, bitLength, sysSignal)
	if err != nil {
		return ISignal{}, err
	}
	if err := s.addFibexElementRef(sig.Element()); err != nil {
		return ISignal{}, err
	}
	return sig, nil
}

// CreateISignalIPdu creates an I-SIGNAL-I-PDU in the package and attaches
// it to the system.
func (s System) CreateISignalIPdu(name string, pkg armodel.ArPackage, length uint32) (ISignalIPdu, error) {
	pdu, err := newISignalIPdu(pkg, name, length)
	if err != nil {
		return ISignalIPdu{}, err
	}
	if err := s.addFibexElementRef(pdu.Element()); err != nil {
		return ISignalIPdu{}, err
	}
	return pdu, nil
}
