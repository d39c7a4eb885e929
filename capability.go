package armodel

import (
	"fmt"

	"github.com/openarkit/armodel/arxml"
	"github.com/openarkit/armodel/debug"
)

// Capability identifies a version-gated operation. The gate is the single
// place that knows which schema versions allow which operations; mutating
// operations consult it before touching the tree. Read and navigation
// operations are never gated.
type Capability int

const (
	CapCanFdBaudrate Capability = iota
	CapCanXlBaudrate
	CapCouplingPortVlanMembership
	CapSocketConnectionBundle
	CapStaticSocketConnection
	CapDataTransformation
	CapSomeIpTransformation
)

var capabilityNames = map[Capability]string{
	CapCanFdBaudrate:              "CAN FD baudrate",
	CapCanXlBaudrate:              "CAN XL baudrate",
	CapCouplingPortVlanMembership: "coupling port VLAN membership",
	CapSocketConnectionBundle:     "socket connection bundle",
	CapStaticSocketConnection:     "static socket connection",
	CapDataTransformation:         "data transformation",
	CapSomeIpTransformation:       "SOME/IP transformation",
}

func (c Capability) String() string {
	s, ok := capabilityNames[c]
	if ok {
		return s
	}
	return "<unknown capability>"
}

// capabilityVersions is the static operation x version-set table.
var capabilityVersions = map[Capability]arxml.VersionSet{
	CapCanFdBaudrate:              arxml.VersionsFrom(arxml.Autosar_4_2_1),
	CapCanXlBaudrate:              arxml.VersionsFrom(arxml.Autosar_00050),
	CapCouplingPortVlanMembership: arxml.VersionsFrom(arxml.Autosar_00046),
	CapSocketConnectionBundle:     arxml.VersionsUpTo(arxml.Autosar_00046),
	CapStaticSocketConnection:     arxml.VersionsFrom(arxml.Autosar_00046),
	CapDataTransformation:         arxml.VersionsFrom(arxml.Autosar_4_2_1),
	CapSomeIpTransformation:       arxml.VersionsFrom(arxml.Autosar_4_3_0),
}

// CheckVersion reports whether the gated operation is legal for the schema
// version of the model. Callers invoke it before any mutation, so a failure
// implies an unchanged tree.
func CheckVersion(m *arxml.Model, c Capability) error {
	set, ok := capabilityVersions[c]
	if !ok {
		return fmt.Errorf("%w: unknown capability %d", ErrInvalidValue, int(c))
	}
	if !set.Contains(m.Version()) {
		if debug.Gate() {
			debug.Logf("gate", "%s rejected for %s", c, m.Version())
		}
		return fmt.Errorf("%w: %s is not available in %s", ErrVersionNotSupported, c, m.Version())
	}
	if debug.Gate() {
		debug.Logf("gate", "%s allowed for %s", c, m.Version())
	}
	return nil
}
