package arxml

import "fmt"

// Version enumerates the schema revisions of the AUTOSAR meta-model, in
// release order.
type Version int

const (
	Autosar_4_0_1 Version = iota
	Autosar_4_0_2
	Autosar_4_0_3
	Autosar_4_1_1
	Autosar_4_1_2
	Autosar_4_1_3
	Autosar_4_2_1
	Autosar_4_2_2
	Autosar_4_3_0
	Autosar_00042
	Autosar_00043
	Autosar_00044
	Autosar_00045
	Autosar_00046
	Autosar_00047
	Autosar_00048
	Autosar_00049
	Autosar_00050
	Autosar_00051
)

const numVersions = int(Autosar_00051) + 1

var versionNames = map[Version]string{
	Autosar_4_0_1: "AUTOSAR 4.0.1",
	Autosar_4_0_2: "AUTOSAR 4.0.2",
	Autosar_4_0_3: "AUTOSAR 4.0.3",
	Autosar_4_1_1: "AUTOSAR 4.1.1",
	Autosar_4_1_2: "AUTOSAR 4.1.2",
	Autosar_4_1_3: "AUTOSAR 4.1.3",
	Autosar_4_2_1: "AUTOSAR 4.2.1",
	Autosar_4_2_2: "AUTOSAR 4.2.2",
	Autosar_4_3_0: "AUTOSAR 4.3.0",
	Autosar_00042: "AUTOSAR 00042",
	Autosar_00043: "AUTOSAR 00043",
	Autosar_00044: "AUTOSAR 00044",
	Autosar_00045: "AUTOSAR 00045",
	Autosar_00046: "AUTOSAR 00046",
	Autosar_00047: "AUTOSAR 00047",
	Autosar_00048: "AUTOSAR 00048",
	Autosar_00049: "AUTOSAR 00049",
	Autosar_00050: "AUTOSAR 00050",
	Autosar_00051: "AUTOSAR 00051",
}

func (v Version) String() string {
	s, ok := versionNames[v]
	if ok {
		return s
	}
	return "<unknown version>"
}

func (v Version) Valid() bool {
	return v >= Autosar_4_0_1 && v <= Autosar_00051
}

func ParseVersion(s string) (Version, error) {
	for v, name := range versionNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unrecognized version %q", s)
}

// Versions returns all schema versions in release order.
func Versions() []Version {
	res := make([]Version, 0, numVersions)
	for v := Autosar_4_0_1; v <= Autosar_00051; v++ {
		res = append(res, v)
	}
	return res
}

// VersionSet is a set of schema versions, one bit per Version.
type VersionSet uint32

func MakeVersionSet(vs ...Version) VersionSet {
	var set VersionSet
	for _, v := range vs {
		set |= 1 << uint(v)
	}
	return set
}

// VersionsFrom returns the set of all versions from v on, inclusive.
func VersionsFrom(v Version) VersionSet {
	var set VersionSet
	for x := v; x <= Autosar_00051; x++ {
		set |= 1 << uint(x)
	}
	return set
}

// VersionsUpTo returns the set of all versions up to v, inclusive.
func VersionsUpTo(v Version) VersionSet {
	var set VersionSet
	for x := Autosar_4_0_1; x <= v; x++ {
		set |= 1 << uint(x)
	}
	return set
}

// AllVersions is the set containing every known version.
func AllVersions() VersionSet {
	return VersionsFrom(Autosar_4_0_1)
}

func (s VersionSet) Contains(v Version) bool {
	return s&(1<<uint(v)) != 0
}

func (s VersionSet) Union(o VersionSet) VersionSet {
	return s | o
}
