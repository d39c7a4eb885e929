package communication

import (
	"fmt"
	"strconv"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// DataTransformationSet groups transformation technologies and the
// transformation chains built from them.
type DataTransformationSet struct {
	e *arxml.Element
}

// NewDataTransformationSet creates a transformation set in the package.
// Transformation sets require a schema revision that models data
// transformation.
func NewDataTransformationSet(pkg armodel.ArPackage, name string) (DataTransformationSet, error) {
	m := armodel.ModelOf(pkg.Element())
	if err := armodel.CheckVersion(m.Engine(), armodel.CapDataTransformation); err != nil {
		return DataTransformationSet{}, err
	}
	e, err := pkg.CreateNamedElement("DATA-TRANSFORMATION-SET", name)
	if err != nil {
		return DataTransformationSet{}, err
	}
	return DataTransformationSet{e: e}, nil
}

func DataTransformationSetFromElement(e *arxml.Element) (DataTransformationSet, error) {
	if err := armodel.CheckElement(e, "DATA-TRANSFORMATION-SET", "DataTransformationSet"); err != nil {
		return DataTransformationSet{}, err
	}
	return DataTransformationSet{e: e}, nil
}

func (s DataTransformationSet) Element() *arxml.Element {
	return s.e
}

func (s DataTransformationSet) Name() string {
	return s.e.ItemName()
}

// CreateTransformationTechnology creates a transformation technology in the
// set from the given configuration.
func (s DataTransformationSet) CreateTransformationTechnology(name string, config TransformationTechnologyConfig) (TransformationTechnology, error) {
	m := armodel.ModelOf(s.e)
	if err := config.check(m); err != nil {
		return TransformationTechnology{}, err
	}
	e, err := s.e.GetOrCreateSubElement("TRANSFORMATION-TECHNOLOGYS").
		CreateNamedSubElement("TRANSFORMATION-TECHNOLOGY", name)
	if err != nil {
		return TransformationTechnology{}, armodel.WrapEngineErr(err)
	}
	config.write(e)
	return TransformationTechnology{e: e}, nil
}

// TransformationTechnologies lists the technologies of the set.
func (s DataTransformationSet) TransformationTechnologies() []TransformationTechnology {
	list := s.e.GetSubElement("TRANSFORMATION-TECHNOLOGYS")
	if list == nil {
		return nil
	}
	var res []TransformationTechnology
	for _, c := range list.SubElements() {
		if t, err := TransformationTechnologyFromElement(c); err == nil {
			res = append(res, t)
		}
	}
	return res
}

// CreateDataTransformation creates a transformation chain in the set. The
// chain must be non-empty, all technologies must belong to this set, and a
// serializer technology may only appear at the head of the chain. A chain
// containing an E2E technology must set executeDespiteDataUnavailability.
// All rules are checked before anything is created.
func (s DataTransformationSet) CreateDataTransformation(name string, chain []TransformationTechnology, executeDespiteDataUnavailability bool) (DataTransformation, error) {
	if len(chain) == 0 {
		return DataTransformation{}, fmt.Errorf("%w: empty transformer chain", armodel.ErrInvalidValue)
	}
	hasE2e := false
	for i, t := range chain {
		owner, err := t.TransformationSet()
		if err != nil {
			return DataTransformation{}, err
		}
		if owner != s {
			return DataTransformation{}, fmt.Errorf("%w: technology %s belongs to set %s, not %s",
				armodel.ErrInvalidValue, t.Name(), owner.Name(), s.Name())
		}
		if i > 0 && t.TransformerClass() == TransformerClassSerializer {
			return DataTransformation{}, fmt.Errorf("%w: serializer %s must be the first transformer",
				armodel.ErrInvalidValue, t.Name())
		}
		if t.Protocol() == protocolE2e {
			hasE2e = true
		}
	}
	if hasE2e && !executeDespiteDataUnavailability {
		return DataTransformation{}, fmt.Errorf("%w: an E2E chain must execute despite data unavailability",
			armodel.ErrInvalidValue)
	}
	transformations := s.e.GetOrCreateSubElement("DATA-TRANSFORMATIONS")
	e, err := transformations.CreateNamedSubElement("DATA-TRANSFORMATION", name)
	if err != nil {
		return DataTransformation{}, armodel.WrapEngineErr(err)
	}
	refs := e.CreateSubElement("TRANSFORMER-CHAIN-REFS")
	for _, t := range chain {
		ref := refs.CreateSubElement("TRANSFORMER-REF")
		if err := ref.SetReferenceTarget(t.Element()); err != nil {
			transformations.RemoveSubElement(e)
			return DataTransformation{}, armodel.WrapEngineErr(err)
		}
	}
	e.CreateSubElement("EXECUTE-DESPITE-DATA-UNAVAILABILITY").
		SetCharacterData(strconv.FormatBool(executeDespiteDataUnavailability))
	return DataTransformation{e: e}, nil
}

// DataTransformations lists the transformation chains of the set.
func (s DataTransformationSet) DataTransformations() []DataTransformation {
	list := s.e.GetSubElement("DATA-TRANSFORMATIONS")
	if list == nil {
		return nil
	}
	var res []DataTransformation
	for _, c := range list.SubElements() {
		if t, err := DataTransformationFromElement(c); err == nil {
			res = append(res, t)
		}
	}
	return res
}

//##################################################################

// TransformerClass partitions transformation technologies: a serializer
// turns structured data into bytes and must run first, a regular transformer
// operates on bytes.
type TransformerClass int

const (
	TransformerClassTransformer TransformerClass = iota
	TransformerClassSerializer
)

var transformerClassNames = map[TransformerClass]string{
	TransformerClassTransformer: "TRANSFORMER",
	TransformerClassSerializer:  "SERIALIZER",
}

func (c TransformerClass) String() string {
	s, ok := transformerClassNames[c]
	if ok {
		return s
	}
	return "<unknown transformer class>"
}

const (
	protocolE2e    = "E2E"
	protocolSomeIp = "SOMEIP"
	protocolCom    = "COMBased"
)

// TransformationTechnologyConfig configures one transformation technology.
type TransformationTechnologyConfig interface {
	check(m *armodel.Model) error
	write(e *arxml.Element)
}

// GenericTransformationTechnologyConfig describes a custom transformer.
type GenericTransformationTechnologyConfig struct {
	ProtocolName    string
	ProtocolVersion string
	HeaderLength    uint32
	InPlace         bool
}

func (c GenericTransformationTechnologyConfig) check(m *armodel.Model) error {
	if c.ProtocolName == "" {
		return fmt.Errorf("%w: generic transformer needs a protocol name", armodel.ErrInvalidValue)
	}
	return nil
}

func (c GenericTransformationTechnologyConfig) write(e *arxml.Element) {
	e.CreateSubElement("PROTOCOL").SetCharacterData(c.ProtocolName)
	e.CreateSubElement("VERSION").SetCharacterData(c.ProtocolVersion)
	e.CreateSubElement("TRANSFORMER-CLASS").
		SetCharacterData(TransformerClassTransformer.String())
	writeBufferProperties(e, uint64(c.HeaderLength), c.InPlace)
}

// ComTransformationTechnologyConfig describes the COM based serializer.
type ComTransformationTechnologyConfig struct {
	// ISignalIPduLength is the serialized length in bytes.
	ISignalIPduLength uint32
}

func (c ComTransformationTechnologyConfig) check(m *armodel.Model) error {
	return nil
}

func (c ComTransformationTechnologyConfig) write(e *arxml.Element) {
	e.CreateSubElement("PROTOCOL").SetCharacterData(protocolCom)
	e.CreateSubElement("VERSION").SetCharacterData("1")
	e.CreateSubElement("TRANSFORMER-CLASS").
		SetCharacterData(TransformerClassSerializer.String())
	writeBufferProperties(e, 0, false)
	e.CreateSubElement("TRANSFORMATION-DESCRIPTIONS").
		CreateSubElement("COM-BASED-TRANSFORMER-DESCRIPTION").
		CreateSubElement("I-SIGNAL-I-PDU-LENGTH").
		SetCharacterData(strconv.FormatUint(uint64(c.ISignalIPduLength), 10))
}

// E2eProfile selects the end to end protection profile.
type E2eProfile int

const (
	E2eProfile01 E2eProfile = iota
	E2eProfile02
	E2eProfile04
	E2eProfile05
	E2eProfile06
	E2eProfile07
	E2eProfile11
	E2eProfile22
)

var e2eProfileNames = map[E2eProfile]string{
	E2eProfile01: "PROFILE_01",
	E2eProfile02: "PROFILE_02",
	E2eProfile04: "PROFILE_04",
	E2eProfile05: "PROFILE_05",
	E2eProfile06: "PROFILE_06",
	E2eProfile07: "PROFILE_07",
	E2eProfile11: "PROFILE_11",
	E2eProfile22: "PROFILE_22",
}

func (p E2eProfile) String() string {
	s, ok := e2eProfileNames[p]
	if ok {
		return s
	}
	return "<unknown E2E profile>"
}

// E2eTransformationTechnologyConfig describes an end to end protection
// transformer.
type E2eTransformationTechnologyConfig struct {
	Profile              E2eProfile
	ZeroHeaderLength     bool
	DataIDs              []uint32
	MaxDeltaCounter      uint32
	MaxErrorStateInit    uint32
	MaxErrorStateInvalid uint32
	MaxErrorStateValid   uint32
	WindowSize           uint32
}

func (c E2eTransformationTechnologyConfig) check(m *armodel.Model) error {
	if _, ok := e2eProfileNames[c.Profile]; !ok {
		return fmt.Errorf("%w: unrecognized E2E profile", armodel.ErrInvalidValue)
	}
	return nil
}

func (c E2eTransformationTechnologyConfig) write(e *arxml.Element) {
	e.CreateSubElement("PROTOCOL").SetCharacterData(protocolE2e)
	e.CreateSubElement("VERSION").SetCharacterData("1.0.0")
	e.CreateSubElement("TRANSFORMER-CLASS").
		SetCharacterData(TransformerClassTransformer.String())
	headerLength := uint64(profileHeaderBits(c.Profile))
	if c.ZeroHeaderLength {
		headerLength = 0
	}
	writeBufferProperties(e, headerLength, true)
	desc := e.CreateSubElement("TRANSFORMATION-DESCRIPTIONS").
		CreateSubElement("END-TO-END-TRANSFORMATION-DESCRIPTION")
	desc.CreateSubElement("PROFILE-NAME").SetCharacterData(c.Profile.String())
	desc.CreateSubElement("MAX-DELTA-COUNTER").
		SetCharacterData(strconv.FormatUint(uint64(c.MaxDeltaCounter), 10))
	desc.CreateSubElement("MAX-ERROR-STATE-INIT").
		SetCharacterData(strconv.FormatUint(uint64(c.MaxErrorStateInit), 10))
	desc.CreateSubElement("MAX-ERROR-STATE-INVALID").
		SetCharacterData(strconv.FormatUint(uint64(c.MaxErrorStateInvalid), 10))
	desc.CreateSubElement("MAX-ERROR-STATE-VALID").
		SetCharacterData(strconv.FormatUint(uint64(c.MaxErrorStateValid), 10))
	desc.CreateSubElement("WINDOW-SIZE").
		SetCharacterData(strconv.FormatUint(uint64(c.WindowSize), 10))
	if len(c.DataIDs) != 0 {
		ids := desc.CreateSubElement("DATA-IDS")
		for _, id := range c.DataIDs {
			ids.CreateSubElement("DATA-ID").
				SetCharacterData(strconv.FormatUint(uint64(id), 10))
		}
	}
}

func profileHeaderBits(p E2eProfile) uint32 {
	switch p {
	case E2eProfile01, E2eProfile11:
		return 16
	case E2eProfile02, E2eProfile22:
		return 16
	case E2eProfile05:
		return 24
	case E2eProfile06:
		return 40
	default:
		return 96
	}
}

// SomeIpByteOrder restricts the byte order of SOME/IP serialization.
type SomeIpByteOrder int

const (
	SomeIpByteOrderMostSignificantFirst SomeIpByteOrder = iota
	SomeIpByteOrderMostSignificantLast
)

// SomeIpTransformationTechnologyConfig describes a SOME/IP serializer.
type SomeIpTransformationTechnologyConfig struct {
	// Alignment of serialized data in bits.
	Alignment        uint32
	ByteOrder        SomeIpByteOrder
	InterfaceVersion uint32
}

func (c SomeIpTransformationTechnologyConfig) check(m *armodel.Model) error {
	return armodel.CheckVersion(m.Engine(), armodel.CapSomeIpTransformation)
}

func (c SomeIpTransformationTechnologyConfig) write(e *arxml.Element) {
	e.CreateSubElement("PROTOCOL").SetCharacterData(protocolSomeIp)
	e.CreateSubElement("VERSION").SetCharacterData("1.0.0")
	e.CreateSubElement("TRANSFORMER-CLASS").
		SetCharacterData(TransformerClassSerializer.String())
	writeBufferProperties(e, 64, false)
	desc := e.CreateSubElement("TRANSFORMATION-DESCRIPTIONS").
		CreateSubElement("SOMEIP-TRANSFORMATION-DESCRIPTION")
	desc.CreateSubElement("ALIGNMENT").
		SetCharacterData(strconv.FormatUint(uint64(c.Alignment), 10))
	order := "MOST-SIGNIFICANT-BYTE-FIRST"
	if c.ByteOrder == SomeIpByteOrderMostSignificantLast {
		order = "MOST-SIGNIFICANT-BYTE-LAST"
	}
	desc.CreateSubElement("BYTE-ORDER").SetCharacterData(order)
	desc.CreateSubElement("INTERFACE-VERSION").
		SetCharacterData(strconv.FormatUint(uint64(c.InterfaceVersion), 10))
}

func writeBufferProperties(e *arxml.Element, headerLength uint64, inPlace bool) {
	props := e.CreateSubElement("BUFFER-PROPERTIES")
	props.CreateSubElement("HEADER-LENGTH").
		SetCharacterData(strconv.FormatUint(headerLength, 10))
	props.CreateSubElement("IN-PLACE").
		SetCharacterData(strconv.FormatBool(inPlace))
}

//##################################################################

// TransformationTechnology is one transformer of a transformation set.
type TransformationTechnology struct {
	e *arxml.Element
}

func TransformationTechnologyFromElement(e *arxml.Element) (TransformationTechnology, error) {
	if err := armodel.CheckElement(e, "TRANSFORMATION-TECHNOLOGY", "TransformationTechnology"); err != nil {
		return TransformationTechnology{}, err
	}
	return TransformationTechnology{e: e}, nil
}

func (t TransformationTechnology) Element() *arxml.Element {
	return t.e
}

func (t TransformationTechnology) Name() string {
	return t.e.ItemName()
}

// Protocol returns the protocol name of the technology.
func (t TransformationTechnology) Protocol() string {
	p := t.e.GetSubElement("PROTOCOL")
	if p == nil {
		return ""
	}
	return p.CharacterData()
}

// TransformerClass reports whether the technology is a serializer.
func (t TransformationTechnology) TransformerClass() TransformerClass {
	c := t.e.GetSubElement("TRANSFORMER-CLASS")
	if c != nil && c.CharacterData() == "SERIALIZER" {
		return TransformerClassSerializer
	}
	return TransformerClassTransformer
}

// TransformationSet returns the set owning the technology.
func (t TransformationTechnology) TransformationSet() (DataTransformationSet, error) {
	return DataTransformationSetFromElement(t.e.NamedParent())
}

//##################################################################

// DataTransformation is an ordered chain of transformation technologies.
type DataTransformation struct {
	e *arxml.Element
}

func DataTransformationFromElement(e *arxml.Element) (DataTransformation, error) {
	if err := armodel.CheckElement(e, "DATA-TRANSFORMATION", "DataTransformation"); err != nil {
		return DataTransformation{}, err
	}
	return DataTransformation{e: e}, nil
}

func (d DataTransformation) Element() *arxml.Element {
	return d.e
}

func (d DataTransformation) Name() string {
	return d.e.ItemName()
}

// TransformationSet returns the set owning the chain.
func (d DataTransformation) TransformationSet() (DataTransformationSet, error) {
	return DataTransformationSetFromElement(d.e.NamedParent())
}

// TransformerChain resolves the technologies of the chain in order.
func (d DataTransformation) TransformerChain() []TransformationTechnology {
	m := armodel.ModelOf(d.e)
	return armodel.ResolveRefs(m, d.e.GetSubElement("TRANSFORMER-CHAIN-REFS"),
		"TRANSFORMER-REF", TransformationTechnologyFromElement)
}

// ExecuteDespiteDataUnavailability reports whether the chain also runs when
// no new data is available.
func (d DataTransformation) ExecuteDespiteDataUnavailability() bool {
	x := d.e.GetSubElement("EXECUTE-DESPITE-DATA-UNAVAILABILITY")
	return x != nil && x.CharacterData() == "true"
}
