// Package datatype provides views of the data type elements of a model:
// base types, implementation data types, application data types and the
// mapping sets that connect the application and implementation levels.
package datatype

import (
	"fmt"
	"strconv"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// BaseTypeEncoding describes how the bits of a base type are interpreted.
type BaseTypeEncoding int

const (
	EncodingNone BaseTypeEncoding = iota
	EncodingOnesComplement
	EncodingTwosComplement
	EncodingSignMagnitude
	EncodingBcdPacked
	EncodingBcdUnpacked
	EncodingIeee754
	EncodingIso8859_1
	EncodingIso8859_2
	EncodingWindows1252
	EncodingUtf8
	EncodingUtf16
	EncodingUcs2
	EncodingBoolean
	EncodingVoid
)

var baseTypeEncodingNames = map[BaseTypeEncoding]string{
	EncodingNone:           "NONE",
	EncodingOnesComplement: "1C",
	EncodingTwosComplement: "2C",
	EncodingSignMagnitude:  "SM",
	EncodingBcdPacked:      "BCD-P",
	EncodingBcdUnpacked:    "BCD-UP",
	EncodingIeee754:        "IEEE754",
	EncodingIso8859_1:      "ISO-8859-1",
	EncodingIso8859_2:      "ISO-8859-2",
	EncodingWindows1252:    "WINDOWS-1252",
	EncodingUtf8:           "UTF-8",
	EncodingUtf16:          "UTF-16",
	EncodingUcs2:           "UCS-2",
	EncodingBoolean:        "BOOLEAN",
	EncodingVoid:           "VOID",
}

func (e BaseTypeEncoding) String() string {
	s, ok := baseTypeEncodingNames[e]
	if ok {
		return s
	}
	return "<unknown encoding>"
}

func ParseBaseTypeEncoding(s string) (BaseTypeEncoding, error) {
	for e, name := range baseTypeEncodingNames {
		if name == s {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: unrecognized base type encoding %q", armodel.ErrInvalidValue, s)
}

// SwBaseType is a platform level type: a bit size plus an encoding.
type SwBaseType struct {
	e *arxml.Element
}

// NewSwBaseType creates a base type in the package. nativeDeclaration is the
// type name used in generated code and may be empty.
func NewSwBaseType(pkg armodel.ArPackage, name string, bitLength uint32, encoding BaseTypeEncoding, nativeDeclaration string) (SwBaseType, error) {
	if _, ok := baseTypeEncodingNames[encoding]; !ok {
		return SwBaseType{}, fmt.Errorf("%w: unrecognized base type encoding", armodel.ErrInvalidValue)
	}
	e, err := pkg.CreateNamedElement("SW-BASE-TYPE", name)
	if err != nil {
		return SwBaseType{}, err
	}
	e.CreateSubElement("CATEGORY").SetCharacterData("FIXED_LENGTH")
	e.CreateSubElement("BASE-TYPE-SIZE").
		SetCharacterData(strconv.FormatUint(uint64(bitLength), 10))
	e.CreateSubElement("BASE-TYPE-ENCODING").SetCharacterData(encoding.String())
	if nativeDeclaration != "" {
		e.CreateSubElement("NATIVE-DECLARATION").SetCharacterData(nativeDeclaration)
	}
	return SwBaseType{e: e}, nil
}

func SwBaseTypeFromElement(e *arxml.Element) (SwBaseType, error) {
	if err := armodel.CheckElement(e, "SW-BASE-TYPE", "SwBaseType"); err != nil {
		return SwBaseType{}, err
	}
	return SwBaseType{e: e}, nil
}

func (t SwBaseType) Element() *arxml.Element {
	return t.e
}

func (t SwBaseType) Name() string {
	return t.e.ItemName()
}

// BitLength returns the size of the base type in bits.
func (t SwBaseType) BitLength() (uint64, bool) {
	s := t.e.GetSubElement("BASE-TYPE-SIZE")
	if s == nil {
		return 0, false
	}
	return s.CharacterDataUint()
}

// Encoding returns the encoding of the base type.
func (t SwBaseType) Encoding() (BaseTypeEncoding, bool) {
	enc := t.e.GetSubElement("BASE-TYPE-ENCODING")
	if enc == nil {
		return 0, false
	}
	e, err := ParseBaseTypeEncoding(enc.CharacterData())
	if err != nil {
		return 0, false
	}
	return e, true
}

// NativeDeclaration returns the native type name, or "" if none is set.
func (t SwBaseType) NativeDeclaration() string {
	nd := t.e.GetSubElement("NATIVE-DECLARATION")
	if nd == nil {
		return ""
	}
	return nd.CharacterData()
}

// SetByteOrder sets the byte order of the base type.
func (t SwBaseType) SetByteOrder(order armodel.ByteOrder) {
	t.e.GetOrCreateSubElement("BYTE-ORDER").SetCharacterData(order.String())
}

// ByteOrder returns the byte order of the base type, if one is set.
func (t SwBaseType) ByteOrder() (armodel.ByteOrder, bool) {
	bo := t.e.GetSubElement("BYTE-ORDER")
	if bo == nil {
		return 0, false
	}
	b, err := armodel.ParseByteOrder(bo.CharacterData())
	if err != nil {
		return 0, false
	}
	return b, true
}

// SetMemAlignment sets the memory alignment of the base type in bits.
func (t SwBaseType) SetMemAlignment(bits uint32) {
	t.e.GetOrCreateSubElement("MEM-ALIGNMENT").
		SetCharacterData(strconv.FormatUint(uint64(bits), 10))
}

// MemAlignment returns the memory alignment in bits, if one is set.
func (t SwBaseType) MemAlignment() (uint64, bool) {
	ma := t.e.GetSubElement("MEM-ALIGNMENT")
	if ma == nil {
		return 0, false
	}
	return ma.CharacterDataUint()
}
