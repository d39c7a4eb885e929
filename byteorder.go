package armodel

import "fmt"

// ByteOrder defines the order of bytes in a multi-byte value.
type ByteOrder int

const (
	// MostSignificantByteFirst is big endian.
	MostSignificantByteFirst ByteOrder = iota
	// MostSignificantByteLast is little endian.
	MostSignificantByteLast
	// OpaqueByteOrder means the byte order is not defined or not relevant.
	OpaqueByteOrder
)

var byteOrderNames = map[ByteOrder]string{
	MostSignificantByteFirst: "MOST-SIGNIFICANT-BYTE-FIRST",
	MostSignificantByteLast:  "MOST-SIGNIFICANT-BYTE-LAST",
	OpaqueByteOrder:          "OPAQUE",
}

func (b ByteOrder) String() string {
	s, ok := byteOrderNames[b]
	if ok {
		return s
	}
	return "<unknown byte order>"
}

func ParseByteOrder(s string) (ByteOrder, error) {
	for b, name := range byteOrderNames {
		if name == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: unrecognized byte order %q", ErrInvalidValue, s)
}
