package communication

import (
	"fmt"
	"strconv"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// ISignalIPdu is a PDU whose payload is assembled from I-signals.
type ISignalIPdu struct {
	e *arxml.Element
}

func newISignalIPdu(pkg armodel.ArPackage, name string, length uint32) (ISignalIPdu, error) {
	e, err := pkg.CreateNamedElement("I-SIGNAL-I-PDU", name)
	if err != nil {
		return ISignalIPdu{}, err
	}
	pdu := ISignalIPdu{e: e}
	pdu.SetLength(uint64(length))
	return pdu, nil
}

func ISignalIPduFromElement(e *arxml.Element) (ISignalIPdu, error) {
	if err := armodel.CheckElement(e, "I-SIGNAL-I-PDU", "ISignalIPdu"); err != nil {
		return ISignalIPdu{}, err
	}
	return ISignalIPdu{e: e}, nil
}

func (p ISignalIPdu) Element() *arxml.Element {
	return p.e
}

func (p ISignalIPdu) Name() string {
	return p.e.ItemName()
}

// SetLength sets the length of the PDU in bytes.
func (p ISignalIPdu) SetLength(length uint64) {
	p.e.GetOrCreateSubElement("LENGTH").
		SetCharacterData(strconv.FormatUint(length, 10))
}

// Length returns the length of the PDU in bytes.
func (p ISignalIPdu) Length() (uint64, bool) {
	l := p.e.GetSubElement("LENGTH")
	if l == nil {
		return 0, false
	}
	return l.CharacterDataUint()
}

// MapSignal places a signal into the payload of the PDU at the given bit
// position. The mapping is checked before anything is written: the signal
// must fit inside the PDU, must not overlap a previously mapped signal, and
// must not already be mapped. updateBit, if non-nil, records the position
// of the update flag for the signal.
func (p ISignalIPdu) MapSignal(signal ISignal, startPosition uint32, byteOrder armodel.ByteOrder, updateBit *uint32) (ISignalToIPduMapping, error) {
	bitLength, ok := signal.Length()
	if !ok {
		return ISignalToIPduMapping{}, fmt.Errorf("%w: signal %s has no length",
			armodel.ErrInvalidValue, signal.Name())
	}
	pduLength, ok := p.Length()
	if !ok {
		return ISignalToIPduMapping{}, fmt.Errorf("%w: PDU %s has no length",
			armodel.ErrInvalidValue, p.Name())
	}
	start := uint64(startPosition)
	end := start + bitLength
	if end > 8*pduLength {
		return ISignalToIPduMapping{}, fmt.Errorf("%w: signal %s (bits %d..%d) does not fit in PDU %s (%d bytes)",
			armodel.ErrInvalidValue, signal.Name(), start, end, p.Name(), pduLength)
	}
	for _, m := range p.MappedSignals() {
		other, err := m.Signal()
		if err != nil {
			continue
		}
		if other == signal {
			return ISignalToIPduMapping{}, fmt.Errorf("%w: signal %s is already mapped into PDU %s",
				armodel.ErrDuplicateName, signal.Name(), p.Name())
		}
		otherStart, ok := m.StartPosition()
		if !ok {
			continue
		}
		otherLength, ok := other.Length()
		if !ok {
			continue
		}
		otherEnd := otherStart + otherLength
		if start < otherEnd && otherStart < end {
			return ISignalToIPduMapping{}, fmt.Errorf("%w: signal %s (bits %d..%d) overlaps %s (bits %d..%d) in PDU %s",
				armodel.ErrInvalidValue, signal.Name(), start, end, other.Name(), otherStart, otherEnd, p.Name())
		}
	}
	mappings := p.e.GetOrCreateSubElement("I-SIGNAL-TO-PDU-MAPPINGS")
	me, err := mappings.CreateNamedSubElement("I-SIGNAL-TO-I-PDU-MAPPING", signal.Name())
	if err != nil {
		return ISignalToIPduMapping{}, armodel.WrapEngineErr(err)
	}
	if err := me.CreateSubElement("I-SIGNAL-REF").SetReferenceTarget(signal.Element()); err != nil {
		mappings.RemoveSubElement(me)
		return ISignalToIPduMapping{}, armodel.WrapEngineErr(err)
	}
	me.CreateSubElement("PACKING-BYTE-ORDER").SetCharacterData(byteOrder.String())
	me.CreateSubElement("START-POSITION").
		SetCharacterData(strconv.FormatUint(start, 10))
	if updateBit != nil {
		me.CreateSubElement("UPDATE-INDICATION-BIT-POSITION").
			SetCharacterData(strconv.FormatUint(uint64(*updateBit), 10))
	}
	return ISignalToIPduMapping{e: me}, nil
}

// MappedSignals lists the signal mappings of the PDU in document order.
func (p ISignalIPdu) MappedSignals() []ISignalToIPduMapping {
	list := p.e.GetSubElement("I-SIGNAL-TO-PDU-MAPPINGS")
	if list == nil {
		return nil
	}
	var res []ISignalToIPduMapping
	for _, c := range list.SubElements() {
		if m, err := ISignalToIPduMappingFromElement(c); err == nil {
			res = append(res, m)
		}
	}
	return res
}

//##################################################################

// ISignalToIPduMapping places one signal at a bit position inside a PDU.
type ISignalToIPduMapping struct {
	e *arxml.Element
}

func ISignalToIPduMappingFromElement(e *arxml.Element) (ISignalToIPduMapping, error) {
	if err := armodel.CheckElement(e, "I-SIGNAL-TO-I-PDU-MAPPING", "ISignalToIPduMapping"); err != nil {
		return ISignalToIPduMapping{}, err
	}
	return ISignalToIPduMapping{e: e}, nil
}

func (m ISignalToIPduMapping) Element() *arxml.Element {
	return m.e
}

func (m ISignalToIPduMapping) Name() string {
	return m.e.ItemName()
}

// Signal resolves the mapped signal.
func (m ISignalToIPduMapping) Signal() (ISignal, error) {
	ref := m.e.GetSubElement("I-SIGNAL-REF")
	if ref == nil {
		return ISignal{}, fmt.Errorf("%w: mapping %s has no signal reference",
			armodel.ErrInvalidReference, m.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return ISignal{}, armodel.WrapEngineErr(err)
	}
	return ISignalFromElement(target)
}

// StartPosition returns the bit position of the signal inside the PDU.
func (m ISignalToIPduMapping) StartPosition() (uint64, bool) {
	sp := m.e.GetSubElement("START-POSITION")
	if sp == nil {
		return 0, false
	}
	return sp.CharacterDataUint()
}

// ByteOrder returns the packing byte order of the mapping.
func (m ISignalToIPduMapping) ByteOrder() (armodel.ByteOrder, bool) {
	bo := m.e.GetSubElement("PACKING-BYTE-ORDER")
	if bo == nil {
		return 0, false
	}
	b, err := armodel.ParseByteOrder(bo.CharacterData())
	if err != nil {
		return 0, false
	}
	return b, true
}

// UpdateBit returns the update flag position, if one was recorded.
func (m ISignalToIPduMapping) UpdateBit() (uint64, bool) {
	ub := m.e.GetSubElement("UPDATE-INDICATION-BIT-POSITION")
	if ub == nil {
		return 0, false
	}
	return ub.CharacterDataUint()
}

//##################################################################

// PduTriggering records that a PDU is transmitted on a physical channel.
type PduTriggering struct {
	e *arxml.Element
}

func PduTriggeringFromElement(e *arxml.Element) (PduTriggering, error) {
	if err := armodel.CheckElement(e, "PDU-TRIGGERING", "PduTriggering"); err != nil {
		return PduTriggering{}, err
	}
	return PduTriggering{e: e}, nil
}

func (t PduTriggering) Element() *arxml.Element {
	return t.e
}

func (t PduTriggering) Name() string {
	return t.e.ItemName()
}

// Pdu resolves the triggered PDU.
func (t PduTriggering) Pdu() (ISignalIPdu, error) {
	ref := t.e.GetSubElement("I-PDU-REF")
	if ref == nil {
		return ISignalIPdu{}, fmt.Errorf("%w: triggering %s has no PDU reference",
			armodel.ErrInvalidReference, t.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return ISignalIPdu{}, armodel.WrapEngineErr(err)
	}
	return ISignalIPduFromElement(target)
}

// PhysicalChannel returns the channel the triggering belongs to.
func (t PduTriggering) PhysicalChannel() (PhysicalChannel, error) {
	return PhysicalChannelFromElement(t.e.NamedParent())
}

//##################################################################

// ISignalTriggering records that a signal is transmitted on a physical
// channel.
type ISignalTriggering struct {
	e *arxml.Element
}

func ISignalTriggeringFromElement(e *arxml.Element) (ISignalTriggering, error) {
	if err := armodel.CheckElement(e, "I-SIGNAL-TRIGGERING", "ISignalTriggering"); err != nil {
		return ISignalTriggering{}, err
	}
	return ISignalTriggering{e: e}, nil
}

func (t ISignalTriggering) Element() *arxml.Element {
	return t.e
}

func (t ISignalTriggering) Name() string {
	return t.e.ItemName()
}

// Signal resolves the triggered signal.
func (t ISignalTriggering) Signal() (ISignal, error) {
	ref := t.e.GetSubElement("I-SIGNAL-REF")
	if ref == nil {
		return ISignal{}, fmt.Errorf("%w: triggering %s has no signal reference",
			armodel.ErrInvalidReference, t.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return ISignal{}, armodel.WrapEngineErr(err)
	}
	return ISignalFromElement(target)
}

// PhysicalChannel returns the channel the triggering belongs to.
func (t ISignalTriggering) PhysicalChannel() (PhysicalChannel, error) {
	return PhysicalChannelFromElement(t.e.NamedParent())
}
