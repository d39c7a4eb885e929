package swcomponent

import (
	"fmt"
	"strconv"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// SwcInternalBehavior holds the runnables of an atomic component and the
// RTE events starting them.
type SwcInternalBehavior struct {
	e *arxml.Element
}

func SwcInternalBehaviorFromElement(e *arxml.Element) (SwcInternalBehavior, error) {
	if err := armodel.CheckElement(e, "SWC-INTERNAL-BEHAVIOR", "SwcInternalBehavior"); err != nil {
		return SwcInternalBehavior{}, err
	}
	return SwcInternalBehavior{e: e}, nil
}

func (b SwcInternalBehavior) Element() *arxml.Element {
	return b.e
}

func (b SwcInternalBehavior) Name() string {
	return b.e.ItemName()
}

// CreateRunnableEntity adds a runnable to the behavior.
func (b SwcInternalBehavior) CreateRunnableEntity(name string) (RunnableEntity, error) {
	e, err := b.e.GetOrCreateSubElement("RUNNABLES").
		CreateNamedSubElement("RUNNABLE-ENTITY", name)
	if err != nil {
		return RunnableEntity{}, armodel.WrapEngineErr(err)
	}
	return RunnableEntity{e: e}, nil
}

// RunnableEntities lists the runnables of the behavior.
func (b SwcInternalBehavior) RunnableEntities() []RunnableEntity {
	runnables := b.e.GetSubElement("RUNNABLES")
	if runnables == nil {
		return nil
	}
	var res []RunnableEntity
	for _, c := range runnables.SubElements() {
		if r, err := RunnableEntityFromElement(c); err == nil {
			res = append(res, r)
		}
	}
	return res
}

func (b SwcInternalBehavior) checkRunnable(r RunnableEntity) error {
	if r.e == nil {
		return fmt.Errorf("%w: no runnable", armodel.ErrInvalidValue)
	}
	if r.e.NamedParent() != b.e {
		return fmt.Errorf("%w: runnable %s does not belong to behavior %s",
			armodel.ErrInvalidValue, r.Name(), b.Name())
	}
	return nil
}

func (b SwcInternalBehavior) createEvent(elementName, name string, runnable RunnableEntity) (*arxml.Element, error) {
	if err := b.checkRunnable(runnable); err != nil {
		return nil, err
	}
	created := b.e.GetSubElement("EVENTS") == nil
	events := b.e.GetOrCreateSubElement("EVENTS")
	e, err := events.CreateNamedSubElement(elementName, name)
	if err != nil {
		if created {
			b.e.RemoveSubElement(events)
		}
		return nil, armodel.WrapEngineErr(err)
	}
	if err := e.CreateSubElement("START-ON-EVENT-REF").
		SetReferenceTarget(runnable.Element()); err != nil {
		b.removeEvent(e)
		return nil, armodel.WrapEngineErr(err)
	}
	return e, nil
}

// removeEvent rolls back a partially written event, dropping the EVENTS
// grouping again when the event was its only entry.
func (b SwcInternalBehavior) removeEvent(e *arxml.Element) {
	events := b.e.GetSubElement("EVENTS")
	if events == nil {
		return
	}
	events.RemoveSubElement(e)
	if len(events.SubElements()) == 0 {
		b.e.RemoveSubElement(events)
	}
}

// CreateTimingEvent adds an event that starts the runnable periodically.
// period is in seconds.
func (b SwcInternalBehavior) CreateTimingEvent(name string, runnable RunnableEntity, period float64) (TimingEvent, error) {
	if period <= 0 {
		return TimingEvent{}, fmt.Errorf("%w: timing event %s needs a positive period",
			armodel.ErrInvalidValue, name)
	}
	e, err := b.createEvent("TIMING-EVENT", name, runnable)
	if err != nil {
		return TimingEvent{}, err
	}
	e.CreateSubElement("PERIOD").
		SetCharacterData(strconv.FormatFloat(period, 'g', -1, 64))
	return TimingEvent{rteEvent{e: e}}, nil
}

// CreateInitEvent adds an event that starts the runnable once at RTE
// startup.
func (b SwcInternalBehavior) CreateInitEvent(name string, runnable RunnableEntity) (InitEvent, error) {
	e, err := b.createEvent("INIT-EVENT", name, runnable)
	if err != nil {
		return InitEvent{}, err
	}
	return InitEvent{rteEvent{e: e}}, nil
}

// CreateOperationInvokedEvent adds an event that starts the runnable when
// the given operation is called through the given provide port.
func (b SwcInternalBehavior) CreateOperationInvokedEvent(name string, runnable RunnableEntity, port PPortPrototype, operation ClientServerOperation) (OperationInvokedEvent, error) {
	if port.e == nil || operation.e == nil {
		return OperationInvokedEvent{}, fmt.Errorf("%w: event %s needs a port and an operation",
			armodel.ErrInvalidValue, name)
	}
	e, err := b.createEvent("OPERATION-INVOKED-EVENT", name, runnable)
	if err != nil {
		return OperationInvokedEvent{}, err
	}
	iref := e.CreateSubElement("OPERATION-IREF")
	if err := iref.CreateSubElement("CONTEXT-P-PORT-REF").SetReferenceTarget(port.Element()); err != nil {
		b.removeEvent(e)
		return OperationInvokedEvent{}, armodel.WrapEngineErr(err)
	}
	if err := iref.CreateSubElement("TARGET-PROVIDED-OPERATION-REF").SetReferenceTarget(operation.Element()); err != nil {
		b.removeEvent(e)
		return OperationInvokedEvent{}, armodel.WrapEngineErr(err)
	}
	return OperationInvokedEvent{rteEvent{e: e}}, nil
}

// CreateDataReceivedEvent adds an event that starts the runnable when data
// arrives on the given require port's data element.
func (b SwcInternalBehavior) CreateDataReceivedEvent(name string, runnable RunnableEntity, port RPortPrototype, dataElement VariableDataPrototype) (DataReceivedEvent, error) {
	if port.e == nil || dataElement.e == nil {
		return DataReceivedEvent{}, fmt.Errorf("%w: event %s needs a port and a data element",
			armodel.ErrInvalidValue, name)
	}
	e, err := b.createEvent("DATA-RECEIVED-EVENT", name, runnable)
	if err != nil {
		return DataReceivedEvent{}, err
	}
	iref := e.CreateSubElement("DATA-IREF")
	if err := iref.CreateSubElement("CONTEXT-R-PORT-REF").SetReferenceTarget(port.Element()); err != nil {
		b.removeEvent(e)
		return DataReceivedEvent{}, armodel.WrapEngineErr(err)
	}
	if err := iref.CreateSubElement("TARGET-DATA-ELEMENT-REF").SetReferenceTarget(dataElement.Element()); err != nil {
		b.removeEvent(e)
		return DataReceivedEvent{}, armodel.WrapEngineErr(err)
	}
	return DataReceivedEvent{rteEvent{e: e}}, nil
}

// Events lists the RTE events of the behavior.
func (b SwcInternalBehavior) Events() []RTEEvent {
	events := b.e.GetSubElement("EVENTS")
	if events == nil {
		return nil
	}
	var res []RTEEvent
	for _, c := range events.SubElements() {
		if ev, err := RTEEventFromElement(c); err == nil {
			res = append(res, ev)
		}
	}
	return res
}

//##################################################################

// RunnableEntity is one schedulable function of a component.
type RunnableEntity struct {
	e *arxml.Element
}

func RunnableEntityFromElement(e *arxml.Element) (RunnableEntity, error) {
	if err := armodel.CheckElement(e, "RUNNABLE-ENTITY", "RunnableEntity"); err != nil {
		return RunnableEntity{}, err
	}
	return RunnableEntity{e: e}, nil
}

func (r RunnableEntity) Element() *arxml.Element {
	return r.e
}

func (r RunnableEntity) Name() string {
	return r.e.ItemName()
}

// SetSymbol sets the C symbol implementing the runnable.
func (r RunnableEntity) SetSymbol(symbol string) {
	r.e.GetOrCreateSubElement("SYMBOL").SetCharacterData(symbol)
}

// Symbol returns the C symbol of the runnable, or "" if none is set.
func (r RunnableEntity) Symbol() string {
	s := r.e.GetSubElement("SYMBOL")
	if s == nil {
		return ""
	}
	return s.CharacterData()
}

//##################################################################

// RTEEvent is implemented by all event views.
type RTEEvent interface {
	armodel.Wrapper
	Name() string
	// Runnable resolves the runnable started by the event.
	Runnable() (RunnableEntity, error)
}

// RTEEventFromElement converts an element into the matching event view.
func RTEEventFromElement(e *arxml.Element) (RTEEvent, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: no element to convert to RTEEvent", armodel.ErrNotFound)
	}
	switch e.ElementName() {
	case "TIMING-EVENT":
		return TimingEventFromElement(e)
	case "INIT-EVENT":
		return InitEventFromElement(e)
	case "OPERATION-INVOKED-EVENT":
		return OperationInvokedEventFromElement(e)
	case "DATA-RECEIVED-EVENT":
		return DataReceivedEventFromElement(e)
	default:
		return nil, fmt.Errorf("%w: cannot convert %s to RTEEvent",
			armodel.ErrTypeMismatch, e.ElementName())
	}
}

// rteEvent carries the behavior shared by every event view.
type rteEvent struct {
	e *arxml.Element
}

func (ev rteEvent) Element() *arxml.Element {
	return ev.e
}

func (ev rteEvent) Name() string {
	return ev.e.ItemName()
}

// Runnable resolves the runnable started by the event.
func (ev rteEvent) Runnable() (RunnableEntity, error) {
	ref := ev.e.GetSubElement("START-ON-EVENT-REF")
	if ref == nil {
		return RunnableEntity{}, fmt.Errorf("%w: event %s has no runnable reference",
			armodel.ErrInvalidReference, ev.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return RunnableEntity{}, armodel.WrapEngineErr(err)
	}
	return RunnableEntityFromElement(target)
}

// TimingEvent starts a runnable periodically.
type TimingEvent struct {
	rteEvent
}

func TimingEventFromElement(e *arxml.Element) (TimingEvent, error) {
	if err := armodel.CheckElement(e, "TIMING-EVENT", "TimingEvent"); err != nil {
		return TimingEvent{}, err
	}
	return TimingEvent{rteEvent{e: e}}, nil
}

// Period returns the period of the event in seconds.
func (ev TimingEvent) Period() (float64, bool) {
	p := ev.e.GetSubElement("PERIOD")
	if p == nil {
		return 0, false
	}
	return p.CharacterDataFloat()
}

// InitEvent starts a runnable once at RTE startup.
type InitEvent struct {
	rteEvent
}

func InitEventFromElement(e *arxml.Element) (InitEvent, error) {
	if err := armodel.CheckElement(e, "INIT-EVENT", "InitEvent"); err != nil {
		return InitEvent{}, err
	}
	return InitEvent{rteEvent{e: e}}, nil
}

// OperationInvokedEvent starts a runnable when an operation is called.
type OperationInvokedEvent struct {
	rteEvent
}

func OperationInvokedEventFromElement(e *arxml.Element) (OperationInvokedEvent, error) {
	if err := armodel.CheckElement(e, "OPERATION-INVOKED-EVENT", "OperationInvokedEvent"); err != nil {
		return OperationInvokedEvent{}, err
	}
	return OperationInvokedEvent{rteEvent{e: e}}, nil
}

// Operation resolves the operation triggering the event.
func (ev OperationInvokedEvent) Operation() (ClientServerOperation, error) {
	iref := ev.e.GetSubElement("OPERATION-IREF")
	if iref == nil {
		return ClientServerOperation{}, fmt.Errorf("%w: event %s has no operation reference",
			armodel.ErrInvalidReference, ev.Name())
	}
	ref := iref.GetSubElement("TARGET-PROVIDED-OPERATION-REF")
	if ref == nil {
		return ClientServerOperation{}, fmt.Errorf("%w: event %s has no operation reference",
			armodel.ErrInvalidReference, ev.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return ClientServerOperation{}, armodel.WrapEngineErr(err)
	}
	return ClientServerOperationFromElement(target)
}

// DataReceivedEvent starts a runnable when data arrives on a require port.
type DataReceivedEvent struct {
	rteEvent
}

func DataReceivedEventFromElement(e *arxml.Element) (DataReceivedEvent, error) {
	if err := armodel.CheckElement(e, "DATA-RECEIVED-EVENT", "DataReceivedEvent"); err != nil {
		return DataReceivedEvent{}, err
	}
	return DataReceivedEvent{rteEvent{e: e}}, nil
}

// DataElement resolves the data element triggering the event.
func (ev DataReceivedEvent) DataElement() (VariableDataPrototype, error) {
	iref := ev.e.GetSubElement("DATA-IREF")
	if iref == nil {
		return VariableDataPrototype{}, fmt.Errorf("%w: event %s has no data element reference",
			armodel.ErrInvalidReference, ev.Name())
	}
	ref := iref.GetSubElement("TARGET-DATA-ELEMENT-REF")
	if ref == nil {
		return VariableDataPrototype{}, fmt.Errorf("%w: event %s has no data element reference",
			armodel.ErrInvalidReference, ev.Name())
	}
	target, err := ref.ReferenceTarget()
	if err != nil {
		return VariableDataPrototype{}, armodel.WrapEngineErr(err)
	}
	return VariableDataPrototypeFromElement(target)
}
