package communication

import (
	"fmt"
	"regexp"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

// EcuInstance is one ECU of the system. It owns communication controllers
// and the connectors that attach them to physical channels.
type EcuInstance struct {
	e *arxml.Element
}

func newEcuInstance(pkg armodel.ArPackage, name string) (EcuInstance, error) {
	e, err := pkg.CreateNamedElement("ECU-INSTANCE", name)
	if err != nil {
		return EcuInstance{}, err
	}
	return EcuInstance{e: e}, nil
}

func EcuInstanceFromElement(e *arxml.Element) (EcuInstance, error) {
	if err := armodel.CheckElement(e, "ECU-INSTANCE", "EcuInstance"); err != nil {
		return EcuInstance{}, err
	}
	return EcuInstance{e: e}, nil
}

func (ecu EcuInstance) Element() *arxml.Element {
	return ecu.e
}

func (ecu EcuInstance) Name() string {
	return ecu.e.ItemName()
}

var macAddressRe = regexp.MustCompile(`^[0-9a-fA-F]{2}(:[0-9a-fA-F]{2}){5}$`)

// CreateCanCommunicationController creates a CAN controller in the ECU.
func (ecu EcuInstance) CreateCanCommunicationController(name string) (CanCommunicationController, error) {
	ctrl, err := ecu.e.GetOrCreateSubElement("COMM-CONTROLLERS").
		CreateNamedSubElement("CAN-COMMUNICATION-CONTROLLER", name)
	if err != nil {
		return CanCommunicationController{}, armodel.WrapEngineErr(err)
	}
	ctrl.CreateSubElement("CAN-COMMUNICATION-CONTROLLER-VARIANTS").
		CreateSubElement("CAN-COMMUNICATION-CONTROLLER-CONDITIONAL")
	return CanCommunicationController{e: ctrl}, nil
}

// CreateEthernetCommunicationController creates an Ethernet controller in
// the ECU. macAddress may be empty; a non-empty value must be a unicast MAC
// address in colon notation and is validated before anything is created.
func (ecu EcuInstance) CreateEthernetCommunicationController(name, macAddress string) (EthernetCommunicationController, error) {
	if macAddress != "" && !macAddressRe.MatchString(macAddress) {
		return EthernetCommunicationController{}, fmt.Errorf("%w: malformed MAC address %q",
			armodel.ErrInvalidValue, macAddress)
	}
	controllers := ecu.e.GetOrCreateSubElement("COMM-CONTROLLERS")
	ctrl, err := controllers.CreateNamedSubElement("ETHERNET-COMMUNICATION-CONTROLLER", name)
	if err != nil {
		return EthernetCommunicationController{}, armodel.WrapEngineErr(err)
	}
	cond := ctrl.CreateSubElement("ETHERNET-COMMUNICATION-CONTROLLER-VARIANTS").
		CreateSubElement("ETHERNET-COMMUNICATION-CONTROLLER-CONDITIONAL")
	if macAddress != "" {
		cond.CreateSubElement("MAC-UNICAST-ADDRESS").SetCharacterData(macAddress)
	}
	ports := cond.CreateSubElement("COUPLING-PORTS")
	if _, err := ports.CreateNamedSubElement("COUPLING-PORT", name+"_CouplingPort"); err != nil {
		controllers.RemoveSubElement(ctrl)
		return EthernetCommunicationController{}, armodel.WrapEngineErr(err)
	}
	return EthernetCommunicationController{e: ctrl}, nil
}

// CreateFlexrayCommunicationController creates a FlexRay controller in the
// ECU.
func (ecu EcuInstance) CreateFlexrayCommunicationController(name string) (FlexrayCommunicationController, error) {
	ctrl, err := ecu.e.GetOrCreateSubElement("COMM-CONTROLLERS").
		CreateNamedSubElement("FLEXRAY-COMMUNICATION-CONTROLLER", name)
	if err != nil {
		return FlexrayCommunicationController{}, armodel.WrapEngineErr(err)
	}
	ctrl.CreateSubElement("FLEXRAY-COMMUNICATION-CONTROLLER-VARIANTS").
		CreateSubElement("FLEXRAY-COMMUNICATION-CONTROLLER-CONDITIONAL")
	return FlexrayCommunicationController{e: ctrl}, nil
}

// CommunicationController is implemented by all controller views.
type CommunicationController interface {
	armodel.Wrapper
	Name() string
	// EcuInstance returns the ECU owning the controller.
	EcuInstance() (EcuInstance, error)
}

// CommunicationControllerFromElement converts an element into the matching
// controller view.
func CommunicationControllerFromElement(e *arxml.Element) (CommunicationController, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: no element to convert to CommunicationController", armodel.ErrNotFound)
	}
	switch e.ElementName() {
	case "CAN-COMMUNICATION-CONTROLLER":
		return CanCommunicationControllerFromElement(e)
	case "ETHERNET-COMMUNICATION-CONTROLLER":
		return EthernetCommunicationControllerFromElement(e)
	case "FLEXRAY-COMMUNICATION-CONTROLLER":
		return FlexrayCommunicationControllerFromElement(e)
	default:
		return nil, fmt.Errorf("%w: cannot convert %s to CommunicationController",
			armodel.ErrTypeMismatch, e.ElementName())
	}
}

// CommunicationControllers lists the controllers of the ECU.
func (ecu EcuInstance) CommunicationControllers() []CommunicationController {
	ctrls := ecu.e.GetSubElement("COMM-CONTROLLERS")
	if ctrls == nil {
		return nil
	}
	var res []CommunicationController
	for _, c := range ctrls.SubElements() {
		if v, err := CommunicationControllerFromElement(c); err == nil {
			res = append(res, v)
		}
	}
	return res
}
