package armodel

import (
	"errors"
	"fmt"

	"github.com/openarkit/armodel/arxml"
)

var (
	// ErrNotFound indicates that no element exists at a referenced path.
	ErrNotFound = errors.New("not found")

	// ErrTypeMismatch indicates that an element exists but has the wrong
	// kind for the requested view type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrVersionNotSupported indicates that an operation is not legal for
	// the schema version of the document.
	ErrVersionNotSupported = errors.New("version not supported")

	// ErrDuplicateName indicates a name collision within a naming scope,
	// or an attempt to create an item whose role is already filled.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrInvalidReference indicates a malformed or dangling reference.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidValue indicates a violated domain invariant, e.g. an
	// incompatible data type category or a malformed package path.
	ErrInvalidValue = errors.New("invalid value")
)

// WrapEngineErr translates engine-level failures into the error kinds of
// this layer. Errors that already carry one of the kinds pass through.
func WrapEngineErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, arxml.ErrItemNameConflict):
		return fmt.Errorf("%w: %v", ErrDuplicateName, err)
	case errors.Is(err, arxml.ErrElementNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, arxml.ErrInvalidPath):
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	case errors.Is(err, arxml.ErrInvalidReference):
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	default:
		return err
	}
}
