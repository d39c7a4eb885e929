package arxml

import "errors"

var (
	// ErrItemNameConflict is returned when a named element would collide
	// with a sibling that already uses the same SHORT-NAME.
	ErrItemNameConflict = errors.New("item name conflict")

	// ErrElementNotFound is returned when no element exists at a path.
	ErrElementNotFound = errors.New("element not found")

	// ErrInvalidPath is returned for paths that are not absolute
	// slash-separated AUTOSAR paths.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidReference is returned when a reference element holds no
	// usable target path.
	ErrInvalidReference = errors.New("invalid reference")
)
