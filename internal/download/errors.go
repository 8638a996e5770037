package download

import (
	"errors"
	"fmt"

	"tonehub/internal/services"
)

// ErrInsufficientSpace reports a failed free-space preflight.
var ErrInsufficientSpace = errors.New("insufficient free space")

// Error is a localized, non-fatal transfer failure.
type Error struct {
	Action Action
	ItemID string
	Name   string
	Err    error
}

func (e *Error) Error() string {
	switch e.Action {
	case ActionClipboard:
		return fmt.Sprintf("could not copy the transfer command for %s: %v", e.Name, e.Err)
	case ActionSearch:
		return fmt.Sprintf("could not open the storage search for %s: %v", e.Name, e.Err)
	default:
		return fmt.Sprintf("could not download %s: %v", e.Name, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	marker := services.ErrExternalTool
	if errors.Is(e.Err, ErrInsufficientSpace) {
		marker = services.ErrValidation
	}
	return []error{marker, e.Err}
}
