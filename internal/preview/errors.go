package preview

import (
	"errors"
	"fmt"

	"tonehub/internal/services"
)

// Kind classifies preview failures.
type Kind int

const (
	KindUnsupportedEngine Kind = iota + 1
	KindNotPreviewable
	KindNoNetworkLocation
	KindFetchFailed
	KindDecodeFailed
	KindPlaybackFailed
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedEngine:
		return "unsupported_engine"
	case KindNotPreviewable:
		return "not_previewable"
	case KindNoNetworkLocation:
		return "no_network_location"
	case KindFetchFailed:
		return "fetch_failed"
	case KindDecodeFailed:
		return "decode_failed"
	case KindPlaybackFailed:
		return "playback_failed"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against an *Error of the same Kind.
var (
	ErrUnsupportedEngine = errors.New("audio preview unsupported")
	ErrNotPreviewable    = errors.New("item not previewable")
	ErrNoNetworkLocation = errors.New("item has no network location")
	ErrFetchFailed       = errors.New("preview fetch failed")
	ErrDecodeFailed      = errors.New("preview decode failed")
	ErrPlaybackFailed    = errors.New("preview playback failed")
	ErrClosed            = errors.New("preview engine closed")
)

// Error is a user-facing preview failure.
type Error struct {
	Kind   Kind
	ItemID string
	Name   string
	Err    error
}

func (e *Error) Error() string {
	name := e.Name
	if name == "" {
		name = "this item"
	}
	switch e.Kind {
	case KindUnsupportedEngine:
		return "audio preview is not supported on this system"
	case KindNotPreviewable:
		return fmt.Sprintf("%s requires a NAM-capable plugin host; live preview is only available for impulse responses", name)
	case KindNoNetworkLocation:
		return fmt.Sprintf("%s has no public network path; download it to audition", name)
	case KindFetchFailed:
		return fmt.Sprintf("could not fetch %s: %v", name, e.Err)
	case KindDecodeFailed:
		return fmt.Sprintf("could not decode %s: %v", name, e.Err)
	case KindPlaybackFailed:
		return fmt.Sprintf("could not play %s: %v", name, e.Err)
	default:
		return fmt.Sprintf("preview failed: %v", e.Err)
	}
}

// Unwrap exposes the cause, the Kind sentinel, and the services marker used
// for status mapping.
func (e *Error) Unwrap() []error {
	errs := []error{e.sentinel(), e.marker()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindUnsupportedEngine:
		return ErrUnsupportedEngine
	case KindNotPreviewable:
		return ErrNotPreviewable
	case KindNoNetworkLocation:
		return ErrNoNetworkLocation
	case KindFetchFailed:
		return ErrFetchFailed
	case KindDecodeFailed:
		return ErrDecodeFailed
	default:
		return ErrPlaybackFailed
	}
}

func (e *Error) marker() error {
	switch e.Kind {
	case KindUnsupportedEngine:
		return services.ErrUnsupported
	case KindNotPreviewable, KindNoNetworkLocation, KindDecodeFailed:
		return services.ErrValidation
	case KindFetchFailed:
		return services.ErrExternalTool
	default:
		return services.ErrTransient
	}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
