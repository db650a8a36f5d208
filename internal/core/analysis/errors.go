package analysis

import "errors"

// Failure categories. Every error returned by this package wraps exactly one.
var (
	ErrDecode        = errors.New("decode error")
	ErrService       = errors.New("service error")
	ErrEmptyResponse = errors.New("empty response")
	ErrParse         = errors.New("parse error")
	ErrCapability    = errors.New("capability error")
)

// CapabilityError is a camera, microphone or capture failure reported by
// the device. Msg is shown to the user as is.
type CapabilityError struct {
	Msg string
}

func (e *CapabilityError) Error() string { return e.Msg }

func (e *CapabilityError) Unwrap() error { return ErrCapability }

const (
	CategoryDecode        = "decode"
	CategoryService       = "service"
	CategoryEmptyResponse = "empty_response"
	CategoryParse         = "parse"
	CategoryCapability    = "capability"
	CategoryUnknown       = "unknown"
)

func Category(err error) string {
	switch {
	case errors.Is(err, ErrDecode):
		return CategoryDecode
	case errors.Is(err, ErrParse):
		return CategoryParse
	case errors.Is(err, ErrEmptyResponse):
		return CategoryEmptyResponse
	case errors.Is(err, ErrService):
		return CategoryService
	case errors.Is(err, ErrCapability):
		return CategoryCapability
	default:
		return CategoryUnknown
	}
}

// FailureMessage turns an analysis error into the text shown to the user.
func FailureMessage(err error) string {
	switch Category(err) {
	case CategoryDecode:
		return "Couldn't read the captured image. Please try capturing again."
	case CategoryService:
		return "The pose analysis service is unavailable right now. Please try again."
	case CategoryEmptyResponse:
		return "The pose analysis came back empty. Please try again."
	case CategoryParse:
		return "The pose analysis returned an unexpected answer. Please try again."
	case CategoryCapability:
		var ce *CapabilityError
		if errors.As(err, &ce) {
			return ce.Msg
		}
		return "A device capability failed. Check camera and microphone access."
	default:
		return "Analysis failed: " + err.Error()
	}
}
