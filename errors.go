package rendercore

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a RenderError per §7 of the design: resource
// creation, graph build, pipeline/device, and startup/config failures.
type ErrorKind int

const (
	// ErrKindOutOfMemory: the resource allocator could not satisfy a
	// create_texture/create_buffer request.
	ErrKindOutOfMemory ErrorKind = iota
	// ErrKindInvalidDefinition: a texture/buffer definition had an empty
	// usage mask or an unsupported format.
	ErrKindInvalidDefinition
	// ErrKindOutOfRange: a view's subresource range or byte range
	// exceeded its resource.
	ErrKindOutOfRange
	// ErrKindCycleDetected: a node declared contradictory same-node
	// accesses.
	ErrKindCycleDetected
	// ErrKindAliasedViewRace: a node wrote two overlapping views.
	ErrKindAliasedViewRace
	// ErrKindMissingBinding: a resolved descriptor binding was null.
	ErrKindMissingBinding
	// ErrKindShaderCompileFailed: surfaced from the Materials Registry
	// collaborator.
	ErrKindShaderCompileFailed
	// ErrKindDeviceLost: a GPU submission failed unrecoverably.
	ErrKindDeviceLost
	// ErrKindConfigMissing: a persisted-state file could not be found.
	ErrKindConfigMissing
	// ErrKindConfigMalformed: a persisted-state file failed to parse.
	ErrKindConfigMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindOutOfMemory:
		return "OutOfMemory"
	case ErrKindInvalidDefinition:
		return "InvalidDefinition"
	case ErrKindOutOfRange:
		return "OutOfRange"
	case ErrKindCycleDetected:
		return "CycleDetected"
	case ErrKindAliasedViewRace:
		return "AliasedViewRace"
	case ErrKindMissingBinding:
		return "MissingBinding"
	case ErrKindShaderCompileFailed:
		return "ShaderCompileFailed"
	case ErrKindDeviceLost:
		return "DeviceLost"
	case ErrKindConfigMissing:
		return "ConfigMissing"
	case ErrKindConfigMalformed:
		return "ConfigMalformed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// RenderError is the envelope for every fallible core operation, carrying
// enough context to name the offending node/resource in diagnostics.
type RenderError struct {
	Kind    ErrorKind
	Subject string // resource/node name, when known
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Subject, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// NewRenderError builds a RenderError with no subject.
func NewRenderError(kind ErrorKind, message string) *RenderError {
	return &RenderError{Kind: kind, Message: message}
}

// NewRenderErrorf builds a RenderError with a formatted message.
func NewRenderErrorf(kind ErrorKind, subject, format string, args ...any) *RenderError {
	return &RenderError{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a *RenderError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *RenderError
	if !errors.As(err, &re) {
		return false
	}
	return re.Kind == kind
}

// ErrDeviceLost is a RenderError of kind ErrKindDeviceLost. Render does
// not return this value: when the GPU collaborator's Submit fails it
// returns a new *RenderError of kind ErrKindDeviceLost wrapping the
// collaborator's error, so callers match it with IsKind. The core is not
// torn down afterwards; nothing marks it unusable.
var ErrDeviceLost = NewRenderError(ErrKindDeviceLost, "GPU device lost")
