package resource

import "fmt"

// Kind classifies a resource registry failure.
type Kind int

const (
	// ErrOutOfMemory: the underlying allocator could not satisfy the request.
	ErrOutOfMemory Kind = iota
	// ErrInvalidDefinition: usage was empty or the format/size was unsupported.
	ErrInvalidDefinition
	// ErrOutOfRange: a view's subresource or byte range exceeded its resource.
	ErrOutOfRange
	// ErrInvalidHandle: the handle was stale, zero, or never registered.
	ErrInvalidHandle
)

func (k Kind) String() string {
	switch k {
	case ErrOutOfMemory:
		return "OutOfMemory"
	case ErrInvalidDefinition:
		return "InvalidDefinition"
	case ErrOutOfRange:
		return "OutOfRange"
	case ErrInvalidHandle:
		return "InvalidHandle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the resource registry's error type.
type Error struct {
	Kind    Kind
	Subject string
	Message string
}

func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("resource: %s: %s: %s", e.Kind, e.Subject, e.Message)
	}
	return fmt.Sprintf("resource: %s: %s", e.Kind, e.Message)
}
