package document

import "errors"

// ErrUnsupportedReference matches any reference that is not root-relative.
var ErrUnsupportedReference = errors.New("unsupported reference")

// ErrExcessiveAliasing is returned when expanding YAML aliases would
// produce more values than Decode accepts.
var ErrExcessiveAliasing = errors.New("document contains excessive aliasing")

// ReferenceError reports a reference the resolver refuses to follow.
type ReferenceError struct {
	Ref     string
	Message string
}

func (e *ReferenceError) Error() string {
	msg := "unsupported reference"
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is makes errors.Is(err, ErrUnsupportedReference) hold for every ReferenceError.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrUnsupportedReference
}
