package damper

import "errors"

var (
	// ErrMissingInput means a required parameter could not be read. It is a
	// precondition violation for the current evaluation.
	ErrMissingInput = errors.New("missing input")

	// ErrUnknownParameter is returned for compute requests the node does not handle.
	ErrUnknownParameter = errors.New("parameter not handled by this node")

	// ErrKindMismatch means a block returned a value of the wrong kind.
	ErrKindMismatch = errors.New("parameter kind mismatch")
)
