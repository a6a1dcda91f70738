package gpuparams

import "errors"

var (
	// ErrUnboundParam is returned when a shader declares a resource or block member no material parameter binds to.
	ErrUnboundParam = errors.New("shader resource has no matching material parameter")
	// ErrTypeMismatch is returned when a data parameter's type does not fit the block member it binds to.
	ErrTypeMismatch = errors.New("material parameter type does not match shader declaration")
	// ErrSlotConflict is returned when stages of one pass declare different resources on the same (set, slot).
	ErrSlotConflict = errors.New("conflicting declarations for resource slot")
	// ErrAmbiguousParam is returned when a shader resource matches several parameters, or an unqualified
	// parameter matches members of several blocks.
	ErrAmbiguousParam = errors.New("ambiguous material parameter binding")
	// ErrInvalidBlock is returned for parameter blocks whose layout cannot be reflected.
	ErrInvalidBlock = errors.New("parameter block layout cannot be reflected")
)
