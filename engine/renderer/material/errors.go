package material

import "errors"

var (
	// ErrUnknownParam is returned when a parameter name is not part of the layout.
	ErrUnknownParam = errors.New("unknown material parameter")
	// ErrKindMismatch is returned when a setter does not match the declared parameter kind or data type.
	ErrKindMismatch = errors.New("material parameter kind mismatch")
	// ErrDuplicateParam is returned when a layout declares the same name twice.
	ErrDuplicateParam = errors.New("duplicate material parameter")
	// ErrInvalidParam is returned for malformed declarations, e.g. a zero array size or an unknown data type.
	ErrInvalidParam = errors.New("invalid material parameter declaration")
	// ErrOutOfRange is returned for array indices or raw values that do not fit the parameter.
	ErrOutOfRange = errors.New("material parameter access out of range")
	// ErrLayoutMismatch is returned when a snapshot is applied to parameters of a different layout.
	ErrLayoutMismatch = errors.New("material parameter layout mismatch")
)
