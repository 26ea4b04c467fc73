package mock

import "errors"

var (
	ErrResourceIsNil     = errors.New("resource is nil")
	ErrResultNotAPointer = errors.New("result must be a pointer to a slice")
)
