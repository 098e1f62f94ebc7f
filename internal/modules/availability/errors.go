package availability

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrOutsideHours = errors.New("window outside working hours")
	ErrTimeOff      = errors.New("window blocked by time off")
)
