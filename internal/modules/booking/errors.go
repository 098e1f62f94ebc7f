package booking

import "errors"

var (
	ErrValidation            = errors.New("validation error")
	ErrNotFound              = errors.New("booking not found")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrOutsideHours          = errors.New("requested window is outside working hours")
	ErrTimeOff               = errors.New("requested window falls into time off")
	ErrAlreadyBooked         = errors.New("requested window is already booked")
	ErrSlotNoLongerAvailable = errors.New("slot no longer available")
	ErrPaymentFailed         = errors.New("payment failed")
	ErrInvalidRefundAmount   = errors.New("invalid refund amount")
	ErrNoRefundDue           = errors.New("no refund due")
	ErrNotElapsed            = errors.New("appointment time has not elapsed")
)
