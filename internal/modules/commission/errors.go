package commission

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("commission rule not found")
	ErrRuleConflict = errors.New("multiple commission rules match with equal priority")
)
