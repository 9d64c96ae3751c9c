package registry

import "errors"

var (
	ErrCodeTaken    = errors.New("room code already taken")
	ErrCodeNotFound = errors.New("room code not found")
)
