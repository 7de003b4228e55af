package model

import "errors"

var (
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNumericDegenerate = errors.New("numeric degenerate")
)
