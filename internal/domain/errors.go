package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrReservedID       = errors.New("reserved id")
	ErrUnknownContainer = errors.New("unknown container")
	ErrIDSpaceExhausted = errors.New("id space exhausted")
)
