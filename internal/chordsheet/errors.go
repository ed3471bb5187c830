package chordsheet

import "errors"

// ErrInvalidArgument marks a caller precondition violation
var ErrInvalidArgument = errors.New("invalid argument")
