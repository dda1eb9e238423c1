package storage

import "errors"

var (
	ErrNotFound    = errors.New("storage: not found")
	ErrInvalidCID  = errors.New("storage: invalid cid")
	ErrCIDMismatch = errors.New("storage: stored bytes do not match cid")
	ErrImmutable   = errors.New("storage: object already stored with different bytes")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
