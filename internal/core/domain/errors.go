package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("vote session not found")
	ErrInternal        = errors.New("internal server error")
)
