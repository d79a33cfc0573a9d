package service

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrConfiguration = errors.New("configuration error")
	ErrChain         = errors.New("blockchain error")
	ErrNotFound      = errors.New("not found")
)
