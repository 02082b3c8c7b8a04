package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrValidation    = errors.New("invalid request")
	ErrGeneration    = errors.New("generation failed")
	ErrStorage       = errors.New("storage failure")
	ErrConfiguration = errors.New("configuration error")
)
