package service

import "errors"

// ErrValidation marks errors caused by the caller's input
var ErrValidation = errors.New("validation failed")

// ErrStorageDisabled is returned when an operation needs object storage and none is configured
var ErrStorageDisabled = errors.New("object storage is not configured")
