package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidScene    = errors.New("invalid scene")
	ErrUploadMissing   = errors.New("uploaded audio not found")
	ErrSearchExhausted = errors.New("video search exhausted")
	ErrQueueStopped    = errors.New("render queue stopped")
)
