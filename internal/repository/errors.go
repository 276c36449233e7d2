package repository

import "errors"

var (
	ErrNotFound         = errors.New("entity not found")
	ErrConnectionFailed = errors.New("storage connection failed")
	ErrQueryFailed      = errors.New("storage query failed")
)
