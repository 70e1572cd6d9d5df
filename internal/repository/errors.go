package repository

import "errors"

var (
	ErrInvalidID     = errors.New("invalid product ID")
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateSlug = errors.New("product slug already exists")
)
