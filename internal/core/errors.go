package core

import "errors"

var (
	// ErrAlreadyEmbedded is returned by SaveBook when the provider already
	// has chunks for the book.
	ErrAlreadyEmbedded = errors.New("book already embedded by provider")

	ErrBookNotFound = errors.New("book not found")

	ErrUnknownDistanceOperator = errors.New("unknown distance operator")
)
