package domain

import "errors"

// Sentinel errors shared across services and transports
var (
	ErrUnsupportedCategory = errors.New("unsupported entity type")
	ErrNoSortStrategy      = errors.New("no such sort strategy")
	ErrInvalidParams       = errors.New("invalid query parameters")
)
