package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrDictionaryLoad    = errors.New("dictionary load failed")
	ErrUnknownDictionary = errors.New("unknown dictionary")
	ErrEntityNotFound    = errors.New("entity not found")
	ErrScan              = errors.New("scan failed")
	ErrInvalidInput      = errors.New("invalid input")
)
