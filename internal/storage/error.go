package storage

import "errors"

// Error description
const (
	ErrPrepareStatement = "failed to prepare SQL statement"
	ErrExecuteStatement = "failed to execute statement"
	ErrExecuteQuery     = "failed to execute query"
	ErrScanData         = "failed to scan data"
	ErrRetrieveRows     = "failed to retrieve rows affected"
)

var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrInvalidFilter = errors.New("invalid search filter")
)
