// Package domain defines the error taxonomy of the universe sync.
package domain

import (
	"errors"
	"fmt"
)

// ErrEmptySnapshot is wrapped in a DataError when the market data API returns no symbols.
var ErrEmptySnapshot = errors.New("no stock data fetched")

// ConnectivityError reports a network failure, timeout, non-success HTTP
// status or unreadable body from the market data API.
type ConnectivityError struct {
	// Status is the upstream HTTP status, or 0 when no response was received.
	Status int
	Detail string
	Err    error
}

func (e *ConnectivityError) Error() string {
	msg := "market data connectivity"
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: http %d", msg, e.Status)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// DataError reports a payload that cannot be reconciled (for example an empty snapshot).
type DataError struct {
	Reason string
	Err    error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("market data invalid: %s: %v", e.Reason, e.Err)
	}
	return "market data invalid: " + e.Reason
}

func (e *DataError) Unwrap() error { return e.Err }

// PersistenceError reports a batch rejected by the universe store.
// Batches before Batch have already been committed.
type PersistenceError struct {
	Op    string // "read", "update" or "insert"
	Batch int    // zero-based batch index
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("universe store %s batch %d: %v", e.Op, e.Batch, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Kind classifies err for logging: "connectivity", "data", "persistence" or "unknown".
func Kind(err error) string {
	var (
		connErr *ConnectivityError
		dataErr *DataError
		persErr *PersistenceError
	)
	switch {
	case errors.As(err, &connErr):
		return "connectivity"
	case errors.As(err, &dataErr):
		return "data"
	case errors.As(err, &persErr):
		return "persistence"
	default:
		return "unknown"
	}
}
