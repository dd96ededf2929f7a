package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("catalog: product not found")
	ErrBadRequest         = errors.New("catalog: no fields to update")
	ErrServiceUnavailable = errors.New("catalog: service unavailable")
	ErrConnectivity       = errors.New("store: connectivity failure")

	ErrCacheMiss = errors.New("cache: key not found")
	ErrClosed    = errors.New("cache: closed")
)

// FailureKind classifies a connectivity failure.
type FailureKind string

const (
	KindDial              FailureKind = "dial"
	KindConnectionLost    FailureKind = "connection_lost"
	KindTimeout           FailureKind = "timeout"
	KindServerUnavailable FailureKind = "server_unavailable"
)

// ConnectivityError reports that a store endpoint could not be reached
// or that the connection was lost mid-operation.
type ConnectivityError struct {
	Target Target
	Op     string
	Kind   FailureKind
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("store %s on %s: %s: %v", e.Op, e.Target, e.Kind, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

func (e *ConnectivityError) Is(target error) bool {
	return target == ErrConnectivity
}

func NewConnectivityError(target Target, op string, kind FailureKind, err error) *ConnectivityError {
	return &ConnectivityError{
		Target: target,
		Op:     op,
		Kind:   kind,
		Err:    err,
	}
}

// StoreError wraps a store failure that is not a connectivity problem,
// such as a constraint violation. It never triggers a fallback.
type StoreError struct {
	Target Target
	Op     string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Op, e.Target, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// UnavailableError is returned once every viable store target is exhausted.
// Cause is the connectivity failure of the last target attempted.
type UnavailableError struct {
	Op    string
	Cause *ConnectivityError
}

func (e *UnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("catalog %s: service unavailable", e.Op)
	}
	return fmt.Sprintf("catalog %s: service unavailable: %v", e.Op, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrServiceUnavailable
}

// Kind returns the failure kind that made the service unavailable.
func (e *UnavailableError) Kind() FailureKind {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Kind
}

// NewUnavailableError lifts a connectivity failure into ServiceUnavailable.
func NewUnavailableError(op string, err error) *UnavailableError {
	var connErr *ConnectivityError
	errors.As(err, &connErr)
	return &UnavailableError{Op: op, Cause: connErr}
}

// CacheError is a cache layer failure. It is absorbed by the cache adapter
// and never reaches the catalog.
type CacheError struct {
	Op    string
	Key   string
	Layer string
	Err   error
}

func (e *CacheError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cache %s on %s [%s]: %v", e.Op, e.Layer, e.Key, e.Err)
	}
	return fmt.Sprintf("cache %s on %s: %v", e.Op, e.Layer, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

func NewCacheError(op, key, layer string, err error) *CacheError {
	return &CacheError{
		Op:    op,
		Key:   key,
		Layer: layer,
		Err:   err,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

func IsConnectivity(err error) bool {
	return errors.Is(err, ErrConnectivity)
}

func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// OutcomeOf maps a catalog error to its terminal state.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case IsNotFound(err):
		return OutcomeNotFound
	case IsBadRequest(err):
		return OutcomeBadRequest
	case IsServiceUnavailable(err):
		return OutcomeServiceUnavailable
	default:
		return OutcomeError
	}
}
