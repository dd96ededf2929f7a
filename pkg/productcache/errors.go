package productcache

import (
	"github.com/LavishGent/productcache/internal/types"
)

type (
	// UnavailableError is returned when no store target could be reached.
	UnavailableError = types.UnavailableError
	// ConnectivityError is a store endpoint failure.
	ConnectivityError = types.ConnectivityError
	// StoreError is a store failure unrelated to connectivity.
	StoreError = types.StoreError
	// FailureKind classifies a connectivity failure.
	FailureKind = types.FailureKind
)

var (
	// ErrNotFound indicates that the product does not exist.
	ErrNotFound = types.ErrNotFound
	// ErrBadRequest indicates an update without any field.
	ErrBadRequest = types.ErrBadRequest
	// ErrServiceUnavailable indicates that every viable store target failed.
	ErrServiceUnavailable = types.ErrServiceUnavailable
)

const (
	KindDial              = types.KindDial
	KindConnectionLost    = types.KindConnectionLost
	KindTimeout           = types.KindTimeout
	KindServerUnavailable = types.KindServerUnavailable
)

// IsNotFound returns true if the error means the product does not exist.
func IsNotFound(err error) bool {
	return types.IsNotFound(err)
}

// IsBadRequest returns true if the error is an empty update.
func IsBadRequest(err error) bool {
	return types.IsBadRequest(err)
}

// IsServiceUnavailable returns true if no store target could be reached.
func IsServiceUnavailable(err error) bool {
	return types.IsServiceUnavailable(err)
}

// OutcomeOf maps an error returned by the App to its terminal state.
func OutcomeOf(err error) Outcome {
	return types.OutcomeOf(err)
}
