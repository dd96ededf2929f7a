package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/LavishGent/productcache/internal/types"
)

// Classify maps a driver error to the store taxonomy. Connectivity failures
// become *types.ConnectivityError; anything else becomes *types.StoreError.
func Classify(target types.Target, op string, err error) error {
	if err == nil {
		return nil
	}
	if kind, ok := connectivityKind(err); ok {
		return types.NewConnectivityError(target, op, kind, err)
	}
	return &types.StoreError{Target: target, Op: op, Err: err}
}

//nolint:gocyclo // One branch per driver signal
func connectivityKind(err error) (types.FailureKind, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "08":
			if pqErr.Code == "08001" || pqErr.Code == "08004" {
				return types.KindDial, true
			}
			return types.KindConnectionLost, true
		case pqErr.Code == "57P01", pqErr.Code == "57P02", pqErr.Code == "57P03", pqErr.Code == "57P04":
			return types.KindServerUnavailable, true
		case pqErr.Code.Class() == "53":
			// too_many_connections and other resource exhaustion
			return types.KindServerUnavailable, true
		case pqErr.Code.Class() == "28", pqErr.Code == "3D000":
			// session refused at startup: bad credentials or unknown database
			return types.KindDial, true
		}
		return "", false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrCantOpen:
			return types.KindDial, true
		case sqlite3.ErrIoErr:
			return types.KindConnectionLost, true
		case sqlite3.ErrNotADB:
			return types.KindServerUnavailable, true
		}
		return "", false
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, syscall.ETIMEDOUT):
		return types.KindTimeout, true
	case errors.Is(err, syscall.ECONNREFUSED):
		return types.KindDial, true
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return types.KindConnectionLost, true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return types.KindDial, true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return types.KindTimeout, true
		}
		if opErr.Op == "dial" {
			return types.KindDial, true
		}
		return types.KindConnectionLost, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return types.KindTimeout, true
		}
		return types.KindConnectionLost, true
	}

	// database/sql reports a closed handle only by message.
	if strings.Contains(err.Error(), "sql: database is closed") {
		return types.KindConnectionLost, true
	}

	return "", false
}
