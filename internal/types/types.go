// Package types provides shared types for the productcache service.
// This package breaks import cycles between pkg/productcache and the internal packages.
package types

import "time"

// Target selects which store endpoint an operation runs against.
type Target int

const (
	TargetPrimary Target = iota + 1
	TargetReplica
)

func (t Target) String() string {
	switch t {
	case TargetPrimary:
		return "primary"
	case TargetReplica:
		return "replica"
	default:
		return "unknown"
	}
}

// Product is the sole entity served by the catalog.
type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewProduct holds the client-supplied fields of a product being created.
type NewProduct struct {
	Name       string
	PriceCents int64
}

// ProductPatch is a partial update. A nil field is left untouched.
type ProductPatch struct {
	Name       *string
	PriceCents *int64
}

// Assignment is a single column assignment of an update statement.
type Assignment struct {
	Column string
	Value  any
}

// IsEmpty reports whether the patch carries no field at all.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.PriceCents == nil
}

// Assignments resolves the patch into a fixed, ordered set of column assignments.
// The server-side timestamp is not included; the store appends it.
func (p ProductPatch) Assignments() []Assignment {
	out := make([]Assignment, 0, 2)
	if p.Name != nil {
		out = append(out, Assignment{Column: "name", Value: *p.Name})
	}
	if p.PriceCents != nil {
		out = append(out, Assignment{Column: "price_cents", Value: *p.PriceCents})
	}
	return out
}

// Outcome is the terminal state of a catalog operation.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeNotFound           Outcome = "not_found"
	OutcomeBadRequest         Outcome = "bad_request"
	OutcomeServiceUnavailable Outcome = "service_unavailable"
	OutcomeError              Outcome = "error"
)
