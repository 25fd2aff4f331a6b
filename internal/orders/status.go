package orders

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipping  Status = "SHIPPING"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
	StatusFailed    Status = "FAILED"
)

// validNext is the full transition graph; anything absent is illegal.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusShipping: true, StatusCancelled: true},
	StatusShipping:  {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
	StatusFailed:    {},
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := validNext[st]; !ok {
		return "", Validationf("unknown status %q", s)
	}
	return st, nil
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// ValidateTransition checks the graph only; same-state requests are a no-op
// and callers are expected to short-circuit them before side effects.
func ValidateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if from.Terminal() {
		return ErrOrderFinalized
	}
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// AuthorizeTransition is the pure (role, current, requested) predicate.
// Customers may only request a cancellation, and only while the order is
// still pending. Admins are bound by the transition graph alone.
func AuthorizeTransition(role Role, from, to Status) error {
	if role == RoleAdmin {
		return nil
	}
	if to != StatusCancelled || from != StatusPending {
		return &AuthzError{Role: role, From: from, To: to}
	}
	return nil
}

type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

type AuthzError struct {
	Role     Role
	From, To Status
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("role %s may not request transition %s -> %s", e.Role, e.From, e.To)
}
