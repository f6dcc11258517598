// Package lifecycle holds the listing status rules shared by the API server
// and the client. Nothing in here performs I/O.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
	StatusSold     Status = "Sold"
)

var (
	// ErrPreconditionFailed is returned for any edit or review of a Sold listing.
	ErrPreconditionFailed = errors.New("listing is sold and can no longer change")
	ErrUnknownStatus      = errors.New("unknown listing status")
	ErrUnknownAction      = errors.New("unknown review action")
)

// ParseStatus accepts the status names case-insensitively, since older
// clients compare statuses after lowercasing them.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "approved":
		return StatusApproved, nil
	case "rejected":
		return StatusRejected, nil
	case "sold":
		return StatusSold, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// Valid reports whether s is one of the canonical status names.
func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s Status) IsTerminal() bool { return s == StatusSold }

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:  {StatusApproved: true, StatusRejected: true},
	StatusApproved: {StatusPending: true, StatusRejected: true, StatusSold: true},
	StatusRejected: {StatusPending: true, StatusApproved: true},
	StatusSold:     {},
}

// CanTransition reports whether a listing may move from one status to a
// different one. Staying in the same status is not a transition.
func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}
