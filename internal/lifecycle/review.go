package lifecycle

import (
	"fmt"
	"strings"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionApprove:
		return ActionApprove, nil
	case ActionReject:
		return ActionReject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Decision is the result of an admin review. Changed is false when the
// listing already had the target status, in which case nothing should be
// persisted or announced.
type Decision struct {
	Status  Status
	Changed bool
}

// Review applies an admin Approve or Reject to a listing in the given status.
func Review(current Status, action Action) (Decision, error) {
	cur, err := ParseStatus(string(current))
	if err != nil {
		return Decision{}, err
	}
	if cur.IsTerminal() {
		return Decision{}, ErrPreconditionFailed
	}

	var target Status
	switch action {
	case ActionApprove:
		target = StatusApproved
	case ActionReject:
		target = StatusRejected
	default:
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if cur == target {
		return Decision{Status: cur, Changed: false}, nil
	}
	if !CanTransition(cur, target) {
		return Decision{}, fmt.Errorf("cannot %s a %s listing", action, cur)
	}
	return Decision{Status: target, Changed: true}, nil
}
