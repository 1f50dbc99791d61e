package transactions

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPendingConfirmation Status = "PENDING_CONFIRMATION"
	StatusConfirmed           Status = "CONFIRMED"
	StatusPaid                Status = "PAID"
	StatusDisputed            Status = "DISPUTED"
	StatusCompleted           Status = "COMPLETED"
	StatusCancelled           Status = "CANCELLED"
)

var knownStatuses = map[Status]struct{}{
	StatusPendingConfirmation: {},
	StatusConfirmed:           {},
	StatusPaid:                {},
	StatusDisputed:            {},
	StatusCompleted:           {},
	StatusCancelled:           {},
}

// ParseStatus accepts PENDING_CONFIRMATION as well as "pending confirmation".
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.Join(strings.Fields(normalized), "_")
	s := Status(normalized)
	if _, ok := knownStatuses[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return s, nil
}

func (s Status) String() string { return string(s) }

// Policy decides which status changes updateStatus accepts.
type Policy string

const (
	// PolicyPermissive accepts any known status.
	PolicyPermissive Policy = "permissive"
	// PolicyStrict follows the lifecycle graph.
	PolicyStrict Policy = "strict"
)

func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyPermissive:
		return PolicyPermissive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("transactions: unknown transition policy %q", value)
	}
}

var strictTransitions = map[Status][]Status{
	StatusPendingConfirmation: {StatusConfirmed, StatusDisputed},
	StatusConfirmed:           {StatusPaid, StatusDisputed},
	StatusPaid:                {StatusCompleted, StatusDisputed},
	StatusDisputed:            {StatusConfirmed, StatusPaid, StatusCompleted},
}

// Allows reports whether from -> to is accepted. Cancelled is never reachable
// here and never left, whatever the policy.
func (p Policy) Allows(from, to Status) bool {
	if from == StatusCancelled || to == StatusCancelled {
		return false
	}
	if p != PolicyStrict {
		return true
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
