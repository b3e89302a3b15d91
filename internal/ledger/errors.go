package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound matches any *NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected write. It is never persisted and is
// always recoverable by correcting the input.
type ValidationError struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
	// Sum, Total and Excess are set when the sub-budgets exceed the total.
	Sum    int64 `json:"sum,omitempty"`
	Total  int64 `json:"total,omitempty"`
	Excess int64 `json:"excess,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Excess > 0 {
		return fmt.Sprintf("%s: category sum %d exceeds total %d by %d", e.Reason, e.Sum, e.Total, e.Excess)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// NotFoundError reports a project or expense id that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StoreError wraps a failure of the underlying store. The message is meant
// to be shown as-is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// SubscriptionError reports a dropped change-notification channel.
type SubscriptionError struct {
	ProjectID string
	Err       error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("expense change subscription for project %s: %v", e.ProjectID, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}
