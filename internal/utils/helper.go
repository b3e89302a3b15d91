package utils

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ErrInvalidInput marks a request value that could not be interpreted at
// all, such as a malformed id. Rejected budgets are validation errors
// instead.
var ErrInvalidInput = errors.New("invalid input")

func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a valid id: %w", ErrInvalidInput, s, err)
	}
	return id, nil
}

// ParseLimit reads an optional positive row limit. An empty value means no
// limit and returns 0.
func ParseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer, got %q", ErrInvalidInput, s)
	}
	return n, nil
}
