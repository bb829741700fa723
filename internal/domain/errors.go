package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrOrderNotFound = errors.New("order not found")

// ValidationError lists every missing or malformed checkout field so the
// storefront can surface them all at once.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q", e.From, e.To)
}

type PickupUnavailableError struct {
	Status OrderStatus
}

func (e *PickupUnavailableError) Error() string {
	return fmt.Sprintf("pickup cannot be requested for an order in status %q", e.Status)
}
