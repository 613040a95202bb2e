package domain

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrNoCustomers      = errors.New("no_customers_requested")
)

// ValidationError reports an aggregator total that is not a finite number.
// It is always fatal to the customer's computation; the engine never coerces
// a bad total to zero.
type ValidationError struct {
	Total string
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is not a finite number: %v", e.Total, e.Value)
}

// ComputationError wraps a failure with the offending customer and stage so
// the caller can decide whether to skip the customer or abort the batch.
type ComputationError struct {
	CustomerID snowflake.ID
	Stage      string
	Err        error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("invoice computation for customer %s failed at %s: %v", e.CustomerID, e.Stage, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// FormatError reports a malformed identifier handed to one of the stateless
// formatting helpers.
type FormatError struct {
	Field string
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s: %q", e.Field, e.Value)
}
