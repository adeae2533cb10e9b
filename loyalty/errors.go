/*
errors.go - Sentinel errors for the loyalty core

Business conditions (duplicate visit, already registered, unknown code)
are Status values in responses, not errors. The errors here are genuine
failures: a source sheet that cannot be read aborts the whole operation.
*/
package loyalty

import "errors"

var (
	// ErrCustomerNotFound is returned when a key lookup against the
	// signups sheet finds no row. Handlers map it to NOT_FOUND.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrOwnerNotFound is returned when an owner id has no row in the
	// Owners sheet.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrCodeExhausted is returned when code generation cannot find a
	// free code for an owner after a bounded number of attempts.
	ErrCodeExhausted = errors.New("could not generate unique customer code")
)
