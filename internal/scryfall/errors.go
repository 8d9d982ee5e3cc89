// ABOUTME: Error types returned by the Scryfall client
// ABOUTME: Provider errors, schema drift and the collection identifier cap
package scryfall

import (
	"errors"
	"fmt"

	"github.com/harper/oracle/internal/card"
)

// ErrTooManyIdentifiers is returned before any request when a collection
// lookup names more cards than the provider accepts.
var ErrTooManyIdentifiers = fmt.Errorf("a collection lookup accepts at most %d card names", MaxCollectionSize)

// APIError is a non-2xx response from Scryfall.
type APIError struct {
	Status  int
	Code    string // provider error code, e.g. "not_found"
	Reason  string // provider "error" field
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return "Scryfall API error: " + e.Details
	}
	reason := e.Reason
	if reason == "" {
		reason = "Unknown error"
	}
	return fmt.Sprintf("Scryfall API error: %d - %s", e.Status, reason)
}

// SchemaDriftError is a successful response whose body no longer matches the
// card schema.
type SchemaDriftError struct {
	Endpoint string
	Err      *card.ValidationError
}

func (e *SchemaDriftError) Error() string {
	return "The card data from Scryfall did not match our expected schema. This might mean the API has changed."
}

func (e *SchemaDriftError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a Scryfall 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
