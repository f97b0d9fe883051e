package services

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers cases, documents, and packs that are missing or
	// belong to another organization.
	ErrNotFound = errors.New("not found")

	// ErrPackInactive means an administrator disabled the pack for this
	// organization.
	ErrPackInactive = errors.New("template pack is inactive for this organization")

	// ErrPackMismatch means the pack does not apply to the case's
	// procurement type.
	ErrPackMismatch = errors.New("template pack does not apply to this case type")

	// ErrOverrideNotAllowed rejects manual number overrides on cases that
	// are not flagged backdated.
	ErrOverrideNotAllowed = errors.New("manual number override is allowed only for backdated cases")

	// ErrReasonRequired rejects overrides without an explicit reason.
	ErrReasonRequired = errors.New("override reason is required")
)

// NotFoundError carries which entity was missing. It matches ErrNotFound
// through errors.Is.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConversionError is a failure of the external rendering service. It
// distinguishes a deadline expiry from a service-reported error and
// carries the captured diagnostic payload for operator diagnosis.
type ConversionError struct {
	Timeout    bool
	StatusCode int
	Detail     string
	Logs       json.RawMessage
}

func (e *ConversionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("conversion timed out: %s", e.Detail)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("conversion service returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("conversion failed: %s", e.Detail)
}
