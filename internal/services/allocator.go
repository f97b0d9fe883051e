package services

import (
	"context"
	"fmt"

	"SP-DOCS/internal/models"
)

// EntityRunningNumber is the audit entity kind for counter mutations.
const EntityRunningNumber = "document-running-number"

// counterSnapshot is the before/after shape recorded on counter audit
// entries.
type counterSnapshot struct {
	OrganizationID string `json:"organization_id"`
	FiscalYear     int    `json:"fiscal_year"`
	DocumentType   string `json:"document_type"`
	Sequence       int    `json:"sequence"`
}

// RunningNumberAllocator issues the strictly-sequential, gapless
// per-(organization, fiscal year, document type) numbers stamped on
// generated legal documents. The atomicity contract lives in the
// CounterStore; this service owns formatting and the audit side-effect.
type RunningNumberAllocator struct {
	counters CounterStore
	audit    *AuditService
}

func NewRunningNumberAllocator(counters CounterStore, audit *AuditService) *RunningNumberAllocator {
	return &RunningNumberAllocator{counters: counters, audit: audit}
}

// Allocate advances the counter for the key and returns the formatted
// number. On store failure nothing is persisted and the caller may retry
// the whole call. A failed audit write after the committed increment is
// logged as an anomaly but never reverses the sequence: numbers may be
// audited imperfectly but are never reused.
func (a *RunningNumberAllocator) Allocate(ctx context.Context, orgID string, fiscalYear int, documentType, actorID string, meta RequestMeta) (string, error) {
	seq, created, err := a.counters.NextSequence(ctx, orgID, fiscalYear, documentType)
	if err != nil {
		return "", fmt.Errorf("failed to advance running number counter: %w", err)
	}

	action := models.ActionUpdate
	var before interface{}
	if created {
		action = models.ActionCreate
	} else {
		before = counterSnapshot{
			OrganizationID: orgID,
			FiscalYear:     fiscalYear,
			DocumentType:   documentType,
			Sequence:       seq - 1,
		}
	}
	after := counterSnapshot{
		OrganizationID: orgID,
		FiscalYear:     fiscalYear,
		DocumentType:   documentType,
		Sequence:       seq,
	}

	_ = a.audit.Record(ctx, AuditEntry{
		OrganizationID: orgID,
		ActorID:        actorID,
		Action:         action,
		EntityType:     EntityRunningNumber,
		EntityID:       fmt.Sprintf("%s/%d/%s", orgID, fiscalYear, documentType),
		Before:         before,
		After:          after,
		Meta:           meta,
	})

	return FormatRunningNumber(documentType, fiscalYear, seq), nil
}

// FormatRunningNumber renders a number as {TYPE}-{YEAR}-{SEQ}, with the
// sequence zero-padded to at least four digits. Padding is a floor, not
// a cap: sequence 12345 renders as-is.
func FormatRunningNumber(documentType string, fiscalYear, sequence int) string {
	return fmt.Sprintf("%s-%d-%04d", documentType, fiscalYear, sequence)
}
