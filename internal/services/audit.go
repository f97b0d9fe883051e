package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"SP-DOCS/internal/models"
)

// RequestMeta is the request origin recorded on audit entries. Populated
// by the HTTP layer from the gin context; empty for internal callers.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuditEntry is one mutating operation to be recorded. Before and After
// are marshalled to JSON snapshots; nil means "none".
type AuditEntry struct {
	OrganizationID string
	ActorID        string
	Action         models.AuditAction
	EntityType     string
	EntityID       string
	CaseID         string
	Before         interface{}
	After          interface{}
	Reason         string
	Meta           RequestMeta
}

// AuditService appends to the audit ledger. Writes are best-effort
// relative to the primary transaction: a failed audit write is logged as
// an anomaly and never unwinds committed state.
type AuditService struct {
	store AuditStore
	log   *logrus.Logger
}

func NewAuditService(store AuditStore, log *logrus.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

func (s *AuditService) Record(ctx context.Context, e AuditEntry) error {
	row := &models.AuditLog{
		ID:             uuid.New().String(),
		OrganizationID: e.OrganizationID,
		ActorID:        e.ActorID,
		Action:         e.Action,
		EntityType:     e.EntityType,
		EntityID:       e.EntityID,
		CaseID:         e.CaseID,
		Reason:         e.Reason,
		IPAddress:      e.Meta.IPAddress,
		UserAgent:      e.Meta.UserAgent,
		CreatedAt:      time.Now(),
	}
	if e.Before != nil {
		b, _ := json.Marshal(e.Before)
		row.Before = string(b)
	}
	if e.After != nil {
		a, _ := json.Marshal(e.After)
		row.After = string(a)
	}

	if err := s.store.Append(ctx, row); err != nil {
		s.log.WithFields(logrus.Fields{
			"module":      "audit",
			"action":      string(e.Action),
			"entity_type": e.EntityType,
			"entity_id":   e.EntityID,
			"org_id":      e.OrganizationID,
		}).Error("audit write failed: " + err.Error())
		return err
	}
	return nil
}

func (s *AuditService) List(ctx context.Context, orgID string, filter AuditFilter) ([]models.AuditLog, error) {
	return s.store.List(ctx, orgID, filter)
}
