package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"SP-DOCS/internal/models"
	"SP-DOCS/internal/packs"
)

// PackService exposes the pack catalog with each organization's
// effective activation state, and the admin toggle that writes the
// override row.
type PackService struct {
	registry  *packs.Registry
	overrides PackOverrideStore
	audit     *AuditService
}

func NewPackService(registry *packs.Registry, overrides PackOverrideStore, audit *AuditService) *PackService {
	return &PackService{registry: registry, overrides: overrides, audit: audit}
}

// PackStatus is one catalog entry with the org's effective active flag.
type PackStatus struct {
	packs.Pack
	IsActive bool `json:"is_active"`
}

func (s *PackService) List(ctx context.Context, orgID string) ([]PackStatus, error) {
	all := s.registry.List()
	out := make([]PackStatus, 0, len(all))
	for _, p := range all {
		override, err := s.overrides.Get(ctx, orgID, p.ID)
		if err != nil {
			return nil, err
		}
		active := override == nil || override.IsActive
		out = append(out, PackStatus{Pack: p, IsActive: active})
	}
	return out, nil
}

// SetActive writes the organization-scoped activation override and
// audits the change.
func (s *PackService) SetActive(ctx context.Context, orgID, userID, packID string, isActive bool, meta RequestMeta) error {
	if _, _, err := s.registry.Resolve(packID); err != nil {
		return &NotFoundError{Entity: "template pack", ID: packID}
	}

	existing, err := s.overrides.Get(ctx, orgID, packID)
	if err != nil {
		return err
	}

	action := models.ActionUpdate
	var before interface{}
	override := existing
	if override == nil {
		action = models.ActionCreate
		override = &models.PackOverride{
			ID:             uuid.New().String(),
			OrganizationID: orgID,
			PackID:         packID,
			CreatedAt:      time.Now(),
		}
	} else {
		before = map[string]bool{"is_active": existing.IsActive}
	}
	override.IsActive = isActive
	override.UpdatedBy = userID
	override.UpdatedAt = time.Now()

	if err := s.overrides.Upsert(ctx, override); err != nil {
		return err
	}

	_ = s.audit.Record(ctx, AuditEntry{
		OrganizationID: orgID,
		ActorID:        userID,
		Action:         action,
		EntityType:     "template-pack-override",
		EntityID:       packID,
		Before:         before,
		After:          map[string]bool{"is_active": isActive},
		Meta:           meta,
	})
	return nil
}
