// Package repository provides the GORM-backed implementations of the
// store interfaces consumed by internal/services.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"SP-DOCS/internal/models"
)

// CounterRepository advances running-number counters under a row lock.
type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// NextSequence reads the counter row FOR UPDATE and advances it by
// exactly one inside a single transaction. The first allocation for a
// key inserts the row at sequence 1. Two concurrent first allocations
// both try to insert; the unique key index fails one of them and the
// caller retries the whole allocate call.
func (r *CounterRepository) NextSequence(ctx context.Context, orgID string, fiscalYear int, documentType string) (int, bool, error) {
	var seq int
	var created bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter models.RunningNumberCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("organization_id = ? AND fiscal_year = ? AND document_type = ?", orgID, fiscalYear, documentType).
			First(&counter).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = models.RunningNumberCounter{
				ID:             uuid.New().String(),
				OrganizationID: orgID,
				FiscalYear:     fiscalYear,
				DocumentType:   documentType,
				Sequence:       1,
			}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
			seq, created = 1, true
			return nil
		}
		if err != nil {
			return err
		}

		// The row is locked; the increment still runs server-side so the
		// stored value can never regress under a lost update.
		if err := tx.Model(&counter).
			UpdateColumn("sequence", gorm.Expr("sequence + ?", 1)).Error; err != nil {
			return err
		}
		seq = counter.Sequence + 1
		return nil
	})

	return seq, created, err
}
