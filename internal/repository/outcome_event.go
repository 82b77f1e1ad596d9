package repository

import (
	"context"
	"time"

	"decor-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutcomeEventRepository interface {
	// Claim inserts the event id if absent. The false return means
	// another delivery of the same event already holds the claim.
	Claim(ctx context.Context, tx *gorm.DB, event *model.OutcomeEvent) (bool, error)
}

type outcomeEventRepoImpl struct {
	db *gorm.DB
}

func NewOutcomeEventRepository(db *gorm.DB) OutcomeEventRepository {
	return &outcomeEventRepoImpl{
		db: db,
	}
}

func (r *outcomeEventRepoImpl) Claim(ctx context.Context, tx *gorm.DB, event *model.OutcomeEvent) (bool, error) {
	event.ProcessedAt = time.Now()

	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
