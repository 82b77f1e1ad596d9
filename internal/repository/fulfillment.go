package repository

import (
	"context"
	"time"

	"decor-storefront/internal/model"

	"gorm.io/gorm"
)

type FulfillmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, record *model.FulfillmentRecord) error
	FindByID(ctx context.Context, recordID string) (*model.FulfillmentRecord, error)
	FindBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*model.FulfillmentRecord, error)
	SetSessionID(ctx context.Context, recordID, sessionID string) error
	Delete(ctx context.Context, tx *gorm.DB, recordID string) error
	MarkPaid(ctx context.Context, tx *gorm.DB, recordID string) (bool, error)
	MarkFailed(ctx context.Context, tx *gorm.DB, recordID string) (bool, error)
	SetFulfillmentStatus(ctx context.Context, recordID string, status model.FulfillmentStatus, lastError string) error
}

type fulfillmentRepoImpl struct {
	db *gorm.DB
}

func NewFulfillmentRepository(db *gorm.DB) FulfillmentRepository {
	return &fulfillmentRepoImpl{
		db: db,
	}
}

func (r *fulfillmentRepoImpl) Create(ctx context.Context, tx *gorm.DB, record *model.FulfillmentRecord) error {
	return tx.WithContext(ctx).Create(record).Error
}

func (r *fulfillmentRepoImpl) FindByID(ctx context.Context, recordID string) (*model.FulfillmentRecord, error) {
	var record model.FulfillmentRecord
	err := r.db.WithContext(ctx).
		Where("id = ?", recordID).
		First(&record).Error

	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *fulfillmentRepoImpl) FindBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*model.FulfillmentRecord, error) {
	var record model.FulfillmentRecord
	err := tx.WithContext(ctx).
		Where("payment_session_id = ?", sessionID).
		First(&record).Error

	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *fulfillmentRepoImpl) SetSessionID(ctx context.Context, recordID, sessionID string) error {
	return r.db.WithContext(ctx).Model(&model.FulfillmentRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"payment_session_id": sessionID,
			"updated_at":         time.Now(),
		}).Error
}

// Delete removes a record that never got a reachable payment session.
// Only the checkout rollback path calls it.
func (r *fulfillmentRepoImpl) Delete(ctx context.Context, tx *gorm.DB, recordID string) error {
	return tx.WithContext(ctx).
		Where("id = ?", recordID).
		Delete(&model.FulfillmentRecord{}).Error
}

// MarkPaid flips PENDING to PAID in a single conditional update. The
// false return means the record was already settled; the caller must
// then skip side effects.
func (r *fulfillmentRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, recordID string) (bool, error) {
	return r.transition(ctx, tx, recordID, model.PaymentPaid)
}

// MarkFailed flips PENDING to FAILED, same contract as MarkPaid.
func (r *fulfillmentRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, recordID string) (bool, error) {
	return r.transition(ctx, tx, recordID, model.PaymentFailed)
}

func (r *fulfillmentRepoImpl) transition(ctx context.Context, tx *gorm.DB, recordID string, to model.PaymentStatus) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.FulfillmentRecord{}).
		Where("id = ? AND payment_status = ?", recordID, model.PaymentPending).
		Updates(map[string]interface{}{
			"payment_status": to,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *fulfillmentRepoImpl) SetFulfillmentStatus(ctx context.Context, recordID string, status model.FulfillmentStatus, lastError string) error {
	return r.db.WithContext(ctx).Model(&model.FulfillmentRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"fulfillment_status": status,
			"last_error":         lastError,
			"updated_at":         time.Now(),
		}).Error
}
