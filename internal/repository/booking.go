package repository

import (
	"context"
	"errors"
	"time"

	"decor-storefront/internal/model"

	"gorm.io/gorm"
)

var ErrDateConflict = errors.New("date range already booked for product")

type BookingRepository interface {
	// ReserveWindow checks for overlap and inserts the provisional
	// window inside the caller's transaction. Check and insert share
	// one write transaction, so two concurrent reservations of the
	// same range cannot both pass.
	ReserveWindow(ctx context.Context, tx *gorm.DB, window *model.BookingWindow) error
	ConfirmForRecord(ctx context.Context, tx *gorm.DB, recordID string) error
	ReleaseForRecord(ctx context.Context, tx *gorm.DB, recordID string) error
	ListForProduct(ctx context.Context, productID string) ([]*model.BookingWindow, error)
}

type bookingRepoImpl struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepoImpl{
		db: db,
	}
}

func (r *bookingRepoImpl) ReserveWindow(ctx context.Context, tx *gorm.DB, window *model.BookingWindow) error {
	var count int64
	err := tx.WithContext(ctx).Model(&model.BookingWindow{}).
		Where("product_id = ? AND start_date < ? AND ? < end_date",
			window.ProductID, window.EndDate, window.StartDate).
		Count(&count).Error

	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDateConflict
	}

	return tx.WithContext(ctx).Create(window).Error
}

func (r *bookingRepoImpl) ConfirmForRecord(ctx context.Context, tx *gorm.DB, recordID string) error {
	return tx.WithContext(ctx).Model(&model.BookingWindow{}).
		Where("record_id = ? AND confirmed = ?", recordID, false).
		Updates(map[string]interface{}{
			"confirmed": true,
		}).Error
}

// ReleaseForRecord drops the record's provisional windows so the
// range becomes bookable again. Confirmed windows are left alone.
func (r *bookingRepoImpl) ReleaseForRecord(ctx context.Context, tx *gorm.DB, recordID string) error {
	return tx.WithContext(ctx).
		Where("record_id = ? AND confirmed = ?", recordID, false).
		Delete(&model.BookingWindow{}).Error
}

func (r *bookingRepoImpl) ListForProduct(ctx context.Context, productID string) ([]*model.BookingWindow, error) {
	var windows []*model.BookingWindow
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND end_date > ?", productID, time.Now()).
		Order("start_date").
		Find(&windows).Error

	if err != nil {
		return nil, err
	}

	return windows, nil
}
