package repository

import (
	"context"

	"decor-storefront/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	FindOptions(ctx context.Context, productID string) ([]*model.ProductOption, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: "vase_ceramic", Name: "Ceramic Vase", Description: "Hand-thrown ceramic vase", Active: true, ForSale: true, ForRent: false, SalePrice: decimal.NewFromInt(45), Currency: "USD"},
		{ID: "arch_gold", Name: "Golden Arch Backdrop", Description: "2.4m event arch", Active: true, ForSale: false, ForRent: true, DailyRate: decimal.NewFromInt(20), Currency: "USD"},
		{ID: "table_runner", Name: "Linen Table Runner", Description: "3m linen runner", Active: true, ForSale: true, ForRent: true, SalePrice: decimal.NewFromInt(18), DailyRate: decimal.NewFromInt(4), Currency: "USD"},
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
		return err
	}

	options := []model.ProductOption{
		{ProductID: "vase_ceramic", Name: "finish", Value: "matte", Surcharge: decimal.Zero},
		{ProductID: "vase_ceramic", Name: "finish", Value: "gold leaf", Surcharge: decimal.NewFromInt(12)},
		{ProductID: "arch_gold", Name: "drapery", Value: "ivory", Surcharge: decimal.NewFromInt(5)},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&options).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindOptions(ctx context.Context, productID string) ([]*model.ProductOption, error) {
	var options []*model.ProductOption
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&options).Error

	if err != nil {
		return nil, err
	}

	return options, nil
}
