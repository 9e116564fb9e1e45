package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

type ProductRepo interface {
	Create(ctx context.Context, tx *gorm.DB, products []*domain.Product) ([]*domain.Product, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.Product, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{db: db, log: repoLog}
}

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, products []*domain.Product) ([]*domain.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(products) == 0 {
		return []*domain.Product{}, nil
	}
	const batchSize = 200
	if err := transaction.WithContext(ctx).CreateInBatches(products, batchSize).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.Product
	if err := transaction.WithContext(ctx).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productRepo) DeleteAll(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.Product{}).Error
}
