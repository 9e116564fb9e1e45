package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

type ProductChunkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, chunks []*domain.ProductChunk) ([]*domain.ProductChunk, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.ProductChunk, error)
	GetByProductID(ctx context.Context, tx *gorm.DB, productID string) ([]*domain.ProductChunk, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) error
}

type productChunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductChunkRepo(db *gorm.DB, baseLog *logger.Logger) ProductChunkRepo {
	repoLog := baseLog.With("repo", "ProductChunkRepo")
	return &productChunkRepo{db: db, log: repoLog}
}

func (r *productChunkRepo) Create(ctx context.Context, tx *gorm.DB, chunks []*domain.ProductChunk) ([]*domain.ProductChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(chunks) == 0 {
		return []*domain.ProductChunk{}, nil
	}

	// Keep batches small because Text and Embedding are large
	const batchSize = 100

	if err := transaction.WithContext(ctx).CreateInBatches(chunks, batchSize).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *productChunkRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.ProductChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.ProductChunk
	if err := transaction.WithContext(ctx).
		Order("product_id, seq ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productChunkRepo) GetByProductID(ctx context.Context, tx *gorm.DB, productID string) ([]*domain.ProductChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.ProductChunk
	if err := transaction.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("seq ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productChunkRepo) DeleteAll(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.ProductChunk{}).Error
}
