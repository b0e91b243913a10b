package repository

import (
	"context"
	"time"

	"eduapp-backend/internal/dispatchlog/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxListLimit = 200

// gormDispatchRepository implements DispatchRepository using GORM
type gormDispatchRepository struct {
	db *gorm.DB
}

// NewGormDispatchRepository creates a GORM-based DispatchRepository and
// migrates its table
func NewGormDispatchRepository(db *gorm.DB) (DispatchRepository, error) {
	if err := db.AutoMigrate(&domain.DispatchRecord{}); err != nil {
		return nil, err
	}
	return &gormDispatchRepository{db: db}, nil
}

func (r *gormDispatchRepository) Create(ctx context.Context, record *domain.DispatchRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *gormDispatchRepository) List(ctx context.Context, limit, offset int) ([]*domain.DispatchRecord, int64, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	var records []*domain.DispatchRecord
	var total int64

	if err := r.db.WithContext(ctx).Model(&domain.DispatchRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	return records, total, err
}
