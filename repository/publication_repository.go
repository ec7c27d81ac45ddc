package repository

import (
	"context"
	"errors"

	"wav2hls/model"

	"gorm.io/gorm"
)

// PublicationRepository 发布记录数据访问接口
type PublicationRepository interface {
	Create(ctx context.Context, p *model.Publication) error
	// LatestByPrefix returns nil, nil when the prefix was never published.
	LatestByPrefix(ctx context.Context, prefix string) (*model.Publication, error)
}

type gormPublicationRepository struct {
	db *gorm.DB
}

// NewGormPublicationRepository 创建 GORM 发布记录仓库
func NewGormPublicationRepository(db *gorm.DB) PublicationRepository {
	return &gormPublicationRepository{db: db}
}

// Create 写入发布记录
func (r *gormPublicationRepository) Create(ctx context.Context, p *model.Publication) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func latestByPrefix(tx *gorm.DB, prefix string, dest *model.Publication) *gorm.DB {
	return tx.Where("prefix = ?", prefix).
		Order("created_at DESC").
		Order("id DESC").
		Take(dest)
}

// LatestByPrefix 查询前缀最近一次发布
func (r *gormPublicationRepository) LatestByPrefix(ctx context.Context, prefix string) (*model.Publication, error) {
	var p model.Publication
	if err := latestByPrefix(r.db.WithContext(ctx), prefix, &p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
