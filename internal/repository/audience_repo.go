package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/model"
)

type AudienceRepository interface {
	ListAll(ctx context.Context) ([]*model.TargetAudience, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.TargetAudience, error)
}

type audienceRepository struct {
	db *gorm.DB
}

func NewAudienceRepository(db *gorm.DB) AudienceRepository {
	return &audienceRepository{db: db}
}

func (r *audienceRepository) ListAll(ctx context.Context) ([]*model.TargetAudience, error) {
	var audiences []*model.TargetAudience
	if err := r.db.WithContext(ctx).Order("id").Find(&audiences).Error; err != nil {
		return nil, err
	}
	return audiences, nil
}

func (r *audienceRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.TargetAudience, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var audiences []model.TargetAudience
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&audiences).Error; err != nil {
		return nil, err
	}
	return audiences, nil
}
