package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/pkg/apperror"
)

type MaterialRepository interface {
	Create(ctx context.Context, material *model.Material) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error)
	ListApproved(ctx context.Context, filter dto.MaterialFilter) ([]*model.Material, error)
	// ListPendingApproval returns materials not yet approved, joined with
	// creator, for the moderation queue.
	ListPendingApproval(ctx context.Context) ([]*model.Material, error)
	CountPendingApproval(ctx context.Context) (int64, error)
	MarkApproved(ctx context.Context, id uuid.UUID) error
	MarkRejected(ctx context.Context, id uuid.UUID, reason string) error
	// UpdateTopicRefs repoints the material at its post-approval topics.
	// Zero rows affected means the originating material vanished and the
	// surrounding approval transaction must roll back.
	UpdateTopicRefs(ctx context.Context, id uuid.UUID, mainTopicID, subTopicID *uuid.UUID) error
	SetPreviewURL(ctx context.Context, id uuid.UUID, previewURL string) error
	CountByMainTopic(ctx context.Context, mainTopicID uuid.UUID) (int64, error)
	CountBySubTopic(ctx context.Context, subTopicID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx *gorm.DB) MaterialRepository
}

type materialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) WithTx(tx *gorm.DB) MaterialRepository {
	return &materialRepository{db: tx}
}

func (r *materialRepository) Create(ctx context.Context, material *model.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *materialRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var material model.Material
	err := r.db.WithContext(ctx).
		Preload("MainTopic").
		Preload("SubTopic").
		Preload("Creator").
		Preload("Audiences").
		First(&material, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *materialRepository) ListApproved(ctx context.Context, filter dto.MaterialFilter) ([]*model.Material, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", model.StatusApproved).
		Preload("MainTopic").
		Preload("SubTopic").
		Preload("Creator").
		Preload("Audiences")

	if filter.MainTopicID != nil {
		query = query.Where("main_topic_id = ?", *filter.MainTopicID)
	}
	if filter.SubTopicID != nil {
		query = query.Where("sub_topic_id = ?", *filter.SubTopicID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var materials []*model.Material
	if err := query.Order("created_at DESC").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *materialRepository) ListPendingApproval(ctx context.Context) ([]*model.Material, error) {
	var materials []*model.Material
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusPending).
		Preload("MainTopic").
		Preload("SubTopic").
		Preload("Creator").
		Preload("Audiences").
		Order("created_at DESC").
		Find(&materials).Error
	if err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *materialRepository) CountPendingApproval(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Material{}).
		Where("status = ?", model.StatusPending).
		Count(&count).Error
	return count, err
}

func (r *materialRepository) MarkApproved(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Material{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Update("status", model.StatusApproved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrAlreadyHandled
	}
	return nil
}

func (r *materialRepository) MarkRejected(ctx context.Context, id uuid.UUID, reason string) error {
	res := r.db.WithContext(ctx).Model(&model.Material{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":           model.StatusRejected,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrAlreadyHandled
	}
	return nil
}

func (r *materialRepository) UpdateTopicRefs(ctx context.Context, id uuid.UUID, mainTopicID, subTopicID *uuid.UUID) error {
	updates := map[string]interface{}{}
	if mainTopicID != nil {
		updates["main_topic_id"] = mainTopicID
	}
	if subTopicID != nil {
		updates["sub_topic_id"] = subTopicID
	}
	if len(updates) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&model.Material{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *materialRepository) SetPreviewURL(ctx context.Context, id uuid.UUID, previewURL string) error {
	return r.db.WithContext(ctx).Model(&model.Material{}).
		Where("id = ?", id).
		Update("preview_url", previewURL).Error
}

func (r *materialRepository) CountByMainTopic(ctx context.Context, mainTopicID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Material{}).
		Where("main_topic_id = ?", mainTopicID).
		Count(&count).Error
	return count, err
}

func (r *materialRepository) CountBySubTopic(ctx context.Context, subTopicID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Material{}).
		Where("sub_topic_id = ?", subTopicID).
		Count(&count).Error
	return count, err
}

func (r *materialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Material{}, "id = ?", id).Error
}
