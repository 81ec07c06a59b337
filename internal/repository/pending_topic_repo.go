package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/pkg/apperror"
)

type PendingTopicRepository interface {
	Create(ctx context.Context, topic *model.PendingTopic) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PendingTopic, error)
	FindByMaterialID(ctx context.Context, materialID uuid.UUID) (*model.PendingTopic, error)
	ListPending(ctx context.Context) ([]*model.PendingTopic, error)
	CountPending(ctx context.Context) (int64, error)
	// MarkApproved flips status pending -> approved. It is guarded by a
	// conditional update; a row already out of pending yields
	// apperror.ErrAlreadyHandled, which is how concurrent double-approval
	// loses cleanly.
	MarkApproved(ctx context.Context, id, approvedBy uuid.UUID, reassignedTo *uuid.UUID) error
	MarkRejected(ctx context.Context, id uuid.UUID, reason string) error
	WithTx(tx *gorm.DB) PendingTopicRepository
}

type pendingTopicRepository struct {
	db *gorm.DB
}

func NewPendingTopicRepository(db *gorm.DB) PendingTopicRepository {
	return &pendingTopicRepository{db: db}
}

func (r *pendingTopicRepository) WithTx(tx *gorm.DB) PendingTopicRepository {
	return &pendingTopicRepository{db: tx}
}

func (r *pendingTopicRepository) Create(ctx context.Context, topic *model.PendingTopic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *pendingTopicRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PendingTopic, error) {
	var topic model.PendingTopic
	err := r.db.WithContext(ctx).
		Preload("ParentTopic").
		Preload("Material").
		Preload("Material.Creator").
		Preload("Creator").
		First(&topic, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *pendingTopicRepository) FindByMaterialID(ctx context.Context, materialID uuid.UUID) (*model.PendingTopic, error) {
	var topic model.PendingTopic
	err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("created_at DESC").
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *pendingTopicRepository) ListPending(ctx context.Context) ([]*model.PendingTopic, error) {
	var topics []*model.PendingTopic
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusPending).
		Preload("ParentTopic").
		Preload("Material").
		Preload("Material.Creator").
		Preload("Creator").
		Order("created_at DESC").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *pendingTopicRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PendingTopic{}).
		Where("status = ?", model.StatusPending).
		Count(&count).Error
	return count, err
}

func (r *pendingTopicRepository) MarkApproved(ctx context.Context, id, approvedBy uuid.UUID, reassignedTo *uuid.UUID) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.PendingTopic{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":           model.StatusApproved,
			"approved_by":      approvedBy,
			"approved_at":      &now,
			"reassigned_to_id": reassignedTo,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrAlreadyHandled
	}
	return nil
}

func (r *pendingTopicRepository) MarkRejected(ctx context.Context, id uuid.UUID, reason string) error {
	res := r.db.WithContext(ctx).Model(&model.PendingTopic{}).
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
