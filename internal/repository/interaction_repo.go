package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/model"
)

type LikeRepository interface {
	Find(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (*model.Like, error)
	Create(ctx context.Context, like *model.Like) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context, targetType string, targetID uuid.UUID) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Find(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (*model.Like, error) {
	var like model.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *likeRepository) Create(ctx context.Context, like *model.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Like{}, id).Error
}

func (r *likeRepository) Count(ctx context.Context, targetType string, targetID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error
	return count, err
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]*model.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) ListByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Preload("User").
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
