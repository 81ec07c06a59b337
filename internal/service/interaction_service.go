package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
	"github.com/hadracha/guides-portal/pkg/apperror"
)

type InteractionService interface {
	// ToggleLike inserts or deletes the (user, target) like row and returns
	// the new state plus the fresh count.
	ToggleLike(ctx context.Context, acting model.ActingUser, targetType string, targetID uuid.UUID) (*dto.LikeToggleResponse, error)
	AddComment(ctx context.Context, acting model.ActingUser, targetType string, targetID uuid.UUID, body string) (*model.Comment, error)
	GetComments(ctx context.Context, targetType string, targetID uuid.UUID) ([]dto.CommentResponse, error)
}

type interactionService struct {
	likeRepo    repository.LikeRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
}

func NewInteractionService(likeRepo repository.LikeRepository, commentRepo repository.CommentRepository, userRepo repository.UserRepository) InteractionService {
	return &interactionService{
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
	}
}

func validTarget(targetType string) bool {
	return targetType == model.TargetMaterial || targetType == model.TargetMainTopic
}

func (s *interactionService) ToggleLike(ctx context.Context, acting model.ActingUser, targetType string, targetID uuid.UUID) (*dto.LikeToggleResponse, error) {
	if !validTarget(targetType) {
		return nil, apperror.ErrBadRequest
	}

	existing, err := s.likeRepo.Find(ctx, acting.ID, targetType, targetID)
	switch {
	case err == nil:
		if err := s.likeRepo.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("%w: remove like: %v", apperror.ErrInternal, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := &model.Like{UserID: acting.ID, TargetType: targetType, TargetID: targetID}
		if err := s.likeRepo.Create(ctx, like); err != nil {
			return nil, fmt.Errorf("%w: create like: %v", apperror.ErrInternal, err)
		}
	default:
		return nil, fmt.Errorf("%w: find like: %v", apperror.ErrInternal, err)
	}

	liked := err != nil // not found before the toggle means we just liked

	count, err := s.likeRepo.Count(ctx, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("%w: count likes: %v", apperror.ErrInternal, err)
	}

	return &dto.LikeToggleResponse{Liked: liked, LikeCount: count}, nil
}

func (s *interactionService) AddComment(ctx context.Context, acting model.ActingUser, targetType string, targetID uuid.UUID, body string) (*model.Comment, error) {
	if !validTarget(targetType) {
		return nil, apperror.ErrBadRequest
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.Validation("יש למלא תוכן תגובה")
	}
	if len([]rune(body)) > model.CommentMaxLen {
		return nil, apperror.Validation("תגובה יכולה להכיל עד 400 תווים")
	}

	comment := &model.Comment{
		UserID:     acting.ID,
		TargetType: targetType,
		TargetID:   targetID,
		Body:       body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("%w: create comment: %v", apperror.ErrInternal, err)
	}
	return comment, nil
}

func (s *interactionService) GetComments(ctx context.Context, targetType string, targetID uuid.UUID) ([]dto.CommentResponse, error) {
	if !validTarget(targetType) {
		return nil, apperror.ErrBadRequest
	}

	comments, err := s.commentRepo.ListByTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("%w: list comments: %v", apperror.ErrInternal, err)
	}

	out := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, dto.CommentResponse{
			ID: c.ID,
			Author: dto.PersonRef{
				ID:       c.User.ID,
				FullName: c.User.FullName,
			},
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	return out, nil
}
