package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
	"github.com/hadracha/guides-portal/pkg/apperror"
	"github.com/hadracha/guides-portal/pkg/logger"
)

// UserService covers the admin side of the user lifecycle: accounts are
// created inactive at registration and wait here for activation. Users are
// never hard-deleted, only soft-deactivated.
type UserService interface {
	ListAll(ctx context.Context, acting model.ActingUser) ([]*model.User, error)
	ListPendingActivation(ctx context.Context, acting model.ActingUser) ([]*model.User, error)
	Activate(ctx context.Context, acting model.ActingUser, id uuid.UUID) error
	Deactivate(ctx context.Context, acting model.ActingUser, id uuid.UUID) error
}

type userService struct {
	userRepo repository.UserRepository
	log      *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, log *logger.Logger) UserService {
	return &userService{userRepo: userRepo, log: log}
}

func (s *userService) ListAll(ctx context.Context, acting model.ActingUser) ([]*model.User, error) {
	if !acting.IsModerator() {
		return nil, apperror.ErrForbidden
	}
	return s.userRepo.FindAll(ctx)
}

func (s *userService) ListPendingActivation(ctx context.Context, acting model.ActingUser) ([]*model.User, error) {
	if !acting.IsModerator() {
		return nil, apperror.ErrForbidden
	}
	return s.userRepo.FindPendingActivation(ctx)
}

func (s *userService) Activate(ctx context.Context, acting model.ActingUser, id uuid.UUID) error {
	if !acting.IsModerator() {
		return apperror.ErrForbidden
	}

	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("%w: find user: %v", apperror.ErrInternal, err)
	}

	if err := s.userRepo.Activate(ctx, id); err != nil {
		return fmt.Errorf("%w: activate user: %v", apperror.ErrInternal, err)
	}
	return nil
}

func (s *userService) Deactivate(ctx context.Context, acting model.ActingUser, id uuid.UUID) error {
	if !acting.IsAdmin() {
		return apperror.ErrForbidden
	}
	if acting.ID == id {
		return apperror.Validation("לא ניתן להשבית את החשבון של עצמך")
	}

	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("%w: find user: %v", apperror.ErrInternal, err)
	}

	if err := s.userRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("%w: deactivate user: %v", apperror.ErrInternal, err)
	}
	return nil
}
