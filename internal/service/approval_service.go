package service

import (
	"context"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
	"github.com/hadracha/guides-portal/pkg/logger"
)

// ApprovalService computes the moderation dashboard badge counts.
type ApprovalService interface {
	GetApprovalCounts(ctx context.Context, acting model.ActingUser) (*dto.ApprovalCounts, error)
}

type approvalService struct {
	materialRepo repository.MaterialRepository
	pendingRepo  repository.PendingTopicRepository
	userRepo     repository.UserRepository
	log          *logger.Logger
}

func NewApprovalService(
	materialRepo repository.MaterialRepository,
	pendingRepo repository.PendingTopicRepository,
	userRepo repository.UserRepository,
	log *logger.Logger,
) ApprovalService {
	return &approvalService{
		materialRepo: materialRepo,
		pendingRepo:  pendingRepo,
		userRepo:     userRepo,
		log:          log,
	}
}

// GetApprovalCounts returns all-zero counts for non-moderators instead of an
// error, so the badge silently shows nothing. Each count is fetched
// independently; a failed count is logged and treated as zero — partial data
// beats no data for a notification badge.
func (s *approvalService) GetApprovalCounts(ctx context.Context, acting model.ActingUser) (*dto.ApprovalCounts, error) {
	counts := &dto.ApprovalCounts{}
	if !acting.IsModerator() {
		return counts, nil
	}

	if n, err := s.materialRepo.CountPendingApproval(ctx); err != nil {
		s.log.Warn("failed to count pending materials", "err", err)
	} else {
		counts.Materials = n
	}

	if n, err := s.pendingRepo.CountPending(ctx); err != nil {
		s.log.Warn("failed to count pending topics", "err", err)
	} else {
		counts.Topics = n
	}

	if n, err := s.userRepo.CountPendingActivation(ctx); err != nil {
		s.log.Warn("failed to count pending users", "err", err)
	} else {
		counts.Users = n
	}

	counts.Total = counts.Materials + counts.Topics + counts.Users
	return counts, nil
}
