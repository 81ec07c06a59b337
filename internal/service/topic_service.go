package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
	"github.com/hadracha/guides-portal/pkg/apperror"
	"github.com/hadracha/guides-portal/pkg/logger"
)

const timestampLayout = "02/01/2006 15:04"

// TopicService owns the taxonomy and the pending-topic moderation workflow.
// Every operation takes the acting user explicitly; there is no ambient
// session state.
type TopicService interface {
	CreateMainTopic(ctx context.Context, acting model.ActingUser, name string) (*model.MainTopic, error)
	CreateSubTopic(ctx context.Context, acting model.ActingUser, mainTopicID uuid.UUID, name string) (*model.SubTopic, error)
	ListMainTopics(ctx context.Context) ([]*model.MainTopic, error)
	ListSubTopics(ctx context.Context, mainTopicID uuid.UUID) ([]*model.SubTopic, error)
	DeleteMainTopic(ctx context.Context, acting model.ActingUser, id uuid.UUID) error
	DeleteSubTopic(ctx context.Context, acting model.ActingUser, id uuid.UUID) error

	CreatePendingTopic(ctx context.Context, acting model.ActingUser, req dto.CreatePendingTopicRequest) (*model.PendingTopic, error)
	GetPendingTopics(ctx context.Context, acting model.ActingUser) ([]dto.PendingTopicResponse, error)
	ApprovePendingTopic(ctx context.Context, acting model.ActingUser, id uuid.UUID) error
	RejectPendingTopic(ctx context.Context, acting model.ActingUser, id uuid.UUID, reason string) error
	ReassignTopic(ctx context.Context, acting model.ActingUser, id, targetTopicID uuid.UUID, isMainTopic bool) error
	BulkApprove(ctx context.Context, acting model.ActingUser, ids []uuid.UUID) (*dto.BulkResult, error)
	BulkReject(ctx context.Context, acting model.ActingUser, ids []uuid.UUID, reason string) (*dto.BulkResult, error)
}

type topicService struct {
	db           *gorm.DB
	topicRepo    repository.TopicRepository
	pendingRepo  repository.PendingTopicRepository
	materialRepo repository.MaterialRepository
	log          *logger.Logger
}

func NewTopicService(
	db *gorm.DB,
	topicRepo repository.TopicRepository,
	pendingRepo repository.PendingTopicRepository,
	materialRepo repository.MaterialRepository,
	log *logger.Logger,
) TopicService {
	return &topicService{
		db:           db,
		topicRepo:    topicRepo,
		pendingRepo:  pendingRepo,
		materialRepo: materialRepo,
		log:          log,
	}
}

func (s *topicService) CreateMainTopic(ctx context.Context, acting model.ActingUser, name string) (*model.MainTopic, error) {
	if !acting.IsModerator() {
		return nil, apperror.ErrForbidden
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("יש למלא שם נושא")
	}

	if existing, _ := s.topicRepo.FindMainByName(ctx, name); existing != nil {
		return nil, apperror.Validation("נושא בשם זה כבר קיים")
	}

	topic := &model.MainTopic{Name: name, CreatedBy: acting.ID}
	if err := s.topicRepo.CreateMain(ctx, topic); err != nil {
		return nil, fmt.Errorf("%w: create main topic: %v", apperror.ErrInternal, err)
	}
	return topic, nil
}

func (s *topicService) CreateSubTopic(ctx context.Context, acting model.ActingUser, mainTopicID uuid.UUID, name string) (*model.SubTopic, error) {
	if !acting.IsModerator() {
		return nil, apperror.ErrForbidden
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("יש למלא שם תת נושא")
	}

	if _, err := s.topicRepo.FindMainByID(ctx, mainTopicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find main topic: %v", apperror.ErrInternal, err)
	}

	if existing, _ := s.topicRepo.FindSubByName(ctx, name, mainTopicID); existing != nil {
		return nil, apperror.Validation("תת נושא בשם זה כבר קיים תחת הנושא שנבחר")
	}

	topic := &model.SubTopic{Name: name, MainTopicID: mainTopicID, CreatedBy: acting.ID}
	if err := s.topicRepo.CreateSub(ctx, topic); err != nil {
		return nil, fmt.Errorf("%w: create sub topic: %v", apperror.ErrInternal, err)
	}
	return topic, nil
}

func (s *topicService) ListMainTopics(ctx context.Context) ([]*model.MainTopic, error) {
	return s.topicRepo.ListMain(ctx)
}

func (s *topicService) ListSubTopics(ctx context.Context, mainTopicID uuid.UUID) ([]*model.SubTopic, error) {
	return s.topicRepo.ListSubByMain(ctx, mainTopicID)
}

func (s *topicService) DeleteMainTopic(ctx context.Context, acting model.ActingUser, id uuid.UUID) error {
	if !acting.IsAdmin() {
		return apperror.ErrForbidden
	}

	if _, err := s.topicRepo.FindMainByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("%w: find main topic: %v", apperror.ErrInternal, err)
	}

	subCount, err := s.topicRepo.CountSubTopics(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: count sub topics: %v", apperror.ErrInternal, err)
	}
	materialCount, err := s.materialRepo.CountByMainTopic(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: count materials: %v", apperror.ErrInternal, err)
	}
	if subCount > 0 || materialCount > 0 {
		return apperror.New(http.StatusConflict, "לא ניתן למחוק נושא שמשויכים אליו תכנים או תתי נושאים", apperror.ErrConflict)
	}

	return s.topicRepo.DeleteMain(ctx, id)
}

func (s *topicService) DeleteSubTopic(ctx context.Context, acting model.ActingUser, id uuid.UUID) error {
	if !acting.IsAdmin() {
		return apperror.ErrForbidden
	}

	if _, err := s.topicRepo.FindSubByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("%w: find sub topic: %v", apperror.ErrInternal, err)
	}

	materialCount, err := s.materialRepo.CountBySubTopic(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: count materials: %v", apperror.ErrInternal, err)
	}
	if materialCount > 0 {
		return apperror.New(http.StatusConflict, "לא ניתן למחוק תת נושא שמשויכים אליו תכנים", apperror.ErrConflict)
	}

	return s.topicRepo.DeleteSub(ctx, id)
}

// CreatePendingTopic records a proposal. Duplicate proposals for the same
// name are allowed to coexist; the moderator picks between them.
func (s *topicService) CreatePendingTopic(ctx context.Context, acting model.ActingUser, req dto.CreatePendingTopicRequest) (*model.PendingTopic, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("יש למלא שם נושא")
	}
	if !req.IsMainTopic && req.ParentTopicID == nil {
		return nil, apperror.Validation("תת נושא חייב להיות משויך לנושא ראשי")
	}

	pending := &model.PendingTopic{
		Name:          name,
		IsMainTopic:   req.IsMainTopic,
		ParentTopicID: req.ParentTopicID,
		MaterialID:    req.MaterialID,
		Status:        model.StatusPending,
		CreatedBy:     acting.ID,
	}
	if err := s.pendingRepo.Create(ctx, pending); err != nil {
		return nil, fmt.Errorf("%w: create pending topic: %v", apperror.ErrInternal, err)
	}
	return pending, nil
}

func (s *topicService) GetPendingTopics(ctx context.Context, acting model.ActingUser) ([]dto.PendingTopicResponse, error) {
	if !acting.IsModerator() {
		return nil, apperror.ErrForbidden
	}

	pendings, err := s.pendingRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list pending topics: %v", apperror.ErrInternal, err)
	}

	out := make([]dto.PendingTopicResponse, 0, len(pendings))
	for _, p := range pendings {
		out = append(out, toPendingTopicResponse(p))
	}
	return out, nil
}

func toPendingTopicResponse(p *model.PendingTopic) dto.PendingTopicResponse {
	resp := dto.PendingTopicResponse{
		ID:          p.ID,
		Name:        p.Name,
		IsMainTopic: p.IsMainTopic,
		Proposer: dto.PersonRef{
			ID:       p.Creator.ID,
			FullName: p.Creator.FullName,
		},
		Status:         p.Status,
		StatusLabel:    model.StatusLabel(p.Status),
		CreatedAtLabel: p.CreatedAt.Format(timestampLayout),
	}
	if p.ParentTopic != nil {
		resp.ParentTopic = &dto.TopicRef{ID: p.ParentTopic.ID, Name: p.ParentTopic.Name}
	}
	if p.Material != nil {
		resp.Material = &dto.PendingMaterialRef{
			ID:    p.Material.ID,
			Title: p.Material.Title,
			Creator: dto.PersonRef{
				ID:       p.Material.Creator.ID,
				FullName: p.Material.Creator.FullName,
			},
		}
	}
	if p.ApprovedAt != nil {
		resp.ApprovedAtLabel = p.ApprovedAt.Format(timestampLayout)
	}
	return resp
}

// ApprovePendingTopic materializes the proposed topic, marks the proposal
// approved and repoints the originating material, as one transaction. Any
// step failing rolls everything back; a half-applied approval is worse than
// a rejected one.
func (s *topicService) ApprovePendingTopic(ctx context.Context, acting model.ActingUser, id uuid.UUID) error {
	if !acting.IsModerator() {
		return apperror.ErrForbidden
	}

	pending, err := s.pendingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("%w: find pending topic: %v", apperror.ErrInternal, err)
	}
	if pending.Status != model.StatusPending {
		return apperror.ErrAlreadyHandled
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topics := s.topicRepo.WithTx(tx)
		pendings := s.pendingRepo.WithTx(tx)
		materials := s.materialRepo.WithTx(tx)

		var mainTopicID, subTopicID *uuid.UUID
		if pending.IsMainTopic {
			topic := &model.MainTopic{Name: pending.Name, CreatedBy: acting.ID}
			if err := topics.CreateMain(ctx, topic); err != nil {
				return fmt.Errorf("materialize main topic: %w", err)
			}
			mainTopicID = &topic.ID
		} else {
			if pending.ParentTopicID == nil {
				return apperror.Validation("תת נושא חייב להיות משויך לנושא ראשי")
			}
			topic := &model.SubTopic{
				Name:        pending.Name,
				MainTopicID: *pending.ParentTopicID,
				CreatedBy:   acting.ID,
			}
			if err := topics.CreateSub(ctx, topic); err != nil {
				return fmt.Errorf("materialize sub topic: %w", err)
			}
			subTopicID = &topic.ID
			mainTopicID = pending.ParentTopicID
		}

		if err := pendings.MarkApproved(ctx, pending.ID, acting.ID, nil); err != nil {
			return err
		}

		if pending.MaterialID != nil {
			if err := materials.UpdateTopicRefs(ctx, *pending.MaterialID, mainTopicID, subTopicID); err != nil {
				return fmt.Errorf("repoint material: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrAlreadyHandled) || errors.Is(err, apperror.ErrInvalidInput) {
			return err
		}
		s.log.Error("approve pending topic failed", "pending_topic_id", id, "err", err)
		return fmt.Errorf("%w: approve pending topic: %v", apperror.ErrInternal, err)
	}
	return nil
}

// RejectPendingTopic is terminal and leaves the originating material
// untouched; it keeps pointing at whatever topic it had (typically none).
func (s *topicService) RejectPendingTopic(ctx context.Context, acting model.ActingUser, id uuid.UUID, reason string) error {
	if !acting.IsModerator() {
		return apperror.ErrForbidden
	}

	if strings.TrimSpace(reason) == "" {
		return apperror.Validation("יש לציין סיבת דחייה")
	}

	if _, err := s.pendingRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("%w: find pending topic: %v", apperror.ErrInternal, err)
	}

	if err := s.pendingRepo.MarkRejected(ctx, id, reason); err != nil {
		if errors.Is(err, apperror.ErrAlreadyHandled) {
			return err
		}
		return fmt.Errorf("%w: reject pending topic: %v", apperror.ErrInternal, err)
	}
	return nil
}

// ReassignTopic approves the proposal by binding the originating material to
// an existing topic chosen by the admin. It never creates a topic row.
func (s *topicService) ReassignTopic(ctx context.Context, acting model.ActingUser, id, targetTopicID uuid.UUID, isMainTopic bool) error {
	if !acting.IsAdmin() {
		return apperror.ErrForbidden
	}

	pending, err := s.pendingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("%w: find pending topic: %v", apperror.ErrInternal, err)
	}
	if pending.Status != model.StatusPending {
		return apperror.ErrAlreadyHandled
	}

	var mainTopicID, subTopicID *uuid.UUID
	if isMainTopic {
		if _, err := s.topicRepo.FindMainByID(ctx, targetTopicID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Validation("נושא היעד אינו קיים")
			}
			return fmt.Errorf("%w: find target topic: %v", apperror.ErrInternal, err)
		}
		mainTopicID = &targetTopicID
	} else {
		sub, err := s.topicRepo.FindSubByID(ctx, targetTopicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Validation("נושא היעד אינו קיים")
			}
			return fmt.Errorf("%w: find target topic: %v", apperror.ErrInternal, err)
		}
		subTopicID = &targetTopicID
		mainTopicID = &sub.MainTopicID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pendings := s.pendingRepo.WithTx(tx)
		materials := s.materialRepo.WithTx(tx)

		if err := pendings.MarkApproved(ctx, pending.ID, acting.ID, &targetTopicID); err != nil {
			return err
		}
		if pending.MaterialID != nil {
			if err := materials.UpdateTopicRefs(ctx, *pending.MaterialID, mainTopicID, subTopicID); err != nil {
				return fmt.Errorf("repoint material: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrAlreadyHandled) {
			return err
		}
		s.log.Error("reassign topic failed", "pending_topic_id", id, "target_topic_id", targetTopicID, "err", err)
		return fmt.Errorf("%w: reassign topic: %v", apperror.ErrInternal, err)
	}
	return nil
}

// BulkApprove processes each id independently and reports partial success;
// one failure never rolls back the others.
func (s *topicService) BulkApprove(ctx context.Context, acting model.ActingUser, ids []uuid.UUID) (*dto.BulkResult, error) {
	if !acting.IsModerator() {
		return nil, apperror.ErrForbidden
	}

	result := &dto.BulkResult{Succeeded: []uuid.UUID{}, Failed: []dto.BulkFailure{}}
	for _, id := range ids {
		if err := s.ApprovePendingTopic(ctx, acting, id); err != nil {
			result.Failed = append(result.Failed, dto.BulkFailure{ID: id, Reason: apperror.UserMessage(err)})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

func (s *topicService) BulkReject(ctx context.Context, acting model.ActingUser, ids []uuid.UUID, reason string) (*dto.BulkResult, error) {
	if !acting.IsModerator() {
		return nil, apperror.ErrForbidden
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperror.Validation("יש לציין סיבת דחייה")
	}

	result := &dto.BulkResult{Succeeded: []uuid.UUID{}, Failed: []dto.BulkFailure{}}
	for _, id := range ids {
		if err := s.RejectPendingTopic(ctx, acting, id, reason); err != nil {
			result.Failed = append(result.Failed, dto.BulkFailure{ID: id, Reason: apperror.UserMessage(err)})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}
