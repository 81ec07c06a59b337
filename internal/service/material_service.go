package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
	"github.com/hadracha/guides-portal/pkg/apperror"
	"github.com/hadracha/guides-portal/pkg/logger"
	"github.com/hadracha/guides-portal/pkg/preview"
	"github.com/hadracha/guides-portal/pkg/storage"
)

// MaxUploadSize caps material files at 10 MB.
const MaxUploadSize = 10 << 20

// allowedContentTypes is the upload allow-list. Checked before any storage
// or database call.
var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"image/jpeg": true,
	"image/png":  true,
	"video/mp4":  true,
}

type MaterialService interface {
	Upload(ctx context.Context, acting model.ActingUser, req dto.UploadMaterialRequest, file *dto.MaterialFile) (*model.Material, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error)
	List(ctx context.Context, filter dto.MaterialFilter) ([]dto.MaterialResponse, error)
	ListForApproval(ctx context.Context, acting model.ActingUser) ([]dto.MaterialResponse, error)
	Approve(ctx context.Context, acting model.ActingUser, id uuid.UUID) error
	Reject(ctx context.Context, acting model.ActingUser, id uuid.UUID, reason string) error
	Delete(ctx context.Context, acting model.ActingUser, id uuid.UUID) error
}

type materialService struct {
	db           *gorm.DB
	materialRepo repository.MaterialRepository
	topicRepo    repository.TopicRepository
	pendingRepo  repository.PendingTopicRepository
	audienceRepo repository.AudienceRepository
	likeRepo     repository.LikeRepository
	fileStorage  storage.FileStorage
	previews     preview.Generator
	search       SearchIndexer
	log          *logger.Logger
}

func NewMaterialService(
	db *gorm.DB,
	materialRepo repository.MaterialRepository,
	topicRepo repository.TopicRepository,
	pendingRepo repository.PendingTopicRepository,
	audienceRepo repository.AudienceRepository,
	likeRepo repository.LikeRepository,
	fileStorage storage.FileStorage,
	previews preview.Generator,
	search SearchIndexer,
	log *logger.Logger,
) MaterialService {
	return &materialService{
		db:           db,
		materialRepo: materialRepo,
		topicRepo:    topicRepo,
		pendingRepo:  pendingRepo,
		audienceRepo: audienceRepo,
		likeRepo:     likeRepo,
		fileStorage:  fileStorage,
		previews:     previews,
		search:       search,
		log:          log,
	}
}

// uploadedFile is the first phase of the two-phase upload: a stored file
// whose rollback step deletes it if the database phase fails. Rollback is
// best-effort; its own failure is only logged.
type uploadedFile struct {
	storage storage.FileStorage
	url     string
}

func (u *uploadedFile) rollback(ctx context.Context, log *logger.Logger) {
	if err := u.storage.DeleteFile(ctx, u.url); err != nil {
		log.Warn("failed to delete orphaned upload", "file_url", u.url, "err", err)
	}
}

// topicResolution is the outcome of matching the request's topic fields
// against the existing taxonomy: resolved ids plus an optional proposal for
// a topic that does not exist yet.
type topicResolution struct {
	mainTopicID *uuid.UUID
	subTopicID  *uuid.UUID
	proposal    *model.PendingTopic
}

func (s *materialService) Upload(ctx context.Context, acting model.ActingUser, req dto.UploadMaterialRequest, file *dto.MaterialFile) (*model.Material, error) {
	if file == nil || file.Reader == nil {
		return nil, apperror.Validation("יש לצרף קובץ")
	}
	if file.Size > MaxUploadSize {
		return nil, apperror.Validation("גודל הקובץ חורג מהמותר (10MB)")
	}
	if !allowedContentTypes[file.ContentType] {
		return nil, apperror.Validation("סוג הקובץ אינו נתמך")
	}

	resolution, err := s.resolveTopics(ctx, acting, req)
	if err != nil {
		return nil, err
	}

	audiences, err := s.audienceRepo.FindByIDs(ctx, req.AudienceIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load audiences: %v", apperror.ErrInternal, err)
	}

	// Preview generation reads the stream too, so buffer it once.
	content, err := io.ReadAll(io.LimitReader(file.Reader, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", apperror.ErrInternal, err)
	}
	if int64(len(content)) > MaxUploadSize {
		return nil, apperror.Validation("גודל הקובץ חורג מהמותר (10MB)")
	}

	// Phase one: store the file.
	fileURL, err := s.fileStorage.UploadFile(ctx, bytes.NewReader(content), "materials", file.FileName)
	if err != nil {
		s.log.Error("material file upload failed", "file_name", file.FileName, "err", err)
		return nil, fmt.Errorf("%w: upload file: %v", apperror.ErrInternal, err)
	}
	stored := &uploadedFile{storage: s.fileStorage, url: fileURL}

	// Phase two: the database rows, in one transaction. Failure triggers the
	// compensating file delete.
	material := &model.Material{
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		FileURL:          fileURL,
		MainTopicID:      resolution.mainTopicID,
		SubTopicID:       resolution.subTopicID,
		EstimatedMinutes: req.EstimatedMinutes,
		Status:           model.StatusPending,
		Audiences:        audiences,
		CreatedBy:        acting.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		materials := s.materialRepo.WithTx(tx)
		pendings := s.pendingRepo.WithTx(tx)

		if err := materials.Create(ctx, material); err != nil {
			return err
		}
		if resolution.proposal != nil {
			resolution.proposal.MaterialID = &material.ID
			if err := pendings.Create(ctx, resolution.proposal); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		stored.rollback(ctx, s.log)
		s.log.Error("material insert failed after upload", "file_url", fileURL, "err", err)
		return nil, fmt.Errorf("%w: create material: %v", apperror.ErrInternal, err)
	}

	s.generatePreview(ctx, material, content, file)

	return material, nil
}

// resolveTopics maps the request's topic fields to existing topic ids, or
// builds a PendingTopic proposal when the uploader named a topic that does
// not exist yet. The material's reference stays null until that proposal is
// approved.
func (s *materialService) resolveTopics(ctx context.Context, acting model.ActingUser, req dto.UploadMaterialRequest) (*topicResolution, error) {
	res := &topicResolution{}

	newMain := req.NewMainTopicName != nil && strings.TrimSpace(*req.NewMainTopicName) != ""
	newSub := req.NewSubTopicName != nil && strings.TrimSpace(*req.NewSubTopicName) != ""

	switch {
	case newMain && newSub:
		return nil, apperror.Validation("לא ניתן להציע נושא ראשי ותת נושא חדשים באותה העלאה")
	case newMain:
		res.proposal = &model.PendingTopic{
			Name:        strings.TrimSpace(*req.NewMainTopicName),
			IsMainTopic: true,
			Status:      model.StatusPending,
			CreatedBy:   acting.ID,
		}
		return res, nil
	case req.MainTopicID == nil:
		return nil, apperror.Validation("יש לבחור נושא ראשי")
	}

	if _, err := s.topicRepo.FindMainByID(ctx, *req.MainTopicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validation("הנושא הראשי שנבחר אינו קיים")
		}
		return nil, fmt.Errorf("%w: find main topic: %v", apperror.ErrInternal, err)
	}
	res.mainTopicID = req.MainTopicID

	if newSub {
		res.proposal = &model.PendingTopic{
			Name:          strings.TrimSpace(*req.NewSubTopicName),
			IsMainTopic:   false,
			ParentTopicID: req.MainTopicID,
			Status:        model.StatusPending,
			CreatedBy:     acting.ID,
		}
		return res, nil
	}

	if req.SubTopicID != nil {
		sub, err := s.topicRepo.FindSubByID(ctx, *req.SubTopicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.Validation("תת הנושא שנבחר אינו קיים")
			}
			return nil, fmt.Errorf("%w: find sub topic: %v", apperror.ErrInternal, err)
		}
		if sub.MainTopicID != *req.MainTopicID {
			return nil, apperror.Validation("תת הנושא אינו שייך לנושא הראשי שנבחר")
		}
		res.subTopicID = req.SubTopicID
	}

	return res, nil
}

// generatePreview renders a first-page JPEG and attaches it to the
// material. Best-effort: the upload already committed, failures are logged.
func (s *materialService) generatePreview(ctx context.Context, material *model.Material, content []byte, file *dto.MaterialFile) {
	if s.previews == nil {
		return
	}

	jpeg, err := s.previews.Generate(ctx, bytes.NewReader(content), file.FileName, file.ContentType)
	if err != nil {
		s.log.Warn("preview generation failed", "material_id", material.ID, "err", err)
		return
	}

	previewURL, err := s.fileStorage.UploadFile(ctx, bytes.NewReader(jpeg), "previews", file.FileName+".jpg")
	if err != nil {
		s.log.Warn("preview upload failed", "material_id", material.ID, "err", err)
		return
	}

	if err := s.materialRepo.SetPreviewURL(ctx, material.ID, previewURL); err != nil {
		s.log.Warn("failed to save preview url", "material_id", material.ID, "err", err)
		return
	}
	material.PreviewURL = &previewURL
}

func (s *materialService) Get(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find material: %v", apperror.ErrInternal, err)
	}

	resp := s.toMaterialResponse(ctx, material)
	return &resp, nil
}

func (s *materialService) List(ctx context.Context, filter dto.MaterialFilter) ([]dto.MaterialResponse, error) {
	materials, err := s.materialRepo.ListApproved(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list materials: %v", apperror.ErrInternal, err)
	}

	out := make([]dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, s.toMaterialResponse(ctx, m))
	}
	return out, nil
}

func (s *materialService) ListForApproval(ctx context.Context, acting model.ActingUser) ([]dto.MaterialResponse, error) {
	if !acting.IsModerator() {
		return nil, apperror.ErrForbidden
	}

	materials, err := s.materialRepo.ListPendingApproval(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list pending materials: %v", apperror.ErrInternal, err)
	}

	out := make([]dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		resp := s.toMaterialResponse(ctx, m)
		if pending, err := s.pendingRepo.FindByMaterialID(ctx, m.ID); err == nil {
			status := pending.Status
			resp.PendingTopicStatus = &status
		}
		out = append(out, resp)
	}
	return out, nil
}

// Approve marks the material approved. Topic side effects are handled by
// the pending-topic workflow, never here.
func (s *materialService) Approve(ctx context.Context, acting model.ActingUser, id uuid.UUID) error {
	if !acting.IsModerator() {
		return apperror.ErrForbidden
	}

	if err := s.materialRepo.MarkApproved(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrAlreadyHandled) {
			return err
		}
		return fmt.Errorf("%w: approve material: %v", apperror.ErrInternal, err)
	}

	if s.search != nil {
		material, err := s.materialRepo.FindByID(ctx, id)
		if err != nil {
			s.log.Warn("failed to load material for indexing", "material_id", id, "err", err)
			return nil
		}
		if err := s.search.IndexMaterial(material); err != nil {
			s.log.Warn("failed to index material", "material_id", id, "err", err)
		}
	}
	return nil
}

// Reject requires a non-empty reason and keeps the file for audit/appeal.
func (s *materialService) Reject(ctx context.Context, acting model.ActingUser, id uuid.UUID, reason string) error {
	if !acting.IsModerator() {
		return apperror.ErrForbidden
	}
	if strings.TrimSpace(reason) == "" {
		return apperror.Validation("יש לציין סיבת דחייה")
	}

	if err := s.materialRepo.MarkRejected(ctx, id, reason); err != nil {
		if errors.Is(err, apperror.ErrAlreadyHandled) {
			return err
		}
		return fmt.Errorf("%w: reject material: %v", apperror.ErrInternal, err)
	}
	return nil
}

// Delete removes the row first; the row deletion is authoritative. Storage
// cleanup afterwards is best-effort and never reverts it.
func (s *materialService) Delete(ctx context.Context, acting model.ActingUser, id uuid.UUID) error {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("%w: find material: %v", apperror.ErrInternal, err)
	}

	if material.CreatedBy != acting.ID && !acting.IsModerator() {
		return apperror.ErrForbidden
	}

	if err := s.materialRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: delete material: %v", apperror.ErrInternal, err)
	}

	if err := s.fileStorage.DeleteFile(ctx, material.FileURL); err != nil {
		s.log.Warn("failed to delete material file", "material_id", id, "file_url", material.FileURL, "err", err)
	}
	if material.PreviewURL != nil {
		if err := s.fileStorage.DeleteFile(ctx, *material.PreviewURL); err != nil {
			s.log.Warn("failed to delete material preview", "material_id", id, "err", err)
		}
	}
	if s.search != nil {
		if err := s.search.DeleteMaterial(id.String()); err != nil {
			s.log.Warn("failed to de-index material", "material_id", id, "err", err)
		}
	}
	return nil
}

func (s *materialService) toMaterialResponse(ctx context.Context, m *model.Material) dto.MaterialResponse {
	resp := dto.MaterialResponse{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description,
		FileURL:          m.FileURL,
		PreviewURL:       m.PreviewURL,
		EstimatedMinutes: m.EstimatedMinutes,
		Status:           m.Status,
		StatusLabel:      model.StatusLabel(m.Status),
		Creator: dto.PersonRef{
			ID:       m.Creator.ID,
			FullName: m.Creator.FullName,
		},
		CreatedAtLabel: m.CreatedAt.Format(timestampLayout),
	}
	if m.MainTopic != nil {
		resp.MainTopic = &dto.TopicRef{ID: m.MainTopic.ID, Name: m.MainTopic.Name}
	}
	if m.SubTopic != nil {
		resp.SubTopic = &dto.TopicRef{ID: m.SubTopic.ID, Name: m.SubTopic.Name}
	}
	for _, a := range m.Audiences {
		resp.Audiences = append(resp.Audiences, a.Name)
	}
	if count, err := s.likeRepo.Count(ctx, model.TargetMaterial, m.ID); err == nil {
		resp.LikeCount = count
	}
	return resp
}
