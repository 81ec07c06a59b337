package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
	"github.com/hadracha/guides-portal/pkg/apperror"
)

type materialFixture struct {
	db      *gorm.DB
	svc     MaterialService
	storage *fakeStorage
	search  *fakeSearch
	guide   *model.User
	manager *model.User
	topics  repository.TopicRepository
}

func newMaterialFixture(t *testing.T) *materialFixture {
	t.Helper()

	db := openTestDB(t)
	st := &fakeStorage{}
	search := &fakeSearch{}

	topics := repository.NewTopicRepository(db)
	svc := NewMaterialService(
		db,
		repository.NewMaterialRepository(db),
		topics,
		repository.NewPendingTopicRepository(db),
		repository.NewAudienceRepository(db),
		repository.NewLikeRepository(db),
		st,
		nil,
		search,
		testLogger(),
	)

	return &materialFixture{
		db:      db,
		svc:     svc,
		storage: st,
		search:  search,
		guide:   createTestUser(t, db, model.RoleGuide),
		manager: createTestUser(t, db, model.RoleTrainingManager),
		topics:  topics,
	}
}

func (f *materialFixture) createMainTopic(t *testing.T, name string) *model.MainTopic {
	t.Helper()
	topic := &model.MainTopic{Name: name, CreatedBy: f.manager.ID}
	require.NoError(t, f.db.Create(topic).Error)
	return topic
}

func pdfFile(content string) *dto.MaterialFile {
	return &dto.MaterialFile{
		Reader:      strings.NewReader(content),
		FileName:    "lesson.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(content)),
	}
}

func TestUpload_RejectsBadContentTypeBeforeStorage(t *testing.T) {
	f := newMaterialFixture(t)
	topic := f.createMainTopic(t, "חוסן")

	req := dto.UploadMaterialRequest{
		Title:            "קובץ הרצה",
		Description:      "תיאור",
		EstimatedMinutes: 20,
		MainTopicID:      &topic.ID,
	}
	file := &dto.MaterialFile{
		Reader:      strings.NewReader("MZ"),
		FileName:    "tool.exe",
		ContentType: "application/x-msdownload",
		Size:        2,
	}

	_, err := f.svc.Upload(context.Background(), asActing(f.guide), req, file)
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Empty(t, f.storage.uploads, "invalid file must never reach storage")
}

func TestUpload_RejectsOversizeBeforeStorage(t *testing.T) {
	f := newMaterialFixture(t)
	topic := f.createMainTopic(t, "חוסן")

	req := dto.UploadMaterialRequest{
		Title:            "מצגת",
		Description:      "תיאור",
		EstimatedMinutes: 20,
		MainTopicID:      &topic.ID,
	}
	file := &dto.MaterialFile{
		Reader:      strings.NewReader("x"),
		FileName:    "big.pdf",
		ContentType: "application/pdf",
		Size:        MaxUploadSize + 1,
	}

	_, err := f.svc.Upload(context.Background(), asActing(f.guide), req, file)
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Empty(t, f.storage.uploads)
}

func TestUpload_ExistingTopicHappyPath(t *testing.T) {
	f := newMaterialFixture(t)
	topic := f.createMainTopic(t, "ניווט")

	req := dto.UploadMaterialRequest{
		Title:            "מבוא לניווט",
		Description:      "שיעור ראשון",
		EstimatedMinutes: 45,
		MainTopicID:      &topic.ID,
	}

	material, err := f.svc.Upload(context.Background(), asActing(f.guide), req, pdfFile("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, material.Status)
	require.NotNil(t, material.MainTopicID)
	assert.Equal(t, topic.ID, *material.MainTopicID)
	require.Len(t, f.storage.uploads, 1)
	assert.Equal(t, material.FileURL, f.storage.uploads[0])

	// No topic proposal for an existing topic.
	var count int64
	require.NoError(t, f.db.Model(&model.PendingTopic{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpload_NewSubTopicCreatesProposal(t *testing.T) {
	f := newMaterialFixture(t)
	topic := f.createMainTopic(t, "חוסן")

	name := "ביטחון"
	req := dto.UploadMaterialRequest{
		Title:            "שיעור ביטחון",
		Description:      "תיאור",
		EstimatedMinutes: 30,
		MainTopicID:      &topic.ID,
		NewSubTopicName:  &name,
	}

	material, err := f.svc.Upload(context.Background(), asActing(f.guide), req, pdfFile("%PDF-1.4"))
	require.NoError(t, err)

	// The sub-topic reference stays empty until the proposal is approved.
	assert.Nil(t, material.SubTopicID)

	var pending model.PendingTopic
	require.NoError(t, f.db.Where("name = ?", name).First(&pending).Error)
	assert.False(t, pending.IsMainTopic)
	require.NotNil(t, pending.ParentTopicID)
	assert.Equal(t, topic.ID, *pending.ParentTopicID)
	require.NotNil(t, pending.MaterialID)
	assert.Equal(t, material.ID, *pending.MaterialID)
	assert.Equal(t, model.StatusPending, pending.Status)
}

// Full flow: an upload naming a sub topic that does not exist yet creates a
// proposal, and approving that proposal repoints the material at the
// materialized sub topic.
func TestUploadThenApproveProposal_RepointsMaterial(t *testing.T) {
	f := newMaterialFixture(t)
	ctx := context.Background()
	parent := f.createMainTopic(t, "חוסן")

	name := "ביטחון"
	material, err := f.svc.Upload(ctx, asActing(f.guide), dto.UploadMaterialRequest{
		Title:            "שיעור ביטחון",
		Description:      "תיאור",
		EstimatedMinutes: 30,
		MainTopicID:      &parent.ID,
		NewSubTopicName:  &name,
	}, pdfFile("%PDF-1.4"))
	require.NoError(t, err)
	require.Nil(t, material.SubTopicID)

	var pending model.PendingTopic
	require.NoError(t, f.db.Where("name = ?", name).First(&pending).Error)

	topicSvc := NewTopicService(
		f.db,
		f.topics,
		repository.NewPendingTopicRepository(f.db),
		repository.NewMaterialRepository(f.db),
		testLogger(),
	)
	require.NoError(t, topicSvc.ApprovePendingTopic(ctx, asActing(f.manager), pending.ID))

	var sub model.SubTopic
	require.NoError(t, f.db.Where("name = ? AND main_topic_id = ?", name, parent.ID).First(&sub).Error)

	var reloaded model.Material
	require.NoError(t, f.db.First(&reloaded, "id = ?", material.ID).Error)
	require.NotNil(t, reloaded.SubTopicID)
	assert.Equal(t, sub.ID, *reloaded.SubTopicID)
	require.NotNil(t, reloaded.MainTopicID)
	assert.Equal(t, parent.ID, *reloaded.MainTopicID)
}

func TestUpload_BothNewTopicsRejected(t *testing.T) {
	f := newMaterialFixture(t)

	mainName := "חוסן"
	subName := "ביטחון"
	req := dto.UploadMaterialRequest{
		Title:            "שיעור",
		Description:      "תיאור",
		EstimatedMinutes: 30,
		NewMainTopicName: &mainName,
		NewSubTopicName:  &subName,
	}

	_, err := f.svc.Upload(context.Background(), asActing(f.guide), req, pdfFile("%PDF-1.4"))
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Empty(t, f.storage.uploads)
}

// failingMaterialRepo makes the insert phase fail so the compensating file
// delete can be observed.
type failingMaterialRepo struct {
	repository.MaterialRepository
}

func (f *failingMaterialRepo) Create(_ context.Context, _ *model.Material) error {
	return errors.New("insert failed")
}

func (f *failingMaterialRepo) WithTx(_ *gorm.DB) repository.MaterialRepository {
	return f
}

func TestUpload_DeletesFileWhenInsertFails(t *testing.T) {
	db := openTestDB(t)
	st := &fakeStorage{}
	guide := createTestUser(t, db, model.RoleGuide)

	topic := &model.MainTopic{Name: "חוסן", CreatedBy: guide.ID}
	require.NoError(t, db.Create(topic).Error)

	svc := NewMaterialService(
		db,
		&failingMaterialRepo{MaterialRepository: repository.NewMaterialRepository(db)},
		repository.NewTopicRepository(db),
		repository.NewPendingTopicRepository(db),
		repository.NewAudienceRepository(db),
		repository.NewLikeRepository(db),
		st,
		nil,
		nil,
		testLogger(),
	)

	req := dto.UploadMaterialRequest{
		Title:            "שיעור",
		Description:      "תיאור",
		EstimatedMinutes: 30,
		MainTopicID:      &topic.ID,
	}

	_, err := svc.Upload(context.Background(), asActing(guide), req, pdfFile("%PDF-1.4"))
	require.ErrorIs(t, err, apperror.ErrInternal)

	require.Len(t, st.uploads, 1)
	require.Len(t, st.deletes, 1)
	assert.Equal(t, st.uploads[0], st.deletes[0], "orphaned upload must be removed")
}

func TestApproveMaterial_GuardsTerminalStateAndIndexes(t *testing.T) {
	f := newMaterialFixture(t)
	ctx := context.Background()
	topic := f.createMainTopic(t, "ניווט")

	material, err := f.svc.Upload(ctx, asActing(f.guide), dto.UploadMaterialRequest{
		Title:            "מבוא",
		Description:      "תיאור",
		EstimatedMinutes: 15,
		MainTopicID:      &topic.ID,
	}, pdfFile("%PDF-1.4"))
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Approve(ctx, asActing(f.guide), material.ID), apperror.ErrForbidden)

	require.NoError(t, f.svc.Approve(ctx, asActing(f.manager), material.ID))
	assert.Contains(t, f.search.indexed, material.ID.String())

	// Second approval loses to the conditional update.
	require.ErrorIs(t, f.svc.Approve(ctx, asActing(f.manager), material.ID), apperror.ErrAlreadyHandled)
}

func TestRejectMaterial_RequiresReasonAndKeepsFile(t *testing.T) {
	f := newMaterialFixture(t)
	ctx := context.Background()
	topic := f.createMainTopic(t, "ניווט")

	material, err := f.svc.Upload(ctx, asActing(f.guide), dto.UploadMaterialRequest{
		Title:            "מבוא",
		Description:      "תיאור",
		EstimatedMinutes: 15,
		MainTopicID:      &topic.ID,
	}, pdfFile("%PDF-1.4"))
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Reject(ctx, asActing(f.manager), material.ID, ""), apperror.ErrInvalidInput)

	require.NoError(t, f.svc.Reject(ctx, asActing(f.manager), material.ID, "חסר מקורות"))

	var reloaded model.Material
	require.NoError(t, f.db.First(&reloaded, "id = ?", material.ID).Error)
	assert.Equal(t, model.StatusRejected, reloaded.Status)
	require.NotNil(t, reloaded.RejectionReason)
	assert.Equal(t, "חסר מקורות", *reloaded.RejectionReason)
	assert.Empty(t, f.storage.deletes, "rejection keeps the stored file")
}

func TestDeleteMaterial_RowDeletionSurvivesStorageFailure(t *testing.T) {
	f := newMaterialFixture(t)
	ctx := context.Background()
	topic := f.createMainTopic(t, "ניווט")

	material, err := f.svc.Upload(ctx, asActing(f.guide), dto.UploadMaterialRequest{
		Title:            "מבוא",
		Description:      "תיאור",
		EstimatedMinutes: 15,
		MainTopicID:      &topic.ID,
	}, pdfFile("%PDF-1.4"))
	require.NoError(t, err)

	f.storage.failDelete = true
	require.NoError(t, f.svc.Delete(ctx, asActing(f.guide), material.ID))

	var count int64
	require.NoError(t, f.db.Model(&model.Material{}).Where("id = ?", material.ID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Contains(t, f.search.deleted, material.ID.String())
}

func TestDeleteMaterial_OwnerOrModeratorOnly(t *testing.T) {
	f := newMaterialFixture(t)
	ctx := context.Background()
	topic := f.createMainTopic(t, "ניווט")
	other := createTestUser(t, f.db, model.RoleGuide)

	material, err := f.svc.Upload(ctx, asActing(f.guide), dto.UploadMaterialRequest{
		Title:            "מבוא",
		Description:      "תיאור",
		EstimatedMinutes: 15,
		MainTopicID:      &topic.ID,
	}, pdfFile("%PDF-1.4"))
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Delete(ctx, asActing(other), material.ID), apperror.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, asActing(f.manager), material.ID))
}

func TestListForApproval_SurfacesPendingTopicStatus(t *testing.T) {
	f := newMaterialFixture(t)
	ctx := context.Background()

	name := "נושא חדש"
	material, err := f.svc.Upload(ctx, asActing(f.guide), dto.UploadMaterialRequest{
		Title:            "שיעור",
		Description:      "תיאור",
		EstimatedMinutes: 20,
		NewMainTopicName: &name,
	}, pdfFile("%PDF-1.4"))
	require.NoError(t, err)

	_, err = f.svc.ListForApproval(ctx, asActing(f.guide))
	require.ErrorIs(t, err, apperror.ErrForbidden)

	list, err := f.svc.ListForApproval(ctx, asActing(f.manager))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, material.ID, list[0].ID)
	require.NotNil(t, list[0].PendingTopicStatus)
	assert.Equal(t, model.StatusPending, *list[0].PendingTopicStatus)
	assert.Equal(t, "ממתין לאישור", list[0].StatusLabel)
}

func TestUpload_SubTopicMustBelongToMainTopic(t *testing.T) {
	f := newMaterialFixture(t)
	topicA := f.createMainTopic(t, "חוסן")
	topicB := f.createMainTopic(t, "ניווט")

	sub := &model.SubTopic{Name: "מפות", MainTopicID: topicB.ID, CreatedBy: f.manager.ID}
	require.NoError(t, f.db.Create(sub).Error)

	req := dto.UploadMaterialRequest{
		Title:            "שיעור",
		Description:      "תיאור",
		EstimatedMinutes: 20,
		MainTopicID:      &topicA.ID,
		SubTopicID:       &sub.ID,
	}

	_, err := f.svc.Upload(context.Background(), asActing(f.guide), req, pdfFile("%PDF-1.4"))
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestUpload_UnknownMainTopicRejected(t *testing.T) {
	f := newMaterialFixture(t)

	ghost := uuid.New()
	req := dto.UploadMaterialRequest{
		Title:            "שיעור",
		Description:      "תיאור",
		EstimatedMinutes: 20,
		MainTopicID:      &ghost,
	}

	_, err := f.svc.Upload(context.Background(), asActing(f.guide), req, pdfFile("%PDF-1.4"))
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Empty(t, f.storage.uploads)
}
