package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
	"github.com/hadracha/guides-portal/pkg/apperror"
)

func newInteractionFixture(t *testing.T) (*gorm.DB, InteractionService, *model.User, *model.Material) {
	t.Helper()

	db := openTestDB(t)
	guide := createTestUser(t, db, model.RoleGuide)

	material := &model.Material{
		Title:            "מבוא לניווט",
		Description:      "תיאור",
		FileURL:          "https://storage.test/materials/a.pdf",
		EstimatedMinutes: 30,
		Status:           model.StatusApproved,
		CreatedBy:        guide.ID,
	}
	require.NoError(t, db.Create(material).Error)

	svc := NewInteractionService(
		repository.NewLikeRepository(db),
		repository.NewCommentRepository(db),
		repository.NewUserRepository(db),
	)
	return db, svc, guide, material
}

func TestToggleLike_InsertsThenRemoves(t *testing.T) {
	_, svc, guide, material := newInteractionFixture(t)
	ctx := context.Background()

	first, err := svc.ToggleLike(ctx, asActing(guide), model.TargetMaterial, material.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.EqualValues(t, 1, first.LikeCount)

	second, err := svc.ToggleLike(ctx, asActing(guide), model.TargetMaterial, material.ID)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.EqualValues(t, 0, second.LikeCount)
}

func TestToggleLike_CountsPerTarget(t *testing.T) {
	db, svc, guide, material := newInteractionFixture(t)
	ctx := context.Background()
	other := createTestUser(t, db, model.RoleGuide)

	_, err := svc.ToggleLike(ctx, asActing(guide), model.TargetMaterial, material.ID)
	require.NoError(t, err)
	result, err := svc.ToggleLike(ctx, asActing(other), model.TargetMaterial, material.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.LikeCount)

	// A like on a topic with the same id would be a separate target.
	topicResult, err := svc.ToggleLike(ctx, asActing(guide), model.TargetMainTopic, material.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, topicResult.LikeCount)
}

func TestToggleLike_RejectsUnknownTarget(t *testing.T) {
	_, svc, guide, material := newInteractionFixture(t)

	_, err := svc.ToggleLike(context.Background(), asActing(guide), "sub_topic", material.ID)
	require.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestAddComment_ValidatesBody(t *testing.T) {
	_, svc, guide, material := newInteractionFixture(t)
	ctx := context.Background()

	_, err := svc.AddComment(ctx, asActing(guide), model.TargetMaterial, material.ID, "   ")
	require.ErrorIs(t, err, apperror.ErrInvalidInput)

	tooLong := strings.Repeat("א", model.CommentMaxLen+1)
	_, err = svc.AddComment(ctx, asActing(guide), model.TargetMaterial, material.ID, tooLong)
	require.ErrorIs(t, err, apperror.ErrInvalidInput)

	// Exactly at the cap is fine; the limit counts runes, not bytes.
	atCap := strings.Repeat("א", model.CommentMaxLen)
	comment, err := svc.AddComment(ctx, asActing(guide), model.TargetMaterial, material.ID, atCap)
	require.NoError(t, err)
	assert.Equal(t, atCap, comment.Body)
}

func TestGetComments_ReturnsAuthor(t *testing.T) {
	_, svc, guide, material := newInteractionFixture(t)
	ctx := context.Background()

	_, err := svc.AddComment(ctx, asActing(guide), model.TargetMaterial, material.ID, "שיעור מצוין")
	require.NoError(t, err)

	comments, err := svc.GetComments(ctx, model.TargetMaterial, material.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "שיעור מצוין", comments[0].Body)
	assert.Equal(t, guide.FullName, comments[0].Author.FullName)
	assert.Equal(t, guide.ID, comments[0].Author.ID)
}
