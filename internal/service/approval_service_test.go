package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
)

func TestGetApprovalCounts(t *testing.T) {
	db := openTestDB(t)
	guide := createTestUser(t, db, model.RoleGuide)
	manager := createTestUser(t, db, model.RoleTrainingManager)

	// Two pending materials, one approved.
	for _, status := range []string{model.StatusPending, model.StatusPending, model.StatusApproved} {
		require.NoError(t, db.Create(&model.Material{
			Title:            "תוכן",
			Description:      "תיאור",
			FileURL:          "https://storage.test/materials/x.pdf",
			EstimatedMinutes: 10,
			Status:           status,
			CreatedBy:        guide.ID,
		}).Error)
	}

	// One pending topic proposal, one already rejected.
	reason := "כפילות"
	require.NoError(t, db.Create(&model.PendingTopic{
		Name: "ניווט", IsMainTopic: true, Status: model.StatusPending, CreatedBy: guide.ID,
	}).Error)
	require.NoError(t, db.Create(&model.PendingTopic{
		Name: "טופוגרפיה", IsMainTopic: true, Status: model.StatusRejected, RejectionReason: &reason, CreatedBy: guide.ID,
	}).Error)

	// One account awaiting activation.
	require.NoError(t, db.Create(&model.User{
		Phone: "0501112222", FullName: "ממתין", Role: model.RoleGuide, Active: false,
	}).Error)

	svc := NewApprovalService(
		repository.NewMaterialRepository(db),
		repository.NewPendingTopicRepository(db),
		repository.NewUserRepository(db),
		testLogger(),
	)
	ctx := context.Background()

	counts, err := svc.GetApprovalCounts(ctx, asActing(manager))
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts.Materials)
	assert.EqualValues(t, 1, counts.Topics)
	assert.EqualValues(t, 1, counts.Users)
	assert.EqualValues(t, 4, counts.Total)

	// Non-moderators get zeros, not an error; the UI hides the badge.
	zero, err := svc.GetApprovalCounts(ctx, asActing(guide))
	require.NoError(t, err)
	assert.Zero(t, zero.Total)
	assert.Zero(t, zero.Materials)
}
