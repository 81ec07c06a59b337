package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
	"github.com/hadracha/guides-portal/pkg/apperror"
)

type authFixture struct {
	db    *gorm.DB
	svc   AuthService
	otp   *memOTPStore
	sms   *fakeSMS
	users repository.UserRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db := openTestDB(t)
	otp := newMemOTPStore()
	sender := newFakeSMS()
	users := repository.NewUserRepository(db)

	svc := NewAuthService(users, otp, sender, AuthConfig{
		JWTSecret: "test-secret",
	}, testLogger())

	return &authFixture{db: db, svc: svc, otp: otp, sms: sender, users: users}
}

func TestRegister_CreatesInactiveGuide(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, dto.RegisterRequest{
		Phone:    "0521234567",
		FullName: "נועה לוי",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoleGuide, user.Role)
	assert.False(t, user.Active, "new accounts wait for admin activation")

	_, err = f.svc.Register(ctx, dto.RegisterRequest{
		Phone:    "0521234567",
		FullName: "נועה לוי",
	})
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestRequestOTP_InactiveAccountBlocked(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterRequest{Phone: "0521234567", FullName: "נועה לוי"})
	require.NoError(t, err)

	err = f.svc.RequestOTP(ctx, "0521234567")
	require.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Empty(t, f.sms.messages)
}

func TestRequestOTP_SendsCodeAndRateLimits(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, dto.RegisterRequest{Phone: "0521234567", FullName: "נועה לוי"})
	require.NoError(t, err)
	require.NoError(t, f.users.Activate(ctx, user.ID))

	require.NoError(t, f.svc.RequestOTP(ctx, "0521234567"))

	code, err := f.otp.GetCode(ctx, "0521234567")
	require.NoError(t, err)
	require.Len(t, code, 6)
	assert.Contains(t, f.sms.messages["0521234567"], code)

	// A second request inside the window is refused.
	err = f.svc.RequestOTP(ctx, "0521234567")
	require.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
}

func TestVerifyOTP_IssuesTokenAndBurnsCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, dto.RegisterRequest{Phone: "0521234567", FullName: "נועה לוי"})
	require.NoError(t, err)
	require.NoError(t, f.users.Activate(ctx, user.ID))
	require.NoError(t, f.svc.RequestOTP(ctx, "0521234567"))

	code, err := f.otp.GetCode(ctx, "0521234567")
	require.NoError(t, err)

	_, err = f.svc.VerifyOTP(ctx, "0521234567", "000000")
	require.ErrorIs(t, err, apperror.ErrUnauthorized)

	resp, err := f.svc.VerifyOTP(ctx, "0521234567", code)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, user.ID, resp.User.ID)

	// The code is single-use.
	_, err = f.svc.VerifyOTP(ctx, "0521234567", code)
	require.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogin_PasswordFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("sodi123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &model.User{
		Phone:        "0529876543",
		FullName:     "דנה כהן",
		PasswordHash: string(hash),
		Role:         model.RoleTrainingManager,
		Active:       true,
	}
	require.NoError(t, f.db.Create(user).Error)

	_, err = f.svc.Login(ctx, "0529876543", "wrong")
	require.ErrorIs(t, err, apperror.ErrUnauthorized)

	resp, err := f.svc.Login(ctx, "0529876543", "sodi123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// Deactivation gates login immediately.
	require.NoError(t, f.users.Deactivate(ctx, user.ID))
	_, err = f.svc.Login(ctx, "0529876543", "sodi123")
	require.ErrorIs(t, err, apperror.ErrForbidden)
}
