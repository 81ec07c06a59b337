package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
	"github.com/hadracha/guides-portal/pkg/apperror"
	"github.com/hadracha/guides-portal/pkg/logger"
	"github.com/hadracha/guides-portal/pkg/sms"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error)
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*dto.AuthResponse, error)
	Login(ctx context.Context, phone, password string) (*dto.AuthResponse, error)
}

type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	OTPCodeTTL   time.Duration
	OTPRateLimit time.Duration
}

type authService struct {
	userRepo repository.UserRepository
	otpStore OTPStore
	sender   sms.Sender
	cfg      AuthConfig
	log      *logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, otpStore OTPStore, sender sms.Sender, cfg AuthConfig, log *logger.Logger) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 72 * time.Hour
	}
	if cfg.OTPCodeTTL <= 0 {
		cfg.OTPCodeTTL = 5 * time.Minute
	}
	if cfg.OTPRateLimit <= 0 {
		cfg.OTPRateLimit = time.Minute
	}
	return &authService{
		userRepo: userRepo,
		otpStore: otpStore,
		sender:   sender,
		cfg:      cfg,
		log:      log,
	}
}

// Register creates an inactive user. An admin has to activate the account
// before login works.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error) {
	phone := strings.TrimSpace(req.Phone)

	if existing, err := s.userRepo.FindByPhone(ctx, phone); err == nil && existing != nil {
		return nil, apperror.Validation("מספר הטלפון כבר רשום במערכת")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: find user: %v", apperror.ErrInternal, err)
	}

	user := &model.User{
		Phone:    phone,
		Email:    req.Email,
		FullName: strings.TrimSpace(req.FullName),
		Role:     model.RoleGuide,
		Active:   false,
	}

	if req.Password != nil && *req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%w: hash password: %v", apperror.ErrInternal, err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: create user: %v", apperror.ErrInternal, err)
	}
	return user, nil
}

func (s *authService) RequestOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Validation("מספר הטלפון אינו רשום במערכת")
		}
		return fmt.Errorf("%w: find user: %v", apperror.ErrInternal, err)
	}
	if !user.Active {
		return apperror.New(http.StatusForbidden, "החשבון ממתין לאישור מנהל", apperror.ErrForbidden)
	}

	ok, err := s.otpStore.AcquireSendSlot(ctx, phone, s.cfg.OTPRateLimit)
	if err != nil {
		return fmt.Errorf("%w: otp rate limit: %v", apperror.ErrInternal, err)
	}
	if !ok {
		return apperror.ErrRateLimitExceeded
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("%w: generate otp: %v", apperror.ErrInternal, err)
	}

	if err := s.otpStore.SaveCode(ctx, phone, code, s.cfg.OTPCodeTTL); err != nil {
		return fmt.Errorf("%w: save otp: %v", apperror.ErrInternal, err)
	}

	message := fmt.Sprintf("קוד הכניסה שלך לפורטל ההדרכה: %s", code)
	if err := s.sender.Send(ctx, phone, message); err != nil {
		s.log.Error("failed to send otp sms", "phone", phone, "err", err)
		return fmt.Errorf("%w: send otp: %v", apperror.ErrInternal, err)
	}
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, phone, code string) (*dto.AuthResponse, error) {
	phone = strings.TrimSpace(phone)

	stored, err := s.otpStore.GetCode(ctx, phone)
	if err != nil || stored == "" || stored != strings.TrimSpace(code) {
		return nil, apperror.New(http.StatusUnauthorized, "קוד האימות שגוי או שפג תוקפו", apperror.ErrUnauthorized)
	}

	if err := s.otpStore.DeleteCode(ctx, phone); err != nil {
		s.log.Warn("failed to delete used otp code", "phone", phone, "err", err)
	}

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: find user: %v", apperror.ErrInternal, err)
	}
	if !user.Active {
		return nil, apperror.New(http.StatusForbidden, "החשבון ממתין לאישור מנהל", apperror.ErrForbidden)
	}

	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, phone, password string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusUnauthorized, "פרטי ההתחברות שגויים", apperror.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: find user: %v", apperror.ErrInternal, err)
	}

	if user.PasswordHash == "" {
		return nil, apperror.New(http.StatusUnauthorized, "לחשבון זה אין סיסמה, יש להתחבר עם קוד אימות", apperror.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "פרטי ההתחברות שגויים", apperror.ErrUnauthorized)
	}
	if !user.Active {
		return nil, apperror.New(http.StatusForbidden, "החשבון ממתין לאישור מנהל", apperror.ErrForbidden)
	}

	return s.issueToken(user)
}

func (s *authService) issueToken(user *model.User) (*dto.AuthResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", apperror.ErrInternal, err)
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.TokenTTL.Seconds()),
		User:        user,
	}, nil
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
