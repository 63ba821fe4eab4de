package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/grocerylab/grocery-api/internal/cache"
	"github.com/grocerylab/grocery-api/internal/models"
	"github.com/grocerylab/grocery-api/pkg/crypto"
	apperrors "github.com/grocerylab/grocery-api/pkg/errors"
	"github.com/grocerylab/grocery-api/pkg/metrics"
)

// UserTypeShopper namespaces shopper refresh-token lineages in the store.
const UserTypeShopper = "users"

// Login strategies accepted by the session issuer.
const (
	LoginPassword = "password"
	LoginRefresh  = "refresh_token"
)

// dummyHash is compared against when the account does not exist, keeping the
// failure path's timing indistinguishable from a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthConfig bundles the collaborators of an AuthService.
type AuthConfig struct {
	DB      *gorm.DB
	Store   cache.Store
	JWT     *JWTService
	OTP     *OTPService
	Refresh *RefreshTokenService
}

// AuthService issues authenticated sessions: it verifies credentials, mints
// access tokens bound to the requesting browser, and manages the refresh
// lineage alongside.
type AuthService struct {
	db      *gorm.DB
	store   cache.Store
	jwt     *JWTService
	otp     *OTPService
	refresh *RefreshTokenService
}

// NewAuthService constructs an AuthService.
func NewAuthService(cfg AuthConfig) (*AuthService, error) {
	if cfg.DB == nil {
		return nil, errors.New("auth service: db is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("auth service: cache store is required")
	}
	if cfg.JWT == nil {
		return nil, errors.New("auth service: jwt service is required")
	}
	if cfg.OTP == nil {
		return nil, errors.New("auth service: otp service is required")
	}
	if cfg.Refresh == nil {
		return nil, errors.New("auth service: refresh token service is required")
	}

	return &AuthService{
		db:      cfg.DB,
		store:   cfg.Store,
		jwt:     cfg.JWT,
		otp:     cfg.OTP,
		refresh: cfg.Refresh,
	}, nil
}

// Session is the result of a successful authentication.
type Session struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
}

// LoginInput carries the credentials for one of the login strategies.
type LoginInput struct {
	Strategy     string `json:"strategy"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput carries a new account's fields plus the OTP proving control
// of the email address.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Mobile   string `json:"mobile"`
	OTP      string `json:"otp"`
}

// Login authenticates with the selected strategy. The password strategy
// issues (or extends) a refresh token alongside the access token; the
// refresh strategy answers with a fresh access token only.
func (s *AuthService) Login(ctx context.Context, input LoginInput, userAgent string) (*Session, error) {
	if s == nil {
		return nil, errors.New("auth service: not initialised")
	}

	switch input.Strategy {
	case LoginPassword, "":
		return s.loginWithPassword(ctx, input.Email, input.Password, userAgent)
	case LoginRefresh:
		return s.loginWithRefreshToken(ctx, input.RefreshToken, userAgent)
	default:
		return nil, apperrors.NewBadRequest("unknown login strategy")
	}
}

func (s *AuthService) loginWithPassword(ctx context.Context, email, password, userAgent string) (*Session, error) {
	user, err := s.userByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Burn a bcrypt comparison so absent accounts cost the same.
		crypto.VerifyPassword(dummyHash, password)
		metrics.AuthAttempts.WithLabelValues(LoginPassword, "failure").Inc()
		return nil, apperrors.ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues(LoginPassword, "failure").Inc()
		return nil, apperrors.ErrBadCredentials
	}

	session, err := s.issueSession(ctx, user, userAgent, true)
	if err != nil {
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues(LoginPassword, "success").Inc()
	return session, nil
}

func (s *AuthService) loginWithRefreshToken(ctx context.Context, token, userAgent string) (*Session, error) {
	userID, err := s.refresh.Verify(ctx, UserTypeShopper, token, userAgent)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(LoginRefresh, "failure").Inc()
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues(LoginRefresh, "failure").Inc()
		return nil, apperrors.ErrAccountMissing
	}
	if err != nil {
		return nil, err
	}

	session, err := s.issueSession(ctx, user, userAgent, false)
	if err != nil {
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues(LoginRefresh, "success").Inc()
	return session, nil
}

// Register creates a shopper account after verifying the login OTP sent to
// the email address, then signs the new shopper in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, userAgent string) (*Session, error) {
	if s == nil {
		return nil, errors.New("auth service: not initialised")
	}

	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}

	if _, err := s.userByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrAccountExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.otp.Verify(ctx, StrategyLogin, email, input.OTP); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: hash,
		Mobile:   strings.TrimSpace(input.Mobile),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	s.sweepUserCache(ctx)
	return s.issueSession(ctx, user, userAgent, true)
}

// ResetPassword replaces the account's password hash after verifying the
// reset OTP. Live sessions keep their refresh lineage; only the credential
// changes.
func (s *AuthService) ResetPassword(ctx context.Context, email, otpCode, newPassword string) error {
	if s == nil {
		return errors.New("auth service: not initialised")
	}

	user, err := s.userByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrAccountMissing
	}
	if err != nil {
		return err
	}

	if err := s.otp.Verify(ctx, StrategyReset, normalizeEmail(email), otpCode); err != nil {
		return err
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND is_deleted = ?", user.UserID, false).
		Update("password", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAccountMissing
	}

	s.sweepUserCache(ctx)
	return nil
}

// Logout drops the shopper's refresh lineage. Outstanding access tokens run
// out on their own short TTL.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if s == nil {
		return errors.New("auth service: not initialised")
	}
	return s.refresh.Clear(ctx, UserTypeShopper, userID)
}

// SendOTP dispatches a login or reset code to the identity.
func (s *AuthService) SendOTP(ctx context.Context, strategy, identity string) error {
	if s == nil {
		return errors.New("auth service: not initialised")
	}
	if strategy != StrategyLogin && strategy != StrategyReset {
		return apperrors.NewBadRequest("unknown otp strategy")
	}
	return s.otp.Send(ctx, strategy, identity, false)
}

func (s *AuthService) issueSession(ctx context.Context, user models.User, userAgent string, withRefresh bool) (*Session, error) {
	fingerprint := crypto.FingerprintHash(userAgent)

	accessToken, err := s.jwt.GenerateAccessToken(user.UserID, UserTypeShopper, fingerprint)
	if err != nil {
		return nil, err
	}

	session := &Session{User: user, AccessToken: accessToken}
	session.User.Password = ""

	if withRefresh {
		refreshToken, err := s.refresh.Issue(ctx, UserTypeShopper, user.UserID, userAgent)
		if err != nil {
			return nil, err
		}
		session.RefreshToken = refreshToken
	}

	return session, nil
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_deleted = ?", normalizeEmail(email), false).
		Take(&user).Error
	return user, err
}

// sweepUserCache drops cached user listings after an account write. Best
// effort: staleness here only affects admin listings, never credentials.
func (s *AuthService) sweepUserCache(ctx context.Context) {
	_ = cache.DeleteMatching(ctx, s.store, cache.InvalidationPattern("users", 0))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
