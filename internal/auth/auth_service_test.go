package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/grocerylab/grocery-api/internal/cache"
	"github.com/grocerylab/grocery-api/internal/database/testutil"
	"github.com/grocerylab/grocery-api/internal/models"
	"github.com/grocerylab/grocery-api/pkg/crypto"
	apperrors "github.com/grocerylab/grocery-api/pkg/errors"
)

type authFixture struct {
	svc   *AuthService
	otp   *OTPService
	db    *gorm.DB
	store *cache.MemoryStore
	now   *time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	db := testutil.MustOpenTestDB(t)
	store := cache.NewMemoryStore().WithClock(clock)

	jwtSvc, err := NewJWTService(JWTConfig{Secret: "test-secret", Clock: clock})
	require.NoError(t, err)

	otpSvc, err := NewOTPService(OTPConfig{Store: store, Mailer: &captureMailer{}, Clock: clock})
	require.NoError(t, err)

	refreshSvc, err := NewRefreshTokenService(RefreshTokenConfig{Store: store, Clock: clock})
	require.NoError(t, err)

	svc, err := NewAuthService(AuthConfig{
		DB:      db,
		Store:   store,
		JWT:     jwtSvc,
		OTP:     otpSvc,
		Refresh: refreshSvc,
	})
	require.NoError(t, err)

	return &authFixture{svc: svc, otp: otpSvc, db: db, store: store, now: &now}
}

// register creates an account through the real flow: silent OTP issue, code
// read back from the store, then Register.
func (f *authFixture) register(t *testing.T, email, password string) *Session {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.otp.Send(ctx, StrategyLogin, email, true))
	code := storedCode(t, f.store, StrategyLogin, email)

	session, err := f.svc.Register(ctx, RegisterInput{
		Name:     "Test Shopper",
		Email:    email,
		Password: password,
		OTP:      code,
	}, chromeUA)
	require.NoError(t, err)
	return session
}

func TestRegisterIssuesSession(t *testing.T) {
	f := newAuthFixture(t)

	session := f.register(t, "shopper@example.com", "s3cret!pw")
	require.NotZero(t, session.User.UserID)
	require.Empty(t, session.User.Password, "hashes never leave the service")
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)

	var stored models.User
	require.NoError(t, f.db.Take(&stored, "email = ?", "shopper@example.com").Error)
	require.NotEqual(t, "s3cret!pw", stored.Password, "passwords are stored hashed")
	require.True(t, crypto.VerifyPassword(stored.Password, "s3cret!pw"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "shopper@example.com", "s3cret!pw")

	_, err := f.svc.Register(ctx, RegisterInput{
		Name:     "Again",
		Email:    "Shopper@Example.com",
		Password: "other",
		OTP:      "123456",
	}, chromeUA)
	require.ErrorIs(t, err, apperrors.ErrAccountExists)
}

func TestRegisterWrongOTP(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.otp.Send(ctx, StrategyLogin, "shopper@example.com", true))
	code := storedCode(t, f.store, StrategyLogin, "shopper@example.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err := f.svc.Register(ctx, RegisterInput{
		Name:     "Test",
		Email:    "shopper@example.com",
		Password: "pw",
		OTP:      wrong,
	}, chromeUA)
	require.ErrorIs(t, err, apperrors.ErrOTPIncorrect)
}

func TestLoginWithPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "shopper@example.com", "s3cret!pw")

	session, err := f.svc.Login(ctx, LoginInput{
		Strategy: LoginPassword,
		Email:    "shopper@example.com",
		Password: "s3cret!pw",
	}, chromeUA)
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	require.Empty(t, session.User.Password)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "shopper@example.com", "s3cret!pw")

	_, err := f.svc.Login(ctx, LoginInput{
		Strategy: LoginPassword,
		Email:    "shopper@example.com",
		Password: "wrong",
	}, chromeUA)
	require.ErrorIs(t, err, apperrors.ErrBadCredentials)
}

func TestLoginUnknownAccount(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{
		Strategy: LoginPassword,
		Email:    "nobody@example.com",
		Password: "whatever",
	}, chromeUA)
	require.ErrorIs(t, err, apperrors.ErrBadCredentials,
		"absent accounts and wrong passwords are indistinguishable")
}

func TestLoginWithRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered := f.register(t, "shopper@example.com", "s3cret!pw")

	session, err := f.svc.Login(ctx, LoginInput{
		Strategy:     LoginRefresh,
		RefreshToken: registered.RefreshToken,
	}, chromeUA)
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.Empty(t, session.RefreshToken,
		"the refresh strategy answers with an access token only")
	require.Equal(t, registered.User.UserID, session.User.UserID)
}

func TestLoginWithStolenRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered := f.register(t, "shopper@example.com", "s3cret!pw")

	_, err := f.svc.Login(ctx, LoginInput{
		Strategy:     LoginRefresh,
		RefreshToken: registered.RefreshToken,
	}, firefoxUA)
	require.ErrorIs(t, err, apperrors.ErrRefreshTokenInvalid)

	// The lineage is burned: the original browser must log in again.
	_, err = f.svc.Login(ctx, LoginInput{
		Strategy:     LoginRefresh,
		RefreshToken: registered.RefreshToken,
	}, chromeUA)
	require.ErrorIs(t, err, apperrors.ErrRefreshTokenInvalid)
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "shopper@example.com", "old-password")

	require.NoError(t, f.otp.Send(ctx, StrategyReset, "shopper@example.com", true))
	code := storedCode(t, f.store, StrategyReset, "shopper@example.com")

	require.NoError(t, f.svc.ResetPassword(ctx, "shopper@example.com", code, "new-password"))

	_, err := f.svc.Login(ctx, LoginInput{
		Strategy: LoginPassword,
		Email:    "shopper@example.com",
		Password: "old-password",
	}, chromeUA)
	require.ErrorIs(t, err, apperrors.ErrBadCredentials)

	session, err := f.svc.Login(ctx, LoginInput{
		Strategy: LoginPassword,
		Email:    "shopper@example.com",
		Password: "new-password",
	}, chromeUA)
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
}

func TestResetPasswordUnknownAccount(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.ResetPassword(context.Background(), "nobody@example.com", "123456", "pw")
	require.ErrorIs(t, err, apperrors.ErrAccountMissing)
}

func TestLogoutClearsRefreshLineage(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session := f.register(t, "shopper@example.com", "s3cret!pw")

	require.NoError(t, f.svc.Logout(ctx, session.User.UserID))

	_, err := f.svc.Login(ctx, LoginInput{
		Strategy:     LoginRefresh,
		RefreshToken: session.RefreshToken,
	}, chromeUA)
	require.ErrorIs(t, err, apperrors.ErrRefreshTokenInvalid)
}

func TestOTPCooldownSurfacesThroughSendOTP(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, StrategyLogin, "shopper@example.com"))

	err := f.svc.SendOTP(ctx, StrategyLogin, "shopper@example.com")
	require.True(t, apperrors.IsCooldown(err))
}
