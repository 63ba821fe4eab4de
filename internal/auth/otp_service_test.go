package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/grocerylab/grocery-api/internal/cache"
	apperrors "github.com/grocerylab/grocery-api/pkg/errors"
	"github.com/grocerylab/grocery-api/pkg/mail"
)

type captureMailer struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (m *captureMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func newOTPFixture(t *testing.T) (*OTPService, *cache.MemoryStore, *captureMailer, *time.Time) {
	t.Helper()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := cache.NewMemoryStore().WithClock(clock)
	mailer := &captureMailer{}

	svc, err := NewOTPService(OTPConfig{
		Store:       store,
		Mailer:      mailer,
		CompanyName: "Grocery",
		Clock:       clock,
	})
	require.NoError(t, err)

	return svc, store, mailer, &now
}

func storedCode(t *testing.T, store *cache.MemoryStore, strategy, identity string) string {
	t.Helper()
	value, found, err := store.Get(context.Background(), codeKey(strategy, identity))
	require.NoError(t, err)
	require.True(t, found)
	return string(value)
}

func TestOTPSendStoresCodeAndMarker(t *testing.T) {
	svc, store, mailer, _ := newOTPFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))
	require.Equal(t, 1, mailer.count())

	code := storedCode(t, store, StrategyLogin, "a@b.com")
	require.Len(t, code, 6)

	require.Positive(t, store.TTLRemaining(markerKey(StrategyLogin, "a@b.com")))
	require.InDelta(t, DefaultOTPTTL, store.TTLRemaining(codeKey(StrategyLogin, "a@b.com")), float64(time.Second))
}

func TestOTPCooldownRejectsEarlyResend(t *testing.T) {
	svc, _, _, now := newOTPFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))

	*now = now.Add(10 * time.Second)

	err := svc.Send(ctx, StrategyLogin, "a@b.com", false)
	require.Error(t, err)
	require.True(t, apperrors.IsCooldown(err))
	require.Contains(t, err.Error(), "20 seconds")
}

func TestOTPResendAfterCooldownReusesLiveCode(t *testing.T) {
	svc, store, mailer, now := newOTPFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))
	first := storedCode(t, store, StrategyLogin, "a@b.com")

	*now = now.Add(DefaultOTPCooldown + time.Second)

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))
	require.Equal(t, 2, mailer.count())
	require.Equal(t, first, storedCode(t, store, StrategyLogin, "a@b.com"),
		"a live code is re-sent, not replaced")
}

func TestOTPFreshCodeAfterExpiry(t *testing.T) {
	svc, store, _, now := newOTPFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))
	first := storedCode(t, store, StrategyLogin, "a@b.com")

	*now = now.Add(DefaultOTPTTL + time.Minute)

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))
	second := storedCode(t, store, StrategyLogin, "a@b.com")
	require.Len(t, second, 6)

	// The expired code no longer verifies (unless the fresh one collided).
	if first != second {
		require.ErrorIs(t, svc.Verify(ctx, StrategyLogin, "a@b.com", first), apperrors.ErrOTPIncorrect)
	}
}

func TestOTPVerifyConsumesCode(t *testing.T) {
	svc, store, _, _ := newOTPFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))
	code := storedCode(t, store, StrategyLogin, "a@b.com")

	require.NoError(t, svc.Verify(ctx, StrategyLogin, "a@b.com", code))

	err := svc.Verify(ctx, StrategyLogin, "a@b.com", code)
	require.ErrorIs(t, err, apperrors.ErrOTPIncorrect, "a consumed code must not verify twice")
}

func TestOTPVerifyWrongCode(t *testing.T) {
	svc, store, _, _ := newOTPFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))
	code := storedCode(t, store, StrategyLogin, "a@b.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	require.ErrorIs(t, svc.Verify(ctx, StrategyLogin, "a@b.com", wrong), apperrors.ErrOTPIncorrect)
}

func TestOTPStrategiesAreIsolated(t *testing.T) {
	svc, store, _, _ := newOTPFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))
	code := storedCode(t, store, StrategyLogin, "a@b.com")

	err := svc.Verify(ctx, StrategyReset, "a@b.com", code)
	require.ErrorIs(t, err, apperrors.ErrOTPIncorrect, "a login code must not satisfy a reset flow")
}

func TestOTPExpiredCooldownMarkerDoesNotThrottle(t *testing.T) {
	svc, _, mailer, now := newOTPFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))

	*now = now.Add(DefaultOTPCooldown + time.Second)

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", false))
	require.Equal(t, 2, mailer.count())
}

func TestOTPSilentSendSkipsDispatch(t *testing.T) {
	svc, store, mailer, _ := newOTPFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, StrategyLogin, "a@b.com", true))
	require.Zero(t, mailer.count())
	require.Len(t, storedCode(t, store, StrategyLogin, "a@b.com"), 6)
}

func TestOTPFallbackCode(t *testing.T) {
	const secret = "JBSWY3DPEHPK3PXP"

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := cache.NewMemoryStore().WithClock(clock)

	svc, err := NewOTPService(OTPConfig{
		Store:          store,
		Mailer:         &captureMailer{},
		FallbackSecret: secret,
		Clock:          clock,
	})
	require.NoError(t, err)

	fallback, err := totp.GenerateCodeCustom(secret, now, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	// No code was ever sent: only the fallback can match.
	require.NoError(t, svc.Verify(context.Background(), StrategyLogin, "a@b.com", fallback))
}

func TestOTPFallbackDisabledByDefault(t *testing.T) {
	svc, _, _, now := newOTPFixture(t)

	fallback, err := totp.GenerateCodeCustom("JBSWY3DPEHPK3PXP", *now, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	err = svc.Verify(context.Background(), StrategyLogin, "a@b.com", fallback)
	require.ErrorIs(t, err, apperrors.ErrOTPIncorrect)
}
