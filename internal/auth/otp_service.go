package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"github.com/grocerylab/grocery-api/internal/cache"
	apperrors "github.com/grocerylab/grocery-api/pkg/errors"
	"github.com/grocerylab/grocery-api/pkg/logger"
	"github.com/grocerylab/grocery-api/pkg/mail"
	"github.com/grocerylab/grocery-api/pkg/metrics"
	"github.com/grocerylab/grocery-api/pkg/sms"
)

// OTP strategies name the flow that requested the code. Codes issued for one
// strategy never satisfy another.
const (
	StrategyLogin = "login"
	StrategyReset = "reset"
)

const (
	// DefaultOTPTTL is how long an issued code stays valid. Expiry is
	// enforced purely by the store TTL: a vanished key is an expired code.
	DefaultOTPTTL = 5 * time.Minute
	// DefaultOTPCooldown is the minimum gap between two send requests for
	// the same identity and strategy.
	DefaultOTPCooldown = 30 * time.Second
)

// OTPConfig bundles the collaborators of an OTPService.
type OTPConfig struct {
	Store       cache.Store
	Mailer      mail.Mailer
	SMS         sms.Sender
	CompanyName string
	// FallbackSecret enables TOTP verification as a backup channel when
	// dispatch is unreliable. Empty disables the fallback entirely.
	FallbackSecret string
	CodeTTL        time.Duration
	Cooldown       time.Duration
	Clock          func() time.Time
}

// OTPService issues and verifies one-time passwords for login and password
// reset flows.
type OTPService struct {
	store          cache.Store
	mailer         mail.Mailer
	sms            sms.Sender
	companyName    string
	fallbackSecret string
	codeTTL        time.Duration
	cooldown       time.Duration
	now            func() time.Time
}

// NewOTPService constructs an OTPService.
func NewOTPService(cfg OTPConfig) (*OTPService, error) {
	if cfg.Store == nil {
		return nil, errors.New("otp service: cache store is required")
	}

	codeTTL := cfg.CodeTTL
	if codeTTL <= 0 {
		codeTTL = DefaultOTPTTL
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultOTPCooldown
	}
	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &OTPService{
		store:          cfg.Store,
		mailer:         cfg.Mailer,
		sms:            cfg.SMS,
		companyName:    cfg.CompanyName,
		fallbackSecret: cfg.FallbackSecret,
		codeTTL:        codeTTL,
		cooldown:       cooldown,
		now:            now,
	}, nil
}

// Send issues a code for the identity, honouring the cooldown window. When a
// live code already exists it is re-sent unchanged, so a shopper who requests
// twice can enter either message's code. silent skips dispatch; used when the
// caller delivers the code through its own channel.
func (s *OTPService) Send(ctx context.Context, strategy, identity string, silent bool) error {
	if s == nil {
		return errors.New("otp service: not initialised")
	}
	identity = strings.TrimSpace(strings.ToLower(identity))
	if identity == "" {
		return apperrors.NewBadRequest("identity is required")
	}

	if remaining, throttled, err := s.cooldownRemaining(ctx, strategy, identity); err != nil {
		return err
	} else if throttled {
		metrics.OTPSends.WithLabelValues(strategy, "cooldown").Inc()
		return apperrors.NewCooldown(remaining)
	}

	code, err := s.liveOrFreshCode(ctx, strategy, identity)
	if err != nil {
		return err
	}

	if !silent {
		if err := s.dispatch(ctx, identity, code); err != nil {
			metrics.OTPSends.WithLabelValues(strategy, "error").Inc()
			return err
		}
	}

	// The marker is written last so a failed dispatch never starts the
	// cooldown. Its value carries the issue time; the remaining wait is
	// derived from it without a TTL round trip.
	issuedAt := strconv.FormatInt(s.now().Unix(), 10)
	if err := s.store.Set(ctx, markerKey(strategy, identity), []byte(issuedAt), s.cooldown); err != nil {
		logger.Warn("otp cooldown marker write failed", zap.Error(err))
	}

	metrics.OTPSends.WithLabelValues(strategy, "sent").Inc()
	return nil
}

// Verify checks the supplied code against the live stored code, consuming it
// on success. When the TOTP fallback is enabled a current fallback code is
// accepted as well, covering delivery outages.
func (s *OTPService) Verify(ctx context.Context, strategy, identity, code string) error {
	if s == nil {
		return errors.New("otp service: not initialised")
	}
	identity = strings.TrimSpace(strings.ToLower(identity))
	code = strings.TrimSpace(code)
	if code == "" {
		return apperrors.ErrOTPIncorrect
	}

	stored, found, err := s.store.Get(ctx, codeKey(strategy, identity))
	if err != nil {
		return err
	}
	if found && string(stored) == code {
		return s.store.Delete(ctx, codeKey(strategy, identity), markerKey(strategy, identity))
	}

	if s.verifyFallback(code) {
		return nil
	}

	return apperrors.ErrOTPIncorrect
}

func (s *OTPService) cooldownRemaining(ctx context.Context, strategy, identity string) (int, bool, error) {
	marker, found, err := s.store.Get(ctx, markerKey(strategy, identity))
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, nil
	}

	issuedAt, err := strconv.ParseInt(string(marker), 10, 64)
	if err != nil {
		// Unreadable marker: fail open rather than lock the identity out.
		return 0, false, nil
	}

	elapsed := s.now().Unix() - issuedAt
	remaining := int(s.cooldown.Seconds()) - int(elapsed)
	if remaining <= 0 {
		return 0, false, nil
	}
	return remaining, true, nil
}

func (s *OTPService) liveOrFreshCode(ctx context.Context, strategy, identity string) (string, error) {
	stored, found, err := s.store.Get(ctx, codeKey(strategy, identity))
	if err != nil {
		return "", err
	}
	if found {
		return string(stored), nil
	}

	code, err := randomDigits(6)
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, codeKey(strategy, identity), []byte(code), s.codeTTL); err != nil {
		return "", err
	}
	return code, nil
}

func (s *OTPService) dispatch(ctx context.Context, identity, code string) error {
	if strings.Contains(identity, "@") {
		if s.mailer == nil {
			return errors.New("otp service: no mailer configured for email delivery")
		}
		return s.mailer.Send(ctx, mail.OTPMessage(identity, code, s.companyName))
	}

	if s.sms == nil {
		return errors.New("otp service: no sms sender configured for mobile delivery")
	}
	return s.sms.Send(ctx, identity, sms.OTPBody(code))
}

func (s *OTPService) verifyFallback(code string) bool {
	if s.fallbackSecret == "" {
		return false
	}

	valid, err := totp.ValidateCustom(code, s.fallbackSecret, s.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return valid
}

func codeKey(strategy, identity string) string {
	return fmt.Sprintf("otp.%s.%s", strategy, identity)
}

func markerKey(strategy, identity string) string {
	return codeKey(strategy, identity) + ".last_request"
}

func randomDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		digit, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + digit.Int64()))
	}
	return b.String(), nil
}
