package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/grocerylab/grocery-api/internal/cache"
	"github.com/grocerylab/grocery-api/pkg/crypto"
	apperrors "github.com/grocerylab/grocery-api/pkg/errors"
)

// DefaultRefreshTokenTTL is the sliding lifetime of a refresh token. Each
// reuse extends it, so an active shopper stays logged in indefinitely.
const DefaultRefreshTokenTTL = 5 * 24 * time.Hour

// RefreshTokenConfig bundles the collaborators of a RefreshTokenService.
type RefreshTokenConfig struct {
	Store cache.Store
	TTL   time.Duration
	Clock func() time.Time
}

// tokenRecord is the forward-index payload binding a token to the browser
// fingerprint it was issued for.
type tokenRecord struct {
	Token       string `json:"token"`
	Fingerprint string `json:"fingerprint"`
}

// RefreshTokenService maintains one refresh-token lineage per identity. The
// store holds two indices: forward (<userType>.<userID>.refresh_token →
// record) and reverse (<userType>.refresh_token.<token> → userID). Each
// identity has a single slot, so issuing from a second browser replaces the
// first browser's lineage.
type RefreshTokenService struct {
	store cache.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewRefreshTokenService constructs a RefreshTokenService.
func NewRefreshTokenService(cfg RefreshTokenConfig) (*RefreshTokenService, error) {
	if cfg.Store == nil {
		return nil, errors.New("refresh token service: cache store is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}
	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &RefreshTokenService{store: cfg.Store, ttl: ttl, now: now}, nil
}

// Issue returns a refresh token for the identity. When the stored lineage
// matches the requesting browser the existing token is returned with both
// indices' TTLs extended; otherwise a fresh token replaces the slot.
func (s *RefreshTokenService) Issue(ctx context.Context, userType string, userID uint, userAgent string) (string, error) {
	if s == nil {
		return "", errors.New("refresh token service: not initialised")
	}

	fingerprint := crypto.FingerprintHash(userAgent)

	if record, found, err := s.forwardRecord(ctx, userType, userID); err != nil {
		return "", err
	} else if found {
		if record.Fingerprint == fingerprint {
			if err := s.writeIndices(ctx, userType, userID, record); err != nil {
				return "", err
			}
			return record.Token, nil
		}
		// Different browser: the old lineage is replaced, and its reverse
		// entry must not keep resolving.
		_ = s.store.Delete(ctx, reverseKey(userType, record.Token))
	}

	token, err := s.mintToken()
	if err != nil {
		return "", err
	}

	record := tokenRecord{Token: token, Fingerprint: fingerprint}
	if err := s.writeIndices(ctx, userType, userID, record); err != nil {
		return "", err
	}
	return token, nil
}

// Verify resolves a refresh token back to its identity. Any inconsistency
// answers with the token-expired status so clients force a fresh login; a
// fingerprint mismatch additionally burns the lineage.
func (s *RefreshTokenService) Verify(ctx context.Context, userType, token, userAgent string) (uint, error) {
	if s == nil {
		return 0, errors.New("refresh token service: not initialised")
	}
	if token == "" {
		return 0, apperrors.ErrRefreshTokenInvalid
	}

	reverse, found, err := s.store.Get(ctx, reverseKey(userType, token))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, apperrors.ErrRefreshTokenInvalid
	}

	userID64, err := strconv.ParseUint(string(reverse), 10, 64)
	if err != nil || userID64 == 0 {
		return 0, apperrors.ErrRefreshTokenInvalid
	}
	userID := uint(userID64)

	record, found, err := s.forwardRecord(ctx, userType, userID)
	if err != nil {
		return 0, err
	}
	if !found || record.Token != token {
		return 0, apperrors.ErrRefreshTokenInvalid
	}

	if record.Fingerprint != crypto.FingerprintHash(userAgent) {
		if clearErr := s.Clear(ctx, userType, userID); clearErr != nil {
			return 0, clearErr
		}
		return 0, apperrors.ErrRefreshTokenInvalid
	}

	return userID, nil
}

// Clear removes the identity's lineage. Used on logout and on suspected
// token theft.
func (s *RefreshTokenService) Clear(ctx context.Context, userType string, userID uint) error {
	if s == nil {
		return errors.New("refresh token service: not initialised")
	}

	keys := []string{forwardKey(userType, userID)}
	if record, found, err := s.forwardRecord(ctx, userType, userID); err != nil {
		return err
	} else if found {
		keys = append(keys, reverseKey(userType, record.Token))
	}

	return s.store.Delete(ctx, keys...)
}

func (s *RefreshTokenService) forwardRecord(ctx context.Context, userType string, userID uint) (tokenRecord, bool, error) {
	var record tokenRecord

	value, found, err := s.store.Get(ctx, forwardKey(userType, userID))
	if err != nil || !found {
		return record, false, err
	}

	decoded, err := base64.StdEncoding.DecodeString(string(value))
	if err != nil {
		return record, false, nil
	}
	if err := json.Unmarshal(decoded, &record); err != nil {
		return record, false, nil
	}
	return record, record.Token != "", nil
}

func (s *RefreshTokenService) writeIndices(ctx context.Context, userType string, userID uint, record tokenRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(payload)

	if err := s.store.Set(ctx, forwardKey(userType, userID), []byte(encoded), s.ttl); err != nil {
		return err
	}
	return s.store.Set(ctx, reverseKey(userType, record.Token),
		[]byte(strconv.FormatUint(uint64(userID), 10)), s.ttl)
}

func (s *RefreshTokenService) mintToken() (string, error) {
	random, err := crypto.GenerateToken(24)
	if err != nil {
		return "", err
	}
	suffix, err := randomDigits(5)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d_%s_%s", s.now().UnixMilli(), random, suffix), nil
}

func forwardKey(userType string, userID uint) string {
	return fmt.Sprintf("%s.%d.refresh_token", userType, userID)
}

func reverseKey(userType, token string) string {
	return fmt.Sprintf("%s.refresh_token.%s", userType, token)
}
