package app

import "github.com/grocerylab/grocery-api/internal/auth"

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// RefreshServiceConfig converts AuthConfig into RefreshTokenService parameters.
// The cache store is supplied by the caller since it is a runtime dependency.
func (c AuthConfig) RefreshServiceConfig() auth.RefreshTokenConfig {
	ttl := c.Refresh.TTL
	if ttl <= 0 {
		ttl = auth.DefaultRefreshTokenTTL
	}

	return auth.RefreshTokenConfig{TTL: ttl}
}

// OTPServiceConfig converts AuthConfig into OTPService parameters. Store,
// mailer and SMS sender are wired by the caller.
func (c AuthConfig) OTPServiceConfig() auth.OTPConfig {
	codeTTL := c.OTP.CodeTTL
	if codeTTL <= 0 {
		codeTTL = auth.DefaultOTPTTL
	}

	cooldown := c.OTP.Cooldown
	if cooldown <= 0 {
		cooldown = auth.DefaultOTPCooldown
	}

	return auth.OTPConfig{
		FallbackSecret: c.OTP.FallbackSecret,
		CodeTTL:        codeTTL,
		Cooldown:       cooldown,
	}
}
