package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"docuvault/internal/domain"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Options selects the verification mode. Exactly one of JWKSURL or Secret
// must be set: JWKS for asymmetric tokens from an external identity provider,
// Secret for HS256 tokens minted by a trusted gateway.
type Options struct {
	JWKSURL string
	Secret  string
}

// Validator verifies and decodes bearer tokens into Claims. Pure parse and
// verify: no side effects, nothing retained per call.
type Validator struct {
	keyfn   jwt.Keyfunc
	methods []string
	logger  *slog.Logger
}

// NewValidator builds a Validator. JWKS keys are cached and refreshed by
// keyfunc based on HTTP cache headers. Allowed signing algorithms are pinned
// per mode to prevent algorithm confusion.
func NewValidator(opts Options, logger *slog.Logger) (*Validator, error) {
	switch {
	case opts.JWKSURL != "":
		jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{opts.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("create JWKS client: %w", err)
		}
		logger.Info("token validator initialized", "mode", "jwks", "jwks_url", opts.JWKSURL)
		return &Validator{
			keyfn:   jwks.Keyfunc,
			methods: []string{"RS256", "ES256"},
			logger:  logger,
		}, nil
	case opts.Secret != "":
		secret := []byte(opts.Secret)
		logger.Info("token validator initialized", "mode", "hs256")
		return &Validator{
			keyfn:   func(*jwt.Token) (interface{}, error) { return secret, nil },
			methods: []string{"HS256"},
			logger:  logger,
		}, nil
	}
	return nil, errors.New("token validator requires a JWKS URL or a shared secret")
}

// Validate verifies the raw token and returns its claims with roles
// normalized to uppercase and de-duplicated.
//
// Failure modes: ErrInvalidToken for malformed, mis-signed, or expired
// tokens; ErrMissingClaim when the tenant or user claim is absent or the
// tenant claim is not a positive integer.
func (v *Validator) Validate(rawToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(rawToken, &Claims{}, v.keyfn,
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	if claims.TenantID <= 0 {
		return nil, fmt.Errorf("tenant_id claim absent or not a positive integer: %w", domain.ErrMissingClaim)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("sub claim absent: %w", domain.ErrMissingClaim)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	claims.Roles = normalizeRoles(claims.Roles)
	return claims, nil
}

// UserID parses the subject claim as a numeric user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("sub claim %q is not a positive integer: %w", c.Subject, domain.ErrMissingClaim)
	}
	return id, nil
}
