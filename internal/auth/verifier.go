package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pdfcollab/internal/config"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrSecretRequired    = errors.New("jwt secret is required")
)

// Verifier validates bearer credentials and extracts the user identity.
// The credential itself is treated as opaque by the rest of the system:
// only the user ID carried in the subject claim is used.
type Verifier struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewVerifier creates a Verifier from auth configuration.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrSecretRequired
	}
	return &Verifier{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
	}, nil
}

// Issue signs a credential for the given user. Registration and login flows
// live outside this service; Issue exists for those callers and for tests.
func (v *Verifier) Issue(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    v.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify validates a bearer credential and returns the user ID it carries.
// The value may be the raw token or a full "Bearer <token>" header.
func (v *Verifier) Verify(bearer string) (string, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(bearer, "Bearer "))
	if raw == "" {
		return "", ErrInvalidCredential
	}

	var claims jwt.RegisteredClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", ErrInvalidCredential
	}
	return claims.Subject, nil
}
