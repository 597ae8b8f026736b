package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfcollab/internal/config"
)

func newTestVerifier(t *testing.T, ttl time.Duration) *Verifier {
	t.Helper()
	v, err := NewVerifier(config.AuthConfig{
		JWTSecret: "test-secret",
		Issuer:    "test",
		TokenTTL:  ttl,
	})
	require.NoError(t, err)
	return v
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier(config.AuthConfig{})
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestVerifier_IssueAndVerify(t *testing.T) {
	v := newTestVerifier(t, time.Hour)

	userID := uuid.NewString()
	tok, err := v.Issue(userID)
	require.NoError(t, err)

	got, err := v.Verify(tok)
	assert.NoError(t, err)
	assert.Equal(t, userID, got)

	// A full Authorization header value is accepted too.
	got, err = v.Verify("Bearer " + tok)
	assert.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifier_Verify_Invalid(t *testing.T) {
	v := newTestVerifier(t, time.Hour)

	tests := []struct {
		name   string
		bearer string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", func() string {
			other := newTestVerifier(t, time.Hour)
			other.secret = []byte("other-secret")
			tok, _ := other.Issue("user")
			return tok
		}()},
		{"expired", func() string {
			short := newTestVerifier(t, -time.Minute)
			tok, _ := short.Issue("user")
			return tok
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.bearer)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}
