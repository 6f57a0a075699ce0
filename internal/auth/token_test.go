package auth

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubblehq/hubble/internal/clock"
	"github.com/hubblehq/hubble/internal/config"
)

func newTestIssuer(t *testing.T, secret string, lifetime time.Duration) *TokenIssuer {
	t.Helper()
	return newTestIssuerFor(t, secret, "hubble", "hubble", lifetime)
}

func newTestIssuerFor(t *testing.T, secret, iss, aud string, lifetime time.Duration) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(config.Config{Auth: config.AuthConfig{
		Secret:        secret,
		Issuer:        iss,
		Audience:      aud,
		TokenLifetime: lifetime,
	}}, clock.Fixed(time.Now()))
	require.NoError(t, err)
	return issuer
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, "test-secret", 7*24*time.Hour)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	userID := node.Generate()

	token, err := issuer.Issue(userID, "REGULAR_USER")
	require.NoError(t, err)

	gotID, gotRole, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "REGULAR_USER", gotRole)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := newTestIssuer(t, "secret-a", time.Hour)
	other := newTestIssuer(t, "secret-b", time.Hour)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	token, err := issuer.Issue(node.Generate(), "REGULAR_USER")
	require.NoError(t, err)

	_, _, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	verifier := newTestIssuer(t, "test-secret", time.Hour)
	foreign := newTestIssuerFor(t, "test-secret", "other-service", "hubble", time.Hour)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	token, err := foreign.Issue(node.Generate(), "REGULAR_USER")
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	verifier := newTestIssuer(t, "test-secret", time.Hour)
	foreign := newTestIssuerFor(t, "test-secret", "hubble", "other-audience", time.Hour)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	token, err := foreign.Issue(node.Generate(), "REGULAR_USER")
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := newTestIssuer(t, "test-secret", time.Hour)

	_, _, err := issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer, err := NewTokenIssuer(config.Config{Auth: config.AuthConfig{
		Secret:        "test-secret",
		Issuer:        "hubble",
		Audience:      "hubble",
		TokenLifetime: time.Hour,
	}}, clock.Fixed(time.Now().Add(-2*time.Hour)))
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	token, err := issuer.Issue(node.Generate(), "REGULAR_USER")
	require.NoError(t, err)

	_, _, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer(config.Config{}, clock.Fixed(time.Now()))
	assert.Error(t, err)
}
