package qrtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "qcc-attendance-test-secret"

func TestSigner_IssueAndValidate(t *testing.T) {
	s, err := NewSigner(testSecret, 5*time.Minute)
	require.NoError(t, err)

	now := time.Now()
	tok := s.Issue("site-1", now)

	assert.Equal(t, "site-1", tok.SiteID)
	assert.NoError(t, s.Validate(tok, now))
	assert.NoError(t, s.Validate(tok, now.Add(4*time.Minute)))
}

func TestSigner_Expired(t *testing.T) {
	s, err := NewSigner(testSecret, 5*time.Minute)
	require.NoError(t, err)

	now := time.Now()
	tok := s.Issue("site-1", now.Add(-10*time.Minute))

	err = s.Validate(tok, now)
	assert.ErrorIs(t, err, ErrExpiredToken)

	// Re-issued with a fresh timestamp, the same site succeeds.
	fresh := s.Issue("site-1", now)
	assert.NoError(t, s.Validate(fresh, now))
}

func TestSigner_TamperedSiteID(t *testing.T) {
	s, err := NewSigner(testSecret, 5*time.Minute)
	require.NoError(t, err)

	now := time.Now()
	tok := s.Issue("site-1", now)
	tok.SiteID = "site-2"

	assert.ErrorIs(t, s.Validate(tok, now), ErrInvalidToken)
}

func TestSigner_TamperedTimestamp(t *testing.T) {
	s, err := NewSigner(testSecret, 5*time.Minute)
	require.NoError(t, err)

	now := time.Now()
	tok := s.Issue("site-1", now.Add(-10*time.Minute))
	// Refreshing the timestamp without re-signing must fail as forged,
	// not merely expired.
	tok.IssuedAt = now.Unix()

	assert.ErrorIs(t, s.Validate(tok, now), ErrInvalidToken)
}

func TestSigner_FutureIssuedAtRejected(t *testing.T) {
	s, err := NewSigner(testSecret, 5*time.Minute)
	require.NoError(t, err)

	now := time.Now()
	tok := s.Issue("site-1", now.Add(2*time.Minute))

	assert.ErrorIs(t, s.Validate(tok, now), ErrInvalidToken)
}

func TestSigner_DifferentSecretsDisagree(t *testing.T) {
	s1, err := NewSigner("secret-one", 5*time.Minute)
	require.NoError(t, err)
	s2, err := NewSigner("secret-two", 5*time.Minute)
	require.NoError(t, err)

	now := time.Now()
	tok := s1.Issue("site-1", now)

	assert.NoError(t, s1.Validate(tok, now))
	assert.ErrorIs(t, s2.Validate(tok, now), ErrInvalidToken)
}

func TestNewSigner_EmptySecret(t *testing.T) {
	_, err := NewSigner("", 5*time.Minute)
	assert.Error(t, err)
}

func TestNewSigner_DefaultTTL(t *testing.T) {
	s, err := NewSigner(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, s.TTL())
}
