package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	siteID := "site-hq"
	tokenString, expiresAt, err := svc.GenerateAccessToken("user-1", true, &siteID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	tok, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	userID, ok := tok.Get("user_id")
	require.True(t, ok)
	assert.Equal(t, "user-1", userID)

	isAdmin, ok := tok.Get("is_admin")
	require.True(t, ok)
	assert.Equal(t, true, isAdmin)

	tokenType, ok := tok.Get("type")
	require.True(t, ok)
	assert.Equal(t, "access", tokenType)

	site, ok := tok.Get("site_id")
	require.True(t, ok)
	assert.Equal(t, "site-hq", site)

	assert.Equal(t, expiresAt, tok.Expiration().Unix())
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), float64(expiresAt), 5)
}

func TestGenerateAccessToken_NoAssignedSite(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	tokenString, _, err := svc.GenerateAccessToken("user-2", false, nil)
	require.NoError(t, err)

	tok, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	_, ok := tok.Get("site_id")
	assert.False(t, ok)

	isAdmin, ok := tok.Get("is_admin")
	require.True(t, ok)
	assert.Equal(t, false, isAdmin)
}

func TestGenerateAccessToken_BadExpiration(t *testing.T) {
	svc := NewJWTService("test-secret", "soon")

	_, _, err := svc.GenerateAccessToken("user-1", false, nil)
	assert.Error(t, err)
}
