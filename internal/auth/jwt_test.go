package auth

import (
	"testing"
	"time"

	"task-tracker-api/internal/config"
	"task-tracker-api/internal/models"

	"github.com/stretchr/testify/require"
)

func testTokens() *Tokens {
	return NewTokens(config.DefaultConfig().Auth)
}

func TestGenerateAndValidateToken(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.GenerateToken(models.UserInfo{UID: "u-1", Email: "alice@example.com", DisplayName: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UID)
	require.Equal(t, "alice", claims.UserInfo().DisplayName)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := testTokens().ValidateToken("invalid.token")
	require.Error(t, err)
}

func TestValidateToken_WrongAudience(t *testing.T) {
	cfg := config.DefaultConfig().Auth
	token, err := NewTokens(cfg).GenerateToken(models.UserInfo{UID: "u-1"})
	require.NoError(t, err)

	cfg.Audience = "someone-else"
	_, err = NewTokens(cfg).ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := config.DefaultConfig().Auth
	cfg.TokenTTL = -time.Minute
	tokens := NewTokens(cfg)
	token, err := tokens.GenerateToken(models.UserInfo{UID: "u-1"})
	require.NoError(t, err)

	_, err = tokens.ValidateToken(token)
	require.Error(t, err)
}

func TestRevoke_RejectsTokenUntilExpiry(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.GenerateToken(models.UserInfo{UID: "u-1"})
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	tokens.Revoke(claims)
	_, err = tokens.ValidateToken(token)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// a fresh token for the same user is unaffected
	other, err := tokens.GenerateToken(models.UserInfo{UID: "u-1"})
	require.NoError(t, err)
	_, err = tokens.ValidateToken(other)
	require.NoError(t, err)
}
