package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, 7*24*time.Hour)

	token, err := manager.GenerateToken("507f1f77bcf86cd799439011", "dev@example.com", "developer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, "developer", claims.Role)
}

func TestValidateExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, time.Hour)

	token, err := manager.GenerateToken("507f1f77bcf86cd799439011", "dev@example.com", "developer")
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, time.Hour)
	other := NewJWTManager("other-secret", time.Hour, time.Hour)

	token, err := manager.GenerateToken("507f1f77bcf86cd799439011", "org@example.com", "organization")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateGarbageToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, time.Hour)

	_, err := manager.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestRefreshTokenUsesRefreshDuration(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, 7*24*time.Hour)

	token, err := manager.GenerateRefreshToken("507f1f77bcf86cd799439011", "dev@example.com", "developer")
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)

	// Термін дії refresh-токена має бути суттєво довшим за годину
	assert.True(t, claims.ExpiresAt.After(time.Now().Add(6*24*time.Hour)))
}
