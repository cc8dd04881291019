package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libretrack/models"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService()

	token, err := svc.GenerateToken("user-123", models.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "libretrack", claims.Issuer)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewJWTService()

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	// Token signed with a different secret.
	other := &JWTService{config: &JWTConfig{SecretKey: "other-secret", ExpirationTime: GetJWTConfig().ExpirationTime, Issuer: "libretrack"}}
	token, err := other.GenerateToken("user-123", models.RoleStudent)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
