package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"techmart/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	service := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, model.RoleAdmin)
	assert.NoError(t, err)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateAccessToken(uuid.New(), model.RoleUser)
	assert.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateToken(token)
	assert.Error(t, err)
	assert.False(t, IsExpired(err))
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	service := NewJWTService("test-secret")
	userID := uuid.New()

	a, err := service.GenerateRefreshToken(userID, model.RoleUser)
	assert.NoError(t, err)
	b, err := service.GenerateRefreshToken(userID, model.RoleUser)
	assert.NoError(t, err)

	assert.NotEqual(t, a, b)
}
