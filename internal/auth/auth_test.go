package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitializeJWT("test-secret")

	token, err := GenerateToken("user-1", "alice", []string{"ROLE_USER", "ROLE_ADMIN"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, claims.Roles)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	InitializeJWT("secret-one")
	token, err := GenerateToken("user-1", "alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	InitializeJWT("secret-two")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	InitializeJWT("test-secret")
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22hunter22", hash)

	assert.NoError(t, VerifyPassword("hunter22hunter22", hash))
	assert.Error(t, VerifyPassword("wrong-password", hash))
}

func TestSessionDataHasRole(t *testing.T) {
	data := SessionData{Roles: []string{"ROLE_USER", "role_admin"}}

	assert.True(t, data.HasRole("ROLE_USER"))
	assert.True(t, data.HasRole("ROLE_ADMIN"))
	assert.True(t, data.HasRole("Role_Admin"))
	assert.False(t, data.HasRole("ROLE_AUDITOR"))
}
