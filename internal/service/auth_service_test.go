package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

func TestLogin(t *testing.T) {
	auth, err := NewAuthService("admin", "s3cret", "test-secret", time.Hour)
	require.NoError(t, err)

	resp, err := auth.Login(domain.LoginUserDTO{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, resp.Role)
	assert.NotEmpty(t, resp.Token)

	_, claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["username"])
	assert.Equal(t, RoleAdmin, claims["role"])

	_, err = auth.Login(domain.LoginUserDTO{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(domain.LoginUserDTO{Username: "root", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejects(t *testing.T) {
	auth, err := NewAuthService("admin", "s3cret", "test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewAuthService("admin", "s3cret", "other-secret", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Login(domain.LoginUserDTO{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	_, _, err = auth.ValidateToken(foreign.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, _, err = auth.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := auth.Login(domain.LoginUserDTO{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	_, _, err = auth.ValidateToken(expired.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
