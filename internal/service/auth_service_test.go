package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	svc := NewAuthService("secret")
	token, err := svc.IssueToken("user-1", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.RequesterID())
}

func TestAuthServiceRejectsInvalidTokens(t *testing.T) {
	svc := NewAuthService("secret")

	expired, err := svc.IssueToken("user-1", -time.Minute)
	require.NoError(t, err)
	foreign, err := NewAuthService("other").IssueToken("user-1", time.Hour)
	require.NoError(t, err)
	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{"expired": expired, "foreign": foreign, "anonymous": anonymous, "garbage": "abc.def"} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
		})
	}
}

func TestAuthServiceWithoutSecret(t *testing.T) {
	_, err := NewAuthService("").ValidateToken("x")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConfiguration.Code))
}
