package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/swim-planner-api/internal/models"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
)

// AuthService validates access tokens minted by the admin application. This
// service does not issue sessions; IssueToken exists for tooling and tests.
type AuthService struct {
	secret []byte
}

// NewAuthService constructs the service with the shared HS256 secret.
func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: []byte(secret)}
}

// ValidateToken parses and verifies tokenString, requiring a requester id.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	if len(s.secret) == 0 {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "JWT secret not configured")
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if strings.TrimSpace(claims.RequesterID()) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token has no user")
	}
	return claims, nil
}

// IssueToken signs an HS256 token for userID valid for ttl.
func (s *AuthService) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
