// Package token validates the bearer tokens issued by the external auth
// collaborator. The core never issues tokens; it only resolves an already
// authenticated actor id from the presented token.
package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	derrors "heirloom/pkg/domain-errors"
)

// Claims are the claims expected on access tokens from the auth service.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService validates HS256 access tokens.
type JWTService struct {
	signingKey []byte
}

func NewJWTService(signingKey string) *JWTService {
	return &JWTService{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a token string, returning its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeUnauthorized, "invalid or expired token")
	}
	if !token.Valid || claims.UserID == "" {
		return nil, derrors.New(derrors.CodeUnauthorized, "invalid or expired token")
	}
	return claims, nil
}
