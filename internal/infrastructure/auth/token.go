package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wayfare-app/wayfare/internal/domain"
)

// Verifier turns an opaque bearer credential into a stable user
// identity. Token issuance belongs to the account service; everything
// in this repo only verifies.
type Verifier interface {
	Verify(ctx context.Context, credential string) (string, error)
}

type Claims struct {
	jwt.RegisteredClaims
}

type jwtVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) Verifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(_ context.Context, credential string) (string, error) {
	if credential == "" {
		return "", domain.ErrInvalidCredential
	}

	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidCredential
		}
		return v.secret, nil
	})
	if err != nil {
		return "", domain.ErrInvalidCredential
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidCredential
	}

	return claims.Subject, nil
}

// Sign issues a token for the given user. The account service is the
// real issuer; this exists for local development and tests.
func Sign(secret, userID string, ttl time.Duration) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "wayfare",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
