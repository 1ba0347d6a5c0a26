package auth

import (
	"fmt"
	"time"

	"github.com/cristalhq/jwt/v4"

	"bookaway/internal/domain"
)

// JWT issues and verifies HS256 bearer tokens whose subject is the user id.
type JWT struct {
	signer   jwt.Signer
	verifier jwt.Verifier
}

func NewJWT(secret string) (*JWT, error) {
	if secret == "" {
		secret = "defaultsecret"
	}
	key := []byte(secret)
	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	if err != nil {
		return nil, fmt.Errorf("jwt signer: %w", err)
	}
	verifier, err := jwt.NewVerifierHS(jwt.HS256, key)
	if err != nil {
		return nil, fmt.Errorf("jwt verifier: %w", err)
	}
	return &JWT{signer: signer, verifier: verifier}, nil
}

func (j *JWT) Issue(userID string, ttl time.Duration) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewBuilder(j.signer).Build(claims)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}

func (j *JWT) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	if err := jwt.ParseClaims([]byte(token), j.verifier, &claims); err != nil {
		return "", domain.ErrUnauthorized
	}
	if !claims.IsValidExpiresAt(time.Now()) {
		return "", domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}

var (
	_ domain.TokenIssuer   = (*JWT)(nil)
	_ domain.TokenVerifier = (*JWT)(nil)
)
