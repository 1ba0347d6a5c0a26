package auth

import (
	"golang.org/x/crypto/bcrypt"

	"bookaway/internal/domain"
)

type Bcrypt struct{}

func (Bcrypt) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

func (Bcrypt) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

var _ domain.PasswordHasher = Bcrypt{}
