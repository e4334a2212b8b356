package services

import (
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordChecker compares submitted admin passwords against one bcrypt hash.
type PasswordChecker struct {
	hash []byte
}

func NewPasswordChecker(hash []byte) *PasswordChecker {
	return &PasswordChecker{hash: hash}
}

func (p *PasswordChecker) Check(password string) bool {
	if len(p.hash) == 0 || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(p.hash, []byte(password)) == nil
}

// HashPassword returns the base64 encoded bcrypt hash expected in ADMIN_PASSWORD_HASH_B64.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(hash), nil
}
