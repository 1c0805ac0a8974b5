// Package hasher provides password hashing with bcrypt.
package hasher

import (
	"github.com/code19m/errx"
	"golang.org/x/crypto/bcrypt"
)

// Hash returns the bcrypt hash of the password.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errx.Wrap(err)
	}
	return string(hash), nil
}

// Compare reports whether the password matches the hash.
func Compare(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
