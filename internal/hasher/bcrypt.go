package hasher

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost factor accounts have historically been hashed with.
const DefaultBcryptCost = 10

type Bcrypt struct {
	cost int
}

var _ Hasher = (*Bcrypt)(nil)

func NewBcrypt(cost int) *Bcrypt {
	return &Bcrypt{cost: cost}
}

func newCheckedBcrypt(cost int) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return NewBcrypt(cost), nil
}

// bcrypt only reads the first 72 bytes; longer input is cut, not rejected.
const bcryptMaxPasswordBytes = 72

func bcryptInput(password string) []byte {
	p := []byte(password)
	if len(p) > bcryptMaxPasswordBytes {
		p = p[:bcryptMaxPasswordBytes]
	}
	return p
}

func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify compares in constant time; the cost is read from the hash itself.
func (b *Bcrypt) Verify(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

func isBcryptHash(hash string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, p) {
			return true
		}
	}
	return false
}
