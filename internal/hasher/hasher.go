// Package hasher creates and verifies one-way salted password hashes.
package hasher

import (
	"errors"
	"fmt"
	"strings"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

var (
	// ErrMismatch is returned by Verify when the password does not match the hash.
	ErrMismatch = errors.New("password does not match hash")
	// ErrUnknownFormat is returned by Verify for hashes no supported algorithm produced.
	ErrUnknownFormat = errors.New("unrecognized password hash format")
)

type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// Multi hashes with one algorithm and verifies any supported format, so
// switching algorithms does not lock out users with older hashes.
type Multi struct {
	primary  Hasher
	bcrypt   Hasher
	argon2id Hasher
}

var _ Hasher = (*Multi)(nil)

// New builds a Multi whose primary algorithm is algorithm. cost is the bcrypt
// cost, or the argon2id time parameter.
func New(algorithm string, cost int) (*Multi, error) {
	m := &Multi{
		bcrypt:   NewBcrypt(DefaultBcryptCost),
		argon2id: NewArgon2id(DefaultArgon2Time),
	}

	switch algorithm {
	case AlgorithmBcrypt:
		b, err := newCheckedBcrypt(cost)
		if err != nil {
			return nil, err
		}
		m.primary = b
	case AlgorithmArgon2id:
		if cost <= 0 {
			return nil, fmt.Errorf("argon2id time must be positive, got %d", cost)
		}
		m.primary = NewArgon2id(uint32(cost))
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
	return m, nil
}

func (m *Multi) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *Multi) Verify(hash, password string) error {
	switch {
	case strings.HasPrefix(hash, argon2idPrefix):
		return m.argon2id.Verify(hash, password)
	case isBcryptHash(hash):
		return m.bcrypt.Verify(hash, password)
	default:
		return ErrUnknownFormat
	}
}
