// Package passwords hashes and checks user passwords with bcrypt.
package passwords

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor for new hashes.
const Cost = 10

type Hasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

type Bcrypt struct {
	cost  int
	dummy string
}

// NewBcrypt hashes the dummy password up front, so the first login for an
// unknown email costs the same single comparison as every later one.
func NewBcrypt() *Bcrypt {
	return NewBcryptWithCost(Cost)
}

// NewBcryptWithCost is meant for tests, where cost 10 is slow.
func NewBcryptWithCost(cost int) *Bcrypt {
	h, err := bcrypt.GenerateFromPassword([]byte("writerlab-no-such-user"), cost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt: dummy hash: %v", err))
	}
	return &Bcrypt{cost: cost, dummy: string(h)}
}

// Hash returns a salted bcrypt hash; two calls with the same input differ.
// Inputs longer than 72 bytes are rejected by bcrypt.
func (b *Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

func (b *Bcrypt) Compare(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// DummyHash is a valid hash of a fixed string, compared against when an
// account does not exist so that both login paths cost one bcrypt run.
func (b *Bcrypt) DummyHash() string {
	return b.dummy
}
