// Package cryptox wraps the symmetric primitives used for session cookies:
// AES-GCM sealing with a random nonce and HKDF key derivation.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/writerlab/internal/common"
	"golang.org/x/crypto/hkdf"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveKey expands secret into a size-byte key bound to info. Different info
// labels yield independent keys from the same secret.
func DeriveKey(secret []byte, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM under key. The result is
// nonce || ciphertext, with a fresh random nonce per call.
func Seal(key, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. Any modification of the sealed bytes makes it fail.
func Open(key, sealed []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aead.NonceSize()
	if len(sealed) < ns+aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	return aead.Open(nil, sealed[:ns], sealed[ns:], nil)
}
