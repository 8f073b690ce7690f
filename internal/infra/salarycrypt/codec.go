// Package salarycrypt encrypts the salary field with AES-256-GCM under a
// per-value scrypt-derived key. The encoded form is
// hex(salt) || hex(iv) || hex(tag) || hex(ciphertext).
package salarycrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/crypto/scrypt"

	"payscope/internal/domain"
)

const (
	saltLen = 32
	ivLen   = 16
	tagLen  = 16
	keyLen  = 32

	// scrypt cost parameters, matching the platform's historical values.
	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

// hex offsets into the encoded string
const (
	ivOffset     = saltLen * 2
	tagOffset    = ivOffset + ivLen*2
	cipherOffset = tagOffset + tagLen*2
)

type Codec struct {
	secret string
}

func New(secret string) *Codec {
	return &Codec{secret: secret}
}

// Encrypt encodes a salary under a fresh salt and IV, so repeated calls
// on the same value never produce the same ciphertext. A zero salary
// means "not yet known" and encodes to the empty string.
func (c *Codec) Encrypt(value float64) (string, error) {
	if value == 0 {
		return "", nil
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	aead, err := c.aead(salt)
	if err != nil {
		return "", err
	}

	plaintext := []byte(strconv.FormatFloat(value, 'f', -1, 64))
	sealed := aead.Seal(nil, iv, plaintext, nil)
	ciphertext := sealed[:len(sealed)-tagLen]
	tag := sealed[len(sealed)-tagLen:]

	return hex.EncodeToString(salt) + hex.EncodeToString(iv) +
		hex.EncodeToString(tag) + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt, re-deriving the key from the embedded salt
// and verifying the auth tag. A plain numeric string is treated as
// pre-migration legacy plaintext rather than an error; anything else
// that fails authentication yields ErrDecryptionFailed.
func (c *Codec) Decrypt(encoded string) (float64, error) {
	if encoded == "" {
		return 0, nil
	}
	if legacy, err := strconv.ParseFloat(encoded, 64); err == nil {
		return legacy, nil
	}
	if len(encoded) <= cipherOffset {
		return 0, fmt.Errorf("%w: truncated value", domain.ErrDecryptionFailed)
	}

	salt, err := hex.DecodeString(encoded[:ivOffset])
	if err != nil {
		return 0, fmt.Errorf("%w: malformed salt", domain.ErrDecryptionFailed)
	}
	iv, err := hex.DecodeString(encoded[ivOffset:tagOffset])
	if err != nil {
		return 0, fmt.Errorf("%w: malformed iv", domain.ErrDecryptionFailed)
	}
	tag, err := hex.DecodeString(encoded[tagOffset:cipherOffset])
	if err != nil {
		return 0, fmt.Errorf("%w: malformed auth tag", domain.ErrDecryptionFailed)
	}
	ciphertext, err := hex.DecodeString(encoded[cipherOffset:])
	if err != nil {
		return 0, fmt.Errorf("%w: malformed ciphertext", domain.ErrDecryptionFailed)
	}

	aead, err := c.aead(salt)
	if err != nil {
		return 0, err
	}
	plaintext, err := aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: authentication failed", domain.ErrDecryptionFailed)
	}
	value, err := strconv.ParseFloat(string(plaintext), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric plaintext", domain.ErrDecryptionFailed)
	}
	return value, nil
}

func (c *Codec) aead(salt []byte) (cipher.AEAD, error) {
	if c.secret == "" {
		return nil, errors.New("encryption secret is not configured")
	}
	key, err := scrypt.Key([]byte(c.secret), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivLen)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, nil
}
