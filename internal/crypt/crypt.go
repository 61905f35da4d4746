// Package crypt seals export payloads for off-device storage with
// XChaCha20-Poly1305 under a caller-supplied key. The key comes from the
// wallet capability; this package never generates or stores keys.
package crypt

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	go_json "github.com/goccy/go-json"
	"golang.org/x/crypto/chacha20poly1305"
)

const envelopeVersion = 1

// KeySize is the required encryption key length in bytes.
const KeySize = chacha20poly1305.KeySize

var ErrInvalidKey = errors.New("encryption key must be 32 bytes")

// Envelope is the stored object: an unencrypted routing header around the
// sealed payload.
type Envelope struct {
	Version    int    `json:"version"`
	Nonce      string `json:"nonce"` // 24 bytes, hex
	Ciphertext string `json:"data"`  // base64
}

// Seal encrypts plaintext and returns the serialized envelope.
func Seal(key, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	ct := aead.Seal(nil, nonce, plaintext, nil)

	return go_json.Marshal(Envelope{
		Version:    envelopeVersion,
		Nonce:      hex.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
	})
}

// Open decrypts a serialized envelope.
func Open(key, data []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	var env Envelope
	if err := go_json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.Version)
	}

	nonce, err := hex.DecodeString(env.Nonce)
	if err != nil {
		return nil, fmt.Errorf("decoding nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("opening envelope: %w", err)
	}
	return pt, nil
}
