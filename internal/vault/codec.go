// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

const (
	keyLength   = 16
	keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateKey returns a random alphanumeric vault key.
func GenerateKey() (string, error) {
	var b strings.Builder
	b.Grow(keyLength)
	limit := big.NewInt(int64(len(keyAlphabet)))
	for i := 0; i < keyLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generating vault key: %w", err)
		}
		b.WriteByte(keyAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Encode tags data with the vault key: the key followed by the base64 of data.
func Encode(key string, data []byte) string {
	return key + base64.StdEncoding.EncodeToString(data)
}

// Decode reverses Encode. It returns ErrForeignImage when payload was not
// encoded with key.
func Decode(key, payload string) ([]byte, error) {
	if key == "" || !strings.HasPrefix(payload, key) {
		return nil, ErrForeignImage
	}
	data, err := base64.StdEncoding.DecodeString(payload[len(key):])
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}
	return data, nil
}
