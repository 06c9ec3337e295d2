// Package tagcodec implements the NFC tag identity codec: it derives a
// stable textual identifier for a card holder, encrypts it into the URL
// written to the physical tag, and resolves a decoded identifier back to
// exactly one active holder.
//
// The wire format is a compatibility contract with already-issued tags:
// AES-256-CBC with a process-wide fixed key and IV, PKCS#7 padding,
// standard-alphabet base64, percent-encoded as the single "data" query
// parameter. The fixed IV makes encoding deterministic, which the tag
// re-issue flow relies on; it also means related plaintexts produce
// related ciphertexts, a known weakness accepted for tag compatibility.
package tagcodec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dalemusser/cardhub/internal/domain/models"
)

var (
	// ErrEncodingFailure indicates tag creation failed due to invalid
	// input or an unusable cipher configuration.
	ErrEncodingFailure = errors.New("tag encoding failed")

	// ErrDecodeFailure indicates a malformed or undecryptable tag payload.
	// It is returned for any bad input; callers must surface it as a
	// generic "invalid card" response, never as a cipher diagnostic.
	ErrDecodeFailure = errors.New("tag decode failed")
)

// Codec encrypts and decrypts tag identifiers with fixed key material.
type Codec struct {
	key      []byte
	iv       []byte
	basePath string // absolute URL of the resolution endpoint, no query
}

// New validates the key material and returns a Codec.
// The key must be 32 bytes (AES-256) and the IV one AES block (16 bytes).
func New(key, iv []byte, basePath string) (*Codec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("tagcodec: key must be 32 bytes, got %d", len(key))
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("tagcodec: iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	if basePath == "" {
		return nil, errors.New("tagcodec: base path required")
	}
	return &Codec{key: key, iv: iv, basePath: strings.TrimRight(basePath, "/?&")}, nil
}

// Identifier derives the tag identifier for a holder: both names with
// interior whitespace removed, lowercased, concatenated with the decimal
// user number. It is recomputed at every decode and never persisted, so
// the derivation must stay byte-stable.
func Identifier(firstName, lastName string, userNo int64) string {
	return strings.ToLower(stripSpaces(firstName)+stripSpaces(lastName)) + strconv.FormatInt(userNo, 10)
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Encode builds the full NDEF URL for a holder. Encoding the same inputs
// always yields byte-identical output (fixed key and IV).
func (c *Codec) Encode(firstName, lastName string, userNo int64) (string, error) {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return "", fmt.Errorf("%w: first and last name required", ErrEncodingFailure)
	}
	if userNo <= 0 {
		return "", fmt.Errorf("%w: user number must be positive", ErrEncodingFailure)
	}

	plaintext := []byte(Identifier(firstName, lastName, userNo))
	ciphertext, err := c.encrypt(plaintext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodingFailure, err)
	}

	param := url.QueryEscape(base64.StdEncoding.EncodeToString(ciphertext))
	return c.basePath + "?data=" + param, nil
}

// Decode reverses Encode for a single tag parameter (already
// percent-decoded by the HTTP layer). Any malformed input, wrong length,
// bad padding, or garbage plaintext yields ErrDecodeFailure; Decode never
// panics, since it is reachable by arbitrary external clients.
func (c *Codec) Decode(tagParam string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(tagParam)
	if err != nil {
		return "", ErrDecodeFailure
	}

	plaintext, err := c.decrypt(raw)
	if err != nil {
		return "", ErrDecodeFailure
	}
	if !plausibleIdentifier(plaintext) {
		return "", ErrDecodeFailure
	}
	return string(plaintext), nil
}

func (c *Codec) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, c.iv).CryptBlocks(out, padded)
	return out, nil
}

func (c *Codec) decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("ciphertext length not a block multiple")
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, c.iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out, aes.BlockSize)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, errors.New("invalid padding")
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}

// plausibleIdentifier rejects decryptions that cannot be a derived
// identifier: empty, invalid UTF-8, control characters, or no trailing
// digit. A flipped ciphertext byte almost always fails here or in
// padding; anything that slips through still has to match a real user.
func plausibleIdentifier(b []byte) bool {
	if len(b) == 0 || !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if r == utf8.RuneError || unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	last, _ := utf8.DecodeLastRune(b)
	return unicode.IsDigit(last)
}

// Resolve recomputes each active user's identifier and finds an exact
// match for the decoded value. Comparison is constant-time per candidate
// so resolution leaks nothing about near-matches. If no user matches, or
// the identifier string is somehow derivable for users with different
// user numbers, Resolve reports not-found rather than guessing.
func Resolve(identifier string, users []models.User) (*models.User, bool) {
	want := []byte(identifier)

	var match *models.User
	for i := range users {
		u := &users[i]
		if !u.IsActive() {
			continue
		}
		got := []byte(Identifier(u.FirstName, u.LastName, u.UserNo))
		if len(got) == len(want) && subtle.ConstantTimeCompare(got, want) == 1 {
			if match != nil && match.UserNo != u.UserNo {
				return nil, false
			}
			if match == nil {
				match = u
			}
		}
	}
	if match == nil {
		return nil, false
	}
	return match, true
}
