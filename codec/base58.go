package codec

import (
	"bytes"
	"crypto/sha256"

	"github.com/mr-tron/base58"
)

// TokenType is the leading byte of a base58check token. It tags what the
// payload is, so a node public key can never be mistaken for a secret.
type TokenType byte

const (
	TokenAccountID     TokenType = 0
	TokenNodePublic    TokenType = 28
	TokenNodePrivate   TokenType = 32
	TokenFamilySeed    TokenType = 33
	TokenAccountSecret TokenType = 34
	TokenAccountPublic TokenType = 35
)

// RippleAlphabet is the base58 dictionary used for all ledger tokens.
const RippleAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

var rippleAlphabet = base58.NewAlphabet(RippleAlphabet)

const checksumSize = 4

func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:checksumSize]
}

// EncodeBase58Token returns the base58check encoding of payload tagged with t.
func EncodeBase58Token(t TokenType, payload []byte) string {
	buf := make([]byte, 0, 1+len(payload)+checksumSize)
	buf = append(buf, byte(t))
	buf = append(buf, payload...)
	buf = append(buf, checksum(buf)...)
	return base58.EncodeAlphabet(buf, rippleAlphabet)
}

// DecodeBase58Token decodes s and returns its payload. It reports false if s
// is not valid base58, if the checksum does not match, or if the token is not
// tagged with t.
func DecodeBase58Token(s string, t TokenType) ([]byte, bool) {
	if s == "" {
		return nil, false
	}
	raw, err := base58.DecodeAlphabet(s, rippleAlphabet)
	if err != nil {
		return nil, false
	}
	if len(raw) < 1+checksumSize {
		return nil, false
	}
	body, sum := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	if !bytes.Equal(checksum(body), sum) {
		return nil, false
	}
	if TokenType(body[0]) != t {
		return nil, false
	}
	return append([]byte(nil), body[1:]...), true
}
