package keys

import (
	"encoding/binary"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// HashPrefix is a 4-byte tag prepended to a message before it is signed, so
// a signature made for one purpose cannot be replayed for another.
type HashPrefix uint32

// HashPrefixManifest tags validator manifests ("MAN\0").
const HashPrefixManifest HashPrefix = 'M'<<24 | 'A'<<16 | 'N'<<8

// Bytes returns the big-endian form of p.
func (p HashPrefix) Bytes() []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(p))
	return b[:]
}

// Signer produces signatures without handing out its secret.
type Signer interface {
	Sign(prefix HashPrefix, message []byte) []byte
}

type secretSigner struct {
	t  KeyType
	sk *SecretKey
}

// NewSigner wraps a secret of type t as a Signer. The signer refers to sk
// rather than copying it, so wiping sk also disables the signer.
func NewSigner(t KeyType, sk *SecretKey) Signer {
	return secretSigner{t: t, sk: sk}
}

func (s secretSigner) Sign(prefix HashPrefix, message []byte) []byte {
	return Sign(prefix, s.t, *s.sk, message)
}

func prefixed(prefix HashPrefix, message []byte) []byte {
	out := make([]byte, 0, 4+len(message))
	out = append(out, prefix.Bytes()...)
	return append(out, message...)
}

// Sign signs prefix||message with sk.
//
// ed25519 signs the bytes directly. secp256k1 signs SHA512Half of the bytes
// with an RFC 6979 nonce and returns a canonical (low-S) DER signature.
func Sign(prefix HashPrefix, t KeyType, sk SecretKey, message []byte) []byte {
	msg := prefixed(prefix, message)
	switch t {
	case KeyTypeEd25519:
		priv := ed25519.NewKeyFromSeed(sk[:])
		return ed25519.Sign(priv, msg)
	case KeyTypeSecp256k1:
		var s secp256k1.ModNScalar
		b := [32]byte(sk)
		if overflow := s.SetBytes(&b); overflow != 0 || s.IsZero() {
			panic("keys: sign: secret is not a valid secp256k1 scalar")
		}
		digest := SHA512Half(msg)
		return ecdsa.Sign(secp256k1.NewPrivateKey(&s), digest[:]).Serialize()
	default:
		panic(fmt.Sprintf("keys: sign: unsupported key type %d", t))
	}
}

// Verify checks sig over prefix||message against pk. The scheme is taken
// from pk itself. Malformed keys or signatures simply fail verification.
func Verify(prefix HashPrefix, pk PublicKey, message, sig []byte) bool {
	msg := prefixed(prefix, message)
	switch pk.Type() {
	case KeyTypeEd25519:
		if len(sig) != ed25519.SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(pk[1:]), msg, sig)
	case KeyTypeSecp256k1:
		pub, err := secp256k1.ParsePubKey(pk[:])
		if err != nil {
			return false
		}
		parsed, err := ecdsa.ParseDERSignature(sig)
		if err != nil {
			return false
		}
		digest := SHA512Half(msg)
		return parsed.Verify(digest[:], pub)
	default:
		return false
	}
}
