package keys

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Seed is the random input all key material is derived from.
type Seed [SeedSize]byte

// SecretKey holds private key material. String never reveals it; use
// EncodeSecretKey for the one sanctioned text form.
type SecretKey [SecretKeySize]byte

// PublicKey is a 33-byte public key. The first byte identifies the scheme:
// 0xED for ed25519, 0x02 or 0x03 for a compressed secp256k1 point.
type PublicKey [PublicKeySize]byte

// RandomSeed samples a seed from the platform CSPRNG.
func RandomSeed() (Seed, error) {
	var s Seed
	if _, err := rand.Read(s[:]); err != nil {
		return Seed{}, fmt.Errorf("read random seed: %w", err)
	}
	return s, nil
}

// SHA512Half returns the first 32 bytes of SHA-512 over the concatenated parts.
func SHA512Half(parts ...[]byte) [32]byte {
	h := sha512.New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// GenerateSecretKey deterministically derives a secret from seed.
//
// For secp256k1 this is the root key of the deterministic family, which is
// what a node derives from its validation seed.
func GenerateSecretKey(t KeyType, seed Seed) SecretKey {
	switch t {
	case KeyTypeEd25519:
		return SecretKey(SHA512Half(seed[:]))
	case KeyTypeSecp256k1:
		return SecretKey(secpRootKey(seed))
	default:
		panic(fmt.Sprintf("keys: generate secret key: unsupported key type %d", t))
	}
}

// GenerateKeyPair deterministically derives a key pair from seed.
//
// For ed25519 it is equivalent to GenerateSecretKey followed by
// DerivePublicKey. For secp256k1 it returns the first account key of the
// deterministic family rooted at seed.
func GenerateKeyPair(t KeyType, seed Seed) (PublicKey, SecretKey) {
	switch t {
	case KeyTypeEd25519:
		sk := GenerateSecretKey(t, seed)
		return DerivePublicKey(t, sk), sk
	case KeyTypeSecp256k1:
		sk := secpAccountKey(seed, 0)
		return DerivePublicKey(t, sk), sk
	default:
		panic(fmt.Sprintf("keys: generate key pair: unsupported key type %d", t))
	}
}

// DerivePublicKey computes the public key belonging to sk.
func DerivePublicKey(t KeyType, sk SecretKey) PublicKey {
	var pk PublicKey
	switch t {
	case KeyTypeEd25519:
		priv := ed25519.NewKeyFromSeed(sk[:])
		pub := priv.Public().(ed25519.PublicKey)
		pk[0] = ed25519Marker
		copy(pk[1:], pub)
	case KeyTypeSecp256k1:
		var s secp256k1.ModNScalar
		b := [32]byte(sk)
		if overflow := s.SetBytes(&b); overflow != 0 || s.IsZero() {
			panic("keys: derive public key: secret is not a valid secp256k1 scalar")
		}
		copy(pk[:], secp256k1.NewPrivateKey(&s).PubKey().SerializeCompressed())
	default:
		panic(fmt.Sprintf("keys: derive public key: unsupported key type %d", t))
	}
	return pk
}

// ValidSecretKey reports whether sk is usable as a secret of type t. Every
// 32-byte string is a valid ed25519 secret; secp256k1 secrets must be a
// non-zero scalar below the group order.
func ValidSecretKey(t KeyType, sk SecretKey) bool {
	switch t {
	case KeyTypeEd25519:
		return true
	case KeyTypeSecp256k1:
		b := [32]byte(sk)
		return validScalar(&b)
	default:
		return false
	}
}

// Type reports the scheme of pk from its marker byte.
func (pk PublicKey) Type() KeyType {
	switch pk[0] {
	case ed25519Marker:
		return KeyTypeEd25519
	case 0x02, 0x03:
		return KeyTypeSecp256k1
	default:
		return KeyTypeInvalid
	}
}

// Wipe overwrites the secret with zeros.
func (sk *SecretKey) Wipe() {
	for i := range sk {
		sk[i] = 0
	}
}

func (sk SecretKey) String() string { return "[secret]" }

// GoString keeps secrets out of %#v output as well.
func (sk SecretKey) GoString() string { return "keys.SecretKey{[secret]}" }

func validScalar(b *[32]byte) bool {
	var s secp256k1.ModNScalar
	overflow := s.SetBytes(b)
	return overflow == 0 && !s.IsZero()
}

func secpRootKey(seed Seed) [32]byte {
	var buf [SeedSize + 4]byte
	copy(buf[:], seed[:])
	for i := uint32(0); i < 128; i++ {
		binary.BigEndian.PutUint32(buf[SeedSize:], i)
		k := SHA512Half(buf[:])
		if validScalar(&k) {
			return k
		}
	}
	panic("keys: unable to derive secp256k1 root key from seed")
}

// secpAccountKey returns (root + tweak(ordinal)) mod n, where the tweak is
// bound to the root public key.
func secpAccountKey(seed Seed, ordinal uint32) SecretKey {
	rootBytes := secpRootKey(seed)
	var root secp256k1.ModNScalar
	root.SetBytes(&rootBytes)
	generator := secp256k1.NewPrivateKey(&root).PubKey().SerializeCompressed()

	var buf [PublicKeySize + 8]byte
	copy(buf[:], generator)
	binary.BigEndian.PutUint32(buf[PublicKeySize:], ordinal)

	var tweak secp256k1.ModNScalar
	for sub := uint32(0); ; sub++ {
		binary.BigEndian.PutUint32(buf[PublicKeySize+4:], sub)
		k := SHA512Half(buf[:])
		if validScalar(&k) {
			tweak.SetBytes(&k)
			break
		}
	}

	root.Add(&tweak)
	if root.IsZero() {
		panic("keys: secp256k1 account key is zero")
	}
	return SecretKey(root.Bytes())
}
