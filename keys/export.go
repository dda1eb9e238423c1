package keys

import "ripple.com/validator-keys/codec"

// String returns the node-public base58check form of pk.
func (pk PublicKey) String() string {
	return codec.EncodeBase58Token(codec.TokenNodePublic, pk[:])
}

// String returns the family-seed base58check form of s. This is the value an
// operator pastes into [validation_seed].
func (s Seed) String() string {
	return codec.EncodeBase58Token(codec.TokenFamilySeed, s[:])
}

// EncodeSecretKey returns the node-private base58check form of sk. It is the
// only text encoding of a secret the tool ever produces.
func EncodeSecretKey(sk SecretKey) string {
	return codec.EncodeBase58Token(codec.TokenNodePrivate, sk[:])
}

// ParseSecretKey decodes a node-private token.
func ParseSecretKey(s string) (SecretKey, bool) {
	raw, ok := codec.DecodeBase58Token(s, codec.TokenNodePrivate)
	if !ok || len(raw) != SecretKeySize {
		return SecretKey{}, false
	}
	return SecretKey(raw), true
}

// ParsePublicKey decodes a node-public token and checks the marker byte.
func ParsePublicKey(s string) (PublicKey, bool) {
	raw, ok := codec.DecodeBase58Token(s, codec.TokenNodePublic)
	if !ok {
		return PublicKey{}, false
	}
	return PublicKeyFromBytes(raw)
}

// ParseSeed decodes a family-seed token.
func ParseSeed(s string) (Seed, bool) {
	raw, ok := codec.DecodeBase58Token(s, codec.TokenFamilySeed)
	if !ok || len(raw) != SeedSize {
		return Seed{}, false
	}
	return Seed(raw), true
}

// PublicKeyFromBytes validates the length and marker byte of b.
func PublicKeyFromBytes(b []byte) (PublicKey, bool) {
	if len(b) != PublicKeySize {
		return PublicKey{}, false
	}
	pk := PublicKey(b)
	if !pk.Type().Valid() {
		return PublicKey{}, false
	}
	return pk, true
}
