package keys

// KeyType selects the signature scheme of a key pair.
type KeyType uint8

const (
	KeyTypeInvalid KeyType = iota
	KeyTypeEd25519
	KeyTypeSecp256k1
)

// Sizes, in bytes, of the serialized forms. Both schemes use a 32-byte secret
// and a 33-byte public key (ed25519 keys carry a 0xED marker byte).
const (
	SeedSize      = 16
	SecretKeySize = 32
	PublicKeySize = 33
)

const ed25519Marker = 0xED

// ParseKeyType maps the canonical name to a KeyType. Unknown names yield
// KeyTypeInvalid.
func ParseKeyType(s string) KeyType {
	switch s {
	case "ed25519":
		return KeyTypeEd25519
	case "secp256k1":
		return KeyTypeSecp256k1
	default:
		return KeyTypeInvalid
	}
}

func (t KeyType) String() string {
	switch t {
	case KeyTypeEd25519:
		return "ed25519"
	case KeyTypeSecp256k1:
		return "secp256k1"
	default:
		return "invalid"
	}
}

// Valid reports whether t names a supported scheme.
func (t KeyType) Valid() bool {
	return t == KeyTypeEd25519 || t == KeyTypeSecp256k1
}

// SecretKeySize returns the secret length for t, or 0 for an invalid type.
func (t KeyType) SecretKeySize() int {
	if !t.Valid() {
		return 0
	}
	return SecretKeySize
}

// PublicKeySize returns the public key length for t, or 0 for an invalid type.
func (t KeyType) PublicKeySize() int {
	if !t.Valid() {
		return 0
	}
	return PublicKeySize
}

// All lists the supported key types.
func All() []KeyType {
	return []KeyType{KeyTypeEd25519, KeyTypeSecp256k1}
}
