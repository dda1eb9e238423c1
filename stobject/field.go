package stobject

// SerializedType is the type code of a field's value encoding.
type SerializedType uint8

const (
	TypeUInt32 SerializedType = 2
	TypeBlob   SerializedType = 7
)

// Field identifies one registered field.
type Field struct {
	Name string
	Type SerializedType
	Code uint8
}

var (
	Sequence        = Field{Name: "Sequence", Type: TypeUInt32, Code: 4}
	PublicKey       = Field{Name: "PublicKey", Type: TypeBlob, Code: 1}
	SigningPubKey   = Field{Name: "SigningPubKey", Type: TypeBlob, Code: 3}
	Signature       = Field{Name: "Signature", Type: TypeBlob, Code: 6}
	MasterSignature = Field{Name: "MasterSignature", Type: TypeBlob, Code: 18}
)

var registry = []Field{Sequence, PublicKey, SigningPubKey, Signature, MasterSignature}

func lookup(t SerializedType, code uint8) (Field, bool) {
	for _, f := range registry {
		if f.Type == t && f.Code == code {
			return f, true
		}
	}
	return Field{}, false
}

// less orders fields canonically.
func (f Field) less(o Field) bool {
	if f.Type != o.Type {
		return f.Type < o.Type
	}
	return f.Code < o.Code
}

// IsSignature reports whether f is one of the signature slots.
func (f Field) IsSignature() bool {
	return f == Signature || f == MasterSignature
}

// excludedFrom lists the fields omitted from the signed bytes when signing
// into slot. The default slot omits both signatures; the master slot omits
// only itself and so covers the default signature.
func excludedFrom(slot Field) []Field {
	switch slot {
	case Signature:
		return []Field{Signature, MasterSignature}
	case MasterSignature:
		return []Field{MasterSignature}
	default:
		panic("stobject: " + slot.Name + " is not a signature slot")
	}
}

func (f Field) String() string { return f.Name }
