package stobject

import (
	"encoding/binary"
	"fmt"
	"sort"

	"ripple.com/validator-keys/keys"
)

// Object is a set of field values. The zero value is empty and ready to use.
type Object struct {
	values map[Field][]byte
}

// New returns an empty object.
func New() *Object {
	return &Object{values: make(map[Field][]byte)}
}

func (o *Object) set(f Field, v []byte) {
	if o.values == nil {
		o.values = make(map[Field][]byte)
	}
	o.values[f] = v
}

// SetUint32 stores v in a UInt32 field.
func (o *Object) SetUint32(f Field, v uint32) {
	if f.Type != TypeUInt32 {
		panic("stobject: " + f.Name + " is not a UInt32 field")
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	o.set(f, b[:])
}

// SetBlob stores a copy of v in a variable-length field.
func (o *Object) SetBlob(f Field, v []byte) {
	if f.Type != TypeBlob {
		panic("stobject: " + f.Name + " is not a blob field")
	}
	if len(v) > MaxBlobSize {
		panic(fmt.Sprintf("stobject: %s value of %d bytes exceeds maximum", f.Name, len(v)))
	}
	o.set(f, append([]byte(nil), v...))
}

// Uint32 returns the value of a UInt32 field.
func (o *Object) Uint32(f Field) (uint32, bool) {
	v, ok := o.values[f]
	if !ok || f.Type != TypeUInt32 {
		return 0, false
	}
	return binary.BigEndian.Uint32(v), true
}

// Blob returns a copy of the value of a variable-length field.
func (o *Object) Blob(f Field) ([]byte, bool) {
	v, ok := o.values[f]
	if !ok || f.Type != TypeBlob {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Has reports whether f is present.
func (o *Object) Has(f Field) bool {
	_, ok := o.values[f]
	return ok
}

// Fields returns the present fields in canonical order.
func (o *Object) Fields() []Field {
	out := make([]Field, 0, len(o.values))
	for f := range o.values {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

// Bytes returns the canonical serialization of every field.
func (o *Object) Bytes() []byte {
	return o.serialize(nil)
}

func (o *Object) serialize(skip []Field) []byte {
	var out []byte
next:
	for _, f := range o.Fields() {
		for _, s := range skip {
			if f == s {
				continue next
			}
		}
		out = appendFieldHeader(out, f)
		v := o.values[f]
		if f.Type == TypeBlob {
			out = appendLength(out, len(v))
		}
		out = append(out, v...)
	}
	return out
}

// SigningData returns the bytes a signature in slot covers, not including
// the hash prefix.
func (o *Object) SigningData(slot Field) []byte {
	return o.serialize(excludedFrom(slot))
}

// Sign signs the object under prefix and stores the signature in slot.
func (o *Object) Sign(prefix keys.HashPrefix, signer keys.Signer, slot Field) {
	sig := signer.Sign(prefix, o.SigningData(slot))
	o.SetBlob(slot, sig)
}

// Verify checks the signature stored in slot against pk. A missing
// signature does not verify.
func (o *Object) Verify(prefix keys.HashPrefix, pk keys.PublicKey, slot Field) bool {
	sig, ok := o.values[slot]
	if !ok {
		return false
	}
	return keys.Verify(prefix, pk, o.SigningData(slot), sig)
}

// Parse decodes a canonical serialization. Unknown fields, duplicates, fields
// out of canonical order, and truncated or trailing data are all rejected.
func Parse(b []byte) (*Object, error) {
	r := &reader{b: b}
	o := New()
	var prev Field
	first := true
	for !r.done() {
		t, c, err := r.fieldHeader()
		if err != nil {
			return nil, err
		}
		f, ok := lookup(t, c)
		if !ok {
			return nil, fmt.Errorf("%w: type %d field %d", ErrUnknownField, t, c)
		}
		if !first && !prev.less(f) {
			return nil, fmt.Errorf("%w: %s after %s", ErrFieldOrder, f.Name, prev.Name)
		}
		switch f.Type {
		case TypeUInt32:
			v, err := r.uint32()
			if err != nil {
				return nil, err
			}
			o.SetUint32(f, v)
		case TypeBlob:
			n, err := r.length()
			if err != nil {
				return nil, err
			}
			v, err := r.take(n)
			if err != nil {
				return nil, err
			}
			o.SetBlob(f, v)
		}
		prev, first = f, false
	}
	return o, nil
}
