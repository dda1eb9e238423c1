package stobject

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple.com/validator-keys/keys"
)

func TestFieldHeaders(t *testing.T) {
	cases := []struct {
		f    Field
		want []byte
	}{
		{Sequence, []byte{0x24}},
		{PublicKey, []byte{0x71}},
		{SigningPubKey, []byte{0x73}},
		{Signature, []byte{0x76}},
		{MasterSignature, []byte{0x70, 0x12}},
		{Field{Type: 17, Code: 2}, []byte{0x02, 17}},
		{Field{Type: 17, Code: 20}, []byte{0x00, 17, 20}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, appendFieldHeader(nil, tc.f), tc.f.Name)
	}
}

func TestLengthPrefixBoundaries(t *testing.T) {
	for _, n := range []int{0, 1, 192, 193, 12480, 12481, MaxBlobSize} {
		enc := appendLength(nil, n)
		r := &reader{b: enc}
		got, err := r.length()
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, n, got)
		assert.True(t, r.done())
	}
	assert.Len(t, appendLength(nil, 192), 1)
	assert.Len(t, appendLength(nil, 193), 2)
	assert.Len(t, appendLength(nil, 12481), 3)
	assert.Panics(t, func() { appendLength(nil, MaxBlobSize+1) })
}

func TestCanonicalOrderIndependentOfInsertion(t *testing.T) {
	a := New()
	a.SetBlob(SigningPubKey, []byte{3})
	a.SetUint32(Sequence, 7)
	a.SetBlob(PublicKey, []byte{1})

	b := New()
	b.SetUint32(Sequence, 7)
	b.SetBlob(PublicKey, []byte{1})
	b.SetBlob(SigningPubKey, []byte{3})

	want := []byte{0x24, 0, 0, 0, 7, 0x71, 1, 1, 0x73, 1, 3}
	assert.Equal(t, want, a.Bytes())
	assert.Equal(t, want, b.Bytes())
	assert.Equal(t, []Field{Sequence, PublicKey, SigningPubKey}, a.Fields())
}

func TestParseRoundTrip(t *testing.T) {
	o := New()
	o.SetUint32(Sequence, 0xFFFFFFFF)
	o.SetBlob(PublicKey, bytes.Repeat([]byte{0xED}, 33))
	o.SetBlob(SigningPubKey, bytes.Repeat([]byte{0x02}, 33))
	o.SetBlob(Signature, bytes.Repeat([]byte{0xAA}, 300))
	o.SetBlob(MasterSignature, bytes.Repeat([]byte{0xBB}, 64))

	back, err := Parse(o.Bytes())
	require.NoError(t, err)
	assert.Equal(t, o.Bytes(), back.Bytes())

	seq, ok := back.Uint32(Sequence)
	require.True(t, ok)
	assert.Equal(t, uint32(0xFFFFFFFF), seq)
	sig, ok := back.Blob(Signature)
	require.True(t, ok)
	assert.Len(t, sig, 300)
}

func TestParseRejects(t *testing.T) {
	cases := map[string][]byte{
		"truncated uint32":  {0x24, 0, 0},
		"truncated blob":    {0x71, 5, 1, 2},
		"unknown field":     {0x25, 0, 0, 0, 1},
		"out of order":      {0x71, 1, 1, 0x24, 0, 0, 0, 1},
		"duplicate":         {0x24, 0, 0, 0, 1, 0x24, 0, 0, 0, 2},
		"bad length prefix": {0x71, 0xFF},
		"bad extended code": {0x70, 0x05, 0},
		"missing length":    {0x71},
	}
	for name, b := range cases {
		_, err := Parse(b)
		assert.Error(t, err, name)
	}

	_, err := Parse([]byte{0x25, 0, 0, 0, 1})
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = Parse([]byte{0x71, 1, 1, 0x24, 0, 0, 0, 1})
	assert.ErrorIs(t, err, ErrFieldOrder)
}

func TestSigningDataExclusions(t *testing.T) {
	o := New()
	o.SetUint32(Sequence, 1)
	o.SetBlob(PublicKey, []byte{1})
	body := o.Bytes()

	o.SetBlob(Signature, []byte{9, 9})
	withSig := o.Bytes()
	o.SetBlob(MasterSignature, []byte{8})

	assert.Equal(t, body, o.SigningData(Signature))
	assert.Equal(t, withSig, o.SigningData(MasterSignature))
	assert.Panics(t, func() { o.SigningData(Sequence) })
}

func TestSignAndVerifyBothSlots(t *testing.T) {
	for _, master := range keys.All() {
		for _, eph := range keys.All() {
			mpk, msk := keys.GenerateKeyPair(master, keys.Seed{1})
			epk, esk := keys.GenerateKeyPair(eph, keys.Seed{2})

			o := New()
			o.SetUint32(Sequence, 3)
			o.SetBlob(PublicKey, mpk[:])
			o.SetBlob(SigningPubKey, epk[:])
			o.Sign(keys.HashPrefixManifest, keys.NewSigner(eph, &esk), Signature)
			o.Sign(keys.HashPrefixManifest, keys.NewSigner(master, &msk), MasterSignature)

			parsed, err := Parse(o.Bytes())
			require.NoError(t, err)
			assert.True(t, parsed.Verify(keys.HashPrefixManifest, epk, Signature))
			assert.True(t, parsed.Verify(keys.HashPrefixManifest, mpk, MasterSignature))
			assert.False(t, parsed.Verify(keys.HashPrefixManifest, mpk, Signature))

			// Swapping the ephemeral signature breaks the master signature.
			parsed.SetBlob(Signature, []byte{1, 2, 3})
			assert.False(t, parsed.Verify(keys.HashPrefixManifest, mpk, MasterSignature))
		}
	}
}

func TestVerifyMissingSignature(t *testing.T) {
	pk, _ := keys.GenerateKeyPair(keys.KeyTypeEd25519, keys.Seed{})
	assert.False(t, New().Verify(keys.HashPrefixManifest, pk, Signature))
}
