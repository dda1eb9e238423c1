package manifest

import (
	"ripple.com/validator-keys/codec"
	"ripple.com/validator-keys/keys"
	"ripple.com/validator-keys/model"
	"ripple.com/validator-keys/stobject"
	"ripple.com/validator-keys/validator"
)

// EphemeralKeys is what a node needs to sign on behalf of a master identity.
// It is returned once and never persisted.
type EphemeralKeys struct {
	// Seed reconstructs the ephemeral secret together with the key type.
	Seed keys.Seed
	// Manifest is the base64 encoded binary manifest.
	Manifest  string
	PublicKey keys.PublicKey
	// Raw is the binary manifest.
	Raw []byte
}

// Create issues a manifest for issuer's current sequence, delegating to a
// fresh ephemeral key of type ephType. The issuer is not modified.
func Create(issuer *validator.Identity, ephType keys.KeyType) (*EphemeralKeys, error) {
	seed, err := keys.RandomSeed()
	if err != nil {
		return nil, model.WrapError(model.KindInternal, model.RuleRandom, "Unable to generate random seed", err)
	}
	return CreateFromSeed(issuer, ephType, seed), nil
}

// CreateFromSeed is Create with a caller-supplied seed.
//
// The ephemeral secret is the one a node reconstructs from the seed, i.e.
// keys.GenerateSecretKey(ephType, seed).
func CreateFromSeed(issuer *validator.Identity, ephType keys.KeyType, seed keys.Seed) *EphemeralKeys {
	esk := new(keys.SecretKey)
	*esk = keys.GenerateSecretKey(ephType, seed)
	unlock := esk.Lock()
	defer func() {
		esk.Wipe()
		unlock()
	}()
	epk := keys.DerivePublicKey(ephType, *esk)

	st := stobject.New()
	st.SetUint32(stobject.Sequence, issuer.Sequence())
	mpk := issuer.PublicKey()
	st.SetBlob(stobject.PublicKey, mpk[:])
	st.SetBlob(stobject.SigningPubKey, epk[:])

	st.Sign(keys.HashPrefixManifest, keys.NewSigner(ephType, esk), stobject.Signature)
	st.Sign(keys.HashPrefixManifest, issuer, stobject.MasterSignature)

	raw := st.Bytes()
	return &EphemeralKeys{
		Seed:      seed,
		Manifest:  codec.EncodeBase64(raw),
		PublicKey: epk,
		Raw:       raw,
	}
}

// Manifest is a decoded manifest.
type Manifest struct {
	Sequence        uint32
	MasterKey       keys.PublicKey
	SigningKey      keys.PublicKey
	Signature       []byte
	MasterSignature []byte
	Raw             []byte

	obj *stobject.Object
}

// Decode parses a base64 manifest. Whitespace, including line wrapping, is
// ignored. All five fields must be present and both keys well formed;
// signatures are not checked, see Verify.
func Decode(s string) (*Manifest, error) {
	raw, err := codec.DecodeBase64(s)
	if err != nil {
		return nil, decodeError(err)
	}
	return Parse(raw)
}

// Parse decodes a binary manifest.
func Parse(raw []byte) (*Manifest, error) {
	obj, err := stobject.Parse(raw)
	if err != nil {
		return nil, decodeError(err)
	}
	m := &Manifest{Raw: append([]byte(nil), raw...), obj: obj}

	var ok bool
	if m.Sequence, ok = obj.Uint32(stobject.Sequence); !ok {
		return nil, decodeError(nil)
	}
	if m.MasterKey, ok = publicKey(obj, stobject.PublicKey); !ok {
		return nil, decodeError(nil)
	}
	if m.SigningKey, ok = publicKey(obj, stobject.SigningPubKey); !ok {
		return nil, decodeError(nil)
	}
	if m.Signature, ok = obj.Blob(stobject.Signature); !ok {
		return nil, decodeError(nil)
	}
	if m.MasterSignature, ok = obj.Blob(stobject.MasterSignature); !ok {
		return nil, decodeError(nil)
	}
	return m, nil
}

func publicKey(obj *stobject.Object, f stobject.Field) (keys.PublicKey, bool) {
	b, ok := obj.Blob(f)
	if !ok {
		return keys.PublicKey{}, false
	}
	return keys.PublicKeyFromBytes(b)
}

func decodeError(cause error) error {
	return model.WrapError(model.KindCrypto, model.RuleManifestDecode, "Unable to decode manifest", cause)
}

// Verify checks the ephemeral signature under SigningKey and the master
// signature under MasterKey.
func (m *Manifest) Verify() error {
	if !m.obj.Verify(keys.HashPrefixManifest, m.SigningKey, stobject.Signature) {
		return model.NewError(model.KindCrypto, model.RuleManifestSignature, "Manifest signature is invalid")
	}
	if !m.obj.Verify(keys.HashPrefixManifest, m.MasterKey, stobject.MasterSignature) {
		return model.NewError(model.KindCrypto, model.RuleManifestMaster, "Master signature is invalid")
	}
	return nil
}

// Revoked reports whether the manifest revokes its master key.
func (m *Manifest) Revoked() bool {
	return m.Sequence == validator.MaxSequence
}
