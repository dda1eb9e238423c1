package validator

import (
	"fmt"
	"math"

	"ripple.com/validator-keys/keys"
	"ripple.com/validator-keys/model"
)

// MaxSequence is the revocation sentinel.
const MaxSequence uint32 = math.MaxUint32

// Identity is a master key pair and its manifest sequence counter.
type Identity struct {
	keyType  keys.KeyType
	secret   *keys.SecretKey
	public   keys.PublicKey
	sequence uint32
	unlock   func()
}

// New creates a fresh identity of type kt from a random seed, at sequence 0.
func New(kt keys.KeyType) (*Identity, error) {
	if !kt.Valid() {
		return nil, model.NewError(model.KindSemantic, model.RuleLoadKeyType,
			fmt.Sprintf("invalid key type: %s", kt))
	}
	seed, err := keys.RandomSeed()
	if err != nil {
		return nil, model.WrapError(model.KindInternal, model.RuleRandom, "Unable to generate random seed", err)
	}
	_, sk := keys.GenerateKeyPair(kt, seed)
	id := newIdentity(kt, sk, 0)
	sk.Wipe()
	return id, nil
}

// FromSecret builds an identity from existing key material. The public key is
// always recomputed from the secret.
func FromSecret(kt keys.KeyType, sk keys.SecretKey, sequence uint32) (*Identity, error) {
	if !kt.Valid() {
		return nil, model.NewError(model.KindSemantic, model.RuleLoadKeyType,
			fmt.Sprintf("invalid key type: %s", kt))
	}
	if !keys.ValidSecretKey(kt, sk) {
		return nil, model.NewError(model.KindSemantic, model.RuleLoadMasterSecret,
			fmt.Sprintf("invalid %s master secret", kt))
	}
	return newIdentity(kt, sk, sequence), nil
}

// newIdentity moves sk into a locked heap copy and zeroes the argument.
func newIdentity(kt keys.KeyType, sk keys.SecretKey, sequence uint32) *Identity {
	secret := new(keys.SecretKey)
	*secret = sk
	sk.Wipe()
	return &Identity{
		keyType:  kt,
		secret:   secret,
		public:   keys.DerivePublicKey(kt, *secret),
		sequence: sequence,
		unlock:   secret.Lock(),
	}
}

func (id *Identity) KeyType() keys.KeyType    { return id.keyType }
func (id *Identity) PublicKey() keys.PublicKey { return id.public }
func (id *Identity) Sequence() uint32          { return id.sequence }

// Revoked reports whether the sequence has reached the sentinel.
func (id *Identity) Revoked() bool { return id.sequence == MaxSequence }

// Advance moves the sequence forward by one.
func (id *Identity) Advance() error {
	if id.Revoked() {
		return model.NewError(model.KindTerminal, model.RuleSeqRevoked,
			"Sequence is already at maximum value. Master keys have been revoked.")
	}
	id.sequence++
	return nil
}

// AdvanceTo sets the sequence to target, which must exceed the current one.
func (id *Identity) AdvanceTo(target uint32) error {
	if target <= id.sequence {
		return model.NewError(model.KindSemantic, model.RuleSeqNotIncreasing,
			fmt.Sprintf("Sequence should exceed current sequence (%d).", id.sequence))
	}
	id.sequence = target
	return nil
}

// Revoke moves the sequence to MaxSequence.
func (id *Identity) Revoke() error {
	return id.AdvanceTo(MaxSequence)
}

// Sign signs message with the master secret. Identity is a keys.Signer, so
// the secret never has to leave it.
func (id *Identity) Sign(prefix keys.HashPrefix, message []byte) []byte {
	if id.secret == nil {
		panic("validator: sign with wiped identity")
	}
	return keys.Sign(prefix, id.keyType, *id.secret, message)
}

// VerifyDerivation reports whether the public key matches the secret.
func (id *Identity) VerifyDerivation() bool {
	return id.secret != nil && keys.DerivePublicKey(id.keyType, *id.secret) == id.public
}

// Equal compares key type, sequence and public key.
func (id *Identity) Equal(o *Identity) bool {
	if id == nil || o == nil {
		return id == o
	}
	return id.keyType == o.keyType && id.sequence == o.sequence && id.public == o.public
}

// Wipe zeroes the master secret. The identity cannot sign afterwards.
func (id *Identity) Wipe() {
	if id.secret == nil {
		return
	}
	id.secret.Wipe()
	id.unlock()
	id.secret = nil
}

func (id *Identity) keyFile() model.KeyFile {
	return model.KeyFile{
		KeyType:             id.keyType.String(),
		MasterSecret:        keys.EncodeSecretKey(*id.secret),
		ValidationPublicKey: id.public.String(),
		Sequence:            id.sequence,
	}
}
