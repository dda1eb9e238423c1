package model

import "strconv"

// Key file field names.
const (
	FieldKeyType             = "key_type"
	FieldMasterSecret        = "master_secret"
	FieldValidationPublicKey = "validation_public_key"
	FieldSequence            = "sequence"
)

// RequiredKeyFileFields lists the fields a key file must carry, in the order
// they are checked.
var RequiredKeyFileFields = []string{FieldKeyType, FieldMasterSecret, FieldSequence}

// KeyFile is the persisted form of a validator identity. ValidationPublicKey
// is written for the operator and ignored when loading.
type KeyFile struct {
	KeyType             string `json:"key_type"`
	MasterSecret        string `json:"master_secret"`
	ValidationPublicKey string `json:"validation_public_key"`
	Sequence            uint32 `json:"sequence"`
}

// Styled renders the key file as a styled JSON object.
func (k KeyFile) Styled() string {
	return StyledObject([]Member{
		{Key: FieldKeyType, Raw: Quote(k.KeyType)},
		{Key: FieldMasterSecret, Raw: Quote(k.MasterSecret)},
		{Key: FieldSequence, Raw: strconv.FormatUint(uint64(k.Sequence), 10)},
		{Key: FieldValidationPublicKey, Raw: Quote(k.ValidationPublicKey)},
	})
}
