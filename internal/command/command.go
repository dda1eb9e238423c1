// Package command implements the validator-keys commands on top of the key
// store and the manifest builder.
package command

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"ripple.com/validator-keys/codec"
	"ripple.com/validator-keys/keys"
	"ripple.com/validator-keys/manifest"
	"ripple.com/validator-keys/model"
	"ripple.com/validator-keys/storage"
	"ripple.com/validator-keys/validator"
)

// Command names.
const (
	CreateMasterKeys  = "create_master_keys"
	CreateSigningKeys = "create_signing_keys"
	RevokeMasterKeys  = "revoke_master_keys"
	VerifyManifest    = "verify_manifest"
)

// Names lists the commands in the order they are documented.
var Names = []string{CreateMasterKeys, CreateSigningKeys, RevokeMasterKeys, VerifyManifest}

const manifestLineWidth = 72

// Runner executes commands. Out receives the operator-facing output; ErrOut
// receives notices that must not disturb it. Archive, when set, records
// every issued manifest.
type Runner struct {
	Store   *validator.Store
	Archive storage.CAS
	Logger  *logrus.Logger
	Out     io.Writer
	ErrOut  io.Writer
}

func (r *Runner) log() *logrus.Logger {
	if r.Logger == nil {
		return logrus.StandardLogger()
	}
	return r.Logger
}

func (r *Runner) store() *validator.Store {
	if r.Store == nil {
		return validator.NewStore(r.Logger)
	}
	return r.Store
}

// Request is one parsed invocation.
type Request struct {
	Args    []string
	KeyFile string
	// Manifest is the input of verify_manifest.
	Manifest io.Reader
}

// Run dispatches a single command.
func (r *Runner) Run(req Request) error {
	if len(req.Args) != 1 {
		return model.NewError(model.KindCLI, model.RuleCLIArgCount, "Syntax error: Wrong number of parameters")
	}
	switch req.Args[0] {
	case CreateMasterKeys:
		return r.CreateMasterKeys(req.KeyFile)
	case CreateSigningKeys:
		return r.CreateSigningKeys(req.KeyFile)
	case RevokeMasterKeys:
		return r.RevokeMasterKeys(req.KeyFile)
	case VerifyManifest:
		return r.VerifyManifest(req.Manifest)
	default:
		return model.NewError(model.KindCLI, model.RuleCLIUnknownCommand, "Unknown command")
	}
}

// CreateMasterKeys writes a fresh ed25519 identity to path. An existing file
// is never touched.
func (r *Runner) CreateMasterKeys(path string) error {
	if validator.Exists(path) {
		return model.NewError(model.KindFilesystem, model.RuleSaveExists,
			"Refusing to overwrite existing key file: "+path)
	}
	id, err := validator.New(keys.KeyTypeEd25519)
	if err != nil {
		return err
	}
	defer id.Wipe()

	if err := r.store().Create(id, path); err != nil {
		return err
	}
	r.log().WithFields(logrus.Fields{"path": path, "key_type": id.KeyType().String()}).
		Info("created master keys")
	_, err = fmt.Fprintf(r.Out, "Master validator keys stored in %s\n", path)
	return err
}

// CreateSigningKeys issues a manifest for the next sequence.
func (r *Runner) CreateSigningKeys(path string) error {
	return r.SignManifest(path, nil)
}

// RevokeMasterKeys issues the final manifest, at the maximum sequence.
func (r *Runner) RevokeMasterKeys(path string) error {
	seq := validator.MaxSequence
	return r.SignManifest(path, &seq)
}

// SignManifest loads the identity at path, advances its sequence (to
// *sequence when given, else by one), issues a manifest with a fresh
// secp256k1 signing key and saves the identity. Nothing is printed until the
// new sequence is on disk.
func (r *Runner) SignManifest(path string, sequence *uint32) error {
	store := r.store()
	id, err := store.Load(path)
	if err != nil {
		return err
	}
	defer id.Wipe()

	if sequence != nil {
		err = id.AdvanceTo(*sequence)
	} else {
		err = id.Advance()
	}
	if err != nil {
		return err
	}

	ek, err := manifest.Create(id, keys.KeyTypeSecp256k1)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if id.Revoked() {
		buf.WriteString("WARNING: This will revoke your master keys!\n\n")
	}
	buf.WriteString(FormatSigningKeys(ek, id.Sequence()))

	if err := store.Save(id, path); err != nil {
		return err
	}
	r.log().WithFields(logrus.Fields{
		"path":     path,
		"sequence": id.Sequence(),
	}).Info("issued manifest")

	if _, err := r.Out.Write(buf.Bytes()); err != nil {
		return err
	}
	return r.archive(ek.Raw)
}

func (r *Runner) archive(raw []byte) error {
	if r.Archive == nil {
		return nil
	}
	id, err := r.Archive.Put(raw)
	if err != nil {
		return model.WrapError(model.KindFilesystem, model.RuleArchive, "Unable to archive manifest", err)
	}
	r.log().WithField("cid", id.String()).Debug("archived manifest")
	if r.ErrOut != nil {
		fmt.Fprintf(r.ErrOut, "Manifest archived: %s\n", id)
	}
	return nil
}

// FormatSigningKeys renders the rippled.cfg stanzas for ek.
func FormatSigningKeys(ek *manifest.EphemeralKeys, sequence uint32) string {
	var b strings.Builder
	b.WriteString("Update rippled.cfg file with these values:\n\n")
	b.WriteString("[validation_seed]\n")
	b.WriteString(ek.Seed.String() + "\n")
	fmt.Fprintf(&b, "# validation_public_key: %s\n", ek.PublicKey)
	fmt.Fprintf(&b, "# sequence number: %d\n\n", sequence)
	b.WriteString("[validation_manifest]\n")
	for _, line := range codec.Wrap(ek.Manifest, manifestLineWidth) {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// VerifyManifest reads a base64 manifest from in and checks both signatures.
func (r *Runner) VerifyManifest(in io.Reader) error {
	if in == nil {
		return model.NewError(model.KindCLI, model.RuleCLIArgCount, "No manifest given")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return model.WrapError(model.KindStructural, model.RuleManifestDecode, "Unable to read manifest", err)
	}
	m, err := manifest.Decode(string(data))
	if err != nil {
		return err
	}
	if err := m.Verify(); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("Manifest signatures are valid\n\n")
	fmt.Fprintf(&b, "master public key: %s\n", m.MasterKey)
	fmt.Fprintf(&b, "signing public key: %s\n", m.SigningKey)
	fmt.Fprintf(&b, "sequence number: %d\n", m.Sequence)
	if m.Revoked() {
		b.WriteString("\nThis manifest revokes the master key.\n")
	}
	_, err = io.WriteString(r.Out, b.String())
	return err
}
