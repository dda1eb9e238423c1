// Package selftest runs the built-in checks behind --unittest. They exercise
// the real store, manifest builder and dispatcher in a scratch directory.
package selftest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"ripple.com/validator-keys/internal/command"
	"ripple.com/validator-keys/keys"
	"ripple.com/validator-keys/manifest"
	"ripple.com/validator-keys/validator"
)

type env struct {
	dir   string
	store *validator.Store
	n     int
}

// keyFile returns a fresh path inside the scratch directory.
func (e *env) keyFile() string {
	e.n++
	return filepath.Join(e.dir, fmt.Sprintf("case%d", e.n), "validator_keys.json")
}

func (e *env) runner(out io.Writer) *command.Runner {
	return &command.Runner{Store: e.store, Logger: e.store.Logger, Out: out, ErrOut: io.Discard}
}

type check struct {
	name string
	fn   func(*env) error
}

var checks = []check{
	{"identity round trip", checkRoundTrip},
	{"manifest signatures", checkManifests},
	{"signing advances sequence", checkAdvance},
	{"revocation is terminal", checkRevocation},
	{"master keys never overwritten", checkOverwrite},
	{"key file validation", checkLoadErrors},
}

// Run executes every check, printing one PASS or FAIL line per check, and
// reports whether all passed.
func Run(out io.Writer) bool {
	dir, err := os.MkdirTemp("", "validator-keys-selftest-")
	if err != nil {
		fmt.Fprintf(out, "FAIL setup: %v\n", err)
		return false
	}
	defer os.RemoveAll(dir)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	e := &env{dir: dir, store: validator.NewStore(logger)}

	ok := true
	for _, c := range checks {
		if err := c.fn(e); err != nil {
			ok = false
			fmt.Fprintf(out, "FAIL %s: %v\n", c.name, err)
			continue
		}
		fmt.Fprintf(out, "PASS %s\n", c.name)
	}
	return ok
}

func checkRoundTrip(e *env) error {
	for _, kt := range keys.All() {
		id, err := validator.New(kt)
		if err != nil {
			return err
		}
		path := e.keyFile()
		if err := e.store.Save(id, path); err != nil {
			return err
		}
		loaded, err := e.store.Load(path)
		if err != nil {
			return err
		}
		if !id.Equal(loaded) {
			return fmt.Errorf("%s identity changed across save and load", kt)
		}
		if !loaded.VerifyDerivation() {
			return fmt.Errorf("%s public key does not match secret", kt)
		}
	}
	return nil
}

func checkManifests(e *env) error {
	for _, master := range keys.All() {
		id, err := validator.New(master)
		if err != nil {
			return err
		}
		for _, eph := range keys.All() {
			ek, err := manifest.Create(id, eph)
			if err != nil {
				return err
			}
			spk := keys.DerivePublicKey(eph, keys.GenerateSecretKey(eph, ek.Seed))
			if spk != ek.PublicKey {
				return fmt.Errorf("%s/%s: seed does not reproduce signing key", master, eph)
			}
			m, err := manifest.Decode(ek.Manifest)
			if err != nil {
				return err
			}
			if err := m.Verify(); err != nil {
				return fmt.Errorf("%s/%s: %w", master, eph, err)
			}
			if m.MasterKey != id.PublicKey() {
				return fmt.Errorf("%s/%s: wrong master key in manifest", master, eph)
			}
		}
	}
	return nil
}

func checkAdvance(e *env) error {
	path := e.keyFile()
	r := e.runner(io.Discard)
	if err := r.CreateMasterKeys(path); err != nil {
		return err
	}
	for want := uint32(1); want <= 2; want++ {
		if err := r.CreateSigningKeys(path); err != nil {
			return err
		}
		id, err := e.store.Load(path)
		if err != nil {
			return err
		}
		if id.Sequence() != want {
			return fmt.Errorf("sequence %d, want %d", id.Sequence(), want)
		}
	}
	return nil
}

func checkRevocation(e *env) error {
	path := e.keyFile()
	r := e.runner(io.Discard)
	if err := r.CreateMasterKeys(path); err != nil {
		return err
	}
	if err := r.RevokeMasterKeys(path); err != nil {
		return err
	}
	var out bytes.Buffer
	r.Out = &out
	err := r.CreateSigningKeys(path)
	if err == nil {
		return errors.New("signing keys issued after revocation")
	}
	if out.Len() != 0 {
		return errors.New("output printed for refused command")
	}
	id, err := e.store.Load(path)
	if err != nil {
		return err
	}
	if !id.Revoked() {
		return fmt.Errorf("sequence %d after revocation", id.Sequence())
	}
	return nil
}

func checkOverwrite(e *env) error {
	path := e.keyFile()
	r := e.runner(io.Discard)
	if err := r.CreateMasterKeys(path); err != nil {
		return err
	}
	before, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := r.CreateMasterKeys(path); err == nil {
		return errors.New("existing key file overwritten")
	}
	after, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !bytes.Equal(before, after) {
		return errors.New("existing key file modified")
	}
	return nil
}

func checkLoadErrors(e *env) error {
	path := e.keyFile()
	if _, err := e.store.Load(path); err == nil || err.Error() != "Failed to open key file: "+path {
		return fmt.Errorf("missing file: got %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	sk := keys.GenerateSecretKey(keys.KeyTypeEd25519, keys.Seed{1})
	secret := keys.EncodeSecretKey(sk)
	sk.Wipe()
	cases := []struct{ contents, want string }{
		{"{{}", "Unable to parse json key file: " + path},
		{`{"dummy":"field"}`, "Key file '" + path + "' is missing \"key_type\" field"},
		{`{"key_type":"dummy keytype","master_secret":"dummy secret","sequence":"dummy sequence"}`,
			"Key file '" + path + "' contains invalid key type: \"dummy keytype\"\n"},
		{`{"key_type":"ed25519","master_secret":"dummy secret","sequence":"dummy sequence"}`,
			"Key file '" + path + "' contains invalid master secret: \"dummy secret\"\n"},
		{`{"key_type":"ed25519","master_secret":"` + secret + `","sequence":"dummy sequence"}`,
			"Key file '" + path + "' contains invalid sequence: \"dummy sequence\"\n"},
	}
	for _, c := range cases {
		if err := os.WriteFile(path, []byte(c.contents), 0o600); err != nil {
			return err
		}
		_, err := e.store.Load(path)
		if err == nil || err.Error() != c.want {
			return fmt.Errorf("%q: got %v, want %q", c.contents, err, c.want)
		}
	}
	return nil
}
