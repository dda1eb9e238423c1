package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"ripple.com/validator-keys/keys"
	"ripple.com/validator-keys/model"
)

// Store reads and writes key files. It does not lock files; callers
// serialize concurrent use of one path.
type Store struct {
	Logger *logrus.Logger
}

// NewStore returns a Store logging to logger, or to a default logger if nil.
func NewStore(logger *logrus.Logger) *Store {
	return &Store{Logger: logger}
}

func (s *Store) log() *logrus.Logger {
	if s == nil || s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}

// Load reads and validates the key file at path.
func (s *Store) Load(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapError(model.KindStructural, model.RuleLoadOpen,
			"Failed to open key file: "+path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return nil, model.WrapError(model.KindStructural, model.RuleLoadParse,
			"Unable to parse json key file: "+path, err)
	}

	for _, field := range model.RequiredKeyFileFields {
		if _, ok := doc[field]; !ok {
			return nil, model.NewError(model.KindStructural, model.RuleLoadMissingField,
				fmt.Sprintf("Key file '%s' is missing \"%s\" field", path, field))
		}
	}

	kt := keys.KeyTypeInvalid
	if name, ok := jsonString(doc[model.FieldKeyType]); ok {
		kt = keys.ParseKeyType(name)
	}
	if !kt.Valid() {
		return nil, invalidField(path, "key type", model.RuleLoadKeyType, doc[model.FieldKeyType])
	}

	var sk keys.SecretKey
	secretOK := false
	if enc, ok := jsonString(doc[model.FieldMasterSecret]); ok {
		sk, secretOK = keys.ParseSecretKey(enc)
		secretOK = secretOK && keys.ValidSecretKey(kt, sk)
	}
	if !secretOK {
		return nil, invalidField(path, "master secret", model.RuleLoadMasterSecret, doc[model.FieldMasterSecret])
	}

	seq, ok := jsonSequence(doc[model.FieldSequence])
	if !ok {
		sk.Wipe()
		return nil, invalidField(path, "sequence", model.RuleLoadSequence, doc[model.FieldSequence])
	}

	id := newIdentity(kt, sk, seq)
	sk.Wipe()
	s.log().WithFields(logrus.Fields{
		"path":     path,
		"key_type": kt.String(),
		"sequence": seq,
	}).Debug("loaded key file")
	return id, nil
}

func invalidField(path, what, rule string, raw json.RawMessage) error {
	return model.NewError(model.KindSemantic, rule,
		fmt.Sprintf("Key file '%s' contains invalid %s: %s", path, what, model.Styled(raw)))
}

func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// jsonSequence accepts any JSON number with an integral value that fits in
// 32 bits, so 5, 5.0 and 5e0 are all sequence 5.
func jsonSequence(raw json.RawMessage) (uint32, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if u, err := strconv.ParseUint(n.String(), 10, 32); err == nil {
		return uint32(u), true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < 0 || f > float64(MaxSequence) {
		return 0, false
	}
	return uint32(f), true
}

// Save replaces the key file at path with id. The new contents are written to
// a temporary file in the same directory and renamed into place, so a crash
// leaves either the old or the new file.
func (s *Store) Save(id *Identity, path string) error {
	if id == nil || id.secret == nil {
		return model.NewError(model.KindInternal, model.RuleSaveWrite, "Cannot write key file: "+path)
	}
	if _, err := ensureParent(path); err != nil {
		return err
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return openError(path, fmt.Errorf("%s is a directory", path))
	}
	target, err := linkTarget(path)
	if err != nil {
		return openError(path, err)
	}
	dir := filepath.Dir(target)

	tmp, err := os.CreateTemp(dir, ".validator-keys-*.tmp")
	if err != nil {
		return openError(path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := writeAll(tmp, id.keyFile().Styled()); err != nil {
		return model.WrapError(model.KindFilesystem, model.RuleSaveWrite, "Cannot write key file: "+path, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return openError(path, err)
	}
	committed = true
	syncDir(dir)

	s.log().WithFields(logrus.Fields{
		"path":     path,
		"target":   target,
		"key_type": id.keyType.String(),
		"sequence": id.sequence,
	}).Debug("saved key file")
	return nil
}

// Create writes id to path, failing if anything already exists there.
func (s *Store) Create(id *Identity, path string) error {
	if id == nil || id.secret == nil {
		return model.NewError(model.KindInternal, model.RuleSaveWrite, "Cannot write key file: "+path)
	}
	if _, err := ensureParent(path); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return model.WrapError(model.KindFilesystem, model.RuleSaveExists,
				"Refusing to overwrite existing key file: "+path, err)
		}
		return openError(path, err)
	}
	if err := writeAll(file, id.keyFile().Styled()); err != nil {
		_ = os.Remove(path)
		return model.WrapError(model.KindFilesystem, model.RuleSaveWrite, "Cannot write key file: "+path, err)
	}

	s.log().WithFields(logrus.Fields{
		"path":     path,
		"key_type": id.keyType.String(),
	}).Debug("created key file")
	return nil
}

// Exists reports whether something is present at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func ensureParent(path string) (string, error) {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o700); err != nil {
		return "", model.WrapError(model.KindFilesystem, model.RuleSaveMkdir,
			"Cannot create directory: "+parent, err)
	}
	return parent, nil
}

// linkTarget returns the file a save to path must replace. A symlinked key
// file is written through, so the link survives and its target is updated.
// A dangling link resolves to the path it names.
func linkTarget(path string) (string, error) {
	fi, err := os.Lstat(path)
	if err != nil || fi.Mode()&os.ModeSymlink == 0 {
		return path, nil
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	dest, err := os.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(path), dest)
	}
	return dest, nil
}

func openError(path string, cause error) error {
	return model.WrapError(model.KindFilesystem, model.RuleSaveOpen, "Cannot open key file: "+path, cause)
}

// writeAll writes s, syncs and closes f. f is closed on every path.
func writeAll(f *os.File, s string) error {
	if _, err := f.WriteString(s); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
