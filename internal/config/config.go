// Package config resolves tool settings from defaults, an optional YAML file
// and command-line overrides, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"ripple.com/validator-keys/model"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "VALIDATOR_KEYS_CONFIG"

const defaultLogLevel = "warn"

// Config is the resolved tool configuration.
type Config struct {
	KeyFile    string
	ArchiveDir string
	// ArchiveMirrors receive a copy of everything written to ArchiveDir.
	ArchiveMirrors []string
	LogLevel       string
}

// File mirrors the YAML document. Empty fields leave the default in place.
type File struct {
	KeyFile        string   `yaml:"key_file"`
	ArchiveDir     string   `yaml:"archive_dir"`
	ArchiveMirrors []string `yaml:"archive_mirrors"`
	LogLevel       string   `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		KeyFile:  filepath.Join(homeDir(), ".ripple", "validator-keys.json"),
		LogLevel: defaultLogLevel,
	}
}

// DefaultPath returns the config file used when none is named explicitly.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".ripple", "validator-keys-tool.yaml")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// Load resolves the configuration. explicit, when set, names a file that
// must exist. Otherwise $VALIDATOR_KEYS_CONFIG is used, and failing that the
// default path, which may be absent.
func Load(explicit string) (Config, error) {
	cfg := Default()

	path, required := explicit, true
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path == "" {
		path, required = DefaultPath(), false
	}

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, model.WrapError(model.KindStructural, model.RuleConfig,
			"Unable to read config file: "+path, err)
	}

	parsed, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, model.WrapError(model.KindStructural, model.RuleConfig,
			"Unable to parse config file: "+path, err)
	}
	Merge(&cfg, parsed)
	return cfg, nil
}

// Parse decodes a YAML config document. Unknown keys are rejected.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, err
	}
	return f, nil
}

// Merge copies the non-empty fields of src into dst.
func Merge(dst *Config, src File) {
	if src.KeyFile != "" {
		dst.KeyFile = ExpandHome(src.KeyFile)
	}
	if src.ArchiveDir != "" {
		dst.ArchiveDir = ExpandHome(src.ArchiveDir)
	}
	if src.ArchiveMirrors != nil {
		dst.ArchiveMirrors = make([]string, 0, len(src.ArchiveMirrors))
		for _, m := range src.ArchiveMirrors {
			dst.ArchiveMirrors = append(dst.ArchiveMirrors, ExpandHome(m))
		}
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

// Level parses LogLevel.
func (c Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, model.WrapError(model.KindStructural, model.RuleConfig,
			fmt.Sprintf("Invalid log level: %s", c.LogLevel), err)
	}
	return lvl, nil
}
