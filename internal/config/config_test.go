package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple.com/validator-keys/model"
)

func TestDefault(t *testing.T) {
	t.Setenv("HOME", "/home/op")
	cfg := Default()
	assert.Equal(t, "/home/op/.ripple/validator-keys.json", cfg.KeyFile)
	assert.Equal(t, "", cfg.ArchiveDir)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, lvl)
}

func TestLoadMissingDefaultFileIsFine(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigPath, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindStructural))
}

func TestLoadFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "tool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key_file: ~/keys/v.json\narchive_dir: /var/lib/manifests\narchive_mirrors:\n  - ~/mirror\n  - /mnt/usb\nlog_level: debug\n"), 0o600))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "keys", "v.json"), cfg.KeyFile)
	assert.Equal(t, "/var/lib/manifests", cfg.ArchiveDir)
	assert.Equal(t, []string{filepath.Join(home, "mirror"), "/mnt/usb"}, cfg.ArchiveMirrors)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfigPath, "")
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".ripple"), 0o700))
	require.NoError(t, os.WriteFile(DefaultPath(), []byte("archive_dir: ~/manifests\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "manifests"), cfg.ArchiveDir)
	assert.Equal(t, filepath.Join(home, ".ripple", "validator-keys.json"), cfg.KeyFile)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("keyfile: x\n"))
	assert.Error(t, err)

	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, File{}, f)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key_file: [unterminated\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, "Unable to parse config file: "+path, err.Error())
}

func TestLevelInvalid(t *testing.T) {
	_, err := Config{LogLevel: "chatty"}.Level()
	assert.Equal(t, model.RuleConfig, model.RuleID(err))
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/h")
	assert.Equal(t, "/h", ExpandHome("~"))
	assert.Equal(t, "/h/x", ExpandHome("~/x"))
	assert.Equal(t, "~x", ExpandHome("~x"))
	assert.Equal(t, "/abs", ExpandHome("/abs"))
}
