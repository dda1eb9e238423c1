package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VALIDATOR_KEYS_CONFIG", "")
	return home
}

func TestHelpAndNoCommand(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{nil, {"--help"}, {"-h"}} {
		code, out, errOut := runCLI(t, "", args...)
		assert.Equal(t, 0, code)
		assert.Empty(t, out)
		assert.Contains(t, errOut, "ripple_validator_keys [options] <command>")
		assert.Contains(t, errOut, "--keyfile file")
		assert.Contains(t, errOut, "create_signing_keys")
	}
}

func TestBadSyntax(t *testing.T) {
	isolate(t)
	code, _, errOut := runCLI(t, "", "--no-such-flag")
	assert.Equal(t, 1, code)
	assert.Equal(t, "ripple_validator_keys: Incorrect command line syntax.\nUse '--help' for a list of options.\n", errOut)

	code, _, _ = runCLI(t, "", "--keyfile")
	assert.Equal(t, 1, code)
}

func TestDefaultKeyFile(t *testing.T) {
	home := isolate(t)
	code, out, errOut := runCLI(t, "", "create_master_keys")
	require.Equal(t, 0, code, errOut)
	want := filepath.Join(home, ".ripple", "validator-keys.json")
	assert.Equal(t, "Master validator keys stored in "+want+"\n", out)
	_, err := os.Stat(want)
	assert.NoError(t, err)
}

func TestLifecycle(t *testing.T) {
	isolate(t)
	keyFile := filepath.Join(t.TempDir(), "validator_keys.json")

	code, _, errOut := runCLI(t, "", "--keyfile", keyFile, "create_master_keys")
	require.Equal(t, 0, code, errOut)

	code, out, errOut := runCLI(t, "", "--keyfile", keyFile, "create_master_keys")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Equal(t, "Refusing to overwrite existing key file: "+keyFile+"\n", errOut)

	// Flags may follow the command.
	code, out, errOut = runCLI(t, "", "create_signing_keys", "--keyfile", keyFile)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "# sequence number: 1\n")

	code, out, errOut = runCLI(t, "", "--keyfile", keyFile, "revoke_master_keys")
	require.Equal(t, 0, code, errOut)
	assert.True(t, strings.HasPrefix(out, "WARNING: This will revoke your master keys!\n\n"))
	assert.Contains(t, out, "# sequence number: 4294967295\n")

	manifest := regexp.MustCompile(`(?s)\[validation_manifest\]\n(.*)\n\n$`).FindStringSubmatch(out)
	require.Len(t, manifest, 2)
	code, vout, errOut := runCLI(t, manifest[1], "verify_manifest")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, vout, "revokes the master key")

	code, out, errOut = runCLI(t, "", "--keyfile", keyFile, "create_signing_keys")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Equal(t, "Sequence is already at maximum value. Master keys have been revoked.\n", errOut)
}

func TestVerifyManifestFromFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "k.json")
	archive := filepath.Join(dir, "archive")

	code, _, errOut := runCLI(t, "", "--keyfile", keyFile, "create_master_keys")
	require.Equal(t, 0, code, errOut)
	code, out, errOut := runCLI(t, "", "--keyfile", keyFile, "--archive", archive, "create_signing_keys")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, "Manifest archived: ")

	m := regexp.MustCompile(`(?s)\[validation_manifest\]\n(.*)\n\n$`).FindStringSubmatch(out)
	require.Len(t, m, 2)
	mf := filepath.Join(dir, "manifest.txt")
	require.NoError(t, os.WriteFile(mf, []byte(m[1]), 0o600))

	code, vout, errOut := runCLI(t, "", "verify_manifest", "--manifest", mf)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, vout, "sequence number: 1\n")

	code, _, errOut = runCLI(t, "", "verify_manifest", "--manifest", filepath.Join(dir, "missing"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Cannot open manifest file")
}

func TestCommandErrors(t *testing.T) {
	isolate(t)
	keyFile := filepath.Join(t.TempDir(), "k.json")

	code, _, errOut := runCLI(t, "", "--keyfile", keyFile, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Unknown command\n", errOut)

	code, _, errOut = runCLI(t, "", "--keyfile", keyFile, "create_master_keys", "extra")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Syntax error: Wrong number of parameters\n", errOut)

	code, _, errOut = runCLI(t, "", "--keyfile", keyFile, "create_signing_keys")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Failed to open key file: "+keyFile+"\n", errOut)
}

func TestConfigFileSuppliesKeyFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "from-config.json")
	cfg := filepath.Join(dir, "tool.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("key_file: "+keyFile+"\n"), 0o600))

	code, out, errOut := runCLI(t, "", "--config", cfg, "create_master_keys")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "Master validator keys stored in "+keyFile+"\n", out)

	code, _, errOut = runCLI(t, "", "--config", filepath.Join(dir, "missing.yaml"), "create_master_keys")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Unable to read config file")
}

func TestUnittestFlag(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "", "--unittest")
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "PASS ")
	assert.NotContains(t, out, "FAIL ")
}

func TestArchiveMirrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "k.json")
	primary := filepath.Join(dir, "primary")
	mirror := filepath.Join(dir, "mirror")
	cfg := filepath.Join(dir, "tool.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("archive_dir: "+primary+"\narchive_mirrors: ["+mirror+"]\n"), 0o600))

	code, _, errOut := runCLI(t, "", "--config", cfg, "--keyfile", keyFile, "create_master_keys")
	require.Equal(t, 0, code, errOut)
	code, _, errOut = runCLI(t, "", "--config", cfg, "--keyfile", keyFile, "create_signing_keys")
	require.Equal(t, 0, code, errOut)

	id := strings.TrimSpace(strings.TrimPrefix(errOut, "Manifest archived: "))
	require.NotEmpty(t, id)
	for _, root := range []string{primary, mirror} {
		_, err := os.Stat(filepath.Join(root, id[:2], id))
		assert.NoError(t, err, root)
	}
}
