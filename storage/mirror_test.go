package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple.com/validator-keys/cidutil"
	"ripple.com/validator-keys/storage"
	"ripple.com/validator-keys/storage/localfs"
	"ripple.com/validator-keys/storage/testkit"
)

func newMirror(t *testing.T) (storage.Mirror, *localfs.CAS, *localfs.CAS) {
	t.Helper()
	a, err := localfs.New(t.TempDir())
	require.NoError(t, err)
	b, err := localfs.New(t.TempDir())
	require.NoError(t, err)
	return storage.Mirror{Replicas: []storage.Replica{{Name: "primary", CAS: a}, {Name: "offsite", CAS: b}}}, a, b
}

func TestMirrorConformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		m, _, _ := newMirror(t)
		return m
	})
}

func TestMirrorWritesEveryReplica(t *testing.T) {
	m, a, b := newMirror(t)
	id, err := m.Put([]byte("manifest"))
	require.NoError(t, err)
	assert.True(t, a.Has(id))
	assert.True(t, b.Has(id))
}

func TestMirrorReadsFallBack(t *testing.T) {
	m, a, b := newMirror(t)
	id, err := b.Put([]byte("only offsite"))
	require.NoError(t, err)
	assert.False(t, a.Has(id))

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("only offsite"), got)
}

func TestMirrorSurfacesCorruption(t *testing.T) {
	m, a, _ := newMirror(t)
	id, err := m.Put([]byte("original"))
	require.NoError(t, err)

	s := id.String()
	path := filepath.Join(a.Root(), s[:2], s)
	require.NoError(t, os.Chmod(path, 0o600))
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0o600))

	_, err = m.Get(id)
	assert.ErrorIs(t, err, storage.ErrCIDMismatch)
	_, err = m.Put([]byte("original"))
	assert.ErrorIs(t, err, storage.ErrImmutable)
}

func TestMirrorWithoutReplicas(t *testing.T) {
	_, err := storage.Mirror{}.Put([]byte("x"))
	assert.Error(t, err)

	id, err := cidutil.ForBytes([]byte("x"))
	require.NoError(t, err)
	_, err = storage.Mirror{}.Get(id)
	assert.True(t, storage.IsNotFound(err))
	_, err = storage.Mirror{}.List()
	assert.Error(t, err)
}
