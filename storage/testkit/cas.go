// Package testkit holds behaviour checks every storage.CAS must pass.
package testkit

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple.com/validator-keys/cidutil"
	"ripple.com/validator-keys/storage"
)

// NewCAS returns an empty store private to t.
type NewCAS func(t *testing.T) storage.CAS

// RunCASConformance runs the shared CAS checks against stores from newCAS.
func RunCASConformance(t *testing.T, newCAS NewCAS) {
	t.Helper()

	t.Run("RoundTrip", func(t *testing.T) {
		cas := newCAS(t)
		data := []byte("manifest bytes")

		id, err := cas.Put(data)
		require.NoError(t, err)
		want, err := cidutil.ForBytes(data)
		require.NoError(t, err)
		assert.Equal(t, want, id)

		got, err := cas.Get(id)
		require.NoError(t, err)
		assert.Equal(t, data, got)
		assert.True(t, cas.Has(id))
	})

	t.Run("Idempotent", func(t *testing.T) {
		cas := newCAS(t)
		a, err := cas.Put([]byte("twice"))
		require.NoError(t, err)
		b, err := cas.Put([]byte("twice"))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("NotFound", func(t *testing.T) {
		cas := newCAS(t)
		id, err := cidutil.ForBytes([]byte("absent"))
		require.NoError(t, err)
		assert.False(t, cas.Has(id))
		_, err = cas.Get(id)
		assert.True(t, storage.IsNotFound(err), "got %v", err)
	})

	t.Run("Undefined", func(t *testing.T) {
		cas := newCAS(t)
		assert.False(t, cas.Has(cid.Undef))
		_, err := cas.Get(cid.Undef)
		assert.Error(t, err)
	})

	t.Run("List", func(t *testing.T) {
		cas := newCAS(t)
		lister, ok := cas.(storage.Lister)
		if !ok {
			t.Skip("store does not list")
		}
		ids, err := lister.List()
		require.NoError(t, err)
		assert.Empty(t, ids)

		a, err := cas.Put([]byte("a"))
		require.NoError(t, err)
		b, err := cas.Put([]byte("b"))
		require.NoError(t, err)
		ids, err = lister.List()
		require.NoError(t, err)
		assert.ElementsMatch(t, []cid.Cid{a, b}, ids)
	})
}
