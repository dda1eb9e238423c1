// Package storage defines the content-addressed archive manifests are
// recorded in.
package storage

import "github.com/ipfs/go-cid"

// CAS is a content-addressed object store.
//
// Put is idempotent and objects are immutable: putting different bytes under
// an existing CID is an error. Get verifies the bytes against the CID before
// returning them and reports ErrNotFound for unknown CIDs.
type CAS interface {
	Put(data []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// Lister is implemented by stores that can enumerate their contents.
type Lister interface {
	List() ([]cid.Cid, error)
}
