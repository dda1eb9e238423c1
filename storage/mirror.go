package storage

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"ripple.com/validator-keys/cidutil"
)

// Replica is one named member of a Mirror.
type Replica struct {
	Name string
	CAS  CAS
}

// Mirror keeps the same objects in several stores. Put succeeds only when
// every replica stored the object under the expected CID; Get and Has consult
// replicas in order.
type Mirror struct {
	Replicas []Replica
}

var _ CAS = Mirror{}

// Put writes data to every replica.
func (m Mirror) Put(data []byte) (cid.Cid, error) {
	if len(m.Replicas) == 0 {
		return cid.Undef, errors.New("storage: mirror has no replicas")
	}
	want, err := cidutil.ForBytes(data)
	if err != nil {
		return cid.Undef, err
	}
	for _, r := range m.Replicas {
		got, err := r.CAS.Put(data)
		if err != nil {
			return cid.Undef, fmt.Errorf("storage: replica %q: %w", r.Name, err)
		}
		if !got.Equals(want) {
			return cid.Undef, fmt.Errorf("storage: replica %q: %w", r.Name, ErrCIDMismatch)
		}
	}
	return want, nil
}

// Get returns the object from the first replica holding it. Any error other
// than ErrNotFound stops the search.
func (m Mirror) Get(id cid.Cid) ([]byte, error) {
	for _, r := range m.Replicas {
		data, err := r.CAS.Get(id)
		if err == nil {
			return data, nil
		}
		if !IsNotFound(err) {
			return nil, fmt.Errorf("storage: replica %q: %w", r.Name, err)
		}
	}
	return nil, ErrNotFound
}

func (m Mirror) Has(id cid.Cid) bool {
	for _, r := range m.Replicas {
		if r.CAS.Has(id) {
			return true
		}
	}
	return false
}

// List returns the contents of the first replica that can list.
func (m Mirror) List() ([]cid.Cid, error) {
	for _, r := range m.Replicas {
		if l, ok := r.CAS.(Lister); ok {
			return l.List()
		}
	}
	return nil, errors.New("storage: no replica can list")
}
