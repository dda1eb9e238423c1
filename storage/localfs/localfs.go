// Package localfs is a directory-backed storage.CAS.
//
// Objects live at <root>/<first two CID characters>/<CID> and are written
// read-only. Nothing here touches the network.
package localfs

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ipfs/go-cid"

	"ripple.com/validator-keys/cidutil"
	"ripple.com/validator-keys/storage"
)

// CAS stores objects under a root directory.
type CAS struct {
	root string
}

var (
	_ storage.CAS    = (*CAS)(nil)
	_ storage.Lister = (*CAS)(nil)
)

// New opens (creating if needed) a store rooted at root.
func New(root string) (*CAS, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, err
	}
	return &CAS{root: root}, nil
}

// Root returns the store directory.
func (c *CAS) Root() string { return c.root }

func (c *CAS) Put(data []byte) (cid.Cid, error) {
	id, err := cidutil.ForBytes(data)
	if err != nil {
		return cid.Undef, err
	}
	path := c.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o400)
	if errors.Is(err, fs.ErrExist) {
		existing, rerr := c.Get(id)
		if rerr != nil || !bytes.Equal(existing, data) {
			return cid.Undef, storage.ErrImmutable
		}
		return id, nil
	}
	if err != nil {
		return cid.Undef, err
	}

	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	data, err := os.ReadFile(c.pathFor(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	got, err := cidutil.ForBytes(data)
	if err != nil {
		return nil, err
	}
	if !got.Equals(id) {
		return nil, storage.ErrCIDMismatch
	}
	return data, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(c.pathFor(id))
	return err == nil
}

// List returns every stored CID in string order. Files whose names are not
// CIDs are skipped.
func (c *CAS) List() ([]cid.Cid, error) {
	var out []cid.Cid
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if id, perr := cidutil.Parse(d.Name()); perr == nil {
			out = append(out, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (c *CAS) pathFor(id cid.Cid) string {
	s := id.String()
	return filepath.Join(c.root, s[:2], s)
}
