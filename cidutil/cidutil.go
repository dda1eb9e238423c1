// Package cidutil derives content identifiers for archived manifests.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ForBytes returns the CIDv1 (raw codec, sha2-256) of data.
func ForBytes(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Parse decodes s and checks that it uses the same codec and hash as ForBytes.
func Parse(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, err
	}
	pre := id.Prefix()
	if pre.Version != 1 || pre.Codec != cid.Raw || pre.MhType != multihash.SHA2_256 {
		return cid.Undef, fmt.Errorf("cidutil: %s is not a raw sha2-256 CIDv1", s)
	}
	return id, nil
}
