// Package manifest builds and checks validator manifests.
//
// A manifest binds an ephemeral signing key to a master identity at a given
// sequence. It carries two signatures: one by the ephemeral key over the
// body, and one by the master key over the body and the ephemeral signature.
package manifest
