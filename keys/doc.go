// Package keys provides the key primitives used by the validator key tool.
//
// API stability:
//
// Stable:
//   - Deterministic derivation of secret and public keys from a Seed, for both
//     supported key types. Derivation matches the ledger's own, so a node can
//     rebuild the signing secret from the seed printed by the tool.
//   - Signing and verification under a HashPrefix domain.
//
// Internal detail:
//   - Best-effort locking of secret material in RAM (see Lock). Locks are
//     counted per page; by-value copies made while deriving or signing are
//     not locked.
package keys
