// Package validator holds a validator's master identity and persists it to a
// JSON key file.
//
// An Identity owns the master secret. The only mutation it allows is moving
// its sequence forward; the maximum sequence marks the identity as revoked and
// no manifest may be issued from it afterwards.
package validator
