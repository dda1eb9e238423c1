// Package codec holds the text encodings used on the wire and in key files:
// base58check tokens in the ripple alphabet, and padded base64.
//
// The package carries no policy. Callers decide which token type a value must
// have; decoding simply refuses anything else.
package codec
