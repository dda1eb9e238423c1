// Package stobject implements the canonical binary object format used by
// validator manifests.
//
// An Object is an unordered set of typed fields. Its serialization is
// canonical: fields are always emitted ordered by (type code, field code),
// each preceded by a compact field header, with variable-length values
// prefixed by their length. Two objects holding the same values serialize to
// the same bytes, which is what makes signatures over them meaningful.
package stobject
