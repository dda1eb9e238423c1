package model

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// Unlike most libraries, Message here is user-facing output and is kept
// stable: the CLI prints it verbatim.
type Kind string

const (
	KindStructural Kind = "Structural"
	KindSemantic   Kind = "Semantic"
	KindTerminal   Kind = "Terminal"
	KindFilesystem Kind = "Filesystem"
	KindCLI        Kind = "CLI"
	KindCrypto     Kind = "Crypto"
	KindInternal   Kind = "Internal"
)

// Rule identifiers. They name the check that failed and do not change
// between versions.
const (
	RuleLoadOpen          = "VK-LOAD-001"
	RuleLoadParse         = "VK-LOAD-002"
	RuleLoadMissingField  = "VK-LOAD-003"
	RuleLoadKeyType       = "VK-LOAD-004"
	RuleLoadMasterSecret  = "VK-LOAD-005"
	RuleLoadSequence      = "VK-LOAD-006"
	RuleSaveMkdir         = "VK-SAVE-001"
	RuleSaveOpen          = "VK-SAVE-002"
	RuleSaveWrite         = "VK-SAVE-003"
	RuleSaveExists        = "VK-SAVE-004"
	RuleSeqRevoked        = "VK-SEQ-001"
	RuleSeqNotIncreasing  = "VK-SEQ-002"
	RuleManifestDecode    = "VK-MAN-001"
	RuleManifestSignature = "VK-MAN-002"
	RuleManifestMaster    = "VK-MAN-003"
	RuleCLIUnknownCommand = "VK-CLI-001"
	RuleCLIArgCount       = "VK-CLI-002"
	RuleCLISyntax         = "VK-CLI-003"
	RuleArchive           = "VK-ARC-001"
	RuleConfig            = "VK-CFG-001"
	RuleRandom            = "VK-RNG-001"
)

// Error is the tool's structured error type.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError returns a structured error without a cause.
func NewError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// WrapError returns a structured error carrying cause for errors.Is/As.
func WrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return NewError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
