package models

import (
	"errors"
	"fmt"
)

// ErrorKind represents different categories of package operation errors
type ErrorKind int

const (
	ErrInvalidPackage ErrorKind = iota
	ErrIO
	ErrScriptFailure
	ErrDigestCheck
	ErrNotFound
	ErrInvalidConfig
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidPackage:
		return "InvalidPackage"
	case ErrIO:
		return "IO"
	case ErrScriptFailure:
		return "ScriptFailure"
	case ErrDigestCheck:
		return "DigestCheck"
	case ErrNotFound:
		return "NotFound"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// PkgError represents an error during a package operation, annotated with the
// pkgver it concerns when known.
type PkgError struct {
	Kind   ErrorKind
	Pkgver string
	Err    error
}

// Error implements the error interface
func (e *PkgError) Error() string {
	if e.Pkgver != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Pkgver, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
}

// Unwrap returns the wrapped error
func (e *PkgError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a PkgError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *PkgError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
