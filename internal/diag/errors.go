// Package diag holds the fatal error kinds raised while analyzing a project and
// renders them, together with the declarations they point at, for the terminal.
package diag

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// Kind names one category of unrecoverable analysis failure.
type Kind string

const (
	KindDuplicateDeclaration Kind = "DuplicateDeclarationError"
	KindUnresolvableType     Kind = "UnresolvableTypeError"
	KindInvalidParameterDto  Kind = "InvalidParameterDtoError"
	KindMissingParameterType Kind = "MissingParameterTypeError"
	KindConfigLoad           Kind = "ConfigLoadError"
	KindDanglingReference    Kind = "DanglingReferenceError"
	KindSourceParse          Kind = "SourceParseError"
)

// Sentinel errors for use with errors.Is.
var (
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	ErrUnresolvableType     = errors.New("unresolvable type")
	ErrInvalidParameterDto  = errors.New("invalid parameter dto")
	ErrMissingParameterType = errors.New("missing parameter type")
	ErrConfigLoad           = errors.New("config load failed")
	ErrDanglingReference    = errors.New("dangling reference")
	ErrSourceParse          = errors.New("source parse failed")
)

var sentinels = map[Kind]error{
	KindDuplicateDeclaration: ErrDuplicateDeclaration,
	KindUnresolvableType:     ErrUnresolvableType,
	KindInvalidParameterDto:  ErrInvalidParameterDto,
	KindMissingParameterType: ErrMissingParameterType,
	KindConfigLoad:           ErrConfigLoad,
	KindDanglingReference:    ErrDanglingReference,
	KindSourceParse:          ErrSourceParse,
}

// Location is a 1-based position of a declaration in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// At converts a token position into a Location.
func At(fset *token.FileSet, pos token.Pos) Location {
	if fset == nil || !pos.IsValid() {
		return Location{}
	}
	p := fset.Position(pos)
	return Location{File: p.Filename, Line: p.Line, Column: p.Column}
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Error is a fatal analysis failure with the declarations that caused it.
type Error struct {
	Kind      Kind
	Message   string
	Locations []Location
	Cause     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// DuplicateDeclaration reports two type declarations sharing one name.
func DuplicateDeclaration(name string, first, second Location) *Error {
	return &Error{
		Kind:      KindDuplicateDeclaration,
		Message:   fmt.Sprintf("Duplicate %s type found in multiple locations", name),
		Locations: []Location{first, second},
	}
}

// UnresolvableType reports a type name with no declaration in the analyzed tree.
func UnresolvableType(name, usedIn string, locs ...Location) *Error {
	msg := fmt.Sprintf("%s type doesn't exist", name)
	if usedIn != "" {
		msg = fmt.Sprintf("%s type doesn't exist but used in %s", name, usedIn)
	}
	return &Error{Kind: KindUnresolvableType, Message: msg, Locations: locs}
}

// InvalidParameterDto reports a path or query type without validation metadata.
func InvalidParameterDto(name, operationID string, locs ...Location) *Error {
	return &Error{
		Kind:      KindInvalidParameterDto,
		Message:   fmt.Sprintf("%s in %s must be a struct with validate tags", name, operationID),
		Locations: locs,
	}
}

// MissingParameterType reports a bound parameter whose type yields no type names.
func MissingParameterType(param string, loc Location) *Error {
	return &Error{
		Kind:      KindMissingParameterType,
		Message:   fmt.Sprintf("parameter %s must have a declared type", param),
		Locations: []Location{loc},
	}
}

// ConfigLoad reports a configuration file that exists but cannot be used.
func ConfigLoad(path string, cause error) *Error {
	return &Error{
		Kind:    KindConfigLoad,
		Message: fmt.Sprintf("config import failed %s", path),
		Cause:   cause,
	}
}

// DanglingReference reports a $ref that points at nothing.
func DanglingReference(ref, at string) *Error {
	return &Error{
		Kind:    KindDanglingReference,
		Message: fmt.Sprintf("reference %s at %s does not resolve", ref, at),
	}
}

// SourceParse reports a matched file that is not valid Go.
func SourceParse(path string, cause error) *Error {
	return &Error{
		Kind:      KindSourceParse,
		Message:   fmt.Sprintf("failed to parse %s", path),
		Locations: []Location{{File: path, Line: 1, Column: 1}},
		Cause:     cause,
	}
}
