// Package vmerr defines the typed error kinds raised by the VM core.
//
// Errors carry enough context (a TypeRef, a Name, or the item that failed a
// check) for an embedder to format a diagnostic, but no error here ever
// poisons global state: a failure during static init, for instance, leaves
// the statics map exactly as populated up to that point.
package vmerr

import "fmt"

// Kind identifies the class of failure. Tests and embedders match on Kind
// via errors.Is, not on the formatted message.
type Kind int

const (
	_ Kind = iota

	// Lookup failures.
	FailedGetAssembly
	FailedGetType
	FailedGetMethod
	FailedGetField
	FailedGetRegister

	// Resolution failures.
	UnloadedType
	NonGenericType
	FailedMakeGeneric

	// Type-contract failures.
	WrongType
	UnsupportedEntryType
	UnsupportedInstanceType
	UnsupportedObjectType
	UnsupportedGettingField
	ConstructStaticClass

	// Dynamic check failures: argument-count mismatches (only when
	// cpu.Config.DynamicChecking is set) and generic-constraint violations
	// (assembly.Manager.Instantiate, checked on every instantiation).
	DynamicCheckingFailed

	// Register failures.
	FailedReadRegister
	FailedWriteRegister

	// Indexing.
	ArrayIndexOutOfRange

	// Abnormal return.
	MethodReturnsAbnormally
)

func (k Kind) String() string {
	switch k {
	case FailedGetAssembly:
		return "FailedGetAssembly"
	case FailedGetType:
		return "FailedGetType"
	case FailedGetMethod:
		return "FailedGetMethod"
	case FailedGetField:
		return "FailedGetField"
	case FailedGetRegister:
		return "FailedGetRegister"
	case UnloadedType:
		return "UnloadedType"
	case NonGenericType:
		return "NonGenericType"
	case FailedMakeGeneric:
		return "FailedMakeGeneric"
	case WrongType:
		return "WrongType"
	case UnsupportedEntryType:
		return "UnsupportedEntryType"
	case UnsupportedInstanceType:
		return "UnsupportedInstanceType"
	case UnsupportedObjectType:
		return "UnsupportedObjectType"
	case UnsupportedGettingField:
		return "UnsupportedGettingField"
	case ConstructStaticClass:
		return "ConstructStaticClass"
	case DynamicCheckingFailed:
		return "DynamicCheckingFailed"
	case FailedReadRegister:
		return "FailedReadRegister"
	case FailedWriteRegister:
		return "FailedWriteRegister"
	case ArrayIndexOutOfRange:
		return "ArrayIndexOutOfRange"
	case MethodReturnsAbnormally:
		return "MethodReturnsAbnormally"
	}
	return "Unknown"
}

// Error is the concrete error type raised by every subsystem in this
// module. Item is the TypeRef/MethodRef/Name string (or other identifying
// context) that failed; Err, if non-nil, wraps an underlying cause.
type Error struct {
	Kind Kind
	Item string
	Err  error
}

func (e *Error) Error() string {
	if e.Item == "" && e.Err == nil {
		return e.Kind.String()
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Item)
	}
	if e.Item == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Item, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, vmerr.New(kind, "", nil)) match purely on Kind,
// which is how tests and callers are expected to check error identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an *Error for the given kind.
func New(kind Kind, item string, err error) *Error {
	return &Error{Kind: kind, Item: item, Err: err}
}

// Of returns a comparison target for errors.Is(err, vmerr.Of(kind)).
func Of(kind Kind) error { return &Error{Kind: kind} }

// DynamicCheckArgLen describes a DynamicCheckingFailed raised by an
// argument-count mismatch.
type DynamicCheckArgLen struct {
	Got, Expected int
}

func (d DynamicCheckArgLen) String() string {
	return fmt.Sprintf("arg len: got %d, expected %d", d.Got, d.Expected)
}

// DynamicCheckType describes a DynamicCheckingFailed caused by a type
// mismatch. No check in this module constructs one: argument types are
// not checked dynamically.
type DynamicCheckType struct {
	Got, Expected string
}

func (d DynamicCheckType) String() string {
	return fmt.Sprintf("type: got %s, expected %s", d.Got, d.Expected)
}
