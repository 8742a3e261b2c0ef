// Package term implements the runtime's value universe: a tagged sum
// type over every wire-representable kind, plus construction,
// accessors, equality, canonical ordering, and printing.
//
// Scalars (long, double, bool, atom, var) are stored inline in the
// Term struct.  Composites (string, binary, tuple, list, map, pid,
// port, reference, trace) hold a handle to a reference-counted
// Payload (see payload.go) so that copying a Term is cheap and
// sharing is explicit.
package term

import (
	"fmt"

	"github.com/Comcast/sheens/atom"
)

// Kind identifies a Term's variant.
type Kind uint8

const (
	// KindNone is the zero Kind: a default-constructed Term.
	KindNone Kind = iota
	KindLong
	KindDouble
	KindBool
	KindAtom
	KindString
	KindBinary
	KindPid
	KindPort
	KindReference
	KindTuple
	KindList
	KindMap
	KindTrace
	KindVar
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindAtom:
		return "atom"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindPid:
		return "pid"
	case KindPort:
		return "port"
	case KindReference:
		return "reference"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindTrace:
		return "trace"
	case KindVar:
		return "var"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Term is a tagged value from the runtime's term universe.
//
// The zero Term is the "default-constructed" term: Kind is KindNone,
// and it is equal only to another zero Term.
type Term struct {
	kind Kind

	// Scalar storage.
	long   int64
	double float64
	bool_  bool
	atom   atom.Atom

	// varName/varHint back KindVar; varHint may itself be a Term
	// (e.g. an atom like "int") or nil (no hint).
	varName atom.Atom
	varHint *Term

	// payload backs every composite kind.
	payload *Payload
}

// WrongType is returned by a to_<kind> accessor called on a Term
// whose Kind does not match.
type WrongType struct {
	Want Kind
	Got  Kind
}

func (e *WrongType) Error() string {
	return fmt.Sprintf("term: wrong type: want %s, got %s", e.Want, e.Got)
}

// BadArgument reports a caller-supplied value outside the valid range
// for the constructor or setter being called.
type BadArgument struct {
	Reason string
}

func (e *BadArgument) Error() string {
	return "term: bad argument: " + e.Reason
}

// Type returns t's variant tag.
func (t Term) Type() Kind { return t.kind }

// Initialized reports whether t is usable: false for a default
// (zero) Term, and false for a tuple/list still being built.
func (t Term) Initialized() bool {
	switch t.kind {
	case KindNone:
		return false
	case KindTuple:
		return t.payload != nil && t.payload.tuple.complete()
	case KindList:
		return t.payload != nil && t.payload.list.closed
	default:
		return true
	}
}

// IsNone reports whether t is the default-constructed Term.
func (t Term) IsNone() bool { return t.kind == KindNone }

func mustInit(t Term) {
	if !t.Initialized() {
		panic("term: use of uninitialized list or tuple")
	}
}

// --- scalar constructors ---

// Long returns a Term wrapping a 64-bit signed integer.
func Long(n int64) Term { return Term{kind: KindLong, long: n} }

// Double returns a Term wrapping an IEEE-754 double.
func Double(f float64) Term { return Term{kind: KindDouble, double: f} }

// Bool returns a Term wrapping a boolean.
func Bool(b bool) Term { return Term{kind: KindBool, bool_: b} }

// AtomTerm interns s in the default atom table and returns the
// resulting atom Term.
func AtomTerm(s string) (Term, error) {
	a, err := atom.Default().Lookup(s)
	if err != nil {
		return Term{}, err
	}
	return Term{kind: KindAtom, atom: a}, nil
}

// MustAtom is AtomTerm but panics on error; useful for literals known
// to be valid at compile time.
func MustAtom(s string) Term {
	t, err := AtomTerm(s)
	if err != nil {
		panic(err)
	}
	return t
}

// AtomFromIndex wraps an already-interned atom index.
func AtomFromIndex(a atom.Atom) Term { return Term{kind: KindAtom, atom: a} }

// --- scalar accessors ---

func (t Term) ToLong() (int64, error) {
	if t.kind != KindLong {
		return 0, &WrongType{Want: KindLong, Got: t.kind}
	}
	return t.long, nil
}

func (t Term) ToDouble() (float64, error) {
	if t.kind != KindDouble {
		return 0, &WrongType{Want: KindDouble, Got: t.kind}
	}
	return t.double, nil
}

func (t Term) ToBool() (bool, error) {
	if t.kind != KindBool {
		return false, &WrongType{Want: KindBool, Got: t.kind}
	}
	return t.bool_, nil
}

// ToAtomIndex returns the underlying atom.Atom index.
func (t Term) ToAtomIndex() (atom.Atom, error) {
	if t.kind != KindAtom {
		return 0, &WrongType{Want: KindAtom, Got: t.kind}
	}
	return t.atom, nil
}

// ToAtomString resolves the atom's interned bytes from the default
// table.
func (t Term) ToAtomString() (string, error) {
	a, err := t.ToAtomIndex()
	if err != nil {
		return "", err
	}
	return atom.Default().Get(a), nil
}

// --- equality ---

// Equal reports whether t and other represent the same value.
func (t Term) Equal(other Term) bool {
	if t.kind == KindNone || other.kind == KindNone {
		return t.kind == KindNone && other.kind == KindNone
	}
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case KindLong:
		return t.long == other.long
	case KindDouble:
		return t.double == other.double
	case KindBool:
		return t.bool_ == other.bool_
	case KindAtom:
		return t.atom == other.atom
	case KindVar:
		return t.varName == other.varName && hintEqual(t.varHint, other.varHint)
	default:
		mustInit(t)
		mustInit(other)
		return t.payload.equal(other.payload)
	}
}

func hintEqual(a, b *Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
