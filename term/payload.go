package term

import (
	"sync/atomic"

	"github.com/Comcast/sheens/atom"
)

// Payload is the shared, reference-counted heap cell backing every
// composite Term.  It is created with an implicit refcount of 1 when
// a composite constructor allocates it; Retain/Release adjust that
// count explicitly when a Term handle is cloned or dropped by code
// that wants deterministic sharing diagnostics.
//
// Go's garbage collector reclaims the body regardless of what the
// count reaches — the count here is advisory bookkeeping kept for
// parity with the source library's shared-body discipline and for
// the sharing-related testable properties, not a manual allocator.
// See DESIGN.md ("shared payload").
type Payload struct {
	rc int32

	binary []byte
	tuple  tupleBody
	list   listBody
	mp     mapBody
	pid    pidBody
	port   portBody
	ref    refBody
	trace  traceBody
}

func newPayload() *Payload {
	return &Payload{rc: 1}
}

// Retain increments the reference count and returns the new value.
func (p *Payload) Retain() int32 {
	return atomic.AddInt32(&p.rc, 1)
}

// Release decrements the reference count and returns the new value.
// When it reaches zero the body is simply left for the garbage
// collector; there is nothing further to do.
func (p *Payload) Release() int32 {
	return atomic.AddInt32(&p.rc, -1)
}

// RefCount returns the current reference count.
func (p *Payload) RefCount() int32 {
	return atomic.LoadInt32(&p.rc)
}

func (p *Payload) equal(o *Payload) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil {
		return false
	}
	switch {
	case p.binary != nil || o.binary != nil:
		return bytesEqual(p.binary, o.binary)
	case p.tuple.items != nil || o.tuple.items != nil:
		return p.tuple.equal(&o.tuple)
	case p.list.items != nil || o.list.items != nil || p.list.closed || o.list.closed:
		return p.list.equal(&o.list)
	case p.mp.keys != nil || o.mp.keys != nil:
		return p.mp.equal(&o.mp)
	default:
		return p.pid.equal(o.pid) && p.port.equal(o.port) &&
			p.ref.equal(o.ref) && p.trace.equal(o.trace)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- tuple ---

type tupleBody struct {
	items []Term
	arity int
}

func (b *tupleBody) complete() bool { return len(b.items) == b.arity }

func (a *tupleBody) equal(b *tupleBody) bool {
	if len(a.items) != len(b.items) {
		return false
	}
	for i := range a.items {
		if !a.items[i].Equal(b.items[i]) {
			return false
		}
	}
	return true
}

// NewTuple starts a tuple of the given arity; push items with
// Term.TuplePush until it becomes Initialized.
func NewTuple(arity int) Term {
	if arity < 0 {
		panic("term: negative tuple arity")
	}
	return Term{kind: KindTuple, payload: &Payload{rc: 1, tuple: tupleBody{
		items: make([]Term, 0, arity),
		arity: arity,
	}}}
}

// TupleFrom builds a fully-initialized tuple from items directly.
func TupleFrom(items ...Term) Term {
	t := NewTuple(len(items))
	for _, it := range items {
		var err error
		t, err = t.TuplePush(it)
		if err != nil {
			panic(err)
		}
	}
	return t
}

// TuplePush appends an item to an in-progress tuple and returns the
// (possibly now-initialized) tuple.
func (t Term) TuplePush(item Term) (Term, error) {
	if t.kind != KindTuple {
		return Term{}, &WrongType{Want: KindTuple, Got: t.kind}
	}
	b := &t.payload.tuple
	if b.complete() {
		return Term{}, &BadArgument{Reason: "tuple already initialized"}
	}
	b.items = append(b.items, item)
	return t, nil
}

// Arity returns the tuple's declared arity.
func (t Term) Arity() (int, error) {
	if t.kind != KindTuple {
		return 0, &WrongType{Want: KindTuple, Got: t.kind}
	}
	return t.payload.tuple.arity, nil
}

// TupleElement returns the i'th element (0-based) of an initialized
// tuple.
func (t Term) TupleElement(i int) (Term, error) {
	if t.kind != KindTuple {
		return Term{}, &WrongType{Want: KindTuple, Got: t.kind}
	}
	b := &t.payload.tuple
	if i < 0 || i >= len(b.items) {
		return Term{}, &BadArgument{Reason: "tuple index out of range"}
	}
	return b.items[i], nil
}

// ToTuple returns the tuple's elements as a slice; the tuple must be
// Initialized.
func (t Term) ToTuple() ([]Term, error) {
	if t.kind != KindTuple {
		return nil, &WrongType{Want: KindTuple, Got: t.kind}
	}
	mustInit(t)
	return t.payload.tuple.items, nil
}

// --- list ---

type listBody struct {
	items  []Term
	tail   Term // set by ListClose (NilTerm for a proper list)
	closed bool
}

func (a *listBody) equal(b *listBody) bool {
	if len(a.items) != len(b.items) {
		return false
	}
	for i := range a.items {
		if !a.items[i].Equal(b.items[i]) {
			return false
		}
	}
	return a.tail.Equal(b.tail)
}

// NewList starts an empty, open list.
func NewList() Term {
	return Term{kind: KindList, payload: &Payload{rc: 1, list: listBody{}}}
}

// ListPush appends an item to an open list.
func (t Term) ListPush(item Term) (Term, error) {
	if t.kind != KindList {
		return Term{}, &WrongType{Want: KindList, Got: t.kind}
	}
	b := &t.payload.list
	if b.closed {
		return Term{}, &BadArgument{Reason: "list already closed"}
	}
	b.items = append(b.items, item)
	return t, nil
}

// NilTerm is the atom 'nil', the tail of every proper list. (An empty
// list is a closed KindList with no items, not NilTerm.)
var NilTerm = MustAtom("nil")

// ListClose closes the list with the given tail (use NilTerm for a
// proper list); the list becomes Initialized only after this call.
func (t Term) ListClose(tail Term) (Term, error) {
	if t.kind != KindList {
		return Term{}, &WrongType{Want: KindList, Got: t.kind}
	}
	b := &t.payload.list
	if b.closed {
		return Term{}, &BadArgument{Reason: "list already closed"}
	}
	b.tail = tail
	b.closed = true
	return t, nil
}

// ListFrom builds a closed, proper list from items.
func ListFrom(items ...Term) Term {
	l := NewList()
	for _, it := range items {
		var err error
		l, err = l.ListPush(it)
		if err != nil {
			panic(err)
		}
	}
	l, err := l.ListClose(NilTerm)
	if err != nil {
		panic(err)
	}
	return l
}

// ToList returns a closed list's elements.
func (t Term) ToList() ([]Term, error) {
	if t.kind != KindList {
		return nil, &WrongType{Want: KindList, Got: t.kind}
	}
	mustInit(t)
	return t.payload.list.items, nil
}

// ListTail returns a closed list's tail term (NilTerm for a proper
// list, anything else for an "improper" list).
func (t Term) ListTail() (Term, error) {
	if t.kind != KindList {
		return Term{}, &WrongType{Want: KindList, Got: t.kind}
	}
	mustInit(t)
	return t.payload.list.tail, nil
}

// IsProperList reports whether a closed list's tail is the nil atom.
func (t Term) IsProperList() (bool, error) {
	tail, err := t.ListTail()
	if err != nil {
		return false, err
	}
	return tail.Equal(NilTerm), nil
}

// --- binary ---

// Binary returns a Term wrapping a copy of b.
func Binary(b []byte) Term {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Term{kind: KindBinary, payload: &Payload{rc: 1, binary: cp}}
}

// ToBinary returns the binary's bytes (not a copy; treat as
// read-only, matching the immutable-after-publication discipline).
func (t Term) ToBinary() ([]byte, error) {
	if t.kind != KindBinary {
		return nil, &WrongType{Want: KindBinary, Got: t.kind}
	}
	return t.payload.binary, nil
}

// String returns a Term wrapping a runtime "string" (a list-of-bytes
// value printed as text, distinct from a binary).
func String(s string) Term {
	return Term{kind: KindString, payload: &Payload{rc: 1, binary: []byte(s)}}
}

// ToStringValue returns the string's textual content.
func (t Term) ToStringValue() (string, error) {
	if t.kind != KindString {
		return "", &WrongType{Want: KindString, Got: t.kind}
	}
	return string(t.payload.binary), nil
}

// --- map ---

type mapEntry struct {
	key Term
	val Term
}

type mapBody struct {
	keys []Term
	vals []Term
}

func (a *mapBody) equal(b *mapBody) bool {
	if len(a.keys) != len(b.keys) {
		return false
	}
	for i := range a.keys {
		if !a.keys[i].Equal(b.keys[i]) || !a.vals[i].Equal(b.vals[i]) {
			return false
		}
	}
	return true
}

// NewMap builds a map term from entries, sorting by key order and
// collapsing duplicate keys to the last-inserted value, per the
// ordered-unique-keys invariant.
func NewMap(keys, vals []Term) (Term, error) {
	if len(keys) != len(vals) {
		return Term{}, &BadArgument{Reason: "map keys/values length mismatch"}
	}
	b := &mapBody{}
	// Left-to-right insert with last-wins-on-duplicate, keeping
	// sorted order throughout (simple insertion sort is fine: maps
	// in this universe are small).
	for i, k := range keys {
		v := vals[i]
		inserted := false
		for j, ek := range b.keys {
			c := Compare(k, ek)
			if c == 0 {
				b.vals[j] = v
				inserted = true
				break
			}
			if c < 0 {
				b.keys = append(b.keys, Term{})
				copy(b.keys[j+1:], b.keys[j:])
				b.keys[j] = k
				b.vals = append(b.vals, Term{})
				copy(b.vals[j+1:], b.vals[j:])
				b.vals[j] = v
				inserted = true
				break
			}
		}
		if !inserted {
			b.keys = append(b.keys, k)
			b.vals = append(b.vals, v)
		}
	}
	return Term{kind: KindMap, payload: &Payload{rc: 1, mp: *b}}, nil
}

// MapGet looks up key, returning (value, true) if present.
func (t Term) MapGet(key Term) (Term, bool, error) {
	if t.kind != KindMap {
		return Term{}, false, &WrongType{Want: KindMap, Got: t.kind}
	}
	mp := &t.payload.mp
	for i, k := range mp.keys {
		if k.Equal(key) {
			return mp.vals[i], true, nil
		}
	}
	return Term{}, false, nil
}

// MapEntries returns the map's (key, value) pairs in sorted key order.
func (t Term) MapEntries() ([]Term, []Term, error) {
	if t.kind != KindMap {
		return nil, nil, &WrongType{Want: KindMap, Got: t.kind}
	}
	return t.payload.mp.keys, t.payload.mp.vals, nil
}

// MapLen returns the number of entries in the map.
func (t Term) MapLen() (int, error) {
	if t.kind != KindMap {
		return 0, &WrongType{Want: KindMap, Got: t.kind}
	}
	return len(t.payload.mp.keys), nil
}

// --- pid / port / reference / trace ---

type pidBody struct {
	node     atom.Atom
	id       uint32 // 28 bits
	serial   uint32
	creation uint32 // full 32 bits via PidFull; Pid reduces it modulo 4
}

func (a pidBody) equal(b pidBody) bool {
	return a.node == b.node && a.id == b.id && a.serial == b.serial && a.creation == b.creation
}

// Pid builds a process identifier term.  id is masked to 28 bits and
// creation reduced modulo 4, per the construction invariant; the
// unmasked creation is NOT retained here (use PidFull for codec paths
// that must keep the full 32-bit creation internally).
func Pid(node Term, id, serial uint32, creation uint32) (Term, error) {
	if node.kind != KindAtom {
		return Term{}, &BadArgument{Reason: "pid node must be an atom"}
	}
	a, _ := node.ToAtomIndex()
	return Term{kind: KindPid, payload: &Payload{rc: 1, pid: pidBody{
		node: a, id: id & 0x0FFFFFFF, serial: serial, creation: creation % 4,
	}}}, nil
}

// PidFull builds a pid keeping the full 32-bit creation (used by the
// codec when decoding NEW_PID_EXT, per the "retain full 32 bits
// internally" design note); id is still masked to 28 bits.
func PidFull(node Term, id, serial, creation uint32) (Term, error) {
	if node.kind != KindAtom {
		return Term{}, &BadArgument{Reason: "pid node must be an atom"}
	}
	a, _ := node.ToAtomIndex()
	return Term{kind: KindPid, payload: &Payload{rc: 1, pid: pidBody{
		node: a, id: id & 0x0FFFFFFF, serial: serial, creation: creation,
	}}}, nil
}

func (t Term) ToPid() (node atom.Atom, id, serial, creation uint32, err error) {
	if t.kind != KindPid {
		return 0, 0, 0, 0, &WrongType{Want: KindPid, Got: t.kind}
	}
	b := t.payload.pid
	return b.node, b.id, b.serial, b.creation, nil
}

type portBody struct {
	node     atom.Atom
	id       uint32 // 28 bits
	creation uint32
}

func (a portBody) equal(b portBody) bool {
	return a.node == b.node && a.id == b.id && a.creation == b.creation
}

func Port(node Term, id, creation uint32) (Term, error) {
	if node.kind != KindAtom {
		return Term{}, &BadArgument{Reason: "port node must be an atom"}
	}
	a, _ := node.ToAtomIndex()
	return Term{kind: KindPort, payload: &Payload{rc: 1, port: portBody{
		node: a, id: id & 0x0FFFFFFF, creation: creation % 4,
	}}}, nil
}

func PortFull(node Term, id, creation uint32) (Term, error) {
	if node.kind != KindAtom {
		return Term{}, &BadArgument{Reason: "port node must be an atom"}
	}
	a, _ := node.ToAtomIndex()
	return Term{kind: KindPort, payload: &Payload{rc: 1, port: portBody{
		node: a, id: id & 0x0FFFFFFF, creation: creation,
	}}}, nil
}

func (t Term) ToPort() (node atom.Atom, id, creation uint32, err error) {
	if t.kind != KindPort {
		return 0, 0, 0, &WrongType{Want: KindPort, Got: t.kind}
	}
	b := t.payload.port
	return b.node, b.id, b.creation, nil
}

type refBody struct {
	node     atom.Atom
	ids      [3]uint32
	n        int // 1..3
	creation uint32
}

func (a refBody) equal(b refBody) bool {
	if a.node != b.node || a.n != b.n || a.creation != b.creation {
		return false
	}
	for i := 0; i < a.n; i++ {
		if a.ids[i] != b.ids[i] {
			return false
		}
	}
	return true
}

func Reference(node Term, ids []uint32, creation uint32) (Term, error) {
	return referenceImpl(node, ids, creation%4)
}

func ReferenceFull(node Term, ids []uint32, creation uint32) (Term, error) {
	return referenceImpl(node, ids, creation)
}

func referenceImpl(node Term, ids []uint32, creation uint32) (Term, error) {
	if node.kind != KindAtom {
		return Term{}, &BadArgument{Reason: "reference node must be an atom"}
	}
	if len(ids) < 1 || len(ids) > 3 {
		return Term{}, &BadArgument{Reason: "reference must have 1..3 ids"}
	}
	a, _ := node.ToAtomIndex()
	var b refBody
	b.node = a
	b.n = len(ids)
	copy(b.ids[:], ids)
	b.creation = creation
	return Term{kind: KindReference, payload: &Payload{rc: 1, ref: b}}, nil
}

func (t Term) ToReference() (node atom.Atom, ids []uint32, creation uint32, err error) {
	if t.kind != KindReference {
		return 0, nil, 0, &WrongType{Want: KindReference, Got: t.kind}
	}
	b := t.payload.ref
	return b.node, append([]uint32(nil), b.ids[:b.n]...), b.creation, nil
}

type traceBody struct {
	serial int64
	prev   int64
	label  int64
	from   pidBody
	flags  int64
}

func (a traceBody) equal(b traceBody) bool {
	return a.serial == b.serial && a.prev == b.prev && a.label == b.label &&
		a.from.equal(b.from) && a.flags == b.flags
}

// Trace builds a trace-token term (serial, prev, label, from-pid, flags).
func Trace(serial, prev, label int64, from Term, flags int64) (Term, error) {
	if from.kind != KindPid {
		return Term{}, &BadArgument{Reason: "trace from must be a pid"}
	}
	return Term{kind: KindTrace, payload: &Payload{rc: 1, trace: traceBody{
		serial: serial, prev: prev, label: label, from: from.payload.pid, flags: flags,
	}}}, nil
}

func (t Term) ToTrace() (serial, prev, label int64, from Term, flags int64, err error) {
	if t.kind != KindTrace {
		return 0, 0, 0, Term{}, 0, &WrongType{Want: KindTrace, Got: t.kind}
	}
	b := t.payload.trace
	fromTerm := Term{kind: KindPid, payload: &Payload{rc: 1, pid: b.from}}
	return b.serial, b.prev, b.label, fromTerm, b.flags, nil
}

// --- var (pattern variable) ---

// Var builds a pattern-variable term with an optional type hint
// (e.g. MustAtom("int"), or nil for no hint).
func Var(name string, hint *Term) (Term, error) {
	a, err := atom.Default().Lookup(name)
	if err != nil {
		return Term{}, err
	}
	return Term{kind: KindVar, varName: a, varHint: hint}, nil
}

func (t Term) ToVar() (name atom.Atom, hint *Term, err error) {
	if t.kind != KindVar {
		return 0, nil, &WrongType{Want: KindVar, Got: t.kind}
	}
	return t.varName, t.varHint, nil
}
