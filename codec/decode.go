package codec

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/Comcast/sheens/atom"
	"github.com/Comcast/sheens/internal/wire"
	"github.com/Comcast/sheens/term"
)

// DecodeError reports a malformed wire input.  Offset is the position
// in the input slice where decoding failed.
type DecodeError struct {
	Reason string
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode error at offset %d: %s", e.Offset, e.Reason)
}

func decErr(off int, reason string) error {
	return &DecodeError{Reason: reason, Offset: off}
}

// Decode decodes one top-level, version-prefixed term from buf.
// Decoding is all-or-nothing: on failure the returned Term is the
// zero Term.
func Decode(buf []byte) (term.Term, error) {
	if len(buf) < 1 {
		return term.Term{}, decErr(0, "empty input")
	}
	if Opcode(buf[0]) != Version {
		return term.Term{}, decErr(0, fmt.Sprintf("expected version byte 0x83, got 0x%02x", buf[0]))
	}
	t, off, err := decodeAt(buf, 1)
	if err != nil {
		return term.Term{}, err
	}
	if off != len(buf) {
		return term.Term{}, decErr(off, "trailing bytes after top-level term")
	}
	return t, nil
}

// DecodeNested decodes one term at off, without expecting a version
// byte (used by callers that already stripped it, and recursively by
// the codec itself). Returns the term and the offset just past it.
func DecodeNested(buf []byte, off int) (term.Term, int, error) {
	return decodeAt(buf, off)
}

func need(buf []byte, off, n int) error {
	if !wire.NeedBytes(off, n, len(buf)) {
		return decErr(off, "short read")
	}
	return nil
}

func decodeAt(buf []byte, off int) (term.Term, int, error) {
	if err := need(buf, off, 1); err != nil {
		return term.Term{}, off, err
	}
	op := Opcode(buf[off])
	off++

	switch op {
	case SmallIntegerExt:
		if err := need(buf, off, 1); err != nil {
			return term.Term{}, off, err
		}
		n := buf[off]
		return term.Long(int64(n)), off + 1, nil

	case IntegerExt:
		if err := need(buf, off, 4); err != nil {
			return term.Term{}, off, err
		}
		n, next := wire.GetInt32(buf, off)
		return term.Long(int64(n)), next, nil

	case FloatExt:
		if err := need(buf, off, 31); err != nil {
			return term.Term{}, off, err
		}
		raw := buf[off : off+31]
		s := strings.TrimRight(string(raw), "\x00")
		s = strings.TrimSpace(s)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return term.Term{}, off, decErr(off, "malformed old-style float: "+err.Error())
		}
		return term.Double(f), off + 31, nil

	case NewFloatExt:
		if err := need(buf, off, 8); err != nil {
			return term.Term{}, off, err
		}
		f, next := wire.GetFloat64(buf, off)
		return term.Double(f), next, nil

	case AtomExt:
		return decodeAtom(buf, off, 2)

	case SmallAtomExt:
		return decodeAtom(buf, off, 1)

	case ReferenceExt:
		return decodeOldReference(buf, off)

	case NewReferenceExt:
		return decodeNewReference(buf, off, false)

	case NewerReferenceExt:
		return decodeNewReference(buf, off, true)

	case PortExt:
		return decodeOldPort(buf, off)

	case NewPortExt:
		return decodeNewPort(buf, off)

	case PidExt:
		return decodeOldPid(buf, off)

	case NewPidExt:
		return decodeNewPid(buf, off)

	case SmallTupleExt:
		if err := need(buf, off, 1); err != nil {
			return term.Term{}, off, err
		}
		arity := int(buf[off])
		return decodeTuple(buf, off+1, arity)

	case LargeTupleExt:
		if err := need(buf, off, 4); err != nil {
			return term.Term{}, off, err
		}
		arity32, next := wire.Get32(buf, off)
		return decodeTuple(buf, next, int(arity32))

	case MapExt:
		return decodeMap(buf, off)

	case NilExt:
		l, err := term.NewList().ListClose(term.NilTerm)
		if err != nil {
			return term.Term{}, off, err
		}
		return l, off, nil

	case StringExt:
		if err := need(buf, off, 2); err != nil {
			return term.Term{}, off, err
		}
		n, next := wire.Get16(buf, off)
		if err := need(buf, next, int(n)); err != nil {
			return term.Term{}, next, err
		}
		s := string(buf[next : next+int(n)])
		return term.String(s), next + int(n), nil

	case ListExt:
		return decodeList(buf, off)

	case BinaryExt:
		if err := need(buf, off, 4); err != nil {
			return term.Term{}, off, err
		}
		n, next := wire.Get32(buf, off)
		if err := need(buf, next, int(n)); err != nil {
			return term.Term{}, next, err
		}
		b := buf[next : next+int(n)]
		return term.Binary(b), next + int(n), nil

	case SmallBigExt:
		if err := need(buf, off, 1); err != nil {
			return term.Term{}, off, err
		}
		n := int(buf[off])
		return decodeBig(buf, off+1, n)

	case LargeBigExt:
		if err := need(buf, off, 4); err != nil {
			return term.Term{}, off, err
		}
		n32, next := wire.Get32(buf, off)
		return decodeBig(buf, next, int(n32))

	default:
		return term.Term{}, off, decErr(off-1, fmt.Sprintf("unknown opcode %d", op))
	}
}

func decodeAtomBytes(buf []byte, off int, lenWidth int) (string, int, error) {
	var n int
	var next int
	switch lenWidth {
	case 1:
		if err := need(buf, off, 1); err != nil {
			return "", off, err
		}
		n = int(buf[off])
		next = off + 1
	case 2:
		if err := need(buf, off, 2); err != nil {
			return "", off, err
		}
		n16, nn := wire.Get16(buf, off)
		n = int(n16)
		next = nn
	}
	if err := need(buf, next, n); err != nil {
		return "", next, err
	}
	return string(buf[next : next+n]), next + n, nil
}

func decodeAtom(buf []byte, off int, lenWidth int) (term.Term, int, error) {
	s, next, err := decodeAtomBytes(buf, off, lenWidth)
	if err != nil {
		return term.Term{}, next, err
	}
	switch s {
	case "true":
		return term.Bool(true), next, nil
	case "false":
		return term.Bool(false), next, nil
	}
	a, err := atom.Default().Lookup(s)
	if err != nil {
		return term.Term{}, next, decErr(off, err.Error())
	}
	return term.AtomFromIndex(a), next, nil
}

func decodeNodeAtom(buf []byte, off int) (term.Term, int, error) {
	if err := need(buf, off, 1); err != nil {
		return term.Term{}, off, err
	}
	if Opcode(buf[off]) != AtomExt && Opcode(buf[off]) != SmallAtomExt {
		return term.Term{}, off, decErr(off, "expected an atom for node name")
	}
	return decodeAt(buf, off)
}

func decodeTuple(buf []byte, off int, arity int) (term.Term, int, error) {
	t := term.NewTuple(arity)
	for i := 0; i < arity; i++ {
		el, next, err := decodeAt(buf, off)
		if err != nil {
			return term.Term{}, next, err
		}
		off = next
		t, err = t.TuplePush(el)
		if err != nil {
			return term.Term{}, off, err
		}
	}
	return t, off, nil
}

func decodeList(buf []byte, off int) (term.Term, int, error) {
	if err := need(buf, off, 4); err != nil {
		return term.Term{}, off, err
	}
	n, next := wire.Get32(buf, off)
	off = next
	l := term.NewList()
	for i := uint32(0); i < n; i++ {
		el, nn, err := decodeAt(buf, off)
		if err != nil {
			return term.Term{}, nn, err
		}
		off = nn
		l, err = l.ListPush(el)
		if err != nil {
			return term.Term{}, off, err
		}
	}
	tail, next2, err := decodeAt(buf, off)
	if err != nil {
		return term.Term{}, next2, err
	}
	// A NIL_EXT tail marks a proper list: store it as NilTerm, the
	// tail ListFrom and ListTail use for proper lists.
	if Opcode(buf[off]) == NilExt {
		tail = term.NilTerm
	}
	off = next2
	l, err = l.ListClose(tail)
	if err != nil {
		return term.Term{}, off, err
	}
	return l, off, nil
}

func decodeMap(buf []byte, off int) (term.Term, int, error) {
	if err := need(buf, off, 4); err != nil {
		return term.Term{}, off, err
	}
	n, next := wire.Get32(buf, off)
	off = next
	keys := make([]term.Term, 0, n)
	vals := make([]term.Term, 0, n)
	for i := uint32(0); i < n; i++ {
		k, nn, err := decodeAt(buf, off)
		if err != nil {
			return term.Term{}, nn, err
		}
		off = nn
		v, nn2, err := decodeAt(buf, off)
		if err != nil {
			return term.Term{}, nn2, err
		}
		off = nn2
		keys = append(keys, k)
		vals = append(vals, v)
	}
	m, err := term.NewMap(keys, vals)
	if err != nil {
		return term.Term{}, off, decErr(off, err.Error())
	}
	return m, off, nil
}

func decodeOldPort(buf []byte, off int) (term.Term, int, error) {
	node, next, err := decodeNodeAtom(buf, off)
	if err != nil {
		return term.Term{}, next, err
	}
	off = next
	if err := need(buf, off, 5); err != nil {
		return term.Term{}, off, err
	}
	id, next2 := wire.Get32(buf, off)
	off = next2
	creation := uint32(buf[off])
	off++
	p, err := term.Port(node, id, creation)
	if err != nil {
		return term.Term{}, off, err
	}
	return p, off, nil
}

func decodeNewPort(buf []byte, off int) (term.Term, int, error) {
	node, next, err := decodeNodeAtom(buf, off)
	if err != nil {
		return term.Term{}, next, err
	}
	off = next
	if err := need(buf, off, 8); err != nil {
		return term.Term{}, off, err
	}
	id, next2 := wire.Get32(buf, off)
	off = next2
	creation, next3 := wire.Get32(buf, off)
	off = next3
	p, err := term.PortFull(node, id, creation)
	if err != nil {
		return term.Term{}, off, err
	}
	return p, off, nil
}

func decodeOldPid(buf []byte, off int) (term.Term, int, error) {
	node, next, err := decodeNodeAtom(buf, off)
	if err != nil {
		return term.Term{}, next, err
	}
	off = next
	if err := need(buf, off, 9); err != nil {
		return term.Term{}, off, err
	}
	id, next2 := wire.Get32(buf, off)
	off = next2
	serial, next3 := wire.Get32(buf, off)
	off = next3
	creation := uint32(buf[off])
	off++
	p, err := term.Pid(node, id, serial, creation)
	if err != nil {
		return term.Term{}, off, err
	}
	return p, off, nil
}

func decodeNewPid(buf []byte, off int) (term.Term, int, error) {
	node, next, err := decodeNodeAtom(buf, off)
	if err != nil {
		return term.Term{}, next, err
	}
	off = next
	if err := need(buf, off, 12); err != nil {
		return term.Term{}, off, err
	}
	id, next2 := wire.Get32(buf, off)
	off = next2
	serial, next3 := wire.Get32(buf, off)
	off = next3
	creation, next4 := wire.Get32(buf, off)
	off = next4
	p, err := term.PidFull(node, id, serial, creation)
	if err != nil {
		return term.Term{}, off, err
	}
	return p, off, nil
}

func decodeOldReference(buf []byte, off int) (term.Term, int, error) {
	node, next, err := decodeNodeAtom(buf, off)
	if err != nil {
		return term.Term{}, next, err
	}
	off = next
	if err := need(buf, off, 5); err != nil {
		return term.Term{}, off, err
	}
	id, next2 := wire.Get32(buf, off)
	off = next2
	creation := uint32(buf[off])
	off++
	r, err := term.Reference(node, []uint32{id}, creation)
	if err != nil {
		return term.Term{}, off, err
	}
	return r, off, nil
}

func decodeNewReference(buf []byte, off int, wideCreation bool) (term.Term, int, error) {
	if err := need(buf, off, 2); err != nil {
		return term.Term{}, off, err
	}
	n16, next := wire.Get16(buf, off)
	off = next
	n := int(n16)
	if n < 1 || n > 3 {
		return term.Term{}, off, decErr(off, "reference id count out of range")
	}
	node, next2, err := decodeNodeAtom(buf, off)
	if err != nil {
		return term.Term{}, next2, err
	}
	off = next2

	var creation uint32
	if wideCreation {
		if err := need(buf, off, 4); err != nil {
			return term.Term{}, off, err
		}
		creation, off = wire.Get32(buf, off)
	} else {
		if err := need(buf, off, 1); err != nil {
			return term.Term{}, off, err
		}
		creation = uint32(buf[off])
		off++
	}

	if err := need(buf, off, 4*n); err != nil {
		return term.Term{}, off, err
	}
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		ids[i], off = wire.Get32(buf, off)
	}
	r, err := term.ReferenceFull(node, ids, creation)
	if err != nil {
		return term.Term{}, off, err
	}
	return r, off, nil
}

var maxInt64Big = big.NewInt(0).SetInt64(1<<63 - 1)
var minInt64Big = big.NewInt(0).SetInt64(-(1 << 63))

func decodeBig(buf []byte, off int, n int) (term.Term, int, error) {
	if err := need(buf, off, 1+n); err != nil {
		return term.Term{}, off, err
	}
	sign := buf[off]
	off++
	digits := buf[off : off+n]
	off += n

	// Little-endian base-256 digits, per the external term format.
	magnitude := new(big.Int)
	base := big.NewInt(256)
	for i := n - 1; i >= 0; i-- {
		magnitude.Mul(magnitude, base)
		magnitude.Add(magnitude, big.NewInt(int64(digits[i])))
	}
	if sign != 0 {
		magnitude.Neg(magnitude)
	}
	if magnitude.Cmp(maxInt64Big) > 0 || magnitude.Cmp(minInt64Big) < 0 {
		return term.Term{}, off, decErr(off, "integer overflow")
	}
	return term.Long(magnitude.Int64()), off, nil
}
