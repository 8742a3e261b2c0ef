package term

import "bytes"

// rank implements the runtime's canonical kind ordering:
//
//	number < atom < reference < port < pid < tuple < map < nil < string < list < binary < var
//
// "nil" is the closed, zero-length proper list — the wire's NIL_EXT —
// which this model represents as an ordinary (empty) KindList rather
// than a dedicated kind; rank() singles it out so ordering still
// matches the runtime's term order. See DESIGN.md, "ordering of nil".
// Booleans rank and compare as the atoms true and false.
func rank(t Term) int {
	switch t.kind {
	case KindLong, KindDouble:
		return 0
	case KindAtom, KindBool:
		return 1
	case KindReference:
		return 2
	case KindPort:
		return 3
	case KindPid:
		return 4
	case KindTuple:
		return 5
	case KindMap:
		return 6
	case KindList:
		if len(t.payload.list.items) == 0 {
			return 7
		}
		return 9
	case KindString:
		return 8
	case KindBinary:
		return 10
	case KindVar:
		return 11
	default:
		return -1
	}
}

// Compare implements the runtime's canonical term order, returning a
// negative number, zero, or a positive number as a < b, a == b, or
// a > b.  Numeric comparison promotes integers to double where
// needed so that 1 and 1.0 compare equal in rank (though they remain
// distinguishable by Kind via Term.Equal).
func Compare(a, b Term) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch a.kind {
	case KindLong, KindDouble:
		return compareNumeric(a, b)
	case KindAtom, KindBool:
		return bytes.Compare([]byte(atomBytes(a)), []byte(atomBytes(b)))
	case KindReference:
		return compareRef(a.payload.ref, b.payload.ref)
	case KindPort:
		return comparePort(a.payload.port, b.payload.port)
	case KindPid:
		return comparePid(a.payload.pid, b.payload.pid)
	case KindTuple:
		return compareTermSlices(a.payload.tuple.items, b.payload.tuple.items)
	case KindMap:
		return compareMap(a, b)
	case KindList:
		if len(a.payload.list.items) == 0 {
			return 0 // both rank as "nil"
		}
		return compareList(a, b)
	case KindString:
		as, _ := a.ToStringValue()
		bs, _ := b.ToStringValue()
		return bytes.Compare([]byte(as), []byte(bs))
	case KindBinary:
		ab, _ := a.ToBinary()
		bb, _ := b.ToBinary()
		return bytes.Compare(ab, bb)
	case KindVar:
		if a.varName != b.varName {
			return int(a.varName) - int(b.varName)
		}
		if a.varHint == nil || b.varHint == nil {
			if a.varHint == b.varHint {
				return 0
			}
			if a.varHint == nil {
				return -1
			}
			return 1
		}
		return Compare(*a.varHint, *b.varHint)
	default:
		return 0
	}
}

func atomBytes(t Term) string {
	if t.kind == KindBool {
		if t.bool_ {
			return "true"
		}
		return "false"
	}
	s, _ := t.ToAtomString()
	return s
}

func asFloat(t Term) float64 {
	switch t.kind {
	case KindLong:
		return float64(t.long)
	case KindDouble:
		return t.double
	default:
		return 0
	}
}

func compareNumeric(a, b Term) int {
	if a.kind == KindLong && b.kind == KindLong {
		switch {
		case a.long < b.long:
			return -1
		case a.long > b.long:
			return 1
		default:
			return 0
		}
	}
	fa, fb := asFloat(a), asFloat(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

func compareUint32s(as, bs []uint32) int {
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		if as[i] != bs[i] {
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}
	return len(as) - len(bs)
}

func compareRef(a, b refBody) int {
	if a.node != b.node {
		return int(a.node) - int(b.node)
	}
	if c := compareUint32s(a.ids[:a.n], b.ids[:b.n]); c != 0 {
		return c
	}
	return int(a.creation) - int(b.creation)
}

func comparePort(a, b portBody) int {
	if a.node != b.node {
		return int(a.node) - int(b.node)
	}
	if a.id != b.id {
		return int(a.id) - int(b.id)
	}
	return int(a.creation) - int(b.creation)
}

func comparePid(a, b pidBody) int {
	if a.node != b.node {
		return int(a.node) - int(b.node)
	}
	if a.id != b.id {
		return int(a.id) - int(b.id)
	}
	if a.serial != b.serial {
		return int(a.serial) - int(b.serial)
	}
	return int(a.creation) - int(b.creation)
}

func compareTermSlices(as, bs []Term) int {
	if len(as) != len(bs) {
		return len(as) - len(bs)
	}
	for i := range as {
		if c := Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareList(a, b Term) int {
	al, bl := a.payload.list.items, b.payload.list.items
	if len(al) != len(bl) {
		return len(al) - len(bl)
	}
	for i := range al {
		if c := Compare(al[i], bl[i]); c != 0 {
			return c
		}
	}
	return Compare(a.payload.list.tail, b.payload.list.tail)
}

func compareMap(a, b Term) int {
	am, bm := a.payload.mp, b.payload.mp
	if len(am.keys) != len(bm.keys) {
		return len(am.keys) - len(bm.keys)
	}
	for i := range am.keys {
		if c := Compare(am.keys[i], bm.keys[i]); c != 0 {
			return c
		}
		if c := Compare(am.vals[i], bm.vals[i]); c != 0 {
			return c
		}
	}
	return 0
}
