package codec

import (
	"fmt"

	"github.com/Comcast/sheens/atom"
	"github.com/Comcast/sheens/internal/wire"
	"github.com/Comcast/sheens/term"
)

// EncodeError reports that the codec could not produce wire bytes for
// a term (e.g. an uninitialized tuple or list was supplied).
type EncodeError struct {
	Reason string
}

func (e *EncodeError) Error() string { return "codec: encode error: " + e.Reason }

// Encode renders t as a version-prefixed top-level term.
func Encode(t term.Term) ([]byte, error) {
	buf := make([]byte, 0, EncodeSize(t)+1)
	buf = append(buf, byte(Version))
	return encodeAt(buf, t)
}

// EncodeNested appends t's wire encoding (no version byte) to buf and
// returns the extended slice.
func EncodeNested(buf []byte, t term.Term) ([]byte, error) {
	return encodeAt(buf, t)
}

// EncodeSize returns an exact upper bound on the number of bytes
// Encode(t) will emit for the term body (not including the version
// byte); decoding that output must reproduce t.
func EncodeSize(t term.Term) int {
	if !t.Initialized() {
		return 1
	}
	switch t.Type() {
	case term.KindLong:
		n, _ := t.ToLong()
		return sizeLong(n)
	case term.KindDouble:
		return 9
	case term.KindBool:
		b, _ := t.ToBool()
		if b {
			return sizeAtomLen(len("true"))
		}
		return sizeAtomLen(len("false"))
	case term.KindAtom:
		s, _ := t.ToAtomString()
		return sizeAtomLen(len(s))
	case term.KindString:
		s, _ := t.ToStringValue()
		return 3 + len(s)
	case term.KindBinary:
		b, _ := t.ToBinary()
		return 5 + len(b)
	case term.KindTuple:
		items, _ := t.ToTuple()
		size := 1
		if len(items) > 255 {
			size += 4
		} else {
			size++
		}
		for _, it := range items {
			size += EncodeSize(it)
		}
		return size
	case term.KindList:
		items, _ := t.ToList()
		if len(items) == 0 {
			return 1
		}
		size := 5
		for _, it := range items {
			size += EncodeSize(it)
		}
		tail, _ := t.ListTail()
		size += EncodeSize(tail)
		return size
	case term.KindMap:
		keys, vals, _ := t.MapEntries()
		size := 5
		for i := range keys {
			size += EncodeSize(keys[i]) + EncodeSize(vals[i])
		}
		return size
	case term.KindPid:
		return 1 + sizeNodeAtom(t) + 12
	case term.KindPort:
		return 1 + sizeNodeAtom(t) + 8
	case term.KindReference:
		_, ids, _, _ := t.ToReference()
		return 1 + 2 + sizeNodeAtom(t) + 4 + 4*len(ids)
	case term.KindTrace:
		return 64
	case term.KindVar:
		return 0
	default:
		return 0
	}
}

func sizeNodeAtom(t term.Term) int {
	switch t.Type() {
	case term.KindPid:
		node, _, _, _, _ := t.ToPid()
		return sizeAtomLen(len(atomTableString(node)))
	case term.KindPort:
		node, _, _, _ := t.ToPort()
		return sizeAtomLen(len(atomTableString(node)))
	case term.KindReference:
		node, _, _, _ := t.ToReference()
		return sizeAtomLen(len(atomTableString(node)))
	}
	return 0
}

func sizeAtomLen(n int) int {
	if n <= 255 {
		return 2 + n
	}
	return 3 + n
}

func sizeLong(n int64) int {
	if 0 <= n && n <= 255 {
		return 2
	}
	if n >= -(1<<31) && n < (1<<31) {
		return 5
	}
	return 1 + 1 + 1 + 8 // SMALL_BIG_EXT header + up to 8 digit bytes
}

func encodeAt(buf []byte, t term.Term) ([]byte, error) {
	if !t.Initialized() {
		return nil, &EncodeError{Reason: "term not initialized"}
	}
	switch t.Type() {
	case term.KindLong:
		n, _ := t.ToLong()
		return encodeLong(buf, n)
	case term.KindDouble:
		f, _ := t.ToDouble()
		buf = append(buf, byte(NewFloatExt))
		b := make([]byte, 8)
		wire.PutFloat64(b, 0, f)
		return append(buf, b...), nil
	case term.KindBool:
		b, _ := t.ToBool()
		if b {
			return encodeAtomString(buf, "true")
		}
		return encodeAtomString(buf, "false")
	case term.KindAtom:
		s, _ := t.ToAtomString()
		return encodeAtomString(buf, s)
	case term.KindString:
		s, _ := t.ToStringValue()
		if len(s) > 65535 {
			return nil, &EncodeError{Reason: "string too long for STRING_EXT"}
		}
		buf = append(buf, byte(StringExt))
		b := make([]byte, 2)
		wire.Put16(b, 0, uint16(len(s)))
		buf = append(buf, b...)
		return append(buf, s...), nil
	case term.KindBinary:
		bs, _ := t.ToBinary()
		buf = append(buf, byte(BinaryExt))
		b := make([]byte, 4)
		wire.Put32(b, 0, uint32(len(bs)))
		buf = append(buf, b...)
		return append(buf, bs...), nil
	case term.KindTuple:
		return encodeTuple(buf, t)
	case term.KindList:
		return encodeList(buf, t)
	case term.KindMap:
		return encodeMapTerm(buf, t)
	case term.KindPid:
		return encodePid(buf, t)
	case term.KindPort:
		return encodePort(buf, t)
	case term.KindReference:
		return encodeReference(buf, t)
	default:
		return nil, &EncodeError{Reason: fmt.Sprintf("kind %s is not encodable", t.Type())}
	}
}

func atomTableString(a atom.Atom) string { return atom.Default().Get(a) }

func encodeLong(buf []byte, n int64) ([]byte, error) {
	if 0 <= n && n <= 255 {
		return append(buf, byte(SmallIntegerExt), byte(n)), nil
	}
	if n >= -(1<<31) && n < (1<<31) {
		buf = append(buf, byte(IntegerExt))
		b := make([]byte, 4)
		wire.Put32(b, 0, uint32(int32(n)))
		return append(buf, b...), nil
	}
	return encodeBigLong(buf, n)
}

func encodeBigLong(buf []byte, n int64) ([]byte, error) {
	sign := byte(0)
	u := uint64(n)
	if n < 0 {
		sign = 1
		u = uint64(-n)
	}
	var digits []byte
	for u > 0 {
		digits = append(digits, byte(u&0xff))
		u >>= 8
	}
	if len(digits) == 0 {
		digits = []byte{0}
	}
	buf = append(buf, byte(SmallBigExt), byte(len(digits)), sign)
	return append(buf, digits...), nil
}

func encodeAtomString(buf []byte, s string) ([]byte, error) {
	if len(s) > 255 {
		buf = append(buf, byte(AtomExt))
		b := make([]byte, 2)
		wire.Put16(b, 0, uint16(len(s)))
		buf = append(buf, b...)
		return append(buf, s...), nil
	}
	buf = append(buf, byte(SmallAtomExt), byte(len(s)))
	return append(buf, s...), nil
}

func encodeTuple(buf []byte, t term.Term) ([]byte, error) {
	items, _ := t.ToTuple()
	if len(items) <= 255 {
		buf = append(buf, byte(SmallTupleExt), byte(len(items)))
	} else {
		buf = append(buf, byte(LargeTupleExt))
		b := make([]byte, 4)
		wire.Put32(b, 0, uint32(len(items)))
		buf = append(buf, b...)
	}
	var err error
	for _, it := range items {
		buf, err = encodeAt(buf, it)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeList(buf []byte, t term.Term) ([]byte, error) {
	items, _ := t.ToList()
	if len(items) == 0 {
		return append(buf, byte(NilExt)), nil
	}
	buf = append(buf, byte(ListExt))
	b := make([]byte, 4)
	wire.Put32(b, 0, uint32(len(items)))
	buf = append(buf, b...)
	var err error
	for _, it := range items {
		buf, err = encodeAt(buf, it)
		if err != nil {
			return nil, err
		}
	}
	tail, _ := t.ListTail()
	return encodeAt(buf, tail)
}

func encodeMapTerm(buf []byte, t term.Term) ([]byte, error) {
	keys, vals, _ := t.MapEntries()
	buf = append(buf, byte(MapExt))
	b := make([]byte, 4)
	wire.Put32(b, 0, uint32(len(keys)))
	buf = append(buf, b...)
	var err error
	for i := range keys {
		buf, err = encodeAt(buf, keys[i])
		if err != nil {
			return nil, err
		}
		buf, err = encodeAt(buf, vals[i])
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeNodeAtom(buf []byte, s string) ([]byte, error) {
	return encodeAtomString(buf, s)
}

func encodePid(buf []byte, t term.Term) ([]byte, error) {
	node, id, serial, creation, _ := t.ToPid()
	var err error
	buf = append(buf, byte(NewPidExt))
	buf, err = encodeNodeAtom(buf, atomTableString(node))
	if err != nil {
		return nil, err
	}
	b := make([]byte, 12)
	wire.Put32(b, 0, id)
	wire.Put32(b, 4, serial)
	wire.Put32(b, 8, creation)
	return append(buf, b...), nil
}

func encodePort(buf []byte, t term.Term) ([]byte, error) {
	node, id, creation, _ := t.ToPort()
	var err error
	buf = append(buf, byte(NewPortExt))
	buf, err = encodeNodeAtom(buf, atomTableString(node))
	if err != nil {
		return nil, err
	}
	b := make([]byte, 8)
	wire.Put32(b, 0, id)
	wire.Put32(b, 4, creation)
	return append(buf, b...), nil
}

func encodeReference(buf []byte, t term.Term) ([]byte, error) {
	node, ids, creation, _ := t.ToReference()
	var err error
	buf = append(buf, byte(NewerReferenceExt))
	b2 := make([]byte, 2)
	wire.Put16(b2, 0, uint16(len(ids)))
	buf = append(buf, b2...)
	buf, err = encodeNodeAtom(buf, atomTableString(node))
	if err != nil {
		return nil, err
	}
	b := make([]byte, 4)
	wire.Put32(b, 0, creation)
	buf = append(buf, b...)
	for _, id := range ids {
		idb := make([]byte, 4)
		wire.Put32(idb, 0, id)
		buf = append(buf, idb...)
	}
	return buf, nil
}

