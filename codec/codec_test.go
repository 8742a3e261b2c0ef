package codec

import (
	"testing"

	"github.com/Comcast/sheens/term"
)

func roundTrip(t *testing.T, b []byte) term.Term {
	t.Helper()
	v, err := Decode(b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	out, err := Encode(v)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if EncodeSize(v) < len(out)-1 {
		t.Fatalf("EncodeSize(%v) = %d is smaller than actual emitted length %d", v, EncodeSize(v), len(out)-1)
	}
	v2, err := Decode(out)
	if err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if !v.Equal(v2) {
		t.Fatalf("round trip mismatch: %v != %v", v, v2)
	}
	return v
}

func TestDecodeAtom(t *testing.T) {
	b := []byte{131, 100, 0, 3, 'a', 'b', 'c'}
	v := roundTrip(t, b)
	s, err := v.ToAtomString()
	if err != nil || s != "abc" {
		t.Fatalf("expected atom abc, got %q err=%v", s, err)
	}
}

func TestDecodeBoolAtom(t *testing.T) {
	b := []byte{131, 100, 0, 4, 't', 'r', 'u', 'e'}
	v, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type() != term.KindBool {
		t.Fatalf("expected KindBool, got %v", v.Type())
	}
	got, err := v.ToBool()
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestEncodeDecodeBoolRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		raw, err := Encode(term.Bool(b))
		if err != nil {
			t.Fatal(err)
		}
		got, err := Decode(raw)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(term.Bool(b)) {
			t.Fatalf("round trip for %v: got %v", b, got)
		}
	}
}

func TestDecodeBinary(t *testing.T) {
	b := []byte{131, 109, 0, 0, 0, 3, 'a', 'b', 'c'}
	v := roundTrip(t, b)
	if v.String() != `<<"abc">>` {
		t.Fatalf("got %q", v.String())
	}
}

func TestDecodeTuple(t *testing.T) {
	b := []byte{131, 104, 2,
		100, 0, 3, 'a', 'b', 'c',
		100, 0, 3, 'e', 'f', 'g',
	}
	v := roundTrip(t, b)
	if v.String() != "{abc,efg}" {
		t.Fatalf("got %q", v.String())
	}
}

func TestDecodeMap(t *testing.T) {
	b := []byte{131, 116, 0, 0, 0, 2,
		97, 1, 97, 2,
		100, 0, 1, 'a', 97, 3,
	}
	v := roundTrip(t, b)
	if v.String() != "#{1 => 2, a => 3}" {
		t.Fatalf("got %q", v.String())
	}
}

func TestPidRoundTripPreservesMaskingAndCreation(t *testing.T) {
	node := term.MustAtom("a@h")
	p, err := term.Pid(node, 1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	_, id, serial, creation, err := dec.ToPid()
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 || serial != 2 || creation != 3 {
		t.Fatalf("got id=%d serial=%d creation=%d", id, serial, creation)
	}
}

func TestDecodeOldFloat(t *testing.T) {
	raw := make([]byte, 31)
	copy(raw, []byte("3.14000000000000012434e+00"))
	b := append([]byte{131, 99}, raw...)
	v, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	f, err := v.ToDouble()
	if err != nil {
		t.Fatal(err)
	}
	if f < 3.13 || f > 3.15 {
		t.Fatalf("unexpected float value %v", f)
	}
}

func TestDecodeStringAsListOfBytes(t *testing.T) {
	// LIST_EXT of one small integer in [0,255], nil tail: should
	// decode as a list, not collapse to a string (only STRING_EXT
	// does that); this asserts we don't conflate the two opcodes.
	b := []byte{131, 108, 0, 0, 0, 1, 97, 65, 106}
	v, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type() != term.KindList {
		t.Fatalf("expected list, got %s", v.Type())
	}
}

func TestDecodeShortReadFails(t *testing.T) {
	b := []byte{131, 100, 0, 5, 'a', 'b'}
	if _, err := Decode(b); err == nil {
		t.Fatal("expected a decode error for a truncated atom")
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	b := []byte{131, 255}
	if _, err := Decode(b); err == nil {
		t.Fatal("expected a decode error for an unknown opcode")
	}
}

func TestDecodeMissingVersionByte(t *testing.T) {
	b := []byte{100, 0, 1, 'a'}
	if _, err := Decode(b); err == nil {
		t.Fatal("expected a decode error for a missing version byte")
	}
}

func TestImproperListRoundTrip(t *testing.T) {
	l := term.NewList()
	l, _ = l.ListPush(term.Long(1))
	l, err := l.ListClose(term.Long(2))
	if err != nil {
		t.Fatal(err)
	}
	enc, err := Encode(l)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	proper, _ := dec.IsProperList()
	if proper {
		t.Fatal("expected improper list to round trip as improper")
	}
}

func TestEncodeSizeAgreesAcrossKinds(t *testing.T) {
	values := []term.Term{
		term.Long(0),
		term.Long(255),
		term.Long(256),
		term.Long(-1),
		term.Long(1 << 40),
		term.Double(3.25),
		term.MustAtom("abc"),
		term.String("hello"),
		term.Binary([]byte{1, 2, 3}),
		term.TupleFrom(term.Long(1), term.MustAtom("x")),
		term.ListFrom(term.Long(1), term.Long(2)),
	}
	for _, v := range values {
		out, err := Encode(v)
		if err != nil {
			t.Fatalf("encode(%v): %v", v, err)
		}
		if got, want := EncodeSize(v), len(out)-1; got < want {
			t.Fatalf("EncodeSize(%v) = %d, actual body length = %d", v, got, want)
		}
		back, err := Decode(out)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !back.Equal(v) {
			t.Fatalf("round trip mismatch for %v: got %v", v, back)
		}
	}
}

func TestSmallAtomExtChosenForShortNames(t *testing.T) {
	v := term.MustAtom("abc")
	out, err := Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	if Opcode(out[1]) != SmallAtomExt {
		t.Fatalf("expected SMALL_ATOM_EXT, got opcode %d", out[1])
	}
}
