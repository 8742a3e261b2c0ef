package term

import "testing"

func TestScalarEquality(t *testing.T) {
	if !Long(3).Equal(Long(3)) {
		t.Fatal("3 should equal 3")
	}
	if Long(3).Equal(Long(4)) {
		t.Fatal("3 should not equal 4")
	}
	if !(Term{}).Equal(Term{}) {
		t.Fatal("default term should equal default term")
	}
	if (Term{}).Equal(Long(0)) {
		t.Fatal("default term should not equal long(0)")
	}
}

func TestAtomInterningStable(t *testing.T) {
	a1 := MustAtom("hello")
	a2 := MustAtom("hello")
	if !a1.Equal(a2) {
		t.Fatal("same atom text should compare equal")
	}
}

func TestTupleInitialization(t *testing.T) {
	tup := NewTuple(2)
	if tup.Initialized() {
		t.Fatal("fresh tuple should not be initialized")
	}
	tup, err := tup.TuplePush(Long(1))
	if err != nil {
		t.Fatal(err)
	}
	if tup.Initialized() {
		t.Fatal("tuple with 1/2 items should not be initialized")
	}
	tup, err = tup.TuplePush(Long(2))
	if err != nil {
		t.Fatal(err)
	}
	if !tup.Initialized() {
		t.Fatal("tuple with 2/2 items should be initialized")
	}
	items, err := tup.ToTuple()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestWrongTypeAccessor(t *testing.T) {
	_, err := Long(1).ToDouble()
	if _, ok := err.(*WrongType); !ok {
		t.Fatalf("expected *WrongType, got %T (%v)", err, err)
	}
}

func TestListCloseRequiredForEncodeCompare(t *testing.T) {
	l := NewList()
	l, _ = l.ListPush(Long(1))
	if l.Initialized() {
		t.Fatal("open list should not be initialized")
	}
	l, err := l.ListClose(NilTerm)
	if err != nil {
		t.Fatal(err)
	}
	if !l.Initialized() {
		t.Fatal("closed list should be initialized")
	}
	proper, err := l.IsProperList()
	if err != nil || !proper {
		t.Fatalf("expected proper list, got %v %v", proper, err)
	}
}

func TestImproperList(t *testing.T) {
	l := NewList()
	l, _ = l.ListPush(Long(1))
	l, err := l.ListClose(Long(2))
	if err != nil {
		t.Fatal(err)
	}
	proper, err := l.IsProperList()
	if err != nil {
		t.Fatal(err)
	}
	if proper {
		t.Fatal("list with non-nil tail should not be proper")
	}
}

func TestMapSortsAndDedups(t *testing.T) {
	m, err := NewMap(
		[]Term{Long(3), Long(1), Long(1)},
		[]Term{String("c"), String("a"), String("a-again")},
	)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := m.MapLen()
	if n != 2 {
		t.Fatalf("expected 2 entries after dedup, got %d", n)
	}
	v, found, err := m.MapGet(Long(1))
	if err != nil || !found {
		t.Fatalf("expected to find key 1: %v %v", found, err)
	}
	s, _ := v.ToStringValue()
	if s != "a-again" {
		t.Fatalf("expected last-inserted value to win, got %q", s)
	}
}

func TestPidMasking(t *testing.T) {
	node := MustAtom("a@h")
	p, err := Pid(node, 1<<28+1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	_, id, _, creation, err := p.ToPid()
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Fatalf("expected id masked to 1, got %d", id)
	}
	if creation != 3 {
		t.Fatalf("expected creation 3 mod 4 = 3, got %d", creation)
	}
}

func TestCreationReducedModFour(t *testing.T) {
	node := MustAtom("a@h")
	p, err := Pid(node, 1, 2, 7)
	if err != nil {
		t.Fatal(err)
	}
	_, _, _, creation, _ := p.ToPid()
	if creation != 3 {
		t.Fatalf("expected 7 mod 4 = 3, got %d", creation)
	}
}

func TestOrderingAcrossKinds(t *testing.T) {
	n := Long(1)
	a := MustAtom("x")
	if Compare(n, a) >= 0 {
		t.Fatal("number should order before atom")
	}
	tup := TupleFrom(Long(1))
	mp, _ := NewMap(nil, nil)
	if Compare(tup, mp) >= 0 {
		t.Fatal("tuple should order before map")
	}
	nilList, _ := NewList().ListClose(NilTerm)
	str := String("x")
	if Compare(nilList, str) >= 0 {
		t.Fatal("nil should order before string")
	}
}

func TestPrintAtomQuoting(t *testing.T) {
	if MustAtom("abc").String() != "abc" {
		t.Fatalf("bare atom should print unquoted, got %q", MustAtom("abc").String())
	}
	if MustAtom("Abc").String() != "'Abc'" {
		t.Fatalf("uppercase-leading atom should be quoted, got %q", MustAtom("Abc").String())
	}
}

func TestPrintBinary(t *testing.T) {
	b := Binary([]byte("abc"))
	if got, want := b.String(), `<<"abc">>`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrintTuple(t *testing.T) {
	tup := TupleFrom(MustAtom("abc"), MustAtom("efg"))
	if got, want := tup.String(), "{abc,efg}"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
