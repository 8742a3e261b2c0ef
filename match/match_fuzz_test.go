package match

// Fuzz patterns and messages. Match and then verify non-error
// results.

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/Comcast/sheens/term"
)

// Fuzz has parameters used to generate random pattern and concrete
// term.Term trees.
type Fuzz struct {
	MapWidth    int
	ArrayWidth  int
	Alphabet    string
	VarAlphabet string
	VarWidth    int
	StringWidth int
	MaxNumber   float64

	Strings float64
	Vars    float64
	Numbers float64
	Arrays  float64
	Maps    float64

	generated int64
}

// NoVars sets Vars to zero so that no variables will be generated;
// use this for the concrete (message) side of a fuzz run.
func (f *Fuzz) NoVars() {
	f.Vars = 0
}

// NewFuzz returns a reasonable, general-purpose Fuzz.
func NewFuzz() *Fuzz {
	return &Fuzz{
		MapWidth:    5,
		ArrayWidth:  5,
		Alphabet:    "abcde",
		VarAlphabet: "UVWXYZ",
		VarWidth:    2,
		StringWidth: 4,
		MaxNumber:   10,

		Strings: 3,
		Vars:    2,
		Numbers: 4,
		Arrays:  3,
		Maps:    3,
	}
}

// Gen generates a random pattern or concrete term.Term.
//
// If Vars is zero, the generated term contains no pattern variables
// and can be used as a concrete message.
func (f *Fuzz) Gen(r *rand.Rand, d int) term.Term {
	f.generated++

	m := f.Strings + f.Numbers + f.Vars

	if 0 < d {
		m += f.Arrays + f.Maps
	}

	t := rand.Float64() * m
	switch {
	case t < f.Strings:
		return f.genString(r)
	case t < f.Strings+f.Numbers:
		return f.genNumber(r)
	case t < f.Strings+f.Numbers+f.Vars:
		return f.genVar(r)
	case t < f.Strings+f.Numbers+f.Vars+f.Arrays:
		return f.genArray(r, d)
	default:
		return f.genMap(r, d)
	}
}

func (f *Fuzz) genString(r *rand.Rand) term.Term {
	n := r.Intn(f.StringWidth-1) + 1
	s := make([]byte, n)
	for i := range s {
		s[i] = f.Alphabet[r.Intn(len(f.Alphabet))]
	}
	return term.String(string(s))
}

func (f *Fuzz) genVar(r *rand.Rand) term.Term {
	n := r.Intn(f.VarWidth-1) + 1
	s := make([]byte, n)
	for i := range s {
		s[i] = f.VarAlphabet[r.Intn(len(f.VarAlphabet))]
	}
	v, err := term.Var(string(s), nil)
	if err != nil {
		panic(err)
	}
	return v
}

func (f *Fuzz) genNumber(r *rand.Rand) term.Term {
	return term.Long(int64(r.Intn(int(f.MaxNumber))))
}

func (f *Fuzz) genArray(r *rand.Rand, d int) term.Term {
	n := r.Intn(f.ArrayWidth)
	l := term.NewList()
	for i := 0; i < n; i++ {
		l, _ = l.ListPush(f.Gen(r, d-1))
	}
	l, _ = l.ListClose(term.NilTerm)
	return l
}

func (f *Fuzz) genMap(r *rand.Rand, d int) term.Term {
	n := r.Intn(f.MapWidth)
	seen := make(map[string]bool, n)
	var keys, vals []term.Term
	for i := 0; i < n; i++ {
		k := f.genString(r)
		ks, _ := k.ToStringValue()
		if seen[ks] {
			continue
		}
		seen[ks] = true
		keys = append(keys, k)
		vals = append(vals, f.Gen(r, d-1))
	}
	mp, err := term.NewMap(keys, vals)
	if err != nil {
		panic(err)
	}
	return mp
}

// TestMatchFuzz matches a bunch of generated patterns against a bunch
// of generated concrete terms, and for every reported match verifies
// that applying the bindings back onto the pattern reproduces a term
// that itself matches the original concrete term. (The applied term is
// not always equal to the concrete term, because map patterns match
// with subset semantics and Apply keeps only the pattern's keys.)
func TestMatchFuzz(t *testing.T) {
	var (
		pats       = 200
		msgsPerPat = 200

		d = 3
		r = rand.New(rand.NewSource(42))
		p = NewFuzz()
		c = NewFuzz()

		attempted = 0
		matched   = 0
		errs      = 0
	)
	c.NoVars()

	then := time.Now()
	for i := 0; i < pats; i++ {
		pat := p.Gen(r, d)
		for j := 0; j < msgsPerPat; j++ {
			concrete := c.Gen(r, d)
			b := NewBindings()
			attempted++
			ok, err := Match(pat, concrete, b)
			if err != nil {
				errs++
				continue
			}
			if !ok {
				continue
			}
			matched++
			result, err := Apply(pat, b)
			if err != nil {
				t.Fatalf("apply after successful match failed: %v", err)
			}
			ok2, err := Match(result, concrete, NewBindings())
			if err != nil || !ok2 {
				t.Fatalf("applied pattern %v no longer matches concrete %v (err=%v)", result, concrete, err)
			}
		}
	}
	elapsed := time.Since(then)

	fmt.Printf(`fuzzed    %d
matched   %f%%
errors    %f%% (%d)
elapsed   %s
generated %d
`,
		attempted,
		100*float64(matched)/float64(attempted),
		100*float64(errs)/float64(attempted), errs,
		elapsed,
		p.generated+c.generated)
}
