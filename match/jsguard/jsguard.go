// Package jsguard implements match.Evaluator with small ECMAScript
// expressions, for pattern hints that go beyond the built-in
// int/float/atom/string/binary/any set (e.g. "A::js(\"candidate > 0\")").
//
// Modeled on the runtime's other ECMAScript integration: a fresh
// goja.Runtime per call, a candidate value exposed to the script, and
// an Interrupt-based timeout so a runaway guard can't hang matching.
package jsguard

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/Comcast/sheens/term"
)

// InterruptedMessage is the string value used to interrupt a guard
// expression that runs past its deadline.
var InterruptedMessage = "jsguard: timeout"

// Interrupted is returned by Eval when a guard expression is
// interrupted.
var Interrupted = errors.New(InterruptedMessage)

// Evaluator runs guard expressions with a per-call timeout.
type Evaluator struct {
	// Timeout bounds how long a single guard expression may run.
	// Zero means no timeout.
	Timeout time.Duration
}

// NewEvaluator returns an Evaluator with a conservative default
// timeout.
func NewEvaluator() *Evaluator {
	return &Evaluator{Timeout: 100 * time.Millisecond}
}

// EvalHint implements match.Evaluator. hint must be a 2-tuple
// {js, "<expression>"} as produced by the pattern parser for a
// "::js(\"...\")" hint; the expression is evaluated with the bound
// variable "candidate" set to a plain Go value derived from c, and
// must yield a truthy value for the match to succeed.
func (e *Evaluator) EvalHint(hint, c term.Term) (bool, error) {
	items, err := hint.ToTuple()
	if err != nil {
		return false, fmt.Errorf("jsguard: hint is not a 2-tuple: %w", err)
	}
	if len(items) != 2 {
		return false, fmt.Errorf("jsguard: hint tuple has arity %d, want 2", len(items))
	}
	name, err := items[0].ToAtomString()
	if err != nil {
		return false, err
	}
	if name != "js" {
		return false, fmt.Errorf("jsguard: unrecognized hint %q", name)
	}
	expr, err := items[1].ToStringValue()
	if err != nil {
		return false, fmt.Errorf("jsguard: hint argument is not a string: %w", err)
	}

	candidate, err := toGo(c)
	if err != nil {
		return false, err
	}

	o := goja.New()
	if err := o.Set("candidate", candidate); err != nil {
		return false, err
	}

	if e.Timeout > 0 {
		timer := time.AfterFunc(e.Timeout, func() {
			o.Interrupt(InterruptedMessage)
		})
		defer timer.Stop()
	}

	v, err := o.RunString(expr)
	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return false, Interrupted
		}
		return false, err
	}
	return v.ToBoolean(), nil
}

// toGo converts a term.Term to a plain Go value suitable for exposure
// to a goja.Runtime: numbers, strings, bools-as-atoms, slices, and
// maps, recursively.
func toGo(t term.Term) (interface{}, error) {
	switch t.Type() {
	case term.KindLong:
		n, _ := t.ToLong()
		return n, nil
	case term.KindDouble:
		f, _ := t.ToDouble()
		return f, nil
	case term.KindAtom:
		s, _ := t.ToAtomString()
		return s, nil
	case term.KindString:
		return t.ToStringValue()
	case term.KindBinary:
		return t.ToBinary()
	case term.KindList:
		items, err := t.ToList()
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(items))
		for i, it := range items {
			v, err := toGo(it)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case term.KindTuple:
		items, err := t.ToTuple()
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(items))
		for i, it := range items {
			v, err := toGo(it)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case term.KindMap:
		keys, vals, err := t.MapEntries()
		if err != nil {
			return nil, err
		}
		out := make(map[string]interface{}, len(keys))
		for i := range keys {
			ks, err := toGoMapKey(keys[i])
			if err != nil {
				return nil, err
			}
			v, err := toGo(vals[i])
			if err != nil {
				return nil, err
			}
			out[ks] = v
		}
		return out, nil
	default:
		return t.String(), nil
	}
}

func toGoMapKey(k term.Term) (string, error) {
	switch k.Type() {
	case term.KindAtom:
		return k.ToAtomString()
	case term.KindString:
		return k.ToStringValue()
	default:
		return k.String(), nil
	}
}
