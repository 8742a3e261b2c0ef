package match

import (
	"strconv"

	"github.com/Comcast/sheens/atom"
)

// Unbound is returned by Apply when a pattern references a variable
// with no binding.
type Unbound struct {
	Name atom.Atom
}

func (e *Unbound) Error() string {
	return "match: unbound variable ?" + atom.Default().Get(e.Name)
}

// ParseError reports a malformed textual pattern.
type ParseError struct {
	Reason string
	Pos    int
}

func (e *ParseError) Error() string {
	return "match: parse error at position " + strconv.Itoa(e.Pos) + ": " + e.Reason
}
