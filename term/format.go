package term

import (
	"strconv"
	"strings"

	"github.com/Comcast/sheens/atom"
)

// String renders t in the runtime's canonical text form.
func (t Term) String() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t Term) writeTo(sb *strings.Builder) {
	switch t.kind {
	case KindNone:
		sb.WriteString("<none>")
	case KindLong:
		sb.WriteString(strconv.FormatInt(t.long, 10))
	case KindDouble:
		sb.WriteString(formatFloat(t.double))
	case KindBool:
		if t.bool_ {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindAtom:
		writeAtom(sb, atomBytes(t))
	case KindString:
		s, _ := t.ToStringValue()
		sb.WriteByte('"')
		sb.WriteString(s)
		sb.WriteByte('"')
	case KindBinary:
		b, _ := t.ToBinary()
		sb.WriteString("<<")
		writeBinaryBody(sb, b)
		sb.WriteString(">>")
	case KindTuple:
		sb.WriteByte('{')
		items, _ := t.ToTuple()
		for i, it := range items {
			if i > 0 {
				sb.WriteByte(',')
			}
			it.writeTo(sb)
		}
		sb.WriteByte('}')
	case KindList:
		items, _ := t.ToList()
		if len(items) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteByte('[')
		for i, it := range items {
			if i > 0 {
				sb.WriteByte(',')
			}
			it.writeTo(sb)
		}
		tail, _ := t.ListTail()
		if !tail.Equal(NilTerm) {
			sb.WriteByte('|')
			tail.writeTo(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteString("#{")
		keys, vals, _ := t.MapEntries()
		for i := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			keys[i].writeTo(sb)
			sb.WriteString(" => ")
			vals[i].writeTo(sb)
		}
		sb.WriteByte('}')
	case KindPid:
		node, id, serial, creation, _ := t.ToPid()
		sb.WriteString("#Pid<")
		writeAtom(sb, atomTableGet(node))
		sb.WriteByte('.')
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
		sb.WriteByte('.')
		sb.WriteString(strconv.FormatUint(uint64(serial), 10))
		sb.WriteByte('.')
		sb.WriteString(strconv.FormatUint(uint64(creation), 10))
		sb.WriteByte('>')
	case KindPort:
		node, id, creation, _ := t.ToPort()
		sb.WriteString("#Port<")
		writeAtom(sb, atomTableGet(node))
		sb.WriteByte('.')
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
		sb.WriteByte('.')
		sb.WriteString(strconv.FormatUint(uint64(creation), 10))
		sb.WriteByte('>')
	case KindReference:
		node, ids, creation, _ := t.ToReference()
		sb.WriteString("#Ref<")
		writeAtom(sb, atomTableGet(node))
		for _, id := range ids {
			sb.WriteByte('.')
			sb.WriteString(strconv.FormatUint(uint64(id), 10))
		}
		sb.WriteByte('.')
		sb.WriteString(strconv.FormatUint(uint64(creation), 10))
		sb.WriteByte('>')
	case KindTrace:
		serial, prev, label, from, flags, _ := t.ToTrace()
		sb.WriteString("#Trace<")
		sb.WriteString(strconv.FormatInt(serial, 10))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatInt(prev, 10))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatInt(label, 10))
		sb.WriteByte(',')
		from.writeTo(sb)
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatInt(flags, 10))
		sb.WriteByte('>')
	case KindVar:
		sb.WriteByte('?')
		sb.WriteString(atomTableGet(t.varName))
		if t.varHint != nil {
			sb.WriteString("::")
			t.varHint.writeTo(sb)
		}
	}
}

func atomTableGet(a atom.Atom) string { return atom.Default().Get(a) }

func writeBinaryBody(sb *strings.Builder, b []byte) {
	printable := true
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			printable = false
			break
		}
	}
	if printable {
		sb.WriteByte('"')
		sb.Write(b)
		sb.WriteByte('"')
		return
	}
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(c), 10))
	}
}

// writeAtom prints an atom bare when it starts with a lowercase
// letter and contains no spaces or control characters, else quoted.
func writeAtom(sb *strings.Builder, s string) {
	if isBareAtom(s) {
		sb.WriteString(s)
		return
	}
	sb.WriteByte('\'')
	for _, r := range s {
		if r == '\'' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('\'')
}

func isBareAtom(s string) bool {
	if s == "" {
		return false
	}
	if s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for _, r := range s {
		if r == ' ' || r == '\'' || r == '\\' {
			return false
		}
		if r < 0x20 {
			return false
		}
	}
	return true
}

// formatFloat produces the shortest decimal representation that
// round-trips, appending ".0" when that text has neither a decimal
// point nor an exponent so it prints distinctly from an integer.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
