// Package transport defines the envelope exchanged between node
// mailboxes: a control-message tag plus sender/recipient addresses,
// an optional reference and trace token, and a payload term.
package transport

import (
	"github.com/Comcast/sheens/atom"
	"github.com/Comcast/sheens/term"
)

// ControlType identifies the kind of control message an envelope
// carries, mirroring the runtime's distributed-protocol tags.
type ControlType int

const (
	Send ControlType = iota
	SendTT
	Exit
	ExitTT
	Link
	Unlink
	NodeLink
	NodeUnlink
	RegSend
	RegSendTT
	Exit2
	Exit2TT
	MonitorP
	DemonitorP
	MonitorPExit
)

func (c ControlType) String() string {
	switch c {
	case Send:
		return "SEND"
	case SendTT:
		return "SEND_TT"
	case Exit:
		return "EXIT"
	case ExitTT:
		return "EXIT_TT"
	case Link:
		return "LINK"
	case Unlink:
		return "UNLINK"
	case NodeLink:
		return "NODE_LINK"
	case NodeUnlink:
		return "NODE_UNLINK"
	case RegSend:
		return "REG_SEND"
	case RegSendTT:
		return "REG_SEND_TT"
	case Exit2:
		return "EXIT2"
	case Exit2TT:
		return "EXIT2_TT"
	case MonitorP:
		return "MONITOR_P"
	case DemonitorP:
		return "DEMONITOR_P"
	case MonitorPExit:
		return "MONITOR_P_EXIT"
	default:
		return "UNKNOWN"
	}
}

// IsExit reports whether c is one of the EXIT/EXIT2 variants (with or
// without a trace token), the set that the dispatcher both unlinks on
// and enqueues.
func (c ControlType) IsExit() bool {
	switch c {
	case Exit, ExitTT, Exit2, Exit2TT:
		return true
	default:
		return false
	}
}

// Message is a transport envelope. The zero value has Type Send and
// every address/ref/trace/payload field absent; accessors on an
// absent field return a zero term.Term and false, never an error.
type Message struct {
	Type      ControlType
	Sender    term.Term
	Recipient term.Term
	Ref       term.Term
	Trace     term.Term
	Payload   term.Term

	errFlag bool
}

// New returns a Message of the given type addressed from sender to
// recipient, with no ref, trace, or payload set.
func New(t ControlType, sender, recipient term.Term) *Message {
	return &Message{Type: t, Sender: sender, Recipient: recipient}
}

// WithRef attaches a reference term (used by MONITOR_P/DEMONITOR_P/
// MONITOR_P_EXIT) and returns m for chaining.
func (m *Message) WithRef(ref term.Term) *Message {
	m.Ref = ref
	return m
}

// WithTrace attaches a trace token and returns m for chaining.
func (m *Message) WithTrace(tok term.Term) *Message {
	m.Trace = tok
	return m
}

// WithPayload attaches the carried value and returns m for chaining.
func (m *Message) WithPayload(p term.Term) *Message {
	m.Payload = p
	return m
}

// SetErrorFlag marks the message as having encountered a dispatch
// error; the message is preserved rather than dropped.
func (m *Message) SetErrorFlag() { m.errFlag = true }

// ErrorFlag reports whether SetErrorFlag was called.
func (m *Message) ErrorFlag() bool { return m.errFlag }

// SenderPid returns the sender as a pid, if the sender field is a
// pid; (zero term.Term, false) otherwise.
func (m *Message) SenderPid() (term.Term, bool) {
	if m.Sender.Type() == term.KindPid {
		return m.Sender, true
	}
	return term.Term{}, false
}

// RecipientPid returns the recipient as a pid, if addressed that way.
func (m *Message) RecipientPid() (term.Term, bool) {
	if m.Recipient.Type() == term.KindPid {
		return m.Recipient, true
	}
	return term.Term{}, false
}

// RecipientName returns the recipient as a registered name, if
// addressed that way.
func (m *Message) RecipientName() (atom.Atom, bool) {
	if m.Recipient.Type() == term.KindAtom {
		a, err := m.Recipient.ToAtomIndex()
		if err != nil {
			return 0, false
		}
		return a, true
	}
	return 0, false
}

// HasRef reports whether a reference was attached.
func (m *Message) HasRef() bool { return m.Ref.Type() == term.KindReference }

// HasTrace reports whether a trace token was attached.
func (m *Message) HasTrace() bool { return m.Trace.Type() != term.KindNone }

// HasPayload reports whether a payload term was attached.
func (m *Message) HasPayload() bool { return m.Payload.Type() != term.KindNone }

// ToTerm serializes m as a 6-tuple {Type, Sender, Recipient, Ref,
// Trace, Payload} suitable for wire transmission via the codec.
// Absent Ref/Trace/Payload fields are carried as the atom 'undefined'.
func ToTerm(m *Message) term.Term {
	typeAtom, err := term.AtomTerm(m.Type.String())
	if err != nil {
		typeAtom, _ = term.AtomTerm("SEND")
	}
	return term.TupleFrom(
		typeAtom,
		m.Sender,
		m.Recipient,
		orUndefined(m.Ref),
		orUndefined(m.Trace),
		orUndefined(m.Payload),
	)
}

func orUndefined(t term.Term) term.Term {
	if t.Type() == term.KindNone {
		undefined, _ := term.AtomTerm("undefined")
		return undefined
	}
	return t
}

func fromUndefined(t term.Term) term.Term {
	if t.Type() == term.KindAtom {
		if s, err := t.ToAtomString(); err == nil && s == "undefined" {
			return term.Term{}
		}
	}
	return t
}

var controlTypeByName = map[string]ControlType{
	Send.String():         Send,
	SendTT.String():       SendTT,
	Exit.String():         Exit,
	ExitTT.String():       ExitTT,
	Link.String():         Link,
	Unlink.String():       Unlink,
	NodeLink.String():     NodeLink,
	NodeUnlink.String():   NodeUnlink,
	RegSend.String():      RegSend,
	RegSendTT.String():    RegSendTT,
	Exit2.String():        Exit2,
	Exit2TT.String():      Exit2TT,
	MonitorP.String():     MonitorP,
	DemonitorP.String():   DemonitorP,
	MonitorPExit.String(): MonitorPExit,
}

// FromTerm parses the 6-tuple produced by ToTerm back into a Message.
func FromTerm(t term.Term) (*Message, error) {
	items, err := t.ToTuple()
	if err != nil {
		return nil, err
	}
	if len(items) != 6 {
		return nil, &BadEnvelope{Reason: "expected a 6-tuple envelope"}
	}
	typeName, err := items[0].ToAtomString()
	if err != nil {
		return nil, err
	}
	ct, found := controlTypeByName[typeName]
	if !found {
		return nil, &BadEnvelope{Reason: "unrecognized control type " + typeName}
	}
	return &Message{
		Type:      ct,
		Sender:    items[1],
		Recipient: items[2],
		Ref:       fromUndefined(items[3]),
		Trace:     fromUndefined(items[4]),
		Payload:   fromUndefined(items[5]),
	}, nil
}

// BadEnvelope reports a malformed wire envelope.
type BadEnvelope struct {
	Reason string
}

func (e *BadEnvelope) Error() string {
	return "transport: bad envelope: " + e.Reason
}
