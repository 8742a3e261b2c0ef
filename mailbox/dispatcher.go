package mailbox

import (
	"context"
	"sync"
	"time"

	"github.com/Comcast/sheens/atom"
	"github.com/Comcast/sheens/match"
	"github.com/Comcast/sheens/term"
	"github.com/Comcast/sheens/transport"
)

// Node is the collaborator a Mailbox uses to propagate failure and to
// deregister itself from a name registry on close.
type Node interface {
	SendExit(from, to term.Term, reason term.Term) error
	SendMonitorExit(from, to, ref, reason term.Term) error
	CloseMailbox(m *Mailbox)
}

// Mailbox holds per-mailbox dispatch state above a Queue: the self
// pid, an optional registered name, the set of linked pids, the
// monitor reference→pid map, and a freed timestamp (zero while live).
type Mailbox struct {
	Self term.Term
	Node Node

	mu       sync.Mutex
	name     atom.Atom
	links    map[string]term.Term        // pid.String() -> pid
	monitors map[string]monitorEntry     // ref.String() -> (ref, pid)
	freedAt  time.Time

	Queue *Queue
}

type monitorEntry struct {
	ref term.Term
	pid term.Term
}

// NewMailbox returns a live Mailbox for self, dispatching onto a
// fresh Queue.
func NewMailbox(self term.Term, node Node) *Mailbox {
	return &Mailbox{
		Self:     self,
		Node:     node,
		links:    make(map[string]term.Term),
		monitors: make(map[string]monitorEntry),
		Queue:    NewQueue(),
	}
}

// SetName records the mailbox's registered name.
func (m *Mailbox) SetName(name atom.Atom) {
	m.mu.Lock()
	m.name = name
	m.mu.Unlock()
}

// Name returns the mailbox's registered name, or the zero atom if
// unnamed.
func (m *Mailbox) Name() atom.Atom {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Closed reports whether close has been called.
func (m *Mailbox) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.freedAt.IsZero()
}

// Deliver inspects msg.Type and applies the dispatcher's side
// effects: link/unlink/monitor bookkeeping messages are consumed and
// never enqueued; EXIT/EXIT2 (with or without trace token) also
// remove the sender from links before being enqueued; everything else
// is enqueued unchanged. A panic recovered while dispatching still
// results in msg being enqueued, with its error flag set, rather than
// lost.
func (m *Mailbox) Deliver(msg *transport.Message) {
	defer func() {
		if r := recover(); r != nil {
			msg.SetErrorFlag()
			m.Queue.Enqueue(msg)
		}
	}()

	switch msg.Type {
	case transport.Link:
		m.mu.Lock()
		m.links[msg.Sender.String()] = msg.Sender
		m.mu.Unlock()
		return

	case transport.Unlink:
		m.mu.Lock()
		delete(m.links, msg.Sender.String())
		m.mu.Unlock()
		return

	case transport.MonitorP:
		m.mu.Lock()
		m.monitors[msg.Ref.String()] = monitorEntry{ref: msg.Ref, pid: msg.Sender}
		m.mu.Unlock()
		return

	case transport.DemonitorP:
		m.mu.Lock()
		delete(m.monitors, msg.Ref.String())
		m.mu.Unlock()
		return

	case transport.MonitorPExit:
		m.mu.Lock()
		delete(m.monitors, msg.Ref.String())
		m.mu.Unlock()
		m.Queue.Enqueue(msg)
		return

	default:
		if msg.Type.IsExit() {
			m.mu.Lock()
			delete(m.links, msg.Sender.String())
			m.mu.Unlock()
		}
		m.Queue.Enqueue(msg)
	}
}

// Close tears the mailbox down: marks it freed, resets the queue,
// optionally deregisters it from the node, and broadcasts EXIT to
// every linked pid and MONITOR_P_EXIT to every monitor, each carrying
// reason. Broadcast failures are swallowed per-destination. Link and
// monitor sets are cleared and the registered name is cleared.
func (m *Mailbox) Close(reason term.Term, deregister bool) {
	m.mu.Lock()
	m.freedAt = time.Now()
	m.mu.Unlock()

	m.Queue.Reset()

	if deregister && m.Node != nil {
		m.Node.CloseMailbox(m)
	}

	m.breakLinks(reason)

	m.mu.Lock()
	m.name = 0
	m.mu.Unlock()
}

func (m *Mailbox) breakLinks(reason term.Term) {
	m.mu.Lock()
	links := make([]term.Term, 0, len(m.links))
	for _, pid := range m.links {
		links = append(links, pid)
	}
	monitors := make([]monitorEntry, 0, len(m.monitors))
	for _, me := range m.monitors {
		monitors = append(monitors, me)
	}
	m.links = make(map[string]term.Term)
	m.monitors = make(map[string]monitorEntry)
	m.mu.Unlock()

	if m.Node == nil {
		return
	}
	for _, pid := range links {
		_ = m.Node.SendExit(m.Self, pid, reason)
	}
	for _, me := range monitors {
		_ = m.Node.SendMonitorExit(m.Self, me.pid, me.ref, reason)
	}
}

// AsyncReceive layers a closed-mailbox check on top of the queue's
// async dequeue: if the mailbox has been closed by the time handler
// would run, handler instead observes a cancellation.
func (m *Mailbox) AsyncReceive(ctx context.Context, handler Handler, timeout time.Duration, repeatCount int) {
	wrapped := func(msg *transport.Message, ok bool) bool {
		if m.Closed() {
			return handler(nil, false)
		}
		return handler(msg, ok)
	}
	m.Queue.AsyncDequeue(ctx, wrapped, timeout, repeatCount)
}

// AsyncMatch layers pattern matching on top of AsyncReceive: each
// delivered message's payload is matched against pattern with a fresh
// Bindings. onMatch runs with the resulting bindings when a payload
// matches; a nil onMatch is allowed when only the timeout/close signal
// matters. onTimeout runs (and the dequeue ends) when the deadline
// elapses or the mailbox is closed.
func (m *Mailbox) AsyncMatch(ctx context.Context, matcher *match.Matcher, pattern term.Term, onMatch func(msg *transport.Message, b *match.Bindings), onTimeout func(), timeout time.Duration, repeatCount int) {
	if matcher == nil {
		matcher = match.DefaultMatcher
	}
	wrapped := func(msg *transport.Message, ok bool) bool {
		if m.Closed() {
			onTimeout()
			return false
		}
		if !ok {
			onTimeout()
			return false
		}
		if msg != nil {
			b := match.NewBindings()
			matched, err := matcher.Match(pattern, msg.Payload, b)
			if err == nil && matched && onMatch != nil {
				onMatch(msg, b)
			}
		}
		return true
	}
	m.Queue.AsyncDequeue(ctx, wrapped, timeout, repeatCount)
}
