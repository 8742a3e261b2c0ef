// Package node ties the mailbox dispatcher to its collaborators: a
// Transport for inter-node delivery and a Registry for durable name
// lookup, implementing the mailbox.Node interface the dispatcher
// calls back into for EXIT/MONITOR_P_EXIT propagation.
package node

import (
	"fmt"
	"sync"

	"github.com/Comcast/sheens/atom"
	"github.com/Comcast/sheens/mailbox"
	"github.com/Comcast/sheens/term"
	"github.com/Comcast/sheens/transport"
)

// Transport is the collaborator a Node uses to carry envelopes to
// mailboxes on other nodes.
type Transport interface {
	Send(toNode string, msg *transport.Message) error
}

// Registry is the collaborator a Node uses for durable name
// resolution.
type Registry interface {
	Register(name string, pid term.Term) error
	Unregister(name string) error
	Lookup(name string) (term.Term, bool, error)
}

// Node owns every local mailbox and dispatches EXIT/MONITOR_P_EXIT
// propagation either in-process or via Transport, depending on
// whether the destination pid names this node.
type Node struct {
	Name      string
	Transport Transport
	Registry  Registry

	mu       sync.RWMutex
	mailboxes map[uint32]*mailbox.Mailbox // keyed by pid id
	nextID    uint32
}

// New returns a Node ready to spawn mailboxes.
func New(name string, tr Transport, reg Registry) *Node {
	return &Node{
		Name:      name,
		Transport: tr,
		Registry:  reg,
		mailboxes: make(map[uint32]*mailbox.Mailbox),
	}
}

// Spawn creates a new local mailbox with a freshly allocated pid on
// this node.
func (n *Node) Spawn() (*mailbox.Mailbox, error) {
	nodeAtom, err := term.AtomTerm(n.Name)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.mu.Unlock()

	self, err := term.Pid(nodeAtom, id, 0, 0)
	if err != nil {
		return nil, err
	}
	mb := mailbox.NewMailbox(self, n)

	n.mu.Lock()
	n.mailboxes[id] = mb
	n.mu.Unlock()

	return mb, nil
}

// RegisterName binds name to mb's pid in the durable registry.
func (n *Node) RegisterName(name string, mb *mailbox.Mailbox) error {
	a, err := term.AtomTerm(name)
	if err != nil {
		return err
	}
	if n.Registry != nil {
		if err := n.Registry.Register(name, mb.Self); err != nil {
			return err
		}
	}
	atomIndex, err := a.ToAtomIndex()
	if err != nil {
		return err
	}
	mb.SetName(atomIndex)
	return nil
}

// localMailbox returns the mailbox for pid, if pid names a process on
// this node.
func (n *Node) localMailbox(pid term.Term) (*mailbox.Mailbox, bool) {
	nodeAtom, id, _, _, err := pid.ToPid()
	if err != nil {
		return nil, false
	}
	nodeStr, err := atomString(nodeAtom)
	if err != nil || nodeStr != n.Name {
		return nil, false
	}
	n.mu.RLock()
	mb, found := n.mailboxes[id]
	n.mu.RUnlock()
	return mb, found
}

func atomString(a atom.Atom) (string, error) {
	s := atom.Default().Get(a)
	if s == "" && a != 0 {
		return "", fmt.Errorf("node: unresolvable atom index %d", a)
	}
	return s, nil
}

// SendExit implements mailbox.Node: deliver an EXIT control message to
// to, locally if to is on this node, else via Transport.
func (n *Node) SendExit(from, to, reason term.Term) error {
	msg := transport.New(transport.Exit, from, to).WithPayload(reason)
	return n.route(to, msg)
}

// SendMonitorExit implements mailbox.Node.
func (n *Node) SendMonitorExit(from, to, ref, reason term.Term) error {
	msg := transport.New(transport.MonitorPExit, from, to).WithRef(ref).WithPayload(reason)
	return n.route(to, msg)
}

func (n *Node) route(to term.Term, msg *transport.Message) error {
	if mb, found := n.localMailbox(to); found {
		mb.Deliver(msg)
		return nil
	}
	if n.Transport == nil {
		return fmt.Errorf("node: no transport configured to reach %v", to)
	}
	nodeAtom, _, _, _, err := to.ToPid()
	if err != nil {
		return err
	}
	nodeStr, err := atomString(nodeAtom)
	if err != nil {
		return err
	}
	return n.Transport.Send(nodeStr, msg)
}

// CloseMailbox implements mailbox.Node: removes mb from this node's
// table and unregisters any name bound to it.
func (n *Node) CloseMailbox(mb *mailbox.Mailbox) {
	_, id, _, _, err := mb.Self.ToPid()
	if err != nil {
		return
	}
	n.mu.Lock()
	delete(n.mailboxes, id)
	n.mu.Unlock()

	if name := mb.Name(); name != 0 && n.Registry != nil {
		_ = n.Registry.Unregister(atom.Default().Get(name))
	}
}

// Deliver routes an inbound transport message (typically handed in by
// a Transport) to its local recipient mailbox, resolving a registered
// name via the Registry if the message is addressed that way.
func (n *Node) Deliver(msg *transport.Message) {
	if pid, isPid := msg.RecipientPid(); isPid {
		if mb, found := n.localMailbox(pid); found {
			mb.Deliver(msg)
		}
		return
	}
	if name, isName := msg.RecipientName(); isName && n.Registry != nil {
		pid, found, err := n.Registry.Lookup(atom.Default().Get(name))
		if err != nil || !found {
			return
		}
		if mb, found := n.localMailbox(pid); found {
			mb.Deliver(msg)
		}
	}
}
