package node

import (
	"context"
	"testing"
	"time"

	"github.com/Comcast/sheens/transport"
)

type noTransport struct{}

func (noTransport) Send(toNode string, msg *transport.Message) error { return nil }

func TestSpawnAndLocalExitDelivery(t *testing.T) {
	n := New("a@h", noTransport{}, nil)

	mbA, err := n.Spawn()
	if err != nil {
		t.Fatal(err)
	}
	mbB, err := n.Spawn()
	if err != nil {
		t.Fatal(err)
	}

	mbB.Deliver(transport.New(transport.Link, mbA.Self, mbB.Self))

	node, id, serial, creation, err := mbA.Self.ToPid()
	_, _, _, _, _ = node, id, serial, creation, err

	done := make(chan *transport.Message, 1)
	mbB.Queue.AsyncDequeue(context.Background(), func(msg *transport.Message, ok bool) bool {
		if ok {
			done <- msg
		}
		return false
	}, 0, 1)

	if err := n.SendExit(mbA.Self, mbB.Self, mbA.Self); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-done:
		if msg.Type != transport.Exit {
			t.Fatalf("expected an EXIT message, got %v", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("EXIT was never delivered locally")
	}
}

func TestHeartbeatFiresOnSchedule(t *testing.T) {
	n := New("a@h", noTransport{}, nil)
	hb, err := NewHeartbeat(n, "* * * * * * *")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ticked := make(chan struct{}, 1)
	go hb.Run(ctx, func() {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat never ticked within its schedule")
	}
}
