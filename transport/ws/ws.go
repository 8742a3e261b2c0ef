// Package ws implements a Transport collaborator over WebSocket, for
// browser/tooling access to a single node's mailbox traffic.
package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Comcast/sheens/codec"
	"github.com/Comcast/sheens/transport"
)

// Deliverer is called with each inbound, decoded transport message.
type Deliverer func(msg *transport.Message)

var upgrader = websocket.Upgrader{}

// Transport serves one WebSocket endpoint per connected peer,
// broadcasting outbound messages to every currently connected
// connection and decoding inbound frames as codec-encoded envelopes.
type Transport struct {
	deliver Deliverer

	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	outbound   chan *transport.Message
}

// New returns a Transport that has not yet started serving.
func New() *Transport {
	return &Transport{
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		outbound:   make(chan *transport.Message, 64),
	}
}

// Start runs the connection-registry loop until ctx is done.
func (t *Transport) Start(ctx context.Context, deliver Deliverer) {
	t.deliver = deliver
	go t.loop(ctx)
}

func (t *Transport) loop(ctx context.Context) {
	conns := make(map[*websocket.Conn]bool)
	for {
		select {
		case <-ctx.Done():
			for c := range conns {
				c.Close()
			}
			return
		case c := <-t.register:
			conns[c] = true
		case c := <-t.unregister:
			delete(conns, c)
		case msg := <-t.outbound:
			encoded, err := codec.Encode(transport.ToTerm(msg))
			if err != nil {
				log.Printf("ws transport: encode: %v", err)
				continue
			}
			for c := range conns {
				if err := c.WriteMessage(websocket.BinaryMessage, encoded); err != nil {
					log.Printf("ws transport: write: %v", err)
					delete(conns, c)
					c.Close()
				}
			}
		}
	}
}

// Send queues msg for broadcast to every connected peer. toNode is
// unused: this transport does not distinguish destinations among its
// connections, matching a single browser-facing mailbox view.
func (t *Transport) Send(toNode string, msg *transport.Message) error {
	t.outbound <- msg
	return nil
}

// Handler returns an http.HandlerFunc that upgrades incoming requests
// to WebSocket connections and reads codec-encoded envelopes from
// them until the client disconnects.
func (t *Transport) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("ws transport: upgrade: %v", err)
			return
		}
		t.register <- c
		defer func() {
			t.unregister <- c
			c.Close()
		}()

		for {
			mt, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			decoded, err := codec.Decode(data)
			if err != nil {
				log.Printf("ws transport: decode: %v", err)
				continue
			}
			envelope, err := transport.FromTerm(decoded)
			if err != nil {
				log.Printf("ws transport: malformed envelope: %v", err)
				continue
			}
			if t.deliver != nil {
				t.deliver(envelope)
			}
		}
	}
}
