// Package mqtt implements a Transport collaborator over MQTT: one
// topic per node, payloads are codec-encoded transport messages.
package mqtt

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Comcast/sheens/codec"
	"github.com/Comcast/sheens/transport"
)

// TopicPrefix namespaces every node's topic on the broker.
const TopicPrefix = "sheens-term/"

// Topic returns the MQTT topic a node's transport messages travel on.
func Topic(node string) string {
	return TopicPrefix + node
}

// Deliverer is called with each inbound, decoded transport message.
type Deliverer func(msg *transport.Message)

// Transport carries transport.Message envelopes between nodes over an
// MQTT broker using QoS 1.
type Transport struct {
	Node   string
	Broker string

	ClientID       string
	ConnectTimeout time.Duration

	client   paho.Client
	deliver  Deliverer
}

// New returns a Transport for node, talking to the given broker URL
// (e.g. "tcp://localhost:1883").
func New(node, broker string) *Transport {
	return &Transport{
		Node:           node,
		Broker:         broker,
		ClientID:       node,
		ConnectTimeout: 10 * time.Second,
	}
}

// Start connects to the broker and subscribes to this node's topic,
// invoking deliver for each inbound message that decodes cleanly.
// Decode failures are logged and dropped; connection loss is logged
// and left to paho's auto-reconnect.
func (t *Transport) Start(deliver Deliverer) error {
	t.deliver = deliver

	opts := paho.NewClientOptions()
	opts.AddBroker(t.Broker)
	opts.SetClientID(t.ClientID)
	opts.SetAutoReconnect(true)
	opts.OnConnectionLost = func(c paho.Client, err error) {
		log.Printf("mqtt transport: connection lost for node %s: %v", t.Node, err)
	}

	t.client = paho.NewClient(opts)
	tok := t.client.Connect()
	if !tok.WaitTimeout(t.ConnectTimeout) {
		return fmt.Errorf("mqtt transport: connect to %s timed out", t.Broker)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt transport: connect to %s: %w", t.Broker, err)
	}

	subTok := t.client.Subscribe(Topic(t.Node), 1, t.onMessage)
	subTok.Wait()
	return subTok.Error()
}

func (t *Transport) onMessage(c paho.Client, msg paho.Message) {
	t2, err := codec.Decode(msg.Payload())
	if err != nil {
		log.Printf("mqtt transport: decode failed on %s: %v", msg.Topic(), err)
		return
	}
	envelope, err := transport.FromTerm(t2)
	if err != nil {
		log.Printf("mqtt transport: malformed envelope on %s: %v", msg.Topic(), err)
		return
	}
	if t.deliver != nil {
		t.deliver(envelope)
	}
}

// Send publishes msg to the recipient node's topic.
func (t *Transport) Send(toNode string, msg *transport.Message) error {
	encoded, err := codec.Encode(transport.ToTerm(msg))
	if err != nil {
		return fmt.Errorf("mqtt transport: encode: %w", err)
	}
	tok := t.client.Publish(Topic(toNode), 1, false, encoded)
	tok.Wait()
	return tok.Error()
}

// Stop disconnects from the broker.
func (t *Transport) Stop() {
	if t.client != nil {
		t.client.Disconnect(250)
	}
}
