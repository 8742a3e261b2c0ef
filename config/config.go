// Package config loads node configuration from YAML, following the
// teacher's pattern of describing a running component's setup as a
// YAML document unmarshaled straight into a plain struct.
package config

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/jsccast/yaml"
)

// Node describes a node's listen identity, atom table sizing, and
// logging verbosity.
type Node struct {
	// Name is the node's fully qualified name, e.g. "a@host".
	Name string `yaml:"name"`

	// Cookie authenticates inter-node traffic; carried here as
	// configuration even though the handshake itself is out of
	// scope.
	Cookie string `yaml:"cookie"`

	// Creation distinguishes incarnations of this node.
	Creation uint32 `yaml:"creation"`

	// MaxAtoms bounds the atom table before lookups begin failing
	// with TableFull; zero means unbounded.
	MaxAtoms int `yaml:"maxAtoms"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"logLevel"`

	Transport TransportConfig `yaml:"transport"`
	Registry  RegistryConfig  `yaml:"registry"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

// TransportConfig selects and configures one Transport collaborator.
type TransportConfig struct {
	// Kind is "mqtt" or "ws".
	Kind string `yaml:"kind"`

	// Broker is the MQTT broker URL (mqtt transport) or the
	// WebSocket listen address (ws transport).
	Broker string `yaml:"broker"`

	ConnectTimeout time.Duration `yaml:"connectTimeout"`
}

// RegistryConfig configures the durable name registry.
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// HeartbeatConfig configures the cron-style liveness scheduler.
type HeartbeatConfig struct {
	// Schedule is a cron expression, e.g. "*/30 * * * * *".
	Schedule string `yaml:"schedule"`
}

// Default returns a Node with reasonable defaults, used as the base
// that Load's YAML document is merged over.
func Default() *Node {
	return &Node{
		Creation: 1,
		LogLevel: "info",
		Registry: RegistryConfig{Path: "names.db"},
	}
}

// Load reads and parses a Node configuration from the YAML file at
// path.
func Load(path string) (*Node, error) {
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	n := Default()
	if err := yaml.Unmarshal(bs, n); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if n.Name == "" {
		return nil, fmt.Errorf("config: %s: name is required", path)
	}
	return n, nil
}

// Parse parses a Node configuration from an in-memory YAML document,
// for tests and embedded configuration.
func Parse(doc []byte) (*Node, error) {
	n := Default()
	if err := yaml.Unmarshal(doc, n); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if n.Name == "" {
		return nil, fmt.Errorf("config: name is required")
	}
	return n, nil
}
