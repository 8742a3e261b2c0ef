package config

import "testing"

func TestParseFillsDefaults(t *testing.T) {
	n, err := Parse([]byte(`
name: a@host
transport:
  kind: mqtt
  broker: tcp://localhost:1883
`))
	if err != nil {
		t.Fatal(err)
	}
	if n.Name != "a@host" {
		t.Fatalf("expected name a@host, got %q", n.Name)
	}
	if n.LogLevel != "info" {
		t.Fatalf("expected default logLevel info, got %q", n.LogLevel)
	}
	if n.Creation != 1 {
		t.Fatalf("expected default creation 1, got %d", n.Creation)
	}
	if n.Transport.Kind != "mqtt" || n.Transport.Broker != "tcp://localhost:1883" {
		t.Fatalf("transport config not parsed: %+v", n.Transport)
	}
}

func TestParseRequiresName(t *testing.T) {
	if _, err := Parse([]byte(`logLevel: debug`)); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	n, err := Parse([]byte(`
name: b@host
creation: 7
logLevel: debug
registry:
  path: /var/lib/names.db
`))
	if err != nil {
		t.Fatal(err)
	}
	if n.Creation != 7 {
		t.Fatalf("expected creation 7, got %d", n.Creation)
	}
	if n.LogLevel != "debug" {
		t.Fatalf("expected logLevel debug, got %q", n.LogLevel)
	}
	if n.Registry.Path != "/var/lib/names.db" {
		t.Fatalf("expected overridden registry path, got %q", n.Registry.Path)
	}
}
