// Package sheens provides an in-process term model and binary codec
// for a specific actor-runtime's external term format, together with
// the per-node mailbox machinery that dispatches inbound transport
// messages to local recipients and maintains link/monitor
// bookkeeping.
//
// Package term holds the value universe; package codec encodes and
// decodes it to and from wire bytes; package match implements
// pattern matching with variable binding over term.Term; package
// mailbox implements the per-mailbox queue and dispatcher. Packages
// node, registry, transport/mqtt, transport/ws, config, and trace are
// reference collaborators wiring those four together into a runnable
// node. Command-line tools live under cmd.
package sheens
