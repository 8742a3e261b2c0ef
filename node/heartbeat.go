package node

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
)

// Heartbeat drives periodic liveness ticks on a cron-style schedule.
// It calls whatever tick function Run is given; it does not itself
// touch the node's links or monitors.
type Heartbeat struct {
	schedule *cronexpr.Expression
	node     *Node
}

// NewHeartbeat parses schedule (a cronexpr expression; with six fields
// the first is minutes, with seven the first is seconds) and returns a
// Heartbeat for n that ticks on that schedule once Run is called.
func NewHeartbeat(n *Node, schedule string) (*Heartbeat, error) {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("node: bad heartbeat schedule %q: %w", schedule, err)
	}
	return &Heartbeat{schedule: expr, node: n}, nil
}

// Run blocks, firing tick at each scheduled time until ctx is done.
func (h *Heartbeat) Run(ctx context.Context, tick func()) {
	for {
		next := h.schedule.Next(time.Now())
		if next.IsZero() {
			log.Printf("node: heartbeat schedule for %s has no further occurrences", h.node.Name)
			return
		}
		d := time.Until(next)
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			tick()
		}
	}
}
