// Package trace renders a decoded term or mailbox dispatch trace as
// Markdown (and, on request, HTML) for postmortem logs.
package trace

import (
	"bytes"
	"fmt"
	"time"

	md "github.com/russross/blackfriday/v2"

	"github.com/Comcast/sheens/term"
	"github.com/Comcast/sheens/transport"
)

// Event is one recorded step of a dispatch trace: an envelope
// observed at a mailbox, with the time it was recorded.
type Event struct {
	At      time.Time
	Mailbox term.Term // the pid the event was recorded at
	Msg     *transport.Message
}

// Report accumulates Events and renders them as a Markdown document.
type Report struct {
	Title  string
	Events []Event
}

// NewReport returns an empty Report with the given title.
func NewReport(title string) *Report {
	return &Report{Title: title}
}

// Record appends an event to the report.
func (r *Report) Record(at time.Time, mailbox term.Term, msg *transport.Message) {
	r.Events = append(r.Events, Event{At: at, Mailbox: mailbox, Msg: msg})
}

// Markdown renders the report as a Markdown document: a heading
// followed by one bullet per recorded event, each showing the
// mailbox, the control type, sender/recipient, and payload.
func (r *Report) Markdown() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", r.Title)
	if len(r.Events) == 0 {
		buf.WriteString("_no events recorded_\n")
		return buf.Bytes()
	}
	for _, e := range r.Events {
		fmt.Fprintf(&buf, "- `%s` at `%s`: **%s** from `%s` to `%s`",
			e.Mailbox.String(),
			e.At.Format(time.RFC3339Nano),
			e.Msg.Type.String(),
			e.Msg.Sender.String(),
			e.Msg.Recipient.String(),
		)
		if e.Msg.HasPayload() {
			fmt.Fprintf(&buf, " — payload `%s`", e.Msg.Payload.String())
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// HTML renders the report's Markdown through blackfriday.
func (r *Report) HTML() []byte {
	return md.Run(r.Markdown())
}
