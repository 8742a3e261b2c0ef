// Package main is a small command-line mailbox simulator: it spawns
// a couple of local mailboxes on one node, links them, closes one,
// and prints a Markdown trace of the resulting EXIT broadcast. Useful
// for exercising the mailbox dispatcher without a real transport.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Comcast/sheens/node"
	"github.com/Comcast/sheens/term"
	"github.com/Comcast/sheens/trace"
	"github.com/Comcast/sheens/transport"
)

type opts struct {
	nodeName string
	reason   string
	html     bool
}

func main() {
	o := &opts{}
	flag.StringVar(&o.nodeName, "node", "sim@localhost", "simulated node name")
	flag.StringVar(&o.reason, "reason", "normal", "exit reason atom")
	flag.BoolVar(&o.html, "html", false, "render the trace as HTML instead of Markdown")
	flag.Parse()

	if err := o.run(); err != nil {
		fmt.Fprintln(os.Stderr, "mboxsim:", err)
		os.Exit(1)
	}
}

type noTransport struct{}

func (noTransport) Send(toNode string, msg *transport.Message) error {
	return fmt.Errorf("mboxsim: no transport configured, cannot reach node %s", toNode)
}

func (o *opts) run() error {
	n := node.New(o.nodeName, noTransport{}, nil)

	a, err := n.Spawn()
	if err != nil {
		return err
	}
	b, err := n.Spawn()
	if err != nil {
		return err
	}

	b.Deliver(transport.New(transport.Link, a.Self, b.Self))
	a.Deliver(transport.New(transport.Link, b.Self, a.Self))

	report := trace.NewReport(fmt.Sprintf("mboxsim: %s", o.nodeName))

	done := make(chan struct{})
	b.Queue.AsyncDequeue(context.Background(), func(msg *transport.Message, ok bool) bool {
		if ok {
			report.Record(time.Now(), b.Self, msg)
		}
		close(done)
		return false
	}, 2*time.Second, 1)

	reasonAtom, err := term.AtomTerm(o.reason)
	if err != nil {
		return err
	}
	a.Close(reasonAtom, false)

	<-done

	if o.html {
		fmt.Println(string(report.HTML()))
	} else {
		fmt.Println(string(report.Markdown()))
	}
	return nil
}
