package mailer

import (
	"context"
	"log"
)

// Message is one queued notification.
type Message struct {
	Kind Kind
	To   string
	Data Data
}

// Dispatcher delivers notifications on a background worker. Enqueue never
// blocks the caller and delivery failures are logged, not propagated: a
// failed email must not fail the business operation that triggered it.
type Dispatcher struct {
	sender EmailSender
	jobs   chan Message
	done   chan struct{}
}

// NewDispatcher starts a dispatcher with the given queue capacity. A nil
// sender is accepted; every message is then logged and dropped, which keeps
// the rest of the system working without a configured relay.
func NewDispatcher(sender EmailSender, buffer int) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		jobs:   make(chan Message, buffer),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.jobs {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	if d.sender == nil {
		log.Printf("Mail relay not configured. Skipping %s to %s", msg.Kind, msg.To)
		return
	}
	body, err := Render(msg.Kind, msg.Data)
	if err != nil {
		log.Printf("Failed to render %s email for %s: %v", msg.Kind, msg.To, err)
		return
	}
	if err := d.sender.SendEmail(context.Background(), msg.To, msg.Data.Subject, body); err != nil {
		log.Printf("Failed to send %s email to %s: %v", msg.Kind, msg.To, err)
	}
}

// Enqueue queues a notification. When the queue is full the message is
// dropped with a log line rather than blocking the request path.
func (d *Dispatcher) Enqueue(kind Kind, to string, data Data) {
	if to == "" {
		return
	}
	select {
	case d.jobs <- Message{Kind: kind, To: to, Data: data}:
	default:
		log.Printf("Mail queue full, dropping %s to %s", kind, to)
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	close(d.jobs)
	<-d.done
}
