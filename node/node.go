package node

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/JohnBasrai/tumult/internal/telemetry"
)

// maxLineSize bounds a single input line. Gossip bodies grow with the number
// of broadcast values, so the bufio default of 64KiB is too small.
const maxLineSize = 16 << 20

// Handler is a protocol's state machine. The runtime calls it from a single
// goroutine, one event at a time, so it needs no locking of its own.
type Handler interface {
	// Handle processes one message addressed to this node.
	Handle(msg Message, out *Output) error
	// HandleInjected processes a value the handler injected itself, e.g. a
	// timer tick.
	HandleInjected(payload any, out *Output) error
}

// Factory builds a handler from the init payload. inj feeds the same event
// stream the handler is driven by; background work such as tickers should
// send through it rather than touch handler state.
type Factory func(in Init, inj Injector) (Handler, error)

// Node owns the process's conversation with the harness.
type Node struct {
	Stdin  io.Reader
	Stdout io.Writer
	Logger *logrus.Entry

	protocol *Protocol
}

// NewNode returns a node speaking protocol over stdin and stdout.
func NewNode(protocol *Protocol) *Node {
	return &Node{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Logger:   logrus.NewEntry(logrus.StandardLogger()),
		protocol: protocol,
	}
}

// Run performs the init handshake and then dispatches events to the handler
// built by factory until stdin is exhausted. It returns the first error from
// the handler, or any error the stdin reader ran into.
func (n *Node) Run(factory Factory) error {
	scanner := bufio.NewScanner(n.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	out := NewOutput(n.Stdout)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read init message: %w", err)
		}
		return ErrNoInit
	}
	initMsg, err := decodeInit(scanner.Bytes())
	if err != nil {
		return err
	}
	in := initMsg.Body.Payload.(Init)
	log := n.Logger.WithField("node", in.NodeID)
	log.WithField("cluster", len(in.NodeIDs)).Info("Initializing")

	queue := NewQueue()
	defer queue.Close()

	handler, err := factory(in, queue)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ack := initMsg.IntoReply(new(int))
	ack.Body.Payload = InitOk{}
	if err := out.Send(ack); err != nil {
		return fmt.Errorf("reply to init: %w", err)
	}

	r := n.startReader(scanner, queue)
	if err := n.dispatch(queue, handler, out, log); err != nil {
		log.WithError(err).Error("Node step failed")
		return err
	}

	<-r.done
	if r.err != nil {
		return fmt.Errorf("stdin reader: %w", r.err)
	}
	log.Info("Input closed, shutting down")
	return nil
}

func (n *Node) dispatch(queue *Queue, handler Handler, out *Output, log *logrus.Entry) error {
	for {
		ev := queue.Recv()
		switch ev.Kind {
		case EventEOF:
			return nil

		case EventInjected:
			telemetry.InjectedEvents.Inc()
			if err := handler.HandleInjected(ev.Injected, out); err != nil {
				return fmt.Errorf("handle injected %T: %w", ev.Injected, err)
			}

		case EventMessage:
			msg := ev.Message
			typ := msg.Body.Payload.Type()
			telemetry.MessagesReceived.WithLabelValues(typ).Inc()

			if body, ok := msg.Body.Payload.(Error); ok {
				log.WithFields(logrus.Fields{
					"src":   msg.Src,
					"error": body.Err(),
				}).Warn("Received error body")
				continue
			}
			if err := handler.Handle(msg, out); err != nil {
				return fmt.Errorf("handle %s from %s: %w", typ, msg.Src, err)
			}

		default:
			return fmt.Errorf("unexpected event kind %v", ev.Kind)
		}
	}
}

type reader struct {
	done chan struct{}
	err  error
}

// startReader decodes the remaining stdin lines into message events. It
// ends the stream with EventEOF, also when it stops on an error, which it
// records for Run to pick up.
func (n *Node) startReader(scanner *bufio.Scanner, queue *Queue) *reader {
	r := &reader{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		defer queue.Send(Event{Kind: EventEOF})

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			msg, err := n.protocol.Decode(line)
			if err != nil {
				r.err = fmt.Errorf("input could not be deserialized: %w", err)
				return
			}
			if !queue.Send(Event{Kind: EventMessage, Message: msg}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			r.err = fmt.Errorf("input could not be read: %w", err)
		}
	}()
	return r
}
