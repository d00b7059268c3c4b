package sim

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	maelstrom "github.com/jepsen-io/maelstrom/demo/go"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/sirupsen/logrus"

	"github.com/JohnBasrai/tumult/node"
)

// Client is the source of every request the cluster sends.
const Client = "c1"

type member struct {
	id    string
	stdin *io.PipeWriter
	done  chan error
}

// Cluster is a set of running nodes plus the routers between them.
type Cluster struct {
	// Drop, when set before Start, decides which inter-node messages get lost.
	Drop func(msg maelstrom.Message) bool

	ids      []string
	protocol *node.Protocol
	factory  node.Factory
	log      *logrus.Entry

	members cmap.ConcurrentMap[string, *member]
	replies cmap.ConcurrentMap[string, maelstrom.Message]
	msgID   atomic.Int64
	routers sync.WaitGroup
}

// New prepares a cluster of ids, all running factory over protocol.
func New(ids []string, protocol *node.Protocol, factory node.Factory, log *logrus.Entry) *Cluster {
	return &Cluster{
		ids:      ids,
		protocol: protocol,
		factory:  factory,
		log:      log,
		members:  cmap.New[*member](),
		replies:  cmap.New[maelstrom.Message](),
	}
}

// Start launches every node and completes its init handshake.
func (c *Cluster) Start(timeout time.Duration) error {
	for _, id := range c.ids {
		c.launch(id)
	}
	for _, id := range c.ids {
		if _, err := c.Call(id, node.Init{NodeID: id, NodeIDs: c.ids}, timeout); err != nil {
			return fmt.Errorf("init %s: %w", id, err)
		}
	}
	return nil
}

func (c *Cluster) launch(id string) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	m := &member{id: id, stdin: inW, done: make(chan error, 1)}
	c.members.Set(id, m)

	n := node.NewNode(c.protocol)
	n.Stdin = inR
	n.Stdout = outW
	n.Logger = c.log.WithField("member", id)

	go func() {
		err := n.Run(c.factory)
		inR.CloseWithError(io.ErrClosedPipe)
		outW.Close()
		m.done <- err
	}()

	c.routers.Add(1)
	go func() {
		defer c.routers.Done()
		c.route(outR)
	}()
}

func (c *Cluster) route(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		line := append(append([]byte(nil), scanner.Bytes()...), '\n')

		var msg maelstrom.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			c.log.WithError(err).Error("Unroutable output line")
			continue
		}

		if dest, ok := c.members.Get(msg.Dest); ok {
			if c.Drop != nil && c.Drop(msg) {
				continue
			}
			if _, err := dest.stdin.Write(line); err != nil {
				c.log.WithError(err).WithField("dest", msg.Dest).Debug("Member stopped")
			}
			continue
		}

		var body struct {
			InReplyTo *int `json:"in_reply_to"`
		}
		if err := json.Unmarshal(msg.Body, &body); err != nil || body.InReplyTo == nil {
			c.log.WithField("line", string(line)).Warn("Client message is not a reply")
			continue
		}
		c.replies.Set(replyKey(msg.Dest, *body.InReplyTo), msg)
	}
}

// Call sends payload from Client to dest and waits for the reply.
func (c *Cluster) Call(dest string, payload node.Payload, timeout time.Duration) (maelstrom.Message, error) {
	m, ok := c.members.Get(dest)
	if !ok {
		return maelstrom.Message{}, fmt.Errorf("no member %s", dest)
	}

	id := int(c.msgID.Add(1))
	line, err := json.Marshal(node.Message{
		Src:  Client,
		Dest: dest,
		Body: node.Body{MsgID: &id, Payload: payload},
	})
	if err != nil {
		return maelstrom.Message{}, err
	}
	if _, err := m.stdin.Write(append(line, '\n')); err != nil {
		return maelstrom.Message{}, fmt.Errorf("send %s to %s: %w", payload.Type(), dest, err)
	}

	key := replyKey(Client, id)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if reply, ok := c.replies.Get(key); ok {
			c.replies.Remove(key)
			return reply, nil
		}
		time.Sleep(time.Millisecond)
	}
	return maelstrom.Message{}, fmt.Errorf("no reply from %s to %s %d within %v", dest, payload.Type(), id, timeout)
}

// Close ends every node's input and returns the errors they stopped with.
func (c *Cluster) Close() error {
	var errs []error
	for _, id := range c.ids {
		m, ok := c.members.Get(id)
		if !ok {
			continue
		}
		m.stdin.Close()
		if err := <-m.done; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	c.routers.Wait()
	return errors.Join(errs...)
}

func replyKey(client string, inReplyTo int) string {
	return fmt.Sprintf("%s/%d", client, inReplyTo)
}
