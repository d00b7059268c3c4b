package node

import (
	"encoding/json"
	"errors"
	"fmt"

	maelstrom "github.com/jepsen-io/maelstrom/demo/go"

	"github.com/JohnBasrai/tumult/utils"
)

var (
	ErrNoInit      = errors.New("EOF before init message")
	ErrNotInit     = errors.New("first message is not init")
	ErrUnknownType = errors.New("unknown payload type")
)

// Payload is one variant of a protocol's closed set of message shapes. Type
// returns the tag carried in the body's "type" field.
type Payload interface {
	Type() string
}

type decoder func(json.RawMessage) (Payload, error)

// Protocol is the set of payload variants a node accepts on stdin. Lines
// whose tag is not registered fail to decode.
type Protocol struct {
	decoders map[string]decoder
}

// NewProtocol returns a protocol that only knows the error body.
func NewProtocol() *Protocol {
	p := &Protocol{decoders: make(map[string]decoder)}
	Register[Error](p)
	return p
}

// Register adds P to the protocol under the tag reported by its zero value.
func Register[P Payload](p *Protocol) {
	var zero P
	p.decoders[zero.Type()] = func(raw json.RawMessage) (Payload, error) {
		return utils.Decode[P](raw)
	}
}

// Decode parses one input line into a message.
func (p *Protocol) Decode(line []byte) (Message, error) {
	var frame maelstrom.Message
	if err := json.Unmarshal(line, &frame); err != nil {
		return Message{}, fmt.Errorf("decode envelope: %w", err)
	}

	typ := frame.Type()
	decode, ok := p.decoders[typ]
	if !ok {
		return Message{}, fmt.Errorf("%w %q", ErrUnknownType, typ)
	}

	var h header
	if err := json.Unmarshal(frame.Body, &h); err != nil {
		return Message{}, fmt.Errorf("decode %s header: %w", typ, err)
	}
	payload, err := decode(frame.Body)
	if err != nil {
		return Message{}, fmt.Errorf("decode %s payload: %w", typ, err)
	}

	return Message{
		Src:  frame.Src,
		Dest: frame.Dest,
		Body: Body{
			MsgID:     h.MsgID,
			InReplyTo: h.InReplyTo,
			Payload:   payload,
		},
	}, nil
}

// decodeInit parses the handshake line. It is kept apart from Decode because
// init is not part of any handler's protocol.
func decodeInit(line []byte) (Message, error) {
	var frame maelstrom.Message
	if err := json.Unmarshal(line, &frame); err != nil {
		return Message{}, fmt.Errorf("decode init envelope: %w", err)
	}
	if typ := frame.Type(); typ != "init" {
		return Message{}, fmt.Errorf("%w: got %q", ErrNotInit, typ)
	}

	var body maelstrom.InitMessageBody
	if err := json.Unmarshal(frame.Body, &body); err != nil {
		return Message{}, fmt.Errorf("decode init body: %w", err)
	}
	var h header
	if err := json.Unmarshal(frame.Body, &h); err != nil {
		return Message{}, fmt.Errorf("decode init header: %w", err)
	}

	return Message{
		Src:  frame.Src,
		Dest: frame.Dest,
		Body: Body{
			MsgID: h.MsgID,
			Payload: Init{
				NodeID:  body.NodeID,
				NodeIDs: body.NodeIDs,
			},
		},
	}, nil
}

// Init is the handshake payload: this node's id and the full membership.
type Init struct {
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids"`
}

func (Init) Type() string { return "init" }

type InitOk struct{}

func (InitOk) Type() string { return "init_ok" }

// Error is the harness's error body. Codes are maelstrom's error codes.
type Error struct {
	Code int    `json:"code"`
	Text string `json:"text,omitempty"`
}

func (Error) Type() string { return "error" }

// Err converts the body into an error carrying its code, see maelstrom.ErrorCode.
func (e Error) Err() error {
	return maelstrom.NewRPCError(e.Code, e.Text)
}
