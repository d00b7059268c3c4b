package node

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JohnBasrai/tumult/utils"
)

// Message is one envelope exchanged with the harness.
type Message struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
	Body Body   `json:"body"`
}

// Body carries the correlation ids next to exactly one payload variant. On
// the wire the payload's fields and its "type" tag sit flat in the body.
type Body struct {
	MsgID     *int
	InReplyTo *int
	Payload   Payload
}

// IntoReply swaps src and dest and points in_reply_to at m's msg_id. If ids
// is not nil the reply is assigned the next id from it; otherwise msg_id is
// left absent, as for fire-and-forget sends. The payload is carried over
// unchanged for the caller to replace.
func (m Message) IntoReply(ids *int) Message {
	var msgID *int
	if ids != nil {
		id := *ids
		*ids++
		msgID = &id
	}

	var inReplyTo *int
	if m.Body.MsgID != nil {
		id := *m.Body.MsgID
		inReplyTo = &id
	}

	return Message{
		Src:  m.Dest,
		Dest: m.Src,
		Body: Body{
			MsgID:     msgID,
			InReplyTo: inReplyTo,
			Payload:   m.Body.Payload,
		},
	}
}

func (b Body) MarshalJSON() ([]byte, error) {
	if b.Payload == nil {
		return nil, errors.New("body has no payload")
	}
	fields, err := utils.AsJSON(b.Payload)
	if err != nil {
		return nil, fmt.Errorf("flatten %s payload: %w", b.Payload.Type(), err)
	}
	fields["type"] = b.Payload.Type()
	if b.MsgID != nil {
		fields["msg_id"] = *b.MsgID
	}
	if b.InReplyTo != nil {
		fields["in_reply_to"] = *b.InReplyTo
	}
	return json.Marshal(fields)
}

// header holds the correlation ids of an inbound body. Both are optional, so
// unlike maelstrom.MessageBody they are pointers.
type header struct {
	MsgID     *int `json:"msg_id"`
	InReplyTo *int `json:"in_reply_to"`
}
