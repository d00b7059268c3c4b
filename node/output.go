package node

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/JohnBasrai/tumult/internal/telemetry"
)

// Output writes complete envelope lines to stdout. Only the dispatch loop
// holds one, so writes need no locking.
type Output struct {
	enc *json.Encoder
}

// NewOutput writes envelopes to w, one per line.
func NewOutput(w io.Writer) *Output {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Output{enc: enc}
}

// Send writes msg as one line.
func (o *Output) Send(msg Message) error {
	if err := o.enc.Encode(msg); err != nil {
		return err
	}
	telemetry.MessagesSent.WithLabelValues(msg.Body.Payload.Type()).Inc()
	return nil
}

// Reply answers req with payload. ids is the handler's reply counter, see
// Message.IntoReply.
func (o *Output) Reply(req Message, ids *int, payload Payload) error {
	reply := req.IntoReply(ids)
	reply.Body.Payload = payload
	if err := o.Send(reply); err != nil {
		return fmt.Errorf("reply to %s: %w", req.Body.Payload.Type(), err)
	}
	return nil
}

// SendAsync sends payload to dest without a msg_id; no reply is expected.
func (o *Output) SendAsync(src, dest string, payload Payload) error {
	msg := Message{
		Src:  src,
		Dest: dest,
		Body: Body{Payload: payload},
	}
	if err := o.Send(msg); err != nil {
		return fmt.Errorf("%s to %s: %w", payload.Type(), dest, err)
	}
	return nil
}
