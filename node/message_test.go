package node

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct {
	N int `json:"n"`
}

func (ping) Type() string { return "ping" }

type pong struct {
	N int `json:"n"`
}

func (pong) Type() string { return "pong" }

func intPtr(v int) *int {
	return &v
}

func TestMessage_IntoReply(t *testing.T) {
	req := Message{
		Src:  "c1",
		Dest: "n1",
		Body: Body{MsgID: intPtr(7), Payload: ping{N: 1}},
	}

	tests := []struct {
		name      string
		ids       *int
		wantMsgID *int
		wantNext  int
	}{
		{
			name:      "with counter",
			ids:       intPtr(3),
			wantMsgID: intPtr(3),
			wantNext:  4,
		},
		{
			name:      "fire and forget",
			ids:       nil,
			wantMsgID: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := req.IntoReply(tt.ids)

			assert.Equal(t, "n1", reply.Src)
			assert.Equal(t, "c1", reply.Dest)
			require.NotNil(t, reply.Body.InReplyTo)
			assert.Equal(t, 7, *reply.Body.InReplyTo)
			assert.Equal(t, tt.wantMsgID, reply.Body.MsgID)
			assert.Equal(t, ping{N: 1}, reply.Body.Payload)
			if tt.ids != nil {
				assert.Equal(t, tt.wantNext, *tt.ids)
			}
		})
	}
}

func TestMessage_IntoReplyWithoutMsgID(t *testing.T) {
	req := Message{Src: "n2", Dest: "n1", Body: Body{Payload: ping{}}}
	reply := req.IntoReply(nil)
	assert.Nil(t, reply.Body.InReplyTo)
	assert.Nil(t, reply.Body.MsgID)
}

func TestMessage_IntoReplyDoesNotAlias(t *testing.T) {
	req := Message{Src: "c1", Dest: "n1", Body: Body{MsgID: intPtr(1), Payload: ping{}}}
	reply := req.IntoReply(nil)
	*req.Body.MsgID = 99
	assert.Equal(t, 1, *reply.Body.InReplyTo)
}

func TestBody_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "init ok",
			msg: Message{
				Src:  "n1",
				Dest: "c1",
				Body: Body{MsgID: intPtr(0), InReplyTo: intPtr(1), Payload: InitOk{}},
			},
			want: `{"src":"n1","dest":"c1","body":{"type":"init_ok","msg_id":0,"in_reply_to":1}}`,
		},
		{
			name: "payload fields are flattened",
			msg: Message{
				Src:  "n1",
				Dest: "n2",
				Body: Body{Payload: ping{N: 5}},
			},
			want: `{"src":"n1","dest":"n2","body":{"type":"ping","n":5}}`,
		},
		{
			name: "init",
			msg: Message{
				Src:  "c1",
				Dest: "n1",
				Body: Body{MsgID: intPtr(1), Payload: Init{NodeID: "n1", NodeIDs: []string{"n1", "n2"}}},
			},
			want: `{"src":"c1","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1","n2"]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
			assert.NotContains(t, string(got), "\n")
		})
	}
}

func TestBody_MarshalJSONWithoutPayload(t *testing.T) {
	_, err := json.Marshal(Message{Src: "n1", Dest: "n2"})
	assert.Error(t, err)
}
