package main

import (
	"github.com/JohnBasrai/tumult/node"
)

type Broadcast struct {
	Message message `json:"message"`
}

func (Broadcast) Type() string { return "broadcast" }

type BroadcastOk struct{}

func (BroadcastOk) Type() string { return "broadcast_ok" }

type Read struct{}

func (Read) Type() string { return "read" }

type ReadOk struct {
	Messages []message `json:"messages"`
}

func (ReadOk) Type() string { return "read_ok" }

type Topology struct {
	Topology map[nodeID][]nodeID `json:"topology"`
}

func (Topology) Type() string { return "topology" }

type TopologyOk struct{}

func (TopologyOk) Type() string { return "topology_ok" }

// Gossip is fire-and-forget: it has no msg_id and is never answered.
type Gossip struct {
	Seen []message `json:"seen"`
}

func (Gossip) Type() string { return "gossip" }

func newProtocol() *node.Protocol {
	p := node.NewProtocol()
	node.Register[Broadcast](p)
	node.Register[BroadcastOk](p)
	node.Register[Read](p)
	node.Register[ReadOk](p)
	node.Register[Topology](p)
	node.Register[TopologyOk](p)
	node.Register[Gossip](p)
	return p
}
