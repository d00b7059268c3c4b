package main

import (
	"github.com/JohnBasrai/tumult/node"
)

type Echo struct {
	Echo string `json:"echo"`
}

func (Echo) Type() string { return "echo" }

type EchoOk struct {
	Echo string `json:"echo"`
}

func (EchoOk) Type() string { return "echo_ok" }

func newProtocol() *node.Protocol {
	p := node.NewProtocol()
	node.Register[Echo](p)
	node.Register[EchoOk](p)
	return p
}
