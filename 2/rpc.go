package main

import (
	"github.com/JohnBasrai/tumult/node"
)

type Generate struct{}

func (Generate) Type() string { return "generate" }

type GenerateOk struct {
	Id string `json:"id"`
}

func (GenerateOk) Type() string { return "generate_ok" }

func newProtocol() *node.Protocol {
	p := node.NewProtocol()
	node.Register[Generate](p)
	node.Register[GenerateOk](p)
	return p
}
