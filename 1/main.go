package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JohnBasrai/tumult/config"
	"github.com/JohnBasrai/tumult/internal/telemetry"
	"github.com/JohnBasrai/tumult/node"
)

type server struct {
	ids int
}

// Challenge #1: Echo
// https://fly.io/dist-sys/1
func main() {
	rootCmd := newRootCmd()
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.NewDefaultConfig()
	cmd := &cobra.Command{
		Use:   "echo",
		Short: "Echo node for maelstrom",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			log := conf.Logger().WithField("component", "echo")
			if conf.MetricsAddr != "" {
				telemetry.Serve(conf.MetricsAddr, log)
			}

			n := node.NewNode(newProtocol())
			n.Logger = log
			return n.Run(newServer)
		},
	}
	config.AddFlags(cmd.Flags(), defaults)
	return cmd
}

func newServer(node.Init, node.Injector) (node.Handler, error) {
	return &server{ids: 1}, nil
}

func (s *server) Handle(msg node.Message, out *node.Output) error {
	switch req := msg.Body.Payload.(type) {
	case Echo:
		return out.Reply(msg, &s.ids, EchoOk{Echo: req.Echo})
	case EchoOk:
		return nil
	default:
		return fmt.Errorf("unexpected payload %T", req)
	}
}

func (s *server) HandleInjected(payload any, out *node.Output) error {
	return fmt.Errorf("unexpected injected event %T", payload)
}
