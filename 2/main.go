package main

import (
	"fmt"
	"os"

	uuid "github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JohnBasrai/tumult/config"
	"github.com/JohnBasrai/tumult/internal/telemetry"
	"github.com/JohnBasrai/tumult/node"
)

type server struct {
	self nodeID
	ids  int
	// newID returns the id for a reply carrying msg_id n.
	newID func(n int) string
}

type nodeID = string

// Challenge #2: Unique ID Generation
// https://fly.io/dist-sys/2
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
		Use:   "unique-ids",
		Short: "Unique ID generation node for maelstrom",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			log := conf.Logger().WithField("component", "unique-ids")
			if conf.MetricsAddr != "" {
				telemetry.Serve(conf.MetricsAddr, log)
			}

			n := node.NewNode(newProtocol())
			n.Logger = log
			return n.Run(newFactory(conf.IDFormat))
		},
	}
	config.AddFlags(cmd.Flags(), defaults)
	config.AddIDFlags(cmd.Flags(), defaults)
	return cmd
}

func newFactory(format string) node.Factory {
	return func(in node.Init, _ node.Injector) (node.Handler, error) {
		s := &server{self: in.NodeID, ids: 1}
		switch format {
		case config.IDFormatCounter:
			// msg ids are unique per node, node ids are unique per cluster
			s.newID = func(n int) string { return fmt.Sprintf("%s/%d", s.self, n) }
		case config.IDFormatUUID:
			s.newID = func(int) string { return uuid.New().String() }
		default:
			return nil, fmt.Errorf("unknown id format %q", format)
		}
		return s, nil
	}
}

func (s *server) Handle(msg node.Message, out *node.Output) error {
	switch req := msg.Body.Payload.(type) {
	case Generate:
		return out.Reply(msg, &s.ids, GenerateOk{Id: s.newID(s.ids)})
	case GenerateOk:
		return nil
	default:
		return fmt.Errorf("unexpected payload %T", req)
	}
}

func (s *server) HandleInjected(payload any, out *node.Output) error {
	return fmt.Errorf("unexpected injected event %T", payload)
}
