package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/JohnBasrai/tumult/config"
	"github.com/JohnBasrai/tumult/internal/telemetry"
	"github.com/JohnBasrai/tumult/node"
)

type server struct {
	self         nodeID
	ids          int
	messages     mapset.Set[message]
	known        map[nodeID]mapset.Set[message]
	neighborhood []nodeID
	redundancy   float64
	rng          *rand.Rand
	log          *logrus.Entry
}

type nodeID = string
type message = int

// gossipNow is injected by the ticker to start an anti-entropy round.
type gossipNow struct{}

var (
	errNoTopology  = errors.New("no topology entry")
	errUnknownPeer = errors.New("peer not in cluster")
)

// Challenge #3: Broadcast
// https://fly.io/dist-sys/3a
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
		Use:   "broadcast",
		Short: "Gossip broadcast node for maelstrom",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			log := conf.Logger().WithField("component", "broadcast")
			if conf.MetricsAddr != "" {
				telemetry.Serve(conf.MetricsAddr, log)
			}

			n := node.NewNode(newProtocol())
			n.Logger = log
			return n.Run(newFactory(conf.GossipInterval, conf.Redundancy, log))
		},
	}
	config.AddFlags(cmd.Flags(), defaults)
	config.AddGossipFlags(cmd.Flags(), defaults)
	return cmd
}

func newFactory(interval time.Duration, redundancy float64, log *logrus.Entry) node.Factory {
	return func(in node.Init, inj node.Injector) (node.Handler, error) {
		node.Tick(inj, interval, gossipNow{})
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		return newServer(in, redundancy, rng, log), nil
	}
}

func newServer(in node.Init, redundancy float64, rng *rand.Rand, log *logrus.Entry) *server {
	known := make(map[nodeID]mapset.Set[message], len(in.NodeIDs))
	for _, id := range in.NodeIDs {
		known[id] = mapset.NewSet[message]()
	}
	return &server{
		self:       in.NodeID,
		ids:        1,
		messages:   mapset.NewSet[message](),
		known:      known,
		redundancy: redundancy,
		rng:        rng,
		log:        log.WithField("node", in.NodeID),
	}
}

func (s *server) Handle(msg node.Message, out *node.Output) error {
	switch req := msg.Body.Payload.(type) {
	case Broadcast:
		s.broadcastHandler(req)
		return out.Reply(msg, &s.ids, BroadcastOk{})
	case Read:
		return out.Reply(msg, &s.ids, s.readHandler())
	case Topology:
		if err := s.topologyHandler(req); err != nil {
			return err
		}
		return out.Reply(msg, &s.ids, TopologyOk{})
	case Gossip:
		return s.gossipHandler(msg.Src, req)
	case BroadcastOk, ReadOk, TopologyOk:
		return nil
	default:
		return fmt.Errorf("unexpected payload %T", req)
	}
}

func (s *server) HandleInjected(payload any, out *node.Output) error {
	switch payload.(type) {
	case gossipNow:
		return s.gossip(out)
	default:
		return fmt.Errorf("unexpected injected event %T", payload)
	}
}

func (s *server) broadcastHandler(req Broadcast) {
	s.messages.Add(req.Message)
	telemetry.KnownValues.Set(float64(s.messages.Cardinality()))
}

func (s *server) readHandler() ReadOk {
	return ReadOk{
		Messages: s.messages.ToSlice(),
	}
}

func (s *server) topologyHandler(req Topology) error {
	neighborhood, ok := req.Topology[s.self]
	if !ok {
		return fmt.Errorf("%w for %s", errNoTopology, s.self)
	}
	for _, peer := range neighborhood {
		if _, ok := s.known[peer]; !ok {
			return fmt.Errorf("%w: %s", errUnknownPeer, peer)
		}
	}

	s.neighborhood = neighborhood
	s.log.WithField("neighborhood", neighborhood).Info("Topology updated")
	return nil
}

// gossipHandler records that src knows everything in seen, and learns it too.
func (s *server) gossipHandler(src nodeID, req Gossip) error {
	knownToSrc, ok := s.known[src]
	if !ok {
		return fmt.Errorf("%w: gossip from %s", errUnknownPeer, src)
	}
	for _, m := range req.Seen {
		knownToSrc.Add(m)
		s.messages.Add(m)
	}
	telemetry.KnownValues.Set(float64(s.messages.Cardinality()))
	return nil
}
