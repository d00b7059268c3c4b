package main

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/JohnBasrai/tumult/common"
	"github.com/JohnBasrai/tumult/internal/telemetry"
	"github.com/JohnBasrai/tumult/node"
)

// gossip runs one anti-entropy round: every neighbour gets the values it is
// not known to have, plus a few it is, in case earlier gossip was lost.
func (s *server) gossip(out *node.Output) error {
	for _, peer := range s.neighborhood {
		unknown, redundant := s.gossipFor(peer)

		seen := make([]message, 0, len(unknown)+len(redundant))
		seen = append(seen, unknown...)
		seen = append(seen, redundant...)
		if err := out.SendAsync(s.self, peer, Gossip{Seen: seen}); err != nil {
			return err
		}

		telemetry.GossipValues.WithLabelValues("new").Add(float64(len(unknown)))
		telemetry.GossipValues.WithLabelValues("redundant").Add(float64(len(redundant)))
		s.log.WithFields(logrus.Fields{
			"peer":      peer,
			"new":       len(unknown),
			"redundant": len(redundant),
		}).Debug("Gossip")
	}
	return nil
}

// gossipFor splits this node's values into those peer is not known to have
// and a random sample of those it is. The sample is capped at
// floor(redundancy * |unknown|) and can't exceed the known values.
func (s *server) gossipFor(peer nodeID) (unknown, redundant []message) {
	knownToPeer := s.known[peer]
	alreadyKnown, notifyOf := common.Partition(s.messages, func(m message) bool {
		return knownToPeer.Contains(m)
	})

	limit := redundantLimit(s.redundancy, notifyOf.Cardinality())
	return notifyOf.ToSlice(), common.Sample(alreadyKnown, limit, s.rng)
}

func redundantLimit(ratio float64, unknown int) int {
	return int(math.Floor(ratio * float64(unknown)))
}
