package router

import (
	"time"

	"bjoernblessin.de/lsnet/wire"
)

// NeighborEntry is one entry of a router's static neighbor table: a
// directly connected node's address and port.
type NeighborEntry struct {
	ID   string
	IP   string
	Port int
}

// LSAEntry is one row of the Link-State Database.
type LSAEntry struct {
	Sequence  int64
	Links     map[string]int
	Timestamp time.Time
}

// RouteEntry is one row of the routing table.
type RouteEntry struct {
	NextHop string
	Cost    int
}

// DefaultGatewayKey is the destination key used for the default route
// installed whenever a router has at least one neighbor.
const DefaultGatewayKey = "0.0.0.0"

// seenKey identifies an absorbed LSA by (originator, sequence), the key
// of the SeenSet dedup table.
type seenKey struct {
	Origin   string
	Sequence int64
}

// pendingAck is one row of the PendingAcks table: a transmitted data
// packet awaiting acknowledgment, tracked by its own sequence number.
// Two in-flight data packets from different sources that happen to
// share a sequence number will collide in this table; PendingAcks is a
// flat sequence->entry map rather than one keyed per source.
type pendingAck struct {
	Packet     *wire.Packet
	IP         string
	Port       int
	LastSentAt time.Time
	Retries    int
}

// outgoingItem is one entry of the outgoing send queue.
type outgoingItem struct {
	Packet *wire.Packet
	IP     string
	Port   int
}
