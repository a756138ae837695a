package router

import (
	"time"

	"bjoernblessin.de/lsnet/config"
)

// Timing constants governing the router's three goroutines: the
// receiver's blocking-read cap, the sender tick, the pending-ack retry
// interval and ceiling, and the LSA origination cadence.
const (
	ReceiveTimeout   = 1 * time.Second
	SendInterval     = 100 * time.Millisecond
	AckRetryInterval = 2 * time.Second
	MaxAckRetries    = 3
	LSAInterval      = 30 * time.Second
)

// Config configures a single Router instance, derived from a
// config.RouterSpec.
type Config struct {
	ID         string
	ListenIP   string
	ListenPort int
	Neighbors  []config.NeighborSpec
}

// FromSpec builds a router Config from a declarative RouterSpec.
func FromSpec(spec config.RouterSpec) Config {
	return Config{
		ID:         spec.ID,
		ListenIP:   spec.ListenIP,
		ListenPort: spec.ListenPort,
		Neighbors:  spec.Neighbors,
	}
}
