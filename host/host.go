// Package host implements the stop-and-wait reliable delivery layer
// run by each simulated host: a sender that transmits one data packet
// at a time and waits for its ACK, and a receiver that acks inbound
// data and replies to it.
package host

import (
	"math/rand"
	"sync"
	"time"

	"bjoernblessin.de/lsnet/config"
	"bjoernblessin.de/lsnet/logx"
	"bjoernblessin.de/lsnet/metrics"
	"bjoernblessin.de/lsnet/transport"
	"bjoernblessin.de/lsnet/wire"
)

// Timing constants for the host's two activities. AckWait is a var
// rather than a const so tests can shrink it instead of waiting out a
// real retransmit timeout.
var AckWait = 5 * time.Second

const (
	SpontaneousMin = 4 * time.Second
	SpontaneousMax = 7 * time.Second
	DefaultTTL     = 10
)

// releaseEvent is a one-shot, re-armable signal: Signal wakes any
// goroutine currently blocked in Wait, and Reset re-arms it for the
// next wait. Used by the host sender to block on ACK arrival up to
// AckWait.
type releaseEvent struct {
	mu sync.Mutex
	ch chan struct{}
}

func newReleaseEvent() *releaseEvent {
	return &releaseEvent{ch: make(chan struct{})}
}

func (e *releaseEvent) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ch = make(chan struct{})
}

func (e *releaseEvent) Signal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.ch:
		// already signaled since the last Reset
	default:
		close(e.ch)
	}
}

func (e *releaseEvent) Chan() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ch
}

// pendingPacket is the one data packet the sender has in flight, if
// any.
type pendingPacket struct {
	packet *wire.Packet
}

// Config configures a single Host instance, derived from a
// config.HostSpec.
type Config struct {
	ID          string
	ListenIP    string
	ListenPort  int
	GatewayIP   string
	GatewayPort int
	KnownHosts  []string
}

// FromSpec builds a host Config from a declarative HostSpec, filtering
// the host's own id out of its known-peers list.
func FromSpec(spec config.HostSpec) Config {
	peers := make([]string, 0, len(spec.KnownHosts))
	for _, p := range spec.KnownHosts {
		if p != spec.ID {
			peers = append(peers, p)
		}
	}

	return Config{
		ID:          spec.ID,
		ListenIP:    spec.ListenIP,
		ListenPort:  spec.ListenPort,
		GatewayIP:   spec.RouterIP,
		GatewayPort: spec.RouterPort,
		KnownHosts:  peers,
	}
}

// Host is one simulated end host running the stop-and-wait reliability
// layer over its gateway router.
type Host struct {
	id          string
	ip          string
	port        int
	gatewayIP   string
	gatewayPort int
	peers       []string

	sock transport.Socket
	rng  *rand.Rand

	mu                   sync.Mutex
	queue                []*wire.Packet
	awaitingConfirmation bool
	inFlight             *pendingPacket
	lastConfirmedSeq     int64
	sequence             int64

	release *releaseEvent

	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// New constructs a Host from Config. Start binds its socket and
// launches its sender and receiver goroutines.
func New(cfg Config) *Host {
	return &Host{
		id:          cfg.ID,
		ip:          cfg.ListenIP,
		port:        cfg.ListenPort,
		gatewayIP:   cfg.GatewayIP,
		gatewayPort: cfg.GatewayPort,
		peers:       cfg.KnownHosts,
		sock:        transport.New(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		release:     newReleaseEvent(),
	}
}

// ID returns the host's id.
func (h *Host) ID() string { return h.id }

// LastConfirmedSeq returns the sequence number of the most recently
// acked outbound packet, or 0 if none has been confirmed yet.
func (h *Host) LastConfirmedSeq() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastConfirmedSeq
}

// Start binds the host's socket and launches its sender and receiver
// goroutines.
func (h *Host) Start() error {
	if err := h.sock.Open(h.ip, h.port); err != nil {
		logx.Errorf("host %s: bind %s:%d: %v", h.id, h.ip, h.port, err)
		return err
	}

	h.mu.Lock()
	h.running = true
	h.stop = make(chan struct{})
	h.mu.Unlock()

	h.wg.Add(2)
	go h.receiveLoop()
	go h.senderLoop()

	logx.Infof("host %s listening on %s:%d, gateway %s:%d", h.id, h.ip, h.port, h.gatewayIP, h.gatewayPort)
	return nil
}

// Stop signals both goroutines to exit, unblocks a sender waiting on
// the release event, and waits up to one second per goroutine for both
// to finish before closing the socket; a goroutine that has not exited
// by then is logged and left behind.
func (h *Host) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.stop)
	h.mu.Unlock()

	h.release.Signal()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second): // 1s per goroutine
		logx.Warnf("host %s: goroutines did not exit within the join timeout", h.id)
	}
	h.sock.Close()
}

// receiveLoop reads inbound datagrams with a bounded wait so it can
// notice Stop promptly.
func (h *Host) receiveLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.stop:
			return
		case dgram := <-h.sock.Inbound():
			h.handleDatagram(dgram)
		case <-time.After(1 * time.Second):
		}
	}
}

func (h *Host) handleDatagram(dgram transport.Datagram) {
	pkt, err := wire.Unmarshal(dgram.Data)
	if err != nil {
		logx.Warnf("host %s: malformed packet: %v", h.id, err)
		return
	}

	switch pkt.Type {
	case wire.KindData:
		h.handleInboundData(pkt)
	case wire.KindAck:
		h.handleInboundAck(pkt)
	default:
		logx.Warnf("host %s: unexpected packet type %q", h.id, pkt.Type)
	}
}

// handleInboundData acks the sender and enqueues a "Legal." reply,
// both routed through the gateway.
func (h *Host) handleInboundData(pkt *wire.Packet) {
	dest, _ := pkt.Dest()
	if dest != h.id {
		return
	}

	ack := wire.NewAck(h.id, pkt.Source, pkt.Sequence, time.Now().UnixMilli())
	h.sendViaGateway(ack)

	h.mu.Lock()
	h.sequence++
	reply := wire.NewData(h.id, pkt.Source, h.sequence, DefaultTTL, "Legal.")
	h.queue = append(h.queue, reply)
	h.mu.Unlock()

	logx.Infof("host %s: received %q from %s, acked and queued reply", h.id, pkt.Payload.Content, pkt.Source)
}

// handleInboundAck advances lastConfirmedSeq and releases the sender
// when the ack's sequence matches the in-flight packet: this matches
// against the sequence of the packet actually in flight rather than a
// strict running count, so a host is never stuck unable to recognize
// the ack for what it actually sent. Non-matching acks are ignored.
func (h *Host) handleInboundAck(pkt *wire.Packet) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.inFlight == nil || pkt.Sequence != h.inFlight.packet.Sequence {
		logx.Debugf("host %s: ignoring ack seq=%d, no matching in-flight packet", h.id, pkt.Sequence)
		return
	}

	h.lastConfirmedSeq = pkt.Sequence
	h.awaitingConfirmation = false
	h.inFlight = nil
	metrics.HostMessagesConfirmed.WithLabelValues(h.id).Inc()
	h.release.Signal()
}

// senderLoop implements the stop-and-wait state machine: synthesize
// or pop one packet, transmit, block on the release event up to
// AckWait, then either clear on ack-match or requeue on timeout.
func (h *Host) senderLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		h.mu.Lock()
		if !h.awaitingConfirmation && len(h.queue) == 0 && len(h.peers) > 0 {
			peer := h.peers[h.rng.Intn(len(h.peers))]
			h.sequence++
			h.queue = append(h.queue, wire.NewData(h.id, peer, h.sequence, DefaultTTL, "Legal?"))
		}

		if h.awaitingConfirmation || len(h.queue) == 0 {
			h.mu.Unlock()
			h.sleepSpontaneousInterval()
			continue
		}

		pkt := h.queue[0]
		h.queue = h.queue[1:]
		h.awaitingConfirmation = true
		h.inFlight = &pendingPacket{packet: pkt}
		h.release.Reset()
		waitChan := h.release.Chan()
		h.mu.Unlock()

		h.sendViaGateway(pkt)
		metrics.HostMessagesSent.WithLabelValues(h.id).Inc()

		select {
		case <-h.stop:
			return
		case <-waitChan:
			// ack_match: handleInboundAck already cleared the flag. Pause
			// for the spontaneous interval before the next message.
			h.sleepSpontaneousInterval()
		case <-time.After(AckWait):
			h.requeueTimedOut(pkt)
		}
	}
}

func (h *Host) requeueTimedOut(pkt *wire.Packet) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.awaitingConfirmation || h.inFlight == nil || h.inFlight.packet != pkt {
		return // ack arrived in the race between the timer firing and this lock
	}

	h.queue = append([]*wire.Packet{pkt}, h.queue...)
	h.awaitingConfirmation = false
	h.inFlight = nil
	metrics.HostMessagesTimedOut.WithLabelValues(h.id).Inc()
	logx.Warnf("host %s: ack timeout for seq=%d, requeued", h.id, pkt.Sequence)
}

func (h *Host) sleepSpontaneousInterval() {
	d := SpontaneousMin + time.Duration(h.rng.Int63n(int64(SpontaneousMax-SpontaneousMin)))
	select {
	case <-h.stop:
	case <-time.After(d):
	}
}

func (h *Host) sendViaGateway(pkt *wire.Packet) {
	data, err := wire.Marshal(pkt)
	if err != nil {
		logx.Errorf("host %s: marshal failed: %v", h.id, err)
		return
	}
	if err := h.sock.SendTo(h.gatewayIP, h.gatewayPort, data); err != nil {
		logx.Warnf("host %s: send to gateway failed: %v", h.id, err)
	}
}
