// Package router implements the link-state routing control and data
// plane: LSA origination and flooding, the LSDB, Dijkstra-based SPF,
// and hop-by-hop datagram forwarding.
package router

import (
	"sync"
	"time"

	"bjoernblessin.de/lsnet/diag"
	"bjoernblessin.de/lsnet/logx"
	"bjoernblessin.de/lsnet/metrics"
	"bjoernblessin.de/lsnet/transport"
	"bjoernblessin.de/lsnet/wire"
)

// Router is one node of the simulated network's control and data
// plane. All mutable state is guarded by mu; it is written by the three
// goroutines started by Start (receiver, sender, LSA generator), by
// Start's initial LSA origination, and by SendData.
type Router struct {
	id   string
	ip   string
	port int

	sock      transport.Socket
	neighbors *NeighborTable

	mu       sync.Mutex
	lsdb     *LSDB
	routes   *RoutingTable
	seen     map[seenKey]bool
	pending  map[int64]*pendingAck
	outgoing []outgoingItem
	sequence int64

	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// New constructs a Router from Config. The router is not yet
// listening; call Start to bind its socket and launch its goroutines.
func New(cfg Config) *Router {
	r := &Router{
		id:        cfg.ID,
		ip:        cfg.ListenIP,
		port:      cfg.ListenPort,
		sock:      transport.New(),
		neighbors: NewNeighborTable(cfg.Neighbors),
		lsdb:      NewLSDB(),
		routes:    NewRoutingTable(),
		seen:      make(map[seenKey]bool),
		pending:   make(map[int64]*pendingAck),
	}
	return r
}

// ID returns the router's id.
func (r *Router) ID() string { return r.id }

// Start binds the router's socket and launches its receiver, sender,
// and LSA-generator goroutines.
func (r *Router) Start() error {
	if err := r.sock.Open(r.ip, r.port); err != nil {
		logx.Fatalf("router %s: bind %s:%d: %v", r.id, r.ip, r.port, err)
		return err
	}

	r.mu.Lock()
	r.running = true
	r.stop = make(chan struct{})
	r.mu.Unlock()

	r.originateLSA()

	r.wg.Add(3)
	go r.receiveLoop()
	go r.sendLoop()
	go r.lsaLoop()

	logx.Infof("router %s listening on %s:%d", r.id, r.ip, r.port)
	return nil
}

// Stop signals all goroutines to exit and waits up to one second per
// goroutine for them, then closes the socket; a goroutine that has not
// exited by then is logged and left behind.
func (r *Router) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stop)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second): // 1s per goroutine
		logx.Warnf("router %s: goroutines did not exit within the join timeout", r.id)
	}
	r.sock.Close()
}

// receiveLoop reads inbound datagrams with a bounded wait so it can
// notice Stop within ReceiveTimeout.
func (r *Router) receiveLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stop:
			return
		case dgram := <-r.sock.Inbound():
			r.handleDatagram(dgram)
		case <-time.After(ReceiveTimeout):
		}
	}
}

func (r *Router) handleDatagram(dgram transport.Datagram) {
	pkt, err := wire.Unmarshal(dgram.Data)
	if err != nil {
		logx.Warnf("router %s: malformed packet from %v: %v", r.id, dgram.From, err)
		return
	}

	fromIP := dgram.From.IP.String()
	fromPort := dgram.From.Port

	switch pkt.Type {
	case wire.KindLSA:
		r.handleLSA(pkt, fromIP, fromPort)
	case wire.KindData:
		r.handleData(pkt)
	case wire.KindAck:
		r.handleAck(pkt)
	}
}

// handleLSA applies the supersession rule, rebuilds the routing table
// on acceptance, and floods the LSA to every neighbor except the one it
// arrived from (split horizon).
func (r *Router) handleLSA(pkt *wire.Packet, fromIP string, fromPort int) {
	r.mu.Lock()

	key := seenKey{Origin: pkt.Source, Sequence: pkt.Sequence}
	if r.seen[key] {
		r.mu.Unlock()
		metrics.LSAsDroppedDuplicate.WithLabelValues(r.id).Inc()
		return
	}

	accepted := r.lsdb.Supersede(pkt.Source, pkt.Sequence, pkt.Payload.Links)
	if !accepted {
		r.mu.Unlock()
		metrics.LSAsDroppedDuplicate.WithLabelValues(r.id).Inc()
		return
	}
	r.seen[key] = true
	metrics.LSAsAccepted.WithLabelValues(r.id).Inc()

	arrivedFrom, _ := r.neighbors.FindByAddr(fromIP, fromPort)

	var flood []outgoingItem
	for _, n := range r.neighbors.All() {
		if n.ID == arrivedFrom {
			continue // split horizon
		}
		flood = append(flood, outgoingItem{Packet: pkt, IP: n.IP, Port: n.Port})
	}
	r.outgoing = append(r.outgoing, flood...)

	r.rebuildRoutesLocked()

	r.mu.Unlock()

	logx.Debugf("router %s: accepted lsa from %s seq=%d", r.id, pkt.Source, pkt.Sequence)
}

// rebuildRoutesLocked recomputes the routing table from the current
// LSDB. Caller must hold mu.
func (r *Router) rebuildRoutesLocked() {
	graph := r.lsdb.Graph()
	graph[r.id] = r.neighbors.Links()

	if err := r.routes.Rebuild(graph, r.id, r.neighbors); err != nil {
		logx.Warnf("router %s: spf failed: %v", r.id, err)
		return
	}
	metrics.SPFRecomputations.WithLabelValues(r.id).Inc()
	metrics.RoutingTableSize.WithLabelValues(r.id).Set(float64(len(r.routes.Destinations())))

	logx.Debugf("router %s routing table:\n%s", r.id, diag.RenderRoutingTable(r.routeSnapshotLocked()))
}

func (r *Router) routeSnapshotLocked() []diag.RouteRow {
	var rows []diag.RouteRow
	for _, dest := range r.routes.Destinations() {
		route, _ := r.routes.Get(dest)
		rows = append(rows, diag.RouteRow{Destination: dest, NextHop: route.NextHop, Cost: route.Cost, Reachable: true})
	}
	return rows
}

// handleData decrements TTL, acks the packet's source if that id is a
// configured neighbor, consumes the packet locally if addressed to this
// router, or forwards it to the next hop per the routing table,
// tracking the forwarded copy in PendingAcks.
func (r *Router) handleData(pkt *wire.Packet) {
	dest, _ := pkt.Dest()

	r.mu.Lock()

	pkt.TTL--
	if pkt.TTL <= 0 {
		r.mu.Unlock()
		metrics.PacketsDroppedTTL.WithLabelValues(r.id).Inc()
		logx.Warnf("router %s: dropped data packet to %s, ttl expired", r.id, dest)
		return
	}

	// Ack the packet to its original source, looked up by id in the
	// neighbor table, not to the immediate sender's address. This only acks correctly when the
	// source is a direct neighbor; a multi-hop sender will not receive
	// this ack from this router.
	if origin, ok := r.neighbors.Get(pkt.Source); ok {
		ack := wire.NewAck(r.id, pkt.Source, pkt.Sequence, time.Now().UnixMilli())
		r.outgoing = append(r.outgoing, outgoingItem{Packet: ack, IP: origin.IP, Port: origin.Port})
	}

	if dest == r.id {
		r.mu.Unlock()
		logx.Infof("router %s: delivered local data packet seq=%d from %s", r.id, pkt.Sequence, pkt.Source)
		return
	}

	route, ok := r.routes.Lookup(dest)
	if !ok {
		r.mu.Unlock()
		metrics.PacketsDroppedNoRoute.WithLabelValues(r.id).Inc()
		logx.Warnf("router %s: no route to %s, dropping", r.id, dest)
		return
	}

	next, ok := r.neighbors.Get(route.NextHop)
	if !ok {
		r.mu.Unlock()
		metrics.PacketsDroppedNoRoute.WithLabelValues(r.id).Inc()
		return
	}

	r.outgoing = append(r.outgoing, outgoingItem{Packet: pkt, IP: next.IP, Port: next.Port})
	r.pending[pkt.Sequence] = &pendingAck{Packet: pkt, IP: next.IP, Port: next.Port, LastSentAt: time.Now()}
	r.mu.Unlock()

	metrics.PacketsForwarded.WithLabelValues(r.id).Inc()
}

// handleAck clears the matching PendingAcks entry.
func (r *Router) handleAck(pkt *wire.Packet) {
	r.mu.Lock()
	delete(r.pending, pkt.Sequence)
	r.mu.Unlock()
}

// sendLoop drains OutgoingQueue at a fixed cadence and scans
// PendingAcks for entries due for retransmission or abandonment.
func (r *Router) sendLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(SendInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.drainOutgoing()
			r.scanPendingAcks()
		}
	}
}

func (r *Router) drainOutgoing() {
	r.mu.Lock()
	items := r.outgoing
	r.outgoing = nil
	r.mu.Unlock()

	for _, item := range items {
		data, err := wire.Marshal(item.Packet)
		if err != nil {
			logx.Errorf("router %s: marshal failed: %v", r.id, err)
			continue
		}
		if err := r.sock.SendTo(item.IP, item.Port, data); err != nil {
			logx.Warnf("router %s: send to %s:%d failed: %v", r.id, item.IP, item.Port, err)
		}
	}
}

func (r *Router) scanPendingAcks() {
	now := time.Now()

	r.mu.Lock()
	var retry []outgoingItem
	for seq, p := range r.pending {
		if now.Sub(p.LastSentAt) < AckRetryInterval {
			continue
		}
		if p.Retries >= MaxAckRetries {
			delete(r.pending, seq)
			metrics.RetransmitAbandoned.WithLabelValues(r.id).Inc()
			logx.Warnf("router %s: abandoning packet seq=%d after %d retries", r.id, seq, p.Retries)
			continue
		}
		p.Retries++
		p.LastSentAt = now
		retry = append(retry, outgoingItem{Packet: p.Packet, IP: p.IP, Port: p.Port})
	}
	r.mu.Unlock()

	if len(retry) > 0 {
		metrics.Retransmissions.WithLabelValues(r.id).Add(float64(len(retry)))
		r.mu.Lock()
		r.outgoing = append(r.outgoing, retry...)
		r.mu.Unlock()
	}
}

// lsaLoop originates and floods a fresh LSA on a fixed cadence,
// sleeping interruptibly so Stop takes effect promptly.
func (r *Router) lsaLoop() {
	defer r.wg.Done()

	timer := time.NewTimer(LSAInterval)
	defer timer.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-timer.C:
			r.originateLSA()
			timer.Reset(LSAInterval)
		}
	}
}

// originateLSA increments this router's own sequence number, installs
// the resulting LSA into its own LSDB, rebuilds routes, and floods it
// to every neighbor.
func (r *Router) originateLSA() {
	r.mu.Lock()

	r.sequence++
	links := r.neighbors.Links()
	r.lsdb.Supersede(r.id, r.sequence, links)
	r.seen[seenKey{Origin: r.id, Sequence: r.sequence}] = true

	pkt := wire.NewLSA(r.id, r.sequence, links)
	for _, n := range r.neighbors.All() {
		r.outgoing = append(r.outgoing, outgoingItem{Packet: pkt, IP: n.IP, Port: n.Port})
	}

	r.rebuildRoutesLocked()

	r.mu.Unlock()

	metrics.LSAsOriginated.WithLabelValues(r.id).Inc()
	logx.Debugf("router %s: originated lsa seq=%d links=%v", r.id, r.sequence, links)
}

// SendData enqueues a data packet addressed to dest for transmission
// on the next sendLoop tick, tracking it in PendingAcks. The packet's
// source is this router's own id; traffic from hosts is forwarded by
// handleData instead.
func (r *Router) SendData(dest string, ttl int, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sequence++
	pkt := wire.NewData(r.id, dest, r.sequence, ttl, content)

	route, ok := r.routes.Lookup(dest)
	if !ok {
		metrics.PacketsDroppedNoRoute.WithLabelValues(r.id).Inc()
		return
	}
	next, ok := r.neighbors.Get(route.NextHop)
	if !ok {
		return
	}

	r.outgoing = append(r.outgoing, outgoingItem{Packet: pkt, IP: next.IP, Port: next.Port})
	r.pending[r.sequence] = &pendingAck{Packet: pkt, IP: next.IP, Port: next.Port, LastSentAt: time.Now()}
}

// Route returns the installed route for dest, if any, without
// default-gateway fallback. Exported for diagnostics and tests.
func (r *Router) Route(dest string) (RouteEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.routes.Get(dest)
}

// LSDBSnapshot renders the current LSDB for diagnostics.
func (r *Router) LSDBSnapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return diag.RenderLSDB(r.lsdb.Snapshot())
}

// RoutingTableSnapshot renders the current routing table for
// diagnostics.
func (r *Router) RoutingTableSnapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return diag.RenderRoutingTable(r.routeSnapshotLocked())
}
