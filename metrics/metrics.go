// Package metrics exposes Prometheus counters and gauges for the
// router and host control/data planes. These are the machine-readable
// counterpart to the human-readable table dumps in package diag.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	LSAsOriginated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_lsas_originated_total",
		Help: "LSAs originated by this router.",
	}, []string{"router"})

	LSAsAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_lsas_accepted_total",
		Help: "LSAs accepted into the LSDB via the supersession rule.",
	}, []string{"router"})

	LSAsDroppedDuplicate = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_lsas_dropped_duplicate_total",
		Help: "LSAs dropped because they were already seen or stale.",
	}, []string{"router"})

	SPFRecomputations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_spf_recomputations_total",
		Help: "Dijkstra SPF recomputations triggered by LSA acceptance.",
	}, []string{"router"})

	PacketsForwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_packets_forwarded_total",
		Help: "Data packets forwarded to a next hop.",
	}, []string{"router"})

	PacketsDroppedTTL = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_packets_dropped_ttl_total",
		Help: "Data packets dropped because their TTL reached zero.",
	}, []string{"router"})

	PacketsDroppedNoRoute = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_packets_dropped_no_route_total",
		Help: "Data packets dropped because no route or neighbor existed.",
	}, []string{"router"})

	Retransmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_retransmissions_total",
		Help: "Pending-ACK retransmissions sent.",
	}, []string{"router"})

	RetransmitAbandoned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_retransmit_abandoned_total",
		Help: "Pending-ACK entries dropped after exceeding the retry ceiling.",
	}, []string{"router"})

	HostMessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_host_messages_sent_total",
		Help: "Data packets transmitted by a host sender.",
	}, []string{"host"})

	HostMessagesConfirmed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_host_messages_confirmed_total",
		Help: "Host data packets whose ACK arrived.",
	}, []string{"host"})

	HostMessagesTimedOut = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsnet_host_messages_timed_out_total",
		Help: "Host stop-and-wait attempts that timed out and were requeued.",
	}, []string{"host"})

	RoutingTableSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lsnet_routing_table_size",
		Help: "Number of destinations currently in the routing table.",
	}, []string{"router"})
)

func init() {
	prometheus.MustRegister(
		LSAsOriginated,
		LSAsAccepted,
		LSAsDroppedDuplicate,
		SPFRecomputations,
		PacketsForwarded,
		PacketsDroppedTTL,
		PacketsDroppedNoRoute,
		Retransmissions,
		RetransmitAbandoned,
		HostMessagesSent,
		HostMessagesConfirmed,
		HostMessagesTimedOut,
		RoutingTableSize,
	)
}
