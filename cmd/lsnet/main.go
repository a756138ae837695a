// Command lsnet runs a simulated link-state network (routers and
// hosts) as declared in a YAML topology file.
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bjoernblessin.de/lsnet/config"
	"bjoernblessin.de/lsnet/host"
	"bjoernblessin.de/lsnet/logx"
	"bjoernblessin.de/lsnet/router"
)

func main() {
	topologyPath := flag.String("topology", "topology.yaml", "path to the YAML topology file")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9100)")
	flag.Parse()

	topo, err := config.Load(*topologyPath)
	if err != nil {
		logx.Fatalf("load topology: %v", err)
	}

	routers := make([]*router.Router, 0, len(topo.Routers))
	for _, spec := range topo.Routers {
		r := router.New(router.FromSpec(spec))
		routers = append(routers, r)
	}

	hosts := host.NewManager()
	for _, spec := range topo.Hosts {
		hosts.Add(host.FromSpec(spec))
	}

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	for _, r := range routers {
		if err := r.Start(); err != nil {
			logx.Fatalf("start router %s: %v", r.ID(), err)
		}
	}
	if err := hosts.StartAll(); err != nil {
		logx.Fatalf("start hosts: %v", err)
	}

	logx.Infof("lsnet running: %d router(s), %d host(s)", len(routers), len(topo.Hosts))

	waitForShutdown()

	logx.Infof("shutting down")
	hosts.StopAll()
	for _, r := range routers {
		r.Stop()
	}
}

func waitForShutdown() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logx.Infof("serving metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logx.Errorf("metrics server: %v", err)
	}
}
