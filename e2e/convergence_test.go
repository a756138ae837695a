package e2e

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bjoernblessin.de/lsnet/config"
	"bjoernblessin.de/lsnet/router"
)

// lineTopology returns a 3-router line A-B-C with fixed loopback ports,
// so the network converges purely from LSA flooding (spec.md §4.1).
func lineTopology() []config.RouterSpec {
	return []config.RouterSpec{
		{
			ID: "A", ListenIP: "127.0.0.1", ListenPort: 19001,
			Neighbors: []config.NeighborSpec{{ID: "B", IP: "127.0.0.1", Port: 19002}},
		},
		{
			ID: "B", ListenIP: "127.0.0.1", ListenPort: 19002,
			Neighbors: []config.NeighborSpec{
				{ID: "A", IP: "127.0.0.1", Port: 19001},
				{ID: "C", IP: "127.0.0.1", Port: 19003},
			},
		},
		{
			ID: "C", ListenIP: "127.0.0.1", ListenPort: 19003,
			Neighbors: []config.NeighborSpec{{ID: "B", IP: "127.0.0.1", Port: 19002}},
		},
	}
}

// diamondTopology returns A connected to both B and C, which both
// connect to D, so D has two equal-cost paths back to A.
func diamondTopology() []config.RouterSpec {
	return []config.RouterSpec{
		{
			ID: "A", ListenIP: "127.0.0.1", ListenPort: 19011,
			Neighbors: []config.NeighborSpec{
				{ID: "B", IP: "127.0.0.1", Port: 19012},
				{ID: "C", IP: "127.0.0.1", Port: 19013},
			},
		},
		{
			ID: "B", ListenIP: "127.0.0.1", ListenPort: 19012,
			Neighbors: []config.NeighborSpec{
				{ID: "A", IP: "127.0.0.1", Port: 19011},
				{ID: "D", IP: "127.0.0.1", Port: 19014},
			},
		},
		{
			ID: "C", ListenIP: "127.0.0.1", ListenPort: 19013,
			Neighbors: []config.NeighborSpec{
				{ID: "A", IP: "127.0.0.1", Port: 19011},
				{ID: "D", IP: "127.0.0.1", Port: 19014},
			},
		},
		{
			ID: "D", ListenIP: "127.0.0.1", ListenPort: 19014,
			Neighbors: []config.NeighborSpec{
				{ID: "B", IP: "127.0.0.1", Port: 19012},
				{ID: "C", IP: "127.0.0.1", Port: 19013},
			},
		},
	}
}

func startAll(specs []config.RouterSpec) []*router.Router {
	routers := make([]*router.Router, 0, len(specs))
	for _, spec := range specs {
		r := router.New(router.FromSpec(spec))
		Expect(r.Start()).To(Succeed())
		routers = append(routers, r)
	}
	return routers
}

func stopAll(routers []*router.Router) {
	for _, r := range routers {
		r.Stop()
	}
}

var _ = Describe("link-state convergence", func() {
	It("converges a 3-router line so every router has a route to every other", func() {
		routers := startAll(lineTopology())
		defer stopAll(routers)

		byID := map[string]*router.Router{}
		for _, r := range routers {
			byID[r.ID()] = r
		}

		Eventually(func() bool {
			routeAC, ok := byID["A"].Route("C")
			return ok && routeAC.NextHop == "B" && routeAC.Cost == 2
		}, 10*time.Second, 100*time.Millisecond).Should(BeTrue())

		routeCA, ok := byID["C"].Route("A")
		Expect(ok).To(BeTrue())
		Expect(routeCA.NextHop).To(Equal("B"))
		Expect(routeCA.Cost).To(Equal(2))
	})

	It("installs a two-hop route across a diamond topology", func() {
		routers := startAll(diamondTopology())
		defer stopAll(routers)

		byID := map[string]*router.Router{}
		for _, r := range routers {
			byID[r.ID()] = r
		}

		Eventually(func() bool {
			route, ok := byID["A"].Route("D")
			return ok && route.Cost == 2
		}, 10*time.Second, 100*time.Millisecond).Should(BeTrue())

		route, ok := byID["A"].Route("D")
		Expect(ok).To(BeTrue())
		Expect(route.NextHop).To(BeElementOf("B", "C"))
	})
})
