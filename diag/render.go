// Package diag renders the LSDB and routing table as human-readable,
// colorized tables. It is a pure-function sink of router state: every
// function here takes a snapshot and returns a string, with no side
// effects and no access to router internals.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/colorstring"
)

// LSDBRow is one line of a rendered Link-State Database: the
// originating router, its LSA sequence number, and its advertised
// neighbor links.
type LSDBRow struct {
	RouterID string
	Sequence int64
	Links    map[string]int
}

// RouteRow is one line of a rendered routing table: a destination, its
// next hop, and path cost. A destination with no feasible route is
// rendered as unreachable.
type RouteRow struct {
	Destination string
	NextHop     string
	Cost        int
	Reachable   bool
}

// RenderLSDB formats the Link-State Database as a bordered table,
// sorted by router id for deterministic output. Rows are colored green.
func RenderLSDB(rows []LSDBRow) string {
	sort.Slice(rows, func(i, j int) bool { return rows[i].RouterID < rows[j].RouterID })

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-12s %-10s %s\n", "ROUTER", "SEQUENCE", "LINKS (neighbor:cost)"))
	b.WriteString(strings.Repeat("-", 60) + "\n")

	for _, row := range rows {
		links := formatLinks(row.Links)
		line := fmt.Sprintf("%-12s %-10d %s", row.RouterID, row.Sequence, links)
		b.WriteString(colorstring.Color("[green]"+escape(line)+"[reset]") + "\n")
	}

	return b.String()
}

// RenderRoutingTable formats a routing table as a bordered table, sorted
// by destination id. Unreachable destinations are colored red.
func RenderRoutingTable(rows []RouteRow) string {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Destination < rows[j].Destination })

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-12s %-12s %s\n", "DESTINATION", "NEXT HOP", "COST"))
	b.WriteString(strings.Repeat("-", 40) + "\n")

	for _, row := range rows {
		if !row.Reachable {
			line := fmt.Sprintf("%-12s %-12s %s", row.Destination, "-", "unreachable")
			b.WriteString(colorstring.Color("[red]"+escape(line)+"[reset]") + "\n")
			continue
		}

		line := fmt.Sprintf("%-12s %-12s %d", row.Destination, row.NextHop, row.Cost)
		b.WriteString(colorstring.Color("[green]"+escape(line)+"[reset]") + "\n")
	}

	return b.String()
}

func formatLinks(links map[string]int) string {
	ids := make([]string, 0, len(links))
	for id := range links {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s:%d", id, links[id]))
	}

	return strings.Join(parts, ", ")
}

// escape guards against a router or host id containing colorstring's
// "[" color-code delimiter, which would otherwise be interpreted as a
// color directive.
func escape(s string) string {
	return strings.ReplaceAll(s, "[", "(")
}
