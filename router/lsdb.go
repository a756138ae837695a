package router

import (
	"time"

	"bjoernblessin.de/lsnet/diag"
)

// LSDB is the Link-State Database. It is created at router startup
// with the self-entry and entries are only ever added or updated via
// the supersession rule — never deleted.
type LSDB struct {
	entries map[string]LSAEntry
}

// NewLSDB creates an empty LSDB. The caller is expected to immediately
// install the self-entry.
func NewLSDB() *LSDB {
	return &LSDB{entries: make(map[string]LSAEntry)}
}

// Get returns the stored entry for a router id, if any.
func (l *LSDB) Get(id string) (LSAEntry, bool) {
	e, ok := l.entries[id]
	return e, ok
}

// CurrentSequence returns the stored sequence for id, or -1 if absent.
func (l *LSDB) CurrentSequence(id string) int64 {
	if e, ok := l.entries[id]; ok {
		return e.Sequence
	}
	return -1
}

// Supersede overwrites the entry for id if seq is strictly greater than
// the currently stored sequence. Returns true if the entry was
// installed.
func (l *LSDB) Supersede(id string, seq int64, links map[string]int) bool {
	if seq <= l.CurrentSequence(id) {
		return false
	}

	l.entries[id] = LSAEntry{
		Sequence:  seq,
		Links:     links,
		Timestamp: time.Now(),
	}

	return true
}

// IDs returns every router id currently present in the LSDB.
func (l *LSDB) IDs() []string {
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	return ids
}

// Graph builds the adjacency map consumed by Dijkstra: every node
// present in the LSDB maps to its advertised links.
func (l *LSDB) Graph() map[string]map[string]int {
	graph := make(map[string]map[string]int, len(l.entries))
	for id, entry := range l.entries {
		graph[id] = entry.Links
	}
	return graph
}

// Snapshot renders the LSDB into diag rows for diagnostics.
func (l *LSDB) Snapshot() []diag.LSDBRow {
	rows := make([]diag.LSDBRow, 0, len(l.entries))
	for id, entry := range l.entries {
		rows = append(rows, diag.LSDBRow{
			RouterID: id,
			Sequence: entry.Sequence,
			Links:    entry.Links,
		})
	}
	return rows
}
