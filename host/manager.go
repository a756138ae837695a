package host

import "bjoernblessin.de/lsnet/logx"

// Manager owns every Host running in this process, keyed by id rather
// than address, since a simulated network can run many hosts behind
// one process.
type Manager struct {
	hosts map[string]*Host
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{hosts: make(map[string]*Host)}
}

// Add constructs and registers a Host from cfg. There must not already
// be a registered host with the same id.
func (m *Manager) Add(cfg Config) *Host {
	if _, exists := m.hosts[cfg.ID]; exists {
		logx.Fatalf("host manager: duplicate host id %s", cfg.ID)
	}

	h := New(cfg)
	m.hosts[cfg.ID] = h
	return h
}

// Get looks up a registered host by id.
func (m *Manager) Get(id string) (*Host, bool) {
	h, ok := m.hosts[id]
	return h, ok
}

// StartAll starts every registered host, stopping any already-started
// hosts and returning the first error if one fails to bind.
func (m *Manager) StartAll() error {
	started := make([]*Host, 0, len(m.hosts))
	for _, h := range m.hosts {
		if err := h.Start(); err != nil {
			for _, s := range started {
				s.Stop()
			}
			return err
		}
		started = append(started, h)
	}
	return nil
}

// StopAll stops every registered host.
func (m *Manager) StopAll() {
	for _, h := range m.hosts {
		h.Stop()
	}
}
