package netif

import (
	"sync"
	"sync/atomic"

	"github.com/irctrakz/systatd/pkg/core"
)

// MockEnumerator is a core.Enumerator serving a fixed interface table.
// It needs no privileges and counts how often it was asked to enumerate.
type MockEnumerator struct {
	mu    sync.Mutex
	recs  []core.InterfaceRecord
	err   error
	calls atomic.Uint64
}

// NewMockEnumerator creates a mock enumerator returning recs.
func NewMockEnumerator(recs ...core.InterfaceRecord) *MockEnumerator {
	return &MockEnumerator{recs: recs}
}

// LinkRecord is a convenience constructor for a link-layer record.
func LinkRecord(name string, index int, tx, rx uint64) core.InterfaceRecord {
	return core.InterfaceRecord{
		Name:   name,
		Index:  index,
		Family: core.FamilyLinkLayer,
		Stats:  &core.LinkStats{TxBytes: tx, RxBytes: rx},
	}
}

// Enumerate returns a copy of the configured table or the configured error.
func (m *MockEnumerator) Enumerate() ([]core.InterfaceRecord, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]core.InterfaceRecord, len(m.recs))
	for i, r := range m.recs {
		if r.Stats != nil {
			s := *r.Stats
			r.Stats = &s
		}
		out[i] = r
	}
	return out, nil
}

// SetRecords replaces the interface table.
func (m *MockEnumerator) SetRecords(recs ...core.InterfaceRecord) {
	m.mu.Lock()
	m.recs = recs
	m.mu.Unlock()
}

// SetError makes subsequent calls fail with err; nil clears it.
func (m *MockEnumerator) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// AddTxBytes advances the transmit counter of the named interface.
func (m *MockEnumerator) AddTxBytes(name string, n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recs {
		if m.recs[i].Name == name && m.recs[i].Stats != nil {
			s := *m.recs[i].Stats
			s.TxBytes += n
			m.recs[i].Stats = &s
		}
	}
}

// Calls returns the number of Enumerate calls made so far.
func (m *MockEnumerator) Calls() uint64 { return m.calls.Load() }
