// Package knownhosts pins server certificates on first use.
package knownhosts

import (
	"sort"
	"sync"
	"time"
)

// Pin is the trusted fingerprint for one host and port.
type Pin struct {
	Host        string
	Port        string
	Fingerprint string
	NotAfter    time.Time
	FirstSeen   time.Time
	LastSeen    time.Time
}

// Expired reports whether the pinned certificate is no longer valid at now.
func (p Pin) Expired(now time.Time) bool {
	return !p.NotAfter.IsZero() && now.After(p.NotAfter)
}

// Store persists pins. Lookup reports found=false for unknown hosts.
type Store interface {
	Lookup(host, port string) (pin Pin, found bool, err error)
	Save(pin Pin) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu   sync.Mutex
	pins map[string]Pin
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pins: make(map[string]Pin)}
}

func (s *MemoryStore) Lookup(host, port string) (Pin, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pin, ok := s.pins[host+":"+port]
	return pin, ok, nil
}

func (s *MemoryStore) Save(pin Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins[pin.Host+":"+pin.Port] = pin
	return nil
}

// List returns all pins ordered by host then port.
func (s *MemoryStore) List() []Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	pins := make([]Pin, 0, len(s.pins))
	for _, p := range s.pins {
		pins = append(pins, p)
	}
	sort.Slice(pins, func(i, j int) bool {
		if pins[i].Host != pins[j].Host {
			return pins[i].Host < pins[j].Host
		}
		return pins[i].Port < pins[j].Port
	})
	return pins
}
