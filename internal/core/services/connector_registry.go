package services

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

// ConnectorRegistry holds the enabled content sources in registration order.
// Registration order is also merge order.
type ConnectorRegistry struct {
	mu         sync.RWMutex
	connectors []driven.Connector
	index      map[string]int

	// gates serialise exclusive connectors process-wide. A buffered channel
	// of size one is used instead of a mutex so waiters can give up on ctx.
	gates map[string]chan struct{}
}

// NewConnectorRegistry creates a registry with the given connectors.
func NewConnectorRegistry(connectors ...driven.Connector) (*ConnectorRegistry, error) {
	r := &ConnectorRegistry{
		index: make(map[string]int),
		gates: make(map[string]chan struct{}),
	}
	for _, c := range connectors {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a connector.
func (r *ConnectorRegistry) Register(c driven.Connector) error {
	if c == nil {
		return fmt.Errorf("%w: nil connector", domain.ErrInvalidInput)
	}
	name := c.Name()
	if name == "" {
		return fmt.Errorf("%w: connector name is empty", domain.ErrInvalidInput)
	}
	if !c.Class().IsValid() {
		return fmt.Errorf("%w: connector %s has class %q", domain.ErrUnsupportedType, name, c.Class())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[name]; exists {
		return fmt.Errorf("%w: connector %s", domain.ErrAlreadyExists, name)
	}
	r.index[name] = len(r.connectors)
	r.connectors = append(r.connectors, c)
	if c.Class() == domain.ClassExclusive {
		r.gates[name] = make(chan struct{}, 1)
	}
	return nil
}

// Get returns a connector by name.
func (r *ConnectorRegistry) Get(name string) (driven.Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: connector %s", domain.ErrNotFound, name)
	}
	return r.connectors[i], nil
}

// Connectors returns a snapshot of the registered connectors in order.
func (r *ConnectorRegistry) Connectors() []driven.Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]driven.Connector, len(r.connectors))
	copy(out, r.connectors)
	return out
}

// Info describes the registered connectors in order.
func (r *ConnectorRegistry) Info() []domain.ConnectorInfo {
	connectors := r.Connectors()
	out := make([]domain.ConnectorInfo, 0, len(connectors))
	for _, c := range connectors {
		out = append(out, domain.ConnectorInfo{Name: c.Name(), Class: c.Class()})
	}
	return out
}

// Len returns the number of registered connectors.
func (r *ConnectorRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connectors)
}

// gate returns the process-wide gate for an exclusive connector, or nil.
func (r *ConnectorRegistry) gate(name string) chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gates[name]
}
