package gateway

import (
	"errors"

	"go.uber.org/zap"
)

// Registry holds the configured adapters keyed by gateway name.
type Registry map[string]Gateway

// Get returns the adapter registered under name.
func (r Registry) Get(name string) (Gateway, bool) {
	g, ok := r[name]
	return g, ok
}

// BuildRegistry constructs every adapter whose credential block is
// present. A partially configured gateway is a deployment mistake and
// fails the whole build; one that is absent entirely is simply skipped.
func BuildRegistry(moip MoipConfig, pagseguro PagSeguroConfig, logger *zap.Logger) (Registry, error) {
	registry := make(Registry)

	if moip.enabled() {
		g, err := NewMoipGateway(moip, logger)
		if err != nil {
			return nil, err
		}
		registry[g.Name()] = g
	}

	if pagseguro.enabled() {
		g, err := NewPagSeguroGateway(pagseguro, logger)
		if err != nil {
			return nil, err
		}
		registry[g.Name()] = g
	}

	if len(registry) == 0 {
		return nil, errors.New("no payment gateway configured")
	}
	return registry, nil
}
