package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Factory builds an Engine from its configuration. Backends register one
// from init() under the name the --backend flag selects.
type Factory func(cfg EngineConfig) (Engine, error)

var (
	mu       sync.RWMutex
	backends = map[string]Factory{}
)

// Register adds a backend under name. A nil factory or a repeated name is
// a wiring mistake in the backend package; both are logged and ignored,
// keeping the first registration.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if factory == nil {
		log.Error().Str("backend", name).Msg("Ignoring nil backend factory")
		return
	}
	if _, exists := backends[name]; exists {
		log.Error().Str("backend", name).Msg("Ignoring duplicate backend registration")
		return
	}
	backends[name] = factory
}

// New builds the named backend, stamping the name onto its config so the
// engine can report which registration produced it.
func New(name string, cfg EngineConfig) (Engine, error) {
	mu.RLock()
	factory, ok := backends[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no %q backend, available: %s", name, strings.Join(Backends(), ", "))
	}
	cfg.Backend = name
	return factory(cfg)
}

// Backends lists the registered backend names, sorted.
func Backends() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
