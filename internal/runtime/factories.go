package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// Factories is the map from a manifest-declared entry point to a
// constructor. Dispatch over plugin kinds goes through this map, not
// an inheritance chain.
var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory makes a constructor available under an entry-point
// name. Builtin plugins register themselves from init.
func RegisterFactory(entryPoint string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if _, dup := factories[entryPoint]; dup {
		panic(fmt.Sprintf("runtime: duplicate factory registration for %q", entryPoint))
	}
	factories[entryPoint] = f
}

// NewPlugin constructs a plugin instance for an entry point.
func NewPlugin(entryPoint string, env Env) (Plugin, error) {
	factoriesMu.RLock()
	f, ok := factories[entryPoint]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no factory registered for entry point '%s'", entryPoint)
	}
	return f(env)
}

// KnownEntryPoints lists registered entry points, sorted.
func KnownEntryPoints() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
