// Package registry provides a global registry for game factories.
// Games register themselves in init() functions, allowing the platform
// to discover and instantiate games without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/retroplay/internal/core"
)

// Game is the interface every engine implements. Engines contain pure
// logic: the host shell maps keys to actions, owns the scheduler that
// produces frame deltas and renders the screen buffer.
type Game interface {
	// ID returns the game key used for best scores and remote submissions
	// (e.g. "flappy_coin").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset discards the session and starts a fresh one in its initial phase.
	Reset(cfg core.RuntimeConfig)

	// Step applies the frame's actions, then advances the simulation by dt
	// frames. Turn-based engines ignore dt.
	Step(in core.InputFrame, dt float64) core.StepResult

	// Render draws the current state into the pre-cleared screen buffer.
	Render(dst *core.Screen)

	// State returns the current score, best score and phase.
	State() core.GameState

	// Mount connects the engine to its host and loads the persisted best score.
	Mount(h core.Hooks)

	// Unmount detaches the host. No hook fires afterwards.
	Unmount()
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Alias string
	Title string
}

// Factory is a function that creates a new instance of a game.
type Factory func() Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	aliases   = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a game factory under its key and a short CLI alias.
// Panics if either name is already taken.
func Register(id, alias string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}
	if alias != "" {
		if _, exists := aliases[alias]; exists {
			panic(fmt.Sprintf("registry: alias %q already registered", alias))
		}
		aliases[alias] = id
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns information about all registered games, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	byID := make(map[string]string, len(aliases))
	for alias, id := range aliases {
		byID[id] = alias
	}

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{ID: id, Alias: byID[id], Title: titles[id]})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Resolve maps a key or alias to the registered game key.
func Resolve(name string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()

	if _, ok := factories[name]; ok {
		return name, true
	}
	id, ok := aliases[name]
	return id, ok
}

// Create instantiates a new game by key or alias.
func Create(name string) (Game, error) {
	id, ok := Resolve(name)
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", name)
	}

	mu.RLock()
	f := factories[id]
	mu.RUnlock()
	return f(), nil
}

// Exists checks if a game with the given key or alias is registered.
func Exists(name string) bool {
	_, ok := Resolve(name)
	return ok
}
