package guard

import (
	"fmt"
	"net/url"
	"sync"
)

// Navigator is where the guard reads the current location and applies its
// decisions.
type Navigator interface {
	// Current is the full current location.
	Current() *url.URL

	// Replace rewrites the current location in place, without navigating.
	Replace(target string)

	// Push moves to an in-app location that has already been guarded.
	Push(target string)

	// Redirect leaves the application for an external URL.
	Redirect(target string)
}

// MemoryNavigator is a Navigator for a single-window client. In-app targets
// are resolved against the application base URL.
type MemoryNavigator struct {
	mu       sync.RWMutex
	base     *url.URL
	current  *url.URL
	history  []string
	external string

	// OnRedirect, when set, is told about every external redirect.
	OnRedirect func(target string)
}

// NewMemoryNavigator starts at the root of the application at appURL.
func NewMemoryNavigator(appURL string) (*MemoryNavigator, error) {
	base, err := url.Parse(appURL)
	if err != nil {
		return nil, fmt.Errorf("invalid app url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("app url %q must be absolute", appURL)
	}
	if base.Path == "" {
		base.Path = "/"
	}

	current := *base
	return &MemoryNavigator{base: base, current: &current}, nil
}

// Load sets the current location as a fresh page load would, e.g. when the
// user arrives from a link carrying a token.
func (n *MemoryNavigator) Load(raw string) error {
	u, err := n.resolve(raw)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = u
	n.external = ""
	return nil
}

// Current implements Navigator.
func (n *MemoryNavigator) Current() *url.URL {
	n.mu.RLock()
	defer n.mu.RUnlock()
	u := *n.current
	return &u
}

// Replace implements Navigator.
func (n *MemoryNavigator) Replace(target string) {
	u, err := n.resolve(target)
	if err != nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = u
}

// Push implements Navigator.
func (n *MemoryNavigator) Push(target string) {
	u, err := n.resolve(target)
	if err != nil {
		return
	}

	n.mu.Lock()
	n.history = append(n.history, n.current.String())
	n.current = u
	n.mu.Unlock()
}

// Redirect implements Navigator.
func (n *MemoryNavigator) Redirect(target string) {
	n.mu.Lock()
	n.external = target
	hook := n.OnRedirect
	n.mu.Unlock()

	if hook != nil {
		hook(target)
	}
}

// External returns the last external redirect since the last Load.
func (n *MemoryNavigator) External() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.external
}

// History returns previously visited locations, oldest first.
func (n *MemoryNavigator) History() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.history))
	copy(out, n.history)
	return out
}

// Base returns the application base URL.
func (n *MemoryNavigator) Base() *url.URL {
	u := *n.base
	return &u
}

func (n *MemoryNavigator) resolve(raw string) (*url.URL, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", raw, err)
	}
	return n.base.ResolveReference(ref), nil
}
