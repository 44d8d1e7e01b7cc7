package resolver

import (
	"maps"
	"strings"
	"sync"
)

// Default CDN locations for the libraries every preview can import
const (
	ReactURL    = "https://esm.sh/react@19"
	ReactDOMURL = "https://esm.sh/react-dom@19"
)

// Bindings maps bare library specifiers to loadable URLs.
// Keys ending in "/" are prefix bindings: "react/" -> "https://esm.sh/react@19/"
// also serves "react/jsx-runtime". Exact keys win over prefixes and the longest
// prefix wins among prefixes, as in a browser import map.
type Bindings struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewBindings returns an empty registry
func NewBindings() *Bindings {
	return &Bindings{entries: make(map[string]string)}
}

// DefaultBindings returns a registry holding the React runtime bindings
func DefaultBindings() *Bindings {
	b := NewBindings()
	b.Register("react", ReactURL)
	b.Register("react/", ReactURL+"/")
	b.Register("react-dom", ReactDOMURL)
	b.Register("react-dom/", ReactDOMURL+"/")
	return b
}

// Register binds specifier to url, replacing any existing binding
func (b *Bindings) Register(specifier, url string) {
	b.mu.Lock()
	b.entries[specifier] = url
	b.mu.Unlock()
}

// RegisterAll binds every entry of m
func (b *Bindings) RegisterAll(m map[string]string) {
	b.mu.Lock()
	maps.Copy(b.entries, m)
	b.mu.Unlock()
}

// Remove drops the binding for specifier
func (b *Bindings) Remove(specifier string) {
	b.mu.Lock()
	delete(b.entries, specifier)
	b.mu.Unlock()
}

// Lookup returns the URL a bare specifier loads from
func (b *Bindings) Lookup(specifier string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if url, ok := b.entries[specifier]; ok && !strings.HasSuffix(specifier, "/") {
		return url, true
	}
	best := ""
	for key := range b.entries {
		if strings.HasSuffix(key, "/") && strings.HasPrefix(specifier, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return "", false
	}
	return b.entries[best] + strings.TrimPrefix(specifier, best), true
}

// Entries returns a copy of every binding, prefixes included
func (b *Bindings) Entries() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.entries)
}
