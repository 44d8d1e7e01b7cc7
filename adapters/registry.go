package adapters

import (
	"fmt"
	"strings"
	"sync"

	"github.com/brettbedarf/previewfs"
)

// Registry maps location kinds ("file", "http", ...) to source providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]previewfs.SourceProvider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]previewfs.SourceProvider)}
}

// Register adds a provider for kind. The first registration of a kind wins.
func (r *Registry) Register(kind string, provider previewfs.SourceProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[kind]; ok {
		return
	}
	r.providers[kind] = provider
}

// GetProvider returns the provider registered for kind
func (r *Registry) GetProvider(kind string) (previewfs.SourceProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[kind]
	if !ok {
		return nil, fmt.Errorf("no source provider for %q", kind)
	}
	return p, nil
}

// NewSource picks the provider by the location's kind and creates a source
func (r *Registry) NewSource(location string) (previewfs.ProjectSource, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("empty project location")
	}
	p, err := r.GetProvider(KindOf(location))
	if err != nil {
		return nil, err
	}
	return p.NewSource(location)
}

// KindOf returns the URL scheme of location, or "file" for plain paths
func KindOf(location string) string {
	scheme, _, ok := strings.Cut(location, "://")
	if !ok || scheme == "" {
		return FileAdapterType
	}
	scheme = strings.ToLower(scheme)
	if scheme == "https" {
		return HTTPAdapterType
	}
	return scheme
}
