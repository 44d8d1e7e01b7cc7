package server

import (
	"fmt"

	"github.com/brettbedarf/previewfs/config"
	"github.com/brettbedarf/previewfs/preview"
	"github.com/brettbedarf/previewfs/resolver"
	"github.com/brettbedarf/previewfs/transform"
)

// NewTransformer returns a transformer with cfg's compile options
func NewTransformer(cfg *config.Config) (*transform.Transformer, error) {
	tr, err := transform.New(transform.Options{
		JSXImportSource: cfg.JSXImportSource,
		SourceMaps:      cfg.SourceMaps,
		CacheEntries:    cfg.CacheEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transformer: %w", err)
	}
	return tr, nil
}

// NewResolver returns a resolver with the default library bindings extended
// by cfg.Bindings
func NewResolver(cfg *config.Config) *resolver.Resolver {
	bindings := resolver.DefaultBindings()
	bindings.RegisterAll(cfg.Bindings)
	return resolver.New(bindings)
}

// NewAssembler wires a preview assembler from cfg
func NewAssembler(cfg *config.Config) (*preview.Assembler, error) {
	tr, err := NewTransformer(cfg)
	if err != nil {
		return nil, err
	}
	return preview.NewAssembler(NewResolver(cfg), tr, cfg.PreviewScripts), nil
}
