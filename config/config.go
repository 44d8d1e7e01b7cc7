package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/brettbedarf/previewfs/internal/util"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultCacheEntries is the number of compiled modules kept by the transformer
	DefaultCacheEntries = 512

	DefaultJSXImportSource = "react"
	DefaultSourceMaps      = false
	DefaultListenAddr      = "localhost:5173"

	DefaultFsName = "previewfs"
	DefaultName   = "previewfs"

	// DefaultAttrTimeout is the attribute cache timeout in seconds
	DefaultAttrTimeout = 1.0

	// DefaultEntryTimeout is the directory entry cache timeout in seconds
	DefaultEntryTimeout = 1.0
)

// DefaultPreviewScripts are loaded in the head of every preview document
var DefaultPreviewScripts = []string{"https://cdn.tailwindcss.com"}

// Config contains runtime configuration values for previewfs.
type Config struct {
	MountOptions

	LogLvl          util.LogLevel
	CacheEntries    int               // Compiled module cache size, 0 disables caching (Default 512)
	JSXImportSource string            // Module providing the automatic JSX runtime (Default "react")
	SourceMaps      bool              // Inline source maps in compiled modules (Default false)
	Bindings        map[string]string // Extra library bindings, specifier (or prefix ending in "/") to URL
	ListenAddr      string            // Dev server address (Default localhost:5173)
	PreviewScripts  []string          // Script URLs added to every preview document
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a verbosity between 1 (error) and 5 (trace), not a [util.LogLevel]
	LogLvl          *int              `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	CacheEntries    *int              `yaml:"cache_entries,omitempty" json:"cache_entries,omitempty"`
	JSXImportSource *string           `yaml:"jsx_import_source,omitempty" json:"jsx_import_source,omitempty"`
	SourceMaps      *bool             `yaml:"source_maps,omitempty" json:"source_maps,omitempty"`
	Bindings        map[string]string `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	ListenAddr      *string           `yaml:"listen_addr,omitempty" json:"listen_addr,omitempty"`
	PreviewScripts  *[]string         `yaml:"preview_scripts,omitempty" json:"preview_scripts,omitempty"`
	Debug           *bool             `yaml:"debug,omitempty" json:"debug,omitempty"`
	FsName          *string           `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name            *string           `yaml:"name,omitempty" json:"name,omitempty"`
	AttrTimeout     *float64          `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty"`
	EntryTimeout    *float64          `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName:       DefaultFsName,
			Name:         DefaultName,
			AttrTimeout:  DefaultAttrTimeout,
			EntryTimeout: DefaultEntryTimeout,
		},
		LogLvl:          DefaultLogLvl,
		CacheEntries:    DefaultCacheEntries,
		JSXImportSource: DefaultJSXImportSource,
		SourceMaps:      DefaultSourceMaps,
		Bindings:        map[string]string{},
		ListenAddr:      DefaultListenAddr,
		PreviewScripts:  slices.Clone(DefaultPreviewScripts),
	}
}

// NewConfig returns the defaults with override applied. A nil override
// yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// Bindings are merged key by key; everything else replaces.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = util.LevelFromVerbosity(*override.LogLvl)
	}
	if override.CacheEntries != nil {
		c.CacheEntries = *override.CacheEntries
	}
	if override.JSXImportSource != nil {
		c.JSXImportSource = *override.JSXImportSource
	}
	if override.SourceMaps != nil {
		c.SourceMaps = *override.SourceMaps
	}
	if len(override.Bindings) > 0 {
		if c.Bindings == nil {
			c.Bindings = make(map[string]string, len(override.Bindings))
		}
		maps.Copy(c.Bindings, override.Bindings)
	}
	if override.ListenAddr != nil {
		c.ListenAddr = *override.ListenAddr
	}
	if override.PreviewScripts != nil {
		c.PreviewScripts = slices.Clone(*override.PreviewScripts)
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
