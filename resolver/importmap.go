package resolver

import (
	"encoding/json"
	"path"
	"strings"
)

// ModuleKey returns the import-map key a project module is loaded under.
// "/src/App.jsx" becomes "@/src/App.jsx", the same text as the "@/" alias
// written with its extension.
func ModuleKey(p string) string {
	return "@" + p
}

// ImportMap is the result of resolving a project's module references
type ImportMap struct {
	// Imports maps specifier to loadable URL, in browser import-map form
	Imports map[string]string `json:"imports"`
	// Scopes maps importer path to each raw specifier it uses and the
	// import-map key (or URL) that specifier is rewritten to
	Scopes map[string]map[string]string `json:"scopes,omitempty"`
	// Errors lists one entry per unresolved (importer, specifier) pair
	Errors []ResolutionError `json:"-"`
	// Styles is every stylesheet concatenated in traversal order
	Styles string `json:"-"`
	// Order lists project scripts with dependencies before dependents
	Order []string `json:"-"`
	// Deps maps importer path to the project scripts it imports
	Deps map[string][]string `json:"-"`

	resolved map[string]map[string]Resolution
}

// NewImportMap returns an empty import map
func NewImportMap() *ImportMap {
	return &ImportMap{
		Imports:  make(map[string]string),
		Scopes:   make(map[string]map[string]string),
		Deps:     make(map[string][]string),
		resolved: make(map[string]map[string]Resolution),
	}
}

// record stores how importer's spec resolved. Libraries are added to Imports;
// project modules get their URL later from AddModule.
func (m *ImportMap) record(importer string, res Resolution) {
	if m.resolved[importer] == nil {
		m.resolved[importer] = make(map[string]Resolution)
	}
	m.resolved[importer][res.Specifier] = res

	var key string
	switch res.Kind {
	case KindLocal:
		key = ModuleKey(res.Target)
	case KindLibrary:
		key = res.Specifier
		if isURL(res.Specifier) {
			key = res.Target
		} else {
			m.Imports[res.Specifier] = res.Target
		}
	default:
		return
	}
	if m.Scopes[importer] == nil {
		m.Scopes[importer] = make(map[string]string)
	}
	m.Scopes[importer][res.Specifier] = key
}

// Lookup returns how spec resolved when imported from importer
func (m *ImportMap) Lookup(importer, spec string) (Resolution, bool) {
	res, ok := m.resolved[importer][spec]
	return res, ok
}

// AddLibrary records a library specifier resolved outside [Resolver.Build]
func (m *ImportMap) AddLibrary(importer, spec, url string) {
	m.record(importer, Resolution{Specifier: spec, Kind: KindLibrary, Target: url})
}

// AddModule makes the project module at p loadable from url under its
// canonical key, and under its path, extensionless path and extensionless "@/"
// alias when those are still free.
func (m *ImportMap) AddModule(p, url string) {
	m.Imports[ModuleKey(p)] = url

	stem := strings.TrimSuffix(p, path.Ext(p))
	for _, alias := range []string{p, stem, ModuleKey(stem)} {
		if _, taken := m.Imports[alias]; !taken {
			m.Imports[alias] = url
		}
	}
}

// HasErrors reports whether any specifier failed to resolve
func (m *ImportMap) HasErrors() bool {
	return len(m.Errors) > 0
}

// BrowserJSON returns the map in the form a <script type="importmap"> accepts.
// Specifiers are rewritten to top-level keys before loading, so no scopes are
// emitted.
func (m *ImportMap) BrowserJSON() ([]byte, error) {
	return json.Marshal(struct {
		Imports map[string]string `json:"imports"`
	}{Imports: m.Imports})
}
