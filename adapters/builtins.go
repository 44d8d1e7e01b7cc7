package adapters

// NOTE: If build bloat becomes a concern for unused adapters look into build
// tags, or nested packages the main app imports just for their init()

type BuiltInAdapterType = string

const (
	FileAdapterType BuiltInAdapterType = "file"
	HTTPAdapterType BuiltInAdapterType = "http"
)

// RegisterBuiltins registers all built-in providers by default or only the
// specific ones if kinds are provided
func RegisterBuiltins(r *Registry, kinds ...BuiltInAdapterType) {
	if len(kinds) == 0 {
		kinds = append(kinds, FileAdapterType, HTTPAdapterType)
	}

	for _, kind := range kinds {
		switch kind {
		case FileAdapterType:
			RegisterFile(r)
		case HTTPAdapterType:
			RegisterHTTP(r, nil)
		}
	}
}

// NewDefaultRegistry returns a registry holding every built-in provider
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}
