package adapters

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/brettbedarf/previewfs"
	"gopkg.in/yaml.v3"
)

// Format is a snapshot encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the snapshot format from a file name or URL path extension
func FormatOf(name string) (Format, error) {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown snapshot file extension: %s", name)
	}
}

// formatOfMediaType maps a Content-Type header to a format
func formatOfMediaType(contentType string) (Format, bool) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "yaml"), strings.Contains(ct, "yml"):
		return FormatYAML, true
	case strings.Contains(ct, "json"):
		return FormatJSON, true
	}
	return "", false
}

func Decode(data []byte, f Format) (previewfs.Snapshot, error) {
	var (
		snap previewfs.Snapshot
		err  error
	)
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &snap)
	case FormatJSON:
		err = json.Unmarshal(data, &snap)
	default:
		return snap, fmt.Errorf("unknown snapshot format %q", f)
	}
	return snap, err
}

// Encode writes snap in format f; JSON is indented for hand editing
func Encode(snap previewfs.Snapshot, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(snap)
	case FormatJSON:
		return json.MarshalIndent(snap, "", "  ")
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", f)
	}
}
