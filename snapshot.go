package previewfs

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Snapshot is an ordered mapping from normalized path to [NodeDescriptor].
// It is the only form in which a project tree leaves the core; persistence
// layers store it opaquely and hand it back for restoring.
//
// Both the JSON and YAML encodings are a single object keyed by path, with keys
// kept in tree traversal order so a round trip preserves child ordering.
type Snapshot struct {
	Entries []NodeDescriptor
}

// Len returns the number of entries in the snapshot
func (s Snapshot) Len() int {
	return len(s.Entries)
}

// Files returns the path -> content mapping of all file entries
func (s Snapshot) Files() map[string]string {
	files := make(map[string]string)
	for _, e := range s.Entries {
		if e.Kind == FileKind && e.Content != nil {
			files[e.Path] = *e.Content
		}
	}
	return files
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Path)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal entry %s: %w", e.Path, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the object token by token so key order survives.
// Duplicate keys are kept; rejecting them is the restoring tree's job.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		s.Entries = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("snapshot must be a JSON object, got %v", tok)
	}

	entries := make([]NodeDescriptor, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected snapshot key %v", tok)
		}
		var d NodeDescriptor
		if err := dec.Decode(&d); err != nil {
			return fmt.Errorf("failed to unmarshal entry %s: %w", key, err)
		}
		d.Path = key
		entries = append(entries, d)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	s.Entries = entries
	return nil
}

func (s Snapshot) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range s.Entries {
		var val yaml.Node
		if err := val.Encode(e); err != nil {
			return nil, fmt.Errorf("failed to marshal entry %s: %w", e.Path, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Path},
			&val,
		)
	}
	return node, nil
}

func (s *Snapshot) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("snapshot must be a YAML mapping (line %d)", value.Line)
	}
	entries := make([]NodeDescriptor, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		var d NodeDescriptor
		if err := value.Content[i+1].Decode(&d); err != nil {
			return fmt.Errorf("failed to unmarshal entry %s: %w", key, err)
		}
		d.Path = key
		entries = append(entries, d)
	}
	s.Entries = entries
	return nil
}
