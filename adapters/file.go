package adapters

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/previewfs"
	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/brettbedarf/previewfs/resolver"
)

// skipDirs are never loaded from a project directory
var skipDirs = map[string]bool{"node_modules": true, "dist": true, "build": true}

// FileProvider creates sources for local snapshot files and project directories
type FileProvider struct{}

func RegisterFile(r *Registry) {
	r.Register(FileAdapterType, &FileProvider{})
}

func (p *FileProvider) NewSource(location string) (previewfs.ProjectSource, error) {
	path := strings.TrimPrefix(location, "file://")
	if path == "" {
		return nil, fmt.Errorf("empty file path")
	}
	return &FileSource{Path: path}, nil
}

// FileSource reads a snapshot file (.json, .yaml, .yml) or a directory
type FileSource struct {
	Path string
}

func (s *FileSource) Location() string {
	return s.Path
}

func (s *FileSource) Load(_ context.Context) (previewfs.Snapshot, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return previewfs.Snapshot{}, err
	}
	if info.IsDir() {
		return loadDir(s.Path)
	}

	f, err := FormatOf(s.Path)
	if err != nil {
		return previewfs.Snapshot{}, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return previewfs.Snapshot{}, err
	}
	snap, err := Decode(data, f)
	if err != nil {
		return snap, fmt.Errorf("failed to unmarshal snapshot %s: %w", s.Path, err)
	}
	return snap, nil
}

// loadDir loads the scripts and stylesheets below root. Hidden entries and
// build output directories are skipped.
func loadDir(root string) (previewfs.Snapshot, error) {
	logger := util.GetLogger("FileSource.Load")

	files := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != root && (strings.HasPrefix(d.Name(), ".") || (d.IsDir() && skipDirs[d.Name()])) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !(resolver.IsScript(p) || resolver.IsStyle(p)) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files["/"+filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return previewfs.Snapshot{}, fmt.Errorf("failed to load project directory %s: %w", root, err)
	}
	logger.Debug().Str("root", root).Int("files", len(files)).Msg("Loaded project directory")

	tree, err := filesystem.NewFromFiles(files)
	if err != nil {
		return previewfs.Snapshot{}, err
	}
	return tree.Serialize(), nil
}

// WriteFile stores snap at path, encoded by the path's extension
func WriteFile(snap previewfs.Snapshot, path string) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(snap, f)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
