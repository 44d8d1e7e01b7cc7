package main

import (
	"context"
	"fmt"

	"github.com/brettbedarf/previewfs/adapters"
	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/brettbedarf/previewfs/internal/util"
)

var sources = adapters.NewDefaultRegistry()

// loadProject returns a tree holding the project at location: a snapshot
// file (.json, .yaml, .yml), a directory or an http(s) snapshot URL. An empty
// location yields an empty tree.
func loadProject(ctx context.Context, location string) (*filesystem.FileTree, error) {
	logger := util.GetLogger("loadProject")

	if location == "" {
		return filesystem.New(), nil
	}
	src, err := sources.NewSource(location)
	if err != nil {
		return nil, err
	}
	snap, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}

	tree := filesystem.New()
	if err := tree.Deserialize(snap); err != nil {
		return nil, fmt.Errorf("failed to restore snapshot %s: %w", src.Location(), err)
	}
	logger.Debug().Str("location", src.Location()).Int("nodes", snap.Len()).Msg("Loaded project")
	return tree, nil
}

// writeSnapshot stores tree at path, encoded by the path's extension
func writeSnapshot(tree *filesystem.FileTree, path string) error {
	return adapters.WriteFile(tree.Serialize(), path)
}
