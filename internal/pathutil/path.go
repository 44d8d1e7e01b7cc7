// Package pathutil normalizes and joins the POSIX-style absolute paths used as
// node identity throughout the project tree.
package pathutil

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Root is the normalized root path
const Root = "/"

// ErrInvalidPath indicates a path that has no canonical absolute form
var ErrInvalidPath = errors.New("invalid path")

// Normalize returns the canonical absolute form of p.
// Relative paths are taken as relative to the root. Redundant separators and
// "." segments are dropped, ".." pops one segment and a trailing separator is
// stripped except for the root itself.
func Normalize(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%w: %q contains NUL", ErrInvalidPath, p)
	}

	depth := 0
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if depth == 0 {
				return "", fmt.Errorf("%w: %q escapes the root", ErrInvalidPath, p)
			}
			depth--
		default:
			depth++
		}
	}
	return path.Clean("/" + p), nil
}

// MustNormalize is like [Normalize] but panics on invalid input.
// Only use it with literal paths known to be valid.
func MustNormalize(p string) string {
	n, err := Normalize(p)
	if err != nil {
		panic(err)
	}
	return n
}

// Join resolves segment against the directory base. An absolute segment
// replaces base entirely.
func Join(base, segment string) (string, error) {
	if segment == "" {
		return "", fmt.Errorf("%w: empty segment", ErrInvalidPath)
	}
	if strings.HasPrefix(segment, "/") {
		return Normalize(segment)
	}
	b, err := Normalize(base)
	if err != nil {
		return "", err
	}
	return Normalize(b + "/" + segment)
}

// Dir returns the parent directory of a normalized path. The root is its own parent.
func Dir(p string) string {
	if p == Root || p == "" {
		return Root
	}
	return path.Dir(p)
}

// Base returns the final segment of a normalized path; empty for the root
func Base(p string) string {
	if p == Root || p == "" {
		return ""
	}
	return path.Base(p)
}

// Ext returns the lower-cased extension of the final segment, including the dot
func Ext(p string) string {
	return strings.ToLower(path.Ext(Base(p)))
}

// IsWithin reports whether p equals dir or is one of its descendants.
// Both arguments must already be normalized.
func IsWithin(p, dir string) bool {
	if dir == Root {
		return strings.HasPrefix(p, Root)
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// Segments splits a normalized path into its names; the root has none
func Segments(p string) []string {
	if p == Root || p == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}
