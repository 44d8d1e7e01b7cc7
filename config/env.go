package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvOverride reads PREVIEWFS_* variables from the process environment,
// after loading a .env file from the working directory when one exists.
// Unset variables leave the matching override field nil.
func LoadEnvOverride() (*ConfigOverride, error) {
	_ = godotenv.Load()
	return overrideFromEnv(os.LookupEnv)
}

// LoadEnvOverrideFile reads PREVIEWFS_* variables from a dotenv file only,
// without touching the process environment.
func LoadEnvOverrideFile(path string) (*ConfigOverride, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return overrideFromEnv(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
}

func overrideFromEnv(lookup func(string) (string, bool)) (*ConfigOverride, error) {
	var o ConfigOverride

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	if v, ok := get(EnvLogLevel); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvLogLevel, v, err)
		}
		o.LogLvl = &n
	}
	if v, ok := get(EnvCacheEntries); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvCacheEntries, v, err)
		}
		o.CacheEntries = &n
	}
	if v, ok := get(EnvJSXImportSource); ok {
		o.JSXImportSource = &v
	}
	if v, ok := get(EnvSourceMaps); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvSourceMaps, v, err)
		}
		o.SourceMaps = &b
	}
	if v, ok := get(EnvListenAddr); ok {
		o.ListenAddr = &v
	}
	if v, ok := get(EnvPreviewScripts); ok {
		var scripts []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				scripts = append(scripts, s)
			}
		}
		o.PreviewScripts = &scripts
	}
	if v, ok := get(EnvFsName); ok {
		o.FsName = &v
	}

	return &o, nil
}
