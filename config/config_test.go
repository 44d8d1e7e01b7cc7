package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestNewConfig_WithNilOverride tests that NewConfig creates a config with all default values
// when no override is provided.
func TestNewConfig_WithNilOverride(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil)

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values when no config provided")
}

func TestNewConfig_WithAllOverride(t *testing.T) {
	t.Parallel()

	override := createOverride()
	override.LogLvl = util.Pointer(TraceVerbose)
	cfg := NewConfig(override)

	expCfg := &Config{
		MountOptions: MountOptions{
			Debug:        true,
			FsName:       "test_fs",
			Name:         "test_name",
			AttrTimeout:  *override.AttrTimeout,
			EntryTimeout: *override.EntryTimeout,
		},
		LogLvl:          util.TraceLevel,
		CacheEntries:    *override.CacheEntries,
		JSXImportSource: *override.JSXImportSource,
		SourceMaps:      *override.SourceMaps,
		Bindings:        map[string]string{"lodash": "https://esm.sh/lodash@4"},
		ListenAddr:      *override.ListenAddr,
		PreviewScripts:  []string{},
	}
	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields")
}

func TestConfig_Merge_LogLvlConversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		verboseValue  int
		expectedLevel util.LogLevel
	}{
		{"verbose_1_error", ErrorVerbose, util.ErrorLevel},
		{"verbose_2_warn", WarnVerbose, util.WarnLevel},
		{"verbose_3_info", InfoVerbose, util.InfoLevel},
		{"verbose_4_debug", DebugVerbose, util.DebugLevel},
		{"verbose_5_trace", TraceVerbose, util.TraceLevel},
		{"verbose_0_clamped_to_1", 0, util.ErrorLevel},
		{"verbose_100_clamped_to_5", 100, util.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig(&ConfigOverride{LogLvl: &tt.verboseValue})
			assert.Equal(t, tt.expectedLevel, cfg.LogLvl,
				"CLI verbose %d should map to util.LogLevel %v", tt.verboseValue, tt.expectedLevel)
		})
	}
}

func TestConfig_Merge_NilOverrideVals(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(&ConfigOverride{})

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values for nil override fields")
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		FsName:       util.Pointer("test_fs"),
		CacheEntries: util.Pointer(0),
	}
	cfg := NewConfig(override)

	expCfg := createDefaultCfg()
	expCfg.FsName = "test_fs"
	expCfg.CacheEntries = 0

	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields and leave rest default")
}

func TestConfig_Merge_Bindings(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(&ConfigOverride{Bindings: map[string]string{"a": "https://x/a", "b": "https://x/b"}})
	cfg.Merge(&ConfigOverride{Bindings: map[string]string{"b": "https://y/b"}})

	assert.Equal(t, map[string]string{"a": "https://x/a", "b": "https://y/b"}, cfg.Bindings,
		"later bindings replace matching keys only")
}

func TestConfig_DefaultsNotShared(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.PreviewScripts[0] = "changed"
	cfg.Bindings["x"] = "y"

	again := NewDefaultConfig()
	assert.Equal(t, DefaultPreviewScripts, again.PreviewScripts)
	assert.Empty(t, again.Bindings)
}

func TestLoadConfigOverrideFile_Valid(t *testing.T) {
	t.Parallel()

	type tc struct {
		ext     string
		marshal func(any) ([]byte, error)
	}

	cases := []tc{
		{ext: ".yaml", marshal: yaml.Marshal},
		{ext: ".yml", marshal: yaml.Marshal},
		{ext: ".json", marshal: json.Marshal},
	}

	for _, c := range cases {
		t.Run("valid"+c.ext, func(t *testing.T) {
			t.Parallel()

			override := createOverride()
			data, err := c.marshal(override)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "override"+c.ext)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			loaded, err := LoadConfigOverrideFile(path)

			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, *override, *loaded)
		})
	}
}

func TestLoadConfigOverrideFile_NonExistentFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "does_not_exist.yaml")

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "expected not exist error, got %v", err)
}

// TestLoadConfigOverrideFile_UnsupportedExtension tests error handling
// for file extensions that aren't supported (.txt, .xml, etc).
func TestLoadConfigOverrideFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.txt")
	require.NoError(t, os.WriteFile(path, []byte("cache_entries: 1"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config file extension")
}

func TestLoadConfigOverrideFile_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cache_entries": "many"}`), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config file")
}

func TestNewConfigFromFile(t *testing.T) {
	t.Parallel()

	t.Run("Merges", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "previewfs.yaml")
		data := "listen_addr: 0.0.0.0:8080\nbindings:\n  zod: https://esm.sh/zod@3\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		cfg, err := NewConfigFromFile(path)
		require.NoError(t, err)

		expCfg := createDefaultCfg()
		expCfg.ListenAddr = "0.0.0.0:8080"
		expCfg.Bindings = map[string]string{"zod": "https://esm.sh/zod@3"}
		assert.Equal(t, expCfg, cfg)
	})

	t.Run("FileError", func(t *testing.T) {
		t.Parallel()

		_, err := NewConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
	})
}

func TestLoadEnvOverrideFile(t *testing.T) {
	t.Parallel()

	t.Run("AllVars", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".env")
		data := `PREVIEWFS_LOG_LEVEL=4
PREVIEWFS_CACHE_ENTRIES=16
PREVIEWFS_JSX_IMPORT_SOURCE=preact
PREVIEWFS_SOURCE_MAPS=true
PREVIEWFS_LISTEN_ADDR=:9000
PREVIEWFS_PREVIEW_SCRIPTS="https://a.test/x.js, https://b.test/y.js"
PREVIEWFS_FS_NAME=project
UNRELATED=1
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		o, err := LoadEnvOverrideFile(path)
		require.NoError(t, err)

		assert.Equal(t, &ConfigOverride{
			LogLvl:          util.Pointer(DebugVerbose),
			CacheEntries:    util.Pointer(16),
			JSXImportSource: util.Pointer("preact"),
			SourceMaps:      util.Pointer(true),
			ListenAddr:      util.Pointer(":9000"),
			PreviewScripts:  &[]string{"https://a.test/x.js", "https://b.test/y.js"},
			FsName:          util.Pointer("project"),
		}, o)

		cfg := NewConfig(o)
		assert.Equal(t, util.DebugLevel, cfg.LogLvl)
	})

	t.Run("EmptyValuesUnset", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PREVIEWFS_LISTEN_ADDR=\n"), 0o600))

		o, err := LoadEnvOverrideFile(path)
		require.NoError(t, err)
		assert.Equal(t, &ConfigOverride{}, o)
	})

	invalid := map[string]string{
		"LogLevel":     "PREVIEWFS_LOG_LEVEL=loud\n",
		"CacheEntries": "PREVIEWFS_CACHE_ENTRIES=1.5\n",
		"SourceMaps":   "PREVIEWFS_SOURCE_MAPS=maybe\n",
	}
	for name, data := range invalid {
		t.Run("Invalid"+name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

			_, err := LoadEnvOverrideFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid PREVIEWFS_")
		})
	}

	t.Run("MissingFile", func(t *testing.T) {
		t.Parallel()

		_, err := LoadEnvOverrideFile(filepath.Join(t.TempDir(), ".env"))
		require.Error(t, err)
	})
}

func createDefaultCfg() *Config {
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
		PreviewScripts:  []string{"https://cdn.tailwindcss.com"},
	}
}

// createOverride makes a ConfigOverride with all non-default values
func createOverride() *ConfigOverride {
	testLogVerbose := TraceVerbose
	if DefaultLogLvl == util.TraceLevel {
		testLogVerbose = DebugVerbose
	}
	return &ConfigOverride{
		LogLvl:          util.Pointer(testLogVerbose),
		CacheEntries:    util.Pointer(DefaultCacheEntries + 1),
		JSXImportSource: util.Pointer("preact"),
		SourceMaps:      util.Pointer(!DefaultSourceMaps),
		Bindings:        map[string]string{"lodash": "https://esm.sh/lodash@4"},
		ListenAddr:      util.Pointer("127.0.0.1:0"),
		PreviewScripts:  &[]string{},
		Debug:           util.Pointer(true),
		FsName:          util.Pointer("test_fs"),
		Name:            util.Pointer("test_name"),
		AttrTimeout:     util.Pointer(float64(DefaultAttrTimeout + 1)),
		EntryTimeout:    util.Pointer(float64(DefaultEntryTimeout + 1)),
	}
}
