package config

// Verbosity values accepted by [ConfigOverride.LogLvl], as passed with -v
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Environment variables read by [LoadEnvOverride]
const (
	EnvLogLevel        = "PREVIEWFS_LOG_LEVEL"
	EnvCacheEntries    = "PREVIEWFS_CACHE_ENTRIES"
	EnvJSXImportSource = "PREVIEWFS_JSX_IMPORT_SOURCE"
	EnvSourceMaps      = "PREVIEWFS_SOURCE_MAPS"
	EnvListenAddr      = "PREVIEWFS_LISTEN_ADDR"
	EnvPreviewScripts  = "PREVIEWFS_PREVIEW_SCRIPTS"
	EnvFsName          = "PREVIEWFS_FS_NAME"
)
