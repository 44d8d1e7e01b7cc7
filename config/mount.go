package config

// MountOptions holds high-level settings for the read-only snapshot mount.
// No go-fuse types are exposed here.
type MountOptions struct {
	Debug        bool    // fuse debug logs
	FsName       string  // mount's FsName
	Name         string  // mount's Name
	AttrTimeout  float64 // Attribute cache timeout in seconds (Default 1.0)
	EntryTimeout float64 // Directory entry cache timeout in seconds (Default 1.0)
}
