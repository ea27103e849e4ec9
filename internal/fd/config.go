package fd

import "github.com/BurntSushi/toml"

// Config is the ambient configuration surface, loadable from a
// `.fdrc.toml` file or supplied directly by an embedder. It covers the
// formatter options plus the settings a CLI session needs beyond a
// single call.
type Config struct {
	DedupeStyles       bool   `toml:"dedupe_styles"`
	HoistStyles        bool   `toml:"hoist_styles"`
	SortNodes          bool   `toml:"sort_nodes"`
	RequireSemanticIds bool   `toml:"require_semantic_ids"`
	DefaultView        string `toml:"default_view"`
}

// DefaultConfig is the zero-config behavior: no reordering, no
// deduplication, anonymous IDs allowed, full view.
func DefaultConfig() Config {
	return Config{DefaultView: "full"}
}

// LoadConfig reads a `.fdrc.toml` file, starting from DefaultConfig so
// any field the file omits keeps its default rather than zeroing out.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
