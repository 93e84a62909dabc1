// internal/config/model.go
//
// Launcher settings for rocksopts.
//
// Context
// -------
// Bootstrap tells the loader WHERE to find storage options: which YAML file,
// which dotenv file, which SQL profile, and whether to resolve Vault
// references.  It comes from the launcher's own flags (cmd/rocksopts) and is
// validated before any source is opened.
//
// The storage options themselves are not modelled here.  Their schema is the
// option table in internal/storage, and their values flow through the
// Environment built by loader.go.
//
// Notes
// -----
//   - Validation uses go-playground/validator tags; see validator.go.

package config

// Bootstrap holds launcher settings.
type Bootstrap struct {
	// ConfigFile is the YAML file with a `storage.rocksdb` tree.  Optional.
	ConfigFile string `validate:"omitempty,file"`

	// EnvFile is a dotenv file loaded before env vars are read.  Optional.
	EnvFile string `validate:"omitempty,file"`

	// LogDir receives daily JSON logs.  Empty means console only.
	LogDir string `validate:"omitempty,dirpath"`

	// OverridesDSN and OverridesProfile select SQL override rows.  Both or
	// neither.
	OverridesDSN     string `validate:"required_with=OverridesProfile"`
	OverridesProfile string `validate:"required_with=OverridesDSN"`

	// Vault enables resolution of `vault:` references.
	Vault bool

	// MetricsTextfile is written after apply for the node-exporter textfile
	// collector.  Optional.
	MetricsTextfile string `validate:"omitempty,filepath"`
}
