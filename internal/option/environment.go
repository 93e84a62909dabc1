// internal/option/environment.go
//
// The Applier's only view of parsed input.
//
// CLI, file, env, SQL, and Vault merging happens in internal/config.  By the
// time Apply runs the result is a flat key → value lookup, and that is all
// this package asks for.
package option

import koanf "github.com/knadh/koanf/v2"

// Environment is a pre-merged mapping from dotted key to raw value.
type Environment interface {
	Contains(key string) bool
	Get(key string) any
}

// Map is an in-memory Environment keyed by dotted path.
type Map map[string]any

func (m Map) Contains(key string) bool { _, ok := m[key]; return ok }
func (m Map) Get(key string) any       { return m[key] }

// FromKoanf adapts a loaded koanf tree.
func FromKoanf(k *koanf.Koanf) Environment { return koanfEnv{k} }

type koanfEnv struct{ k *koanf.Koanf }

func (e koanfEnv) Contains(key string) bool { return e.k.Exists(key) }
func (e koanfEnv) Get(key string) any       { return e.k.Get(key) }
