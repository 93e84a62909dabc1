package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/rocksopts/internal/option"
)

// NewSettings returns a record holding every declared default.
func NewSettings() Settings {
	var s Settings
	if err := option.Defaults(Options(), &s); err != nil {
		// Settings and the option table disagree; a build bug.
		panic(err)
	}
	return s
}

// Load materializes env into a fresh Settings.  The returned value is the
// read-only view handed to the engine; a failed Load returns the zero value
// and every violation found.
func Load(env option.Environment, log *zap.SugaredLogger) (Settings, error) {
	s := NewSettings()
	a, err := option.NewApplier(Options(), &s, log)
	if err != nil {
		return Settings{}, fmt.Errorf("bind settings: %w", err)
	}
	if err := a.Apply(env); err != nil {
		return Settings{}, err
	}
	return s, nil
}
