// internal/overrides/overrides.go
//
// Per-profile option overrides stored in SQL.
//
// Context
// -------
// Fleet operators keep a handful of storage knobs in a shared table so a
// whole class of servers (a "profile") can be retuned without editing each
// host's YAML:
//
//	storage_option_override (profile, option_key, option_value)
//
// `Load` runs one query and folds the rows into a map[key]value.  The config
// loader merges that map above the YAML file and below env vars and flags.
// Values are strings; the option pipeline coerces them like env values.
//
// Notes
// -----
//   - Keys are dotted option keys and case-sensitive.
//   - The helper never logs; callers wrap errors with context.
package overrides

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Load returns the override rows for profile as map[option_key]option_value.
func Load(ctx context.Context, db *sqlx.DB, profile string) (map[string]string, error) {
	const q = `
	    SELECT  option_key, option_value
	    FROM    storage_option_override
	    WHERE   profile = ?
	    ORDER BY option_key`

	rows := make([]struct {
		Key   string `db:"option_key"`
		Value string `db:"option_value"`
	}, 0, 8)

	if err := db.SelectContext(ctx, &rows, q, profile); err != nil {
		return nil, fmt.Errorf("select overrides for profile %q: %w", profile, err)
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}
