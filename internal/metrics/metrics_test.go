package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	OptionsAppliedTotal.Inc()
	OptionErrorsTotal.WithLabelValues("range").Inc()

	path := filepath.Join(t.TempDir(), "rocksopts.prom")
	require.NoError(t, WriteTextfile(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "rocksopts_options_applied_total")
	assert.Contains(t, string(body), `rocksopts_option_errors_total{kind="range"}`)
}
