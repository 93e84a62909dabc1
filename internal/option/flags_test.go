package option

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newFlagSet(t *testing.T, r *Registry) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, r.AddFlags(fs))
	return fs
}

func TestAddFlags_ChangedValuesOnly(t *testing.T) {
	r := testRegistry(t, true)
	fs := newFlagSet(t, r)

	require.NoError(t, fs.Parse([]string{
		"--cacheSizeGB=8",
		"--featureEnable=false",
		"--mem", "16GiB",
		"--featureLevel", "4",
	}))

	assert.Equal(t, map[string]any{
		"test.cacheSizeGB":    "8",
		"test.feature.enable": "false",
		"test.mem":            "16GiB",
		"test.feature.level":  "4",
	}, r.FlagValues(fs))
}

func TestAddFlags_BoolWithoutValue(t *testing.T) {
	r := testRegistry(t, false)
	fs := newFlagSet(t, r)

	require.NoError(t, fs.Parse([]string{"--featureEnable"}))
	assert.Equal(t, map[string]any{"test.feature.enable": "true"}, r.FlagValues(fs))
}

func TestAddFlags_RejectsUncoercibleValue(t *testing.T) {
	r := testRegistry(t, true)
	fs := newFlagSet(t, r)

	err := fs.Parse([]string{"--cacheSizeGB=abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected int")
}

func TestAddFlags_HiddenAndTyped(t *testing.T) {
	r := testRegistry(t, true)
	fs := newFlagSet(t, r)

	secret := fs.Lookup("secret")
	require.NotNil(t, secret)
	assert.True(t, secret.Hidden)

	mem := fs.Lookup("mem")
	require.NotNil(t, mem)
	assert.False(t, mem.Hidden)
	assert.Equal(t, "bytes", mem.Value.Type())
	assert.Equal(t, "1.0 MiB", mem.DefValue)

	cache := fs.Lookup("cacheSizeGB")
	require.NotNil(t, cache)
	assert.Equal(t, "", cache.DefValue)
	assert.Contains(t, cache.Usage, "[1, 10000]")
}

func TestAddFlags_DuplicateName(t *testing.T) {
	r := testRegistry(t, true)
	fs := newFlagSet(t, r)

	err := r.AddFlags(fs)
	var dup *DuplicateKeyError
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, "cacheSizeGB", dup.Key)
}

func TestFlagValues_IgnoresForeignFlags(t *testing.T) {
	r := testRegistry(t, true)
	fs := newFlagSet(t, r)
	fs.String("config", "", "")

	require.NoError(t, fs.Parse([]string{"--config=/etc/x.yaml", "--compression=lz4"}))
	assert.Equal(t, map[string]any{"test.compression": "lz4"}, r.FlagValues(fs))
}

func TestSampleYAML(t *testing.T) {
	r := testRegistry(t, true)

	out, err := r.SampleYAML()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))

	test, ok := doc["test"].(map[string]any)
	require.True(t, ok, "got %s", out)
	assert.Equal(t, "snappy", test["compression"])
	assert.Equal(t, "/tmp", test["dir"])
	assert.NotContains(t, test, "secret", "hidden options stay out")
	assert.NotContains(t, test, "cacheSizeGB", "unset defaults stay out")

	feature, ok := test["feature"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, feature["enable"])
	assert.Equal(t, 3, feature["level"])
}
