package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_SampleConfig(t *testing.T) {
	code, out, _ := runCLI(t, "--sample-config")
	require.Equal(t, 0, code)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Contains(t, out, "compression: snappy")
	assert.NotContains(t, out, "configString")
}

func TestRun_PrintEffectiveSettings(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "rocksopts.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
storage:
  rocksdb:
    cacheSizeGB: 12
    compression: zlib
    configString: "password=hunter2"
`), 0o600))
	t.Setenv("ROCKSOPTS_STORAGE__ROCKSDB__NUMLEVELS", "5")

	metricsFile := filepath.Join(dir, "rocksopts.prom")
	code, out, errOut := runCLI(t,
		"--config", cfg,
		"--log-dir", dir,
		"--metrics-textfile", metricsFile,
		"--print",
		"--rocksdbCompression", "lz4",
		"--terarkEnable=false",
	)
	require.Equal(t, 0, code, errOut)

	var got struct {
		CacheSizeGB  int    `yaml:"cacheSizeGB"`
		Compression  string `yaml:"compression"`
		NumLevels    int    `yaml:"numLevels"`
		ConfigString string `yaml:"configString"`
		Terark       struct {
			Enable bool `yaml:"enable"`
		} `yaml:"terark"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, 12, got.CacheSizeGB)
	assert.Equal(t, "lz4", got.Compression, "flag beats file")
	assert.Equal(t, 5, got.NumLevels, "env beats file")
	assert.False(t, got.Terark.Enable)
	assert.NotContains(t, out, "hunter2")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "rocksopts_options_applied_total")
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()

	code, _, _ := runCLI(t, "--help")
	assert.Equal(t, 0, code)

	code, _, errOut := runCLI(t, "--rocksdbCacheSizeGB", "abc")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "expected int")
	assert.Contains(t, errOut, "rocksdbCacheSizeGB", "message names the flag")

	code, _, errOut = runCLI(t, "--no-such-flag")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "no-such-flag")

	code, _, _ = runCLI(t, "--overrides-profile", "ssd")
	assert.Equal(t, 2, code, "profile without dsn")

	code, _, _ = runCLI(t, "--config", filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "--log-dir", dir, "--rocksdbCompression", "gzip")
	assert.Equal(t, 1, code)

	code, _, _ = runCLI(t, "--log-dir", dir, "--rocksdbCacheSizeGB", "0")
	assert.Equal(t, 1, code)
}
