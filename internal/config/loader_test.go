package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/rocksopts/internal/option"
)

func testRegistry(t *testing.T) *option.Registry {
	t.Helper()
	return option.NewRegistry("t").MustRegister(
		option.Spec{Key: "storage.rocksdb.cacheSizeGB", Label: "Cache", Kind: option.Int},
		option.Spec{Key: "storage.rocksdb.compression", Label: "Compression", Kind: option.String, Default: "snappy"},
		option.Spec{Key: "storage.rocksdb.numLevels", Label: "Levels", Kind: option.Int, Default: 7},
		option.Spec{Key: "storage.rocksdb.maxWriteMBPerSec", Label: "Rate", Kind: option.Int, Default: 1024},
		option.Spec{Key: "storage.rocksdb.configString", Label: "Custom", Kind: option.String, Sensitive: true},
	)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func observeGlobal(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))
	return logs
}

type mapResolver map[string]string

func (m mapResolver) Resolve(_ context.Context, ref string) (string, error) {
	if v, ok := m[ref]; ok {
		return v, nil
	}
	return "", errors.New("no such secret")
}

const sampleYAML = `
storage:
  rocksdb:
    cacheSizeGB: 8
    compression: lz4
    numLevels: 6
    bogus: 1
`

func TestLoad_YAMLOnly(t *testing.T) {
	logs := observeGlobal(t)
	cfg := writeFile(t, "rocksopts.yaml", sampleYAML)

	k, err := Load(context.Background(), Sources{
		Registry:  testRegistry(t),
		Bootstrap: Bootstrap{ConfigFile: cfg},
		Namespace: "storage.rocksdb.",
	})
	require.NoError(t, err)

	assert.Equal(t, 8, k.Int("storage.rocksdb.cacheSizeGB"))
	assert.Equal(t, "lz4", k.String("storage.rocksdb.compression"))
	assert.False(t, k.Exists("storage.rocksdb.maxWriteMBPerSec"))

	warn := logs.FilterMessage("config keys not recognized").All()
	require.Len(t, warn, 1)
	assert.Equal(t, []any{"storage.rocksdb.bogus"}, warn[0].ContextMap()["keys"])
}

func TestLoad_Precedence(t *testing.T) {
	observeGlobal(t)
	cfg := writeFile(t, "rocksopts.yaml", sampleYAML)
	t.Setenv("ROCKSOPTS_STORAGE__ROCKSDB__COMPRESSION", "zlib")
	t.Setenv("ROCKSOPTS_STORAGE__ROCKSDB__NUMLEVELS", "4")
	t.Setenv("ROCKSOPTS_STORAGE__ROCKSDB__UNKNOWN", "x")

	k, err := Load(context.Background(), Sources{
		Registry:  testRegistry(t),
		Bootstrap: Bootstrap{ConfigFile: cfg, OverridesProfile: "ssd"},
		Overrides: func(context.Context) (map[string]string, error) {
			return map[string]string{
				"storage.rocksdb.cacheSizeGB": "16",
				"storage.rocksdb.numLevels":   "5",
			}, nil
		},
		Flags: map[string]any{"storage.rocksdb.compression": "lz4hc"},
	})
	require.NoError(t, err)

	assert.Equal(t, "16", k.String("storage.rocksdb.cacheSizeGB"), "sql beats yaml")
	assert.Equal(t, "4", k.String("storage.rocksdb.numLevels"), "env beats sql")
	assert.Equal(t, "lz4hc", k.String("storage.rocksdb.compression"), "flags beat env")
	assert.False(t, k.Exists("storage.rocksdb.unknown"), "unregistered env vars are dropped")
}

func TestLoad_DotenvDoesNotOverrideProcessEnv(t *testing.T) {
	observeGlobal(t)
	t.Setenv("ROCKSOPTS_STORAGE__ROCKSDB__COMPRESSION", "zlib")
	t.Cleanup(func() { _ = os.Unsetenv("ROCKSOPTS_STORAGE__ROCKSDB__MAXWRITEMBPERSEC") })

	envFile := writeFile(t, ".env",
		"ROCKSOPTS_STORAGE__ROCKSDB__COMPRESSION=none\n"+
			"ROCKSOPTS_STORAGE__ROCKSDB__MAXWRITEMBPERSEC=256\n")

	k, err := Load(context.Background(), Sources{
		Registry:  testRegistry(t),
		Bootstrap: Bootstrap{EnvFile: envFile},
	})
	require.NoError(t, err)
	assert.Equal(t, "zlib", k.String("storage.rocksdb.compression"))
	assert.Equal(t, "256", k.String("storage.rocksdb.maxWriteMBPerSec"))
}

func TestLoad_VaultReferences(t *testing.T) {
	observeGlobal(t)
	ref := "vault:secret/rocksdb#config"
	src := Sources{
		Registry: testRegistry(t),
		Flags:    map[string]any{"storage.rocksdb.configString": ref},
	}

	_, err := Load(context.Background(), src)
	require.Error(t, err, "a reference without a resolver is an error")
	assert.Contains(t, err.Error(), "storage.rocksdb.configString")

	src.Vault = mapResolver{ref: "write_buffer_size=64m"}
	k, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "write_buffer_size=64m", k.String("storage.rocksdb.configString"))

	src.Vault = mapResolver{}
	_, err = Load(context.Background(), src)
	assert.ErrorContains(t, err, "no such secret")
}

func TestLoad_Errors(t *testing.T) {
	observeGlobal(t)

	_, err := Load(context.Background(), Sources{})
	assert.Error(t, err, "nil registry")

	bad := writeFile(t, "bad.yaml", "storage: [unclosed\n")
	_, err = Load(context.Background(), Sources{
		Registry:  testRegistry(t),
		Bootstrap: Bootstrap{ConfigFile: bad},
	})
	assert.ErrorContains(t, err, "load config file")

	sqlErr := errors.New("connection refused")
	_, err = Load(context.Background(), Sources{
		Registry: testRegistry(t),
		Overrides: func(context.Context) (map[string]string, error) {
			return nil, sqlErr
		},
	})
	assert.ErrorIs(t, err, sqlErr)
}

func TestLoad_FeedsOptionPipeline(t *testing.T) {
	observeGlobal(t)
	cfg := writeFile(t, "rocksopts.yaml", sampleYAML)
	reg := testRegistry(t)

	k, err := Load(context.Background(), Sources{Registry: reg, Bootstrap: Bootstrap{ConfigFile: cfg}})
	require.NoError(t, err)

	var rec struct {
		CacheSizeGB  int    `opt:"storage.rocksdb.cacheSizeGB"`
		Compression  string `opt:"storage.rocksdb.compression"`
		NumLevels    int    `opt:"storage.rocksdb.numLevels"`
		MaxWrite     int    `opt:"storage.rocksdb.maxWriteMBPerSec"`
		ConfigString string `opt:"storage.rocksdb.configString"`
	}
	require.NoError(t, option.Defaults(reg, &rec))
	a, err := option.NewApplier(reg, &rec, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, a.Apply(option.FromKoanf(k)))

	assert.Equal(t, 8, rec.CacheSizeGB)
	assert.Equal(t, "lz4", rec.Compression)
	assert.Equal(t, 6, rec.NumLevels)
	assert.Equal(t, 1024, rec.MaxWrite)
}
