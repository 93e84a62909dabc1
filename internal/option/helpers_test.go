package option

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// testRecord mirrors testRegistry.
type testRecord struct {
	CacheSizeGB int     `opt:"test.cacheSizeGB"`
	Compression string  `opt:"test.compression"`
	Ratio       float64 `opt:"test.ratio"`
	Secret      string  `opt:"test.secret"`
	Mem         uint64  `opt:"test.mem"`
	Dir         string  `opt:"test.dir"`

	Feature struct {
		Enable bool   `opt:"test.feature.enable"`
		Level  int    `opt:"test.feature.level"`
		Name   string `opt:"test.feature.name"`
	}
}

var testCompression = EnumOf{"none", "snappy", "zlib", "lz4", "lz4hc"}

func testRegistry(t *testing.T, gateDefault bool) *Registry {
	t.Helper()
	r := NewRegistry("Test options")
	specs := []Spec{
		{Key: "test.cacheSizeGB", Aliases: []string{"cacheSizeGB"}, Label: "Cache GB",
			Kind: Int, Constraint: IntRange{Min: 1, Max: 10000}},
		{Key: "test.compression", Aliases: []string{"compression"}, Label: "Compression",
			Kind: String, Default: "snappy", Constraint: testCompression},
		{Key: "test.ratio", Aliases: []string{"ratio"}, Label: "Ratio",
			Kind: Double, Default: 0.5, Constraint: DoubleRange{Min: 0, Max: 1}},
		{Key: "test.secret", Aliases: []string{"secret"}, Label: "Secret",
			Kind: String, Sensitive: true, Visibility: Hidden},
		{Key: "test.mem", Aliases: []string{"mem"}, Label: "Mem",
			Kind: Uint64, Default: uint64(1 << 20), Bytes: true},
		{Key: "test.dir", Aliases: []string{"dir"}, Label: "Dir",
			Kind: String, Default: "/tmp", Constraint: Format(`^/`, "(absolute path)")},
		{Key: "test.feature.enable", Aliases: []string{"featureEnable"}, Label: "Feature",
			Kind: Bool, Default: gateDefault},
		{Key: "test.feature.level", Aliases: []string{"featureLevel"}, Label: "Feature level",
			Kind: Int, Default: 3, Constraint: IntRange{Min: 1, Max: 10}, Gate: "test.feature.enable"},
		{Key: "test.feature.name", Aliases: []string{"featureName"}, Label: "Feature name",
			Kind: String, Default: "x", Gate: "test.feature.enable"},
	}
	for _, s := range specs {
		require.NoError(t, r.Register(s), s.Key)
	}
	return r
}

// freshRecord returns a defaulted record and an applier logging to an
// observer.
func freshRecord(t *testing.T, r *Registry) (*testRecord, *Applier, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	rec := &testRecord{}
	require.NoError(t, Defaults(r, rec))
	a, err := NewApplier(r, rec, zap.New(core).Sugar())
	require.NoError(t, err)
	return rec, a, logs
}
