// internal/storage/settings.go
//
// Typed settings consumed by the RocksDB/TerarkDB storage engine.
//
// Context
// -------
// Settings is the record the option pipeline fills.  Every field carries an
// `opt` tag naming its dotted key in the option table (options.go) and a
// `yaml` tag for `rocksopts --print`.  Terark knobs live in their own
// sub-struct, mirroring the group gated by `storage.rocksdb.terark.enable`.
//
// Lifecycle
// ---------
//  1. NewSettings fills declared defaults.
//  2. Load applies the Environment exactly once.
//  3. Load returns a value copy.  The engine reads it for the rest of the
//     process; nothing writes it, so concurrent reads need no locking.
//
// Notes
// -----
//   - CacheSizeGB stays 0 when not configured.  0 is not a usable cache
//     size; sizing an unset cache is the engine's call, not this package's.
package storage

import "github.com/cockroachdb/redact"

// Settings holds the resolved engine options.
type Settings struct {
	CacheSizeGB      int    `opt:"storage.rocksdb.cacheSizeGB"      yaml:"cacheSizeGB"`
	Compression      string `opt:"storage.rocksdb.compression"      yaml:"compression"`
	MaxWriteMBPerSec int    `opt:"storage.rocksdb.maxWriteMBPerSec" yaml:"maxWriteMBPerSec"`
	ConfigString     string `opt:"storage.rocksdb.configString"     yaml:"configString,omitempty"`

	CrashSafeCounters  bool `opt:"storage.rocksdb.crashSafeCounters"  yaml:"crashSafeCounters"`
	Counters           bool `opt:"storage.rocksdb.counters"           yaml:"counters"`
	SingleDeleteIndex  bool `opt:"storage.rocksdb.singleDeleteIndex"  yaml:"singleDeleteIndex"`
	UseSeparateOplogCF bool `opt:"storage.rocksdb.useSeparateOplogCF" yaml:"useSeparateOplogCF"`

	NumLevels                int    `opt:"storage.rocksdb.numLevels"                yaml:"numLevels"`
	TargetFileSizeBase       uint64 `opt:"storage.rocksdb.targetFileSizeBase"       yaml:"targetFileSizeBase"`
	TargetFileSizeMultiplier int    `opt:"storage.rocksdb.targetFileSizeMultiplier" yaml:"targetFileSizeMultiplier"`

	Terark TerarkSettings `yaml:"terark"`
}

// TerarkSettings steers the Terark zip table factory.
type TerarkSettings struct {
	Enable bool `opt:"storage.rocksdb.terark.enable" yaml:"enable"`

	IndexNestLevel int    `opt:"storage.rocksdb.terark.indexNestLevel" yaml:"indexNestLevel"`
	ChecksumLevel  int    `opt:"storage.rocksdb.terark.checksumLevel"  yaml:"checksumLevel"`
	EntropyAlgo    string `opt:"storage.rocksdb.terark.entropyAlgo"    yaml:"entropyAlgo"`
	IndexType      string `opt:"storage.rocksdb.terark.indexType"      yaml:"indexType"`

	// ZipMinLevel: < 0 zips only the last level, 0 zips every level, and
	// >= NumLevels zips none.  See UsesTerarkZip.
	ZipMinLevel int `opt:"storage.rocksdb.terark.terarkZipMinLevel" yaml:"terarkZipMinLevel"`

	UseSuffixArrayLocalMatch bool `opt:"storage.rocksdb.terark.useSuffixArrayLocalMatch" yaml:"useSuffixArrayLocalMatch"`
	WarmUpIndexOnOpen        bool `opt:"storage.rocksdb.terark.warmUpIndexOnOpen"        yaml:"warmUpIndexOnOpen"`
	WarmUpValueOnOpen        bool `opt:"storage.rocksdb.terark.warmUpValueOnOpen"        yaml:"warmUpValueOnOpen"`

	EstimateCompressionRatio float64 `opt:"storage.rocksdb.terark.estimateCompressionRatio" yaml:"estimateCompressionRatio"`
	SampleRatio              float64 `opt:"storage.rocksdb.terark.sampleRatio"              yaml:"sampleRatio"`
	IndexCacheRatio          float64 `opt:"storage.rocksdb.terark.indexCacheRatio"          yaml:"indexCacheRatio"`

	LocalTempDir string `opt:"storage.rocksdb.terark.localTempDir" yaml:"localTempDir"`

	SoftZipWorkingMemLimit uint64 `opt:"storage.rocksdb.terark.softZipWorkingMemLimit" yaml:"softZipWorkingMemLimit"`
	HardZipWorkingMemLimit uint64 `opt:"storage.rocksdb.terark.hardZipWorkingMemLimit" yaml:"hardZipWorkingMemLimit"`
	SmallTaskMemory        uint64 `opt:"storage.rocksdb.terark.smallTaskMemory"        yaml:"smallTaskMemory"`

	ZipThreads int `opt:"storage.rocksdb.terark.zipThreads" yaml:"zipThreads"`
}

// UsesTerarkZip reports whether SST files at level are built by the Terark
// zip table rather than the fallback table factory.
func (s Settings) UsesTerarkZip(level int) bool {
	if !s.Terark.Enable || level < 0 || level >= s.NumLevels {
		return false
	}
	minLevel := s.Terark.ZipMinLevel
	if minLevel < 0 {
		minLevel = s.NumLevels - 1
	}
	return level >= minLevel
}

// Redacted returns a copy safe to print.  The custom config string may carry
// credentials, so it is masked when set.
func (s Settings) Redacted() Settings {
	if s.ConfigString != "" {
		s.ConfigString = string(redact.Sprint(s.ConfigString).Redact())
	}
	return s
}
