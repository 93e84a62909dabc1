// internal/storage/options.go
//
// The RocksDB / TerarkDB option table.
//
// Context
// -------
// One row per setting: dotted key, CLI alias, label, kind, default,
// constraint, and visibility.  The table is registered once (the first call
// to Options) and panics if malformed, so a bad row never survives the first
// test run.
//
// Groups
// ------
//   - RocksDB core: cache, compression, write rate, counters, LSM shape.
//   - Terark: every option under `storage.rocksdb.terark.`, gated by
//     `storage.rocksdb.terark.enable`.  With the gate off the Terark fields
//     keep their defaults whatever the environment says.
//
// Notes
// -----
//   - Index types and entropy algorithms are plain enums.
package storage

import (
	"sync"

	"github.com/yanizio/rocksopts/internal/option"
)

// Prefix is the namespace every key in the table lives under.
const Prefix = "storage.rocksdb."

// TerarkGate is the key of the Terark feature gate.
const TerarkGate = "storage.rocksdb.terark.enable"

var (
	// CompressionTypes are the block compression algorithms for collection data.
	CompressionTypes = option.EnumOf{"none", "snappy", "zlib", "lz4", "lz4hc"}

	// EntropyAlgos are the Terark value entropy coders.
	EntropyAlgos = option.EnumOf{"none", "huffman", "FSE"}

	// IndexTypes are the Terark index rank/select implementations.
	IndexTypes = option.EnumOf{
		"NestLoudsTrieDAWG_IL", "NestLoudsTrieDAWG_IL_256", "IL_256_32",
		"NestLoudsTrieDAWG_Mixed_IL_256", "Mixed_IL_256",
		"NestLoudsTrieDAWG_Mixed_SE_512", "Mixed_SE_512",
		"NestLoudsTrieDAWG_Mixed_XL_256", "Mixed_XL_256",
		"NestLoudsTrieDAWG_SE_512", "SE_512", "SE_512_32", "IL_256",
	}

	ratio = option.DoubleRange{Min: 0, Max: 1}
)

// Options returns the registered option table.  The registry is shared and
// read-only.
func Options() *option.Registry { return options() }

var options = sync.OnceValue(func() *option.Registry {
	r := option.NewRegistry("RocksDB options")

	//
	// RocksDB core
	//
	r.MustRegister(
		option.Spec{
			Key:        "storage.rocksdb.cacheSizeGB",
			Aliases:    []string{"rocksdbCacheSizeGB"},
			Label:      "Block Cache Size GB",
			Help:       "maximum amount of memory to allocate for cache; defaults to 30% of physical RAM",
			Kind:       option.Int,
			Constraint: option.IntRange{Min: 1, Max: 10000},
		},
		option.Spec{
			Key:        "storage.rocksdb.compression",
			Aliases:    []string{"rocksdbCompression"},
			Label:      "Compression",
			Help:       "block compression algorithm for collection data",
			Kind:       option.String,
			Default:    "snappy",
			Constraint: CompressionTypes,
		},
		option.Spec{
			Key:     "storage.rocksdb.maxWriteMBPerSec",
			Aliases: []string{"rocksdbMaxWriteMBPerSec"},
			Label:   "MaxWriteMBPerSec",
			Help: "Maximum speed that RocksDB will write to storage.  Reducing this can help " +
				"reduce read latency spikes during compactions, but too low a value slows " +
				"down writes.  Defaults to 1GB/sec",
			Kind:       option.Int,
			Default:    1024,
			Constraint: option.IntRange{Min: 1, Max: 1024},
		},
		option.Spec{
			Key:        "storage.rocksdb.configString",
			Aliases:    []string{"rocksdbConfigString"},
			Label:      "Engine custom option",
			Help:       "RocksDB storage engine custom configuration settings",
			Kind:       option.String,
			Visibility: option.Hidden,
			Sensitive:  true,
		},
		option.Spec{
			Key:     "storage.rocksdb.crashSafeCounters",
			Aliases: []string{"rocksdbCrashSafeCounters"},
			Label:   "Crash safe counters",
			Help: "If true, numRecord and dataSize counters stay consistent after power failure " +
				"at the cost of slightly slower inserts",
			Kind:       option.Bool,
			Default:    false,
			Visibility: option.Hidden,
		},
		option.Spec{
			Key:     "storage.rocksdb.counters",
			Aliases: []string{"rocksdbCounters"},
			Label:   "Counters",
			Help:    "If true, turn on RocksDB's advanced counters",
			Kind:    option.Bool,
			Default: true,
		},
		option.Spec{
			Key:     "storage.rocksdb.singleDeleteIndex",
			Aliases: []string{"rocksdbSingleDeleteIndex"},
			Label:   "Use SingleDelete in index",
			Help:    "Experimental.  Use this only if you know what you're doing",
			Kind:    option.Bool,
			Default: false,
		},
		option.Spec{
			Key:        "storage.rocksdb.useSeparateOplogCF",
			Aliases:    []string{"rocksdbUseSeparateOplogCF"},
			Label:      "Use separate oplog column family",
			Help:       "Store the oplog in its own column family",
			Kind:       option.Bool,
			Default:    false,
			Visibility: option.Hidden,
		},
		option.Spec{
			Key:     "storage.rocksdb.numLevels",
			Aliases: []string{"rocksdbNumLevels"},
			Label:   "Num levels",
			Help:    "Number of LSM levels",
			Kind:    option.Int,
			Default: 7,
		},
		option.Spec{
			Key:        "storage.rocksdb.targetFileSizeBase",
			Aliases:    []string{"rocksdbTargetFileSizeBase"},
			Label:      "Target file size base",
			Help:       "Target SST size at level 1; 0 keeps the engine default",
			Kind:       option.Uint64,
			Bytes:      true,
			Visibility: option.Hidden,
		},
		option.Spec{
			Key:        "storage.rocksdb.targetFileSizeMultiplier",
			Aliases:    []string{"rocksdbTargetFileSizeMultiplier"},
			Label:      "Target file size multiplier",
			Help:       "SST size growth factor per level; 0 keeps the engine default",
			Kind:       option.Int,
			Visibility: option.Hidden,
		},
	)

	//
	// Terark zip table
	//
	r.MustRegister(
		option.Spec{
			Key:     TerarkGate,
			Aliases: []string{"terarkEnable"},
			Label:   "Terark enable",
			Help:    "Build SST files with the Terark zip table; when false every terark option is ignored",
			Kind:    option.Bool,
			Default: true,
		},
		terark(option.Spec{
			Key:        "storage.rocksdb.terark.indexNestLevel",
			Aliases:    []string{"terarkIndexNestLevel"},
			Label:      "Terark IndexNestLevel",
			Help:       "Index nest level",
			Kind:       option.Int,
			Default:    3,
			Constraint: option.IntRange{Min: 1, Max: 10},
			Visibility: option.Hidden,
		}),
		terark(option.Spec{
			Key:     "storage.rocksdb.terark.checksumLevel",
			Aliases: []string{"terarkChecksumLevel"},
			Label:   "Terark ChecksumLevel",
			Help: "0 checksums nothing; 1 checksums meta data and index on load; 2 checksums " +
				"every record on read; 3 checksums all data with a single value checked on load",
			Kind:       option.Int,
			Default:    1,
			Constraint: option.IntRange{Min: 0, Max: 3},
		}),
		terark(option.Spec{
			Key:        "storage.rocksdb.terark.entropyAlgo",
			Aliases:    []string{"terarkEntropyAlgo"},
			Label:      "Terark EntropyAlgo",
			Help:       "Entropy algorithm",
			Kind:       option.String,
			Default:    "none",
			Constraint: EntropyAlgos,
			Visibility: option.Hidden,
		}),
		terark(option.Spec{
			Key:     "storage.rocksdb.terark.terarkZipMinLevel",
			Aliases: []string{"terarkZipMinLevel"},
			Label:   "Terark TerarkZipMinLevel",
			Help: "Use terarkZip when level >= this value.  < 0 zips only the last level, 0 zips " +
				"every level, and >= numLevels falls back to the native table for all levels",
			Kind:    option.Int,
			Default: 0,
		}),
		terark(option.Spec{
			Key:        "storage.rocksdb.terark.useSuffixArrayLocalMatch",
			Aliases:    []string{"terarkUseSuffixArrayLocalMatch"},
			Label:      "Terark UseSuffixArrayLocalMatch",
			Help:       "Use suffix array local match",
			Kind:       option.Bool,
			Default:    false,
			Visibility: option.Hidden,
		}),
		terark(option.Spec{
			Key:        "storage.rocksdb.terark.warmUpIndexOnOpen",
			Aliases:    []string{"terarkWarmUpIndexOnOpen"},
			Label:      "Terark WarmUpIndexOnOpen",
			Help:       "Warm up index on open",
			Kind:       option.Bool,
			Default:    true,
			Visibility: option.Hidden,
		}),
		terark(option.Spec{
			Key:        "storage.rocksdb.terark.warmUpValueOnOpen",
			Aliases:    []string{"terarkWarmUpValueOnOpen"},
			Label:      "Terark WarmUpValueOnOpen",
			Help:       "Warm up value on open",
			Kind:       option.Bool,
			Default:    false,
			Visibility: option.Hidden,
		}),
		terark(option.Spec{
			Key:        "storage.rocksdb.terark.estimateCompressionRatio",
			Aliases:    []string{"terarkEstimateCompressionRatio"},
			Label:      "Terark EstimateCompressionRatio",
			Help:       "Estimated compression ratio, lets compaction predict SST file size",
			Kind:       option.Double,
			Default:    0.2,
			Constraint: ratio,
			Visibility: option.Hidden,
		}),
		terark(option.Spec{
			Key:        "storage.rocksdb.terark.sampleRatio",
			Aliases:    []string{"terarkSampleRatio"},
			Label:      "Terark SampleRatio",
			Help:       "Global dictionary size over all value size",
			Kind:       option.Double,
			Default:    0.03,
			Constraint: ratio,
			Visibility: option.Hidden,
		}),
		terark(option.Spec{
			Key:        "storage.rocksdb.terark.localTempDir",
			Aliases:    []string{"terarkLocalTempDir"},
			Label:      "Terark LocalTempDir",
			Help:       "Directory for temp files written during compression",
			Kind:       option.String,
			Default:    "/tmp",
			Constraint: option.Format(`^/`, "(absolute path)"),
		}),
		terark(option.Spec{
			Key:        "storage.rocksdb.terark.indexType",
			Aliases:    []string{"terarkIndexType"},
			Label:      "Terark IndexType",
			Help:       "Index rank select type",
			Kind:       option.String,
			Default:    "IL_256",
			Constraint: IndexTypes,
			Visibility: option.Hidden,
		}),
		terark(option.Spec{
			Key:     "storage.rocksdb.terark.softZipWorkingMemLimit",
			Aliases: []string{"terarkSoftMemLimit"},
			Label:   "Terark SoftZipWorkingMemLimit",
			Help:    "Soft zip working memory limit",
			Kind:    option.Uint64,
			Default: uint64(16) << 30,
			Bytes:   true,
		}),
		terark(option.Spec{
			Key:     "storage.rocksdb.terark.hardZipWorkingMemLimit",
			Aliases: []string{"terarkHardMemLimit"},
			Label:   "Terark HardZipWorkingMemLimit",
			Help:    "Hard zip working memory limit",
			Kind:    option.Uint64,
			Default: uint64(32) << 30,
			Bytes:   true,
		}),
		terark(option.Spec{
			Key:        "storage.rocksdb.terark.smallTaskMemory",
			Aliases:    []string{"terarkSmallTaskMemory"},
			Label:      "Terark SmallTaskMemory",
			Help:       "Small task memory size",
			Kind:       option.Uint64,
			Default:    uint64(1200) << 20,
			Bytes:      true,
			Visibility: option.Hidden,
		}),
		terark(option.Spec{
			Key:     "storage.rocksdb.terark.indexCacheRatio",
			Aliases: []string{"terarkIndexCacheRatio"},
			Label:   "Terark IndexCacheRatio",
			Help: "Index cache ratio, typically 0.001 when enabled.  0 disables the index " +
				"cache; the gain at 0.001 is only about 10%",
			Kind:       option.Double,
			Default:    0.0,
			Constraint: ratio,
			Visibility: option.Hidden,
		}),
		terark(option.Spec{
			Key:     "storage.rocksdb.terark.zipThreads",
			Aliases: []string{"terarkZipThreads"},
			Label:   "Terark ZipThreads",
			Help:    "Worker threads used by the zip table builder",
			Kind:    option.Int,
			Default: 8,
		}),
	)
	return r
})

func terark(s option.Spec) option.Spec {
	s.Gate = TerarkGate
	return s
}
