package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesDailyJSONFile(t *testing.T) {
	dir := t.TempDir()
	log, err := New(Options{Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	log.Infow("Compression: lz4", "option", "storage.rocksdb.compression")
	require.NoError(t, log.Sync())

	name := filepath.Join(dir, "rocksopts-"+time.Now().Format("2006-01-02")+".log")
	body, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `"msg":"Compression: lz4"`), string(body))
	assert.Contains(t, string(body), `"option":"storage.rocksdb.compression"`)

	zap.S().Infow("via global")
	require.NoError(t, zap.L().Sync())
	body, err = os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"msg":"via global"`, "installed as global")
}
