package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, yamlBody string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "snap2cmd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "source:\n  path: dump.rdb\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2000, cfg.Replay.RatePerSecond)
	require.Equal(t, 256, cfg.Replay.BatchSize)
	require.Equal(t, "logs", cfg.LogDir)
	require.False(t, cfg.HasTarget())
}

func TestLoadWithTargetAndOverrides(t *testing.T) {
	path := writeTempConfig(t, `
source:
  path: dump.rdb
target:
  addr: 127.0.0.1:6379
  password: secret
replay:
  ratePerSecond: 500
  batchSize: 64
logDir: mylogs
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.HasTarget())
	require.Equal(t, "127.0.0.1:6379", cfg.Target.Addr)
	require.Equal(t, 500, cfg.Replay.RatePerSecond)
	require.Equal(t, 64, cfg.Replay.BatchSize)
	require.Equal(t, "mylogs", cfg.LogDir)
}

func TestLoadMissingSourcePathFails(t *testing.T) {
	path := writeTempConfig(t, "logDir: logs\n")
	_, err := Load(path)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestResolvedSourcePathIsRelativeToConfigDir(t *testing.T) {
	path := writeTempConfig(t, "source:\n  path: snapshots/dump.rdb\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(path), "snapshots", "dump.rdb"), cfg.ResolvedSourcePath())
}

func TestSummary(t *testing.T) {
	path := writeTempConfig(t, "source:\n  path: dump.rdb\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Contains(t, cfg.Summary(), "target=none")
}
