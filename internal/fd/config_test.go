package fd_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastdraft/fd/internal/fd"
)

func TestLoadConfigKeepsDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".fdrc.toml")
	require.NoError(t, os.WriteFile(path, []byte("sort_nodes = true\ndefault_view = \"layout\"\n"), 0o644))

	cfg, err := fd.LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.SortNodes)
	assert.Equal(t, "layout", cfg.DefaultView)
	assert.False(t, cfg.DedupeStyles, "omitted field keeps its default")
	assert.False(t, cfg.RequireSemanticIds)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := fd.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
