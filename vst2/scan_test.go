package vst2_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/phonograph/vst2"
)

func TestScan(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "nested")
	require.NoError(t, os.Mkdir(nested, 0o755))
	files := []string{
		filepath.Join(root, "krush"+vst2.Extension()),
		filepath.Join(nested, "delay"+vst2.Extension()),
		filepath.Join(root, "readme.txt"),
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(f, nil, 0o644))
	}

	libs := vst2.Scan(root, root, filepath.Join(root, "missing"))
	assert.Len(t, libs, 2)
	assert.Equal(t, []string{files[0]}, libs[root])
	assert.Equal(t, []string{files[1]}, libs[nested])
	assert.Contains(t, libs.String(), "krush"+vst2.Extension())
}
