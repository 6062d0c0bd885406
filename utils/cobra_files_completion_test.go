package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"memlab.yaml", "other.YML", "notes.txt", ".hidden.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "conf"), 0o755))

	complete := CompleteFilesByExtension(".yaml", ".yml")
	got, directive := complete(&cobra.Command{}, nil, dir+"/")

	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.Equal(t, []string{
		filepath.Join(dir, "conf") + "/",
		filepath.Join(dir, "memlab.yaml"),
		filepath.Join(dir, "other.YML"),
	}, got)

	_, directive = complete(&cobra.Command{}, nil, filepath.Join(dir, "missing", "x"))
	assert.Equal(t, cobra.ShellCompDirectiveError, directive)
}
