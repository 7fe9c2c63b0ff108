package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScaffold(t *testing.T, dir string) string {
	t.Helper()
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, run(cmd, dir))
	return out.String()
}

func TestRunCreatesProject(t *testing.T) {
	dir := t.TempDir()

	output := runScaffold(t, dir)

	assert.Contains(t, output, "Created pine.config.json")
	assert.Contains(t, output, "Created "+filepath.Join("src", "main.pine"))

	configContent, err := os.ReadFile(filepath.Join(dir, "pine.config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(configContent), `"entry": "src/main.pine"`)

	mainContent, err := os.ReadFile(filepath.Join(dir, "src", "main.pine"))
	require.NoError(t, err)
	assert.Contains(t, string(mainContent), "//@version=5")
}

func TestRunSkipsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := `{"entry": "custom.pine", "output": "out.pine"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pine.config.json"), []byte(custom), 0o644))

	output := runScaffold(t, dir)

	assert.Contains(t, output, "Skipping pine.config.json")

	content, err := os.ReadFile(filepath.Join(dir, "pine.config.json"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(content))
}

func TestRunForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pine.config.json"), []byte("{}"), 0o644))

	flagForce = true
	defer func() { flagForce = false }()

	output := runScaffold(t, dir)

	assert.Contains(t, output, "Created pine.config.json")

	content, err := os.ReadFile(filepath.Join(dir, "pine.config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"entry": "src/main.pine"`)
}
