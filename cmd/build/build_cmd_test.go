package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"pine.config.json": `{
  "entry": "src/main.pine",
  "output": "dist/bundle.pine"
}`,
		"src/main.pine": `//@version=5
indicator("Build Test")
// @import { double } from "utils.pine"
plot(double(close))
`,
		"src/utils.pine": `// @export double
double(x) =>
    x * 2
`,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRunWritesBundle(t *testing.T) {
	root := writeFixtureProject(t)

	result, err := Run(filepath.Join(root, "pine.config.json"))
	require.NoError(t, err)

	assert.Equal(t, 2, result.ModulesCount)
	assert.Equal(t, filepath.Join(root, "dist", "bundle.pine"), result.OutputPath)

	content, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "__utils__double")
	assert.Contains(t, string(content), "//@version=5")
}

func TestRunMissingConfig(t *testing.T) {
	_, err := Run(filepath.Join(t.TempDir(), "pine.config.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config file not found")
}
