package bundler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudianadalin/pinecone/config"
	"github.com/claudianadalin/pinecone/resolver"
)

// writeProject writes a fixture project into a temp dir and returns a
// config rooted there. Paths in files are relative to the project root.
func writeProject(t *testing.T, entry string, files map[string]string) *config.Config {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return &config.Config{
		Entry:   filepath.Join(root, entry),
		Output:  filepath.Join(root, "dist", "bundle.pine"),
		RootDir: root,
	}
}

func simpleProject(t *testing.T) *config.Config {
	t.Helper()
	return writeProject(t, "src/main.pine", map[string]string{
		"src/main.pine": `//@version=5
indicator("Simple Test", overlay=true)
// @import { double } from "utils.pine"
plot(double(close))
`,
		"src/utils.pine": `// @export double
double(x) =>
    x * 2
`,
	})
}

func TestBundleSimple(t *testing.T) {
	result, err := Bundle(simpleProject(t))
	require.NoError(t, err)

	assert.Equal(t, 2, result.ModulesCount)
	assert.Contains(t, result.Output, "__utils__double")
	assert.Contains(t, result.Output, "//@version=5")
	assert.Contains(t, result.Output, `indicator("Simple Test"`)
	assert.Contains(t, result.Output, "plot(__utils__double(close))")
}

func TestBundleNested(t *testing.T) {
	cfg := writeProject(t, "src/main.pine", map[string]string{
		"src/main.pine": `//@version=5
indicator("Nested")
// @import { formatResult } from "utils/format.pine"
plot(formatResult(close))
`,
		"src/utils/format.pine": `// @export formatResult
// @import { double } from "math.pine"
formatResult(x) =>
    double(x)
`,
		"src/utils/math.pine": `// @export double
double(x) =>
    x * 2
`,
	})

	result, err := Bundle(cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, result.ModulesCount)
	assert.Contains(t, result.Output, "__utils_math__double")
	assert.Contains(t, result.Output, "__utils_format__formatResult")
	// format's internal call site resolves to math's prefixed name
	assert.Contains(t, result.Output, "__utils_math__double(x)")
}

func TestBundleCircularDependency(t *testing.T) {
	cfg := writeProject(t, "src/a.pine", map[string]string{
		"src/a.pine": `// @export fa
// @import { fb } from "b.pine"
fa() => fb()
`,
		"src/b.pine": `// @export fb
// @import { fa } from "a.pine"
fb() => fa()
`,
	})

	_, err := Bundle(cfg)
	var circErr *resolver.CircularDependencyError
	require.ErrorAs(t, err, &circErr)
	assert.Contains(t, err.Error(), "a.pine")
	assert.Contains(t, err.Error(), "b.pine")
}

func TestBundlePreservesVersion(t *testing.T) {
	result, err := Bundle(simpleProject(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Output, "//@version=5"))
}

func TestBundleDefaultVersion(t *testing.T) {
	cfg := writeProject(t, "src/main.pine", map[string]string{
		"src/main.pine": `indicator("No Pragma")
plot(close)
`,
	})

	result, err := Bundle(cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Output, "//@version=5"))
}

func TestBundleDeclarationNearTop(t *testing.T) {
	result, err := Bundle(simpleProject(t))
	require.NoError(t, err)

	lines := strings.Split(result.Output, "\n")
	indicatorLine := -1
	for i, line := range lines {
		if strings.Contains(line, "indicator(") {
			indicatorLine = i
			break
		}
	}
	require.NotEqual(t, -1, indicatorLine)
	assert.Less(t, indicatorLine, 5)
}

func TestBundleSectionsPresent(t *testing.T) {
	result, err := Bundle(simpleProject(t))
	require.NoError(t, err)

	assert.Contains(t, result.Output, "// --- Bundled modules ---")
	assert.Contains(t, result.Output, "// --- From:")
	assert.Contains(t, result.Output, "// --- Main ---")
}

func TestBundleNoImportsNoRenaming(t *testing.T) {
	cfg := writeProject(t, "src/main.pine", map[string]string{
		"src/main.pine": `//@version=5
indicator("Standalone")
x = close * 2
plot(x)
`,
	})

	result, err := Bundle(cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ModulesCount)
	assert.NotContains(t, result.Output, "// --- Bundled modules ---")
	assert.Contains(t, result.Output, "x = close * 2")
	assert.NotContains(t, result.Output, "__")
}

func TestBundleDeduplicatesPlatformImports(t *testing.T) {
	cfg := writeProject(t, "src/main.pine", map[string]string{
		"src/main.pine": `//@version=5
indicator("Imports")
import TradingView/ta/9 as ta
// @import { smooth } from "utils.pine"
plot(smooth(close))
`,
		"src/utils.pine": `// @export smooth
import TradingView/ta/9 as ta
import TradingView/math/1
smooth(x) =>
    ta.sma(x, 14)
`,
	})

	result, err := Bundle(cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(result.Output, "import TradingView/ta/9"))
	assert.Equal(t, 1, strings.Count(result.Output, "import TradingView/math/1"))
	// first occurrence's alias survives
	assert.Contains(t, result.Output, "import TradingView/ta/9 as ta")
}

func TestBundleDistinctImportVersionsKept(t *testing.T) {
	cfg := writeProject(t, "src/main.pine", map[string]string{
		"src/main.pine": `//@version=5
indicator("Versions")
import TradingView/ta/8
import TradingView/ta/9
plot(close)
`,
	})

	result, err := Bundle(cfg)
	require.NoError(t, err)

	assert.Contains(t, result.Output, "import TradingView/ta/8")
	assert.Contains(t, result.Output, "import TradingView/ta/9")
}

func TestBundleSameNameNoCollision(t *testing.T) {
	cfg := writeProject(t, "src/main.pine", map[string]string{
		"src/main.pine": `//@version=5
indicator("Collision")
// @import { scale } from "a.pine"
// @import { shift } from "b.pine"
plot(scale(shift(close)))
`,
		"src/a.pine": `// @export scale
factor = 2
scale(x) =>
    x * factor
`,
		"src/b.pine": `// @export shift
factor = 10
shift(x) =>
    x + factor
`,
	})

	result, err := Bundle(cfg)
	require.NoError(t, err)

	assert.Contains(t, result.Output, "__a__factor = 2")
	assert.Contains(t, result.Output, "__b__factor = 10")
	assert.Contains(t, result.Output, "x * __a__factor")
	assert.Contains(t, result.Output, "x + __b__factor")
}

func TestBundleGolden(t *testing.T) {
	result, err := Bundle(simpleProject(t))
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithNameSuffix(".gold.txt"))
	g.Assert(t, "simple_bundle", []byte(result.Output))
}

func TestWriteBundleCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	result := &Result{
		Output:     "//@version=5\nplot(close)",
		OutputPath: filepath.Join(dir, "dist", "nested", "bundle.pine"),
	}

	require.NoError(t, WriteBundle(result))

	content, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, result.Output, string(content))
}

func TestPostprocess(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "generic constructor call",
			input: "var array<line> lines = array.new < line > 500",
			want:  "var array<line> lines = array.new<line>(500)",
		},
		{
			name:  "two arguments",
			input: "var array<float> arr = array.new < float > 10, 0",
			want:  "var array<float> arr = array.new<float>(10, 0)",
		},
		{
			name:  "matrix constructor",
			input: "var matrix<float> m = matrix.new < float > 3, 3",
			want:  "var matrix<float> m = matrix.new<float>(3, 3)",
		},
		{
			name:  "correct syntax untouched",
			input: "var array<line> lines = array.new<line>(500)",
			want:  "var array<line> lines = array.new<line>(500)",
		},
		{
			name:  "plain comparison untouched",
			input: "x = 1 < 2",
			want:  "x = 1 < 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postprocess(tt.input))
		})
	}
}

func TestPostprocessMultipleOccurrences(t *testing.T) {
	input := "var array<line> a = array.new < line > 100\nvar array<float> b = array.new < float > 200"
	result := postprocess(input)
	assert.Contains(t, result, "array.new<line>(100)")
	assert.Contains(t, result, "array.new<float>(200)")
}

func TestPostprocessPreservesSurroundingContent(t *testing.T) {
	input := `indicator("Test")
x = 1 < 2
y = 3 > 1
var array<line> lines = array.new < line > 500
plot(x)`
	result := postprocess(input)
	assert.Contains(t, result, `indicator("Test")`)
	assert.Contains(t, result, "x = 1 < 2")
	assert.Contains(t, result, "y = 3 > 1")
	assert.Contains(t, result, "array.new<line>(500)")
	assert.Contains(t, result, "plot(x)")
}
