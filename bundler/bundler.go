// Package bundler merges a resolved Pine Script project into a single
// output document: namespace renaming, declaration hoisting, platform
// import deduplication and a textual fixup of the unparser's generic
// constructor artifact.
package bundler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/claudianadalin/pinecone/config"
	"github.com/claudianadalin/pinecone/pinescript"
	"github.com/claudianadalin/pinecone/renamer"
	"github.com/claudianadalin/pinecone/resolver"
)

// defaultVersion is emitted when the entry module has no version pragma.
const defaultVersion = "//@version=5"

// declarationCalls are the entry-point declaration forms hoisted to the
// top of the output.
var declarationCalls = map[string]bool{
	"indicator": true,
	"strategy":  true,
	"library":   true,
}

// Result holds the outcome of one bundling run.
type Result struct {
	Output       string
	ModulesCount int
	EntryPath    string
	OutputPath   string
}

// Bundle resolves, renames and merges the project described by cfg.
//
// Pipeline: resolve the dependency graph, validate export directives
// against declared identifiers, rename every non-entry module's top-level
// identifiers under its namespace prefix, rewrite imported references in
// all modules, then emit the merged document in topological order.
func Bundle(cfg *config.Config) (*Result, error) {
	graph, err := resolver.Resolve(cfg.Entry, cfg.RootDir)
	if err != nil {
		return nil, err
	}

	if err := rename(graph, cfg.RootDir); err != nil {
		return nil, err
	}

	output := postprocess(emit(graph))

	return &Result{
		Output:       output,
		ModulesCount: len(graph.Modules),
		EntryPath:    cfg.Entry,
		OutputPath:   cfg.Output,
	}, nil
}

// rename mutates every module's AST in place, exactly once per build.
func rename(graph *resolver.Graph, rootDir string) error {
	global := renamer.RenameMap{}
	perModule := make(map[string]renamer.RenameMap)

	for _, path := range graph.Order {
		module := graph.Modules[path]
		if err := renamer.ValidateExports(module); err != nil {
			return err
		}
		if path == graph.Entry {
			// the entry module's own identifiers keep their names
			continue
		}
		identifiers := renamer.TopLevelIdentifiers(module.AST)
		renames := renamer.BuildRenameMap(identifiers, path, rootDir)
		perModule[path] = renames
		for name, renamed := range renames {
			global[name] = renamed
		}
	}

	for path, renames := range perModule {
		renamer.Apply(graph.Modules[path].AST, renames)
	}

	// Second pass: rewrite only the names each module's import directives
	// bring into scope, entry included.
	for _, path := range graph.Order {
		module := graph.Modules[path]
		importRenames := renamer.RenameMap{}
		for _, imp := range module.Imports {
			for _, name := range imp.Names {
				if renamed, ok := global[name]; ok {
					importRenames[name] = renamed
				}
			}
		}
		renamer.Apply(module.AST, importRenames)
	}
	return nil
}

func emit(graph *resolver.Graph) string {
	entry := graph.EntryModule()
	var lines []string

	lines = append(lines, version(entry))

	declaration, entryRest := extractDeclaration(entry)
	if declaration != nil {
		lines = append(lines, pinescript.UnparseStmt(declaration))
	}

	for _, imp := range externalImports(graph) {
		lines = append(lines, pinescript.UnparseStmt(imp))
	}

	lines = append(lines, "")

	var deps []string
	for _, path := range graph.Order {
		if path != graph.Entry {
			deps = append(deps, path)
		}
	}
	if len(deps) > 0 {
		lines = append(lines, "// --- Bundled modules ---")
		for _, path := range deps {
			lines = append(lines, fmt.Sprintf("// --- From: %s ---", filepath.Base(path)))
			lines = appendStatements(lines, graph.Modules[path].AST.Body)
		}
		lines = append(lines, "")
	}

	lines = append(lines, "// --- Main ---")
	lines = appendStatements(lines, entryRest)

	return strings.Join(lines, "\n")
}

// appendStatements renders statements, skipping platform imports (already
// emitted, deduplicated) and blank renders.
func appendStatements(lines []string, body []pinescript.Stmt) []string {
	for _, stmt := range body {
		if _, ok := stmt.(*pinescript.ImportStmt); ok {
			continue
		}
		rendered := pinescript.UnparseStmt(stmt)
		if strings.TrimSpace(rendered) != "" {
			lines = append(lines, rendered)
		}
	}
	return lines
}

func version(entry *resolver.Module) string {
	if len(entry.AST.Annotations) > 0 {
		return entry.AST.Annotations[0]
	}
	return defaultVersion
}

// extractDeclaration splits the entry body into the hoisted declaration
// call (at most one) and everything else.
func extractDeclaration(entry *resolver.Module) (pinescript.Stmt, []pinescript.Stmt) {
	var declaration pinescript.Stmt
	var rest []pinescript.Stmt

	for _, stmt := range entry.AST.Body {
		if declaration == nil && isDeclarationCall(stmt) {
			declaration = stmt
			continue
		}
		rest = append(rest, stmt)
	}
	return declaration, rest
}

func isDeclarationCall(stmt pinescript.Stmt) bool {
	exprStmt, ok := stmt.(*pinescript.ExprStmt)
	if !ok {
		return false
	}
	call, ok := exprStmt.X.(*pinescript.CallExpr)
	if !ok {
		return false
	}
	callee, ok := call.Func.(*pinescript.Ident)
	return ok && declarationCalls[callee.Name]
}

// externalImports collects every platform import in traversal order,
// deduplicated by (namespace, name, version); the first occurrence's
// alias wins.
func externalImports(graph *resolver.Graph) []*pinescript.ImportStmt {
	type importKey struct {
		namespace string
		name      string
		version   int
	}
	seen := make(map[importKey]bool)
	var imports []*pinescript.ImportStmt

	for _, path := range graph.Order {
		for _, stmt := range graph.Modules[path].AST.Body {
			imp, ok := stmt.(*pinescript.ImportStmt)
			if !ok {
				continue
			}
			key := importKey{imp.Namespace, imp.Name, imp.Version}
			if seen[key] {
				continue
			}
			seen[key] = true
			imports = append(imports, imp)
		}
	}
	return imports
}

// WriteBundle writes the output document, creating parent directories as
// needed.
func WriteBundle(result *Result) error {
	if err := os.MkdirAll(filepath.Dir(result.OutputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(result.OutputPath, []byte(result.Output), 0o644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}
