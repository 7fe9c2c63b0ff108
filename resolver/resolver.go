package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// SourceExtension is the Pine Script file extension.
const SourceExtension = ".pine"

// Graph is the resolved dependency graph of one build. Order is
// topological: dependencies precede dependents, the entry module is last.
type Graph struct {
	Entry   string // canonical absolute path of the entry module
	Modules map[string]*Module
	Order   []string
}

// EntryModule returns the entry point's Module.
func (g *Graph) EntryModule() *Module {
	return g.Modules[g.Entry]
}

// Dependencies returns the resolved paths of a module's project imports,
// deduplicated, in directive order.
func (g *Graph) Dependencies(path string) []string {
	module, ok := g.Modules[path]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var deps []string
	for _, imp := range module.Imports {
		depPath, err := canonical(filepath.Join(filepath.Dir(path), imp.FromPath))
		if err != nil {
			continue
		}
		if _, ok := g.Modules[depPath]; !ok || seen[depPath] {
			continue
		}
		seen[depPath] = true
		deps = append(deps, depPath)
	}
	return deps
}

type walker struct {
	rootDir  string
	visited  map[string]bool
	visiting map[string]bool
	stack    []string
	modules  map[string]*Module
	order    []string
}

// Resolve builds the complete dependency graph starting from entryPath.
// It fails eagerly: missing files, unexported names, cycles and parse
// errors are all reported during this single pass.
func Resolve(entryPath, rootDir string) (*Graph, error) {
	entry, err := canonical(entryPath)
	if err != nil {
		return nil, err
	}

	w := &walker{
		rootDir:  rootDir,
		visited:  make(map[string]bool),
		visiting: make(map[string]bool),
		modules:  make(map[string]*Module),
	}
	if err := w.visit(entry, "", 0); err != nil {
		return nil, err
	}

	return &Graph{
		Entry:   entry,
		Modules: w.modules,
		Order:   w.order,
	}, nil
}

func (w *walker) visit(path, fromFile string, fromLine int) error {
	if w.visiting[path] {
		start := slices.Index(w.stack, path)
		cycle := append(slices.Clone(w.stack[start:]), path)
		return &CircularDependencyError{Cycle: cycle}
	}
	if w.visited[path] {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		requested := path
		if rel, relErr := filepath.Rel(w.rootDir, path); relErr == nil {
			requested = rel
		}
		importer := fromFile
		if importer == "" {
			importer = path
		}
		return &ModuleNotFoundError{
			ImportPath: requested,
			FromFile:   importer,
			FromLine:   fromLine,
			Available:  siblingSources(path),
		}
	}

	w.visiting[path] = true
	w.stack = append(w.stack, path)

	module, err := LoadModule(path)
	if err != nil {
		return err
	}
	w.modules[path] = module

	for _, imp := range module.Imports {
		depPath, err := canonical(filepath.Join(filepath.Dir(path), imp.FromPath))
		if err != nil {
			return err
		}

		if err := w.visit(depPath, path, imp.Line); err != nil {
			return err
		}

		// The same dependency may be reached through several importers;
		// each importer is validated against its own imported names.
		dep := w.modules[depPath]
		exported := dep.ExportedNames()
		for _, name := range imp.Names {
			if !slices.Contains(exported, name) {
				return &ExportNotFoundError{
					Name:             name,
					ModulePath:       depPath,
					FromFile:         path,
					FromLine:         imp.Line,
					AvailableExports: exported,
				}
			}
		}
	}

	delete(w.visiting, path)
	w.stack = w.stack[:len(w.stack)-1]
	w.visited[path] = true
	w.order = append(w.order, path)
	return nil
}

// siblingSources lists .pine files next to the missing target, as
// suggestions for the error message.
func siblingSources(path string) []string {
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == SourceExtension {
			names = append(names, entry.Name())
		}
	}
	return names
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}
