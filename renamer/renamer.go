// Package renamer isolates module namespaces: it derives a prefix from
// each module's path and rewrites the module's top-level identifiers, at
// declaration sites and reference sites alike, so independently authored
// files can be concatenated without collisions.
package renamer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/claudianadalin/pinecone/pinescript"
	"github.com/claudianadalin/pinecone/resolver"
)

// maxAvailable caps the identifier suggestions shown for a bad export.
const maxAvailable = 5

// IdentifierNotFoundError reports an @export directive naming an
// identifier the module never declares at top level.
type IdentifierNotFoundError struct {
	Name                 string
	ModulePath           string
	ExportLine           int
	AvailableIdentifiers []string
}

func (e *IdentifierNotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Exported identifier %q not found in module\n\n", e.Name)
	fmt.Fprintf(&sb, "  → Export directive at: %s:%d", e.ModulePath, e.ExportLine)
	if len(e.AvailableIdentifiers) > 0 {
		sb.WriteString("\n\nAvailable identifiers in this file:")
		for i, name := range e.AvailableIdentifiers {
			if i == maxAvailable {
				break
			}
			sb.WriteString("\n  • " + name)
		}
	}
	return sb.String()
}

// RenameMap maps original identifiers to their prefixed forms.
type RenameMap map[string]string

// PathToPrefix converts a module path into its namespace prefix.
//
// The path is taken relative to rootDir, a leading src segment is
// dropped, the .pine extension is stripped, and the remaining segments
// are joined with underscores between double-underscore markers:
// /project/src/utils/math.pine -> __utils_math__.
func PathToPrefix(path, rootDir string) string {
	rel, err := filepath.Rel(rootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 0 && parts[0] == "src" {
		parts = parts[1:]
	}
	if len(parts) > 0 {
		parts[len(parts)-1] = strings.TrimSuffix(parts[len(parts)-1], resolver.SourceExtension)
	}
	return "__" + strings.Join(parts, "_") + "__"
}

// TopLevelIdentifiers collects every name a script declares at top level:
// function declarations (method-style declarations excluded, they are
// invoked via dot-call syntax and cannot collide with free names) and all
// assignment targets, recursing through destructuring tuples.
func TopLevelIdentifiers(script *pinescript.Script) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, stmt := range script.Body {
		switch s := stmt.(type) {
		case *pinescript.FuncDef:
			if !s.Method {
				add(s.Name)
			}
		case *pinescript.AssignStmt:
			for _, name := range targetNames(s.Target) {
				add(name)
			}
		}
	}
	return names
}

func targetNames(target pinescript.Expr) []string {
	switch t := target.(type) {
	case *pinescript.Ident:
		return []string{t.Name}
	case *pinescript.TupleExpr:
		var names []string
		for _, elem := range t.Elems {
			names = append(names, targetNames(elem)...)
		}
		return names
	}
	return nil
}

// BuildRenameMap maps each of the given identifiers to its prefixed form
// for the module at path.
func BuildRenameMap(identifiers []string, path, rootDir string) RenameMap {
	prefix := PathToPrefix(path, rootDir)
	renames := make(RenameMap, len(identifiers))
	for _, name := range identifiers {
		renames[name] = prefix + name
	}
	return renames
}

// ValidateExports checks that every @export directive of the module names
// an identifier in its extracted top-level set.
func ValidateExports(module *resolver.Module) error {
	identifiers := TopLevelIdentifiers(module.AST)
	declared := make(map[string]bool, len(identifiers))
	for _, name := range identifiers {
		declared[name] = true
	}

	for _, exp := range module.Exports {
		for _, name := range exp.Names {
			if !declared[name] {
				return &IdentifierNotFoundError{
					Name:                 name,
					ModulePath:           module.Path,
					ExportLine:           exp.Line,
					AvailableIdentifiers: identifiers,
				}
			}
		}
	}
	return nil
}

// Apply rewrites the script in place: function-declaration names (method
// declarations skipped), assignment targets including nested tuple
// elements, and every identifier occurrence, in read and write position
// alike. Dotted-access field names are left alone; only the root of a
// chain is a free-standing identifier.
//
// Applying the same map twice is a no-op the second time: prefixed names
// no longer match the original keys.
func Apply(script *pinescript.Script, renames RenameMap) {
	if len(renames) == 0 {
		return
	}
	pinescript.Walk(script, func(node pinescript.Node) bool {
		switch n := node.(type) {
		case *pinescript.FuncDef:
			if n.Method {
				// body still visited: method bodies may reference
				// renamed free-standing identifiers
				return true
			}
			if renamed, ok := renames[n.Name]; ok {
				n.Name = renamed
			}
		case *pinescript.Ident:
			if renamed, ok := renames[n.Name]; ok {
				n.Name = renamed
			}
		}
		return true
	})
}
