package resolver

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxSuggestions caps the sibling-file suggestions shown for a missing module.
const maxSuggestions = 5

// ParseError reports a Pine Script syntax error in a module. It is fatal
// and aborts the build.
type ParseError struct {
	Path    string
	Message string
	Line    int // 0 when unknown
	Column  int // 0 when unknown
}

func (e *ParseError) Error() string {
	location := e.Path
	if e.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, e.Line)
		if e.Column > 0 {
			location = fmt.Sprintf("%s:%d", location, e.Column)
		}
	}
	return fmt.Sprintf("Parse error in %s: %s", location, e.Message)
}

// ModuleNotFoundError reports an import whose target file does not exist.
type ModuleNotFoundError struct {
	ImportPath string // the path as requested
	FromFile   string
	FromLine   int
	Available  []string // sibling .pine files in the target directory
}

func (e *ModuleNotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cannot find module %q\n\n", e.ImportPath)
	fmt.Fprintf(&sb, "  → Imported from: %s:%d", e.FromFile, e.FromLine)
	if len(e.Available) > 0 {
		sb.WriteString("\n\nAvailable files in directory:")
		for i, name := range e.Available {
			if i == maxSuggestions {
				break
			}
			sb.WriteString("\n  • " + name)
		}
	}
	return sb.String()
}

// ExportNotFoundError reports an imported name the target module does not
// advertise in its @export directives.
type ExportNotFoundError struct {
	Name             string
	ModulePath       string
	FromFile         string
	FromLine         int
	AvailableExports []string
}

func (e *ExportNotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%q is not exported from %q\n\n", e.Name, filepath.Base(e.ModulePath))
	fmt.Fprintf(&sb, "  → Imported from: %s:%d", e.FromFile, e.FromLine)
	if len(e.AvailableExports) > 0 {
		sb.WriteString("\n\nAvailable exports:")
		for _, name := range e.AvailableExports {
			sb.WriteString("\n  • " + name)
		}
	} else {
		sb.WriteString("\n\nThis module has no exports. Add // @export to export functions.")
	}
	return sb.String()
}

// CircularDependencyError reports an import cycle as the ordered list of
// module paths along it.
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	names := make([]string, len(e.Cycle))
	for i, path := range e.Cycle {
		names[i] = filepath.Base(path)
	}
	return fmt.Sprintf("Circular dependency detected:\n\n  %s", strings.Join(names, " → "))
}
