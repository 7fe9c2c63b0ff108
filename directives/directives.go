// Package directives extracts @export and @import declarations from raw
// Pine Script source. Directives live inside comments, so they are scanned
// from the unparsed text before the parser discards comments.
package directives

import (
	"regexp"
	"strings"
)

// ExportDirective represents a // @export directive.
type ExportDirective struct {
	Names []string
	Line  int
}

// ImportDirective represents a // @import directive.
type ImportDirective struct {
	Names    []string
	FromPath string
	Line     int
}

var (
	exportPattern = regexp.MustCompile(`(?m)//\s*@export\s+(.+)$`)
	importPattern = regexp.MustCompile(`//\s*@import\s*\{\s*([^}]+)\s*\}\s*from\s*["']([^"']+)["']`)
)

// ScanExports extracts all @export directives from source with 1-indexed
// line numbers.
//
// Format: // @export name[, name...]
func ScanExports(source string) []ExportDirective {
	var exports []ExportDirective

	for _, match := range exportPattern.FindAllStringSubmatchIndex(source, -1) {
		line := lineAt(source, match[0])
		names := splitNames(source[match[2]:match[3]])
		if len(names) > 0 {
			exports = append(exports, ExportDirective{Names: names, Line: line})
		}
	}

	return exports
}

// ScanImports extracts all @import directives from source with 1-indexed
// line numbers.
//
// Format: // @import { name[, name...] } from "relative/path"
// Single and double quotes are both accepted. The name list does not
// support nested braces or quotes; see the project design notes.
func ScanImports(source string) []ImportDirective {
	var imports []ImportDirective

	for _, match := range importPattern.FindAllStringSubmatchIndex(source, -1) {
		line := lineAt(source, match[0])
		names := splitNames(source[match[2]:match[3]])
		fromPath := source[match[4]:match[5]]
		if len(names) > 0 && fromPath != "" {
			imports = append(imports, ImportDirective{
				Names:    names,
				FromPath: fromPath,
				Line:     line,
			})
		}
	}

	return imports
}

// ExportedNames returns the flat list of all names exported by the
// given directives.
func ExportedNames(exports []ExportDirective) []string {
	var names []string
	for _, exp := range exports {
		names = append(names, exp.Names...)
	}
	return names
}

// splitNames parses a comma-separated identifier list, dropping empty
// entries produced by stray commas.
func splitNames(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// lineAt returns the 1-indexed line number of the given byte offset.
func lineAt(source string, offset int) int {
	return strings.Count(source[:offset], "\n") + 1
}
