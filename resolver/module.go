// Package resolver loads Pine Script modules and builds the project
// dependency graph: depth-first discovery from the entry file, import
// validation against @export directives, cycle detection, and a
// topological bundling order.
package resolver

import (
	"errors"
	"os"

	"github.com/claudianadalin/pinecone/directives"
	"github.com/claudianadalin/pinecone/pinescript"
)

// Module is a loaded Pine Script file. Each Module exclusively owns its
// AST; the renaming pass mutates it in place exactly once per build.
type Module struct {
	Path    string // canonical absolute path
	Source  string
	AST     *pinescript.Script
	Exports []directives.ExportDirective
	Imports []directives.ImportDirective
}

// ExportedNames returns the flat list of names this module exports.
func (m *Module) ExportedNames() []string {
	return directives.ExportedNames(m.Exports)
}

// LoadModule reads and parses one Pine Script file. Directives are scanned
// from the raw text first, since the parser discards comments.
func LoadModule(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	source := string(data)

	exports := directives.ScanExports(source)
	imports := directives.ScanImports(source)

	ast, err := pinescript.Parse(source)
	if err != nil {
		perr := &ParseError{Path: path, Message: err.Error()}
		var serr *pinescript.Error
		if errors.As(err, &serr) {
			perr.Message = serr.Msg
			perr.Line = serr.Line
		}
		return nil, perr
	}

	return &Module{
		Path:    path,
		Source:  source,
		AST:     ast,
		Exports: exports,
		Imports: imports,
	}, nil
}
