package depgraph

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claudianadalin/pinecone/resolver"
)

// OutputFormat identifies a graph rendering format.
type OutputFormat string

const (
	OutputFormatDOT     OutputFormat = "dot"
	OutputFormatMermaid OutputFormat = "mermaid"
)

// Formatter renders a resolved module graph as text.
type Formatter interface {
	Format(rg *resolver.Graph, rootDir string) (string, error)
}

// NewFormatter returns the formatter for the given format name.
func NewFormatter(format string) (Formatter, error) {
	switch OutputFormat(format) {
	case OutputFormatDOT:
		return &DOTFormatter{}, nil
	case OutputFormatMermaid:
		return &MermaidFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (valid options: %s, %s)",
			format, OutputFormatDOT, OutputFormatMermaid)
	}
}

// moduleLabel is the node label: the module path relative to the project
// root when possible.
func moduleLabel(path, rootDir string) string {
	if rel, err := filepath.Rel(rootDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(path)
}

// sortedEdges returns the graph's edges with sources in topological order
// and targets sorted within each source.
func sortedEdges(rg *resolver.Graph) ([][2]string, error) {
	dg, err := Build(rg)
	if err != nil {
		return nil, err
	}
	adjacency, err := dg.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	var edges [][2]string
	for _, source := range rg.Order {
		targets := make([]string, 0, len(adjacency[source]))
		for target := range adjacency[source] {
			targets = append(targets, target)
		}
		sort.Strings(targets)
		for _, target := range targets {
			edges = append(edges, [2]string{source, target})
		}
	}
	return edges, nil
}

// DOTFormatter formats module graphs in Graphviz DOT format.
type DOTFormatter struct{}

func (f *DOTFormatter) Format(rg *resolver.Graph, rootDir string) (string, error) {
	edges, err := sortedEdges(rg)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("digraph modules {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box, fontname=\"Helvetica\"];\n\n")

	for _, path := range rg.Order {
		label := moduleLabel(path, rootDir)
		if path == rg.Entry {
			fmt.Fprintf(&sb, "    \"%s\" [style=filled, fillcolor=lightblue];\n", label)
		} else {
			fmt.Fprintf(&sb, "    \"%s\";\n", label)
		}
	}

	sb.WriteString("\n")
	for _, edge := range edges {
		fmt.Fprintf(&sb, "    \"%s\" -> \"%s\";\n",
			moduleLabel(edge[0], rootDir), moduleLabel(edge[1], rootDir))
	}
	sb.WriteString("}\n")
	return sb.String(), nil
}

// MermaidFormatter formats module graphs as Mermaid.js flowcharts.
type MermaidFormatter struct{}

func (f *MermaidFormatter) Format(rg *resolver.Graph, rootDir string) (string, error) {
	edges, err := sortedEdges(rg)
	if err != nil {
		return "", err
	}

	// Mermaid node IDs can't have dots or slashes
	nodeIDs := make(map[string]string, len(rg.Order))
	for i, path := range rg.Order {
		nodeIDs[path] = fmt.Sprintf("n%d", i)
	}

	var sb strings.Builder
	sb.WriteString("flowchart LR\n")

	for _, path := range rg.Order {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", nodeIDs[path], moduleLabel(path, rootDir))
	}

	sb.WriteString("\n")
	for _, edge := range edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", nodeIDs[edge[0]], nodeIDs[edge[1]])
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef entry fill:#bfdbfe,stroke:#1d4ed8\n")
	fmt.Fprintf(&sb, "    class %s entry\n", nodeIDs[rg.Entry])
	return sb.String(), nil
}
