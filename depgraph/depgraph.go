// Package depgraph renders a resolved module graph for visualization.
package depgraph

import (
	"errors"

	graphlib "github.com/dominikbraun/graph"

	"github.com/claudianadalin/pinecone/resolver"
)

// Build constructs a directed graph over module paths: one vertex per
// module, one edge per project import, from importer to dependency.
func Build(rg *resolver.Graph) (graphlib.Graph[string, string], error) {
	dg := graphlib.New(graphlib.StringHash, graphlib.Directed(), graphlib.PreventCycles())

	for _, path := range rg.Order {
		if err := dg.AddVertex(path); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return nil, err
		}
	}

	for _, path := range rg.Order {
		for _, dep := range rg.Dependencies(path) {
			if err := dg.AddEdge(path, dep); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				return nil, err
			}
		}
	}

	return dg, nil
}
