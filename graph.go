package neopersist

import "github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

// GraphNode is a node of a raw graph result, independent of any mapped type.
type GraphNode struct {
	// ID is the element id of the node.
	ID         string         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// Edge is a relationship of a raw graph result. Source and Target are the element
// ids of its start and end nodes.
type Edge struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// GraphResult is the de-duplicated set of nodes and edges returned by a graph query,
// in the shape most graph visualization libraries consume.
type GraphResult struct {
	Nodes []*GraphNode `json:"nodes"`
	Edges []*Edge      `json:"edges"`
}

type graphCollector struct {
	result *GraphResult
	nodes  map[string]bool
	edges  map[string]bool
}

func newGraphCollector() *graphCollector {
	return &graphCollector{
		result: &GraphResult{Nodes: make([]*GraphNode, 0), Edges: make([]*Edge, 0)},
		nodes:  make(map[string]bool),
		edges:  make(map[string]bool),
	}
}

// add takes nodes, relationships and paths, also nested in lists.
func (g *graphCollector) add(value any) {
	switch v := value.(type) {
	case dbtype.Node:
		if !g.nodes[v.ElementId] {
			g.nodes[v.ElementId] = true
			g.result.Nodes = append(g.result.Nodes, &GraphNode{ID: v.ElementId, Labels: v.Labels, Properties: v.Props})
		}
	case dbtype.Relationship:
		if !g.edges[v.ElementId] {
			g.edges[v.ElementId] = true
			g.result.Edges = append(g.result.Edges, &Edge{
				ID:         v.ElementId,
				Source:     v.StartElementId,
				Target:     v.EndElementId,
				Type:       v.Type,
				Properties: v.Props,
			})
		}
	case dbtype.Path:
		for _, n := range v.Nodes {
			g.add(n)
		}
		for _, r := range v.Relationships {
			g.add(r)
		}
	case []any:
		for _, item := range v {
			g.add(item)
		}
	}
}
