package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Exporter renders a built graph in text formats for debugging dumps. The
// output is deterministic: nodes and links are emitted in sorted order.
type Exporter struct {
	graph *Graph
}

// NewExporter creates an exporter for the given graph
func NewExporter(g *Graph) *Exporter {
	return &Exporter{graph: g}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

// DrawMermaid generates a Mermaid diagram of the graph with top-down layout
func (e *Exporter) DrawMermaid() string {
	return e.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options
func (e *Exporter) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	sb.WriteString(fmt.Sprintf("flowchart %s\n", direction))

	for _, n := range e.sortedNodes() {
		label := n.Title
		if label == "" {
			label = n.URL
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", mermaidID(n.ID), escapeLabel(label)))
		if style := statusStyle(n.Status); style != "" {
			sb.WriteString(fmt.Sprintf("    style %s %s\n", mermaidID(n.ID), style))
		}
	}

	for _, l := range e.sortedLinks() {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(l.Source), mermaidID(l.Target)))
	}

	return sb.String()
}

// DrawDOT generates a Graphviz DOT representation of the graph
func (e *Exporter) DrawDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph crawlgraph {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box, style=rounded];\n")

	for _, n := range e.sortedNodes() {
		label := n.Title
		if label == "" {
			label = n.URL
		}
		sb.WriteString(fmt.Sprintf("    %q [label=%q];\n", n.ID, label))
	}

	for _, l := range e.sortedLinks() {
		sb.WriteString(fmt.Sprintf("    %q -> %q;\n", l.Source, l.Target))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func (e *Exporter) sortedNodes() []*Node {
	nodes := make([]*Node, len(e.graph.Nodes))
	copy(nodes, e.graph.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

func (e *Exporter) sortedLinks() []Link {
	links := make([]Link, len(e.graph.Links))
	copy(links, e.graph.Links)
	sort.Slice(links, func(i, j int) bool {
		if links[i].Source != links[j].Source {
			return links[i].Source < links[j].Source
		}
		return links[i].Target < links[j].Target
	})
	return links
}

func statusStyle(s PageStatus) string {
	switch s {
	case PageStatusIndexed:
		return "fill:#90EE90"
	case PageStatusError:
		return "fill:#FFB6C1"
	default:
		return ""
	}
}

// mermaidID makes a page id safe for use as a Mermaid node identifier.
func mermaidID(id string) string {
	r := strings.NewReplacer("-", "_", ".", "_", "/", "_", ":", "_", " ", "_")
	return "n_" + r.Replace(id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}
