package ir

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/types"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Graph is a function body: an ordered list of Parameter nodes (inputs), an
// ordered list of Result nodes (outputs), the Sink nodes (side-effecting
// terminals such as state writes) and, implicitly, every node reachable from
// the Results and Sinks through input edges.
type Graph struct {
	Name       string
	Parameters []*Node
	Results    []*Node
	Sinks      []*Node
}

// NewGraph creates an empty named graph.
func NewGraph(name string) *Graph {
	return &Graph{Name: name}
}

// Parameter creates a Parameter node with one output of the given element
// type and shape, registers it as the next graph input and returns it.
func (g *Graph) Parameter(name string, dtype dtypes.DType, shape PartialShape) *Node {
	param := NewNode(OpType("Parameter", 0), name).AddOutput(dtype, shape, name)
	g.Parameters = append(g.Parameters, param)
	return param
}

// Result creates a Result node fed by the given output port of source,
// registers it as the next graph output and returns it. The result's output
// mirrors the source output's type and shape.
func (g *Graph) Result(name string, source *Node, port int) *Node {
	if port < 0 || port >= len(source.Outputs) {
		exceptions.Panicf("graph %q: Result %q from %q port %d, but it has %d outputs",
			g.Name, name, source.FriendlyName, port, len(source.Outputs))
	}
	src := source.Outputs[port]
	result := NewNode(OpType("Result", 0), name).
		AddInput(source, port).
		AddOutput(src.DType, src.Shape)
	g.Results = append(g.Results, result)
	return result
}

// Sink registers a side-effecting terminal node (e.g. a variable write).
func (g *Graph) Sink(node *Node) *Node {
	g.Sinks = append(g.Sinks, node)
	return node
}

// Nodes returns every node reachable from the graph's Results and Sinks
// through input edges, in breadth-first order starting at the terminals.
// Nested bodies of subgraph operators are not crossed into.
func (g *Graph) Nodes() []*Node {
	var order []*Node
	visited := types.MakeSet[*Node]()
	queue := make([]*Node, 0, len(g.Results)+len(g.Sinks))
	enqueue := func(n *Node) {
		if !visited.Has(n) {
			visited.Insert(n)
			queue = append(queue, n)
		}
	}
	for _, result := range g.Results {
		enqueue(result)
	}
	for _, sink := range g.Sinks {
		enqueue(sink)
	}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for i := range node.Inputs {
			enqueue(node.Inputs[i].Source)
		}
		for _, dep := range node.ControlDeps {
			enqueue(dep)
		}
	}
	return order
}

// Validate checks the structural invariants of the graph: every input edge
// resolves to a valid output port, Result nodes have exactly one input, and
// every subgraph operator's descriptor indexes are in range of its ports and
// its bodies' parameter/result lists (recursively).
func (g *Graph) Validate() error {
	for _, result := range g.Results {
		if len(result.Inputs) != 1 {
			return errors.Errorf("graph %q: result %q has %d inputs, want 1",
				g.Name, result.FriendlyName, len(result.Inputs))
		}
	}
	for _, node := range g.Nodes() {
		for i := range node.Inputs {
			in := &node.Inputs[i]
			if in.Source == nil {
				return errors.Errorf("graph %q: node %q input %d has no source", g.Name, node.FriendlyName, i)
			}
			if in.Port < 0 || in.Port >= len(in.Source.Outputs) {
				return errors.Errorf("graph %q: node %q input %d connects to %q port %d, but it has %d outputs",
					g.Name, node.FriendlyName, i, in.Source.FriendlyName, in.Port, len(in.Source.Outputs))
			}
		}
		if node.SubGraph != nil {
			if err := node.SubGraph.validate(node); err != nil {
				return errors.WithMessagef(err, "graph %q", g.Name)
			}
		}
	}
	return nil
}
