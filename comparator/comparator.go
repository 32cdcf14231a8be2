// Package comparator decides whether two independently constructed
// computation graphs are structurally equivalent: same operation topology,
// same per-node attributes, same nested-subgraph contracts for the
// control-flow operators (If, Loop, TensorIterator) - without executing
// anything.
//
// The engine assumes both graphs derive from a common ancestor and walks
// them in lock-step from their declared outputs and side-effecting sinks; it
// is not a general graph-isomorphism search. It is a pure decision function:
// it never logs, retries or mutates the graphs, and is safe to call from
// multiple goroutines as long as each call gets its own graph pair.
package comparator

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/SmirnovGrigory/openvino/ir"
	"github.com/gomlx/gomlx/types"
)

// Compare checks the two graphs for structural equivalence under the given
// comparison categories. On failure the Result message holds the first
// terminal error or the newline-joined accumulated diagnostics.
func Compare(g1, g2 *ir.Graph, flags CheckFlags) Result {
	return newComparator(flags).compareGraphs(g1, g2)
}

// CompareNodes runs the node-level comparison for a single already-paired
// node pair, without traversing their producers. Minor diagnostics that
// Compare would only accumulate make the result invalid here.
func CompareNodes(n1, n2 *ir.Node, flags CheckFlags) Result {
	var diags strings.Builder
	result := newComparator(flags).compareNodes(n1, n2, &diags)
	if !result.Valid {
		return result
	}
	if diags.Len() > 0 {
		return Errorf("%s", diags.String())
	}
	return result
}

type nodePair struct {
	a, b *ir.Node
}

type comparator struct {
	flags   CheckFlags
	queue   []nodePair
	visited types.Set[*ir.Node]
}

func newComparator(flags CheckFlags) *comparator {
	return &comparator{
		flags:   flags,
		visited: types.MakeSet[*ir.Node](),
	}
}

func (c *comparator) push(a, b *ir.Node) {
	c.queue = append(c.queue, nodePair{a, b})
	c.visited.Insert(a)
}

// compareGraphs aligns the two graphs' results and sinks, then drives the
// synchronized worklist traversal over paired nodes.
func (c *comparator) compareGraphs(g1, g2 *ir.Graph) Result {
	results1 := append([]*ir.Node(nil), g1.Results...)
	results2 := append([]*ir.Node(nil), g2.Results...)
	if len(results1) != len(results2) {
		return Errorf("Number of results is different: %d and %d", len(results1), len(results2))
	}

	// A result's friendly name is ambiguous when its source tensor carries
	// more than one name (the result may have adopted any of them), so in
	// that case both lists are sorted by the producing node's name instead.
	less := lessByName
	if anyResultWithAliases(results1) || anyResultWithAliases(results2) {
		less = lessByProducerName
	}
	sort.SliceStable(results1, func(i, j int) bool { return less(results1[i], results1[j]) })
	sort.SliceStable(results2, func(i, j int) bool { return less(results2[i], results2[j]) })

	sinks1 := g1.Sinks
	sinks2 := g2.Sinks
	if len(sinks1) != len(sinks2) {
		return Errorf("Number of sinks is different: %d and %d", len(sinks1), len(sinks2))
	}

	if len(sinks1) == 1 {
		c.push(sinks1[0], sinks2[0])
	} else {
		// Pair sinks by variable identity; substring containment tolerates
		// suffix/prefix renaming across passes.
		for _, sink1 := range sinks1 {
			if sink1.Variable == "" {
				return Errorf("Sink '%s' is not a variable - graph comparison is not supported", sink1.FriendlyName)
			}
			var found *ir.Node
			for _, sink2 := range sinks2 {
				if sink2.Variable == "" {
					return Errorf("Sink '%s' is not a variable - graph comparison is not supported", sink2.FriendlyName)
				}
				if strings.Contains(sink2.Variable, sink1.Variable) || strings.Contains(sink1.Variable, sink2.Variable) {
					found = sink2
					break
				}
			}
			if found == nil {
				return Errorf("No suitable sink is found for: %s, var=%s", sink1.FriendlyName, sink1.Variable)
			}
			c.push(sink1, found)
		}
	}

	for i := range results1 {
		if c.flags.Has(CheckNames) {
			name1 := results1[i].In(0).Source.FriendlyName
			name2 := results2[i].In(0).Source.FriendlyName
			if name1 != name2 {
				return Errorf("Different output node names: %s and %s", name1, name2)
			}
		}
		c.push(results1[i], results2[i])
	}

	var diags strings.Builder
	for len(c.queue) > 0 {
		pair := c.queue[0]
		c.queue = c.queue[1:]

		result := c.compareNodes(pair.a, pair.b, &diags)
		if !result.Valid {
			return result
		}

		// Lock-step descent: positional correspondence of inputs was
		// established by the arity check in compareNodes.
		for i := range pair.a.Inputs {
			producer1 := pair.a.In(i).Source
			if c.visited.Has(producer1) {
				continue
			}
			c.push(producer1, pair.b.In(i).Source)
		}
	}

	if diags.Len() > 0 {
		return Errorf("%s", diags.String())
	}
	return Ok()
}

// compareNodes runs the node-level checks for one paired node. Terminal
// mismatches (type identity, subgraph contract, arity) return an invalid
// Result; everything else is appended to diags.
func (c *comparator) compareNodes(n1, n2 *ir.Node, diags *strings.Builder) Result {
	if !matchingTypeInfo(n1.Type, n2.Type) {
		return Errorf("%s != %s", n1.Type, n2.Type)
	}

	subGraphNodes := n1.SubGraph != nil && n2.SubGraph != nil

	if subGraphNodes {
		if result := c.compareSubGraphs(n1, n2); !result.Valid {
			return result
		}
	}

	if len(n1.ControlDeps) != len(n2.ControlDeps) {
		return Errorf("Number of dependencies is different: %d for %s and %d for %s",
			len(n1.ControlDeps), n1.FriendlyName, len(n2.ControlDeps), n2.FriendlyName)
	}
	if len(n1.Inputs) != len(n2.Inputs) {
		return Errorf("Number of inputs is different: %d for %s and %d for %s",
			len(n1.Inputs), n1.FriendlyName, len(n2.Inputs), n2.FriendlyName)
	}
	if len(n1.Outputs) != len(n2.Outputs) {
		return Errorf("Number of outputs is different: %d for %s and %d for %s",
			len(n1.Outputs), n1.FriendlyName, len(n2.Outputs), n2.FriendlyName)
	}

	// The subgraph contract verifier supersedes the generic per-port
	// checks for control-flow pairs.
	if !subGraphNodes {
		c.compareInputs(n1, n2, diags)
		c.compareOutputs(n1, n2, diags)
	}

	c.compareNodeMeta(n1, n2, diags)
	return OkWith("minor mismatches, if any, are accumulated in the diagnostics")
}

// compareInputs accumulates the per-input diagnostics: constant values,
// element types, shape schemes, source port indexes and runtime metadata.
func (c *comparator) compareInputs(n1, n2 *ir.Node, diags *strings.Builder) {
	for i := range n1.Inputs {
		in1, in2 := n1.In(i), n2.In(i)

		if c.flags.Has(CheckConstValues) {
			const1 := in1.Source.Const
			const2 := in2.Source.Const
			if const1 != nil && const2 != nil && !constValuesEqual(const1, const2) {
				writef(diags, "Different Constant values detected\n%s Input(%d) and %s Input(%d)\n",
					n1, i, n2, i)
			}
		}

		if c.flags.Has(CheckPrecisions) && in1.DType() != in2.DType() {
			writef(diags, "Different element type detected\n%s Input(%d) %s and %s Input(%d) %s\n",
				n1.FriendlyName, i, in1.DType(), n2.FriendlyName, i, in2.DType())
		}

		if !in1.Shape().SameScheme(in2.Shape()) {
			writef(diags, "Different shape detected\n%s Input(%d) %s and %s Input(%d) %s\n",
				n1.FriendlyName, i, in1.Shape(), n2.FriendlyName, i, in2.Shape())
		}

		if in1.Port != in2.Port {
			writef(diags, "Different ports detected\n%s Input(%d) connected to parent port %d and %s Input(%d) connected to parent port %d\n",
				n1.FriendlyName, i, in1.Port, n2.FriendlyName, i, in2.Port)
		}

		if c.flags.Has(CheckRuntimeKeys) {
			if ok, msg := compareRTInfo(in1.RTInfo, in2.RTInfo); !ok {
				writef(diags, "%sDifferent runtime info detected at input(%d)\n%s and %s not equal runtime info.\n",
					msg, i, n1.FriendlyName, n2.FriendlyName)
			}
		}
	}
}

// compareOutputs accumulates the per-output diagnostics: tensor names,
// shape schemes and runtime metadata. Element types of outputs are already
// covered transitively by the consumers' input checks.
func (c *comparator) compareOutputs(n1, n2 *ir.Node, diags *strings.Builder) {
	for i := range n1.Outputs {
		out1, out2 := n1.Out(i), n2.Out(i)

		if c.flags.Has(CheckTensorNames) && !equalNameSets(out1.Names, out2.Names) {
			writef(diags, "Output tensors names %s and %s are different for nodes: %s and %s\n",
				tensorNames(out1), tensorNames(out2), n1.FriendlyName, n2.FriendlyName)
		}

		if !out1.Shape.SameScheme(out2.Shape) {
			writef(diags, "Different shape detected\n%s Output(%d) %s and %s Output(%d) %s\n",
				n1.FriendlyName, i, out1.Shape, n2.FriendlyName, i, out2.Shape)
		}

		if c.flags.Has(CheckRuntimeKeys) {
			if ok, msg := compareRTInfo(out1.RTInfo, out2.RTInfo); !ok {
				writef(diags, "%sDifferent runtime info detected at output(%d)\n%s and %s not equal runtime info.\n",
					msg, i, n1.FriendlyName, n2.FriendlyName)
			}
		}
	}
}

// compareNodeMeta accumulates node-level runtime metadata and attribute
// diagnostics.
func (c *comparator) compareNodeMeta(n1, n2 *ir.Node, diags *strings.Builder) {
	if c.flags.Has(CheckRuntimeKeys) {
		if ok, msg := compareRTInfo(n1.RTInfo, n2.RTInfo); !ok {
			writef(diags, "%sDifferent runtime info detected\n%s and %s not equal runtime info.\n",
				msg, n1.FriendlyName, n2.FriendlyName)
		}
	}

	if c.flags.Has(CheckAttributes) {
		if result := c.compareAttributes(n1, n2); !result.Valid {
			diags.WriteString(result.Message)
		}
	}
}

// matchingTypeInfo compares type identities, allowing the relaxed-type
// exception: a relaxed (type-erased) operation ignores the operator-set
// version and peels to the wrapped base type's name.
func matchingTypeInfo(t1, t2 ir.TypeInfo) bool {
	if !typeRelaxed(t1.Name) && !typeRelaxed(t2.Name) && t1.Version != t2.Version {
		return false
	}
	return baseTypeName(t1) == baseTypeName(t2)
}

func typeRelaxed(name string) bool {
	return strings.HasPrefix(name, "TypeRelaxed")
}

func baseTypeName(t ir.TypeInfo) string {
	if typeRelaxed(t.Name) && t.Parent != nil {
		return t.Parent.Name
	}
	return t.Name
}

func lessByName(l, r *ir.Node) bool {
	return l.FriendlyName < r.FriendlyName
}

func lessByProducerName(l, r *ir.Node) bool {
	return l.In(0).Source.FriendlyName < r.In(0).Source.FriendlyName
}

func anyResultWithAliases(results []*ir.Node) bool {
	for _, result := range results {
		in := result.In(0)
		if len(in.Source.Out(in.Port).Names) > 1 {
			return true
		}
	}
	return false
}

func equalNameSets(a, b types.Set[string]) bool {
	if len(a) != len(b) {
		return false
	}
	for name := range a {
		if !b.Has(name) {
			return false
		}
	}
	return true
}

// tensorNames formats an output's tensor-name set for diagnostics, sorted
// for determinism.
func tensorNames(out *ir.Output) string {
	return `"` + strings.Join(slices.Sorted(maps.Keys(out.Names)), ", ") + `"`
}

func writef(diags *strings.Builder, format string, args ...any) {
	diags.WriteString(fmt.Sprintf(format, args...))
}
