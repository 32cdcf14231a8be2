// Package ir holds the in-memory computation-graph object model consumed by
// the comparator package: nodes with typed output ports, graphs (functions)
// with parameters, results and sinks, and control-flow subgraph operators
// (If/Loop/TensorIterator) with their input/output descriptions.
//
// The model is read-only from the comparator's point of view: it is assumed
// to be fully constructed (and type/shape inference already run) before any
// comparison. The builder helpers in this package exist for embedders and
// tests that assemble graphs programmatically.
package ir

import (
	"fmt"
	"strconv"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/types"
	"github.com/gomlx/gopjrt/dtypes"
)

// TypeInfo identifies an operation type: name plus operator-set version.
// A "relaxed" (type-erased) operation wraps a base type: its Name starts with
// "TypeRelaxed" and Parent points at the wrapped type's info.
type TypeInfo struct {
	Name    string
	Version int64
	Parent  *TypeInfo
}

// String formats the type info as "Name/Version".
func (t TypeInfo) String() string {
	return t.Name + "/" + strconv.FormatInt(t.Version, 10)
}

// Output is one output port of a node: its declared element type, partial
// shape, the set of tensor names (aliases) attached to the produced tensor,
// and uninterpreted runtime metadata.
type Output struct {
	DType  dtypes.DType
	Shape  PartialShape
	Names  types.Set[string]
	RTInfo map[string]any
}

// Input is one input port of a node: it resolves to the producing node's
// output port, and carries its own runtime metadata.
type Input struct {
	Source *Node
	Port   int
	RTInfo map[string]any
}

// DType returns the element type of the connected source output.
func (in *Input) DType() dtypes.DType {
	return in.Source.Outputs[in.Port].DType
}

// Shape returns the partial shape of the connected source output.
func (in *Input) Shape() PartialShape {
	return in.Source.Outputs[in.Port].Shape
}

// Attribute is one named, type-tagged attribute of a node. Attributes keep
// their declaration order so visitation is deterministic.
type Attribute struct {
	Name  string
	Value AttrValue
}

// ConstValue is the materialized value of a constant-producing node. Data
// holds a flat slice of the element type ([]float32, []float64, []int32,
// []int64, []bool or []uint8). It is only inspected when constant-value
// comparison is requested.
type ConstValue struct {
	DType dtypes.DType
	Dims  []int
	Data  any
}

// Node is one operation instance. All fields are populated at construction
// time and treated as read-only afterwards.
type Node struct {
	Type         TypeInfo
	FriendlyName string
	Inputs       []Input
	Outputs      []Output
	ControlDeps  []*Node
	Attrs        []Attribute
	RTInfo       map[string]any

	// Variable is the variable/state identity for state reads/writes
	// (e.g. Assign sinks). Empty for stateless operations.
	Variable string

	// Const is set for constant-producing nodes.
	Const *ConstValue

	// SubGraph is set for control-flow operators owning nested bodies.
	SubGraph *SubGraphInfo
}

// NewNode creates a node with the given type info and friendly name.
// Wire inputs/outputs/attributes with the With*/Add* helpers.
func NewNode(t TypeInfo, name string) *Node {
	return &Node{Type: t, FriendlyName: name}
}

// OpType is a shorthand constructor for a plain (non-relaxed) TypeInfo.
func OpType(name string, version int64) TypeInfo {
	return TypeInfo{Name: name, Version: version}
}

// RelaxedType wraps base into a type-erased TypeInfo, the way relaxed
// operations present themselves: "TypeRelaxed<Base>" with Parent set.
func RelaxedType(base TypeInfo) TypeInfo {
	parent := base
	return TypeInfo{
		Name:    "TypeRelaxed<" + base.Name + ">",
		Version: base.Version,
		Parent:  &parent,
	}
}

// AddInput connects the next input port of n to the given output port of
// source. It returns n for chaining.
func (n *Node) AddInput(source *Node, port int) *Node {
	if source == nil {
		exceptions.Panicf("node %q: AddInput with nil source", n.FriendlyName)
	}
	if port < 0 || port >= len(source.Outputs) {
		exceptions.Panicf("node %q: AddInput from %q port %d, but it has %d outputs",
			n.FriendlyName, source.FriendlyName, port, len(source.Outputs))
	}
	n.Inputs = append(n.Inputs, Input{Source: source, Port: port})
	return n
}

// AddOutput declares the next output port of n with the given element type
// and shape, optionally attaching tensor names. It returns n for chaining.
func (n *Node) AddOutput(dtype dtypes.DType, shape PartialShape, names ...string) *Node {
	nameSet := types.MakeSet[string]()
	for _, name := range names {
		nameSet.Insert(name)
	}
	n.Outputs = append(n.Outputs, Output{DType: dtype, Shape: shape, Names: nameSet})
	return n
}

// AddControlDep adds an ordering-only dependency on dep.
func (n *Node) AddControlDep(dep *Node) *Node {
	n.ControlDeps = append(n.ControlDeps, dep)
	return n
}

// AddAttr appends a named attribute. Names are expected to be unique per
// node; duplicates are a construction error.
func (n *Node) AddAttr(name string, value AttrValue) *Node {
	for _, attr := range n.Attrs {
		if attr.Name == name {
			exceptions.Panicf("node %q: duplicate attribute %q", n.FriendlyName, name)
		}
	}
	n.Attrs = append(n.Attrs, Attribute{Name: name, Value: value})
	return n
}

// In returns the i-th input port.
func (n *Node) In(i int) *Input {
	return &n.Inputs[i]
}

// Out returns the i-th output port.
func (n *Node) Out(i int) *Output {
	return &n.Outputs[i]
}

// VisitAttributes calls visit for every attribute in declaration order.
// This is the visitor contract the attribute equality framework reads
// through.
func (n *Node) VisitAttributes(visit func(name string, value AttrValue)) {
	for _, attr := range n.Attrs {
		visit(attr.Name, attr.Value)
	}
}

// String formats the node as `name(Type/Version)`.
func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.FriendlyName, n.Type)
}
