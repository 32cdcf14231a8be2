package comparator

// Shared graph builders for the comparator tests. Each builder constructs a
// fresh, independent object graph so two calls never share nodes, mimicking
// two independent reconstructions of the same model.

import (
	"github.com/SmirnovGrigory/openvino/ir"
	"github.com/gomlx/gopjrt/dtypes"
)

func constNode(name string, value float32) *ir.Node {
	n := ir.NewNode(ir.OpType("Constant", 0), name).
		AddOutput(dtypes.Float32, ir.MakeShape())
	n.Const = &ir.ConstValue{DType: dtypes.Float32, Data: []float32{value}}
	return n
}

func binaryNode(opName, name string, a, b *ir.Node) *ir.Node {
	return ir.NewNode(ir.OpType(opName, 1), name).
		AddInput(a, 0).
		AddInput(b, 0).
		AddOutput(a.Out(0).DType, a.Out(0).Shape)
}

func unaryNode(opName, name string, in *ir.Node) *ir.Node {
	return ir.NewNode(ir.OpType(opName, 1), name).
		AddInput(in, 0).
		AddOutput(in.Out(0).DType, in.Out(0).Shape)
}

// buildSimpleGraph is Parameter -> Add(const) -> Softmax -> Result.
func buildSimpleGraph(constVal float32) *ir.Graph {
	g := ir.NewGraph("simple")
	x := g.Parameter("x", dtypes.Float32, ir.MakeShape(2, 3))
	c := constNode("c", constVal)
	sum := binaryNode("Add", "sum", x, c)
	softmax := unaryNode("Softmax", "softmax", sum).
		AddAttr("axis", ir.IntAttr(1))
	g.Result("out", softmax, 0)
	return g
}

// tiConfig controls construction of the TensorIterator test graph.
type tiConfig struct {
	seqLen       int64
	iterations   int64
	stateDType   dtypes.DType // element type of the loop-carried body result
	reorderDescs bool
}

func defaultTIConfig() tiConfig {
	return tiConfig{seqLen: 10, iterations: 10, stateDType: dtypes.Float32}
}

// buildTensorIterator builds a graph with a TensorIterator slicing input X
// of shape [1, seqLen, 4] along axis 1 (part size 1), carrying a merged
// state value, concatenating the per-iteration sums into output 0 and
// exposing the last state as output 1.
func buildTensorIterator(cfg tiConfig) *ir.Graph {
	body := ir.NewGraph("ti_body")
	xi := body.Parameter("Xi", dtypes.Float32, ir.MakeShape(1, 1, 4))
	hPrev := body.Parameter("Hprev", dtypes.Float32, ir.MakeShape(1, 1, 4))
	sum := binaryNode("Add", "sum", xi, hPrev)
	state := ir.NewNode(ir.OpType("Tanh", 1), "state").
		AddInput(sum, 0).
		AddOutput(cfg.stateDType, ir.MakeShape(1, 1, 4))
	body.Result("sum_res", sum, 0)
	body.Result("state_res", state, 0)

	g := ir.NewGraph("main")
	x := g.Parameter("X", dtypes.Float32, ir.MakeShape(1, cfg.seqLen, 4))
	hInit := g.Parameter("H", dtypes.Float32, ir.MakeShape(1, 1, 4))

	ti := ir.NewNode(ir.OpType("TensorIterator", 0), "ti").
		AddInput(x, 0).
		AddInput(hInit, 0).
		AddOutput(dtypes.Float32, ir.MakeShape(1, cfg.iterations, 4)).
		AddOutput(dtypes.Float32, ir.MakeShape(1, 1, 4))

	inputDescs := []ir.InputDescription{
		ir.SliceInputDesc{InputIndex: 0, BodyParameterIndex: 0, Start: 0, Stride: 1, PartSize: 1, End: -1, Axis: 1},
		ir.MergedInputDesc{InputIndex: 1, BodyParameterIndex: 1, BodyValueIndex: 1},
	}
	outputDescs := []ir.OutputDescription{
		ir.ConcatOutputDesc{OutputIndex: 0, BodyValueIndex: 0, Start: 0, Stride: 1, PartSize: 1, End: -1, Axis: 1},
		ir.BodyOutputDesc{OutputIndex: 1, BodyValueIndex: 0, Iteration: -1},
	}
	if cfg.reorderDescs {
		inputDescs[0], inputDescs[1] = inputDescs[1], inputDescs[0]
		outputDescs[0], outputDescs[1] = outputDescs[1], outputDescs[0]
	}
	ti.SubGraph = &ir.SubGraphInfo{
		Kind:          ir.KindTensorIterator,
		NumIterations: cfg.iterations,
		Bodies:        []*ir.Body{{Graph: body, InputDescs: inputDescs, OutputDescs: outputDescs}},
	}
	ti.AddAttr("body", ir.GraphAttr{Graph: body})

	g.Result("concat_out", ti, 0)
	g.Result("state_out", ti, 1)
	return g
}

// buildLoop builds a graph with a Loop carrying one merged value, a
// current-iteration body parameter and a condition body result of the given
// element type.
func buildLoop(iterations int64, condDType dtypes.DType) *ir.Graph {
	body := ir.NewGraph("loop_body")
	iter := body.Parameter("i", dtypes.Int64, ir.MakeShape())
	v := body.Parameter("v", dtypes.Float32, ir.MakeShape(2, 2))
	limit := constNode("limit", 5)
	cond := ir.NewNode(ir.OpType("Less", 1), "cond").
		AddInput(iter, 0).
		AddInput(limit, 0).
		AddOutput(condDType, ir.MakeShape())
	vNext := unaryNode("Relu", "v_next", v)
	body.Result("cond_res", cond, 0)
	body.Result("v_res", vNext, 0)

	g := ir.NewGraph("main")
	trip := constNode("trip", float32(iterations))
	execCond := constNode("exec_cond", 1)
	init := g.Parameter("init", dtypes.Float32, ir.MakeShape(2, 2))

	loop := ir.NewNode(ir.OpType("Loop", 5), "loop").
		AddInput(trip, 0).
		AddInput(execCond, 0).
		AddInput(init, 0).
		AddOutput(dtypes.Float32, ir.MakeShape(2, 2))

	loop.SubGraph = &ir.SubGraphInfo{
		Kind:          ir.KindLoop,
		NumIterations: iterations,
		Bodies: []*ir.Body{{
			Graph: body,
			InputDescs: []ir.InputDescription{
				ir.MergedInputDesc{InputIndex: 2, BodyParameterIndex: 1, BodyValueIndex: 1},
			},
			OutputDescs: []ir.OutputDescription{
				ir.BodyOutputDesc{OutputIndex: 0, BodyValueIndex: 1, Iteration: -1},
			},
		}},
		SpecialPorts: &ir.SpecialBodyPorts{CurrentIterationInput: 0, BodyConditionOutput: 0},
	}
	loop.AddAttr("body", ir.GraphAttr{Graph: body})

	g.Result("out", loop, 0)
	return g
}

// buildIf builds a graph with an If whose then-body computes Abs and whose
// else-body computes Neg. swapBodies exchanges the two bodies (and the
// nested-graph attributes), keeping everything else identical.
func buildIf(swapBodies bool) *ir.Graph {
	makeBody := func(name, opName string) *ir.Graph {
		b := ir.NewGraph(name)
		p := b.Parameter("a", dtypes.Float32, ir.MakeShape(2))
		b.Result("res", unaryNode(opName, "op", p), 0)
		return b
	}
	thenBody := makeBody("then_body", "Abs")
	elseBody := makeBody("else_body", "Neg")

	g := ir.NewGraph("main")
	cond := g.Parameter("cond", dtypes.Bool, ir.MakeShape())
	a := g.Parameter("a", dtypes.Float32, ir.MakeShape(2))

	ifNode := ir.NewNode(ir.OpType("If", 8), "if").
		AddInput(cond, 0).
		AddInput(a, 0).
		AddOutput(dtypes.Float32, ir.MakeShape(2))

	descs := func() ([]ir.InputDescription, []ir.OutputDescription) {
		return []ir.InputDescription{
				ir.InvariantInputDesc{InputIndex: 1, BodyParameterIndex: 0},
			}, []ir.OutputDescription{
				ir.BodyOutputDesc{OutputIndex: 0, BodyValueIndex: 0, Iteration: -1},
			}
	}
	thenIn, thenOut := descs()
	elseIn, elseOut := descs()
	bodies := []*ir.Body{
		{Graph: thenBody, InputDescs: thenIn, OutputDescs: thenOut},
		{Graph: elseBody, InputDescs: elseIn, OutputDescs: elseOut},
	}
	first, second := thenBody, elseBody
	if swapBodies {
		bodies[0], bodies[1] = bodies[1], bodies[0]
		first, second = elseBody, thenBody
	}
	ifNode.SubGraph = &ir.SubGraphInfo{
		Kind:          ir.KindIf,
		NumIterations: ir.NoIterations,
		Bodies:        bodies,
	}
	ifNode.
		AddAttr("then_body", ir.GraphAttr{Graph: first}).
		AddAttr("else_body", ir.GraphAttr{Graph: second})

	g.Result("out", ifNode, 0)
	return g
}

// buildSinkGraph builds a graph with one Assign sink per variable identity
// and a single result.
func buildSinkGraph(varIDs ...string) *ir.Graph {
	g := ir.NewGraph("stateful")
	x := g.Parameter("x", dtypes.Float32, ir.MakeShape(3))
	g.Result("out", unaryNode("Relu", "relu", x), 0)
	for _, id := range varIDs {
		assign := ir.NewNode(ir.OpType("Assign", 3), "assign_"+id).
			AddInput(x, 0).
			AddOutput(dtypes.Float32, ir.MakeShape(3))
		assign.Variable = id
		g.Sink(assign)
	}
	return g
}

// buildAliasedResults builds a graph whose two result tensors carry multiple
// names. The result friendly names are chosen so that sorting by them would
// pair an Add with a Mul; only the producer-name tie-break pairs correctly.
func buildAliasedResults(addResName, mulResName string) *ir.Graph {
	g := ir.NewGraph("aliased")
	x := g.Parameter("x", dtypes.Float32, ir.MakeShape(2))
	add := ir.NewNode(ir.OpType("Add", 1), "prodA").
		AddInput(x, 0).
		AddInput(x, 0).
		AddOutput(dtypes.Float32, ir.MakeShape(2), "t_add", "alias_add")
	mul := ir.NewNode(ir.OpType("Mul", 1), "prodB").
		AddInput(x, 0).
		AddInput(x, 0).
		AddOutput(dtypes.Float32, ir.MakeShape(2), "t_mul", "alias_mul")
	g.Result(addResName, add, 0)
	g.Result(mulResName, mul, 0)
	return g
}
