package comparator

import (
	"github.com/SmirnovGrigory/openvino/ir"
	"github.com/pkg/errors"
)

// The subgraph contract verifier checks a pair of control-flow operators
// that already passed the generic type check: iteration counts, the
// consistency of every declared input/output description with its bound body
// parameter/result and the iteration count, and the unordered equality of
// the two sides' description sets and back-edges. Descriptor sets are
// matched as multisets: harmless reordering of equivalent descriptions
// across reconstructions passes, any structural difference does not.

// inputBinding is the (description, bound body parameter, bound outer input)
// triple extracted for one declared input.
type inputBinding struct {
	desc  ir.InputDescription
	param *ir.Node
	input *ir.Input
}

// outputBinding is the (description, bound body result, bound outer output)
// triple extracted for one declared output.
type outputBinding struct {
	desc   ir.OutputDescription
	result *ir.Node
	output *ir.Output
}

func extractInputBindings(owner *ir.Node, body *ir.Body) ([]inputBinding, error) {
	bindings := make([]inputBinding, 0, len(body.InputDescs))
	for _, desc := range body.InputDescs {
		if desc.ParamIndex() < 0 || desc.ParamIndex() >= len(body.Graph.Parameters) {
			return nil, errors.Errorf("node %s: body parameter index %d out of range (%d parameters)",
				owner.FriendlyName, desc.ParamIndex(), len(body.Graph.Parameters))
		}
		if desc.InIndex() < 0 || desc.InIndex() >= len(owner.Inputs) {
			return nil, errors.Errorf("node %s: input index %d out of range (%d inputs)",
				owner.FriendlyName, desc.InIndex(), len(owner.Inputs))
		}
		bindings = append(bindings, inputBinding{
			desc:  desc,
			param: body.Graph.Parameters[desc.ParamIndex()],
			input: owner.In(desc.InIndex()),
		})
	}
	return bindings, nil
}

func extractOutputBindings(owner *ir.Node, body *ir.Body) ([]outputBinding, error) {
	bindings := make([]outputBinding, 0, len(body.OutputDescs))
	for _, desc := range body.OutputDescs {
		if desc.ValueIndex() < 0 || desc.ValueIndex() >= len(body.Graph.Results) {
			return nil, errors.Errorf("node %s: body value index %d out of range (%d results)",
				owner.FriendlyName, desc.ValueIndex(), len(body.Graph.Results))
		}
		if desc.OutIndex() < 0 || desc.OutIndex() >= len(owner.Outputs) {
			return nil, errors.Errorf("node %s: output index %d out of range (%d outputs)",
				owner.FriendlyName, desc.OutIndex(), len(owner.Outputs))
		}
		bindings = append(bindings, outputBinding{
			desc:   desc,
			result: body.Graph.Results[desc.ValueIndex()],
			output: owner.Out(desc.OutIndex()),
		})
	}
	return bindings, nil
}

func equalTypeAndShape(a, b *ir.Output) bool {
	return a.DType == b.DType && a.Shape.SameScheme(b.Shape)
}

// matches verifies the binding against the iteration count: the Slice axis
// arithmetic (parameter's slice-axis extent is the part size, the outer
// input's is part size times iterations, other axes equal), or exact
// type/shape-scheme agreement for Merged/Invariant. skipArith disables the
// iteration arithmetic for variants without an iteration concept.
func (b inputBinding) matches(numIterations int64, skipArith bool) (bool, error) {
	switch desc := b.desc.(type) {
	case ir.SliceInputDesc:
		paramOut := b.param.Out(0)
		inputOut := b.input.Source.Out(b.input.Port)
		if paramOut.DType != inputOut.DType {
			return false, nil
		}
		if skipArith {
			return true, nil
		}
		paramShape, inputShape := paramOut.Shape, inputOut.Shape
		if paramShape.IsDynamic() && inputShape.IsDynamic() {
			return true, nil
		}
		if !paramShape.IsStatic() || !inputShape.IsStatic() {
			return false, nil
		}
		if paramShape.Rank() != inputShape.Rank() {
			return false, nil
		}
		axis := int(desc.Axis)
		if axis < 0 || axis >= paramShape.Rank() {
			return false, errors.Errorf("slice input: axis %d out of range for shape %s", desc.Axis, paramShape)
		}
		if int64(paramShape.Dim(axis)) != desc.PartSize {
			return false, nil
		}
		for i := 0; i < paramShape.Rank(); i++ {
			expected := int64(paramShape.Dim(i))
			if i == axis {
				expected = desc.PartSize * numIterations
			}
			if int64(inputShape.Dim(i)) != expected {
				return false, nil
			}
		}
		return true, nil
	case ir.MergedInputDesc, ir.InvariantInputDesc:
		return equalTypeAndShape(b.param.Out(0), b.input.Source.Out(b.input.Port)), nil
	default:
		return false, errors.Errorf("type is not supported: [%T]", b.desc)
	}
}

// matches verifies the binding against the iteration count: the Concat axis
// arithmetic (body result's concat-axis extent times iterations equals the
// outer output's, other axes equal), or exact type/shape-scheme agreement
// for Body outputs.
func (b outputBinding) matches(numIterations int64, skipArith bool) (bool, error) {
	switch desc := b.desc.(type) {
	case ir.ConcatOutputDesc:
		resultOut := b.result.Out(0)
		if resultOut.DType != b.output.DType {
			return false, nil
		}
		if skipArith {
			return true, nil
		}
		resultShape, outputShape := resultOut.Shape, b.output.Shape
		if resultShape.IsDynamic() && outputShape.IsDynamic() {
			return true, nil
		}
		if !resultShape.IsStatic() || !outputShape.IsStatic() {
			return false, nil
		}
		if resultShape.Rank() != outputShape.Rank() {
			return false, nil
		}
		axis := int(desc.Axis)
		if axis < 0 || axis >= resultShape.Rank() {
			return false, errors.Errorf("concat output: axis %d out of range for shape %s", desc.Axis, resultShape)
		}
		for i := 0; i < resultShape.Rank(); i++ {
			multiplier := int64(1)
			if i == axis {
				multiplier = numIterations
			}
			if int64(resultShape.Dim(i))*multiplier != int64(outputShape.Dim(i)) {
				return false, nil
			}
		}
		return true, nil
	case ir.BodyOutputDesc:
		return equalTypeAndShape(b.result.Out(0), b.output), nil
	default:
		return false, errors.Errorf("type is not supported: [%T]", b.desc)
	}
}

// equalInputDescPolicies compares variant tag and iteration-policy fields of
// two input descriptions, ignoring the port indexes (those are positional
// and may legitimately differ under reordering).
func equalInputDescPolicies(l, r ir.InputDescription) bool {
	switch ld := l.(type) {
	case ir.SliceInputDesc:
		rd, ok := r.(ir.SliceInputDesc)
		return ok && ld.Start == rd.Start && ld.Stride == rd.Stride &&
			ld.PartSize == rd.PartSize && ld.End == rd.End && ld.Axis == rd.Axis
	case ir.MergedInputDesc:
		_, ok := r.(ir.MergedInputDesc)
		return ok
	case ir.InvariantInputDesc:
		_, ok := r.(ir.InvariantInputDesc)
		return ok
	default:
		return false
	}
}

// equalOutputDescPolicies is the output-side analogue of
// equalInputDescPolicies.
func equalOutputDescPolicies(l, r ir.OutputDescription) bool {
	switch ld := l.(type) {
	case ir.ConcatOutputDesc:
		rd, ok := r.(ir.ConcatOutputDesc)
		return ok && ld.Start == rd.Start && ld.Stride == rd.Stride &&
			ld.PartSize == rd.PartSize && ld.End == rd.End && ld.Axis == rd.Axis
	case ir.BodyOutputDesc:
		rd, ok := r.(ir.BodyOutputDesc)
		return ok && ld.Iteration == rd.Iteration
	default:
		return false
	}
}

func equalInputBindings(a, b inputBinding) bool {
	return equalInputDescPolicies(a.desc, b.desc) &&
		equalTypeAndShape(a.param.Out(0), b.param.Out(0))
}

func equalOutputBindings(a, b outputBinding) bool {
	return equalOutputDescPolicies(a.desc, b.desc) &&
		equalTypeAndShape(a.result.Out(0), b.result.Out(0))
}

func validBackEdge(edge ir.BackEdge) bool {
	return equalTypeAndShape(edge.Result.Out(0), edge.Parameter.Out(0))
}

func equalBackEdges(a, b ir.BackEdge) bool {
	return equalTypeAndShape(a.Parameter.Out(0), b.Parameter.Out(0)) &&
		equalTypeAndShape(a.Result.Out(0), b.Result.Out(0))
}

// isPermutation reports whether b is a reordering of a under eq.
// Quadratic, but descriptor lists are small.
func isPermutation[T any](a, b []T, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	matched := make([]bool, len(b))
	for _, av := range a {
		found := false
		for j := range b {
			if matched[j] || !eq(av, b[j]) {
				continue
			}
			matched[j] = true
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

// compareSubGraphs verifies the nested-subgraph contract of a paired
// control-flow operator. The first failing step short-circuits the rest.
func (c *comparator) compareSubGraphs(n1, n2 *ir.Node) Result {
	sg1, sg2 := n1.SubGraph, n2.SubGraph

	if sg1.Kind != sg2.Kind {
		return Errorf("different subgraph operator variants: %s and %s", sg1.Kind, sg2.Kind)
	}
	iterations1, iterations2 := sg1.IterationCount(), sg2.IterationCount()
	if iterations1 != iterations2 {
		return Errorf("different number of iterations: %d and %d", iterations1, iterations2)
	}
	if len(sg1.Bodies) != len(sg2.Bodies) {
		return Errorf("different number of bodies: %d and %d", len(sg1.Bodies), len(sg2.Bodies))
	}

	skipArith := iterations1 == ir.NoIterations && sg1.Kind == ir.KindIf

	for bodyIdx := range sg1.Bodies {
		body1, body2 := sg1.Bodies[bodyIdx], sg2.Bodies[bodyIdx]

		if result := compareBodyInputs(n1, body1, n2, body2, iterations1, skipArith); !result.Valid {
			return result
		}
		if result := compareBodyOutputs(n1, body1, n2, body2, iterations1, skipArith); !result.Valid {
			return result
		}
		if result := compareBodyBackEdges(body1, body2); !result.Valid {
			return result
		}
	}

	if sg1.Kind == ir.KindLoop {
		equal, err := equalBodyPorts(sg1, sg2)
		if err != nil {
			return Errorf("%v", err)
		}
		if !equal {
			return Errorf("different Special Body Ports")
		}
	}
	return Ok()
}

func compareBodyInputs(n1 *ir.Node, body1 *ir.Body, n2 *ir.Node, body2 *ir.Body, numIterations int64, skipArith bool) Result {
	bindings1, err := extractInputBindings(n1, body1)
	if err != nil {
		return Errorf("%v", err)
	}
	bindings2, err := extractInputBindings(n2, body2)
	if err != nil {
		return Errorf("%v", err)
	}

	if len(bindings1) == 0 || len(bindings2) == 0 {
		return Errorf("no input in subgraph")
	}

	for _, bindings := range [][]inputBinding{bindings1, bindings2} {
		for _, binding := range bindings {
			ok, err := binding.matches(numIterations, skipArith)
			if err != nil {
				return Errorf("%v", err)
			}
			if !ok {
				return Errorf("inputs and parameters mismatch")
			}
		}
	}

	if len(bindings1) != len(bindings2) || !isPermutation(bindings1, bindings2, equalInputBindings) {
		return Errorf("different SubGraph InputDescription")
	}
	return Ok()
}

func compareBodyOutputs(n1 *ir.Node, body1 *ir.Body, n2 *ir.Node, body2 *ir.Body, numIterations int64, skipArith bool) Result {
	bindings1, err := extractOutputBindings(n1, body1)
	if err != nil {
		return Errorf("%v", err)
	}
	bindings2, err := extractOutputBindings(n2, body2)
	if err != nil {
		return Errorf("%v", err)
	}

	if len(bindings1) == 0 || len(bindings2) == 0 {
		return Errorf("no output in subgraph")
	}

	for _, bindings := range [][]outputBinding{bindings1, bindings2} {
		for _, binding := range bindings {
			ok, err := binding.matches(numIterations, skipArith)
			if err != nil {
				return Errorf("%v", err)
			}
			if !ok {
				return Errorf("outputs and results mismatch")
			}
		}
	}

	if len(bindings1) != len(bindings2) || !isPermutation(bindings1, bindings2, equalOutputBindings) {
		return Errorf("different SubGraph OutputDescription")
	}
	return Ok()
}

func compareBodyBackEdges(body1, body2 *ir.Body) Result {
	edges1, err := body1.BackEdges()
	if err != nil {
		return Errorf("%v", err)
	}
	edges2, err := body2.BackEdges()
	if err != nil {
		return Errorf("%v", err)
	}

	for _, edges := range [][]ir.BackEdge{edges1, edges2} {
		for _, edge := range edges {
			if !validBackEdge(edge) {
				return Errorf("back edges mismatch")
			}
		}
	}

	if len(edges1) != len(edges2) || !isPermutation(edges1, edges2, equalBackEdges) {
		return Errorf("different SubGraph BackEdges")
	}
	return Ok()
}

// equalBodyPorts checks the Loop-only agreement of special body ports: the
// two bound current-iteration parameters (when either side declares one)
// and the two condition-output results must match by type and shape scheme.
func equalBodyPorts(sg1, sg2 *ir.SubGraphInfo) (bool, error) {
	ports1, ports2 := sg1.SpecialPorts, sg2.SpecialPorts
	if ports1 == nil || ports2 == nil {
		return false, nil
	}
	body1, body2 := sg1.Bodies[0].Graph, sg2.Bodies[0].Graph

	inputProvided := ports1.CurrentIterationInput != ir.PortNotProvided ||
		ports2.CurrentIterationInput != ir.PortNotProvided
	if inputProvided {
		if ports1.CurrentIterationInput < 0 || ports1.CurrentIterationInput >= len(body1.Parameters) {
			return false, errors.Errorf("current iteration input %d out of range (%d parameters)",
				ports1.CurrentIterationInput, len(body1.Parameters))
		}
		if ports2.CurrentIterationInput < 0 || ports2.CurrentIterationInput >= len(body2.Parameters) {
			return false, errors.Errorf("current iteration input %d out of range (%d parameters)",
				ports2.CurrentIterationInput, len(body2.Parameters))
		}
		param1 := body1.Parameters[ports1.CurrentIterationInput]
		param2 := body2.Parameters[ports2.CurrentIterationInput]
		if !equalTypeAndShape(param1.Out(0), param2.Out(0)) {
			return false, nil
		}
	}

	if ports1.BodyConditionOutput < 0 || ports1.BodyConditionOutput >= len(body1.Results) {
		return false, errors.Errorf("body condition output %d out of range (%d results)",
			ports1.BodyConditionOutput, len(body1.Results))
	}
	if ports2.BodyConditionOutput < 0 || ports2.BodyConditionOutput >= len(body2.Results) {
		return false, errors.Errorf("body condition output %d out of range (%d results)",
			ports2.BodyConditionOutput, len(body2.Results))
	}
	result1 := body1.Results[ports1.BodyConditionOutput]
	result2 := body2.Results[ports2.BodyConditionOutput]
	return equalTypeAndShape(result1.Out(0), result2.Out(0)), nil
}
