package ir

import (
	"github.com/pkg/errors"
)

// SubGraphKind distinguishes the control-flow operator variants.
type SubGraphKind int

const (
	// KindIf owns two bodies (then/else) executed at most once.
	KindIf SubGraphKind = iota
	// KindLoop owns one body executed until its condition output is false.
	KindLoop
	// KindTensorIterator owns one body executed a fixed number of times.
	KindTensorIterator
)

// String returns the operator-variant name.
func (k SubGraphKind) String() string {
	switch k {
	case KindIf:
		return "If"
	case KindLoop:
		return "Loop"
	case KindTensorIterator:
		return "TensorIterator"
	default:
		return "invalid"
	}
}

// NoIterations is the iteration-count sentinel for variants with no (or an
// unknown) iteration concept.
const NoIterations int64 = -1

// PortNotProvided marks an absent special body port.
const PortNotProvided = -1

// InputDescription binds an outer input port of a subgraph operator to a
// parameter of its body, with a binding-kind-specific iteration policy.
// Indexes are positions into the operator's input list and the body's
// parameter list - the descriptor never aliases the nodes themselves.
type InputDescription interface {
	// InIndex is the operator input port the description binds.
	InIndex() int
	// ParamIndex is the body parameter the description binds.
	ParamIndex() int
	inputDescription()
}

// SliceInputDesc feeds the body parameter a per-iteration slice of the outer
// input along Axis.
type SliceInputDesc struct {
	InputIndex         int
	BodyParameterIndex int
	Start, Stride      int64
	PartSize, End      int64
	Axis               int64
}

// MergedInputDesc feeds the body parameter the previous iteration's value of
// the body result at BodyValueIndex: a loop-carried value (back-edge).
type MergedInputDesc struct {
	InputIndex         int
	BodyParameterIndex int
	BodyValueIndex     int
}

// InvariantInputDesc feeds the body parameter the outer input unchanged
// every iteration.
type InvariantInputDesc struct {
	InputIndex         int
	BodyParameterIndex int
}

func (d SliceInputDesc) InIndex() int { return d.InputIndex }
func (d SliceInputDesc) ParamIndex() int { return d.BodyParameterIndex }
func (d SliceInputDesc) inputDescription() {}

func (d MergedInputDesc) InIndex() int { return d.InputIndex }
func (d MergedInputDesc) ParamIndex() int { return d.BodyParameterIndex }
func (d MergedInputDesc) inputDescription() {}

func (d InvariantInputDesc) InIndex() int { return d.InputIndex }
func (d InvariantInputDesc) ParamIndex() int { return d.BodyParameterIndex }
func (d InvariantInputDesc) inputDescription() {}

// OutputDescription binds an outer output port of a subgraph operator to a
// result of its body.
type OutputDescription interface {
	// OutIndex is the operator output port the description binds.
	OutIndex() int
	// ValueIndex is the body result the description binds.
	ValueIndex() int
	outputDescription()
}

// ConcatOutputDesc collects the body result of every iteration into the
// outer output, concatenated along Axis.
type ConcatOutputDesc struct {
	OutputIndex    int
	BodyValueIndex int
	Start, Stride  int64
	PartSize, End  int64
	Axis           int64
}

// BodyOutputDesc takes the body result's value at one designated iteration
// (-1 meaning the last).
type BodyOutputDesc struct {
	OutputIndex    int
	BodyValueIndex int
	Iteration      int64
}

func (d ConcatOutputDesc) OutIndex() int { return d.OutputIndex }
func (d ConcatOutputDesc) ValueIndex() int { return d.BodyValueIndex }
func (d ConcatOutputDesc) outputDescription() {}

func (d BodyOutputDesc) OutIndex() int { return d.OutputIndex }
func (d BodyOutputDesc) ValueIndex() int { return d.BodyValueIndex }
func (d BodyOutputDesc) outputDescription() {}

// SpecialBodyPorts are the Loop-only body ports: the body parameter that
// receives the current iteration number (PortNotProvided when absent) and
// the body result that carries the loop continuation condition.
type SpecialBodyPorts struct {
	CurrentIterationInput int
	BodyConditionOutput   int
}

// Body is one nested graph of a subgraph operator together with the
// descriptions binding the operator's ports to the body's parameters and
// results.
type Body struct {
	Graph       *Graph
	InputDescs  []InputDescription
	OutputDescs []OutputDescription
}

// BackEdge is the derived (parameter, result) pairing for a Merged input:
// the loop-carried dependency that must agree on type and shape scheme
// across iterations.
type BackEdge struct {
	Parameter *Node
	Result    *Node
}

// BackEdges derives the back-edges from the body's Merged input
// descriptions. It errors on out-of-range parameter/result indexes.
func (b *Body) BackEdges() ([]BackEdge, error) {
	var edges []BackEdge
	for _, desc := range b.InputDescs {
		merged, ok := desc.(MergedInputDesc)
		if !ok {
			continue
		}
		if merged.BodyParameterIndex < 0 || merged.BodyParameterIndex >= len(b.Graph.Parameters) {
			return nil, errors.Errorf("merged input: body parameter index %d out of range (body has %d parameters)",
				merged.BodyParameterIndex, len(b.Graph.Parameters))
		}
		if merged.BodyValueIndex < 0 || merged.BodyValueIndex >= len(b.Graph.Results) {
			return nil, errors.Errorf("merged input: body value index %d out of range (body has %d results)",
				merged.BodyValueIndex, len(b.Graph.Results))
		}
		edges = append(edges, BackEdge{
			Parameter: b.Graph.Parameters[merged.BodyParameterIndex],
			Result:    b.Graph.Results[merged.BodyValueIndex],
		})
	}
	return edges, nil
}

// SubGraphInfo is the control-flow payload of a subgraph operator node.
type SubGraphInfo struct {
	Kind   SubGraphKind
	Bodies []*Body

	// NumIterations is the declared or derived iteration count for
	// Loop/TensorIterator, NoIterations when unknown. If has no iteration
	// concept; IterationCount reports NoIterations for it regardless.
	NumIterations int64

	// SpecialPorts is set for Loop only.
	SpecialPorts *SpecialBodyPorts
}

// IterationCount returns the variant-specific iteration count, or
// NoIterations for variants without one.
func (sg *SubGraphInfo) IterationCount() int64 {
	switch sg.Kind {
	case KindLoop, KindTensorIterator:
		return sg.NumIterations
	default:
		return NoIterations
	}
}

// validate checks the structural invariants of the subgraph payload:
// body count per variant, descriptor indexes in range of the owning node's
// ports and the body's parameter/result lists, and Loop special ports.
func (sg *SubGraphInfo) validate(owner *Node) error {
	switch sg.Kind {
	case KindIf:
		if len(sg.Bodies) != 2 {
			return errors.Errorf("If %q must have 2 bodies, has %d", owner.FriendlyName, len(sg.Bodies))
		}
	case KindLoop, KindTensorIterator:
		if len(sg.Bodies) != 1 {
			return errors.Errorf("%s %q must have 1 body, has %d", sg.Kind, owner.FriendlyName, len(sg.Bodies))
		}
	default:
		return errors.Errorf("node %q: invalid subgraph kind %d", owner.FriendlyName, sg.Kind)
	}

	for bodyIdx, body := range sg.Bodies {
		if body.Graph == nil {
			return errors.Errorf("node %q body %d: nil graph", owner.FriendlyName, bodyIdx)
		}
		for _, desc := range body.InputDescs {
			if desc.InIndex() < 0 || desc.InIndex() >= len(owner.Inputs) {
				return errors.Errorf("node %q body %d: input description index %d out of range (%d inputs)",
					owner.FriendlyName, bodyIdx, desc.InIndex(), len(owner.Inputs))
			}
			if desc.ParamIndex() < 0 || desc.ParamIndex() >= len(body.Graph.Parameters) {
				return errors.Errorf("node %q body %d: body parameter index %d out of range (%d parameters)",
					owner.FriendlyName, bodyIdx, desc.ParamIndex(), len(body.Graph.Parameters))
			}
			if merged, ok := desc.(MergedInputDesc); ok {
				if merged.BodyValueIndex < 0 || merged.BodyValueIndex >= len(body.Graph.Results) {
					return errors.Errorf("node %q body %d: merged input body value index %d out of range (%d results)",
						owner.FriendlyName, bodyIdx, merged.BodyValueIndex, len(body.Graph.Results))
				}
			}
		}
		for _, desc := range body.OutputDescs {
			if desc.OutIndex() < 0 || desc.OutIndex() >= len(owner.Outputs) {
				return errors.Errorf("node %q body %d: output description index %d out of range (%d outputs)",
					owner.FriendlyName, bodyIdx, desc.OutIndex(), len(owner.Outputs))
			}
			if desc.ValueIndex() < 0 || desc.ValueIndex() >= len(body.Graph.Results) {
				return errors.Errorf("node %q body %d: body value index %d out of range (%d results)",
					owner.FriendlyName, bodyIdx, desc.ValueIndex(), len(body.Graph.Results))
			}
		}
		if err := body.Graph.Validate(); err != nil {
			return errors.WithMessagef(err, "node %q body %d", owner.FriendlyName, bodyIdx)
		}
	}

	if sg.Kind == KindLoop {
		if sg.SpecialPorts == nil {
			return errors.Errorf("Loop %q has no special body ports", owner.FriendlyName)
		}
		body := sg.Bodies[0]
		if in := sg.SpecialPorts.CurrentIterationInput; in != PortNotProvided {
			if in < 0 || in >= len(body.Graph.Parameters) {
				return errors.Errorf("Loop %q: current iteration input %d out of range (%d parameters)",
					owner.FriendlyName, in, len(body.Graph.Parameters))
			}
		}
		if out := sg.SpecialPorts.BodyConditionOutput; out < 0 || out >= len(body.Graph.Results) {
			return errors.Errorf("Loop %q: body condition output %d out of range (%d results)",
				owner.FriendlyName, out, len(body.Graph.Results))
		}
	}
	return nil
}
