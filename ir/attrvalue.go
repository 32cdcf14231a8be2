package ir

// AttrValue is one attribute value attached to a Node. It is a closed set of
// kinds: the comparison engine type-switches over them, and anything it does
// not model is carried as UnsupportedAttr so that it surfaces as an explicit
// diagnostic instead of being silently dropped.
type AttrValue interface {
	attrValue()
}

// IntAttr holds an integer scalar attribute.
type IntAttr int64

// FloatAttr holds a floating point scalar attribute.
type FloatAttr float64

// BoolAttr holds a boolean scalar attribute.
type BoolAttr bool

// StringAttr holds a string scalar attribute.
type StringAttr string

// IntsAttr holds an ordered list of integers (e.g. axes, strides).
type IntsAttr []int64

// ShapeAttr holds a partial shape attribute.
type ShapeAttr PartialShape

// DimensionAttr holds a single (possibly dynamic) dimension attribute.
type DimensionAttr Dimension

// BufferAttr holds an opaque fixed-size binary blob, compared by exact byte
// equality.
type BufferAttr []byte

// VariableAttr references another node's variable/state identity by id.
type VariableAttr string

// GraphAttr references a nested graph (a control-flow operator body).
type GraphAttr struct {
	Graph *Graph
}

// InputDescsAttr holds a subgraph operator's input description list.
type InputDescsAttr []InputDescription

// OutputDescsAttr holds a subgraph operator's output description list.
type OutputDescsAttr []OutputDescription

// BodyPortsAttr mirrors a Loop's special body ports. It carries no more
// information than the port indexes, which the subgraph contract verifier
// checks, so the attribute framework skips it.
type BodyPortsAttr SpecialBodyPorts

// FrameworkAttrs is a generic string-to-string map of uninterpreted metadata
// imported from an external framework.
type FrameworkAttrs map[string]string

// UnsupportedAttr stands in for an attribute kind the model cannot express.
// TypeName is the declared type of the original attribute.
type UnsupportedAttr struct {
	TypeName string
}

func (IntAttr) attrValue()         {}
func (FloatAttr) attrValue()       {}
func (BoolAttr) attrValue()        {}
func (StringAttr) attrValue()      {}
func (IntsAttr) attrValue()        {}
func (ShapeAttr) attrValue()       {}
func (DimensionAttr) attrValue()   {}
func (BufferAttr) attrValue()      {}
func (VariableAttr) attrValue()    {}
func (GraphAttr) attrValue()       {}
func (InputDescsAttr) attrValue()  {}
func (OutputDescsAttr) attrValue() {}
func (BodyPortsAttr) attrValue()   {}
func (FrameworkAttrs) attrValue()  {}
func (UnsupportedAttr) attrValue() {}
