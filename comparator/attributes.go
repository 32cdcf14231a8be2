package comparator

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/SmirnovGrigory/openvino/ir"
	"github.com/gomlx/gomlx/types"
)

// The attribute equality framework runs a two-phase protocol: a collect
// phase reads every attribute of the reference node into a typed storage,
// then a compare phase visits every attribute of the candidate node, looks
// the name up in the storage and verifies equality per kind. Attribute
// mismatches are accumulated, never terminal for sibling attributes; the
// node pair is equal iff no diagnostic was produced by either phase.

// attrStorage is the named, type-tagged value bag built from the reference
// node during the collect phase.
type attrStorage struct {
	values     map[string]ir.AttrValue
	readErrors []string
}

func newAttrStorage(node *ir.Node) *attrStorage {
	s := &attrStorage{values: make(map[string]ir.AttrValue)}
	node.VisitAttributes(func(name string, value ir.AttrValue) {
		switch v := value.(type) {
		case ir.BodyPortsAttr:
			// Carries only port indexes, which the subgraph contract
			// verifier already checks.
		case ir.UnsupportedAttr:
			s.readErrors = append(s.readErrors,
				fmt.Sprintf("store attr [ ERR ]: %s [drop comparison of unsupported kind '%s']", name, v.TypeName))
		default:
			s.values[name] = value
		}
	})
	return s
}

// getAttr returns the stored value for name if present and of the requested
// kind. A value stored under the name with a different kind reads as absent.
func getAttr[T ir.AttrValue](s *attrStorage, name string) (T, bool) {
	var zero T
	value, found := s.values[name]
	if !found {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// attrCompare is the compare-phase visitor over the candidate node.
type attrCompare struct {
	storage *attrStorage
	flags   CheckFlags
	visited types.Set[string]
	errs    []string
}

func (c *attrCompare) missing(name string) {
	c.errs = append(c.errs, fmt.Sprintf("missing attribute name: '%s'", name))
}

func (c *attrCompare) mismatch(name string, ref, cmp any) {
	c.errs = append(c.errs, fmt.Sprintf("mismatch in value: '%s' : %v vs %v", name, ref, cmp))
}

// verifyComparable handles every scalar-like kind whose equality is plain
// value equality.
func verifyComparable[T interface {
	ir.AttrValue
	comparable
}](c *attrCompare, name string, value T) {
	ref, found := getAttr[T](c.storage, name)
	if !found {
		c.missing(name)
		return
	}
	if ref != value {
		c.mismatch(name, ref, value)
	}
}

func (c *attrCompare) verify(name string, value ir.AttrValue) {
	switch v := value.(type) {
	case ir.BodyPortsAttr:
		return
	case ir.UnsupportedAttr:
		c.errs = append(c.errs,
			fmt.Sprintf("compare attr [ ERR ]: %s [drop comparison of unsupported kind '%s']", name, v.TypeName))
		return
	}
	c.visited.Insert(name)

	switch v := value.(type) {
	case ir.IntAttr:
		verifyComparable(c, name, v)
	case ir.FloatAttr:
		verifyComparable(c, name, v)
	case ir.BoolAttr:
		verifyComparable(c, name, v)
	case ir.StringAttr:
		verifyComparable(c, name, v)
	case ir.VariableAttr:
		verifyComparable(c, name, v)
	case ir.IntsAttr:
		ref, found := getAttr[ir.IntsAttr](c.storage, name)
		if !found {
			c.missing(name)
			return
		}
		if !slices.Equal(ref, v) {
			c.mismatch(name, ref, v)
		}
	case ir.ShapeAttr:
		ref, found := getAttr[ir.ShapeAttr](c.storage, name)
		if !found {
			c.missing(name)
			return
		}
		if !ir.PartialShape(ref).SameScheme(ir.PartialShape(v)) {
			c.mismatch(name, ir.PartialShape(ref), ir.PartialShape(v))
		}
	case ir.DimensionAttr:
		ref, found := getAttr[ir.DimensionAttr](c.storage, name)
		if !found {
			c.missing(name)
			return
		}
		if !ir.Dimension(ref).SameScheme(ir.Dimension(v)) {
			c.mismatch(name, ir.Dimension(ref), ir.Dimension(v))
		}
	case ir.BufferAttr:
		ref, found := getAttr[ir.BufferAttr](c.storage, name)
		if !found {
			c.missing(name)
			return
		}
		if len(ref) != len(v) || !bytes.Equal(ref, v) {
			c.errs = append(c.errs, fmt.Sprintf("mismatch in value: '%s' : look into the mem buffer", name))
		}
	case ir.FrameworkAttrs:
		ref, found := getAttr[ir.FrameworkAttrs](c.storage, name)
		if !found {
			c.missing(name)
			return
		}
		if !maps.Equal(map[string]string(ref), map[string]string(v)) {
			c.mismatch(name, map[string]string(ref), map[string]string(v))
		}
	case ir.InputDescsAttr:
		ref, found := getAttr[ir.InputDescsAttr](c.storage, name)
		if !found {
			c.missing(name)
			return
		}
		if len(ref) != len(v) || !isPermutation(ref, v, sameInputDescription) {
			c.errs = append(c.errs, fmt.Sprintf("mismatch in value: '%s' : SubGraphOp InputDescriptions differ", name))
		}
	case ir.OutputDescsAttr:
		ref, found := getAttr[ir.OutputDescsAttr](c.storage, name)
		if !found {
			c.missing(name)
			return
		}
		if len(ref) != len(v) || !isPermutation(ref, v, sameOutputDescription) {
			c.errs = append(c.errs, fmt.Sprintf("mismatch in value: '%s' : SubGraphOp OutputDescriptions differ", name))
		}
	case ir.GraphAttr:
		ref, found := getAttr[ir.GraphAttr](c.storage, name)
		if !found {
			c.missing(name)
			return
		}
		// Nested bodies recurse through the whole engine with the same
		// configuration; a failure is one more diagnostic, not fatal to
		// sibling attributes.
		if result := Compare(ref.Graph, v.Graph, c.flags); !result.Valid {
			c.errs = append(c.errs, result.Message)
		}
	default:
		c.errs = append(c.errs, fmt.Sprintf("compare attr [ ERR ]: %s [unhandled attribute kind %T]", name, value))
	}
}

// sameInputDescription is full field equality per variant (tag first).
func sameInputDescription(a, b ir.InputDescription) bool {
	switch ad := a.(type) {
	case ir.SliceInputDesc:
		bd, ok := b.(ir.SliceInputDesc)
		return ok && ad == bd
	case ir.MergedInputDesc:
		bd, ok := b.(ir.MergedInputDesc)
		return ok && ad == bd
	case ir.InvariantInputDesc:
		bd, ok := b.(ir.InvariantInputDesc)
		return ok && ad == bd
	default:
		return false
	}
}

// sameOutputDescription is full field equality per variant (tag first).
func sameOutputDescription(a, b ir.OutputDescription) bool {
	switch ad := a.(type) {
	case ir.ConcatOutputDesc:
		bd, ok := b.(ir.ConcatOutputDesc)
		return ok && ad == bd
	case ir.BodyOutputDesc:
		bd, ok := b.(ir.BodyOutputDesc)
		return ok && ad == bd
	default:
		return false
	}
}

// compareAttributes runs both phases over a paired node and folds the
// accumulated diagnostics.
func (c *comparator) compareAttributes(n1, n2 *ir.Node) Result {
	storage := newAttrStorage(n1)
	cmp := &attrCompare{
		storage: storage,
		flags:   c.flags,
		visited: types.MakeSet[string](),
	}
	n2.VisitAttributes(cmp.verify)

	// Reference attributes the candidate never presented are missing too.
	for _, name := range slices.Sorted(maps.Keys(storage.values)) {
		if !cmp.visited.Has(name) {
			cmp.missing(name)
		}
	}

	all := append(storage.readErrors, cmp.errs...)
	if len(all) > 0 {
		return Errorf("Comparison of attributes failed for nodes %s and %s: %s\n",
			n1.FriendlyName, n2.FriendlyName, strings.Join(all, "; "))
	}
	return Ok()
}
