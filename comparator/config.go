package comparator

// CheckFlags is the immutable bit-set of comparison categories. It is
// selected once per top-level Compare call and threaded through every
// recursive call, including nested-body comparisons.
type CheckFlags uint32

const (
	// CheckNames compares the friendly names of the nodes feeding paired
	// results.
	CheckNames CheckFlags = 1 << iota
	// CheckConstValues compares the materialized values of constant inputs.
	CheckConstValues
	// CheckRuntimeKeys compares runtime metadata attached to nodes and
	// their ports.
	CheckRuntimeKeys
	// CheckPrecisions compares the element types of paired input ports.
	CheckPrecisions
	// CheckTensorNames compares the tensor-name sets of paired output
	// ports.
	CheckTensorNames
	// CheckAttributes compares node attributes through the attribute
	// equality framework.
	CheckAttributes
)

// CheckNone disables every optional category; only the always-on structural
// checks run.
const CheckNone CheckFlags = 0

// DefaultChecks is the default comparison bundle.
const DefaultChecks = CheckPrecisions | CheckAttributes

// Has reports whether every bit of other is enabled in f.
func (f CheckFlags) Has(other CheckFlags) bool {
	return f&other == other
}

// With returns f with the bits of other enabled.
func (f CheckFlags) With(other CheckFlags) CheckFlags {
	return f | other
}
