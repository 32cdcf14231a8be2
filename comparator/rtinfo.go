package comparator

import (
	"fmt"
	"strings"

	"github.com/SmirnovGrigory/openvino/ir"
	"github.com/pkg/errors"
)

// Equaler is the explicit opt-in for runtime-metadata value comparison.
// Runtime info is an uninterpreted bag: values that implement Equaler are
// compared with it; any other value kind is deliberately tolerated as
// "cannot disprove equality" and skipped, never reported as a mismatch.
type Equaler interface {
	Equal(other any) bool
}

// compareRTInfo verifies that every key of info2 is present in info1 with an
// equal value (where comparable, see Equaler). The "opset" key is excluded
// from comparison.
func compareRTInfo(info1, info2 map[string]any) (bool, string) {
	for key, value2 := range info2 {
		if key == "opset" {
			continue
		}
		value1, found := info1[key]
		if !found {
			return false, fmt.Sprintf("Key: %s is missing.\n", key)
		}
		eq, hasEquality := value1.(Equaler)
		if !hasEquality {
			continue
		}
		if !eq.Equal(value2) {
			return false, fmt.Sprintf("Values for %s key are not equal.\n", key)
		}
	}
	return true, ""
}

// CheckRTInfo verifies that every non-constant node reachable in the graph
// carries all of the given runtime-info keys, returning an error listing the
// offenders. Useful after transformation passes that are required to
// preserve runtime attributes (e.g. fused-names bookkeeping).
func CheckRTInfo(g *ir.Graph, keys ...string) error {
	var missing []string
	for _, node := range g.Nodes() {
		if node.Const != nil {
			continue
		}
		for _, key := range keys {
			if _, found := node.RTInfo[key]; !found {
				missing = append(missing, fmt.Sprintf("Node: %s has no attribute: %s", node.FriendlyName, key))
			}
		}
	}
	if len(missing) > 0 {
		return errors.New(strings.Join(missing, "\n"))
	}
	return nil
}
