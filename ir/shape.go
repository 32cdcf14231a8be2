package ir

import (
	"strconv"
	"strings"
)

// Dimension is one axis of a PartialShape. A negative value means the
// dimension is dynamic (not known statically).
type Dimension int64

// DynamicDimension marks an axis whose extent is unknown until runtime.
const DynamicDimension Dimension = -1

// IsStatic returns whether the dimension extent is known.
func (d Dimension) IsStatic() bool {
	return d >= 0
}

// SameScheme returns whether two dimensions are equal under the scheme rules:
// dynamic matches dynamic, static must be exactly equal.
func (d Dimension) SameScheme(other Dimension) bool {
	if !d.IsStatic() && !other.IsStatic() {
		return true
	}
	return d == other
}

func (d Dimension) String() string {
	if !d.IsStatic() {
		return "?"
	}
	return strconv.FormatInt(int64(d), 10)
}

// PartialShape is a tensor shape where the rank and individual dimensions may
// be dynamic. The zero value is a static scalar shape (rank 0).
type PartialShape struct {
	dynamicRank bool
	dims        []Dimension
}

// MakeShape returns a static-rank shape with the given dimensions.
// Use DynamicDimension (or any negative value) for dynamic axes.
func MakeShape(dims ...int64) PartialShape {
	s := PartialShape{dims: make([]Dimension, len(dims))}
	for axis, dim := range dims {
		s.dims[axis] = Dimension(dim)
	}
	return s
}

// DynamicRankShape returns the fully dynamic shape: rank unknown.
func DynamicRankShape() PartialShape {
	return PartialShape{dynamicRank: true}
}

// Rank returns the number of axes, or -1 if the rank itself is dynamic.
func (s PartialShape) Rank() int {
	if s.dynamicRank {
		return -1
	}
	return len(s.dims)
}

// Dim returns the dimension at the given axis. It panics on a dynamic-rank
// shape or an out-of-range axis, like indexing a slice would.
func (s PartialShape) Dim(axis int) Dimension {
	return s.dims[axis]
}

// Dims returns the dimensions. Nil for a dynamic-rank shape.
// The returned slice is owned by the shape and must not be mutated.
func (s PartialShape) Dims() []Dimension {
	if s.dynamicRank {
		return nil
	}
	return s.dims
}

// IsStatic returns whether the rank and every dimension are known.
func (s PartialShape) IsStatic() bool {
	if s.dynamicRank {
		return false
	}
	for _, d := range s.dims {
		if !d.IsStatic() {
			return false
		}
	}
	return true
}

// IsDynamic returns whether the rank or any dimension is dynamic.
func (s PartialShape) IsDynamic() bool {
	return !s.IsStatic()
}

// SameScheme returns whether two shapes match under the scheme rules:
// dynamic-rank matches only dynamic-rank; otherwise ranks must be equal and
// every dimension pair must be same-scheme (dynamic matches dynamic, static
// must be exactly equal).
func (s PartialShape) SameScheme(other PartialShape) bool {
	if s.dynamicRank || other.dynamicRank {
		return s.dynamicRank && other.dynamicRank
	}
	if len(s.dims) != len(other.dims) {
		return false
	}
	for axis, dim := range s.dims {
		if !dim.SameScheme(other.dims[axis]) {
			return false
		}
	}
	return true
}

// String pretty-prints the shape, e.g. "[2,?,3]" or "[...]" for dynamic rank.
func (s PartialShape) String() string {
	if s.dynamicRank {
		return "[...]"
	}
	parts := make([]string, len(s.dims))
	for axis, dim := range s.dims {
		parts[axis] = dim.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}
