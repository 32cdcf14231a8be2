package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDimensionSameScheme(t *testing.T) {
	assert.True(t, Dimension(3).SameScheme(Dimension(3)))
	assert.False(t, Dimension(3).SameScheme(Dimension(4)))
	assert.True(t, DynamicDimension.SameScheme(DynamicDimension))
	// Any negative value is dynamic, not just the sentinel.
	assert.True(t, DynamicDimension.SameScheme(Dimension(-5)))
	assert.False(t, Dimension(3).SameScheme(DynamicDimension))
	assert.False(t, DynamicDimension.SameScheme(Dimension(3)))
}

func TestShapeSameScheme(t *testing.T) {
	assert.True(t, MakeShape(2, 3).SameScheme(MakeShape(2, 3)))
	assert.False(t, MakeShape(2, 3).SameScheme(MakeShape(2, 4)))
	assert.False(t, MakeShape(2, 3).SameScheme(MakeShape(2, 3, 1)))
	assert.True(t, MakeShape(2, -1).SameScheme(MakeShape(2, -1)))
	assert.False(t, MakeShape(2, -1).SameScheme(MakeShape(2, 3)))
	assert.True(t, MakeShape().SameScheme(MakeShape()))

	assert.True(t, DynamicRankShape().SameScheme(DynamicRankShape()))
	assert.False(t, DynamicRankShape().SameScheme(MakeShape(2)))
	assert.False(t, MakeShape(2).SameScheme(DynamicRankShape()))
}

func TestShapeStaticness(t *testing.T) {
	assert.True(t, MakeShape(2, 3).IsStatic())
	assert.True(t, MakeShape().IsStatic())
	assert.False(t, MakeShape(2, -1).IsStatic())
	assert.False(t, DynamicRankShape().IsStatic())
	assert.True(t, MakeShape(2, -1).IsDynamic())
}

func TestShapeRank(t *testing.T) {
	assert.Equal(t, 0, MakeShape().Rank())
	assert.Equal(t, 3, MakeShape(1, 2, 3).Rank())
	assert.Equal(t, -1, DynamicRankShape().Rank())
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "[2,?,3]", MakeShape(2, -1, 3).String())
	assert.Equal(t, "[]", MakeShape().String())
	assert.Equal(t, "[...]", DynamicRankShape().String())
}
