package edgetip_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodmagesoftware/bsplevel/edgetip"
	"github.com/bloodmagesoftware/bsplevel/lineseg"
	"github.com/bloodmagesoftware/bsplevel/mesh"
)

func TestInsertKeepsAscendingOrder(t *testing.T) {
	s := edgetip.New()
	s.Insert(edgetip.Tip{Angle: 90})
	s.Insert(edgetip.Tip{Angle: 10})
	s.Insert(edgetip.Tip{Angle: 200})

	require.Equal(t, 3, s.Len())
	first, ok := s.First()
	require.True(t, ok)
	require.Equal(t, 10.0, first.Angle)
	last, ok := s.Last()
	require.True(t, ok)
	require.Equal(t, 200.0, last.Angle)
}

func TestAtFindsWithinTolerance(t *testing.T) {
	s := edgetip.New()
	s.Insert(edgetip.Tip{Angle: 45})

	tip, ok := s.At(45.005, edgetip.AngleEpsilon)
	require.True(t, ok)
	require.Equal(t, 45.0, tip.Angle)

	_, ok = s.At(50, edgetip.AngleEpsilon)
	require.False(t, ok)
}

func TestAfterReturnsFalseWhenNoTipExceedsAngle(t *testing.T) {
	s := edgetip.New()
	s.Insert(edgetip.Tip{Angle: 10})
	s.Insert(edgetip.Tip{Angle: 350})

	_, ok := s.After(350, 1e-9)
	require.False(t, ok, "After must not wrap around 0/360; the caller sees no match past the largest angle")
}

func TestAfterFindsSmallestGreaterAngle(t *testing.T) {
	s := edgetip.New()
	s.Insert(edgetip.Tip{Angle: 10})
	s.Insert(edgetip.Tip{Angle: 90})
	s.Insert(edgetip.Tip{Angle: 200})

	tip, ok := s.After(10, 1e-9)
	require.True(t, ok)
	require.Equal(t, 90.0, tip.Angle)
}

func TestClearByLineSegmentRemovesOnlyMatchingTips(t *testing.T) {
	m := mesh.New()
	v0 := m.NewVertex(mesh.Point{X: 0, Y: 0})
	v1 := m.NewVertex(mesh.Point{X: 1, Y: 0})
	v2 := m.NewVertex(mesh.Point{X: 0, Y: 1})

	segA, err := lineseg.New(m, 0, v0, v1, lineseg.NoSector, lineseg.NoSector)
	require.NoError(t, err)
	segB, err := lineseg.New(m, 1, v0, v2, lineseg.NoSector, lineseg.NoSector)
	require.NoError(t, err)

	s := edgetip.New()
	s.Insert(edgetip.Tip{Angle: 0, FrontSide: segA.Front})
	s.Insert(edgetip.Tip{Angle: 90, FrontSide: segB.Front})

	s.ClearByLineSegment(segA)

	require.Equal(t, 1, s.Len())
	remaining, _ := s.First()
	require.Equal(t, 90.0, remaining.Angle)
}

func TestMapCreatesPerVertexSetsOnDemand(t *testing.T) {
	m := edgetip.NewMap()
	m.At(3).Insert(edgetip.Tip{Angle: 0})
	m.At(1).Insert(edgetip.Tip{Angle: 0})

	require.Equal(t, []int{1, 3}, m.Vertices())
}
