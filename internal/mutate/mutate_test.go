package mutate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/fdtest"
	"github.com/fastdraft/fd/internal/mutate"
)

func mustParse(t *testing.T, src string) *fd.SceneGraph {
	t.Helper()
	g, h := fd.Parse(fdtest.Dedent(src))
	assert.False(t, h.HasErrors(), "parse: %v", h.Diagnostics())
	return g
}

// TestMoveNodeDeltaAndInline is the scenario-2 drag case: a centered
// rect moved by (50, 30) emits inline x/y instead of center_in.
func TestMoveNodeDeltaAndInline(t *testing.T) {
	g := mustParse(t, `
		rect @r {
			w: 100
			h: 100
			center_in: canvas
		}
	`)
	rh, ok := g.FindByIDString("r")
	assert.True(t, ok)
	// Simulate a layout pass having already centered the rect at the
	// origin (a canvas exactly the rect's own size resolves center_in
	// to (0,0)).
	g.Node(rh).ResolvedBounds = fd.Bounds{X: 0, Y: 0, W: 100, H: 100}

	m, err := mutate.MoveNode(g, rh, 50, 30)
	assert.NoError(t, err)

	node := g.Node(rh)
	assert.Equal(t, 1, len(node.Constraints))
	assert.Equal(t, fd.ConstraintPosition, node.Constraints[0].Kind)
	assert.Equal(t, 50.0, node.Constraints[0].X)
	assert.Equal(t, 30.0, node.Constraints[0].Y)

	out := fd.Emit(g)
	assert.Contains(t, out, "x: 50")
	assert.Contains(t, out, "y: 30")
	assert.NotContains(t, out, "center_in")

	// Undo restores the prior center_in constraint exactly.
	inv, err := m.Inverse(g)
	assert.NoError(t, err)
	assert.Equal(t, fd.ConstraintCenterIn, g.Node(rh).Constraints[0].Kind)
	_ = inv
}

// TestMoveNodeGroupDetachOnDragOut: moving a child fully outside its
// parent group's stored bounds detaches it to root.
func TestMoveNodeGroupDetachOnDragOut(t *testing.T) {
	g := mustParse(t, `
		group @g {
			rect @c { w: 50 h: 50 }
		}
	`)
	gh, _ := g.FindByIDString("g")
	ch, _ := g.FindByIDString("c")

	g.Node(gh).ResolvedBounds = fd.Bounds{X: 0, Y: 0, W: 200, H: 200}
	g.Node(ch).ResolvedBounds = fd.Bounds{X: 0, Y: 0, W: 50, H: 50}

	_, err := mutate.MoveNode(g, ch, 500, 0)
	assert.NoError(t, err)

	assert.Equal(t, fd.RootHandle, g.Node(ch).Parent)
	for _, child := range g.Children(gh) {
		assert.NotEqual(t, ch, child)
	}
}

// TestMoveNodePartialOverlapDoesNotDetach guards against the "chasing
// envelope" regression: a child that only partially leaves its parent's
// stored bounds stays put.
func TestMoveNodePartialOverlapDoesNotDetach(t *testing.T) {
	g := mustParse(t, `
		group @g {
			rect @c { w: 50 h: 50 }
		}
	`)
	gh, _ := g.FindByIDString("g")
	ch, _ := g.FindByIDString("c")
	g.Node(gh).ResolvedBounds = fd.Bounds{X: 0, Y: 0, W: 200, H: 200}
	g.Node(ch).ResolvedBounds = fd.Bounds{X: 0, Y: 0, W: 50, H: 50}

	_, err := mutate.MoveNode(g, ch, 180, 0)
	assert.NoError(t, err)

	assert.Equal(t, gh, g.Node(ch).Parent)
}

func TestGroupUngroupRoundTrip(t *testing.T) {
	g := mustParse(t, `
		rect @a { w: 10 h: 10 }
		rect @b { w: 10 h: 10 }
	`)
	ah, _ := g.FindByIDString("a")
	bh, _ := g.FindByIDString("b")

	groupH, m, err := mutate.GroupNodes(g, []fd.Handle{ah, bh})
	assert.NoError(t, err)
	assert.Equal(t, fd.KindGroup, g.Node(groupH).Kind)
	assert.Equal(t, 2, len(g.Children(groupH)))

	_, err = m.Inverse(g)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(g.Children(fd.RootHandle)))
}

func TestRemoveNodeInverseRestoresKindAndStyle(t *testing.T) {
	g := mustParse(t, `
		rect @r { w: 10 h: 10 fill: blue }
	`)
	rh, _ := g.FindByIDString("r")

	m, err := mutate.RemoveNode(g, rh, false)
	assert.NoError(t, err)
	assert.Nil(t, g.Node(rh))

	_, err = m.Inverse(g)
	assert.NoError(t, err)

	newH, ok := g.FindByIDString("r")
	assert.True(t, ok)
	assert.Equal(t, fd.KindRect, g.Node(newH).Kind)
	assert.NotNil(t, g.Node(newH).Style.Fill)
}

// TestFinalizeChildBoundsExpandsAfterDrag: a child that partially
// overhangs its parent's stored bounds mid-drag does not expand the
// parent in place, but a batch-close finalize grows the parent to
// contain it.
func TestFinalizeChildBoundsExpandsAfterDrag(t *testing.T) {
	g := mustParse(t, `
		group @g {
			rect @anchor { w: 50 h: 50 }
			rect @c { w: 50 h: 50 }
		}
	`)
	gh, _ := g.FindByIDString("g")
	anchorH, _ := g.FindByIDString("anchor")
	ch, _ := g.FindByIDString("c")
	g.Node(gh).ResolvedBounds = fd.Bounds{X: 0, Y: 0, W: 200, H: 200}
	g.Node(anchorH).ResolvedBounds = fd.Bounds{X: 0, Y: 0, W: 50, H: 50}
	g.Node(ch).ResolvedBounds = fd.Bounds{X: 0, Y: 0, W: 50, H: 50}

	_, err := mutate.MoveNode(g, ch, 180, 0)
	assert.NoError(t, err)
	// Partial overlap: parent bounds are untouched immediately after the move.
	assert.Equal(t, fd.Bounds{X: 0, Y: 0, W: 200, H: 200}, g.Node(gh).ResolvedBounds)

	mutate.FinalizeChildBounds(g)
	got := g.Node(gh).ResolvedBounds
	assert.Equal(t, 230.0, got.W, "parent must grow to contain the overhanging child")
}

func TestBringForwardAndSendBackwardAreInverses(t *testing.T) {
	g := mustParse(t, `
		rect @a { w: 1 h: 1 }
		rect @b { w: 1 h: 1 }
		rect @c { w: 1 h: 1 }
	`)
	ah, _ := g.FindByIDString("a")
	before := append([]fd.Handle(nil), g.Children(fd.RootHandle)...)

	m, err := mutate.BringForward(g, ah)
	assert.NoError(t, err)
	assert.NotEqual(t, before, g.Children(fd.RootHandle))

	_, err = m.Inverse(g)
	assert.NoError(t, err)
	assert.Equal(t, before, g.Children(fd.RootHandle))
}
