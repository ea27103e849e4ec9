package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/fdtest"
	"github.com/fastdraft/fd/internal/handler"
	"github.com/fastdraft/fd/internal/layout"
)

// fixedViewport implements layout.Viewport with a constant root size.
type fixedViewport struct{ w, h float64 }

func (v fixedViewport) RootBounds() (float64, float64) { return v.w, v.h }

func solve(t *testing.T, src string, vp layout.Viewport) (*fd.SceneGraph, *handler.Handler) {
	t.Helper()
	g, ph := fd.Parse(fdtest.Dedent(src))
	assert.False(t, ph.HasErrors(), "parse: %v", ph.Diagnostics())
	h := handler.New(src, "<layout-test>")
	layout.Solve(g, nil, vp, h)
	return g, h
}

func TestCenterInCanvas(t *testing.T) {
	g, _ := solve(t, `
		rect @r {
			w: 100
			h: 100
			center_in: canvas
		}
	`, fixedViewport{w: 300, h: 200})

	hd, ok := g.FindByIDString("r")
	assert.True(t, ok)
	b := g.Node(hd).ResolvedBounds
	assert.Equal(t, 100.0, b.X)
	assert.Equal(t, 50.0, b.Y)
}

func TestGroupAutoSizesToChildren(t *testing.T) {
	g, _ := solve(t, `
		group @g {
			rect @a { w: 10 h: 10 x: 0 y: 0 }
			rect @b { w: 10 h: 10 x: 40 y: 30 }
		}
	`, fixedViewport{w: 300, h: 200})

	hd, ok := g.FindByIDString("g")
	assert.True(t, ok)
	b := g.Node(hd).ResolvedBounds
	assert.Equal(t, 50.0, b.W)
	assert.Equal(t, 40.0, b.H)
}

func TestColumnLayoutStacksChildrenWithGap(t *testing.T) {
	g, _ := solve(t, `
		group @stack {
			layout: column
			gap: 5
			rect @one { w: 20 h: 10 }
			rect @two { w: 20 h: 10 }
		}
	`, fixedViewport{w: 300, h: 200})

	one, _ := g.FindByIDString("one")
	two, _ := g.FindByIDString("two")
	b1 := g.Node(one).ResolvedBounds
	b2 := g.Node(two).ResolvedBounds
	assert.Equal(t, b1.Y+b1.H+5, b2.Y)
}

func TestOffsetConstraintFollowsTarget(t *testing.T) {
	g, _ := solve(t, `
		rect @base { w: 10 h: 10 x: 100 y: 50 }
		rect @tip { w: 5 h: 5 }
		@tip -> offset: base, 20, 10
	`, fixedViewport{w: 300, h: 200})

	tip, _ := g.FindByIDString("tip")
	b := g.Node(tip).ResolvedBounds
	assert.Equal(t, 120.0, b.X)
	assert.Equal(t, 60.0, b.Y)
}

func TestFillParentInsetsByPad(t *testing.T) {
	g, _ := solve(t, `
		frame @f {
			w: 100
			h: 80
			rect @inner { fill_parent: pad=10 }
		}
	`, fixedViewport{w: 300, h: 200})

	inner, _ := g.FindByIDString("inner")
	b := g.Node(inner).ResolvedBounds
	assert.Equal(t, fd.Bounds{X: 10, Y: 10, W: 80, H: 60}, b)
}

func TestGridLayoutPlacesRowMajor(t *testing.T) {
	g, _ := solve(t, `
		frame @grid {
			w: 100
			h: 100
			layout: grid cols=2 gap=10
			rect @a { w: 10 h: 20 }
			rect @b { w: 10 h: 20 }
			rect @c { w: 10 h: 20 }
		}
	`, fixedViewport{w: 300, h: 200})

	a, _ := g.FindByIDString("a")
	b, _ := g.FindByIDString("b")
	c, _ := g.FindByIDString("c")
	ba := g.Node(a).ResolvedBounds
	bb := g.Node(b).ResolvedBounds
	bc := g.Node(c).ResolvedBounds

	assert.Equal(t, ba.Y, bb.Y, "first row shares a y")
	assert.Greater(t, bb.X, ba.X, "second column sits right of the first")
	assert.Equal(t, ba.X, bc.X, "third cell wraps to the first column")
	assert.Greater(t, bc.Y, ba.Y, "third cell starts a new row")
}

// TestRoundTripPreservesResolvedBounds parses a card, emits it, parses
// the emitted text, and solves both: every node must land on identical
// bounds.
func TestRoundTripPreservesResolvedBounds(t *testing.T) {
	src := `
		theme accent { fill: #6C5CE7 }
		group @card {
			layout: column gap=12 pad=20
			text @h "Hi" { font: "Inter" bold 20 }
			rect @btn { w: 180 h: 40 use: accent }
		}
		@card -> center_in: canvas
	`
	vp := fixedViewport{w: 800, h: 600}
	g1, _ := solve(t, src, vp)

	out := fd.Emit(g1)
	g2, ph := fd.Parse(out)
	assert.False(t, ph.HasErrors(), "re-parse: %v", ph.Diagnostics())
	h2 := handler.New(out, "<layout-test>")
	layout.Solve(g2, nil, vp, h2)

	assert.Equal(t, boundsByID(g1), boundsByID(g2))
}

func boundsByID(g *fd.SceneGraph) map[string]fd.Bounds {
	out := map[string]fd.Bounds{}
	g.Walk(func(h fd.Handle, n *fd.SceneNode) {
		if h == fd.RootHandle {
			return
		}
		out[g.Interner.String(n.ID)] = n.ResolvedBounds
	})
	return out
}

func TestConflictingConstraintsWarns(t *testing.T) {
	g, h := solve(t, `
		rect @a { w: 10 h: 10 }
		rect @r {
			w: 10
			h: 10
			center_in: canvas
			x: 5
			y: 5
		}
	`, fixedViewport{w: 100, h: 100})
	_ = g

	found := false
	for _, d := range h.Diagnostics() {
		if string(d.Code) == "ConflictingConstraints" {
			found = true
		}
	}
	assert.True(t, found, "expected a ConflictingConstraints diagnostic")
}

func TestUnknownCenterInTargetWarnsAndIsIgnored(t *testing.T) {
	g, h := solve(t, `
		rect @r {
			w: 10
			h: 10
			center_in: nonexistent
		}
	`, fixedViewport{w: 100, h: 100})

	found := false
	for _, d := range h.Diagnostics() {
		if string(d.Code) == "UnresolvedReference" {
			found = true
		}
	}
	assert.True(t, found, "expected an UnresolvedReference diagnostic")

	rh, ok := g.FindByIDString("r")
	assert.True(t, ok)
	assert.Equal(t, fd.Bounds{X: 0, Y: 0, W: 10, H: 10}, g.Node(rh).ResolvedBounds,
		"the ignored constraint leaves r at its parent's origin")
}
