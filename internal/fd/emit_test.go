package fd_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/fdtest"
)

func mustEmit(t *testing.T, src string) string {
	t.Helper()
	g, h := fd.Parse(fdtest.Dedent(src))
	require.False(t, h.HasErrors(), "parse: %v", h.Diagnostics())
	return fd.Emit(g)
}

// TestEmitInnerOrdering checks the fixed order inside every node block:
// spec, then children, then style properties, then when blocks, no
// matter how the source interleaves them.
func TestEmitInnerOrdering(t *testing.T) {
	out := mustEmit(t, `
		rect @card {
			when: hover {
				opacity: 0.5
			}
			fill: blue
			rect @inner { w: 10 h: 10 }
			spec "a card"
			w: 100
			h: 50
		}
	`)
	specIdx := strings.Index(out, "spec ")
	childIdx := strings.Index(out, "@inner")
	fillIdx := strings.Index(out, "fill:")
	whenIdx := strings.Index(out, "when:")
	require.True(t, specIdx >= 0 && childIdx >= 0 && fillIdx >= 0 && whenIdx >= 0, "all sections present:\n%s", out)
	assert.Less(t, specIdx, childIdx, "spec before children")
	assert.Less(t, childIdx, fillIdx, "children before style")
	assert.Less(t, fillIdx, whenIdx, "style before when")
}

func TestEmitHexUppercaseNormalization(t *testing.T) {
	out := mustEmit(t, `
		rect @r { fill: #6c5ce7 w: 10 h: 10 }
	`)
	assert.Contains(t, out, "#6C5CE7")
	assert.NotContains(t, out, "#6c5ce7")
}

func TestEmitShortHexExpands(t *testing.T) {
	out := mustEmit(t, `
		rect @r { fill: #abc w: 10 h: 10 }
	`)
	// Each nibble expands by x17: #abc is #AABBCC.
	assert.Contains(t, out, "#AABBCC")
}

// TestEmitPaletteHexKeepsHexWithNameHint: a hex value matching the
// palette round-trips bit-equal as hex; the palette name rides along as
// a trailing hint comment the parser treats as emitter furniture.
func TestEmitPaletteHexKeepsHexWithNameHint(t *testing.T) {
	out := mustEmit(t, `
		rect @r { fill: #3B82F6 w: 10 h: 10 }
	`)
	assert.Contains(t, out, "fill: #3B82F6 # blue")

	g2, h2 := fd.Parse(out)
	require.False(t, h2.HasErrors())
	assert.Equal(t, out, fd.Emit(g2), "hint must not accumulate or attach as a comment")
}

// TestEmitNamedColorInputNormalizesToHex: color names are accepted on
// input but the canonical value is always the uppercased hex.
func TestEmitNamedColorInputNormalizesToHex(t *testing.T) {
	out := mustEmit(t, `
		rect @r { fill: red w: 10 h: 10 }
	`)
	assert.Contains(t, out, "fill: #EF4444 # red")
	assert.NotContains(t, out, "fill: red")
}

// TestEmitShadowColorStaysPlainHex: inside a parenthesized tuple a
// trailing hint would corrupt the value, so the color stays bare hex
// even when it matches the palette.
func TestEmitShadowColorStaysPlainHex(t *testing.T) {
	out := mustEmit(t, `
		rect @r { w: 10 h: 10 shadow: (0, 4, 12, #000000) }
	`)
	assert.Contains(t, out, "shadow: (0, 4, 12, #000000)")
	assert.NotContains(t, out, "#000000 #")
}

func TestEmitStripsPxSuffix(t *testing.T) {
	out := mustEmit(t, `
		rect @r { w: 320px h: 40px }
	`)
	assert.Contains(t, out, "w: 320")
	assert.Contains(t, out, "h: 40")
	assert.NotContains(t, out, "px")
}

func TestEmitZeroSizeRectIsStable(t *testing.T) {
	src := "rect @a { w: 0 h: 0 }"
	g1, h1 := fd.Parse(src)
	require.False(t, h1.HasErrors())
	out1 := fd.Emit(g1)
	g2, h2 := fd.Parse(out1)
	require.False(t, h2.HasErrors())
	assert.Equal(t, out1, fd.Emit(g2))
	assert.Contains(t, out1, "w: 0")
}

func TestEmitFontWeightByName(t *testing.T) {
	out := mustEmit(t, `
		text @t "hi" { font: "Inter" 700 20 }
	`)
	assert.Contains(t, out, "bold")
	assert.NotContains(t, out, "700")
}

// TestEmitSectionSeparators: separators appear only when at least two
// top-level sections are populated, and never accumulate across round
// trips.
func TestEmitSectionSeparators(t *testing.T) {
	single := mustEmit(t, `
		rect @r { w: 10 h: 10 }
	`)
	assert.NotContains(t, single, "───", "one populated section gets no separators")

	multi := mustEmit(t, `
		theme accent { fill: blue }
		rect @r { w: 10 h: 10 use: accent }
		@r -> center_in: canvas
	`)
	assert.Contains(t, multi, "# ─── Styles ───")
	assert.Contains(t, multi, "# ─── Layout ───")
	assert.Contains(t, multi, "# ─── Constraints ───")

	g2, h2 := fd.Parse(multi)
	require.False(t, h2.HasErrors())
	again := fd.Emit(g2)
	assert.Equal(t, multi, again, "separators must not accumulate")
	assert.Equal(t, 1, strings.Count(again, "# ─── Styles ───"))
}

// TestEmitPreservesStructureAndChildOrder re-parses emitted text and
// compares the ID/nesting skeleton of both graphs.
func TestEmitPreservesStructureAndChildOrder(t *testing.T) {
	src := fdtest.Dedent(`
		theme accent { fill: #6C5CE7 }
		group @card {
			layout: column gap=12 pad=20
			text @h "Hi" { font: "Inter" bold 20 }
			rect @btn { w: 180 h: 40 use: accent }
		}
		@card -> center_in: canvas
	`)
	g1, h1 := fd.Parse(src)
	require.False(t, h1.HasErrors(), "%v", h1.Diagnostics())
	g2, h2 := fd.Parse(fd.Emit(g1))
	require.False(t, h2.HasErrors(), "%v", h2.Diagnostics())

	if diff := fdtest.ANSIDiff(skeleton(g1), skeleton(g2)); diff != "" {
		t.Fatalf("structure changed across round trip (-before +after):\n%s", diff)
	}
}

// skeleton flattens a graph to "depth:kind:id" lines in walk order.
func skeleton(g *fd.SceneGraph) []string {
	depth := map[fd.Handle]int{fd.RootHandle: 0}
	var out []string
	g.Walk(func(h fd.Handle, n *fd.SceneNode) {
		if h == fd.RootHandle {
			return
		}
		depth[h] = depth[n.Parent] + 1
		out = append(out, strings.Repeat(">", depth[h])+n.Kind.String()+":"+g.Interner.String(n.ID))
	})
	return out
}

// TestEmitCommentReattachment: leading comments survive two round trips
// attached to the same node.
func TestEmitCommentReattachment(t *testing.T) {
	src := fdtest.Dedent(`
		# primary call to action
		rect @cta { w: 100 h: 40 }
	`)
	g1, h1 := fd.Parse(src)
	require.False(t, h1.HasErrors())
	out1 := fd.Emit(g1)
	assert.Contains(t, out1, "# primary call to action\nrect @cta")

	g2, h2 := fd.Parse(out1)
	require.False(t, h2.HasErrors())
	assert.Equal(t, out1, fd.Emit(g2))
}

func TestEmitSnapshotCard(t *testing.T) {
	src := fdtest.Dedent(`
		theme accent { fill: #6C5CE7 }
		group @card {
			layout: column gap=12 pad=20
			text @h "Hi" { font: "Inter" bold 20 }
			rect @btn { w: 180 h: 40 use: accent }
		}
		@card -> center_in: canvas
	`)
	g, h := fd.Parse(src)
	require.False(t, h.HasErrors(), "%v", h.Diagnostics())
	fdtest.SnapshotRoundTrip(t, t.Name(), src, fd.Emit(g))
}
