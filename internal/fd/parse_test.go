package fd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/fdtest"
)

// TestRoundTripFixedPoint exercises the round-trip law:
// emit(parse(emit(parse(t)))) == emit(parse(t)) for a variety of
// documents covering themes, constraints, edges, annotations, and
// comments.
func TestRoundTripFixedPoint(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{
			name: "card with theme and center_in",
			source: `
				theme card {
					fill: white
					corner: 8
				}

				rect @r {
					use: card
					w: 200
					h: 100
					center_in: canvas
				}
			`,
		},
		{
			name: "comment attaches to following node",
			source: `
				# the hero title
				text @title "Welcome" {
					fill: slate
				}
			`,
		},
		{
			name: "edge with arrow and curve",
			source: `
				rect @a { w: 10 h: 10 }
				rect @b { w: 10 h: 10 }
				edge conn {
					from: @a
					to: @b
					arrow: both
					curve: smooth
				}
			`,
		},
		{
			name: "spec annotation block",
			source: `
				rect @task {
					spec {
						"ship the button"
						status: doing
						priority: high
						tag: ui
					}
					w: 40
					h: 40
				}
			`,
		},
		{
			name: "edge with flow, spec, and inline label",
			source: `
				rect @api { w: 40 h: 40 }
				rect @db { w: 40 h: 40 }
				edge query {
					spec "reads go through the cache"
					from: @api
					to: @db
					stroke: slate 2
					label: "SELECT"
					flow: dash 800
					text "cached" {
						font: "Inter" 12
					}
				}
			`,
		},
		{
			name: "gradient fill and shadow",
			source: `
				rect @hero {
					w: 200
					h: 120
					fill: linear(red@0, blue@1)
					shadow: (0, 4, 12, #00000033)
				}
			`,
		},
		{
			name: "group with managed layout",
			source: `
				group @stack {
					layout: column
					gap: 8
					rect @one { w: 10 h: 10 }
					rect @two { w: 10 h: 10 }
				}
			`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := fdtest.Dedent(tc.source)

			g1, h1 := fd.Parse(src)
			if !assert.False(t, h1.HasErrors(), "first parse: %v", h1.Diagnostics()) {
				return
			}
			out1 := fd.Emit(g1)

			g2, h2 := fd.Parse(out1)
			if !assert.False(t, h2.HasErrors(), "second parse: %v", h2.Diagnostics()) {
				return
			}
			out2 := fd.Emit(g2)

			assert.Equal(t, out1, out2, "emit(parse(emit(parse(t)))) must equal emit(parse(t))")
		})
	}
}

// TestParseFailSoft ensures malformed input never panics and still
// produces a usable partial graph.
func TestParseFailSoft(t *testing.T) {
	malformed := []string{
		`rect @r { w: 10`,           // unclosed brace
		`bogus @x { w: 10 }`,        // unknown keyword
		`rect @r { frobnicate: 10 }`, // unknown property
		`rect @r { w: notanumber }`, // invalid number
	}
	for _, src := range malformed {
		t.Run(src, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, h := fd.Parse(src)
				_ = h.Diagnostics()
			})
		})
	}
}

// TestDuplicateIdRecovers confirms a colliding id becomes a DuplicateId
// diagnostic while parsing continues with an auto-generated id so the
// rest of the document still yields a usable graph.
func TestDuplicateIdRecovers(t *testing.T) {
	src := fdtest.Dedent(`
		rect @dup { w: 1 h: 1 }
		rect @dup { w: 2 h: 2 }
	`)
	g, h := fd.Parse(src)
	assert.True(t, h.HasErrors())
	assert.Len(t, g.Children(fd.RootHandle), 2)
}
