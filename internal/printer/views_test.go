package printer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastdraft/fd/internal/fd"
	"github.com/fastdraft/fd/internal/fdtest"
	"github.com/fastdraft/fd/internal/printer"
)

const cardFixture = `
	theme accent {
		fill: #6C5CE7
	}

	group @card {
		layout: column
		gap: 12
		pad: 20

		spec "the signup card"

		text @h "Hi" {
			font: "Inter" bold 20
		}
		rect @btn {
			w: 180
			h: 40
			use: accent
			when: hover {
				scale: 1.05
			}
		}
	}
	@card -> center_in: canvas
`

// TestFilteredViewsReparse checks that every filtered view is still
// valid, re-parseable .fd text, and that a Structure view in
// particular keeps the hierarchy identical.
func TestFilteredViewsReparse(t *testing.T) {
	src := fdtest.Dedent(cardFixture)
	g, h := fd.Parse(src)
	require.False(t, h.HasErrors(), "%v", h.Diagnostics())

	views := []printer.View{
		printer.ViewFull, printer.ViewStructure, printer.ViewLayout,
		printer.ViewDesign, printer.ViewSpec, printer.ViewVisual,
		printer.ViewWhen, printer.ViewEdges,
	}
	for _, v := range views {
		t.Run(string(v), func(t *testing.T) {
			out, err := printer.Render(g, v)
			require.NoError(t, err)

			g2, h2 := fd.Parse(out)
			assert.False(t, h2.HasErrors(), "view %s produced unparseable text:\n%s\nerrors: %v", v, out, h2.Diagnostics())

			if v == printer.ViewStructure {
				cardH, ok := g2.FindByIDString("card")
				require.True(t, ok)
				assert.Len(t, g2.Children(cardH), 2, "structure view must keep identical nesting")
			}
		})
	}
}

func TestRenderUnknownView(t *testing.T) {
	g, _ := fd.Parse("")
	_, err := printer.Render(g, printer.View("bogus"))
	assert.Error(t, err)
}
