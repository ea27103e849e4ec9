package lint_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastdraft/fd/internal/fdtest"
	"github.com/fastdraft/fd/internal/lint"
)

// TestFormatIdempotence: format(format(t)) == format(t) for every
// option combination that changes the output.
func TestFormatIdempotence(t *testing.T) {
	src := fdtest.Dedent(`
		text @stray "floating" { fill: #334455 }
		group @card {
			rect @a { w: 10 h: 10 fill: #112233 corner: 4 }
			rect @b { w: 10 h: 10 fill: #112233 corner: 4 }
		}
		theme accent { fill: blue }
		rect @solo { w: 5 h: 5 use: accent, accent }
	`)
	combos := []lint.FormatOptions{
		{},
		{SortNodes: true},
		{DedupeStyles: true},
		{HoistStyles: true},
		{DedupeStyles: true, HoistStyles: true, SortNodes: true},
	}
	for _, opts := range combos {
		once, h1 := lint.Format(src, opts)
		require.False(t, h1.HasErrors(), "%v", h1.Diagnostics())
		twice, h2 := lint.Format(once, opts)
		require.False(t, h2.HasErrors(), "%v", h2.Diagnostics())
		assert.Equal(t, once, twice, "options %+v", opts)
	}
}

func TestFormatSortNodesOrdersByKind(t *testing.T) {
	src := fdtest.Dedent(`
		text @t "late" { }
		rect @r { w: 10 h: 10 }
		group @g { }
	`)
	out, h := lint.Format(src, lint.FormatOptions{SortNodes: true})
	require.False(t, h.HasErrors())

	gIdx := strings.Index(out, "@g")
	rIdx := strings.Index(out, "@r")
	tIdx := strings.Index(out, "@t")
	assert.Less(t, gIdx, rIdx, "groups before rects")
	assert.Less(t, rIdx, tIdx, "rects before texts")
}

func TestFormatDedupeStyles(t *testing.T) {
	src := fdtest.Dedent(`
		theme accent { fill: blue }
		rect @r { w: 10 h: 10 use: accent, accent }
	`)
	out, h := lint.Format(src, lint.FormatOptions{DedupeStyles: true})
	require.False(t, h.HasErrors())
	assert.Contains(t, out, "use: accent\n")
	assert.NotContains(t, out, "use: accent, accent")
}

func TestFormatHoistStylesSharedOnly(t *testing.T) {
	src := fdtest.Dedent(`
		rect @a { w: 10 h: 10 fill: #112233 }
		rect @b { w: 10 h: 10 fill: #112233 }
		rect @lone { w: 10 h: 10 fill: #445566 }
	`)
	out, h := lint.Format(src, lint.FormatOptions{HoistStyles: true})
	require.False(t, h.HasErrors())

	assert.Contains(t, out, "theme hoisted_1", "shared style becomes a theme")
	assert.Contains(t, out, "use: hoisted_1")
	// A style only one node carries stays inline.
	assert.Contains(t, out, "#445566")
	assert.NotContains(t, out, "theme hoisted_2")
}

func TestFormatReturnsInputOnParseError(t *testing.T) {
	src := "rect @r { w: 10"
	out, h := lint.Format(src, lint.FormatOptions{SortNodes: true})
	assert.True(t, h.HasErrors())
	assert.Equal(t, src, out)
}
