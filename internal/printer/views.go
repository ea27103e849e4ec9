// Package printer renders a SceneGraph through one of eight filtered
// views. Each view is fd.EmitWithOptions with a different subset of
// sections enabled, so a filtered view is never a different textual
// form, only the same grammar with some fields omitted, and every
// view's output re-parses without error.
package printer

import (
	"fmt"

	"github.com/fastdraft/fd/internal/fd"
)

// View selects which slice of a document's information a caller wants
// rendered.
type View string

const (
	ViewFull      View = "full"
	ViewStructure View = "structure"
	ViewLayout    View = "layout"
	ViewDesign    View = "design"
	ViewSpec      View = "spec"
	ViewVisual    View = "visual"
	ViewWhen      View = "when"
	ViewEdges     View = "edges"
)

// Render produces the textual output for one view over g. Every view
// delegates to fd.EmitWithOptions; ViewFull is, by definition, the
// unfiltered canonical form (fd.FullEmitOptions).
func Render(g *fd.SceneGraph, view View) (string, error) {
	opts, ok := viewOptions(view)
	if !ok {
		return "", fmt.Errorf("printer: unknown view %q", view)
	}
	return fd.EmitWithOptions(g, opts), nil
}

// viewOptions maps each view mode to the sections it keeps. Structure
// (kind + ID + hierarchy) is the baseline every other view builds on by
// switching additional sections on; the emitter always writes kind/ID
// regardless of options, so Structure itself is the zero-value
// fd.EmitOptions.
func viewOptions(view View) (fd.EmitOptions, bool) {
	switch view {
	case ViewFull, "":
		return fd.FullEmitOptions(), true
	case ViewStructure:
		return fd.EmitOptions{}, true
	case ViewLayout:
		return fd.EmitOptions{SizeLayout: true, ConstraintArrow: true}, true
	case ViewDesign:
		return fd.EmitOptions{Themes: true, Use: true, Style: true}, true
	case ViewSpec:
		return fd.EmitOptions{Spec: true}, true
	case ViewVisual:
		return fd.EmitOptions{
			SizeLayout: true, ConstraintArrow: true,
			Themes: true, Use: true, Style: true, Anim: true,
		}, true
	case ViewWhen:
		return fd.EmitOptions{Anim: true}, true
	case ViewEdges:
		return fd.EmitOptions{Edges: true}, true
	default:
		return fd.EmitOptions{}, false
	}
}
