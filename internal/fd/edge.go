package fd

import "github.com/fastdraft/fd/internal/intern"

type ArrowKind int

// ArrowEnd is the zero value: an edge with no explicit `arrow:` property
// defaults to a single arrowhead at the end, the common case.
const (
	ArrowEnd ArrowKind = iota
	ArrowNone
	ArrowStart
	ArrowBoth
)

type CurveKind int

const (
	CurveStraight CurveKind = iota
	CurveSmooth
	CurveStep
)

// Anchor is an edge endpoint: either a reference to a node or a free
// (x, y) coordinate.
type Anchor struct {
	NodeID intern.ID // intern.Invalid if this is a free coordinate
	IsFree bool
	X, Y   float64
}

// FlowAnimation is an edge's `pulse|dash` traveling animation.
type FlowAnimation struct {
	Style      string // "pulse" or "dash"
	DurationMS int
}

// Edge is a first-class visual connector between two anchors.
type Edge struct {
	ID           intern.ID
	From, To     Anchor
	Arrow        ArrowKind
	Curve        CurveKind
	Stroke       *Paint
	StrokeWidth  *float64
	Label        string
	HasLabel     bool
	LabelOffsetX float64
	LabelOffsetY float64
	Flow         *FlowAnimation
	Triggers     []Animation
	ChildLabel   *SceneNode // optional child text label node
	Annotations  []Annotation
	Comments     []string

	// Orphan is set by the graph when a node an anchor references is
	// removed. Anchors that never resolved to a declared node are
	// caught by the linter re-checking resolution instead. In both
	// cases the edge is preserved, not deleted, unless a mutation
	// explicitly requests removal.
	Orphan bool
}
