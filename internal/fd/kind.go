package fd

// Handle is a stable reference to a SceneNode. Handles are never reused
// and survive removal of other nodes; removing a node never shifts the
// handles of its siblings.
type Handle uint32

// RootHandle is the synthetic root of every SceneGraph.
const RootHandle Handle = 0

// NoHandle is returned by lookups that fail.
const NoHandle Handle = ^Handle(0)

// NodeKind tags a SceneNode's variant. Operations dispatch on this tag
// rather than a runtime type hierarchy.
type NodeKind int

const (
	KindRoot NodeKind = iota
	KindGeneric
	KindGroup
	KindFrame
	KindRect
	KindEllipse
	KindPath
	KindText
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindGeneric:
		return "generic"
	case KindGroup:
		return "group"
	case KindFrame:
		return "frame"
	case KindRect:
		return "rect"
	case KindEllipse:
		return "ellipse"
	case KindPath:
		return "path"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// kindKeyword is the source keyword for every kind that is spelled with
// one (Generic nodes use "@name { }" with no keyword at all).
var kindKeyword = map[NodeKind]string{
	KindGroup:   "group",
	KindFrame:   "frame",
	KindRect:    "rect",
	KindEllipse: "ellipse",
	KindPath:    "path",
	KindText:    "text",
}

func kindFromKeyword(kw string) (NodeKind, bool) {
	switch kw {
	case "group":
		return KindGroup, true
	case "frame":
		return KindFrame, true
	case "rect":
		return KindRect, true
	case "ellipse":
		return KindEllipse, true
	case "path":
		return KindPath, true
	case "text":
		return KindText, true
	}
	return KindGeneric, false
}

// LayoutMode is a parent's `layout:` directive, applied by the layout
// solver when positioning that parent's children.
type LayoutMode int

const (
	LayoutFree LayoutMode = iota
	LayoutColumn
	LayoutRow
	LayoutGrid
)

func (m LayoutMode) String() string {
	switch m {
	case LayoutColumn:
		return "column"
	case LayoutRow:
		return "row"
	case LayoutGrid:
		return "grid"
	default:
		return "free"
	}
}

// Bounds is a resolved rectangle, in parent-relative or root coordinates
// depending on which layout pass produced it.
type Bounds struct {
	X, Y, W, H float64
}

func (b Bounds) Contains(o Bounds) bool {
	return o.X >= b.X && o.Y >= b.Y && o.X+o.W <= b.X+b.W && o.Y+o.H <= b.Y+b.H
}

func (b Bounds) Overlaps(o Bounds) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W && b.Y < o.Y+o.H && o.Y < b.Y+b.H
}

// Union returns the smallest Bounds containing both b and o. An empty
// (zero-size) Bounds is treated as the identity, so Union of one real rect and
// a zero value returns the real one. This is what gives an empty Group
// a zero intrinsic size.
func (b Bounds) Union(o Bounds) Bounds {
	if b.W == 0 && b.H == 0 {
		return o
	}
	if o.W == 0 && o.H == 0 {
		return b
	}
	x0 := min(b.X, o.X)
	y0 := min(b.Y, o.Y)
	x1 := max(b.X+b.W, o.X+o.W)
	y1 := max(b.Y+b.H, o.Y+o.H)
	return Bounds{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
