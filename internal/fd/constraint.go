package fd

import "github.com/fastdraft/fd/internal/intern"

// ConstraintKind tags a Constraint's variant.
type ConstraintKind int

const (
	ConstraintPosition ConstraintKind = iota
	ConstraintCenterIn
	ConstraintOffset
	ConstraintFillParent
)

// CanvasTarget is the sentinel CenterIn/Offset target meaning "the root
// viewport", spelled `canvas` in source.
const CanvasTarget = intern.Invalid

// Constraint is one declarative positioning rule on a node, resolved by
// the layout solver. Only the fields relevant to Kind are populated; the
// rest are zero.
type Constraint struct {
	Kind ConstraintKind

	// Position
	X, Y float64

	// CenterIn: Target is CanvasTarget for `canvas`, else a node ID.
	Target intern.ID

	// Offset
	From   intern.ID
	DX, DY float64

	// FillParent
	Pad float64
}

// Precedence orders low->high for the solver's tie-break rule when a
// node carries more than one constraint: FillParent beats Offset beats
// CenterIn beats Position.
func (k ConstraintKind) Precedence() int {
	switch k {
	case ConstraintPosition:
		return 0
	case ConstraintCenterIn:
		return 1
	case ConstraintOffset:
		return 2
	case ConstraintFillParent:
		return 3
	}
	return -1
}
