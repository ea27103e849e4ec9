package fd

// Animation is one `when:`/`anim:` keyframe block. Animations never
// affect layout.
type Animation struct {
	Trigger     string // ":hover", ":press", ":enter", or a custom name
	Fill        *Paint
	Opacity     *float64
	Scale       *float64
	Rotate      *float64
	StrokeWidth *float64
	Ease        string
	DurationMS  int

	// Order in which keyframe properties appeared in source, so the
	// emitter can reproduce it exactly.
	propOrder []string
}
