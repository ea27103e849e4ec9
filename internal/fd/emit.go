package fd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fastdraft/fd/internal/intern"
)

// emitter renders a SceneGraph back to canonical .fd text: a single
// recursive walk writing directly into a strings.Builder rather than
// building an intermediate tree of output nodes.
type emitter struct {
	buf  strings.Builder
	g    *SceneGraph
	opts EmitOptions
}

// EmitOptions selects which sections of a node's block get written.
// This is the mechanism behind the filtered views: every view is the
// same emitter with a different subset of sections switched on, so a
// view's output is always the same grammar with fields omitted, never a
// different textual form.
type EmitOptions struct {
	Imports         bool
	Themes          bool
	Spec            bool
	Edges           bool // nested (node-local) and top-level edges
	Use             bool
	Style           bool // fill/stroke/corner/opacity/shadow/font/align
	TextContent     bool // the inline "..." on a text node's decl line
	SizeLayout      bool // w/h/clip/layout:/x:/y:
	Anim            bool // when/anim trigger blocks
	ConstraintArrow bool // top-level "@id -> kind: args" (non-Position)
}

// FullEmitOptions keeps every section; Emit(g) is EmitWithOptions(g,
// FullEmitOptions()).
func FullEmitOptions() EmitOptions {
	return EmitOptions{
		Imports: true, Themes: true, Spec: true, Edges: true, Use: true,
		Style: true, TextContent: true, SizeLayout: true, Anim: true,
		ConstraintArrow: true,
	}
}

// Section separator lines. The emitter inserts them between top-level
// sections when at least two are populated; the parser drops them on
// read (see isSectionSeparator), so a document keeps exactly one copy
// of each no matter how many times it round-trips.
const (
	sepStyles      = "# ─── Styles ───"
	sepLayout      = "# ─── Layout ───"
	sepConstraints = "# ─── Constraints ───"
	sepFlows       = "# ─── Flows ───"
)

// isSectionSeparator reports whether a comment line is one of the
// emitter's own section separators. These are presentation, not
// content: the parser filters them so they never attach to a node as a
// leading comment.
func isSectionSeparator(comment string) bool {
	switch strings.TrimSpace(comment) {
	case sepStyles, sepLayout, sepConstraints, sepFlows:
		return true
	}
	return false
}

// Emit serializes g to canonical .fd text. Top-level node order is
// preserved as-is; only the formatter reorders top-level nodes by kind.
// Inside every node block the order is fixed: spec, children, style,
// when.
func Emit(g *SceneGraph) string {
	return EmitWithOptions(g, FullEmitOptions())
}

// EmitWithOptions serializes g to .fd text, keeping only the sections
// opts enables. Every node's kind and ID (the "structure") are always
// written, so the result is valid, re-parseable .fd text regardless of
// which sections are switched off.
func EmitWithOptions(g *SceneGraph, opts EmitOptions) string {
	e := &emitter{g: g, opts: opts}

	hasThemes := opts.Themes && len(g.ThemeOrder()) > 0
	hasNodes := len(g.Children(RootHandle)) > 0
	hasArrows := opts.ConstraintArrow && hasConstraintArrows(g)
	hasEdges := opts.Edges && len(g.Edges) > 0
	populated := 0
	for _, on := range []bool{hasThemes, hasNodes, hasArrows, hasEdges} {
		if on {
			populated++
		}
	}
	separators := populated >= 2

	if opts.Imports {
		e.emitImports()
	}
	if hasThemes {
		e.separator(separators, sepStyles)
		e.emitThemes()
	}
	if hasNodes {
		e.separator(separators, sepLayout)
		for _, h := range g.Children(RootHandle) {
			e.emitNode(h, 0)
			e.buf.WriteString("\n")
		}
	}
	if hasArrows {
		e.separator(separators, sepConstraints)
		e.emitConstraintArrows()
	}
	if hasEdges {
		e.separator(separators, sepFlows)
		e.emitTopLevelEdges()
	}
	out := strings.TrimRight(e.buf.String(), "\n") + "\n"
	if out == "\n" {
		return ""
	}
	return out
}

func (e *emitter) separator(enabled bool, line string) {
	if !enabled {
		return
	}
	e.buf.WriteString(line)
	e.buf.WriteString("\n")
}

func (e *emitter) indent(depth int) string { return strings.Repeat("  ", depth) }

func (e *emitter) emitImports() {
	for _, imp := range e.g.Imports {
		fmt.Fprintf(&e.buf, "import %q as %s\n", imp.Path, e.g.Interner.String(imp.Namespace))
	}
	if len(e.g.Imports) > 0 {
		e.buf.WriteString("\n")
	}
}

func (e *emitter) emitThemes() {
	for _, key := range e.g.ThemeOrder() {
		theme := e.g.Themes[key]
		fmt.Fprintf(&e.buf, "theme %s {\n", key)
		e.emitStyleBody(theme.Style, nil, 1)
		e.buf.WriteString("}\n")
	}
	e.buf.WriteString("\n")
}

func (e *emitter) emitNode(h Handle, depth int) {
	node := e.g.Node(h)
	if node == nil {
		return
	}
	ind := e.indent(depth)
	for _, c := range node.Comments {
		e.buf.WriteString(ind)
		e.buf.WriteString(c)
		e.buf.WriteString("\n")
	}
	e.buf.WriteString(ind)
	if kw, ok := kindKeyword[node.Kind]; ok {
		e.buf.WriteString(kw)
		e.buf.WriteString(" ")
	}
	if node.ID != intern.Invalid {
		fmt.Fprintf(&e.buf, "@%s ", e.g.Interner.String(node.ID))
	}
	if e.opts.TextContent && node.Kind == KindText && node.Style.Text != nil {
		fmt.Fprintf(&e.buf, "%q ", *node.Style.Text)
	}
	e.buf.WriteString("{\n")

	inner := depth + 1
	if e.opts.Spec {
		e.emitSpec(node.Annotations, inner)
	}
	for _, c := range e.g.Children(h) {
		e.emitNode(c, inner)
	}
	if e.opts.Edges {
		for _, edge := range node.Edges {
			e.emitEdge(edge, inner)
		}
	}
	if e.opts.Use {
		e.emitUse(node.UseStyles, inner)
	}
	if e.opts.Style {
		e.emitStyleBody(node.Style, node, inner)
	}
	if e.opts.SizeLayout {
		e.emitSizeLayout(node, inner)
	}
	if e.opts.Anim {
		for _, a := range node.Animations {
			e.emitAnim(a, inner)
		}
	}

	e.buf.WriteString(e.indent(depth))
	e.buf.WriteString("}\n")
}

func (e *emitter) emitSpec(anns []Annotation, depth int) {
	if len(anns) == 0 {
		return
	}
	ind := e.indent(depth)
	if len(anns) == 1 && anns[0].Kind == AnnotationDescription {
		fmt.Fprintf(&e.buf, "%sspec %q\n", ind, anns[0].Text)
		return
	}
	e.buf.WriteString(ind)
	e.buf.WriteString("spec {\n")
	inner := e.indent(depth + 1)
	for _, a := range anns {
		switch a.Kind {
		case AnnotationDescription:
			fmt.Fprintf(&e.buf, "%s%q\n", inner, a.Text)
		case AnnotationAccept:
			fmt.Fprintf(&e.buf, "%saccept: %s\n", inner, a.Text)
		case AnnotationStatus:
			fmt.Fprintf(&e.buf, "%sstatus: %s\n", inner, a.Text)
		case AnnotationPriority:
			fmt.Fprintf(&e.buf, "%spriority: %s\n", inner, a.Text)
		case AnnotationTag:
			fmt.Fprintf(&e.buf, "%stag: %s\n", inner, a.Text)
		}
	}
	e.buf.WriteString(ind)
	e.buf.WriteString("}\n")
}

func (e *emitter) emitUse(refs []ThemeRef, depth int) {
	if len(refs) == 0 {
		return
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		if r.Namespace != intern.Invalid {
			names[i] = e.g.Interner.String(r.Namespace) + "." + e.g.Interner.String(r.Name)
		} else {
			names[i] = e.g.Interner.String(r.Name)
		}
	}
	fmt.Fprintf(&e.buf, "%suse: %s\n", e.indent(depth), strings.Join(names, ", "))
}

func (e *emitter) emitStyleBody(s Style, node *SceneNode, depth int) {
	ind := e.indent(depth)
	if s.Fill != nil {
		fmt.Fprintf(&e.buf, "%sfill: %s%s\n", ind, formatPaint(*s.Fill), paintHint(*s.Fill))
	}
	if s.Stroke != nil {
		fmt.Fprintf(&e.buf, "%sstroke: %s%s\n", ind, formatPaint(*s.Stroke), paintHint(*s.Stroke))
	}
	if s.StrokeWidth != nil {
		fmt.Fprintf(&e.buf, "%sstroke_width: %s\n", ind, formatNumber(*s.StrokeWidth))
	}
	if s.CornerRadius != nil {
		fmt.Fprintf(&e.buf, "%scorner: %s\n", ind, formatNumber(*s.CornerRadius))
	}
	if s.Opacity != nil {
		fmt.Fprintf(&e.buf, "%sopacity: %s\n", ind, formatNumber(*s.Opacity))
	}
	if s.Shadow != nil {
		fmt.Fprintf(&e.buf, "%sshadow: (%s, %s, %s, %s)\n", ind,
			formatNumber(s.Shadow.OffsetX), formatNumber(s.Shadow.OffsetY),
			formatNumber(s.Shadow.Blur), formatColor(s.Shadow.Color))
	}
	if s.FontFamily != nil || s.FontWeight != nil || s.FontSize != nil {
		var parts []string
		if s.FontFamily != nil {
			parts = append(parts, fmt.Sprintf("%q", *s.FontFamily))
		}
		if s.FontWeight != nil {
			if name, ok := FontWeightName(*s.FontWeight); ok {
				parts = append(parts, name)
			} else {
				parts = append(parts, strconv.Itoa(*s.FontWeight))
			}
		}
		if s.FontSize != nil {
			parts = append(parts, formatNumber(*s.FontSize))
		}
		fmt.Fprintf(&e.buf, "%sfont: %s\n", ind, strings.Join(parts, " "))
	}
	if s.TextAlign != AlignUnset {
		fmt.Fprintf(&e.buf, "%salign: %s\n", ind, alignName(s.TextAlign))
	}
	if s.TextVAlign != VAlignUnset {
		fmt.Fprintf(&e.buf, "%svalign: %s\n", ind, valignName(s.TextVAlign))
	}
	// Text is emitted inline on the node's declaration line, not as a
	// property, except in theme bodies (node == nil) where there is no
	// declaration line to attach it to.
	if node == nil && s.Text != nil {
		fmt.Fprintf(&e.buf, "%stext: %q\n", ind, *s.Text)
	}
}

func (e *emitter) emitSizeLayout(node *SceneNode, depth int) {
	ind := e.indent(depth)
	if node.HasW {
		fmt.Fprintf(&e.buf, "%sw: %s\n", ind, formatNumber(node.W))
	}
	if node.HasH {
		fmt.Fprintf(&e.buf, "%sh: %s\n", ind, formatNumber(node.H))
	}
	if node.Clip {
		fmt.Fprintf(&e.buf, "%sclip: true\n", ind)
	}
	if node.Layout != LayoutFree {
		parts := []string{node.Layout.String()}
		if node.GapPx != 0 {
			parts = append(parts, fmt.Sprintf("gap=%s", formatNumber(node.GapPx)))
		}
		if node.PadPx != 0 {
			parts = append(parts, fmt.Sprintf("pad=%s", formatNumber(node.PadPx)))
		}
		if node.Layout == LayoutGrid && node.GridCols != 0 {
			parts = append(parts, fmt.Sprintf("cols=%d", node.GridCols))
		}
		fmt.Fprintf(&e.buf, "%slayout: %s\n", ind, strings.Join(parts, " "))
	}
	for _, c := range node.Constraints {
		if c.Kind == ConstraintPosition {
			fmt.Fprintf(&e.buf, "%sx: %s\n", ind, formatNumber(c.X))
			fmt.Fprintf(&e.buf, "%sy: %s\n", ind, formatNumber(c.Y))
		}
	}
}

func (e *emitter) emitAnim(a Animation, depth int) {
	ind := e.indent(depth)
	fmt.Fprintf(&e.buf, "%swhen: %s {\n", ind, a.Trigger)
	inner := e.indent(depth + 1)
	order := a.propOrder
	if len(order) == 0 {
		order = defaultAnimPropOrder()
	}
	for _, key := range order {
		switch key {
		case "fill":
			if a.Fill != nil {
				fmt.Fprintf(&e.buf, "%sfill: %s%s\n", inner, formatPaint(*a.Fill), paintHint(*a.Fill))
			}
		case "opacity":
			if a.Opacity != nil {
				fmt.Fprintf(&e.buf, "%sopacity: %s\n", inner, formatNumber(*a.Opacity))
			}
		case "scale":
			if a.Scale != nil {
				fmt.Fprintf(&e.buf, "%sscale: %s\n", inner, formatNumber(*a.Scale))
			}
		case "rotate":
			if a.Rotate != nil {
				fmt.Fprintf(&e.buf, "%srotate: %s\n", inner, formatNumber(*a.Rotate))
			}
		case "stroke_width":
			if a.StrokeWidth != nil {
				fmt.Fprintf(&e.buf, "%sstroke_width: %s\n", inner, formatNumber(*a.StrokeWidth))
			}
		case "ease":
			if a.Ease != "" {
				if a.DurationMS != 0 {
					fmt.Fprintf(&e.buf, "%sease: %s %d\n", inner, a.Ease, a.DurationMS)
				} else {
					fmt.Fprintf(&e.buf, "%sease: %s\n", inner, a.Ease)
				}
			}
		}
	}
	e.buf.WriteString(ind)
	e.buf.WriteString("}\n")
}

func defaultAnimPropOrder() []string {
	return []string{"fill", "opacity", "scale", "rotate", "stroke_width", "ease"}
}

func (e *emitter) emitTopLevelEdges() {
	for _, edge := range e.g.Edges {
		e.emitEdge(edge, 0)
	}
}

func (e *emitter) emitEdge(edge *Edge, depth int) {
	ind := e.indent(depth)
	for _, c := range edge.Comments {
		e.buf.WriteString(ind)
		e.buf.WriteString(c)
		e.buf.WriteString("\n")
	}
	e.buf.WriteString(ind)
	e.buf.WriteString("edge")
	if edge.ID != intern.Invalid {
		fmt.Fprintf(&e.buf, " %s", e.g.Interner.String(edge.ID))
	}
	e.buf.WriteString(" {\n")
	inner := e.indent(depth + 1)
	if e.opts.Spec {
		e.emitSpec(edge.Annotations, depth+1)
	}
	fmt.Fprintf(&e.buf, "%sfrom: %s\n", inner, e.formatAnchor(edge.From))
	fmt.Fprintf(&e.buf, "%sto: %s\n", inner, e.formatAnchor(edge.To))
	if edge.Arrow != ArrowEnd {
		fmt.Fprintf(&e.buf, "%sarrow: %s\n", inner, arrowName(edge.Arrow))
	}
	if edge.Curve != CurveStraight {
		fmt.Fprintf(&e.buf, "%scurve: %s\n", inner, curveName(edge.Curve))
	}
	if edge.Stroke != nil {
		if edge.StrokeWidth != nil {
			fmt.Fprintf(&e.buf, "%sstroke: %s %s%s\n", inner, formatPaint(*edge.Stroke), formatNumber(*edge.StrokeWidth), paintHint(*edge.Stroke))
		} else {
			fmt.Fprintf(&e.buf, "%sstroke: %s%s\n", inner, formatPaint(*edge.Stroke), paintHint(*edge.Stroke))
		}
	}
	if edge.HasLabel {
		fmt.Fprintf(&e.buf, "%slabel: %q\n", inner, edge.Label)
	}
	if edge.LabelOffsetX != 0 || edge.LabelOffsetY != 0 {
		fmt.Fprintf(&e.buf, "%slabel_offset: %s, %s\n", inner, formatNumber(edge.LabelOffsetX), formatNumber(edge.LabelOffsetY))
	}
	if edge.Flow != nil {
		fmt.Fprintf(&e.buf, "%sflow: %s %d\n", inner, edge.Flow.Style, edge.Flow.DurationMS)
	}
	for _, t := range edge.Triggers {
		e.emitAnim(t, depth+1)
	}
	if edge.ChildLabel != nil {
		e.emitDetachedText(edge.ChildLabel, depth+1)
	}
	e.buf.WriteString(ind)
	e.buf.WriteString("}\n")
}

// emitDetachedText writes an edge's inline text label. The label is not
// part of the containment tree, so it is rendered directly from the
// node value rather than through a graph handle.
func (e *emitter) emitDetachedText(node *SceneNode, depth int) {
	ind := e.indent(depth)
	e.buf.WriteString(ind)
	e.buf.WriteString("text ")
	if node.ID != intern.Invalid {
		fmt.Fprintf(&e.buf, "@%s ", e.g.Interner.String(node.ID))
	}
	if e.opts.TextContent && node.Style.Text != nil {
		fmt.Fprintf(&e.buf, "%q ", *node.Style.Text)
	}
	e.buf.WriteString("{\n")
	if e.opts.Style {
		e.emitStyleBody(node.Style, node, depth+1)
	}
	if e.opts.SizeLayout {
		e.emitSizeLayout(node, depth+1)
	}
	e.buf.WriteString(ind)
	e.buf.WriteString("}\n")
}

func (e *emitter) formatAnchor(a Anchor) string {
	if a.IsFree {
		return fmt.Sprintf("(%s, %s)", formatNumber(a.X), formatNumber(a.Y))
	}
	return "@" + e.g.Interner.String(a.NodeID)
}

// hasConstraintArrows reports whether any named node carries a
// non-Position constraint, i.e. whether the Constraints section will
// produce output.
func hasConstraintArrows(g *SceneGraph) bool {
	found := false
	g.Walk(func(h Handle, n *SceneNode) {
		if n.ID == intern.Invalid {
			return
		}
		for _, c := range n.Constraints {
			if c.Kind != ConstraintPosition {
				found = true
			}
		}
	})
	return found
}

// emitConstraintArrows writes every non-Position constraint as a
// top-level `@id -> kind: args` statement. Position constraints are
// always inline (emitSizeLayout), never emitted here.
func (e *emitter) emitConstraintArrows() {
	var wrote bool
	e.g.Walk(func(h Handle, n *SceneNode) {
		if n.ID == intern.Invalid {
			return
		}
		for _, c := range n.Constraints {
			if c.Kind == ConstraintPosition {
				continue
			}
			fmt.Fprintf(&e.buf, "@%s -> %s\n", e.g.Interner.String(n.ID), e.formatConstraintArgs(c))
			wrote = true
		}
	})
	if wrote {
		e.buf.WriteString("\n")
	}
}

func (e *emitter) formatConstraintArgs(c Constraint) string {
	switch c.Kind {
	case ConstraintCenterIn:
		target := "canvas"
		if c.Target != CanvasTarget {
			target = e.g.Interner.String(c.Target)
		}
		return fmt.Sprintf("center_in: %s", target)
	case ConstraintOffset:
		from := "canvas"
		if c.From != CanvasTarget {
			from = e.g.Interner.String(c.From)
		}
		return fmt.Sprintf("offset: %s, %s, %s", from, formatNumber(c.DX), formatNumber(c.DY))
	case ConstraintFillParent:
		if c.Pad != 0 {
			return fmt.Sprintf("fill_parent: pad=%s", formatNumber(c.Pad))
		}
		return "fill_parent:"
	}
	return ""
}

// ---------------------------------------------------------------------
// scalar formatting
// ---------------------------------------------------------------------

// formatNumber rounds to 2 decimal places and trims trailing zeros.
func formatNumber(v float64) string {
	rounded := math.Round(v*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// formatColor renders the canonical uppercase hex form. Palette names
// never appear as the value itself; they ride along as a trailing hint
// fragment where the line shape allows one (see colorHint).
func formatColor(c Color) string {
	return c.String()
}

// colorHint returns the trailing "# name" fragment for a line-end color
// value whose hex matches one of the palette entries, or "". Never used
// inside parenthesized tuples, where a trailing fragment would corrupt
// the value.
func colorHint(c Color) string {
	if name, ok := c.NamedHint(); ok {
		return " # " + name
	}
	return ""
}

func formatPaint(p Paint) string {
	switch p.Kind {
	case PaintLinearGradient:
		return fmt.Sprintf("linear(%s)", p.Raw)
	case PaintRadialGradient:
		return fmt.Sprintf("radial(%s)", p.Raw)
	default:
		return formatColor(p.Solid)
	}
}

func paintHint(p Paint) string {
	if p.Kind == PaintSolid {
		return colorHint(p.Solid)
	}
	return ""
}

func alignName(a TextAlign) string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return ""
}

func valignName(v TextVAlign) string {
	switch v {
	case VAlignTop:
		return "top"
	case VAlignMiddle:
		return "middle"
	case VAlignBottom:
		return "bottom"
	}
	return ""
}

func arrowName(a ArrowKind) string {
	switch a {
	case ArrowNone:
		return "none"
	case ArrowStart:
		return "start"
	case ArrowBoth:
		return "both"
	default:
		return "end"
	}
}

func curveName(c CurveKind) string {
	switch c {
	case CurveSmooth:
		return "smooth"
	case CurveStep:
		return "step"
	default:
		return "straight"
	}
}
