package fd

import (
	"strconv"
	"strings"

	tdstrconv "github.com/tdewolff/parse/v2/strconv"

	"github.com/fastdraft/fd/internal/intern"
	"github.com/fastdraft/fd/internal/loc"
)

// canonicalPropertyKey folds the accepted property aliases onto one
// canonical spelling, so the rest of the parser only has one case to
// handle per concern.
func canonicalPropertyKey(k string) string {
	switch k {
	case "background", "color", "bg":
		return "fill"
	case "rounded", "radius":
		return "corner"
	case "strokewidth":
		return "stroke_width"
	case "absolute":
		return "position"
	default:
		return k
	}
}

// applyStyleKey handles the property keys that live on Style, shared by
// theme bodies and node bodies. Returns false if key isn't a style
// property, leaving p.tok untouched for the caller to handle otherwise.
func (p *Parser) applyStyleKey(s *Style, key string) bool {
	switch canonicalPropertyKey(key) {
	case "fill":
		s.Fill = p.parsePaintValue()
	case "stroke":
		s.Stroke = p.parsePaintValue()
	case "stroke_width":
		v := p.parseNumberValue()
		s.StrokeWidth = &v
	case "corner":
		v := p.parseNumberValue()
		s.CornerRadius = &v
	case "opacity":
		v := p.parseNumberValue()
		s.Opacity = &v
	case "shadow":
		s.Shadow = p.parseShadowValue()
	case "font":
		p.parseFontShorthand(s)
	case "align":
		s.TextAlign = p.parseAlignValue()
	case "valign":
		s.TextVAlign = p.parseValignValue()
	case "text":
		if p.tok.Type == TokenString {
			t := p.tok.Text
			s.Text = &t
			p.advance()
		} else {
			p.skipUnknownValue()
		}
	default:
		return false
	}
	return true
}

func (p *Parser) applyStyleProperty(s *Style, key string) {
	if !p.applyStyleKey(s, key) {
		p.skipUnknownValue()
	}
}

// applyNodeProperty dispatches a "key: value" (or "key=value") node-body
// statement, falling back to the node's UnknownProps bag for anything it
// doesn't recognize.
func (p *Parser) applyNodeProperty(node *SceneNode, rawKey string) {
	key := canonicalPropertyKey(rawKey)
	if p.applyStyleKey(&node.Style, key) {
		if key == "fill" {
			p.parseShorthandTail(node)
		}
		return
	}
	switch key {
	case "w":
		node.W = p.parseNumberValue()
		node.HasW = true
	case "h":
		node.H = p.parseNumberValue()
		node.HasH = true
	case "clip":
		node.Clip = p.parseBoolValue()
	case "layout":
		p.parseLayoutValue(node)
	case "gap":
		node.GapPx = p.parseNumberValue()
	case "pad":
		node.PadPx = p.parseNumberValue()
	case "cols":
		node.GridCols = int(p.parseNumberValue())
	case "x":
		c := p.getOrCreatePositionConstraint(node)
		c.X = p.parseNumberValue()
	case "y":
		c := p.getOrCreatePositionConstraint(node)
		c.Y = p.parseNumberValue()
	case "position":
		args := p.parseArgList()
		p.applyPositionArgs(node, args)
	case "center_in":
		args := p.parseArgList()
		p.applyCenterInArgs(node, args)
	case "offset":
		args := p.parseArgList()
		p.applyOffsetArgs(node, args)
	case "fill_parent":
		args := p.parseArgList()
		p.applyFillParentArgs(node, args)
	default:
		val := p.captureRawValue()
		node.recordUnknown(rawKey, val)
		p.warnAt(string(loc.UnknownProperty), p.tok, "unknown property %q", rawKey)
	}
}

// parseShorthandTail reads the trailing `corner=N shadow=(...)` pairs
// that can follow a `bg:`/`fill:` value on the same logical statement,
// expanding the background shorthand into its separate properties.
func (p *Parser) parseShorthandTail(node *SceneNode) {
	for p.tok.Type == TokenIdent && p.peekIsEquals() {
		key := p.tok.Text
		p.advance() // key
		p.advance() // '='
		switch canonicalPropertyKey(key) {
		case "corner":
			v := p.parseNumberValue()
			node.Style.CornerRadius = &v
		case "shadow":
			node.Style.Shadow = p.parseShadowValue()
		case "opacity":
			v := p.parseNumberValue()
			node.Style.Opacity = &v
		default:
			p.skipUnknownValue()
		}
	}
}

func (p *Parser) peekIsEquals() bool {
	n := p.peek()
	return n.Type == TokenSymbol && n.Text == "="
}

func (p *Parser) getOrCreatePositionConstraint(node *SceneNode) *Constraint {
	for i := range node.Constraints {
		if node.Constraints[i].Kind == ConstraintPosition {
			return &node.Constraints[i]
		}
	}
	node.Constraints = append(node.Constraints, Constraint{Kind: ConstraintPosition})
	return &node.Constraints[len(node.Constraints)-1]
}

// ---------------------------------------------------------------------
// scalar value parsers
// ---------------------------------------------------------------------

// parseFloatToken strips the optional "px" unit suffix and parses the
// remaining digits with tdewolff/parse/v2's byte-oriented float
// scanner. strconv.ParseFloat is kept only as a fallback for forms that
// scanner doesn't accept outright (e.g. a leading "+").
func parseFloatToken(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if v, n := tdstrconv.ParseFloat([]byte(s)); n == len(s) && n > 0 {
		return v, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func (p *Parser) parseNumberValue() float64 {
	if p.tok.Type != TokenNumber {
		p.errAt(string(loc.InvalidNumber), p.tok, "expected number, got %q", p.tok.Text)
		return 0
	}
	v, ok := parseFloatToken(p.tok.Text)
	if !ok {
		p.errAt(string(loc.InvalidNumber), p.tok, "invalid number %q", p.tok.Text)
	}
	p.advance()
	return v
}

func (p *Parser) parseBoolValue() bool {
	if p.tok.Type == TokenIdent && (p.tok.Text == "true" || p.tok.Text == "false") {
		v := p.tok.Text == "true"
		p.advance()
		return v
	}
	p.errAt(string(loc.InvalidEnum), p.tok, "expected true/false, got %q", p.tok.Text)
	p.skipUnknownValue()
	return false
}

func (p *Parser) parseAlignValue() TextAlign {
	defer p.skipPastSingleValue()
	switch p.tok.Text {
	case "left":
		return AlignLeft
	case "center":
		return AlignCenter
	case "right":
		return AlignRight
	}
	p.errAt(string(loc.InvalidEnum), p.tok, "invalid align value %q", p.tok.Text)
	return AlignUnset
}

func (p *Parser) parseValignValue() TextVAlign {
	defer p.skipPastSingleValue()
	switch p.tok.Text {
	case "top":
		return VAlignTop
	case "middle":
		return VAlignMiddle
	case "bottom":
		return VAlignBottom
	}
	p.errAt(string(loc.InvalidEnum), p.tok, "invalid valign value %q", p.tok.Text)
	return VAlignUnset
}

// skipPastSingleValue advances once if the current token looks like a
// bare enum word, used by the parseXValue helpers above via defer so the
// error-reporting branch still sees the offending token.
func (p *Parser) skipPastSingleValue() {
	if p.tok.Type == TokenIdent {
		p.advance()
	}
}

func (p *Parser) parseFontShorthand(s *Style) {
	// font: "Family" 600 14
	for {
		switch p.tok.Type {
		case TokenString:
			f := p.tok.Text
			s.FontFamily = &f
			p.advance()
		case TokenIdent:
			if w, ok := ParseFontWeight(p.tok.Text); ok {
				s.FontWeight = &w
				p.advance()
				continue
			}
			return
		case TokenNumber:
			v, ok := parseFloatToken(p.tok.Text)
			if ok {
				if w, wok := ParseFontWeight(p.tok.Text); wok {
					s.FontWeight = &w
				} else {
					s.FontSize = &v
				}
			}
			p.advance()
		default:
			return
		}
	}
}

func (p *Parser) parsePaintValue() *Paint {
	if p.tok.Type == TokenIdent && (p.tok.Text == "linear" || p.tok.Text == "radial") {
		kind := PaintLinearGradient
		if p.tok.Text == "radial" {
			kind = PaintRadialGradient
		}
		p.advance()
		raw := ""
		if p.isSymbol("(") {
			raw = p.rawParen()
		}
		return &Paint{Kind: kind, Raw: raw, Stops: parseGradientStops(raw)}
	}
	if p.tok.Type == TokenIdent {
		if c, ok := ParseColor(p.tok.Text); ok {
			p.advance()
			return &Paint{Kind: PaintSolid, Solid: c}
		}
		p.errAt(string(loc.InvalidColor), p.tok, "invalid color %q", p.tok.Text)
		p.advance()
		return nil
	}
	p.errAt(string(loc.InvalidColor), p.tok, "expected color value")
	return nil
}

// parseGradientStops makes a best-effort parse of "color@offset, ..." so
// introspection tools can read stops; the emitter always falls back to
// Raw, so a failure here never affects round-trip fidelity.
func parseGradientStops(raw string) []GradientStop {
	if raw == "" {
		return nil
	}
	var stops []GradientStop
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		at := strings.IndexByte(part, '@')
		if at < 0 {
			continue
		}
		c, ok := ParseColor(strings.TrimSpace(part[:at]))
		off, err := strconv.ParseFloat(strings.TrimSpace(part[at+1:]), 64)
		if !ok || err != nil {
			continue
		}
		stops = append(stops, GradientStop{Color: c, Offset: off})
	}
	return stops
}

func (p *Parser) parseShadowValue() *Shadow {
	if !p.isSymbol("(") {
		p.errAt(string(loc.InvalidEnum), p.tok, "expected '(' to start shadow value")
		p.skipUnknownValue()
		return nil
	}
	tok := p.tok
	raw := p.rawParen()
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		p.errAt(string(loc.InvalidEnum), tok, "shadow expects 4 values (ox, oy, blur, color)")
		return nil
	}
	ox, ok1 := parseFloatToken(parts[0])
	oy, ok2 := parseFloatToken(parts[1])
	bl, ok3 := parseFloatToken(parts[2])
	col, ok4 := ParseColor(parts[3])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		p.errAt(string(loc.InvalidEnum), tok, "invalid shadow value %q", raw)
		return nil
	}
	return &Shadow{OffsetX: ox, OffsetY: oy, Blur: bl, Color: col}
}

// rawParen assumes p.tok is the opening '(' and returns the text between
// the matching parens verbatim (tracking nesting), leaving p.tok
// positioned just after the closing ')'. Operating on raw bytes instead
// of reassembling from tokens preserves exact spacing, which matters for
// round-trip fidelity on gradient/shadow arguments.
func (p *Parser) rawParen() string {
	start := p.tok.Loc.Start
	src := p.tz.src
	depth := 0
	i := start
	for i < len(src) {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				i++
				goto done
			}
		}
		i++
	}
done:
	inner := ""
	if i-1 > start+1 {
		inner = string(src[start+1 : i-1])
	}
	p.tz.pos = i
	p.advance()
	return strings.TrimSpace(inner)
}

func (p *Parser) captureRawValue() string {
	var parts []string
	for {
		if p.tok.Type == TokenEOF || p.isSymbol("}") || p.tok.Type == TokenAt {
			break
		}
		if p.tok.Type == TokenIdent && (statementKeywords[p.tok.Text] || p.peekIsColon()) {
			break
		}
		parts = append(parts, p.tok.Text)
		p.advance()
	}
	return strings.Join(parts, " ")
}

// ---------------------------------------------------------------------
// arg-list values (center_in / offset / fill_parent / layout continuation)
// ---------------------------------------------------------------------

type arg struct {
	Key    string
	Value  Token
	Raw    string
	HasRaw bool
}

// parseArgList reads a comma- or space-separated list of bare values or
// `key=value` pairs until a statement boundary, used by the constraint
// and layout properties whose argument shape varies.
func (p *Parser) parseArgList() []arg {
	var args []arg
	for {
		switch {
		case p.tok.Type == TokenEOF, p.isSymbol("}"), p.tok.Type == TokenAt:
			return args
		case p.isSymbol(","):
			p.advance()
		case p.tok.Type == TokenIdent:
			if statementKeywords[p.tok.Text] || p.peekIsColon() {
				return args
			}
			key := p.tok.Text
			p.advance()
			if p.isSymbol("=") {
				p.advance()
				if p.isSymbol("(") {
					raw := p.rawParen()
					args = append(args, arg{Key: key, Raw: raw, HasRaw: true})
				} else {
					args = append(args, arg{Key: key, Value: p.tok})
					p.advance()
				}
			} else {
				args = append(args, arg{Value: Token{Type: TokenIdent, Text: key}})
			}
		case p.tok.Type == TokenNumber || p.tok.Type == TokenString:
			args = append(args, arg{Value: p.tok})
			p.advance()
		default:
			return args
		}
	}
}

func argTarget(g *SceneGraph, a arg) intern.ID {
	name := a.Value.Text
	if name == "canvas" {
		return CanvasTarget
	}
	return g.Interner.Intern(name)
}

func (p *Parser) applyCenterInArgs(node *SceneNode, args []arg) {
	if len(args) == 0 {
		p.errAt(string(loc.InvalidEnum), p.tok, "center_in requires a target")
		return
	}
	node.Constraints = append(node.Constraints, Constraint{
		Kind:   ConstraintCenterIn,
		Target: argTarget(p.graph, args[0]),
	})
}

func (p *Parser) applyOffsetArgs(node *SceneNode, args []arg) {
	c := Constraint{Kind: ConstraintOffset}
	positional := 0
	for _, a := range args {
		switch a.Key {
		case "from":
			c.From = argTarget(p.graph, a)
		case "dx":
			v, _ := parseFloatToken(a.Value.Text)
			c.DX = v
		case "dy":
			v, _ := parseFloatToken(a.Value.Text)
			c.DY = v
		case "":
			switch positional {
			case 0:
				c.From = argTarget(p.graph, a)
			case 1:
				v, _ := parseFloatToken(a.Value.Text)
				c.DX = v
			case 2:
				v, _ := parseFloatToken(a.Value.Text)
				c.DY = v
			}
			positional++
		}
	}
	node.Constraints = append(node.Constraints, c)
}

func (p *Parser) applyFillParentArgs(node *SceneNode, args []arg) {
	c := Constraint{Kind: ConstraintFillParent}
	for _, a := range args {
		if a.Key == "pad" || (a.Key == "" && len(args) == 1) {
			v, _ := parseFloatToken(a.Value.Text)
			c.Pad = v
		}
	}
	node.Constraints = append(node.Constraints, c)
}

func (p *Parser) applyPositionArgs(node *SceneNode, args []arg) {
	c := p.getOrCreatePositionConstraint(node)
	for _, a := range args {
		switch a.Key {
		case "x":
			v, _ := parseFloatToken(a.Value.Text)
			c.X = v
		case "y":
			v, _ := parseFloatToken(a.Value.Text)
			c.Y = v
		}
	}
}

func (p *Parser) parseLayoutValue(node *SceneNode) {
	args := p.parseArgList()
	for i, a := range args {
		if i == 0 && a.Key == "" {
			switch a.Value.Text {
			case "column":
				node.Layout = LayoutColumn
			case "row":
				node.Layout = LayoutRow
			case "grid":
				node.Layout = LayoutGrid
			default:
				node.Layout = LayoutFree
			}
			continue
		}
		v, _ := parseFloatToken(a.Value.Text)
		switch a.Key {
		case "gap":
			node.GapPx = v
		case "pad":
			node.PadPx = v
		case "cols":
			node.GridCols = int(v)
		}
	}
}

// ---------------------------------------------------------------------
// spec / use
// ---------------------------------------------------------------------

func (p *Parser) parseSpec() []Annotation {
	if p.tok.Type == TokenString {
		t := p.tok.Text
		p.advance()
		return []Annotation{{Kind: AnnotationDescription, Text: t}}
	}
	if !p.expectSymbol("{") {
		p.errAt(string(loc.UnclosedBrace), p.tok, "expected '{' or a string after 'spec'")
		return nil
	}
	var out []Annotation
	for {
		if p.tok.Type == TokenEOF {
			p.errAt(string(loc.UnclosedBrace), p.tok, "unclosed '{'")
			return out
		}
		if p.expectSymbol("}") {
			return out
		}
		if p.tok.Type == TokenString {
			t := p.tok.Text
			p.advance()
			out = append(out, Annotation{Kind: AnnotationDescription, Text: t})
			continue
		}
		if p.tok.Type != TokenIdent {
			p.errAt(string(loc.UnexpectedToken), p.tok, "unexpected token %q in spec block", p.tok.Text)
			p.advance()
			continue
		}
		kind, ok := specAnnotationKind(p.tok.Text)
		if !ok {
			p.errAt(string(loc.UnknownKeyword), p.tok, "unknown spec key %q", p.tok.Text)
			p.advance()
			p.skipUnknownValue()
			continue
		}
		p.advance()
		if !p.expectSymbol(":") {
			p.skipUnknownValue()
			continue
		}
		out = append(out, Annotation{Kind: kind, Text: p.captureRawValue()})
	}
}

func specAnnotationKind(word string) (AnnotationKind, bool) {
	switch word {
	case "accept":
		return AnnotationAccept, true
	case "status":
		return AnnotationStatus, true
	case "priority":
		return AnnotationPriority, true
	case "tag":
		return AnnotationTag, true
	}
	return 0, false
}

func (p *Parser) parseUse(node *SceneNode) {
	if !p.expectSymbol(":") {
		p.errAt(string(loc.UnexpectedToken), p.tok, "expected ':' after 'use'")
		return
	}
	for {
		if p.tok.Type != TokenIdent {
			break
		}
		ref := parseThemeRefString(p.graph.Interner, p.tok.Text)
		node.UseStyles = append(node.UseStyles, ref)
		p.advance()
		if p.isSymbol(",") {
			p.advance()
			continue
		}
		break
	}
}

func parseThemeRefString(interner *intern.Table, s string) ThemeRef {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return ThemeRef{Namespace: interner.Intern(s[:i]), Name: interner.Intern(s[i+1:])}
	}
	return ThemeRef{Namespace: intern.Invalid, Name: interner.Intern(s)}
}
