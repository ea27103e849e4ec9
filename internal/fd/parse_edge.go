package fd

import (
	"strings"

	"github.com/fastdraft/fd/internal/loc"
)

func (p *Parser) parseAnchor() Anchor {
	if p.tok.Type == TokenAt {
		name := p.tok.Text
		p.advance()
		return Anchor{NodeID: p.graph.Interner.Intern(name)}
	}
	if p.isSymbol("(") {
		raw := p.rawParen()
		parts := strings.Split(raw, ",")
		if len(parts) == 2 {
			x, _ := parseFloatToken(parts[0])
			y, _ := parseFloatToken(parts[1])
			return Anchor{IsFree: true, X: x, Y: y}
		}
	}
	p.errAt(string(loc.UnexpectedToken), p.tok, "expected @node or (x, y) anchor")
	p.skipUnknownValue()
	return Anchor{}
}

func (p *Parser) parseArrowKind() ArrowKind {
	defer p.skipPastSingleValue()
	switch p.tok.Text {
	case "none":
		return ArrowNone
	case "start":
		return ArrowStart
	case "end":
		return ArrowEnd
	case "both":
		return ArrowBoth
	}
	p.errAt(string(loc.InvalidEnum), p.tok, "invalid arrow value %q", p.tok.Text)
	return ArrowEnd
}

func (p *Parser) parseCurveKind() CurveKind {
	defer p.skipPastSingleValue()
	switch p.tok.Text {
	case "straight":
		return CurveStraight
	case "smooth":
		return CurveSmooth
	case "step":
		return CurveStep
	}
	p.errAt(string(loc.InvalidEnum), p.tok, "invalid curve value %q", p.tok.Text)
	return CurveStraight
}

// parseEdge consumes an `edge [id] { ... }` block. Edges are a flat
// struct rather than a SceneNode, so the body loop is hand-rolled
// instead of reusing parseNodeBody.
func (p *Parser) parseEdge() *Edge {
	p.advance() // "edge"
	edge := &Edge{}
	if p.tok.Type == TokenAt || p.tok.Type == TokenIdent {
		edge.ID = p.graph.Interner.Intern(p.tok.Text)
		p.advance()
	}
	edge.Comments = p.flushComments()
	if !p.expectSymbol("{") {
		p.errAt(string(loc.UnclosedBrace), p.tok, "expected '{' to open edge body")
		return edge
	}
	for {
		if p.tok.Type == TokenEOF {
			p.errAt(string(loc.UnclosedBrace), p.tok, "unclosed '{'")
			return edge
		}
		if p.expectSymbol("}") {
			return edge
		}
		if p.tok.Type != TokenIdent {
			p.errAt(string(loc.UnexpectedToken), p.tok, "unexpected token %q in edge body", p.tok.Text)
			p.advance()
			continue
		}
		key := p.tok.Text
		switch key {
		case "from":
			p.advance()
			p.expectSymbol(":")
			edge.From = p.parseAnchor()
		case "to":
			p.advance()
			p.expectSymbol(":")
			edge.To = p.parseAnchor()
		case "arrow":
			p.advance()
			p.expectSymbol(":")
			edge.Arrow = p.parseArrowKind()
		case "curve":
			p.advance()
			p.expectSymbol(":")
			edge.Curve = p.parseCurveKind()
		case "stroke":
			p.advance()
			p.expectSymbol(":")
			edge.Stroke = p.parsePaintValue()
			if p.tok.Type == TokenNumber {
				v := p.parseNumberValue()
				edge.StrokeWidth = &v
			}
		case "label":
			p.advance()
			p.expectSymbol(":")
			if p.tok.Type == TokenString {
				edge.Label = p.tok.Text
				edge.HasLabel = true
				p.advance()
			} else {
				p.skipUnknownValue()
			}
		case "label_offset":
			p.advance()
			p.expectSymbol(":")
			args := p.parseArgList()
			if len(args) >= 2 {
				x, _ := parseFloatToken(args[0].Value.Text)
				y, _ := parseFloatToken(args[1].Value.Text)
				edge.LabelOffsetX, edge.LabelOffsetY = x, y
			}
		case "flow":
			p.advance()
			p.expectSymbol(":")
			style := ""
			if p.tok.Type == TokenIdent {
				style = p.tok.Text
				p.advance()
			}
			dur := 0
			if p.tok.Type == TokenNumber {
				dur = int(p.parseNumberValue())
			}
			edge.Flow = &FlowAnimation{Style: style, DurationMS: dur}
		case "when", "anim":
			edge.Triggers = append(edge.Triggers, p.parseAnim())
		case "spec":
			p.advance()
			edge.Annotations = append(edge.Annotations, p.parseSpec()...)
		case "text":
			edge.ChildLabel = p.parseDetachedTextNode()
		default:
			p.advance()
			p.warnAt(string(loc.UnknownProperty), p.tok, "unknown edge property %q", key)
			p.skipUnknownValue()
		}
	}
}

// parseDetachedTextNode parses a `text { ... }` block used as an edge's
// inline child label. The result is not attached to the graph's
// containment tree (edges aren't nodes), so it carries no live Handle.
func (p *Parser) parseDetachedTextNode() *SceneNode {
	p.advance() // "text"
	node := &SceneNode{Handle: NoHandle, Kind: KindText}
	if p.tok.Type == TokenAt {
		node.ID = p.graph.Interner.Intern(p.tok.Text)
		p.advance()
	}
	if p.tok.Type == TokenString {
		t := p.tok.Text
		node.Style.Text = &t
		p.advance()
	}
	if !p.expectSymbol("{") {
		p.errAt(string(loc.UnclosedBrace), p.tok, "expected '{' to open text body")
		return node
	}
	for {
		if p.tok.Type == TokenEOF {
			p.errAt(string(loc.UnclosedBrace), p.tok, "unclosed '{'")
			return node
		}
		if p.expectSymbol("}") {
			return node
		}
		if p.tok.Type != TokenIdent {
			p.errAt(string(loc.UnexpectedToken), p.tok, "unexpected token %q", p.tok.Text)
			p.advance()
			continue
		}
		key := p.tok.Text
		p.advance()
		if p.expectSymbol(":") || p.isSymbol("=") {
			if p.isSymbol("=") {
				p.advance()
			}
			p.applyNodeProperty(node, key)
		} else {
			p.skipUnknownValue()
		}
	}
}

// parseAnim consumes a `when:`/`anim:` trigger block, shared by node and
// edge bodies.
func (p *Parser) parseAnim() Animation {
	p.advance() // "when"/"anim"
	p.expectSymbol(":")
	trigger := ""
	if p.tok.Type == TokenIdent {
		trigger = p.tok.Text
		p.advance()
	}
	a := Animation{Trigger: trigger}
	if !p.expectSymbol("{") {
		p.errAt(string(loc.UnclosedBrace), p.tok, "expected '{' to open animation body")
		return a
	}
	for {
		if p.tok.Type == TokenEOF {
			p.errAt(string(loc.UnclosedBrace), p.tok, "unclosed '{'")
			return a
		}
		if p.expectSymbol("}") {
			return a
		}
		if p.tok.Type != TokenIdent {
			p.errAt(string(loc.UnexpectedToken), p.tok, "unexpected token %q in animation body", p.tok.Text)
			p.advance()
			continue
		}
		key := p.tok.Text
		p.advance()
		if !p.expectSymbol(":") {
			p.skipUnknownValue()
			continue
		}
		a.propOrder = append(a.propOrder, key)
		switch canonicalPropertyKey(key) {
		case "fill":
			a.Fill = p.parsePaintValue()
		case "opacity":
			v := p.parseNumberValue()
			a.Opacity = &v
		case "scale":
			v := p.parseNumberValue()
			a.Scale = &v
		case "rotate":
			v := p.parseNumberValue()
			a.Rotate = &v
		case "stroke_width":
			v := p.parseNumberValue()
			a.StrokeWidth = &v
		case "ease":
			if p.tok.Type == TokenIdent {
				a.Ease = p.tok.Text
				p.advance()
			}
			if p.tok.Type == TokenNumber {
				a.DurationMS = int(p.parseNumberValue())
			}
		case "duration":
			a.DurationMS = int(p.parseNumberValue())
		default:
			p.skipUnknownValue()
		}
	}
}

// parseConstraintArrow handles the `@id -> kind: args` form, valid both
// at document level and inside a node body. Position constraints
// normalize onto the target's inline x/y fields since the emitter never
// prints position as an arrow.
func (p *Parser) parseConstraintArrow() {
	nameTok := p.tok
	name := p.tok.Text
	p.advance() // @name
	if p.tok.Type != TokenArrow {
		p.errAt(string(loc.UnexpectedToken), p.tok, "expected '->' after %q", name)
		return
	}
	p.advance() // ->
	if p.tok.Type != TokenIdent {
		p.errAt(string(loc.UnexpectedToken), p.tok, "expected constraint kind after '->'")
		return
	}
	kindWord := p.tok.Text
	p.advance()
	if !p.expectSymbol(":") {
		p.errAt(string(loc.UnexpectedToken), p.tok, "expected ':' after constraint kind")
	}
	args := p.parseArgList()

	target, ok := p.graph.FindByIDString(name)
	if !ok {
		p.warnAt(string(loc.UnknownId), nameTok, "unknown node id %q", name)
		return
	}
	node := p.graph.Node(target)
	switch canonicalPropertyKey(kindWord) {
	case "position":
		p.applyPositionArgs(node, args)
	case "center_in":
		p.applyCenterInArgs(node, args)
	case "offset":
		p.applyOffsetArgs(node, args)
	case "fill_parent":
		p.applyFillParentArgs(node, args)
	default:
		p.errAt(string(loc.UnknownKeyword), nameTok, "unknown constraint kind %q", kindWord)
	}
}
