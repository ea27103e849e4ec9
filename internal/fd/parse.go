package fd

import (
	"github.com/fastdraft/fd/internal/handler"
	"github.com/fastdraft/fd/internal/intern"
	"github.com/fastdraft/fd/internal/loc"
)

// Parser is a hand-written recursive-descent parser over the token
// stream from token.go. It never panics on malformed input: every
// unexpected token becomes a diagnostic on h and parsing continues on a
// best-effort basis so IDE-style tooling still gets a partial graph.
type Parser struct {
	tz    *tokenizer
	tok   Token
	graph *SceneGraph
	h     *handler.Handler

	pendingComments []string
}

// Parse turns .fd text into a SceneGraph. Errors and warnings are
// collected on the returned Handler rather than returned directly, so
// one pass surfaces every problem in the document at once.
func Parse(text string) (*SceneGraph, *handler.Handler) {
	g := NewSceneGraph(nil)
	return g, ParseDocument(text, g)
}

// ParseInto is like Parse but interns against a caller-supplied table.
func ParseInto(text string, interner *intern.Table) (*SceneGraph, *handler.Handler) {
	g := NewSceneGraph(interner)
	return g, ParseDocument(text, g)
}

// ParseDocument parses text into a caller-constructed graph. Embedders
// use this to preconfigure graph settings that affect parsing itself,
// such as RequireSemanticIds, which changes how auto-generated IDs are
// minted while nodes are being inserted.
func ParseDocument(text string, g *SceneGraph) *handler.Handler {
	h := handler.New(text, "<stdin>")
	p := &Parser{tz: newTokenizer([]byte(text)), graph: g, h: h}
	p.advance()
	p.parseDocument()
	return h
}

func (p *Parser) advance() {
	for {
		t := p.tz.Next()
		if t.Type == TokenComment {
			// Section separators and named-color hints are the
			// emitter's own furniture, not document content; swallowing
			// them here keeps them from attaching to the next node and
			// doubling up on re-emit.
			if !isSectionSeparator(t.Text) && !isColorHint(t.Text) {
				p.pendingComments = append(p.pendingComments, t.Text)
			}
			continue
		}
		p.tok = t
		return
	}
}

func (p *Parser) flushComments() []string {
	if len(p.pendingComments) == 0 {
		return nil
	}
	out := p.pendingComments
	p.pendingComments = nil
	return out
}

func (p *Parser) errAt(kind string, tok Token, format string, a ...interface{}) {
	p.h.AppendError(handler.NewRangedError(loc.DiagnosticKind(kind), loc.Range{Loc: tok.Loc, Len: len(tok.Text)}, format, a...))
}

func (p *Parser) warnAt(kind string, tok Token, format string, a ...interface{}) {
	p.h.AppendWarning(handler.NewRangedError(loc.DiagnosticKind(kind), loc.Range{Loc: tok.Loc, Len: len(tok.Text)}, format, a...))
}

func (p *Parser) isSymbol(s string) bool {
	return p.tok.Type == TokenSymbol && p.tok.Text == s
}

func (p *Parser) expectSymbol(s string) bool {
	if p.isSymbol(s) {
		p.advance()
		return true
	}
	return false
}

// peek clones the tokenizer's cursor to look one token ahead without
// consuming it. Safe because tokenizer holds only (src, pos).
func (p *Parser) peek() Token {
	clone := *p.tz
	return clone.Next()
}

var statementKeywords = map[string]bool{
	"spec": true, "use": true, "edge": true, "when": true, "anim": true,
	"import": true, "theme": true, "style": true,
	"rect": true, "ellipse": true, "text": true, "group": true, "frame": true, "path": true,
}

// ---------------------------------------------------------------------
// document / node bodies
// ---------------------------------------------------------------------

func (p *Parser) parseDocument() {
	for p.tok.Type != TokenEOF {
		switch {
		case p.tok.Type == TokenIdent && p.tok.Text == "import":
			p.parseImport()
		case p.tok.Type == TokenIdent && (p.tok.Text == "theme" || p.tok.Text == "style"):
			p.parseTheme()
		case p.tok.Type == TokenIdent && p.tok.Text == "edge":
			p.graph.Edges = append(p.graph.Edges, p.parseEdge())
		case p.tok.Type == TokenIdent:
			if kind, ok := kindFromKeyword(p.tok.Text); ok {
				p.parseNode(RootHandle, kind, true)
			} else {
				p.errAt(string(loc.UnknownKeyword), p.tok, "unknown keyword %q", p.tok.Text)
				p.advance()
			}
		case p.tok.Type == TokenAt:
			if p.peek().Type == TokenArrow {
				p.parseConstraintArrow()
			} else {
				p.parseNode(RootHandle, KindGeneric, false)
			}
		default:
			p.errAt(string(loc.UnexpectedToken), p.tok, "unexpected token %q", p.tok.Text)
			p.advance()
		}
	}
}

func (p *Parser) parseImport() {
	p.advance() // "import"
	if p.tok.Type != TokenString {
		p.errAt(string(loc.InvalidImport), p.tok, "expected import path string")
		return
	}
	path := p.tok.Text
	p.advance()
	if !(p.tok.Type == TokenIdent && p.tok.Text == "as") {
		p.errAt(string(loc.InvalidImport), p.tok, "expected 'as' in import statement")
		return
	}
	p.advance()
	if p.tok.Type != TokenIdent {
		p.errAt(string(loc.InvalidImport), p.tok, "expected namespace identifier")
		return
	}
	ns := p.graph.Interner.Intern(p.tok.Text)
	p.advance()
	p.graph.Imports = append(p.graph.Imports, &Import{Path: path, Namespace: ns})
}

func (p *Parser) parseTheme() {
	p.advance() // "theme"/"style"
	if p.tok.Type != TokenIdent {
		p.errAt(string(loc.UnexpectedToken), p.tok, "expected theme name")
		return
	}
	name := p.tok.Text
	p.advance()
	if !p.expectSymbol("{") {
		p.errAt(string(loc.UnclosedBrace), p.tok, "expected '{' after theme name")
		return
	}
	style := p.parseStyleBody()
	theme := &Theme{Name: p.graph.Interner.Intern(name), Style: style}
	p.graph.SetTheme(name, theme)
}

// parseStyleBody reads style properties until a closing '}', used by
// both theme bodies and (indirectly) node bodies.
func (p *Parser) parseStyleBody() Style {
	var s Style
	for {
		if p.tok.Type == TokenEOF {
			p.errAt(string(loc.UnclosedBrace), p.tok, "unclosed '{'")
			return s
		}
		if p.expectSymbol("}") {
			return s
		}
		if p.tok.Type != TokenIdent {
			p.errAt(string(loc.UnexpectedToken), p.tok, "unexpected token %q in style body", p.tok.Text)
			p.advance()
			continue
		}
		key := p.tok.Text
		p.advance()
		if !p.expectSymbol(":") {
			p.skipUnknownValue()
			continue
		}
		p.applyStyleProperty(&s, key)
	}
}

func (p *Parser) parseNode(parent Handle, kind NodeKind, hasKindKeyword bool) Handle {
	if hasKindKeyword {
		p.advance()
	}
	id := ""
	idTok := p.tok
	if p.tok.Type == TokenAt {
		id = p.tok.Text
		p.advance()
	}
	var inlineText *string
	if p.tok.Type == TokenString {
		t := p.tok.Text
		inlineText = &t
		p.advance()
	}
	comments := p.flushComments()
	if !p.expectSymbol("{") {
		p.errAt(string(loc.UnclosedBrace), p.tok, "expected '{' to open node body")
		return NoHandle
	}
	h, err := p.graph.InsertNode(parent, kind, id)
	if err != nil {
		if dup, ok := err.(*DuplicateIDError); ok {
			p.errAt(string(loc.DuplicateId), idTok, "duplicate node id %q", dup.ID)
		}
		// Recover by inserting with an auto-generated id so the rest of
		// the document still parses into a usable partial graph.
		h, _ = p.graph.InsertNode(parent, kind, "")
	}
	node := p.graph.Node(h)
	node.Comments = comments
	if inlineText != nil && kind == KindText {
		node.Style.Text = inlineText
	}
	p.parseNodeBody(h)
	return h
}

func (p *Parser) parseNodeBody(h Handle) {
	node := p.graph.Node(h)
	for {
		if p.tok.Type == TokenEOF {
			p.errAt(string(loc.UnclosedBrace), p.tok, "unclosed '{'")
			return
		}
		if p.expectSymbol("}") {
			return
		}
		switch {
		case p.tok.Type == TokenIdent && p.tok.Text == "spec":
			p.advance()
			node.Annotations = append(node.Annotations, p.parseSpec()...)
		case p.tok.Type == TokenIdent && p.tok.Text == "use":
			p.advance()
			p.parseUse(node)
		case p.tok.Type == TokenIdent && p.tok.Text == "edge":
			edge := p.parseEdge()
			node.Edges = append(node.Edges, edge)
		case p.tok.Type == TokenIdent && (p.tok.Text == "when" || p.tok.Text == "anim"):
			node.Animations = append(node.Animations, p.parseAnim())
		case p.tok.Type == TokenIdent:
			if kind, ok := kindFromKeyword(p.tok.Text); ok {
				p.parseNode(h, kind, true)
				break
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
				node.recordUnknown(key, "")
				p.warnAt(string(loc.UnknownProperty), p.tok, "unknown property %q", key)
			}
		case p.tok.Type == TokenAt:
			if p.peek().Type == TokenArrow {
				p.parseConstraintArrow()
			} else {
				p.parseNode(h, KindGeneric, false)
			}
		default:
			p.errAt(string(loc.UnexpectedToken), p.tok, "unexpected token %q", p.tok.Text)
			p.advance()
		}
	}
}

// skipUnknownValue consumes tokens until a statement boundary, so a
// malformed or unrecognized line never stalls the parser.
func (p *Parser) skipUnknownValue() {
	for {
		if p.tok.Type == TokenEOF || p.isSymbol("}") || p.tok.Type == TokenAt {
			return
		}
		if p.tok.Type == TokenIdent && (statementKeywords[p.tok.Text] || p.peekIsColon()) {
			return
		}
		p.advance()
	}
}

func (p *Parser) peekIsColon() bool {
	return p.peek().Type == TokenSymbol && p.peek().Text == ":"
}
