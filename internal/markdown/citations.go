package markdown

import (
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-kb/pkg/citation"
)

// KindCitationRef is the NodeKind of inline citation references.
var KindCitationRef = ast.NewNodeKind("CitationRef")

// CitationRef is an inline node produced for every `[cit:<id>]` marker. The
// reference is resolved while parsing so renderers never consult the
// citation set again.
type CitationRef struct {
	ast.BaseInline
	Ref citation.RenderNode
}

// Kind implements ast.Node.
func (n *CitationRef) Kind() ast.NodeKind {
	return KindCitationRef
}

// Dump implements ast.Node.
func (n *CitationRef) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"ID":       n.Ref.ID,
		"Resolved": strconv.FormatBool(n.Ref.Resolved()),
	}, nil)
}

// citationParserPriority places the marker parser ahead of the link parser
// (200) so `[cit:id]` never reaches link label handling.
const citationParserPriority = 199

var citationStateKey = parser.NewContextKey()

// citationState carries the resolver for one document along with the
// statistics collected while parsing it.
type citationState struct {
	resolver *citation.Resolver
	stats    citation.Stats
}

func newCitationState(set citation.Set, clamp bool) *citationState {
	var opts []citation.ResolverOption
	if clamp {
		opts = append(opts, citation.WithQualityClamp())
	}
	return &citationState{resolver: citation.NewResolver(set, opts...)}
}

func (s *citationState) parseOption() parser.ParseOption {
	pc := parser.NewContext()
	pc.Set(citationStateKey, s)
	return parser.WithContext(pc)
}

// WithCitations returns a parse option that resolves citation markers against
// set. Engines must include CitationExtension for markers to be recognised.
func WithCitations(set citation.Set, opts ...citation.ResolverOption) parser.ParseOption {
	state := &citationState{resolver: citation.NewResolver(set, opts...)}
	return state.parseOption()
}

type citationParser struct{}

// NewCitationParser returns the inline parser recognising citation markers.
func NewCitationParser() parser.InlineParser {
	return &citationParser{}
}

func (p *citationParser) Trigger() []byte {
	return []byte{'['}
}

func (p *citationParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	id, width, ok := citation.MatchMarker(line)
	if !ok {
		return nil
	}

	state, _ := pc.Get(citationStateKey).(*citationState)
	if state == nil {
		// Without a registry every marker is unresolved.
		state = &citationState{resolver: citation.NewResolver(nil)}
		pc.Set(citationStateKey, state)
	}

	block.Advance(width)
	ref := state.resolver.ResolveMarker(id)
	state.stats.Observe(ref)
	return &CitationRef{Ref: ref}
}

type citationHTMLRenderer struct{}

// NewCitationHTMLRenderer returns the renderer for CitationRef nodes.
func NewCitationHTMLRenderer() renderer.NodeRenderer {
	return &citationHTMLRenderer{}
}

func (r *citationHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindCitationRef, r.renderCitationRef)
}

func (r *citationHTMLRenderer) renderCitationRef(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n, ok := node.(*CitationRef)
	if !ok {
		return ast.WalkContinue, nil
	}
	write := citation.WriteNode
	if insideLink(n) {
		write = citation.WriteNestedNode
	}
	if err := write(w, n.Ref); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

// insideLink reports whether node sits in a link label, where a second anchor
// would produce invalid markup.
func insideLink(node ast.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == ast.KindLink {
			return true
		}
	}
	return false
}

type citationExtension struct{}

// CitationExtension teaches goldmark the `[cit:<id>]` inline syntax.
var CitationExtension goldmark.Extender = &citationExtension{}

func (e *citationExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewCitationParser(), citationParserPriority),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewCitationHTMLRenderer(), 500),
	))
}
