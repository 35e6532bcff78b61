package citation

import (
	"iter"
	"slices"
	"strings"
)

// NodeKind tags a RenderNode.
type NodeKind uint8

const (
	// NodePlainText is literal text emitted unchanged.
	NodePlainText NodeKind = iota
	// NodeCitationRef is a marker replaced by a cross-linked reference.
	NodeCitationRef
)

// String renders the kind label used in diagnostics.
func (k NodeKind) String() string {
	switch k {
	case NodeCitationRef:
		return "citation_ref"
	default:
		return "plain_text"
	}
}

// Preview is the hover payload attached to resolved references.
type Preview struct {
	Title   string
	Quality string
}

// RenderNode is the output unit of the resolver. PlainText nodes carry Text;
// CitationRef nodes carry ID and, when the id resolved, Citation and Preview.
type RenderNode struct {
	Kind     NodeKind
	Text     string
	ID       string
	Citation *Citation
	Preview  *Preview
}

// PlainText constructs a text node.
func PlainText(text string) RenderNode {
	return RenderNode{Kind: NodePlainText, Text: text}
}

// IsCitation reports whether the node replaced a marker.
func (n RenderNode) IsCitation() bool {
	return n.Kind == NodeCitationRef
}

// Resolved reports whether the node is a reference with a matching citation.
func (n RenderNode) Resolved() bool {
	return n.Kind == NodeCitationRef && n.Citation != nil
}

// Anchor returns the element id of the citation list entry the node points
// at. Unresolved references keep the same derivation.
func (n RenderNode) Anchor() string {
	if n.Kind != NodeCitationRef {
		return ""
	}
	return Anchor(n.ID)
}

// Href returns the in-document link target, empty for text nodes.
func (n RenderNode) Href() string {
	if n.Kind != NodeCitationRef {
		return ""
	}
	return Href(n.ID)
}

// Label is the visible label of a reference: its id.
func (n RenderNode) Label() string {
	if n.Kind != NodeCitationRef {
		return n.Text
	}
	return n.ID
}

// Source returns the input text the node was produced from.
func (n RenderNode) Source() string {
	if n.Kind == NodeCitationRef {
		return MarkerSource(n.ID)
	}
	return n.Text
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithQualityClamp bounds quality scores to [0,1] before formatting previews.
func WithQualityClamp() ResolverOption {
	return func(r *Resolver) {
		r.clamp = true
	}
}

// Resolver maps segments onto render nodes for a single citation set. It is
// immutable after construction and safe for concurrent use.
type Resolver struct {
	index *Index
	clamp bool
}

// NewResolver indexes set for lookups.
func NewResolver(set Set, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		index: NewIndex(set),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve produces exactly one node per segment, in order.
func (r *Resolver) Resolve(segments iter.Seq[Segment]) []RenderNode {
	var nodes []RenderNode
	for seg := range segments {
		nodes = append(nodes, r.resolveSegment(seg))
	}
	return nodes
}

// ResolveSegments is Resolve over a slice.
func (r *Resolver) ResolveSegments(segments []Segment) []RenderNode {
	if len(segments) == 0 {
		return nil
	}
	return r.Resolve(slices.Values(segments))
}

// ResolveMarker resolves a single marker id.
func (r *Resolver) ResolveMarker(id string) RenderNode {
	node := RenderNode{Kind: NodeCitationRef, ID: id}
	hit, ok := r.index.Lookup(id)
	if !ok {
		return node
	}

	c := *hit
	score := c.QualityScore
	if r.clamp {
		score = ClampQuality(score)
	}
	node.Citation = &c
	node.Preview = &Preview{
		Title:   c.Title,
		Quality: FormatQuality(score),
	}
	return node
}

// Render tokenizes text and resolves it in one pass.
func (r *Resolver) Render(text string) []RenderNode {
	return r.Resolve(Tokenize(text))
}

func (r *Resolver) resolveSegment(seg Segment) RenderNode {
	if seg.Kind == SegmentMarker {
		return r.ResolveMarker(seg.ID)
	}
	return PlainText(seg.Text)
}

// Render tokenizes text and resolves markers against set.
func Render(text string, set Set) []RenderNode {
	return NewResolver(set).Render(text)
}

// Source concatenates the source text of nodes, reproducing the original run.
func Source(nodes []RenderNode) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(n.Source())
	}
	return b.String()
}

// Stats summarises how the markers of a render pass resolved.
type Stats struct {
	Markers    int
	Resolved   int
	Unresolved int
}

// Add folds the nodes of another pass into the stats.
func (s *Stats) Add(nodes []RenderNode) {
	for _, n := range nodes {
		s.Observe(n)
	}
}

// Observe records a single node.
func (s *Stats) Observe(n RenderNode) {
	if !n.IsCitation() {
		return
	}
	s.Markers++
	if n.Resolved() {
		s.Resolved++
	} else {
		s.Unresolved++
	}
}
