package markdown

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-kb/pkg/citation"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// citationsExtension is the registry name of CitationExtension.
const citationsExtension = "citations"

// GoldmarkParser implements interfaces.MarkdownParser using the goldmark engine.
// It holds no per-document state, so one instance can serve concurrent calls.
type GoldmarkParser struct {
	defaultOptions interfaces.ParseOptions
}

var _ interfaces.MarkdownParser = (*GoldmarkParser)(nil)

// NewGoldmarkParser constructs a parser with the supplied defaults. With no
// extensions configured the engine enables GFM, linkify, task lists, and
// citation markers.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{
		defaultOptions: defaults,
	}
}

// Parse renders Markdown with the parser defaults. Citation markers render as
// unresolved references because no registry is supplied.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaultOptions)
}

// ParseWithOptions renders Markdown using the provided options.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	engine := newGoldmarkEngine(opts)
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseWithCitations renders Markdown, resolving citation markers against
// citations. The citations extension is always enabled for this call.
func (p *GoldmarkParser) ParseWithCitations(markdown []byte, citations citation.Set, opts interfaces.ParseOptions) ([]byte, error) {
	out, _, err := p.ParseCitations(markdown, citations, opts)
	return out, err
}

// ParseCitations behaves like ParseWithCitations and also reports how the
// document's markers resolved. Markers inside code spans and code blocks are
// left literal and are not counted.
func (p *GoldmarkParser) ParseCitations(markdown []byte, citations citation.Set, opts interfaces.ParseOptions) ([]byte, citation.Stats, error) {
	opts.Extensions = ensureCitationExtension(opts.Extensions)
	engine := newGoldmarkEngine(opts)
	state := newCitationState(citations, opts.ClampQuality)

	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf, state.parseOption()); err != nil {
		return nil, citation.Stats{}, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), state.stats, nil
}

// newGoldmarkEngine builds a goldmark.Markdown for opts. Unknown extension
// names are ignored.
func newGoldmarkEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	exts := collectExtensions(opts.Extensions)

	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	rendererOptions := []renderer.Option{}

	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	// SafeMode and Sanitize both suppress raw HTML. Citation markup is produced
	// by the node renderer and is unaffected.
	if !opts.SafeMode && !opts.Sanitize {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}

	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}

	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":              extension.GFM,
	"table":            extension.Table,
	"tables":           extension.Table,
	"strikethrough":    extension.Strikethrough,
	"linkify":          extension.Linkify,
	"autolink":         extension.Linkify,
	"tasklist":         extension.TaskList,
	"definition":       extension.DefinitionList,
	"footnote":         extension.Footnote,
	"typographer":      extension.Typographer,
	citationsExtension: CitationExtension,
	"citation":         CitationExtension,
}

// KnownExtensions lists the extension names accepted in ParseOptions.
func KnownExtensions() []string {
	names := make([]string, 0, len(extensionRegistry))
	for name := range extensionRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
			CitationExtension,
		}
	}

	var extenders []goldmark.Extender
	seen := map[goldmark.Extender]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}

		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		if _, dup := seen[ext]; dup {
			continue
		}

		extenders = append(extenders, ext)
		seen[ext] = struct{}{}
	}

	return extenders
}

func ensureCitationExtension(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	for _, name := range names {
		if ext, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]; ok && ext == CitationExtension {
			return names
		}
	}
	out := make([]string, 0, len(names)+1)
	out = append(out, names...)
	return append(out, citationsExtension)
}
