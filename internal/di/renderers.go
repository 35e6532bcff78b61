package di

import (
	"context"

	"github.com/goliatone/go-kb/internal/articles"
	"github.com/goliatone/go-kb/pkg/citation"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

type statsParser interface {
	ParseCitations(markdown []byte, citations citation.Set, opts interfaces.ParseOptions) ([]byte, citation.Stats, error)
}

// parserBodyRenderer renders article bodies straight through a parser when no
// filesystem Markdown service is configured.
type parserBodyRenderer struct {
	parser interfaces.MarkdownParser
}

var _ articles.BodyRenderer = parserBodyRenderer{}

func (r parserBodyRenderer) RenderBody(ctx context.Context, body []byte, citations citation.Set, opts interfaces.ParseOptions) ([]byte, citation.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, citation.Stats{}, err
	}
	if p, ok := r.parser.(statsParser); ok {
		return p.ParseCitations(body, citations, opts)
	}
	out, err := r.parser.ParseWithCitations(body, citations, opts)
	if err != nil {
		return nil, citation.Stats{}, err
	}
	var stats citation.Stats
	stats.Add(citation.Render(string(body), citations))
	return out, stats, nil
}
