package kb

import (
	"context"

	"github.com/goliatone/go-kb/internal/articles"
	articlescmd "github.com/goliatone/go-kb/internal/commands/articles"
	"github.com/goliatone/go-kb/internal/di"
	"github.com/goliatone/go-kb/internal/markdown"
	"github.com/goliatone/go-kb/pkg/citation"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

type (
	Article        = articles.Article
	ArticleFormat  = articles.Format
	ArticleService = articles.Service
	Rendered       = articles.Rendered

	RenderArticleCommand = articlescmd.RenderArticleCommand
	LintArticleCommand   = articlescmd.LintArticleCommand
	CommandHandlers      = articlescmd.HandlerSet
)

const (
	FormatJSON     = articles.FormatJSON
	FormatMarkdown = articles.FormatMarkdown
)

// Module is the entry point for hosts embedding the knowledge base renderer.
type Module struct {
	container *di.Container
}

// New validates cfg and wires the module.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}

// Config returns the validated configuration.
func (m *Module) Config() Config {
	if m == nil || m.container == nil {
		return Config{}
	}
	return m.container.Config
}

// Articles returns the article service.
func (m *Module) Articles() *ArticleService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ArticleService()
}

// Markdown returns the filesystem Markdown service, or nil when disabled.
func (m *Module) Markdown() *markdown.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.MarkdownService()
}

// MarkdownParser returns the citation-aware parser.
func (m *Module) MarkdownParser() interfaces.MarkdownParser {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.MarkdownParser()
}

// Commands returns the article command handlers, or nil when commands are disabled.
func (m *Module) Commands() *CommandHandlers {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.CommandHandlers()
}

// RenderFile loads the article at path and renders it.
func (m *Module) RenderFile(ctx context.Context, path string, format ArticleFormat) (*Rendered, error) {
	svc := m.Articles()
	if svc == nil {
		return nil, articles.ErrArticleRequired
	}
	article, err := svc.Load(ctx, path, format)
	if err != nil {
		return nil, err
	}
	return svc.Render(ctx, article)
}

// LintFile loads the article at path and reports its citation issues.
func (m *Module) LintFile(ctx context.Context, path string, format ArticleFormat) ([]citation.Issue, error) {
	svc := m.Articles()
	if svc == nil {
		return nil, articles.ErrArticleRequired
	}
	article, err := svc.Load(ctx, path, format)
	if err != nil {
		return nil, err
	}
	return svc.Lint(article), nil
}

// Close releases command subscriptions.
func (m *Module) Close() {
	if m == nil || m.container == nil {
		return
	}
	m.container.Close()
}
