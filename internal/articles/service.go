package articles

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/internal/markdown"
	"github.com/goliatone/go-kb/internal/runtimeconfig"
	"github.com/goliatone/go-kb/pkg/citation"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// DefaultPendingMessage is shown in place of the body for articles without content.
const DefaultPendingMessage = "This article is still being written."

// BodyRenderer renders a Markdown body against a citation registry and
// reports how its markers resolved. *markdown.Service satisfies it.
type BodyRenderer interface {
	RenderBody(ctx context.Context, body []byte, citations citation.Set, opts interfaces.ParseOptions) ([]byte, citation.Stats, error)
}

// Rendered is the outcome of rendering one article.
type Rendered struct {
	ID            uuid.UUID
	Article       *Article
	BodyHTML      template.HTML
	CitationsHTML template.HTML
	Domain        string
	Confidence    string
	Stats         citation.Stats
	// Pending is set when the article has no content to render.
	Pending bool
}

// Fragment joins the body, or the pending message, with the citation list.
func (r *Rendered) Fragment() template.HTML {
	if r == nil {
		return ""
	}
	var buf bytes.Buffer
	buf.WriteString(string(r.BodyHTML))
	buf.WriteString(string(r.CitationsHTML))
	return template.HTML(buf.String())
}

// Options configures article rendering.
type Options struct {
	Citations      runtimeconfig.CitationConfig
	Parser         interfaces.ParseOptions
	PendingMessage string
}

// Service loads and renders articles.
type Service struct {
	renderer BodyRenderer
	opts     Options
	logger   interfaces.Logger
	now      func() time.Time
}

// ServiceOption customises service behaviour.
type ServiceOption func(*Service)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOptions replaces the rendering options.
func WithOptions(opts Options) ServiceOption {
	return func(s *Service) {
		s.opts = opts
	}
}

// WithClock overrides the clock used to time renders.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs an article service. A nil renderer falls back to a
// goldmark parser with default options.
func NewService(renderer BodyRenderer, opts ...ServiceOption) *Service {
	service := &Service{
		renderer: renderer,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.renderer == nil {
		service.renderer = parserRenderer{parser: markdown.NewGoldmarkParser(service.opts.Parser)}
	}
	return service
}

// Load reads an article from path. An empty format is inferred from the
// file extension.
func (s *Service) Load(ctx context.Context, path string, format Format) (*Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := ParseFormat(string(format), path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryNotFound, "read article source").
			WithTextCode(TextCodeSourceUnreadable).
			WithMetadata(map[string]any{"path": path})
	}

	var article *Article
	switch format {
	case FormatJSON:
		article, err = DecodeBytes(data)
	case FormatMarkdown:
		var modified time.Time
		if info, statErr := os.Stat(path); statErr == nil {
			modified = info.ModTime()
		}
		doc, buildErr := markdown.BuildDocument(path, data, modified)
		if buildErr != nil {
			return nil, decodeError(buildErr, "parse article front matter")
		}
		article, err = FromDocument(doc)
	}
	if err != nil {
		return nil, err
	}
	article.SourcePath = path

	logging.WithArticleContext(s.logger, article.Slug, article.ID().String(), path).
		Debug("articles.load.completed", "format", string(format), "citations", len(article.Citations))
	return article, nil
}

// Render renders the article body with resolved citation references and the
// citation list. Articles without content render as pending.
func (s *Service) Render(ctx context.Context, article *Article) (*Rendered, error) {
	if article == nil {
		return nil, goerrors.Wrap(ErrArticleRequired, goerrors.CategoryBadInput, "render article").
			WithTextCode(TextCodeArticleIsRequired)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := s.now()
	id := article.ID()
	logger := logging.WithArticleContext(s.logger.WithContext(ctx), article.Slug, id.String(), article.SourcePath)

	out := &Rendered{
		ID:         id,
		Article:    article,
		Domain:     article.DisplayDomain(),
		Confidence: article.Confidence(),
	}
	if s.opts.Citations.ClampQuality {
		out.Confidence = citation.FormatQuality(citation.ClampQuality(article.ConfidenceScore))
	}

	if article.HasContent() {
		parseOpts := s.opts.Parser
		parseOpts.ClampQuality = parseOpts.ClampQuality || s.opts.Citations.ClampQuality
		body, stats, err := s.renderer.RenderBody(ctx, []byte(article.Content), article.Citations, parseOpts)
		if err != nil {
			logger.Error("articles.render.failed", "error", err)
			return nil, renderError(err)
		}
		out.BodyHTML = template.HTML(body)
		out.Stats = stats
	} else {
		out.Pending = true
		out.BodyHTML = s.pendingHTML()
	}

	if s.opts.Citations.RenderList {
		out.CitationsHTML = citation.List(article.Citations, citation.ListOptions{
			Title:        s.opts.Citations.ListTitle,
			EmptyMessage: s.opts.Citations.EmptyMessage,
			ClampQuality: s.opts.Citations.ClampQuality,
		})
	}

	logger.Debug("articles.render.completed",
		"markers", out.Stats.Markers,
		"resolved", out.Stats.Resolved,
		"unresolved", out.Stats.Unresolved,
		"pending", out.Pending,
		"duration", s.now().Sub(started),
	)
	return out, nil
}

// Lint reports problems in the article's citation registry and markers that
// reference missing citations.
func (s *Service) Lint(article *Article) []citation.Issue {
	if article == nil {
		return nil
	}
	issues := citation.Lint(article.Citations)
	issues = append(issues, citation.LintMarkers(article.Content, article.Citations)...)
	if len(issues) > 0 {
		logging.WithArticleContext(s.logger, article.Slug, "", article.SourcePath).
			Info("articles.lint.issues", "count", len(issues))
	}
	return issues
}

func (s *Service) pendingHTML() template.HTML {
	msg := s.opts.PendingMessage
	if msg == "" {
		msg = DefaultPendingMessage
	}
	return template.HTML(`<p class="article-pending">` + template.HTMLEscapeString(msg) + `</p>`)
}

// parserRenderer adapts a bare goldmark parser to BodyRenderer.
type parserRenderer struct {
	parser *markdown.GoldmarkParser
}

func (r parserRenderer) RenderBody(ctx context.Context, body []byte, citations citation.Set, opts interfaces.ParseOptions) ([]byte, citation.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, citation.Stats{}, err
	}
	return r.parser.ParseCitations(body, citations, opts)
}
