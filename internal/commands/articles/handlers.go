package articlescmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-kb/internal/articles"
	"github.com/goliatone/go-kb/internal/commands"
	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/pkg/citation"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

const (
	renderOperation = "articles.render"
	lintOperation   = "articles.lint"

	textCodeLintFailed = "ARTICLE_LINT_FAILED"
)

var (
	// ErrMarkdownFeatureDisabled is returned when a Markdown source is given while the markdown feature is off.
	ErrMarkdownFeatureDisabled = errors.New("articles command: markdown feature disabled")
	// ErrLintIssuesFound is returned by strict lint runs that report issues.
	ErrLintIssuesFound = errors.New("articles command: lint issues found")
)

var (
	_ command.Commander[RenderArticleCommand] = (*RenderArticleHandler)(nil)
	_ command.Commander[LintArticleCommand]   = (*LintArticleHandler)(nil)
)

// ArticleService is the subset of the article service used by command handlers.
type ArticleService interface {
	Load(ctx context.Context, path string, format articles.Format) (*articles.Article, error)
	Render(ctx context.Context, article *articles.Article) (*articles.Rendered, error)
	Lint(article *articles.Article) []citation.Issue
}

// RenderArticleHandler renders article sources and writes the HTML fragment to a sink.
type RenderArticleHandler struct {
	inner *commands.Handler[RenderArticleCommand]
}

// NewRenderArticleHandler creates a handler bound to the supplied article service.
func NewRenderArticleHandler(service ArticleService, sink io.Writer, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[RenderArticleCommand]) *RenderArticleHandler {
	baseLogger := commands.EnsureLogger(logger)
	out := newSyncWriter(sink)

	exec := func(ctx context.Context, msg RenderArticleCommand) error {
		article, err := loadArticle(ctx, service, gates, msg.Source, msg.Format)
		if err != nil {
			return err
		}

		rendered, err := service.Render(ctx, article)
		if err != nil {
			return err
		}

		fragment := []byte(rendered.Fragment())
		if target := strings.TrimSpace(msg.Output); target != "" {
			if err := os.WriteFile(target, fragment, 0o644); err != nil {
				return fmt.Errorf("write rendered article %s: %w", target, err)
			}
		} else if _, err := out.Write(fragment); err != nil {
			return fmt.Errorf("write rendered article: %w", err)
		}

		logging.WithFields(baseLogger, map[string]any{
			"article_slug": article.Slug,
			"markers":      rendered.Stats.Markers,
			"resolved":     rendered.Stats.Resolved,
			"unresolved":   rendered.Stats.Unresolved,
			"pending":      rendered.Pending,
			"bytes":        len(fragment),
		}).Info("articles.command.render.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderArticleCommand]{
		commands.WithLogger[RenderArticleCommand](baseLogger),
		commands.WithOperation[RenderArticleCommand](renderOperation),
		commands.WithMessageFields(func(msg RenderArticleCommand) map[string]any {
			fields := map[string]any{
				"source": msg.Source,
			}
			if msg.Format != "" {
				fields["format"] = msg.Format
			}
			if msg.Output != "" {
				fields["output"] = msg.Output
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderArticleCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderArticleHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderArticleCommand].
func (h *RenderArticleHandler) Execute(ctx context.Context, msg RenderArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// LintArticleHandler reports citation issues for article sources.
type LintArticleHandler struct {
	inner *commands.Handler[LintArticleCommand]
}

// NewLintArticleHandler creates a handler bound to the supplied article service.
// Issues are written to sink one per line.
func NewLintArticleHandler(service ArticleService, sink io.Writer, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[LintArticleCommand]) *LintArticleHandler {
	baseLogger := commands.EnsureLogger(logger)
	out := newSyncWriter(sink)

	exec := func(ctx context.Context, msg LintArticleCommand) error {
		article, err := loadArticle(ctx, service, gates, msg.Source, msg.Format)
		if err != nil {
			return err
		}

		issues := service.Lint(article)
		var buf strings.Builder
		for _, issue := range issues {
			buf.WriteString(issue.String())
			buf.WriteByte('\n')
		}
		if len(issues) == 0 {
			fmt.Fprintf(&buf, "%s: no citation issues\n", msg.Source)
		}
		if _, err := io.WriteString(out, buf.String()); err != nil {
			return fmt.Errorf("write lint report: %w", err)
		}

		logging.WithFields(baseLogger, map[string]any{
			"article_slug": article.Slug,
			"issue_count":  len(issues),
		}).Info("articles.command.lint.completed")

		if len(issues) > 0 && (msg.Strict || gates.strictLint()) {
			return lintError(msg.Source, issues)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[LintArticleCommand]{
		commands.WithLogger[LintArticleCommand](baseLogger),
		commands.WithOperation[LintArticleCommand](lintOperation),
		commands.WithMessageFields(func(msg LintArticleCommand) map[string]any {
			fields := map[string]any{
				"source": msg.Source,
			}
			if msg.Format != "" {
				fields["format"] = msg.Format
			}
			if msg.Strict {
				fields["strict"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[LintArticleCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &LintArticleHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[LintArticleCommand].
func (h *LintArticleHandler) Execute(ctx context.Context, msg LintArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

func loadArticle(ctx context.Context, service ArticleService, gates FeatureGates, source, formatName string) (*articles.Article, error) {
	format, err := articles.ParseFormat(formatName, source)
	if err != nil {
		return nil, err
	}
	if format == articles.FormatMarkdown && !gates.markdownEnabled() {
		return nil, ErrMarkdownFeatureDisabled
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return service.Load(ctx, source, format)
}

func lintError(source string, issues []citation.Issue) error {
	fieldErrs := make([]goerrors.FieldError, 0, len(issues))
	for _, issue := range issues {
		fieldErrs = append(fieldErrs, goerrors.FieldError{
			Field:   issueField(issue),
			Message: issue.Message,
			Value:   issue.ID,
		})
	}
	wrapped := goerrors.Wrap(ErrLintIssuesFound, goerrors.CategoryValidation, fmt.Sprintf("%d citation issue(s) in %s", len(issues), source)).
		WithTextCode(textCodeLintFailed)
	wrapped.ValidationErrors = fieldErrs
	return wrapped
}

func issueField(issue citation.Issue) string {
	if issue.Index < 0 {
		return "content"
	}
	if issue.Field == "" {
		return fmt.Sprintf("citations[%d]", issue.Index)
	}
	return fmt.Sprintf("citations[%d].%s", issue.Index, issue.Field)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	if w == nil {
		w = io.Discard
	}
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
