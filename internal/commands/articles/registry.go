package articlescmd

import (
	"errors"
	"io"

	"github.com/goliatone/go-kb/internal/commands"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the article command handlers produced by RegisterArticleCommands.
type HandlerSet struct {
	Render *RenderArticleHandler
	Lint   *LintArticleHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	renderHandlerOpts []commands.HandlerOption[RenderArticleCommand]
	lintHandlerOpts   []commands.HandlerOption[LintArticleCommand]
}

// WithRenderHandlerOptions forwards options to the RenderArticleHandler constructor.
func WithRenderHandlerOptions(opts ...commands.HandlerOption[RenderArticleCommand]) Option {
	return func(cfg *options) {
		cfg.renderHandlerOpts = append(cfg.renderHandlerOpts, opts...)
	}
}

// WithLintHandlerOptions forwards options to the LintArticleHandler constructor.
func WithLintHandlerOptions(opts ...commands.HandlerOption[LintArticleCommand]) Option {
	return func(cfg *options) {
		cfg.lintHandlerOpts = append(cfg.lintHandlerOpts, opts...)
	}
}

// RegisterArticleCommands builds the article command handlers and registers them with the
// provided registry. Both handlers write to sink. A nil registry only builds the handlers.
func RegisterArticleCommands(reg CommandRegistry, service ArticleService, sink io.Writer, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("articles command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "articles")

	renderHandler := NewRenderArticleHandler(service, sink, logger, gates, cfg.renderHandlerOpts...)
	lintHandler := NewLintArticleHandler(service, sink, logger, gates, cfg.lintHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(renderHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(lintHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Render: renderHandler,
		Lint:   lintHandler,
	}, nil
}
