package di

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-kb/internal/articles"
	articlescmd "github.com/goliatone/go-kb/internal/commands/articles"
	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/internal/logging/console"
	"github.com/goliatone/go-kb/internal/logging/gologger"
	"github.com/goliatone/go-kb/internal/markdown"
	"github.com/goliatone/go-kb/internal/runtimeconfig"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer

	markdownParser interfaces.MarkdownParser
	markdownSvc    *markdown.Service

	articleRenderer articles.BodyRenderer
	articleSvc      *articles.Service

	commandRegistry   interfaces.CommandRegistry
	commandDispatcher interfaces.CommandDispatcher
	commandSink       io.Writer
	commandHandlers   *articlescmd.HandlerSet
	subscriptions     []interfaces.CommandSubscription
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithLogWriter sets the destination of the console logging provider.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		if w != nil {
			c.logWriter = w
		}
	}
}

// WithMarkdownParser overrides the goldmark parser used for article bodies.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		if parser != nil {
			c.markdownParser = parser
		}
	}
}

// WithArticleRenderer overrides the body renderer used by the article service.
func WithArticleRenderer(renderer articles.BodyRenderer) Option {
	return func(c *Container) {
		if renderer != nil {
			c.articleRenderer = renderer
		}
	}
}

// WithCommandRegistry registers article command handlers with reg.
func WithCommandRegistry(reg interfaces.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCommandDispatcher subscribes article command handlers to dispatcher.
func WithCommandDispatcher(dispatcher interfaces.CommandDispatcher) Option {
	return func(c *Container) {
		c.commandDispatcher = dispatcher
	}
}

// WithCommandSink sets where command handlers write rendered output and lint reports.
func WithCommandSink(w io.Writer) Option {
	return func(c *Container) {
		c.commandSink = w
	}
}

// NewContainer validates cfg and wires logging, Markdown, article, and command services.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		logWriter:   os.Stderr,
		commandSink: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}
	c.configureArticles()
	if err := c.configureCommands(); err != nil {
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "kb").Debug("container.configured",
		"markdown_service", c.markdownSvc != nil,
		"commands", c.commandHandlers != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}

	switch c.Config.LoggingProvider() {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{Writer: c.logWriter}
		if level, ok := console.ParseLevel(c.Config.Logging.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureMarkdown() error {
	parseOpts := c.parseOptions()
	if c.markdownParser == nil {
		c.markdownParser = markdown.NewGoldmarkParser(parseOpts)
	}
	if !c.Config.Markdown.Enabled {
		return nil
	}

	svc, err := markdown.NewService(markdown.Config{
		BasePath:  c.Config.Markdown.ContentDir,
		Pattern:   c.Config.Markdown.Pattern,
		Recursive: c.Config.Markdown.Recursive,
		Parser:    parseOpts,
	}, c.markdownParser, markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)))
	if err != nil {
		return fmt.Errorf("configure markdown service: %w", err)
	}
	c.markdownSvc = svc
	return nil
}

func (c *Container) configureArticles() {
	renderer := c.articleRenderer
	if renderer == nil && c.markdownSvc != nil {
		renderer = c.markdownSvc
	}
	if renderer == nil {
		renderer = parserBodyRenderer{parser: c.markdownParser}
	}

	c.articleSvc = articles.NewService(renderer,
		articles.WithLogger(logging.ArticlesLogger(c.loggerProvider)),
		articles.WithOptions(articles.Options{
			Citations: c.Config.Citations,
			Parser:    c.parseOptions(),
		}),
	)
}

func (c *Container) configureCommands() error {
	if !c.Config.Commands.Enabled {
		return nil
	}

	gates := articlescmd.FeatureGates{
		MarkdownEnabled: func() bool { return c.Config.Features.Markdown },
		StrictLint:      func() bool { return c.Config.Commands.StrictLint },
	}
	set, err := articlescmd.RegisterArticleCommands(c.commandRegistry, c.articleSvc, c.commandSink, c.loggerProvider, gates)
	if err != nil {
		return err
	}
	c.commandHandlers = set

	if c.commandDispatcher == nil {
		return nil
	}
	var errs error
	for _, handler := range []any{set.Render, set.Lint} {
		sub, err := c.commandDispatcher.RegisterCommand(handler)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if sub != nil {
			c.subscriptions = append(c.subscriptions, sub)
		}
	}
	return errs
}

func (c *Container) parseOptions() interfaces.ParseOptions {
	parser := c.Config.Markdown.Parser
	exts := make([]string, 0, len(parser.Extensions))
	for _, ext := range parser.Extensions {
		if trimmed := strings.TrimSpace(ext); trimmed != "" {
			exts = append(exts, trimmed)
		}
	}
	if len(exts) == 0 {
		exts = nil
	}
	return interfaces.ParseOptions{
		Extensions:   exts,
		Sanitize:     parser.Sanitize,
		HardWraps:    parser.HardWraps,
		SafeMode:     parser.SafeMode,
		ClampQuality: c.Config.Citations.ClampQuality,
	}
}

// LoggerProvider returns the configured provider. It is nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// MarkdownParser returns the parser shared by Markdown and article rendering.
func (c *Container) MarkdownParser() interfaces.MarkdownParser {
	return c.markdownParser
}

// MarkdownService returns the filesystem Markdown service, or nil when Config.Markdown is disabled.
func (c *Container) MarkdownService() *markdown.Service {
	return c.markdownSvc
}

// ArticleService returns the article service.
func (c *Container) ArticleService() *articles.Service {
	return c.articleSvc
}

// CommandHandlers returns the article command handlers, or nil when commands are disabled.
func (c *Container) CommandHandlers() *articlescmd.HandlerSet {
	return c.commandHandlers
}

// Close releases dispatcher subscriptions.
func (c *Container) Close() {
	for _, sub := range c.subscriptions {
		sub.Unsubscribe()
	}
	c.subscriptions = nil
}
