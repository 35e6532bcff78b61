package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	kb "github.com/goliatone/go-kb"
	"github.com/goliatone/go-kb/internal/di"
	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// Options captures configuration for the article CLI bootstraps.
type Options struct {
	// SourcePath is the article the command will operate on. Markdown sources
	// enable the filesystem Markdown service rooted at the file's directory.
	SourcePath     string
	LogLevel       string
	LogProvider    string
	ClampQuality   bool
	StrictLint     bool
	Sink           io.Writer
	LogWriter      io.Writer
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the kb module and the configured command handlers/logger.
type Module struct {
	Module   *kb.Module
	Handlers *kb.CommandHandlers
	Logger   interfaces.Logger
}

// BuildModule constructs a kb module configured for article commands.
func BuildModule(opts Options) (*Module, error) {
	cfg := kb.DefaultConfig()
	cfg.Features.Markdown = true
	cfg.Features.Logger = true
	cfg.Commands.Enabled = true
	cfg.Commands.StrictLint = opts.StrictLint
	cfg.Citations.ClampQuality = opts.ClampQuality

	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if provider := strings.TrimSpace(opts.LogProvider); provider != "" {
		cfg.Logging.Provider = provider
	}

	if isMarkdownSource(opts.SourcePath) {
		cfg.Markdown.Enabled = true
		cfg.Markdown.ContentDir = filepath.Dir(opts.SourcePath)
		cfg.Markdown.Recursive = false
	}

	sink := opts.Sink
	if sink == nil {
		sink = os.Stdout
	}
	diOpts := []di.Option{di.WithCommandSink(sink)}
	if opts.LogWriter != nil {
		diOpts = append(diOpts, di.WithLogWriter(opts.LogWriter))
	}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := kb.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise kb module: %w", err)
	}

	handlers := module.Commands()
	if handlers == nil {
		return nil, fmt.Errorf("article commands not configured; ensure Commands.Enabled is set")
	}

	return &Module{
		Module:   module,
		Handlers: handlers,
		Logger:   logging.ArticlesLogger(module.Container().LoggerProvider()),
	}, nil
}

func isMarkdownSource(path string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(path))) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}
