package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/pkg/citation"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// Config controls how the Markdown service discovers and parses articles.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	Parser    interfaces.ParseOptions
}

// citationStatsParser is implemented by parsers that report marker statistics.
type citationStatsParser interface {
	ParseCitations(markdown []byte, citations citation.Set, opts interfaces.ParseOptions) ([]byte, citation.Stats, error)
}

// Service implements interfaces.MarkdownService for filesystem-backed articles.
type Service struct {
	cfg    Config
	parser interfaces.MarkdownParser
	loader *Loader
	logger interfaces.Logger
}

var _ interfaces.MarkdownService = (*Service)(nil)

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

// WithFS replaces the filesystem rooted at Config.BasePath.
func WithFS(filesystem fs.FS) ServiceOption {
	return func(s *Service) {
		if filesystem != nil {
			s.loader = NewLoader(filesystem, s.loaderConfig())
		}
	}
}

// NewService constructs a Markdown service. When parser is nil a goldmark
// parser with Config.Parser defaults is used.
func NewService(cfg Config, parser interfaces.MarkdownParser, opts ...ServiceOption) (*Service, error) {
	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	service := &Service{
		cfg:    cfg,
		parser: parser,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(service)
	}

	if service.loader == nil {
		filesystem, err := prepareFilesystem(cfg.BasePath)
		if err != nil {
			return nil, err
		}
		service.loader = NewLoader(filesystem, service.loaderConfig())
	}
	return service, nil
}

// Load reads and renders a single article relative to the configured base path.
func (s *Service) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	result, err := s.loader.LoadFile(ctx, s.normalisePath(path))
	if err != nil {
		return nil, err
	}
	if _, err := s.RenderDocument(ctx, result.Document, opts.Parser); err != nil {
		return nil, err
	}
	return result.Document, nil
}

// LoadDirectory reads and renders every article within dir, ordered by path.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	results, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir), LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	})
	if err != nil {
		return nil, err
	}

	docs := make([]*interfaces.Document, 0, len(results))
	for _, result := range results {
		if _, err := s.RenderDocument(ctx, result.Document, opts.Parser); err != nil {
			return nil, err
		}
		docs = append(docs, result.Document)
	}
	return docs, nil
}

// Render converts Markdown into HTML, resolving citation markers against
// citations.
func (s *Service) Render(ctx context.Context, markdown []byte, citations citation.Set, opts interfaces.ParseOptions) ([]byte, error) {
	out, _, err := s.RenderBody(ctx, markdown, citations, opts)
	return out, err
}

// RenderBody is Render that also reports marker statistics for the body.
func (s *Service) RenderBody(ctx context.Context, markdown []byte, citations citation.Set, opts interfaces.ParseOptions) ([]byte, citation.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, citation.Stats{}, err
	}
	merged := mergeParseOptions(s.cfg.Parser, opts)

	if p, ok := s.parser.(citationStatsParser); ok {
		out, stats, err := p.ParseCitations(markdown, citations, merged)
		if err != nil {
			return nil, citation.Stats{}, err
		}
		s.logStats(ctx, stats)
		return out, stats, nil
	}

	out, err := s.parser.ParseWithCitations(markdown, citations, merged)
	if err != nil {
		return nil, citation.Stats{}, err
	}
	// Custom parsers do not report statistics; approximate from the source.
	var stats citation.Stats
	stats.Add(citation.Render(string(markdown), citations))
	s.logStats(ctx, stats)
	return out, stats, nil
}

// RenderDocument renders the document body against its own citation registry
// and stores the result on BodyHTML.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("markdown service: document is nil")
	}
	out, err := s.Render(ctx, doc.Body, doc.FrontMatter.Citations, opts)
	if err != nil {
		return nil, fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = out
	return out, nil
}

func (s *Service) logStats(ctx context.Context, stats citation.Stats) {
	logger := logging.WithFields(s.logger.WithContext(ctx), map[string]any{
		"operation":  "markdown.render",
		"markers":    stats.Markers,
		"resolved":   stats.Resolved,
		"unresolved": stats.Unresolved,
	})
	if stats.Unresolved > 0 {
		logger.Warn("markdown.citations.unresolved")
		return
	}
	logger.Debug("markdown.render.completed")
}

func (s *Service) loaderConfig() LoaderConfig {
	return LoaderConfig{
		BasePath:  s.cfg.BasePath,
		Pattern:   s.cfg.Pattern,
		Recursive: s.cfg.Recursive,
	}
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.Sanitize {
		result.Sanitize = true
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	if override.ClampQuality {
		result.ClampQuality = true
	}
	return result
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}
