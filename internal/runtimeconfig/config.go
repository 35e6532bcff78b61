package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMarkdownFeatureRequired    = errors.New("kb config: markdown feature must be enabled to configure markdown")
	ErrMarkdownContentDirRequired = errors.New("kb config: markdown content directory is required when markdown is enabled")
	ErrCommandsFeatureRequired    = errors.New("kb config: commands require the markdown feature")
	ErrLoggingProviderRequired    = errors.New("kb config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown     = errors.New("kb config: logging provider is invalid")
	ErrLoggingLevelInvalid        = errors.New("kb config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("kb config: logging format is invalid")
	ErrCitationListTitleTooLong   = errors.New("kb config: citation list title exceeds 120 characters")
)

const maxListTitleLength = 120

// Config aggregates feature flags and adapter bindings for the knowledge base
// module. Fields use plain types so hosts can populate them from any source.
type Config struct {
	DefaultLocale string
	Markdown      MarkdownConfig
	Citations     CitationConfig
	Commands      CommandsConfig
	Features      Features
	Logging       LoggingConfig
}

// Features toggles module functionality.
type Features struct {
	Markdown bool
	Logger   bool
}

// CitationConfig controls how citation references and lists render.
type CitationConfig struct {
	// ClampQuality bounds quality scores to [0,1] before formatting.
	ClampQuality bool
	// RenderList appends the citation list to rendered articles.
	RenderList bool
	// ListTitle heads the citation list. Empty omits the heading.
	ListTitle string
	// EmptyMessage replaces the default text shown for articles without citations.
	EmptyMessage string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool
	// StrictLint makes lint commands fail on unresolved markers.
	StrictLint bool
}

// MarkdownConfig captures filesystem and parser behaviour for article files.
type MarkdownConfig struct {
	Enabled    bool
	ContentDir string
	Pattern    string
	Recursive  bool
	Parser     MarkdownParserConfig
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// DefaultConfig returns defaults suitable for rendering a local article tree.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Markdown: MarkdownConfig{
			ContentDir: "articles",
			Pattern:    "*.md",
			Recursive:  true,
		},
		Citations: CitationConfig{
			RenderList: true,
			ListTitle:  "Sources",
		},
		Features: Features{
			Markdown: true,
		},
		Commands: CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Markdown.Enabled {
		if !cfg.Features.Markdown {
			return ErrMarkdownFeatureRequired
		}
		if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
			return ErrMarkdownContentDirRequired
		}
	}
	if cfg.Commands.Enabled && !cfg.Features.Markdown {
		return ErrCommandsFeatureRequired
	}
	if len([]rune(cfg.Citations.ListTitle)) > maxListTitleLength {
		return ErrCitationListTitleTooLong
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// LoggingProvider returns the normalised logging provider name.
func (cfg Config) LoggingProvider() string {
	return normalizeProvider(cfg.Logging.Provider)
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
