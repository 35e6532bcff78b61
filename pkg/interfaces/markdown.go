package interfaces

import (
	"context"
	"time"

	"github.com/goliatone/go-kb/pkg/citation"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations must resolve inline citation markers against the citation
// set supplied per call so a single parser can serve many documents.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
	// ParseWithCitations converts Markdown into HTML, resolving citation markers
	// against citations.
	ParseWithCitations(markdown []byte, citations citation.Set, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions   []string
	Sanitize     bool
	HardWraps    bool
	SafeMode     bool
	ClampQuality bool
}

// MarkdownService exposes filesystem workflows for article Markdown files:
// loading documents with their front matter and rendering bodies with the
// document's own citation registry.
type MarkdownService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, citations citation.Set, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
}

// Document represents a Markdown article file with parsed metadata and
// content.
type Document struct {
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
	Checksum     []byte
}

// FrontMatter models article metadata extracted from Markdown files. The
// Custom map keeps unknown keys available to templates.
type FrontMatter struct {
	Title           string         `yaml:"title" json:"title"`
	Slug            string         `yaml:"slug" json:"slug"`
	Summary         string         `yaml:"summary" json:"summary"`
	Domain          string         `yaml:"domain" json:"domain"`
	Status          string         `yaml:"status" json:"status"`
	ConfidenceScore float64        `yaml:"confidence_score" json:"confidence_score"`
	Tags            []string       `yaml:"tags" json:"tags"`
	Citations       citation.Set   `yaml:"citations" json:"citations"`
	Custom          map[string]any `yaml:",inline" json:"custom"`
	Raw             map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive *bool
	Pattern   string
	Parser    ParseOptions
}
