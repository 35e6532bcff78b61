package markdown

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-kb/pkg/citation"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// ParseFrontMatter splits source into article metadata and the Markdown body.
// Documents without a front matter block yield empty metadata and the full
// source as body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildDocument assembles a Document from a file path, its raw content, and
// modification time. BodyHTML stays empty so callers render lazily.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
	}, nil
}

type frontMatterEnvelope struct {
	Title           string         `yaml:"title"`
	Slug            string         `yaml:"slug"`
	Summary         string         `yaml:"summary"`
	Domain          string         `yaml:"domain"`
	Status          string         `yaml:"status"`
	ConfidenceScore float64        `yaml:"confidence_score"`
	Tags            []string       `yaml:"tags"`
	Citations       []citationYAML `yaml:"citations"`
	Custom          map[string]any `yaml:",inline"`
}

type citationYAML struct {
	ID           string  `yaml:"id"`
	Title        string  `yaml:"title"`
	URI          string  `yaml:"uri"`
	QualityScore float64 `yaml:"quality_score"`
	Status       string  `yaml:"status"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	custom := maps.Clone(env.Custom)
	if custom == nil {
		custom = map[string]any{}
	}

	raw := maps.Clone(custom)
	setIfPresent(raw, "title", env.Title)
	setIfPresent(raw, "slug", env.Slug)
	setIfPresent(raw, "summary", env.Summary)
	setIfPresent(raw, "domain", env.Domain)
	setIfPresent(raw, "status", env.Status)
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	raw["confidence_score"] = env.ConfidenceScore

	var citations citation.Set
	if len(env.Citations) > 0 {
		citations = make(citation.Set, 0, len(env.Citations))
		for _, c := range env.Citations {
			citations = append(citations, citation.Citation{
				ID:           c.ID,
				Title:        c.Title,
				URI:          c.URI,
				QualityScore: c.QualityScore,
				Status:       c.Status,
			})
		}
		raw["citations"] = slices.Clone(citations)
	}

	return interfaces.FrontMatter{
		Title:           env.Title,
		Slug:            env.Slug,
		Summary:         env.Summary,
		Domain:          env.Domain,
		Status:          env.Status,
		ConfidenceScore: env.ConfidenceScore,
		Tags:            append([]string(nil), env.Tags...),
		Citations:       citations,
		Custom:          custom,
		Raw:             raw,
	}
}

func setIfPresent(target map[string]any, key, value string) {
	if value != "" {
		target[key] = value
	}
}
