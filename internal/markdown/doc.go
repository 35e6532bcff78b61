// Package markdown loads knowledge base articles from disk and renders their
// Markdown bodies with goldmark. Inline `[cit:<id>]` markers are recognised by
// CitationExtension and resolved against the article's citation registry.
package markdown
