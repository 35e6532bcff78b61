// Package articles decodes knowledge base articles from JSON payloads or
// Markdown files and renders them with resolved citation references, a
// citation list, and render statistics.
package articles
