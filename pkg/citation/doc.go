// Package citation locates inline citation markers ("[cit:<id>]") in document
// text and resolves them against a citation registry.
//
// The package is framework independent. Tokenize splits a text run into
// literal and marker segments, a Resolver maps those segments onto render
// nodes, and HTML/List turn the result into markup. Every function is pure:
// callers can share a Resolver across goroutines and call Render repeatedly
// with identical output.
//
// Anchor identifiers ("cit-" + id) are a public contract. Any component that
// renders the citation registry must expose anchors using Anchor so inline
// markers and list entries resolve to the same target.
package citation
