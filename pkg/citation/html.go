package citation

import (
	"bytes"
	"html/template"
	"io"
)

const refTemplate = `{{define "label"}}` +
	`{{if .Linked}}<a href="{{.Href}}" class="citation-ref">[{{.ID}}]</a>` +
	`{{else}}<span class="citation-ref">[{{.ID}}]</span>{{end}}` +
	`{{end}}` +
	`{{define "ref"}}` +
	`{{if .Resolved}}<span class="citation">` +
	`{{template "label" .}}` +
	`<span class="citation-preview" role="tooltip">` +
	`<span class="citation-title">{{.Preview.Title}}</span>` +
	`<span class="citation-quality">Quality: {{.Preview.Quality}}</span>` +
	`</span></span>` +
	`{{else}}<span class="citation citation-unresolved">` +
	`{{template "label" .}}` +
	`</span>{{end}}` +
	`{{end}}`

const listTemplate = `{{define "list"}}` +
	`<section class="citations">` +
	`{{with .Title}}<h3 class="citations-title">{{.}}</h3>{{end}}` +
	`{{if .Items}}<ul class="citations-list">` +
	`{{range .Items}}<li id="{{.Anchor}}" class="citations-entry">` +
	`<a href="{{.URI}}" target="_blank" rel="noopener" class="citations-link">{{.Title}}</a>` +
	`<span class="citations-meta">` +
	`<span class="citations-id">[{{.ID}}]</span>` +
	`<span class="citations-quality">Quality: {{.Quality}}</span>` +
	`{{with .Status}}<span class="citations-status">{{.}}</span>{{end}}` +
	`</span></li>{{end}}` +
	`</ul>{{else}}<p class="citations-empty">{{.Empty}}</p>{{end}}` +
	`</section>` +
	`{{end}}`

var templates = template.Must(template.New("citation").Parse(refTemplate + listTemplate))

type refView struct {
	RenderNode
	Linked bool
}

// WriteNode writes the markup for a single node.
func WriteNode(w io.Writer, node RenderNode) error {
	return writeNode(w, node, true)
}

// WriteNestedNode writes node for a position that is already inside a link.
// The reference label is rendered as a span so anchors never nest.
func WriteNestedNode(w io.Writer, node RenderNode) error {
	return writeNode(w, node, false)
}

func writeNode(w io.Writer, node RenderNode, linked bool) error {
	if node.Kind != NodeCitationRef {
		template.HTMLEscape(w, []byte(node.Text))
		return nil
	}
	return templates.ExecuteTemplate(w, "ref", refView{RenderNode: node, Linked: linked})
}

// WriteHTML writes the markup for nodes in order.
func WriteHTML(w io.Writer, nodes []RenderNode) error {
	for _, node := range nodes {
		if err := WriteNode(w, node); err != nil {
			return err
		}
	}
	return nil
}

// HTML renders nodes into an inline HTML fragment. Text is escaped; resolved
// references carry a preview tooltip, unresolved ones only their bracketed id.
func HTML(nodes []RenderNode) template.HTML {
	var buf bytes.Buffer
	// Both templates operate on plain strings and cannot fail at execution.
	_ = WriteHTML(&buf, nodes)
	return template.HTML(buf.String())
}

// DefaultEmptyListMessage is shown when a document has no citations.
const DefaultEmptyListMessage = "No citations linked to this article."

// ListOptions tunes the citation list markup.
type ListOptions struct {
	Title        string
	EmptyMessage string
	ClampQuality bool
}

type listView struct {
	Title string
	Empty string
	Items []listItem
}

type listItem struct {
	Anchor  string
	ID      string
	Title   string
	URI     string
	Quality string
	Status  string
}

// WriteList writes the citation registry as a list whose entries expose the
// same anchors inline references link to.
func WriteList(w io.Writer, set Set, opts ListOptions) error {
	view := listView{
		Title: opts.Title,
		Empty: opts.EmptyMessage,
	}
	if view.Empty == "" {
		view.Empty = DefaultEmptyListMessage
	}
	for _, c := range set {
		score := c.QualityScore
		if opts.ClampQuality {
			score = ClampQuality(score)
		}
		view.Items = append(view.Items, listItem{
			Anchor:  Anchor(c.ID),
			ID:      c.ID,
			Title:   c.Title,
			URI:     c.URI,
			Quality: FormatQuality(score),
			Status:  c.Status,
		})
	}
	return templates.ExecuteTemplate(w, "list", view)
}

// List renders the citation registry markup.
func List(set Set, opts ListOptions) template.HTML {
	var buf bytes.Buffer
	_ = WriteList(&buf, set, opts)
	return template.HTML(buf.String())
}
