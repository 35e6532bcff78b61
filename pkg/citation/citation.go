package citation

// Citation is a single entry of a document's citation registry. The renderer
// only reads citations; ownership stays with the article payload.
type Citation struct {
	ID           string  `json:"id" yaml:"id"`
	Title        string  `json:"title" yaml:"title"`
	URI          string  `json:"uri" yaml:"uri"`
	QualityScore float64 `json:"quality_score" yaml:"quality_score"`
	Status       string  `json:"status" yaml:"status"`
}

// Set is the ordered citation registry of a document. Order is presentation
// order, which is not necessarily the order markers appear in the text.
type Set []Citation

// Lookup returns the first citation with the given id. Ids are expected to be
// unique; when they are not, the earliest entry wins.
func (s Set) Lookup(id string) (Citation, bool) {
	for _, c := range s {
		if c.ID == id {
			return c, true
		}
	}
	return Citation{}, false
}

// IDs returns the citation ids in presentation order, duplicates included.
func (s Set) IDs() []string {
	if len(s) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s))
	for _, c := range s {
		ids = append(ids, c.ID)
	}
	return ids
}

// Index is an id keyed view over a Set. It preserves first-match-wins
// semantics for duplicate ids and is immutable once built.
type Index struct {
	entries map[string]*Citation
}

// NewIndex builds an Index over a copy of the supplied set.
func NewIndex(set Set) *Index {
	idx := &Index{
		entries: make(map[string]*Citation, len(set)),
	}
	for i := range set {
		c := set[i]
		if _, exists := idx.entries[c.ID]; exists {
			continue
		}
		idx.entries[c.ID] = &c
	}
	return idx
}

// Lookup returns the citation registered under id.
func (idx *Index) Lookup(id string) (*Citation, bool) {
	if idx == nil {
		return nil, false
	}
	c, ok := idx.entries[id]
	return c, ok
}

// Len reports the number of distinct ids in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}
