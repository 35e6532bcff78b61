package citation

import (
	"iter"
	"regexp"
)

const (
	markerPrefix = "[cit:"
	markerSuffix = "]"
)

var (
	markerPattern         = regexp.MustCompile(`\[cit:([A-Za-z0-9_]+)\]`)
	anchoredMarkerPattern = regexp.MustCompile(`^\[cit:([A-Za-z0-9_]+)\]`)
	idPattern             = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// SegmentKind tags a Segment as literal text or a citation marker.
type SegmentKind uint8

const (
	// SegmentLiteral carries text that is passed through untouched.
	SegmentLiteral SegmentKind = iota
	// SegmentMarker carries the id of a "[cit:<id>]" marker.
	SegmentMarker
)

// String renders the kind label used in diagnostics.
func (k SegmentKind) String() string {
	switch k {
	case SegmentMarker:
		return "marker"
	default:
		return "literal"
	}
}

// Segment is one piece of a tokenized text run.
type Segment struct {
	Kind SegmentKind
	// Text holds the literal content for SegmentLiteral.
	Text string
	// ID holds the marker id for SegmentMarker.
	ID string
}

// Literal constructs a literal segment.
func Literal(text string) Segment {
	return Segment{Kind: SegmentLiteral, Text: text}
}

// Marker constructs a marker segment for id.
func Marker(id string) Segment {
	return Segment{Kind: SegmentMarker, ID: id}
}

// IsMarker reports whether the segment is a citation marker.
func (s Segment) IsMarker() bool {
	return s.Kind == SegmentMarker
}

// Source returns the exact input text the segment was produced from.
func (s Segment) Source() string {
	if s.Kind == SegmentMarker {
		return MarkerSource(s.ID)
	}
	return s.Text
}

// MarkerSource rebuilds the marker text for id.
func MarkerSource(id string) string {
	return markerPrefix + id + markerSuffix
}

// ValidID reports whether id can appear inside a marker.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Tokenize lazily splits text into literal and marker segments, scanning left
// to right with greedy, non-overlapping matches. Concatenating Source() of the
// yielded segments reproduces text exactly. Empty literals are never yielded.
func Tokenize(text string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		position := 0
		for position < len(text) {
			loc := markerPattern.FindStringSubmatchIndex(text[position:])
			if loc == nil {
				yield(Literal(text[position:]))
				return
			}

			start := position + loc[0]
			end := position + loc[1]
			if start > position {
				if !yield(Literal(text[position:start])) {
					return
				}
			}
			if !yield(Marker(text[position+loc[2] : position+loc[3]])) {
				return
			}
			position = end
		}
	}
}

// Segments is the eager form of Tokenize.
func Segments(text string) []Segment {
	var out []Segment
	for seg := range Tokenize(text) {
		out = append(out, seg)
	}
	return out
}

// MatchMarker reports whether b starts with a complete marker, returning the
// marker id and its byte width. Engines that scan inline text themselves use
// it to share the marker grammar with Tokenize.
func MatchMarker(b []byte) (id string, width int, ok bool) {
	if len(b) < len(markerPrefix)+2 || b[0] != '[' {
		return "", 0, false
	}
	loc := anchoredMarkerPattern.FindSubmatchIndex(b)
	if loc == nil {
		return "", 0, false
	}
	return string(b[loc[2]:loc[3]]), loc[1], true
}
