package citation

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// IssueCode classifies a lint finding.
type IssueCode string

const (
	IssueDuplicateID      IssueCode = "duplicate_id"
	IssueInvalidID        IssueCode = "invalid_id"
	IssueQualityRange     IssueCode = "quality_out_of_range"
	IssueInvalidURI       IssueCode = "invalid_uri"
	IssueMissingTitle     IssueCode = "missing_title"
	IssueUnresolvedMarker IssueCode = "unresolved_marker"
)

// Issue is a single piece of input debt found in a citation set. Issues never
// affect rendering; they exist so callers can validate their data upstream.
type Issue struct {
	Code    IssueCode
	ID      string
	Index   int
	Field   string
	Message string
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s [%d:%s]: %s", i.Code, i.Index, i.ID, i.Message)
	}
	return fmt.Sprintf("%s [%d:%s] %s: %s", i.Code, i.Index, i.ID, i.Field, i.Message)
}

var allowedSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
}

// Validate checks a single citation record.
func (c Citation) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID,
			validation.Required.Error("id is required"),
			validation.Match(idPattern).Error("id must only contain letters, digits and underscores"),
		),
		validation.Field(&c.Title,
			validation.Required.Error("title is required"),
		),
		validation.Field(&c.URI,
			validation.Required.Error("uri is required"),
			validation.By(validateURI),
		),
		validation.Field(&c.QualityScore,
			validation.By(validateQuality),
		),
	)
}

func validateURI(value any) error {
	raw, _ := value.(string)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("citation.uri.invalid", "uri is not a valid URL")
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return validation.NewError("citation.uri.relative", "uri must be absolute")
	}
	if _, ok := allowedSchemes[strings.ToLower(parsed.Scheme)]; !ok {
		return validation.NewError("citation.uri.scheme", fmt.Sprintf("uri scheme %q not permitted", parsed.Scheme))
	}
	return nil
}

func validateQuality(value any) error {
	score, _ := value.(float64)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return validation.NewError("citation.quality.not_finite", "quality_score must be a finite number")
	}
	if score < 0 || score > 1 {
		return validation.NewError("citation.quality.range", fmt.Sprintf("quality_score %v outside [0,1]", score))
	}
	return nil
}

var fieldCodes = map[string]IssueCode{
	"id":            IssueInvalidID,
	"title":         IssueMissingTitle,
	"uri":           IssueInvalidURI,
	"quality_score": IssueQualityRange,
}

// Lint reports duplicate ids and invalid records in presentation order.
func Lint(set Set) []Issue {
	var issues []Issue
	seen := make(map[string]int, len(set))

	for i, c := range set {
		if first, ok := seen[c.ID]; ok {
			issues = append(issues, Issue{
				Code:    IssueDuplicateID,
				ID:      c.ID,
				Index:   i,
				Field:   "id",
				Message: fmt.Sprintf("duplicates entry %d; the first entry wins", first),
			})
		} else {
			seen[c.ID] = i
		}

		err := c.Validate()
		if err == nil {
			continue
		}
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			issues = append(issues, Issue{Code: IssueInvalidID, ID: c.ID, Index: i, Message: err.Error()})
			continue
		}
		fields := make([]string, 0, len(fieldErrs))
		for field := range fieldErrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			issues = append(issues, Issue{
				Code:    fieldCodes[field],
				ID:      c.ID,
				Index:   i,
				Field:   field,
				Message: fieldErrs[field].Error(),
			})
		}
	}
	return issues
}

// LintMarkers reports marker ids in text that do not resolve against set.
// Unresolved markers are a normal condition for rendering; this only feeds
// editorial tooling.
func LintMarkers(text string, set Set) []Issue {
	idx := NewIndex(set)
	var issues []Issue
	reported := map[string]struct{}{}
	for seg := range Tokenize(text) {
		if !seg.IsMarker() {
			continue
		}
		if _, ok := idx.Lookup(seg.ID); ok {
			continue
		}
		if _, dup := reported[seg.ID]; dup {
			continue
		}
		reported[seg.ID] = struct{}{}
		issues = append(issues, Issue{
			Code:    IssueUnresolvedMarker,
			ID:      seg.ID,
			Index:   -1,
			Message: "marker does not match any citation",
		})
	}
	return issues
}
