package citation

import (
	"math"
	"math/big"
)

// AnchorPrefix is prepended to citation ids to build navigation anchors.
const AnchorPrefix = "cit-"

// Anchor derives the element id shared by inline markers and citation list
// entries.
func Anchor(id string) string {
	return AnchorPrefix + id
}

// Href returns the in-document link target for id.
func Href(id string) string {
	return "#" + Anchor(id)
}

// FormatQuality renders a [0,1] score as a percentage with one fractional
// digit (0.842 -> "84.2%"). Exact halves round away from zero
// (0.8425 -> "84.3%"). Scores outside the range are formatted as computed;
// non-finite values render as "NaN%", "+Inf%" or "-Inf%".
func FormatQuality(score float64) string {
	pct := score * 100
	switch {
	case math.IsNaN(pct):
		return "NaN%"
	case math.IsInf(pct, 1):
		return "+Inf%"
	case math.IsInf(pct, -1):
		return "-Inf%"
	}
	return new(big.Rat).SetFloat64(pct).FloatString(1) + "%"
}

// ClampQuality bounds score to [0,1]. NaN clamps to 0.
func ClampQuality(score float64) float64 {
	switch {
	case math.IsNaN(score):
		return 0
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
