package articlescmd

// FeatureGates exposes runtime feature toggles required by article command handlers.
// Callers supply closures that read from kb.Config so handlers stay decoupled
// from configuration.
type FeatureGates struct {
	MarkdownEnabled func() bool
	StrictLint      func() bool
}

func (g FeatureGates) markdownEnabled() bool {
	if g.MarkdownEnabled == nil {
		return true
	}
	return g.MarkdownEnabled()
}

func (g FeatureGates) strictLint() bool {
	if g.StrictLint == nil {
		return false
	}
	return g.StrictLint()
}
