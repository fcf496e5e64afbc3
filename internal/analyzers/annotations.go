package analyzers

// Completeness records which structural indicators a section's content shows
type Completeness struct {
	HasMetrics  bool `json:"has_metrics"`
	HasOutcomes bool `json:"has_outcomes"`
	HasTools    bool `json:"has_tools"`
	HasTeamSize bool `json:"has_team_size"`
}

// Annotation holds the derived scores one section accumulates across
// analyzer passes. Later stages (strength detection) read what earlier
// passes wrote, so the side table makes that dependency explicit instead of
// mutating the shared section objects.
type Annotation struct {
	DensityScore    float64 // words per month
	HasDensity      bool
	RecencyScore    int // months since the role ended; 0 = ongoing
	HasRecency      bool
	Completeness    Completeness
	HasCompleteness bool
}

// Annotations is the side table keyed by section id
type Annotations map[string]*Annotation

// NewAnnotations creates an empty side table
func NewAnnotations() Annotations {
	return make(Annotations)
}

// For returns the annotation record for a section, creating it on first use
func (a Annotations) For(sectionID string) *Annotation {
	if ann, ok := a[sectionID]; ok {
		return ann
	}
	ann := &Annotation{}
	a[sectionID] = ann
	return ann
}

// Lookup returns the annotation for a section if any pass has written one
func (a Annotations) Lookup(sectionID string) (*Annotation, bool) {
	ann, ok := a[sectionID]
	return ann, ok
}
