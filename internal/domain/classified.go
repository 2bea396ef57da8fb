package domain

// ClassificationEvidence is one signal that contributed to a radar score.
// Exactly one of the three fields is populated per entry.
type ClassificationEvidence struct {
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	MatchedPatterns []string `json:"matched_patterns,omitempty"`
	SourcePriorUsed float64  `json:"source_prior_used,omitempty"`
}

// RadarCategoryScore is the scored result for one radar category.
type RadarCategoryScore struct {
	ID       string                   `json:"id"`
	Score    float64                  `json:"score"`
	Evidence []ClassificationEvidence `json:"evidence"`
}

// AxisScores holds the five independent 0-2 semantic axis scores.
type AxisScores struct {
	Compute    int `json:"compute"`
	Governance int `json:"governance"`
	Narrative  int `json:"narrative"`
	Behavior   int `json:"behavior"`
	Capability int `json:"capability"`
}

// Sum is the contribution of the axes to the composite score.
func (a AxisScores) Sum() int {
	return a.Compute + a.Governance + a.Narrative + a.Behavior + a.Capability
}

// ClassificationDiagnostics carries confidence signals for consumers.
// EvidenceStrength is 1 (strong), 0.5 (partial) or 0.2 (prior-only).
type ClassificationDiagnostics struct {
	CategoryEntropy  float64 `json:"category_entropy"`
	TopGap           float64 `json:"top_gap"`
	EvidenceStrength float64 `json:"evidence_strength"`
}

// ClassifiedItem is a NormalizedItem enriched by the classification engine.
// NeedMoreEvidence is present only when set; SummaryZHReason survives only
// when the localized summary had to be synthesized.
type ClassifiedItem struct {
	NormalizedItem

	RadarCategories  []RadarCategoryScore       `json:"radar_categories"`
	CivPrimaryTag    string                     `json:"civ_primary_tag"`
	CivSecondaryTags []string                   `json:"civ_secondary_tags"`
	CivScore         int                        `json:"civ_score"`
	Score5D          AxisScores                 `json:"score_5d"`
	ScoreTotal       int                        `json:"score_total"`
	RationaleEN      string                     `json:"rationale_en"`
	NeedMoreEvidence bool                       `json:"need_more_evidence,omitempty"`
	Diagnostics      *ClassificationDiagnostics `json:"diagnostics,omitempty"`
}
