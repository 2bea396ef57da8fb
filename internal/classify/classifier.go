package classify

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bg1eym/atlas-data/internal/domain"
)

const (
	radarScoreCap = 5.0
	compositeCap  = 10
	axisCap       = 2
	keywordWeight = 0.5
	hintBonus     = 2.2

	rationaleMaxLen = 240
	summaryTitleMax = 40
	summaryZHMax    = 80
)

// Classifier scores items against a taxonomy. Pure and deterministic:
// classifying the same item twice yields identical results, including on its
// own output.
type Classifier struct {
	tax Taxonomy
}

// New builds a classifier over the given taxonomy.
func New(tax Taxonomy) *Classifier {
	return &Classifier{tax: tax}
}

// NewDefault builds a classifier over the built-in taxonomy.
func NewDefault() *Classifier {
	return New(DefaultTaxonomy())
}

// ClassifyAll classifies a batch of items in order.
func (c *Classifier) ClassifyAll(items []domain.NormalizedItem) []domain.ClassifiedItem {
	out := make([]domain.ClassifiedItem, 0, len(items))
	for _, it := range items {
		out = append(out, c.ClassifyItem(it))
	}
	return out
}

// ClassifyItem scores one item across radar categories, factions, and the
// five semantic axes, attaching confidence diagnostics.
func (c *Classifier) ClassifyItem(item domain.NormalizedItem) domain.ClassifiedItem {
	text := item.Title + " " + item.Summary
	lower := strings.ToLower(text)

	radar := make([]domain.RadarCategoryScore, 0, len(c.tax.RadarOrder))
	for _, id := range c.tax.RadarOrder {
		score, evidence := c.scoreRadarCategory(text, lower, item.URL, item.SourceName, item.CategoryHint, id)
		radar = append(radar, domain.RadarCategoryScore{ID: id, Score: score, Evidence: evidence})
	}

	allScores := make([]float64, len(radar))
	for i, r := range radar {
		allScores[i] = r.Score
	}

	sort.SliceStable(radar, func(i, j int) bool { return radar[i].Score > radar[j].Score })
	top := radar
	if len(top) > 2 {
		top = top[:2]
	}

	counts := c.factionCounts(lower)
	primary := c.tax.DefaultFaction
	civScore := 0
	if len(counts) > 0 {
		primary = counts[0].tag
		civScore = counts[0].count
	}
	secondary := []string{}
	for i := 1; i < len(counts) && i < 3; i++ {
		secondary = append(secondary, counts[i].tag)
	}

	axes := domain.AxisScores{
		Compute:    c.scoreAxis(lower, AxisCompute),
		Governance: c.scoreAxis(lower, AxisGovernance),
		Narrative:  c.scoreAxis(lower, AxisNarrative),
		Behavior:   c.scoreAxis(lower, AxisBehavior),
		Capability: c.scoreAxis(lower, AxisCapability),
	}
	total := axes.Sum() + civScore
	if total > compositeCap {
		total = compositeCap
	}

	var top1Score, top2Score float64
	var top1Evidence []domain.ClassificationEvidence
	if len(top) > 0 {
		top1Score = top[0].Score
		top1Evidence = top[0].Evidence
	}
	if len(top) > 1 {
		top2Score = top[1].Score
	}
	topGap := top1Score - top2Score
	onlyPrior := priorOnly(top1Evidence)
	needMoreEvidence := topGap > 2 && (len(top1Evidence) < 2 || onlyPrior)

	strength := 0.5
	switch {
	case len(top1Evidence) >= 2 && !onlyPrior:
		strength = 1
	case onlyPrior:
		strength = 0.2
	}
	diagnostics := &domain.ClassificationDiagnostics{
		CategoryEntropy:  round2(entropy(allScores)),
		TopGap:           round2(topGap),
		EvidenceStrength: strength,
	}

	adjusted := make([]domain.RadarCategoryScore, len(top))
	copy(adjusted, top)
	if needMoreEvidence && len(adjusted) > 0 {
		adjusted[0].Score = math.Max(0, adjusted[0].Score-1)
	}

	rationale := c.buildRationale(top, top1Score, primary, civScore, axes)

	rawZH := strings.TrimSpace(item.SummaryZH)
	synthesized := rawZH == "" || rawZH == domain.PlaceholderSummaryZH
	summaryZH := rawZH
	summaryZHReason := ""
	if synthesized {
		summaryZH = c.synthesizeSummary(primary, item.Title)
		summaryZHReason = item.SummaryZHReason
	}

	result := domain.ClassifiedItem{
		NormalizedItem:   item,
		RadarCategories:  adjusted,
		CivPrimaryTag:    primary,
		CivSecondaryTags: secondary,
		CivScore:         civScore,
		Score5D:          axes,
		ScoreTotal:       total,
		RationaleEN:      rationale,
		NeedMoreEvidence: needMoreEvidence,
		Diagnostics:      diagnostics,
	}
	result.SummaryZH = summaryZH
	result.SummaryZHReason = summaryZHReason
	return result
}

func (c *Classifier) scoreRadarCategory(text, lower, url, sourceName, categoryHint, categoryID string) (float64, []domain.ClassificationEvidence) {
	def := c.tax.Radar[categoryID]
	evidence := []domain.ClassificationEvidence{}
	score := 0.0

	var matchedKw []string
	for _, kw := range def.SeedKeywordsEN {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matchedKw = append(matchedKw, kw)
			score += keywordWeight
		}
	}
	for _, kw := range def.SeedKeywordsZH {
		if strings.Contains(lower, kw) || strings.Contains(text, kw) {
			matchedKw = append(matchedKw, kw)
			score += keywordWeight
		}
	}
	if len(matchedKw) > 0 {
		evidence = append(evidence, domain.ClassificationEvidence{MatchedKeywords: matchedKw})
	}

	var matchedPat []string
	for i := range def.Signals {
		if def.Signals[i].Matches(text, url) {
			matchedPat = append(matchedPat, def.Signals[i].Pattern)
			score += def.Signals[i].Weight
		}
	}
	if len(matchedPat) > 0 {
		evidence = append(evidence, domain.ClassificationEvidence{MatchedPatterns: matchedPat})
	}

	if prior := c.tax.SourcePrior(categoryID, sourceName); prior > defaultSourcePrior {
		score += prior * 0.5
		evidence = append(evidence, domain.ClassificationEvidence{SourcePriorUsed: prior})
	}

	if categoryHint != "" && categoryHint == categoryID {
		score += hintBonus
		evidence = append(evidence, domain.ClassificationEvidence{
			MatchedKeywords: []string{"source_category_hint:" + categoryHint},
		})
	}

	if score > radarScoreCap {
		score = radarScoreCap
	}
	return score, evidence
}

type factionCount struct {
	tag   string
	count int
}

// factionCounts scores every faction by distinct keyword presence and
// returns only factions with at least one hit, ranked descending. Ties keep
// the fixed faction order.
func (c *Classifier) factionCounts(lower string) []factionCount {
	var counts []factionCount
	for _, tag := range c.tax.Factions {
		n := 0
		for _, kw := range c.tax.FactionKeywords[tag] {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		if n > 0 {
			counts = append(counts, factionCount{tag: tag, count: n})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })
	return counts
}

func (c *Classifier) scoreAxis(lower, axis string) int {
	s := 0
	for _, rule := range c.tax.AxisRules[axis] {
		if rule.re != nil && rule.re.MatchString(lower) {
			s += rule.Weight
		}
	}
	if s > axisCap {
		s = axisCap
	}
	return s
}

func (c *Classifier) buildRationale(top []domain.RadarCategoryScore, top1Score float64, primary string, civScore int, axes domain.AxisScores) string {
	parts := []string{}
	topID := "—"
	if len(top) > 0 {
		topID = top[0].ID
	}
	parts = append(parts, fmt.Sprintf("Radar: %s (%s)", topID, formatScore(top1Score)))
	if len(top) > 0 {
		for _, e := range top[0].Evidence {
			if len(e.MatchedKeywords) == 0 {
				continue
			}
			samples := e.MatchedKeywords
			if len(samples) > 3 {
				samples = samples[:3]
			}
			parts = append(parts, "kw:"+strings.Join(samples, ","))
			break
		}
	}
	parts = append(parts, fmt.Sprintf("Civ: %s (%d)", primary, civScore))
	parts = append(parts, fmt.Sprintf("5D: compute=%d,governance=%d,narrative=%d,behavior=%d,capability=%d",
		axes.Compute, axes.Governance, axes.Narrative, axes.Behavior, axes.Capability))
	return domain.Truncate(strings.Join(parts, ". "), rationaleMaxLen)
}

// synthesizeSummary builds a localized summary from the primary faction
// label and a truncated title.
func (c *Classifier) synthesizeSummary(tag, title string) string {
	prefix := c.tax.FactionLabel(tag)
	s := prefix + "：" + domain.Truncate(title, summaryTitleMax)
	if len([]rune(title)) > summaryTitleMax {
		s += "…"
	}
	return domain.Truncate(s, summaryZHMax)
}

// priorOnly reports whether every evidence entry is a bare source prior.
// Vacuously true for empty evidence.
func priorOnly(evidence []domain.ClassificationEvidence) bool {
	for _, e := range evidence {
		if e.SourcePriorUsed == 0 || len(e.MatchedKeywords) > 0 || len(e.MatchedPatterns) > 0 {
			return false
		}
	}
	return true
}

func entropy(scores []float64) float64 {
	var total float64
	for _, s := range scores {
		total += s
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, s := range scores {
		if s > 0 {
			p := s / total
			h -= p * math.Log2(p)
		}
	}
	return h
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}
