package screening

import (
	"strings"
	"text/template"

	"cv-screening-backend/internal/domain"
)

type compiledRole struct {
	config          RoleConfig
	families        []compiledFamily
	groupFamily     map[string]string
	bonuses         []compiledBonus
	tiers           []RankTier
	experienceTiers []ExperienceTier
	emptyReason     *template.Template
	acceptReason    *template.Template
	rejectReason    *template.Template
}

// Evaluator scores resume text against one role's rule table. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	role *compiledRole
}

// NewEvaluator validates cfg and returns an evaluator for it. A malformed
// table yields a *ConfigurationError.
func NewEvaluator(cfg RoleConfig) (*Evaluator, error) {
	role, err := cfg.compile()
	if err != nil {
		return nil, err
	}
	return &Evaluator{role: role}, nil
}

// MustEvaluator is NewEvaluator for the built-in tables.
func MustEvaluator(cfg RoleConfig) *Evaluator {
	e, err := NewEvaluator(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// RoleID returns the identifier of the evaluated role.
func (e *Evaluator) RoleID() string { return e.role.config.RoleID }

// Title returns the human readable role name.
func (e *Evaluator) Title() string { return e.role.config.Title }

// Tiers returns a copy of the rank tiers, strictest first.
func (e *Evaluator) Tiers() []RankTier {
	return append([]RankTier(nil), e.role.tiers...)
}

// matchState accumulates group matches while families are walked.
type matchState struct {
	text     string
	matched  map[string]bool
	groups   []string
	keywords map[string][]string
	families map[string]int
	weights  int
}

func (m *matchState) count(family string) int {
	if family == "" {
		return len(m.groups)
	}
	return m.families[family]
}

// Evaluate turns resume text into a decision record. The text is normalized
// first, so raw and already-normalized input give the same result.
func (e *Evaluator) Evaluate(text string) domain.DecisionRecord {
	r := e.role
	cfg := r.config
	normalized := NormalizeString(text)

	record := domain.DecisionRecord{
		RoleID:                    cfg.RoleID,
		MinPositiveGroupsRequired: cfg.MinPositiveGroups,
		MatchedGroups:             []string{},
		MatchedKeywords:           map[string][]string{},
		FamilyMatches:             map[string]int{},
	}

	var experience *domain.ExperienceEstimate
	if cfg.UseExperience {
		est := domain.ExperienceEstimate{Level: ExperienceLevelUnknown}
		if normalized != "" {
			est = ExtractExperience(normalized, r.experienceTiers)
		}
		experience = &est
		record.Experience = experience
	}

	if normalized == "" {
		record.Decision = domain.DecisionReject
		record.Rank = domain.RankRejectEmpty
		record.Reason = e.render(r.emptyReason, record)
		return record
	}

	state := &matchState{
		text:     normalized,
		matched:  map[string]bool{},
		groups:   []string{},
		keywords: record.MatchedKeywords,
		families: record.FamilyMatches,
	}

	for _, family := range r.families {
		state.families[family.name] = 0
		for _, g := range family.groups {
			hits := findMatches(normalized, g.patterns)
			if len(hits) == 0 {
				continue
			}
			state.matched[g.name] = true
			state.groups = append(state.groups, g.name)
			state.keywords[g.name] = hits
			state.families[family.name]++
			state.weights += g.weight
		}

		for _, gate := range family.gates {
			if gatePasses(gate.Gate, state) {
				continue
			}
			record.MatchedGroups = state.groups
			record.PositiveGroupsHit = len(state.groups)
			record.Decision = domain.DecisionReject
			record.Rank = gate.Code
			record.Score = e.gateScore(gate.Gate, state)
			record.Reason = e.render(gate.reason, record)
			return record
		}
	}

	record.MatchedGroups = state.groups
	record.PositiveGroupsHit = len(state.groups)

	base := capAt(state.weights, cfg.WeightCap)
	bonus := capAt(e.bonusPoints(state), cfg.BonusCap)
	score := min(100, cfg.Baseline+base+bonus)
	if experience != nil {
		score = min(100, score+experience.Bonus)
	}
	record.Score = score

	record.Rank = domain.RankReject
	record.Decision = domain.DecisionReject
	for _, tier := range r.tiers {
		if score >= tier.MinScore && state.count(tier.Family) >= tier.MinGroups {
			record.Rank = tier.Label
			record.Decision = domain.DecisionAccept
			break
		}
	}

	if record.Accepted() {
		record.Reason = e.render(r.acceptReason, record)
	} else {
		record.Reason = e.render(r.rejectReason, record)
	}
	return record
}

// findMatches returns the patterns of a group found in text, in table order.
func findMatches(text string, patterns []string) []string {
	var hits []string
	for _, p := range patterns {
		if strings.Contains(text, p) {
			hits = append(hits, p)
		}
	}
	return hits
}

func gatePasses(g Gate, m *matchState) bool {
	for _, name := range g.RequireAll {
		if !m.matched[name] {
			return false
		}
	}
	if len(g.RequireAny) > 0 {
		hit := false
		for _, name := range g.RequireAny {
			if m.matched[name] {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return m.count(g.Family) >= g.MinGroups
}

func (e *Evaluator) gateScore(g Gate, m *matchState) int {
	switch g.Score {
	case GateScoreBaseline:
		return e.role.config.Baseline
	case GateScoreWeighted:
		return min(100, capAt(capAt(m.weights, e.role.config.WeightCap), g.ScoreCap))
	default:
		return 0
	}
}

func (e *Evaluator) bonusPoints(m *matchState) int {
	total := 0
	for _, b := range e.role.bonuses {
		if bonusApplies(b, m) {
			total += b.Points
		}
	}
	return total
}

func bonusApplies(b compiledBonus, m *matchState) bool {
	for _, name := range b.AllOf {
		if !m.matched[name] {
			return false
		}
	}
	if len(b.AnyOf) > 0 {
		hit := false
		for _, name := range b.AnyOf {
			if m.matched[name] {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if len(b.phrases) > 0 && len(findMatches(m.text, b.phrases)) == 0 {
		return false
	}
	return true
}

// capAt caps v at limit. A zero limit means uncapped.
func capAt(v, limit int) int {
	if limit > 0 && v > limit {
		return limit
	}
	return v
}

func (e *Evaluator) render(t *template.Template, record domain.DecisionRecord) string {
	data := ReasonData{
		RoleID:            record.RoleID,
		Title:             e.role.config.Title,
		Score:             record.Score,
		Rank:              record.Rank,
		PositiveGroupsHit: record.PositiveGroupsHit,
		MinPositiveGroups: record.MinPositiveGroupsRequired,
		MatchedGroups:     record.MatchedGroups,
		FamilyMatches:     record.FamilyMatches,
		ExperienceLevel:   ExperienceLevelUnknown,
	}
	if record.Experience != nil {
		data.ExperienceLevel = record.Experience.Level
		if record.Experience.Years != nil {
			data.Years = *record.Experience.Years
			data.HasYears = true
		}
	}

	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		// Templates are parsed at construction; a runtime failure still must not
		// cost the caller a decision.
		return record.Rank
	}
	return b.String()
}
