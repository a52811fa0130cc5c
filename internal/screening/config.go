package screening

import (
	"fmt"
	"slices"
	"strings"
	"text/template"

	"cv-screening-backend/internal/domain"
)

// GateScore selects the score reported when a gate rejects a resume.
type GateScore string

const (
	// GateScoreZero reports 0.
	GateScoreZero GateScore = "zero"
	// GateScoreBaseline reports the role baseline.
	GateScoreBaseline GateScore = "baseline"
	// GateScoreWeighted reports the capped sum of matched group weights,
	// further capped by the gate's ScoreCap.
	GateScoreWeighted GateScore = "weighted"
)

// Group is a named set of literal phrases. A group matches when the
// normalized text contains at least one of them.
type Group struct {
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
	Weight   int      `json:"weight"`
}

// Gate is a hard precondition checked right after its family is matched.
type Gate struct {
	Code string `json:"code"`
	// Family whose matched groups MinGroups counts. Empty counts every group
	// matched so far.
	Family     string    `json:"family,omitempty"`
	RequireAll []string  `json:"requireAll,omitempty"`
	RequireAny []string  `json:"requireAny,omitempty"`
	MinGroups  int       `json:"minGroups,omitempty"`
	Score      GateScore `json:"score,omitempty"`
	ScoreCap   int       `json:"scoreCap,omitempty"`
	Reason     string    `json:"reason"`
}

// Family is an ordered block of groups followed by the gates that guard the
// next phase.
type Family struct {
	Name   string  `json:"name"`
	Groups []Group `json:"groups"`
	Gates  []Gate  `json:"gates,omitempty"`
}

// BonusRule awards Points when every AllOf group matched, at least one AnyOf
// group matched (if any are listed) and at least one Phrases entry appears in
// the text (if any are listed).
type BonusRule struct {
	Name    string   `json:"name"`
	Points  int      `json:"points"`
	AllOf   []string `json:"allOf,omitempty"`
	AnyOf   []string `json:"anyOf,omitempty"`
	Phrases []string `json:"phrases,omitempty"`
}

// RankTier is one outcome bucket. Tiers are walked in order and the first
// whose thresholds hold wins.
type RankTier struct {
	Label    string `json:"label"`
	MinScore int    `json:"minScore"`
	// MinGroups counts matched groups in Family, or all groups when Family is empty.
	MinGroups int    `json:"minGroups"`
	Family    string `json:"family,omitempty"`
}

// Reasons holds text/template sources rendered against ReasonData.
type Reasons struct {
	Empty  string `json:"empty,omitempty"`
	Accept string `json:"accept"`
	Reject string `json:"reject"`
}

// RoleConfig is the complete rule table of one role.
type RoleConfig struct {
	RoleID            string           `json:"roleId"`
	Title             string           `json:"title"`
	JobTitles         []string         `json:"jobTitles,omitempty"`
	Families          []Family         `json:"families"`
	Baseline          int              `json:"baseline"`
	WeightCap         int              `json:"weightCap"`
	Bonuses           []BonusRule      `json:"bonuses,omitempty"`
	BonusCap          int              `json:"bonusCap"`
	UseExperience     bool             `json:"useExperience"`
	ExperienceTiers   []ExperienceTier `json:"experienceTiers,omitempty"`
	MinPositiveGroups int              `json:"minPositiveGroups"`
	Tiers             []RankTier       `json:"tiers"`
	Reasons           Reasons          `json:"reasons"`
}

// ReasonData is the value reason templates are executed against.
type ReasonData struct {
	RoleID            string
	Title             string
	Score             int
	Rank              string
	PositiveGroupsHit int
	MinPositiveGroups int
	MatchedGroups     []string
	FamilyMatches     map[string]int
	ExperienceLevel   string
	Years             int
	HasYears          bool
}

const defaultEmptyReason = "Empty or invalid CV text."

// ConfigurationError reports every problem found in a role's rule table.
type ConfigurationError struct {
	RoleID   string
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("role %q: %s", e.RoleID, strings.Join(e.Problems, "; "))
}

func (e *ConfigurationError) Unwrap() error { return domain.ErrConfiguration }

var reasonFuncs = template.FuncMap{
	"join": strings.Join,
}

type compiledGroup struct {
	name     string
	family   string
	patterns []string
	weight   int
}

type compiledFamily struct {
	name   string
	groups []compiledGroup
	gates  []compiledGate
}

type compiledGate struct {
	Gate
	reason *template.Template
}

type compiledBonus struct {
	BonusRule
	phrases []string
}

// compile checks the rule table and builds the immutable form used at
// evaluation time. Slices are copied so later edits to c do not leak in.
func (c RoleConfig) compile() (*compiledRole, error) {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.RoleID) == "" {
		addf("roleId is required")
	}
	if len(c.Families) == 0 {
		addf("at least one family is required")
	}
	if c.Baseline < 0 || c.Baseline > 100 {
		addf("baseline %d out of range [0,100]", c.Baseline)
	}
	if c.WeightCap < 0 || c.BonusCap < 0 {
		addf("caps must not be negative")
	}

	role := &compiledRole{config: c, groupFamily: map[string]string{}}
	families := map[string]int{}
	for fi, f := range c.Families {
		if f.Name == "" {
			addf("family %d has no name", fi)
		} else if _, dup := families[f.Name]; dup {
			addf("duplicate family %q", f.Name)
		}
		families[f.Name] = fi
		if len(f.Groups) == 0 {
			addf("family %q has no groups", f.Name)
		}

		cf := compiledFamily{name: f.Name}
		for _, g := range f.Groups {
			if g.Name == "" {
				addf("family %q has a group without a name", f.Name)
				continue
			}
			if _, dup := role.groupFamily[g.Name]; dup {
				addf("duplicate group %q", g.Name)
			}
			role.groupFamily[g.Name] = f.Name
			if g.Weight < 0 {
				addf("group %q has negative weight", g.Name)
			}
			if len(g.Patterns) == 0 {
				addf("group %q has no patterns", g.Name)
			}
			cg := compiledGroup{name: g.Name, family: f.Name, weight: g.Weight}
			for _, p := range g.Patterns {
				if strings.TrimSpace(p) == "" {
					addf("group %q has a blank pattern", g.Name)
					continue
				}
				cg.patterns = append(cg.patterns, strings.ToLower(p))
			}
			cf.groups = append(cf.groups, cg)
		}
		role.families = append(role.families, cf)
	}

	// Gates may only look at groups whose family has already been matched.
	seen := map[string]bool{}
	for fi, f := range c.Families {
		seen[f.Name] = true
		for _, gate := range f.Gates {
			if gate.Code == "" {
				addf("gate in family %q has no code", f.Name)
			}
			for _, name := range append(append([]string{}, gate.RequireAll...), gate.RequireAny...) {
				fam, ok := role.groupFamily[name]
				if !ok {
					addf("gate %q references unknown group %q", gate.Code, name)
				} else if !seen[fam] {
					addf("gate %q references group %q before it is matched", gate.Code, name)
				}
			}
			if gate.Family != "" && !seen[gate.Family] {
				addf("gate %q counts family %q before it is matched", gate.Code, gate.Family)
			}
			if gate.MinGroups < 0 {
				addf("gate %q has negative minGroups", gate.Code)
			}
			switch gate.Score {
			case "", GateScoreZero, GateScoreBaseline, GateScoreWeighted:
			default:
				addf("gate %q has unknown score mode %q", gate.Code, gate.Score)
			}
			tmpl, err := parseReason(gate.Code, gate.Reason)
			if err != nil {
				addf("gate %q reason: %v", gate.Code, err)
			}
			if fi < len(role.families) {
				gate.RequireAll = slices.Clone(gate.RequireAll)
				gate.RequireAny = slices.Clone(gate.RequireAny)
				role.families[fi].gates = append(role.families[fi].gates, compiledGate{Gate: gate, reason: tmpl})
			}
		}
	}

	for _, b := range c.Bonuses {
		if b.Points < 0 {
			addf("bonus %q has negative points", b.Name)
		}
		if len(b.AllOf) == 0 && len(b.AnyOf) == 0 && len(b.Phrases) == 0 {
			addf("bonus %q has no condition", b.Name)
		}
		for _, name := range append(append([]string{}, b.AllOf...), b.AnyOf...) {
			if _, ok := role.groupFamily[name]; !ok {
				addf("bonus %q references unknown group %q", b.Name, name)
			}
		}
		b.AllOf = slices.Clone(b.AllOf)
		b.AnyOf = slices.Clone(b.AnyOf)
		cb := compiledBonus{BonusRule: b}
		for _, p := range b.Phrases {
			cb.phrases = append(cb.phrases, strings.ToLower(p))
		}
		role.bonuses = append(role.bonuses, cb)
	}

	if len(c.Tiers) == 0 {
		addf("at least one rank tier is required")
	}
	for i, t := range c.Tiers {
		if t.Label == "" {
			addf("tier %d has no label", i)
		}
		if t.MinScore < 0 || t.MinScore > 100 {
			addf("tier %q minScore %d out of range [0,100]", t.Label, t.MinScore)
		}
		if t.Family != "" {
			if _, ok := families[t.Family]; !ok {
				addf("tier %q counts unknown family %q", t.Label, t.Family)
			}
		}
		if i > 0 && t.MinScore > c.Tiers[i-1].MinScore {
			addf("tier %q is stricter than the tier before it", t.Label)
		}
	}

	role.tiers = slices.Clone(c.Tiers)
	role.experienceTiers = slices.Clone(c.ExperienceTiers)
	if c.UseExperience && len(role.experienceTiers) == 0 {
		role.experienceTiers = DefaultExperienceTiers
	}

	emptyReason := c.Reasons.Empty
	if emptyReason == "" {
		emptyReason = defaultEmptyReason
	}
	var err error
	if role.emptyReason, err = parseReason("empty", emptyReason); err != nil {
		addf("empty reason: %v", err)
	}
	if c.Reasons.Accept == "" || c.Reasons.Reject == "" {
		addf("accept and reject reasons are required")
	}
	if role.acceptReason, err = parseReason("accept", c.Reasons.Accept); err != nil {
		addf("accept reason: %v", err)
	}
	if role.rejectReason, err = parseReason("reject", c.Reasons.Reject); err != nil {
		addf("reject reason: %v", err)
	}

	if len(problems) > 0 {
		return nil, &ConfigurationError{RoleID: c.RoleID, Problems: problems}
	}
	return role, nil
}

func parseReason(name, src string) (*template.Template, error) {
	return template.New(name).Funcs(reasonFuncs).Option("missingkey=zero").Parse(src)
}
