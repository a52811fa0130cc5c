package screening

import (
	"regexp"
	"strconv"
	"strings"

	"cv-screening-backend/internal/domain"
)

// ExperienceLevelUnknown is reported when no duration could be inferred.
const ExperienceLevelUnknown = "UNKNOWN"

// ExperienceTier maps an inclusive range of years to a level and bonus.
type ExperienceTier struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Level string `json:"level"`
	Bonus int    `json:"bonus"`
}

// DefaultExperienceTiers is ordered from least to most experienced. Years above
// the last tier fall back to it.
var DefaultExperienceTiers = []ExperienceTier{
	{Min: 0, Max: 0, Level: "ENTRY", Bonus: 1},
	{Min: 1, Max: 1, Level: "JUNIOR_1_2", Bonus: 3},
	{Min: 2, Max: 3, Level: "JUNIOR_2_3", Bonus: 6},
	{Min: 4, Max: 6, Level: "MID_4_6", Bonus: 10},
	{Min: 7, Max: 9, Level: "SENIOR_7_9", Bonus: 13},
	{Min: 10, Max: 50, Level: "EXPERT_10_PLUS", Bonus: 15},
}

var (
	yearsOfExperienceRe = regexp.MustCompile(`(\d+)\s*\+?\s*(?:years|year|yrs|yr)\s+(?:of\s+)?experience`)
	yearsLooseRe        = regexp.MustCompile(`(\d+)\s*\+?\s*(?:years|year|yrs|yr)\b`)

	entryLevelMarkers = []string{"entry level", "entry-level", "entrylevel", "fresher", "graduate trainee"}
	writtenLowYears   = []string{"one year", "two years", "three years", "four years", "five years"}
)

// EstimateYears infers years of professional experience from normalized text.
// It returns nil when nothing in the text indicates a duration.
func EstimateYears(text string) *int {
	if years, ok := maxYears(yearsOfExperienceRe, text); ok {
		return &years
	}
	if years, ok := maxYears(yearsLooseRe, text); ok {
		return &years
	}
	if containsAny(text, entryLevelMarkers) {
		zero := 0
		return &zero
	}
	// Written-out durations are capped at five, so report the conservative minimum.
	if containsAny(text, writtenLowYears) {
		one := 1
		return &one
	}
	return nil
}

// ExtractExperience estimates years from normalized text and maps them onto
// the given tiers.
func ExtractExperience(text string, tiers []ExperienceTier) domain.ExperienceEstimate {
	return LevelFor(EstimateYears(text), tiers)
}

// LevelFor maps years onto tiers. Nil years map to UNKNOWN with no bonus.
func LevelFor(years *int, tiers []ExperienceTier) domain.ExperienceEstimate {
	if years == nil || len(tiers) == 0 {
		return domain.ExperienceEstimate{Level: ExperienceLevelUnknown}
	}
	y := *years
	for _, tier := range tiers {
		if y >= tier.Min && y <= tier.Max {
			return domain.ExperienceEstimate{Years: intPtr(y), Level: tier.Level, Bonus: tier.Bonus}
		}
	}
	top := tiers[len(tiers)-1]
	return domain.ExperienceEstimate{Years: intPtr(y), Level: top.Level, Bonus: top.Bonus}
}

func maxYears(re *regexp.Regexp, text string) (int, bool) {
	best, found := 0, false
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if !found || n > best {
			best, found = n, true
		}
	}
	return best, found
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func intPtr(v int) *int { return &v }
