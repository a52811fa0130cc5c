package screening

// GCMSRoleID identifies the GCMS lab specialist role.
const GCMSRoleID = "GCMS_LAB_SPECIALIST"

const gcmsFamily = "gcms"

const gcmsExperienceSuffix = `Experience level: {{.ExperienceLevel}}{{if .HasYears}} (~{{.Years}} year(s)){{end}}.`

// GCMSConfig is the rule table for gas chromatography / mass spectrometry
// laboratory specialists.
func GCMSConfig() RoleConfig {
	return RoleConfig{
		RoleID:    GCMSRoleID,
		Title:     "GCMS Lab Specialist",
		JobTitles: []string{"gcms", "gc-ms", "gc ms", "gcms lab specialist", "lab specialist", "gcms lab", "laboratory specialist"},
		Families: []Family{{
			Name: gcmsFamily,
			Groups: []Group{
				{Name: "gc_core", Weight: 30, Patterns: []string{
					"gas chromatography", "gc-ms", "gcms", "gc ms", "gc ms/ms", "gc-ms/ms", "gc ",
				}},
				{Name: "advanced_instruments", Weight: 20, Patterns: []string{
					"hplc", "uplc", "uhplc", "lc-ms", "lcms", "lc ms", "liquid chromatography",
					"mass spectrometry", "ms/ms",
				}},
				{Name: "qc_environment", Weight: 15, Patterns: []string{
					"quality control laboratory", "quality control lab", "qc laboratory", "qc lab",
					"qc environment", "pharmaceutical industry", "pharma qc", "gmp", "glp",
					"regulated environment", "good laboratory practice",
				}},
				{Name: "method_dev_val", Weight: 20, Patterns: []string{
					"method development", "method validation", "method transfer", "stability study",
					"stability studies", "robustness", "linearity", "accuracy", "precision",
					"limit of detection", "limit of quantification",
				}},
				{Name: "sample_prep", Weight: 10, Patterns: []string{
					"sample preparation", "sample prep", "extraction", "solid phase extraction", "spe",
					"liquid-liquid extraction", "calibration curve", "standard preparation", "standard prep",
				}},
				{Name: "documentation", Weight: 5, Patterns: []string{
					"sop", "standard operating procedure", "lab documentation", "laboratory documentation",
					"deviation report", "deviation reports", "oos", "out of specification",
					"investigation report", "change control", "audit",
				}},
				{Name: "education", Weight: 10, Patterns: []string{
					"bsc chemistry", "b.sc chemistry", "bachelor of science in chemistry", "msc chemistry",
					"m.sc chemistry", "master of science in chemistry", "analytical chemistry",
					"pharmaceutical chemistry", "chemical engineering",
				}},
			},
			Gates: []Gate{
				{
					Code:       "REJECT_NO_CORE_GCMS",
					RequireAll: []string{"gc_core"},
					RequireAny: []string{"advanced_instruments", "qc_environment", "method_dev_val"},
					Score:      GateScoreZero,
					Reason:     "Rejected: No clear combination of GC/GC-MS experience with advanced instruments, QC environment, or method validation.",
				},
				{
					Code:      "REJECT_TOO_WEAK",
					MinGroups: 2,
					Score:     GateScoreZero,
					Reason:    "Rejected: Only {{.PositiveGroupsHit}} GCMS-related group(s) found. Need at least {{.MinPositiveGroups}}.",
				},
			},
		}},
		Baseline:  0,
		WeightCap: 80,
		Bonuses: []BonusRule{
			{Name: "gc_with_instruments", Points: 5, AllOf: []string{"gc_core", "advanced_instruments"}},
			{Name: "validation_in_qc", Points: 5, AllOf: []string{"method_dev_val", "qc_environment"}},
			{Name: "chemistry_with_instruments", Points: 5, AllOf: []string{"education"}, AnyOf: []string{"gc_core", "advanced_instruments"}},
			{Name: "stability_studies", Points: 5, AllOf: []string{"method_dev_val"}, Phrases: []string{"stability study", "stability studies"}},
		},
		BonusCap:          20,
		UseExperience:     true,
		ExperienceTiers:   DefaultExperienceTiers,
		MinPositiveGroups: 2,
		Tiers: []RankTier{
			{Label: "S", MinScore: 80, MinGroups: 3},
			{Label: "A", MinScore: 65, MinGroups: 3},
			{Label: "B", MinScore: 55, MinGroups: 2},
		},
		Reasons: Reasons{
			Accept: `Passed GCMS lab screening with rank {{.Rank}}. Score {{.Score}}. Found {{.PositiveGroupsHit}} positive GCMS-related groups: {{join .MatchedGroups ", "}}. ` + gcmsExperienceSuffix,
			Reject: `Rejected: Score {{.Score}} with {{.PositiveGroupsHit}} positive GCMS-related group(s). Experience level: {{.ExperienceLevel}}{{if .HasYears}} (~{{.Years}} year(s)){{end}}. Below required thresholds for GCMS lab specialist.`,
		},
	}
}
