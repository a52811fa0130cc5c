package screening_test

import (
	"testing"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/internal/screening"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCMS_StrongCandidate(t *testing.T) {
	e := screening.MustEvaluator(screening.GCMSConfig())

	rec := e.Evaluate("Analyst with GC-MS and mass spectrometry in a GMP laboratory. Led method validation. 5 years of experience.")

	assert.Equal(t, screening.GCMSRoleID, rec.RoleID)
	assert.Equal(t, domain.DecisionAccept, rec.Decision)
	assert.Equal(t, "S", rec.Rank)
	// base 95 capped at 80, two combination bonuses, MID_4_6 experience
	assert.Equal(t, 100, rec.Score)
	assert.Equal(t, []string{"gc_core", "advanced_instruments", "qc_environment", "method_dev_val", "sample_prep"}, rec.MatchedGroups)
	assert.Equal(t, 5, rec.PositiveGroupsHit)
	assert.Equal(t, 2, rec.MinPositiveGroupsRequired)
	assert.Equal(t, []string{"gc-ms"}, rec.MatchedKeywords["gc_core"])

	require.NotNil(t, rec.Experience)
	require.NotNil(t, rec.Experience.Years)
	assert.Equal(t, 5, *rec.Experience.Years)
	assert.Equal(t, "MID_4_6", rec.Experience.Level)
	assert.Equal(t, 10, rec.Experience.Bonus)
	assert.Equal(t,
		"Passed GCMS lab screening with rank S. Score 100. Found 5 positive GCMS-related groups: gc_core, advanced_instruments, qc_environment, method_dev_val, sample_prep. Experience level: MID_4_6 (~5 year(s)).",
		rec.Reason)
}

func TestGCMS_CoreGate(t *testing.T) {
	e := screening.MustEvaluator(screening.GCMSConfig())

	rec := e.Evaluate("I have 10 years of Python experience")

	assert.Equal(t, "REJECT_NO_CORE_GCMS", rec.Rank)
	assert.Equal(t, 0, rec.Score)
	assert.Equal(t, domain.DecisionReject, rec.Decision)
	require.NotNil(t, rec.Experience)
	assert.Equal(t, "EXPERT_10_PLUS", rec.Experience.Level)
	assert.Contains(t, rec.Reason, "No clear combination of GC/GC-MS experience")
}

func TestGCMS_CoreWithoutSupportingGroup(t *testing.T) {
	e := screening.MustEvaluator(screening.GCMSConfig())

	rec := e.Evaluate("gas chromatography, bsc chemistry")

	assert.Equal(t, "REJECT_NO_CORE_GCMS", rec.Rank)
	assert.Equal(t, []string{"gc_core", "education"}, rec.MatchedGroups)
}

func TestGCMS_Tiers(t *testing.T) {
	e := screening.MustEvaluator(screening.GCMSConfig())

	tests := []struct {
		name  string
		text  string
		score int
		rank  string
	}{
		{"two groups with combination bonus", "gas chromatography and hplc", 55, "B"},
		{"two groups below every tier", "gc-ms and gmp", 45, domain.RankReject},
		{"stability phrase bonus", "gc-ms hplc gmp method validation stability studies", 95, "S"},
		{"experience lifts into A", "gc-ms, hplc and gmp. 2 years of experience", 76, "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.Evaluate(tt.text)
			assert.Equal(t, tt.score, rec.Score)
			assert.Equal(t, tt.rank, rec.Rank)
			assert.Equal(t, tt.rank != domain.RankReject, rec.Accepted())
		})
	}
}

func TestGCMS_RejectReasonCitesExperience(t *testing.T) {
	e := screening.MustEvaluator(screening.GCMSConfig())

	rec := e.Evaluate("gc-ms and gmp")
	assert.Equal(t,
		"Rejected: Score 45 with 2 positive GCMS-related group(s). Experience level: UNKNOWN. Below required thresholds for GCMS lab specialist.",
		rec.Reason)
}

func TestGCMS_EmptyText(t *testing.T) {
	e := screening.MustEvaluator(screening.GCMSConfig())

	rec := e.Evaluate("")
	assert.Equal(t, domain.RankRejectEmpty, rec.Rank)
	assert.Equal(t, 0, rec.Score)
	require.NotNil(t, rec.Experience)
	assert.Equal(t, screening.ExperienceLevelUnknown, rec.Experience.Level)
	assert.Nil(t, rec.Experience.Years)
}
