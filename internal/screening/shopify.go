package screening

// ShopifyRoleID identifies the Shopify developer role.
const ShopifyRoleID = "SHOPIFY_DEVELOPER"

// Shopify rule set names accepted by ShopifyConfigFor.
const (
	ShopifyRulesetStrict = "strict"
	ShopifyRulesetLegacy = "legacy"
)

const (
	shopifyExperienceFamily = "experience"
	shopifyTechnicalFamily  = "technical"
)

var shopifyJobTitles = []string{"shopify", "shopify developer", "shopify dev", "shopify engineer", "senior shopify developer"}

func shopifyExperienceGroups() []Group {
	return []Group{
		{Name: "shopify_store_build", Patterns: []string{
			"shopify developer", "senior shopify developer", "shopify development", "shopify store",
			"shopify stores", "shopify theme", "shopify themes", "shopify app", "shopify apps",
			"custom shopify sections", "shopify sections", "shopify templates", "shopify checkout",
			"custom shopify features", "themes", "shopify",
		}},
		{Name: "shopify_management", Patterns: []string{
			"managed shopify store", "shopify store management", "shopify store maintenance",
			"shopify maintenance", "store maintenance", "store management", "a/b testing", "a/b experiments",
		}},
		{Name: "shopify_product_listing", Patterns: []string{
			"shopify product listing", "product listing", "product uploads", "catalog optimization",
			"collection setup",
		}},
		{Name: "shopify_seo", Patterns: []string{
			"shopify seo", "seo optimization", "on-page seo", "website optimization", "core web vitals",
			"page speed optimization", "performance optimization", "performance improvements",
		}},
		{Name: "shopify_analytics", Patterns: []string{
			"performance analysis", "performance tracking", "conversion tracking",
			"conversion rate optimization", "shopify analytics", "google analytics",
		}},
		{Name: "shopify_marketing", Patterns: []string{
			"meta ads", "facebook ads", "instagram ads", "google ads", "shopping ads",
			"conversion campaigns", "remarketing", "retargeting",
		}},
		{Name: "shopify_migrations", Patterns: []string{
			"migrated stores from woocommerce to shopify", "migration to shopify", "migrated to shopify",
			"shopify migration",
		}},
	}
}

func shopifyTechnicalGroups() []Group {
	groups := []Group{
		{Name: "shopify_liquid", Patterns: []string{
			"shopify liquid", "liquid templating", "liquid template", "liquid code", "liquid",
		}},
		{Name: "theme_customization", Patterns: []string{
			"custom shopify theme", "theme customization", "custom sections", "custom blocks",
			"dynamic sections", "theme architecture", "liquid inheritance", "liquid macros",
			"liquid partials", "liquid sections", "liquid snippets", "liquid templates", "liquid themes",
			"liquid widgets", "liquid components", "liquid plugins", "liquid extensions", "liquid apps",
			"theme development", "theme design", "theme implementation", "theme edit", "theme editing",
		}},
		{Name: "os2", Patterns: []string{"online store 2.0", "shopify 2.0", "os 2.0"}},
		{Name: "metafields", Patterns: []string{"shopify metafields", "metafields", "dynamic content"}},
		{Name: "json_templates", Patterns: []string{"json templates", "json template"}},
		{Name: "html_css", Patterns: []string{"html5", "css3", "html", "css"}},
		{Name: "javascript", Patterns: []string{"javascript", "es6", "ecmascript 6", "vanilla js"}},
		{Name: "ajax_jquery", Patterns: []string{"ajax", "jquery"}},
	}
	for i := range groups {
		groups[i].Weight = 10
	}
	return groups
}

var shopifyExperienceGate = Gate{
	Code:      "REJECT_NO_SHOPIFY_EXP",
	Family:    shopifyExperienceFamily,
	MinGroups: 2,
	Score:     GateScoreZero,
	Reason:    "Not enough Shopify experience (need at least 2 distinct Shopify responsibilities).",
}

// ShopifyConfig is the current Shopify developer rule table: two experience
// groups open the technical phase, Liquid is mandatory and every rank tier
// carries a technical-skill minimum.
func ShopifyConfig() RoleConfig {
	return RoleConfig{
		RoleID:    ShopifyRoleID,
		Title:     "Shopify Developer",
		JobTitles: shopifyJobTitles,
		Families: []Family{
			{
				Name:   shopifyExperienceFamily,
				Groups: shopifyExperienceGroups(),
				Gates:  []Gate{shopifyExperienceGate},
			},
			{
				Name:   shopifyTechnicalFamily,
				Groups: shopifyTechnicalGroups(),
				Gates: []Gate{{
					Code:       "REJECT_NO_LIQUID",
					RequireAll: []string{"shopify_liquid"},
					Score:      GateScoreBaseline,
					Reason:     `Rejected: Liquid templating experience is required. Found {{index .FamilyMatches "experience"}} Shopify experience skills and {{index .FamilyMatches "technical"}} technical skills.`,
				}},
			},
		},
		Baseline:          50,
		WeightCap:         50,
		MinPositiveGroups: 2,
		Tiers: []RankTier{
			{Label: "S", MinScore: 85, MinGroups: 4, Family: shopifyTechnicalFamily},
			{Label: "A", MinScore: 70, MinGroups: 3, Family: shopifyTechnicalFamily},
			{Label: "B", MinScore: 55, MinGroups: 2, Family: shopifyTechnicalFamily},
			{Label: "C", MinScore: 50, MinGroups: 1, Family: shopifyTechnicalFamily},
		},
		Reasons: Reasons{
			Accept: `Passed evaluation with rank {{.Rank}}. Found {{index .FamilyMatches "experience"}} Shopify experience skills and {{index .FamilyMatches "technical"}} technical skills.`,
			Reject: `Rejected: Score {{.Score}} with {{index .FamilyMatches "technical"}} technical skills is below the thresholds for every rank.`,
		},
	}
}

// ShopifyLegacyConfig is the earlier Shopify rule table: three experience
// groups earn the 50 point baseline, fewer cap the score at 49, and ranks
// depend on score alone.
func ShopifyLegacyConfig() RoleConfig {
	cfg := ShopifyConfig()
	cfg.Families[1].Gates = []Gate{{
		Code:      "REJECT",
		Family:    shopifyExperienceFamily,
		MinGroups: 3,
		Score:     GateScoreWeighted,
		ScoreCap:  49,
		Reason:    `Rejected: Need at least 3 Shopify experience skills to achieve 50 points. Found {{index .FamilyMatches "experience"}} Shopify experience skills.`,
	}}
	cfg.Tiers = []RankTier{
		{Label: "S", MinScore: 85},
		{Label: "A", MinScore: 70},
		{Label: "B", MinScore: 55},
		{Label: "C", MinScore: 50},
	}
	cfg.Reasons.Reject = "Rejected: Score {{.Score}} is below the minimum threshold of 50."
	return cfg
}

// ShopifyConfigFor returns the rule table for the named rule set. Anything
// other than "legacy" selects the current rules.
func ShopifyConfigFor(ruleset string) RoleConfig {
	if ruleset == ShopifyRulesetLegacy {
		return ShopifyLegacyConfig()
	}
	return ShopifyConfig()
}
