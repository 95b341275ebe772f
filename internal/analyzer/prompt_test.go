package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medlens/internal/analyzer"
	"medlens/internal/domain"
)

func TestBuildAnalysisPrompt_Tier1(t *testing.T) {
	p := analyzer.BuildAnalysisPrompt(domain.CityTier1, analyzer.DefaultBenchmarks())

	assert.Contains(t, p, "Tier-1 cities")
	assert.Contains(t, p, "Cataract: private ₹15k - ₹40k")
	assert.Contains(t, p, "Knee Replacement: private ₹1.5L - ₹3L")
	assert.Contains(t, p, "exceeding 10% of the total bill")
	assert.Contains(t, p, "Jan Aushadhi")
	assert.Contains(t, p, "Lakhs")
	assert.Contains(t, p, "consulting their doctor")
}

func TestBuildAnalysisPrompt_UsesTierBands(t *testing.T) {
	p := analyzer.BuildAnalysisPrompt(domain.CityTier3, analyzer.DefaultBenchmarks())

	assert.Contains(t, p, "Tier-3 cities")
	assert.Contains(t, p, "Cataract: private ₹9k - ₹22k")
	assert.NotContains(t, p, "Tier-1 cities")
}

func TestBuildAnalysisPrompt_InvalidTierDefaults(t *testing.T) {
	p := analyzer.BuildAnalysisPrompt("", analyzer.DefaultBenchmarks())
	assert.Contains(t, p, "Tier-1 cities")
}

func TestResponseSchema_RequiredFields(t *testing.T) {
	schema := analyzer.ResponseSchema()

	assert.Equal(t, "OBJECT", schema["type"])
	assert.Equal(t, analyzer.RequiredFields, schema["required"])

	props := schema["properties"].(map[string]interface{})
	for _, key := range []string{"documentType", "summary", "simplifiedTerms", "criticalFindings",
		"genericAlternatives", "costInsights", "billAnalysis", "insuranceInsights", "nextSteps"} {
		assert.Contains(t, props, key)
	}
	assert.NotContains(t, props, "id")
	assert.NotContains(t, props, "timestamp")
}
