package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medlens/internal/analyzer"
	"medlens/internal/domain"
)

const prescriptionReply = `{
  "documentType": "PRESCRIPTION",
  "summary": "Antibiotic course for a throat infection.",
  "simplifiedTerms": [{"jargon": "BD", "meaning": "twice a day", "importance": "dosage timing"}],
  "criticalFindings": [],
  "genericAlternatives": [{
    "brandedName": "Augmentin 625",
    "genericName": "Amoxicillin + Clavulanic Acid 625mg",
    "approxBrandedPrice": "₹220",
    "approxGenericPrice": "₹60",
    "savingsPercentage": "73%"
  }],
  "nextSteps": ["Switch to Generic", "Consult your doctor before switching medicines"]
}`

func TestDecodeAnalysis_Prescription(t *testing.T) {
	a, err := analyzer.DecodeAnalysis(prescriptionReply)
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentTypePrescription, a.DocumentType)
	assert.Equal(t, "Antibiotic course for a throat infection.", a.Summary)
	require.Len(t, a.SimplifiedTerms, 1)
	assert.Equal(t, "BD", a.SimplifiedTerms[0].Jargon)
	assert.NotNil(t, a.CriticalFindings)
	assert.Empty(t, a.CriticalFindings)
	assert.Len(t, a.NextSteps, 2)

	alts, ok := a.GenericAlternatives.Get()
	require.True(t, ok)
	require.Len(t, alts, 1)
	assert.Equal(t, "Augmentin 625", alts[0].BrandedName)

	assert.False(t, a.CostInsights.Present())
	assert.False(t, a.BillAnalysis.Present())
	assert.False(t, a.InsuranceInsights.Present())
	assert.Empty(t, a.ID)
	assert.True(t, a.Timestamp.IsZero())
}

func TestDecodeAnalysis_BillWithOptionalSections(t *testing.T) {
	reply := `{
	  "documentType": "hospital bill",
	  "summary": "Cataract surgery bill.",
	  "simplifiedTerms": [],
	  "criticalFindings": [{"issue": "Consumables", "description": "18% of bill", "action": "Ask for itemization"}],
	  "costInsights": {
	    "procedureName": "Cataract",
	    "billedAmount": "₹55,000",
	    "expectedRange": {"privateLow": "₹15k", "privateHigh": "₹40k", "government": "₹7k"},
	    "isOvercharged": true,
	    "tierComparison": "Above Tier-1 range"
	  },
	  "billAnalysis": {"totalAmount": "₹55,000", "potentialOvercharges": [{"item": "Consumables", "reason": "exceeds 10%", "suggestedAction": "Appeal Overcharge"}]},
	  "insuranceInsights": {"rejectionReason": "", "appealAdvice": null},
	  "nextSteps": ["Appeal Overcharge"]
	}`

	a, err := analyzer.DecodeAnalysis(reply)
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentTypeHospitalBill, a.DocumentType)

	ci, ok := a.CostInsights.Get()
	require.True(t, ok)
	assert.True(t, ci.IsOvercharged)
	assert.Equal(t, "₹55,000", ci.BilledAmount.OrElse(""))
	assert.Equal(t, "₹40k", ci.ExpectedRange.PrivateHigh)

	bill, ok := a.BillAnalysis.Get()
	require.True(t, ok)
	require.Len(t, bill.PotentialOvercharges, 1)
	assert.Equal(t, "Consumables", bill.PotentialOvercharges[0].Item)

	assert.False(t, a.InsuranceInsights.Present(), "blank insurance insights should be absent")
	assert.False(t, a.GenericAlternatives.Present())
}

func TestDecodeAnalysis_InsuranceRejection(t *testing.T) {
	reply := `{"documentType":"INSURANCE_REJECTION","summary":"Claim rejected.","simplifiedTerms":[],"criticalFindings":[],
	  "insuranceInsights":{"rejectionReason":"Pre-existing disease waiting period"},"nextSteps":[]}`

	a, err := analyzer.DecodeAnalysis(reply)
	require.NoError(t, err)

	ii, ok := a.InsuranceInsights.Get()
	require.True(t, ok)
	assert.Equal(t, "Pre-existing disease waiting period", ii.RejectionReason.OrElse(""))
	assert.False(t, ii.AppealAdvice.Present())
	assert.NotNil(t, a.NextSteps)
}

func TestDecodeAnalysis_EmptyOptionalSectionsAreAbsent(t *testing.T) {
	reply := `{"documentType":"LAB_REPORT","summary":"Normal CBC.","simplifiedTerms":[],"criticalFindings":[],
	  "genericAlternatives":[],"costInsights":{},"billAnalysis":{"potentialOvercharges":[]},"nextSteps":[]}`

	a, err := analyzer.DecodeAnalysis(reply)
	require.NoError(t, err)

	assert.False(t, a.GenericAlternatives.Present())
	assert.False(t, a.CostInsights.Present())
	assert.False(t, a.BillAnalysis.Present())
}

func TestDecodeAnalysis_UnknownDocumentType(t *testing.T) {
	reply := `{"documentType":"DISCHARGE_SUMMARY","summary":"s","simplifiedTerms":[],"criticalFindings":[],"nextSteps":[]}`

	a, err := analyzer.DecodeAnalysis(reply)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeUnknown, a.DocumentType)
}

func TestDecodeAnalysis_CodeFence(t *testing.T) {
	reply := "```json\n" + `{"documentType":"LAB_REPORT","summary":"s","simplifiedTerms":[],"criticalFindings":[],"nextSteps":[]}` + "\n```"

	a, err := analyzer.DecodeAnalysis(reply)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeLabReport, a.DocumentType)
}

func TestDecodeAnalysis_MissingRequiredField(t *testing.T) {
	for _, field := range analyzer.RequiredFields {
		t.Run(field, func(t *testing.T) {
			full := map[string]string{
				"documentType":     `"LAB_REPORT"`,
				"summary":          `"s"`,
				"simplifiedTerms":  `[]`,
				"criticalFindings": `[]`,
				"nextSteps":        `[]`,
			}
			delete(full, field)
			reply := "{"
			first := true
			for k, v := range full {
				if !first {
					reply += ","
				}
				first = false
				reply += `"` + k + `":` + v
			}
			reply += "}"

			_, err := analyzer.DecodeAnalysis(reply)

			var malformed *analyzer.MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, field, malformed.Field)
		})
	}
}

func TestDecodeAnalysis_NullRequiredField(t *testing.T) {
	reply := `{"documentType":"LAB_REPORT","summary":"s","simplifiedTerms":[],"criticalFindings":[],"nextSteps":null}`

	_, err := analyzer.DecodeAnalysis(reply)

	var malformed *analyzer.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "nextSteps", malformed.Field)
}

func TestDecodeAnalysis_NotJSON(t *testing.T) {
	_, err := analyzer.DecodeAnalysis("I could not read this document, sorry.")

	var malformed *analyzer.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Empty(t, malformed.Field)
	assert.Equal(t, analyzer.KindMalformedResponse, analyzer.Kind(err))
}

func TestDecodeAnalysis_WrongFieldType(t *testing.T) {
	reply := `{"documentType":"LAB_REPORT","summary":"s","simplifiedTerms":"none","criticalFindings":[],"nextSteps":[]}`

	_, err := analyzer.DecodeAnalysis(reply)

	var malformed *analyzer.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "simplifiedTerms", malformed.Field)
}
