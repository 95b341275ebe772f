package analyzer

import (
	"fmt"
	"strings"

	"medlens/internal/domain"
)

// BuildAnalysisPrompt returns the instruction sent alongside the document.
func BuildAnalysisPrompt(tier domain.CityTier, b *Benchmarks) string {
	if !tier.Valid() {
		tier = domain.DefaultCityTier
	}

	var bands strings.Builder
	for _, band := range b.Bands(tier) {
		fmt.Fprintf(&bands, "   - %s: private %s - %s, government %s\n",
			band.Procedure, FormatINR(band.PrivateLow), FormatINR(band.PrivateHigh), FormatINR(band.Government))
	}

	threshold := trimDecimal(b.OverchargeThresholdPercent)

	return `You are an expert Indian medical finance consultant helping a patient understand a document they photographed or scanned.

Analyze the attached document and cover:
1. DOCUMENT TYPE: classify it as exactly one of PRESCRIPTION, LAB_REPORT, HOSPITAL_BILL, INSURANCE_REJECTION or UNKNOWN.
2. JARGON: explain every medical or billing term a layperson would not understand, with its meaning and why it matters.
3. GENERIC SAVINGS (prescriptions only): identify branded Indian medicines and suggest Jan Aushadhi Kendra or other generic equivalents with estimated prices (₹ branded vs ₹ generic) and the saving as a percentage.
4. COST BENCHMARKING (bills only): if a procedure or surgery is detected, compare the billed cost against these reference bands for ` + string(tier) + ` cities:
` + bands.String() + `   Set isOvercharged when the billed amount is above the private high end of the band.
5. OVERCHARGES (bills only): flag "Consumables", "Service charges" or any other itemized fee exceeding ` + threshold + `% of the total bill, and list each one as a critical finding as well.
6. INSURANCE (rejection letters only): state the rejection reason and how to appeal.
7. NEXT STEPS: suggest concrete actions such as "Switch to Generic", "Appeal Overcharge" or "Submit TPA claim".

Rules:
- Use Indian numbering (thousands, Lakhs, Crores) for all amounts.
- Always include a next step reminding the patient that switching medicines requires consulting their doctor whenever generic alternatives are suggested.
- Omit genericAlternatives, costInsights, billAnalysis and insuranceInsights entirely when they do not apply to this document.
- documentType, summary, simplifiedTerms, criticalFindings and nextSteps are always required; use empty arrays when nothing applies.

Respond strictly in JSON according to the response schema, with no markdown and no commentary.`
}
