package analyzer

// RequiredFields are the keys every analysis reply must carry.
var RequiredFields = []string{"documentType", "summary", "simplifiedTerms", "criticalFindings", "nextSteps"}

func stringProp() map[string]interface{} {
	return map[string]interface{}{"type": "STRING"}
}

func objectProp(props map[string]interface{}, required ...string) map[string]interface{} {
	o := map[string]interface{}{
		"type":       "OBJECT",
		"properties": props,
	}
	if len(required) > 0 {
		o["required"] = required
	}
	return o
}

func arrayOf(item map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "ARRAY", "items": item}
}

// ResponseSchema is the structured-output schema for a MedicalAnalysis,
// without the locally assigned id and timestamp.
func ResponseSchema() map[string]interface{} {
	return objectProp(map[string]interface{}{
		"documentType": map[string]interface{}{
			"type": "STRING",
			"enum": []string{"PRESCRIPTION", "LAB_REPORT", "HOSPITAL_BILL", "INSURANCE_REJECTION", "UNKNOWN"},
		},
		"summary": stringProp(),
		"simplifiedTerms": arrayOf(objectProp(map[string]interface{}{
			"jargon":     stringProp(),
			"meaning":    stringProp(),
			"importance": stringProp(),
		})),
		"criticalFindings": arrayOf(objectProp(map[string]interface{}{
			"issue":       stringProp(),
			"description": stringProp(),
			"action":      stringProp(),
		})),
		"genericAlternatives": arrayOf(objectProp(map[string]interface{}{
			"brandedName":        stringProp(),
			"genericName":        stringProp(),
			"approxBrandedPrice": stringProp(),
			"approxGenericPrice": stringProp(),
			"savingsPercentage":  stringProp(),
		})),
		"costInsights": objectProp(map[string]interface{}{
			"procedureName": stringProp(),
			"billedAmount":  stringProp(),
			"expectedRange": objectProp(map[string]interface{}{
				"privateLow":  stringProp(),
				"privateHigh": stringProp(),
				"government":  stringProp(),
			}),
			"isOvercharged":  map[string]interface{}{"type": "BOOLEAN"},
			"tierComparison": stringProp(),
		}),
		"billAnalysis": objectProp(map[string]interface{}{
			"totalAmount": stringProp(),
			"potentialOvercharges": arrayOf(objectProp(map[string]interface{}{
				"item":            stringProp(),
				"reason":          stringProp(),
				"suggestedAction": stringProp(),
			})),
		}),
		"insuranceInsights": objectProp(map[string]interface{}{
			"rejectionReason": stringProp(),
			"appealAdvice":    stringProp(),
		}),
		"nextSteps": arrayOf(stringProp()),
	}, RequiredFields...)
}
