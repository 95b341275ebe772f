package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"medlens/internal/domain"
)

var errMissingField = errors.New("required field is missing")

type wireCostInsight struct {
	ProcedureName  string               `json:"procedureName"`
	BilledAmount   *string              `json:"billedAmount"`
	ExpectedRange  domain.ExpectedRange `json:"expectedRange"`
	IsOvercharged  bool                 `json:"isOvercharged"`
	TierComparison string               `json:"tierComparison"`
}

type wireInsuranceInsights struct {
	RejectionReason *string `json:"rejectionReason"`
	AppealAdvice    *string `json:"appealAdvice"`
}

type wireAnalysis struct {
	DocumentType        string                      `json:"documentType"`
	Summary             string                      `json:"summary"`
	SimplifiedTerms     []domain.SimplifiedTerm     `json:"simplifiedTerms"`
	CriticalFindings    []domain.CriticalFinding    `json:"criticalFindings"`
	GenericAlternatives []domain.GenericAlternative `json:"genericAlternatives"`
	CostInsights        *wireCostInsight            `json:"costInsights"`
	BillAnalysis        *domain.BillAnalysis        `json:"billAnalysis"`
	InsuranceInsights   *wireInsuranceInsights      `json:"insuranceInsights"`
	NextSteps           []string                    `json:"nextSteps"`
}

// DecodeAnalysis validates the model's reply text and converts it into a
// MedicalAnalysis. It never returns a partially populated result: either
// all required fields are present or a *MalformedResponseError is returned.
func DecodeAnalysis(text string) (*domain.MedicalAnalysis, error) {
	body := []byte(stripCodeFence(text))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &MalformedResponseError{Raw: text, Err: err}
	}
	for _, name := range RequiredFields {
		raw, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, &MalformedResponseError{Field: name, Raw: text, Err: errMissingField}
		}
	}

	var w wireAnalysis
	if err := json.Unmarshal(body, &w); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &MalformedResponseError{Field: typeErr.Field, Raw: text, Err: err}
		}
		return nil, &MalformedResponseError{Raw: text, Err: err}
	}

	return w.toDomain(), nil
}

func (w *wireAnalysis) toDomain() *domain.MedicalAnalysis {
	a := &domain.MedicalAnalysis{
		DocumentType:     domain.ParseDocumentType(w.DocumentType),
		Summary:          strings.TrimSpace(w.Summary),
		SimplifiedTerms:  nonNil(w.SimplifiedTerms),
		CriticalFindings: nonNil(w.CriticalFindings),
		NextSteps:        nonNil(w.NextSteps),
	}

	if len(w.GenericAlternatives) > 0 {
		a.GenericAlternatives = domain.Some(w.GenericAlternatives)
	}

	if ci := w.CostInsights; ci != nil && strings.TrimSpace(ci.ProcedureName) != "" {
		a.CostInsights = domain.Some(domain.CostInsight{
			ProcedureName:  ci.ProcedureName,
			BilledAmount:   optionalString(ci.BilledAmount),
			ExpectedRange:  ci.ExpectedRange,
			IsOvercharged:  ci.IsOvercharged,
			TierComparison: ci.TierComparison,
		})
	}

	if ba := w.BillAnalysis; ba != nil && (ba.TotalAmount != "" || len(ba.PotentialOvercharges) > 0) {
		a.BillAnalysis = domain.Some(domain.BillAnalysis{
			TotalAmount:          ba.TotalAmount,
			PotentialOvercharges: nonNil(ba.PotentialOvercharges),
		})
	}

	if ii := w.InsuranceInsights; ii != nil {
		insights := domain.InsuranceInsights{
			RejectionReason: optionalString(ii.RejectionReason),
			AppealAdvice:    optionalString(ii.AppealAdvice),
		}
		if insights.RejectionReason.Present() || insights.AppealAdvice.Present() {
			a.InsuranceInsights = domain.Some(insights)
		}
	}

	return a
}

func optionalString(s *string) domain.Optional[string] {
	if s == nil || strings.TrimSpace(*s) == "" {
		return domain.None[string]()
	}
	return domain.Some(*s)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
