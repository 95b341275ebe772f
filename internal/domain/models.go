package domain

import "time"

// SimplifiedTerm is one decoded piece of medical or billing jargon.
type SimplifiedTerm struct {
	Jargon     string `json:"jargon"`
	Meaning    string `json:"meaning"`
	Importance string `json:"importance"`
}

// CriticalFinding is a flagged problem that needs the user's attention.
type CriticalFinding struct {
	Issue       string `json:"issue"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// GenericAlternative pairs a branded medicine with a cheaper generic.
type GenericAlternative struct {
	BrandedName        string `json:"brandedName"`
	GenericName        string `json:"genericName"`
	ApproxBrandedPrice string `json:"approxBrandedPrice"`
	ApproxGenericPrice string `json:"approxGenericPrice"`
	SavingsPercentage  string `json:"savingsPercentage"`
}

// ExpectedRange is a reference price band for a procedure.
type ExpectedRange struct {
	PrivateLow  string `json:"privateLow"`
	PrivateHigh string `json:"privateHigh"`
	Government  string `json:"government"`
}

// CostInsight benchmarks a detected procedure against the regional band.
type CostInsight struct {
	ProcedureName  string           `json:"procedureName"`
	BilledAmount   Optional[string] `json:"billedAmount,omitzero"`
	ExpectedRange  ExpectedRange    `json:"expectedRange"`
	IsOvercharged  bool             `json:"isOvercharged"`
	TierComparison string           `json:"tierComparison"`
}

// PotentialOvercharge is a bill line item that looks inflated.
type PotentialOvercharge struct {
	Item            string `json:"item"`
	Reason          string `json:"reason"`
	SuggestedAction string `json:"suggestedAction"`
}

// BillAnalysis summarizes an itemized bill.
type BillAnalysis struct {
	TotalAmount          string                `json:"totalAmount"`
	PotentialOvercharges []PotentialOvercharge `json:"potentialOvercharges"`
}

// InsuranceInsights explains an insurance claim rejection.
type InsuranceInsights struct {
	RejectionReason Optional[string] `json:"rejectionReason,omitzero"`
	AppealAdvice    Optional[string] `json:"appealAdvice,omitzero"`
}

// MedicalAnalysis is the result of one analysis request. ID and Timestamp
// are assigned locally once the reply has been accepted.
type MedicalAnalysis struct {
	ID                  string                         `json:"id"`
	Timestamp           time.Time                      `json:"timestamp"`
	DocumentType        DocumentType                   `json:"documentType"`
	Summary             string                         `json:"summary"`
	SimplifiedTerms     []SimplifiedTerm               `json:"simplifiedTerms"`
	CriticalFindings    []CriticalFinding              `json:"criticalFindings"`
	GenericAlternatives Optional[[]GenericAlternative] `json:"genericAlternatives,omitzero"`
	CostInsights        Optional[CostInsight]          `json:"costInsights,omitzero"`
	BillAnalysis        Optional[BillAnalysis]         `json:"billAnalysis,omitzero"`
	InsuranceInsights   Optional[InsuranceInsights]    `json:"insuranceInsights,omitzero"`
	NextSteps           []string                       `json:"nextSteps"`
}

// User is the locally synthesized profile of whoever is signed in on a
// device. There is no credential behind it.
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	CityTier CityTier `json:"cityTier"`
}

// EncodedDocument is a fully read upload, ready to be sent for analysis.
type EncodedDocument struct {
	Base64Payload string `json:"-"`
	MimeType      string `json:"mimeType"`
	FileName      string `json:"fileName"`
	Size          int64  `json:"size"`
}
