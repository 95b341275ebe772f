package domain

import "strings"

// DocumentType classifies an uploaded medical document. It is decided by the
// analysis model, never inferred locally.
type DocumentType string

const (
	DocumentTypePrescription       DocumentType = "PRESCRIPTION"
	DocumentTypeLabReport          DocumentType = "LAB_REPORT"
	DocumentTypeHospitalBill       DocumentType = "HOSPITAL_BILL"
	DocumentTypeInsuranceRejection DocumentType = "INSURANCE_REJECTION"
	DocumentTypeUnknown            DocumentType = "UNKNOWN"
)

var documentTypes = map[DocumentType]struct{}{
	DocumentTypePrescription:       {},
	DocumentTypeLabReport:          {},
	DocumentTypeHospitalBill:       {},
	DocumentTypeInsuranceRejection: {},
	DocumentTypeUnknown:            {},
}

// ParseDocumentType normalizes a model-supplied label ("Lab Report",
// "hospital-bill") into a DocumentType. Unrecognized labels map to
// DocumentTypeUnknown.
func ParseDocumentType(s string) DocumentType {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	dt := DocumentType(norm)
	if _, ok := documentTypes[dt]; ok {
		return dt
	}
	return DocumentTypeUnknown
}

// CityTier is the coarse region classification used to pick a cost benchmark
// band. It carries no access-control meaning.
type CityTier string

const (
	CityTier1 CityTier = "Tier-1"
	CityTier2 CityTier = "Tier-2"
	CityTier3 CityTier = "Tier-3"
)

// DefaultCityTier is used until a user picks a region.
const DefaultCityTier = CityTier1

// CityTiers lists the valid tiers in display order.
var CityTiers = []CityTier{CityTier1, CityTier2, CityTier3}

// Valid reports whether t is one of the known tiers.
func (t CityTier) Valid() bool {
	switch t {
	case CityTier1, CityTier2, CityTier3:
		return true
	}
	return false
}

// AllowedContentTypes lists the MIME types accepted for analysis.
var AllowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/heic":      {},
	"image/heif":      {},
}
