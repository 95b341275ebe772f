package port

import (
	"context"

	"medlens/internal/domain"
)

// AnalyzeInput carries one encoded document and the region hint.
type AnalyzeInput struct {
	Document *domain.EncodedDocument
	CityTier domain.CityTier
}

// DocumentAnalyzer abstracts the external structured-generation service.
// Implementations make exactly one outbound call per Analyze and never
// retry. The returned analysis has no ID or Timestamp yet.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*domain.MedicalAnalysis, error)
}
