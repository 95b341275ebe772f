package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"medlens/internal/analyzer"
	"medlens/internal/domain"
	"medlens/internal/encoder"
	"medlens/internal/metrics"
	"medlens/internal/port"
	"medlens/internal/scan"
)

// SelectFileInput is one uploaded file.
type SelectFileInput struct {
	File        io.Reader
	FileName    string
	ContentType string
}

// ScanService drives a device's analysis state machine.
type ScanService interface {
	Snapshot(ctx context.Context, deviceID string) (*scan.Snapshot, error)
	SelectFile(ctx context.Context, deviceID string, input SelectFileInput) (*scan.Snapshot, error)
	SetCityTier(ctx context.Context, deviceID string, tier domain.CityTier) (*scan.Snapshot, error)
	Analyze(ctx context.Context, deviceID string) (*domain.MedicalAnalysis, error)
	Reset(ctx context.Context, deviceID string) (*scan.Snapshot, error)
	ShowHistory(ctx context.Context, deviceID, analysisID string) (*scan.Snapshot, error)
}

type scanService struct {
	workspaces *Workspaces
	encoder    *encoder.Encoder
	analyzer   port.DocumentAnalyzer
	reporter   port.ErrorReporter
	metrics    *metrics.Metrics
	log        zerolog.Logger
	now        func() time.Time
}

// NewScanService creates a new ScanService implementation.
func NewScanService(
	workspaces *Workspaces,
	enc *encoder.Encoder,
	docAnalyzer port.DocumentAnalyzer,
	reporter port.ErrorReporter,
	m *metrics.Metrics,
	log zerolog.Logger,
) ScanService {
	return &scanService{
		workspaces: workspaces,
		encoder:    enc,
		analyzer:   docAnalyzer,
		reporter:   reporter,
		metrics:    m,
		log:        log.With().Str("component", "scan_service").Logger(),
		now:        time.Now,
	}
}

func (s *scanService) Snapshot(ctx context.Context, deviceID string) (*scan.Snapshot, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("scan.Snapshot: %w", err)
	}
	snap := ws.Machine.Snapshot()
	return &snap, nil
}

func (s *scanService) SelectFile(ctx context.Context, deviceID string, input SelectFileInput) (*scan.Snapshot, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("scan.SelectFile: %w", err)
	}

	doc, err := s.encoder.Encode(input.File, input.FileName, input.ContentType)
	if err != nil {
		s.log.Warn().Err(err).Str("device_id", deviceID).Str("file_name", input.FileName).Msg("file rejected")
		return nil, err
	}
	if err := ws.Machine.SelectFile(doc); err != nil {
		return nil, err
	}

	snap := ws.Machine.Snapshot()
	return &snap, nil
}

func (s *scanService) SetCityTier(ctx context.Context, deviceID string, tier domain.CityTier) (*scan.Snapshot, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("scan.SetCityTier: %w", err)
	}
	if err := ws.Machine.SetCityTier(tier); err != nil {
		return nil, err
	}
	snap := ws.Machine.Snapshot()
	return &snap, nil
}

// Analyze runs one analysis of the selected document. The outbound call is
// detached from ctx cancellation so a dropped client does not abort it;
// the outcome stays on the machine for the next snapshot.
func (s *scanService) Analyze(ctx context.Context, deviceID string) (*domain.MedicalAnalysis, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("scan.Analyze: %w", err)
	}

	// Requests Begin turns away hand their token back.
	now := time.Now()
	reservation := ws.Limiter.ReserveN(now, 1)
	if !reservation.OK() || reservation.DelayFrom(now) > 0 {
		reservation.CancelAt(now)
		s.metrics.AnalyzeRateLimited.Inc()
		return nil, domain.ErrRateLimited
	}

	var ownerID string
	if owner := ws.Session.User(); owner != nil {
		ownerID = owner.ID
	}
	token, doc, tier, err := ws.Machine.Begin()
	if err != nil {
		reservation.CancelAt(now)
		return nil, err
	}

	log := s.log.With().
		Str("device_id", deviceID).
		Uint64("token", uint64(token)).
		Str("mime_type", doc.MimeType).
		Str("city_tier", string(tier)).
		Logger()
	log.Info().Int64("size", doc.Size).Msg("analysis started")

	callCtx := context.WithoutCancel(ctx)
	start := time.Now()
	result, err := s.analyzer.Analyze(callCtx, port.AnalyzeInput{Document: doc, CityTier: tier})
	elapsed := time.Since(start)
	s.metrics.AnalysisLatency.Observe(elapsed.Seconds())

	if err == nil && result == nil {
		err = &analyzer.EmptyResponseError{Provider: "analyzer", Reason: "nil result"}
	}
	if err == nil {
		result.ID = ulid.Make().String()
		result.Timestamp = s.now().UTC()
	}

	if !ws.Machine.Complete(token, result, err) {
		s.metrics.StaleCompletions.Inc()
		log.Info().Err(err).Dur("latency", elapsed).Msg("discarding analysis for a reset scan")
		return nil, domain.ErrStaleAnalysis
	}

	if err != nil {
		kind := analyzer.Kind(err)
		s.metrics.AnalysesFailed.WithLabelValues(kind).Inc()
		log.Error().Err(err).Str("kind", kind).Dur("latency", elapsed).Msg("analysis failed")
		s.reporter.Report(callCtx, err, map[string]string{
			"kind":      kind,
			"device_id": deviceID,
			"mime_type": doc.MimeType,
		})
		return nil, domain.ErrAnalysisFailed
	}

	s.metrics.AnalysesCompleted.WithLabelValues(string(result.DocumentType), string(tier)).Inc()
	log.Info().
		Str("analysis_id", result.ID).
		Str("document_type", string(result.DocumentType)).
		Dur("latency", elapsed).
		Msg("analysis completed")

	if ownerID != "" {
		err := ws.Session.Record(callCtx, ownerID, *result)
		switch {
		case errors.Is(err, domain.ErrNotSignedIn):
			log.Info().Str("analysis_id", result.ID).Str("user_id", ownerID).Msg("signed-in user changed; history not updated")
		case err != nil:
			s.metrics.HistoryWriteFailures.Inc()
			log.Warn().Err(err).Str("analysis_id", result.ID).Msg("history write failed; result kept in memory")
			s.reporter.Report(callCtx, err, map[string]string{"kind": "history_write", "device_id": deviceID})
		}
	}

	out := *result
	return &out, nil
}

func (s *scanService) Reset(ctx context.Context, deviceID string) (*scan.Snapshot, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("scan.Reset: %w", err)
	}
	ws.Machine.Reset()
	snap := ws.Machine.Snapshot()
	return &snap, nil
}

func (s *scanService) ShowHistory(ctx context.Context, deviceID, analysisID string) (*scan.Snapshot, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("scan.ShowHistory: %w", err)
	}
	if ws.Session.User() == nil {
		return nil, domain.ErrNotSignedIn
	}
	a, err := ws.Session.Find(analysisID)
	if err != nil {
		return nil, err
	}
	if err := ws.Machine.Show(a); err != nil {
		return nil, err
	}
	snap := ws.Machine.Snapshot()
	return &snap, nil
}
