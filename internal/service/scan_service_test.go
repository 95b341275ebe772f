package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medlens/internal/analyzer"
	"medlens/internal/config"
	"medlens/internal/domain"
	"medlens/internal/port"
	"medlens/internal/scan"
	"medlens/internal/service"
	"medlens/internal/storage/memory"
)

func TestScanService_SelectFile(t *testing.T) {
	env := newTestEnv(t)

	snap, err := env.scans.SelectFile(context.Background(), "dev-1", service.SelectFileInput{
		File:        bytes.NewReader(pngHeader),
		FileName:    "rx.png",
		ContentType: "application/octet-stream",
	})
	require.NoError(t, err)
	assert.Equal(t, scan.StateFileSelected, snap.State)
	require.NotNil(t, snap.Document)
	assert.Equal(t, "image/png", snap.Document.MimeType)
	assert.Equal(t, "rx.png", snap.Document.FileName)
}

func TestScanService_SelectFileRejectsUnsupported(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.scans.SelectFile(context.Background(), "dev-1", service.SelectFileInput{
		File:        bytes.NewReader([]byte("plain text notes")),
		FileName:    "notes.txt",
		ContentType: "text/plain",
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	snap, err := env.scans.Snapshot(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, scan.StateIdle, snap.State)
}

func TestScanService_AnalyzeWithoutDocument(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.scans.Analyze(context.Background(), "dev-1")
	assert.ErrorIs(t, err, domain.ErrNoDocument)
	env.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestScanService_AnalyzePrescriptionSignedIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signUp(t, "dev-1", "asha@example.com")
	env.selectPNG(t, "dev-1")

	env.analyzer.On("Analyze", mock.Anything, mock.MatchedBy(func(in port.AnalyzeInput) bool {
		return in.CityTier == domain.CityTier1 && in.Document.MimeType == "image/png" && in.Document.Base64Payload != ""
	})).Return(prescriptionAnalysis(), nil).Once()

	a, err := env.scans.Analyze(ctx, "dev-1")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.Timestamp.IsZero())
	assert.Equal(t, domain.DocumentTypePrescription, a.DocumentType)
	require.True(t, a.GenericAlternatives.Present())

	snap, err := env.scans.Snapshot(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, scan.StateResult, snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, a.ID, snap.Result.ID)

	history, err := env.accounts.History(ctx, "dev-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, a.ID, history[0].ID)

	// A second Analyze on the same result is refused.
	_, err = env.scans.Analyze(ctx, "dev-1")
	assert.ErrorIs(t, err, domain.ErrScanComplete)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.AnalysesCompleted.WithLabelValues("PRESCRIPTION", "Tier-1")))
	env.analyzer.AssertExpectations(t)
	env.reporter.AssertNotCalled(t, "Report", mock.Anything, mock.Anything, mock.Anything)
}

func TestScanService_AnalyzeAnonymousDoesNotPersist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.selectPNG(t, "dev-1")
	env.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(prescriptionAnalysis(), nil).Once()

	_, err := env.scans.Analyze(ctx, "dev-1")
	require.NoError(t, err)

	env.signUp(t, "dev-1", "asha@example.com")
	history, err := env.accounts.History(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestScanService_AnalyzeFailureKeepsFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signUp(t, "dev-1", "asha@example.com")
	env.selectPNG(t, "dev-1")

	cause := &analyzer.MalformedResponseError{Field: "summary", Err: errors.New("missing required field")}
	env.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(nil, cause).Once()
	env.reporter.On("Report", mock.Anything, cause, mock.MatchedBy(func(tags map[string]string) bool {
		return tags["kind"] == analyzer.KindMalformedResponse
	})).Once()

	_, err := env.scans.Analyze(ctx, "dev-1")
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)

	snap, err := env.scans.Snapshot(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, scan.StateFailed, snap.State)
	assert.Equal(t, domain.GenericAnalysisMessage, snap.Error)
	require.NotNil(t, snap.Document)
	assert.Nil(t, snap.Result)

	history, err := env.accounts.History(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.AnalysesFailed.WithLabelValues(analyzer.KindMalformedResponse)))
	env.reporter.AssertExpectations(t)

	// Retry from failed works with the retained file.
	env.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(prescriptionAnalysis(), nil).Once()
	_, err = env.scans.Analyze(ctx, "dev-1")
	require.NoError(t, err)
}

func TestScanService_CityTierReachesAnalyzer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.selectPNG(t, "dev-1")

	snap, err := env.scans.SetCityTier(ctx, "dev-1", domain.CityTier3)
	require.NoError(t, err)
	assert.Equal(t, domain.CityTier3, snap.CityTier)

	env.analyzer.On("Analyze", mock.Anything, mock.MatchedBy(func(in port.AnalyzeInput) bool {
		return in.CityTier == domain.CityTier3
	})).Return(prescriptionAnalysis(), nil).Once()

	_, err = env.scans.Analyze(ctx, "dev-1")
	require.NoError(t, err)
	env.analyzer.AssertExpectations(t)
}

func TestScanService_SetCityTierInvalid(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.scans.SetCityTier(context.Background(), "dev-1", domain.CityTier("Tier-9"))
	assert.ErrorIs(t, err, domain.ErrInvalidCityTier)
}

func TestScanService_RateLimited(t *testing.T) {
	env := newTestEnvWithKV(t, memory.NewStore(), config.RateLimitConfig{AnalyzePerMinute: 1, Burst: 1})
	ctx := context.Background()
	env.selectPNG(t, "dev-1")
	env.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(prescriptionAnalysis(), nil).Once()

	_, err := env.scans.Analyze(ctx, "dev-1")
	require.NoError(t, err)

	_, err = env.scans.Reset(ctx, "dev-1")
	require.NoError(t, err)
	env.selectPNG(t, "dev-1")

	_, err = env.scans.Analyze(ctx, "dev-1")
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.AnalyzeRateLimited))

	snap, err := env.scans.Snapshot(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, scan.StateFileSelected, snap.State)
	env.analyzer.AssertNumberOfCalls(t, "Analyze", 1)
}

func TestScanService_RejectedAnalyzeKeepsRateBudget(t *testing.T) {
	env := newTestEnvWithKV(t, memory.NewStore(), config.RateLimitConfig{AnalyzePerMinute: 1, Burst: 1})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := env.scans.Analyze(ctx, "dev-1")
		require.ErrorIs(t, err, domain.ErrNoDocument)
	}

	env.selectPNG(t, "dev-1")
	env.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(prescriptionAnalysis(), nil).Once()
	_, err := env.scans.Analyze(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.AnalyzeRateLimited))

	// The accepted call spent the only token.
	_, err = env.scans.Reset(ctx, "dev-1")
	require.NoError(t, err)
	env.selectPNG(t, "dev-1")
	_, err = env.scans.Analyze(ctx, "dev-1")
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	env.analyzer.AssertNumberOfCalls(t, "Analyze", 1)
}

// blockAnalyzer makes the analyzer mock wait on release before returning.
func blockAnalyzer(env *testEnv, release <-chan struct{}) {
	env.analyzer.On("Analyze", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(prescriptionAnalysis(), nil).Once()
}

func waitForState(t *testing.T, env *testEnv, deviceID string, want scan.State) {
	t.Helper()
	require.Eventually(t, func() bool {
		snap, err := env.scans.Snapshot(context.Background(), deviceID)
		return err == nil && snap.State == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScanService_AnalyzeWhileAnalyzing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.selectPNG(t, "dev-1")
	release := make(chan struct{})
	blockAnalyzer(env, release)

	done := make(chan error, 1)
	go func() {
		_, err := env.scans.Analyze(ctx, "dev-1")
		done <- err
	}()
	waitForState(t, env, "dev-1", scan.StateAnalyzing)

	_, err := env.scans.Analyze(ctx, "dev-1")
	assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)

	_, err = env.scans.SelectFile(ctx, "dev-1", service.SelectFileInput{
		File: bytes.NewReader(pngHeader), FileName: "other.png", ContentType: "image/png",
	})
	assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)

	close(release)
	require.NoError(t, <-done)
	env.analyzer.AssertNumberOfCalls(t, "Analyze", 1)
}

func TestScanService_ResetDiscardsInFlightResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signUp(t, "dev-1", "asha@example.com")
	env.selectPNG(t, "dev-1")
	release := make(chan struct{})
	blockAnalyzer(env, release)

	done := make(chan error, 1)
	go func() {
		_, err := env.scans.Analyze(ctx, "dev-1")
		done <- err
	}()
	waitForState(t, env, "dev-1", scan.StateAnalyzing)

	snap, err := env.scans.Reset(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, scan.StateIdle, snap.State)

	close(release)
	assert.ErrorIs(t, <-done, domain.ErrStaleAnalysis)

	snap, err = env.scans.Snapshot(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, scan.StateIdle, snap.State)
	assert.Nil(t, snap.Result)

	history, err := env.accounts.History(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.StaleCompletions))
}

func TestScanService_SignInDuringAnalysisDiscardsResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signUp(t, "dev-1", "asha@example.com")
	env.selectPNG(t, "dev-1")
	release := make(chan struct{})
	blockAnalyzer(env, release)

	done := make(chan error, 1)
	go func() {
		_, err := env.scans.Analyze(ctx, "dev-1")
		done <- err
	}()
	waitForState(t, env, "dev-1", scan.StateAnalyzing)

	ravi := env.signUp(t, "dev-1", "ravi@example.com")

	close(release)
	assert.ErrorIs(t, <-done, domain.ErrStaleAnalysis)

	snap, err := env.scans.Snapshot(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, scan.StateIdle, snap.State)
	assert.Nil(t, snap.Document)
	assert.Nil(t, snap.Result)

	me, err := env.accounts.Me(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, ravi.ID, me.ID)

	history, err := env.accounts.History(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	stored, err := env.store.LoadHistory(ctx, ravi.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestScanService_HistoryWriteFailureKeepsResult(t *testing.T) {
	env := newTestEnvWithKV(t, failingHistoryKV{memory.NewStore()}, config.RateLimitConfig{})
	ctx := context.Background()
	env.signUp(t, "dev-1", "asha@example.com")
	env.selectPNG(t, "dev-1")
	env.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(prescriptionAnalysis(), nil).Once()
	env.reporter.On("Report", mock.Anything, mock.Anything, mock.MatchedBy(func(tags map[string]string) bool {
		return tags["kind"] == "history_write"
	})).Once()

	a, err := env.scans.Analyze(ctx, "dev-1")
	require.NoError(t, err)

	snap, err := env.scans.Snapshot(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, scan.StateResult, snap.State)

	history, err := env.accounts.History(ctx, "dev-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, a.ID, history[0].ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.HistoryWriteFailures))
	env.reporter.AssertExpectations(t)
}

func TestScanService_ShowHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signUp(t, "dev-1", "asha@example.com")
	env.selectPNG(t, "dev-1")
	env.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(prescriptionAnalysis(), nil).Once()
	a, err := env.scans.Analyze(ctx, "dev-1")
	require.NoError(t, err)

	_, err = env.scans.Reset(ctx, "dev-1")
	require.NoError(t, err)

	snap, err := env.scans.ShowHistory(ctx, "dev-1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, scan.StateResult, snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, a.ID, snap.Result.ID)

	_, err = env.scans.ShowHistory(ctx, "dev-1", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanService_ShowHistoryRequiresSignIn(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.scans.ShowHistory(context.Background(), "dev-1", "any")
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)
}
