package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"medlens/internal/config"
	"medlens/internal/domain"
	"medlens/internal/encoder"
	"medlens/internal/metrics"
	"medlens/internal/port"
	"medlens/internal/service"
	"medlens/internal/session"
	"medlens/internal/storage/memory"
	"medlens/mocks"
)

var errQuota = errors.New("quota exceeded")

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testEnv struct {
	kv         port.KeyValueStore
	store      *session.Store
	workspaces *service.Workspaces
	metrics    *metrics.Metrics
	analyzer   *mocks.MockDocumentAnalyzer
	reporter   *mocks.MockErrorReporter
	accounts   service.AccountService
	scans      service.ScanService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithKV(t, memory.NewStore(), config.RateLimitConfig{})
}

func newTestEnvWithKV(t *testing.T, kv port.KeyValueStore, rl config.RateLimitConfig) *testEnv {
	t.Helper()
	codec, err := session.NewCodec("json")
	require.NoError(t, err)

	m := metrics.New("test", prometheus.NewRegistry())
	store := session.NewStore(kv, codec, 10, zerolog.Nop())
	ws := service.NewWorkspaces(store, config.WorkspaceConfig{IdleTTL: time.Hour}, rl, m, zerolog.Nop())
	an := new(mocks.MockDocumentAnalyzer)
	rep := new(mocks.MockErrorReporter)

	return &testEnv{
		kv:         kv,
		store:      store,
		workspaces: ws,
		metrics:    m,
		analyzer:   an,
		reporter:   rep,
		accounts:   service.NewAccountService(ws, zerolog.Nop()),
		scans:      service.NewScanService(ws, encoder.New(1<<20), an, rep, m, zerolog.Nop()),
	}
}

func (e *testEnv) signUp(t *testing.T, deviceID, email string) *domain.User {
	t.Helper()
	u, err := e.accounts.SignUp(context.Background(), deviceID, service.SignUpInput{
		Name:     "Asha Rao",
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) selectPNG(t *testing.T, deviceID string) {
	t.Helper()
	_, err := e.scans.SelectFile(context.Background(), deviceID, service.SelectFileInput{
		File:        bytes.NewReader(pngHeader),
		FileName:    "rx.png",
		ContentType: "image/png",
	})
	require.NoError(t, err)
}

func prescriptionAnalysis() *domain.MedicalAnalysis {
	return &domain.MedicalAnalysis{
		DocumentType:     domain.DocumentTypePrescription,
		Summary:          "Antibiotic course",
		SimplifiedTerms:  []domain.SimplifiedTerm{{Jargon: "TDS", Meaning: "three times a day"}},
		CriticalFindings: []domain.CriticalFinding{},
		GenericAlternatives: domain.Some([]domain.GenericAlternative{
			{BrandedName: "Augmentin 625", GenericName: "Amoxyclav 625"},
		}),
		NextSteps: []string{"Switch to Generic"},
	}
}

// failingHistoryKV fails every write to a history key.
type failingHistoryKV struct {
	port.KeyValueStore
}

func (f failingHistoryKV) Set(ctx context.Context, key string, value []byte) error {
	if strings.HasPrefix(key, "prescription_history_") {
		return errQuota
	}
	return f.KeyValueStore.Set(ctx, key, value)
}
