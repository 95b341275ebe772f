package service

import (
	"context"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"medlens/internal/config"
	"medlens/internal/domain"
	"medlens/internal/metrics"
	"medlens/internal/scan"
	"medlens/internal/session"
)

// Workspace is the in-memory state of one device.
type Workspace struct {
	Machine *scan.Machine
	Session *session.Session
	Limiter *rate.Limiter
}

// Workspaces opens and caches device workspaces. A workspace idle for
// longer than the configured TTL is dropped and reopened from storage on
// next use.
type Workspaces struct {
	items   *cache.Cache
	store   *session.Store
	limit   rate.Limit
	burst   int
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewWorkspaces creates a workspace registry.
func NewWorkspaces(store *session.Store, wsCfg config.WorkspaceConfig, rlCfg config.RateLimitConfig, m *metrics.Metrics, log zerolog.Logger) *Workspaces {
	ttl := wsCfg.IdleTTL
	cleanup := ttl / 2
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}

	limit := rate.Inf
	if rlCfg.AnalyzePerMinute > 0 {
		limit = rate.Limit(rlCfg.AnalyzePerMinute / 60)
	}
	burst := rlCfg.Burst
	if burst < 1 {
		burst = 1
	}

	w := &Workspaces{
		items:   cache.New(ttl, cleanup),
		store:   store,
		limit:   limit,
		burst:   burst,
		metrics: m,
		log:     log.With().Str("component", "workspaces").Logger(),
	}
	w.items.OnEvicted(func(deviceID string, _ interface{}) {
		w.metrics.ActiveWorkspaces.Set(float64(w.items.ItemCount()))
		w.log.Debug().Str("device_id", deviceID).Msg("workspace evicted")
	})
	return w
}

// Get returns the device's workspace, opening it from storage if needed.
// Every access extends the idle TTL. Loads run without a registry-wide
// lock; when two callers open the same device, the first insert wins.
func (w *Workspaces) Get(ctx context.Context, deviceID string) (*Workspace, error) {
	if ws, ok := w.lookup(deviceID); ok {
		return ws, nil
	}

	sess, err := session.Open(ctx, w.store, deviceID)
	if err != nil {
		return nil, err
	}
	tier := domain.DefaultCityTier
	if u := sess.User(); u != nil && u.CityTier.Valid() {
		tier = u.CityTier
	}
	ws := &Workspace{
		Machine: scan.NewMachine(tier),
		Session: sess,
		Limiter: rate.NewLimiter(w.limit, w.burst),
	}

	for {
		if err := w.items.Add(deviceID, ws, cache.DefaultExpiration); err == nil {
			break
		}
		if existing, ok := w.lookup(deviceID); ok {
			return existing, nil
		}
	}
	w.metrics.ActiveWorkspaces.Set(float64(w.items.ItemCount()))
	w.log.Debug().Str("device_id", deviceID).Bool("signed_in", sess.User() != nil).Msg("workspace opened")
	return ws, nil
}

func (w *Workspaces) lookup(deviceID string) (*Workspace, bool) {
	v, ok := w.items.Get(deviceID)
	if !ok {
		return nil, false
	}
	ws := v.(*Workspace)
	w.items.SetDefault(deviceID, ws)
	return ws, true
}

// Len returns the number of cached workspaces.
func (w *Workspaces) Len() int {
	return w.items.ItemCount()
}
