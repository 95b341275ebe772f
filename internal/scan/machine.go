// Package scan holds the per-device analysis state machine.
package scan

import (
	"sync"

	"medlens/internal/domain"
)

// State is a scan lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateFileSelected State = "file_selected"
	StateAnalyzing    State = "analyzing"
	StateResult       State = "result"
	StateFailed       State = "failed"
)

// Token identifies one in-flight analysis. Zero is never issued.
type Token uint64

// Snapshot is a copy of the machine's state for rendering.
type Snapshot struct {
	State    State                   `json:"state"`
	CityTier domain.CityTier         `json:"cityTier"`
	Document *domain.EncodedDocument `json:"document,omitempty"`
	Result   *domain.MedicalAnalysis `json:"result,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Machine is the analysis state machine of one device. At most one
// analysis is in flight; completions carrying an outdated token are
// dropped.
type Machine struct {
	mu       sync.Mutex
	state    State
	doc      *domain.EncodedDocument
	result   *domain.MedicalAnalysis
	errMsg   string
	tier     domain.CityTier
	next     Token
	inFlight Token
}

// NewMachine returns an idle machine using tier as the region hint.
func NewMachine(tier domain.CityTier) *Machine {
	if !tier.Valid() {
		tier = domain.DefaultCityTier
	}
	return &Machine{state: StateIdle, tier: tier}
}

// SelectFile attaches doc and clears any prior result or error.
func (m *Machine) SelectFile(doc *domain.EncodedDocument) error {
	if doc == nil {
		return domain.ErrNoDocument
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateAnalyzing {
		return domain.ErrAnalysisInProgress
	}
	m.state = StateFileSelected
	m.doc = doc
	m.result = nil
	m.errMsg = ""
	return nil
}

// Begin moves to analyzing and returns the token the caller must pass to
// Complete, along with the document and region hint to send.
func (m *Machine) Begin() (Token, *domain.EncodedDocument, domain.CityTier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateFileSelected, StateFailed:
	case StateAnalyzing:
		return 0, nil, "", domain.ErrAnalysisInProgress
	case StateResult:
		return 0, nil, "", domain.ErrScanComplete
	default:
		return 0, nil, "", domain.ErrNoDocument
	}
	if m.doc == nil {
		return 0, nil, "", domain.ErrNoDocument
	}

	m.next++
	m.inFlight = m.next
	m.state = StateAnalyzing
	m.errMsg = ""
	return m.inFlight, m.doc, m.tier, nil
}

// Complete applies the outcome of the analysis identified by token. It
// returns false, changing nothing, when token is no longer current.
func (m *Machine) Complete(token Token, result *domain.MedicalAnalysis, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token == 0 || token != m.inFlight || m.state != StateAnalyzing {
		return false
	}
	m.inFlight = 0
	if err != nil || result == nil {
		m.state = StateFailed
		m.result = nil
		m.errMsg = domain.GenericAnalysisMessage
		return true
	}
	m.state = StateResult
	m.result = result
	m.errMsg = ""
	return true
}

// Reset returns to idle, discarding file, result and error, and
// invalidates any in-flight token.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateIdle
	m.doc = nil
	m.result = nil
	m.errMsg = ""
	m.inFlight = 0
}

// Show displays a past analysis.
func (m *Machine) Show(a *domain.MedicalAnalysis) error {
	if a == nil {
		return domain.ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateAnalyzing {
		return domain.ErrAnalysisInProgress
	}
	m.state = StateResult
	m.result = a
	m.errMsg = ""
	return nil
}

// SetCityTier changes the region hint used by the next Begin.
func (m *Machine) SetCityTier(tier domain.CityTier) error {
	if !tier.Valid() {
		return domain.ErrInvalidCityTier
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tier = tier
	return nil
}

// CityTier returns the current region hint.
func (m *Machine) CityTier() domain.CityTier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tier
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{State: m.state, CityTier: m.tier, Error: m.errMsg}
	if m.doc != nil {
		d := *m.doc
		s.Document = &d
	}
	if m.result != nil {
		r := *m.result
		s.Result = &r
	}
	return s
}
