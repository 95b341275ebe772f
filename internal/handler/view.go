package handler

import (
	"time"
	"unicode/utf8"

	"medlens/internal/domain"
	"medlens/internal/scan"
)

// Screen names the view the client should render. The auth forms open from
// ScreenLanding on the client, and the history panel rides along on every
// signed-in screen.
type Screen string

const (
	ScreenLanding Screen = "landing"
	ScreenUpload  Screen = "upload"
	ScreenLoading Screen = "loading"
	ScreenResult  Screen = "result"
)

const summaryPreviewLen = 80

// HistoryItem is one row of the history sidebar.
type HistoryItem struct {
	ID           string              `json:"id"`
	DocumentType domain.DocumentType `json:"documentType"`
	Summary      string              `json:"summary"`
	Timestamp    time.Time           `json:"timestamp"`
	Selected     bool                `json:"selected"`
}

// AppView is everything the client needs to draw the current screen.
type AppView struct {
	Screen    Screen            `json:"screen"`
	User      *domain.User      `json:"user,omitempty"`
	Scan      scan.Snapshot     `json:"scan"`
	History   []HistoryItem     `json:"history"`
	CityTiers []domain.CityTier `json:"cityTiers"`
}

// BuildAppView derives the view from the session and scan state.
func BuildAppView(user *domain.User, snap scan.Snapshot, history []domain.MedicalAnalysis) AppView {
	view := AppView{
		Screen:    screenFor(user, snap.State),
		User:      user,
		Scan:      snap,
		History:   []HistoryItem{},
		CityTiers: domain.CityTiers,
	}
	if user == nil {
		return view
	}

	selectedID := ""
	if snap.State == scan.StateResult && snap.Result != nil {
		selectedID = snap.Result.ID
	}
	for i := range history {
		a := &history[i]
		view.History = append(view.History, HistoryItem{
			ID:           a.ID,
			DocumentType: a.DocumentType,
			Summary:      truncateRunes(a.Summary, summaryPreviewLen),
			Timestamp:    a.Timestamp,
			Selected:     a.ID != "" && a.ID == selectedID,
		})
	}
	return view
}

func screenFor(user *domain.User, state scan.State) Screen {
	if user == nil {
		return ScreenLanding
	}
	switch state {
	case scan.StateAnalyzing:
		return ScreenLoading
	case scan.StateResult:
		return ScreenResult
	default:
		return ScreenUpload
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
