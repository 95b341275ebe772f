package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"medlens/internal/domain"
	"medlens/internal/historyexport"
)

// SignUpInput is the DTO for sign-up requests.
type SignUpInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LogInInput is the DTO for login requests.
type LogInInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Export is a rendered history file.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AccountService manages who is signed in on a device. No credential is
// stored or checked: the user is synthesized from the submitted email.
type AccountService interface {
	SignUp(ctx context.Context, deviceID string, input SignUpInput) (*domain.User, error)
	LogIn(ctx context.Context, deviceID string, input LogInInput) (*domain.User, error)
	LogOut(ctx context.Context, deviceID string) error
	Me(ctx context.Context, deviceID string) (*domain.User, error)
	History(ctx context.Context, deviceID string) ([]domain.MedicalAnalysis, error)
	GetAnalysis(ctx context.Context, deviceID, analysisID string) (*domain.MedicalAnalysis, error)
	ExportHistory(ctx context.Context, deviceID string, format historyexport.Format) (*Export, error)
}

type accountService struct {
	workspaces *Workspaces
	validate   *validator.Validate
	log        zerolog.Logger
	now        func() time.Time
}

// NewAccountService creates a new AccountService implementation.
func NewAccountService(workspaces *Workspaces, log zerolog.Logger) AccountService {
	return &accountService{
		workspaces: workspaces,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		log:        log.With().Str("component", "account_service").Logger(),
		now:        time.Now,
	}
}

// UserIDForEmail derives the stable user id of an email address, so the
// same address always reaches the same history.
func UserIDForEmail(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+normalizeEmail(email))).String()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *accountService) SignUp(ctx context.Context, deviceID string, input SignUpInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	return s.signIn(ctx, deviceID, input.Name, input.Email)
}

func (s *accountService) LogIn(ctx context.Context, deviceID string, input LogInInput) (*domain.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	return s.signIn(ctx, deviceID, "", input.Email)
}

func (s *accountService) signIn(ctx context.Context, deviceID, name, email string) (*domain.User, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("account.signIn: %w", err)
	}

	email = normalizeEmail(email)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user := domain.User{
		ID:       UserIDForEmail(email),
		Name:     name,
		Email:    email,
		CityTier: ws.Machine.CityTier(),
	}

	// A different user must not inherit the scan, or its in-flight result.
	if prev := ws.Session.User(); prev == nil || prev.ID != user.ID {
		ws.Machine.Reset()
	}
	if err := ws.Session.SignIn(ctx, user); err != nil {
		return nil, fmt.Errorf("account.signIn: %w", err)
	}
	s.log.Info().Str("device_id", deviceID).Str("user_id", user.ID).Msg("user signed in")
	return &user, nil
}

func (s *accountService) LogOut(ctx context.Context, deviceID string) error {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("account.LogOut: %w", err)
	}
	ws.Machine.Reset()
	if err := ws.Session.SignOut(ctx); err != nil {
		return fmt.Errorf("account.LogOut: %w", err)
	}
	s.log.Info().Str("device_id", deviceID).Msg("user signed out")
	return nil
}

func (s *accountService) Me(ctx context.Context, deviceID string) (*domain.User, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("account.Me: %w", err)
	}
	u := ws.Session.User()
	if u == nil {
		return nil, domain.ErrNotSignedIn
	}
	return u, nil
}

func (s *accountService) History(ctx context.Context, deviceID string) ([]domain.MedicalAnalysis, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("account.History: %w", err)
	}
	if ws.Session.User() == nil {
		return nil, domain.ErrNotSignedIn
	}
	return ws.Session.History(), nil
}

func (s *accountService) GetAnalysis(ctx context.Context, deviceID, analysisID string) (*domain.MedicalAnalysis, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("account.GetAnalysis: %w", err)
	}
	if ws.Session.User() == nil {
		return nil, domain.ErrNotSignedIn
	}
	return ws.Session.Find(analysisID)
}

func (s *accountService) ExportHistory(ctx context.Context, deviceID string, format historyexport.Format) (*Export, error) {
	ws, err := s.workspaces.Get(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("account.ExportHistory: %w", err)
	}
	user := ws.Session.User()
	if user == nil {
		return nil, domain.ErrNotSignedIn
	}

	var buf bytes.Buffer
	if err := historyexport.Write(&buf, format, ws.Session.History()); err != nil {
		if errors.Is(err, domain.ErrUnsupportedExport) {
			return nil, err
		}
		return nil, fmt.Errorf("account.ExportHistory: %w", err)
	}
	return &Export{
		FileName:    historyexport.BuildFilename(user.Name, format, s.now()),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func (s *accountService) validateInput(input interface{}) error {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", domain.ErrInvalidInput, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
