package service

import (
	"errors"
	"unicode/utf8"

	"github.com/iliyamo/service-booking/internal/model"
	"github.com/iliyamo/service-booking/internal/utils"
)

const (
	// AdminRole is the role claim carried by report tokens.
	AdminRole    = "ADMIN"
	adminSubject = "admin"

	MinPasswordLength = 8
)

// ErrInvalidCredentials is returned by Login for a wrong password or when
// no password has been set up yet.
var ErrInvalidCredentials = errors.New("invalid password")

// PasswordStore persists the encoded report password.
type PasswordStore interface {
	Get() (model.Settings, error)
	SetReportPassword(encoded string) error
	SetReportPasswordIfEmpty(encoded string) error
}

// AuthService guards the report pages with the single shared report
// password stored in settings.json.
type AuthService struct {
	store  PasswordStore
	secret string
	ttlMin int
}

func NewAuthService(store PasswordStore, jwtSecret string, ttlMin int) *AuthService {
	return &AuthService{store: store, secret: jwtSecret, ttlMin: ttlMin}
}

// Login checks password against the stored credential and issues an admin
// access token.
func (s *AuthService) Login(password string) (utils.AccessToken, error) {
	settings, err := s.store.Get()
	if err != nil {
		return utils.AccessToken{}, err
	}
	if settings.ReportPassword == "" || !utils.VerifyPassword(settings.ReportPassword, password) {
		return utils.AccessToken{}, ErrInvalidCredentials
	}
	return utils.NewAccessToken(s.secret, adminSubject, AdminRole, s.ttlMin)
}

// HasPassword reports whether a report password has been set up.
func (s *AuthService) HasPassword() (bool, error) {
	settings, err := s.store.Get()
	if err != nil {
		return false, err
	}
	return settings.ReportPassword != "", nil
}

// Setup stores the first report password.  It fails with
// repository.ErrConflict once a password exists.
func (s *AuthService) Setup(password string) error {
	encoded, err := s.encode(password)
	if err != nil {
		return err
	}
	return s.store.SetReportPasswordIfEmpty(encoded)
}

// SetPassword replaces the report password.  Callers must already be
// authenticated as admin.
func (s *AuthService) SetPassword(password string) error {
	encoded, err := s.encode(password)
	if err != nil {
		return err
	}
	return s.store.SetReportPassword(encoded)
}

func (s *AuthService) encode(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", NewValidationError("password", "password must be at least %d characters", MinPasswordLength)
	}
	return utils.HashPassword(password)
}
