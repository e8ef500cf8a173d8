package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/dmitrijs2005/savethatagain/internal/server/auth"
	"github.com/dmitrijs2005/savethatagain/internal/server/events"
	"github.com/dmitrijs2005/savethatagain/internal/server/models"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// AuthResult is a user together with a freshly issued session token.
type AuthResult struct {
	User  *models.User
	Token string
}

// AuthService registers users, logs them in with a password or a Google
// identity token, and resolves bearer tokens back to users.
type AuthService struct {
	d      Deps
	tokens *auth.TokenCodec
	google auth.GoogleVerifier
}

func NewAuthService(d Deps, tokens *auth.TokenCodec, google auth.GoogleVerifier) *AuthService {
	return &AuthService{d: d.withDefaults(), tokens: tokens, google: google}
}

// ValidateRegistration checks the registration form. Emails are kept
// exactly as typed, so two spellings differing in case are two accounts.
func ValidateRegistration(email, password, name string) error {
	if email == "" || password == "" || name == "" {
		return common.Invalid("Email, password, and name are required")
	}
	if !emailPattern.MatchString(email) {
		return common.Invalid("Invalid email format")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return common.Invalid("Password must be at least 8 characters")
	}
	return nil
}

// Register creates a password account. Any existing user with the same
// email, whatever its provider, yields common.ErrAlreadyExists.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	if err := ValidateRegistration(email, password, name); err != nil {
		return nil, err
	}

	repo := s.d.Repos.Users(s.d.DB)

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.Invalid("Password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := repo.CreateEmailUser(ctx, email, hash, name)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	s.d.Metrics.AuthAttempt("register", true)
	s.d.Logger.Info(ctx, "user registered", "user_id", u.ID, "provider", common.ProviderEmail)
	publish(ctx, s.d, events.Event{Type: events.UserRegistered, UserID: u.ID, Email: u.Email, Provider: common.ProviderEmail})
	return res, nil
}

// Login checks a password. Unknown emails and wrong passwords both yield
// common.ErrInvalidCredentials; accounts without a password yield
// common.ErrGoogleOnlyAccount.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, common.Invalid("Email and password are required")
	}

	u, err := s.d.Repos.Users(s.d.DB).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.d.Metrics.AuthAttempt("password", false)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !u.HasPassword() {
		s.d.Metrics.AuthAttempt("password", false)
		return nil, common.ErrGoogleOnlyAccount
	}
	if !auth.CheckPassword(*u.PasswordHash, password) {
		s.d.Metrics.AuthAttempt("password", false)
		return nil, common.ErrInvalidCredentials
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	s.d.Metrics.AuthAttempt("password", true)
	publish(ctx, s.d, events.Event{Type: events.UserLoggedIn, UserID: u.ID, Email: u.Email, Provider: common.ProviderEmail})
	return res, nil
}

// GoogleAuth signs in with a Google ID token, creating the account on first
// use. An email already held by a user without this Google id yields
// common.ErrEmailRegisteredWithPassword when that user has a password, and
// common.ErrEmailLinkedToOtherGoogle otherwise.
func (s *AuthService) GoogleAuth(ctx context.Context, idToken string) (*AuthResult, error) {
	if idToken == "" {
		return nil, common.Invalid("Google ID token is required")
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		s.d.Metrics.AuthAttempt("google", false)
		s.d.Logger.Warn(ctx, "google token rejected", "error", err)
		return nil, common.ErrInvalidToken
	}

	repo := s.d.Repos.Users(s.d.DB)

	u, err := repo.GetByGoogleID(ctx, identity.Subject)
	switch {
	case err == nil:
		return s.googleSignedIn(ctx, u, events.UserLoggedIn)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("lookup google user: %w", err)
	}

	existing, err := repo.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		s.d.Metrics.AuthAttempt("google", false)
		return nil, emailTakenError(existing)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	u, err = repo.CreateGoogleUser(ctx, identity.Email, identity.Name, identity.Subject, identity.Picture)
	if err != nil {
		if !errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("create google user: %w", err)
		}
		// A concurrent first sign-in with the same Google account may have won.
		if u, err = repo.GetByGoogleID(ctx, identity.Subject); err == nil {
			return s.googleSignedIn(ctx, u, events.UserLoggedIn)
		}
		s.d.Metrics.AuthAttempt("google", false)
		if existing, err = repo.GetByEmail(ctx, identity.Email); err == nil {
			return nil, emailTakenError(existing)
		}
		return nil, common.ErrEmailRegisteredWithPassword
	}

	s.d.Logger.Info(ctx, "user registered", "user_id", u.ID, "provider", common.ProviderGoogle)
	return s.googleSignedIn(ctx, u, events.UserRegistered)
}

// emailTakenError picks the sign-in hint for an email held by another account.
func emailTakenError(u *models.User) error {
	if u.HasPassword() {
		return common.ErrEmailRegisteredWithPassword
	}
	return common.ErrEmailLinkedToOtherGoogle
}

func (s *AuthService) googleSignedIn(ctx context.Context, u *models.User, eventType string) (*AuthResult, error) {
	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.d.Metrics.AuthAttempt("google", true)
	publish(ctx, s.d, events.Event{Type: eventType, UserID: u.ID, Email: u.Email, Provider: common.ProviderGoogle})
	return res, nil
}

// Authenticate resolves a bearer token to its user. Tokens of deleted users
// are rejected with common.ErrInvalidToken.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	u, err := s.d.Repos.Users(s.d.DB).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}
