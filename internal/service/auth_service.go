package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
	"github.com/DanielPodolsky/YelpCamp/internal/repository/ports"
	"github.com/DanielPodolsky/YelpCamp/internal/util"
)

var (
	ErrUserExists = errors.New("a user with that username or email already exists")

	// ErrInvalidCredentials deliberately covers both unknown-user and
	// wrong-password so a login failure never reveals which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrSessionInvalid = errors.New("session is invalid or expired")
)

type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	tokens   *util.SessionTokenManager
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionRepository, tokens *util.SessionTokenManager, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

// Credentials is the signed cookie value plus its expiry, handed to the
// transport layer after a successful register or login.
type Credentials struct {
	CookieToken string
	ExpiresAt   time.Time
}

// Register creates the user, then immediately establishes a session so the
// new user lands signed in. The user insert is a single statement: a unique
// violation leaves no partial record behind.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, *Credentials, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("derive password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrUserExists
		}
		return nil, nil, err
	}

	creds, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info().Str("username", user.Username).Msg("user registered")
	return user, creds, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, *Credentials, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if isNotFound(err) {
			// Burn a hash anyway so the timing of unknown-user and
			// wrong-password failures stays comparable.
			_, _, _ = util.DerivePassword(password)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	creds, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, creds, nil
}

// Logout deactivates the server-side session behind the cookie token. An
// unparseable token is treated as already logged out.
func (s *AuthService) Logout(ctx context.Context, cookieToken string) error {
	claims, err := s.tokens.Parse(cookieToken)
	if err != nil {
		return nil
	}
	return s.sessions.DeactivateSession(ctx, claims.SessionToken)
}

// Authenticate resolves a cookie token to its user: the signature must
// verify and the session row must still be active and unexpired.
func (s *AuthService) Authenticate(ctx context.Context, cookieToken string) (*domain.User, error) {
	claims, err := s.tokens.Parse(cookieToken)
	if err != nil {
		return nil, ErrSessionInvalid
	}
	session, err := s.sessions.FindActiveSession(ctx, claims.SessionToken)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*Credentials, error) {
	token, err := util.NewSessionToken()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.tokens.TTL())
	if _, err := s.sessions.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}
	signed, _, err := s.tokens.Generate(user.ID, token)
	if err != nil {
		return nil, err
	}
	return &Credentials{CookieToken: signed, ExpiresAt: expiresAt}, nil
}
