package authsvc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
	"github.com/axelsub/axelsub/internal/repo/session"
	"github.com/axelsub/axelsub/internal/repo/user"
	"github.com/axelsub/axelsub/internal/util/encoding"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SessionLifetime is the session validity in seconds
	SessionLifetime int64 `env:"SESSION_LIFETIME" default:"2592000"` // 30 days

	// SweepInterval is the interval in seconds between expired-session sweeps
	SweepInterval int64 `env:"SWEEP_INTERVAL" default:"86400"` // 24h

	// CookieName is the name of the session cookie
	CookieName string `env:"COOKIE_NAME" default:"axelsub_session"`

	// SecureCookies marks session cookies Secure; enable behind TLS
	SecureCookies bool `env:"SECURE_COOKIES" default:"false"`
}

// RegisterParams are the inputs for creating a new identity. The handler
// validates shape; the service owns uniqueness and credential derivation.
type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	Bio       string
	AvatarURL string
}

// AuthService authenticates identities and manages their sessions. It is the
// only component that touches credential secrets.
type AuthService struct {
	Config   AuthConfig
	Users    user.Repository
	Sessions session.Store
	Log      logging.Logger

	// now is the clock used for session timestamps; tests may override it.
	now func() time.Time

	// decoySecret is verified against when an email is unknown, so both
	// login failure paths pay the key-derivation cost.
	decoySecret string
}

// NewAuthService creates a new AuthService with the given repository
// factories and configuration.
func NewAuthService(
	userFactory user.RepositoryFactory,
	storeFactory session.StoreFactory,
	cfg AuthConfig,
) (*AuthService, error) {
	users, err := userFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	sessions, err := storeFactory()
	if err != nil {
		return nil, fmt.Errorf("new session store: %w", err)
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate decoy nonce: %w", err)
	}

	decoySecret, err := DeriveSecret(hex.EncodeToString(nonce))
	if err != nil {
		return nil, fmt.Errorf("derive decoy secret: %w", err)
	}

	return &AuthService{
		Config:      cfg,
		Users:       users,
		Sessions:    sessions,
		Log:         logging.GetLogger("svc.authsvc.auth_service"),
		now:         time.Now,
		decoySecret: decoySecret,
	}, nil
}

// Authenticate validates an email/password pair and returns the matching
// identity. Unknown email and wrong password both return
// ErrInvalidCredentials; the cause is only distinguishable in the logs.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	identity, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			// Burn the derivation cost anyway so this path is not
			// distinguishable from a wrong password by timing.
			_, _ = VerifySecret(password, s.decoySecret)
			s.Log.DebugContext(ctx, "login for unknown email")

			return nil, domain.ErrInvalidCredentials
		}

		return nil, fmt.Errorf("get user by email: %w", err)
	}

	match, err := VerifySecret(password, identity.Secret)
	if err != nil {
		return nil, fmt.Errorf("verify secret: %w", err)
	}

	if !match {
		s.Log.DebugContext(ctx, "login with wrong password", logging.Group("user", "id", identity.ID))

		return nil, domain.ErrInvalidCredentials
	}

	return identity, nil
}

// Register creates a new identity. Email uniqueness is checked before
// username uniqueness; the first violated constraint is the one reported.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (_ *domain.Identity, err error) {
	log := s.Log.With(logging.Group("user", "username", params.Username))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(ctx)

	if _, err := s.Users.GetByEmail(ctx, params.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if _, err := s.Users.GetByUsername(ctx, params.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	secret, err := DeriveSecret(params.Password)
	if err != nil {
		return nil, fmt.Errorf("derive secret: %w", err)
	}

	identity, err := s.Users.Create(ctx, domain.Identity{
		Username:  params.Username,
		Email:     params.Email,
		Secret:    secret,
		Bio:       params.Bio,
		AvatarURL: params.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return identity, nil
}

// IssueSession creates a session for the identity and returns it. The token
// is opaque; possession of it is the sole proof of identity.
func (s *AuthService) IssueSession(ctx context.Context, identity *domain.Identity) (*domain.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("new session token: %w", err)
	}

	now := s.now()
	sess := domain.Session{
		Token:     token,
		UserID:    identity.ID,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(time.Duration(s.Config.SessionLifetime) * time.Second).Unix(),
	}

	if err := s.Sessions.Insert(ctx, sess); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &sess, nil
}

// RequireSession resolves a session token to its live identity. Any failure
// (unknown token, expired session, vanished identity) maps to
// ErrUnauthenticated; handlers gate mutating operations on it before
// touching persisted state.
func (s *AuthService) RequireSession(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	sess, err := s.Sessions.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired) {
			return nil, errors.Join(domain.ErrUnauthenticated, err)
		}

		return nil, fmt.Errorf("lookup session: %w", err)
	}

	identity, err := s.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, errors.Join(domain.ErrUnauthenticated, err)
		}

		return nil, fmt.Errorf("get user: %w", err)
	}

	return identity, nil
}

// InvalidateSession removes a session so its token can never authenticate
// again. Unknown tokens are ignored.
func (s *AuthService) InvalidateSession(ctx context.Context, token string) error {
	if err := s.Sessions.Invalidate(ctx, token); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}

	return nil
}

// Close releases resources held by the service.
func (s *AuthService) Close() error {
	if err := s.Users.Close(); err != nil {
		return fmt.Errorf("close user repo: %w", err)
	}

	if err := s.Sessions.Close(); err != nil {
		return fmt.Errorf("close session store: %w", err)
	}

	return nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	return encoding.EncodeCrockfordB32LC(buf), nil
}
