package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
	http_ "github.com/axelsub/axelsub/internal/infra/transport/http"
)

// HTTPTransport handles HTTP requests for the authentication service:
// registration, login, logout and the current-identity lookup.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport backed by the given AuthService.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
	}
}

// Mount registers the auth routes:
// - POST /api/auth/register: create an identity and start a session
// - POST /api/auth/login: start a session
// - POST /api/auth/logout: end the session
// - GET /api/user: the identity bound to the session.
func (ht *HTTPTransport) Mount(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", ht.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", ht.HandleLogin)
	mux.HandleFunc("POST /api/auth/logout", ht.HandleLogout)
	mux.HandleFunc("GET /api/user", ht.HandleMe)
}

// SessionToken extracts the session token from the request cookie, or ""
// if the request carries none.
func (ht *HTTPTransport) SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(ht.authSvc.Config.CookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

// RequireIdentity is the authorization gate for handlers on this and other
// transports: it resolves the request's session to an identity or answers
// 401. Mutating handlers must call it before touching persisted state.
func (ht *HTTPTransport) RequireIdentity(w http.ResponseWriter, r *http.Request) (*domain.Identity, bool) {
	identity, err := ht.authSvc.RequireSession(r.Context(), ht.SessionToken(r))
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthenticated) {
			ht.log.ErrorContext(r.Context(), "resolve session failed", "error", err)
			http_.WriteInternalError(w)

			return nil, false
		}

		http_.WriteError(w, http.StatusUnauthorized, "Not authenticated")

		return nil, false
	}

	return identity, true
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister processes registration requests. A successful registration
// also starts a session (registration implies login).
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "Invalid request body")

		return fmt.Errorf("decode body: %w", err)
	}

	if vErr := validateRegisterRequest(&req); vErr != nil {
		http_.WriteFieldError(w, http.StatusBadRequest, vErr.Message, vErr.Field)

		return vErr
	}

	identity, err := ht.authSvc.Register(r.Context(), RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			http_.WriteError(w, http.StatusConflict, "Email already exists")
		case errors.Is(err, domain.ErrUsernameTaken):
			http_.WriteError(w, http.StatusConflict, "Username already exists")
		default:
			http_.WriteInternalError(w)
		}

		return fmt.Errorf("register: %w", err)
	}

	sess, err := ht.authSvc.IssueSession(r.Context(), identity)
	if err != nil {
		http_.WriteInternalError(w)

		return fmt.Errorf("issue session: %w", err)
	}

	ht.setSessionCookie(w, sess.Token)
	http_.WriteJSON(w, http.StatusCreated, identity.Public())

	return nil
}

func validateRegisterRequest(req *registerRequest) *domain.ValidationError {
	switch {
	case strings.TrimSpace(req.Username) == "":
		return domain.NewValidationError("username", "Username is required")
	case strings.TrimSpace(req.Email) == "":
		return domain.NewValidationError("email", "Email is required")
	case !strings.Contains(req.Email, "@"):
		return domain.NewValidationError("email", "Invalid email address")
	case req.Password == "":
		return domain.NewValidationError("password", "Password is required")
	default:
		return nil
	}
}

// HandleLogin processes login requests and starts a session on success.
// Unknown emails and wrong passwords are indistinguishable in the response.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "Invalid request body")

		return fmt.Errorf("decode body: %w", err)
	}

	if req.Email == "" || req.Password == "" {
		http_.WriteError(w, http.StatusBadRequest, "Email and password are required")

		return domain.NewValidationError("", "email and password are required")
	}

	identity, err := ht.authSvc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http_.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		} else {
			http_.WriteInternalError(w)
		}

		return fmt.Errorf("authenticate: %w", err)
	}

	sess, err := ht.authSvc.IssueSession(r.Context(), identity)
	if err != nil {
		http_.WriteInternalError(w)

		return fmt.Errorf("issue session: %w", err)
	}

	ht.setSessionCookie(w, sess.Token)
	http_.WriteJSON(w, http.StatusOK, identity.Public())

	return nil
}

// HandleLogout invalidates the request's session, if any, and clears the
// cookie. Always answers 200.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := ht.SessionToken(r); token != "" {
		if err := ht.authSvc.InvalidateSession(r.Context(), token); err != nil {
			ht.log.ErrorContext(r.Context(), "logout failed", "error", err)
			http_.WriteInternalError(w)

			return
		}
	}

	ht.clearSessionCookie(w)
	w.WriteHeader(http.StatusOK)
}

// HandleMe returns the identity bound to the request's session.
func (ht *HTTPTransport) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := ht.RequireIdentity(w, r)
	if !ok {
		return
	}

	http_.WriteJSON(w, http.StatusOK, identity.Public())
}

func (ht *HTTPTransport) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     ht.authSvc.Config.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ht.authSvc.Config.SessionLifetime),
		HttpOnly: true,
		Secure:   ht.authSvc.Config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (ht *HTTPTransport) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     ht.authSvc.Config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ht.authSvc.Config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
