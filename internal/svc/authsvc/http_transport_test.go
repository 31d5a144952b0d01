package authsvc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	http_ "github.com/axelsub/axelsub/internal/infra/transport/http"
)

func newTestMux(t *testing.T) (*http.ServeMux, *HTTPTransport, *memUserRepository) {
	t.Helper()

	svc, users, _ := newTestAuthService(t)
	transport := NewHTTPTransport(svc)

	mux := http.NewServeMux()
	transport.Mount(mux)

	return mux, transport, users
}

func doJSON(mux *http.ServeMux, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	return rec
}

func TestHandleRegister_Roundtrip(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	rec := doJSON(mux, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"hunter2","bio":"hi"}`, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body)
	}

	// The response must never leak the password or the derived secret.
	if body := rec.Body.String(); strings.Contains(body, "password") ||
		strings.Contains(body, "secret") || strings.Contains(body, "hunter2") {
		t.Errorf("register response leaks credentials: %s", body)
	}

	var created struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Bio      string `json:"bio"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}

	if created.Username != "alice" || created.Email != "alice@example.com" || created.Bio != "hi" {
		t.Errorf("register response = %+v", created)
	}

	// Registration implies login: the cookie authenticates GET /api/user.
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "" {
		t.Fatalf("register set %d cookies, want 1 session cookie", len(cookies))
	}

	if !cookies[0].HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}

	me := doJSON(mux, http.MethodGet, "/api/user", "", cookies)
	if me.Code != http.StatusOK {
		t.Fatalf("me status = %d, want %d (body %s)", me.Code, http.StatusOK, me.Body)
	}
}

func TestHandleRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing username", `{"email":"a@b.c","password":"x"}`, "username"},
		{"missing email", `{"username":"alice","password":"x"}`, "email"},
		{"invalid email", `{"username":"alice","email":"nope","password":"x"}`, "email"},
		{"missing password", `{"username":"alice","email":"a@b.c"}`, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mux, _, _ := newTestMux(t)

			rec := doJSON(mux, http.MethodPost, "/api/auth/register", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}

			var body http_.ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal error body: %v", err)
			}

			if body.Field != tt.field {
				t.Errorf("error field = %q, want %q", body.Field, tt.field)
			}
		})
	}
}

func TestHandleRegister_Conflicts(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	first := doJSON(mux, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"hunter2"}`, nil)
	if first.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", first.Code)
	}

	// Same email and username: the email conflict is reported.
	dupe := doJSON(mux, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"hunter2"}`, nil)
	if dupe.Code != http.StatusConflict {
		t.Fatalf("dupe register status = %d, want %d", dupe.Code, http.StatusConflict)
	}

	if !strings.Contains(dupe.Body.String(), "Email already exists") {
		t.Errorf("dupe register body = %s, want email conflict", dupe.Body)
	}

	dupeName := doJSON(mux, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice2@example.com","password":"hunter2"}`, nil)
	if dupeName.Code != http.StatusConflict {
		t.Fatalf("dupe username status = %d, want %d", dupeName.Code, http.StatusConflict)
	}

	if !strings.Contains(dupeName.Body.String(), "Username already exists") {
		t.Errorf("dupe username body = %s, want username conflict", dupeName.Body)
	}
}

func TestHandleLogin(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	doJSON(mux, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"hunter2"}`, nil)

	// Wrong password and unknown email produce the same response.
	wrong := doJSON(mux, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"nope"}`, nil)
	unknown := doJSON(mux, http.MethodPost, "/api/auth/login",
		`{"email":"bob@example.com","password":"nope"}`, nil)

	for _, rec := range []*httptest.ResponseRecorder{wrong, unknown} {
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("login status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	}

	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("login failure bodies differ: %s vs %s", wrong.Body, unknown.Body)
	}

	missing := doJSON(mux, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com"}`, nil)
	if missing.Code != http.StatusBadRequest {
		t.Errorf("login without password status = %d, want %d", missing.Code, http.StatusBadRequest)
	}

	ok := doJSON(mux, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"hunter2"}`, nil)
	if ok.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d (body %s)", ok.Code, http.StatusOK, ok.Body)
	}

	if len(ok.Result().Cookies()) != 1 {
		t.Errorf("login set %d cookies, want 1", len(ok.Result().Cookies()))
	}
}

func TestHandleLogout(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	reg := doJSON(mux, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"hunter2"}`, nil)
	cookies := reg.Result().Cookies()

	out := doJSON(mux, http.MethodPost, "/api/auth/logout", "", cookies)
	if out.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want %d", out.Code, http.StatusOK)
	}

	// The cookie is cleared and the token no longer authenticates.
	cleared := out.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("logout did not clear the session cookie: %+v", cleared)
	}

	me := doJSON(mux, http.MethodGet, "/api/user", "", cookies)
	if me.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, want %d", me.Code, http.StatusUnauthorized)
	}

	// Logout without a session is still 200.
	anon := doJSON(mux, http.MethodPost, "/api/auth/logout", "", nil)
	if anon.Code != http.StatusOK {
		t.Errorf("anonymous logout status = %d, want %d", anon.Code, http.StatusOK)
	}
}

func TestHandleMe_Unauthenticated(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	rec := doJSON(mux, http.MethodGet, "/api/user", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	if !strings.Contains(rec.Body.String(), "Not authenticated") {
		t.Errorf("me body = %s, want not-authenticated message", rec.Body)
	}

	// A forged token is as good as none.
	forged := doJSON(mux, http.MethodGet, "/api/user", "",
		[]*http.Cookie{{Name: "axelsub_session", Value: "forged-token"}})
	if forged.Code != http.StatusUnauthorized {
		t.Errorf("me with forged token status = %d, want %d", forged.Code, http.StatusUnauthorized)
	}
}
