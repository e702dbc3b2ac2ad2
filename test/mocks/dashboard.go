package mocks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const (
	mockSessionCookie = "session"
	mockAuthCookie    = "authToken"
	mockAPIKeyHeader  = "wg-dashboard-apikey"
)

var mockWhiteList = []string{"validateAuthentication", "authenticate", "getDashboardTheme", "getDashboardVersion"}

// MockDashboard is an in-process WGDashboard API with the authentication
// behaviour of the real server.
type MockDashboard struct {
	*httptest.Server
	options MockDashboardOptions

	mu       sync.Mutex
	sessions map[string]bool
	calls    map[string]int
	headers  map[string][]http.Header
	next     int
}

type MockDashboardOptions struct {
	authRequired     bool
	username         string
	password         string
	totp             string
	apiKeys          map[string]bool
	configuration    map[string]map[string]any
	configurations   []map[string]any
	welcomeMessage   string
	failValidateWith int
}

type MockDashboardOption func(*MockDashboardOptions)

func WithAuthRequired(required bool) MockDashboardOption {
	return func(o *MockDashboardOptions) {
		o.authRequired = required
	}
}

func WithAccount(username, password, totp string) MockDashboardOption {
	return func(o *MockDashboardOptions) {
		o.username = username
		o.password = password
		o.totp = totp
	}
}

func WithAPIKeys(keys ...string) MockDashboardOption {
	return func(o *MockDashboardOptions) {
		for _, k := range keys {
			o.apiKeys[k] = true
		}
	}
}

func WithDashboardConfiguration(cfg map[string]map[string]any) MockDashboardOption {
	return func(o *MockDashboardOptions) {
		o.configuration = cfg
	}
}

func WithWireGuardConfigurations(configurations ...map[string]any) MockDashboardOption {
	return func(o *MockDashboardOptions) {
		o.configurations = configurations
	}
}

// WithValidateStatus makes /api/validateAuthentication answer with the given
// HTTP status instead of checking the session.
func WithValidateStatus(status int) MockDashboardOption {
	return func(o *MockDashboardOptions) {
		o.failValidateWith = status
	}
}

func NewMockDashboard(t *testing.T, opts ...MockDashboardOption) *MockDashboard {
	t.Helper()
	options := MockDashboardOptions{
		authRequired:   true,
		username:       "admin",
		password:       "admin",
		apiKeys:        map[string]bool{},
		configuration:  map[string]map[string]any{"Server": {"auth_req": true, "version": "v4.2.0"}},
		welcomeMessage: "Welcome to WGDashboard",
	}
	for _, opt := range opts {
		opt(&options)
	}

	m := &MockDashboard{
		options:  options,
		sessions: map[string]bool{},
		calls:    map[string]int{},
		headers:  map[string][]http.Header{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/handshake", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, true, nil, nil)
	})
	mux.HandleFunc("GET /api/validateAuthentication", m.validateAuthentication)
	mux.HandleFunc("GET /api/requireAuthentication", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, true, nil, m.options.authRequired)
	})
	mux.HandleFunc("POST /api/authenticate", m.authenticate)
	mux.HandleFunc("GET /api/signout", m.signOut)
	mux.HandleFunc("GET /api/getDashboardConfiguration", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, true, nil, m.options.configuration)
	})
	mux.HandleFunc("GET /api/getWireguardConfigurations", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, true, nil, m.options.configurations)
	})

	m.Server = httptest.NewServer(m.middleware(mux))
	t.Cleanup(m.Close)
	return m
}

// Calls is how many requests reached path.
func (m *MockDashboard) Calls(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[path]
}

// Headers returns the request headers seen for path, in order.
func (m *MockDashboard) Headers(path string) []http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]http.Header{}, m.headers[path]...)
}

// ExpireSessions drops every server side session.
func (m *MockDashboard) ExpireSessions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = map[string]bool{}
}

func (m *MockDashboard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.calls[r.URL.Path]++
		m.headers[r.URL.Path] = append(m.headers[r.URL.Path], r.Header.Clone())
		m.mu.Unlock()

		if !m.options.authRequired {
			next.ServeHTTP(w, r)
			return
		}
		if key := r.Header.Get(mockAPIKeyHeader); key != "" {
			if !m.options.apiKeys[key] {
				respond(w, http.StatusUnauthorized, false, "API Key does not exist", nil)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		if !m.hasSession(r) && !whiteListed(r.URL.Path) {
			respond(w, http.StatusUnauthorized, false, "Unauthorized access.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func whiteListed(path string) bool {
	for _, entry := range mockWhiteList {
		if strings.Contains(path, entry) {
			return true
		}
	}
	return false
}

func (m *MockDashboard) hasSession(r *http.Request) bool {
	c, err := r.Cookie(mockSessionCookie)
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[c.Value]
}

func (m *MockDashboard) validateAuthentication(w http.ResponseWriter, r *http.Request) {
	if m.options.failValidateWith != 0 {
		respond(w, m.options.failValidateWith, false, "Unauthorized access.", nil)
		return
	}
	if m.options.authRequired {
		token, err := r.Cookie(mockAuthCookie)
		if err != nil || token.Value == "" || !m.hasSession(r) {
			respond(w, http.StatusOK, false, "Invalid authentication.", nil)
			return
		}
		if session, _ := r.Cookie(mockSessionCookie); session.Value != token.Value {
			respond(w, http.StatusOK, false, "Invalid authentication.", nil)
			return
		}
	}
	respond(w, http.StatusOK, true, nil, nil)
}

func (m *MockDashboard) authenticate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		TOTP     string `json:"totp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}
	if !m.options.authRequired {
		respond(w, http.StatusOK, true, m.options.welcomeMessage, nil)
		return
	}

	totpValid := m.options.totp == "" || body.TOTP == m.options.totp
	if body.Username != m.options.username || body.Password != m.options.password || !totpValid {
		if m.options.totp != "" {
			respond(w, http.StatusOK, false, "Sorry, your username, password or OTP is incorrect.", nil)
			return
		}
		respond(w, http.StatusOK, false, "Sorry, your username or password is incorrect.", nil)
		return
	}

	m.mu.Lock()
	m.next++
	token := fmt.Sprintf("token-%d", m.next)
	m.sessions[token] = true
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: mockSessionCookie, Value: token, Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: mockAuthCookie, Value: token, Path: "/"})
	respond(w, http.StatusOK, true, m.options.welcomeMessage, nil)
}

func (m *MockDashboard) signOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(mockSessionCookie); err == nil {
		m.mu.Lock()
		delete(m.sessions, c.Value)
		m.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: mockAuthCookie, Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: mockSessionCookie, Path: "/", MaxAge: -1})
	respond(w, http.StatusOK, true, "", nil)
}

func respond(w http.ResponseWriter, code int, status bool, message, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"message": message,
		"data":    data,
	})
}
