package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgdashboard/wgdash/pkg/router"
)

type fakeSelector struct {
	selection *Selection
	err       error
}

func (f *fakeSelector) ActiveCrossServer(context.Context) (*Selection, error) {
	return f.selection, f.err
}

type message struct {
	Title, Content, Type string
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []message
}

func (f *fakeNotifier) NewMessage(_ context.Context, title, content, messageType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message{title, content, messageType})
}

type fakeNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeNavigator) Push(_ context.Context, path string) (*router.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return &router.Location{Path: path}, nil
}

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

func newServer(t *testing.T, status int, payload string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	var requests []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Header: r.Header.Clone()}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		mu.Lock()
		requests = append(requests, rec)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestGetSameOrigin(t *testing.T) {
	srv, requests := newServer(t, http.StatusOK, `{"status":true,"message":null,"data":{"peers":3}}`)
	nav := &fakeNavigator{}

	client, err := New(srv.URL+"/", WithSelector(&fakeSelector{}), WithNavigator(nav))
	require.NoError(t, err)

	var resp Response
	err = client.Get(t.Context(), "/api/getWireguardConfigurations", url.Values{"name": {"wg0"}}, &resp)
	require.NoError(t, err)
	assert.True(t, resp.Status)

	var data struct{ Peers int }
	require.NoError(t, resp.DecodeData(&data))
	assert.Equal(t, 3, data.Peers)

	require.Len(t, *requests, 1)
	got := (*requests)[0]
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/getWireguardConfigurations", got.Path)
	assert.Equal(t, "wg0", got.Query.Get("name"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Empty(t, got.Header.Values(HeaderAPIKey))
	assert.Empty(t, nav.paths)
}

func TestRequestsTargetActiveSelection(t *testing.T) {
	origin, originRequests := newServer(t, http.StatusOK, `{"status":true}`)
	remote, remoteRequests := newServer(t, http.StatusOK, `{"status":true}`)

	selector := &fakeSelector{selection: &Selection{Host: remote.URL, APIKey: "key-123"}}
	client, err := New(origin.URL, WithSelector(selector))
	require.NoError(t, err)

	require.NoError(t, client.Post(t.Context(), "/api/updatePeerSettings/wg0", map[string]string{"id": "peer"}, nil))
	require.NoError(t, client.Put(t.Context(), "/api/settings", map[string]int{"n": 1}, nil))
	require.NoError(t, client.Delete(t.Context(), "/api/peer/1", nil))

	assert.Empty(t, *originRequests)
	require.Len(t, *remoteRequests, 3)
	for _, r := range *remoteRequests {
		assert.Equal(t, "key-123", r.Header.Get(HeaderAPIKey))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	}
	assert.Equal(t, "peer", (*remoteRequests)[0].Body["id"])
	assert.Equal(t, http.MethodPut, (*remoteRequests)[1].Method)
	assert.Equal(t, http.MethodDelete, (*remoteRequests)[2].Method)
}

func TestUnauthorizedWarnsOnceAndRedirects(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{"status":false,"message":"Unauthorized access."}`)
	notifier := &fakeNotifier{}
	nav := &fakeNavigator{}

	client, err := New(srv.URL, WithNotifier(notifier), WithNavigator(nav))
	require.NoError(t, err)

	err = client.Get(t.Context(), "/api/getDashboardConfiguration", nil, nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

	assert.Equal(t, []message{{"WGDashboard", "Sign in session ended, please sign in again", "warning"}}, notifier.messages)
	assert.Equal(t, []string{"/signin"}, nav.paths)
}

func TestOtherFailuresRedirectWithoutWarning(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{name: "server error", status: http.StatusInternalServerError, payload: `{"status":false}`},
		{name: "not json", status: http.StatusOK, payload: `<html></html>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newServer(t, tc.status, tc.payload)
			notifier := &fakeNotifier{}
			nav := &fakeNavigator{}

			client, err := New(srv.URL, WithNotifier(notifier), WithNavigator(nav))
			require.NoError(t, err)

			err = client.Get(t.Context(), "/api/handshake", nil, nil)
			require.Error(t, err)
			assert.False(t, IsUnauthorized(err))
			assert.Empty(t, notifier.messages)
			assert.Equal(t, []string{"/signin"}, nav.paths)
		})
	}
}

func TestTransportErrorRedirects(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{}`)
	srv.Close()
	nav := &fakeNavigator{}

	client, err := New(srv.URL, WithNavigator(nav))
	require.NoError(t, err)

	err = client.Get(t.Context(), "/api/handshake", nil, nil)
	require.Error(t, err)
	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
	assert.Equal(t, []string{"/signin"}, nav.paths)
}

func TestSelectorErrorIsReturned(t *testing.T) {
	nav := &fakeNavigator{}
	client, err := New("http://localhost:10086",
		WithSelector(&fakeSelector{err: errors.New("no API key")}), WithNavigator(nav))
	require.NoError(t, err)

	err = client.Get(t.Context(), "/api/handshake", nil, nil)
	require.ErrorContains(t, err, "no API key")
	assert.Empty(t, nav.paths)
}

func TestURL(t *testing.T) {
	tests := []struct {
		name      string
		origin    string
		path      string
		selection *Selection
		expected  string
	}{
		{name: "origin root", origin: "http://localhost:10086", path: "/api/handshake", expected: "http://localhost:10086/api/handshake"},
		{name: "origin trailing slash", origin: "http://localhost:10086/", path: "/api/handshake", expected: "http://localhost:10086/api/handshake"},
		{name: "base path", origin: "https://vpn.example/dashboard/", path: "/api/handshake", expected: "https://vpn.example/dashboard/api/handshake"},
		{name: "selection", origin: "http://localhost:10086", path: "/api/handshake", selection: &Selection{Host: "https://remote:10086"}, expected: "https://remote:10086/api/handshake"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, err := New(tc.origin)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, client.URL(tc.path, tc.selection))
		})
	}
}

func TestHeaders(t *testing.T) {
	h := Headers(nil)
	assert.Equal(t, "application/json", h.Get("content-type"))
	assert.Empty(t, h.Values(HeaderAPIKey))

	h = Headers(&Selection{Host: "http://remote", APIKey: "abc"})
	assert.Equal(t, "abc", h.Get(HeaderAPIKey))
}

func TestNewRejectsRelativeOrigin(t *testing.T) {
	_, err := New("localhost:10086/")
	require.Error(t, err)
}
