package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoutes() []Route {
	return []Route{
		{
			Name: "Index",
			Path: "/",
			Meta: Meta{RequiresAuth: true},
			Children: []Route{
				{Name: "Dashboard", Path: "", Meta: Meta{Title: "Dashboard"}},
				{Name: "Settings", Path: "/settings", Meta: Meta{Title: "Settings"}},
				{
					Name: "Configuration",
					Path: "configuration/:id",
					Meta: Meta{Title: "Configuration"},
					Children: []Route{
						{Name: "Peers List", Path: "peers", Meta: Meta{Title: "Peers"}},
					},
				},
			},
		},
		{Name: "Sign In", Path: "/signin", Meta: Meta{Title: "Sign In", HideTopNav: true}},
		{Name: "Share", Path: "/share"},
	}
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	r, err := New(testRoutes()...)
	require.NoError(t, err)
	return r
}

func TestResolve(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		path         string
		name         string
		title        string
		requiresAuth bool
		params       map[string]string
	}{
		{path: "/", name: "Dashboard", title: "Dashboard", requiresAuth: true},
		{path: "/settings/", name: "Settings", title: "Settings", requiresAuth: true},
		{path: "#/settings", name: "Settings", title: "Settings", requiresAuth: true},
		{path: "/configuration/wg0", name: "Configuration", title: "Configuration", requiresAuth: true, params: map[string]string{"id": "wg0"}},
		{path: "/configuration/wg%201/peers", name: "Peers List", title: "Peers", requiresAuth: true, params: map[string]string{"id": "wg 1"}},
		{path: "/SignIn", name: "Sign In", title: "Sign In"},
		{path: "/share?ShareID=abc", name: "Share"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			loc, err := r.Resolve(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.name, loc.Name)
			assert.Equal(t, tc.title, loc.Meta.Title)
			assert.Equal(t, tc.requiresAuth, loc.Meta.RequiresAuth)
			if tc.params != nil {
				assert.Equal(t, tc.params, loc.Params)
			}
		})
	}
}

func TestResolveQueryAndMatched(t *testing.T) {
	r := newTestRouter(t)

	loc, err := r.Resolve("/share?ShareID=abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", loc.Query.Get("ShareID"))
	assert.Equal(t, "/share?ShareID=abc", loc.FullPath())

	loc, err = r.Resolve("/configuration/wg0/peers")
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/configuration/:id", "/configuration/:id/peers"}, loc.Matched)
}

func TestResolveNotFound(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/nope", "/configuration", "/configuration/wg0/peers/extra"} {
		_, err := r.Resolve(path)
		assert.ErrorIs(t, err, ErrNotFound, path)
	}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(
		Route{Name: "Sign In", Path: "/signin"},
		Route{Name: "Sign In", Path: "/login"},
	)
	require.ErrorContains(t, err, "duplicate route name")
}

func TestEntries(t *testing.T) {
	r := newTestRouter(t)

	var paths []string
	for _, e := range r.Entries() {
		paths = append(paths, e.Name+" "+e.Path)
	}
	assert.Equal(t, []string{
		"Dashboard /",
		"Settings /settings",
		"Peers List /configuration/:id/peers",
		"Configuration /configuration/:id",
		"Index /",
		"Sign In /signin",
		"Share /share",
	}, paths)
}

func TestPushCommitsAndRunsHooks(t *testing.T) {
	r := newTestRouter(t)

	var order []string
	r.BeforeEach(func(_ context.Context, to, from *Location) (Decision, error) {
		order = append(order, "guard1 "+to.Path)
		return Next(), nil
	})
	r.BeforeEach(func(_ context.Context, to, from *Location) (Decision, error) {
		order = append(order, "guard2 "+to.Path)
		return Next(), nil
	})
	var froms []*Location
	r.AfterEach(func(to, from *Location) {
		order = append(order, "after "+to.Path)
		froms = append(froms, from)
	})

	loc, err := r.Push(t.Context(), "/settings")
	require.NoError(t, err)
	assert.Equal(t, "Settings", loc.Name)

	_, err = r.Push(t.Context(), "/share")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"guard1 /settings", "guard2 /settings", "after /settings",
		"guard1 /share", "guard2 /share", "after /share",
	}, order)
	require.Len(t, froms, 2)
	assert.Nil(t, froms[0])
	assert.Equal(t, "/settings", froms[1].Path)
	assert.Equal(t, "/share", r.Current().Path)
	assert.Equal(t, []string{"/settings", "/share"}, r.History())
}

func TestPushFollowsRedirect(t *testing.T) {
	r := newTestRouter(t)
	r.BeforeEach(func(_ context.Context, to, _ *Location) (Decision, error) {
		if to.Meta.RequiresAuth {
			return RedirectTo("/signin"), nil
		}
		return Next(), nil
	})

	loc, err := r.Push(t.Context(), "/configuration/wg0")
	require.NoError(t, err)
	assert.Equal(t, "/signin", loc.Path)
	assert.Equal(t, []string{"/signin"}, r.History())
}

func TestPushGuardErrorAborts(t *testing.T) {
	r := newTestRouter(t)
	boom := errors.New("boom")
	r.BeforeEach(func(context.Context, *Location, *Location) (Decision, error) {
		return Decision{}, boom
	})
	called := false
	r.AfterEach(func(*Location, *Location) { called = true })

	_, err := r.Push(t.Context(), "/settings")
	require.ErrorIs(t, err, boom)
	assert.Nil(t, r.Current())
	assert.False(t, called)
}

func TestPushTooManyRedirects(t *testing.T) {
	r := newTestRouter(t)
	r.BeforeEach(func(_ context.Context, to, _ *Location) (Decision, error) {
		if to.Path == "/signin" {
			return RedirectTo("/share"), nil
		}
		return RedirectTo("/signin"), nil
	})

	_, err := r.Push(t.Context(), "/")
	require.ErrorIs(t, err, ErrTooManyRedirects)
	assert.Nil(t, r.Current())
}

func TestNestedPushSupersedes(t *testing.T) {
	r := newTestRouter(t)
	r.BeforeEach(func(ctx context.Context, to, _ *Location) (Decision, error) {
		if to.Path == "/settings" {
			if _, err := r.Push(ctx, "/signin"); err != nil {
				return Decision{}, err
			}
		}
		return Next(), nil
	})

	_, err := r.Push(t.Context(), "/settings")
	require.ErrorIs(t, err, ErrNavigationSuperseded)
	assert.Equal(t, "/signin", r.Current().Path)
	assert.Equal(t, []string{"/signin"}, r.History())
}

func TestPushUnknownRoute(t *testing.T) {
	r := newTestRouter(t)
	_, err := r.Push(t.Context(), "/missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPushCanceledContext(t *testing.T) {
	r := newTestRouter(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := r.Push(ctx, "/settings")
	require.ErrorIs(t, err, context.Canceled)
}

func TestTitle(t *testing.T) {
	r := newTestRouter(t)

	for path, expected := range map[string]string{
		"/settings":          "Settings | WGDashboard",
		"/configuration/wg0": "wg0 | WGDashboard",
		"/share":             "WGDashboard",
	} {
		loc, err := r.Resolve(path)
		require.NoError(t, err)
		assert.Equal(t, expected, Title(loc), fmt.Sprintf("title of %s", path))
	}
	assert.Equal(t, "WGDashboard", Title(nil))
}
