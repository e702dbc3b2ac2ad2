package dashboard

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgdashboard/wgdash/pkg/credstore"
	"github.com/wgdashboard/wgdash/pkg/db"
	"github.com/wgdashboard/wgdash/pkg/fetch"
	"github.com/wgdashboard/wgdash/test/mocks"
)

func setupTestDB(t *testing.T) db.DAO {
	t.Helper()
	dao, err := db.New(db.WithDatabaseFile(filepath.Join(t.TempDir(), "wgdash.db")))
	require.NoError(t, err)
	t.Cleanup(func() { dao.Close() })
	return dao
}

func setupApp(t *testing.T, origin string, dao db.DAO) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	app, err := New(t.Context(), Options{Origin: origin, DAO: dao, Out: &out})
	require.NoError(t, err)
	return app, &out
}

func messages(t *testing.T, app *App) []db.Message {
	t.Helper()
	list, err := app.Store.Messages(t.Context(), 10)
	require.NoError(t, err)
	return list
}

func TestUnauthenticatedNavigationRedirectsToSignIn(t *testing.T) {
	srv := mocks.NewMockDashboard(t)
	app, out := setupApp(t, srv.URL, setupTestDB(t))

	loc, err := app.Open(t.Context(), "/configuration/wg0")
	require.NoError(t, err)
	assert.Equal(t, "/signin", loc.Path)
	assert.Equal(t, "/signin", app.Router.Current().Path)

	redirect, err := app.Store.Redirect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "/configuration/wg0", redirect)

	msgs := messages(t, app)
	require.Len(t, msgs, 1)
	assert.Equal(t, "WGDashboard", msgs[0].Title)
	assert.Equal(t, "Sign in session ended, please sign in again", msgs[0].Content)
	assert.Equal(t, "warning", msgs[0].Type)
	assert.Contains(t, out.String(), "Sign in session ended")

	assert.Equal(t, 1, srv.Calls("/api/validateAuthentication"))
	assert.Equal(t, 0, srv.Calls("/api/getDashboardConfiguration"))
	assert.False(t, app.Store.ShowNavBar())
	assert.Equal(t, "Sign In | WGDashboard", app.Store.Title())
}

func TestSignInReturnsToRememberedTarget(t *testing.T) {
	srv := mocks.NewMockDashboard(t, mocks.WithWireGuardConfigurations(
		map[string]any{"Name": "wg0", "Status": true, "TotalPeers": 2},
	))
	app, _ := setupApp(t, srv.URL, setupTestDB(t))

	_, err := app.Open(t.Context(), "/configuration/wg0")
	require.NoError(t, err)

	loc, err := app.Auth.SignIn(t.Context(), "admin", "admin", "")
	require.NoError(t, err)
	assert.Equal(t, "/configuration/wg0", loc.Path)
	assert.Equal(t, "wg0 | WGDashboard", app.Store.Title())
	assert.True(t, app.Store.ShowNavBar())
	assert.False(t, app.Store.Loading())

	redirect, err := app.Store.Redirect(t.Context())
	require.NoError(t, err)
	assert.Empty(t, redirect)

	assert.Equal(t, "v4.2.0", app.Store.Configuration()["Server"]["version"])
	require.True(t, app.Configurations.Loaded())
	configurations := app.Configurations.List()
	require.Len(t, configurations, 1)
	assert.Equal(t, "wg0", configurations[0].Name)
	assert.Equal(t, 2, configurations[0].TotalPeers)

	_, err = app.Open(t.Context(), "/settings")
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Calls("/api/getDashboardConfiguration"))
	assert.Equal(t, 1, srv.Calls("/api/getWireguardConfigurations"))

	msgs := messages(t, app)
	require.NotEmpty(t, msgs)
	assert.Equal(t, "success", msgs[0].Type)
	assert.Equal(t, "Welcome to WGDashboard", msgs[0].Content)
}

func TestSignInWithoutRedirectGoesToIndex(t *testing.T) {
	srv := mocks.NewMockDashboard(t)
	app, _ := setupApp(t, srv.URL, setupTestDB(t))

	loc, err := app.Auth.SignIn(t.Context(), "admin", "admin", "")
	require.NoError(t, err)
	assert.Equal(t, "/", loc.Path)
	assert.Equal(t, "Dashboard", loc.Name)
}

func TestSignInInvalidCredentials(t *testing.T) {
	srv := mocks.NewMockDashboard(t, mocks.WithAccount("admin", "secret", "123456"))
	app, _ := setupApp(t, srv.URL, setupTestDB(t))

	_, err := app.Auth.SignIn(t.Context(), "admin", "secret", "000000")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorContains(t, err, "OTP is incorrect")
	assert.Nil(t, app.Router.Current())
}

func TestSessionSurvivesRestart(t *testing.T) {
	srv := mocks.NewMockDashboard(t)
	dao := setupTestDB(t)

	app, _ := setupApp(t, srv.URL, dao)
	_, err := app.Auth.SignIn(t.Context(), "admin", "admin", "")
	require.NoError(t, err)
	require.NoError(t, app.Close(t.Context()))

	restarted, _ := setupApp(t, srv.URL, dao)
	loc, err := restarted.Open(t.Context(), "/settings")
	require.NoError(t, err)
	assert.Equal(t, "/settings", loc.Path)
}

func TestSignOut(t *testing.T) {
	srv := mocks.NewMockDashboard(t)
	app, _ := setupApp(t, srv.URL, setupTestDB(t))

	_, err := app.Auth.SignIn(t.Context(), "admin", "admin", "")
	require.NoError(t, err)
	require.True(t, app.Configurations.Loaded())

	loc, err := app.Auth.SignOut(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "/signin", loc.Path)
	assert.False(t, app.Configurations.Loaded())
	assert.Nil(t, app.Store.Configuration())
	assert.Empty(t, app.Session.Names())

	loc, err = app.Open(t.Context(), "/settings")
	require.NoError(t, err)
	assert.Equal(t, "/signin", loc.Path)
}

func TestActiveCrossServerSkipsValidation(t *testing.T) {
	origin := mocks.NewMockDashboard(t)
	remote := mocks.NewMockDashboard(t, mocks.WithAPIKeys("remote-key"))
	dao := setupTestDB(t)

	keys := credstore.New(credstore.NewDBHelper(dao))
	require.NoError(t, keys.SaveAPIKey("remote-id", "remote-key"))
	require.NoError(t, dao.CreateCrossServer(t.Context(), db.CrossServer{ID: "remote-id", Name: "remote", Host: remote.URL}))
	require.NoError(t, dao.ActivateCrossServer(t.Context(), "remote-id"))

	var out bytes.Buffer
	app, err := New(t.Context(), Options{Origin: origin.URL, DAO: dao, Keys: keys, Out: &out})
	require.NoError(t, err)

	loc, err := app.Open(t.Context(), "/settings")
	require.NoError(t, err)
	assert.Equal(t, "/settings", loc.Path)

	assert.Equal(t, 0, remote.Calls("/api/validateAuthentication"))
	assert.Equal(t, 0, origin.Calls("/api/validateAuthentication"))
	assert.Equal(t, 0, origin.Calls("/api/getDashboardConfiguration"))
	require.Equal(t, 1, remote.Calls("/api/getDashboardConfiguration"))
	assert.Equal(t, "remote-key", remote.Headers("/api/getDashboardConfiguration")[0].Get(fetch.HeaderAPIKey))
	assert.Empty(t, messages(t, app))
}

func TestValidationUnauthorizedWarnsOnce(t *testing.T) {
	srv := mocks.NewMockDashboard(t, mocks.WithValidateStatus(401))
	app, _ := setupApp(t, srv.URL, setupTestDB(t))

	_, err := app.Open(t.Context(), "/settings")
	require.Error(t, err)
	assert.True(t, fetch.IsUnauthorized(err))

	assert.Equal(t, "/signin", app.Router.Current().Path)
	assert.Equal(t, []string{"/signin"}, app.Router.History())
	assert.Len(t, messages(t, app), 1)

	redirect, err := app.Store.Redirect(t.Context())
	require.NoError(t, err)
	assert.Empty(t, redirect)
}

func TestPublicRouteMakesNoRequests(t *testing.T) {
	srv := mocks.NewMockDashboard(t)
	app, _ := setupApp(t, srv.URL, setupTestDB(t))

	loc, err := app.Open(t.Context(), "/share?ShareID=abc")
	require.NoError(t, err)
	assert.Equal(t, "/share", loc.Path)
	assert.Equal(t, 0, srv.Calls("/api/validateAuthentication"))
	assert.Equal(t, "Share | WGDashboard", app.Store.Title())
}

func TestRequiresAuthentication(t *testing.T) {
	srv := mocks.NewMockDashboard(t, mocks.WithAuthRequired(false))
	app, _ := setupApp(t, srv.URL, setupTestDB(t))

	required, err := app.Auth.RequiresAuthentication(t.Context())
	require.NoError(t, err)
	assert.False(t, required)

	loc, err := app.Open(t.Context(), "/settings")
	require.NoError(t, err)
	assert.Equal(t, "/settings", loc.Path)
}

func TestRoutesTable(t *testing.T) {
	app, _ := setupApp(t, "http://localhost:10086", setupTestDB(t))

	loc, err := app.Router.Resolve("/welcome")
	require.NoError(t, err)
	assert.True(t, loc.Meta.RequiresAuth)
	assert.True(t, loc.Meta.HideTopNav)

	loc, err = app.Router.Resolve("/firewall/nat")
	require.NoError(t, err)
	assert.Equal(t, "Firewall NAT", loc.Name)
	assert.True(t, loc.Meta.RequiresAuth)

	loc, err = app.Router.Resolve("/2FASetup")
	require.NoError(t, err)
	assert.Equal(t, "Multi-Factor Authentication Setup", loc.Meta.Title)
}
