package session

import (
	"context"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgdashboard/wgdash/pkg/db"
)

func setupTestDB(t *testing.T) db.DAO {
	t.Helper()
	dao, err := db.New(db.WithDatabaseFile(filepath.Join(t.TempDir(), "wgdash.db")))
	require.NoError(t, err)
	t.Cleanup(func() { dao.Close() })
	return dao
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestJarPersistsAcrossLoads(t *testing.T) {
	ctx := t.Context()
	dao := setupTestDB(t)

	jar, err := Load(ctx, dao, "http://localhost:10086")
	require.NoError(t, err)
	jar.SetCookies(mustParse(t, "http://localhost:10086/api/authenticate"), []*http.Cookie{
		{Name: "authToken", Value: "token-1", Path: "/"},
	})
	require.NoError(t, jar.Save(ctx))

	reloaded, err := Load(ctx, dao, "http://localhost:10086")
	require.NoError(t, err)
	cookies := reloaded.Cookies(mustParse(t, "http://localhost:10086/api/handshake"))
	require.Len(t, cookies, 1)
	assert.Equal(t, "authToken", cookies[0].Name)
	assert.Equal(t, "token-1", cookies[0].Value)
}

func TestJarIgnoresOtherOriginsWhenSaving(t *testing.T) {
	ctx := t.Context()
	dao := setupTestDB(t)

	jar, err := Load(ctx, dao, "http://localhost:10086")
	require.NoError(t, err)
	jar.SetCookies(mustParse(t, "http://peer.example:10086/"), []*http.Cookie{{Name: "other", Value: "x"}})
	require.NoError(t, jar.Save(ctx))

	stored, err := dao.ListCookies(ctx, "http://localhost:10086")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestJarDropsExpiredCookies(t *testing.T) {
	ctx := t.Context()
	dao := setupTestDB(t)
	origin := mustParse(t, "http://localhost:10086/")

	jar, err := Load(ctx, dao, "http://localhost:10086")
	require.NoError(t, err)
	jar.SetCookies(origin, []*http.Cookie{{Name: "authToken", Value: "token-1"}})
	assert.ElementsMatch(t, []string{"authToken"}, jar.Names())

	jar.SetCookies(origin, []*http.Cookie{{Name: "authToken", Value: "", MaxAge: -1}})
	assert.Empty(t, jar.Names())

	expired := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, dao.ReplaceCookies(ctx, "http://localhost:10086", []db.Cookie{
		{Name: "stale", Value: "v", Path: "/", Expires: &expired},
	}))
	reloaded, err := Load(ctx, dao, "http://localhost:10086")
	require.NoError(t, err)
	assert.Empty(t, reloaded.Cookies(origin))
}

func TestJarClear(t *testing.T) {
	ctx := t.Context()
	dao := setupTestDB(t)
	origin := mustParse(t, "http://localhost:10086/")

	jar, err := Load(ctx, dao, "http://localhost:10086")
	require.NoError(t, err)
	jar.SetCookies(origin, []*http.Cookie{{Name: "authToken", Value: "token-1"}})
	require.NoError(t, jar.Save(ctx))

	require.NoError(t, jar.Clear(ctx))
	assert.Empty(t, jar.Cookies(origin))

	stored, err := dao.ListCookies(ctx, "http://localhost:10086")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLoadInvalidOrigin(t *testing.T) {
	_, err := Load(context.Background(), setupTestDB(t), "://bad")
	require.Error(t, err)
}
