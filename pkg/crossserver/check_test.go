package crossserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgdashboard/wgdash/test/mocks"
)

func TestCheckServers(t *testing.T) {
	dao, keys := setupTestDB(t)
	ctx := t.Context()

	good := mocks.NewMockDashboard(t, mocks.WithAPIKeys("good-key"))
	wrongKey := mocks.NewMockDashboard(t, mocks.WithAPIKeys("other-key"))
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	var servers []Server
	for _, s := range []struct{ name, host, key string }{
		{"good", good.URL, "good-key"},
		{"wrong-key", wrongKey.URL, "good-key"},
		{"down", down.URL, "k"},
	} {
		server, err := Add(ctx, io.Discard, dao, keys, s.name, s.host, s.key)
		require.NoError(t, err)
		servers = append(servers, *server)
	}

	results := CheckServers(ctx, keys, nil, servers)
	require.Len(t, results, 3)

	assert.Equal(t, "good", results[0].Server.Name)
	assert.True(t, results[0].Reachable)
	assert.Equal(t, http.StatusOK, results[0].Status)
	assert.Equal(t, "good-key", good.Headers("/api/handshake")[0].Get("wg-dashboard-apikey"))

	assert.False(t, results[1].Reachable)
	assert.Equal(t, http.StatusUnauthorized, results[1].Status)
	assert.Contains(t, results[1].Error, "API Key does not exist")

	assert.False(t, results[2].Reachable)
	assert.NotEmpty(t, results[2].Error)
}

func TestCheckPrints(t *testing.T) {
	dao, keys := setupTestDB(t)
	ctx := t.Context()
	good := mocks.NewMockDashboard(t, mocks.WithAPIKeys("good-key"))

	_, err := Add(ctx, io.Discard, dao, keys, "good", good.URL, "good-key")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Check(ctx, &out, dao, keys, nil, OutputFormatJSON, "good"))
	var results []CheckResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Reachable)

	out.Reset()
	require.NoError(t, Check(ctx, &out, dao, keys, nil, OutputFormatHumanReadable))
	assert.Contains(t, out.String(), "good\t"+good.URL)
	assert.Contains(t, out.String(), "\tok")

	err = Check(ctx, io.Discard, dao, keys, nil, OutputFormatHumanReadable, "missing")
	require.ErrorContains(t, err, "not found")
}
