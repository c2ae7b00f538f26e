package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/blog/config"
)

func newTestServer(t *testing.T, opts ...config.Option) (*httptest.Server, *config.Runtime) {
	t.Helper()

	cfg, err := config.Load(opts...)
	require.NoError(t, err)
	rt, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	srv := httptest.NewServer(routes(cfg, rt))
	t.Cleanup(srv.Close)
	return srv, rt
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/healthz/ready", "/healthz/db"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestAPI_Authentication(t *testing.T) {
	adminID := uuid.New()
	srv, rt := newTestServer(t, config.WithAdmin(adminID.String(), ""))

	resp, err := http.Get(srv.URL + "/api/v1/me")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/posts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	token, err := rt.Authenticator.IssueToken(adminID, nil)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/admin/users", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	assert.Len(t, users, 1)
}

func TestAPI_TokenForUnknownUser(t *testing.T) {
	srv, rt := newTestServer(t)

	userID := uuid.New()
	token, err := rt.Authenticator.IssueToken(userID, nil)
	require.NoError(t, err)

	body := strings.NewReader(`{"title":"First","slug":"first","introduction":"intro","content":"body","is_published":true}`)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/posts", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
	assert.Equal(t, userID.String(), post["owner_id"])

	// without the admin role the admin routes stay closed
	req, err = http.NewRequest(http.MethodGet, srv.URL+"/api/v1/admin/posts", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	adminResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	adminResp.Body.Close()
	assert.Equal(t, http.StatusForbidden, adminResp.StatusCode)
}

func TestFilesystemMediaServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.txt"), []byte("pixels"), 0o644))

	srv, _ := newTestServer(t, config.WithStorageURL("file://"+dir), config.WithMediaURLPrefix("/images/uploads"))

	resp, err := http.Get(srv.URL + "/images/uploads/pic.txt")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(body))
}
