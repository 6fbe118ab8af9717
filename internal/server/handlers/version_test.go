package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionHandlerIncludesBuildMetadata(t *testing.T) {
	prev := CurrentBuild()
	SetVersionInfo("1.2.3", "abcd123", "2026-10-01T12:00:00Z")
	t.Cleanup(func() { SetVersionInfo(prev.Version, prev.Commit, prev.BuildDate) })

	rec := httptest.NewRecorder()
	VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp VersionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "searchrelay", resp.Name)
	assert.Equal(t, BuildInfo{Version: "1.2.3", Commit: "abcd123", BuildDate: "2026-10-01T12:00:00Z"}, resp.Build)
	assert.NotEmpty(t, resp.Dependencies["gofulmen"])
	assert.NotEmpty(t, resp.Dependencies["crucible"])
	assert.NotEmpty(t, resp.Runtime.GoVersion)
}

func TestSetVersionInfoKeepsDefaultsForEmptyValues(t *testing.T) {
	prev := CurrentBuild()
	t.Cleanup(func() { SetVersionInfo(prev.Version, prev.Commit, prev.BuildDate) })

	SetVersionInfo("9.9.9", "", "")
	got := CurrentBuild()
	assert.Equal(t, "9.9.9", got.Version)
	assert.Equal(t, prev.Commit, got.Commit)
}
