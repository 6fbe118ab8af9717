package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"

	"github.com/fulmenhq/gofulmen/crucible"
)

// AppName is reported by /version.
var AppName = "searchrelay"

// BuildInfo is the metadata stamped into the binary at link time.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

var (
	buildMu sync.RWMutex
	build   = BuildInfo{Version: "dev", Commit: "unknown", BuildDate: "unknown"}
)

// SetVersionInfo records build metadata; empty values keep the defaults.
func SetVersionInfo(version, commit, buildDate string) {
	buildMu.Lock()
	defer buildMu.Unlock()
	if version != "" {
		build.Version = version
	}
	if commit != "" {
		build.Commit = commit
	}
	if buildDate != "" {
		build.BuildDate = buildDate
	}
}

// CurrentBuild returns the recorded build metadata.
func CurrentBuild() BuildInfo {
	buildMu.RLock()
	defer buildMu.RUnlock()
	return build
}

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	Name         string            `json:"name"`
	Build        BuildInfo         `json:"build"`
	Dependencies map[string]string `json:"dependencies"`
	Runtime      RuntimeInfo       `json:"runtime"`
}

type RuntimeInfo struct {
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
	NumGoroutines int    `json:"num_goroutines"`
}

// VersionHandler reports build, dependency and runtime details.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	deps := crucible.GetVersion()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(VersionResponse{
		Name:  AppName,
		Build: CurrentBuild(),
		Dependencies: map[string]string{
			"gofulmen": deps.Gofulmen,
			"crucible": deps.Crucible,
		},
		Runtime: RuntimeInfo{
			GoVersion:     runtime.Version(),
			Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			NumGoroutines: runtime.NumGoroutine(),
		},
	})
}
