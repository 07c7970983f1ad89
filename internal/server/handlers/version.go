package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
)

var (
	appVersion   = "dev"
	appCommit    = "unknown"
	appBuildDate = "unknown"
)

// SetVersionInfo records build metadata injected from main.
func SetVersionInfo(version, commit, buildDate string) {
	appVersion = version
	appCommit = commit
	appBuildDate = buildDate
}

// VersionResponse is the body returned by the version endpoint.
type VersionResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// VersionHandler reports build and runtime information.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	response := VersionResponse{
		Name:      "domainsweep",
		Version:   appVersion,
		Commit:    appCommit,
		BuildDate: appBuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
