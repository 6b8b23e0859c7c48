package base

// Handler handles base HTTP requests (root, health, version)
type Handler struct {
	pingers []Pinger
}

// Pinger is a dependency checked by the health endpoint
type Pinger interface {
	Ping() error
}

// APIInfo represents the root API discovery response
type APIInfo struct {
	Message   string           `json:"message" example:"Welcome to the bazaar marketplace API"`
	Name      string           `json:"name" example:"bazaard"`
	Version   string           `json:"version" example:"Agora (2026.10) - v1.0.0-4f9f297"`
	Endpoints APIInfoEndpoints `json:"endpoints"`
}

// APIInfoEndpoints lists the top-level resources
type APIInfoEndpoints struct {
	Health     string `json:"health" example:"/health"`
	Version    string `json:"version" example:"/version"`
	Users      string `json:"users" example:"/users"`
	Token      string `json:"token" example:"/users/token"`
	Categories string `json:"categories" example:"/categories"`
	Products   string `json:"products" example:"/products"`
	Reviews    string `json:"reviews" example:"/reviews"`
	Docs       string `json:"docs" example:"/swagger/index.html"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp string `json:"timestamp" example:"2026-01-15T10:30:00Z"`
	Error     string `json:"error,omitempty"`
}

// VersionResponse is version.Info with documented examples
type VersionResponse struct {
	Version        string `json:"version" example:"Agora (2026.10) - v1.0.0-4f9f297"`
	ReleaseName    string `json:"release_name" example:"Agora"`
	ReleaseVersion string `json:"release_version" example:"1.0.0"`
	BuildDate      string `json:"build_date" example:"2026-01-15T10:30:00Z"`
	GitCommit      string `json:"git_commit" example:"4f9f297"`
	GoVersion      string `json:"go_version" example:"go1.24"`
}

// PingFunc adapts a function to Pinger
type PingFunc func() error

func (f PingFunc) Ping() error {
	return f()
}
