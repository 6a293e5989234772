package model

// HealthStatus represents the health check status. Store reports whether the
// run store is reachable; the service stays "healthy" only while it is.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Store   string `json:"store"`
}
