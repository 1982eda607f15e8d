// Package app describes the application process that owns an HTTP
// component: where it lives on disk and which server it is.
package app

// Application is the owning application as seen by the HTTP component
// and by route modules.
type Application interface {
	// Base returns the application base directory
	Base() string
	// ServerType returns the server type, which selects the route directory
	ServerType() string
	// ServerID returns the process's server identifier, e.g. "connector-2"
	ServerID() string
}

// Static is an Application with fixed values, typically built from config
type Static struct {
	BaseDir string
	Type    string
	ID      string
}

// NewStatic creates a Static application
func NewStatic(base, serverType, serverID string) *Static {
	return &Static{BaseDir: base, Type: serverType, ID: serverID}
}

func (a *Static) Base() string       { return a.BaseDir }
func (a *Static) ServerType() string { return a.Type }
func (a *Static) ServerID() string   { return a.ID }
