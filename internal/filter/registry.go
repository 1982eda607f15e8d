// Package filter holds the ordered before- and after-route filters applied
// by the HTTP server.
package filter

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// Registry keeps two ordered filter lists. Before-filters run ahead of route
// dispatch; after-filters run once the route handler has returned.
type Registry struct {
	mu     sync.Mutex
	before []gin.HandlerFunc
	after  []gin.HandlerFunc
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Before appends before-filters in the given order
func (r *Registry) Before(filters ...gin.HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.before = append(r.before, filters...)
}

// After appends after-filters in the given order
func (r *Registry) After(filters ...gin.HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.after = append(r.after, filters...)
}

// BeforeFilters returns the before-filters in registration order
func (r *Registry) BeforeFilters() []gin.HandlerFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gin.HandlerFunc(nil), r.before...)
}

// AfterFilters returns the after-filters in registration order
func (r *Registry) AfterFilters() []gin.HandlerFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gin.HandlerFunc(nil), r.after...)
}

// Mark records how many filters each list holds
type Mark struct {
	before, after int
}

// Mark returns the current position of both lists for a later Reset
func (r *Registry) Mark() Mark {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Mark{before: len(r.before), after: len(r.after)}
}

// Reset drops every filter registered after m was taken
func (r *Registry) Reset(m Mark) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.before < len(r.before) {
		r.before = r.before[:m.before:m.before]
	}
	if m.after < len(r.after) {
		r.after = r.after[:m.after:m.after]
	}
}
