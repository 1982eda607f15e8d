package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideHeader names the header consulted by MethodOverride
const MethodOverrideHeader = "X-HTTP-Method-Override"

var overridableMethods = map[string]struct{}{
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
	http.MethodGet:    {},
	http.MethodHead:   {},
	http.MethodPost:   {},
}

// MethodOverride rewrites the method of POST requests carrying an
// X-HTTP-Method-Override header before routing happens. gin matches routes
// before running middleware, so this wraps the engine rather than being a
// filter.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if m := strings.ToUpper(strings.TrimSpace(r.Header.Get(MethodOverrideHeader))); m != "" {
				if _, ok := overridableMethods[m]; ok {
					r.Method = m
					r.Header.Del(MethodOverrideHeader)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
