package router

import (
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

type Router struct {
	mux      *http.ServeMux
	routes   map[string]HandlerFunc // key = METHOD:PATH
	paths    map[string]bool        // track registered paths
	wildcard []string               // wildcard paths, most specific first
	Quiet    bool                   // disable request logging
}

func New() *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
	}

	// Single entry point; dispatch happens on METHOD:PATH
	r.mux.HandleFunc("/", r.dispatch)
	return r
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	if h, ok := r.routes[req.Method+":"+req.URL.Path]; ok {
		h(lrw, req)
	} else if h, pathKnown := r.matchWildcard(req.Method, req.URL.Path); h != nil {
		h(lrw, req)
	} else if pathKnown || r.paths[req.URL.Path] {
		// Path exists but method not allowed
		http.Error(lrw, "Method Not Allowed", http.StatusMethodNotAllowed)
	} else {
		http.Error(lrw, "Not Found", http.StatusNotFound)
	}

	if r.Quiet {
		return
	}
	log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
		colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
		methodColor(req.Method), req.Method, colorReset,
		req.URL.Path,
		statusColor(lrw.statusCode), lrw.statusCode, colorReset,
		colorBlue, time.Since(start), colorReset,
	)
}

// matchWildcard finds the handler of the most specific wildcard route
// matching path. pathKnown is set when a route matches the path under a
// different method.
func (r *Router) matchWildcard(method, path string) (h HandlerFunc, pathKnown bool) {
	for _, routePath := range r.wildcard {
		if !matchWildcardRoute(path, routePath) {
			continue
		}
		if h, ok := r.routes[method+":"+routePath]; ok {
			return h, true
		}
		pathKnown = true
	}
	return nil, pathKnown
}

// matchWildcardRoute checks if a request path matches a wildcard route pattern
func matchWildcardRoute(requestPath, routePattern string) bool {
	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")

	// A trailing wildcard matches any number of remaining segments
	if n := len(routeSegments); n > 0 && routeSegments[n-1] == "*" {
		if len(requestSegments) < n {
			return false
		}
		for i := 0; i < n-1; i++ {
			if routeSegments[i] != "*" && requestSegments[i] != routeSegments[i] {
				return false
			}
		}
		return true
	}

	if len(requestSegments) != len(routeSegments) {
		return false
	}
	for i, routeSegment := range routeSegments {
		if routeSegment != "*" && requestSegments[i] != routeSegment {
			return false
		}
	}
	return true
}

// Segment returns the i-th segment of a request path, "" when missing
func Segment(req *http.Request, i int) string {
	segments := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if i < 0 || i >= len(segments) {
		return ""
	}
	return segments[i]
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	r.routes[method+":"+path] = handler
	if !r.paths[path] && strings.Contains(path, "*") {
		r.wildcard = append(r.wildcard, path)
		// Exact segments beat wildcards; longer patterns beat shorter ones
		sort.SliceStable(r.wildcard, func(i, j int) bool {
			return specificity(r.wildcard[i]) > specificity(r.wildcard[j])
		})
	}
	r.paths[path] = true
}

func specificity(pattern string) int {
	score := 0
	for _, seg := range strings.Split(strings.Trim(pattern, "/"), "/") {
		if seg == "*" {
			score += 1
		} else {
			score += 3
		}
	}
	return score
}

func (r *Router) GET(path string, handler HandlerFunc) { r.register(http.MethodGet, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) {
	r.register(http.MethodDelete, path, handler)
}

// ServeHTTP lets the router be used directly as an http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// --- Start server ---
func (r *Router) Start(addr string) error {
	log.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
	return http.ListenAndServe(addr, r.mux)
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}
