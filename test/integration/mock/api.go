package mock

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

type failure struct {
	status  int
	message string
}

// ApiMock fronts a backend handler. It records every request and can replace the
// backend's answer for a method and path pattern with a scripted failure.
type ApiMock struct {
	upstream http.Handler

	mu               sync.Mutex
	headersReceived  map[string][]map[string]string
	queriesReceived  map[string][]map[string]string
	requestsReceived map[string][]map[string]any
	failures         map[string]failure
	server           *httptest.Server
}

func NewApiServer(upstream http.Handler) *ApiMock {
	return &ApiMock{
		upstream:         upstream,
		headersReceived:  map[string][]map[string]string{},
		queriesReceived:  map[string][]map[string]string{},
		requestsReceived: map[string][]map[string]any{},
		failures:         map[string]failure{},
	}
}

func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.serve))
}

func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

func (a *ApiMock) GetUrl() string {
	return a.server.URL
}

func (a *ApiMock) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + r.URL.Path

	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	var request map[string]any
	_ = json.Unmarshal(body, &request)
	if request == nil {
		request = map[string]any{}
	}

	headers := map[string]string{}
	for name, value := range r.Header {
		headers[name] = value[0]
	}
	queries := map[string]string{}
	for name, value := range r.URL.Query() {
		queries[name] = value[0]
	}

	a.mu.Lock()
	a.requestsReceived[key] = append(a.requestsReceived[key], request)
	a.headersReceived[key] = append(a.headersReceived[key], headers)
	a.queriesReceived[key] = append(a.queriesReceived[key], queries)
	scripted, failing := a.findFailure(r.Method, r.URL.Path)
	a.mu.Unlock()

	if !failing {
		a.upstream.ServeHTTP(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(scripted.status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": scripted.message,
		"data":    nil,
	})
}

// SetFailure makes requests matching method and path fail. Path segments may be "*".
func (a *ApiMock) SetFailure(method, path string, status int, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[method+path] = failure{status: status, message: message}
}

// ClearFailures lets every request reach the backend again.
func (a *ApiMock) ClearFailures() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = map[string]failure{}
}

// Reset forgets recorded requests and scripted failures.
func (a *ApiMock) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.headersReceived = map[string][]map[string]string{}
	a.queriesReceived = map[string][]map[string]string{}
	a.requestsReceived = map[string][]map[string]any{}
	a.failures = map[string]failure{}
}

func (a *ApiMock) GetRequestBody(method, path string, index int) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return pick(a.requestsReceived, method, path, index)
}

func (a *ApiMock) GetRequestHeaders(method, path string, index int) map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return pick(a.headersReceived, method, path, index)
}

func (a *ApiMock) GetRequestQueries(method, path string, index int) map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return pick(a.queriesReceived, method, path, index)
}

// CountRequests returns how many requests matched method and path.
func (a *ApiMock) CountRequests(method, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for key, received := range a.headersReceived {
		if strings.HasPrefix(key, method) && matchPath(path, strings.TrimPrefix(key, method)) {
			count += len(received)
		}
	}
	return count
}

func (a *ApiMock) findFailure(method, path string) (failure, bool) {
	if f, ok := a.failures[method+path]; ok {
		return f, true
	}
	for key, f := range a.failures {
		if strings.HasPrefix(key, method) && matchPath(strings.TrimPrefix(key, method), path) {
			return f, true
		}
	}
	return failure{}, false
}

func pick[T any](received map[string][]T, method, path string, index int) T {
	var zero T
	for key, values := range received {
		if !strings.HasPrefix(key, method) || !matchPath(path, strings.TrimPrefix(key, method)) {
			continue
		}
		if index >= 0 && index < len(values) {
			return values[index]
		}
	}
	return zero
}

func matchPath(pattern string, path string) bool {
	if pattern == path {
		return true
	}

	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")

	if len(patternParts) != len(pathParts) {
		return false
	}

	for i := range patternParts {
		if patternParts[i] != "*" && patternParts[i] != pathParts[i] {
			return false
		}
	}

	return true
}
