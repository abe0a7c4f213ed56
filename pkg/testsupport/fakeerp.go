// Package testsupport provides the fakes and fixtures the kit's tests run
// against: an in-memory ERP REST server honoring the backend's path and
// error-body conventions, a recording notifier, and fixture loaders.
package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// RequestLog records one request the fake server saw.
type RequestLog struct {
	Method string
	Path   string
	Body   map[string]any
}

// plannedFailure makes the next matching request fail with a canned error.
type plannedFailure struct {
	status  int
	message string
}

// FakeERP is an in-memory stand-in for the ERP backend. It keeps one entity
// table per collection path and implements the REST conventions the client
// expects: GET list/detail, POST create, PATCH merge, PUT replace, DELETE
// remove, with JSON error bodies carrying a "message" field.
type FakeERP struct {
	mu       sync.Mutex
	server   *httptest.Server
	tables   map[string][]map[string]any
	requests []RequestLog
	failures map[string]plannedFailure
	nextID   int
}

// NewFakeERP starts the fake server. Callers must Close it.
func NewFakeERP() *FakeERP {
	f := &FakeERP{
		tables:   map[string][]map[string]any{},
		failures: map[string]plannedFailure{},
		nextID:   1,
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the base URL clients should point at.
func (f *FakeERP) URL() string {
	return f.server.URL
}

// Close shuts the server down.
func (f *FakeERP) Close() {
	f.server.Close()
}

// Seed loads rows into a collection table, assigning ids to rows without one.
func (f *FakeERP) Seed(path string, rows ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range rows {
		if _, ok := row["id"]; !ok {
			row["id"] = f.allocIDLocked()
		}
		f.tables[path] = append(f.tables[path], row)
	}
}

// Rows returns a copy of a collection table.
func (f *FakeERP) Rows(path string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, len(f.tables[path]))
	for i, row := range f.tables[path] {
		out[i] = cloneRow(row)
	}
	return out
}

// Requests returns every request seen so far.
func (f *FakeERP) Requests() []RequestLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RequestLog(nil), f.requests...)
}

// RequestCount counts requests matching method and path.
func (f *FakeERP) RequestCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// FailNext makes the next request matching method and path fail with the
// given status and message, then clears the trap.
func (f *FakeERP) FailNext(method, path string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = plannedFailure{status: status, message: message}
}

func (f *FakeERP) allocIDLocked() string {
	id := fmt.Sprintf("%d", f.nextID)
	f.nextID++
	return id
}

func (f *FakeERP) handle(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, RequestLog{Method: r.Method, Path: r.URL.Path, Body: cloneRow(body)})

	if failure, ok := f.failures[r.Method+" "+r.URL.Path]; ok {
		delete(f.failures, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		writeError(w, failure.status, failure.message)
		return
	}

	collection, id := splitPath(r.URL.Path)
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && id == "":
		rows := f.tables[collection]
		if rows == nil {
			rows = []map[string]any{}
		}
		writeJSON(w, http.StatusOK, rows)

	case r.Method == http.MethodGet:
		if row, _ := f.findLocked(collection, id); row != nil {
			writeJSON(w, http.StatusOK, row)
			return
		}
		writeError(w, http.StatusNotFound, "record not found")

	case r.Method == http.MethodPost:
		row := cloneRow(body)
		if row == nil {
			row = map[string]any{}
		}
		row["id"] = f.allocIDLocked()
		f.tables[collection] = append(f.tables[collection], row)
		writeJSON(w, http.StatusCreated, row)

	case r.Method == http.MethodPatch:
		row, _ := f.findLocked(collection, id)
		if row == nil {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		for k, v := range body {
			row[k] = v
		}
		writeJSON(w, http.StatusOK, row)

	case r.Method == http.MethodPut:
		_, idx := f.findLocked(collection, id)
		if idx < 0 {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		row := cloneRow(body)
		if row == nil {
			row = map[string]any{}
		}
		row["id"] = id
		f.tables[collection][idx] = row
		writeJSON(w, http.StatusOK, row)

	case r.Method == http.MethodDelete:
		_, idx := f.findLocked(collection, id)
		if idx < 0 {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		f.tables[collection] = append(f.tables[collection][:idx], f.tables[collection][idx+1:]...)
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (f *FakeERP) findLocked(collection, id string) (map[string]any, int) {
	for i, row := range f.tables[collection] {
		if fmt.Sprintf("%v", row["id"]) == id {
			return row, i
		}
	}
	return nil, -1
}

// splitPath separates a detail path into its collection and id. Collection
// paths are /api/<module>/<resource>; anything after that is the id.
func splitPath(path string) (collection, id string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 3 {
		return "/" + strings.Join(parts[:3], "/"), strings.Join(parts[3:], "/")
	}
	return "/" + strings.Join(parts, "/"), ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func cloneRow(row map[string]any) map[string]any {
	if row == nil {
		return nil
	}
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
