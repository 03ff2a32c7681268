// Package testutil provides in-memory fakes for tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/idilsaglam/authtodo/internal/model"
)

// Request is one call recorded by FakeAPI.
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

// FakeAPI serves the todo collection contract from memory. Mount it with
// httptest.NewServer; the collection lives at "/".
type FakeAPI struct {
	mu       sync.Mutex
	router   chi.Router
	items    []model.Item
	nextID   int
	token    string
	requests []Request

	// FailStatus forces a status for a method (e.g. "POST": 500).
	FailStatus map[string]int
}

// NewFakeAPI returns a fake that accepts only "Bearer <token>".
// An empty token disables the check.
func NewFakeAPI(token string, items ...model.Item) *FakeAPI {
	f := &FakeAPI{
		items:      append([]model.Item(nil), items...),
		nextID:     len(items) + 1,
		token:      token,
		FailStatus: make(map[string]int),
	}
	r := chi.NewRouter()
	r.Use(f.record, f.authenticate, f.inject)
	r.Get("/", f.list)
	r.Post("/", f.create)
	r.Patch("/{id}", f.patch)
	r.Delete("/{id}", f.remove)
	f.router = r
	return f
}

func (f *FakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.router.ServeHTTP(w, r)
}

// Items returns a copy of the server-side collection.
func (f *FakeAPI) Items() []model.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Item{}, f.items...)
}

// SetItems replaces the server-side collection.
func (f *FakeAPI) SetItems(items ...model.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]model.Item(nil), items...)
}

// Requests returns the recorded calls in arrival order.
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Fail makes every request with method answer status. Zero clears it.
func (f *FakeAPI) Fail(method string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.FailStatus, method)
		return
	}
	f.FailStatus[method] = status
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(b)))
		f.mu.Lock()
		f.requests = append(f.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(b),
		})
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.token != "" && r.Header.Get("Authorization") != "Bearer "+f.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.FailStatus[r.Method]
		f.mu.Unlock()
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, f.Items())
}

func (f *FakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	it := model.Item{ID: model.ItemID(strconv.Itoa(f.nextID)), Title: body.Title, Completed: body.Completed}
	f.nextID++
	f.items = append(f.items, it)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, it)
}

func (f *FakeAPI) patch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Completed *bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Completed == nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	id := model.ItemID(chi.URLParam(r, "id"))
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Completed = *body.Completed
			writeJSON(w, http.StatusOK, f.items[i])
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (f *FakeAPI) remove(w http.ResponseWriter, r *http.Request) {
	id := model.ItemID(chi.URLParam(r, "id"))
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
