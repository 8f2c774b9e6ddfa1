package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/rasnovtravel/townhunt/internal/hunt"
)

func apiRouter(t *testing.T) (*chi.Mux, Store) {
	t.Helper()
	store := NewMemoryStore()

	r := chi.NewRouter()
	addRoutes(r, slog.New(slog.DiscardHandler), store, hunt.RasnovCatalog(), nil, "")
	return r, store
}

func createUser(t *testing.T, r http.Handler, username string) User {
	t.Helper()
	body, _ := json.Marshal(CreateUserRequest{Username: username})
	req := httptest.NewRequest(http.MethodPost, "/api/user/create", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated && w.Code != http.StatusOK {
		t.Fatalf("create user: got %d: %s", w.Code, w.Body.String())
	}
	var u User
	json.NewDecoder(w.Body).Decode(&u)
	return u
}

func TestCreateUser(t *testing.T) {
	r, _ := apiRouter(t)

	body, _ := json.Marshal(CreateUserRequest{Username: "maria"})
	req := httptest.NewRequest(http.MethodPost, "/api/user/create", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var u User
	json.NewDecoder(w.Body).Decode(&u)
	if u.Username != "maria" || u.TotalPoints != 0 {
		t.Errorf("unexpected user: %+v", u)
	}
	if u.LocationsFound == nil {
		t.Error("locationsFound must serialize as an empty array, not null")
	}
}

func TestCreateUserIdempotent(t *testing.T) {
	r, _ := apiRouter(t)
	createUser(t, r, "maria")

	body, _ := json.Marshal(CreateUserRequest{Username: "maria"})
	req := httptest.NewRequest(http.MethodPost, "/api/user/create", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("second create: expected 200, got %d", w.Code)
	}
}

func TestCreateUserValidation(t *testing.T) {
	r, _ := apiRouter(t)

	for name, body := range map[string]string{
		"empty username": `{"username":"   "}`,
		"missing field":  `{}`,
		"broken json":    `{nope`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/user/create", bytes.NewReader([]byte(body)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestGetUser(t *testing.T) {
	r, _ := apiRouter(t)
	createUser(t, r, "maria")

	req := httptest.NewRequest(http.MethodGet, "/api/user/maria", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var u User
	json.NewDecoder(w.Body).Decode(&u)
	if u.Username != "maria" {
		t.Errorf("username = %q", u.Username)
	}
}

func TestGetUserNotFound(t *testing.T) {
	r, _ := apiRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/user/ghost", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp ErrorResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error == "" {
		t.Error("error body missing")
	}
}

func TestListLocations(t *testing.T) {
	r, _ := apiRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	raw := w.Body.Bytes()
	var locations []LocationInfo
	json.Unmarshal(raw, &locations)
	if len(locations) != 8 {
		t.Fatalf("got %d locations, want 8", len(locations))
	}
	for _, l := range locations {
		if l.Key == "" || l.Name == "" {
			t.Errorf("incomplete location: %+v", l)
		}
	}
	// The scan token must never leak through the listing.
	if bytes.Contains(raw, []byte("RASNOV_")) {
		t.Error("scan tokens leaked into the locations listing")
	}
}

func TestListLocationsLocalized(t *testing.T) {
	r, _ := apiRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/locations?lang=ro", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var locations []LocationInfo
	json.NewDecoder(w.Body).Decode(&locations)

	var dino *LocationInfo
	for i := range locations {
		if locations[i].Key == "dino" {
			dino = &locations[i]
		}
	}
	if dino == nil {
		t.Fatal("dino location missing")
	}
	if dino.Name != "Intrarea Dino Parc" {
		t.Errorf("localized name = %q", dino.Name)
	}
}
