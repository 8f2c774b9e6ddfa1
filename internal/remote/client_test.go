package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rasnovtravel/townhunt/internal/hunt"
)

func TestCreateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/user/create" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Account{Username: body["username"], TotalPoints: 0})
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	acc, err := c.CreateUser(context.Background(), "maria")
	if err != nil {
		t.Fatalf("createUser: %v", err)
	}
	if acc.Username != "maria" {
		t.Errorf("username = %q", acc.Username)
	}
}

func TestCreateUserExistingAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Account{Username: "maria", TotalPoints: 40})
	}))
	defer srv.Close()

	acc, err := New(srv.URL, srv.Client()).CreateUser(context.Background(), "maria")
	if err != nil {
		t.Fatalf("createUser on 200: %v", err)
	}
	if acc.TotalPoints != 40 {
		t.Errorf("totalPoints = %d", acc.TotalPoints)
	}
}

func TestReportLocationFound(t *testing.T) {
	var gotPath string
	var gotReport hunt.LocationReport
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReport)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	err := c.ReportLocationFound(context.Background(), "maria", hunt.LocationReport{
		LocationKey:  "fortress",
		LocationName: "Rasnov Fortress Gate",
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if gotPath != "/api/user/maria/location-found" {
		t.Errorf("path = %q", gotPath)
	}
	if gotReport.LocationKey != "fortress" {
		t.Errorf("report body = %+v", gotReport)
	}
}

func TestReportLocationFoundDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Location already found"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, srv.Client()).ReportLocationFound(context.Background(), "maria", hunt.LocationReport{LocationKey: "fortress"})
	if !errors.Is(err, ErrAlreadyRecorded) {
		t.Fatalf("err = %v, want ErrAlreadyRecorded", err)
	}
}

func TestReportLocationFoundServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL, srv.Client()).ReportLocationFound(context.Background(), "maria", hunt.LocationReport{LocationKey: "fortress"})
	if err == nil || errors.Is(err, ErrAlreadyRecorded) {
		t.Fatalf("err = %v, want a transport failure", err)
	}
}

func TestReportEscapesUsername(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	New(srv.URL, srv.Client()).ReportLocationFound(context.Background(), "guest/1 2", hunt.LocationReport{LocationKey: "fortress"})
	if gotPath != "/api/user/guest%2F1%202/location-found" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestLeaderboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/leaderboard" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]LeaderboardEntry{
			{Rank: 1, Username: "maria", TotalPoints: 130, LocationsFound: 8},
			{Rank: 2, Username: "ion", TotalPoints: 40, LocationsFound: 4},
		})
	}))
	defer srv.Close()

	entries, err := New(srv.URL, srv.Client()).Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].Username != "maria" || entries[0].Rank != 1 {
		t.Errorf("entries = %+v", entries)
	}
}
