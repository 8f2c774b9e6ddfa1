package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEventsStream(t *testing.T) {
	r, _ := apiRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	createUser(t, r, "maria")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/user/maria/events", nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("opening stream: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q", got)
	}

	// Award a location while the stream is open.
	go func() {
		// Give the handler a moment to subscribe.
		time.Sleep(100 * time.Millisecond)
		body, _ := json.Marshal(LocationFoundRequest{LocationKey: "fortress"})
		http.Post(srv.URL+"/api/user/maria/location-found", "application/json", bytes.NewReader(body))
	}()

	scanner := bufio.NewScanner(resp.Body)
	var eventLine, dataLine string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			eventLine = line
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = line
			break
		}
	}
	if eventLine != "event: award" {
		t.Errorf("event line = %q", eventLine)
	}

	var ev AwardEvent
	if err := json.Unmarshal([]byte(strings.TrimPrefix(dataLine, "data: ")), &ev); err != nil {
		t.Fatalf("decoding event data: %v", err)
	}
	if ev.LocationKey != "fortress" || ev.TotalPoints != 10 {
		t.Errorf("event = %+v", ev)
	}
}

func TestEventsUnknownUser(t *testing.T) {
	r, _ := apiRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/user/ghost/events", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
