package hunt

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/rasnovtravel/townhunt/internal/geo"
)

func TestRasnovCatalog(t *testing.T) {
	c := RasnovCatalog()
	if c.Len() != 8 {
		t.Fatalf("catalog has %d locations, want 8", c.Len())
	}

	seen := map[string]bool{}
	for _, l := range c.All() {
		if l.Key == "" || l.Name == "" || l.ScanToken == "" {
			t.Errorf("incomplete location %q: %+v", l.Key, l)
		}
		if seen[l.Key] {
			t.Errorf("duplicate key %q", l.Key)
		}
		seen[l.Key] = true
		if l.Lat == 0 || l.Lng == 0 {
			t.Errorf("location %q has no coordinates", l.Key)
		}
	}

	// Every stop is within walking or cable-car distance of the fortress.
	fortress, _ := c.Get("fortress")
	for _, l := range c.All() {
		d := geo.DistanceMeters(fortress.Lat, fortress.Lng, l.Lat, l.Lng)
		if d > 3000 {
			t.Errorf("location %q is %.0f m from the fortress", l.Key, d)
		}
	}
}

func TestCatalogLookups(t *testing.T) {
	c := RasnovCatalog()

	loc, err := c.Get("well")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loc.Name != "Ancient Well" {
		t.Errorf("name = %q", loc.Name)
	}

	if _, err := c.Get("castle"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("unknown key err = %v", err)
	}

	loc, err = c.ByScanToken("RASNOV_DINO")
	if err != nil {
		t.Fatalf("byScanToken: %v", err)
	}
	if loc.Key != "dino" {
		t.Errorf("token resolved to %q", loc.Key)
	}

	if _, err := c.ByScanToken("https://example.com"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("foreign payload err = %v", err)
	}
}

func TestLocationDisplayFallback(t *testing.T) {
	c := RasnovCatalog()

	dino, _ := c.Get("dino")
	if got := dino.DisplayName("ro"); got != "Intrarea Dino Parc" {
		t.Errorf("ro name = %q", got)
	}
	if got := dino.DisplayName("en"); got != "Dino Park Entrance" {
		t.Errorf("en name = %q", got)
	}

	// fortress has no Romanian variant, so every locale falls back.
	fortress, _ := c.Get("fortress")
	if got := fortress.DisplayName("ro"); got != fortress.Name {
		t.Errorf("fallback name = %q", got)
	}
	if got := fortress.DisplayHint("ro"); got != fortress.Hint {
		t.Errorf("fallback hint = %q", got)
	}
}

func TestLedgerAwardOnce(t *testing.T) {
	l := NewLedger(RasnovCatalog(), nil, nil, slog.New(slog.DiscardHandler))
	p := &Progress{Username: "maria"}
	ctx := context.Background()

	res, err := l.Award(ctx, p, "fortress")
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if res.PointsAwarded != PointsPerLocation || res.TotalPoints != PointsPerLocation {
		t.Errorf("award result: %+v", res)
	}

	if _, err := l.Award(ctx, p, "fortress"); !errors.Is(err, ErrAlreadyAwarded) {
		t.Errorf("replay err = %v", err)
	}
	if p.TotalPoints != PointsPerLocation {
		t.Errorf("points after replay = %d", p.TotalPoints)
	}

	if _, err := l.Award(ctx, p, "castle"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("unknown key err = %v", err)
	}
}

func TestLedgerCompletionBonus(t *testing.T) {
	c := RasnovCatalog()
	l := NewLedger(c, nil, nil, slog.New(slog.DiscardHandler))
	p := &Progress{Username: "maria"}
	ctx := context.Background()

	var last AwardResult
	for _, loc := range c.All() {
		res, err := l.Award(ctx, p, loc.Key)
		if err != nil {
			t.Fatalf("award %s: %v", loc.Key, err)
		}
		last = res
	}

	if !last.Completed || last.BonusPoints != CompletionBonus {
		t.Errorf("final award: %+v", last)
	}
	if p.TotalPoints != PointsPerLocation*c.Len()+CompletionBonus {
		t.Errorf("totalPoints = %d", p.TotalPoints)
	}
	if !p.Completed() {
		t.Error("completedAt not set")
	}
}
