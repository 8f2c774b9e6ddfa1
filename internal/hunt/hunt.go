// Package hunt implements the Rasnov scavenger hunt engine: the location
// catalog, the points ledger and the state machine that routes QR scans,
// geolocation fixes and manual test clicks into a single idempotent
// discovery operation.
package hunt

import (
	"context"
	"time"
)

// Points awarded per discovered location and the one-time bonus for
// finding every location in the catalog.
const (
	PointsPerLocation = 10
	CompletionBonus   = 50
)

// Discovery proximity thresholds in meters. Testing mode relaxes the
// threshold so the hunt can be exercised without visiting Rasnov.
const (
	ProximityMeters        = 100
	TestingProximityMeters = 50000
)

// Location is one discoverable stop of the hunt. Defined at load time,
// never mutated.
type Location struct {
	Key       string  `json:"key"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Name      string  `json:"name"`
	NameRO    string  `json:"nameRo,omitempty"`
	ScanToken string  `json:"-"`
	Fact      string  `json:"fact,omitempty"`
	FactRO    string  `json:"factRo,omitempty"`
	Hint      string  `json:"hint,omitempty"`
	HintRO    string  `json:"hintRo,omitempty"`
}

// DisplayName returns the localized name for the given locale, falling
// back to English when no variant exists.
func (l Location) DisplayName(locale string) string {
	if locale == "ro" && l.NameRO != "" {
		return l.NameRO
	}
	return l.Name
}

// DisplayFact returns the localized fun fact.
func (l Location) DisplayFact(locale string) string {
	if locale == "ro" && l.FactRO != "" {
		return l.FactRO
	}
	return l.Fact
}

// DisplayHint returns the localized hint pointing at the next stop.
func (l Location) DisplayHint(locale string) string {
	if locale == "ro" && l.HintRO != "" {
		return l.HintRO
	}
	return l.Hint
}

// Progress is the player's mutable aggregate. It is owned by the client:
// the store persists it, the ledger mutates it, the machine reads it.
//
// Invariant: TotalPoints == PointsPerLocation*len(LocationsFound) plus
// CompletionBonus once CompletedAt is set, for any sequence of awards
// that went through Ledger.Award.
type Progress struct {
	Username       string     `json:"username"`
	TotalPoints    int        `json:"totalPoints"`
	LocationsFound []string   `json:"locationsFound"`
	CompletedAt    *time.Time `json:"completedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	IsAnonymous    bool       `json:"isAnonymous"`
}

// Found reports whether the location key has already been discovered.
func (p *Progress) Found(key string) bool {
	for _, k := range p.LocationsFound {
		if k == key {
			return true
		}
	}
	return false
}

// Completed reports whether the completion bonus has been granted.
func (p *Progress) Completed() bool {
	return p.CompletedAt != nil
}

// Session is the transient per-play-through state. It is never persisted;
// it is rebuilt from Progress on resume.
type Session struct {
	ID           string
	Active       bool
	TestingMode  bool
	LastFix      *Fix
	stagedPhotos map[string][]byte
}

// Fix is a device geolocation reading in WGS84 degrees.
type Fix struct {
	Lat float64
	Lng float64
}

// AwardResult describes a successful award.
type AwardResult struct {
	PointsAwarded int
	BonusPoints   int
	TotalPoints   int
	Completed     bool
}

// LocationReport is the payload mirrored to the optional sync server when
// a location is discovered.
type LocationReport struct {
	LocationKey  string `json:"locationKey"`
	LocationName string `json:"locationName"`
	IsCompletion bool   `json:"isCompletion"`
}

// ProgressStore is the persistence boundary for Progress and captured
// photos. Implementations must treat storage failures as degradation,
// not fatal errors; see the progress package.
type ProgressStore interface {
	Load() (*Progress, error)
	Save(p *Progress) error
	SavePhoto(key string, blob []byte) error
	LoadPhoto(key string) ([]byte, error)
	ClearAll() error
}

// SyncReporter mirrors awards to a remote endpoint on a best-effort
// basis. Failures are the implementation's to log; callers ignore them.
type SyncReporter interface {
	ReportLocationFound(ctx context.Context, username string, rep LocationReport) error
}
