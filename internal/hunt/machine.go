package hunt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rasnovtravel/townhunt/internal/geo"
)

// State is the hunt lifecycle position.
type State string

const (
	StateIdle     State = "idle"
	StateActive   State = "active"
	StateComplete State = "complete"
)

var (
	// ErrNotActive is returned when a trigger fires outside an active hunt.
	ErrNotActive = errors.New("hunt is not active")
	// ErrAlreadyFound is the informational "you already found this" outcome.
	ErrAlreadyFound = errors.New("location already found")
	// ErrUnknownScan is the informational "code not recognized" outcome.
	ErrUnknownScan = errors.New("scan payload not recognized")
	// ErrTestingModeDisabled is returned when testing mode is not allowed
	// by configuration.
	ErrTestingModeDisabled = errors.New("testing mode is disabled")
)

// Options are the feature flags and tunables that unify the forked
// revisions of the original hunt into one machine.
type Options struct {
	EnablePhotoCapture bool
	EnableServerSync   bool
	EnableLocalization bool

	// AllowTestingMode gates the relaxed-threshold manual-discovery
	// affordance. Off by default; demo builds turn it on.
	AllowTestingMode bool

	// Locale selects localized display text when EnableLocalization is set.
	Locale string

	// RevealDelay is how long a scheduled discovery waits before
	// finalizing, giving the player time to see the mascot overlay.
	RevealDelay time.Duration

	// Now is the machine clock. Defaults to time.Now.
	Now func() time.Time
}

// PendingDiscovery is a discovery scheduled to finalize at ReadyAt.
type PendingDiscovery struct {
	Key     string
	ReadyAt time.Time
}

// Machine orchestrates the hunt: lifecycle, the three discovery triggers
// and completion detection. All public methods are safe for concurrent
// use; Discover behaves as a single-flight section per location key.
type Machine struct {
	mu sync.Mutex

	opts    Options
	catalog *Catalog
	store   ProgressStore
	ledger  *Ledger
	logger  *slog.Logger

	state    State
	progress *Progress
	session  *Session
	pending  []PendingDiscovery
	subs     []Subscriber
}

// NewMachine builds a machine around the given collaborators. store and
// reporter may be nil (session-only mode, sync disabled).
func NewMachine(catalog *Catalog, store ProgressStore, reporter SyncReporter, logger *slog.Logger, opts Options) *Machine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if !opts.EnableServerSync {
		reporter = nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		opts:     opts,
		catalog:  catalog,
		store:    store,
		ledger:   NewLedger(catalog, store, reporter, logger),
		logger:   logger,
		state:    StateIdle,
		progress: freshProgress(opts.Now()),
	}
}

func freshProgress(now time.Time) *Progress {
	return &Progress{
		Username:    fmt.Sprintf("guest_%d", now.UnixMilli()),
		IsAnonymous: true,
		CreatedAt:   now,
	}
}

// Subscribe registers a synchronous event subscriber.
func (m *Machine) Subscribe(s Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, s)
}

func (m *Machine) publish(ev Event) {
	for _, s := range m.subs {
		s(ev)
	}
}

func (m *Machine) notice(msg string) {
	m.publish(Event{Type: EventNotice, Notice: msg})
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Progress returns a copy of the player's progress.
func (m *Machine) Progress() Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *m.progress
	p.LocationsFound = append([]string(nil), m.progress.LocationsFound...)
	return p
}

// Start begins a play-through. Valid only from Idle.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		return fmt.Errorf("cannot start hunt from state %q", m.state)
	}
	m.state = StateActive
	m.session = &Session{
		ID:           uuid.NewString(),
		Active:       true,
		stagedPhotos: make(map[string][]byte),
	}
	m.logger.Info("hunt started", "session", m.session.ID, "player", m.progress.Username)
	m.publish(Event{
		Type:      EventHuntStarted,
		SessionID: m.session.ID,
		Found:     len(m.progress.LocationsFound),
		Total:     m.catalog.Len(),
	})
	return nil
}

// Stop ends the play-through without losing found locations.
func (m *Machine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return fmt.Errorf("cannot stop hunt from state %q", m.state)
	}
	m.state = StateIdle
	m.session = nil
	m.pending = nil
	m.publish(Event{Type: EventHuntStopped})
	return nil
}

// SetTestingMode toggles the relaxed-threshold testing affordance.
func (m *Machine) SetTestingMode(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if on && !m.opts.AllowTestingMode {
		return ErrTestingModeDisabled
	}
	if m.session == nil {
		return ErrNotActive
	}
	m.session.TestingMode = on
	return nil
}

// StagePhoto records a captured photo for key; it is persisted when the
// discovery for key finalizes. Staging before confirmation matches the
// capture-then-discover flow of the AR view.
func (m *Machine) StagePhoto(key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.opts.EnablePhotoCapture {
		return nil
	}
	if m.session == nil {
		return ErrNotActive
	}
	m.session.stagedPhotos[key] = blob
	return nil
}

// Discover is the single idempotent entry point used by all three
// triggers (QR scan, proximity check, manual test click).
func (m *Machine) Discover(ctx context.Context, key string) (AwardResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.discoverLocked(ctx, key)
}

func (m *Machine) discoverLocked(ctx context.Context, key string) (AwardResult, error) {
	if m.state != StateActive {
		return AwardResult{}, ErrNotActive
	}
	loc, err := m.catalog.Get(key)
	if err != nil {
		return AwardResult{}, err
	}
	if m.progress.Found(key) {
		m.notice("You already found this location!")
		return AwardResult{}, ErrAlreadyFound
	}

	// Persist a staged photo before finalizing; photo loss is non-fatal.
	if blob, ok := m.session.stagedPhotos[key]; ok {
		delete(m.session.stagedPhotos, key)
		if m.store != nil {
			if err := m.store.SavePhoto(key, blob); err != nil {
				m.logger.Warn("saving photo failed", "location", key, "error", err)
			}
		}
	}

	res, err := m.ledger.Award(ctx, m.progress, key)
	if err != nil {
		return AwardResult{}, err
	}

	locale := ""
	if m.opts.EnableLocalization {
		locale = m.opts.Locale
	}
	m.publish(Event{
		Type:         EventLocationFound,
		LocationKey:  key,
		LocationName: loc.DisplayName(locale),
		Fact:         loc.DisplayFact(locale),
		Hint:         loc.DisplayHint(locale),
		Points:       res.PointsAwarded,
		Found:        len(m.progress.LocationsFound),
		Total:        m.catalog.Len(),
		TotalPoints:  res.TotalPoints,
	})

	if res.Completed {
		m.state = StateComplete
		m.session = nil
		m.pending = nil
		m.publish(Event{
			Type:        EventHuntComplete,
			Found:       m.catalog.Len(),
			Total:       m.catalog.Len(),
			TotalPoints: res.TotalPoints,
		})
	}
	return res, nil
}

// CheckProximity discovers every unfound location within the threshold
// of the given fix. Returns the keys discovered; an empty result means
// "nothing nearby", which is informational, not an error.
func (m *Machine) CheckProximity(ctx context.Context, fix Fix) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return nil, ErrNotActive
	}
	m.session.LastFix = &fix

	threshold := float64(ProximityMeters)
	if m.session.TestingMode {
		threshold = TestingProximityMeters
	}

	var discovered []string
	pendingNearby := 0
	for _, loc := range m.catalog.All() {
		if m.progress.Found(loc.Key) {
			continue
		}
		d := geo.DistanceMeters(fix.Lat, fix.Lng, loc.Lat, loc.Lng)
		if d >= threshold {
			continue
		}
		if m.opts.RevealDelay > 0 {
			if m.scheduleLocked(loc.Key) {
				discovered = append(discovered, loc.Key)
			} else {
				pendingNearby++
			}
			continue
		}
		if _, err := m.discoverLocked(ctx, loc.Key); err == nil {
			discovered = append(discovered, loc.Key)
		}
		if m.state != StateActive {
			break
		}
	}

	if len(discovered) == 0 && pendingNearby == 0 {
		m.notice("No locations nearby. Keep exploring!")
	}
	return discovered, nil
}

// ResolveScan routes a decoded QR payload. Unknown payloads and repeat
// scans are normal outcomes surfaced as notices.
func (m *Machine) ResolveScan(ctx context.Context, payload string) (AwardResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return AwardResult{}, ErrNotActive
	}
	loc, err := m.catalog.ByScanToken(payload)
	if err != nil {
		m.notice("QR code not recognized. Make sure you're at a scavenger hunt location.")
		return AwardResult{}, ErrUnknownScan
	}
	return m.discoverLocked(ctx, loc.Key)
}

// DiscoverAfter schedules a discovery for key once RevealDelay has
// elapsed, so the player sees the mascot before progress updates.
func (m *Machine) DiscoverAfter(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return ErrNotActive
	}
	if _, err := m.catalog.Get(key); err != nil {
		return err
	}
	m.scheduleLocked(key)
	return nil
}

// scheduleLocked queues a discovery for key unless one is already
// pending. Reports whether a new entry was queued.
func (m *Machine) scheduleLocked(key string) bool {
	for _, pd := range m.pending {
		if pd.Key == key {
			return false
		}
	}
	m.pending = append(m.pending, PendingDiscovery{
		Key:     key,
		ReadyAt: m.opts.Now().Add(m.opts.RevealDelay),
	})
	return true
}

// Tick finalizes any pending discoveries that are due at now. The caller
// drives it from a timer; tests drive it directly.
func (m *Machine) Tick(ctx context.Context, now time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var finalized []string
	remaining := m.pending[:0]
	for _, pd := range m.pending {
		if pd.ReadyAt.After(now) || m.state != StateActive {
			remaining = append(remaining, pd)
			continue
		}
		if _, err := m.discoverLocked(ctx, pd.Key); err == nil {
			finalized = append(finalized, pd.Key)
		}
	}
	if m.state == StateActive {
		m.pending = remaining
	}
	return finalized
}

// Resume rebuilds machine state from persisted progress at startup. It
// re-marks found locations without re-awarding points or re-firing
// completion side effects.
func (m *Machine) Resume(p *Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.progress = p
	switch {
	case len(p.LocationsFound) == 0:
		m.state = StateIdle
	case len(p.LocationsFound) < m.catalog.Len():
		m.state = StateActive
		m.session = &Session{
			ID:           uuid.NewString(),
			Active:       true,
			stagedPhotos: make(map[string][]byte),
		}
		m.logger.Info("hunt resumed", "session", m.session.ID,
			"player", p.Username, "found", len(p.LocationsFound))
	default:
		m.state = StateComplete
	}
}

// Reset wipes all progress and returns the machine to Idle with a fresh
// anonymous player.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		if err := m.store.ClearAll(); err != nil {
			m.logger.Warn("clearing stored progress failed", "error", err)
		}
	}
	m.progress = freshProgress(m.opts.Now())
	m.session = nil
	m.pending = nil
	m.state = StateIdle
	return nil
}
