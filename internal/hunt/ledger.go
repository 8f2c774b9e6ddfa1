package hunt

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrAlreadyAwarded is returned when a location was already credited to
// the player. The caller surfaces it as a notice, never as a failure.
var ErrAlreadyAwarded = errors.New("location already awarded")

// Ledger awards points for discoveries. It is the only code that mutates
// Progress, which is what keeps the points formula invariant honest.
type Ledger struct {
	catalog  *Catalog
	store    ProgressStore
	reporter SyncReporter
	logger   *slog.Logger
	now      func() time.Time
}

// NewLedger builds a ledger. reporter may be nil when server sync is
// disabled; store may be nil in session-only (degraded) mode.
func NewLedger(catalog *Catalog, store ProgressStore, reporter SyncReporter, logger *slog.Logger) *Ledger {
	return &Ledger{
		catalog:  catalog,
		store:    store,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Award credits locationKey to p exactly once.
//
// The already-found check and the mutation happen before any I/O, so
// concurrent triggers racing on the same key cannot double-award as long
// as the caller serializes calls (the machine holds its lock across this).
// The local save is synchronous; the remote report is fire-and-forget.
func (l *Ledger) Award(ctx context.Context, p *Progress, locationKey string) (AwardResult, error) {
	loc, err := l.catalog.Get(locationKey)
	if err != nil {
		return AwardResult{}, err
	}
	if p.Found(locationKey) {
		return AwardResult{}, ErrAlreadyAwarded
	}

	p.LocationsFound = append(p.LocationsFound, locationKey)
	p.TotalPoints += PointsPerLocation

	res := AwardResult{
		PointsAwarded: PointsPerLocation,
		TotalPoints:   p.TotalPoints,
	}

	if len(p.LocationsFound) == l.catalog.Len() && !p.Completed() {
		t := l.now()
		p.CompletedAt = &t
		p.TotalPoints += CompletionBonus
		res.BonusPoints = CompletionBonus
		res.TotalPoints = p.TotalPoints
		res.Completed = true
	}

	if l.store != nil {
		if err := l.store.Save(p); err != nil {
			// Reduced durability, not a failed award.
			l.logger.Warn("saving progress failed", "location", locationKey, "error", err)
		}
	}

	if l.reporter != nil {
		rep := LocationReport{
			LocationKey:  locationKey,
			LocationName: loc.Name,
			IsCompletion: res.Completed,
		}
		username := p.Username
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := l.reporter.ReportLocationFound(ctx, username, rep); err != nil {
				l.logger.Warn("remote sync failed", "location", locationKey, "error", err)
			}
		}()
	}

	return res, nil
}
