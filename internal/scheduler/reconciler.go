package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"bistro/internal/domain/reservation"
	"bistro/internal/pkg/clock"
	"bistro/internal/pkg/telemetry"
	"bistro/internal/usecase/commands"
	"bistro/internal/usecase/shared"
)

type SweepReport struct {
	StartedAt     time.Time
	NoShows       []int64
	DiningExpired []int64
	Promoted      []int64
	Failures      int
}

// Reconciler periodically expires no-shows and overlong visits, then promotes the waiting
// lists of every date where a table was freed. Dates the engine queued because an earlier
// promotion failed, or because the floor plan changed, are promoted on the same pass.
type Reconciler struct {
	store    shared.ReservationStore
	sweeper  commands.Sweeper
	clock    clock.Clock
	policy   shared.Policy
	metrics  *telemetry.Metrics
	interval time.Duration

	mu       sync.Mutex
	caughtUp bool
}

func NewReconciler(
	store shared.ReservationStore,
	sweeper commands.Sweeper,
	clk clock.Clock,
	policy shared.Policy,
	metrics *telemetry.Metrics,
	interval time.Duration,
) *Reconciler {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reconciler{
		store:    store,
		sweeper:  sweeper,
		clock:    clk,
		policy:   policy,
		metrics:  metrics,
		interval: interval,
	}
}

// Run ticks until ctx is cancelled. A pass in progress always completes.
func (r *Reconciler) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	slog.Info("reconciler started", "interval", r.interval)

	// kick immediately
	r.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("reconciler stopped")
			return ctx.Err()
		case <-t.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs one reconciliation pass. Records are processed independently; a failure is
// logged and counted and the pass moves on.
func (r *Reconciler) Tick(ctx context.Context) SweepReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	started := time.Now()
	report := SweepReport{StartedAt: r.clock.Now()}

	freed := r.expireNoShows(ctx, &report)
	r.promote(ctx, freed, &report)

	freed = r.expireDining(ctx, &report)
	r.promote(ctx, freed, &report)

	r.promote(ctx, r.sweeper.DuePromotions(ctx), &report)

	r.metrics.RecordSweep(len(report.NoShows), len(report.DiningExpired), time.Since(started))
	if len(report.NoShows)+len(report.DiningExpired)+len(report.Promoted)+report.Failures > 0 {
		slog.Info("reconciliation pass finished",
			"no_shows", len(report.NoShows),
			"dining_expired", len(report.DiningExpired),
			"promoted", len(report.Promoted),
			"failures", report.Failures)
	}
	return report
}

func (r *Reconciler) expireNoShows(ctx context.Context, report *SweepReport) []reservation.Date {
	now := r.clock.Now()
	candidates, err := r.noShowCandidates(ctx, now)
	if err != nil {
		r.fail("no_show_scan", err, report)
		return nil
	}

	freed := map[reservation.Date]struct{}{}
	for _, c := range candidates {
		if !c.IsNoShowAt(now, r.policy.NoShowGrace, r.policy.Location) {
			continue
		}
		expired, err := r.sweeper.ExpireNoShow(ctx, c.ID())
		if err != nil {
			r.fail("no_show", err, report, "reservation_id", c.ID())
			continue
		}
		if expired {
			report.NoShows = append(report.NoShows, c.ID())
			freed[c.Date()] = struct{}{}
		}
	}
	return sortedDates(freed)
}

func (r *Reconciler) expireDining(ctx context.Context, report *SweepReport) []reservation.Date {
	now := r.clock.Now()
	candidates, err := r.list(ctx, reservation.StatusActive)
	if err != nil {
		r.fail("dining_scan", err, report)
		return nil
	}

	freed := map[reservation.Date]struct{}{}
	for _, c := range candidates {
		if !c.DiningExpiredAt(now, r.policy.OccupancyWindow) {
			continue
		}
		expired, err := r.sweeper.ExpireDining(ctx, c.ID())
		if err != nil {
			r.fail("dining", err, report, "reservation_id", c.ID())
			continue
		}
		if expired {
			report.DiningExpired = append(report.DiningExpired, c.ID())
			freed[c.Date()] = struct{}{}
		}
	}
	return sortedDates(freed)
}

func (r *Reconciler) promote(ctx context.Context, dates []reservation.Date, report *SweepReport) {
	for _, d := range dates {
		res, err := r.sweeper.PromoteDate(ctx, d)
		report.Promoted = append(report.Promoted, res.Promoted...)
		if err != nil {
			r.fail("promote", err, report, "date", d.String())
		}
	}
}

func (r *Reconciler) list(ctx context.Context, status reservation.Status) ([]*reservation.Reservation, error) {
	ctx, cancel := r.policy.WithStoreTimeout(ctx)
	defer cancel()
	return r.store.FindReservationsByStatus(ctx, status)
}

// noShowCandidates lists approved reservations of yesterday and today. A late slot's grace
// can run past midnight, hence yesterday. The first pass after start scans every date to
// catch up on whatever fell due while the process was down.
func (r *Reconciler) noShowCandidates(ctx context.Context, now time.Time) ([]*reservation.Reservation, error) {
	if !r.caughtUp {
		all, err := r.list(ctx, reservation.StatusApproved)
		if err != nil {
			return nil, err
		}
		r.caughtUp = true
		return all, nil
	}

	today := reservation.DateOf(now.In(r.policy.Location))
	var out []*reservation.Reservation
	for _, d := range []reservation.Date{today.AddDays(-1), today} {
		rs, err := r.listDate(ctx, d, reservation.StatusApproved)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

func (r *Reconciler) listDate(ctx context.Context, date reservation.Date, status reservation.Status) ([]*reservation.Reservation, error) {
	ctx, cancel := r.policy.WithStoreTimeout(ctx)
	defer cancel()
	return r.store.FindReservationsByDate(ctx, date, status)
}

func (r *Reconciler) fail(stage string, err error, report *SweepReport, attrs ...any) {
	report.Failures++
	r.metrics.RecordSweepError(stage)
	slog.Error("reconciliation step failed",
		append([]any{"stage", stage, "error", err}, attrs...)...)
}

func sortedDates(set map[reservation.Date]struct{}) []reservation.Date {
	dates := make([]reservation.Date, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
