package commands

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"bistro/internal/domain/hours"
	"bistro/internal/domain/reservation"
	"bistro/internal/domain/table"
	"bistro/internal/pkg/clock"
	"bistro/internal/pkg/errs"
	"bistro/internal/pkg/telemetry"
	"bistro/internal/usecase/shared"
)

type OutcomeKind string

const (
	OutcomeApproved OutcomeKind = "APPROVED"
	OutcomeWaiting  OutcomeKind = "WAITING"
	OutcomeRejected OutcomeKind = "REJECTED"
)

// Rejection reasons
const (
	ReasonClosed             = "closed"
	ReasonTooFarInAdvance    = "too far in advance"
	ReasonInsufficientNotice = "insufficient notice"
	ReasonInvalidPartySize   = "invalid party size"
	ReasonInvalidOwner       = "invalid owner"
)

type DecideRequest struct {
	Date      reservation.Date
	Time      reservation.TimeOfDay
	PartySize int
	Owner     reservation.Owner
	Contact   reservation.Contact
	// BypassLeadTime lets staff seat walk-ins without the advance notice rule.
	BypassLeadTime bool
}

type Outcome struct {
	Kind        OutcomeKind
	TableID     int
	Reason      string
	Reservation *reservation.Reservation
}

type PromotionResult struct {
	Date         reservation.Date
	Promoted     []int64
	StillWaiting int
}

type ReservationCommands interface {
	Decide(ctx context.Context, req DecideRequest) (*Outcome, error)
	MarkArrived(ctx context.Context, id int64) (*reservation.Reservation, error)
	MarkFinished(ctx context.Context, id int64) (*reservation.Reservation, error)
	Cancel(ctx context.Context, id int64) (*reservation.Reservation, error)
}

// Sweeper is the part of the engine driven by the reconciliation scheduler.
// Expire* re-check the record under the date lock and report whether it changed.
type Sweeper interface {
	ExpireNoShow(ctx context.Context, id int64) (bool, error)
	ExpireDining(ctx context.Context, id int64) (bool, error)
	PromoteDate(ctx context.Context, date reservation.Date) (PromotionResult, error)
	// DuePromotions drains the dates owed a promotion pass that no expiry of the sweep frees.
	DuePromotions(ctx context.Context) []reservation.Date
}

type Engine struct {
	store    shared.ReservationStore
	tables   shared.TableInventory
	hours    shared.HoursSource
	locker   shared.DateLocker
	notifier shared.Notifier
	clock    clock.Clock
	policy   shared.Policy
	metrics  *telemetry.Metrics

	pendingMu sync.Mutex
	pending   map[reservation.Date]struct{}
	rescan    atomic.Bool
}

var (
	_ ReservationCommands = (*Engine)(nil)
	_ Sweeper             = (*Engine)(nil)
)

func NewEngine(
	store shared.ReservationStore,
	tables shared.TableInventory,
	hoursSource shared.HoursSource,
	locker shared.DateLocker,
	notifier shared.Notifier,
	clk clock.Clock,
	policy shared.Policy,
	metrics *telemetry.Metrics,
) *Engine {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &Engine{
		store:    store,
		tables:   tables,
		hours:    hoursSource,
		locker:   locker,
		notifier: notifier,
		clock:    clk,
		policy:   policy,
		metrics:  metrics,
		pending:  map[reservation.Date]struct{}{},
	}
}

func (e *Engine) Decide(ctx context.Context, req DecideRequest) (*Outcome, error) {
	started := time.Now()
	now := e.now()

	if reason := e.validate(req, now); reason != "" {
		e.metrics.RecordDecision(string(OutcomeRejected), reason, time.Since(started))
		slog.Info("reservation rejected",
			"date", req.Date.String(),
			"time", req.Time.String(),
			"party_size", req.PartySize,
			"reason", reason)
		return &Outcome{Kind: OutcomeRejected, Reason: reason}, nil
	}

	r, err := reservation.NewReservation(req.Date, req.Time, req.PartySize, req.Owner, req.Contact, now)
	if err != nil {
		// validate already covers every constructor rule
		return nil, errs.Wrap(err, "failed to build reservation")
	}

	outcome, err := withDateLock(ctx, e.locker, req.Date, func(ctx context.Context) (*Outcome, error) {
		return e.allocate(ctx, r, now)
	})
	if err != nil {
		return nil, err
	}

	e.metrics.RecordDecision(string(outcome.Kind), "", time.Since(started))
	switch outcome.Kind {
	case OutcomeApproved:
		e.notify(ctx, shared.EventApproved, outcome.Reservation, now)
	case OutcomeWaiting:
		e.notify(ctx, shared.EventWaiting, outcome.Reservation, now)
	}
	return outcome, nil
}

// validate returns the rejection reason, empty when the request may proceed to allocation.
func (e *Engine) validate(req DecideRequest, now time.Time) string {
	if req.PartySize < 1 {
		return ReasonInvalidPartySize
	}
	if !req.Owner.IsValid() {
		return ReasonInvalidOwner
	}
	if !hours.IsOpen(e.hours, req.Date, req.Time) {
		return ReasonClosed
	}

	slot := req.Date.At(req.Time, e.policy.Location)
	if slot.After(addMonths(now, e.policy.BookingHorizon)) {
		return ReasonTooFarInAdvance
	}
	if slot.Before(now.Truncate(time.Minute)) {
		return ReasonInsufficientNotice
	}
	if !req.BypassLeadTime && reservation.DateOf(now) == req.Date && slot.Sub(now) < e.policy.LeadTime {
		return ReasonInsufficientNotice
	}
	return ""
}

// addMonths moves t by whole calendar months. The day is clamped to the last day of the
// target month, so Jan 31 plus one month is Feb 28 and not Mar 3.
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(d, last)-1)
}

// allocate runs under the date lock.
func (e *Engine) allocate(ctx context.Context, r *reservation.Reservation, now time.Time) (*Outcome, error) {
	tables, holders, err := e.occupancy(ctx, r.Date())
	if err != nil {
		return nil, err
	}

	if t, ok := reservation.SelectTable(tables, holders, r.Time(), r.PartySize(), e.policy.OccupancyWindow, 0); ok {
		approved := r.Clone()
		if err := approved.Approve(t.ID(), now); err != nil {
			return nil, errs.Wrap(err, "failed to approve reservation")
		}
		_, err := e.save(ctx, approved)
		if err == nil {
			slog.Info("reservation approved",
				"reservation_id", approved.ID(),
				"date", approved.Date().String(),
				"time", approved.Time().String(),
				"table_id", t.ID())
			return &Outcome{Kind: OutcomeApproved, TableID: t.ID(), Reservation: approved}, nil
		}
		if !errs.Is(err, errs.ErrBookingConflict) {
			return nil, err
		}
		slog.Warn("table taken by a concurrent writer, falling back to waiting list",
			"date", r.Date().String(),
			"time", r.Time().String(),
			"table_id", t.ID())
	}

	if err := r.PutOnWaitlist(now); err != nil {
		return nil, errs.Wrap(err, "failed to put reservation on waiting list")
	}
	if _, err := e.save(ctx, r); err != nil {
		return nil, err
	}
	slog.Info("reservation waiting",
		"reservation_id", r.ID(),
		"date", r.Date().String(),
		"time", r.Time().String(),
		"party_size", r.PartySize())
	return &Outcome{Kind: OutcomeWaiting, Reservation: r}, nil
}

func (e *Engine) MarkArrived(ctx context.Context, id int64) (*reservation.Reservation, error) {
	return e.transition(ctx, id, func(ctx context.Context, r *reservation.Reservation, now time.Time) error {
		if r.Status() != reservation.StatusPending && r.Status() != reservation.StatusApproved {
			return errs.Mark(reservation.ErrInvalidTransition, errs.ErrInvalidTransition)
		}
		if !r.CheckInOpenAt(now, e.policy.CheckInEarly, e.policy.NoShowGrace, e.policy.Location) {
			return errs.ErrOutsideCheckIn
		}

		tables, holders, err := e.occupancy(ctx, r.Date())
		if err != nil {
			return err
		}
		tableID := r.TableID()
		if tableID == 0 || !reservation.TableFree(tables, holders, tableID, r.Time(), r.PartySize(), e.policy.OccupancyWindow, r.ID()) {
			t, ok := reservation.SelectTable(tables, holders, r.Time(), r.PartySize(), e.policy.OccupancyWindow, r.ID())
			if !ok {
				return errs.ErrNoTableAvailable
			}
			tableID = t.ID()
		}
		return r.Arrive(tableID, now)
	})
}

func (e *Engine) MarkFinished(ctx context.Context, id int64) (*reservation.Reservation, error) {
	return e.transition(ctx, id, func(_ context.Context, r *reservation.Reservation, now time.Time) error {
		return r.Finish(now)
	})
}

func (e *Engine) Cancel(ctx context.Context, id int64) (*reservation.Reservation, error) {
	return e.transition(ctx, id, func(_ context.Context, r *reservation.Reservation, now time.Time) error {
		return r.Cancel(now)
	})
}

func (e *Engine) ExpireNoShow(ctx context.Context, id int64) (bool, error) {
	_, err := e.transitionNoPromote(ctx, id, func(_ context.Context, r *reservation.Reservation, now time.Time) error {
		if !r.IsNoShowAt(now, e.policy.NoShowGrace, e.policy.Location) {
			return errNotDue
		}
		return r.MarkNoShow(now)
	})
	return sweepResult(err)
}

func (e *Engine) ExpireDining(ctx context.Context, id int64) (bool, error) {
	_, err := e.transitionNoPromote(ctx, id, func(_ context.Context, r *reservation.Reservation, now time.Time) error {
		if !r.DiningExpiredAt(now, e.policy.OccupancyWindow) {
			return errNotDue
		}
		return r.Finish(now)
	})
	return sweepResult(err)
}

func sweepResult(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errs.Is(err, errNotDue):
		return false, nil
	default:
		return false, err
	}
}

func (e *Engine) PromoteDate(ctx context.Context, date reservation.Date) (PromotionResult, error) {
	now := e.now()
	var promoted []*reservation.Reservation
	result, err := withDateLock(ctx, e.locker, date, func(ctx context.Context) (*PromotionResult, error) {
		var res PromotionResult
		var err error
		promoted, res, err = e.promoteLocked(ctx, date, now)
		return &res, err
	})
	for _, r := range promoted {
		e.notify(ctx, shared.EventPromoted, r, now)
	}
	if err != nil {
		e.SchedulePromotion(date)
	}
	if result == nil {
		return PromotionResult{Date: date}, err
	}
	return *result, err
}

// SchedulePromotion queues a promotion pass of date for the next sweep.
func (e *Engine) SchedulePromotion(date reservation.Date) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.pending[date] = struct{}{}
}

// RescanWaiting makes the next sweep promote every upcoming date with waiting reservations.
// Called when capacity appears outside the engine, such as a floor plan reload.
func (e *Engine) RescanWaiting() {
	e.rescan.Store(true)
}

func (e *Engine) DuePromotions(ctx context.Context) []reservation.Date {
	if e.rescan.Swap(false) {
		if err := e.scheduleWaitingDates(ctx); err != nil {
			e.rescan.Store(true)
			slog.Error("failed to list waiting reservations", "error", err)
		}
	}

	e.pendingMu.Lock()
	dates := make([]reservation.Date, 0, len(e.pending))
	for d := range e.pending {
		dates = append(dates, d)
	}
	clear(e.pending)
	e.pendingMu.Unlock()

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func (e *Engine) scheduleWaitingDates(ctx context.Context) error {
	ctx, cancel := e.policy.WithStoreTimeout(ctx)
	defer cancel()

	waiting, err := e.store.FindReservationsByStatus(ctx, reservation.StatusWaiting)
	if err != nil {
		return storeErr(err, "failed to list waiting reservations")
	}
	today := reservation.DateOf(e.now())
	for _, w := range waiting {
		if w.Date().Before(today) {
			continue
		}
		e.SchedulePromotion(w.Date())
	}
	return nil
}

// errNotDue aborts a sweep transition whose record no longer qualifies.
var errNotDue = errs.New("reservation not due")

type mutation func(ctx context.Context, r *reservation.Reservation, now time.Time) error

func (e *Engine) transition(ctx context.Context, id int64, apply mutation) (*reservation.Reservation, error) {
	return e.mutate(ctx, id, apply, true)
}

func (e *Engine) transitionNoPromote(ctx context.Context, id int64, apply mutation) (*reservation.Reservation, error) {
	return e.mutate(ctx, id, apply, false)
}

// mutate locates the reservation, then re-reads and changes it under its date lock.
// When the change frees a table and promote is set, the waiting list of the date is promoted
// before the lock is released.
func (e *Engine) mutate(ctx context.Context, id int64, apply mutation, promote bool) (*reservation.Reservation, error) {
	located, err := e.find(ctx, id)
	if err != nil {
		return nil, err
	}
	date := located.Date()
	now := e.now()

	var promoted []*reservation.Reservation
	updated, err := withDateLock(ctx, e.locker, date, func(ctx context.Context) (*reservation.Reservation, error) {
		r, err := e.find(ctx, id)
		if err != nil {
			return nil, err
		}
		from := r.Status()

		if err := apply(ctx, r, now); err != nil {
			return nil, markTransitionErr(err)
		}
		if _, err := e.save(ctx, r); err != nil {
			return nil, err
		}
		e.metrics.RecordTransition(from.String(), r.Status().String())
		slog.Info("reservation transitioned",
			"reservation_id", r.ID(),
			"from", from.String(),
			"to", r.Status().String(),
			"table_id", r.TableID())

		if promote && r.FreesTable(from) {
			p, _, err := e.promoteLocked(ctx, date, now)
			if err != nil {
				// the transition itself is committed; the next sweep retries the promotion
				slog.Error("failed to promote waiting list",
					"date", date.String(),
					"error", err)
				e.SchedulePromotion(date)
			}
			promoted = p
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	switch updated.Status() {
	case reservation.StatusCancelled:
		e.notify(ctx, shared.EventCancelled, updated, now)
	case reservation.StatusNoShow:
		e.notify(ctx, shared.EventNoShow, updated, now)
	}
	for _, r := range promoted {
		e.notify(ctx, shared.EventPromoted, r, now)
	}
	return updated, nil
}

// promoteLocked approves waiting reservations of the date in ascending id order.
// Each candidate sees the tables taken by earlier promotions of the same pass.
func (e *Engine) promoteLocked(ctx context.Context, date reservation.Date, now time.Time) ([]*reservation.Reservation, PromotionResult, error) {
	result := PromotionResult{Date: date}

	waiting, err := e.byDate(ctx, date, reservation.StatusWaiting)
	if err != nil {
		return nil, result, err
	}
	if len(waiting) == 0 {
		return nil, result, nil
	}
	sort.SliceStable(waiting, func(i, j int) bool { return waiting[i].ID() < waiting[j].ID() })

	tables, holders, err := e.occupancy(ctx, date)
	if err != nil {
		return nil, result, err
	}

	var promoted []*reservation.Reservation
	for _, w := range waiting {
		// a slot that is already beyond its no-show grace can never be honoured
		if w.SlotAt(e.policy.Location).Add(e.policy.NoShowGrace).Before(now) {
			result.StillWaiting++
			continue
		}
		t, ok := reservation.SelectTable(tables, holders, w.Time(), w.PartySize(), e.policy.OccupancyWindow, w.ID())
		if !ok {
			result.StillWaiting++
			continue
		}
		if err := w.Approve(t.ID(), now); err != nil {
			return promoted, result, errs.Wrap(err, "failed to approve waiting reservation")
		}
		if _, err := e.save(ctx, w); err != nil {
			if errs.Is(err, errs.ErrBookingConflict) {
				result.StillWaiting++
				continue
			}
			return promoted, result, err
		}

		holders = append(holders, w)
		promoted = append(promoted, w)
		result.Promoted = append(result.Promoted, w.ID())
		e.metrics.RecordTransition(reservation.StatusWaiting.String(), reservation.StatusApproved.String())
		slog.Info("waiting reservation promoted",
			"reservation_id", w.ID(),
			"date", date.String(),
			"time", w.Time().String(),
			"table_id", t.ID())
	}
	e.metrics.RecordPromotions(len(promoted))
	return promoted, result, nil
}

// occupancy loads the floor plan and the table holders of a date.
func (e *Engine) occupancy(ctx context.Context, date reservation.Date) ([]table.Table, []*reservation.Reservation, error) {
	tables, err := e.tables.AllTables(ctx)
	if err != nil {
		return nil, nil, errs.Mark(errs.Wrap(err, "failed to load tables"), errs.ErrStoreUnavailable)
	}
	holders, err := e.byDate(ctx, date, reservation.HoldingStatuses...)
	if err != nil {
		return nil, nil, err
	}
	return tables, holders, nil
}

func (e *Engine) find(ctx context.Context, id int64) (*reservation.Reservation, error) {
	ctx, cancel := e.policy.WithStoreTimeout(ctx)
	defer cancel()

	r, err := e.store.FindReservation(ctx, id)
	if err != nil {
		return nil, storeErr(err, "failed to find reservation")
	}
	return r, nil
}

func (e *Engine) byDate(ctx context.Context, date reservation.Date, statuses ...reservation.Status) ([]*reservation.Reservation, error) {
	ctx, cancel := e.policy.WithStoreTimeout(ctx)
	defer cancel()

	rs, err := e.store.FindReservationsByDate(ctx, date, statuses...)
	if err != nil {
		return nil, storeErr(err, "failed to list reservations by date")
	}
	return rs, nil
}

func (e *Engine) save(ctx context.Context, r *reservation.Reservation) (int64, error) {
	ctx, cancel := e.policy.WithStoreTimeout(ctx)
	defer cancel()

	id, err := e.store.Save(ctx, r)
	if err != nil {
		return 0, storeErr(err, "failed to save reservation")
	}
	r.AssignID(id)
	return id, nil
}

func (e *Engine) notify(ctx context.Context, event shared.Event, r *reservation.Reservation, now time.Time) {
	if e.notifier == nil {
		return
	}
	ctx, cancel := e.policy.WithStoreTimeout(context.WithoutCancel(ctx))
	defer cancel()

	if err := e.notifier.Notify(ctx, shared.NewNotification(event, r, now)); err != nil {
		e.metrics.RecordNotifyFailure()
		slog.Warn("failed to send notification",
			"event", string(event),
			"reservation_id", r.ID(),
			"error", err)
	}
}

func (e *Engine) now() time.Time {
	return e.clock.Now().In(e.policy.Location)
}

// withDateLock runs fn inside the critical section of date.
func withDateLock[T any](ctx context.Context, locker shared.DateLocker, date reservation.Date, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	unlock, err := locker.Lock(ctx, date)
	if err != nil {
		return zero, errs.Mark(errs.Wrapf(err, "failed to lock date %s", date), errs.ErrLockUnavailable)
	}
	defer unlock()
	return fn(ctx)
}

// storeErr keeps the sentinel a store put on err and treats anything else as unavailability.
func storeErr(err error, msg string) error {
	wrapped := errs.Wrap(err, msg)
	switch {
	case errs.Is(err, errs.ErrReservationNotFound),
		errs.Is(err, errs.ErrBookingConflict),
		errs.Is(err, errs.ErrStoreUnavailable):
		return wrapped
	default:
		return errs.Mark(wrapped, errs.ErrStoreUnavailable)
	}
}

func markTransitionErr(err error) error {
	switch {
	case errs.Is(err, reservation.ErrInvalidTransition), errs.Is(err, reservation.ErrTerminalState):
		return errs.Mark(err, errs.ErrInvalidTransition)
	default:
		return err
	}
}
