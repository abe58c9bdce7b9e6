//go:build unit

package scheduler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"bistro/internal/domain/hours"
	"bistro/internal/domain/reservation"
	"bistro/internal/domain/table"
	"bistro/internal/infra/floorplan"
	"bistro/internal/infra/lock"
	"bistro/internal/infra/memstore"
	"bistro/internal/pkg/clock"
	"bistro/internal/scheduler"
	"bistro/internal/usecase/commands"
	"bistro/internal/usecase/shared"
	"bistro/tests/common/builder"
	commandsmock "bistro/tests/mock/commands"
	sharedmock "bistro/tests/mock/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var wednesday = reservation.NewDate(2025, time.June, 11)

type ReconcilerTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	sweeper *commandsmock.MockSweeper
	store   *memstore.Store
	clock   *clock.MockClock
	rec     *scheduler.Reconciler
}

func (s *ReconcilerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sweeper = commandsmock.NewMockSweeper(s.ctrl)
	s.store = memstore.New(2 * time.Hour)
	s.clock = clock.NewMockClock(time.Date(2025, time.June, 11, 18, 16, 0, 0, time.UTC))
	s.rec = scheduler.NewReconciler(s.store, s.sweeper, s.clock, shared.DefaultPolicy(), nil, time.Minute)
}

func (s *ReconcilerTestSuite) seed(b *builder.ReservationBuilder) {
	s.store.Seed(b.WithDate(wednesday).BuildStored())
}

func (s *ReconcilerTestSuite) queued(dates ...reservation.Date) {
	s.sweeper.EXPECT().DuePromotions(gomock.Any()).Return(dates)
}

func TestReconcilerTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}

func (s *ReconcilerTestSuite) TestTick_ExpiresAndPromotes() {
	ctx := context.Background()
	s.seed(builder.NewReservationBuilder().WithID(1).WithTime(18, 0).AsApproved(1))
	s.seed(builder.NewReservationBuilder().WithID(2).WithTime(16, 0).
		AsActive(2, time.Date(2025, time.June, 11, 16, 0, 0, 0, time.UTC)))
	s.seed(builder.NewReservationBuilder().WithID(3).WithTime(19, 0).AsWaiting())

	gomock.InOrder(
		s.sweeper.EXPECT().ExpireNoShow(gomock.Any(), int64(1)).Return(true, nil),
		s.sweeper.EXPECT().PromoteDate(gomock.Any(), wednesday).
			Return(commands.PromotionResult{Date: wednesday, Promoted: []int64{3}}, nil),
		s.sweeper.EXPECT().ExpireDining(gomock.Any(), int64(2)).Return(true, nil),
		s.sweeper.EXPECT().PromoteDate(gomock.Any(), wednesday).
			Return(commands.PromotionResult{Date: wednesday}, nil),
	)
	s.queued()

	report := s.rec.Tick(ctx)

	s.Equal([]int64{1}, report.NoShows)
	s.Equal([]int64{2}, report.DiningExpired)
	s.Equal([]int64{3}, report.Promoted)
	s.Zero(report.Failures)
	s.True(report.StartedAt.Equal(s.clock.Now()))
}

func (s *ReconcilerTestSuite) TestTick_LeavesRecordsThatAreNotDue() {
	// 15 minutes late is still within the grace; 120 minutes seated is still within the window
	s.clock.Set(time.Date(2025, time.June, 11, 18, 15, 0, 0, time.UTC))
	s.seed(builder.NewReservationBuilder().WithID(1).WithTime(18, 0).AsApproved(1))
	s.seed(builder.NewReservationBuilder().WithID(2).WithTime(16, 15).
		AsActive(2, time.Date(2025, time.June, 11, 16, 15, 0, 0, time.UTC)))
	// approved for tomorrow at an earlier time of day
	s.store.Seed(builder.NewReservationBuilder().WithID(3).WithDate(wednesday.AddDays(1)).WithTime(12, 0).
		AsApproved(1).BuildStored())
	s.queued()

	report := s.rec.Tick(context.Background())

	s.Empty(report.NoShows)
	s.Empty(report.DiningExpired)
	s.Empty(report.Promoted)
	s.Zero(report.Failures)
}

func (s *ReconcilerTestSuite) TestTick_RecordChangedSinceScan() {
	s.seed(builder.NewReservationBuilder().WithID(1).WithTime(18, 0).AsApproved(1))
	s.sweeper.EXPECT().ExpireNoShow(gomock.Any(), int64(1)).Return(false, nil)
	s.queued()

	report := s.rec.Tick(context.Background())

	s.Empty(report.NoShows)
	s.Zero(report.Failures)
}

func (s *ReconcilerTestSuite) TestTick_FailuresDoNotStopThePass() {
	s.seed(builder.NewReservationBuilder().WithID(1).WithTime(18, 0).AsApproved(1))
	s.seed(builder.NewReservationBuilder().WithID(2).WithTime(17, 30).AsApproved(2))
	s.seed(builder.NewReservationBuilder().WithID(3).WithTime(19, 0).AsWaiting())

	s.sweeper.EXPECT().ExpireNoShow(gomock.Any(), int64(1)).Return(false, errors.New("lock timeout"))
	s.sweeper.EXPECT().ExpireNoShow(gomock.Any(), int64(2)).Return(true, nil)
	s.sweeper.EXPECT().PromoteDate(gomock.Any(), wednesday).
		Return(commands.PromotionResult{Date: wednesday, Promoted: []int64{3}}, errors.New("partial"))
	s.queued()

	report := s.rec.Tick(context.Background())

	s.Equal([]int64{2}, report.NoShows)
	s.Equal([]int64{3}, report.Promoted)
	s.Equal(2, report.Failures)
}

func (s *ReconcilerTestSuite) TestTick_PromotesQueuedDates() {
	thursday := wednesday.AddDays(1)
	s.queued(wednesday, thursday)
	gomock.InOrder(
		s.sweeper.EXPECT().PromoteDate(gomock.Any(), wednesday).
			Return(commands.PromotionResult{Date: wednesday, Promoted: []int64{4}}, nil),
		s.sweeper.EXPECT().PromoteDate(gomock.Any(), thursday).
			Return(commands.PromotionResult{Date: thursday, Promoted: []int64{7}}, nil),
	)

	report := s.rec.Tick(context.Background())

	s.Empty(report.NoShows)
	s.Equal([]int64{4, 7}, report.Promoted)
	s.Zero(report.Failures)
}

func (s *ReconcilerTestSuite) TestRun_StopsOnCancel() {
	s.sweeper.EXPECT().DuePromotions(gomock.Any()).Return(nil).AnyTimes()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.rec.Run(ctx)
	s.ErrorIs(err, context.Canceled)
}

func TestTick_StoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := sharedmock.NewMockReservationStore(ctrl)
	sweeper := commandsmock.NewMockSweeper(ctrl)
	store.EXPECT().FindReservationsByStatus(gomock.Any(), reservation.StatusApproved).Return(nil, errors.New("down"))
	store.EXPECT().FindReservationsByStatus(gomock.Any(), reservation.StatusActive).Return(nil, errors.New("down"))
	sweeper.EXPECT().DuePromotions(gomock.Any()).Return(nil)

	rec := scheduler.NewReconciler(store, sweeper, clock.NewMockClock(time.Now()), shared.DefaultPolicy(), nil, 0)
	report := rec.Tick(context.Background())

	assert.Equal(t, 2, report.Failures)
}

// The reconciler drives a real engine: the no-show frees the only table for the waiting party.
func TestTick_WithEngine(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(2 * time.Hour)
	clk := clock.NewMockClock(time.Date(2025, time.June, 11, 18, 16, 0, 0, time.UTC))
	fp := singleTablePlan(t, 4)

	engine := commands.NewEngine(store, fp, fp, lock.NewLocal(), nil, clk, shared.DefaultPolicy(), nil)
	rec := scheduler.NewReconciler(store, engine, clk, shared.DefaultPolicy(), nil, time.Minute)

	store.Seed(builder.NewReservationBuilder().WithID(1).WithDate(wednesday).WithTime(18, 0).AsApproved(1).BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(2).WithDate(wednesday).WithTime(19, 0).AsWaiting().BuildStored())

	report := rec.Tick(ctx)
	assert.Equal(t, []int64{1}, report.NoShows)
	assert.Equal(t, []int64{2}, report.Promoted)

	noShow, err := store.FindReservation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusNoShow, noShow.Status())

	promoted, err := store.FindReservation(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusApproved, promoted.Status())
	assert.Equal(t, 1, promoted.TableID())

	// a second pass has nothing left to do
	again := rec.Tick(ctx)
	assert.Empty(t, again.NoShows)
	assert.Empty(t, again.Promoted)
}

// After the first pass the no-show scan reads yesterday and today only.
func TestTick_NoShowScanNarrowsAfterCatchUp(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := sharedmock.NewMockReservationStore(ctrl)
	sweeper := commandsmock.NewMockSweeper(ctrl)

	sunday := reservation.NewDate(2025, time.June, 8)
	stale := builder.NewReservationBuilder().WithID(1).WithDate(sunday).WithTime(19, 0).AsApproved(1).BuildStored()

	gomock.InOrder(
		store.EXPECT().FindReservationsByStatus(gomock.Any(), reservation.StatusApproved).
			Return([]*reservation.Reservation{stale}, nil),
		store.EXPECT().FindReservationsByDate(gomock.Any(), wednesday.AddDays(-1), reservation.StatusApproved).
			Return(nil, nil),
		store.EXPECT().FindReservationsByDate(gomock.Any(), wednesday, reservation.StatusApproved).
			Return(nil, nil),
	)
	store.EXPECT().FindReservationsByStatus(gomock.Any(), reservation.StatusActive).Return(nil, nil).Times(2)
	sweeper.EXPECT().ExpireNoShow(gomock.Any(), int64(1)).Return(true, nil)
	sweeper.EXPECT().PromoteDate(gomock.Any(), sunday).Return(commands.PromotionResult{Date: sunday}, nil)
	sweeper.EXPECT().DuePromotions(gomock.Any()).Return(nil).Times(2)

	clk := clock.NewMockClock(time.Date(2025, time.June, 11, 18, 16, 0, 0, time.UTC))
	rec := scheduler.NewReconciler(store, sweeper, clk, shared.DefaultPolicy(), nil, time.Minute)

	first := rec.Tick(ctx)
	assert.Equal(t, []int64{1}, first.NoShows)

	second := rec.Tick(ctx)
	assert.Empty(t, second.NoShows)
	assert.Zero(t, second.Failures)
}

// waitlistOutageStore fails the next waiting list lookups of a date.
type waitlistOutageStore struct {
	*memstore.Store
	failures int
}

func (s *waitlistOutageStore) FindReservationsByDate(ctx context.Context, date reservation.Date, statuses ...reservation.Status) ([]*reservation.Reservation, error) {
	if s.failures > 0 && len(statuses) == 1 && statuses[0] == reservation.StatusWaiting {
		s.failures--
		return nil, errors.New("connection reset")
	}
	return s.Store.FindReservationsByDate(ctx, date, statuses...)
}

func singleTablePlan(t *testing.T, seats int) *floorplan.Floorplan {
	t.Helper()
	tb, err := table.New(1, seats)
	require.NoError(t, err)
	plan, err := floorplan.NewPlan([]table.Table{tb}, hours.Rule{
		Key:   "wednesday",
		Open:  reservation.MustTimeOfDay(12, 0),
		Close: reservation.MustTimeOfDay(23, 0),
	})
	require.NoError(t, err)
	return floorplan.FromPlan(plan)
}

// A cancel whose promotion failed leaves the freed table to the next pass.
func TestTick_RetriesPromotionAfterFailedCancel(t *testing.T) {
	ctx := context.Background()
	store := &waitlistOutageStore{Store: memstore.New(2 * time.Hour), failures: 1}
	clk := clock.NewMockClock(time.Date(2025, time.June, 11, 17, 0, 0, 0, time.UTC))
	fp := singleTablePlan(t, 4)

	engine := commands.NewEngine(store, fp, fp, lock.NewLocal(), nil, clk, shared.DefaultPolicy(), nil)
	rec := scheduler.NewReconciler(store, engine, clk, shared.DefaultPolicy(), nil, time.Minute)

	store.Seed(builder.NewReservationBuilder().WithID(1).WithDate(wednesday).WithTime(19, 0).AsApproved(1).BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(2).WithDate(wednesday).WithTime(19, 0).AsWaiting().BuildStored())

	_, err := engine.Cancel(ctx, 1)
	require.NoError(t, err)

	b, err := store.FindReservation(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, reservation.StatusWaiting, b.Status())

	report := rec.Tick(ctx)
	assert.Equal(t, []int64{2}, report.Promoted)
	assert.Zero(t, report.Failures)

	b, err = store.FindReservation(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusApproved, b.Status())
	assert.Equal(t, 1, b.TableID())
}

// A reload that adds a larger table seats the party that fitted nowhere before.
func TestTick_PromotesAfterFloorplanReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "floorplan.yaml")
	writePlan := func(seats int) {
		body := "tables:\n  - { id: 1, seats: " + strconv.Itoa(seats) + " }\n" +
			"hours:\n  - { key: wednesday, open: \"12:00\", close: \"23:00\" }\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	writePlan(4)

	fp, err := floorplan.Load(path, nil)
	require.NoError(t, err)

	store := memstore.New(2 * time.Hour)
	clk := clock.NewMockClock(time.Date(2025, time.June, 11, 17, 0, 0, 0, time.UTC))
	engine := commands.NewEngine(store, fp, fp, lock.NewLocal(), nil, clk, shared.DefaultPolicy(), nil)
	rec := scheduler.NewReconciler(store, engine, clk, shared.DefaultPolicy(), nil, time.Minute)
	fp.OnReload(engine.RescanWaiting)

	store.Seed(builder.NewReservationBuilder().WithID(1).WithDate(wednesday).WithTime(19, 0).WithPartySize(6).
		AsWaiting().BuildStored())

	assert.Empty(t, rec.Tick(ctx).Promoted)

	writePlan(8)
	require.NoError(t, fp.Reload())

	report := rec.Tick(ctx)
	assert.Equal(t, []int64{1}, report.Promoted)

	r, err := store.FindReservation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusApproved, r.Status())
}
