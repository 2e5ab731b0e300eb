package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spa-backend/internal/availability"
	"github.com/angelmondragon/spa-backend/internal/cart"
	"github.com/angelmondragon/spa-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	redisclient "github.com/angelmondragon/spa-backend/pkg/redis"
)

const testLocation = "LOC-1"

type stubCart struct {
	mu      sync.Mutex
	items   map[string][]cart.LineItem
	cleared []string
}

func newStubCart(clientID string, items ...cart.LineItem) *stubCart {
	return &stubCart{items: map[string][]cart.LineItem{clientID: items}}
}

func (c *stubCart) Items(_ context.Context, clientID string) ([]cart.LineItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[clientID], nil
}

func (c *stubCart) Clear(_ context.Context, clientID string) (*cart.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, clientID)
	c.cleared = append(c.cleared, clientID)
	return &cart.View{Items: []cart.LineItem{}}, nil
}

type stubScheduler struct {
	windows   []availability.Window
	searchErr error
	bookErr   error

	searchedVariation string
	searchedDay       time.Time
	requests          []BookingRequest
}

func (s *stubScheduler) SearchAvailability(_ context.Context, variationID string, day time.Time) ([]availability.Window, error) {
	s.searchedVariation = variationID
	s.searchedDay = day
	return s.windows, s.searchErr
}

func (s *stubScheduler) CreateBooking(_ context.Context, req BookingRequest) (*Appointment, error) {
	s.requests = append(s.requests, req)
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return &Appointment{ID: "BK-1", Status: "ACCEPTED", StartAt: req.StartAt, LocationID: req.LocationID}, nil
}

type fixedRules struct{}

func (fixedRules) ClosingRules(context.Context) availability.ClosingRules {
	return availability.DefaultRules()
}

var (
	massage = cart.LineItem{ID: "var-60", Name: "Swedish Massage", PriceCents: 9900, DurationMs: 3_600_000, Version: 7, Quantity: 2}
	facial  = cart.LineItem{ID: "var-fa", Name: "Facial", PriceCents: 5000, DurationMs: 1_800_000, Version: 2, Quantity: 1}
	now     = time.Date(2026, time.March, 2, 15, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc       Service
	cart      *stubCart
	handoff   *MemoryHandoff
	scheduler *stubScheduler
}

func newFixture(t *testing.T, opts Options, items ...cart.LineItem) fixture {
	t.Helper()
	f := fixture{
		cart:      newStubCart("client", items...),
		handoff:   NewMemoryHandoff(),
		scheduler: &stubScheduler{},
	}
	opts.LocationID = testLocation
	opts.HoldMinutes = 10
	opts.Now = func() time.Time { return now }
	svc, err := NewService(f.cart, f.handoff, f.scheduler, fixedRules{}, opts)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func validContact() Contact {
	return Contact{GivenName: "Ada", FamilyName: "Lovelace", Email: "ada@example.com", Phone: "(312) 555-0182"}
}

func tuesdayAt(hour, minute int) time.Time {
	return time.Date(2026, time.March, 3, hour, minute, 0, 0, time.UTC)
}

func TestNextRequiresItems(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Options{})

	_, err := f.svc.Next(context.Background(), "client", "session")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Next(context.Background(), "client", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNextTargetsTimeThenConfirmOnReentry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, Options{}, massage, facial)

	res, err := f.svc.Next(ctx, "client", "session")
	require.NoError(t, err)
	assert.Equal(t, TargetTime, res.Target)
	assert.Equal(t, enums.BookingStageSelectingTime, res.Stage)

	stored, err := f.handoff.LoadServices(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, []cart.LineItem{massage, facial}, stored)

	_, err = f.svc.SelectSlot(ctx, "session", SelectedSlot{StartAt: tuesdayAt(10, 0)})
	require.NoError(t, err)

	res, err = f.svc.Next(ctx, "client", "session")
	require.NoError(t, err)
	assert.Equal(t, TargetConfirm, res.Target)
	assert.Equal(t, enums.BookingStageConfirmingBooking, res.Stage)
}

func TestSearchSlotsFiltersByClosingHour(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, Options{}, massage, facial)
	f.scheduler.windows = []availability.Window{
		{StartAt: tuesdayAt(18, 30)},
		{StartAt: tuesdayAt(19, 0)},
		{StartAt: tuesdayAt(19, 1)},
	}

	_, err := f.svc.SearchSlots(ctx, "session", "2026-03-03")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.Next(ctx, "client", "session")
	require.NoError(t, err)

	_, err = f.svc.SearchSlots(ctx, "session", "03/03/2026")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	res, err := f.svc.SearchSlots(ctx, "session", "2026-03-03")
	require.NoError(t, err)
	assert.Equal(t, "var-60", f.scheduler.searchedVariation)
	assert.Equal(t, time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), f.scheduler.searchedDay)
	assert.Equal(t, 60, res.DurationMinutes)
	assert.Equal(t, "2026-03-03", res.Date)
	require.Len(t, res.Slots, 2)
	assert.Equal(t, tuesdayAt(19, 0), res.Slots[1].StartAt)
}

func TestSearchSlotsSurfacesSchedulerErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, Options{}, massage)
	_, err := f.svc.Next(ctx, "client", "session")
	require.NoError(t, err)

	f.scheduler.searchErr = errors.New("dial tcp: i/o timeout")
	_, err = f.svc.SearchSlots(ctx, "session", "2026-03-03")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
	assert.Equal(t, "booking service unavailable", typed.Message())
}

func TestSelectSlotRejectsLateStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, Options{}, massage)

	_, err := f.svc.SelectSlot(ctx, "session", SelectedSlot{StartAt: tuesdayAt(10, 0)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.Next(ctx, "client", "session")
	require.NoError(t, err)

	_, err = f.svc.SelectSlot(ctx, "session", SelectedSlot{StartAt: tuesdayAt(19, 30)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.SelectSlot(ctx, "session", SelectedSlot{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestStateReportsAdvisoryHold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, Options{}, massage, facial)

	state, err := f.svc.State(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStageSelectingServices, state.Stage)
	assert.NotNil(t, state.Services)

	_, err = f.svc.Next(ctx, "client", "session")
	require.NoError(t, err)
	_, err = f.svc.SelectSlot(ctx, "session", SelectedSlot{StartAt: tuesdayAt(11, 0), TeamMemberID: "TM-1"})
	require.NoError(t, err)

	state, err = f.svc.State(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStageConfirmingBooking, state.Stage)
	assert.Equal(t, 3, state.Summary.ItemCount)
	require.NotNil(t, state.SelectedSlot)
	assert.Equal(t, "TM-1", state.SelectedSlot.TeamMemberID)
	require.NotNil(t, state.HoldExpiresAt)
	assert.Equal(t, now.Add(10*time.Minute), *state.HoldExpiresAt)
	assert.False(t, state.HoldEnforced)
}

func TestConfirmBooksFirstItemAndClears(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, Options{}, massage, facial)

	_, err := f.svc.Next(ctx, "client", "session")
	require.NoError(t, err)
	_, err = f.svc.SelectSlot(ctx, "session", SelectedSlot{StartAt: tuesdayAt(11, 0), TeamMemberID: "TM-1"})
	require.NoError(t, err)

	conf, err := f.svc.Confirm(ctx, "client", "session", validContact())
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStageSubmitted, conf.Stage)
	assert.Equal(t, "/", conf.Redirect)
	assert.Equal(t, "BK-1", conf.Appointment.ID)
	assert.Equal(t, "var-60", conf.ScheduledVariationID)
	assert.Equal(t, 2, conf.UnscheduledItems)

	require.Len(t, f.scheduler.requests, 1)
	req := f.scheduler.requests[0]
	assert.Equal(t, "var-60", req.ServiceVariationID)
	assert.Equal(t, int64(7), req.VariationVersion)
	assert.Equal(t, tuesdayAt(11, 0), req.StartAt)
	assert.Equal(t, testLocation, req.LocationID)
	assert.Equal(t, "TM-1", req.TeamMemberID)
	assert.Equal(t, 60, req.DurationMinutes)
	assert.Equal(t, "+13125550182", req.Phone)

	assert.Equal(t, []string{"client"}, f.cart.cleared)
	state, err := f.svc.State(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStageSelectingServices, state.Stage)
}

func TestConfirmFailureKeepsState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, Options{}, massage)

	_, err := f.svc.Next(ctx, "client", "session")
	require.NoError(t, err)
	_, err = f.svc.SelectSlot(ctx, "session", SelectedSlot{StartAt: tuesdayAt(11, 0)})
	require.NoError(t, err)

	f.scheduler.bookErr = pkgerrors.Collaborator("square", "Booking start time is not available", errors.New("400"))
	_, err = f.svc.Confirm(ctx, "client", "session", validContact())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeCollaborator, typed.Code())
	assert.Equal(t, "Booking start time is not available", typed.Message())

	assert.Empty(t, f.cart.cleared)
	state, err := f.svc.State(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStageConfirmingBooking, state.Stage)

	f.scheduler.bookErr = nil
	_, err = f.svc.Confirm(ctx, "client", "session", validContact())
	require.NoError(t, err)
	assert.Len(t, f.scheduler.requests, 2)
}

func TestConfirmValidatesBeforeCallingScheduler(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, Options{}, massage)

	bad := validContact()
	bad.Phone = "555-0182"
	_, err := f.svc.Confirm(ctx, "client", "session", bad)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Confirm(ctx, "client", "session", validContact())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "no services held")

	_, err = f.svc.Next(ctx, "client", "session")
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, "client", "session", validContact())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "no slot held")

	assert.Empty(t, f.scheduler.requests)
}

func TestConfirmRejectsConcurrentSubmission(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	f := newFixture(t, Options{Locker: client}, massage)
	_, err := f.svc.Next(ctx, "client", "session")
	require.NoError(t, err)
	_, err = f.svc.SelectSlot(ctx, "session", SelectedSlot{StartAt: tuesdayAt(11, 0)})
	require.NoError(t, err)

	require.NoError(t, mr.Set(client.LockKey(lockScope, "session"), "held"))
	_, err = f.svc.Confirm(ctx, "client", "session", validContact())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	mr.Del(client.LockKey(lockScope, "session"))
	_, err = f.svc.Confirm(ctx, "client", "session", validContact())
	require.NoError(t, err)
	assert.False(t, mr.Exists(client.LockKey(lockScope, "session")))
}
