package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/spa-backend/internal/availability"
	"github.com/angelmondragon/spa-backend/internal/cart"
	"github.com/angelmondragon/spa-backend/internal/pricing"
	"github.com/angelmondragon/spa-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
	"github.com/angelmondragon/spa-backend/pkg/metrics"
	redisclient "github.com/angelmondragon/spa-backend/pkg/redis"
)

const (
	lockScope = "booking"
	lockTTL   = 30 * time.Second
)

type cartReader interface {
	Items(ctx context.Context, clientID string) ([]cart.LineItem, error)
	Clear(ctx context.Context, clientID string) (*cart.View, error)
}

type closingRuleSource interface {
	ClosingRules(ctx context.Context) availability.ClosingRules
}

// Service drives a booking session from service selection to submission.
type Service interface {
	Next(ctx context.Context, clientID, sessionID string) (*NextResult, error)
	State(ctx context.Context, sessionID string) (*State, error)
	SearchSlots(ctx context.Context, sessionID, date string) (*SlotsResult, error)
	SelectSlot(ctx context.Context, sessionID string, slot SelectedSlot) (*State, error)
	Confirm(ctx context.Context, clientID, sessionID string, contact Contact) (*Confirmation, error)
}

// Options carries the business settings the pipeline needs.
type Options struct {
	LocationID  string
	Location    *time.Location
	HoldMinutes int
	Locker      redisclient.Locker
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
	Now         func() time.Time
}

type service struct {
	cart      cartReader
	handoff   Handoff
	scheduler Scheduler
	hours     closingRuleSource
	opts      Options
	logg      *logger.Logger
}

// NewService builds the booking pipeline.
func NewService(cartSvc cartReader, handoff Handoff, scheduler Scheduler, hours closingRuleSource, opts Options) (Service, error) {
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if handoff == nil {
		return nil, fmt.Errorf("handoff storage required")
	}
	if scheduler == nil {
		return nil, fmt.Errorf("scheduler required")
	}
	if hours == nil {
		return nil, fmt.Errorf("closing rule source required")
	}
	if strings.TrimSpace(opts.LocationID) == "" {
		return nil, fmt.Errorf("location id required")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		cart:      cartSvc,
		handoff:   handoff,
		scheduler: scheduler,
		hours:     hours,
		opts:      opts,
		logg:      logg,
	}, nil
}

// Next snapshots the cart into the session. A session that already holds a
// slot skips straight to confirmation.
func (s *service) Next(ctx context.Context, clientID, sessionID string) (*NextResult, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	items, err := s.cart.Items(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "add a service to your cart before choosing a time")
	}
	if err := s.handoff.SaveServices(ctx, sessionID, items); err != nil {
		return nil, handoffError(err)
	}
	slot, err := s.handoff.LoadSlot(ctx, sessionID)
	if err != nil {
		return nil, handoffError(err)
	}

	result := &NextResult{Stage: enums.BookingStageSelectingTime, Target: TargetTime, Services: items}
	if slot != nil {
		result.Stage = enums.BookingStageConfirmingBooking
		result.Target = TargetConfirm
	}
	return result, nil
}

func (s *service) State(ctx context.Context, sessionID string) (*State, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	items, err := s.handoff.LoadServices(ctx, sessionID)
	if err != nil {
		return nil, handoffError(err)
	}
	slot, err := s.handoff.LoadSlot(ctx, sessionID)
	if err != nil {
		return nil, handoffError(err)
	}
	return s.stateOf(items, slot), nil
}

// SearchSlots lists start times for the first held service on date
// (YYYY-MM-DD, business timezone), keeping only those that finish by closing.
func (s *service) SearchSlots(ctx context.Context, sessionID, date string) (*SlotsResult, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	day, err := availability.ParseDay(strings.TrimSpace(date), s.opts.Location)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted as YYYY-MM-DD")
	}
	first, err := s.firstService(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	start, _ := availability.DayBounds(day, s.opts.Location)
	windows, err := s.scheduler.SearchAvailability(ctx, first.ID, start)
	if err != nil {
		s.logg.Error(ctx, "booking.search_slots_failed", err)
		return nil, schedulerError(err)
	}

	minutes := pricing.MsToMinutes(first.DurationMs)
	return &SlotsResult{
		Date:               start.Format(time.DateOnly),
		ServiceVariationID: first.ID,
		DurationMinutes:    minutes,
		Slots:              availability.Filter(windows, minutes, s.hours.ClosingRules(ctx), s.opts.Location),
	}, nil
}

// SelectSlot holds a start time for the session. The hold is not reserved remotely.
func (s *service) SelectSlot(ctx context.Context, sessionID string, slot SelectedSlot) (*State, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if slot.StartAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_at is required")
	}
	items, err := s.handoff.LoadServices(ctx, sessionID)
	if err != nil {
		return nil, handoffError(err)
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "choose services before selecting a time")
	}

	minutes := pricing.MsToMinutes(items[0].DurationMs)
	candidate := []availability.Window{{StartAt: slot.StartAt}}
	if len(availability.Filter(candidate, minutes, s.hours.ClosingRules(ctx), s.opts.Location)) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "the selected time ends after closing")
	}

	slot.StartAt = slot.StartAt.UTC()
	slot.DurationMinutes = minutes
	slot.HeldAt = s.opts.Now().UTC()
	if err := s.handoff.SaveSlot(ctx, sessionID, slot); err != nil {
		return nil, handoffError(err)
	}
	state := s.stateOf(items, &slot)
	state.Target = TargetConfirm
	return state, nil
}

// Confirm validates the contact, books the first held service at the held
// slot and clears the cart and session on success. On failure nothing is
// cleared so the visitor can resubmit.
func (s *service) Confirm(ctx context.Context, clientID, sessionID string, contact Contact) (*Confirmation, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	normalized, err := normalizeContact(contact)
	if err != nil {
		s.opts.Metrics.IncBooking(metrics.BookingValidation)
		return nil, err
	}
	items, err := s.handoff.LoadServices(ctx, sessionID)
	if err != nil {
		return nil, handoffError(err)
	}
	slot, err := s.handoff.LoadSlot(ctx, sessionID)
	if err != nil {
		return nil, handoffError(err)
	}
	if len(items) == 0 {
		s.opts.Metrics.IncBooking(metrics.BookingValidation)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no services selected")
	}
	if slot == nil {
		s.opts.Metrics.IncBooking(metrics.BookingValidation)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no time slot selected")
	}

	release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	first := items[0]
	req := BookingRequest{
		GivenName:          normalized.GivenName,
		FamilyName:         normalized.FamilyName,
		Email:              normalized.Email,
		Phone:              normalized.Phone,
		Note:               normalized.Note,
		ServiceVariationID: first.ID,
		VariationVersion:   first.Version,
		StartAt:            slot.StartAt,
		LocationID:         s.opts.LocationID,
		TeamMemberID:       slot.TeamMemberID,
		DurationMinutes:    slot.DurationMinutes,
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"service_variation_id": req.ServiceVariationID,
		"start_at":             req.StartAt.Format(time.RFC3339),
	})

	appt, err := s.scheduler.CreateBooking(ctx, req)
	if err != nil {
		s.opts.Metrics.IncBooking(metrics.BookingFailed)
		s.logg.Error(ctx, "booking.submit_failed", err)
		return nil, schedulerError(err)
	}
	s.opts.Metrics.IncBooking(metrics.BookingSubmitted)

	// the appointment exists; cleanup failures are logged, not returned
	if _, err := s.cart.Clear(ctx, clientID); err != nil {
		s.logg.Error(ctx, "booking.cart_clear_failed", err)
	}
	if err := s.handoff.Clear(ctx, sessionID); err != nil {
		s.logg.Error(ctx, "booking.handoff_clear_failed", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "booking_id", appt.ID), "booking.submitted")

	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return &Confirmation{
		Stage:                enums.BookingStageSubmitted,
		Appointment:          *appt,
		Redirect:             TargetHome,
		ScheduledVariationID: first.ID,
		UnscheduledItems:     total - 1,
	}, nil
}

func (s *service) firstService(ctx context.Context, sessionID string) (*cart.LineItem, error) {
	items, err := s.handoff.LoadServices(ctx, sessionID)
	if err != nil {
		return nil, handoffError(err)
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "choose services before selecting a time")
	}
	return &items[0], nil
}

// acquire blocks a second concurrent submission for the same session.
func (s *service) acquire(ctx context.Context, sessionID string) (func(), error) {
	if s.opts.Locker == nil {
		return func() {}, nil
	}
	key := s.opts.Locker.LockKey(lockScope, sessionID)
	ok, err := s.opts.Locker.SetNX(ctx, key, s.opts.Now().UTC().Format(time.RFC3339Nano), lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "booking lock unavailable")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a booking for this session is already being submitted")
	}
	return func() {
		if err := s.opts.Locker.Del(context.WithoutCancel(ctx), key); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "booking.lock_release_failed")
		}
	}, nil
}

func (s *service) stateOf(items []cart.LineItem, slot *SelectedSlot) *State {
	if items == nil {
		items = []cart.LineItem{}
	}
	state := &State{
		Stage:       enums.BookingStageSelectingServices,
		Services:    items,
		Summary:     pricing.Summarize(items),
		HoldMinutes: s.opts.HoldMinutes,
	}
	if len(items) == 0 {
		return state
	}
	state.Stage = enums.BookingStageSelectingTime
	state.Target = TargetTime
	if slot != nil {
		state.Stage = enums.BookingStageConfirmingBooking
		state.Target = TargetConfirm
		state.SelectedSlot = slot
		if s.opts.HoldMinutes > 0 && !slot.HeldAt.IsZero() {
			expires := slot.HeldAt.Add(time.Duration(s.opts.HoldMinutes) * time.Minute)
			state.HoldExpiresAt = &expires
		}
	}
	return state
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking session id is required")
	}
	return nil
}

func handoffError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "booking session storage unavailable")
}

// schedulerError keeps typed collaborator errors intact and hides anything else
// behind a generic message.
func schedulerError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "booking service unavailable")
}
