package checkins

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/spa-backend/internal/booking"
	"github.com/angelmondragon/spa-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
	"github.com/angelmondragon/spa-backend/pkg/pagination"
	"github.com/google/uuid"
)

const unspecifiedService = "Unspecified"

// Input is what a guest enters at the kiosk.
type Input struct {
	CustomerName string
	Phone        string
	ServiceName  string
	BookingID    string
}

// CheckIn is the API shape.
type CheckIn struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	ServiceName  string    `json:"service_name,omitempty"`
	BookingID    string    `json:"booking_id,omitempty"`
	CheckedInAt  time.Time `json:"checked_in_at"`
}

// ListParams filters the admin listing. Zero bounds are open.
type ListParams struct {
	From   time.Time
	To     time.Time
	Limit  int
	Cursor string
}

// ListResult wraps returned check-ins and the cursor for the next page.
type ListResult struct {
	Items  []CheckIn `json:"items"`
	Cursor string    `json:"cursor"`
}

// DayCount is the number of check-ins on one local calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ServiceCount is the number of check-ins naming one service.
type ServiceCount struct {
	ServiceName string `json:"service_name"`
	Count       int    `json:"count"`
}

// Summary aggregates check-ins for the analytics view.
type Summary struct {
	From      time.Time      `json:"from"`
	To        time.Time      `json:"to"`
	Total     int            `json:"total"`
	ByDay     []DayCount     `json:"by_day"`
	ByService []ServiceCount `json:"by_service"`
}

type Service interface {
	Create(ctx context.Context, input Input) (*CheckIn, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Summary(ctx context.Context, from, to time.Time) (*Summary, error)
}

type checkInRepository interface {
	Create(ctx context.Context, row *models.CheckIn) (*models.CheckIn, error)
	List(ctx context.Context, params listParams) ([]models.CheckIn, *pagination.Cursor, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.CheckIn, error)
}

type service struct {
	repo checkInRepository
	loc  *time.Location
	now  func() time.Time
	logg *logger.Logger
}

// NewService builds the check-in service. Days are grouped in loc.
func NewService(repo checkInRepository, loc *time.Location, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("check-in repository required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, loc: loc, now: time.Now, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*CheckIn, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_name is required")
	}
	phone, err := booking.NormalizePhone(input.Phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "phone must contain at least 10 digits")
	}

	row, err := s.repo.Create(ctx, &models.CheckIn{
		CustomerName: name,
		Phone:        phone,
		ServiceName:  strings.TrimSpace(input.ServiceName),
		BookingID:    strings.TrimSpace(input.BookingID),
		CheckedInAt:  s.now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to record check-in")
	}
	s.logg.Info(s.logg.WithField(ctx, "check_in_id", row.ID.String()), "checkins.created")
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if !params.From.IsZero() && !params.To.IsZero() && !params.To.After(params.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must be after from")
	}
	query := listParams{From: params.From, To: params.To, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list check-ins")
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	items := make([]CheckIn, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

// Summary counts check-ins in [from, to). Zero bounds default to the last 30 days.
func (s *service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must be after from")
	}
	rows, err := s.repo.ListRange(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize check-ins")
	}

	byDay := map[string]int{}
	byService := map[string]int{}
	for _, row := range rows {
		byDay[row.CheckedInAt.In(s.loc).Format(time.DateOnly)]++
		name := row.ServiceName
		if name == "" {
			name = unspecifiedService
		}
		byService[name]++
	}

	summary := &Summary{
		From:      from.UTC(),
		To:        to.UTC(),
		Total:     len(rows),
		ByDay:     make([]DayCount, 0, len(byDay)),
		ByService: make([]ServiceCount, 0, len(byService)),
	}
	for day, count := range byDay {
		summary.ByDay = append(summary.ByDay, DayCount{Date: day, Count: count})
	}
	sort.Slice(summary.ByDay, func(i, j int) bool { return summary.ByDay[i].Date < summary.ByDay[j].Date })
	for name, count := range byService {
		summary.ByService = append(summary.ByService, ServiceCount{ServiceName: name, Count: count})
	}
	sort.Slice(summary.ByService, func(i, j int) bool {
		if summary.ByService[i].Count != summary.ByService[j].Count {
			return summary.ByService[i].Count > summary.ByService[j].Count
		}
		return summary.ByService[i].ServiceName < summary.ByService[j].ServiceName
	})
	return summary, nil
}

func toDTO(row models.CheckIn) CheckIn {
	return CheckIn{
		ID:           row.ID,
		CustomerName: row.CustomerName,
		Phone:        row.Phone,
		ServiceName:  row.ServiceName,
		BookingID:    row.BookingID,
		CheckedInAt:  row.CheckedInAt,
	}
}
