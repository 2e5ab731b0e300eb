package hours

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/spa-backend/internal/availability"
	"github.com/angelmondragon/spa-backend/pkg/config"
	"github.com/angelmondragon/spa-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

// closedHour makes every window on a closed day fail the closing check.
const closedHour = -1

// Input is the admin payload for one weekday.
type Input struct {
	Weekday   int
	OpenHour  int
	CloseHour int
	Closed    bool
}

// Day is the API shape of a weekday's hours.
type Day struct {
	Weekday   int    `json:"weekday"`
	Name      string `json:"name"`
	OpenHour  int    `json:"open_hour"`
	CloseHour int    `json:"close_hour"`
	Closed    bool   `json:"closed"`
}

// Service exposes business hours to admins and the slot filter.
type Service interface {
	List(ctx context.Context) ([]Day, error)
	Upsert(ctx context.Context, input Input) (*Day, error)
	ClosingRules(ctx context.Context) availability.ClosingRules
}

type hoursRepository interface {
	List(ctx context.Context) ([]models.BusinessHour, error)
	Upsert(ctx context.Context, row *models.BusinessHour) (*models.BusinessHour, error)
}

type service struct {
	repo     hoursRepository
	defaults availability.ClosingRules
	logg     *logger.Logger
}

// NewService builds the hours service. Closing defaults come from cfg.
func NewService(repo hoursRepository, cfg config.BusinessConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("hours repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	defaults := availability.DefaultRules()
	if cfg.SundayClosingHour > 0 {
		defaults.Sunday = cfg.SundayClosingHour
	}
	if cfg.DefaultClosingHour > 0 {
		defaults.Default = cfg.DefaultClosingHour
	}
	return &service{repo: repo, defaults: defaults, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]Day, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list business hours")
	}
	days := make([]Day, 0, len(rows))
	for _, row := range rows {
		days = append(days, dayFromModel(row))
	}
	return days, nil
}

func (s *service) Upsert(ctx context.Context, input Input) (*Day, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	row, err := s.repo.Upsert(ctx, &models.BusinessHour{
		Weekday:   input.Weekday,
		OpenHour:  input.OpenHour,
		CloseHour: input.CloseHour,
		Closed:    input.Closed,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save business hours")
	}
	day := dayFromModel(*row)
	return &day, nil
}

// ClosingRules derives the slot filter rules from stored hours, opening and
// closing hour both. When the
// table is empty or unreachable the configured defaults apply.
func (s *service) ClosingRules(ctx context.Context) availability.ClosingRules {
	rules := s.defaults
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "hours.closing_rules_fallback")
		return rules
	}
	if len(rows) == 0 {
		return rules
	}
	rules.Overrides = make(map[time.Weekday]int, len(rows))
	rules.Opening = make(map[time.Weekday]int, len(rows))
	for _, row := range rows {
		hour := row.CloseHour
		if row.Closed {
			hour = closedHour
		}
		rules.Overrides[time.Weekday(row.Weekday)] = hour
		if row.OpenHour > 0 {
			rules.Opening[time.Weekday(row.Weekday)] = row.OpenHour
		}
	}
	return rules
}

func validate(input Input) error {
	if input.Weekday < 0 || input.Weekday > 6 {
		return pkgerrors.New(pkgerrors.CodeValidation, "weekday must be between 0 (Sunday) and 6 (Saturday)")
	}
	if input.OpenHour < 0 || input.OpenHour > 23 {
		return pkgerrors.New(pkgerrors.CodeValidation, "open_hour must be between 0 and 23")
	}
	if input.CloseHour < 1 || input.CloseHour > 24 {
		return pkgerrors.New(pkgerrors.CodeValidation, "close_hour must be between 1 and 24")
	}
	if input.OpenHour >= input.CloseHour {
		return pkgerrors.New(pkgerrors.CodeValidation, "open_hour must be before close_hour")
	}
	return nil
}

func dayFromModel(row models.BusinessHour) Day {
	return Day{
		Weekday:   row.Weekday,
		Name:      time.Weekday(row.Weekday).String(),
		OpenHour:  row.OpenHour,
		CloseHour: row.CloseHour,
		Closed:    row.Closed,
	}
}
