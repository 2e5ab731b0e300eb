package hours

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spa-backend/internal/availability"
	"github.com/angelmondragon/spa-backend/pkg/config"
	"github.com/angelmondragon/spa-backend/pkg/db"
	"github.com/angelmondragon/spa-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/migrate"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn, err := db.OpenInMemory(t.Name())
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrate.Run(context.Background(), sqlDB, db.DialectSQLite, "up"))

	svc, err := NewService(NewRepository(conn), config.BusinessConfig{SundayClosingHour: 18, DefaultClosingHour: 20}, nil)
	require.NoError(t, err)
	return svc
}

type brokenRepo struct{}

func (brokenRepo) List(context.Context) ([]models.BusinessHour, error) {
	return nil, errors.New("db down")
}

func (brokenRepo) Upsert(context.Context, *models.BusinessHour) (*models.BusinessHour, error) {
	return nil, errors.New("db down")
}

func TestListSeededHours(t *testing.T) {
	svc := newTestService(t)

	days, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, "Sunday", days[0].Name)
	assert.Equal(t, 18, days[0].CloseHour)
	assert.Equal(t, 20, days[2].CloseHour)
}

func TestUpsertChangesClosingRules(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	day, err := svc.Upsert(ctx, Input{Weekday: 5, OpenHour: 9, CloseHour: 17})
	require.NoError(t, err)
	assert.Equal(t, "Friday", day.Name)

	_, err = svc.Upsert(ctx, Input{Weekday: 0, OpenHour: 10, CloseHour: 18, Closed: true})
	require.NoError(t, err)

	days, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.True(t, days[0].Closed)

	rules := svc.ClosingRules(ctx)
	assert.Equal(t, 17, rules.ClosingHour(time.Friday))
	assert.Equal(t, 20, rules.ClosingHour(time.Monday))

	sunday := availability.Window{StartAt: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	assert.Empty(t, availability.Filter([]availability.Window{sunday}, 30, rules, time.UTC))
}

func TestClosingRulesCarryOpeningHours(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, Input{Weekday: 2, OpenHour: 11, CloseHour: 20})
	require.NoError(t, err)

	rules := svc.ClosingRules(ctx)
	assert.Equal(t, 11, rules.OpeningHour(time.Tuesday))
	assert.Equal(t, 10, rules.OpeningHour(time.Sunday))

	// 2026-03-03 is a Tuesday
	early := availability.Window{StartAt: time.Date(2026, time.March, 3, 10, 30, 0, 0, time.UTC)}
	open := availability.Window{StartAt: time.Date(2026, time.March, 3, 11, 0, 0, 0, time.UTC)}
	got := availability.Filter([]availability.Window{early, open}, 60, rules, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, open.StartAt, got[0].StartAt)
}

func TestUpsertValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []Input{
		{Weekday: 7, OpenHour: 9, CloseHour: 17},
		{Weekday: -1, OpenHour: 9, CloseHour: 17},
		{Weekday: 1, OpenHour: 24, CloseHour: 24},
		{Weekday: 1, OpenHour: 9, CloseHour: 25},
		{Weekday: 1, OpenHour: 12, CloseHour: 12},
	}
	for _, input := range cases {
		_, err := svc.Upsert(ctx, input)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "input %+v", input)
	}
}

func TestClosingRulesFallBackToConfig(t *testing.T) {
	t.Parallel()
	svc, err := NewService(brokenRepo{}, config.BusinessConfig{SundayClosingHour: 17, DefaultClosingHour: 21}, nil)
	require.NoError(t, err)

	rules := svc.ClosingRules(context.Background())
	assert.Equal(t, 17, rules.ClosingHour(time.Sunday))
	assert.Equal(t, 21, rules.ClosingHour(time.Tuesday))

	_, err = svc.List(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
