package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple-checklist/internal/model"
	"couple-checklist/internal/service"
	"couple-checklist/internal/testutil"
)

// Tuesday noon in the canonical zone.
var tuesdayNoon = time.Date(2025, 6, 10, 12, 0, 0, 0, bogota)

func TestEvaluateUnlocksOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.completedTask(t, f.jen.ID, f.arg.ID, tuesdayNoon)

	unlocked, err := f.achievements.Evaluate(ctx, f.jen.ID, tuesdayNoon)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_task"}, codes(unlocked))

	again, err := f.achievements.Evaluate(ctx, f.jen.ID, tuesdayNoon)
	require.NoError(t, err)
	assert.Empty(t, again)

	assert.Equal(t, []string{"first_task"}, unlockedCodes(t, f, f.jen.ID))
	assert.Empty(t, unlockedCodes(t, f, f.arg.ID))
}

func TestEvaluateTaskThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 9; i++ {
		f.completedTask(t, f.jen.ID, f.arg.ID, tuesdayNoon)
	}

	unlocked, err := f.achievements.Evaluate(ctx, f.jen.ID, tuesdayNoon)
	require.NoError(t, err)
	assert.NotContains(t, codes(unlocked), "tasks_10")

	f.completedTask(t, f.jen.ID, f.arg.ID, tuesdayNoon)
	unlocked, err = f.achievements.Evaluate(ctx, f.jen.ID, tuesdayNoon)
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks_10"}, codes(unlocked))
}

func TestEvaluateConcurrentCallsNeverDuplicate(t *testing.T) {
	f := newFixtureOn(t, testutil.OpenPooledDB(t))
	for i := 0; i < 10; i++ {
		f.completedTask(t, f.jen.ID, f.arg.ID, tuesdayNoon)
	}

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		reports = make(map[string]int)
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlocked, err := f.achievements.Evaluate(context.Background(), f.jen.ID, tuesdayNoon)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			for _, a := range unlocked {
				reports[a.Code]++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, map[string]int{"first_task": 1, "tasks_10": 1}, reports)

	var rows int64
	require.NoError(t, f.db.Model(&model.UserAchievement{}).Where("user_id = ?", f.jen.ID).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
}

func TestEvaluateWithoutStreakRow(t *testing.T) {
	f := newFixture(t)

	unlocked, err := f.achievements.Evaluate(context.Background(), f.arg.ID, tuesdayNoon)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestEvaluateStreakUsesBest(t *testing.T) {
	f := newFixture(t)
	last := "2025-05-01"
	require.NoError(t, f.db.Create(&model.Streak{UserID: f.jen.ID, CurrentStreak: 0, BestStreak: 7, LastActivity: &last}).Error)

	unlocked, err := f.achievements.Evaluate(context.Background(), f.jen.ID, tuesdayNoon)
	require.NoError(t, err)
	assert.Equal(t, []string{"streak_3", "streak_7"}, codes(unlocked))
}

func TestEvaluateTeamDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.completedTask(t, f.jen.ID, f.arg.ID, tuesdayNoon)
	// Yesterday's completion by the partner does not count.
	f.completedTask(t, f.arg.ID, f.jen.ID, tuesdayNoon.AddDate(0, 0, -1))

	unlocked, err := f.achievements.Evaluate(ctx, f.jen.ID, tuesdayNoon)
	require.NoError(t, err)
	assert.NotContains(t, codes(unlocked), "team_day")

	f.completedTask(t, f.arg.ID, f.jen.ID, tuesdayNoon.Add(-2*time.Hour))
	unlocked, err = f.achievements.Evaluate(ctx, f.jen.ID, tuesdayNoon)
	require.NoError(t, err)
	assert.Contains(t, codes(unlocked), "team_day")
}

func TestEvaluateMesiversario(t *testing.T) {
	tests := []struct {
		name        string
		anniversary string
		now         time.Time
		want        []string
	}{
		{
			name:        "monthly anniversary",
			anniversary: "2024-02-14",
			now:         time.Date(2025, 3, 14, 9, 0, 0, 0, bogota),
			want:        []string{"mesiversario"},
		},
		{
			name:        "yearly anniversary is also a mesiversario",
			anniversary: "2024-02-14",
			now:         time.Date(2025, 2, 14, 9, 0, 0, 0, bogota),
			want:        []string{"mesiversario", "aniversario"},
		},
		{
			name:        "the day itself is neither",
			anniversary: "2025-03-14",
			now:         time.Date(2025, 3, 14, 9, 0, 0, 0, bogota),
			want:        nil,
		},
		{
			name:        "other day of month",
			anniversary: "2024-02-14",
			now:         time.Date(2025, 3, 15, 9, 0, 0, 0, bogota),
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.dates.Upsert(ctx, service.SpecialDateInput{Type: model.SpecialDateAnniversary, Date: tt.anniversary})
			require.NoError(t, err)

			unlocked, err := f.achievements.Evaluate(ctx, f.jen.ID, tt.now)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, unlocked)
				return
			}
			assert.Equal(t, tt.want, codes(unlocked))
		})
	}
}

func TestEvaluateAppMonths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.usage.EnsureFirstUse(ctx, time.Date(2025, 3, 28, 10, 0, 0, 0, bogota))
	require.NoError(t, err)

	unlocked, err := f.achievements.Evaluate(ctx, f.jen.ID, time.Date(2025, 5, 31, 10, 0, 0, 0, bogota))
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	// Day of month is ignored: March 28 to June 1 is three months.
	unlocked, err = f.achievements.Evaluate(ctx, f.jen.ID, time.Date(2025, 6, 1, 10, 0, 0, 0, bogota))
	require.NoError(t, err)
	assert.Equal(t, []string{"app_3_months"}, codes(unlocked))
}

func TestEvaluateUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.achievements.Evaluate(context.Background(), 404, tuesdayNoon)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	_, err = f.achievements.List(context.Background(), 404)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestEvaluateIgnoresUnknownConditions(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&model.Achievement{
		Code: "mystery", Name: "Mystery", ConditionType: "moon_phase", ConditionValue: 0,
	}).Error)
	f.completedTask(t, f.jen.ID, f.arg.ID, tuesdayNoon)

	unlocked, err := f.achievements.Evaluate(context.Background(), f.jen.ID, tuesdayNoon)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_task"}, codes(unlocked))
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.achievements.SeedCatalog(context.Background()))

	var count int64
	require.NoError(t, f.db.Model(&model.Achievement{}).Count(&count).Error)
	assert.Equal(t, int64(len(service.DefaultCatalog())), count)
}
