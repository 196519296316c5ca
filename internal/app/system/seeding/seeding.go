// Package seeding fills an empty account with demo check-ins for local
// development and demos.
package seeding

import (
	"context"
	"math/rand"
	"time"

	checkinstore "github.com/dalemusser/stratawell/internal/app/store/checkins"
	profilestore "github.com/dalemusser/stratawell/internal/app/store/profiles"
	"github.com/dalemusser/stratawell/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DemoDays is how much history SeedDemo writes.
const DemoDays = 90

const demoCycleLength = 28

var (
	moodLabels = map[int]string{-2: "awful", -1: "low", 0: "okay", 1: "good", 2: "great"}
	exercises  = []string{"walk", "run", "yoga", "cycling", "swim"}
)

// SeedDemo writes a profile and DemoDays of check-ins ending today for userID.
// Users that already have check-ins are left alone. The data is generated
// from a fixed seed, so every run produces the same history.
func SeedDemo(ctx context.Context, db *mongo.Database, userID string, today time.Time, logger *zap.Logger) error {
	checkins := checkinstore.New(db)
	profiles := profilestore.New(db)

	n, err := checkins.Count(ctx, userID)
	if err != nil {
		logger.Error("failed to count demo check-ins", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	if n > 0 {
		logger.Debug("demo user already has check-ins", zap.String("user_id", userID), zap.Int64("count", n))
		return nil
	}

	name := "Demo"
	reminder := "21:00"
	if _, err := profiles.Upsert(ctx, models.Profile{
		UserID:          userID,
		DisplayName:     &name,
		ReminderTime:    &reminder,
		Timezone:        today.Location().String(),
		TrackedFeatures: models.AllFeatureValues(),
	}); err != nil {
		logger.Error("failed to seed demo profile", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	for _, c := range DemoHistory(userID, today, DemoDays) {
		if _, err := checkins.Upsert(ctx, c); err != nil {
			logger.Error("failed to seed demo check-in",
				zap.String("user_id", userID),
				zap.String("date", c.Date),
				zap.Error(err))
			return err
		}
	}

	logger.Info("seeded demo user",
		zap.String("user_id", userID),
		zap.Int("days", DemoDays))
	return nil
}

// DemoHistory generates days of check-ins ending on today's calendar date,
// oldest first. Roughly one day in six is skipped. Sleep drives mood and
// energy, and a period starts every 28 days.
func DemoHistory(userID string, today time.Time, days int) []models.CheckIn {
	rng := rand.New(rand.NewSource(42))
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	out := make([]models.CheckIn, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := end.AddDate(0, 0, -i)
		dayInCycle := (days - 1 - i) % demoCycleLength
		skip := rng.Intn(6) == 0 && i != 0

		sleep := 5.5 + float64(rng.Intn(7))*0.5 // 5.5..8.5
		mood := clamp(int(sleep-7)+rng.Intn(3)-1, models.MinScore, models.MaxScore)
		energy := clamp(mood+rng.Intn(3)-1, models.MinScore, models.MaxScore)
		appetite := clamp(3+rng.Intn(3)-1, models.MinAppetite, models.MaxAppetite)
		if skip {
			continue
		}

		c := models.CheckIn{
			UserID:      userID,
			Date:        d.Format(models.DateLayout),
			MoodScore:   &mood,
			MoodLabel:   ptr(moodLabels[mood]),
			EnergyScore: &energy,
			Appetite:    &appetite,
			SleepHours:  &sleep,
		}
		if dayInCycle < 5 {
			flow := 3 - abs(dayInCycle-1)
			if flow < 1 {
				flow = 1
			}
			c.Period = true
			c.PeriodStart = dayInCycle == 0
			c.FlowLevel = &flow
		}
		if dayInCycle >= 24 {
			sev := 1 + rng.Intn(3)
			c.Bloating = true
			c.BloatingSeverity = &sev
		}
		if rng.Intn(3) == 0 {
			mins := 20 + 10*rng.Intn(5)
			c.Exercised = true
			c.ExerciseType = ptr(exercises[rng.Intn(len(exercises))])
			c.ExerciseMinutes = &mins
		}
		out = append(out, c)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func ptr(s string) *string { return &s }
