// internal/domain/models/checkin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-date format used for check-in dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// CheckIn is one user's daily wellness log. At most one exists per user per date.
//
// Score fields are pointers: nil means "not logged" and is distinct from zero.
// The boolean flags default to false and are always present.
type CheckIn struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty" yaml:"-"`
	UserID string             `bson:"user_id" json:"user_id" yaml:"user_id,omitempty"`
	Date   string             `bson:"date" json:"date" yaml:"date"` // YYYY-MM-DD

	// Mood and energy (scores range -2..2)
	MoodLabel   *string `bson:"mood_label" json:"mood_label" yaml:"mood_label"`
	MoodScore   *int    `bson:"mood_score" json:"mood_score" yaml:"mood_score"`
	EnergyLabel *string `bson:"energy_label" json:"energy_label" yaml:"energy_label"`
	EnergyScore *int    `bson:"energy_score" json:"energy_score" yaml:"energy_score"`

	// Appetite ranges 1..5, sleep 0..14 hours.
	Appetite   *int     `bson:"appetite" json:"appetite" yaml:"appetite"`
	SleepHours *float64 `bson:"sleep_hours" json:"sleep_hours" yaml:"sleep_hours"`

	Note     *string  `bson:"note" json:"note" yaml:"note"`
	MoodTags []string `bson:"mood_tags" json:"mood_tags" yaml:"mood_tags"`

	Bloating         bool `bson:"bloating" json:"bloating" yaml:"bloating"`
	BloatingSeverity *int `bson:"bloating_severity" json:"bloating_severity" yaml:"bloating_severity"` // 1..3

	Exercised       bool    `bson:"exercised" json:"exercised" yaml:"exercised"`
	ExerciseType    *string `bson:"exercise_type" json:"exercise_type" yaml:"exercise_type"`
	ExerciseMinutes *int    `bson:"exercise_minutes" json:"exercise_minutes" yaml:"exercise_minutes"`

	Period      bool `bson:"period" json:"period" yaml:"period"`
	PeriodStart bool `bson:"period_start" json:"period_start" yaml:"period_start"`
	FlowLevel   *int `bson:"flow_level" json:"flow_level" yaml:"flow_level"` // 1..3

	Sick      bool     `bson:"sick" json:"sick" yaml:"sick"`
	PainAreas []string `bson:"pain_areas" json:"pain_areas" yaml:"pain_areas"`
	SickNotes *string  `bson:"sick_notes" json:"sick_notes" yaml:"sick_notes"`

	NotableEvents *string `bson:"notable_events" json:"notable_events" yaml:"notable_events"`

	CreatedAt time.Time `bson:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at" yaml:"-"`
}

// Score and measurement bounds for check-in fields.
const (
	MinScore           = -2
	MaxScore           = 2
	MinAppetite        = 1
	MaxAppetite        = 5
	MinSleepHours      = 0.0
	MaxSleepHours      = 14.0
	MinSeverity        = 1
	MaxSeverity        = 3
	MaxExerciseMinutes = 24 * 60
	MaxNoteLength      = 2000
	MaxTagCount        = 32
	DefaultRecentLimit = 7
	MaxRecentLimit     = 100
)

// Normalize clears detail fields whose parent flag is off, so a check-in never
// carries flow level without a period, exercise minutes without exercise, etc.
// Empty free-text and empty lists are stored as nil.
func (c *CheckIn) Normalize() {
	if !c.Bloating {
		c.BloatingSeverity = nil
	}
	if !c.Exercised {
		c.ExerciseType = nil
		c.ExerciseMinutes = nil
	}
	if !c.Period {
		c.PeriodStart = false
		c.FlowLevel = nil
	}
	if !c.Sick {
		c.PainAreas = nil
		c.SickNotes = nil
	}
	c.Note = nilIfEmpty(c.Note)
	c.SickNotes = nilIfEmpty(c.SickNotes)
	c.NotableEvents = nilIfEmpty(c.NotableEvents)
	if len(c.MoodTags) == 0 {
		c.MoodTags = nil
	}
	if len(c.PainAreas) == 0 {
		c.PainAreas = nil
	}
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
