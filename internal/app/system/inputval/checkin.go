package inputval

import (
	"fmt"
	"unicode/utf8"

	"github.com/dalemusser/stratawell/internal/domain/models"
)

// CheckIn validates the fields of a check-in that struct tags cannot express:
// score ranges on pointer fields, free-text lengths and tag counts. Absent
// (nil) values are always accepted.
func CheckIn(c models.CheckIn) *Result {
	res := &Result{}

	intRange(res, "mood_score", c.MoodScore, models.MinScore, models.MaxScore)
	intRange(res, "energy_score", c.EnergyScore, models.MinScore, models.MaxScore)
	intRange(res, "appetite", c.Appetite, models.MinAppetite, models.MaxAppetite)
	intRange(res, "bloating_severity", c.BloatingSeverity, models.MinSeverity, models.MaxSeverity)
	intRange(res, "flow_level", c.FlowLevel, models.MinSeverity, models.MaxSeverity)
	intRange(res, "exercise_minutes", c.ExerciseMinutes, 0, models.MaxExerciseMinutes)

	if c.SleepHours != nil && (*c.SleepHours < models.MinSleepHours || *c.SleepHours > models.MaxSleepHours) {
		res.Add("sleep_hours", fmt.Sprintf("sleep_hours must be between %g and %g.", models.MinSleepHours, models.MaxSleepHours))
	}

	textLength(res, "note", c.Note)
	textLength(res, "sick_notes", c.SickNotes)
	textLength(res, "notable_events", c.NotableEvents)
	textLength(res, "mood_label", c.MoodLabel)
	textLength(res, "energy_label", c.EnergyLabel)
	textLength(res, "exercise_type", c.ExerciseType)

	if len(c.MoodTags) > models.MaxTagCount {
		res.Add("mood_tags", fmt.Sprintf("mood_tags may hold at most %d entries.", models.MaxTagCount))
	}
	if len(c.PainAreas) > models.MaxTagCount {
		res.Add("pain_areas", fmt.Sprintf("pain_areas may hold at most %d entries.", models.MaxTagCount))
	}
	return res
}

func intRange(res *Result, field string, v *int, lo, hi int) {
	if v != nil && (*v < lo || *v > hi) {
		res.Add(field, fmt.Sprintf("%s must be between %d and %d.", field, lo, hi))
	}
}

func textLength(res *Result, field string, s *string) {
	if s != nil && utf8.RuneCountInString(*s) > models.MaxNoteLength {
		res.Add(field, fmt.Sprintf("%s must be at most %d characters.", field, models.MaxNoteLength))
	}
}
