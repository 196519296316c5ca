package inputval

import (
	"strings"
	"testing"

	"github.com/dalemusser/stratawell/internal/domain/models"
)

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"2024-02-29", true},
		{"2024-12-31", true},
		{"", false},
		{"2023-02-29", false},
		{"2024-2-1", false},
		{"2024/02/01", false},
		{"yesterday", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := IsValidDate(tt.date); got != tt.want {
				t.Errorf("IsValidDate(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsValidClock(t *testing.T) {
	tests := []struct {
		clock string
		want  bool
	}{
		{"00:00", true},
		{"09:30", true},
		{"23:59", true},
		{"24:00", false},
		{"9:30", false},
		{"12:60", false},
		{"noon", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			if got := IsValidClock(tt.clock); got != tt.want {
				t.Errorf("IsValidClock(%q) = %v, want %v", tt.clock, got, tt.want)
			}
		})
	}
}

func TestIsValidTimezone(t *testing.T) {
	if !IsValidTimezone("America/New_York") {
		t.Error("IsValidTimezone(America/New_York) = false")
	}
	if IsValidTimezone("Mars/Olympus") {
		t.Error("IsValidTimezone(Mars/Olympus) = true")
	}
	if IsValidTimezone("") {
		t.Error("IsValidTimezone(\"\") = true")
	}
}

func TestIsValidMetricAndRange(t *testing.T) {
	if !IsValidMetric("sleep") || IsValidMetric("steps") {
		t.Error("IsValidMetric() mismatch")
	}
	if !IsValidDateRange("90d") || IsValidDateRange("2w") {
		t.Error("IsValidDateRange() mismatch")
	}
}

type loadInput struct {
	UserID string `json:"user_id" validate:"required,max=16" label:"User ID"`
	Date   string `json:"date" validate:"required,isodate" label:"Date"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      loadInput
		wantFields []string
	}{
		{"valid", loadInput{UserID: "u1", Date: "2024-03-01"}, nil},
		{"missing user", loadInput{Date: "2024-03-01"}, []string{"user_id"}},
		{"bad date", loadInput{UserID: "u1", Date: "03/01/2024"}, []string{"date"}},
		{"user too long", loadInput{UserID: strings.Repeat("x", 17), Date: "2024-03-01"}, []string{"user_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			fields := result.Fields()
			if len(tt.wantFields) == 0 && result.HasErrors() {
				t.Errorf("Validate() expected no errors, got: %s", result.First())
			}
			for _, f := range tt.wantFields {
				if _, ok := fields[f]; !ok {
					t.Errorf("Validate() missing error for %q, got %v", f, fields)
				}
			}
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	result := Validate(loadInput{UserID: "u1", Date: "soon"})
	if result.First() != "Date must be a date in YYYY-MM-DD form." {
		t.Errorf("Validate() message = %q", result.First())
	}

	result = Validate(loadInput{Date: "2024-03-01"})
	if result.First() != "User ID is required." {
		t.Errorf("Validate() message = %q", result.First())
	}
}

func TestValidate_CustomRulesAllowEmpty(t *testing.T) {
	type profileInput struct {
		Reminder string `json:"reminder_time" validate:"clock" label:"Reminder time"`
		Metric   string `json:"metric" validate:"metric" label:"Metric"`
		Range    string `json:"range" validate:"daterange" label:"Range"`
		Feature  string `json:"feature" validate:"feature" label:"Feature"`
	}

	if res := Validate(profileInput{}); res.HasErrors() {
		t.Errorf("Validate() empty optional fields should pass, got: %s", res.First())
	}

	res := Validate(profileInput{Reminder: "7pm", Metric: "steps", Range: "2w", Feature: "mood"})
	fields := res.Fields()
	for _, f := range []string{"reminder_time", "metric", "range"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("Validate() missing error for %q, got %v", f, fields)
		}
	}
	if _, ok := fields["feature"]; ok {
		t.Error("Validate() feature=mood should pass")
	}
}

func TestValidate_NonStruct(t *testing.T) {
	if result := Validate("not a struct"); result == nil {
		t.Error("Validate() non-struct should return non-nil result")
	}
}

func TestResult_Fields(t *testing.T) {
	var r Result
	r.Add("date", "first")
	r.Add("date", "second")
	r.Add("note", "too long")

	fields := r.Fields()
	if len(fields) != 2 || fields["date"] != "first" {
		t.Errorf("Fields() = %v", fields)
	}

	var other Result
	other.Add("appetite", "out of range")
	r.Merge(&other)
	r.Merge(nil)
	if len(r.Errors) != 4 {
		t.Errorf("Merge() left %d errors, want 4", len(r.Errors))
	}
}

func intp(v int) *int { return &v }

func TestCheckIn(t *testing.T) {
	sleep := 15.0
	long := strings.Repeat("é", models.MaxNoteLength+1)

	res := CheckIn(models.CheckIn{
		MoodScore:        intp(3),
		EnergyScore:      intp(-2),
		Appetite:         intp(0),
		SleepHours:       &sleep,
		BloatingSeverity: intp(4),
		FlowLevel:        intp(2),
		ExerciseMinutes:  intp(-5),
		Note:             &long,
		MoodTags:         make([]string, models.MaxTagCount+1),
	})

	fields := res.Fields()
	for _, f := range []string{"mood_score", "appetite", "sleep_hours", "bloating_severity", "exercise_minutes", "note", "mood_tags"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("CheckIn() missing error for %q", f)
		}
	}
	for _, f := range []string{"energy_score", "flow_level"} {
		if _, ok := fields[f]; ok {
			t.Errorf("CheckIn() unexpected error for %q: %s", f, fields[f])
		}
	}

	if res := CheckIn(models.CheckIn{UserID: "u", Date: "2024-03-01"}); res.HasErrors() {
		t.Errorf("CheckIn() with no scores should pass, got: %s", res.First())
	}
}
