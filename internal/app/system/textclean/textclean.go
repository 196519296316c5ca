// Package textclean strips markup from the free-text fields users type into
// check-ins and profiles. Stored text is plain; clients render it escaped.
package textclean

import (
	"html"
	"strings"
	"sync"

	"github.com/dalemusser/stratawell/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Clean removes every HTML element from s and trims surrounding whitespace.
// Character entities are decoded, so "Tom &amp; Jerry" becomes "Tom & Jerry".
func Clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(getPolicy().Sanitize(s)))
}

// CleanPtr returns a cleaned copy of *s. nil stays nil, and text that cleans
// to "" becomes nil.
func CleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	c := Clean(*s)
	if c == "" {
		return nil
	}
	return &c
}

// CleanList cleans each entry and drops the empty ones.
func CleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := Clean(s); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// CheckIn cleans every free-text field of c.
func CheckIn(c *models.CheckIn) {
	c.MoodLabel = CleanPtr(c.MoodLabel)
	c.EnergyLabel = CleanPtr(c.EnergyLabel)
	c.Note = CleanPtr(c.Note)
	c.ExerciseType = CleanPtr(c.ExerciseType)
	c.SickNotes = CleanPtr(c.SickNotes)
	c.NotableEvents = CleanPtr(c.NotableEvents)
	c.MoodTags = CleanList(c.MoodTags)
	c.PainAreas = CleanList(c.PainAreas)
}

// Profile cleans the display name.
func Profile(p *models.Profile) {
	p.DisplayName = CleanPtr(p.DisplayName)
}
