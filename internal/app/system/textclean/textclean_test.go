package textclean

import (
	"testing"

	"github.com/dalemusser/stratawell/internal/domain/models"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "slept badly", "slept badly"},
		{"trims", "  ok \n", "ok"},
		{"strips tags", "<b>great</b> day", "great day"},
		{"drops script", `<script>alert("x")</script>fine`, "fine"},
		{"drops attributes", `<a href="javascript:x" onclick="y">link</a>`, "link"},
		{"keeps ampersand", "Tom & Jerry", "Tom & Jerry"},
		{"only markup", "<br/><hr>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	in := "<p>walked <i>5km</i> &amp; stretched</p>"
	once := Clean(in)
	if twice := Clean(once); twice != once {
		t.Errorf("Clean not idempotent: %q then %q", once, twice)
	}
}

func TestCleanPtr(t *testing.T) {
	if CleanPtr(nil) != nil {
		t.Error("CleanPtr(nil) should be nil")
	}
	empty := "<div></div>"
	if CleanPtr(&empty) != nil {
		t.Error("CleanPtr() of markup-only text should be nil")
	}
	s := "<em>fine</em>"
	if got := CleanPtr(&s); got == nil || *got != "fine" {
		t.Errorf("CleanPtr() = %v, want fine", got)
	}
}

func TestCheckIn(t *testing.T) {
	note := "<b>headache</b>"
	events := "   "
	c := models.CheckIn{
		Note:          &note,
		NotableEvents: &events,
		MoodTags:      []string{"<i>calm</i>", "<br>", "tired"},
	}
	CheckIn(&c)

	if c.Note == nil || *c.Note != "headache" {
		t.Errorf("note = %v, want headache", c.Note)
	}
	if c.NotableEvents != nil {
		t.Errorf("notable_events = %q, want nil", *c.NotableEvents)
	}
	if len(c.MoodTags) != 2 || c.MoodTags[0] != "calm" || c.MoodTags[1] != "tired" {
		t.Errorf("mood_tags = %v, want [calm tired]", c.MoodTags)
	}
	// the original note string is not modified
	if note != "<b>headache</b>" {
		t.Errorf("input string changed to %q", note)
	}
}

func TestProfile(t *testing.T) {
	name := "<script>x</script>Sam"
	p := models.Profile{DisplayName: &name}
	Profile(&p)
	if p.DisplayName == nil || *p.DisplayName != "Sam" {
		t.Errorf("display_name = %v, want Sam", p.DisplayName)
	}
}
