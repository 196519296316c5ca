package timezones

import "testing"

func TestLoad(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// Should be idempotent
	if err := Load(); err != nil {
		t.Fatalf("Load() second call error = %v", err)
	}
}

func TestAll(t *testing.T) {
	zones := All()
	if len(zones) != len(curated) {
		t.Errorf("All() returned %d zones, want %d", len(zones), len(curated))
	}

	seen := make(map[string]bool)
	for _, z := range zones {
		if z.ID == "" {
			t.Error("Zone with empty ID found")
		}
		if z.Label == "" {
			t.Errorf("Zone %s has empty Label", z.ID)
		}
		if seen[z.ID] {
			t.Errorf("Zone %s listed twice", z.ID)
		}
		seen[z.ID] = true
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"America/New_York", true},
		{"America/Los_Angeles", true},
		{"Europe/London", true},
		{"Pacific/Kiritimati", true},
		{"UTC", true},
		{"Invalid/Timezone", false},
		{"", false},
		{"random", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := Valid(tt.id); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	if got := Label("America/New_York"); got != "Eastern Time (New York)" {
		t.Errorf("Label(America/New_York) = %q", got)
	}
	if got := Label("Invalid/Timezone"); got != "Invalid/Timezone" {
		t.Errorf("Label(Invalid/Timezone) = %q, want 'Invalid/Timezone'", got)
	}
}

func TestGroups(t *testing.T) {
	groups := Groups()
	if len(groups) == 0 {
		t.Fatal("Groups() returned empty slice")
	}

	totalZones := 0
	for _, g := range groups {
		if g.Region == "" {
			t.Error("Group with empty Region found")
		}
		if len(g.Zones) == 0 {
			t.Errorf("Group %s has no zones", g.Region)
		}
		totalZones += len(g.Zones)
	}

	if totalZones != len(All()) {
		t.Errorf("Groups total zones = %d, All() zones = %d", totalZones, len(All()))
	}
}

func TestGroups_Sorted(t *testing.T) {
	groups := Groups()

	for i := 1; i < len(groups); i++ {
		if groups[i].Region < groups[i-1].Region {
			t.Errorf("Groups not sorted: %q before %q", groups[i-1].Region, groups[i].Region)
		}
	}

	for _, g := range groups {
		for i := 1; i < len(g.Zones); i++ {
			if g.Zones[i].Label < g.Zones[i-1].Label {
				t.Errorf("Zones in %s not sorted: %q before %q", g.Region, g.Zones[i-1].Label, g.Zones[i].Label)
			}
		}
	}
}
