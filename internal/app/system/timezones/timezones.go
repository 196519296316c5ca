// Package timezones holds the curated zone list offered to users when they
// pick a profile time zone. Profiles may still store any IANA name.
package timezones

import (
	"sort"
	"sync"
	"time"
	_ "time/tzdata"
)

type Zone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Region string `json:"region,omitempty"`
}

type ZoneGroup struct {
	Region string `json:"region"`
	Zones  []Zone `json:"zones"`
}

var curated = []Zone{
	{ID: "UTC", Label: "UTC", Region: "Other"},

	{ID: "America/New_York", Label: "Eastern Time (New York)", Region: "Americas"},
	{ID: "America/Chicago", Label: "Central Time (Chicago)", Region: "Americas"},
	{ID: "America/Denver", Label: "Mountain Time (Denver)", Region: "Americas"},
	{ID: "America/Phoenix", Label: "Mountain Time, no DST (Phoenix)", Region: "Americas"},
	{ID: "America/Los_Angeles", Label: "Pacific Time (Los Angeles)", Region: "Americas"},
	{ID: "America/Anchorage", Label: "Alaska Time (Anchorage)", Region: "Americas"},
	{ID: "Pacific/Honolulu", Label: "Hawaii Time (Honolulu)", Region: "Americas"},
	{ID: "America/Toronto", Label: "Eastern Time (Toronto)", Region: "Americas"},
	{ID: "America/Vancouver", Label: "Pacific Time (Vancouver)", Region: "Americas"},
	{ID: "America/Halifax", Label: "Atlantic Time (Halifax)", Region: "Americas"},
	{ID: "America/Mexico_City", Label: "Mexico City", Region: "Americas"},
	{ID: "America/Bogota", Label: "Bogotá", Region: "Americas"},
	{ID: "America/Lima", Label: "Lima", Region: "Americas"},
	{ID: "America/Sao_Paulo", Label: "São Paulo", Region: "Americas"},
	{ID: "America/Argentina/Buenos_Aires", Label: "Buenos Aires", Region: "Americas"},

	{ID: "Europe/London", Label: "London", Region: "Europe"},
	{ID: "Europe/Dublin", Label: "Dublin", Region: "Europe"},
	{ID: "Europe/Lisbon", Label: "Lisbon", Region: "Europe"},
	{ID: "Europe/Paris", Label: "Paris", Region: "Europe"},
	{ID: "Europe/Berlin", Label: "Berlin", Region: "Europe"},
	{ID: "Europe/Madrid", Label: "Madrid", Region: "Europe"},
	{ID: "Europe/Rome", Label: "Rome", Region: "Europe"},
	{ID: "Europe/Amsterdam", Label: "Amsterdam", Region: "Europe"},
	{ID: "Europe/Stockholm", Label: "Stockholm", Region: "Europe"},
	{ID: "Europe/Warsaw", Label: "Warsaw", Region: "Europe"},
	{ID: "Europe/Athens", Label: "Athens", Region: "Europe"},
	{ID: "Europe/Helsinki", Label: "Helsinki", Region: "Europe"},
	{ID: "Europe/Istanbul", Label: "Istanbul", Region: "Europe"},
	{ID: "Europe/Moscow", Label: "Moscow", Region: "Europe"},

	{ID: "Africa/Lagos", Label: "Lagos", Region: "Africa"},
	{ID: "Africa/Cairo", Label: "Cairo", Region: "Africa"},
	{ID: "Africa/Nairobi", Label: "Nairobi", Region: "Africa"},
	{ID: "Africa/Johannesburg", Label: "Johannesburg", Region: "Africa"},

	{ID: "Asia/Dubai", Label: "Dubai", Region: "Asia"},
	{ID: "Asia/Karachi", Label: "Karachi", Region: "Asia"},
	{ID: "Asia/Kolkata", Label: "India (Kolkata)", Region: "Asia"},
	{ID: "Asia/Dhaka", Label: "Dhaka", Region: "Asia"},
	{ID: "Asia/Bangkok", Label: "Bangkok", Region: "Asia"},
	{ID: "Asia/Jakarta", Label: "Jakarta", Region: "Asia"},
	{ID: "Asia/Singapore", Label: "Singapore", Region: "Asia"},
	{ID: "Asia/Shanghai", Label: "China (Shanghai)", Region: "Asia"},
	{ID: "Asia/Hong_Kong", Label: "Hong Kong", Region: "Asia"},
	{ID: "Asia/Manila", Label: "Manila", Region: "Asia"},
	{ID: "Asia/Seoul", Label: "Seoul", Region: "Asia"},
	{ID: "Asia/Tokyo", Label: "Tokyo", Region: "Asia"},

	{ID: "Australia/Perth", Label: "Perth", Region: "Pacific"},
	{ID: "Australia/Adelaide", Label: "Adelaide", Region: "Pacific"},
	{ID: "Australia/Brisbane", Label: "Brisbane", Region: "Pacific"},
	{ID: "Australia/Sydney", Label: "Sydney", Region: "Pacific"},
	{ID: "Pacific/Auckland", Label: "Auckland", Region: "Pacific"},
	{ID: "Pacific/Fiji", Label: "Fiji", Region: "Pacific"},
	{ID: "Pacific/Kiritimati", Label: "Kiritimati (Line Islands)", Region: "Pacific"},
}

var (
	loadOnce sync.Once
	zones    []Zone
	byID     map[string]Zone
	loadErr  error

	groupsOnce sync.Once
	groups     []ZoneGroup
)

// load keeps only zones the host's tz database can resolve.
func load() {
	loadOnce.Do(func() {
		byID = make(map[string]Zone, len(curated))
		for _, z := range curated {
			if _, err := time.LoadLocation(z.ID); err != nil {
				if loadErr == nil {
					loadErr = err
				}
				continue
			}
			zones = append(zones, z)
			byID[z.ID] = z
		}
	})
}

// Load is optional: call it at startup to fail fast when the host has no
// usable tz database. It reports the first zone that failed to load.
func Load() error {
	load()
	return loadErr
}

// All returns the curated list of zones in a stable order.
func All() []Zone {
	load()
	return zones
}

// Label returns the human-friendly label for an ID, or the ID itself if not found.
func Label(id string) string {
	load()
	if z, ok := byID[id]; ok && z.Label != "" {
		return z.Label
	}
	return id
}

// Valid reports whether the given ID exists in the curated list.
func Valid(id string) bool {
	load()
	_, ok := byID[id]
	return ok
}

// Groups returns the curated zones grouped by region, regions and labels in
// alphabetical order. Built once and shared; callers must not modify it.
func Groups() []ZoneGroup {
	groupsOnce.Do(func() {
		byRegion := make(map[string][]Zone)
		for _, z := range All() {
			region := z.Region
			if region == "" {
				region = "Other"
			}
			byRegion[region] = append(byRegion[region], z)
		}

		out := make([]ZoneGroup, 0, len(byRegion))
		for region, zs := range byRegion {
			sort.SliceStable(zs, func(i, j int) bool { return zs[i].Label < zs[j].Label })
			out = append(out, ZoneGroup{Region: region, Zones: zs})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Region < out[j].Region })
		groups = out
	})
	return groups
}
