// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTimezone is used when a profile has no timezone set.
const DefaultTimezone = "UTC"

// Profile holds a user's preferences for check-ins and analytics.
type Profile struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          string             `bson:"user_id" json:"user_id"`
	DisplayName     *string            `bson:"display_name" json:"display_name"`
	ReminderTime    *string            `bson:"reminder_time" json:"reminder_time"` // HH:MM, nil = no reminder
	Timezone        string             `bson:"timezone" json:"timezone"`           // IANA name
	TrackedFeatures []string           `bson:"tracked_features" json:"tracked_features"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// FeatureKey identifies a check-in section a user can choose to track.
type FeatureKey struct {
	Value string
	Label string
}

// AllFeatures lists every trackable section in display order.
var AllFeatures = []FeatureKey{
	{Value: "mood", Label: "Mood"},
	{Value: "energy", Label: "Energy"},
	{Value: "appetite", Label: "Appetite"},
	{Value: "sleep", Label: "Sleep"},
	{Value: "exercise", Label: "Exercise"},
	{Value: "period", Label: "Period"},
	{Value: "bloating", Label: "Bloating"},
	{Value: "sick", Label: "Sick"},
	{Value: "notes", Label: "Notes"},
}

// IsValidFeature checks if a value is a known feature key.
func IsValidFeature(value string) bool {
	for _, f := range AllFeatures {
		if f.Value == value {
			return true
		}
	}
	return false
}

// AllFeatureValues returns all feature keys as a slice.
func AllFeatureValues() []string {
	values := make([]string, len(AllFeatures))
	for i, f := range AllFeatures {
		values[i] = f.Value
	}
	return values
}

// DefaultProfile returns the profile used for users who have never saved one.
func DefaultProfile(userID string) Profile {
	return Profile{
		UserID:          userID,
		Timezone:        DefaultTimezone,
		TrackedFeatures: AllFeatureValues(),
	}
}

// Location resolves the profile's timezone, falling back to UTC.
func (p Profile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
