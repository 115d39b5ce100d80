package models

import "strings"

// UserProfile defines the structure for user profiles
type UserProfile struct {
	UserID        string   `dynamodbav:"userId" json:"userId"` // ✅ Partition Key (auth provider id)
	FirstName     string   `dynamodbav:"firstName,omitempty" json:"firstName,omitempty"`
	Age           int      `dynamodbav:"age,omitempty" json:"age,omitempty"`
	City          string   `dynamodbav:"city,omitempty" json:"city,omitempty"`
	State         string   `dynamodbav:"state,omitempty" json:"state,omitempty"`
	Gender        string   `dynamodbav:"gender,omitempty" json:"gender,omitempty"` // male / female
	Occupation    string   `dynamodbav:"occupation,omitempty" json:"occupation,omitempty"`
	Education     string   `dynamodbav:"education,omitempty" json:"education,omitempty"`
	MaritalStatus string   `dynamodbav:"maritalStatus,omitempty" json:"maritalStatus,omitempty"`
	RevertStatus  string   `dynamodbav:"revertStatus,omitempty" json:"revertStatus,omitempty"` // shown as "Muslim Status"
	PrayerStatus  string   `dynamodbav:"prayerStatus,omitempty" json:"prayerStatus,omitempty"`
	Sect          string   `dynamodbav:"sect,omitempty" json:"sect,omitempty"`
	HideSect      bool     `dynamodbav:"hideSect,omitempty" json:"hideSect,omitempty"`
	Bio           string   `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	Photos        []string `dynamodbav:"photos,omitempty" json:"photos,omitempty"` // capped at MaxProfilePhotos
	Video         string   `dynamodbav:"video,omitempty" json:"video,omitempty"`   // optional single video URL
	IsPublic      bool     `dynamodbav:"isPublic" json:"isPublic"`                 // discoverability flag
	CreatedAt     string   `dynamodbav:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt     string   `dynamodbav:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// ProfileBrief is the minimal subset of a profile needed for list rendering
// (connection rows, conversation headers).
type ProfileBrief struct {
	UserID    string   `dynamodbav:"userId" json:"userId"`
	FirstName string   `dynamodbav:"firstName,omitempty" json:"firstName,omitempty"`
	Age       int      `dynamodbav:"age,omitempty" json:"age,omitempty"`
	City      string   `dynamodbav:"city,omitempty" json:"city,omitempty"`
	State     string   `dynamodbav:"state,omitempty" json:"state,omitempty"`
	Photos    []string `dynamodbav:"photos,omitempty" json:"photos,omitempty"`
}

// Brief projects the list-rendering subset out of a full profile.
func (p UserProfile) Brief() ProfileBrief {
	return ProfileBrief{
		UserID:    p.UserID,
		FirstName: p.FirstName,
		Age:       p.Age,
		City:      p.City,
		State:     p.State,
		Photos:    p.Photos,
	}
}

// Location joins the split city/state fields for display.
func (b ProfileBrief) Location() string {
	parts := []string{}
	if c := strings.TrimSpace(b.City); c != "" {
		parts = append(parts, c)
	}
	if s := strings.TrimSpace(b.State); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// PrimaryPhoto returns the first photo URL, or "" when none were uploaded.
func (b ProfileBrief) PrimaryPhoto() string {
	if len(b.Photos) > 0 {
		return b.Photos[0]
	}
	return ""
}

// MaxProfilePhotos caps the ordered photo list on a profile.
const MaxProfilePhotos = 10

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "Profiles"
