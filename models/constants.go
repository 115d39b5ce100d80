package models

import (
	"strings"
	"time"
)

// ✅ Connection statuses (pending is the only non-terminal state)
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// ✅ Genders; an empty string means the user never set one
const (
	GenderUnset  = ""
	GenderMale   = "male"
	GenderFemale = "female"
)

// TimestampLayout is RFC3339 with fixed-width nanoseconds so stored
// timestamps order lexically, which the message sort key relies on.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// NowTimestamp returns the current UTC time in TimestampLayout.
func NowTimestamp() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// OppositeGenders reports whether two gender values are both set and
// differ. This predicate is the whole visibility policy: same-gender and
// unset-gender pairs never see each other.
func OppositeGenders(a, b string) bool {
	a, b = NormalizeGender(a), NormalizeGender(b)
	return a != GenderUnset && b != GenderUnset && a != b
}

// NormalizeGender lowercases and trims a stored gender value; anything
// other than "male"/"female" collapses to GenderUnset.
func NormalizeGender(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case GenderMale:
		return GenderMale
	case GenderFemale:
		return GenderFemale
	default:
		return GenderUnset
	}
}
