package model

import "time"

// LocationScope is how far a member is willing to match geographically.
type LocationScope string

const (
	ScopeCity  LocationScope = "city"
	ScopeState LocationScope = "state"
	ScopeAny   LocationScope = "any"
)

// Profile is a member profile derived from onboarding. It is read-only
// input to match generation; mutation happens upstream of this service.
type Profile struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	FullName       string         `json:"full_name"`
	Gender         string         `json:"gender"`
	SeekingGenders []string       `json:"seeking_genders"`
	Birthdate      time.Time      `json:"birthdate"`
	City           string         `json:"city"`
	State          string         `json:"state"`
	Active         bool           `json:"active"`
	AgeMin         int            `json:"age_min"`
	AgeMax         int            `json:"age_max"`
	Scope          LocationScope  `json:"location_scope"`
	Signals        ProfileSignals `json:"signals"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ProfileSignals holds the personality and preference signals extracted
// during onboarding conversations. Numeric signals are normalized to [0,1].
type ProfileSignals struct {
	// Big-five trait estimates.
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`

	// Intellectual signals.
	Curiosity      float64 `json:"curiosity"`
	EducationLevel int     `json:"education_level"` // 0..5

	// Communication signals.
	CommunicationStyle string `json:"communication_style"` // direct|diplomatic|playful|reserved
	ConflictStyle      string `json:"conflict_style"`      // collaborate|compromise|avoid|compete

	// Life alignment signals.
	WantsChildren      string  `json:"wants_children"` // yes|no|open
	ReligiousIntensity float64 `json:"religious_intensity"`
	AmbitionLevel      float64 `json:"ambition_level"`

	// Astrological signals.
	ZodiacSign          string  `json:"zodiac_sign"`
	AstrologyImportance float64 `json:"astrology_importance"`
}

// Age returns the member's age in whole years at the given time.
func (p Profile) Age(now time.Time) int {
	years := now.Year() - p.Birthdate.Year()
	anniversary := p.Birthdate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// Seeks reports whether the profile's stated preference includes the
// given gender. An empty preference list matches anyone.
func (p Profile) Seeks(gender string) bool {
	if len(p.SeekingGenders) == 0 {
		return true
	}
	for _, g := range p.SeekingGenders {
		if g == gender {
			return true
		}
	}
	return false
}
