package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account with its search history and
// display preferences.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"password" json:"-"`
	SearchHistory []SearchEntry      `bson:"searchHistory" json:"searchHistory"`
	Preferences   Preferences        `bson:"preferences" json:"preferences"`
	CreatedAt     time.Time          `bson:"createdAt" json:"-"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"-"`
}

// SearchEntry is a single weather lookup recorded in a user's history,
// newest first.
type SearchEntry struct {
	City      string    `bson:"city" json:"city"`
	Country   string    `bson:"country" json:"country"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Preferences holds per-user display settings. Partial updates merge
// field by field, they never replace the whole document.
type Preferences struct {
	TemperatureUnit string           `bson:"temperatureUnit" json:"temperatureUnit"`
	DefaultLocation *DefaultLocation `bson:"defaultLocation,omitempty" json:"defaultLocation,omitempty"`
}

// DefaultLocation is the location shown before the user searches.
type DefaultLocation struct {
	City    string `bson:"city" json:"city"`
	Country string `bson:"country" json:"country"`
}

// Profile is the client-facing view of a user. The password hash never
// appears here.
type Profile struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	SearchHistory []SearchEntry `json:"searchHistory"`
	Preferences   Preferences   `json:"preferences"`
}

// AuthenticatedUser is a profile plus a freshly issued bearer token,
// returned from register, login and profile update.
type AuthenticatedUser struct {
	Profile
	Token string `json:"token"`
}

// PublicProfile builds the client view of u.
func (u *User) PublicProfile() Profile {
	history := u.SearchHistory
	if history == nil {
		history = []SearchEntry{}
	}
	return Profile{
		ID:            u.ID.Hex(),
		Name:          u.Name,
		Email:         u.Email,
		SearchHistory: history,
		Preferences:   u.Preferences,
	}
}

// UserCreate represents registration input.
type UserCreate struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserLogin represents login credentials.
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate is a partial profile mutation. Zero-valued fields are
// left untouched.
type ProfileUpdate struct {
	Name        string             `json:"name" validate:"omitempty,max=100"`
	Email       string             `json:"email" validate:"omitempty,email,max=255"`
	Password    string             `json:"password" validate:"omitempty,min=8,max=72"`
	Preferences *PreferencesUpdate `json:"preferences"`
}

// PreferencesUpdate carries the preference fields a client wants to
// change.
type PreferencesUpdate struct {
	TemperatureUnit string           `json:"temperatureUnit" validate:"omitempty,oneof=metric imperial"`
	DefaultLocation *DefaultLocation `json:"defaultLocation"`
}

// HistoryAdd records one search into the user's history.
type HistoryAdd struct {
	City    string `json:"city" validate:"required,max=120"`
	Country string `json:"country" validate:"omitempty,max=120"`
}
