package entities

import "time"

// DefaultProfileImage is used when an account has no avatar.
const DefaultProfileImage = "/profile-image/avt1.jpg"

// Account is a mock-auth user record persisted in the key-value store.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"password,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	ProfileImage string    `json:"profileImage"`
	Lat          *float64  `json:"lat,omitempty"`
	Lng          *float64  `json:"lng,omitempty"`
	Prefs        []string  `json:"prefs"`
	History      []int64   `json:"history"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Session is the signed-in state for one account.
type Session struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Profile is the public view of an account.
type Profile struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	ProfileImage string   `json:"profileImage"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Prefs        []string `json:"prefs"`
	History      []int64  `json:"history"`
}

// Profile returns the public view, defaulting the avatar and empty collections.
func (a Account) Profile() Profile {
	image := a.ProfileImage
	if image == "" {
		image = DefaultProfileImage
	}
	prefs := a.Prefs
	if prefs == nil {
		prefs = []string{}
	}
	history := a.History
	if history == nil {
		history = []int64{}
	}
	return Profile{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		ProfileImage: image,
		Lat:          a.Lat,
		Lng:          a.Lng,
		Prefs:        prefs,
		History:      history,
	}
}

// Preferences extracts the scoring input from the profile.
func (p Profile) Preferences() PreferenceProfile {
	return PreferenceProfile{Prefs: p.Prefs, History: p.History}
}
