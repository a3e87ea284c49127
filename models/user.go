package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Member status tags. The store enforces nothing, so every read goes
// through Normalize to coerce unknown values back into this set.
const (
	StatusPendingOnboarding = "pending_onboarding"
	StatusVerifiedMember    = "verified_member"
	StatusGuest             = "guest"
)

type SocialLinks struct {
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	WhatsApp  string `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
	TikTok    string `bson:"tiktok,omitempty" json:"tiktok,omitempty"`
	X         string `bson:"x,omitempty" json:"x,omitempty"`
	OnlyFans  string `bson:"onlyfans,omitempty" json:"onlyfans,omitempty"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash *string            `bson:"passwordHash,omitempty" json:"-"`
	AuthProvider string             `bson:"authProvider" json:"authProvider"`
	GoogleID     *string            `bson:"googleId,omitempty" json:"-"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`

	// Profile fields
	Username string `bson:"username" json:"username"`
	Name     string `bson:"name" json:"name"`
	Age      int    `bson:"age" json:"age"`
	Bio      string `bson:"bio" json:"bio"`
	Image    string `bson:"image" json:"image"`
	Video    string `bson:"video,omitempty" json:"video,omitempty"`

	Location string `bson:"location" json:"location"`
	Area     string `bson:"area,omitempty" json:"area,omitempty"`

	Status   string `bson:"status" json:"status"`
	Verified bool   `bson:"verified" json:"verified"`
	Online   bool   `bson:"online" json:"online"`

	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`

	Socials *SocialLinks `bson:"socials,omitempty" json:"socials,omitempty"`

	LastSeen int64 `bson:"lastSeen" json:"lastSeen"`
}

// Normalize coerces a user document read from the store into a valid
// shape: known status tag, non-empty username.
func (u *User) Normalize() {
	switch u.Status {
	case StatusPendingOnboarding, StatusVerifiedMember, StatusGuest:
	default:
		u.Status = StatusPendingOnboarding
	}
	if u.Username == "" {
		u.Username = "member_" + u.ID.Hex()[:8]
	}
}

// OnboardingComplete reports whether the profile carries everything a
// full member needs: a display name and at least one uploaded image.
func (u *User) OnboardingComplete() bool {
	return u.Name != "" && u.Image != ""
}
