package models

import "strings"

// Participant is the denormalized display data kept on a conversation
// so the inbox renders without a join per row.
type Participant struct {
	UserID string `bson:"userId" json:"userId"`
	Name   string `bson:"name" json:"name"`
	Image  string `bson:"image" json:"image"`
}

// Conversation is a two-party chat thread. Its _id is derived from the
// participant uids so either side resolves the same document.
type Conversation struct {
	ID            string        `bson:"_id" json:"id"`
	Participants  []string      `bson:"participants" json:"participants"`
	Profiles      []Participant `bson:"profiles" json:"profiles"`
	LastMessage   string        `bson:"lastMessage" json:"lastMessage"`
	LastMessageAt int64         `bson:"lastMessageAt" json:"lastMessageAt"`
	CreatedAt     int64         `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// ConversationID derives the thread key for a pair of uids. The uids
// are sorted before joining, so the result is the same no matter which
// side asks.
func ConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// PartnerOf returns the first participant uid that is not uid.
func (c *Conversation) PartnerOf(uid string) string {
	for _, p := range c.Participants {
		if p != uid {
			return p
		}
	}
	return ""
}

// ValidMessageText rejects empty and whitespace-only message bodies.
func ValidMessageText(text string) bool {
	return strings.TrimSpace(text) != ""
}
