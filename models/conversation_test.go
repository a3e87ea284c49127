package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationIDCommutative(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"64f1c2", "000abc"},
		{"same", "same2"},
	}

	for _, p := range pairs {
		assert.Equal(t, ConversationID(p[0], p[1]), ConversationID(p[1], p[0]),
			"pair %q/%q", p[0], p[1])
	}

	// Exhaustive over a small alphabet.
	uids := []string{"a", "b", "c", "aa", "ab", "z9"}
	for _, u1 := range uids {
		for _, u2 := range uids {
			assert.Equal(t, ConversationID(u1, u2), ConversationID(u2, u1))
		}
	}
}

func TestConversationIDStable(t *testing.T) {
	assert.Equal(t, "alice_bob", ConversationID("bob", "alice"))
	assert.Equal(t, "alice_bob", ConversationID("alice", "bob"))
}

func TestPartnerOf(t *testing.T) {
	conv := Conversation{
		ID:           ConversationID("alice", "bob"),
		Participants: []string{"alice", "bob"},
	}

	assert.Equal(t, "bob", conv.PartnerOf("alice"))
	assert.Equal(t, "alice", conv.PartnerOf("bob"))
	assert.Equal(t, "alice", conv.PartnerOf("carol"), "non-participant gets first member")
}

func TestValidMessageText(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"hello", true},
		{" hi ", true},
		{"", false},
		{"   ", false},
		{"\t\n", false},
		{" .", true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidMessageText(tc.text), fmt.Sprintf("text %q", tc.text))
	}
}

func TestUserNormalize(t *testing.T) {
	u := User{Status: "something_else"}
	u.Normalize()
	assert.Equal(t, StatusPendingOnboarding, u.Status)

	u = User{Status: StatusVerifiedMember}
	u.Normalize()
	assert.Equal(t, StatusVerifiedMember, u.Status)
}

func TestOnboardingComplete(t *testing.T) {
	u := User{Name: "Alex", Image: "https://cdn.example/alex.jpg"}
	assert.True(t, u.OnboardingComplete())

	assert.False(t, (&User{Name: "Alex"}).OnboardingComplete())
	assert.False(t, (&User{Image: "x"}).OnboardingComplete())
}
