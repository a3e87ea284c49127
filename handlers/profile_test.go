package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"club18/models"
)

func TestOnboardingUpdatePromotesToVerifiedMember(t *testing.T) {
	data := OnboardingData{Name: "Alex", Age: 24, Bio: "hi", Location: "Lagos", Area: "Lekki"}

	update := onboardingUpdate(data, "https://cdn.example/alex.jpg", models.MediaImage)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)

	assert.Equal(t, models.StatusVerifiedMember, set["status"])
	assert.Equal(t, true, set["verified"])
	assert.Equal(t, "Alex", set["name"])
	assert.NotEmpty(t, set["image"])
	assert.NotContains(t, set, "video")
}

func TestOnboardingUpdateVideoVariant(t *testing.T) {
	update := onboardingUpdate(OnboardingData{Name: "Alex"}, "https://cdn.example/alex.mp4", models.MediaVideo)

	set := update["$set"].(bson.M)
	assert.Equal(t, models.StatusVerifiedMember, set["status"])
	assert.Equal(t, "https://cdn.example/alex.mp4", set["video"])

	// A video-only onboarding still yields an image: the poster frame.
	assert.Equal(t, "https://cdn.example/alex.jpg", set["image"])
}

func TestVideoPoster(t *testing.T) {
	assert.Equal(t, "https://cdn.example/v/alex.jpg", videoPoster("https://cdn.example/v/alex.mp4"))
	assert.Equal(t, "https://cdn.example/v/alex.jpg", videoPoster("https://cdn.example/v/alex"))
}

func TestOnboardingUpdateSkipsUnsetOptionals(t *testing.T) {
	update := onboardingUpdate(OnboardingData{Name: "Alex"}, "https://cdn.example/a.jpg", models.MediaImage)

	set := update["$set"].(bson.M)
	assert.NotContains(t, set, "age")
	assert.NotContains(t, set, "bio")
	assert.NotContains(t, set, "location")
	assert.NotContains(t, set, "area")
}
