package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"club18/cache"
	"club18/database"
	"club18/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProfileUpdate struct {
	Username  string              `json:"username"`
	Name      string              `json:"name"`
	Age       int                 `json:"age"`
	Bio       string              `json:"bio"`
	Location  string              `json:"location"`
	Area      string              `json:"area"`
	Latitude  *float64            `json:"latitude,omitempty"`
	Longitude *float64            `json:"longitude,omitempty"`
	Socials   *models.SocialLinks `json:"socials,omitempty"`
}

type OnboardingData struct {
	Name     string `form:"name"`
	Age      int    `form:"age"`
	Bio      string `form:"bio"`
	Location string `form:"location"`
	Area     string `form:"area"`
}

func GetMyProfile(c *gin.Context) {
	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		log.Printf("[GetMyProfile] database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	user.Normalize()
	if user.Image == "" {
		user.Image = fallbackImage
	}
	user.Online = true

	c.JSON(http.StatusOK, user)
}

// GetMember returns another member's public profile. The online flag
// comes from presence, not the stored document.
func GetMember(c *gin.Context) {
	memberID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": memberID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch member"})
		return
	}

	user.Normalize()
	if user.Image == "" {
		user.Image = fallbackImage
	}
	user.Online = cache.IsOnline(ctx, user.ID.Hex())

	c.JSON(http.StatusOK, user)
}

func UpdateMyProfile(c *gin.Context) {
	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var data ProfileUpdate
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile data"})
		return
	}

	set := bson.M{}
	if data.Username != "" {
		set["username"] = data.Username
	}
	if data.Name != "" {
		set["name"] = data.Name
	}
	if data.Age > 0 {
		set["age"] = data.Age
	}
	if data.Bio != "" {
		set["bio"] = data.Bio
	}
	if data.Location != "" {
		set["location"] = data.Location
	}
	if data.Area != "" {
		set["area"] = data.Area
	}
	if data.Latitude != nil {
		set["latitude"] = *data.Latitude
	}
	if data.Longitude != nil {
		set["longitude"] = *data.Longitude
	}
	if data.Socials != nil {
		set["socials"] = data.Socials
	}

	if len(set) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No changes to update"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// CompleteOnboarding collects the mandatory profile fields plus a media
// file. The upload happens first; if it fails the document is left
// untouched and the error is surfaced inline.
func CompleteOnboarding(c *gin.Context) {
	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form data"})
		return
	}

	var data OnboardingData
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		return
	}
	if data.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required", "field": "name"})
		return
	}

	mediaFile, _, err := c.Request.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A profile photo or video is required", "field": "media"})
		return
	}
	defer mediaFile.Close()

	mediaType := c.PostForm("mediaType")
	if mediaType != models.MediaVideo {
		mediaType = models.MediaImage
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Media host configuration error"})
		return
	}

	uploadResult, err := cld.Upload.Upload(ctx, mediaFile, uploader.UploadParams{
		Folder:       "club18/profiles",
		PublicID:     userID.Hex(),
		ResourceType: mediaType,
	})
	if err != nil {
		log.Printf("[CompleteOnboarding] upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload media"})
		return
	}

	update := onboardingUpdate(data, uploadResult.SecureURL, mediaType)

	result, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Onboarding complete",
		"status":  models.StatusVerifiedMember,
		"media":   uploadResult.SecureURL,
	})
}

// onboardingUpdate builds the document write for a completed
// onboarding. Only called with a successfully uploaded media URL, so
// the transition to verified_member always carries the media.
func onboardingUpdate(data OnboardingData, mediaURL, mediaType string) bson.M {
	set := bson.M{
		"status":   models.StatusVerifiedMember,
		"verified": true,
		"name":     data.Name,
	}
	if data.Age > 0 {
		set["age"] = data.Age
	}
	if data.Bio != "" {
		set["bio"] = data.Bio
	}
	if data.Location != "" {
		set["location"] = data.Location
	}
	if data.Area != "" {
		set["area"] = data.Area
	}

	if mediaType == models.MediaVideo {
		set["video"] = mediaURL
		// Every verified member carries an image; for a video upload the
		// media host serves a poster frame when the extension is jpg.
		set["image"] = videoPoster(mediaURL)
	} else {
		set["image"] = mediaURL
	}

	return bson.M{"$set": set}
}

// videoPoster derives the poster-frame URL for an uploaded video.
func videoPoster(url string) string {
	dot := strings.LastIndex(url, ".")
	if dot > strings.LastIndex(url, "/") {
		return url[:dot] + ".jpg"
	}
	return url + ".jpg"
}

// Heartbeat marks the member online and bumps lastSeen. Presence lives
// in Redis with a TTL; the document write is best-effort.
func Heartbeat(c *gin.Context) {
	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cache.Touch(ctx, userIDStr); err != nil {
		log.Printf("[Heartbeat] presence write failed: %v", err)
	}

	_, err = database.Users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"lastSeen": time.Now().Unix()}})
	if err != nil {
		log.Printf("[Heartbeat] lastSeen update failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"online": true})
}
