package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"club18/cache"
	"club18/database"
	"club18/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OpenConversation resolves (or creates) the thread between the caller
// and a partner. The id is derived from the sorted uid pair, so both
// sides land on the same document no matter who opens it first.
func OpenConversation(c *gin.Context) {
	var req struct {
		PartnerID string `json:"partnerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	partnerID, err := primitive.ObjectIDFromHex(req.PartnerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner ID"})
		return
	}
	if partnerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot open a chat with yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var self, partner models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&self); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	err = database.Users.FindOne(ctx, bson.M{"_id": partnerID}).Decode(&partner)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch member"})
		return
	}
	self.Normalize()
	partner.Normalize()

	convID := models.ConversationID(userIDStr, req.PartnerID)
	now := time.Now().Unix()

	// Merge-style upsert: repeated opens are a no-op beyond the filter.
	_, err = database.Conversations.UpdateOne(ctx,
		bson.M{"_id": convID},
		bson.M{"$setOnInsert": models.Conversation{
			ID:           convID,
			Participants: []string{userIDStr, req.PartnerID},
			Profiles: []models.Participant{
				{UserID: userIDStr, Name: self.Name, Image: self.Image},
				{UserID: req.PartnerID, Name: partner.Name, Image: partner.Image},
			},
			LastMessageAt: now,
			CreatedAt:     now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Printf("[OpenConversation] upsert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id": convID,
		"partner": gin.H{
			"id":     req.PartnerID,
			"name":   partner.Name,
			"image":  partner.Image,
			"online": cache.IsOnline(ctx, req.PartnerID),
		},
	})
}

// GetInbox lists the caller's conversations, most recent activity
// first. Partner display data is the denormalized copy on the
// conversation document.
func GetInbox(c *gin.Context) {
	userIDStr := c.GetString("userId")
	if _, err := primitive.ObjectIDFromHex(userIDStr); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}})
	cursor, err := database.Conversations.Find(ctx, bson.M{"participants": userIDStr}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode conversations"})
		return
	}

	response := make([]map[string]interface{}, 0, len(conversations))
	for _, conv := range conversations {
		partner := map[string]interface{}{
			"id":     conv.PartnerOf(userIDStr),
			"name":   "Unknown",
			"image":  fallbackImage,
			"online": false,
		}
		for _, p := range conv.Profiles {
			if p.UserID != userIDStr {
				if p.Name != "" {
					partner["name"] = p.Name
				}
				if p.Image != "" {
					partner["image"] = p.Image
				}
				partner["online"] = cache.IsOnline(ctx, p.UserID)
				break
			}
		}

		response = append(response, map[string]interface{}{
			"id":            conv.ID,
			"lastMessage":   conv.LastMessage,
			"lastMessageAt": conv.LastMessageAt,
			"partner":       partner,
		})
	}

	c.JSON(http.StatusOK, response)
}
