package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"club18/database"
	"club18/models"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SendMessageRequest struct {
	ConversationID string `json:"conversationId" binding:"required"`
	Text           string `json:"text"`
	ImageURL       string `json:"imageUrl"`
}

// SendMessage appends a message to a thread and refreshes the inbox
// preview. The message insert is authoritative; the preview upsert is
// best-effort and a failure there only leaves the inbox stale.
func SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Whitespace-only text with no image is a no-op: nothing is written.
	if req.ImageURL == "" && !models.ValidMessageText(req.Text) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message text is empty"})
		return
	}

	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var conv models.Conversation
	err = database.Conversations.FindOne(ctx, bson.M{
		"_id":          req.ConversationID,
		"participants": userIDStr,
	}).Decode(&conv)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to conversation"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify conversation access"})
		return
	}

	message := models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: req.ConversationID,
		SenderID:       userID,
		Text:           req.Text,
		ImageURL:       req.ImageURL,
		IsRead:         false,
		CreatedAt:      time.Now().Unix(),
	}

	if _, err := database.Messages.InsertOne(ctx, message); err != nil {
		log.Printf("[SendMessage] insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	preview := req.Text
	if preview == "" {
		preview = "Sent a photo"
	}

	_, err = database.Conversations.UpdateOne(ctx,
		bson.M{"_id": req.ConversationID},
		bson.M{"$set": bson.M{
			"lastMessage":   preview,
			"lastMessageAt": message.CreatedAt,
		}},
	)
	if err != nil {
		// Message is already persisted; the preview catches up on the
		// next send.
		log.Printf("[SendMessage] preview update error: %v", err)
	}

	if wsManager != nil {
		wsManager.PublishMessage(message)
		wsManager.PublishConversationUpdate(conv.Participants, req.ConversationID, preview, message.CreatedAt)
	}

	go notifyPartner(conv, userID, preview)

	c.JSON(http.StatusCreated, gin.H{
		"id":      message.ID.Hex(),
		"message": "Delivered",
	})
}

func GetMessages(c *gin.Context) {
	convID := c.Param("id")

	userIDStr := c.GetString("userId")
	if _, err := primitive.ObjectIDFromHex(userIDStr); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.Conversations.CountDocuments(ctx, bson.M{
		"_id":          convID,
		"participants": userIDStr,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify conversation access"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to conversation"})
		return
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := database.Messages.Find(ctx, bson.M{"conversationId": convID}, findOptions)
	if err != nil {
		log.Printf("[GetMessages] find error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode messages"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// MarkRead flags every unread partner message in a thread as read.
func MarkRead(c *gin.Context) {
	convID := c.Param("id")

	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.Conversations.CountDocuments(ctx, bson.M{
		"_id":          convID,
		"participants": userIDStr,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify conversation access"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to conversation"})
		return
	}

	result, err := database.Messages.UpdateMany(ctx,
		bson.M{
			"conversationId": convID,
			"senderId":       bson.M{"$ne": userID},
			"isRead":         false,
		},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		log.Printf("[MarkRead] update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updatedCount": result.ModifiedCount})
}

// notifyPartner fires a web push at the other participant. Push is
// cosmetic; every failure is logged and dropped.
func notifyPartner(conv models.Conversation, senderID primitive.ObjectID, preview string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[notifyPartner] panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var sender models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": senderID}).Decode(&sender); err != nil {
		return
	}
	sender.Normalize()

	payload, err := json.Marshal(map[string]string{
		"title": sender.Name + " sent a message",
		"body":  preview,
		"icon":  sender.Image,
	})
	if err != nil {
		return
	}

	partnerUID := conv.PartnerOf(senderID.Hex())
	partnerID, err := primitive.ObjectIDFromHex(partnerUID)
	if err != nil {
		return
	}

	var sub PushSubscription
	if err := database.PushSubs.FindOne(ctx, bson.M{"userId": partnerID}).Decode(&sub); err != nil {
		return
	}

	_, err = webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
		Subscriber:      "admin@club18.app",
		VAPIDPrivateKey: vapidPrivateKey,
		TTL:             30,
	})
	if err != nil {
		log.Printf("[notifyPartner] push failed: %v", err)
	}
}
