package handlers

import (
	"context"
	"net/http"
	"time"

	"club18/database"
	"club18/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddLike records a one-directional like. There is deliberately no
// reciprocity check and no mutual-match computation on this path.
func AddLike(c *gin.Context) {
	var req struct {
		ToID string `json:"toId" binding:"required"`
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

	toID, err := primitive.ObjectIDFromHex(req.ToID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}
	if toID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot like yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.Likes.CountDocuments(ctx, bson.M{"fromId": userID, "toId": toID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Already liked"})
		return
	}

	like := models.Like{
		ID:        primitive.NewObjectID(),
		FromID:    userID,
		ToID:      toID,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := database.Likes.InsertOne(ctx, like); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add like"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Like recorded"})
}

func RemoveLike(c *gin.Context) {
	toIDStr := c.Query("toId")
	if toIDStr == "" {
		var req struct {
			ToID string `json:"toId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "toId is required"})
			return
		}
		toIDStr = req.ToID
	}

	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	toID, err := primitive.ObjectIDFromHex(toIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.Likes.DeleteOne(ctx, bson.M{"fromId": userID, "toId": toID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove like"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Like not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Like removed"})
}

// GetLikes lists the members the caller has liked, newest first.
func GetLikes(c *gin.Context) {
	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := database.Likes.Find(ctx, bson.M{"fromId": userID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch likes"})
		return
	}
	defer cursor.Close(ctx)

	var likes []models.Like
	if err := cursor.All(ctx, &likes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode likes"})
		return
	}

	if len(likes) == 0 {
		c.JSON(http.StatusOK, []map[string]interface{}{})
		return
	}

	ids := make([]primitive.ObjectID, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.ToID)
	}

	userCursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}
	defer userCursor.Close(ctx)

	var users []models.User
	if err := userCursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode members"})
		return
	}

	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		u.Normalize()
		byID[u.ID] = u
	}

	response := make([]map[string]interface{}, 0, len(likes))
	for _, l := range likes {
		member := map[string]interface{}{
			"id":    l.ToID.Hex(),
			"name":  "Unknown",
			"image": fallbackImage,
		}
		if u, ok := byID[l.ToID]; ok {
			member["name"] = u.Name
			if u.Image != "" {
				member["image"] = u.Image
			}
		}
		response = append(response, map[string]interface{}{
			"id":        l.ID.Hex(),
			"toId":      l.ToID.Hex(),
			"createdAt": l.CreatedAt,
			"member":    member,
		})
	}

	c.JSON(http.StatusOK, response)
}
