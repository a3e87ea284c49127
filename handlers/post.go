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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// feedLimit is the fixed page size. There is no pagination beyond it.
const feedLimit = 50

type CreatePostRequest struct {
	MediaURL  string `json:"mediaUrl" binding:"required"`
	MediaType string `json:"mediaType"`
	Caption   string `json:"caption"`
}

func CreatePost(c *gin.Context) {
	var req CreatePostRequest
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

	if req.MediaType != models.MediaVideo {
		req.MediaType = models.MediaImage
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Author display data is denormalized onto the post at creation.
	var author models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&author); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch author"})
		return
	}
	author.Normalize()

	post := models.Post{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		MediaURL:    req.MediaURL,
		MediaType:   req.MediaType,
		Caption:     req.Caption,
		CreatedAt:   time.Now().Unix(),
		AuthorName:  author.Name,
		AuthorImage: author.Image,
	}
	if post.AuthorName == "" {
		post.AuthorName = author.Username
	}
	if post.AuthorImage == "" {
		post.AuthorImage = fallbackImage
	}

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		log.Printf("[CreatePost] insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	cache.InvalidateFeed(ctx)

	if wsManager != nil {
		wsManager.PublishPost(post)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"postId":  post.ID.Hex(),
	})
}

// GetFeed returns the most recent posts, newest first, capped at the
// fixed limit. The page is cached briefly; a miss reads the store.
func GetFeed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if posts := cache.CachedFeed(ctx); posts != nil {
		c.JSON(http.StatusOK, posts)
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(feedLimit)

	cursor, err := database.Posts.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode feed"})
		return
	}

	if err := cache.CacheFeed(ctx, posts); err != nil {
		log.Printf("[GetFeed] cache write failed: %v", err)
	}

	c.JSON(http.StatusOK, posts)
}

func GetMemberPosts(c *gin.Context) {
	memberID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(feedLimit)

	cursor, err := database.Posts.Find(ctx, bson.M{"userId": memberID}, findOptions)
	if err != nil {
		log.Printf("[GetMemberPosts] find error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}
