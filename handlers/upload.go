package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"club18/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UploadMedia pushes a file to the media host and returns its public
// URL. The create-post flow calls this first, then writes the post
// document with the returned URL.
func UploadMedia(c *gin.Context) {
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

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	resourceType := c.PostForm("resourceType")
	if resourceType != models.MediaVideo {
		resourceType = models.MediaImage
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Media host configuration error"})
		return
	}

	uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       "club18/posts",
		PublicID:     userID.Hex() + "_" + time.Now().Format("20060102150405"),
		ResourceType: resourceType,
	})
	if err != nil {
		log.Printf("[UploadMedia] upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload media"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":          uploadResult.SecureURL,
		"resourceType": resourceType,
	})
}
