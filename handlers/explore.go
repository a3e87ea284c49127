package handlers

import (
	"context"
	"fmt"
	"math"
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

// exploreLimit caps the directory page, same as the feed window.
const exploreLimit = 100

func exploreFindOptions() *options.FindOptions {
	return options.Find().SetLimit(exploreLimit)
}

// GetExplore lists the member directory. Only verified members appear;
// pending and guest profiles are filtered at the query.
func GetExplore(c *gin.Context) {
	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var viewer models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&viewer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch current user"})
		return
	}

	hasLocation := viewer.Latitude != nil && viewer.Longitude != nil

	cursor, err := database.Users.Find(ctx, bson.M{
		"_id":    bson.M{"$ne": userID},
		"status": models.StatusVerifiedMember,
	}, exploreFindOptions())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}
	defer cursor.Close(ctx)

	var members []models.User
	if err := cursor.All(ctx, &members); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode members"})
		return
	}

	response := make([]map[string]interface{}, 0, len(members))
	for _, m := range members {
		m.Normalize()
		if m.Image == "" {
			m.Image = fallbackImage
		}

		distance := "Nearby"
		if hasLocation && m.Latitude != nil && m.Longitude != nil {
			km := haversine(*viewer.Latitude, *viewer.Longitude, *m.Latitude, *m.Longitude)
			distance = fmt.Sprintf("%.0f km away", km)
		}

		response = append(response, map[string]interface{}{
			"id":       m.ID.Hex(),
			"username": m.Username,
			"name":     m.Name,
			"age":      m.Age,
			"bio":      m.Bio,
			"image":    m.Image,
			"video":    m.Video,
			"location": m.Location,
			"area":     m.Area,
			"distance": distance,
			"verified": m.Verified,
			"online":   cache.IsOnline(ctx, m.ID.Hex()),
			"socials":  m.Socials,
		})
	}

	c.JSON(http.StatusOK, response)
}

// haversine returns the great-circle distance in kilometers.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
