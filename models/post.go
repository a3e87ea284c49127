package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	MediaImage = "image"
	MediaVideo = "video"
)

type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	MediaURL  string             `bson:"mediaUrl" json:"mediaUrl"`
	MediaType string             `bson:"mediaType" json:"mediaType"` // image, video
	Caption   string             `bson:"caption" json:"caption"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`

	// Denormalized author display data, written at creation time.
	AuthorName  string `bson:"authorName" json:"authorName"`
	AuthorImage string `bson:"authorImage" json:"authorImage"`
}
