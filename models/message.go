package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID string             `bson:"conversationId" json:"conversationId"`
	SenderID       primitive.ObjectID `bson:"senderId" json:"senderId"`
	Text           string             `bson:"text,omitempty" json:"text,omitempty"`
	ImageURL       string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsRead         bool               `bson:"isRead" json:"isRead"`
	CreatedAt      int64              `bson:"createdAt" json:"createdAt"`
}
