package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Like is a one-directional, fire-and-forget record. There is no
// reciprocity read path; nothing computes mutual matches from these.
type Like struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromID    primitive.ObjectID `bson:"fromId" json:"fromId"`
	ToID      primitive.ObjectID `bson:"toId" json:"toId"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
