package handlers

import (
	"club18/websocket"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shared constants and variables across the handler files.
const fallbackImage = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

var wsManager *websocket.Manager
var vapidPrivateKey string

// PushSubscription stores a member's web-push endpoint.
type PushSubscription struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty"`
	UserID primitive.ObjectID   `bson:"userId"`
	Sub    webpush.Subscription `bson:"sub"`
}

// SetWebSocketManager wires the live-update hub into the handlers.
func SetWebSocketManager(manager *websocket.Manager) {
	wsManager = manager
}

// SetVAPIDPrivateKey sets the key used to sign push notifications.
func SetVAPIDPrivateKey(key string) {
	vapidPrivateKey = key
}
